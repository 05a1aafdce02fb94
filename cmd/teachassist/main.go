// Command teachassist runs the assistant locally: an http server, one-shot
// questions and knowledge base ingestion.
package main

import (
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
