package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newIngestCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest [path|s3://bucket/prefix|https://url]...",
		Short: "Chunk, embed and store documents in the knowledge base",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			report, err := a.Ingester().Ingest(cmd.Context(), args...)
			if report != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "ingested %d documents, %d chunks, %d tokens, skipped %d\n",
					report.Documents, report.Chunks, report.Usage.Total(), report.Skipped)
			}
			return err
		},
	}
}
