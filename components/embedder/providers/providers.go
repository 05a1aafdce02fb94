package providers

import (
	"github.com/bububa/teachassist/components/embedder/providers/bedrock"
	"github.com/bububa/teachassist/components/embedder/providers/cohere"
	"github.com/bububa/teachassist/components/embedder/providers/openai"
)

var (
	FromBedrock = bedrock.New
	FromOpenAI  = openai.New
	FromCohere  = cohere.New
)
