package embedder

type Provider = string

const (
	ProviderBedrock Provider = "Bedrock"
	ProviderOpenAI  Provider = "OpenAI"
	ProviderCohere  Provider = "Cohere"
)
