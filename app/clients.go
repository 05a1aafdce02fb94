package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/bububa/instructor-go"
	"github.com/bububa/instructor-go/instructors"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"
	cohereoption "github.com/cohere-ai/cohere-go/v2/option"
	anthropic "github.com/liushuangls/go-anthropic/v2"
	milvusClient "github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/pinecone-io/go-pinecone/v3/pinecone"
	openai "github.com/sashabaranov/go-openai"

	"github.com/bububa/teachassist/components/embedder"
	embedders "github.com/bububa/teachassist/components/embedder/providers"
	"github.com/bububa/teachassist/components/gateway"
	anthropicgw "github.com/bububa/teachassist/components/gateway/providers/anthropic"
	bedrockgw "github.com/bububa/teachassist/components/gateway/providers/bedrock"
	instructorgw "github.com/bububa/teachassist/components/gateway/providers/instructor"
	openaigw "github.com/bububa/teachassist/components/gateway/providers/openai"
	"github.com/bububa/teachassist/components/vectordb"
	"github.com/bububa/teachassist/components/vectordb/engines"
	pineconeengine "github.com/bububa/teachassist/components/vectordb/engines/pinecone"
	"github.com/bububa/teachassist/config"
	"github.com/bububa/teachassist/logger"
)

var (
	// ErrMissingCredential is returned when the selected provider has no api key configured
	ErrMissingCredential = errors.New("missing credential")
	// ErrUnknownProvider is returned for a provider or engine name nothing is wired to
	ErrUnknownProvider = errors.New("unknown provider")
)

func newOpenAIClient(cfg *config.Config) (*openai.Client, error) {
	if cfg.OpenAI.APIKey == "" {
		return nil, fmt.Errorf("%w: OPENAI_API_KEY", ErrMissingCredential)
	}
	clientCfg := openai.DefaultConfig(cfg.OpenAI.APIKey)
	if cfg.OpenAI.BaseURL != "" {
		clientCfg.BaseURL = cfg.OpenAI.BaseURL
	}
	return openai.NewClientWithConfig(clientCfg), nil
}

func newAnthropicClient(cfg *config.Config) (*anthropic.Client, error) {
	if cfg.Anthropic.APIKey == "" {
		return nil, fmt.Errorf("%w: ANTHROPIC_API_KEY", ErrMissingCredential)
	}
	return anthropic.NewClient(cfg.Anthropic.APIKey), nil
}

func newCohereClient(cfg *config.Config) (*cohereclient.Client, error) {
	if cfg.Cohere.APIKey == "" {
		return nil, fmt.Errorf("%w: COHERE_API_KEY", ErrMissingCredential)
	}
	return cohereclient.NewClient(cohereoption.WithToken(cfg.Cohere.APIKey)), nil
}

// newGateway builds the language model gateway selected by llm.provider
func newGateway(cfg *config.Config, awsCfg aws.Config) (gateway.Gateway, error) {
	opts := []gateway.Option{
		gateway.WithModel(cfg.LLM.Model),
		gateway.WithTemperature(cfg.LLM.Temperature),
		gateway.WithMaxTokens(cfg.LLM.MaxTokens),
		gateway.WithMaxIterations(cfg.LLM.MaxIterations),
		gateway.WithTimeout(cfg.LLM.Timeout),
	}
	switch cfg.LLM.Provider {
	case "bedrock":
		return bedrockgw.New(bedrockruntime.NewFromConfig(awsCfg), opts...), nil
	case "openai":
		clt, err := newOpenAIClient(cfg)
		if err != nil {
			return nil, err
		}
		return openaigw.New(clt, opts...), nil
	case "anthropic":
		clt, err := newAnthropicClient(cfg)
		if err != nil {
			return nil, err
		}
		return anthropicgw.New(clt, opts...), nil
	case "instructor":
		clt, err := newInstructor(cfg)
		if err != nil {
			return nil, err
		}
		return instructorgw.New(clt, opts...), nil
	}
	return nil, fmt.Errorf("%w: llm %q", ErrUnknownProvider, cfg.LLM.Provider)
}

func newInstructor(cfg *config.Config) (any, error) {
	instructorOpts := []instructor.Option{
		instructor.WithMode(instructor.ModeJSON),
		instructor.WithMaxRetries(3),
		instructor.WithValidation(),
	}
	switch cfg.LLM.InstructorBackend {
	case "anthropic":
		clt, err := newAnthropicClient(cfg)
		if err != nil {
			return nil, err
		}
		return instructors.FromAnthropic(clt, instructorOpts...), nil
	case "cohere":
		clt, err := newCohereClient(cfg)
		if err != nil {
			return nil, err
		}
		return instructors.FromCohere(clt, instructorOpts...), nil
	case "openai":
		clt, err := newOpenAIClient(cfg)
		if err != nil {
			return nil, err
		}
		return instructors.FromOpenAI(clt, instructorOpts...), nil
	}
	return nil, fmt.Errorf("%w: instructor backend %q", ErrUnknownProvider, cfg.LLM.InstructorBackend)
}

// newEmbedder builds the embedding service selected by embedding.provider
func newEmbedder(cfg *config.Config, awsCfg aws.Config) (embedder.Embedder, error) {
	opts := []embedder.Option{
		embedder.WithTimeout(cfg.Embedding.Timeout),
	}
	if cfg.Embedding.Model != "" {
		opts = append(opts, embedder.WithModel(cfg.Embedding.Model))
	}
	switch cfg.Embedding.Provider {
	case "bedrock":
		return embedders.FromBedrock(bedrockruntime.NewFromConfig(awsCfg), opts...), nil
	case "openai":
		clt, err := newOpenAIClient(cfg)
		if err != nil {
			return nil, err
		}
		return embedders.FromOpenAI(clt, opts...), nil
	case "cohere":
		clt, err := newCohereClient(cfg)
		if err != nil {
			return nil, err
		}
		return embedders.FromCohere(clt, opts...), nil
	}
	return nil, fmt.Errorf("%w: embedding %q", ErrUnknownProvider, cfg.Embedding.Provider)
}

// newEngine connects the vector index selected by vectordb.engine.
// The returned close function releases the connection and is never nil.
func newEngine(ctx context.Context, cfg *config.Config) (vectordb.Engine, func() error, error) {
	noop := func() error { return nil }
	opts := []vectordb.Option{
		vectordb.WithTopK(cfg.VectorDB.TopK),
		vectordb.WithTimeout(cfg.VectorDB.Timeout),
	}
	if cfg.VectorDB.Collection != "" {
		opts = append(opts, vectordb.WithCollection(cfg.VectorDB.Collection))
	}
	if cfg.VectorDB.Dimension > 0 {
		opts = append(opts, vectordb.WithDimension(cfg.VectorDB.Dimension))
	}
	switch vectordb.EngineType(cfg.VectorDB.Engine) {
	case vectordb.Memory:
		return engines.FromMemory(opts...), noop, nil
	case vectordb.Chromem:
		if cfg.VectorDB.Path == "" {
			return nil, nil, fmt.Errorf("%w: chromem requires vectordb.path", config.ErrInvalidConfig)
		}
		engine, err := engines.OpenChromem(cfg.VectorDB.Path, opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("open chromem at %s: %w", cfg.VectorDB.Path, err)
		}
		return engine, noop, nil
	case vectordb.Milvus:
		if cfg.Milvus.Address == "" {
			return nil, nil, fmt.Errorf("%w: milvus requires MILVUS_ADDRESS", config.ErrInvalidConfig)
		}
		clt, err := milvusClient.NewClient(ctx, milvusClient.Config{Address: cfg.Milvus.Address})
		if err != nil {
			return nil, nil, fmt.Errorf("connect milvus at %s: %w", cfg.Milvus.Address, err)
		}
		return engines.FromMilvus(clt, opts...), clt.Close, nil
	case vectordb.Pinecone:
		if cfg.Pinecone.APIKey == "" {
			return nil, nil, fmt.Errorf("%w: PINECONE_API_KEY", ErrMissingCredential)
		}
		if cfg.Pinecone.IndexName == "" {
			return nil, nil, fmt.Errorf("%w: pinecone requires PINECONE_INDEX_NAME", config.ErrInvalidConfig)
		}
		clt, err := pinecone.NewClient(pinecone.NewClientParams{ApiKey: cfg.Pinecone.APIKey})
		if err != nil {
			return nil, nil, fmt.Errorf("create pinecone client: %w", err)
		}
		connect, err := pineconeengine.Connect(ctx, clt, cfg.Pinecone.IndexName)
		if err != nil {
			return nil, nil, err
		}
		engine := engines.FromPinecone(connect, opts...)
		return engine, engine.Close, nil
	}
	return nil, nil, fmt.Errorf("%w: vectordb %q", ErrUnknownProvider, cfg.VectorDB.Engine)
}

// newTokenCounter prefers the tiktoken encoding and falls back to word counts
// when the encoding cannot be loaded
func newTokenCounter(ctx context.Context) embedder.TokenCounter {
	counter, err := embedder.NewTikTokenCounter(embedder.DefaultEncoding)
	if err != nil {
		logger.FromContext(ctx).Warn("tiktoken encoding unavailable, counting words", "error", err)
		return new(embedder.DefaultTokenCounter)
	}
	return counter
}
