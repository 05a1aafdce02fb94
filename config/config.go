package config

import (
	"time"
)

// Config is the process configuration, built once at start
type Config struct {
	Stage        string             `koanf:"stage" env:"STAGE" validate:"required"`
	Log          LogConfig          `koanf:"log"`
	AWS          AWSConfig          `koanf:"aws"`
	LLM          LLMConfig          `koanf:"llm"`
	Embedding    EmbeddingConfig    `koanf:"embedding"`
	VectorDB     VectorDBConfig     `koanf:"vectordb"`
	Pinecone     PineconeConfig     `koanf:"pinecone"`
	Milvus       MilvusConfig       `koanf:"milvus"`
	OpenAI       OpenAIConfig       `koanf:"openai"`
	Anthropic    AnthropicConfig    `koanf:"anthropic"`
	Cohere       CohereConfig       `koanf:"cohere"`
	Weather      WeatherConfig      `koanf:"weather"`
	Documents    DocumentsConfig    `koanf:"documents"`
	Orchestrator OrchestratorConfig `koanf:"orchestrator"`
	Server       ServerConfig       `koanf:"server"`
}

type LogConfig struct {
	Level     string `koanf:"level" env:"LOG_LEVEL" validate:"oneof=debug info warn warning error disabled DEBUG INFO WARN WARNING ERROR"`
	JSON      bool   `koanf:"json" env:"LOG_JSON"`
	AddSource bool   `koanf:"add_source" env:"LOG_SOURCE"`
}

type AWSConfig struct {
	Region string `koanf:"region" env:"REGION_AWS" validate:"required"`
}

type LLMConfig struct {
	// Provider selects the gateway implementation
	Provider string `koanf:"provider" env:"LLM_PROVIDER" validate:"oneof=bedrock openai anthropic instructor"`
	// InstructorBackend is the hosted service behind the instructor gateway
	InstructorBackend string        `koanf:"instructor_backend" env:"LLM_INSTRUCTOR_BACKEND" validate:"oneof=openai anthropic cohere"`
	Model             string        `koanf:"model" env:"LLM_MODEL_ID" validate:"required"`
	Temperature       float32       `koanf:"temperature" env:"LLM_TEMPERATURE" validate:"gte=0,lte=2"`
	MaxTokens         int           `koanf:"max_tokens" env:"LLM_MAX_TOKENS" validate:"gt=0"`
	MaxIterations     int           `koanf:"max_iterations" env:"LLM_MAX_ITERATIONS" validate:"gt=0"`
	Timeout           time.Duration `koanf:"timeout" env:"LLM_TIMEOUT" validate:"gt=0"`
}

type EmbeddingConfig struct {
	Provider string        `koanf:"provider" env:"EMBEDDING_PROVIDER" validate:"oneof=bedrock openai cohere"`
	Model    string        `koanf:"model" env:"EMBEDDING_MODEL_ID"`
	Timeout  time.Duration `koanf:"timeout" env:"EMBEDDING_TIMEOUT" validate:"gt=0"`
}

type VectorDBConfig struct {
	Engine     string `koanf:"engine" env:"VECTORDB_ENGINE" validate:"oneof=pinecone memory chromem milvus"`
	Collection string `koanf:"collection" env:"VECTORDB_COLLECTION"`
	TopK       int    `koanf:"top_k" env:"KNOWLEDGE_TOP_K" validate:"gte=3,lte=5"`
	// MinScore drops passages scoring below it, zero disables filtering
	MinScore         float64       `koanf:"min_score" env:"KNOWLEDGE_MIN_SCORE" validate:"gte=0,lte=1"`
	MaxContextTokens int           `koanf:"max_context_tokens" env:"KNOWLEDGE_MAX_CONTEXT_TOKENS" validate:"gte=0"`
	Dimension        int           `koanf:"dimension" env:"VECTORDB_DIMENSION" validate:"gte=0"`
	Path             string        `koanf:"path" env:"CHROMEM_PATH"`
	Timeout          time.Duration `koanf:"timeout" env:"VECTORDB_TIMEOUT" validate:"gt=0"`
}

type PineconeConfig struct {
	APIKey    string `koanf:"api_key" env:"PINECONE_API_KEY"`
	IndexName string `koanf:"index_name" env:"PINECONE_INDEX_NAME"`
}

type MilvusConfig struct {
	Address string `koanf:"address" env:"MILVUS_ADDRESS"`
}

type OpenAIConfig struct {
	APIKey  string `koanf:"api_key" env:"OPENAI_API_KEY"`
	BaseURL string `koanf:"base_url" env:"OPENAI_BASE_URL"`
}

type AnthropicConfig struct {
	APIKey string `koanf:"api_key" env:"ANTHROPIC_API_KEY"`
}

type CohereConfig struct {
	APIKey string `koanf:"api_key" env:"COHERE_API_KEY"`
}

type WeatherConfig struct {
	DefaultCity string        `koanf:"default_city" env:"WEATHER_DEFAULT_CITY" validate:"required"`
	BaseURL     string        `koanf:"base_url" env:"WEATHER_BASE_URL" validate:"required,url"`
	Timeout     time.Duration `koanf:"timeout" env:"WEATHER_TIMEOUT" validate:"gt=0"`
}

type DocumentsConfig struct {
	// Root confines local file reads
	Root     string        `koanf:"root" env:"DOCUMENTS_ROOT" validate:"required"`
	MaxBytes int64         `koanf:"max_bytes" env:"DOCUMENTS_MAX_BYTES" validate:"gt=0"`
	Timeout  time.Duration `koanf:"timeout" env:"DOCUMENTS_TIMEOUT" validate:"gt=0"`
	// ChunkSize and ChunkOverlap drive ingestion, in tokens
	ChunkSize    int `koanf:"chunk_size" env:"DOCUMENTS_CHUNK_SIZE" validate:"gt=0"`
	ChunkOverlap int `koanf:"chunk_overlap" env:"DOCUMENTS_CHUNK_OVERLAP" validate:"gte=0,ltfield=ChunkSize"`
}

type OrchestratorConfig struct {
	// PolicyFile overrides the built in policy
	PolicyFile string `koanf:"policy_file" env:"ORCHESTRATOR_POLICY"`
}

type ServerConfig struct {
	Addr string `koanf:"addr" env:"SERVER_ADDR" validate:"required"`
}

// Default returns the configuration used when nothing overrides it
func Default() *Config {
	return &Config{
		Stage: "dev",
		Log: LogConfig{
			Level: "info",
		},
		AWS: AWSConfig{
			Region: "us-east-1",
		},
		LLM: LLMConfig{
			Provider:          "bedrock",
			InstructorBackend: "openai",
			Model:             "amazon.nova-lite-v1:0",
			Temperature:       0.7,
			MaxTokens:         1024,
			MaxIterations:     8,
			Timeout:           60 * time.Second,
		},
		Embedding: EmbeddingConfig{
			Provider: "bedrock",
			Timeout:  15 * time.Second,
		},
		VectorDB: VectorDBConfig{
			Engine:           "pinecone",
			TopK:             3,
			MinScore:         0.2,
			MaxContextTokens: 2000,
			Timeout:          15 * time.Second,
		},
		Weather: WeatherConfig{
			DefaultCity: "Dhaka",
			BaseURL:     "https://wttr.in",
			Timeout:     10 * time.Second,
		},
		Documents: DocumentsConfig{
			Root:         ".",
			MaxBytes:     1 << 20,
			Timeout:      10 * time.Second,
			ChunkSize:    200,
			ChunkOverlap: 50,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}
