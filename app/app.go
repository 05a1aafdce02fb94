// Package app builds every client, responder and adapter once at process start
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/bububa/teachassist/agents"
	"github.com/bububa/teachassist/agents/knowledge"
	"github.com/bububa/teachassist/agents/math"
	"github.com/bububa/teachassist/agents/orchestrator"
	"github.com/bububa/teachassist/agents/weather"
	"github.com/bububa/teachassist/components/document"
	"github.com/bububa/teachassist/components/embedder"
	"github.com/bububa/teachassist/components/gateway"
	"github.com/bububa/teachassist/components/vectordb"
	"github.com/bububa/teachassist/config"
	"github.com/bububa/teachassist/handlers"
	"github.com/bububa/teachassist/logger"
	"github.com/bububa/teachassist/schema"
	"github.com/bububa/teachassist/tools"
	"github.com/bububa/teachassist/tools/calculator"
	"github.com/bububa/teachassist/tools/clock"
	"github.com/bububa/teachassist/tools/fileread"
	"github.com/bububa/teachassist/tools/retrieval"
	weathertool "github.com/bububa/teachassist/tools/weather"
)

// App holds the wired process
type App struct {
	Config       *config.Config
	Gateway      gateway.Gateway
	Embedder     embedder.Embedder
	Engine       vectordb.Engine
	Documents    *document.Mux
	Retriever    *retrieval.Retriever
	Math         *math.Responder
	Weather      *weather.Responder
	Knowledge    *knowledge.Responder
	Orchestrator *orchestrator.Orchestrator
	Handlers     *handlers.Handlers

	awsConfig    *aws.Config
	httpClient   *http.Client
	tokenCounter embedder.TokenCounter
	closers      []func() error
}

// Option replaces a collaborator New would otherwise build from the configuration
type Option func(*App)

func WithGateway(gw gateway.Gateway) Option {
	return func(a *App) {
		a.Gateway = gw
	}
}

func WithEmbedder(emb embedder.Embedder) Option {
	return func(a *App) {
		a.Embedder = emb
	}
}

func WithEngine(engine vectordb.Engine) Option {
	return func(a *App) {
		a.Engine = engine
	}
}

func WithAWSConfig(cfg aws.Config) Option {
	return func(a *App) {
		a.awsConfig = &cfg
	}
}

// WithHTTPClient sets the client of the weather service and http documents
func WithHTTPClient(clt *http.Client) Option {
	return func(a *App) {
		a.httpClient = clt
	}
}

func WithTokenCounter(counter embedder.TokenCounter) Option {
	return func(a *App) {
		a.tokenCounter = counter
	}
}

// New wires the process. Collaborators not injected through opts are built from cfg.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	a := &App{Config: cfg}
	for _, opt := range opts {
		opt(a)
	}
	if err := a.build(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) build(ctx context.Context) error {
	cfg := a.Config
	if a.awsConfig == nil {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
		if err != nil {
			return fmt.Errorf("load aws config: %w", err)
		}
		a.awsConfig = &awsCfg
	}
	if a.httpClient == nil {
		a.httpClient = http.DefaultClient
	}
	if a.tokenCounter == nil {
		a.tokenCounter = newTokenCounter(ctx)
	}
	if a.Gateway == nil {
		gw, err := newGateway(cfg, *a.awsConfig)
		if err != nil {
			return err
		}
		a.Gateway = gw
	}
	if a.Embedder == nil {
		emb, err := newEmbedder(cfg, *a.awsConfig)
		if err != nil {
			return err
		}
		a.Embedder = emb
	}
	if a.Engine == nil {
		engine, closeFn, err := newEngine(ctx, cfg)
		if err != nil {
			return err
		}
		a.Engine = engine
		a.closers = append(a.closers, closeFn)
	}
	if err := a.buildDocuments(); err != nil {
		return err
	}
	return a.buildResponders()
}

func (a *App) buildDocuments() error {
	cfg := a.Config.Documents
	file, err := document.NewFile(cfg.Root, document.WithFileMaxBytes(cfg.MaxBytes))
	if err != nil {
		return fmt.Errorf("documents root %s: %w", cfg.Root, err)
	}
	a.Documents = &document.Mux{
		File: file,
		S3:   document.NewS3(s3.NewFromConfig(*a.awsConfig), document.WithS3MaxBytes(cfg.MaxBytes)),
		Http: document.NewHttp(document.WithHttpClient(a.httpClient), document.WithHttpMaxBytes(cfg.MaxBytes)),
	}
	return nil
}

func (a *App) buildResponders() error {
	cfg := a.Config
	hooks := toolHooks()

	calculatorCapability := tools.AsCapability[calculator.Input, calculator.Output](calculator.New(hooks...))
	clockCapability := tools.AsCapability[clock.Input, clock.Output](clock.New(clock.WithToolOptions(hooks...)))
	fileReadCapability := tools.AsCapability[fileread.Input, schema.String](fileread.New(a.Documents,
		fileread.WithTimeout(cfg.Documents.Timeout),
		fileread.WithToolOptions(hooks...),
	))
	fetcher := weathertool.New(
		weathertool.WithBaseURL(cfg.Weather.BaseURL),
		weathertool.WithTimeout(cfg.Weather.Timeout),
		weathertool.WithHTTPClient(a.httpClient),
		weathertool.WithToolOptions(hooks...),
	)

	retrieverOpts := []retrieval.Option{
		retrieval.WithTopK(cfg.VectorDB.TopK),
		retrieval.WithMinScore(cfg.VectorDB.MinScore),
		retrieval.WithMaxContextTokens(cfg.VectorDB.MaxContextTokens),
		retrieval.WithTokenCounter(a.tokenCounter),
	}
	if cfg.VectorDB.Collection != "" {
		retrieverOpts = append(retrieverOpts, retrieval.WithCollection(cfg.VectorDB.Collection))
	}
	a.Retriever = retrieval.NewRetriever(a.Embedder, a.Engine, retrieverOpts...)

	a.Math = math.New(a.Gateway, calculatorCapability, agentHooks())
	a.Weather = weather.New(a.Gateway, fetcher, []gateway.Capability{clockCapability},
		weather.WithDefaultCity(cfg.Weather.DefaultCity),
		weather.WithAgentOptions(agentHooks()),
	)
	a.Knowledge = knowledge.New(a.Gateway, a.Retriever,
		knowledge.WithFileRead(fileReadCapability),
		knowledge.WithAgentOptions(agentHooks()),
		knowledge.WithToolOptions(hooks...),
	)

	policy, err := orchestrator.LoadPolicy(cfg.Orchestrator.PolicyFile)
	if err != nil {
		return err
	}
	o, err := orchestrator.New(a.Gateway, policy, map[orchestrator.Route]agents.Responder{
		orchestrator.RouteWeather:   a.Weather,
		orchestrator.RouteKnowledge: a.Knowledge,
		orchestrator.RouteMath:      a.Math,
	}, agentHooks())
	if err != nil {
		return err
	}
	a.Orchestrator = o
	a.Handlers = handlers.New(
		handlers.WithMath(a.Math),
		handlers.WithWeather(a.Weather),
		handlers.WithOrchestrator(a.Orchestrator),
		handlers.WithStage(cfg.Stage),
	)
	return nil
}

// Ingester returns an ingester writing to the wired vector index
func (a *App) Ingester() *Ingester {
	cfg := a.Config
	chunker := embedder.NewTextChunker(
		embedder.WithChunkSize(cfg.Documents.ChunkSize),
		embedder.WithChunkOverlap(cfg.Documents.ChunkOverlap),
		embedder.WithTokenCounter(a.tokenCounter),
	)
	return NewIngester(a.Documents, a.Embedder, a.Engine,
		WithChunker(chunker),
		WithIngestCollection(cfg.VectorDB.Collection),
	)
}

// Close releases the connections opened by New
func (a *App) Close() error {
	var errs []error
	for _, fn := range a.closers {
		if err := fn(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	if err := errors.Join(errs...); err != nil {
		logger.Warn("close app", "error", err)
		return err
	}
	return nil
}
