package di

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/time/rate"

	"news-analyzer/internal/adapter/llmclient"
	"news-analyzer/internal/adapter/repository"
	"news-analyzer/internal/domain"
	"news-analyzer/internal/infra/config"
	"news-analyzer/internal/usecase"
	"news-analyzer/internal/worker"
)

// ApplicationComponents holds all wired dependencies for the application.
type ApplicationComponents struct {
	// Repositories
	CompanyRepo  domain.CompanyRepository
	NewsRepo     domain.NewsRepository
	PassageIndex domain.PassageIndex

	// External clients
	Generator domain.LLMClient
	Encoder   domain.VectorEncoder

	// Orchestrator
	Analyzer *usecase.Analyzer

	// Worker
	Worker *worker.AnalysisWorker
}

// NewApplicationComponents wires all dependencies from config and database pool.
func NewApplicationComponents(cfg *config.Config, pool *pgxpool.Pool, log *slog.Logger) (*ApplicationComponents, error) {
	// Repositories
	companyRepo := repository.NewCompanyRepository(pool)
	newsRepo := repository.NewNewsRepository(pool)
	passageIndex := repository.NewPassageIndex(pool)
	txManager := repository.NewPostgresTransactionManager(pool)

	// External clients
	generator, err := llmclient.NewGenerator(llmclient.GeneratorConfig{
		Provider: cfg.LLM.Provider,
		APIKey:   cfg.LLM.APIKey,
		Model:    cfg.LLM.Model,
		Timeout:  time.Duration(cfg.LLM.GenerateTimeout) * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build llm generator: %w", err)
	}
	encoder, err := llmclient.NewEncoder(llmclient.EmbedderConfig{
		Provider:   cfg.LLM.EmbeddingProvider,
		APIKey:     cfg.LLM.EmbeddingAPIKey,
		Model:      cfg.LLM.EmbeddingModel,
		Dimensions: usecase.EmbeddingDimensions,
		Timeout:    time.Duration(cfg.LLM.EmbedTimeout) * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build vector encoder: %w", err)
	}

	// Pipeline stages
	gate := usecase.NewArticleCountGate(companyRepo, log)
	resolver := usecase.NewNewsIDResolver(newsRepo, log)
	synth := usecase.NewQuerySynthesizer(encoder, 0, log)
	retriever := usecase.NewSemanticRetriever(passageIndex, log)

	var limiter *rate.Limiter
	if cfg.LLM.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.LLM.RequestsPerMinute)/60.0), 1)
	}
	digestGen := usecase.NewDigestGenerator(generator, limiter, cfg.LLM.MaxRetries, log)

	// Orchestrator
	opts := []usecase.AnalyzerOption{
		usecase.WithTopK(cfg.Analysis.TopK),
		usecase.WithTransactionManager(txManager),
	}
	if cfg.Analysis.PersistSummaries {
		opts = append(opts, usecase.WithSummaryPersistence())
	}
	analyzer := usecase.NewAnalyzer(companyRepo, gate, resolver, synth, retriever, digestGen, log, opts...)

	// Worker
	analysisWorker := worker.NewAnalysisWorker(
		analyzer,
		time.Duration(cfg.Worker.IntervalMinutes)*time.Minute,
		cfg.Analysis.Hours,
		cfg.Analysis.Parallelism,
		log,
	)

	return &ApplicationComponents{
		CompanyRepo:  companyRepo,
		NewsRepo:     newsRepo,
		PassageIndex: passageIndex,
		Generator:    generator,
		Encoder:      encoder,
		Analyzer:     analyzer,
		Worker:       analysisWorker,
	}, nil
}
