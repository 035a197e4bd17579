package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ksrishi31-git/smart-document-organizer/internal/config"
	"github.com/ksrishi31-git/smart-document-organizer/internal/core/domain"
	"github.com/ksrishi31-git/smart-document-organizer/internal/core/ports"
	"github.com/ksrishi31-git/smart-document-organizer/internal/core/usecase"
	"github.com/ksrishi31-git/smart-document-organizer/internal/infrastructure/catalog"
	"github.com/ksrishi31-git/smart-document-organizer/internal/infrastructure/extractor"
	"github.com/ksrishi31-git/smart-document-organizer/internal/infrastructure/llm/ollama"
	"github.com/ksrishi31-git/smart-document-organizer/internal/infrastructure/llm/openai"
	"github.com/ksrishi31-git/smart-document-organizer/internal/infrastructure/ocr/tesseract"
	"github.com/ksrishi31-git/smart-document-organizer/internal/infrastructure/queue/nats"
	"github.com/ksrishi31-git/smart-document-organizer/internal/infrastructure/repository/postgres"
	"github.com/ksrishi31-git/smart-document-organizer/internal/infrastructure/resilience"
	"github.com/ksrishi31-git/smart-document-organizer/internal/infrastructure/storage/localfs"
	"github.com/ksrishi31-git/smart-document-organizer/internal/infrastructure/storage/s3"
	"github.com/ksrishi31-git/smart-document-organizer/internal/observability/metrics"
)

type App struct {
	Config  config.Config
	Catalog domain.Catalog

	Classifier *usecase.Classifier
	Organizer  ports.DocumentOrganizer
	Processor  ports.JobProcessor
	Library    ports.DocumentLibrary
	Queue      ports.JobQueue

	closeFn func()
}

// New wires the full pipeline. registerer receives pipeline and breaker
// metrics and may be nil.
func New(ctx context.Context, cfg config.Config, service string, registerer prometheus.Registerer) (*App, error) {
	var pipeline *metrics.PipelineMetrics
	if registerer != nil {
		pipeline = metrics.NewPipelineMetrics(service, registerer)
	}
	executor := newExecutor(cfg, pipeline)

	classifier, cat, err := newClassifier(cfg, executor)
	if err != nil {
		return nil, err
	}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	repo := postgres.NewUploadRepository(db)

	store, err := newFileStore(ctx, cfg)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init file store: %w", err)
	}

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{ResilienceExecutor: executor})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	var observer ports.PipelineObserver
	if pipeline != nil {
		observer = pipeline
	}
	organizer := usecase.NewOrganizeDocumentsUseCase(
		newExtractor(cfg, executor),
		classifier,
		store,
		repo,
		usecase.OrganizeOptions{
			Queue:       queue,
			Observer:    observer,
			Concurrency: cfg.OrganizeConcurrency,
		},
	)

	return &App{
		Config:     cfg,
		Catalog:    cat,
		Classifier: classifier,
		Organizer:  organizer,
		Processor:  organizer,
		Library:    usecase.NewLibraryUseCase(repo, store),
		Queue:      queue,
		closeFn: func() {
			queue.Close()
			closeDB(db)
		},
	}, nil
}

// NewClassifier builds only the classification cascade, for adapters that
// never touch storage.
func NewClassifier(cfg config.Config) (*usecase.Classifier, domain.Catalog, error) {
	return newClassifier(cfg, newExecutor(cfg, nil))
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

func newClassifier(cfg config.Config, executor *resilience.Executor) (*usecase.Classifier, domain.Catalog, error) {
	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return nil, domain.Catalog{}, fmt.Errorf("load catalog: %w", err)
	}
	classifierCfg := usecase.ClassifierConfig{
		KeywordWeight:       cfg.KeywordWeight,
		KeywordThreshold:    cfg.KeywordThreshold,
		CountRepeats:        cfg.KeywordCountRepeats,
		ExcerptMinLineChars: cfg.ExcerptMinLineChars,
		ExcerptMaxLines:     cfg.ExcerptMaxLines,
		GenerativeTimeout:   cfg.LLMTimeout,
	}
	return usecase.NewClassifier(cat, classifierCfg, newGenerator(cfg, executor)), cat, nil
}

func newExecutor(cfg config.Config, pipeline *metrics.PipelineMetrics) *resilience.Executor {
	rc := resilience.DefaultConfig()
	rc.RetryMaxAttempts = cfg.ResilienceRetryMaxAttempts
	rc.RetryInitialBackoff = cfg.ResilienceRetryInitialBackoff
	rc.RetryMaxBackoff = cfg.ResilienceRetryMaxBackoff
	rc.BreakerEnabled = cfg.ResilienceBreakerEnabled
	rc.BreakerOpenTimeout = cfg.ResilienceBreakerOpenTimeout
	rc = rc.WithBudget(resilience.OpOllamaGenerate, cfg.LLMTimeout).
		WithBudget(resilience.OpOpenAIChat, cfg.LLMTimeout).
		WithBudget(resilience.OpOpenAITranscribe, cfg.TranscribeTimeout)

	executor := resilience.NewExecutor(rc)
	if pipeline != nil {
		executor.WithStateListener(pipeline.ObserveBreakerState)
	}
	return executor
}

func newGenerator(cfg config.Config, executor *resilience.Executor) ports.CategoryGenerator {
	switch cfg.LLMProvider {
	case "ollama":
		return ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, ollama.Options{
			Timeout:            cfg.LLMTimeout,
			ResilienceExecutor: executor,
		})
	case "openai":
		return newOpenAIClient(cfg, executor)
	case "none", "":
		slog.Info("generative_fallback_disabled")
		return nil
	default:
		slog.Warn("unknown_llm_provider", "provider", cfg.LLMProvider)
		return nil
	}
}

func newOpenAIClient(cfg config.Config, executor *resilience.Executor) *openai.Client {
	return openai.New(openai.Config{
		APIKey:          cfg.OpenAIAPIKey,
		BaseURL:         cfg.OpenAIBaseURL,
		ChatModel:       cfg.OpenAIChatModel,
		TranscribeModel: cfg.OpenAITranscribeModel,
		RequestTimeout:  cfg.TranscribeTimeout,
	}, executor)
}

func newExtractor(cfg config.Config, executor *resilience.Executor) *extractor.Registry {
	opts := extractor.Options{
		OCRTimeout:        cfg.OCRTimeout,
		TranscribeTimeout: cfg.TranscribeTimeout,
	}

	engine := tesseract.New(tesseract.Options{
		TesseractPath: cfg.TesseractPath,
		PdftoppmPath:  cfg.PdftoppmPath,
		Language:      cfg.OCRLanguage,
	})
	if engine.Available() {
		opts.Recognizer = engine
		if engine.CanRasterize() {
			opts.Rasterizer = engine
		} else {
			slog.Warn("pdf_rasterizer_unavailable", "path", cfg.PdftoppmPath)
		}
	} else {
		slog.Warn("ocr_engine_unavailable", "path", cfg.TesseractPath)
	}

	if cfg.OpenAIAPIKey != "" {
		opts.Transcriber = newOpenAIClient(cfg, executor)
	} else {
		slog.Warn("speech_engine_unavailable", "reason", "OPENAI_API_KEY is not set")
	}

	return extractor.NewRegistry(opts)
}

func newFileStore(ctx context.Context, cfg config.Config) (ports.FileStore, error) {
	switch cfg.StorageBackend {
	case "s3":
		return s3.New(ctx, s3.Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretKey,
			UsePathStyle:    cfg.S3UsePathStyle,
		})
	case "local", "":
		return localfs.New(cfg.UploadRoot)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

func closeDB(db *sql.DB) {
	if err := db.Close(); err != nil {
		slog.Warn("postgres_close_failed", "error", err)
	}
}
