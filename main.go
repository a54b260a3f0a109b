package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"

	"github.com/quanterra/finassist/backends"
	"github.com/quanterra/finassist/config"
	"github.com/quanterra/finassist/intent"
	"github.com/quanterra/finassist/orchestrator"
	"github.com/quanterra/finassist/pii"
	"github.com/quanterra/finassist/preprocess"
	"github.com/quanterra/finassist/router"
	"github.com/quanterra/finassist/safety"
	"github.com/quanterra/finassist/server"
	"github.com/quanterra/finassist/tiers"
	"github.com/quanterra/finassist/vectorstore"
)

func main() {
	// .env is optional; environment always wins over defaults.
	_ = godotenv.Load()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Error("configuration failed", "error", err)
		os.Exit(1)
	}
	loadConfigFromEnv(cfg)

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.SentryDSN}); err != nil {
			log.Error("sentry init failed", "error", err)
			os.Exit(1)
		}
		defer sentry.Flush(2 * time.Second)
	}

	orch, auditStore, err := buildPipeline(cfg, log)
	if err != nil {
		log.Error("pipeline wiring failed", "error", err)
		os.Exit(1)
	}
	if auditStore != nil {
		defer auditStore.Close()

		cleanupCtx, cancelCleanup := context.WithCancel(context.Background())
		defer cancelCleanup()
		retention := time.Duration(cfg.Database.CleanupHours) * time.Hour
		go pii.RunCleanup(cleanupCtx, auditStore, time.Hour, retention, log)
	}

	srv := server.NewServer(cfg.Server, orch)

	go func() {
		log.Info("starting assistant service", "port", cfg.Server.Port)
		if err := srv.Start(); err != nil {
			log.Error("server stopped", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown failed", "error", err)
	}
}

// buildPipeline wires every stage from config. The Weaviate searcher is
// preferred; when disabled the in-memory store serves as the fallback so
// the pipeline still answers from whatever entries were loaded.
func buildPipeline(cfg *config.Config, log *slog.Logger) (*orchestrator.Orchestrator, pii.AuditStore, error) {
	openAI := backends.NewOpenAIClient(cfg.OpenAI, log)
	embedder := vectorstore.NewCache(openAI, cfg.EmbeddingCacheSize)

	var searcher intent.Searcher
	if cfg.Weaviate.Enabled {
		ws, err := backends.NewWeaviateSearcher(cfg.Weaviate, embedder, log)
		if err != nil {
			return nil, nil, err
		}
		if err := ws.EnsureSchema(context.Background()); err != nil {
			return nil, nil, err
		}
		searcher = ws
	} else {
		searcher = vectorstore.NewMemory(embedder)
		log.Warn("weaviate disabled, using in-memory vector store")
	}

	var auditStore pii.AuditStore
	if cfg.Database.Enabled {
		store, err := pii.NewPostgresAuditStore(cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		auditStore = store
	} else {
		auditStore = pii.NewInMemoryAuditStore()
		log.Info("database disabled, PII audit events kept in memory")
	}

	preprocessor, err := preprocess.NewPreprocessor(cfg)
	if err != nil {
		return nil, auditStore, err
	}

	safetyLayer, err := safety.NewLayer(cfg.Safety, log)
	if err != nil {
		return nil, auditStore, err
	}

	generators := map[int]tiers.Generator{
		1: tiers.NewKB(cfg.Tiers.KB, log),
		2: tiers.NewSLM(cfg.Tiers.SLM, openAI, log),
		3: tiers.NewRAG(cfg.Tiers.RAG, searcher, log),
	}

	orch := orchestrator.New(
		preprocessor,
		intent.NewEngine(cfg, searcher),
		router.NewDecisionRouter(cfg),
		safetyLayer,
		generators,
		auditStore,
		log,
	)
	return orch, auditStore, nil
}

// loadConfigFromEnv applies environment overrides on top of file config.
func loadConfigFromEnv(cfg *config.Config) {
	if v := os.Getenv("DB_ENABLED"); v != "" {
		cfg.Database.Enabled = v == "true"
	}
	if v := os.Getenv("DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = p
		}
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		cfg.Database.Database = v
	}
	if v := os.Getenv("DB_USER"); v != "" {
		cfg.Database.Username = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("DB_SSL_MODE"); v != "" {
		cfg.Database.SSLMode = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		cfg.OpenAI.BaseURL = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.OpenAI.APIKey = v
	}
	if v := os.Getenv("WEAVIATE_ENABLED"); v != "" {
		cfg.Weaviate.Enabled = v == "true"
	}
	if v := os.Getenv("WEAVIATE_HOST"); v != "" {
		cfg.Weaviate.Host = v
	}
	if v := os.Getenv("SENTRY_DSN"); v != "" {
		cfg.SentryDSN = v
	}
}
