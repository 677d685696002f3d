package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
	"golang.org/x/oauth2/clientcredentials"

	"mumz-advisor/internal/assistant"
	"mumz-advisor/internal/config"
	"mumz-advisor/internal/conversation"
	"mumz-advisor/internal/db"
	"mumz-advisor/internal/logging"
	"mumz-advisor/internal/metrics"
	"mumz-advisor/internal/server"
	"mumz-advisor/internal/session"
	"mumz-advisor/internal/store"
)

func main() {
	cfg := config.Load()
	log, err := logging.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	kv, health, closeStore, err := openStore(cfg, log)
	if err != nil {
		log.Fatal("failed to open store", zap.Error(err))
	}
	defer closeStore()

	asst, err := newAssistant(cfg, log)
	if err != nil {
		log.Fatal("failed to create assistant", zap.Error(err))
	}

	met := metrics.NewCollector("advisor")
	sessions := session.NewManager(session.Deps{
		Store:     kv,
		Assistant: asst,
		Logger:    log,
		Metrics:   met,
	}, cfg.SessionIdleTTL)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sessions.Run(ctx, time.Minute)

	s := server.NewServer(cfg, sessions, log, met, server.WithHealthCheck(health))
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// a chat request waits for the assistant
		WriteTimeout: cfg.APITimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("advisor server listening",
			zap.String("addr", srv.Addr),
			zap.String("assistant", cfg.AssistantMode),
			zap.String("store", cfg.StoreDriver),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server error", zap.Error(err))
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigc
	log.Info("shutdown signal", zap.String("signal", sig.String()))

	cancel()
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.APITimeout+5*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown error", zap.Error(err))
	}
	log.Info("advisor server stopped")
}

// openStore selects the key-value backend. The returned health func backs
// /api/health.
func openStore(cfg config.Config, log *zap.Logger) (store.KV, func() error, func(), error) {
	noop := func() {}
	healthy := func() error { return nil }
	switch cfg.StoreDriver {
	case "memory":
		log.Warn("using in-memory storage; profiles and carts are lost on restart")
		return store.NewMemoryStore(), healthy, noop, nil
	case "file", "":
		fsStore, err := store.NewFileStore(cfg.StoreDir)
		if err != nil {
			return nil, nil, noop, err
		}
		return fsStore, healthy, noop, nil
	case "postgres":
		database, err := db.New(cfg.DatabaseURL, log)
		if err != nil {
			return nil, nil, noop, fmt.Errorf("failed to initialize database: %w", err)
		}
		log.Info("database connection established")
		var migrations fs.FS = db.Migrations()
		if cfg.MigrationsDir != "" {
			migrations = os.DirFS(cfg.MigrationsDir)
		}
		if err := database.RunMigrations(migrations); err != nil {
			database.Close()
			return nil, nil, noop, fmt.Errorf("failed to run migrations: %w", err)
		}
		closeDB := func() {
			if err := database.Close(); err != nil {
				log.Warn("close database", zap.Error(err))
			}
		}
		return store.NewDatabaseStore(database), database.HealthCheck, closeDB, nil
	default:
		return nil, nil, noop, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}

func newAssistant(cfg config.Config, log *zap.Logger) (conversation.Assistant, error) {
	switch cfg.AssistantMode {
	case "http", "":
		opts := []assistant.HTTPOption{
			assistant.WithTimeout(cfg.APITimeout),
			assistant.WithLogger(log),
		}
		if cfg.UsesClientCredentials() {
			opts = append(opts, assistant.WithClientCredentials(&clientcredentials.Config{
				ClientID:     cfg.APIClientID,
				ClientSecret: cfg.APIClientSecret,
				TokenURL:     cfg.APITokenURL,
				Scopes:       cfg.APIScopes,
			}))
		}
		return assistant.NewHTTPClient(cfg.APIURL, opts...), nil
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, errors.New("OPENAI_API_KEY is required when ASSISTANT_MODE=openai")
		}
		spec, err := assistant.LoadPromptSpec(cfg.AssistantPromptFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load assistant prompt: %w", err)
		}
		return assistant.NewOpenAIAssistant(spec, openai.NewClient(cfg.OpenAIAPIKey), cfg.OpenAIModel), nil
	default:
		return nil, fmt.Errorf("unknown ASSISTANT_MODE %q", cfg.AssistantMode)
	}
}
