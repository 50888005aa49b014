package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/epanichev/sheetcheck/internal/config"
	"github.com/epanichev/sheetcheck/internal/httpapi"
	"github.com/epanichev/sheetcheck/internal/interview"
	"github.com/epanichev/sheetcheck/internal/observability"
	"github.com/epanichev/sheetcheck/internal/oracle"
	"github.com/epanichev/sheetcheck/internal/store"
)

func main() {
	// .env is optional; environment variables win either way.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	ctx := context.Background()
	sessionStore, storeMode, err := store.NewStore(ctx, cfg.DatabaseURL, cfg.DataDir)
	if err != nil {
		log.Fatalf("store init failed: %v", err)
	}
	defer sessionStore.Close()
	log.Printf("interview store: %s", storeMode)

	brain, oracleMode, err := oracle.New(cfg.OracleProvider, oracle.Config{
		APIKey:     cfg.OracleAPIKey,
		BaseURL:    cfg.OracleBaseURL,
		Model:      cfg.OracleModel,
		Timeout:    cfg.OracleTimeout,
		MaxRetries: cfg.OracleMaxRetries,
	}, metrics)
	if err != nil {
		log.Fatalf("oracle init failed: %v", err)
	}
	if oracleMode == "mock" {
		log.Printf("oracle provider: mock (set ORACLE_API_KEY for real evaluations)")
	} else {
		log.Printf("oracle provider: %s (%s)", oracleMode, cfg.OracleModel)
	}

	bank, err := interview.LoadBank(cfg.QuestionBankPath)
	if err != nil {
		log.Fatalf("question bank load failed: %v", err)
	}

	engine := interview.NewEngine(brain, bank, interview.EngineConfig{
		MaxQuestions:        cfg.MaxQuestions,
		MinQuestionsToClose: cfg.MinQuestionsToClose,
		DifficultyThreshold: cfg.DifficultyThreshold,
	})
	service := interview.NewService(engine, sessionStore, metrics, interview.ServiceConfig{
		PassCutoff: cfg.PassCutoff,
	})

	api := httpapi.New(cfg, service, metrics, storeMode)
	httpServer := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: api.Router(),
	}

	go func() {
		log.Printf("server listening on %s", cfg.BindAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Printf("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = httpServer.Close()
	}

	log.Printf("shutdown complete")
}
