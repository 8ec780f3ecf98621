package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/acmutd/grades-api/internal/config"
	"github.com/acmutd/grades-api/internal/dataset"
	"github.com/acmutd/grades-api/internal/firebase"
	"github.com/acmutd/grades-api/internal/logging"
	"github.com/acmutd/grades-api/internal/query"
	"github.com/acmutd/grades-api/internal/server"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func init() {
	if _, err := os.Stat("/.dockerenv"); os.IsNotExist(err) {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Fatalf("error loading .env file: %v\n", err)
		}
	}
	log.SetPrefix("[grades-api] ")
}

func gracefulShutdown(apiServer *http.Server, cfg *config.Config, logger *zap.Logger, done chan bool) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Listen for the interrupt signal.
	<-ctx.Done()

	logger.Info("shutting down gracefully, press Ctrl+C again to force")
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownPeriod)
	defer cancel()
	if err := apiServer.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exiting")

	done <- true
}

// openSources connects only the remote backend the configuration selects.
func openSources(ctx context.Context, cfg *config.Config) (dataset.Sources, error) {
	var sources dataset.Sources
	if cfg.Source == config.SourceFile {
		return sources, nil
	}

	app, err := firebase.NewApp(ctx, cfg.FirebaseConfig)
	if err != nil {
		return sources, err
	}

	switch cfg.Source {
	case config.SourceStorage:
		storage, err := firebase.NewCloudStorage(ctx, app)
		if err != nil {
			return sources, err
		}
		sources.Storage = storage
	case config.SourceFirestore:
		db, err := firebase.NewFirestore(ctx, app)
		if err != nil {
			return sources, err
		}
		sources.Firestore = db
	}
	return sources, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v\n", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("error initializing logger: %v\n", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	sources, err := openSources(ctx, cfg)
	if err != nil && cfg.FailOnLoadError {
		logger.Fatal("error initializing dataset source", zap.String("source", cfg.Source), zap.Error(err))
	} else if err != nil {
		logger.Error("error initializing dataset source", zap.String("source", cfg.Source), zap.Error(err))
	}

	snap, err := dataset.Open(ctx, cfg, sources, logger)
	if err != nil {
		logger.Fatal("cannot serve without a dataset", zap.Error(err))
	}

	// The snapshot is in memory now; the remote client is not needed again.
	if db, ok := sources.Firestore.(*firebase.Firestore); ok {
		db.Close()
	}

	queries := query.NewService(snap, cfg.SuggestTTL)
	apiServer := server.NewServer(cfg, queries, logger)

	done := make(chan bool, 1)
	go gracefulShutdown(apiServer, cfg, logger, done)

	logger.Info("server listening",
		zap.String("addr", apiServer.Addr),
		zap.String("allowed_origin", cfg.AllowedOrigin),
		zap.Bool("fail_on_load_error", cfg.FailOnLoadError),
	)

	if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("http server error", zap.Error(err))
	}

	<-done
	logger.Info("graceful shutdown complete")
}
