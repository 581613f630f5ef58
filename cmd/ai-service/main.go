// cmd/ai-service/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"agrimarket-ai/internal/cache"
	"agrimarket-ai/internal/capabilities/analysis"
	"agrimarket-ai/internal/capabilities/generation"
	"agrimarket-ai/internal/capabilities/image"
	"agrimarket-ai/internal/capabilities/intelligence"
	"agrimarket-ai/internal/common/aws"
	"agrimarket-ai/internal/common/config"
	"agrimarket-ai/internal/common/database"
	"agrimarket-ai/internal/common/logger"
	"agrimarket-ai/internal/common/providers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)
	log.Info("starting ai service", map[string]interface{}{
		"name":        cfg.App.Name,
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Redis is optional: without it the service runs uncached.
	var redisClient *database.RedisClient
	if cfg.Database.Redis.Address != "" {
		redisClient, err = connectRedis(ctx, cfg.Database.Redis, log)
		if err != nil {
			log.Warn("redis unavailable, running uncached", map[string]interface{}{"error": err.Error()})
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	var store *cache.Store
	if redisClient != nil {
		store = cache.NewStore(redisClient.GetClient(), log)
	} else {
		store = cache.NewStore(nil, log)
	}

	// Postgres is optional: without it reports are served but not persisted.
	var reportStore *intelligence.ReportStore
	if cfg.Database.Postgres.Host != "" {
		pg, err := connectPostgres(ctx, cfg.Database.Postgres, log)
		if err != nil {
			log.Warn("postgres unavailable, reports will not be persisted", map[string]interface{}{"error": err.Error()})
		} else {
			defer pg.Close()
			reportStore = intelligence.NewReportStore(pg.DB, log)
		}
	}

	var alertPublisher intelligence.AlertPublisher
	if cfg.Alerts.SNS.Enabled {
		snsClient, err := aws.NewSNSClient(ctx, cfg.Alerts.SNS.Region, cfg.Alerts.SNS.TopicARN, log)
		if err != nil {
			log.Warn("sns unavailable, alerts will not be published", map[string]interface{}{"error": err.Error()})
		} else {
			alertPublisher = snsClient
		}
	}

	generative := providers.NewGenerativeClient(cfg.Providers.Generative, log)
	providerSet := providers.Set{
		Text:     generative,
		Vision:   generative,
		Images:   generative,
		Research: providers.NewResearchClient(cfg.Providers.Research, log),
		Stock:    providers.NewStockPhotoClient(cfg.Providers.StockPhoto, log),
		Hosting:  providers.NewHostingClient(cfg.Providers.Hosting, log),
	}

	generationHandler := generation.NewHandler(providerSet.Text, store, log)
	imageHandler := image.NewHandler(providerSet.Images, providerSet.Stock, providerSet.Hosting, store, log)
	analysisHandler := analysis.NewHandler(providerSet.Vision, providerSet.Research, store, log)
	intelligenceHandler := intelligence.NewHandler(providerSet.Research, store, reportStore, alertPublisher, log)

	api := newAPIServer(apiDeps{
		generation:   generationHandler,
		image:        imageHandler,
		analysis:     analysisHandler,
		intelligence: intelligenceHandler,
		logger:       log,
	})

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	api.register(mux)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.MetricsPort),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("http server listening", map[string]interface{}{"addr": server.Addr})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server failed", map[string]interface{}{"error": err.Error()})
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", map[string]interface{}{"error": err.Error()})
	}
}

// connectRedis pings with bounded retry so a briefly unavailable backend
// does not kill startup.
func connectRedis(ctx context.Context, cfg config.RedisConfig, log logger.Logger) (*database.RedisClient, error) {
	client, err := database.NewRedis(cfg)
	if err != nil {
		return nil, err
	}

	if err := retryWithBackoff(ctx, 3, func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		return client.Ping(pingCtx)
	}); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

func connectPostgres(ctx context.Context, cfg config.PostgresConfig, log logger.Logger) (*database.PostgresClient, error) {
	client, err := database.NewPostgres(cfg)
	if err != nil {
		return nil, err
	}

	if err := retryWithBackoff(ctx, 3, func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		return client.Ping(pingCtx)
	}); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

func retryWithBackoff(ctx context.Context, attempts int, fn func() error) error {
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}
		backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}
