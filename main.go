package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"jsvensson/matdeals/config"
	"jsvensson/matdeals/helpers"
	"jsvensson/matdeals/internal/scraper"
	"jsvensson/matdeals/logger"
	"jsvensson/matdeals/services/browser"
	"jsvensson/matdeals/services/cache"
	"jsvensson/matdeals/services/exporter"
	"jsvensson/matdeals/services/publisher"
	"jsvensson/matdeals/services/worker"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Dur("scrape_interval", cfg.ScrapeInterval).
		Int("stores", len(cfg.Stores)).
		Msg("Starting application")

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Initialize services
	services, err := initializeServices(ctx, &cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}
	defer services.Cleanup()

	// Wire the extraction pipeline onto the shared browser page
	page := services.Browser.Page()
	session := scraper.NewSession(scraper.NewRodPage(page), &cfg)
	pubClient := scraper.NewPublicationClient(
		cfg.PublicationAPIBase,
		cfg.MaxPublicationPages,
		cfg.PublicationBlockTime,
		services.Cache,
	)
	orch := scraper.NewOrchestrator(session, page, pubClient, &cfg)

	w := worker.NewWorker(
		ctx,
		orch,
		exporter.NewFileExporter(cfg.OutputPath),
		services.Publisher,
		helpers.NewLogger("scrape_errors.log"),
		cfg.ScrapeInterval,
	)

	// Start worker in a goroutine
	workerDone := make(chan error, 1)
	go func() {
		log.Info().Msg("Starting offer scraper")
		workerDone <- w.Start()
	}()

	// Wait for shutdown signal or worker completion
	select {
	case sig := <-sigChan:
		log.Info().
			Str("signal", sig.String()).
			Msg("Received shutdown signal")
		cancel()
	case err := <-workerDone:
		if err != nil && err != context.Canceled {
			log.Error().Err(err).Msg("Worker exited with error")
		} else {
			log.Info().Msg("Worker exited normally")
		}
	}

	// Graceful shutdown
	log.Info().Msg("Shutting down gracefully...")
}

// Services holds all the initialized services
type Services struct {
	Browser   *browser.Service
	Cache     cache.CacheService
	Publisher publisher.Publisher
}

// Cleanup cleans up all services
func (s *Services) Cleanup() {
	if s.Publisher != nil {
		s.Publisher.Close()
	}
	if s.Browser != nil {
		s.Browser.Close()
	}
}

// initializeServices initializes all required services
func initializeServices(ctx context.Context, cfg *config.Config) (*Services, error) {
	services := &Services{}

	// A failed browser launch is fatal: nothing can run without a session.
	b, err := browser.New(cfg)
	if err != nil {
		return nil, err
	}
	services.Browser = b

	services.Cache = cache.NewMemcacheService(cfg.MemcacheAddr)
	logger.Info("Using Memcache at %s for publication rate limiting", cfg.MemcacheAddr)

	// Publishing is optional; without a Redis address offers only go to the
	// output file.
	if cfg.RedisAddr != "" {
		services.Publisher = publisher.NewRedisPublisher(
			ctx,
			cfg.RedisAddr,
			cfg.RedisDB,
			cfg.RedisStreamPrefix,
			cfg.RedisStreamCount,
			cfg.RedisStreamMaxLength,
		)
		logger.Info("Connected to Redis at %s (DB: %d, Stream prefix: %s)",
			cfg.RedisAddr, cfg.RedisDB, cfg.RedisStreamPrefix)
	}

	return services, nil
}
