package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/unalkalkan/NovelReader/internal/api"
	"github.com/unalkalkan/NovelReader/internal/cache"
	"github.com/unalkalkan/NovelReader/internal/config"
	"github.com/unalkalkan/NovelReader/internal/export"
	"github.com/unalkalkan/NovelReader/internal/fetch"
	"github.com/unalkalkan/NovelReader/internal/health"
	"github.com/unalkalkan/NovelReader/internal/library"
	"github.com/unalkalkan/NovelReader/internal/logging"
	"github.com/unalkalkan/NovelReader/internal/online"
	"github.com/unalkalkan/NovelReader/internal/parser"
	"github.com/unalkalkan/NovelReader/internal/source"
	"github.com/unalkalkan/NovelReader/internal/storage"
	"github.com/unalkalkan/NovelReader/pkg/types"
)

const version = "0.3.0"

func main() {
	configPath := flag.String("config", "config/dev.example.yaml", "Path to configuration file")
	fontPath := flag.String("pdf-font", os.Getenv("NR_PDF_FONT"), "TrueType font used for PDF export")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	logger, err := logging.Setup(cfg.Log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up logging")
	}
	logger.Info().Str("version", version).Str("config", *configPath).Msg("starting NovelReader server")

	storageAdapter, err := storage.NewAdapter(cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create storage adapter")
	}
	defer storageAdapter.Close()
	logger.Info().Str("adapter", cfg.Storage.Adapter).Msg("storage adapter initialized")

	repo := library.NewRepository(storageAdapter)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := seedSources(ctx, repo, cfg.SourcesFile, logger); err != nil {
		logger.Fatal().Err(err).Msg("failed to seed sources")
	}

	fetcher := fetch.New(fetch.Options{
		Timeout:   time.Duration(cfg.Fetch.TimeoutSeconds) * time.Second,
		UserAgent: cfg.Fetch.UserAgent,
		Logger:    logger.With().Str("component", "fetch").Logger(),
	})

	// The cacher reads through its own service so the scheduler can be
	// handed to the service that serves requests.
	cacheLogger := logger.With().Str("component", "cache").Logger()
	cacher := cache.NewCacher(
		online.NewService(repo, fetcher, online.WithLogger(cacheLogger)),
		repo,
		cfg.Cache.MaxCachedChapters,
		cfg.Cache.MaxContentLength,
		cacheLogger,
	)
	scheduler := cache.NewScheduler(cacher, cache.SchedulerConfig{
		InitialDelay: time.Duration(cfg.Cache.InitialDelayMs) * time.Millisecond,
		MaxRetries:   cfg.Cache.MaxRetries,
		RetryBackoff: time.Duration(cfg.Cache.RetryBackoffMs) * time.Millisecond,
		Workers:      cfg.Cache.Workers,
	}, cacheLogger)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	service := online.NewService(repo, fetcher,
		online.WithScheduler(scheduler),
		online.WithLogger(logger.With().Str("component", "online").Logger()),
	)

	healthHandler := health.NewHandler(version)
	healthHandler.Register("storage", health.StorageCheck(storageAdapter))
	healthHandler.Register("sources", health.SourcesCheck(repo))

	apiLogger := logger.With().Str("component", "api").Logger()
	mux := api.NewRouter(
		api.NewBookHandler(repo, parser.NewFactory(), export.Options{FontPath: *fontPath}, apiLogger),
		api.NewSourceHandler(repo, service, apiLogger),
		api.NewOnlineHandler(service, repo, apiLogger),
	)

	mux.HandleFunc("/health/live", healthHandler.LivenessHandler())
	mux.HandleFunc("/health/ready", healthHandler.ReadinessHandler())
	mux.HandleFunc("/health", healthHandler.HealthHandler())
	mux.HandleFunc("GET /api/v1/info", infoHandler(version, cfg))

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      api.LogRequests(mux, apiLogger),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info().Str("addr", addr).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server stopped")
}

// seedSources stores the built-in example sources on first start and then
// the sources listed in sourcesFile, if any
func seedSources(ctx context.Context, repo library.Repository, sourcesFile string, logger zerolog.Logger) error {
	seeded, err := repo.SeedSources(ctx, library.DefaultSources())
	if err != nil {
		return err
	}
	if seeded {
		logger.Info().Msg("default sources seeded")
	}

	if sourcesFile == "" {
		return nil
	}
	f, err := os.Open(sourcesFile)
	if err != nil {
		return fmt.Errorf("failed to open sources file: %w", err)
	}
	defer f.Close()

	sources, err := source.ReadYAML(f)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", sourcesFile, err)
	}
	for i := range sources {
		if err := repo.SaveSource(ctx, &sources[i]); err != nil {
			return err
		}
	}
	logger.Info().Int("count", len(sources)).Str("file", sourcesFile).Msg("sources loaded")
	return nil
}

// infoHandler returns basic server information
func infoHandler(version string, cfg *types.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"version":             version,
			"storage_adapter":     cfg.Storage.Adapter,
			"max_cached_chapters": cfg.Cache.MaxCachedChapters,
			"formats":             types.FileTypes(),
		})
	}
}
