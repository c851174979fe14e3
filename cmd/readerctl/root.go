package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/unalkalkan/NovelReader/internal/fetch"
	"github.com/unalkalkan/NovelReader/internal/library"
	"github.com/unalkalkan/NovelReader/internal/logging"
	"github.com/unalkalkan/NovelReader/internal/online"
	"github.com/unalkalkan/NovelReader/internal/source"
	"github.com/unalkalkan/NovelReader/internal/storage"
	"github.com/unalkalkan/NovelReader/pkg/types"
)

var (
	flagDataDir     string
	flagSourcesFile string
	flagLogLevel    string
	flagTimeout     time.Duration
	flagUserAgent   string
)

var rootCmd = &cobra.Command{
	Use:   "readerctl",
	Short: "readerctl parses e-books and reads novels from configured sites",
	Long: `readerctl works with the same library as the NovelReader server.

It imports and exports local TXT, EPUB and MOBI files, searches the
enabled online sources and detects selectors for new sites.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	home, _ := os.UserHomeDir()
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data", filepath.Join(home, ".novelreader"), "Library directory")
	rootCmd.PersistentFlags().StringVar(&flagSourcesFile, "sources", "", "YAML file of sources to load before running")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().DurationVar(&flagTimeout, "timeout", fetch.DefaultTimeout, "Timeout for each page request")
	rootCmd.PersistentFlags().StringVar(&flagUserAgent, "user-agent", fetch.DefaultUserAgent, "User-Agent sent to sites")
}

// env holds what the commands share
type env struct {
	logger  zerolog.Logger
	repo    *library.StorageRepository
	service *online.Service
}

// setup opens the library, loads --sources and builds the online service
func setup(cmd *cobra.Command) (*env, error) {
	logger, err := logging.Setup(types.LogConfig{Level: flagLogLevel, Format: "console"})
	if err != nil {
		return nil, err
	}

	adapter, err := storage.NewLocalAdapter(flagDataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open library: %w", err)
	}
	repo := library.NewRepository(adapter)

	if flagSourcesFile != "" {
		f, err := os.Open(flagSourcesFile)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		sources, err := source.ReadYAML(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", flagSourcesFile, err)
		}
		for i := range sources {
			if err := repo.SaveSource(cmd.Context(), &sources[i]); err != nil {
				return nil, err
			}
		}
		logger.Debug().Int("count", len(sources)).Msg("sources loaded")
	}

	fetcher := fetch.New(fetch.Options{
		Timeout:   flagTimeout,
		UserAgent: flagUserAgent,
		Logger:    logger,
	})
	return &env{
		logger:  logger,
		repo:    repo,
		service: online.NewService(repo, fetcher, online.WithLogger(logger)),
	}, nil
}
