// Package cli provides the command-line entrypoint for the dashboard
// service.
package cli

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"deribit-dashboard/internal/cache"
	"deribit-dashboard/internal/chain"
	"deribit-dashboard/internal/config"
	"deribit-dashboard/internal/deribit"
	"deribit-dashboard/internal/server"
)

// Version information
const (
	Version = "0.1.0"
)

// App holds the application dependencies.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewRootCmd creates the root command.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{Config: cfg, Logger: logger}

	rootCmd := &cobra.Command{
		Use:   "optdash",
		Short: "Crypto options seller dashboard API",
		Long: `optdash serves options-market data from Deribit as a JSON API:
options chain with quotes and Greeks, IV smile series, and short-position
payoff curves with risk metrics.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newServeCmd(app))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newServeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(app)
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "optdash %s\n", Version)
		},
	}
}

func runServe(app *App) error {
	cfg := app.Config
	logger := app.Logger

	var store cache.Store
	switch cfg.Cache.Backend {
	case "redis":
		redisStore, err := cache.NewRedis(cfg.Cache.RedisURL, logger)
		if err != nil {
			return fmt.Errorf("initializing redis cache: %w", err)
		}
		defer redisStore.Close()
		store = redisStore
		logger.Info().Msg("using redis cache backend")
	default:
		store = cache.NewMemory()
	}

	client := deribit.NewClient(logger,
		deribit.WithBaseURL(cfg.Deribit.BaseURL),
		deribit.WithHTTPClient(&http.Client{Timeout: cfg.Deribit.Timeout}),
	)
	market := deribit.NewMarketData(client, store, logger, cfg.Cache.SpotTTL, cfg.Cache.ChainTTL)
	enricher := chain.NewEnricher(market, logger, cfg.Enrich.Workers)

	srv := server.New(cfg.Server.Listen, market, enricher, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx, cfg.Server.ShutdownTimeout)
}
