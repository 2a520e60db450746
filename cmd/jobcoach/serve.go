package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/jobcoach/jobcoach/internal/config"
	"github.com/jobcoach/jobcoach/internal/db"
	"github.com/jobcoach/jobcoach/internal/gateway"
	"github.com/jobcoach/jobcoach/internal/llm"
	"github.com/jobcoach/jobcoach/internal/observability"
	"github.com/jobcoach/jobcoach/internal/server"
	"github.com/jobcoach/jobcoach/internal/server/ratelimit"
	"github.com/spf13/cobra"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server exposing one POST endpoint per AI use case under /v1/.
When DATABASE_URL is set the application and contact routes are mounted as well.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	logger := observability.NewLogger(os.Stderr, observability.ParseLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !cfg.LLM().Configured() {
		logger.Warn("AI credential is not set; adapter requests will fail until it is configured",
			"provider", cfg.AIProvider)
	}

	caller, err := llm.NewCaller(ctx, cfg.LLM(), logger)
	if err != nil {
		return fmt.Errorf("failed to create AI caller: %w", err)
	}
	if closer, ok := caller.(io.Closer); ok {
		defer func() { _ = closer.Close() }()
	}

	opts := server.Options{
		Adapter: gateway.New(caller, logger),
		Limiter: ratelimit.NewLimiter(ratelimit.LoadConfig()),
		Logger:  logger,
	}

	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer database.Close()

		jwtConfig, err := config.NewJWTConfig(cfg)
		if err != nil {
			return fmt.Errorf("failed to create JWT config: %w", err)
		}
		opts.Store = database
		opts.Tokens = server.NewJWTService(jwtConfig).AsTokenValidator()
		logger.Info("record routes enabled")
	}

	return server.New(cfg.Addr(), opts).Run(ctx)
}
