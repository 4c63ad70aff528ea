package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-editor/internal/config"
	"github.com/jonathan/resume-editor/internal/db"
	"github.com/jonathan/resume-editor/internal/drafts"
	"github.com/jonathan/resume-editor/internal/editor"
	"github.com/jonathan/resume-editor/internal/history"
	"github.com/jonathan/resume-editor/internal/logger"
	"github.com/jonathan/resume-editor/internal/pagination"
	"github.com/jonathan/resume-editor/internal/server"
	"github.com/jonathan/resume-editor/internal/server/ratelimit"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes document migration, pagination and editing sessions.

Storage is optional: DATABASE_URL enables durable documents (PostgreSQL), REDIS_ADDR enables
draft autosave (Redis). When JWT_SECRET is set, document routes require a bearer token.`,
	RunE: runServe,
}

var (
	servePort  int
	serveDBURL string
	serveRedis string
)

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", config.DefaultPort, "Port to listen on")
	serveCmd.Flags().StringVar(&serveDBURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	serveCmd.Flags().StringVar(&serveRedis, "redis-addr", "", "Redis address for drafts (optional, defaults to REDIS_ADDR env var)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = serveDBURL
	}
	if cmd.Flags().Changed("redis-addr") {
		cfg.RedisAddr = serveRedis
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := newLogger(cfg, true)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := server.Deps{
		Registry: newRegistry(cfg, log),
		Logger:   log,
	}

	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer database.Close()
		if err := database.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("failed to prepare database: %w", err)
		}
		deps.Store = database
	} else {
		log.Warn("DATABASE_URL not set, documents live only in open sessions")
	}

	if cfg.RedisAddr != "" {
		store, err := drafts.Connect(ctx, cfg.RedisAddr, cfg.DraftTTL(), log)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer func() { _ = store.Close() }()
		deps.Drafts = store
	}

	if os.Getenv("JWT_SECRET") != "" {
		jwtCfg, err := config.NewJWTConfig()
		if err != nil {
			return fmt.Errorf("invalid JWT configuration: %w", err)
		}
		deps.Tokens = server.NewJWTService(jwtCfg).AsTokenValidator()
	} else {
		log.Warn("JWT_SECRET not set, document routes are unauthenticated")
	}

	if rlCfg := ratelimit.LoadConfig(); rlCfg.Enabled {
		deps.Limiter = ratelimit.NewLimiter(rlCfg)
	}

	return server.New(cfg, deps).Run(ctx)
}

// newRegistry configures editing sessions from cfg. Sessions share one
// pagination engine; it holds no per-document state.
func newRegistry(cfg config.Config, log *logger.Logger) *editor.Registry {
	engine := pagination.New(cfg.PageCapacity,
		pagination.WithMaxIterations(cfg.MaxIterations),
		pagination.WithLogger(log),
	)
	return editor.NewRegistry(
		editor.WithLogger(log),
		editor.WithEngine(engine),
		editor.WithHistory(
			history.WithDelay(cfg.HistoryDebounce()),
			history.WithMaxLength(cfg.HistoryMaxLength),
		),
	)
}
