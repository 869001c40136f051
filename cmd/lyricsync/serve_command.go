package main

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"lyricsync/internal/config"
	"lyricsync/internal/logging"
	"lyricsync/internal/media/tags"
	"lyricsync/internal/preflight"
	"lyricsync/internal/runlog"
	"lyricsync/internal/server"
	"lyricsync/internal/staging"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if bind = strings.TrimSpace(bind); bind != "" {
				cfg.Paths.APIBind = bind
			}
			return runServer(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "Listen address (default paths.api_bind)")
	return cmd
}

func runServer(parent context.Context, cfg *config.Config) error {
	if parent == nil {
		parent = context.Background()
	}
	signalCtx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	lock := flock.New(cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another lyricsync server is running (lock %s)", cfg.LockPath())
	}
	defer lock.Unlock()

	logger, err := logging.NewFromConfig(cfg, true)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logging.CleanupOldLogs(logger, cfg.Paths.LogDir, cfg.Logging.RetentionDays)

	for _, check := range preflight.Failed(preflight.RunAll(signalCtx, cfg)) {
		logging.WarnWithContext(logger, "preflight check failed", "preflight_failed",
			logging.String("check", check.Name),
			logging.String("detail", check.Detail),
			logging.String(logging.FieldImpact, "requests depending on it will fail"),
			logging.String(logging.FieldErrorHint, "run `lyricsync status` for details"),
		)
	}

	store, err := runlog.Open(cfg.RunLogPath())
	if err != nil {
		return fmt.Errorf("open run ledger: %w", err)
	}
	defer store.Close()

	policies, err := policiesFrom(cfg)
	if err != nil {
		return err
	}
	runner, err := newRunner(cfg, store, logger)
	if err != nil {
		return err
	}

	sweeper := &staging.Sweeper{
		Dir:      cfg.Paths.StagingDir,
		MaxAge:   cfg.StagingMaxAge(),
		Interval: cfg.SweepInterval(),
		Pruner:   store,
		Logger:   logger,
	}
	go sweeper.Run(signalCtx)

	srv := server.New(server.Options{
		StagingDir:    cfg.Paths.StagingDir,
		APIToken:      cfg.Paths.APIToken,
		CORSOrigins:   cfg.Server.CORSOrigins,
		MaxUploadMB:   cfg.Server.MaxUploadMB,
		Version:       version,
		Centiseconds:  policies.centiseconds,
		DefaultFormat: cfg.Output.DefaultFormat,
	}, runner, tags.NewEmbedder(cfg.FFmpegBinary(), logger), store, logger)

	logger.Info("lyricsync server starting",
		logging.String("version", version),
		logging.String("bind", cfg.Paths.APIBind),
		logging.String("lock", cfg.LockPath()),
	)
	err = srv.ListenAndServe(signalCtx, cfg.Paths.APIBind)
	logger.Info("lyricsync server stopped")
	return err
}
