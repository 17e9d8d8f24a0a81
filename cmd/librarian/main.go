// Package main is the entry point for the librarian Discord bot.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tanevanwifferen/librarian-discord-bot/internal/access"
	"github.com/tanevanwifferen/librarian-discord-bot/internal/config"
	"github.com/tanevanwifferen/librarian-discord-bot/internal/cron"
	"github.com/tanevanwifferen/librarian-discord-bot/internal/discord"
	"github.com/tanevanwifferen/librarian-discord-bot/internal/interaction"
	"github.com/tanevanwifferen/librarian-discord-bot/internal/library"
	"github.com/tanevanwifferen/librarian-discord-bot/internal/ops"
	"github.com/tanevanwifferen/librarian-discord-bot/internal/telemetry"
)

// Set by goreleaser ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "librarian",
		Short:         "A Discord bot that answers questions about your document library",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(versionCmd(), startCmd(), configCmd())
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("librarian %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}

func startCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the bot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")

			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}

			return run(cfg)
		},
	}
	cmd.Flags().StringP("config", "c", "", "Path to configuration file")
	return cmd
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Validate configuration and the allow-list document",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load("")
			if err != nil {
				return err
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}

			logger := newLogger(cfg.LogLevel)
			contexts := access.Load(logger)

			fmt.Println("Configuration OK")
			if contexts.Absent() {
				fmt.Println("Allow-list: absent (allowing everywhere)")
			} else {
				fmt.Printf("Allow-list: %s (%d guilds)\n", contexts.Source(), contexts.Guilds())
			}
			fmt.Printf("Default policy for unlisted guilds: allow=%v\n", cfg.Access.Allow())
			return nil
		},
	})
	return cmd
}

// run wires the process together and blocks until a shutdown signal.
func run(cfg *config.Config) error {
	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	shutdownTracing, err := telemetry.Setup("librarian", version, cfg.Trace, os.Stdout)
	if err != nil {
		return err
	}

	// The allow-list is loaded exactly once and threaded through by
	// reference; nothing reloads or mutates it afterwards.
	contexts := access.Load(logger)

	libClient := library.NewClient(cfg.Library.URL, cfg.Library.Token)
	handlers := library.NewHandlers(libClient, logger)

	router := interaction.NewRouter(interaction.Config{
		Contexts:     contexts,
		DefaultAllow: cfg.Access.Allow(),
		ContactID:    cfg.Discord.ContactID,
		Subcommands:  handlers.Subcommands(),
		Actions:      handlers.Actions(),
		Logger:       logger,
	})

	session, err := discord.New(cfg.Discord.Token, cfg.Discord.AppID, router, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := session.Open(ctx); err != nil {
		return err
	}

	opsSrv := ops.NewServer(cfg.Ops.Addr, contexts, libClient, logger)
	opsSrv.Start()

	scheduler := cron.NewScheduler(logger)
	if err := scheduler.RegisterJob(&cron.BackendProbeJob{
		Library:  libClient,
		Presence: session,
		Logger:   logger,
	}); err != nil {
		return err
	}
	if err := scheduler.Start(); err != nil {
		return err
	}

	logger.Info("librarian started", "version", version)
	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := scheduler.Stop(shutdownCtx); err != nil {
		logger.Warn("scheduler stop failed", "error", err)
	}
	if err := session.Close(); err != nil {
		logger.Warn("discord close failed", "error", err)
	}
	if err := opsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("ops shutdown failed", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("tracing shutdown failed", "error", err)
	}
	return nil
}

// newLogger builds the process logger at the configured level.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: lvl,
	}))
}
