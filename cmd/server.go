package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/brk3/habitpanda/internal/config"
	"github.com/brk3/habitpanda/internal/logger"
	"github.com/brk3/habitpanda/internal/remind"
	"github.com/brk3/habitpanda/internal/server"
	"github.com/brk3/habitpanda/internal/storage/bolt"
	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return startServer(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}

func startServer(ctx context.Context) error {
	logger.Init(slog.LevelInfo)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, err := bolt.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	reminders := remind.NewService(store, remind.NewMemoryBackend())
	if cfg.MaxReminderNotifications > 0 {
		reminders.WithMaxOccurrences(cfg.MaxReminderNotifications)
	}
	if scheduled, err := reminders.Rebuild(ctx); err != nil {
		logger.Warn("Initial notification rebuild failed", "error", err)
	} else {
		logger.Info("Initial notification rebuild complete", "scheduled", scheduled)
	}

	srv := server.New(store, cfg, reminders)
	if cfg.AuthEnabled {
		providers, cookie, err := server.ConfigureOIDCProviders(ctx, cfg)
		if err != nil {
			return fmt.Errorf("configure auth: %w", err)
		}
		srv.WithAuth(providers, cookie)
	}

	logger.Info("Starting server", "addr", cfg.ListenAddr, "auth_enabled", cfg.AuthEnabled)
	return http.ListenAndServe(cfg.ListenAddr, srv.Router())
}
