package cmd

import (
	"os"

	"github.com/brk3/habitpanda/internal/apiclient"
	"github.com/brk3/habitpanda/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "habitpanda",
	Short: "Track habits with weekly targets, check-in grids and reminders",
	Long: `
	HabitPanda tracks activities against a weekly frequency target: check in on
	a habit, see its day-state grid and rolling trend, and schedule recurring
	reminder notifications. Most commands talk to a running habitpanda server.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newClient builds an API client from config; HABITPANDA_TOKEN supplies the
// Bearer token when the server has auth enabled.
func newClient() (*apiclient.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	c := apiclient.New(cfg.APIBaseURL)
	c.Token = os.Getenv("HABITPANDA_TOKEN")
	return c, nil
}
