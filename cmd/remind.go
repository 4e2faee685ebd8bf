package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/brk3/habitpanda/internal/config"
	"github.com/brk3/habitpanda/internal/remind"
	"github.com/brk3/habitpanda/internal/remind/resend"
	"github.com/brk3/habitpanda/pkg/habit"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var remindDigest bool

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Rebuild the reminder notification schedule",
	Long: `The "remind" command asks the server to rebuild its notification schedule
from the current reminder definitions, then prints a report. With --digest it
also emails the upcoming occurrences via Resend (requires resend_api_key,
notify_from and notify_email in config, or HABITPANDA_RESEND_API_KEY).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		scheduled, err := client.RebuildNotifications(cmd.Context())
		if err != nil {
			return err
		}
		report, err := client.NotificationReport(cmd.Context())
		if err != nil {
			return err
		}
		cmd.Printf("Scheduled %d occurrences (%d habits with reminders, %d pending, %d delivered)\n",
			scheduled, report.HabitsWithReminders, report.PendingCount, report.DeliveredCount)

		if !remindDigest {
			return nil
		}
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		apiKey := cfg.ResendAPIKey
		if envKey := os.Getenv("HABITPANDA_RESEND_API_KEY"); envKey != "" {
			apiKey = envKey
		}
		if apiKey == "" || cfg.NotifyEmail == "" {
			return fmt.Errorf("digest requires a resend api key and notify_email")
		}

		doc, err := client.Export(cmd.Context())
		if err != nil {
			return err
		}
		habitsByID := make(map[uuid.UUID]habit.Habit)
		var reminders []habit.Reminder
		for _, eh := range doc.Habits {
			habitsByID[eh.UUID] = eh.Habit
			reminders = append(reminders, eh.Reminders...)
		}
		projected := remind.ScheduleOccurrences(
			reminders, habitsByID, time.Now(), habit.MaxReminderNotificationCount)
		notifier := &resend.Notifier{APIKey: apiKey, From: cfg.NotifyFrom, Email: cfg.NotifyEmail}
		if err := notifier.SendScheduleDigest(projected); err != nil {
			return err
		}
		cmd.Printf("Emailed digest of %d occurrences to %s\n", len(projected), cfg.NotifyEmail)
		return nil
	},
}

func init() {
	remindCmd.Flags().BoolVar(&remindDigest, "digest", false, "email the schedule digest")
	rootCmd.AddCommand(remindCmd)
}
