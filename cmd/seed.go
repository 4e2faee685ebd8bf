package cmd

import (
	"time"

	"github.com/brk3/habitpanda/internal/seed"
	"github.com/brk3/habitpanda/internal/server"
	"github.com/brk3/habitpanda/pkg/habit"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Replace all data with a deterministic demo dataset",
	Long: `The "seed" command installs a small demo dataset: six habits with 20 days
of check-in history and a couple of reminders. Existing data is replaced.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		habits, checkIns, reminders := seed.Data(time.Now())

		byHabit := func(habitID uuid.UUID) (cs []habit.CheckIn, rs []habit.Reminder) {
			for _, c := range checkIns {
				if c.HabitUUID == habitID {
					cs = append(cs, c)
				}
			}
			for _, r := range reminders {
				if r.HabitUUID == habitID {
					rs = append(rs, r)
				}
			}
			return cs, rs
		}

		doc := server.ExportDocument{Habits: make([]server.ExportHabit, 0, len(habits))}
		for _, h := range habits {
			cs, rs := byHabit(h.UUID)
			doc.Habits = append(doc.Habits, server.ExportHabit{Habit: h, CheckIns: cs, Reminders: rs})
		}

		client, err := newClient()
		if err != nil {
			return err
		}
		if err := client.Import(cmd.Context(), &doc); err != nil {
			return err
		}
		cmd.Printf("Seeded %d habits, %d check-ins, %d reminders\n",
			len(habits), len(checkIns), len(reminders))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
