package cmd

import (
	"fmt"
	"strings"

	"github.com/brk3/habitpanda/pkg/habit"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	checkInDate  string
	checkInValue string
)

var checkInCmd = &cobra.Command{
	Use:   "checkin <habit-id-or-name>",
	Short: "Record a check-in for a habit",
	Long: `The "checkin" command records that a habit was performed. The habit can be
given by uuid or by (case-insensitive) name. Use --date to backdate and
--value for non-binary habits, e.g. --value grade_a or --value day_off.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		habitID, err := uuid.Parse(args[0])
		if err != nil {
			habits, err := client.ListHabits(cmd.Context())
			if err != nil {
				return err
			}
			found := false
			for _, h := range habits {
				if strings.EqualFold(h.Name, args[0]) {
					habitID, found = h.UUID, true
					break
				}
			}
			if !found {
				return fmt.Errorf("no habit named %q", args[0])
			}
		}

		c, err := client.AddCheckIn(cmd.Context(), habitID, checkInDate, habit.CheckInValue(checkInValue))
		if err != nil {
			return err
		}
		cmd.Printf("Checked in %s on %s (%s)\n",
			c.HabitUUID, c.CheckInDate.Format("2006-01-02"), c.Value)
		return nil
	},
}

func init() {
	checkInCmd.Flags().StringVar(&checkInDate, "date", "", "check-in date (YYYY-MM-DD, default today)")
	checkInCmd.Flags().StringVar(&checkInValue, "value", string(habit.CheckInValueSuccess), "check-in value")
	rootCmd.AddCommand(checkInCmd)
}
