package cmd

import (
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List habits",
	Long:  `The "list" command shows your tracked habits in display order.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		habits, err := client.ListHabits(cmd.Context())
		if err != nil {
			return err
		}
		for _, h := range habits {
			cmd.Printf("%s  %s (%d/week)\n", h.UUID, h.Name, h.FrequencyPerWeek)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
