package cmd

import (
	"encoding/json"
	"os"

	"github.com/brk3/habitpanda/internal/server"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export all habit data as JSON",
	Long: `The "export" command downloads every habit with its check-ins and reminders.
Output goes to the given file, or stdout.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		doc, err := client.Export(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(args) == 1 {
			f, err := os.Create(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace all habit data with a JSON export",
	Long: `The "import" command uploads a previously exported document. Existing data
is replaced and the notification schedule is rebuilt.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		var doc server.ExportDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			return err
		}

		client, err := newClient()
		if err != nil {
			return err
		}
		if err := client.Import(cmd.Context(), &doc); err != nil {
			return err
		}
		cmd.Printf("Imported %d habits\n", len(doc.Habits))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}
