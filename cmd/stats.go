package cmd

import (
	"fmt"
	"time"

	"github.com/haojie06/dallebot/internal/app"
	"github.com/haojie06/dallebot/internal/discordbot"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print the usage ledger statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		usage, err := app.OpenLedger(cmd.Context(), cfg.Ledger)
		if err != nil {
			return err
		}
		defer usage.Close()

		snapshot, err := usage.Snapshot(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), discordbot.FormatStats(snapshot, time.Now()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
