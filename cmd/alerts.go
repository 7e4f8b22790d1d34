package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"poolkeeper/internal/bootstrap"
	"poolkeeper/internal/bootstrap/logging"
	"poolkeeper/internal/errs"
)

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Alert scheduler commands",
}

var alertsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Evaluate every alert once and send the ones that are due",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		summary, err := app.Scheduler.Tick(ctx)
		if err != nil {
			return errs.Wrap(err, "check alerts")
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(summary); err != nil {
				return errs.Wrap(err, "write alerts check output")
			}
			return nil
		}

		if _, err := fmt.Fprintf(
			cmd.OutOrStdout(),
			"alerts evaluated=%d fired=%d sent=%d undelivered=%d skipped_empty=%d skipped_owner=%d failed=%d\n",
			summary.Evaluated,
			summary.Fired,
			summary.Sent,
			summary.Undelivered,
			summary.SkippedEmpty,
			summary.SkippedOwner,
			summary.Failed,
		); err != nil {
			return errs.Wrap(err, "write alerts check output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(alertsCmd)
	alertsCmd.AddCommand(alertsCheckCmd)

	alertsCheckCmd.Flags().Bool("json", false, "Print the tick summary as JSON")
}
