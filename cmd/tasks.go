package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"poolkeeper/internal/bootstrap"
	"poolkeeper/internal/errs"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Maintenance task commands",
}

var tasksBackfillCmd = &cobra.Command{
	Use:   "backfill-history",
	Short: "Create history rows for completions recorded before history existed",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		inserted, err := app.Tasks.BackfillHistory(cmd.Context())
		if err != nil {
			return errs.Wrap(err, "backfill completion history")
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "history rows inserted: %d\n", inserted); err != nil {
			return errs.Wrap(err, "write backfill output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(tasksCmd)
	tasksCmd.AddCommand(tasksBackfillCmd)
}
