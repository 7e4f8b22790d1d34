package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"poolkeeper/internal/bootstrap"
	"poolkeeper/internal/bootstrap/logging"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API and run the alert scheduler until interrupted",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		if migrate, _ := cmd.Flags().GetBool("migrate"); migrate {
			if err := app.InitSchema(ctx); err != nil {
				return err
			}
		}

		logging.Info(ctx, "serving",
			slog.String("addr", app.Config.HTTP.Addr),
			slog.Bool("scheduler_enabled", app.Config.Scheduler.Enabled),
		)
		<-ctx.Done()
		logging.Info(ctx, "shutdown requested")
		return nil
	}, bootstrap.ServeModule),
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Bool("migrate", false, "Run init-db before serving")
}
