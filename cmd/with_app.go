package cmd

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"poolkeeper/internal/bootstrap"
	"poolkeeper/internal/bootstrap/logging"
	"poolkeeper/internal/errs"
)

const (
	appStartTimeout = 10 * time.Second
	appStopTimeout  = 10 * time.Second
)

type appRunner func(cmd *cobra.Command, app *bootstrap.App) error

// withApp wires the poolkeeper graph for one command. Components in extra, such as
// bootstrap.ServeModule, start before run and stop after it returns.
func withApp(run appRunner, extra ...fx.Option) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := logging.WithAttrs(
			cmd.Context(),
			slog.String("command", cmd.CommandPath()),
			slog.String("config_file", cfgFile),
		)

		var app *bootstrap.App
		fxApp := fx.New(appOptions(ctx, cfgFile, &app, extra...)...)

		startCtx, cancelStart := context.WithTimeout(ctx, appStartTimeout)
		defer cancelStart()
		if err := fxApp.Start(startCtx); err != nil {
			logging.Error(ctx, "poolkeeper startup failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "start fx application")
		}
		defer stopApp(ctx, fxApp)

		if err := run(cmd, app); err != nil {
			return errs.Wrapf(err, "run %s", cmd.Name())
		}
		return nil
	}
}

func appOptions(ctx context.Context, configFile string, app **bootstrap.App, extra ...fx.Option) []fx.Option {
	options := []fx.Option{
		bootstrap.Module,
		fx.NopLogger,
		fx.Provide(func() context.Context { return ctx }),
		fx.Provide(
			fx.Annotate(
				func() string { return configFile },
				fx.ResultTags(`name:"configFile"`),
			),
		),
		fx.Populate(app),
	}
	return append(options, extra...)
}

// stopApp runs OnStop hooks on a fresh context so a cancelled command context still
// lets the scheduler finish its tick and the HTTP server drain.
func stopApp(ctx context.Context, fxApp *fx.App) {
	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), appStopTimeout)
	defer cancel()
	if err := fxApp.Stop(stopCtx); err != nil {
		logging.Error(ctx, "poolkeeper shutdown failed", slog.Any("err", errs.Loggable(err)))
	}
}
