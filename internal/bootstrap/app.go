package bootstrap

import (
	"context"
	"errors"
	"log/slog"

	"gorm.io/gorm"

	"poolkeeper/internal/bootstrap/config"
	"poolkeeper/internal/bootstrap/logging"
	"poolkeeper/internal/errs"
	"poolkeeper/internal/infrastructure/persistence/gormstore/model"
	"poolkeeper/internal/infrastructure/seed"
	"poolkeeper/internal/scheduler"
	"poolkeeper/internal/usecase/alerts"
	"poolkeeper/internal/usecase/inventory"
	"poolkeeper/internal/usecase/readings"
	"poolkeeper/internal/usecase/tasks"
	"poolkeeper/internal/usecase/users"
)

type App struct {
	Config config.Config
	DB     *gorm.DB

	Tasks     *tasks.Service
	Alerts    *alerts.Service
	Inventory *inventory.Service
	Readings  *readings.Service
	Users     *users.Service
	Scheduler *scheduler.Scheduler
}

// InitSchema migrates the schema, upserts the reading-type catalogue and makes sure the
// default user exists. It is safe to run repeatedly.
func (a *App) InitSchema(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.app"))
	logging.Info(logCtx, "start schema migration")

	if err := a.DB.WithContext(ctx).AutoMigrate(model.All()...); err != nil {
		return errs.Wrap(err, "auto migrate schema")
	}

	types, err := seed.ReadingTypes()
	if err != nil {
		return errs.Wrap(err, "load reading type catalogue")
	}
	if err := a.Readings.SeedTypes(ctx, types); err != nil {
		return errs.Wrap(err, "seed reading types")
	}

	user, created, err := a.Users.EnsureDefault(ctx, a.Config.Auth.DefaultUserEmail, a.Config.Auth.DefaultPassword)
	if err != nil {
		return errs.Wrap(err, "ensure default user")
	}

	logging.Info(logCtx, "schema migration completed",
		slog.Int("reading_types", len(types)),
		slog.String("default_user", user.Email),
		slog.Bool("default_user_created", created),
	)
	return nil
}
