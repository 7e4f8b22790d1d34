package bootstrap

import (
	"context"
	"log/slog"
	"os"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"poolkeeper/internal/bootstrap/config"
	"poolkeeper/internal/bootstrap/database"
	"poolkeeper/internal/bootstrap/logging"
	"poolkeeper/internal/infrastructure/clock"
	"poolkeeper/internal/infrastructure/events"
	"poolkeeper/internal/infrastructure/mail"
	"poolkeeper/internal/infrastructure/persistence/gormstore/repository"
	"poolkeeper/internal/infrastructure/persistence/gormstore/uow"
	"poolkeeper/internal/ports"
	"poolkeeper/internal/scheduler"
	"poolkeeper/internal/transport/httpapi"
	"poolkeeper/internal/usecase/alerts"
	"poolkeeper/internal/usecase/inventory"
	"poolkeeper/internal/usecase/notify"
	"poolkeeper/internal/usecase/readings"
	"poolkeeper/internal/usecase/tasks"
	"poolkeeper/internal/usecase/users"
)

// Module provides every dependency a command needs. Nothing long-running is started.
var Module = fx.Options(
	fx.Provide(provideConfig),
	fx.Provide(provideLogLevel),
	fx.Invoke(configureLogging),
	fx.Provide(provideDatabase),
	fx.Provide(provideClock),
	fx.Provide(provideMailer),
	fx.Provide(provideEvents),
	fx.Provide(
		fx.Annotate(
			repository.NewTaskRepository,
			fx.As(new(ports.TaskRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			repository.NewDBPinger,
			fx.As(new(ports.Pinger)),
		),
	),
	fx.Provide(
		fx.Annotate(
			repository.NewAlertRepository,
			fx.As(new(ports.AlertRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			repository.NewInventoryRepository,
			fx.As(new(ports.InventoryRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			repository.NewReadingRepository,
			fx.As(new(ports.ReadingRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			repository.NewUserRepository,
			fx.As(new(ports.UserRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			repository.NewMetaStore,
			fx.As(new(ports.MetaStore)),
		),
	),
	fx.Provide(
		fx.Annotate(
			uow.NewUnitOfWork,
			fx.As(new(ports.UnitOfWork)),
		),
	),
	fx.Provide(tasks.NewService),
	fx.Provide(alerts.NewService),
	fx.Provide(inventory.NewService),
	fx.Provide(readings.NewService),
	fx.Provide(users.NewService),
	fx.Provide(notify.NewScanner),
	fx.Provide(provideNotifier),
	fx.Provide(provideScheduler),
	fx.Provide(provideApp),
)

// ServeModule starts the scheduler and the HTTP server with the application lifecycle.
var ServeModule = fx.Options(
	fx.Provide(provideHTTPServer),
	fx.Invoke(registerConfigWatch),
	fx.Invoke(registerScheduler),
	fx.Invoke(registerHTTPServer),
)

type configParams struct {
	fx.In

	Ctx        context.Context
	ConfigFile string `name:"configFile"`
}

func provideConfig(p configParams) (config.Config, error) {
	ctx := logging.WithAttrs(p.Ctx, slog.String("component", "bootstrap.fx"))
	return config.Load(ctx, p.ConfigFile)
}

func provideLogLevel() *slog.LevelVar {
	return new(slog.LevelVar)
}

// configureLogging installs the configured handler as the process default.
func configureLogging(lc fx.Lifecycle, cfg config.Config, level *slog.LevelVar) {
	logger, closer := logging.New(os.Stderr, logging.Options{
		Level:    cfg.Log.Level,
		Format:   cfg.Log.Format,
		File:     cfg.Log.File,
		LevelVar: level,
	})
	logging.SetDefault(logger.With(slog.String("app", cfg.App.Name), slog.String("env", cfg.App.Env)))

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return closer.Close()
		},
	})
}

func provideDatabase(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx"))

	db, err := database.Open(logCtx, cfg.Database)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})

	return db, nil
}

func provideClock(cfg config.Config) (ports.Clock, error) {
	return clock.New(cfg.App.Timezone)
}

func provideMailer(ctx context.Context, cfg config.Config) ports.Mailer {
	return mail.New(logging.With(ctx, "bootstrap.fx"), mail.Options{
		Host:       cfg.SMTP.Host,
		Port:       cfg.SMTP.Port,
		Username:   cfg.SMTP.Username,
		Password:   cfg.SMTP.Password,
		From:       cfg.SMTP.From,
		RequireTLS: cfg.SMTP.TLS,
		Timeout:    cfg.SMTP.Timeout,
	})
}

func provideEvents(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (ports.EventPublisher, error) {
	publisher, closeFn, err := events.Connect(logging.With(ctx, "bootstrap.fx"), events.Options{
		URL:     cfg.Events.NATSURL,
		Prefix:  cfg.Events.SubjectPrefix,
		Name:    cfg.App.Name,
		Timeout: cfg.Events.Timeout,
	})
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			closeFn()
			return nil
		},
	})
	return publisher, nil
}

func provideNotifier(mailer ports.Mailer, cfg config.Config) *notify.Notifier {
	return notify.NewNotifier(mailer, cfg.Scheduler.SendTimeout)
}

type schedulerParams struct {
	fx.In

	Cfg      config.Config
	Alerts   ports.AlertRepository
	Users    ports.UserRepository
	Meta     ports.MetaStore
	Clock    ports.Clock
	Scanner  *notify.Scanner
	Notifier *notify.Notifier
	Events   ports.EventPublisher
}

func provideScheduler(p schedulerParams) *scheduler.Scheduler {
	return scheduler.New(scheduler.Deps{
		Alerts:   p.Alerts,
		Users:    p.Users,
		Scanner:  p.Scanner,
		Notifier: p.Notifier,
		Meta:     p.Meta,
		Clock:    p.Clock,
		Events:   p.Events,
	}, scheduler.Config{
		Enabled:  p.Cfg.Scheduler.Enabled,
		Interval: p.Cfg.Scheduler.Interval,
	})
}

type httpParams struct {
	fx.In

	Ctx       context.Context
	Cfg       config.Config
	Tasks     *tasks.Service
	Alerts    *alerts.Service
	Inventory *inventory.Service
	Readings  *readings.Service
	Users     *users.Service
	Pinger    ports.Pinger
	Meta      ports.MetaStore
}

func provideHTTPServer(p httpParams) *httpapi.Server {
	handler := httpapi.NewRouter(p.Ctx, httpapi.Deps{
		Tasks:            p.Tasks,
		Alerts:           p.Alerts,
		Inventory:        p.Inventory,
		Readings:         p.Readings,
		Users:            p.Users,
		DB:               p.Pinger,
		Meta:             p.Meta,
		DefaultUserEmail: p.Cfg.Auth.DefaultUserEmail,
	})
	return httpapi.NewServer(p.Cfg.HTTP.Addr, handler)
}

type watchParams struct {
	fx.In

	Ctx        context.Context
	ConfigFile string `name:"configFile"`
	Level      *slog.LevelVar
}

// registerConfigWatch applies log.level edits to the running process.
func registerConfigWatch(lc fx.Lifecycle, p watchParams) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			return config.Watch(p.Ctx, p.ConfigFile, func(cfg config.Config) {
				p.Level.Set(logging.ParseLevel(cfg.Log.Level))
			})
		},
	})
}

func registerScheduler(lc fx.Lifecycle, ctx context.Context, s *scheduler.Scheduler) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			return s.Start(ctx)
		},
		OnStop: s.Stop,
	})
}

func registerHTTPServer(lc fx.Lifecycle, ctx context.Context, cfg config.Config, srv *httpapi.Server) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			return srv.Start(ctx)
		},
		OnStop: func(stopCtx context.Context) error {
			if cfg.HTTP.ShutdownTimeout > 0 {
				var cancel context.CancelFunc
				stopCtx, cancel = context.WithTimeout(stopCtx, cfg.HTTP.ShutdownTimeout)
				defer cancel()
			}
			return srv.Stop(stopCtx)
		},
	})
}

type appParams struct {
	fx.In

	Cfg       config.Config
	DB        *gorm.DB
	Tasks     *tasks.Service
	Alerts    *alerts.Service
	Inventory *inventory.Service
	Readings  *readings.Service
	Users     *users.Service
	Scheduler *scheduler.Scheduler
}

func provideApp(p appParams) *App {
	return &App{
		Config:    p.Cfg,
		DB:        p.DB,
		Tasks:     p.Tasks,
		Alerts:    p.Alerts,
		Inventory: p.Inventory,
		Readings:  p.Readings,
		Users:     p.Users,
		Scheduler: p.Scheduler,
	}
}
