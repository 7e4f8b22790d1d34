package config

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"poolkeeper/internal/bootstrap/logging"
	"poolkeeper/internal/errs"
)

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Database  DatabaseConfig  `mapstructure:"database"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Auth      AuthConfig      `mapstructure:"auth"`
	SMTP      SMTPConfig      `mapstructure:"smtp"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Events    EventsConfig    `mapstructure:"events"`
	Log       LogConfig       `mapstructure:"log"`
}

type AppConfig struct {
	Name     string `mapstructure:"name"`
	Env      string `mapstructure:"env"`
	Timezone string `mapstructure:"timezone"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
	Debug  bool   `mapstructure:"debug"`
}

type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// AuthConfig names the single default owner that stands in for real authentication.
type AuthConfig struct {
	DefaultUserEmail string `mapstructure:"default_user_email"`
	DefaultPassword  string `mapstructure:"default_password"`
}

type SMTPConfig struct {
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	From     string        `mapstructure:"from"`
	TLS      bool          `mapstructure:"tls"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// Configured reports whether credentials are present; without them mail is only logged.
func (c SMTPConfig) Configured() bool {
	return strings.TrimSpace(c.Username) != "" && strings.TrimSpace(c.Password) != ""
}

type SchedulerConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	Interval    time.Duration `mapstructure:"interval"`
	SendTimeout time.Duration `mapstructure:"send_timeout"`
}

// EventsConfig enables NATS event publishing when NATSURL is set.
type EventsConfig struct {
	NATSURL       string        `mapstructure:"nats_url"`
	SubjectPrefix string        `mapstructure:"subject_prefix"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

func Load(ctx context.Context, configFile string) (Config, error) {
	cfg, _, err := load(ctx, configFile)
	return cfg, err
}

func load(ctx context.Context, configFile string) (Config, *viper.Viper, error) {
	if ctx == nil {
		return Config{}, nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return Config{}, nil, errs.Wrap(err, "check context")
	}

	logCtx := logging.With(ctx, "bootstrap.config")

	if err := godotenv.Load(); err != nil {
		logging.Debug(logCtx, "no .env file loaded", slog.String("reason", err.Error()))
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("POOL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile == "" && errors.As(err, &notFound) {
			logging.Warn(logCtx, "config file not found, fallback to defaults and env")
		} else {
			return Config{}, nil, errs.Wrap(err, "read config")
		}
	} else {
		logging.Info(logCtx, "using config file", slog.String("path", v.ConfigFileUsed()))
	}

	cfg, err := decode(v)
	if err != nil {
		return Config{}, nil, err
	}

	logging.Info(
		logCtx,
		"config loaded",
		slog.String("app", cfg.App.Name),
		slog.String("env", cfg.App.Env),
		slog.String("timezone", cfg.App.Timezone),
		slog.String("database_driver", cfg.Database.Driver),
		slog.Bool("smtp_configured", cfg.SMTP.Configured()),
		slog.Bool("scheduler_enabled", cfg.Scheduler.Enabled),
		slog.Bool("events_enabled", strings.TrimSpace(cfg.Events.NATSURL) != ""),
	)

	return cfg, v, nil
}

func decode(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errs.Wrap(err, "unmarshal config")
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Watch reloads the config file whenever it changes on disk and passes every valid
// result to onChange. Invalid edits are logged and skipped. Only settings read at
// runtime, such as log.level, take effect without a restart.
func Watch(ctx context.Context, configFile string, onChange func(Config)) error {
	if onChange == nil {
		return errors.New("onChange is required")
	}

	_, v, err := load(ctx, configFile)
	if err != nil {
		return err
	}
	logCtx := logging.With(ctx, "bootstrap.config")
	if v.ConfigFileUsed() == "" {
		logging.Info(logCtx, "no config file to watch")
		return nil
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := decode(v)
		if err != nil {
			logging.Warn(logCtx, "ignoring invalid config change", slog.String("path", e.Name), slog.Any("err", errs.Loggable(err)))
			return
		}
		logging.Info(logCtx, "config reloaded", slog.String("path", e.Name))
		onChange(cfg)
	})
	v.WatchConfig()
	return nil
}

func (c Config) validate() error {
	if strings.TrimSpace(c.Database.DSN) == "" {
		return errors.New("database.dsn is required")
	}
	if strings.TrimSpace(c.Auth.DefaultUserEmail) == "" {
		return errors.New("auth.default_user_email is required")
	}
	if c.Scheduler.Interval <= 0 {
		return errors.New("scheduler.interval must be positive")
	}
	if c.Scheduler.SendTimeout <= 0 {
		return errors.New("scheduler.send_timeout must be positive")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "poolkeeper")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.timezone", "America/New_York")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "data/poolkeeper.sqlite")
	v.SetDefault("database.debug", false)

	v.SetDefault("http.addr", ":8000")
	v.SetDefault("http.shutdown_timeout", 10*time.Second)

	v.SetDefault("auth.default_user_email", "admin@example.com")
	v.SetDefault("auth.default_password", "admin123")

	v.SetDefault("smtp.host", "smtp.gmail.com")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "")
	v.SetDefault("smtp.tls", true)
	v.SetDefault("smtp.timeout", 30*time.Second)

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.interval", 5*time.Minute)
	v.SetDefault("scheduler.send_timeout", 30*time.Second)

	v.SetDefault("events.nats_url", "")
	v.SetDefault("events.subject_prefix", "poolkeeper")
	v.SetDefault("events.timeout", 5*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")
}
