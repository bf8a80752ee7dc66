package config

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v9"
)

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

type Config struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	Environment     string        `env:"APP_ENV" envDefault:"development"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	DBDriver   string `env:"DB_DRIVER" envDefault:"sqlite"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"./reading_list.db"`
	DBUser     string `env:"DB_USER"`
	DBPassword string `env:"DB_PASSWORD"`
	DBHost     string `env:"DB_HOST"` // e.g. tcp(host:3306) or unix(/cloudsql/instance)
	DBName     string `env:"DB_NAME"`
	DBPort     string `env:"DB_PORT" envDefault:"3306"`
	// Cloud SQL instance; when set the MySQL DSN uses its unix socket.
	InstanceConnectionName string `env:"INSTANCE_CONNECTION_NAME"`

	// Whether a tag attach/detach that leaves the tag set unchanged still advances updated_at.
	TouchOnNoopTagChange bool `env:"TOUCH_ON_NOOP_TAG_CHANGE" envDefault:"true"`
}

func Load() (*Config, error) {
	return load(env.Options{})
}

func load(opts env.Options) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverSQLite:
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required when DB_DRIVER=sqlite")
		}
	case DriverMySQL:
		if c.DBUser == "" || c.DBName == "" {
			return errors.New("DB_USER and DB_NAME are required when DB_DRIVER=mysql")
		}
		if c.DBHost == "" && c.InstanceConnectionName == "" {
			return errors.New("DB_HOST or INSTANCE_CONNECTION_NAME is required when DB_DRIVER=mysql")
		}
	default:
		return errors.New("DB_DRIVER must be sqlite or mysql")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
