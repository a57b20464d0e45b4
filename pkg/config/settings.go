package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Settings is the process configuration. Every key can be overridden by an
// environment variable named STRATEGY_<KEY> with dots replaced by
// underscores, e.g. STRATEGY_DB_HOST.
type Settings struct {
	Server    ServerSettings    `mapstructure:"server"`
	Log       LogSettings       `mapstructure:"log"`
	DB        DBSettings        `mapstructure:"db"`
	RabbitMQ  RabbitMQSettings  `mapstructure:"rabbitmq"`
	Auth      AuthSettings      `mapstructure:"auth"`
	RateLimit RateLimitSettings `mapstructure:"rate_limit"`
	Schedule  ScheduleSettings  `mapstructure:"schedule"`
}

type ServerSettings struct {
	Port           string `mapstructure:"port"`
	AllowedOrigins string `mapstructure:"allowed_origins"`
}

type LogSettings struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type DBSettings struct {
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	Timezone        string        `mapstructure:"timezone"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsPath  string        `mapstructure:"migrations_path"`
}

// Enabled reports whether a database is configured.
func (d DBSettings) Enabled() bool {
	return d.Host != ""
}

func (d DBSettings) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode, d.Timezone)
}

type RabbitMQSettings struct {
	Host        string `mapstructure:"host"`
	Port        string `mapstructure:"port"`
	User        string `mapstructure:"user"`
	Password    string `mapstructure:"password"`
	EventsQueue string `mapstructure:"events_queue"`
}

func (r RabbitMQSettings) Enabled() bool {
	return r.Host != ""
}

func (r RabbitMQSettings) URL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/", r.User, r.Password, r.Host, r.Port)
}

type AuthSettings struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

type RateLimitSettings struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type ScheduleSettings struct {
	ReconcileSpec string `mapstructure:"reconcile_spec"`
}

// Load reads settings from the optional YAML file at path, then the
// environment. An empty path means environment only.
func Load(path string) (Settings, error) {
	v := viper.New()
	v.SetEnvPrefix("STRATEGY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.allowed_origins", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("db.host", "")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.name", "strategies")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("db.max_idle_conns", 50)
	v.SetDefault("db.max_open_conns", 200)
	v.SetDefault("db.conn_max_lifetime", "1h")
	v.SetDefault("db.migrations_path", "migrations")

	v.SetDefault("rabbitmq.host", "")
	v.SetDefault("rabbitmq.port", "5672")
	v.SetDefault("rabbitmq.user", "guest")
	v.SetDefault("rabbitmq.password", "guest")
	v.SetDefault("rabbitmq.events_queue", "strategy_events")

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("rate_limit.requests_per_second", 20.0)
	v.SetDefault("rate_limit.burst", 40)
	v.SetDefault("schedule.reconcile_spec", "0 */15 * * * *")

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return s, nil
}
