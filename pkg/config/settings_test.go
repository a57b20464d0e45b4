package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	logrus "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	s, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", s.Server.Port)
	assert.Equal(t, "info", s.Log.Level)
	assert.Equal(t, "json", s.Log.Format)
	assert.Equal(t, time.Hour, s.DB.ConnMaxLifetime)
	assert.Equal(t, 200, s.DB.MaxOpenConns)
	assert.Equal(t, "strategy_events", s.RabbitMQ.EventsQueue)
	assert.Equal(t, "0 */15 * * * *", s.Schedule.ReconcileSpec)
	assert.False(t, s.DB.Enabled())
	assert.False(t, s.RabbitMQ.Enabled())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("STRATEGY_SERVER_PORT", "9090")
	t.Setenv("STRATEGY_DB_HOST", "db.internal")
	t.Setenv("STRATEGY_DB_CONN_MAX_LIFETIME", "5m")
	t.Setenv("STRATEGY_AUTH_JWT_SECRET", "s3cret")
	t.Setenv("STRATEGY_RATE_LIMIT_BURST", "7")

	s, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "9090", s.Server.Port)
	assert.True(t, s.DB.Enabled())
	assert.Equal(t, 5*time.Minute, s.DB.ConnMaxLifetime)
	assert.Equal(t, "s3cret", s.Auth.JWTSecret)
	assert.Equal(t, 7, s.RateLimit.Burst)
	assert.Equal(t,
		"host=db.internal user=postgres password= dbname=strategies port=5432 sslmode=disable TimeZone=UTC",
		s.DB.DSN())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "log:\n  level: debug\nrabbitmq:\n  host: mq\n  events_queue: custom\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", s.Log.Level)
	assert.Equal(t, "custom", s.RabbitMQ.EventsQueue)
	assert.Equal(t, "amqp://guest:guest@mq:5672/", s.RabbitMQ.URL())

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}

func TestInitLogger(t *testing.T) {
	defer logrus.SetLevel(logrus.InfoLevel)
	defer logrus.SetFormatter(&logrus.TextFormatter{})

	InitLogger(LogSettings{Level: "debug", Format: "json"})
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logrus.StandardLogger().Formatter)

	InitLogger(LogSettings{Level: "loud", Format: "text"})
	assert.Equal(t, logrus.InfoLevel, logrus.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, logrus.StandardLogger().Formatter)
}
