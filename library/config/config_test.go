package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLoad(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cr3t")
	t.Setenv("DB_HOST", "db")
	t.Setenv("BORROW_MAX_ACTIVE", "3")
	t.Setenv("KAFKA_ADDRS", "k1:9092,k2:9092")

	cfg, err := load(WithLogLevel(zapcore.DebugLevel), WithPort("9090"))
	require.NoError(t, err)

	require.Equal(t, "s3cr3t", cfg.Auth.JWT.Secret)
	require.Equal(t, 24*time.Hour, cfg.Auth.JWT.AccessTTL)
	require.Equal(t, 7*24*time.Hour, cfg.Auth.JWT.RefreshTTL)
	require.Equal(t, 12, cfg.Auth.BcryptCost)
	require.Equal(t, "db", cfg.Database.Host)
	require.Equal(t, 3, cfg.Borrowing.MaxActive)
	require.Equal(t, 1.0, cfg.Borrowing.DailyFine)
	require.Equal(t, 14, cfg.Borrowing.DefaultDays)
	require.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Addrs)
	require.Equal(t, "9090", cfg.Server.Port)
	require.Equal(t, zapcore.DebugLevel, cfg.Log.LogLevel)
	require.Equal(t, int64(5<<20), cfg.Storage.MaxSize)
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "unset")
	require.NoError(t, os.Unsetenv("JWT_SECRET"))
	_, err := load()
	require.Error(t, err)
}
