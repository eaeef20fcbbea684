package app

import (
	"testing"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	require.Equal(t, "dev", cfg.Env)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, DriverSQLite, cfg.DatabaseDriver)
	require.Equal(t, DriverMemory, cfg.TokenStoreDriver)
	require.Equal(t, DriverLog, cfg.MailDriver)
	require.Equal(t, DriverNone, cfg.ProjectionDriver)
	require.Equal(t, 24*time.Hour, cfg.AccessExpiry)
	require.Equal(t, 14*24*time.Hour, cfg.RefreshExpiry)
	require.Equal(t, 15*time.Minute, cfg.ResetTTL)
	require.Equal(t, "VN", cfg.PhoneRegion)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_ACCESS_EXPIRY_HOURS", "2")
	t.Setenv("JWT_REFRESH_EXPIRY_DAYS", "1")
	t.Setenv("RESET_TTL", "30") // bare minutes
	t.Setenv("HOUSEKEEPING_INTERVAL", "5m")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, ,kafka-2:9092")
	t.Setenv("MAIL_RATE_PER_SECOND", "2.5")

	cfg := LoadConfig()

	require.Equal(t, 9090, cfg.Port)
	require.Equal(t, 2*time.Hour, cfg.AccessExpiry)
	require.Equal(t, 24*time.Hour, cfg.RefreshExpiry)
	require.Equal(t, 30*time.Minute, cfg.ResetTTL)
	require.Equal(t, 5*time.Minute, cfg.HousekeepingInterval)
	require.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	require.InDelta(t, 2.5, cfg.MailRatePerSecond, 0.0001)
}

func TestLoadConfigIgnoresMalformedValues(t *testing.T) {
	t.Setenv("PORT", "eighty")
	t.Setenv("ACTIVATION_TTL", "soon")

	cfg := LoadConfig()
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, 24*time.Hour, cfg.ActivationTTL)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"unknown database driver", func(c *Config) { c.DatabaseDriver = "mysql" }, "ACCOUNTS_DATABASE_DRIVER"},
		{"postgres needs url", func(c *Config) { c.DatabaseDriver = DriverPostgres }, "ACCOUNTS_DATABASE_URL"},
		{"unknown token store", func(c *Config) { c.TokenStoreDriver = "etcd" }, "TOKEN_STORE_DRIVER"},
		{"redis needs url", func(c *Config) { c.TokenStoreDriver = DriverRedis }, "REDIS_URL"},
		{"amqp needs url", func(c *Config) { c.MailDriver = DriverAMQP }, "MAIL_AMQP_URL"},
		{"kafka needs brokers", func(c *Config) { c.ProjectionDriver = DriverKafka }, "KAFKA_BROKERS"},
		{"port out of range", func(c *Config) { c.Port = 70000 }, "PORT"},
		{"zero reset ttl", func(c *Config) { c.ResetTTL = 0 }, "RESET_TTL"},
		{"bad base url", func(c *Config) { c.PublicBaseURL = "not a url" }, "PUBLIC_BASE_URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := LoadConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.Error(t, err)

			var errs validation.Errors
			require.ErrorAs(t, err, &errs)
			require.Contains(t, errs, tt.field)
		})
	}
}

func TestIsProd(t *testing.T) {
	require.True(t, Config{Env: "prod"}.IsProd())
	require.True(t, Config{Env: "Production"}.IsProd())
	require.False(t, Config{Env: "dev"}.IsProd())
}
