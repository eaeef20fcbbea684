package app

import (
	"os"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// Driver names accepted in the configuration.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	DriverMemory = "memory"
	DriverRedis  = "redis"
	DriverBolt   = "bolt"

	DriverLog  = "log"
	DriverAMQP = "amqp"

	DriverNone  = "none"
	DriverKafka = "kafka"
)

type Config struct {
	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Token store sweep interval (default: 1h)

	DatabaseDriver string // sqlite or postgres (default: sqlite)
	DatabaseFile   string // SQLite database file (default: ./accounts.db)
	DatabaseURL    string // Postgres connection URL
	PepperFile     string // File holding the password pepper (default: ./pepper)

	Issuer string // iss claim of every token (default: accounts)

	// Base64 HMAC secrets, one per token purpose. Generated at startup when
	// blank outside prod.
	AccessKey     string
	RefreshKey    string
	ResetKey      string
	ActivationKey string

	AccessExpiry     time.Duration // JWT_ACCESS_EXPIRY_HOURS (default: 24h)
	RefreshExpiry    time.Duration // JWT_REFRESH_EXPIRY_DAYS (default: 14 days)
	ResetExpiry      time.Duration // default: 1h
	ActivationExpiry time.Duration // default: 24h

	ActivationTTL time.Duration // Lifetime of an activation link (default: 24h)
	ResetTTL      time.Duration // Lifetime of a reset link (default: 15m)

	TokenStoreDriver string // memory, redis or bolt (default: memory)
	TokenStoreFile   string // bolt file (default: ./tokens.db)
	RedisURL         string
	RedisKeyPrefix   string

	PublicBaseURL string // Base of links placed in mail

	MailDriver        string  // log or amqp (default: log)
	MailAMQPURL       string
	MailQueue         string  // default: accounts.mail
	MailRatePerSecond float64 // 0 disables throttling (default: 10)
	MailBurst         int     // default: 20

	ProjectionDriver string // none or kafka (default: none)
	KafkaBrokers     []string
	KafkaTopic       string // default: accounts.accounts

	PhoneRegion string // Region used to parse national phone numbers (default: VN)
}

func LoadConfig() Config {
	return Config{
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),

		DatabaseDriver: getEnvOrDefault("ACCOUNTS_DATABASE_DRIVER", DriverSQLite),
		DatabaseFile:   getEnvOrDefault("ACCOUNTS_DATABASE_FILE", "accounts.db"),
		DatabaseURL:    os.Getenv("ACCOUNTS_DATABASE_URL"),
		PepperFile:     getEnvOrDefault("AUTH_PEPPER_FILE", "pepper"),

		Issuer:        getEnvOrDefault("JWT_ISSUER", "accounts"),
		AccessKey:     os.Getenv("JWT_ACCESS_KEY"),
		RefreshKey:    os.Getenv("JWT_REFRESH_KEY"),
		ResetKey:      os.Getenv("JWT_RESET_KEY"),
		ActivationKey: os.Getenv("JWT_ACTIVATION_KEY"),

		AccessExpiry:     time.Duration(getEnvIntOrDefault("JWT_ACCESS_EXPIRY_HOURS", 24)) * time.Hour,
		RefreshExpiry:    time.Duration(getEnvIntOrDefault("JWT_REFRESH_EXPIRY_DAYS", 14)) * 24 * time.Hour,
		ResetExpiry:      getEnvDurationOrDefault("JWT_RESET_EXPIRY", time.Hour),
		ActivationExpiry: getEnvDurationOrDefault("JWT_ACTIVATION_EXPIRY", 24*time.Hour),

		ActivationTTL: getEnvDurationOrDefault("ACTIVATION_TTL", 24*time.Hour),
		ResetTTL:      getEnvDurationOrDefault("RESET_TTL", 15*time.Minute),

		TokenStoreDriver: getEnvOrDefault("TOKEN_STORE_DRIVER", DriverMemory),
		TokenStoreFile:   getEnvOrDefault("TOKEN_STORE_FILE", "tokens.db"),
		RedisURL:         os.Getenv("REDIS_URL"),
		RedisKeyPrefix:   getEnvOrDefault("REDIS_KEY_PREFIX", "accounts:"),

		PublicBaseURL: getEnvOrDefault("PUBLIC_BASE_URL", "http://localhost:8080"),

		MailDriver:        getEnvOrDefault("MAIL_DRIVER", DriverLog),
		MailAMQPURL:       os.Getenv("MAIL_AMQP_URL"),
		MailQueue:         getEnvOrDefault("MAIL_QUEUE", "accounts.mail"),
		MailRatePerSecond: getEnvFloatOrDefault("MAIL_RATE_PER_SECOND", 10),
		MailBurst:         getEnvIntOrDefault("MAIL_BURST", 20),

		ProjectionDriver: getEnvOrDefault("PROJECTION_DRIVER", DriverNone),
		KafkaBrokers:     getEnvListOrDefault("KAFKA_BROKERS", nil),
		KafkaTopic:       getEnvOrDefault("KAFKA_TOPIC", "accounts.accounts"),

		PhoneRegion: getEnvOrDefault("PHONE_DEFAULT_REGION", "VN"),
	}
}

// Validate reports every invalid setting, keyed by environment variable.
func (c Config) Validate() error {
	errs := validation.Errors{
		"PORT":                     validation.Validate(c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		"ACCOUNTS_DATABASE_DRIVER": validation.Validate(c.DatabaseDriver, validation.In(DriverSQLite, DriverPostgres)),
		"TOKEN_STORE_DRIVER":       validation.Validate(c.TokenStoreDriver, validation.In(DriverMemory, DriverRedis, DriverBolt)),
		"MAIL_DRIVER":              validation.Validate(c.MailDriver, validation.In(DriverLog, DriverAMQP)),
		"PROJECTION_DRIVER":        validation.Validate(c.ProjectionDriver, validation.In(DriverNone, DriverKafka)),
		"PUBLIC_BASE_URL":          validation.Validate(c.PublicBaseURL, validation.Required, is.URL),
		"JWT_ISSUER":               validation.Validate(c.Issuer, validation.Required),
		"JWT_ACCESS_EXPIRY_HOURS":  positive(c.AccessExpiry),
		"JWT_REFRESH_EXPIRY_DAYS":  positive(c.RefreshExpiry),
		"JWT_RESET_EXPIRY":         positive(c.ResetExpiry),
		"JWT_ACTIVATION_EXPIRY":    positive(c.ActivationExpiry),
		"ACTIVATION_TTL":           positive(c.ActivationTTL),
		"RESET_TTL":                positive(c.ResetTTL),
		"MAIL_RATE_PER_SECOND":     validation.Validate(c.MailRatePerSecond, validation.Min(0.0)),
	}

	if c.DatabaseDriver == DriverPostgres {
		errs["ACCOUNTS_DATABASE_URL"] = validation.Validate(c.DatabaseURL, validation.Required)
	}
	if c.TokenStoreDriver == DriverRedis {
		errs["REDIS_URL"] = validation.Validate(c.RedisURL, validation.Required)
	}
	if c.MailDriver == DriverAMQP {
		errs["MAIL_AMQP_URL"] = validation.Validate(c.MailAMQPURL, validation.Required)
	}
	if c.ProjectionDriver == DriverKafka {
		errs["KAFKA_BROKERS"] = validation.Validate(c.KafkaBrokers, validation.Required)
	}

	return errs.Filter()
}

// positive rejects zero as well; ozzo threshold rules skip empty values.
func positive(d time.Duration) error {
	return validation.Validate(d,
		validation.Required.Error("must be positive"),
		validation.Min(time.Duration(1)).Error("must be positive"),
	)
}

func (c Config) IsProd() bool {
	return strings.EqualFold(c.Env, "prod") || strings.EqualFold(c.Env, "production")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}

// getEnvListOrDefault splits a comma separated value, dropping blanks.
func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
