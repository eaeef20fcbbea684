package app

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/aussiebroadwan/accounts/internal/auth/mail"
	"github.com/aussiebroadwan/accounts/internal/auth/projection"
	"github.com/aussiebroadwan/accounts/internal/auth/store"
	"github.com/aussiebroadwan/accounts/internal/auth/store/drivers/postgres"
	"github.com/aussiebroadwan/accounts/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/accounts/internal/auth/tokenstore"
	"github.com/aussiebroadwan/accounts/internal/auth/tokenstore/drivers/bolt"
	"github.com/aussiebroadwan/accounts/internal/auth/tokenstore/drivers/memory"
	"github.com/aussiebroadwan/accounts/internal/auth/tokenstore/drivers/redis"
)

// OpenStore opens the configured account database and applies migrations.
func OpenStore(ctx context.Context, cfg Config, logger *slog.Logger) (store.Store, error) {
	var (
		db  store.Store
		err error
	)
	switch cfg.DatabaseDriver {
	case DriverPostgres:
		db, err = postgres.NewStore(ctx, cfg.DatabaseURL)
	default:
		dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", cfg.DatabaseFile)
		db, err = sqlite.NewStore(dsn)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply database migrations: %w", err)
	}

	logger.Info("database migrations applied successfully", "driver", cfg.DatabaseDriver)
	return db, nil
}

func openTokenStore(ctx context.Context, cfg Config, logger *slog.Logger) (tokenstore.Store, error) {
	var (
		tokens tokenstore.Store
		err    error
	)
	switch cfg.TokenStoreDriver {
	case DriverRedis:
		tokens, err = redis.Open(ctx, cfg.RedisURL, cfg.RedisKeyPrefix)
	case DriverBolt:
		tokens, err = bolt.Open(cfg.TokenStoreFile)
	default:
		tokens = memory.New()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open token store: %w", err)
	}

	logger.Info("token store ready", "driver", cfg.TokenStoreDriver)
	return tokens, nil
}

// openMailer returns the mailer and a closer for its connection, if any.
func openMailer(cfg Config, logger *slog.Logger) (mail.Mailer, func() error, error) {
	var (
		mailer mail.Mailer
		closer = func() error { return nil }
	)
	switch cfg.MailDriver {
	case DriverAMQP:
		m, err := mail.DialAMQP(cfg.MailAMQPURL, cfg.MailQueue)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect mail queue: %w", err)
		}
		mailer, closer = m, m.Close
	default:
		mailer = mail.NewLogMailer(logger)
	}

	if cfg.MailRatePerSecond > 0 {
		burst := max(cfg.MailBurst, 1)
		mailer = mail.Throttled(mailer, rate.NewLimiter(rate.Limit(cfg.MailRatePerSecond), burst))
	}

	logger.Info("mailer ready", "driver", cfg.MailDriver, "rate_per_second", cfg.MailRatePerSecond)
	return mailer, closer, nil
}

func openProjection(cfg Config, logger *slog.Logger) projection.Sink {
	if cfg.ProjectionDriver != DriverKafka {
		return projection.Nop{}
	}

	logger.Info("account projection enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	return projection.NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic, func(err error) {
		logger.Warn("projection publish failed", "error", err)
	})
}
