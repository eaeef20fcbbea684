package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/accounts/internal/auth/domain"
	"github.com/aussiebroadwan/accounts/internal/auth/projection"
	"github.com/aussiebroadwan/accounts/internal/auth/service"
	"github.com/aussiebroadwan/accounts/internal/auth/store"
	"github.com/aussiebroadwan/accounts/internal/auth/tokenstore/drivers/memory"
	"github.com/aussiebroadwan/accounts/pkg/slogx"
)

// Admin runs one-off account operations against the database while the
// service may be running elsewhere.
//
// It never opens the configured token store: bolt holds an exclusive file
// lock and neither activation nor role changes touch sessions. Status
// changes therefore cannot end live sessions from the CLI.
type Admin struct {
	db       store.Store
	accounts *service.AccountService
	logger   *slog.Logger
}

func NewAdmin(ctx context.Context, cfg Config) (*Admin, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := NewLogger(cfg)
	db, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	return &Admin{
		db: db,
		accounts: &service.AccountService{
			Store:       db,
			Tokens:      memory.New(),
			Projection:  projection.Nop{},
			PhoneRegion: cfg.PhoneRegion,
		},
		logger: logger,
	}, nil
}

// Activate confirms the account with username. Activating an active account
// is a no-op.
func (a *Admin) Activate(ctx context.Context, username string) (domain.Account, error) {
	ctx = a.withLogger(ctx, "activate")
	acc, err := a.accounts.GetByUsername(ctx, username)
	if err != nil {
		return domain.Account{}, err
	}
	return a.accounts.SetStatus(ctx, acc.ID, domain.StatusActive)
}

func (a *Admin) SetRole(ctx context.Context, username, role string) (domain.Account, error) {
	return a.accounts.SetRole(a.withLogger(ctx, "set-role"), username, role)
}

func (a *Admin) withLogger(ctx context.Context, command string) context.Context {
	return slogx.WithContext(ctx, a.logger.With("command", command))
}

func (a *Admin) Close() error { return a.db.Close() }
