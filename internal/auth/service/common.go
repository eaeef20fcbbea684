package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aussiebroadwan/accounts/internal/auth/domain"
	"github.com/aussiebroadwan/accounts/internal/auth/projection"
	"github.com/aussiebroadwan/accounts/internal/auth/store"
	"github.com/aussiebroadwan/accounts/internal/auth/tokenstore"
	"github.com/aussiebroadwan/accounts/pkg/slogx"
)

// checkUnique reports the first of username, email or phone that belongs to
// an account other than a.
func checkUnique(ctx context.Context, accounts store.Accounts, a domain.Account) error {
	lookups := []struct {
		field string
		value string
		get   func(context.Context, string) (domain.Account, error)
	}{
		{"username", a.Username, accounts.GetAccountByUsername},
		{"email", a.Email, accounts.GetAccountByEmail},
		{"phone", a.Phone, accounts.GetAccountByPhone},
	}

	for _, l := range lookups {
		if l.value == "" {
			continue
		}
		other, err := l.get(ctx, l.value)
		switch {
		case errors.Is(err, store.ErrNotFound):
			continue
		case err != nil:
			return err
		case other.ID != a.ID:
			return &ConflictError{Field: l.field}
		}
	}
	return nil
}

// insertUnique runs checkUnique and the insert of a in one transaction. A
// unique violation that still reaches the database (a concurrent registration)
// is reported as a conflict.
func insertUnique(ctx context.Context, st store.Store, a domain.Account) error {
	return st.WithTx(ctx, func(tx store.Tx) error {
		if err := checkUnique(ctx, tx.Accounts(), a); err != nil {
			return err
		}
		err := tx.Accounts().CreateAccount(ctx, a)
		if errors.Is(err, store.ErrAlreadyExists) {
			return &ConflictError{Field: "account"}
		}
		return err
	})
}

func project(ctx context.Context, sink projection.Sink, a domain.Account) {
	if sink == nil {
		return
	}
	if err := sink.Upsert(ctx, projection.FromAccount(a)); err != nil {
		slogx.FromContext(ctx).Warn("failed to project account",
			slog.String("account_id", a.ID),
			slog.Any("error", err),
		)
	}
}

func dropSession(ctx context.Context, tokens tokenstore.Store, username string) {
	if err := tokens.Delete(ctx, sessionKey(username)); err != nil {
		slogx.FromContext(ctx).Warn("failed to drop session",
			slog.String("username", username),
			slog.Any("error", err),
		)
	}
}
