package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/accounts/internal/auth/domain"
	"github.com/aussiebroadwan/accounts/internal/auth/projection"
	"github.com/aussiebroadwan/accounts/internal/auth/store"
	"github.com/aussiebroadwan/accounts/internal/auth/tokenstore"
	"github.com/aussiebroadwan/accounts/pkg/idx"
	"github.com/aussiebroadwan/accounts/pkg/slogx"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type Page struct {
	Items []domain.Account
	Page  int
	Size  int
	Total int
}

// AccountService is the administrative surface over accounts.
type AccountService struct {
	Store       store.Store
	Tokens      tokenstore.Store
	Hasher      PasswordHasher
	Projection  projection.Sink
	PhoneRegion string
	Now         func() time.Time
}

func (s *AccountService) Get(ctx context.Context, id string) (domain.Account, error) {
	if !idx.Valid(id) {
		return domain.Account{}, ErrNotFound
	}
	acc, err := s.Store.Accounts().GetAccountByID(ctx, id)
	return acc, mapStoreNotFound(err)
}

func (s *AccountService) GetByUsername(ctx context.Context, username string) (domain.Account, error) {
	acc, err := s.Store.Accounts().GetAccountByUsername(ctx, username)
	return acc, mapStoreNotFound(err)
}

// List returns page (1-based) of size accounts. Out of range values fall back
// to the first page and DefaultPageSize, and size is capped at MaxPageSize.
func (s *AccountService) List(ctx context.Context, page, size int) (Page, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	size = min(size, MaxPageSize)

	items, total, err := s.Store.Accounts().ListAccounts(ctx, (page-1)*size, size)
	if err != nil {
		return Page{}, err
	}
	return Page{Items: items, Page: page, Size: size, Total: total}, nil
}

// Create adds an account on behalf of an administrator. Role defaults to
// user and status to active.
func (s *AccountService) Create(ctx context.Context, in CreateAccountInput) (domain.Account, error) {
	now := s.now()

	in.Username = strings.TrimSpace(in.Username)
	if err := in.Validate(s.PhoneRegion, now); err != nil {
		return domain.Account{}, err
	}

	role, err := s.resolveRole(ctx, in.Role)
	if err != nil {
		return domain.Account{}, err
	}
	status := domain.StatusActive
	if in.Status != "" {
		status = domain.Status(in.Status)
	}

	acc := domain.Account{
		ID:        idx.NewAt(now).String(),
		Username:  in.Username,
		Status:    status,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := in.profile().applyTo(&acc, s.PhoneRegion); err != nil {
		return domain.Account{}, err
	}
	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return domain.Account{}, fmt.Errorf("hash password: %w", err)
	}
	acc.PasswordHash = hash

	if err := insertUnique(ctx, s.Store, acc); err != nil {
		return domain.Account{}, err
	}

	slogx.FromContext(ctx).Info("account created",
		slog.String("account_id", acc.ID),
		slog.String("role", acc.Role),
	)
	project(ctx, s.Projection, acc)
	return acc, nil
}

// Update replaces the profile fields of account id.
func (s *AccountService) Update(ctx context.Context, id string, in UpdateAccountInput) (domain.Account, error) {
	now := s.now()
	if err := in.Validate(s.PhoneRegion, now); err != nil {
		return domain.Account{}, err
	}

	if !idx.Valid(id) {
		return domain.Account{}, ErrNotFound
	}

	var acc domain.Account
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		acc, err = tx.Accounts().GetAccountByID(ctx, id)
		if err != nil {
			return mapStoreNotFound(err)
		}
		if err := in.profile().applyTo(&acc, s.PhoneRegion); err != nil {
			return err
		}
		if err := checkUnique(ctx, tx.Accounts(), acc); err != nil {
			return err
		}

		acc.UpdatedAt = now
		if err := tx.Accounts().UpdateAccount(ctx, acc); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return &ConflictError{Field: "account"}
			}
			return mapStoreNotFound(err)
		}
		return nil
	})
	if err != nil {
		return domain.Account{}, err
	}

	project(ctx, s.Projection, acc)
	return acc, nil
}

// SetStatus is the explicit administrative confirmation (or suspension) of an
// account. Deactivating ends its session.
func (s *AccountService) SetStatus(ctx context.Context, id string, status domain.Status) (domain.Account, error) {
	if !status.Valid() {
		return domain.Account{}, fieldError("status", "must be active or inactive")
	}

	acc, err := s.Get(ctx, id)
	if err != nil {
		return domain.Account{}, err
	}
	if acc.Status == status {
		return acc, nil
	}

	if err := s.Store.Accounts().UpdateAccountStatus(ctx, acc.ID, status); err != nil {
		return domain.Account{}, mapStoreNotFound(err)
	}
	acc.Status = status
	acc.UpdatedAt = s.now()

	if status == domain.StatusInactive {
		dropSession(ctx, s.Tokens, acc.Username)
	}

	slogx.FromContext(ctx).Info("account status changed",
		slog.String("account_id", acc.ID),
		slog.String("status", string(status)),
	)
	project(ctx, s.Projection, acc)
	return acc, nil
}

// SetRole assigns role to the account with username.
func (s *AccountService) SetRole(ctx context.Context, username, role string) (domain.Account, error) {
	if strings.TrimSpace(role) == "" {
		return domain.Account{}, fieldError("role", "cannot be blank")
	}
	role, err := s.resolveRole(ctx, role)
	if err != nil {
		return domain.Account{}, err
	}

	acc, err := s.GetByUsername(ctx, username)
	if err != nil {
		return domain.Account{}, err
	}
	if err := s.Store.Accounts().UpdateAccountRole(ctx, acc.ID, role); err != nil {
		return domain.Account{}, mapStoreNotFound(err)
	}
	acc.Role = role
	acc.UpdatedAt = s.now()

	slogx.FromContext(ctx).Info("account role changed",
		slog.String("account_id", acc.ID),
		slog.String("role", role),
	)
	project(ctx, s.Projection, acc)
	return acc, nil
}

// Delete removes the account and ends its session.
func (s *AccountService) Delete(ctx context.Context, id string) error {
	acc, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Store.Accounts().DeleteAccount(ctx, acc.ID); err != nil {
		return mapStoreNotFound(err)
	}

	dropSession(ctx, s.Tokens, acc.Username)
	slogx.FromContext(ctx).Info("account deleted", slog.String("account_id", acc.ID))

	if s.Projection != nil {
		if err := s.Projection.Delete(ctx, acc.ID); err != nil {
			slogx.FromContext(ctx).Warn("failed to project account deletion",
				slog.String("account_id", acc.ID),
				slog.Any("error", err),
			)
		}
	}
	return nil
}

// resolveRole returns the canonical role name, defaulting to user.
func (s *AccountService) resolveRole(ctx context.Context, name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return domain.RoleUser, nil
	}
	role, err := s.Store.Roles().GetRoleByName(ctx, name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", fieldError("role", "unknown role")
		}
		return "", err
	}
	return role.Name, nil
}

func (s *AccountService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func mapStoreNotFound(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
