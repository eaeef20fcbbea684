package store

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/accounts/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this. Sub-repositories are reached through methods so a Tx can
// hand out the same repos bound to the transaction.
type Store interface {
	Accounts() Accounts
	Roles() Roles

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Accounts interface {
	GetAccountByID(ctx context.Context, id string) (domain.Account, error)
	GetAccountByUsername(ctx context.Context, username string) (domain.Account, error)

	// GetAccountByEmail matches case-insensitively; emails are stored lowercased.
	GetAccountByEmail(ctx context.Context, email string) (domain.Account, error)

	// GetAccountByPhone expects an E.164 number.
	GetAccountByPhone(ctx context.Context, phone string) (domain.Account, error)

	// CreateAccount inserts a new account (id is provided by app via ULID). Unique
	// violations on username, email or phone return ErrAlreadyExists.
	CreateAccount(ctx context.Context, a domain.Account) error

	// UpdateAccount rewrites the profile fields (email, phone, names, date of
	// birth, gender) and updated_at.
	UpdateAccount(ctx context.Context, a domain.Account) error

	UpdateAccountStatus(ctx context.Context, id string, status domain.Status) error
	UpdateAccountRole(ctx context.Context, id string, role string) error

	// UpdateAccountPasswordHash sets the password_hash (argon2) and bumps updated_at.
	UpdateAccountPasswordHash(ctx context.Context, id string, hash string) error

	DeleteAccount(ctx context.Context, id string) error

	// ListAccounts returns a page ordered by creation (oldest first) and the
	// total number of accounts.
	ListAccounts(ctx context.Context, offset, limit int) ([]domain.Account, int, error)

	CountAccounts(ctx context.Context) (int, error)
}

type Roles interface {
	GetRoleByName(ctx context.Context, name string) (domain.Role, error)
	ListRoles(ctx context.Context) ([]domain.Role, error)
}
