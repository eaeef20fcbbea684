// Package projection publishes a read model of accounts for downstream
// services. Writes are fire and forget; the account store stays the source of
// truth.
package projection

import (
	"context"
	"time"

	"github.com/aussiebroadwan/accounts/internal/auth/domain"
)

const (
	EventUpserted = "account.upserted"
	EventDeleted  = "account.deleted"
)

// AccountDocument is the public view of an account. It never carries the
// password hash.
type AccountDocument struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Status    string    `json:"status"`
	Role      string    `json:"role"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func FromAccount(a domain.Account) AccountDocument {
	return AccountDocument{
		ID:        a.ID,
		Username:  a.Username,
		Email:     a.Email,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Status:    string(a.Status),
		Role:      a.Role,
		UpdatedAt: a.UpdatedAt,
	}
}

type Event struct {
	Type       string           `json:"type"`
	AccountID  string           `json:"accountId"`
	Account    *AccountDocument `json:"account,omitempty"`
	OccurredAt time.Time        `json:"occurredAt"`
}

type Sink interface {
	Upsert(ctx context.Context, doc AccountDocument) error
	Delete(ctx context.Context, id string) error
	Close() error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Upsert(context.Context, AccountDocument) error { return nil }
func (Nop) Delete(context.Context, string) error          { return nil }
func (Nop) Close() error                                  { return nil }
