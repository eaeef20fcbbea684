package service_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/aussiebroadwan/accounts/internal/auth/domain"
	"github.com/aussiebroadwan/accounts/internal/auth/service"
	"github.com/aussiebroadwan/accounts/pkg/idx"
	"github.com/stretchr/testify/require"
)

func createInput(username string) service.CreateAccountInput {
	return service.CreateAccountInput{RegisterInput: registration(username)}
}

func TestAccountCreateDefaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	acc, err := f.accounts.Create(ctx, createInput("bobby"))
	require.NoError(t, err)
	require.Equal(t, domain.StatusActive, acc.Status)
	require.Equal(t, domain.RoleUser, acc.Role)
	require.Zero(t, f.mailer.count(), "admin creation sends no activation mail")

	// Usable straight away.
	f.signIn(t, "bobby")
}

func TestAccountCreateWithRoleAndStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := createInput("carol")
	in.Role = "ADMIN"
	in.Status = "inactive"

	acc, err := f.accounts.Create(ctx, in)
	require.NoError(t, err)
	require.Equal(t, domain.RoleAdmin, acc.Role)
	require.Equal(t, domain.StatusInactive, acc.Status)

	in = createInput("dave")
	in.Role = "superuser"
	_, err = f.accounts.Create(ctx, in)
	require.ErrorIs(t, err, service.ErrValidation)

	in = createInput("erin")
	in.Status = "banned"
	_, err = f.accounts.Create(ctx, in)
	require.ErrorIs(t, err, service.ErrValidation)

	_, err = f.accounts.Create(ctx, createInput("carol"))
	require.ErrorIs(t, err, service.ErrConflict)
}

func TestAccountGet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.accounts.Create(ctx, createInput("bobby"))
	require.NoError(t, err)

	got, err := f.accounts.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "bobby", got.Username)

	_, err = f.accounts.Get(ctx, "not-an-id")
	require.ErrorIs(t, err, service.ErrNotFound)

	_, err = f.accounts.Get(ctx, idx.New().String())
	require.ErrorIs(t, err, service.ErrNotFound)

	_, err = f.accounts.GetByUsername(ctx, "nobody")
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestAccountList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := range 5 {
		_, err := f.accounts.Create(ctx, createInput(fmt.Sprintf("user%d", i)))
		require.NoError(t, err)
	}

	page, err := f.accounts.List(ctx, 2, 2)
	require.NoError(t, err)
	require.Equal(t, 5, page.Total)
	require.Equal(t, 2, page.Page)
	require.Len(t, page.Items, 2)
	require.Equal(t, "user2", page.Items[0].Username)

	page, err = f.accounts.List(ctx, 0, 0)
	require.NoError(t, err)
	require.Equal(t, 1, page.Page)
	require.Equal(t, service.DefaultPageSize, page.Size)
	require.Len(t, page.Items, 5)

	page, err = f.accounts.List(ctx, 1, 1000)
	require.NoError(t, err)
	require.Equal(t, service.MaxPageSize, page.Size)

	page, err = f.accounts.List(ctx, 9, 2)
	require.NoError(t, err)
	require.Empty(t, page.Items)
	require.Equal(t, 5, page.Total)
}

func TestAccountUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	bob, err := f.accounts.Create(ctx, createInput("bobby"))
	require.NoError(t, err)
	_, err = f.accounts.Create(ctx, createInput("carol"))
	require.NoError(t, err)

	updated, err := f.accounts.Update(ctx, bob.ID, service.UpdateAccountInput{
		Email:     "Robert@Example.com",
		Phone:     "+84 912 345 678",
		FirstName: "Robert",
		LastName:  "Builder",
		Gender:    "male",
	})
	require.NoError(t, err)
	require.Equal(t, "robert@example.com", updated.Email)
	require.Equal(t, "+84912345678", updated.Phone)
	require.Equal(t, "Robert", updated.FirstName)
	require.Equal(t, bob.PasswordHash, updated.PasswordHash)

	stored, err := f.accounts.Get(ctx, bob.ID)
	require.NoError(t, err)
	require.Equal(t, "robert@example.com", stored.Email)

	t.Run("keeping its own email is not a conflict", func(t *testing.T) {
		_, err := f.accounts.Update(ctx, bob.ID, service.UpdateAccountInput{
			Email: "robert@example.com", FirstName: "Rob", LastName: "Builder",
		})
		require.NoError(t, err)
	})

	t.Run("taking another account's email is", func(t *testing.T) {
		_, err := f.accounts.Update(ctx, bob.ID, service.UpdateAccountInput{
			Email: "carol@example.com", FirstName: "Rob", LastName: "Builder",
		})
		var cerr *service.ConflictError
		require.ErrorAs(t, err, &cerr)
		require.Equal(t, "email", cerr.Field)
	})

	t.Run("unknown account", func(t *testing.T) {
		_, err := f.accounts.Update(ctx, idx.New().String(), service.UpdateAccountInput{
			Email: "x@example.com", FirstName: "X", LastName: "Y",
		})
		require.ErrorIs(t, err, service.ErrNotFound)
	})
}

func TestAccountSetStatusEndsSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.activeAccount(t, "alice")
	signed := f.signIn(t, "alice")

	acc, err := f.accounts.SetStatus(ctx, signed.AccountID, domain.StatusInactive)
	require.NoError(t, err)
	require.Equal(t, domain.StatusInactive, acc.Status)
	require.False(t, f.authenticates(signed.AccessToken))

	_, err = f.auth.RefreshAccessToken(ctx, signed.RefreshToken)
	require.ErrorIs(t, err, service.ErrInvalidOrExpiredToken)

	_, err = f.accounts.SetStatus(ctx, signed.AccountID, domain.Status("frozen"))
	require.ErrorIs(t, err, service.ErrValidation)

	acc, err = f.accounts.SetStatus(ctx, signed.AccountID, domain.StatusActive)
	require.NoError(t, err)
	require.True(t, acc.IsActive())
	f.signIn(t, "alice")
}

func TestAccountSetRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.activeAccount(t, "alice")

	acc, err := f.accounts.SetRole(ctx, "alice", domain.RoleAdmin)
	require.NoError(t, err)
	require.Equal(t, domain.RoleAdmin, acc.Role)

	res := f.signIn(t, "alice")
	require.Equal(t, []string{domain.RoleAdmin}, res.Roles)

	_, err = f.accounts.SetRole(ctx, "alice", "root")
	require.ErrorIs(t, err, service.ErrValidation)

	_, err = f.accounts.SetRole(ctx, "nobody", domain.RoleUser)
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestAccountDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.activeAccount(t, "alice")
	signed := f.signIn(t, "alice")

	require.NoError(t, f.accounts.Delete(ctx, signed.AccountID))
	require.False(t, f.authenticates(signed.AccessToken))
	require.Equal(t, []string{signed.AccountID}, f.sink.deletes)

	_, err := f.accounts.Get(ctx, signed.AccountID)
	require.ErrorIs(t, err, service.ErrNotFound)

	require.ErrorIs(t, f.accounts.Delete(ctx, signed.AccountID), service.ErrNotFound)

	// The username is free again.
	_, err = f.auth.Register(ctx, registration("alice"))
	require.NoError(t, err)
}
