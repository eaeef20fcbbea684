package auth_test

import (
	"testing"

	"github.com/aussiebroadwan/accounts/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// TestAccountLifecycle walks one account through every public flow:
// register, CLI activation, sign in, refresh, logout, forgot and reset.
func TestAccountLifecycle(t *testing.T) {
	c := setupAccountsContainer(t)
	client := authsdk.NewSDKClient(c.BaseURL)
	ctx := t.Context()

	acc, err := client.Register(ctx, registerRequest("alice"))
	require.NoError(t, err)
	require.Equal(t, authsdk.StatusInactive, acc.Status)
	require.Equal(t, "user", acc.Role)

	// Inactive accounts cannot sign in
	_, err = client.SignIn(ctx, "alice", testPassword)
	require.ErrorIs(t, err, authsdk.ErrForbidden)

	c.cli(t, "activate", "alice")

	session, err := client.SignIn(ctx, "alice", testPassword)
	require.NoError(t, err)
	require.Equal(t, acc.ID, session.AccountID())
	require.True(t, session.HasRole("user"))

	me, err := session.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, "alice", me.Username)
	require.Equal(t, authsdk.StatusActive, me.Status)

	refreshToken := session.RefreshToken()
	pair, err := client.RefreshTokens(ctx, refreshToken)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.Equal(t, refreshToken, pair.RefreshToken, "refresh token is reused until the session ends")

	require.NoError(t, session.Logout(ctx))

	_, err = client.RefreshTokens(ctx, refreshToken)
	require.ErrorIs(t, err, authsdk.ErrUnauthorized)

	msg, err := client.ForgotPassword(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, msg)

	resetToken := c.lastResetToken(t)
	require.NoError(t, client.ResetPassword(ctx, authsdk.ResetPasswordRequest{
		Token:           resetToken,
		NewPassword:     newPassword,
		ConfirmPassword: newPassword,
	}))

	// Reset links are single use
	err = client.ResetPassword(ctx, authsdk.ResetPasswordRequest{
		Token:           resetToken,
		NewPassword:     newPassword,
		ConfirmPassword: newPassword,
	})
	require.ErrorIs(t, err, authsdk.ErrBadRequest)

	_, err = client.SignIn(ctx, "alice", testPassword)
	require.ErrorIs(t, err, authsdk.ErrUnauthorized)

	_, err = client.SignIn(ctx, "alice", newPassword)
	require.NoError(t, err)
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	c := setupAccountsContainer(t)
	client := authsdk.NewSDKClient(c.BaseURL)

	registerActive(t, c, client, "bobby")

	known, err := client.ForgotPassword(t.Context(), "bobby@example.com")
	require.NoError(t, err)

	unknown, err := client.ForgotPassword(t.Context(), "nobody@example.com")
	require.NoError(t, err)
	require.Equal(t, known, unknown)
}

func TestRegisterConflicts(t *testing.T) {
	c := setupAccountsContainer(t)
	client := authsdk.NewSDKClient(c.BaseURL)

	_, err := client.Register(t.Context(), registerRequest("carol"))
	require.NoError(t, err)

	_, err = client.Register(t.Context(), registerRequest("carol"))
	require.ErrorIs(t, err, authsdk.ErrConflict)

	var apiErr *authsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Contains(t, apiErr.Fields, "username")
}
