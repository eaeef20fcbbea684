package authsdk_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/aussiebroadwan/accounts/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

func writeEnvelope(w http.ResponseWriter, code int, msg string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{"status": code, "message": msg, "data": data})
}

func TestSignInAndMe(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/access-token", func(w http.ResponseWriter, r *http.Request) {
		var req authsdk.SignInRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Password != "Sup3r$ecret" {
			writeEnvelope(w, http.StatusUnauthorized, "Invalid username or password", nil)
			return
		}
		writeEnvelope(w, http.StatusOK, "OK", authsdk.TokenPair{
			AccessToken: "access-1", RefreshToken: "refresh", AccountID: "01J", Roles: []string{"user"},
		})
	})
	mux.HandleFunc("GET /auth/me", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer access-1", r.Header.Get("Authorization"))
		writeEnvelope(w, http.StatusOK, "OK", authsdk.Account{ID: "01J", Username: "alice"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := authsdk.NewSDKClient(srv.URL + "/")
	ctx := context.Background()

	_, err := client.SignIn(ctx, "alice", "wrong")
	require.ErrorIs(t, err, authsdk.ErrUnauthorized)

	var apiErr *authsdk.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, "Invalid username or password", apiErr.Message)

	session, err := client.SignIn(ctx, "alice", "Sup3r$ecret")
	require.NoError(t, err)
	require.Equal(t, "01J", session.AccountID())
	require.True(t, session.HasRole("user"))
	require.False(t, session.HasRole("admin"))

	me, err := session.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, "alice", me.Username)
}

func TestSessionRefreshesOnUnauthorized(t *testing.T) {
	var refreshes atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "refresh", r.Header.Get("X-Refresh-Token"))
		refreshes.Add(1)
		writeEnvelope(w, http.StatusOK, "OK", authsdk.TokenPair{
			AccessToken: "fresh", RefreshToken: "refresh", AccountID: "01J", Roles: []string{"admin"},
		})
	})
	mux.HandleFunc("GET /accounts/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer fresh" {
			writeEnvelope(w, http.StatusUnauthorized, "Authentication required", nil)
			return
		}
		writeEnvelope(w, http.StatusOK, "OK", authsdk.Account{ID: r.PathValue("id")})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	session := authsdk.NewSDKClient(srv.URL).NewSessionFromTokens("stale", "refresh")

	acc, err := session.GetAccount(context.Background(), "01J")
	require.NoError(t, err)
	require.Equal(t, "01J", acc.ID)
	require.Equal(t, "fresh", session.AccessToken())
	require.Equal(t, int32(1), refreshes.Load())
	require.True(t, session.HasRole("admin"))

	_, err = session.GetAccount(context.Background(), "01K")
	require.NoError(t, err)
	require.Equal(t, int32(1), refreshes.Load(), "valid token needs no refresh")
}

func TestValidationErrorFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(authsdk.ErrorResponse{
			Status:  http.StatusBadRequest,
			Message: "Validation failed",
			Errors:  map[string]string{"email": "must be a valid email address"},
		})
	}))
	defer srv.Close()

	_, err := authsdk.NewSDKClient(srv.URL).Register(context.Background(), authsdk.RegisterRequest{})
	require.ErrorIs(t, err, authsdk.ErrBadRequest)

	var apiErr *authsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "must be a valid email address", apiErr.Fields["email"])
}

func TestNonEnvelopeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := authsdk.NewSDKClient(srv.URL).ForgotPassword(context.Background(), "a@example.com")
	require.ErrorIs(t, err, authsdk.ErrServer)
	require.Contains(t, err.Error(), "Bad Gateway")
}

func TestLogoutForgetsTokens(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/logout", r.URL.Path)
		writeEnvelope(w, http.StatusOK, "Logged out successfully", nil)
	}))
	defer srv.Close()

	session := authsdk.NewSDKClient(srv.URL).NewSessionFromTokens("a", "r")
	require.NoError(t, session.Logout(context.Background()))
	require.Empty(t, session.AccessToken())
	require.Empty(t, session.RefreshToken())
}
