package authsdk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"sync"
)

// Session is a signed in account. On a 401 it refreshes the access token once
// and retries the request.
type Session struct {
	client *SDKClient

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
	accountID    string
	roles        []string
}

func newSession(client *SDKClient, pair *TokenPair) *Session {
	return &Session{
		client:       client,
		accessToken:  pair.AccessToken,
		refreshToken: pair.RefreshToken,
		accountID:    pair.AccountID,
		roles:        slices.Clone(pair.Roles),
	}
}

// AccessToken returns the current access token.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// RefreshToken returns the current refresh token.
func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

// AccountID is empty for sessions built with NewSessionFromTokens until the
// first refresh.
func (s *Session) AccountID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accountID
}

func (s *Session) Roles() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.roles)
}

func (s *Session) HasRole(role string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Contains(s.roles, role)
}

// Refresh replaces the access token using the refresh token.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshLocked(ctx)
}

func (s *Session) refreshLocked(ctx context.Context) error {
	if s.refreshToken == "" {
		return errors.New("no refresh token available")
	}

	pair, err := s.client.RefreshTokens(ctx, s.refreshToken)
	if err != nil {
		return fmt.Errorf("failed to refresh token: %w", err)
	}

	s.accessToken = pair.AccessToken
	s.refreshToken = pair.RefreshToken
	s.accountID = pair.AccountID
	s.roles = slices.Clone(pair.Roles)
	return nil
}

// refreshAfter refreshes unless another goroutine already replaced stale.
func (s *Session) refreshAfter(ctx context.Context, stale string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.accessToken != stale {
		return nil
	}
	return s.refreshLocked(ctx)
}

// doAuthRequest performs a request carrying the access token.
func (s *Session) doAuthRequest(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	token := s.AccessToken()

	resp, err := s.client.doRequest(ctx, method, path, body, map[string]string{
		"Authorization": "Bearer " + token,
	})
	if err != nil || resp.StatusCode != http.StatusUnauthorized || s.RefreshToken() == "" {
		return resp, err
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	if err := s.refreshAfter(ctx, token); err != nil {
		return nil, err
	}

	return s.client.doRequest(ctx, method, path, body, map[string]string{
		"Authorization": "Bearer " + s.AccessToken(),
	})
}

// Me returns the signed in account.
func (s *Session) Me(ctx context.Context) (*Account, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/auth/me", nil)
	if err != nil {
		return nil, err
	}

	var acc Account
	if _, err := decodeEnvelope(resp, &acc); err != nil {
		return nil, err
	}
	return &acc, nil
}

// ChangePassword replaces the password of the signed in account.
func (s *Session) ChangePassword(ctx context.Context, req ChangePasswordRequest) error {
	body, err := encodeBody(req)
	if err != nil {
		return err
	}
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/auth/change-password", body)
	if err != nil {
		return err
	}
	_, err = decodeEnvelope(resp, nil)
	return err
}

// Logout ends the session server side and forgets the local tokens.
func (s *Session) Logout(ctx context.Context) error {
	resp, err := s.client.doRequest(ctx, http.MethodPost, "/auth/logout", nil, map[string]string{
		"Authorization": "Bearer " + s.AccessToken(),
	})
	if err != nil {
		return err
	}
	if _, err := decodeEnvelope(resp, nil); err != nil {
		return err
	}

	s.mu.Lock()
	s.accessToken = ""
	s.refreshToken = ""
	s.mu.Unlock()
	return nil
}
