package service

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/accounts/internal/auth/domain"
	"github.com/aussiebroadwan/accounts/internal/auth/mail"
	"github.com/aussiebroadwan/accounts/internal/auth/projection"
	"github.com/aussiebroadwan/accounts/internal/auth/store"
	"github.com/aussiebroadwan/accounts/internal/auth/tokenstore"
	"github.com/aussiebroadwan/accounts/pkg/cryptox"
	"github.com/aussiebroadwan/accounts/pkg/httpx"
	"github.com/aussiebroadwan/accounts/pkg/idx"
	"github.com/aussiebroadwan/accounts/pkg/jwtx"
	"github.com/aussiebroadwan/accounts/pkg/slogx"
	validation "github.com/go-ozzo/ozzo-validation"
)

// ForgotPasswordMessage is returned for every forgot-password request so the
// response does not reveal whether an email is registered.
const ForgotPasswordMessage = "If your email is registered, you will receive a password reset link"

const (
	DefaultActivationTTL = 24 * time.Hour
	DefaultResetTTL      = 15 * time.Minute
)

// PasswordHasher is satisfied by cryptox.Argon2Hasher.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, digest string) error
}

type SignInResult struct {
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
	AccountID    string   `json:"accountId"`
	Roles        []string `json:"roles"`
}

type AuthService struct {
	Store      store.Store
	Tokens     tokenstore.Store
	Codec      *jwtx.Codec
	Hasher     PasswordHasher
	Mailer     mail.Mailer
	Projection projection.Sink
	Links      LinkBuilder

	ActivationTTL time.Duration
	ResetTTL      time.Duration
	PhoneRegion   string

	// Now defaults to time.Now. It must agree with the codec clock.
	Now func() time.Time
}

var _ httpx.PrincipalResolver = (*AuthService)(nil)

func sessionKey(username string) string { return "session:" + username }
func activationKey(token string) string { return "activation:" + cryptox.FingerprintToken(token) }
func resetKey(token string) string      { return "reset:" + cryptox.FingerprintToken(token) }

// Register creates an inactive account and mails its activation link.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (domain.Account, error) {
	log := slogx.FromContext(ctx)
	now := s.now()

	in.Username = strings.TrimSpace(in.Username)
	if err := in.Validate(s.PhoneRegion, now); err != nil {
		return domain.Account{}, err
	}

	acc := domain.Account{
		ID:        idx.NewAt(now).String(),
		Username:  in.Username,
		Status:    domain.StatusInactive,
		Role:      domain.RoleUser,
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
	log.Info("account registered", slog.String("account_id", acc.ID), slog.String("username", acc.Username))

	token, err := s.Codec.Issue(jwtx.PurposeActivation, acc.Username)
	if err != nil {
		return domain.Account{}, err
	}
	if err := s.Tokens.Put(ctx, activationKey(token), acc.ID, s.activationTTL()); err != nil {
		return domain.Account{}, fmt.Errorf("store activation token: %w", err)
	}

	project(ctx, s.Projection, acc)
	s.send(ctx, mail.Message{
		To:      acc.Email,
		Subject: "Activate your account",
		Body: fmt.Sprintf("Hi %s,\n\nFollow the link below to activate your account:\n\n%s\n",
			acc.FirstName, s.Links.Activation(token)),
	})
	return acc, nil
}

// Activate redeems an activation token. Redeeming against an account that is
// already active returns it unchanged.
func (s *AuthService) Activate(ctx context.Context, token string) (domain.Account, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.Account{}, ErrInvalidOrExpiredToken
	}

	id, err := s.Tokens.TakeOnce(ctx, activationKey(token))
	if err != nil {
		if errors.Is(err, tokenstore.ErrNotFound) {
			return domain.Account{}, ErrInvalidOrExpiredToken
		}
		return domain.Account{}, err
	}

	acc, err := s.Store.Accounts().GetAccountByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Account{}, ErrInvalidOrExpiredToken
		}
		return domain.Account{}, err
	}
	if !s.Codec.Verify(token, jwtx.PurposeActivation, acc.Username) {
		return domain.Account{}, ErrInvalidOrExpiredToken
	}

	if acc.IsActive() {
		return acc, nil
	}

	if err := s.Store.Accounts().UpdateAccountStatus(ctx, acc.ID, domain.StatusActive); err != nil {
		return domain.Account{}, err
	}
	acc.Status = domain.StatusActive
	acc.UpdatedAt = s.now()

	slogx.FromContext(ctx).Info("account activated", slog.String("account_id", acc.ID))
	project(ctx, s.Projection, acc)
	return acc, nil
}

// SignIn exchanges credentials for a token pair and replaces any live session
// of the account.
func (s *AuthService) SignIn(ctx context.Context, username, password string) (SignInResult, error) {
	log := slogx.FromContext(ctx)

	acc, err := s.Store.Accounts().GetAccountByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return SignInResult{}, ErrInvalidCredentials
		}
		return SignInResult{}, err
	}

	if err := s.Hasher.Verify(password, acc.PasswordHash); err != nil {
		if !errors.Is(err, cryptox.ErrPasswordMismatch) {
			log.Error("password verification failed", slog.String("account_id", acc.ID), slog.Any("error", err))
		}
		return SignInResult{}, ErrInvalidCredentials
	}

	if !acc.IsActive() {
		log.Info("sign in refused for inactive account", slog.String("account_id", acc.ID))
		return SignInResult{}, ErrInactiveAccount
	}

	access, err := s.Codec.Issue(jwtx.PurposeAccess, acc.Username)
	if err != nil {
		return SignInResult{}, err
	}
	refresh, err := s.Codec.Issue(jwtx.PurposeRefresh, acc.Username)
	if err != nil {
		return SignInResult{}, err
	}

	rec := domain.SessionRecord{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    s.now().Add(s.Codec.TTL(jwtx.PurposeRefresh)),
	}
	if err := s.saveSession(ctx, acc.Username, rec); err != nil {
		return SignInResult{}, err
	}

	log.Info("signed in", slog.String("account_id", acc.ID))
	return SignInResult{
		AccessToken:  access,
		RefreshToken: refresh,
		AccountID:    acc.ID,
		Roles:        acc.RoleNames(),
	}, nil
}

// RefreshAccessToken issues a new access token for the live session holding
// refreshToken. The refresh token itself is not rotated.
func (s *AuthService) RefreshAccessToken(ctx context.Context, refreshToken string) (SignInResult, error) {
	refreshToken = strings.TrimSpace(refreshToken)

	subject, err := s.Codec.ParseSubject(refreshToken, jwtx.PurposeRefresh)
	if err != nil {
		return SignInResult{}, ErrInvalidOrExpiredToken
	}

	acc, err := s.Store.Accounts().GetAccountByUsername(ctx, subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return SignInResult{}, ErrNotFound
		}
		return SignInResult{}, err
	}

	if !s.Codec.Verify(refreshToken, jwtx.PurposeRefresh, acc.Username) {
		return SignInResult{}, ErrInvalidOrExpiredToken
	}

	// Logout or a newer sign in revokes the refresh token even though it is
	// still cryptographically valid.
	rec, err := s.loadSession(ctx, acc.Username)
	if err != nil {
		if errors.Is(err, tokenstore.ErrNotFound) {
			return SignInResult{}, ErrInvalidOrExpiredToken
		}
		return SignInResult{}, err
	}
	if !tokensEqual(rec.RefreshToken, refreshToken) {
		return SignInResult{}, ErrInvalidOrExpiredToken
	}

	access, err := s.Codec.Issue(jwtx.PurposeAccess, acc.Username)
	if err != nil {
		return SignInResult{}, err
	}
	rec.AccessToken = access
	if err := s.saveSession(ctx, acc.Username, rec); err != nil {
		return SignInResult{}, err
	}

	return SignInResult{
		AccessToken:  access,
		RefreshToken: refreshToken,
		AccountID:    acc.ID,
		Roles:        acc.RoleNames(),
	}, nil
}

// Logout drops the session of username. Logging out twice is not an error.
func (s *AuthService) Logout(ctx context.Context, username string) error {
	if err := s.Tokens.Delete(ctx, sessionKey(username)); err != nil {
		return err
	}
	slogx.FromContext(ctx).Info("logged out", slog.String("username", username))
	return nil
}

// ForgotPassword mails a reset link when email belongs to an account. The
// outcome is the same whether or not it does.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	log := slogx.FromContext(ctx)

	email = strings.ToLower(strings.TrimSpace(email))
	if err := validation.Validate(email, emailRules...); err != nil {
		return "", fieldError("email", err.Error())
	}

	acc, err := s.Store.Accounts().GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Debug("forgot password for unknown email")
			return ForgotPasswordMessage, nil
		}
		return "", err
	}

	token, err := s.Codec.Issue(jwtx.PurposeReset, acc.Username)
	if err != nil {
		return "", err
	}
	if err := s.Tokens.Put(ctx, resetKey(token), acc.ID, s.resetTTL()); err != nil {
		return "", fmt.Errorf("store reset token: %w", err)
	}

	rec, err := s.loadSession(ctx, acc.Username)
	switch {
	case err == nil:
		rec.ResetToken = token
		if err := s.saveSession(ctx, acc.Username, rec); err != nil {
			log.Warn("failed to record reset token on session", slog.Any("error", err))
		}
	case !errors.Is(err, tokenstore.ErrNotFound):
		log.Warn("failed to load session", slog.Any("error", err))
	}

	log.Info("password reset requested", slog.String("account_id", acc.ID))
	s.send(ctx, mail.Message{
		To:      acc.Email,
		Subject: "Reset your password",
		Body: fmt.Sprintf("Hi %s,\n\nFollow the link below to choose a new password:\n\n%s\n\nIf you did not ask for this you can ignore this email.\n",
			acc.FirstName, s.Links.Reset(token)),
	})
	return ForgotPasswordMessage, nil
}

// ResetPassword redeems a reset token, sets the new password and ends the
// account's session.
func (s *AuthService) ResetPassword(ctx context.Context, in ResetPasswordInput) error {
	in.Token = strings.TrimSpace(in.Token)
	if err := in.Validate(); err != nil {
		return err
	}

	id, err := s.Tokens.TakeOnce(ctx, resetKey(in.Token))
	if err != nil {
		if errors.Is(err, tokenstore.ErrNotFound) {
			return ErrInvalidOrExpiredToken
		}
		return err
	}

	acc, err := s.Store.Accounts().GetAccountByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidOrExpiredToken
		}
		return err
	}
	if !s.Codec.Verify(in.Token, jwtx.PurposeReset, acc.Username) {
		return ErrInvalidOrExpiredToken
	}

	hash, err := s.Hasher.Hash(in.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.Store.Accounts().UpdateAccountPasswordHash(ctx, acc.ID, hash); err != nil {
		return err
	}

	dropSession(ctx, s.Tokens, acc.Username)
	slogx.FromContext(ctx).Info("password reset", slog.String("account_id", acc.ID))
	return nil
}

// ChangePassword replaces the password of an authenticated account after
// checking the current one.
func (s *AuthService) ChangePassword(ctx context.Context, username string, in ChangePasswordInput) error {
	acc, err := s.Store.Accounts().GetAccountByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if !acc.IsActive() {
		return ErrInactiveAccount
	}
	if err := s.Hasher.Verify(in.OldPassword, acc.PasswordHash); err != nil {
		return ErrInvalidCredentials
	}
	if err := in.Validate(); err != nil {
		return err
	}

	hash, err := s.Hasher.Hash(in.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.Store.Accounts().UpdateAccountPasswordHash(ctx, acc.ID, hash); err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("password changed", slog.String("account_id", acc.ID))
	return nil
}

// ResolvePrincipal maps an access token to its account. The token must be the
// one held by the live session, so logout, a newer sign in or a refresh all
// invalidate it.
func (s *AuthService) ResolvePrincipal(ctx context.Context, token string) (httpx.Principal, bool) {
	subject, err := s.Codec.ParseSubject(token, jwtx.PurposeAccess)
	if err != nil {
		return nil, false
	}
	if !s.Codec.Verify(token, jwtx.PurposeAccess, subject) {
		return nil, false
	}

	rec, err := s.loadSession(ctx, subject)
	if err != nil || !tokensEqual(rec.AccessToken, token) {
		return nil, false
	}

	acc, err := s.Store.Accounts().GetAccountByUsername(ctx, subject)
	if err != nil || !acc.IsActive() {
		return nil, false
	}
	return acc, true
}

func (s *AuthService) loadSession(ctx context.Context, username string) (domain.SessionRecord, error) {
	raw, err := s.Tokens.Get(ctx, sessionKey(username))
	if err != nil {
		return domain.SessionRecord{}, err
	}
	var rec domain.SessionRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return domain.SessionRecord{}, fmt.Errorf("decode session: %w", err)
	}
	return rec, nil
}

// saveSession writes rec with a TTL that ends when its refresh token expires.
func (s *AuthService) saveSession(ctx context.Context, username string, rec domain.SessionRecord) error {
	ttl := rec.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return ErrInvalidOrExpiredToken
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.Tokens.Put(ctx, sessionKey(username), string(raw), ttl)
}

func (s *AuthService) send(ctx context.Context, msg mail.Message) {
	if s.Mailer == nil {
		return
	}
	if err := s.Mailer.Send(ctx, msg); err != nil {
		slogx.FromContext(ctx).Warn("failed to send mail",
			slog.String("subject", msg.Subject),
			slog.Any("error", err),
		)
	}
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *AuthService) activationTTL() time.Duration {
	if s.ActivationTTL > 0 {
		return s.ActivationTTL
	}
	return DefaultActivationTTL
}

func (s *AuthService) resetTTL() time.Duration {
	if s.ResetTTL > 0 {
		return s.ResetTTL
	}
	return DefaultResetTTL
}

func tokensEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
