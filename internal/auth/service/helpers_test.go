package service_test

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/accounts/internal/auth/mail"
	"github.com/aussiebroadwan/accounts/internal/auth/projection"
	"github.com/aussiebroadwan/accounts/internal/auth/service"
	"github.com/aussiebroadwan/accounts/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/accounts/internal/auth/tokenstore/drivers/memory"
	"github.com/aussiebroadwan/accounts/pkg/cryptox"
	"github.com/aussiebroadwan/accounts/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const strongPassword = "Sup3r$ecret"

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type captureMailer struct {
	mu   sync.Mutex
	sent []mail.Message
	fail error
}

func (m *captureMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *captureMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

var tokenParam = regexp.MustCompile(`\?token=(\S+)`)

// lastToken pulls the token out of the link in the most recent message.
func (m *captureMailer) lastToken(t *testing.T, subject string) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := len(m.sent) - 1; i >= 0; i-- {
		if m.sent[i].Subject != subject {
			continue
		}
		match := tokenParam.FindStringSubmatch(m.sent[i].Body)
		require.Len(t, match, 2, "no link in %q", m.sent[i].Body)
		tok, err := url.QueryUnescape(match[1])
		require.NoError(t, err)
		return tok
	}
	t.Fatalf("no %q message sent", subject)
	return ""
}

type captureSink struct {
	mu      sync.Mutex
	upserts []projection.AccountDocument
	deletes []string
}

func (s *captureSink) Upsert(_ context.Context, doc projection.AccountDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upserts = append(s.upserts, doc)
	return nil
}

func (s *captureSink) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes = append(s.deletes, id)
	return nil
}

func (s *captureSink) Close() error { return nil }

type fixture struct {
	auth     *service.AuthService
	accounts *service.AccountService
	store    *sqlite.Store
	tokens   *memory.Store
	mailer   *captureMailer
	sink     *captureSink
	clock    *clock
}

func secret(b byte) []byte {
	s := make([]byte, jwtx.MinSecretSize)
	for i := range s {
		s[i] = b
	}
	return s
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	c := &clock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}

	st, err := sqlite.NewStore(filepath.Join(t.TempDir(), "accounts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	codec, err := jwtx.NewCodec(jwtx.CodecOptions{
		Issuer: "accounts-test",
		Keys: map[jwtx.Purpose]jwtx.PurposeKey{
			jwtx.PurposeAccess:     {Secret: secret('a'), TTL: 24 * time.Hour},
			jwtx.PurposeRefresh:    {Secret: secret('r'), TTL: 14 * 24 * time.Hour},
			jwtx.PurposeReset:      {Secret: secret('p'), TTL: time.Hour},
			jwtx.PurposeActivation: {Secret: secret('v'), TTL: 24 * time.Hour},
		},
		Now: c.Now,
	})
	require.NoError(t, err)

	tokens := memory.NewWithClock(c.Now)
	hasher := cryptox.NewArgon2Hasher("test-pepper")
	mailer := &captureMailer{}
	sink := &captureSink{}

	return &fixture{
		auth: &service.AuthService{
			Store:         st,
			Tokens:        tokens,
			Codec:         codec,
			Hasher:        hasher,
			Mailer:        mailer,
			Projection:    sink,
			Links:         service.LinkBuilder{BaseURL: "https://accounts.example.com"},
			ActivationTTL: 24 * time.Hour,
			ResetTTL:      15 * time.Minute,
			PhoneRegion:   "VN",
			Now:           c.Now,
		},
		accounts: &service.AccountService{
			Store:       st,
			Tokens:      tokens,
			Hasher:      hasher,
			Projection:  sink,
			PhoneRegion: "VN",
			Now:         c.Now,
		},
		store:  st,
		tokens: tokens,
		mailer: mailer,
		sink:   sink,
		clock:  c,
	}
}

func registration(username string) service.RegisterInput {
	return service.RegisterInput{
		Username:        username,
		Password:        strongPassword,
		ConfirmPassword: strongPassword,
		Email:           fmt.Sprintf("%s@example.com", username),
		FirstName:       "Test",
		LastName:        "User",
	}
}

// activeAccount registers username and redeems its activation link.
func (f *fixture) activeAccount(t *testing.T, username string) {
	t.Helper()
	ctx := context.Background()

	_, err := f.auth.Register(ctx, registration(username))
	require.NoError(t, err)

	_, err = f.auth.Activate(ctx, f.mailer.lastToken(t, "Activate your account"))
	require.NoError(t, err)
}

func (f *fixture) signIn(t *testing.T, username string) service.SignInResult {
	t.Helper()

	res, err := f.auth.SignIn(context.Background(), username, strongPassword)
	require.NoError(t, err)
	return res
}

func (f *fixture) authenticates(token string) bool {
	_, ok := f.auth.ResolvePrincipal(context.Background(), token)
	return ok
}

var errBoom = errors.New("boom")
