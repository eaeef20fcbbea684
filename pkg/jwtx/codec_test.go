package jwtx_test

import (
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/accounts/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func testKeys() map[jwtx.Purpose]jwtx.PurposeKey {
	return map[jwtx.Purpose]jwtx.PurposeKey{
		jwtx.PurposeAccess:     {Secret: []byte(strings.Repeat("a", 32)), TTL: 24 * time.Hour},
		jwtx.PurposeRefresh:    {Secret: []byte(strings.Repeat("r", 32)), TTL: 14 * 24 * time.Hour},
		jwtx.PurposeReset:      {Secret: []byte(strings.Repeat("p", 32)), TTL: time.Hour},
		jwtx.PurposeActivation: {Secret: []byte(strings.Repeat("v", 32)), TTL: 24 * time.Hour},
	}
}

func newCodec(t *testing.T) (*jwtx.Codec, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	c, err := jwtx.NewCodec(jwtx.CodecOptions{Issuer: "accounts", Keys: testKeys(), Now: clock.Now})
	require.NoError(t, err)
	return c, clock
}

func TestIssueThenVerifyUntilExpiry(t *testing.T) {
	for _, p := range jwtx.Purposes() {
		t.Run(p.String(), func(t *testing.T) {
			c, clock := newCodec(t)

			tok, err := c.Issue(p, "alice")
			require.NoError(t, err)
			require.True(t, c.Verify(tok, p, "alice"))

			clock.Advance(c.TTL(p) - time.Second)
			require.True(t, c.Verify(tok, p, "alice"))

			clock.Advance(time.Second)
			require.False(t, c.Verify(tok, p, "alice"))

			// Expiry never affects parsing
			sub, err := c.ParseSubject(tok, p)
			require.NoError(t, err)
			require.Equal(t, "alice", sub)
		})
	}
}

func TestCrossPurposeFailsClosed(t *testing.T) {
	c, _ := newCodec(t)

	for _, issued := range jwtx.Purposes() {
		tok, err := c.Issue(issued, "alice")
		require.NoError(t, err)

		for _, other := range jwtx.Purposes() {
			if other == issued {
				continue
			}
			_, err := c.ParseSubject(tok, other)
			require.ErrorIs(t, err, jwtx.ErrInvalidSig, "%s token parsed as %s", issued, other)
			require.ErrorIs(t, err, jwtx.ErrInvalidToken)
			require.False(t, c.Verify(tok, other, "alice"))
		}
	}
}

func TestEmbeddedPurposeMustMatch(t *testing.T) {
	c, clock := newCodec(t)
	keys := testKeys()

	// Correct access key but a refresh purpose claim.
	claims := jwtx.NewClaims(jwtx.PurposeRefresh, "alice", "accounts", time.Hour, clock.Now())
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(keys[jwtx.PurposeAccess].Secret)
	require.NoError(t, err)

	_, err = c.ParseSubject(forged, jwtx.PurposeAccess)
	require.ErrorIs(t, err, jwtx.ErrPurposeMismatch)
}

func TestVerifySubjectMismatch(t *testing.T) {
	c, _ := newCodec(t)

	tok, err := c.Issue(jwtx.PurposeAccess, "alice")
	require.NoError(t, err)

	require.False(t, c.Verify(tok, jwtx.PurposeAccess, "bob"))
	require.False(t, c.Verify(tok, jwtx.PurposeAccess, ""))
}

func TestParseRejectsGarbageAndOtherAlgorithms(t *testing.T) {
	c, clock := newCodec(t)

	_, err := c.ParseSubject("not.a.jwt", jwtx.PurposeAccess)
	require.ErrorIs(t, err, jwtx.ErrInvalidToken)

	_, err = c.ParseSubject("", jwtx.PurposeAccess)
	require.ErrorIs(t, err, jwtx.ErrMalformed)

	claims := jwtx.NewClaims(jwtx.PurposeAccess, "alice", "accounts", time.Hour, clock.Now())
	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(testKeys()[jwtx.PurposeAccess].Secret)
	require.NoError(t, err)

	_, err = c.ParseSubject(hs512, jwtx.PurposeAccess)
	require.ErrorIs(t, err, jwtx.ErrInvalidToken)
	require.False(t, c.Verify(hs512, jwtx.PurposeAccess, "alice"))
}

func TestIssuerIsChecked(t *testing.T) {
	c, _ := newCodec(t)

	other, err := jwtx.NewCodec(jwtx.CodecOptions{Issuer: "someone-else", Keys: testKeys()})
	require.NoError(t, err)

	tok, err := other.Issue(jwtx.PurposeAccess, "alice")
	require.NoError(t, err)

	_, err = c.ParseSubject(tok, jwtx.PurposeAccess)
	require.ErrorIs(t, err, jwtx.ErrIssuer)
}

func TestTokensAreUnique(t *testing.T) {
	c, _ := newCodec(t)

	a, err := c.Issue(jwtx.PurposeAccess, "alice")
	require.NoError(t, err)
	b, err := c.Issue(jwtx.PurposeAccess, "alice")
	require.NoError(t, err)

	// Same clock second, jti keeps them apart
	require.NotEqual(t, a, b)
}

func TestNewCodecValidatesKeys(t *testing.T) {
	t.Run("missing purpose", func(t *testing.T) {
		keys := testKeys()
		delete(keys, jwtx.PurposeReset)
		_, err := jwtx.NewCodec(jwtx.CodecOptions{Keys: keys})
		require.ErrorContains(t, err, "reset")
	})

	t.Run("short secret", func(t *testing.T) {
		keys := testKeys()
		keys[jwtx.PurposeAccess] = jwtx.PurposeKey{Secret: []byte("short"), TTL: time.Hour}
		_, err := jwtx.NewCodec(jwtx.CodecOptions{Keys: keys})
		require.Error(t, err)
	})

	t.Run("shared secret", func(t *testing.T) {
		keys := testKeys()
		keys[jwtx.PurposeRefresh] = keys[jwtx.PurposeAccess]
		_, err := jwtx.NewCodec(jwtx.CodecOptions{Keys: keys})
		require.ErrorContains(t, err, "share a key")
	})

	t.Run("zero ttl", func(t *testing.T) {
		keys := testKeys()
		keys[jwtx.PurposeActivation] = jwtx.PurposeKey{Secret: []byte(strings.Repeat("z", 32))}
		_, err := jwtx.NewCodec(jwtx.CodecOptions{Keys: keys})
		require.Error(t, err)
	})
}
