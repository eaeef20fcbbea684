package jwtx

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Purpose identifies what a token may be used for. Each purpose has its own
// signing key and lifetime.
type Purpose string

const (
	PurposeAccess     Purpose = "access"
	PurposeRefresh    Purpose = "refresh"
	PurposeReset      Purpose = "reset"
	PurposeActivation Purpose = "activation"
)

// Purposes lists every purpose the codec must be configured for.
func Purposes() []Purpose {
	return []Purpose{PurposeAccess, PurposeRefresh, PurposeReset, PurposeActivation}
}

func (p Purpose) String() string { return string(p) }

// MinSecretSize is the smallest HMAC key accepted, matching the SHA-256 block
// output size.
const MinSecretSize = 32

var (
	// ErrInvalidToken is wrapped by every parse failure.
	ErrInvalidToken = errors.New("jwtx: invalid token")

	ErrMalformed       = fmt.Errorf("%w: malformed", ErrInvalidToken)
	ErrInvalidSig      = fmt.Errorf("%w: invalid signature", ErrInvalidToken)
	ErrPurposeMismatch = fmt.Errorf("%w: purpose mismatch", ErrInvalidToken)
	ErrIssuer          = fmt.Errorf("%w: issuer mismatch", ErrInvalidToken)
	ErrExpired         = fmt.Errorf("%w: expired", ErrInvalidToken)
	ErrUnknownPurpose  = errors.New("jwtx: unknown purpose")
)

// PurposeKey is the HMAC secret and lifetime bound to one purpose.
type PurposeKey struct {
	Secret []byte
	TTL    time.Duration
}

type CodecOptions struct {
	// Issuer is written to and checked against the iss claim. Empty disables
	// the check.
	Issuer string

	// Keys must contain all four purposes with distinct secrets.
	Keys map[Purpose]PurposeKey

	// Now defaults to time.Now.
	Now func() time.Time
}

// Codec issues and validates HS256 tokens for the four token purposes.
type Codec struct {
	issuer string
	keys   map[Purpose]PurposeKey
	now    func() time.Time
	parser *jwt.Parser
}

// NewCodec validates the key material and returns a ready codec.
func NewCodec(opts CodecOptions) (*Codec, error) {
	keys := make(map[Purpose]PurposeKey, len(opts.Keys))

	for _, p := range Purposes() {
		k, ok := opts.Keys[p]
		if !ok {
			return nil, fmt.Errorf("jwtx: no key configured for %s tokens", p)
		}
		if len(k.Secret) < MinSecretSize {
			return nil, fmt.Errorf("jwtx: %s key must be at least %d bytes", p, MinSecretSize)
		}
		if k.TTL <= 0 {
			return nil, fmt.Errorf("jwtx: %s ttl must be positive", p)
		}
		for other, seen := range keys {
			if bytes.Equal(seen.Secret, k.Secret) {
				return nil, fmt.Errorf("jwtx: %s and %s tokens share a key", other, p)
			}
		}
		keys[p] = PurposeKey{Secret: bytes.Clone(k.Secret), TTL: k.TTL}
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Codec{
		issuer: opts.Issuer,
		keys:   keys,
		now:    now,
		// Expiry is checked by Verify against the codec clock, not by the
		// parser against wall time.
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithoutClaimsValidation(),
		),
	}, nil
}

// TTL returns the configured lifetime for tokens of purpose p.
func (c *Codec) TTL(p Purpose) time.Duration {
	return c.keys[p].TTL
}

// Issue signs a new token for subject under purpose p.
func (c *Codec) Issue(p Purpose, subject string) (string, error) {
	key, ok := c.keys[p]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownPurpose, p)
	}
	if subject == "" {
		return "", errors.New("jwtx: subject is required")
	}

	claims := NewClaims(p, subject, c.issuer, key.TTL, c.now())
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key.Secret)
	if err != nil {
		return "", fmt.Errorf("jwtx: sign %s token: %w", p, err)
	}
	return signed, nil
}

// Parse checks the signature with the key for p and that the token was issued
// for p. Expiry is not checked.
func (c *Codec) Parse(token string, p Purpose) (Claims, error) {
	key, ok := c.keys[p]
	if !ok {
		return Claims{}, fmt.Errorf("%w: %q", ErrUnknownPurpose, p)
	}

	claims := &Claims{}
	_, err := c.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return key.Secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return Claims{}, ErrMalformed
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
			return Claims{}, ErrInvalidSig
		default:
			return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
	}

	if claims.Purpose != p {
		return Claims{}, ErrPurposeMismatch
	}
	if claims.Subject == "" {
		return Claims{}, ErrMalformed
	}
	if err := claims.ValidateIssuer(c.issuer); err != nil {
		return Claims{}, err
	}
	return *claims, nil
}

// ParseSubject returns the subject of a token issued for p.
func (c *Codec) ParseSubject(token string, p Purpose) (string, error) {
	claims, err := c.Parse(token, p)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// Verify reports whether token is a genuine, unexpired p token for
// expectedSubject. It never returns an error; every failure is false.
func (c *Codec) Verify(token string, p Purpose, expectedSubject string) bool {
	claims, err := c.Parse(token, p)
	if err != nil {
		return false
	}
	if expectedSubject == "" || claims.Subject != expectedSubject {
		return false
	}
	return claims.ValidateExpiryAt(c.now()) == nil
}
