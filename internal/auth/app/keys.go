package app

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/accounts/pkg/cryptox"
	"github.com/aussiebroadwan/accounts/pkg/jwtx"
)

// ErrMissingTokenKey is returned in prod when a purpose has no configured
// secret.
var ErrMissingTokenKey = errors.New("token signing key not configured")

// InitTokenCodec builds the codec from the configured per purpose secrets.
//
// A blank secret is replaced by a random one outside prod. Tokens signed with
// generated secrets stop verifying when the process restarts, which signs
// every account out and voids outstanding activation and reset links.
func InitTokenCodec(cfg Config, logger *slog.Logger) (*jwtx.Codec, error) {
	configured := map[jwtx.Purpose]struct {
		env    string
		secret string
		ttl    time.Duration
	}{
		jwtx.PurposeAccess:     {"JWT_ACCESS_KEY", cfg.AccessKey, cfg.AccessExpiry},
		jwtx.PurposeRefresh:    {"JWT_REFRESH_KEY", cfg.RefreshKey, cfg.RefreshExpiry},
		jwtx.PurposeReset:      {"JWT_RESET_KEY", cfg.ResetKey, cfg.ResetExpiry},
		jwtx.PurposeActivation: {"JWT_ACTIVATION_KEY", cfg.ActivationKey, cfg.ActivationExpiry},
	}

	keys := make(map[jwtx.Purpose]jwtx.PurposeKey, len(configured))
	var generated []string

	for _, p := range jwtx.Purposes() {
		c := configured[p]

		var (
			secret []byte
			err    error
		)
		switch {
		case c.secret != "":
			secret, err = cryptox.DecodeSecret(c.secret)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", c.env, err)
			}
		case cfg.IsProd():
			return nil, fmt.Errorf("%s: %w", c.env, ErrMissingTokenKey)
		default:
			secret, err = cryptox.GenerateSecret(jwtx.MinSecretSize)
			if err != nil {
				return nil, err
			}
			generated = append(generated, c.env)
		}

		keys[p] = jwtx.PurposeKey{Secret: secret, TTL: c.ttl}
	}

	codec, err := jwtx.NewCodec(jwtx.CodecOptions{Issuer: cfg.Issuer, Keys: keys})
	if err != nil {
		return nil, err
	}

	if len(generated) > 0 {
		logger.Warn("generated ephemeral token keys, tokens will not survive a restart",
			"keys", generated,
		)
	}
	logger.Info("token codec ready",
		"issuer", cfg.Issuer,
		"access_ttl", codec.TTL(jwtx.PurposeAccess),
		"refresh_ttl", codec.TTL(jwtx.PurposeRefresh),
	)
	return codec, nil
}
