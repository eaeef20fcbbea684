package domain

import "time"

// SessionRecord is the live session of one account, kept in the token store
// under "session:<username>". Signing in again replaces it.
type SessionRecord struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ResetToken   string    `json:"resetToken,omitempty"`
	ExpiresAt    time.Time `json:"expiresAt"` // refresh token expiry
}
