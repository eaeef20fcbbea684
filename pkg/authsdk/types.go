package authsdk

import "time"

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// envelope is the wrapper around every response body.
type envelope[T any] struct {
	Status  int               `json:"status"`
	Message string            `json:"message"`
	Data    T                 `json:"data"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// MessageResponse is the envelope of endpoints that only report an outcome.
type MessageResponse struct {
	Status  int    `json:"status" example:"200"`
	Message string `json:"message" example:"Logged out successfully"`
}

// ErrorResponse is the envelope of every failed request.
type ErrorResponse struct {
	Status  int               `json:"status" example:"400"`
	Message string            `json:"message" example:"Validation failed"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// Account is the public view of an account. The password hash never leaves
// the service.
type Account struct {
	ID          string    `json:"id" example:"01JAB3K5Q7W8X9Y0Z1A2B3C4D5"`
	Username    string    `json:"username" example:"alice"`
	Email       string    `json:"email" example:"alice@example.com"`
	Phone       string    `json:"phone,omitempty" example:"+84912345678"`
	FirstName   string    `json:"firstName" example:"Alice"`
	LastName    string    `json:"lastName" example:"Nguyen"`
	DateOfBirth string    `json:"dateOfBirth,omitempty" example:"1994-07-21"`
	Gender      string    `json:"gender,omitempty" example:"female"`
	Status      string    `json:"status" example:"active"`
	Role        string    `json:"role" example:"user"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ActivationResult is returned after an activation link is redeemed.
type ActivationResult struct {
	Username string `json:"username" example:"alice"`
	Email    string `json:"email" example:"alice@example.com"`
	Status   string `json:"status" example:"active"`
}

// TokenPair is the outcome of sign in and refresh.
type TokenPair struct {
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
	AccountID    string   `json:"accountId"`
	Roles        []string `json:"roles"`
}

// AccountPage is one page of the account listing.
type AccountPage struct {
	Items []Account `json:"items"`
	Page  int       `json:"page" example:"1"`
	Size  int       `json:"size" example:"20"`
	Total int       `json:"total" example:"42"`
}

type RegisterRequest struct {
	Username        string `json:"username" example:"alice"`
	Password        string `json:"password" example:"Sup3r$ecret"`
	ConfirmPassword string `json:"confirmPassword" example:"Sup3r$ecret"`
	Email           string `json:"email" example:"alice@example.com"`
	Phone           string `json:"phone,omitempty" example:"0912345678"`
	FirstName       string `json:"firstName" example:"Alice"`
	LastName        string `json:"lastName" example:"Nguyen"`
	DateOfBirth     string `json:"dateOfBirth,omitempty" example:"1994-07-21"`
	Gender          string `json:"gender,omitempty" example:"female"`
}

type SignInRequest struct {
	Username string `json:"username" example:"alice"`
	Password string `json:"password" example:"Sup3r$ecret"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" example:"alice@example.com"`
}

type ResetPasswordRequest struct {
	Token           string `json:"token"`
	NewPassword     string `json:"newPassword" example:"N3w$ecret!"`
	ConfirmPassword string `json:"confirmPassword" example:"N3w$ecret!"`
}

type ChangePasswordRequest struct {
	OldPassword     string `json:"oldPassword" example:"Sup3r$ecret"`
	NewPassword     string `json:"newPassword" example:"N3w$ecret!"`
	ConfirmPassword string `json:"confirmPassword" example:"N3w$ecret!"`
}

// CreateAccountRequest is registration plus the role and status an admin
// chooses. Both are optional and default to user and active.
type CreateAccountRequest struct {
	RegisterRequest
	Role   string `json:"role,omitempty" example:"user"`
	Status string `json:"status,omitempty" example:"active"`
}

type UpdateAccountRequest struct {
	Email       string `json:"email" example:"alice@example.com"`
	Phone       string `json:"phone,omitempty" example:"0912345678"`
	FirstName   string `json:"firstName" example:"Alice"`
	LastName    string `json:"lastName" example:"Nguyen"`
	DateOfBirth string `json:"dateOfBirth,omitempty" example:"1994-07-21"`
	Gender      string `json:"gender,omitempty" example:"female"`
}

// HealthResponse is returned by the liveness and readiness probes.
type HealthResponse struct {
	Status  string        `json:"status" example:"ok"`
	Uptime  string        `json:"uptime" example:"1h2m3s"`
	Version string        `json:"version" example:"dev"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

type HealthChecks struct {
	Database   string `json:"database" example:"ok"`
	TokenStore string `json:"tokenStore" example:"ok"`
}
