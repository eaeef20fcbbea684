package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/accounts/internal/auth/service"
	"github.com/aussiebroadwan/accounts/pkg/httpx"
	"github.com/aussiebroadwan/accounts/pkg/slogx"
)

const (
	msgInvalidCredentials = "Invalid username or password"
	msgInvalidToken       = "Invalid or expired token"
)

// writeServiceError maps a service error onto an envelope response. Errors
// outside the service taxonomy are logged and reported as 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr *service.ValidationError
		cerr *service.ConflictError
	)

	switch {
	case errors.As(err, &verr):
		httpx.WriteValidationError(w, "Validation failed", verr.Fields)
	case errors.As(err, &cerr):
		httpx.WriteJSON(w, http.StatusConflict, httpx.Envelope{
			Status:  http.StatusConflict,
			Message: cerr.Error(),
			Errors:  map[string]string{cerr.Field: "already in use"},
		})
	case errors.Is(err, service.ErrInvalidCredentials):
		httpx.WriteError(w, http.StatusUnauthorized, msgInvalidCredentials)
	case errors.Is(err, service.ErrInvalidOrExpiredToken):
		httpx.WriteError(w, http.StatusUnauthorized, msgInvalidToken)
	case errors.Is(err, service.ErrInactiveAccount):
		httpx.WriteError(w, http.StatusForbidden, "Account is not activated")
	case errors.Is(err, service.ErrForbidden):
		httpx.WriteError(w, http.StatusForbidden, "Access denied")
	case errors.Is(err, service.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "Account not found")
	default:
		slogx.FromContext(r.Context()).Error("request failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// writeTokenError is writeServiceError for endpoints where a bad one-time
// token is a client input error rather than an authentication failure.
func writeTokenError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, service.ErrInvalidOrExpiredToken) {
		httpx.WriteError(w, http.StatusBadRequest, msgInvalidToken)
		return
	}
	writeServiceError(w, r, err)
}

func writeDecodeError(w http.ResponseWriter, err error) {
	httpx.WriteError(w, http.StatusBadRequest, err.Error())
}
