package http

import (
	"net/http"

	"github.com/aussiebroadwan/accounts/internal/auth/service"
	"github.com/aussiebroadwan/accounts/pkg/authsdk"
	"github.com/aussiebroadwan/accounts/pkg/httpx"
)

// HandleForgotPassword godoc
//
//	@Summary		Request a password reset link
//	@Description	Mails a reset link when the email belongs to an account. The response is identical either way.
//	@Tags			Password
//	@Accept			json
//	@Produce		json
//	@Param			email	query		string							false	"Email address"
//	@Param			request	body		authsdk.ForgotPasswordRequest	false	"Email address, when not given in the query"
//	@Success		200		{object}	authsdk.MessageResponse
//	@Failure		400		{object}	authsdk.ErrorResponse			"Malformed email"
//	@Router			/auth/forgot-password [post].
func (h *AuthHandler) HandleForgotPassword(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		var req authsdk.ForgotPasswordRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			writeDecodeError(w, err)
			return
		}
		email = req.Email
	}

	msg, err := h.AuthService.ForgotPassword(r.Context(), email)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteEnvelope(w, http.StatusOK, msg, nil)
}

// HandleResetPassword godoc
//
//	@Summary		Reset a forgotten password
//	@Description	Redeems the one-time token from a reset link and sets a new password. Any live session of the account ends.
//	@Tags			Password
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.ResetPasswordRequest	true	"Token and new password"
//	@Success		200		{object}	authsdk.MessageResponse
//	@Failure		400		{object}	authsdk.ErrorResponse			"Validation failed or invalid token"
//	@Router			/auth/reset-password [post].
func (h *AuthHandler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	var in service.ResetPasswordInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		writeDecodeError(w, err)
		return
	}

	if err := h.AuthService.ResetPassword(r.Context(), in); err != nil {
		writeTokenError(w, r, err)
		return
	}

	httpx.WriteEnvelope(w, http.StatusOK, "Password has been reset successfully", nil)
}

// HandleChangePassword godoc
//
//	@Summary		Change password
//	@Tags			Password
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.ChangePasswordRequest	true	"Current and new password"
//	@Success		200		{object}	authsdk.MessageResponse
//	@Failure		400		{object}	authsdk.ErrorResponse			"Validation failed"
//	@Failure		401		{object}	authsdk.ErrorResponse			"Not signed in, or wrong current password"
//	@Failure		403		{object}	authsdk.ErrorResponse			"Account is not activated"
//	@Security		BearerAuth
//	@Router			/auth/change-password [post].
func (h *AuthHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	p, _ := httpx.PrincipalFromContext(r.Context())

	var in service.ChangePasswordInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		writeDecodeError(w, err)
		return
	}

	if err := h.AuthService.ChangePassword(r.Context(), p.Identity(), in); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteEnvelope(w, http.StatusOK, "Password changed successfully", nil)
}
