package http

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/accounts/internal/auth/service"
	"github.com/aussiebroadwan/accounts/pkg/authsdk"
	"github.com/aussiebroadwan/accounts/pkg/httpx"
)

// AuthHandler serves the /auth endpoints.
type AuthHandler struct {
	AuthService    *service.AuthService
	AccountService *service.AccountService
}

// HandleRegister godoc
//
//	@Summary		Register an account
//	@Description	Creates an inactive account and mails an activation link to its email address.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RegisterRequest								true	"Account details"
//	@Success		200		{object}	authsdk.MessageResponse{data=authsdk.Account}		"The new account"
//	@Failure		400		{object}	authsdk.ErrorResponse								"Validation failed"
//	@Failure		409		{object}	authsdk.ErrorResponse								"Username, email or phone already in use"
//	@Failure		500		{object}	authsdk.ErrorResponse
//	@Router			/auth/register [post].
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		writeDecodeError(w, err)
		return
	}

	acc, err := h.AuthService.Register(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteEnvelope(w, http.StatusOK,
		"Registration successful, check your email to activate your account",
		accountResponse(acc))
}

// HandleActivate godoc
//
//	@Summary		Activate an account
//	@Description	Redeems the one-time token from an activation link.
//	@Tags			Auth
//	@Produce		json
//	@Param			token	query		string												true	"Activation token"
//	@Success		200		{object}	authsdk.MessageResponse{data=authsdk.ActivationResult}
//	@Failure		400		{object}	authsdk.ErrorResponse								"Invalid or expired token"
//	@Router			/auth/activate [get].
func (h *AuthHandler) HandleActivate(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if strings.TrimSpace(token) == "" {
		httpx.WriteError(w, http.StatusBadRequest, "Activation token is required")
		return
	}

	acc, err := h.AuthService.Activate(r.Context(), token)
	if err != nil {
		writeTokenError(w, r, err)
		return
	}

	httpx.WriteEnvelope(w, http.StatusOK, "Account activated successfully", authsdk.ActivationResult{
		Username: acc.Username,
		Email:    acc.Email,
		Status:   string(acc.Status),
	})
}

// HandleAccessToken godoc
//
//	@Summary		Sign in
//	@Description	Exchanges a username and password for an access and refresh token pair. Any earlier session of the account ends.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.SignInRequest								true	"Credentials"
//	@Success		200		{object}	authsdk.MessageResponse{data=authsdk.TokenPair}
//	@Failure		401		{object}	authsdk.ErrorResponse								"Invalid username or password"
//	@Failure		403		{object}	authsdk.ErrorResponse								"Account is not activated"
//	@Router			/auth/access-token [post].
func (h *AuthHandler) HandleAccessToken(w http.ResponseWriter, r *http.Request) {
	var req authsdk.SignInRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	missing := map[string]string{}
	if req.Username == "" {
		missing["username"] = "cannot be blank"
	}
	if req.Password == "" {
		missing["password"] = "cannot be blank"
	}
	if len(missing) > 0 {
		httpx.WriteValidationError(w, "Validation failed", missing)
		return
	}

	res, err := h.AuthService.SignIn(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteEnvelope(w, http.StatusOK, "Signed in successfully", tokenResponse(res))
}

// HandleRefreshToken godoc
//
//	@Summary		Refresh the access token
//	@Description	Issues a new access token for the live session. The refresh token is returned unchanged.
//	@Description	The Referer header is accepted in place of X-Refresh-Token for older clients.
//	@Tags			Auth
//	@Produce		json
//	@Param			X-Refresh-Token	header		string											true	"Refresh token"
//	@Success		200				{object}	authsdk.MessageResponse{data=authsdk.TokenPair}
//	@Failure		400				{object}	authsdk.ErrorResponse							"Refresh token missing"
//	@Failure		401				{object}	authsdk.ErrorResponse							"Invalid or expired token"
//	@Router			/auth/refresh-token [post].
func (h *AuthHandler) HandleRefreshToken(w http.ResponseWriter, r *http.Request) {
	token := refreshTokenFrom(r)
	if token == "" {
		httpx.WriteError(w, http.StatusBadRequest, "Refresh token is required")
		return
	}

	res, err := h.AuthService.RefreshAccessToken(r.Context(), token)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteEnvelope(w, http.StatusOK, "Token refreshed successfully", tokenResponse(res))
}

func refreshTokenFrom(r *http.Request) string {
	if t := strings.TrimSpace(r.Header.Get("X-Refresh-Token")); t != "" {
		return t
	}
	return strings.TrimSpace(r.Header.Get("Referer"))
}

// HandleLogout godoc
//
//	@Summary		Sign out
//	@Description	Ends the caller's session. Its access and refresh tokens stop working immediately.
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	authsdk.MessageResponse
//	@Failure		401	{object}	authsdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/auth/logout [post].
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	p, _ := httpx.PrincipalFromContext(r.Context())

	if err := h.AuthService.Logout(r.Context(), p.Identity()); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteEnvelope(w, http.StatusOK, "Logged out successfully", nil)
}

// HandleMe godoc
//
//	@Summary		Current account
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	authsdk.MessageResponse{data=authsdk.Account}
//	@Failure		401	{object}	authsdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/auth/me [get].
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	p, _ := httpx.PrincipalFromContext(r.Context())

	acc, err := h.AccountService.GetByUsername(r.Context(), p.Identity())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteEnvelope(w, http.StatusOK, "OK", accountResponse(acc))
}
