package http

import (
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/accounts/internal/auth/domain"
	"github.com/aussiebroadwan/accounts/internal/auth/service"
	"github.com/aussiebroadwan/accounts/pkg/httpx"
)

// AccountsHandler serves the admin /accounts endpoints.
type AccountsHandler struct {
	AccountService *service.AccountService
}

// HandleList godoc
//
//	@Summary		List accounts
//	@Description	Accounts ordered by creation. Requires the admin role.
//	@Tags			Accounts
//	@Produce		json
//	@Param			page	query		int													false	"Page, from 1"					default(1)
//	@Param			size	query		int													false	"Page size, at most 100"	default(20)
//	@Success		200		{object}	authsdk.MessageResponse{data=authsdk.AccountPage}
//	@Failure		400		{object}	authsdk.ErrorResponse
//	@Failure		401		{object}	authsdk.ErrorResponse
//	@Failure		403		{object}	authsdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/accounts [get].
func (h *AccountsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, ok := queryInt(w, q.Get("page"), "page")
	if !ok {
		return
	}
	size, ok := queryInt(w, q.Get("size"), "size")
	if !ok {
		return
	}

	res, err := h.AccountService.List(r.Context(), page, size)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteEnvelope(w, http.StatusOK, "OK", pageResponse(res))
}

// queryInt parses an optional integer parameter. Blank means 0.
func queryInt(w http.ResponseWriter, raw, name string) (int, bool) {
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		httpx.WriteValidationError(w, "Validation failed", map[string]string{name: "must be an integer"})
		return 0, false
	}
	return n, true
}

// HandleCreate godoc
//
//	@Summary		Create an account
//	@Description	Creates an account with an explicit role and status, defaulting to user and active. No activation mail is sent.
//	@Tags			Accounts
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.CreateAccountRequest					true	"Account details"
//	@Success		200		{object}	authsdk.MessageResponse{data=authsdk.Account}
//	@Failure		400		{object}	authsdk.ErrorResponse
//	@Failure		401		{object}	authsdk.ErrorResponse
//	@Failure		403		{object}	authsdk.ErrorResponse
//	@Failure		409		{object}	authsdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/accounts [post].
func (h *AccountsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in service.CreateAccountInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		writeDecodeError(w, err)
		return
	}

	acc, err := h.AccountService.Create(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteEnvelope(w, http.StatusOK, "Account created successfully", accountResponse(acc))
}

// HandleGet godoc
//
//	@Summary		Get an account
//	@Tags			Accounts
//	@Produce		json
//	@Param			id	path		string											true	"Account ID"
//	@Success		200	{object}	authsdk.MessageResponse{data=authsdk.Account}
//	@Failure		401	{object}	authsdk.ErrorResponse
//	@Failure		403	{object}	authsdk.ErrorResponse
//	@Failure		404	{object}	authsdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/accounts/{id} [get].
func (h *AccountsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	acc, err := h.AccountService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteEnvelope(w, http.StatusOK, "OK", accountResponse(acc))
}

// HandleUpdate godoc
//
//	@Summary		Update an account profile
//	@Tags			Accounts
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string											true	"Account ID"
//	@Param			request	body		authsdk.UpdateAccountRequest					true	"Profile fields"
//	@Success		200		{object}	authsdk.MessageResponse{data=authsdk.Account}
//	@Failure		400		{object}	authsdk.ErrorResponse
//	@Failure		401		{object}	authsdk.ErrorResponse
//	@Failure		403		{object}	authsdk.ErrorResponse
//	@Failure		404		{object}	authsdk.ErrorResponse
//	@Failure		409		{object}	authsdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/accounts/{id} [put].
func (h *AccountsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var in service.UpdateAccountInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		writeDecodeError(w, err)
		return
	}

	acc, err := h.AccountService.Update(r.Context(), r.PathValue("id"), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteEnvelope(w, http.StatusOK, "Account updated successfully", accountResponse(acc))
}

// HandleSetStatus godoc
//
//	@Summary		Activate or deactivate an account
//	@Description	Setting active is the administrative confirmation of an account. Setting inactive ends its session. Admins cannot deactivate themselves.
//	@Tags			Accounts
//	@Produce		json
//	@Param			id		path		string											true	"Account ID"
//	@Param			status	query		string											true	"New status"	Enums(active, inactive)
//	@Success		200		{object}	authsdk.MessageResponse{data=authsdk.Account}
//	@Failure		400		{object}	authsdk.ErrorResponse
//	@Failure		401		{object}	authsdk.ErrorResponse
//	@Failure		403		{object}	authsdk.ErrorResponse
//	@Failure		404		{object}	authsdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/accounts/{id}/status [patch].
func (h *AccountsHandler) HandleSetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	status := domain.Status(r.URL.Query().Get("status"))

	if status == domain.StatusInactive {
		if err := h.notSelf(r); err != nil {
			writeServiceError(w, r, err)
			return
		}
	}

	acc, err := h.AccountService.SetStatus(ctx, r.PathValue("id"), status)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteEnvelope(w, http.StatusOK, "Account status updated successfully", accountResponse(acc))
}

// HandleDelete godoc
//
//	@Summary		Delete an account
//	@Description	Removes the account and ends its session. Admins cannot delete themselves.
//	@Tags			Accounts
//	@Produce		json
//	@Param			id	path		string	true	"Account ID"
//	@Success		200	{object}	authsdk.MessageResponse
//	@Failure		401	{object}	authsdk.ErrorResponse
//	@Failure		403	{object}	authsdk.ErrorResponse
//	@Failure		404	{object}	authsdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/accounts/{id} [delete].
func (h *AccountsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.notSelf(r); err != nil {
		writeServiceError(w, r, err)
		return
	}

	if err := h.AccountService.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteEnvelope(w, http.StatusOK, "Account deleted successfully", nil)
}

// notSelf returns ErrForbidden when the {id} in the path is the caller's own
// account.
func (h *AccountsHandler) notSelf(r *http.Request) error {
	acc, err := h.AccountService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		return err
	}
	if p, ok := httpx.PrincipalFromContext(r.Context()); ok && p.Identity() == acc.Username {
		return service.ErrForbidden
	}
	return nil
}
