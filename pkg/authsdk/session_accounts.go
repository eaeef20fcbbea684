package authsdk

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// The calls below require the admin role.

func (s *Session) ListAccounts(ctx context.Context, page, size int) (*AccountPage, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", fmt.Sprint(page))
	}
	if size > 0 {
		q.Set("size", fmt.Sprint(size))
	}
	path := "/accounts"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	resp, err := s.doAuthRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var out AccountPage
	if _, err := decodeEnvelope(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) CreateAccount(ctx context.Context, req CreateAccountRequest) (*Account, error) {
	body, err := encodeBody(req)
	if err != nil {
		return nil, err
	}
	return s.accountCall(ctx, http.MethodPost, "/accounts", body)
}

func (s *Session) GetAccount(ctx context.Context, id string) (*Account, error) {
	return s.accountCall(ctx, http.MethodGet, "/accounts/"+url.PathEscape(id), nil)
}

func (s *Session) UpdateAccount(ctx context.Context, id string, req UpdateAccountRequest) (*Account, error) {
	body, err := encodeBody(req)
	if err != nil {
		return nil, err
	}
	return s.accountCall(ctx, http.MethodPut, "/accounts/"+url.PathEscape(id), body)
}

// SetAccountStatus activates or deactivates an account. Deactivating ends its
// session.
func (s *Session) SetAccountStatus(ctx context.Context, id, status string) (*Account, error) {
	path := "/accounts/" + url.PathEscape(id) + "/status?status=" + url.QueryEscape(status)
	return s.accountCall(ctx, http.MethodPatch, path, nil)
}

func (s *Session) DeleteAccount(ctx context.Context, id string) error {
	resp, err := s.doAuthRequest(ctx, http.MethodDelete, "/accounts/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}
	_, err = decodeEnvelope(resp, nil)
	return err
}

func (s *Session) accountCall(ctx context.Context, method, path string, body []byte) (*Account, error) {
	resp, err := s.doAuthRequest(ctx, method, path, body)
	if err != nil {
		return nil, err
	}

	var acc Account
	if _, err := decodeEnvelope(resp, &acc); err != nil {
		return nil, err
	}
	return &acc, nil
}
