package authsdk

import (
	"context"
	"net/http"
	"net/url"
)

// Register creates an inactive account. The service mails the activation
// link.
func (c *SDKClient) Register(ctx context.Context, req RegisterRequest) (*Account, error) {
	body, err := encodeBody(req)
	if err != nil {
		return nil, err
	}
	resp, err := c.doRequest(ctx, http.MethodPost, "/auth/register", body, nil)
	if err != nil {
		return nil, err
	}

	var acc Account
	if _, err := decodeEnvelope(resp, &acc); err != nil {
		return nil, err
	}
	return &acc, nil
}

// Activate redeems the token from an activation link.
func (c *SDKClient) Activate(ctx context.Context, token string) (*ActivationResult, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/auth/activate?token="+url.QueryEscape(token), nil, nil)
	if err != nil {
		return nil, err
	}

	var res ActivationResult
	if _, err := decodeEnvelope(resp, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// IssueTokens exchanges credentials for a token pair.
func (c *SDKClient) IssueTokens(ctx context.Context, username, password string) (*TokenPair, error) {
	body, err := encodeBody(SignInRequest{Username: username, Password: password})
	if err != nil {
		return nil, err
	}
	resp, err := c.doRequest(ctx, http.MethodPost, "/auth/access-token", body, nil)
	if err != nil {
		return nil, err
	}

	var pair TokenPair
	if _, err := decodeEnvelope(resp, &pair); err != nil {
		return nil, err
	}
	return &pair, nil
}

// SignIn exchanges credentials for a Session.
func (c *SDKClient) SignIn(ctx context.Context, username, password string) (*Session, error) {
	pair, err := c.IssueTokens(ctx, username, password)
	if err != nil {
		return nil, err
	}
	return newSession(c, pair), nil
}

// RefreshTokens obtains a new access token for refreshToken. The refresh
// token in the result is unchanged.
func (c *SDKClient) RefreshTokens(ctx context.Context, refreshToken string) (*TokenPair, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/auth/refresh-token", nil, map[string]string{
		"X-Refresh-Token": refreshToken,
	})
	if err != nil {
		return nil, err
	}

	var pair TokenPair
	if _, err := decodeEnvelope(resp, &pair); err != nil {
		return nil, err
	}
	return &pair, nil
}

// ForgotPassword asks for a reset link. The returned message is the same
// whether or not email is registered.
func (c *SDKClient) ForgotPassword(ctx context.Context, email string) (string, error) {
	body, err := encodeBody(ForgotPasswordRequest{Email: email})
	if err != nil {
		return "", err
	}
	resp, err := c.doRequest(ctx, http.MethodPost, "/auth/forgot-password", body, nil)
	if err != nil {
		return "", err
	}
	return decodeEnvelope(resp, nil)
}

// ResetPassword redeems a reset link token.
func (c *SDKClient) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	body, err := encodeBody(req)
	if err != nil {
		return err
	}
	resp, err := c.doRequest(ctx, http.MethodPost, "/auth/reset-password", body, nil)
	if err != nil {
		return err
	}
	_, err = decodeEnvelope(resp, nil)
	return err
}
