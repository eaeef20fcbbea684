/*
Package authsdk is a Go client for the accounts service.

# SDKClient vs Session

SDKClient covers the public endpoints: registration, activation, sign in,
token refresh and the password reset flow.

	client := authsdk.NewSDKClient("https://accounts.example.com")

	acc, err := client.Register(ctx, authsdk.RegisterRequest{...})
	_, err = client.Activate(ctx, tokenFromMail)

	session, err := client.SignIn(ctx, "alice", "Sup3r$ecret")

A Session holds the access and refresh token pair of one account. When the
service answers 401 the session refreshes its access token once and retries,
so callers rarely handle expiry themselves.

	me, err := session.Me(ctx)
	err = session.ChangePassword(ctx, authsdk.ChangePasswordRequest{...})
	err = session.Logout(ctx)

Sessions belonging to an admin can also manage accounts:

	page, err := session.ListAccounts(ctx, 1, 20)
	acc, err := session.SetAccountStatus(ctx, id, authsdk.StatusActive)

# Errors

Every non 2xx response is returned as an *APIError carrying the status code,
the message and, for validation failures, the offending fields. The common
cases can be matched with errors.Is:

	_, err := client.SignIn(ctx, "alice", "wrong")
	if errors.Is(err, authsdk.ErrUnauthorized) {
		// bad credentials
	}
*/
package authsdk
