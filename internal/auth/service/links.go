package service

import (
	"net/url"
	"strings"
)

// LinkBuilder renders the links placed in outgoing mail.
type LinkBuilder struct {
	BaseURL string
}

func (b LinkBuilder) Activation(token string) string {
	return b.build("/auth/activate", token)
}

func (b LinkBuilder) Reset(token string) string {
	return b.build("/auth/reset-password", token)
}

func (b LinkBuilder) build(path, token string) string {
	return strings.TrimRight(b.BaseURL, "/") + path + "?token=" + url.QueryEscape(token)
}
