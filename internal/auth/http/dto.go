package http

import (
	"github.com/aussiebroadwan/accounts/internal/auth/domain"
	"github.com/aussiebroadwan/accounts/internal/auth/service"
	"github.com/aussiebroadwan/accounts/pkg/authsdk"
)

func accountResponse(a domain.Account) authsdk.Account {
	out := authsdk.Account{
		ID:        a.ID,
		Username:  a.Username,
		Email:     a.Email,
		Phone:     a.Phone,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Gender:    string(a.Gender),
		Status:    string(a.Status),
		Role:      a.Role,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
	if a.DateOfBirth != nil {
		out.DateOfBirth = a.DateOfBirth.Format("2006-01-02")
	}
	return out
}

func tokenResponse(res service.SignInResult) authsdk.TokenPair {
	return authsdk.TokenPair{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		AccountID:    res.AccountID,
		Roles:        res.Roles,
	}
}

func pageResponse(p service.Page) authsdk.AccountPage {
	items := make([]authsdk.Account, len(p.Items))
	for i, a := range p.Items {
		items[i] = accountResponse(a)
	}
	return authsdk.AccountPage{Items: items, Page: p.Page, Size: p.Size, Total: p.Total}
}
