package service

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

type RegisterInput struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Email           string `json:"email"`
	Phone           string `json:"phone,omitempty"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	DateOfBirth     string `json:"dateOfBirth,omitempty"` // YYYY-MM-DD
	Gender          string `json:"gender,omitempty"`
}

func (r RegisterInput) Validate(region string, now time.Time) error {
	return fromValidation(validation.ValidateStruct(&r,
		validation.Field(&r.Username, usernameRules...),
		validation.Field(&r.Password, passwordRules...),
		validation.Field(&r.ConfirmPassword, validation.Required, validation.By(stringEquals(r.Password))),
		validation.Field(&r.Email, emailRules...),
		validation.Field(&r.Phone, phoneRules(region)...),
		validation.Field(&r.FirstName, nameRules...),
		validation.Field(&r.LastName, nameRules...),
		validation.Field(&r.DateOfBirth, dateOfBirthRules(now)...),
		validation.Field(&r.Gender, genderRules...),
	))
}

func (r RegisterInput) profile() profile {
	return profile{
		Email:       r.Email,
		Phone:       r.Phone,
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		DateOfBirth: r.DateOfBirth,
		Gender:      r.Gender,
	}
}

type ResetPasswordInput struct {
	Token           string `json:"token"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (r ResetPasswordInput) Validate() error {
	return fromValidation(validation.ValidateStruct(&r,
		validation.Field(&r.Token, validation.Required),
		validation.Field(&r.NewPassword, passwordRules...),
		validation.Field(&r.ConfirmPassword, validation.Required, validation.By(stringEquals(r.NewPassword))),
	))
}

type ChangePasswordInput struct {
	OldPassword     string `json:"oldPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (r ChangePasswordInput) Validate() error {
	return fromValidation(validation.ValidateStruct(&r,
		validation.Field(&r.NewPassword, passwordRules...),
		validation.Field(&r.ConfirmPassword, validation.Required, validation.By(stringEquals(r.NewPassword))),
	))
}

// CreateAccountInput is the admin variant of registration with an explicit
// role and status.
type CreateAccountInput struct {
	RegisterInput
	Role   string `json:"role,omitempty"`
	Status string `json:"status,omitempty"`
}

func (r CreateAccountInput) Validate(region string, now time.Time) error {
	if err := r.RegisterInput.Validate(region, now); err != nil {
		return err
	}
	return fromValidation(validation.ValidateStruct(&r,
		validation.Field(&r.Status, validation.In("active", "inactive")),
	))
}

// UpdateAccountInput replaces the profile fields of an account.
type UpdateAccountInput struct {
	Email       string `json:"email"`
	Phone       string `json:"phone,omitempty"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	DateOfBirth string `json:"dateOfBirth,omitempty"`
	Gender      string `json:"gender,omitempty"`
}

func (r UpdateAccountInput) Validate(region string, now time.Time) error {
	return fromValidation(validation.ValidateStruct(&r,
		validation.Field(&r.Email, emailRules...),
		validation.Field(&r.Phone, phoneRules(region)...),
		validation.Field(&r.FirstName, nameRules...),
		validation.Field(&r.LastName, nameRules...),
		validation.Field(&r.DateOfBirth, dateOfBirthRules(now)...),
		validation.Field(&r.Gender, genderRules...),
	))
}

func (r UpdateAccountInput) profile() profile {
	return profile(r)
}
