package service

import (
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/aussiebroadwan/accounts/internal/auth/domain"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/nyaruka/phonenumbers"
)

const (
	DefaultPhoneRegion = "VN"
	dateLayout         = "2006-01-02"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

var (
	usernameRules = []validation.Rule{
		validation.Required,
		validation.Length(4, 20),
		validation.Match(usernamePattern).Error("may only contain letters, digits, '.', '_' and '-'"),
	}
	emailRules = []validation.Rule{
		validation.Required,
		validation.Length(3, 254),
		is.Email,
	}
	nameRules = []validation.Rule{
		validation.Required,
		validation.Length(1, 50),
	}
	genderRules = []validation.Rule{
		validation.In(string(domain.GenderMale), string(domain.GenderFemale), string(domain.GenderOther)),
	}
	passwordRules = []validation.Rule{
		validation.Required,
		validation.By(strongPassword),
	}
)

func dateOfBirthRules(now time.Time) []validation.Rule {
	return []validation.Rule{
		validation.Date(dateLayout).Error("must be a date in YYYY-MM-DD format"),
		validation.By(func(v any) error {
			s, _ := v.(string)
			if s == "" {
				return nil
			}
			d, err := time.Parse(dateLayout, s)
			if err != nil {
				return nil // reported by the Date rule
			}
			if !d.Before(now) {
				return errors.New("must be in the past")
			}
			return nil
		}),
	}
}

func phoneRules(region string) []validation.Rule {
	return []validation.Rule{
		validation.By(func(v any) error {
			s, _ := v.(string)
			if s == "" {
				return nil
			}
			_, err := normalizePhone(s, region)
			return err
		}),
	}
}

// strongPassword requires 8 to 72 characters with at least one character
// from each class.
func strongPassword(v any) error {
	s, _ := v.(string)
	if s == "" {
		return nil
	}

	n := len([]rune(s))
	if n < 8 || n > 72 {
		return errors.New("must be between 8 and 72 characters")
	}

	var upper, lower, digit, symbol bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			symbol = true
		}
	}
	if !upper || !lower || !digit || !symbol {
		return errors.New("must contain an uppercase letter, a lowercase letter, a digit and a symbol")
	}
	return nil
}

func stringEquals(str string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s != str {
			return errors.New("values must match")
		}
		return nil
	}
}

// normalizePhone parses raw against region and formats it as E.164.
func normalizePhone(raw, region string) (string, error) {
	if region == "" {
		region = DefaultPhoneRegion
	}
	num, err := phonenumbers.Parse(strings.TrimSpace(raw), region)
	if err != nil {
		return "", errors.New("must be a valid phone number")
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", errors.New("must be a valid phone number")
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// profile holds the personal fields shared by registration and account
// administration, as received over the wire.
type profile struct {
	Email       string
	Phone       string
	FirstName   string
	LastName    string
	DateOfBirth string
	Gender      string
}

// applyTo copies validated profile fields onto a, normalising email and phone.
func (p profile) applyTo(a *domain.Account, region string) error {
	a.Email = strings.ToLower(strings.TrimSpace(p.Email))
	a.FirstName = strings.TrimSpace(p.FirstName)
	a.LastName = strings.TrimSpace(p.LastName)
	a.Gender = domain.Gender(p.Gender)

	a.Phone = ""
	if strings.TrimSpace(p.Phone) != "" {
		phone, err := normalizePhone(p.Phone, region)
		if err != nil {
			return fieldError("phone", err.Error())
		}
		a.Phone = phone
	}

	a.DateOfBirth = nil
	if p.DateOfBirth != "" {
		d, err := time.Parse(dateLayout, p.DateOfBirth)
		if err != nil {
			return fieldError("dateOfBirth", "must be a date in YYYY-MM-DD format")
		}
		a.DateOfBirth = &d
	}
	return nil
}
