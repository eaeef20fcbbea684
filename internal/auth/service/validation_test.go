package service

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStrongPassword(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{"", true}, // Required reports blanks
		{"Sup3r$ecret", true},
		{"Ab1!abcd", true},
		{"Ab1!abc", false},
		{"alllower1!", false},
		{"ALLUPPER1!", false},
		{"NoDigits!!", false},
		{"NoSymbol11", false},
		{"Ab1!" + strings.Repeat("a", 69), false},
	}
	for _, tt := range tests {
		err := strongPassword(tt.in)
		if tt.ok {
			require.NoError(t, err, "password %q", tt.in)
		} else {
			require.Error(t, err, "password %q", tt.in)
		}
	}
}

func TestNormalizePhone(t *testing.T) {
	got, err := normalizePhone("0912 345 678", "VN")
	require.NoError(t, err)
	require.Equal(t, "+84912345678", got)

	got, err = normalizePhone("+61 412 345 678", "VN")
	require.NoError(t, err)
	require.Equal(t, "+61412345678", got)

	got, err = normalizePhone("0412 345 678", "AU")
	require.NoError(t, err)
	require.Equal(t, "+61412345678", got)

	_, err = normalizePhone("12345", "VN")
	require.Error(t, err)

	_, err = normalizePhone("call me", "")
	require.Error(t, err)
}

func TestDateOfBirthRules(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	in := RegisterInput{DateOfBirth: "2026-03-01"}
	err := in.Validate("VN", now)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "must be in the past", verr.Fields["dateOfBirth"])
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{
		"username": "cannot be blank",
		"email":    "must be a valid email address",
	}}
	require.Equal(t,
		"validation failed: email: must be a valid email address; username: cannot be blank",
		err.Error())
	require.ErrorIs(t, err, ErrValidation)
}
