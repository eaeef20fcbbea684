package domain

import "time"

type Status string

const (
	StatusInactive Status = "inactive"
	StatusActive   Status = "active"
)

func (s Status) Valid() bool { return s == StatusInactive || s == StatusActive }

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// Principal is the capability set the authorization layer needs from an
// authenticated caller.
type Principal interface {
	Identity() string
	CredentialDigest() string
	RoleNames() []string
	IsActive() bool
}

type Account struct {
	ID           string
	Username     string
	Email        string // stored lowercased
	Phone        string // E.164, empty when not given
	FirstName    string
	LastName     string
	DateOfBirth  *time.Time
	Gender       Gender
	PasswordHash string // argon2 encoded
	Status       Status
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

var _ Principal = Account{}

func (a Account) Identity() string         { return a.Username }
func (a Account) CredentialDigest() string { return a.PasswordHash }
func (a Account) IsActive() bool           { return a.Status == StatusActive }

func (a Account) RoleNames() []string {
	if a.Role == "" {
		return nil
	}
	return []string{a.Role}
}
