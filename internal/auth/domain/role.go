package domain

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type Role struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
}
