// Package user stores the people who own and join boards.
package user

import (
	"errors"
	"strings"
	"time"
)

// ErrUserNotFound is returned when a user id is unknown.
var ErrUserNotFound = errors.New("user not found")

// User is a registered person
type User struct {
	ID        string    `json:"id" db:"id" yaml:"id"`
	Email     string    `json:"email" db:"email" yaml:"email"`
	FirstName string    `json:"first_name" db:"first_name" yaml:"firstName"`
	LastName  string    `json:"last_name" db:"last_name" yaml:"lastName"`
	CreatedAt time.Time `json:"created_at" db:"created_at" yaml:"-"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at" yaml:"-"`
}

// DisplayName joins the first and last name.
func (u *User) DisplayName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
