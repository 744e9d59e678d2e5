package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID        uuid.UUID `db:"id"`
	Email     string    `db:"email"`
	Password  string    `db:"password"`
	FullName  *string   `db:"full_name"`
	AvatarURL *string   `db:"avatar_url"`
	Currency  string    `db:"currency"`
	Locale    string    `db:"locale"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// DisplayName falls back to the email when no full name was given.
func (u *User) DisplayName() string {
	if u.FullName != nil && *u.FullName != "" {
		return *u.FullName
	}
	return u.Email
}

const (
	DefaultCurrency = "EUR"
	DefaultLocale   = "pt-PT"
)
