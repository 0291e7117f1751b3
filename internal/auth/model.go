package auth

import (
	"strings"
	"time"

	"github.com/ubudget/ubudget/internal/validation"
)

const (
	MinPasswordLength = 4
	MaxPasswordLength = 72 // bcrypt input limit
	MaxEmailLength    = 255
)

type User struct {
	ID             string
	Email          string
	PasswordHashed string
	CreatedAt      time.Time
}

type NewUser struct {
	Email         string
	PasswordPlain string
}

type Credentials struct {
	Email         string
	PasswordPlain string
}

type Session struct {
	ID        string
	Token     string
	CreatedAt time.Time
	ExpireAt  time.Time
	UserID    string
}

// Validate applies the registration field rules: both fields required, the
// password long enough for the hasher, the email shaped like an address.
func (u NewUser) Validate() error {
	var errs validation.Errors
	switch {
	case u.Email == "":
		errs = append(errs, validation.FieldError{Field: "email", Reason: validation.ReasonEmpty})
	case len(u.Email) > MaxEmailLength,
		!strings.Contains(u.Email, "@"),
		!strings.Contains(u.Email, "."),
		strings.Contains(u.Email, " "):
		errs = append(errs, validation.FieldError{Field: "email", Reason: validation.ReasonInvalid})
	}
	switch {
	case u.PasswordPlain == "":
		errs = append(errs, validation.FieldError{Field: "password", Reason: validation.ReasonEmpty})
	case len(u.PasswordPlain) < MinPasswordLength, len(u.PasswordPlain) > MaxPasswordLength:
		errs = append(errs, validation.FieldError{Field: "password", Reason: validation.ReasonInvalid})
	}
	return errs.OrNil()
}
