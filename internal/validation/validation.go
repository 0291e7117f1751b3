// Package validation holds the pure field-level rules shared by budget and
// entry creation. Rules only report what is wrong with which field; rendering
// messages is the caller's concern.
package validation

import (
	"fmt"
	"strings"

	"github.com/ubudget/ubudget/internal/money"
)

// Reason identifies why a field failed validation.
type Reason string

const (
	ReasonEmpty     Reason = "empty"
	ReasonZero      Reason = "zero"
	ReasonInvalid   Reason = "invalid"
	ReasonDuplicate Reason = "duplicate"
)

// FieldError reports a single failing field and the first reason it failed.
type FieldError struct {
	Field  string
	Reason Reason
}

func (e FieldError) Error() string {
	return fmt.Sprintf("field %q: %s", e.Field, e.Reason)
}

// Errors aggregates at most one FieldError per field.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, len(e))
	for i, fe := range e {
		parts[i] = fe.Error()
	}
	return strings.Join(parts, "; ")
}

// ErrorFor returns the error recorded for field, if any.
func (e Errors) ErrorFor(field string) (FieldError, bool) {
	for _, fe := range e {
		if fe.Field == field {
			return fe, true
		}
	}
	return FieldError{}, false
}

// OrNil converts an empty Errors value to a nil error.
func (e Errors) OrNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// AmountField validates a raw amount string. Empty text fails before any
// parse attempt; unparseable text fails as invalid; a parsed zero fails as
// zero.
func AmountField(field, text string) *FieldError {
	if strings.TrimSpace(text) == "" {
		return &FieldError{Field: field, Reason: ReasonEmpty}
	}
	amount, err := money.Parse(text)
	if err != nil {
		return &FieldError{Field: field, Reason: ReasonInvalid}
	}
	if amount.IsZero() {
		return &FieldError{Field: field, Reason: ReasonZero}
	}
	return nil
}

// NameField validates a raw name string against the names already in use.
// The duplicate check is an exact, case-sensitive match.
func NameField(field, text string, existing []string) *FieldError {
	if text == "" {
		return &FieldError{Field: field, Reason: ReasonEmpty}
	}
	for _, name := range existing {
		if name == text {
			return &FieldError{Field: field, Reason: ReasonDuplicate}
		}
	}
	return nil
}
