package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ubudget/ubudget/apperrors"
	"github.com/ubudget/ubudget/internal/budget"
	"github.com/ubudget/ubudget/internal/datemath"
	"github.com/ubudget/ubudget/internal/money"
)

// Wire date formats. Dates travel as "yyyy-MM-dd", timestamps as
// "yyyy-MM-dd HH:mm:ss".
const (
	DateLayout      = "2006-01-02"
	TimestampLayout = "2006-01-02 15:04:05"
)

// REQUESTS START:

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CreateBudgetRequest struct {
	BudgetName         string `json:"budget_name"`
	Amount             int64  `json:"amount"`
	Recur              bool   `json:"recur"`
	StartDate          string `json:"start_date"`
	RecurrenceDuration string `json:"recurrence_duration"`
}

type CreateEntryRequest struct {
	Amount          int64  `json:"amount"`
	BudgetID        int64  `json:"budget_id"`
	Notes           string `json:"notes"`
	ExpenditureDate string `json:"expenditure_date"`
}

// REQUESTS END:

// RESPONSES:

type RegisterResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

type LoginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

type CreateBudgetResponse struct {
	ID int64 `json:"id"`
}

type CreateEntryResponse struct {
	ID        int64  `json:"id"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// BudgetItem is one element of a budget fetch response.
type BudgetItem struct {
	BudgetName         string      `json:"budget_name"`
	RecurrenceDuration string      `json:"recurrence_duration"`
	Amount             int64       `json:"amount"`
	Recur              bool        `json:"recur"`
	StartDate          string      `json:"start_date"`
	ID                 int64       `json:"id"`
	Entries            []EntryItem `json:"entries,omitempty"`
}

// EntryItem is one element of an entry fetch response.
type EntryItem struct {
	ID              int64  `json:"id"`
	Amount          int64  `json:"amount"`
	ExpenditureDate string `json:"expenditure_date"`
	Notes           string `json:"notes"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
}

func httpStatusFromError(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return 404
	case errors.Is(err, apperrors.ErrInvalidInput):
		return 400
	case errors.Is(err, apperrors.ErrAuth):
		return 401
	case errors.Is(err, apperrors.ErrAccessDenied):
		return 403
	case errors.Is(err, apperrors.ErrConflict):
		return 409
	default:
		return 500
	}
}

// Strict decoding of fetch elements. Field values are decoded through
// pointers so that a missing or null required field is distinguishable from
// a zero value; any defect fails the element, and one bad element fails the
// whole batch.

type budgetElement struct {
	BudgetName         *string           `json:"budget_name"`
	RecurrenceDuration *string           `json:"recurrence_duration"`
	Amount             *int64            `json:"amount"`
	Recur              *bool             `json:"recur"`
	StartDate          *string           `json:"start_date"`
	ID                 *int64            `json:"id"`
	Entries            []json.RawMessage `json:"entries"`
}

type entryElement struct {
	ID              *int64  `json:"id"`
	Amount          *int64  `json:"amount"`
	ExpenditureDate *string `json:"expenditure_date"`
	Notes           *string `json:"notes"`
	CreatedAt       *string `json:"created_at"`
	UpdatedAt       *string `json:"updated_at"`
}

// decodeBudgetElement validates one budget array element and converts it to
// a domain Budget. withEntries controls whether a nested entries array is
// decoded and appended.
func decodeBudgetElement(raw json.RawMessage, withEntries bool) (*budget.Budget, error) {
	var elem budgetElement
	if err := json.Unmarshal(raw, &elem); err != nil {
		return nil, fmt.Errorf("malformed budget element: %v", err)
	}
	switch {
	case elem.BudgetName == nil:
		return nil, fmt.Errorf("budget element: missing or invalid budget_name")
	case elem.RecurrenceDuration == nil:
		return nil, fmt.Errorf("budget element: missing or invalid recurrence_duration")
	case elem.Amount == nil:
		return nil, fmt.Errorf("budget element: missing or invalid amount")
	case elem.Recur == nil:
		return nil, fmt.Errorf("budget element: missing or invalid recur")
	case elem.StartDate == nil:
		return nil, fmt.Errorf("budget element: missing or invalid start_date")
	case elem.ID == nil:
		return nil, fmt.Errorf("budget element: missing or invalid id")
	}

	duration, err := datemath.ParseDuration(*elem.RecurrenceDuration)
	if err != nil {
		return nil, fmt.Errorf("budget element: %v", err)
	}
	startDate, err := time.ParseInLocation(DateLayout, *elem.StartDate, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("budget element: unparseable start_date %q", *elem.StartDate)
	}

	b := &budget.Budget{
		ID:        *elem.ID,
		Name:      *elem.BudgetName,
		Amount:    money.Money(*elem.Amount),
		Recurring: *elem.Recur,
		StartDate: startDate,
		Duration:  duration,
	}

	if withEntries {
		for _, rawEntry := range elem.Entries {
			e, err := decodeEntryElement(rawEntry, b)
			if err != nil {
				return nil, err
			}
			b.AddEntry(e)
		}
	}
	return b, nil
}

// decodeEntryElement validates one entry array element and converts it to a
// domain Entry referencing owner.
func decodeEntryElement(raw json.RawMessage, owner *budget.Budget) (*budget.Entry, error) {
	var elem entryElement
	if err := json.Unmarshal(raw, &elem); err != nil {
		return nil, fmt.Errorf("malformed entry element: %v", err)
	}
	switch {
	case elem.ID == nil:
		return nil, fmt.Errorf("entry element: missing or invalid id")
	case elem.Amount == nil:
		return nil, fmt.Errorf("entry element: missing or invalid amount")
	case elem.ExpenditureDate == nil:
		return nil, fmt.Errorf("entry element: missing or invalid expenditure_date")
	case elem.Notes == nil:
		return nil, fmt.Errorf("entry element: missing or invalid notes")
	case elem.CreatedAt == nil:
		return nil, fmt.Errorf("entry element: missing or invalid created_at")
	case elem.UpdatedAt == nil:
		return nil, fmt.Errorf("entry element: missing or invalid updated_at")
	}

	date, err := time.ParseInLocation(DateLayout, *elem.ExpenditureDate, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("entry element: unparseable expenditure_date %q", *elem.ExpenditureDate)
	}
	createdAt, err := time.ParseInLocation(TimestampLayout, *elem.CreatedAt, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("entry element: unparseable created_at %q", *elem.CreatedAt)
	}
	updatedAt, err := time.ParseInLocation(TimestampLayout, *elem.UpdatedAt, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("entry element: unparseable updated_at %q", *elem.UpdatedAt)
	}

	return &budget.Entry{
		ID:        *elem.ID,
		Amount:    money.Money(*elem.Amount),
		Notes:     *elem.Notes,
		Date:      date,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
		Budget:    owner,
	}, nil
}
