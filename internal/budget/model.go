// Package budget holds the budget/entry domain model, the process-wide
// budget registry and the service backing the reference server.
package budget

import (
	"time"

	"github.com/ubudget/ubudget/internal/datemath"
	"github.com/ubudget/ubudget/internal/money"
	"github.com/ubudget/ubudget/internal/validation"
)

// NewID marks an entity that has not yet been assigned an id by the server.
const NewID int64 = -1

// Field names reported in validation errors.
const (
	FieldName     = "name"
	FieldAmount   = "amount"
	FieldDate     = "date"
	FieldBudget   = "budget"
	FieldDuration = "duration"
)

// Budget is a named spending cap over a recurring or one-off time window.
//
// A Budget is created locally with ID == NewID; the id transitions exactly
// once to a server value on successful creation. After that a Budget is only
// ever mutated by appending entries.
type Budget struct {
	ID        int64
	Name      string
	Amount    money.Money
	Recurring bool
	StartDate time.Time
	Duration  datemath.Duration

	entries []*Entry
}

// Entry is a single expenditure recorded against a Budget.
type Entry struct {
	ID     int64
	Amount money.Money
	Notes  string
	Date   time.Time

	// CreatedAt and UpdatedAt are set from the server response only.
	CreatedAt time.Time
	UpdatedAt time.Time

	// Budget is a non-owning back-reference to the owning budget.
	Budget *Budget
}

// NewBudget builds a Budget from raw user input, validating the amount, name
// and duration fields. existingNames feeds the case-sensitive duplicate
// check; pass Registry.Names() for the process-wide rule.
//
// On failure the returned error is a validation.Errors carrying the first
// failing reason per field.
func NewBudget(name, amountText string, recurring bool, startDate time.Time, d datemath.Duration, existingNames []string) (*Budget, error) {
	var errs validation.Errors
	if fe := validation.AmountField(FieldAmount, amountText); fe != nil {
		errs = append(errs, *fe)
	}
	if fe := validation.NameField(FieldName, name, existingNames); fe != nil {
		errs = append(errs, *fe)
	}
	if _, err := datemath.ParseDuration(string(d)); err != nil {
		errs = append(errs, validation.FieldError{Field: FieldDuration, Reason: validation.ReasonInvalid})
	}
	if err := errs.OrNil(); err != nil {
		return nil, err
	}

	amount, _ := money.Parse(amountText)
	return &Budget{
		ID:        NewID,
		Name:      name,
		Amount:    amount,
		Recurring: recurring,
		StartDate: datemath.Truncate(startDate),
		Duration:  d,
	}, nil
}

// NewEntry builds an Entry against b from raw user input. Only the amount
// field has validation rules; notes may be empty. The owning budget must
// exist and the date must be set.
func NewEntry(amountText string, b *Budget, notes string, date time.Time) (*Entry, error) {
	var errs validation.Errors
	if fe := validation.AmountField(FieldAmount, amountText); fe != nil {
		errs = append(errs, *fe)
	}
	if b == nil {
		errs = append(errs, validation.FieldError{Field: FieldBudget, Reason: validation.ReasonEmpty})
	}
	if date.IsZero() {
		errs = append(errs, validation.FieldError{Field: FieldDate, Reason: validation.ReasonInvalid})
	}
	if err := errs.OrNil(); err != nil {
		return nil, err
	}

	amount, _ := money.Parse(amountText)
	return &Entry{
		ID:     NewID,
		Amount: amount,
		Notes:  notes,
		Date:   datemath.Truncate(date),
		Budget: b,
	}, nil
}

// AddEntry appends e to the budget's ordered entry collection.
func (b *Budget) AddEntry(e *Entry) {
	b.entries = append(b.entries, e)
}

// Entries returns the budget's entries in insertion order.
func (b *Budget) Entries() []*Entry {
	return b.entries
}

// IsWithinCurrentCycle reports whether date falls inside the budget cycle
// active on that date. For non-recurring budgets only the first cycle is ever
// valid; any later date reports false.
func (b *Budget) IsWithinCurrentCycle(date time.Time) bool {
	date = datemath.Truncate(date)
	start, end, ok := datemath.CurrentCycleWindow(b.StartDate, b.Duration, b.Recurring, date)
	if !ok {
		return false
	}
	return !date.Before(start) && !date.After(end)
}
