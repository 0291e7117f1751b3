package budget

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ubudget/ubudget/internal/datemath"
	"github.com/ubudget/ubudget/internal/money"
	"github.com/ubudget/ubudget/internal/validation"
)

func TestNewBudget(t *testing.T) {
	start := datemath.Date(2024, time.January, 1)
	existing := []string{"Rent"}

	tests := []struct {
		name       string
		budgetName string
		amount     string
		duration   datemath.Duration
		wantField  string
		wantReason validation.Reason
	}{
		{name: "valid", budgetName: "Groceries", amount: "50", duration: datemath.Month},
		{name: "empty name", budgetName: "", amount: "50", duration: datemath.Month, wantField: FieldName, wantReason: validation.ReasonEmpty},
		{name: "duplicate name", budgetName: "Rent", amount: "50", duration: datemath.Month, wantField: FieldName, wantReason: validation.ReasonDuplicate},
		{name: "empty amount", budgetName: "Groceries", amount: "", duration: datemath.Month, wantField: FieldAmount, wantReason: validation.ReasonEmpty},
		{name: "zero amount", budgetName: "Groceries", amount: "0", duration: datemath.Month, wantField: FieldAmount, wantReason: validation.ReasonZero},
		{name: "garbage amount", budgetName: "Groceries", amount: "fifty", duration: datemath.Month, wantField: FieldAmount, wantReason: validation.ReasonInvalid},
		{name: "unknown duration", budgetName: "Groceries", amount: "50", duration: datemath.Duration("QUARTER"), wantField: FieldDuration, wantReason: validation.ReasonInvalid},
		{name: "empty duration", budgetName: "Groceries", amount: "50", duration: datemath.Duration(""), wantField: FieldDuration, wantReason: validation.ReasonInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := NewBudget(tt.budgetName, tt.amount, true, start, tt.duration, existing)
			if tt.wantField == "" {
				require.NoError(t, err)
				require.Equal(t, NewID, b.ID)
				require.Equal(t, money.Money(5000), b.Amount)
				require.Equal(t, datemath.Month, b.Duration)
				require.True(t, b.Recurring)
				require.Empty(t, b.Entries())
				return
			}
			require.Error(t, err)
			require.Nil(t, b)

			verrs, ok := err.(validation.Errors)
			require.True(t, ok)
			fe, ok := verrs.ErrorFor(tt.wantField)
			require.True(t, ok)
			require.Equal(t, tt.wantReason, fe.Reason)
		})
	}
}

// Both fields invalid at once must both be reported, not just the first.
func TestNewBudgetAggregatesErrors(t *testing.T) {
	_, err := NewBudget("", "", false, datemath.Date(2024, time.January, 1), datemath.Week, nil)
	require.Error(t, err)

	verrs, ok := err.(validation.Errors)
	require.True(t, ok)
	require.Len(t, verrs, 2)

	_, ok = verrs.ErrorFor(FieldName)
	require.True(t, ok)
	_, ok = verrs.ErrorFor(FieldAmount)
	require.True(t, ok)
}

func TestNewEntry(t *testing.T) {
	start := datemath.Date(2024, time.January, 1)
	b, err := NewBudget("Groceries", "50", true, start, datemath.Month, nil)
	require.NoError(t, err)

	e, err := NewEntry("12.34", b, "milk", datemath.Date(2024, time.January, 5))
	require.NoError(t, err)
	require.Equal(t, NewID, e.ID)
	require.Equal(t, money.Money(1234), e.Amount)
	require.Equal(t, "milk", e.Notes)
	require.Same(t, b, e.Budget)

	// Notes may be empty.
	_, err = NewEntry("1", b, "", datemath.Date(2024, time.January, 5))
	require.NoError(t, err)

	_, err = NewEntry("0", b, "milk", datemath.Date(2024, time.January, 5))
	require.Error(t, err)

	_, err = NewEntry("12.34", nil, "milk", datemath.Date(2024, time.January, 5))
	require.Error(t, err)

	_, err = NewEntry("12.34", b, "milk", time.Time{})
	require.Error(t, err)
}

func TestAddEntryPreservesOrder(t *testing.T) {
	b, err := NewBudget("Groceries", "50", true, datemath.Date(2024, time.January, 1), datemath.Month, nil)
	require.NoError(t, err)

	notes := []string{"milk", "bread", "eggs"}
	for _, n := range notes {
		e, err := NewEntry("1", b, n, datemath.Date(2024, time.January, 5))
		require.NoError(t, err)
		b.AddEntry(e)
	}

	entries := b.Entries()
	require.Len(t, entries, 3)
	for i, n := range notes {
		require.Equal(t, n, entries[i].Notes)
	}
}

func TestIsWithinCurrentCycle(t *testing.T) {
	start := datemath.Date(2024, time.January, 1)

	recurring, err := NewBudget("Groceries", "50", true, start, datemath.Month, nil)
	require.NoError(t, err)

	oneOff, err := NewBudget("Holiday", "500", false, start, datemath.Month, nil)
	require.NoError(t, err)

	tests := []struct {
		name string
		b    *Budget
		date time.Time
		want bool
	}{
		{name: "recurring inside first cycle", b: recurring, date: datemath.Date(2024, time.January, 15), want: true},
		{name: "recurring inside later cycle", b: recurring, date: datemath.Date(2024, time.June, 10), want: true},
		{name: "recurring before start", b: recurring, date: datemath.Date(2023, time.December, 31), want: false},
		{name: "one-off inside first cycle", b: oneOff, date: datemath.Date(2024, time.January, 31), want: true},
		{name: "one-off after first cycle", b: oneOff, date: datemath.Date(2024, time.February, 1), want: false},
		{name: "one-off before start", b: oneOff, date: datemath.Date(2023, time.December, 31), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.b.IsWithinCurrentCycle(tt.date))
		})
	}
}
