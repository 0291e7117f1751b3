package datemath

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input   string
		want    Duration
		wantErr bool
	}{
		{input: "DAY", want: Day},
		{input: "day", want: Day},
		{input: " Week ", want: Week},
		{input: "FORTNIGHT", want: Fortnight},
		{input: "month", want: Month},
		{input: "YEAR", want: Year},
		{input: "", wantErr: true},
		{input: "QUARTER", wantErr: true},
		{input: "3", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDuration(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestDaysBetweenInclusive(t *testing.T) {
	d := Date(2024, time.March, 10)

	got, err := DaysBetweenInclusive(d, d)
	require.NoError(t, err)
	require.Equal(t, 1, got)

	got, err = DaysBetweenInclusive(d, Date(2024, time.March, 16))
	require.NoError(t, err)
	require.Equal(t, 7, got)

	// Spans a leap day.
	got, err = DaysBetweenInclusive(Date(2024, time.February, 28), Date(2024, time.March, 1))
	require.NoError(t, err)
	require.Equal(t, 3, got)

	_, err = DaysBetweenInclusive(d, Date(2024, time.March, 9))
	require.Error(t, err)
}

func TestAdvanceByDuration(t *testing.T) {
	tests := []struct {
		name  string
		date  time.Time
		d     Duration
		count int
		want  time.Time
	}{
		{name: "one day", date: Date(2024, time.March, 10), d: Day, count: 1, want: Date(2024, time.March, 11)},
		{name: "one week", date: Date(2024, time.March, 10), d: Week, count: 1, want: Date(2024, time.March, 17)},
		{name: "one fortnight", date: Date(2024, time.March, 10), d: Fortnight, count: 1, want: Date(2024, time.March, 24)},
		{name: "month plain", date: Date(2024, time.March, 10), d: Month, count: 1, want: Date(2024, time.April, 10)},
		{name: "month clamps jan 31 to feb 29", date: Date(2024, time.January, 31), d: Month, count: 1, want: Date(2024, time.February, 29)},
		{name: "month clamps jan 31 to feb 28", date: Date(2023, time.January, 31), d: Month, count: 1, want: Date(2023, time.February, 28)},
		{name: "month clamps may 31 to jun 30", date: Date(2024, time.May, 31), d: Month, count: 1, want: Date(2024, time.June, 30)},
		{name: "two months from jan 31 lands mar 31", date: Date(2024, time.January, 31), d: Month, count: 2, want: Date(2024, time.March, 31)},
		{name: "month across year end", date: Date(2024, time.December, 15), d: Month, count: 1, want: Date(2025, time.January, 15)},
		{name: "year plain", date: Date(2024, time.March, 10), d: Year, count: 1, want: Date(2025, time.March, 10)},
		{name: "year clamps leap day", date: Date(2024, time.February, 29), d: Year, count: 1, want: Date(2025, time.February, 28)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AdvanceByDuration(tt.date, tt.d, tt.count)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestCurrentCycleWindow(t *testing.T) {
	start := Date(2024, time.January, 1)

	tests := []struct {
		name      string
		d         Duration
		recurring bool
		today     time.Time
		wantStart time.Time
		wantEnd   time.Time
		wantOk    bool
	}{
		{
			name: "first month window", d: Month, recurring: true,
			today:     Date(2024, time.January, 15),
			wantStart: start, wantEnd: Date(2024, time.January, 31), wantOk: true,
		},
		{
			name: "second month window", d: Month, recurring: true,
			today:     Date(2024, time.February, 10),
			wantStart: Date(2024, time.February, 1), wantEnd: Date(2024, time.February, 29), wantOk: true,
		},
		{
			name: "before start returns first window", d: Month, recurring: true,
			today:     Date(2023, time.December, 20),
			wantStart: start, wantEnd: Date(2024, time.January, 31), wantOk: true,
		},
		{
			name: "window end itself is inside", d: Week, recurring: true,
			today:     Date(2024, time.January, 7),
			wantStart: start, wantEnd: Date(2024, time.January, 7), wantOk: true,
		},
		{
			name: "day after window end rolls over", d: Week, recurring: true,
			today:     Date(2024, time.January, 8),
			wantStart: Date(2024, time.January, 8), wantEnd: Date(2024, time.January, 14), wantOk: true,
		},
		{
			name: "non-recurring inside first window", d: Month, recurring: false,
			today:     Date(2024, time.January, 31),
			wantStart: start, wantEnd: Date(2024, time.January, 31), wantOk: true,
		},
		{
			name: "non-recurring closed after first window", d: Month, recurring: false,
			today:  Date(2024, time.February, 1),
			wantOk: false,
		},
		{
			name: "recurring far future", d: Fortnight, recurring: true,
			today:     Date(2024, time.March, 1),
			wantStart: Date(2024, time.February, 26), wantEnd: Date(2024, time.March, 10), wantOk: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotStart, gotEnd, ok := CurrentCycleWindow(start, tt.d, tt.recurring, tt.today)
			require.Equal(t, tt.wantOk, ok)
			if !tt.wantOk {
				return
			}
			require.Equal(t, tt.wantStart, gotStart)
			require.Equal(t, tt.wantEnd, gotEnd)
		})
	}
}

// An unknown duration never advances a date, so the rollover loop must bail
// out with no window instead of spinning.
func TestCurrentCycleWindowUnknownDuration(t *testing.T) {
	start := Date(2024, time.January, 1)

	done := make(chan bool, 1)
	go func() {
		_, _, ok := CurrentCycleWindow(start, Duration("QUARTER"), true, Date(2024, time.June, 1))
		done <- ok
	}()

	select {
	case ok := <-done:
		require.False(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("CurrentCycleWindow did not return for an unknown duration")
	}

	_, _, ok := CurrentCycleWindow(start, Duration(""), false, Date(2024, time.June, 1))
	require.False(t, ok)
}

// Windows of consecutive cycles must tile the calendar: each next window
// starts the day after the previous one ends.
func TestCurrentCycleWindowsAreContiguous(t *testing.T) {
	start := Date(2024, time.January, 31)

	today := start
	_, prevEnd, ok := CurrentCycleWindow(start, Month, true, today)
	require.True(t, ok)

	for i := 0; i < 24; i++ {
		today = prevEnd.AddDate(0, 0, 1)
		gotStart, gotEnd, ok := CurrentCycleWindow(start, Month, true, today)
		require.True(t, ok)
		require.Equal(t, today, gotStart, "cycle after %s", prevEnd.Format("2006-01-02"))
		require.True(t, gotEnd.After(gotStart))
		prevEnd = gotEnd
	}
}
