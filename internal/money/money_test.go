package money

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Money
		wantErr bool
	}{
		{name: "integer", input: "12", want: 1200},
		{name: "two decimals", input: "12.34", want: 1234},
		{name: "one decimal", input: "12.3", want: 1230},
		{name: "comma separator", input: "12,34", want: 1234},
		{name: "leading dot", input: ".5", want: 50},
		{name: "trailing dot", input: "5.", want: 500},
		{name: "surrounding spaces", input: "  7.25  ", want: 725},
		{name: "zero is parseable", input: "0", want: 0},
		{name: "zero with decimals", input: "0.00", want: 0},
		{name: "third decimal rounds down", input: "12.344", want: 1234},
		{name: "third decimal rounds up", input: "12.345", want: 1235},
		{name: "extra decimals ignored past third", input: "12.3449", want: 1234},
		{name: "empty", input: "", wantErr: true},
		{name: "spaces only", input: "   ", wantErr: true},
		{name: "bare dot", input: ".", wantErr: true},
		{name: "negative", input: "-5", wantErr: true},
		{name: "explicit plus", input: "+5", wantErr: true},
		{name: "two separators", input: "1.2.3", wantErr: true},
		{name: "letters", input: "12a", wantErr: true},
		{name: "letters only", input: "abc", wantErr: true},
		{name: "inner space", input: "1 2", wantErr: true},
		{name: "overflow", input: "99999999999999999999", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestParseFormatRoundTrip(t *testing.T) {
	inputs := []string{"0.01", "1.00", "12.34", "999.99", "10000.00"}
	for _, in := range inputs {
		m, err := Parse(in)
		require.NoError(t, err)
		require.Equal(t, in, m.Format())
	}
}

func TestIsZero(t *testing.T) {
	require.True(t, Money(0).IsZero())
	require.False(t, Money(1).IsZero())
}

func TestFormatWithSymbol(t *testing.T) {
	defer SetSymbol(DefaultSymbol)

	m := Money(1234)
	require.Equal(t, "$12.34", m.FormatWithSymbol())

	SetSymbol("€")
	require.Equal(t, "€12.34", m.FormatWithSymbol())

	SetSymbol("")
	require.Equal(t, "$12.34", m.FormatWithSymbol())
}
