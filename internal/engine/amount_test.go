package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDisplayAmount(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"125.50", 12550},
		{"-125.50", -12550},
		{"1 234,56", 123456},
		{"-1 234,56", -123456},
		{"0,00", 0},
		// Amounts that drift under float64 round-tripping must stay exact.
		{"4.10", 410},
		{"1999999.99", 199999999},
	}
	for _, tt := range tests {
		got, err := parseDisplayAmount(tt.input)
		require.NoError(t, err, "input: %s", tt.input)
		assert.Equal(t, tt.want, got, "input: %s", tt.input)
	}
}

func TestParseDisplayAmount_Invalid(t *testing.T) {
	for _, input := range []string{"", "abc", "12,34,56"} {
		_, err := parseDisplayAmount(input)
		assert.Error(t, err, "input: %s", input)
	}
}
