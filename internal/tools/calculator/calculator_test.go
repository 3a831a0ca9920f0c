package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	c := New()

	tests := []struct {
		expr string
		want float64
	}{
		{"2+3", 5},
		{"2 + 3 * 4", 14},
		{"(2 + 3) * 4", 20},
		{"10 / 4", 2.5},
		{"2 ^ 10", 1024},
		{"2 ** 10", 1024},
		{"2 ^ 3 ^ 2", 512}, // right-associative
		{"-5 + 3", -2},
		{"-(2 + 3)", -5},
		{"2 ^ -1", 0.5},
		{"3.5 * 2", 7},
		{"100", 100},
		{"((1))", 1},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := c.Evaluate(tt.expr)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.InDelta(t, tt.want, *got, 1e-9)
		})
	}
}

func TestEvaluateEmptyExpression(t *testing.T) {
	c := New()

	got, err := c.Evaluate("   ")
	assert.NoError(t, err)
	assert.Nil(t, got, "empty expression is not an error, just no result")
}

func TestEvaluateRejectsInvalidInput(t *testing.T) {
	c := New()

	invalid := []string{
		"import os",
		"x + 1",
		"2 +",
		"(2 + 3",
		"2 + 3)",
		"1..2",
		"2 // 3",
		"__builtins__",
	}

	for _, expr := range invalid {
		got, err := c.Evaluate(expr)
		assert.Nil(t, got, "expression %q must not produce a value", expr)
		assert.ErrorIs(t, err, ErrInvalidExpression, "expression %q", expr)
	}
}

func TestEvaluateDivisionByZero(t *testing.T) {
	c := New()

	got, err := c.Evaluate("1 / 0")
	assert.Nil(t, got)
	assert.ErrorIs(t, err, ErrInvalidExpression)
	assert.Contains(t, err.Error(), "division by zero")
}
