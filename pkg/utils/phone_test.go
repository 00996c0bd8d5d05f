package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "formatted with country code", input: "+91 98765 43210", expected: "9876543210"},
		{name: "bare local number", input: "9876543210", expected: "9876543210"},
		{name: "leading zero", input: "09876543210", expected: "9876543210"},
		{name: "country code no spaces", input: "919876543210", expected: "9876543210"},
		{name: "dashes and parens", input: "(91) 98765-43210", expected: "9876543210"},
		{name: "starts with 91 but only 10 digits", input: "9198765432", expected: "9198765432"},
		{name: "empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizePhone(tt.input))
		})
	}
}

func TestNormalizeLocalPhone(t *testing.T) {
	t.Run("valid number", func(t *testing.T) {
		got, err := NormalizeLocalPhone("+91 98765 43210")
		require.NoError(t, err)
		assert.Equal(t, "9876543210", got)
	})

	t.Run("too short after cleanup", func(t *testing.T) {
		_, err := NormalizeLocalPhone("098765432")
		assert.ErrorIs(t, err, ErrInvalidPhone)
	})

	t.Run("too long", func(t *testing.T) {
		_, err := NormalizeLocalPhone("98765432101234")
		assert.ErrorIs(t, err, ErrInvalidPhone)
	})
}
