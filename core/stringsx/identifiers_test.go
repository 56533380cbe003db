package stringsx

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUpperFirstChar(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Standard case conversion",
			input:    "hello",
			expected: "Hello",
		},
		{
			name:     "Already uppercase",
			input:    "Hello",
			expected: "Hello",
		},
		{
			name:     "Empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "Unicode lower to upper",
			input:    "éclair",
			expected: "Éclair",
		},
		{
			name:     "Underscore leading",
			input:    "_x",
			expected: "_x",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, UpperFirstChar(tc.input))
		})
	}
}

func TestIsIdentifier(t *testing.T) {
	require.True(t, IsIdentifier("x"))
	require.True(t, IsIdentifier("_x1"))
	require.True(t, IsIdentifier("ÿ"))
	require.False(t, IsIdentifier(""))
	require.False(t, IsIdentifier("1x"))
	require.False(t, IsIdentifier("a-b"))
	require.False(t, IsIdentifier("a b"))
}

func TestPropertyOfSetter(t *testing.T) {
	testCases := []struct {
		method   string
		expected string
		ok       bool
	}{
		{"SetName", "Name", true},
		{"SetX", "X", true},
		{"Set", "", false},
		{"Settle", "", false},
		{"Name", "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.method, func(t *testing.T) {
			name, ok := PropertyOfSetter(tc.method)
			require.Equal(t, tc.ok, ok)
			require.Equal(t, tc.expected, name)
		})
	}

	require.Equal(t, "SetName", SetterName("Name"))
}
