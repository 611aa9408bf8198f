package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{name: "nil slice", input: nil, expected: nil},
		{name: "empty slice", input: []string{}, expected: []string{}},
		{
			name:     "trims whitespace",
			input:    []string{" k1:9092", "k2:9092 "},
			expected: []string{"k1:9092", "k2:9092"},
		},
		{
			name:     "drops repeats keeping first position",
			input:    []string{"k2:9092", "k1:9092", "k2:9092"},
			expected: []string{"k2:9092", "k1:9092"},
		},
		{
			name:     "drops empties from trailing commas",
			input:    []string{"k1:9092", "", "  "},
			expected: []string{"k1:9092"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DedupeAndTrim(tt.input))
		})
	}
}
