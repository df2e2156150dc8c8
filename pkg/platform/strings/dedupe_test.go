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
		{
			name:     "nil slice",
			input:    nil,
			expected: nil,
		},
		{
			name:     "empty slice",
			input:    []string{},
			expected: []string{},
		},
		{
			name:     "trims whitespace",
			input:    []string{"  node-alpha  ", "node-beta ", " node-gamma"},
			expected: []string{"node-alpha", "node-beta", "node-gamma"},
		},
		{
			name:     "drops duplicates preserving first-seen order",
			input:    []string{"node-beta", "node-alpha", "node-beta", " node-alpha "},
			expected: []string{"node-beta", "node-alpha"},
		},
		{
			name:     "drops empty entries",
			input:    []string{"node-alpha", "", "   ", "node-beta"},
			expected: []string{"node-alpha", "node-beta"},
		},
		{
			name:     "preserves case",
			input:    []string{"Node-Alpha", "node-alpha"},
			expected: []string{"Node-Alpha", "node-alpha"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DedupeAndTrim(tt.input))
		})
	}
}

func TestDedupeAndTrimLower(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{
			name:     "nil slice",
			input:    nil,
			expected: nil,
		},
		{
			name:     "folds case before deduping",
			input:    []string{"Governance", "governance", "GOVERNANCE"},
			expected: []string{"governance"},
		},
		{
			name:     "trims, folds, and dedupes",
			input:    []string{"  Privacy ", "audit", "privacy", "AUDIT"},
			expected: []string{"privacy", "audit"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DedupeAndTrimLower(tt.input))
		})
	}
}
