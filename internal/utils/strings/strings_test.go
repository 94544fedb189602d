package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapString(t *testing.T) {
	tests := []struct {
		name      string
		original  string
		maxLength int
		expected  string
	}{
		{
			name:      "short_passes_through",
			original:  "hello world",
			maxLength: 20,
			expected:  "hello world",
		},
		{
			name:      "wraps_on_word_boundary",
			original:  "replace the value with a random email address",
			maxLength: 16,
			expected:  "replace the\nvalue with a\nrandom email\naddress",
		},
		{
			name:      "hard_splits_long_token",
			original:  "4f1c2f4a8b9d0e3c5a6b7c8d9e0f1a2b",
			maxLength: 10,
			expected:  "4f1c2f4a8b\n9d0e3c5a6b\n7c8d9e0f1a\n2b",
		},
		{
			name:      "empty",
			original:  "",
			maxLength: 10,
			expected:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, WrapString(tt.original, tt.maxLength))
		})
	}
}
