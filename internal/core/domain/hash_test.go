package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "crlf to lf",
			input:    "a\r\nb\r\n",
			expected: "a\nb",
		},
		{
			name:     "trailing whitespace stripped per line",
			input:    "a  \nb\t\nc",
			expected: "a\nb\nc",
		},
		{
			name:     "surrounding blank lines removed",
			input:    "\n\nbody\n\n\n",
			expected: "body",
		},
		{
			name:     "interior blank lines preserved",
			input:    "a\n\nb",
			expected: "a\n\nb",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeText(tt.input))
		})
	}
}

func TestHashText_Deterministic(t *testing.T) {
	h1 := HashText("# Note\n\nsome content")
	h2 := HashText("# Note\n\nsome content")
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64) // hex sha256
}

func TestHashText_NormalisationEquivalence(t *testing.T) {
	// Same logical content with different line endings and trailing
	// spaces must produce the same fingerprint.
	assert.Equal(t,
		HashText("a\nb"),
		HashText("a  \r\nb\r\n"),
	)
}

func TestHashText_DifferentContent(t *testing.T) {
	assert.NotEqual(t, HashText("a"), HashText("b"))
}
