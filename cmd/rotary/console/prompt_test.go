package console

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPromptLine(t *testing.T) {
	assert.Equal(t, "name?", promptLine("name?", nil))
	assert.Equal(t, "write? [N/y]:", promptLine("write?", []string{No, Yes}))
}

func TestMatch(t *testing.T) {
	constraints := []string{No, Yes}
	tests := []struct {
		given    string
		expected string
	}{
		{"", No},
		{"y", Yes},
		{" Y ", Yes},
		{"n", No},
		{"maybe", No},
	}
	for _, test := range tests {
		t.Run(test.given, func(t *testing.T) {
			assert.Equal(t, test.expected, match(test.given, constraints))
		})
	}
	assert.Equal(t, "free text", match("free text", nil))
}
