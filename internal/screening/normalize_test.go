package screening

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		given    string
		first    string
		second   string
		expected string
	}{
		{"absent second surname", "Ana", "Pérez", "", "ANA PÉREZ"},
		{"all parts", "Ana", "Pérez", "López", "ANA PÉREZ LÓPEZ"},
		{"collapses whitespace", "  Juan   Carlos ", "Perez", "  ", "JUAN CARLOS PEREZ"},
		{"tabs and newlines", "Juan\tCarlos", "\nPerez", "", "JUAN CARLOS PEREZ"},
		{"all empty", "", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.given, tt.first, tt.second))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	first := Normalize("maría josé", "de la  cruz", "")
	assert.Equal(t, first, Normalize("maría josé", "de la  cruz", ""))
	assert.Equal(t, first, Normalize(first, "", ""))
}
