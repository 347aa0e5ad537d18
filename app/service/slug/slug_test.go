package slug

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMake(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Stark & Sons!!", "stark-sons"},
		{"", "family"},
		{"!!!", "family"},
		{"  Tully  ", "tully"},
		{"o'brien", "obrien"},
		{"snake_case.name", "snake-case-name"},
		{"a--b---c", "a-b-c"},
		{"-leading-and-trailing-", "leading-and-trailing"},
		{"Tyrion Lannister 2", "tyrion-lannister-2"},
		{strings.Repeat("x", 100), strings.Repeat("x", 64)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, Make(tt.input))
		})
	}
}

func TestUnique(t *testing.T) {
	taken := map[string]bool{"family": true, "family-2": true}

	got := Unique("family", func(s string) bool { return taken[s] })

	assert.Equal(t, "family-3", got)
}

func TestUnique_FreeImmediately(t *testing.T) {
	calls := 0

	got := Unique("Stark & Sons!!", func(s string) bool {
		calls++
		return false
	})

	assert.Equal(t, "stark-sons", got)
	assert.Equal(t, 1, calls)
}
