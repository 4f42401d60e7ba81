package iban

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerator_GenerateIsValid(t *testing.T) {
	g := NewGenerator(42)
	for i := 0; i < 50; i++ {
		id := g.Generate()
		assert.Len(t, id, 12)
		assert.True(t, strings.HasPrefix(id, "EE"))
		assert.Equal(t, "77", id[4:6])
		assert.True(t, g.Validate(id), id)
	}
}

func TestGenerator_Deterministic(t *testing.T) {
	assert.Equal(t, NewGenerator(7).Generate(), NewGenerator(7).Generate())
}

func TestGenerator_Validate(t *testing.T) {
	g := NewGenerator(1)
	valid := g.Generate()

	// flip the last account digit to break the checksum
	last := valid[len(valid)-1]
	flipped := byte('0' + (last-'0'+1)%10)
	broken := valid[:len(valid)-1] + string(flipped)

	tests := []struct {
		name string
		id   string
		want bool
	}{
		{"generated", valid, true},
		{"lower case accepted", strings.ToLower(valid), true},
		{"bad checksum", broken, false},
		{"wrong country", "LV" + valid[2:], false},
		{"too short", valid[:11], false},
		{"letters in account", valid[:11] + "X", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, g.Validate(tt.id))
		})
	}
}
