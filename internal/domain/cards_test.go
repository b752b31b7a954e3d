package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCardType(t *testing.T) {
	for _, name := range []string{"fibonacci", "tshirt", "powers", "sequential"} {
		ct, ok := ParseCardType(name)
		assert.True(t, ok, name)
		assert.Equal(t, CardType(name), ct)
	}

	_, ok := ParseCardType("planets")
	assert.False(t, ok)
	_, ok = ParseCardType("")
	assert.False(t, ok)
}

func TestNumericValue(t *testing.T) {
	tests := []struct {
		cardType CardType
		card     string
		want     float64
		ok       bool
	}{
		{CardTypeFibonacci, "13", 13, true},
		{CardTypeFibonacci, "0", 0, true},
		{CardTypeFibonacci, CardUnsure, 0, false},
		{CardTypeFibonacci, CardCoffee, 0, false},
		{CardTypePowers, "64", 64, true},
		{CardTypeSequential, "10", 10, true},
		{CardTypeTShirt, "M", 0, false},
		{CardTypeTShirt, "5", 0, false},
	}

	for _, tt := range tests {
		got, ok := tt.cardType.NumericValue(tt.card)
		assert.Equal(t, tt.ok, ok, "%s %q", tt.cardType, tt.card)
		assert.Equal(t, tt.want, got, "%s %q", tt.cardType, tt.card)
	}
}

func TestCards(t *testing.T) {
	assert.Equal(t, []string{"0", "1", "2", "3", "5", "8", "13", "21", "?", "☕"}, CardTypeFibonacci.Cards())
	assert.Contains(t, CardTypeTShirt.Cards(), "XL")
	assert.Empty(t, CardType("planets").Cards())
}
