package domain

import "strconv"

// CardType identifies the card scale a room estimates with.
type CardType string

const (
	CardTypeFibonacci  CardType = "fibonacci"
	CardTypeTShirt     CardType = "tshirt"
	CardTypePowers     CardType = "powers"
	CardTypeSequential CardType = "sequential"
)

// DefaultCardType is used until a join message picks a scale.
const DefaultCardType = CardTypeFibonacci

// Sentinel cards present in every scale. Neither carries a numeric value.
const (
	CardUnsure = "?"
	CardCoffee = "☕"
)

// HiddenCard is broadcast in place of a real vote while the round is hidden.
const HiddenCard = "🃏"

var cardScales = map[CardType][]string{
	CardTypeFibonacci:  {"0", "1", "2", "3", "5", "8", "13", "21", CardUnsure, CardCoffee},
	CardTypeTShirt:     {"XS", "S", "M", "L", "XL", "XXL", CardUnsure, CardCoffee},
	CardTypePowers:     {"1", "2", "4", "8", "16", "32", "64", CardUnsure, CardCoffee},
	CardTypeSequential: {"1", "2", "3", "4", "5", "6", "7", "8", "9", "10", CardUnsure, CardCoffee},
}

// ParseCardType returns the card type named by s, or false for unknown names.
func ParseCardType(s string) (CardType, bool) {
	ct := CardType(s)
	_, ok := cardScales[ct]
	return ct, ok
}

// Cards returns the card set of the scale in display order.
func (c CardType) Cards() []string {
	return cardScales[c]
}

// NumericValue returns the numeric value of card on this scale.
// T-shirt sizes have no numeric value, and the sentinel cards never do.
func (c CardType) NumericValue(card string) (float64, bool) {
	if c == CardTypeTShirt {
		return 0, false
	}
	n, err := strconv.Atoi(card)
	if err != nil {
		return 0, false
	}
	return float64(n), true
}
