package room

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Zanex/poker-planning/internal/domain"
)

func voter(name, card string) *domain.User {
	u := &domain.User{ID: name, Name: name}
	if card != "" {
		u.Vote = &card
	}
	return u
}

func spectator(name, card string) *domain.User {
	u := voter(name, card)
	u.IsSpectator = true
	return u
}

func TestComputeStats(t *testing.T) {
	tests := []struct {
		name     string
		users    []*domain.User
		cardType domain.CardType
		want     domain.Stats
	}{
		{
			name:     "odd number of votes",
			users:    []*domain.User{voter("a", "1"), voter("b", "2"), voter("c", "3")},
			cardType: domain.CardTypeFibonacci,
			want:     domain.Stats{Average: 2.0, Median: 2, Total: 3},
		},
		{
			name:     "even number of votes",
			users:    []*domain.User{voter("a", "1"), voter("b", "2"), voter("c", "3"), voter("d", "5")},
			cardType: domain.CardTypeFibonacci,
			want:     domain.Stats{Average: 2.8, Median: 2.5, Total: 4},
		},
		{
			name:     "no votes",
			users:    []*domain.User{voter("a", ""), voter("b", "")},
			cardType: domain.CardTypeFibonacci,
			want:     domain.Stats{},
		},
		{
			name:     "no users",
			users:    nil,
			cardType: domain.CardTypeFibonacci,
			want:     domain.Stats{},
		},
		{
			name:     "sentinel cards excluded",
			users:    []*domain.User{voter("a", "5"), voter("b", domain.CardUnsure), voter("c", domain.CardCoffee)},
			cardType: domain.CardTypeFibonacci,
			want:     domain.Stats{Average: 5, Median: 5, Total: 1},
		},
		{
			name:     "spectator votes excluded",
			users:    []*domain.User{voter("a", "3"), spectator("s", "21")},
			cardType: domain.CardTypeFibonacci,
			want:     domain.Stats{Average: 3, Median: 3, Total: 1},
		},
		{
			name:     "tshirt scale has no numeric votes",
			users:    []*domain.User{voter("a", "M"), voter("b", "XL")},
			cardType: domain.CardTypeTShirt,
			want:     domain.Stats{},
		},
		{
			name:     "average rounded to one decimal",
			users:    []*domain.User{voter("a", "1"), voter("b", "1"), voter("c", "2")},
			cardType: domain.CardTypeSequential,
			want:     domain.Stats{Average: 1.3, Median: 1, Total: 3},
		},
		{
			name:     "unsorted votes still yield order-statistic median",
			users:    []*domain.User{voter("a", "8"), voter("b", "5")},
			cardType: domain.CardTypeFibonacci,
			want:     domain.Stats{Average: 6.5, Median: 6.5, Total: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, computeStats(tt.users, tt.cardType))
		})
	}
}
