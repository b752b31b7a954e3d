package room

import (
	"math"
	"sort"

	"github.com/Zanex/poker-planning/internal/domain"
)

// computeStats aggregates the current votes at reveal time. Spectators and
// cards without a numeric value on the active scale ("?", "☕", every t-shirt
// size) are excluded entirely, including from the total.
func computeStats(users []*domain.User, cardType domain.CardType) domain.Stats {
	votes := make([]float64, 0, len(users))
	for _, u := range users {
		if u.IsSpectator || u.Vote == nil {
			continue
		}
		value, ok := cardType.NumericValue(*u.Vote)
		if !ok {
			continue
		}
		votes = append(votes, value)
	}

	if len(votes) == 0 {
		return domain.Stats{}
	}

	sort.Float64s(votes)

	var sum float64
	for _, v := range votes {
		sum += v
	}

	var median float64
	n := len(votes)
	if n%2 == 0 {
		median = (votes[n/2-1] + votes[n/2]) / 2
	} else {
		median = votes[n/2]
	}

	return domain.Stats{
		// math.Round is half-away-from-zero, matching the persisted format.
		Average: math.Round(sum/float64(n)*10) / 10,
		Median:  median,
		Total:   n,
	}
}
