package engine

import (
	"math"
	"math/rand"
)

// PositionHistogram deals trials decks of pairCount pairs and counts how often the
// card with the given ID lands in each position.
func PositionHistogram(pairCount, cardID, trials int, rng *rand.Rand) ([]int, error) {
	counts := make([]int, 2*pairCount)
	for i := 0; i < trials; i++ {
		deck, err := BuildDeck(pairCount, rng)
		if err != nil {
			return nil, err
		}
		for pos, card := range deck {
			if card.ID == cardID {
				counts[pos]++
				break
			}
		}
	}
	return counts, nil
}

// ChiSquare returns the chi-square statistic of counts against a uniform distribution
func ChiSquare(counts []int) float64 {
	total := 0
	for _, c := range counts {
		total += c
	}
	if total == 0 || len(counts) == 0 {
		return 0
	}

	expected := float64(total) / float64(len(counts))
	stat := 0.0
	for _, c := range counts {
		diff := float64(c) - expected
		stat += diff * diff / expected
	}
	return stat
}

// ChiSquareCritical returns an approximate 99.9th percentile of the chi-square
// distribution with df degrees of freedom (Wilson-Hilferty).
func ChiSquareCritical(df int) float64 {
	const z = 3.09 // standard normal quantile for p = 0.999
	k := float64(df)
	t := 1 - 2/(9*k) + z*math.Sqrt(2/(9*k))
	return k * t * t * t
}

// CountValues returns how many cards carry each value
func CountValues(cards []Card) map[string]int {
	counts := make(map[string]int)
	for _, card := range cards {
		counts[card.Value]++
	}
	return counts
}
