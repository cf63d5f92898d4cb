package engine

import (
	"fmt"
	"math/rand"
)

// Palette is the ordered set of card symbols. A deck of n pairs uses the first n.
var Palette = []string{
	"🐱", "🐶", "🦊", "🐻", "🐼", "🐨",
	"🐰", "🦁", "🐯", "🐵", "🐸", "🐧",
	"🐘", "🦒", "🦓", "🐴", "🐷", "🐮",
}

// BuildDeck returns 2*pairCount unmatched cards in uniformly random order.
// IDs follow the unshuffled order, so card i and card i+pairCount share a value.
func BuildDeck(pairCount int, rng *rand.Rand) ([]Card, error) {
	if pairCount < 1 || pairCount > len(Palette) {
		return nil, fmt.Errorf("pair count must be between 1 and %d, got %d", len(Palette), pairCount)
	}

	symbols := Palette[:pairCount]
	deck := make([]Card, 0, 2*pairCount)
	for i := 0; i < 2; i++ {
		for _, symbol := range symbols {
			deck = append(deck, Card{ID: len(deck), Value: symbol})
		}
	}

	rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
	return deck, nil
}

// CountMatched returns how many cards are matched
func CountMatched(cards []Card) int {
	count := 0
	for _, card := range cards {
		if card.Matched {
			count++
		}
	}
	return count
}

// AllMatched reports whether a non-empty deck is fully matched
func AllMatched(cards []Card) bool {
	return len(cards) > 0 && CountMatched(cards) == len(cards)
}
