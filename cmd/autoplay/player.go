package main

import "github.com/wricardo/memory-match-game/game/engine"

// Player is a perfect-memory strategy: it remembers every value it has seen
// and never flips a card twice without reason.
type Player struct {
	known   map[int]string
	matched map[int]bool
}

// NewPlayer creates a player with an empty memory
func NewPlayer() *Player {
	p := &Player{}
	p.Reset()
	return p
}

// Reset forgets everything, for a new board
func (p *Player) Reset() {
	p.known = make(map[int]string)
	p.matched = make(map[int]bool)
}

// Observe records every face-up value in state
func (p *Player) Observe(state *engine.GameState) {
	if state == nil {
		return
	}
	for _, card := range state.Cards {
		if card.FaceUp && card.Value != "" {
			p.known[card.ID] = card.Value
		}
		if card.Matched {
			p.matched[card.ID] = true
		}
	}
}

// Known returns how many card values the player remembers
func (p *Player) Known() int {
	return len(p.known)
}

// Next picks the card to flip. It reports false when no flip makes sense,
// i.e. the board is locked, finished or waiting on a turn to resolve.
func (p *Player) Next(state *engine.GameState) (int, bool) {
	if state == nil || state.Finished || state.Locked {
		return 0, false
	}
	// Past the limit only the pending exhaustion check remains
	if state.MoveLimit > 0 && state.Moves > state.MoveLimit {
		return 0, false
	}
	p.Observe(state)

	var selected []engine.CardView
	for _, card := range state.Cards {
		if card.Selected && !card.Matched {
			selected = append(selected, card)
		}
	}

	switch len(selected) {
	case 0:
		if a, _, ok := p.knownPair(state); ok {
			return a, true
		}
		return p.unknownCard(state, -1)
	case 1:
		first := selected[0]
		if id, ok := p.partnerOf(state, first.ID, first.Value); ok {
			return id, true
		}
		return p.unknownCard(state, first.ID)
	default:
		return 0, false
	}
}

// knownPair finds two unmatched cards the player knows share a value
func (p *Player) knownPair(state *engine.GameState) (int, int, bool) {
	seen := make(map[string]int)
	for _, card := range state.Cards {
		if card.Matched || p.matched[card.ID] {
			continue
		}
		value, ok := p.known[card.ID]
		if !ok {
			continue
		}
		if other, ok := seen[value]; ok {
			return other, card.ID, true
		}
		seen[value] = card.ID
	}
	return 0, 0, false
}

func (p *Player) partnerOf(state *engine.GameState, id int, value string) (int, bool) {
	for _, card := range state.Cards {
		if card.ID == id || card.Matched || p.matched[card.ID] {
			continue
		}
		if p.known[card.ID] == value {
			return card.ID, true
		}
	}
	return 0, false
}

// unknownCard returns the first card never seen. If every value is known it
// falls back to any flippable card other than skip.
func (p *Player) unknownCard(state *engine.GameState, skip int) (int, bool) {
	fallback := -1
	for _, card := range state.Cards {
		if card.ID == skip || card.Matched || card.Selected {
			continue
		}
		if _, ok := p.known[card.ID]; !ok {
			return card.ID, true
		}
		if fallback == -1 {
			fallback = card.ID
		}
	}
	if fallback == -1 {
		return 0, false
	}
	return fallback, true
}
