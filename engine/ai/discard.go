package ai

import (
	"github.com/ramcd86/cosmic-games/engine"
)

// beginnerDiscard throws the highest-value deadwood card, or the
// lowest-value card of a fully melded hand.
func beginnerDiscard(hand []engine.Card) engine.Card {
	analysis := engine.Analyze(hand)
	if len(analysis.Deadwood) > 0 {
		return highestValueCard(analysis.Deadwood)
	}
	return lowestValueCard(hand)
}

// intermediateDiscard prefers deadwood the opponent is unlikely to want,
// then any deadwood, and only breaks the cheapest meld as a last resort.
func intermediateDiscard(hand []engine.Card, view View) engine.Card {
	analysis := engine.Analyze(hand)

	if len(analysis.Deadwood) > 0 {
		var safe []engine.Card
		for _, c := range analysis.Deadwood {
			if !likelyNeededByOpponent(c, view) {
				safe = append(safe, c)
			}
		}
		if len(safe) > 0 {
			return highestValueCard(safe)
		}
		return highestValueCard(analysis.Deadwood)
	}

	return breakCheapestMeld(analysis.Melds)
}

// advancedDiscard tries every single-card removal, scoring each by the
// resulting deadwood plus a fixed penalty when the card looks useful to the
// opponent, and keeps the minimum.
func advancedDiscard(hand []engine.Card, view View) engine.Card {
	best := hand[0]
	bestScore := int(^uint(0) >> 1)

	for _, card := range hand {
		rest := removeCard(hand, card)
		score := engine.Analyze(rest).DeadwoodValue
		if likelyNeededByOpponent(card, view) {
			score += 10
		}
		if score < bestScore {
			bestScore = score
			best = card
		}
	}
	return best
}

// expertDiscard layers draw-potential and game-state adjustments on top of
// the advanced scoring, with a stiffer opponent penalty.
func expertDiscard(hand []engine.Card, view View) engine.Card {
	best := hand[0]
	bestScore := int(^uint(0) >> 1)

	for _, card := range hand {
		rest := removeCard(hand, card)
		score := engine.Analyze(rest).DeadwoodValue
		if likelyNeededByOpponent(card, view) {
			score += 15
		}
		score -= drawPotential(view)
		score += gameStateBonus(view)
		if score < bestScore {
			bestScore = score
			best = card
		}
	}
	return best
}

// breakCheapestMeld picks the highest-value card out of the least valuable
// meld of a fully melded hand.
func breakCheapestMeld(melds []engine.Meld) engine.Card {
	cheapest := melds[0]
	lowest := meldValue(cheapest)
	for _, m := range melds[1:] {
		if v := meldValue(m); v < lowest {
			lowest = v
			cheapest = m
		}
	}
	return highestValueCard(cheapest)
}

func meldValue(m engine.Meld) int {
	total := 0
	for _, c := range m {
		total += c.Value()
	}
	return total
}

func highestValueCard(cards []engine.Card) engine.Card {
	best := cards[0]
	for _, c := range cards[1:] {
		if c.Value() > best.Value() {
			best = c
		}
	}
	return best
}

func lowestValueCard(cards []engine.Card) engine.Card {
	best := cards[0]
	for _, c := range cards[1:] {
		if c.Value() < best.Value() {
			best = c
		}
	}
	return best
}

func removeCard(hand []engine.Card, card engine.Card) []engine.Card {
	out := make([]engine.Card, 0, len(hand))
	for _, c := range hand {
		if !c.Same(card) {
			out = append(out, c)
		}
	}
	return out
}
