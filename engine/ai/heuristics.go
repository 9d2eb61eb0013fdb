package ai

import "github.com/ramcd86/cosmic-games/engine"

// recentDiscardWindow is how many of the latest discards inform safety
// checks.
const recentDiscardWindow = 5

// gameProgress estimates how far the round has advanced from the share of
// the deck already consumed, in [0, 1).
func gameProgress(view View) float64 {
	return float64(engine.DeckSize-view.DeckLen) / float64(engine.DeckSize)
}

// estimateOpponentDeadwood guesses an opponent's deadwood from game progress
// alone: high early, converging toward a floor of 5 late.
func estimateOpponentDeadwood(view View) int {
	estimate := 20 - int(gameProgress(view)*15)
	if estimate < 5 {
		return 5
	}
	return estimate
}

// likelyNeededByOpponent guesses whether throwing the card would feed the
// opponent. A card sharing rank or suit with a recent discard is considered
// safe, since the opponent passed on that material; with no discard history
// the card is assumed needed.
func likelyNeededByOpponent(card engine.Card, view View) bool {
	if len(view.DiscardPile) == 0 {
		return true
	}
	start := len(view.DiscardPile) - recentDiscardWindow
	if start < 0 {
		start = 0
	}
	for _, d := range view.DiscardPile[start:] {
		if d.Rank == card.Rank || d.Suit == card.Suit {
			return false
		}
	}
	return true
}

// drawPotential scores how much improvement the remaining deck can still
// offer. It depends only on public deck size, so it shifts every discard
// candidate equally.
func drawPotential(view View) int {
	return view.DeckLen / 10
}

// gameStateBonus nudges the expert tier toward caution as the round runs
// out. Constant across candidates for a given state.
func gameStateBonus(view View) int {
	if gameProgress(view) > 0.7 {
		return 2
	}
	return 0
}
