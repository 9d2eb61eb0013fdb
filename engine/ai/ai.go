// Package ai implements the automated Gin Rummy player. Decisions are pure
// functions of the player's own hand, the public game state, and a
// difficulty tier; the automated player never reads another player's hand.
package ai

import (
	"github.com/ramcd86/cosmic-games/engine"
)

// Difficulty selects how well the automated player plays.
type Difficulty string

const (
	Beginner     Difficulty = "beginner"
	Intermediate Difficulty = "intermediate"
	Advanced     Difficulty = "advanced"
	Expert       Difficulty = "expert"
)

// Difficulties lists the tiers from weakest to strongest.
var Difficulties = [4]Difficulty{Beginner, Intermediate, Advanced, Expert}

// View is the public information an automated player may consult: the number
// of cards left in the draw pile and the discard pile (top is last).
type View struct {
	DeckLen     int
	DiscardPile []engine.Card
}

// Decision is the outcome of a turn decision. For a draw, FromDiscard set
// means take the discard pile's top card (also returned in Card).
type Decision struct {
	Type        engine.ActionType
	Card        *engine.Card
	FromDiscard bool
}

// DecideTurn picks the automated player's next action. Gin is always taken
// immediately, overriding difficulty. Otherwise a knock is considered per
// tier, then the draw source is chosen.
func DecideTurn(hand []engine.Card, view View, diff Difficulty) Decision {
	analysis := engine.Analyze(hand)

	if analysis.CanGin {
		return Decision{Type: engine.ActionGin}
	}
	if shouldKnock(analysis, view, diff) {
		return Decision{Type: engine.ActionKnock}
	}
	if shouldDrawFromDiscard(hand, view, diff) {
		top := view.DiscardPile[len(view.DiscardPile)-1]
		return Decision{Type: engine.ActionDraw, Card: &top, FromDiscard: true}
	}
	return Decision{Type: engine.ActionDraw}
}

// DecideDiscard picks the card to throw after drawing (hand size 11).
func DecideDiscard(hand []engine.Card, view View, diff Difficulty) engine.Card {
	switch diff {
	case Intermediate:
		return intermediateDiscard(hand, view)
	case Advanced:
		return advancedDiscard(hand, view)
	case Expert:
		return expertDiscard(hand, view)
	default:
		return beginnerDiscard(hand)
	}
}

// shouldKnock evaluates the per-tier knock test. The CanKnock gate always
// applies first.
func shouldKnock(analysis engine.HandAnalysis, view View, diff Difficulty) bool {
	if !analysis.CanKnock {
		return false
	}
	dw := analysis.DeadwoodValue

	switch diff {
	case Beginner:
		// Knock aggressively when possible.
		return dw <= 8

	case Intermediate:
		if gameProgress(view) > 0.7 {
			return dw <= 10
		}
		return dw <= 5

	case Advanced:
		return dw < estimateOpponentDeadwood(view)-5

	case Expert:
		return expertKnockDecision(dw, view)

	default:
		return dw <= engine.KnockThreshold
	}
}

// expertKnockDecision is a three-bracket rule keyed on game progress:
// conservative early, comparative mid-game, aggressive late.
func expertKnockDecision(deadwood int, view View) bool {
	progress := gameProgress(view)
	if progress < 0.3 {
		return deadwood <= 3
	}
	if progress < 0.7 {
		return deadwood < estimateOpponentDeadwood(view)-8
	}
	return deadwood <= 7
}

// shouldDrawFromDiscard decides between the discard pile and the deck.
// Beginners only spot a card that obviously extends a same-rank pair; higher
// tiers simulate drawing the card, discard optimally, and accept only if the
// resulting deadwood improves.
func shouldDrawFromDiscard(hand []engine.Card, view View, diff Difficulty) bool {
	if len(view.DiscardPile) == 0 {
		return false
	}
	top := view.DiscardPile[len(view.DiscardPile)-1]

	if diff == Beginner {
		return completesObviousMeld(top, hand)
	}

	current := engine.Analyze(hand)
	testHand := append(append([]engine.Card(nil), hand...), top)
	best := advancedDiscard(testHand, View{})
	after := removeCard(testHand, best)
	return engine.Analyze(after).DeadwoodValue < current.DeadwoodValue
}

// completesObviousMeld reports whether the card would join two or more
// same-rank cards already held.
func completesObviousMeld(card engine.Card, hand []engine.Card) bool {
	sameRank := 0
	for _, c := range hand {
		if c.Rank == card.Rank {
			sameRank++
		}
	}
	return sameRank >= 2
}
