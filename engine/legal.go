package engine

import "github.com/google/uuid"

// Validation holds the outcome of a legality check. Reason is set only when
// Valid is false and is safe to surface to the acting client.
type Validation struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

func reject(reason string) Validation { return Validation{Reason: reason} }

// Validate gates an action against the current state without mutating it.
// The draw/discard sub-phase is inferred from the acting player's hand size
// (10 = draw pending, 11 = discard pending), never stored separately.
func (g *GameState) Validate(playerID uuid.UUID, action GameAction) Validation {
	if g.Phase != PhasePlaying {
		return reject("game is not in progress")
	}
	if g.CurrentPlayer != playerID {
		return reject("not your turn")
	}
	player := g.PlayerByID(playerID)
	if player == nil {
		return reject("player not found")
	}

	switch action.Type {
	case ActionDraw:
		if len(g.Deck) == 0 && len(g.DiscardPile) == 0 {
			return reject("no cards available to draw")
		}
		if len(player.Hand) != HandSize {
			return reject("must have exactly 10 cards to draw")
		}
		return Validation{Valid: true}

	case ActionDiscard:
		if action.Card == nil {
			return reject("no card specified for discard")
		}
		if len(player.Hand) != HandSize+1 {
			return reject("must draw a card before discarding")
		}
		if !handContains(player.Hand, *action.Card) {
			return reject("card not in hand")
		}
		return Validation{Valid: true}

	case ActionKnock, ActionGin:
		analysis := Analyze(player.Hand)
		if action.Type == ActionGin && !analysis.CanGin {
			return reject("cannot go gin with current hand")
		}
		if action.Type == ActionKnock && !analysis.CanKnock {
			return reject("cannot knock with current deadwood value")
		}
		return Validation{Valid: true}

	default:
		return reject("invalid action type")
	}
}

// handContains reports whether the hand holds the card, matching by id.
func handContains(hand []Card, card Card) bool {
	for _, c := range hand {
		if c.Same(card) {
			return true
		}
	}
	return false
}
