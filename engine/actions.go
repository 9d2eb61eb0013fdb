package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Apply mutates the state with an already-validated action. Callers must run
// Validate first; Apply still returns errors for conditions that Validate
// cannot see (discard-pile draw mismatch) and for misuse. A successful Apply
// records the action as LastAction. Mutation is atomic per action: any error
// is returned before the state is touched.
func (g *GameState) Apply(playerID uuid.UUID, action GameAction) error {
	if g.Phase != PhasePlaying {
		return fmt.Errorf("cannot apply action in phase %q", g.Phase)
	}
	player := g.PlayerByID(playerID)
	if player == nil {
		return fmt.Errorf("player %s not in game", playerID)
	}

	var err error
	switch action.Type {
	case ActionDraw:
		err = g.applyDraw(player, action)
	case ActionDiscard:
		err = g.applyDiscard(player, action)
	case ActionKnock:
		err = g.applyKnock(player, false)
	case ActionGin:
		err = g.applyKnock(player, true)
	default:
		return fmt.Errorf("unhandled action type %q", action.Type)
	}
	if err != nil {
		return err
	}

	recorded := action
	recorded.PlayerID = playerID
	if recorded.Timestamp.IsZero() {
		recorded.Timestamp = time.Now()
	}
	g.LastAction = &recorded
	return nil
}

// applyDraw pops a card onto the player's hand. With no card named, the draw
// comes from the deck top; an empty deck is not an error but the terminal
// deck-exhaustion transition. With a card named, the draw must match the
// discard pile's top by identity.
func (g *GameState) applyDraw(player *PlayerState, action GameAction) error {
	if action.Card != nil {
		top, ok := g.DiscardTop()
		if !ok {
			return fmt.Errorf("discard pile is empty")
		}
		if !top.Same(*action.Card) {
			return fmt.Errorf("requested card does not match top of discard pile")
		}
		g.DiscardPile = g.DiscardPile[:len(g.DiscardPile)-1]
		player.Hand = append(player.Hand, top)
		return nil
	}

	if len(g.Deck) == 0 {
		g.finishByDeckExhaustion()
		return nil
	}
	top := g.Deck[len(g.Deck)-1]
	g.Deck = g.Deck[:len(g.Deck)-1]
	player.Hand = append(player.Hand, top)
	return nil
}

// applyDiscard moves the named card from hand to discard pile and advances
// the turn. Lookup is by id with a rank+suit fallback, tolerating stale card
// references from clients holding an older copy of the hand.
func (g *GameState) applyDiscard(player *PlayerState, action GameAction) error {
	if action.Card == nil {
		return fmt.Errorf("no card specified for discard")
	}

	idx := -1
	for i, c := range player.Hand {
		if c.Same(*action.Card) {
			idx = i
			break
		}
	}
	if idx == -1 {
		for i, c := range player.Hand {
			if c.Rank == action.Card.Rank && c.Suit == action.Card.Suit {
				idx = i
				break
			}
		}
	}
	if idx == -1 {
		return fmt.Errorf("card %s not in hand", action.Card)
	}

	discarded := player.Hand[idx]
	player.Hand = append(player.Hand[:idx], player.Hand[idx+1:]...)
	g.DiscardPile = append(g.DiscardPile, discarded)

	// Only a successful discard advances the turn pointer.
	g.CurrentPlayer = g.NextPlayer(player.ID)
	g.TurnNumber++
	return nil
}

// applyKnock ends the round on a knock or gin. Both hands are analyzed
// fresh; the opponent's deadwood is never assumed.
func (g *GameState) applyKnock(knocker *PlayerState, gin bool) error {
	opponent := g.OpponentOf(knocker.ID)
	if opponent == nil {
		return fmt.Errorf("no opponent found")
	}

	knockerAnalysis := Analyze(knocker.Hand)
	opponentAnalysis := Analyze(opponent.Hand)
	if gin && !knockerAnalysis.CanGin {
		return fmt.Errorf("cannot go gin with current hand")
	}
	if !gin && !knockerAnalysis.CanKnock {
		return fmt.Errorf("cannot knock with current hand")
	}

	result := ScoreKnock(knockerAnalysis.DeadwoodValue, opponentAnalysis.DeadwoodValue)

	g.FinalScores = make([]FinalScore, 0, len(g.Players))
	for i := range g.Players {
		p := &g.Players[i]
		entry := FinalScore{
			PlayerID:      p.ID,
			DeadwoodValue: Analyze(p.Hand).DeadwoodValue,
		}
		switch p.ID {
		case knocker.ID:
			entry.TotalScore = result.KnockerScore
			entry.IsWinner = !result.Undercut
		case opponent.ID:
			entry.TotalScore = result.OpponentScore
			entry.IsWinner = result.Undercut
		}
		g.FinalScores = append(g.FinalScores, entry)
	}

	reason := EndKnock
	if gin {
		reason = EndGin
	}
	g.finish(reason)
	return nil
}

// finishByDeckExhaustion ends the round with per-player deadwood comparison
// scoring. Reaching this from a deck draw is a valid terminal transition,
// not an error.
func (g *GameState) finishByDeckExhaustion() {
	g.FinalScores = ScoreDeckExhaustion(g.Players)
	g.finish(EndDeckEmpty)
}

// Abandon ends the round without scoring, for sessions cut short outside
// normal play (for example the last human leaving).
func (g *GameState) Abandon() {
	if g.Phase != PhasePlaying {
		return
	}
	g.FinalScores = nil
	g.finish(EndPlayerLeft)
}

func (g *GameState) finish(reason EndReason) {
	g.Phase = PhaseFinished
	g.EndReason = reason
	now := time.Now()
	g.FinishedAt = &now
}
