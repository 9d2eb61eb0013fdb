// Package engine implements the Gin Rummy rules core: the card model, the
// meld analyzer, knock/gin scoring, and the turn-by-turn legality state
// machine. It is pure and synchronous; session plumbing, storage, and
// transport live in the service layers.
package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// HandSize is a player's hand size at the start of their draw. Between draw
// and discard the hand briefly holds HandSize+1 cards; that difference is the
// only marker of the draw/discard sub-phase.
const HandSize = 10

// GamePhase is the lifecycle phase of a game session.
type GamePhase string

const (
	PhaseWaiting  GamePhase = "waiting"
	PhasePlaying  GamePhase = "playing"
	PhaseFinished GamePhase = "finished"
)

// ActionType identifies a player action.
type ActionType string

const (
	ActionDraw    ActionType = "draw"
	ActionDiscard ActionType = "discard"
	ActionKnock   ActionType = "knock"
	ActionGin     ActionType = "gin"
)

// GameAction is a submitted player action. Card is required for discard and
// optional for draw (present means draw from the discard pile).
type GameAction struct {
	Type      ActionType `json:"type"`
	PlayerID  uuid.UUID  `json:"playerId"`
	Card      *Card      `json:"card,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

// EndReason records why a finished game ended.
type EndReason string

const (
	EndDeckEmpty  EndReason = "deck-empty"
	EndKnock      EndReason = "knock"
	EndGin        EndReason = "gin"
	EndPlayerLeft EndReason = "player-left"
)

// PlayerState is one seat's engine-side state: identity plus hand. Hands are
// mutated only through Apply.
type PlayerState struct {
	ID   uuid.UUID `json:"id"`
	Hand []Card    `json:"hand"`
}

// FinalScore is one player's line in the end-of-game result.
type FinalScore struct {
	PlayerID      uuid.UUID `json:"playerId"`
	DeadwoodValue int       `json:"deadwoodValue"`
	TotalScore    int       `json:"totalScore"`
	IsWinner      bool      `json:"isWinner"`
}

// GameState is the complete, self-contained state of one Gin Rummy session.
// Deck and DiscardPile are stacks: the last element is the top. The deck,
// discard pile, and all hands together always hold the session's fixed
// 52-card set.
type GameState struct {
	Phase         GamePhase     `json:"phase"`
	Players       []PlayerState `json:"players"`
	CurrentPlayer uuid.UUID     `json:"currentPlayer"`
	Deck          []Card        `json:"deck"`
	DiscardPile   []Card        `json:"discardPile"`
	TurnNumber    int           `json:"turnNumber"`
	LastAction    *GameAction   `json:"lastAction,omitempty"`
	StartedAt     *time.Time    `json:"startedAt,omitempty"`
	FinishedAt    *time.Time    `json:"finishedAt,omitempty"`
	EndReason     EndReason     `json:"endReason,omitempty"`
	FinalScores   []FinalScore  `json:"finalScores,omitempty"`
}

// NewGame creates a pre-deal game for the given seats, in phase waiting.
func NewGame(playerIDs []uuid.UUID) *GameState {
	g := &GameState{Phase: PhaseWaiting}
	for _, id := range playerIDs {
		g.Players = append(g.Players, PlayerState{ID: id})
	}
	return g
}

// Deal shuffles a fresh deck with the given seed, deals HandSize cards to
// each player, flips the next card to open the discard pile, and starts play
// with the first seat. It is an error to deal outside phase waiting or with
// fewer than 2 or more than 4 players.
func (g *GameState) Deal(seed uint64) error {
	if g.Phase != PhaseWaiting {
		return fmt.Errorf("cannot deal in phase %q", g.Phase)
	}
	if n := len(g.Players); n < 2 || n > 4 {
		return fmt.Errorf("need 2-4 players to deal, have %d", n)
	}

	deck := NewDeck()
	Shuffle(deck, seed)

	// Deal from the top of the stack (end of slice), one card per player
	// per round.
	for i := range g.Players {
		g.Players[i].Hand = make([]Card, 0, HandSize+1)
	}
	for c := 0; c < HandSize; c++ {
		for p := range g.Players {
			top := deck[len(deck)-1]
			deck = deck[:len(deck)-1]
			g.Players[p].Hand = append(g.Players[p].Hand, top)
		}
	}

	// Next card opens the discard pile.
	g.DiscardPile = []Card{deck[len(deck)-1]}
	g.Deck = deck[:len(deck)-1]

	g.Phase = PhasePlaying
	g.CurrentPlayer = g.Players[0].ID
	g.TurnNumber = 1
	now := time.Now()
	g.StartedAt = &now
	return nil
}

// PlayerByID returns the seat state for the given player, or nil.
func (g *GameState) PlayerByID(id uuid.UUID) *PlayerState {
	for i := range g.Players {
		if g.Players[i].ID == id {
			return &g.Players[i]
		}
	}
	return nil
}

// OpponentOf returns the first other seat, which is the scoring opponent for
// a two-party knock. Returns nil if the player is alone.
func (g *GameState) OpponentOf(id uuid.UUID) *PlayerState {
	for i := range g.Players {
		if g.Players[i].ID != id {
			return &g.Players[i]
		}
	}
	return nil
}

// NextPlayer returns the seat after the given player in round-robin order.
func (g *GameState) NextPlayer(id uuid.UUID) uuid.UUID {
	for i := range g.Players {
		if g.Players[i].ID == id {
			return g.Players[(i+1)%len(g.Players)].ID
		}
	}
	return id
}

// DiscardTop returns the drawable top of the discard pile.
func (g *GameState) DiscardTop() (Card, bool) {
	if len(g.DiscardPile) == 0 {
		return Card{}, false
	}
	return g.DiscardPile[len(g.DiscardPile)-1], true
}

// IsFinished reports whether the session has reached its terminal phase.
func (g *GameState) IsFinished() bool { return g.Phase == PhaseFinished }

// CheckConservation verifies that deck + discard + hands still form the
// fixed 52-card set. A violation is a core defect, surfaced loudly as an
// error rather than corrected.
func (g *GameState) CheckConservation() error {
	if g.Phase == PhaseWaiting {
		return nil
	}
	seen := make(map[uuid.UUID]bool, DeckSize)
	count := 0
	track := func(where string, cards []Card) error {
		for _, c := range cards {
			if seen[c.ID] {
				return fmt.Errorf("conservation violated: card %s duplicated in %s", c, where)
			}
			seen[c.ID] = true
			count++
		}
		return nil
	}
	if err := track("deck", g.Deck); err != nil {
		return err
	}
	if err := track("discard pile", g.DiscardPile); err != nil {
		return err
	}
	for i := range g.Players {
		if err := track("hand", g.Players[i].Hand); err != nil {
			return err
		}
	}
	if count != DeckSize {
		return fmt.Errorf("conservation violated: %d cards in play, want %d", count, DeckSize)
	}
	return nil
}
