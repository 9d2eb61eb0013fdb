package engine

import (
	"testing"

	"github.com/google/uuid"
)

func TestValidateTurnOrder(t *testing.T) {
	g := playingGame(tenCards(), tenCards(), []Card{mkcard(RankEight, SuitHearts)}, nil)
	other := g.Players[1].ID

	v := g.Validate(other, GameAction{Type: ActionDraw})
	if v.Valid {
		t.Error("out-of-turn draw accepted")
	}
	if v.Reason != "not your turn" {
		t.Errorf("reason = %q, want %q", v.Reason, "not your turn")
	}
}

func TestValidateGameNotInProgress(t *testing.T) {
	g := NewGame([]uuid.UUID{uuid.New(), uuid.New()})
	v := g.Validate(g.Players[0].ID, GameAction{Type: ActionDraw})
	if v.Valid {
		t.Error("action accepted before deal")
	}

	g2 := playingGame(tenCards(), tenCards(), []Card{mkcard(RankEight, SuitHearts)}, nil)
	g2.Abandon()
	if g2.Validate(g2.Players[0].ID, GameAction{Type: ActionDraw}).Valid {
		t.Error("action accepted after game finished")
	}
}

func TestValidateDraw(t *testing.T) {
	t.Run("with eleven cards", func(t *testing.T) {
		hand := append(tenCards(), mkcard(RankEight, SuitSpades))
		g := playingGame(hand, tenCards(), []Card{mkcard(RankEight, SuitHearts)}, nil)
		if g.Validate(g.Players[0].ID, GameAction{Type: ActionDraw}).Valid {
			t.Error("draw accepted with eleven cards in hand")
		}
	})

	t.Run("empty deck is still drawable", func(t *testing.T) {
		// An empty deck ends the game on draw; validation lets it through.
		g := playingGame(tenCards(), tenCards(), nil, []Card{mkcard(RankEight, SuitHearts)})
		if !g.Validate(g.Players[0].ID, GameAction{Type: ActionDraw}).Valid {
			t.Error("draw rejected with discard pile available")
		}
	})

	t.Run("nothing to draw", func(t *testing.T) {
		g := playingGame(tenCards(), tenCards(), nil, nil)
		v := g.Validate(g.Players[0].ID, GameAction{Type: ActionDraw})
		if v.Valid {
			t.Error("draw accepted with both piles empty")
		}
	})
}

func TestValidateDiscard(t *testing.T) {
	hand := append(tenCards(), mkcard(RankEight, SuitSpades))
	inHand := hand[0]

	t.Run("before drawing", func(t *testing.T) {
		g := playingGame(tenCards(), tenCards(), []Card{mkcard(RankEight, SuitHearts)}, nil)
		c := g.Players[0].Hand[0]
		v := g.Validate(g.Players[0].ID, GameAction{Type: ActionDiscard, Card: &c})
		if v.Valid {
			t.Error("discard accepted with ten cards in hand")
		}
	})

	t.Run("no card specified", func(t *testing.T) {
		g := playingGame(hand, tenCards(), []Card{mkcard(RankEight, SuitHearts)}, nil)
		if g.Validate(g.Players[0].ID, GameAction{Type: ActionDiscard}).Valid {
			t.Error("discard accepted without a card")
		}
	})

	t.Run("card not in hand", func(t *testing.T) {
		g := playingGame(hand, tenCards(), []Card{mkcard(RankEight, SuitHearts)}, nil)
		stranger := mkcard(RankQueen, SuitSpades)
		v := g.Validate(g.Players[0].ID, GameAction{Type: ActionDiscard, Card: &stranger})
		if v.Valid {
			t.Error("discard accepted for a card the player does not hold")
		}
		if v.Reason != "card not in hand" {
			t.Errorf("reason = %q, want %q", v.Reason, "card not in hand")
		}
	})

	t.Run("valid discard", func(t *testing.T) {
		g := playingGame(hand, tenCards(), []Card{mkcard(RankEight, SuitHearts)}, nil)
		if v := g.Validate(g.Players[0].ID, GameAction{Type: ActionDiscard, Card: &inHand}); !v.Valid {
			t.Errorf("valid discard rejected: %s", v.Reason)
		}
	})
}

func TestValidateKnock(t *testing.T) {
	t.Run("deadwood too high", func(t *testing.T) {
		g := playingGame(tenCards(), tenCards(), []Card{mkcard(RankEight, SuitHearts)}, nil)
		if g.Validate(g.Players[0].ID, GameAction{Type: ActionKnock}).Valid {
			t.Error("knock accepted with deadwood over the threshold")
		}
	})

	t.Run("valid knock", func(t *testing.T) {
		hand := append(ginHand()[:9], mkcard(RankTwo, SuitDiamonds))
		g := playingGame(hand, tenCards(), []Card{mkcard(RankEight, SuitHearts)}, nil)
		if v := g.Validate(g.Players[0].ID, GameAction{Type: ActionKnock}); !v.Valid {
			t.Errorf("valid knock rejected: %s", v.Reason)
		}
	})
}

func TestValidateGin(t *testing.T) {
	t.Run("deadwood remaining", func(t *testing.T) {
		hand := append(ginHand()[:9], mkcard(RankTwo, SuitDiamonds))
		g := playingGame(hand, tenCards(), []Card{mkcard(RankEight, SuitHearts)}, nil)
		if g.Validate(g.Players[0].ID, GameAction{Type: ActionGin}).Valid {
			t.Error("gin accepted with deadwood remaining")
		}
	})

	t.Run("valid gin", func(t *testing.T) {
		g := playingGame(ginHand(), tenCards(), []Card{mkcard(RankEight, SuitHearts)}, nil)
		if v := g.Validate(g.Players[0].ID, GameAction{Type: ActionGin}); !v.Valid {
			t.Errorf("valid gin rejected: %s", v.Reason)
		}
	})
}

func TestValidateUnknownAction(t *testing.T) {
	g := playingGame(tenCards(), tenCards(), []Card{mkcard(RankEight, SuitHearts)}, nil)
	if g.Validate(g.Players[0].ID, GameAction{Type: ActionType("splash")}).Valid {
		t.Error("unknown action type accepted")
	}
}
