// internal/game/ai_runner.go
package game

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ramcd86/cosmic-games/engine"
	"github.com/ramcd86/cosmic-games/engine/ai"
	"github.com/ramcd86/cosmic-games/internal/models"
)

// scheduleNextAIMove inspects the seat now to act and, if it is automated,
// schedules its move. A seat holding eleven cards already drew and owes a
// discard, which gets a longer, randomized pause. Caller holds the room
// lock.
func (m *Manager) scheduleNextAIMove(room *models.Room) {
	if !room.InProgress() {
		return
	}
	player := room.PlayerByID(room.State.CurrentPlayer)
	if player == nil || !player.IsAI {
		return
	}
	seat := room.State.PlayerByID(player.ID)
	if seat == nil {
		return
	}
	delay := m.aiDelay
	if len(seat.Hand) == engine.HandSize+1 {
		delay = m.discardDelay()
	}
	m.scheduleAIMove(room.Code, player.ID, room.State.TurnNumber, delay)
}

// scheduleAIMove queues an automated move after the delay. The turn number
// is captured so the callback can detect staleness.
func (m *Manager) scheduleAIMove(code string, playerID uuid.UUID, turnNumber int, delay time.Duration) {
	time.AfterFunc(delay, func() {
		m.runAIMove(code, playerID, turnNumber)
	})
}

func (m *Manager) discardDelay() time.Duration {
	if m.aiDiscardDelayMax <= m.aiDiscardDelayMin {
		return m.aiDiscardDelayMin
	}
	spread := m.aiDiscardDelayMax - m.aiDiscardDelayMin
	return m.aiDiscardDelayMin + time.Duration(rand.Int64N(int64(spread)))
}

// runAIMove executes one scheduled automated move. The room is re-loaded
// and re-validated first: a move scheduled before a human reconnected, the
// hand ended, or the turn advanced is silently dropped.
func (m *Manager) runAIMove(code string, playerID uuid.UUID, turnNumber int) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	lock := m.roomLock(code)
	lock.Lock()
	defer lock.Unlock()

	room, err := m.loadRoom(ctx, code)
	if err != nil {
		if !errors.Is(err, ErrRoomNotFound) {
			m.log.WithError(err).WithField("room", code).Warn("automated move aborted")
		}
		return
	}
	if !room.InProgress() {
		return
	}
	if room.State.CurrentPlayer != playerID || room.State.TurnNumber != turnNumber {
		return // stale schedule
	}
	player := room.PlayerByID(playerID)
	if player == nil || !player.IsAI {
		return
	}
	seat := room.State.PlayerByID(playerID)
	if seat == nil {
		return
	}

	view := ai.View{
		DeckLen:     len(room.State.Deck),
		DiscardPile: room.State.DiscardPile,
	}

	var action engine.GameAction
	if len(seat.Hand) == engine.HandSize+1 {
		card := ai.DecideDiscard(seat.Hand, view, player.Difficulty)
		action = engine.GameAction{Type: engine.ActionDiscard, Card: &card, Timestamp: time.Now()}
	} else {
		decision := ai.DecideTurn(seat.Hand, view, player.Difficulty)
		action = engine.GameAction{Type: decision.Type, Card: decision.Card, Timestamp: time.Now()}
	}

	if _, err := m.processActionLocked(ctx, code, playerID, action); err != nil {
		m.log.WithError(err).WithFields(logrus.Fields{
			"room":   code,
			"player": player.Name,
			"action": action.Type,
		}).Warn("automated move rejected")
	}
}
