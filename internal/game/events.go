// internal/game/events.go
package game

import (
	"github.com/google/uuid"

	"github.com/ramcd86/cosmic-games/engine"
	"github.com/ramcd86/cosmic-games/internal/models"
)

// EventType identifies a room-level event pushed to connected clients.
type EventType string

const (
	EventRoomUpdated  EventType = "room-updated"
	EventGameUpdated  EventType = "game-updated"
	EventPlayerJoined EventType = "player-joined"
	EventPlayerLeft   EventType = "player-left"
	EventGameStarted  EventType = "game-started"
	EventGameEnded    EventType = "game-ended"
	EventPlayerAction EventType = "player-action"
)

// Event is the broadcast envelope. Exactly one payload field is set per
// event type.
type Event struct {
	Type     EventType          `json:"type"`
	Room     *models.Room       `json:"room,omitempty"`
	State    *engine.GameState  `json:"gameState,omitempty"`
	Player   *models.Player     `json:"player,omitempty"`
	PlayerID uuid.UUID          `json:"playerId,omitempty"`
	Action   *engine.GameAction `json:"action,omitempty"`
	Results  *GameResults       `json:"results,omitempty"`
}

// FinalScore augments the engine's result with the seat's display name.
type FinalScore struct {
	PlayerID      uuid.UUID `json:"playerId"`
	PlayerName    string    `json:"playerName"`
	DeadwoodValue int       `json:"deadwoodValue"`
	TotalScore    int       `json:"totalScore"`
	IsWinner      bool      `json:"isWinner"`
}

// Winner is the abbreviated entry in the winners list of a results payload.
type Winner struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	DeadwoodValue int       `json:"deadwoodValue"`
	TotalScore    int       `json:"totalScore"`
}

// GameResults is the terminal payload broadcast once per finished hand.
type GameResults struct {
	Reason      engine.EndReason `json:"reason"`
	Message     string           `json:"message"`
	FinalScores []FinalScore     `json:"finalScores"`
	Winners     []Winner         `json:"winners"`
}

// buildResults joins engine final scores with room seat names.
func buildResults(room *models.Room) *GameResults {
	state := room.State
	results := &GameResults{
		Reason:  state.EndReason,
		Message: endMessage(room),
	}
	for _, s := range state.FinalScores {
		name := ""
		if p := room.PlayerByID(s.PlayerID); p != nil {
			name = p.Name
		}
		results.FinalScores = append(results.FinalScores, FinalScore{
			PlayerID:      s.PlayerID,
			PlayerName:    name,
			DeadwoodValue: s.DeadwoodValue,
			TotalScore:    s.TotalScore,
			IsWinner:      s.IsWinner,
		})
		if s.IsWinner {
			results.Winners = append(results.Winners, Winner{
				ID:            s.PlayerID,
				Name:          name,
				DeadwoodValue: s.DeadwoodValue,
				TotalScore:    s.TotalScore,
			})
		}
	}
	return results
}

func endMessage(room *models.Room) string {
	actorName := func() string {
		if room.State.LastAction == nil {
			return "A player"
		}
		if p := room.PlayerByID(room.State.LastAction.PlayerID); p != nil {
			return p.Name
		}
		return "A player"
	}

	switch room.State.EndReason {
	case engine.EndGin:
		return actorName() + " went gin!"
	case engine.EndKnock:
		return actorName() + " knocked!"
	case engine.EndDeckEmpty:
		return "The deck ran out; lowest deadwood wins."
	case engine.EndPlayerLeft:
		return "A player left the game."
	default:
		return "Game over."
	}
}
