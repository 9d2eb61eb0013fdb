// internal/models/player.go
package models

import (
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/ramcd86/cosmic-games/engine/ai"
)

// PlayerStats accumulates per-player results across games in a room.
type PlayerStats struct {
	GamesPlayed  int     `json:"gamesPlayed"`
	GamesWon     int     `json:"gamesWon"`
	TotalScore   int     `json:"totalScore"`
	AverageScore float64 `json:"averageScore"`
	WinRate      float64 `json:"winRate"`
}

// Player is a seat in a room: a connected human or an automated opponent.
// The websocket connection is transport state and never serialized.
type Player struct {
	ID           uuid.UUID     `json:"id"`
	Name         string        `json:"name"`
	IsAI         bool          `json:"isAI"`
	Difficulty   ai.Difficulty `json:"difficulty,omitempty"`
	IsReady      bool          `json:"isReady"`
	Score        int           `json:"score"`
	Statistics   PlayerStats   `json:"statistics"`
	IsConnected  bool          `json:"isConnected"`
	LastActivity time.Time     `json:"lastActivity"`

	Conn *websocket.Conn `json:"-"`
}

// RecordResult folds a finished game into the player's running statistics.
func (p *Player) RecordResult(score int, won bool) {
	p.Score += score
	p.Statistics.GamesPlayed++
	p.Statistics.TotalScore += score
	if won {
		p.Statistics.GamesWon++
	}
	n := p.Statistics.GamesPlayed
	p.Statistics.AverageScore = float64(p.Statistics.TotalScore) / float64(n)
	p.Statistics.WinRate = float64(p.Statistics.GamesWon) / float64(n)
}

// Touch updates the player's activity timestamp.
func (p *Player) Touch() {
	p.LastActivity = time.Now()
}

// Disconnect closes the player's websocket connection, if any, and marks
// the seat offline.
func (p *Player) Disconnect(code websocket.StatusCode, reason string) {
	if p.Conn != nil {
		_ = p.Conn.Close(code, reason)
		p.Conn = nil
	}
	p.IsConnected = false
}
