// internal/models/room.go
package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ramcd86/cosmic-games/engine"
)

// RoomSettings configures a room at creation time. Zero values are filled
// from DefaultRoomSettings.
type RoomSettings struct {
	MaxPlayers      int    `json:"maxPlayers"`
	AllowSpectators bool   `json:"allowSpectators"`
	IsPrivate       bool   `json:"isPrivate"`
	GameVariant     string `json:"gameVariant"`
	TurnTimeLimit   int    `json:"turnTimeLimit"` // seconds, 0 disables the timer
	PointLimit      int    `json:"pointLimit"`
}

// DefaultRoomSettings returns the standard table configuration.
func DefaultRoomSettings() RoomSettings {
	return RoomSettings{
		MaxPlayers:    4,
		GameVariant:   "classic",
		TurnTimeLimit: 60,
		PointLimit:    100,
	}
}

// Merge overlays non-zero fields of the override onto the defaults.
func (s RoomSettings) Merge(override RoomSettings) RoomSettings {
	out := s
	if override.MaxPlayers > 0 {
		out.MaxPlayers = override.MaxPlayers
	}
	if override.GameVariant != "" {
		out.GameVariant = override.GameVariant
	}
	if override.TurnTimeLimit > 0 {
		out.TurnTimeLimit = override.TurnTimeLimit
	}
	if override.PointLimit > 0 {
		out.PointLimit = override.PointLimit
	}
	out.AllowSpectators = override.AllowSpectators
	out.IsPrivate = override.IsPrivate
	return out
}

// Room is the aggregate for one table: its seats, settings, and the
// authoritative game state. It is the unit persisted to the cache.
type Room struct {
	Code         string            `json:"code"`
	Name         string            `json:"name"`
	HostID       uuid.UUID         `json:"hostId"`
	Players      []*Player         `json:"players"`
	State        *engine.GameState `json:"gameState,omitempty"`
	Settings     RoomSettings      `json:"settings"`
	CreatedAt    time.Time         `json:"createdAt"`
	LastActivity time.Time         `json:"lastActivity"`
}

// PlayerByID returns the seat with the given id, or nil.
func (r *Room) PlayerByID(id uuid.UUID) *Player {
	for _, p := range r.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// PlayerByName returns the first human seat with the given name, or nil.
// Automated players are excluded so a human can never reclaim one.
func (r *Room) PlayerByName(name string) *Player {
	for _, p := range r.Players {
		if !p.IsAI && p.Name == name {
			return p
		}
	}
	return nil
}

// HasPlayerName reports whether any seat already uses the name.
func (r *Room) HasPlayerName(name string) bool {
	for _, p := range r.Players {
		if p.Name == name {
			return true
		}
	}
	return false
}

// InProgress reports whether a hand is currently being played.
func (r *Room) InProgress() bool {
	return r.State != nil && r.State.Phase == engine.PhasePlaying
}

// Touch updates the room's activity timestamp.
func (r *Room) Touch() {
	r.LastActivity = time.Now()
}
