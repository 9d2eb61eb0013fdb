// internal/game/manager.go
package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ramcd86/cosmic-games/engine"
	"github.com/ramcd86/cosmic-games/engine/ai"
	"github.com/ramcd86/cosmic-games/internal/auth"
	"github.com/ramcd86/cosmic-games/internal/cache"
	"github.com/ramcd86/cosmic-games/internal/database"
	"github.com/ramcd86/cosmic-games/internal/models"
)

// Sentinel errors surfaced to transport layers for status mapping.
var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrGameInProgress   = errors.New("game is already in progress")
	ErrGameNotStarted   = errors.New("game is not in progress")
	ErrRoomFull         = errors.New("room is full")
	ErrNotHost          = errors.New("only the host can start the game")
	ErrNotEnoughPlayers = errors.New("need at least 2 players to start")
	ErrPlayersNotReady  = errors.New("all players must be ready")
	ErrPlayerNotFound   = errors.New("player not found in room")
)

// aiNames is the pool of display names for automated players.
var aiNames = []string{
	"Alex", "Blake", "Cole", "Derek", "Ethan", "Felix", "Gabriel", "Henry",
	"Ivan", "Jake", "Kyle", "Logan", "Marcus", "Nathan", "Oscar", "Parker",
	"Ryan", "Samuel", "Tyler", "Victor", "Wesley", "Xavier", "Zachary",
	"Aria", "Bella", "Chloe", "Diana", "Emma", "Faith", "Grace", "Hannah",
	"Iris", "Julia", "Kira", "Luna", "Maya", "Nova", "Olivia", "Paige",
	"Quinn", "Riley", "Sophia", "Tessa", "Uma", "Violet", "Willow", "Zara",
}

// Manager owns the room lifecycle. Rooms live in the cache store; every
// mutation loads the aggregate, changes it, and writes it back under the
// room's lock.
type Manager struct {
	store *cache.Store
	log   *logrus.Entry

	// Delay before an automated player's turn decision, and the bounds for
	// the pause between its draw and discard.
	aiDelay           time.Duration
	aiDiscardDelayMin time.Duration
	aiDiscardDelayMax time.Duration

	mu          sync.Mutex
	locks       map[string]*sync.Mutex
	actionIndex map[string]int

	// BroadcastFn pushes an event to every client in a room. Nil is allowed
	// and drops events, which keeps the manager testable without transport.
	BroadcastFn func(roomCode string, ev Event)
}

// NewManager creates a manager backed by the given store.
func NewManager(store *cache.Store, log *logrus.Logger) *Manager {
	return &Manager{
		store:             store,
		log:               log.WithField("component", "game"),
		aiDelay:           500 * time.Millisecond,
		aiDiscardDelayMin: time.Second,
		aiDiscardDelayMax: 3 * time.Second,
		locks:             make(map[string]*sync.Mutex),
		actionIndex:       make(map[string]int),
	}
}

// SetAIDelays overrides the automated-player pacing, mainly for tests.
func (m *Manager) SetAIDelays(decision, discardMin, discardMax time.Duration) {
	m.aiDelay = decision
	m.aiDiscardDelayMin = discardMin
	m.aiDiscardDelayMax = discardMax
}

// roomLock returns the mutex guarding a room code.
func (m *Manager) roomLock(code string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock, ok := m.locks[code]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[code] = lock
	}
	return lock
}

// dropRoomState clears per-room bookkeeping after a room is deleted. The
// mutex entry stays: a scheduled callback may still be parked on it, and a
// recreated code must contend on the same lock.
func (m *Manager) dropRoomState(code string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.actionIndex, code)
}

func (m *Manager) broadcast(code string, ev Event) {
	if m.BroadcastFn != nil {
		m.BroadcastFn(code, ev)
	}
}

// logAction publishes an action record to the room's history list.
func (m *Manager) logAction(code string, actorID uuid.UUID, actionType string, payload map[string]interface{}) {
	m.mu.Lock()
	m.actionIndex[code]++
	index := m.actionIndex[code]
	m.mu.Unlock()

	rec := cache.ActionRecord{
		RoomCode:    code,
		ActionIndex: index,
		ActorID:     actorID,
		ActionType:  actionType,
		Payload:     payload,
		Timestamp:   time.Now().UnixMilli(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := m.store.PublishAction(ctx, rec); err != nil {
			m.log.WithError(err).WithField("room", code).Warn("failed to publish action record")
		}
	}()
}

// CreateRoom builds a new room with the host seated, seeds the table with
// initial automated opponents, and issues the host's token.
func (m *Manager) CreateRoom(ctx context.Context, name, hostName string, settings models.RoomSettings) (*models.Room, string, error) {
	code, err := m.generateUniqueCode(ctx)
	if err != nil {
		return nil, "", err
	}

	host := newHumanPlayer(hostName)
	room := &models.Room{
		Code:         code,
		Name:         name,
		HostID:       host.ID,
		Players:      []*models.Player{host},
		Settings:     models.DefaultRoomSettings().Merge(settings),
		CreatedAt:    time.Now(),
		LastActivity: time.Now(),
	}
	if room.Settings.MaxPlayers < 2 {
		room.Settings.MaxPlayers = 2
	}
	if room.Settings.MaxPlayers > 4 {
		room.Settings.MaxPlayers = 4
	}

	m.seedInitialAIPlayers(room)

	if err := m.store.SaveRoom(ctx, room); err != nil {
		return nil, "", err
	}

	token, err := m.issueSession(ctx, host.ID, code)
	if err != nil {
		return nil, "", err
	}

	m.log.WithFields(logrus.Fields{"room": code, "host": hostName}).Info("room created")
	m.logAction(code, host.ID, "room_create", map[string]interface{}{"name": name})
	return room, token, nil
}

// JoinRoom seats a new player, or reconnects a human whose name is already
// at the table.
func (m *Manager) JoinRoom(ctx context.Context, code, playerName string) (*models.Room, string, error) {
	lock := m.roomLock(code)
	lock.Lock()
	defer lock.Unlock()

	room, err := m.loadRoom(ctx, code)
	if err != nil {
		return nil, "", err
	}

	if existing := room.PlayerByName(playerName); existing != nil {
		existing.IsConnected = true
		existing.Touch()
		room.Touch()
		if err := m.store.SaveRoom(ctx, room); err != nil {
			return nil, "", err
		}
		token, err := m.issueSession(ctx, existing.ID, code)
		if err != nil {
			return nil, "", err
		}
		m.log.WithFields(logrus.Fields{"room": code, "player": playerName}).Info("player reconnected")
		m.broadcast(code, Event{Type: EventRoomUpdated, Room: room})
		return room, token, nil
	}

	if room.InProgress() {
		return nil, "", ErrGameInProgress
	}
	if len(room.Players) >= room.Settings.MaxPlayers {
		return nil, "", ErrRoomFull
	}

	player := newHumanPlayer(playerName)
	room.Players = append(room.Players, player)
	room.Touch()
	if err := m.store.SaveRoom(ctx, room); err != nil {
		return nil, "", err
	}

	token, err := m.issueSession(ctx, player.ID, code)
	if err != nil {
		return nil, "", err
	}

	m.log.WithFields(logrus.Fields{"room": code, "player": playerName}).Info("player joined")
	m.logAction(code, player.ID, "player_join", map[string]interface{}{"name": playerName})
	m.broadcast(code, Event{Type: EventPlayerJoined, Player: player})
	m.broadcast(code, Event{Type: EventRoomUpdated, Room: room})
	return room, token, nil
}

// LeaveRoom removes a seat. The host role passes to the next seat; an empty
// room is deleted; leaving mid-hand abandons the game.
func (m *Manager) LeaveRoom(ctx context.Context, code string, playerID uuid.UUID) (*models.Room, error) {
	lock := m.roomLock(code)
	lock.Lock()
	defer lock.Unlock()

	room, err := m.loadRoom(ctx, code)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i, p := range room.Players {
		if p.ID == playerID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return room, nil
	}

	wasInProgress := room.InProgress()
	leaving := room.Players[idx]
	room.Players = append(room.Players[:idx], room.Players[idx+1:]...)
	room.Touch()
	leaving.Disconnect(websocket.StatusNormalClosure, "left the room")

	if room.HostID == playerID && len(room.Players) > 0 {
		room.HostID = room.Players[0].ID
	}

	humansLeft := 0
	for _, p := range room.Players {
		if !p.IsAI {
			humansLeft++
		}
	}
	if len(room.Players) == 0 || humansLeft == 0 {
		for _, p := range room.Players {
			p.Disconnect(websocket.StatusGoingAway, "room closed")
		}
		if err := m.store.DeleteRoom(ctx, code); err != nil {
			return nil, err
		}
		_ = m.store.DeletePlayerSession(ctx, playerID)
		m.dropRoomState(code)
		m.log.WithField("room", code).Info("room deleted")
		return nil, nil
	}

	if wasInProgress {
		room.State.Abandon()
		m.finishGameLocked(ctx, room)
	}

	if err := m.store.SaveRoom(ctx, room); err != nil {
		return nil, err
	}
	_ = m.store.DeletePlayerSession(ctx, playerID)

	m.logAction(code, playerID, "player_leave", nil)
	m.broadcast(code, Event{Type: EventPlayerLeft, PlayerID: playerID})
	m.broadcast(code, Event{Type: EventRoomUpdated, Room: room})
	if wasInProgress {
		m.broadcast(code, Event{Type: EventGameEnded, Results: buildResults(room)})
	}
	return room, nil
}

// SetPlayerReady toggles a human seat's ready flag. Any human readying up
// also readies every automated seat; when the whole table is ready the hand
// auto-starts.
func (m *Manager) SetPlayerReady(ctx context.Context, code string, playerID uuid.UUID, ready bool) (*models.Room, error) {
	lock := m.roomLock(code)
	lock.Lock()
	defer lock.Unlock()

	room, err := m.loadRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	player := room.PlayerByID(playerID)
	if player == nil {
		return nil, ErrPlayerNotFound
	}
	if player.IsAI {
		return nil, fmt.Errorf("cannot set ready status of an automated player")
	}

	player.IsReady = ready
	player.Touch()
	room.Touch()
	if ready {
		for _, p := range room.Players {
			if p.IsAI {
				p.IsReady = true
			}
		}
	}

	if err := m.store.SaveRoom(ctx, room); err != nil {
		return nil, err
	}
	m.broadcast(code, Event{Type: EventRoomUpdated, Room: room})

	// Auto-start once everyone at the table is ready.
	if !room.InProgress() && len(room.Players) >= 2 && allReady(room) {
		if err := m.startGameLocked(ctx, room); err != nil {
			return nil, err
		}
	}
	return room, nil
}

// StartGame begins a hand on the host's request, filling empty seats with
// automated players first.
func (m *Manager) StartGame(ctx context.Context, code string, requesterID uuid.UUID) (*models.Room, error) {
	lock := m.roomLock(code)
	lock.Lock()
	defer lock.Unlock()

	room, err := m.loadRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	if room.HostID != requesterID {
		return nil, ErrNotHost
	}
	if room.InProgress() {
		return nil, ErrGameInProgress
	}

	m.fillWithAIPlayers(room)
	if len(room.Players) < 2 {
		return nil, ErrNotEnoughPlayers
	}
	for _, p := range room.Players {
		if p.IsAI {
			p.IsReady = true
		}
	}
	if !allReady(room) {
		return nil, ErrPlayersNotReady
	}

	if err := m.startGameLocked(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

// startGameLocked deals a fresh hand. Caller holds the room lock and has
// verified player count and readiness.
func (m *Manager) startGameLocked(ctx context.Context, room *models.Room) error {
	ids := make([]uuid.UUID, len(room.Players))
	for i, p := range room.Players {
		ids[i] = p.ID
	}
	state := engine.NewGame(ids)
	if err := state.Deal(uint64(time.Now().UnixNano())); err != nil {
		return fmt.Errorf("deal: %w", err)
	}
	room.State = state
	room.Touch()

	if err := m.store.SaveRoom(ctx, room); err != nil {
		return err
	}
	m.persistInitialState(room)

	m.log.WithFields(logrus.Fields{"room": room.Code, "players": len(room.Players)}).Info("game started")
	m.logAction(room.Code, uuid.Nil, "game_start", map[string]interface{}{"players": len(room.Players)})
	m.broadcast(room.Code, Event{Type: EventGameStarted})
	m.broadcast(room.Code, Event{Type: EventRoomUpdated, Room: room})

	m.scheduleAIMove(room.Code, room.State.CurrentPlayer, room.State.TurnNumber, m.aiDelay)
	return nil
}

// Room returns the current aggregate for a code.
func (m *Manager) Room(ctx context.Context, code string) (*models.Room, error) {
	return m.loadRoom(ctx, code)
}

// ProcessAction validates and applies one game action, persists the result,
// and schedules the next automated move if one is due.
func (m *Manager) ProcessAction(ctx context.Context, code string, playerID uuid.UUID, action engine.GameAction) (*models.Room, error) {
	lock := m.roomLock(code)
	lock.Lock()
	defer lock.Unlock()
	return m.processActionLocked(ctx, code, playerID, action)
}

func (m *Manager) processActionLocked(ctx context.Context, code string, playerID uuid.UUID, action engine.GameAction) (*models.Room, error) {
	room, err := m.loadRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	if !room.InProgress() {
		return nil, ErrGameNotStarted
	}

	if v := room.State.Validate(playerID, action); !v.Valid {
		return nil, fmt.Errorf("invalid action: %s", v.Reason)
	}
	if err := room.State.Apply(playerID, action); err != nil {
		return nil, fmt.Errorf("apply action: %w", err)
	}

	if p := room.PlayerByID(playerID); p != nil {
		p.Touch()
	}
	room.Touch()

	finished := room.State.IsFinished()
	if finished {
		m.finishGameLocked(ctx, room)
	}

	if err := m.store.SaveRoom(ctx, room); err != nil {
		return nil, err
	}

	payload := map[string]interface{}{"type": string(action.Type)}
	if action.Card != nil {
		payload["card"] = action.Card.String()
	}
	m.logAction(code, playerID, "game_action", payload)

	m.broadcast(code, Event{Type: EventPlayerAction, Action: room.State.LastAction})
	m.broadcast(code, Event{Type: EventGameUpdated, State: room.State})
	if finished {
		m.broadcast(code, Event{Type: EventGameEnded, Results: buildResults(room)})
	} else {
		m.scheduleNextAIMove(room)
	}
	return room, nil
}

// finishGameLocked folds results into seat statistics and persists the
// terminal snapshot. Caller holds the room lock; the state is finished.
func (m *Manager) finishGameLocked(ctx context.Context, room *models.Room) {
	for _, score := range room.State.FinalScores {
		if p := room.PlayerByID(score.PlayerID); p != nil {
			p.RecordResult(score.TotalScore, score.IsWinner)
			p.IsReady = false
		}
	}

	m.persistFinishedGame(room)

	m.log.WithFields(logrus.Fields{
		"room":   room.Code,
		"reason": room.State.EndReason,
	}).Info("game finished")
	m.logAction(room.Code, uuid.Nil, "game_end", map[string]interface{}{"reason": string(room.State.EndReason)})
}

// persistInitialState snapshots the dealt state while the room lock is held
// and writes it to the database asynchronously.
func (m *Manager) persistInitialState(room *models.Room) {
	snapshot, err := json.Marshal(room.State)
	if err != nil {
		m.log.WithError(err).WithField("room", room.Code).Warn("failed to marshal initial state")
		return
	}
	startedAt := time.Now()
	if room.State.StartedAt != nil {
		startedAt = *room.State.StartedAt
	}
	code := room.Code
	go func() {
		dbCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := database.UpsertInitialGameState(dbCtx, code, startedAt, snapshot); err != nil {
			m.log.WithError(err).WithField("room", code).Warn("failed to persist initial state")
		}
	}()
}

// persistFinishedGame snapshots the terminal state and scores while the room
// lock is held and writes them to the database asynchronously.
func (m *Manager) persistFinishedGame(room *models.Room) {
	snapshot, err := json.Marshal(map[string]interface{}{
		"state":   room.State,
		"players": room.Players,
	})
	if err != nil {
		m.log.WithError(err).WithField("room", room.Code).Warn("failed to marshal final state")
		return
	}
	startedAt := time.Now()
	if room.State.StartedAt != nil {
		startedAt = *room.State.StartedAt
	}
	code := room.Code
	finishedAt := room.State.FinishedAt
	endReason := string(room.State.EndReason)
	go func() {
		dbCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := database.StoreFinishedGame(dbCtx, code, startedAt, finishedAt, endReason, snapshot); err != nil {
			m.log.WithError(err).WithField("room", code).Warn("failed to persist finished game")
		}
	}()
}

func (m *Manager) loadRoom(ctx context.Context, code string) (*models.Room, error) {
	room, err := m.store.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

func (m *Manager) issueSession(ctx context.Context, playerID uuid.UUID, code string) (string, error) {
	token, err := auth.NewToken(playerID, code)
	if err != nil {
		return "", err
	}
	session := cache.PlayerSession{RoomCode: code, Token: token, LastActivity: time.Now()}
	if err := m.store.SavePlayerSession(ctx, playerID, session); err != nil {
		return "", err
	}
	return token, nil
}

func (m *Manager) generateUniqueCode(ctx context.Context) (string, error) {
	for attempts := 0; attempts < 10; attempts++ {
		code := fmt.Sprintf("%06d", rand.IntN(900000)+100000)
		exists, err := m.store.RoomExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", fmt.Errorf("failed to generate a unique room code")
}

func newHumanPlayer(name string) *models.Player {
	return &models.Player{
		ID:           uuid.New(),
		Name:         name,
		IsConnected:  true,
		LastActivity: time.Now(),
	}
}

func newAIPlayer(name string, difficulty ai.Difficulty) *models.Player {
	return &models.Player{
		ID:           uuid.New(),
		Name:         name,
		IsAI:         true,
		Difficulty:   difficulty,
		IsReady:      true,
		IsConnected:  true,
		LastActivity: time.Now(),
	}
}

// seedInitialAIPlayers populates a fresh room with opponents while leaving
// seats open for humans.
func (m *Manager) seedInitialAIPlayers(room *models.Room) {
	count := 1
	if room.Settings.MaxPlayers >= 4 {
		count = 2
	}
	for i := 0; i < count; i++ {
		difficulty := ai.Difficulties[i%len(ai.Difficulties)]
		room.Players = append(room.Players, newAIPlayer(m.pickAIName(room), difficulty))
	}
}

// fillWithAIPlayers tops the table up to its configured size before a hand
// starts.
func (m *Manager) fillWithAIPlayers(room *models.Room) {
	i := 0
	for len(room.Players) < room.Settings.MaxPlayers {
		difficulty := ai.Difficulties[i%len(ai.Difficulties)]
		room.Players = append(room.Players, newAIPlayer(m.pickAIName(room), difficulty))
		i++
	}
}

func (m *Manager) pickAIName(room *models.Room) string {
	for attempts := 0; attempts < 10; attempts++ {
		name := aiNames[rand.IntN(len(aiNames))]
		if !room.HasPlayerName(name) {
			return name
		}
	}
	return fmt.Sprintf("Bot-%04d", rand.IntN(10000))
}

func allReady(room *models.Room) bool {
	for _, p := range room.Players {
		if !p.IsReady {
			return false
		}
	}
	return true
}
