// internal/cache/store.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/ramcd86/cosmic-games/internal/models"
)

const (
	roomTTL       = time.Hour
	sessionTTL    = 24 * time.Hour
	actionListCap = 1000
)

// PlayerSession records which room a token belongs to.
type PlayerSession struct {
	RoomCode     string    `json:"roomCode"`
	Token        string    `json:"token"`
	LastActivity time.Time `json:"lastActivity"`
}

// ActionRecord is one entry in a game's action history list.
type ActionRecord struct {
	RoomCode    string                 `json:"roomCode"`
	ActionIndex int                    `json:"actionIndex"`
	ActorID     uuid.UUID              `json:"actorId"`
	ActionType  string                 `json:"actionType"`
	Payload     map[string]interface{} `json:"payload,omitempty"`
	Timestamp   int64                  `json:"timestamp"`
}

// Store persists room aggregates, player sessions, and action history.
// When Redis is unreachable it degrades to an in-process map, which limits
// deployment to a single server instance but keeps local play working.
type Store struct {
	rdb *redis.Client
	log *logrus.Entry

	mu        sync.RWMutex
	connected bool
	memory    map[string]string
	memLists  map[string][]string
}

// New dials Redis at addr and verifies the connection. An empty addr or a
// failed ping yields a memory-backed store rather than an error.
func New(ctx context.Context, addr, password string, log *logrus.Logger) *Store {
	s := &Store{
		log:      log.WithField("component", "cache"),
		memory:   make(map[string]string),
		memLists: make(map[string][]string),
	}
	if addr == "" {
		s.log.Info("no redis address configured, using in-memory storage")
		return s
	}

	s.rdb = redis.NewClient(&redis.Options{Addr: addr, Password: password})
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		s.log.WithError(err).Warn("redis not available, falling back to in-memory storage")
		s.rdb = nil
		return s
	}
	s.connected = true
	s.log.WithField("addr", addr).Info("connected to redis")
	return s
}

// Connected reports whether the store is backed by Redis.
func (s *Store) Connected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

// Close releases the Redis connection if one exists.
func (s *Store) Close() error {
	if s.rdb != nil {
		return s.rdb.Close()
	}
	return nil
}

func roomKey(code string) string { return "room:" + code }
func codeKey(code string) string { return "code:" + code }
func sessionKey(id uuid.UUID) string { return "session:" + id.String() }
func actionsKey(code string) string { return "actions:" + code }

func (s *Store) set(ctx context.Context, key, value string, ttl time.Duration) error {
	if s.Connected() {
		return s.rdb.Set(ctx, key, value, ttl).Err()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memory[key] = value
	return nil
}

func (s *Store) get(ctx context.Context, key string) (string, bool, error) {
	if s.Connected() {
		val, err := s.rdb.Get(ctx, key).Result()
		if err == redis.Nil {
			return "", false, nil
		}
		if err != nil {
			return "", false, err
		}
		return val, true, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.memory[key]
	return val, ok, nil
}

func (s *Store) del(ctx context.Context, keys ...string) error {
	if s.Connected() {
		return s.rdb.Del(ctx, keys...).Err()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.memory, k)
	}
	return nil
}

// SaveRoom writes the room aggregate and refreshes its TTL and code index.
func (s *Store) SaveRoom(ctx context.Context, room *models.Room) error {
	data, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("marshal room %s: %w", room.Code, err)
	}
	if err := s.set(ctx, roomKey(room.Code), string(data), roomTTL); err != nil {
		return fmt.Errorf("save room %s: %w", room.Code, err)
	}
	return s.set(ctx, codeKey(room.Code), room.Code, roomTTL)
}

// GetRoom loads a room aggregate; a missing room returns (nil, nil).
func (s *Store) GetRoom(ctx context.Context, code string) (*models.Room, error) {
	data, ok, err := s.get(ctx, roomKey(code))
	if err != nil {
		return nil, fmt.Errorf("get room %s: %w", code, err)
	}
	if !ok {
		return nil, nil
	}
	var room models.Room
	if err := json.Unmarshal([]byte(data), &room); err != nil {
		return nil, fmt.Errorf("unmarshal room %s: %w", code, err)
	}
	return &room, nil
}

// DeleteRoom removes the room aggregate, its code index, and its action
// history.
func (s *Store) DeleteRoom(ctx context.Context, code string) error {
	if err := s.del(ctx, roomKey(code), codeKey(code), actionsKey(code)); err != nil {
		return fmt.Errorf("delete room %s: %w", code, err)
	}
	if !s.Connected() {
		s.mu.Lock()
		delete(s.memLists, actionsKey(code))
		s.mu.Unlock()
	}
	return nil
}

// RoomExists reports whether a room code is taken.
func (s *Store) RoomExists(ctx context.Context, code string) (bool, error) {
	if s.Connected() {
		n, err := s.rdb.Exists(ctx, roomKey(code)).Result()
		if err != nil {
			return false, err
		}
		return n == 1, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.memory[roomKey(code)]
	return ok, nil
}

// SavePlayerSession records the player's room and token.
func (s *Store) SavePlayerSession(ctx context.Context, playerID uuid.UUID, session PlayerSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return s.set(ctx, sessionKey(playerID), string(data), sessionTTL)
}

// GetPlayerSession loads a session; a missing session returns (nil, nil).
func (s *Store) GetPlayerSession(ctx context.Context, playerID uuid.UUID) (*PlayerSession, error) {
	data, ok, err := s.get(ctx, sessionKey(playerID))
	if err != nil || !ok {
		return nil, err
	}
	var session PlayerSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &session, nil
}

// DeletePlayerSession removes the player's session.
func (s *Store) DeletePlayerSession(ctx context.Context, playerID uuid.UUID) error {
	return s.del(ctx, sessionKey(playerID))
}

// PublishAction appends a record to the room's action history list, capped
// at actionListCap entries.
func (s *Store) PublishAction(ctx context.Context, rec ActionRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal action record: %w", err)
	}
	key := actionsKey(rec.RoomCode)
	if s.Connected() {
		pipe := s.rdb.TxPipeline()
		pipe.RPush(ctx, key, data)
		pipe.LTrim(ctx, key, -actionListCap, -1)
		pipe.Expire(ctx, key, roomTTL)
		_, err := pipe.Exec(ctx)
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	list := append(s.memLists[key], string(data))
	if len(list) > actionListCap {
		list = list[len(list)-actionListCap:]
	}
	s.memLists[key] = list
	return nil
}

// ActionHistory returns the recorded actions for a room in order.
func (s *Store) ActionHistory(ctx context.Context, code string) ([]ActionRecord, error) {
	key := actionsKey(code)
	var raw []string
	if s.Connected() {
		var err error
		raw, err = s.rdb.LRange(ctx, key, 0, -1).Result()
		if err != nil {
			return nil, fmt.Errorf("read action history %s: %w", code, err)
		}
	} else {
		s.mu.RLock()
		raw = append(raw, s.memLists[key]...)
		s.mu.RUnlock()
	}

	records := make([]ActionRecord, 0, len(raw))
	for _, item := range raw {
		var rec ActionRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, fmt.Errorf("unmarshal action record: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}
