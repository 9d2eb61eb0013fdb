// internal/cache/store_test.go
package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramcd86/cosmic-games/internal/models"
)

// memoryStore returns a store with no Redis backing.
func memoryStore() *Store {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return New(context.Background(), "", "", log)
}

func TestMemoryFallbackRoomRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := memoryStore()
	require.False(t, s.Connected())

	room := &models.Room{
		Code:     "123456",
		Name:     "test table",
		HostID:   uuid.New(),
		Settings: models.DefaultRoomSettings(),
		Players: []*models.Player{
			{ID: uuid.New(), Name: "Alice", IsConnected: true},
		},
		CreatedAt: time.Now(),
	}
	require.NoError(t, s.SaveRoom(ctx, room))

	exists, err := s.RoomExists(ctx, room.Code)
	require.NoError(t, err)
	assert.True(t, exists)

	loaded, err := s.GetRoom(ctx, room.Code)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, room.Code, loaded.Code)
	assert.Equal(t, room.HostID, loaded.HostID)
	require.Len(t, loaded.Players, 1)
	assert.Equal(t, "Alice", loaded.Players[0].Name)

	require.NoError(t, s.DeleteRoom(ctx, room.Code))
	loaded, err = s.GetRoom(ctx, room.Code)
	require.NoError(t, err)
	assert.Nil(t, loaded)

	exists, err = s.RoomExists(ctx, room.Code)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMemoryFallbackPlayerSession(t *testing.T) {
	ctx := context.Background()
	s := memoryStore()
	playerID := uuid.New()

	session := PlayerSession{RoomCode: "654321", Token: "tok", LastActivity: time.Now()}
	require.NoError(t, s.SavePlayerSession(ctx, playerID, session))

	loaded, err := s.GetPlayerSession(ctx, playerID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, session.RoomCode, loaded.RoomCode)
	assert.Equal(t, session.Token, loaded.Token)

	require.NoError(t, s.DeletePlayerSession(ctx, playerID))
	loaded, err = s.GetPlayerSession(ctx, playerID)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestMemoryFallbackActionHistory(t *testing.T) {
	ctx := context.Background()
	s := memoryStore()
	actor := uuid.New()

	for i := 1; i <= 3; i++ {
		rec := ActionRecord{
			RoomCode:    "111222",
			ActionIndex: i,
			ActorID:     actor,
			ActionType:  "draw",
			Timestamp:   time.Now().UnixMilli(),
		}
		require.NoError(t, s.PublishAction(ctx, rec))
	}

	history, err := s.ActionHistory(ctx, "111222")
	require.NoError(t, err)
	require.Len(t, history, 3)
	for i, rec := range history {
		assert.Equal(t, i+1, rec.ActionIndex)
		assert.Equal(t, actor, rec.ActorID)
	}

	// History goes away with the room.
	require.NoError(t, s.DeleteRoom(ctx, "111222"))
	history, err = s.ActionHistory(ctx, "111222")
	require.NoError(t, err)
	assert.Empty(t, history)
}
