package stream

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"strategystore/internal/models"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubBroadcast(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.ServeWS(w, r)
	}))
	defer srv.Close()
	defer hub.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	first, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer first.Close()
	second, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer second.Close()

	require.Eventually(t, func() bool { return hub.Clients() == 2 }, time.Second, 10*time.Millisecond)

	ev := models.StrategyEvent{
		ID:         uuid.New(),
		Type:       models.StrategyCreated,
		StrategyID: "s1",
		Caller:     "alice",
		Total:      1,
		OccurredAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	require.NoError(t, hub.Emit(ev))

	for _, conn := range []*websocket.Conn{first, second} {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var got models.StrategyEvent
		require.NoError(t, conn.ReadJSON(&got))
		assert.Equal(t, ev.ID, got.ID)
		assert.Equal(t, models.StrategyCreated, got.Type)
		assert.Equal(t, "s1", got.StrategyID)
	}

	t.Run("disconnected subscribers are removed", func(t *testing.T) {
		require.NoError(t, first.Close())
		require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)
	})
}

func TestHubEmitWithoutSubscribers(t *testing.T) {
	hub := NewHub()
	assert.NoError(t, hub.Emit(models.StrategyEvent{ID: uuid.New(), Type: models.StrategyDeleted}))
	assert.Equal(t, 0, hub.Clients())
}
