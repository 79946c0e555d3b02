package notifier_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/ontoptea/orderhub/internal/adapter/notifier"
	"github.com/ontoptea/orderhub/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestHub(t *testing.T) (*notifier.Hub, *httptest.Server) {
	t.Helper()

	hub, err := notifier.NewHub(zap.NewNop())
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(hub.HandleConnection))
	t.Cleanup(srv.Close)

	return hub, srv
}

func dialAndJoin(t *testing.T, srv *httptest.Server, room string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	err = conn.WriteJSON(map[string]string{"action": "join", "room": room})
	require.NoError(t, err)

	return conn
}

func waitForMembers(t *testing.T, hub *notifier.Hub, room string, want int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.ClientCount(room) == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("room %q never reached %d members", room, want)
}

func readEvent(t *testing.T, conn *websocket.Conn) domain.NotificationEvent {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, message, err := conn.ReadMessage()
	require.NoError(t, err)

	var event domain.NotificationEvent
	require.NoError(t, json.Unmarshal(message, &event))
	return event
}

func TestHub_PublishToRoom(t *testing.T) {
	hub, srv := newTestHub(t)

	production := dialAndJoin(t, srv, domain.RoomProduction)
	printer := dialAndJoin(t, srv, domain.RoomPrintClient)
	waitForMembers(t, hub, domain.RoomProduction, 1)
	waitForMembers(t, hub, domain.RoomPrintClient, 1)

	event := domain.NotificationEvent{
		Type:      domain.EventNewOrder,
		Data:      json.RawMessage(`{"order_no":"250801120000123"}`),
		Timestamp: time.Now(),
	}
	require.NoError(t, hub.Publish(context.Background(), domain.RoomProduction, event))

	got := readEvent(t, production)
	assert.Equal(t, domain.EventNewOrder, got.Type)
	assert.JSONEq(t, `{"order_no":"250801120000123"}`, string(got.Data))

	// The print client is in another room and must not see the event.
	require.NoError(t, printer.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err := printer.ReadMessage()
	assert.Error(t, err)
}

func TestHub_Broadcast(t *testing.T) {
	hub, srv := newTestHub(t)

	production := dialAndJoin(t, srv, domain.RoomProduction)
	printer := dialAndJoin(t, srv, domain.RoomPrintClient)
	waitForMembers(t, hub, domain.RoomProduction, 1)
	waitForMembers(t, hub, domain.RoomPrintClient, 1)

	event := domain.NotificationEvent{
		Type:      domain.EventStatusChange,
		Data:      json.RawMessage(`{"status":"making"}`),
		Timestamp: time.Now(),
	}
	require.NoError(t, hub.Broadcast(context.Background(), event))

	for _, conn := range []*websocket.Conn{production, printer} {
		got := readEvent(t, conn)
		assert.Equal(t, domain.EventStatusChange, got.Type)
	}
}

func TestHub_DisconnectedClientDropped(t *testing.T) {
	hub, srv := newTestHub(t)

	conn := dialAndJoin(t, srv, domain.RoomProduction)
	waitForMembers(t, hub, domain.RoomProduction, 1)

	require.NoError(t, conn.Close())
	waitForMembers(t, hub, domain.RoomProduction, 0)

	// Publishing to an empty room is not an error.
	event := domain.NotificationEvent{Type: domain.EventNewOrder, Timestamp: time.Now()}
	assert.NoError(t, hub.Publish(context.Background(), domain.RoomProduction, event))
}
