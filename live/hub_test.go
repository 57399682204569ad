package live_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokulpos/restaurant-pos/live"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func newHubServer(t *testing.T) (*live.Hub, string) {
	t.Helper()
	hub := live.NewHub()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := hub.Register(conn)
		go client.ReadLoop()
	}))
	t.Cleanup(srv.Close)
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) live.Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg live.Message
	require.NoError(t, json.Unmarshal(payload, &msg))
	return msg
}

func waitForCount(t *testing.T, hub *live.Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != want {
		if time.Now().After(deadline) {
			t.Fatalf("client count = %d, want %d", hub.ClientCount(), want)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestRegisterSendsWelcome(t *testing.T) {
	hub, url := newHubServer(t)
	conn := dial(t, url)

	msg := readMessage(t, conn)
	assert.Equal(t, live.EventConnected, msg.Event)
	assert.NotZero(t, msg.Timestamp)
	assert.Equal(t, 1, hub.ClientCount())
}

func TestBroadcastReachesEveryClient(t *testing.T) {
	hub, url := newHubServer(t)

	conns := make([]*websocket.Conn, 5)
	for i := range conns {
		conns[i] = dial(t, url)
		readMessage(t, conns[i]) // welcome
	}
	waitForCount(t, hub, 5)

	hub.Broadcast(live.EventOrderCreated, map[string]interface{}{"id": 42})

	for _, conn := range conns {
		msg := readMessage(t, conn)
		assert.Equal(t, live.EventOrderCreated, msg.Event)
		data, ok := msg.Data.(map[string]interface{})
		require.True(t, ok)
		assert.EqualValues(t, 42, data["id"])
	}
}

func TestDisconnectedClientIsPruned(t *testing.T) {
	hub, url := newHubServer(t)

	conns := make([]*websocket.Conn, 5)
	for i := range conns {
		conns[i] = dial(t, url)
		readMessage(t, conns[i])
	}
	waitForCount(t, hub, 5)

	require.NoError(t, conns[2].Close())
	waitForCount(t, hub, 4)

	hub.Broadcast(live.EventMenuUpdated, map[string]interface{}{"action": "add"})
	for i, conn := range conns {
		if i == 2 {
			continue
		}
		msg := readMessage(t, conn)
		assert.Equal(t, live.EventMenuUpdated, msg.Event)
	}
	assert.Equal(t, 4, hub.ClientCount())
}

func TestBroadcastWithNoClients(t *testing.T) {
	hub := live.NewHub()
	hub.Broadcast(live.EventSettingUpdated, nil) // must not panic
	assert.Equal(t, 0, hub.ClientCount())
}
