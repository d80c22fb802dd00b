package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vikasavnish/movein/internal/models"
	"github.com/vikasavnish/movein/internal/utils"
)

func serveAs(hub *Hub, user *models.User) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user != nil {
			r = r.WithContext(utils.SetUserToContext(r.Context(), user))
		}
		hub.HandleWebSocket(w, r)
	}))
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHubDeliversToOwner(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	alice := serveAs(hub, &models.User{ID: 1})
	defer alice.Close()
	bob := serveAs(hub, &models.User{ID: 2})
	defer bob.Close()

	aliceConn := dial(t, alice)
	bobConn := dial(t, bob)
	require.Eventually(t, func() bool { return hub.Count() == 2 }, time.Second, 10*time.Millisecond)

	hub.Broadcast(1, models.Message{Type: "favorite_added", Content: "456 Test St"})

	aliceConn.SetReadDeadline(time.Now().Add(time.Second))
	var got models.Message
	require.NoError(t, aliceConn.ReadJSON(&got))
	assert.Equal(t, "favorite_added", got.Type)
	assert.Equal(t, "456 Test St", got.Content)

	bobConn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	_, _, err := bobConn.ReadMessage()
	assert.Error(t, err, "other users must not receive the event")
}

func TestHubRejectsAnonymous(t *testing.T) {
	hub := NewHub()
	srv := serveAs(hub, nil)
	defer srv.Close()

	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHubRemovesClosedClients(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	srv := serveAs(hub, &models.User{ID: 1})
	defer srv.Close()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.Count() == 0 }, time.Second, 10*time.Millisecond)
}
