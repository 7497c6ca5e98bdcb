package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"salesledger/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	gws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var secret = []byte("ws-secret")

func startServer(t *testing.T) (*Hub, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	hub := NewHub(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	r := gin.New()
	r.GET("/ws", func(c *gin.Context) { ServeWs(hub, c, secret) })
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func tokenFor(t *testing.T, owner uuid.UUID) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": owner.String(),
		"exp": time.Now().Add(time.Minute).Unix(),
	}).SignedString(secret)
	require.NoError(t, err)
	return s
}

func dial(t *testing.T, url string, owner uuid.UUID) *gws.Conn {
	t.Helper()
	conn, _, err := gws.DefaultDialer.Dial(url+"?token="+tokenFor(t, owner), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestHub_DeliversOnlyToOwner(t *testing.T) {
	hub, url := startServer(t)
	alice, bob := uuid.New(), uuid.New()

	aliceConn := dial(t, url, alice)
	bobConn := dial(t, url, bob)
	require.Eventually(t, func() bool {
		return hub.Connections(alice) == 1 && hub.Connections(bob) == 1
	}, time.Second, 10*time.Millisecond)

	hub.Notify(alice, service.Event{Event: service.EventSaleCreated, Data: map[string]interface{}{"sale_id": "s1"}})

	require.NoError(t, aliceConn.SetReadDeadline(time.Now().Add(time.Second)))
	var got service.Event
	require.NoError(t, aliceConn.ReadJSON(&got))
	assert.Equal(t, service.EventSaleCreated, got.Event)
	assert.Equal(t, "s1", got.Data["sale_id"])

	require.NoError(t, bobConn.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err := bobConn.ReadMessage()
	assert.Error(t, err, "bob must not receive alice's events")
}

func TestHub_UnregistersClosedConnections(t *testing.T) {
	hub, url := startServer(t)
	owner := uuid.New()

	conn := dial(t, url, owner)
	require.Eventually(t, func() bool { return hub.Connections(owner) == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.Connections(owner) == 0 }, time.Second, 10*time.Millisecond)
}

func TestServeWs_RejectsBadTokens(t *testing.T) {
	_, url := startServer(t)

	for _, query := range []string{"", "?token=garbage"} {
		_, resp, err := gws.DefaultDialer.Dial(url+query, nil)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}
}

func TestHub_StopReleasesConnections(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewHub(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	served := make(chan struct{}, 4)
	r := gin.New()
	r.GET("/ws", func(c *gin.Context) {
		ServeWs(hub, c, secret)
		served <- struct{}{}
	})
	srv := httptest.NewServer(r)
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	owner := uuid.New()

	conn := dial(t, url, owner)
	<-served
	require.Eventually(t, func() bool { return hub.Connections(owner) == 1 }, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-hub.done:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}
	assert.Zero(t, hub.Connections(owner))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err, "open sockets are closed on stop")

	late, _, err := gws.DefaultDialer.Dial(url+"?token="+tokenFor(t, owner), nil)
	require.NoError(t, err)
	defer late.Close()
	select {
	case <-served:
	case <-time.After(time.Second):
		t.Fatal("ServeWs blocked after the hub stopped")
	}
	require.NoError(t, late.SetReadDeadline(time.Now().Add(time.Second)))
	_, _, err = late.ReadMessage()
	assert.Error(t, err)
	assert.Zero(t, hub.Connections(owner))
}
