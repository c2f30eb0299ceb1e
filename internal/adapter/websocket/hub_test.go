package websocket

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/couchcryptid/metar-map-service/internal/domain"
	"github.com/couchcryptid/metar-map-service/internal/led"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHub(n int) *Hub {
	return NewHub(n, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg map[string]any
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestHub_SendsLastFrameOnConnect(t *testing.T) {
	hub := testHub(2)
	hub.SetPixel(0, domain.Color{G: 255})
	hub.SetBrightness(75)
	require.NoError(t, hub.Show())

	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	msg := readFrame(t, dial(t, srv))
	assert.Equal(t, MessageTypeFrame, msg["type"])
	assert.Equal(t, map[string]any{
		"pixels":     []any{"#00ff00", "#000000"},
		"brightness": float64(75),
	}, msg["data"])
}

func TestHub_BroadcastsToConnectedClients(t *testing.T) {
	hub := testHub(1)
	srv := httptest.NewServer(hub)
	defer srv.Close()
	defer hub.Close()

	a, b := dial(t, srv), dial(t, srv)
	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, 2*time.Second, 10*time.Millisecond)

	var sink led.PixelSink = hub
	sink.SetPixel(0, domain.Color{R: 255})
	require.NoError(t, sink.Show())

	for _, conn := range []*websocket.Conn{a, b} {
		msg := readFrame(t, conn)
		data := msg["data"].(map[string]any)
		assert.Equal(t, []any{"#ff0000"}, data["pixels"])
	}
}

func TestHub_UnregistersOnDisconnect(t *testing.T) {
	hub := testHub(1)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, hub.Show())
}

func TestHub_ShowWithoutClients(t *testing.T) {
	hub := testHub(3)
	assert.Equal(t, 3, hub.Len())
	require.NoError(t, hub.Show())
}
