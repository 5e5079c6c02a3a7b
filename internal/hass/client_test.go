package hass

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"heating_card/internal/logger"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

const roomStateJSON = `{
	"entity_id": "climate.room_a_hm",
	"state": "heat",
	"attributes": {
		"friendly_name": "Room A",
		"current_temperature": 19.5,
		"temperature": 21,
		"hvac_action": "heating",
		"boost": {"temperature": null, "end_time": null}
	}
}`

// fakeHA is a minimal Home Assistant websocket endpoint.
type fakeHA struct {
	t      *testing.T
	token  string
	states string
	// callResult builds the result for a call_service message.
	callResult func(msg map[string]any) map[string]any
	conns      chan *websocket.Conn
	received   chan map[string]any
}

func newFakeHA(t *testing.T) *fakeHA {
	return &fakeHA{
		t:        t,
		token:    "good",
		states:   "[" + roomStateJSON + "]",
		conns:    make(chan *websocket.Conn, 4),
		received: make(chan map[string]any, 16),
	}
}

func (f *fakeHA) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	up := websocket.Upgrader{}
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	_ = conn.WriteJSON(map[string]any{"type": "auth_required", "ha_version": "2025.1.0"})
	var auth map[string]any
	if err := conn.ReadJSON(&auth); err != nil {
		return
	}
	if auth["access_token"] != f.token {
		_ = conn.WriteJSON(map[string]any{"type": "auth_invalid", "message": "Invalid access token"})
		return
	}
	_ = conn.WriteJSON(map[string]any{"type": "auth_ok", "ha_version": "2025.1.0"})
	f.conns <- conn

	for {
		var msg map[string]any
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		id := msg["id"]
		switch msg["type"] {
		case "subscribe_events":
			_ = conn.WriteJSON(map[string]any{"id": id, "type": "result", "success": true, "result": nil})
		case "get_states":
			_ = conn.WriteJSON(map[string]any{"id": id, "type": "result", "success": true, "result": json.RawMessage(f.states)})
		case "call_service":
			f.received <- msg
			res := map[string]any{"id": id, "type": "result", "success": true, "result": map[string]any{}}
			if f.callResult != nil {
				res = f.callResult(msg)
				res["id"] = id
			}
			_ = conn.WriteJSON(res)
		}
	}
}

func startClient(t *testing.T, ha *fakeHA, token string) (*Client, *websocket.Conn, func()) {
	t.Helper()
	srv := httptest.NewServer(ha)
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	c := NewClient(Config{URL: url, Token: token, ReconnectInterval: 50 * time.Millisecond}, logger.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	var conn *websocket.Conn
	select {
	case conn = <-ha.conns:
	case <-time.After(2 * time.Second):
		t.Fatalf("client never authenticated")
	}
	require.Eventually(t, c.Connected, 2*time.Second, 10*time.Millisecond)

	return c, conn, func() {
		cancel()
		<-done
		srv.Close()
	}
}

func nextDelivery(t *testing.T, w *Watch) Delivery {
	t.Helper()
	select {
	case d := <-w.C():
		return d
	case <-time.After(2 * time.Second):
		t.Fatalf("no delivery for %s", w.EntityID())
		return Delivery{}
	}
}

func TestClient_WatchReceivesInitialAndChangedState(t *testing.T) {
	ha := newFakeHA(t)
	c, conn, stop := startClient(t, ha, "good")
	defer stop()

	w := c.Watch("climate.room_a_hm")
	defer w.Close()

	d := nextDelivery(t, w)
	require.True(t, d.Found)
	cur, ok := d.Snapshot.CurrentTemp.Get()
	require.True(t, ok)
	require.Equal(t, 19.5, cur)
	require.Equal(t, "Room A", d.Snapshot.FriendlyName)

	changed := strings.Replace(roomStateJSON, `"current_temperature": 19.5`, `"current_temperature": 19.8`, 1)
	evt := `{"id": 1, "type": "event", "event": {"event_type": "state_changed", "data": {"entity_id": "climate.room_a_hm", "new_state": ` + changed + `}}}`
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(evt)))

	d = nextDelivery(t, w)
	cur, _ = d.Snapshot.CurrentTemp.Get()
	require.Equal(t, 19.8, cur)

	removed := `{"id": 1, "type": "event", "event": {"event_type": "state_changed", "data": {"entity_id": "climate.room_a_hm", "new_state": null}}}`
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(removed)))
	require.False(t, nextDelivery(t, w).Found)
}

func TestClient_WatchUnknownEntityIsMissing(t *testing.T) {
	ha := newFakeHA(t)
	c, _, stop := startClient(t, ha, "good")
	defer stop()

	w := c.Watch("climate.nowhere")
	defer w.Close()
	require.False(t, nextDelivery(t, w).Found)
}

func TestClient_CallService(t *testing.T) {
	ha := newFakeHA(t)
	c, _, stop := startClient(t, ha, "good")
	defer stop()

	err := c.CallService(context.Background(), "climate", "set_preset_mode", map[string]any{
		"entity_id":   "climate.room_a_hm",
		"preset_mode": "boost",
	})
	require.NoError(t, err)

	msg := <-ha.received
	require.Equal(t, "climate", msg["domain"])
	require.Equal(t, "set_preset_mode", msg["service"])
	data := msg["service_data"].(map[string]any)
	require.Equal(t, "boost", data["preset_mode"])
}

func TestClient_CallServiceFailure(t *testing.T) {
	ha := newFakeHA(t)
	ha.callResult = func(map[string]any) map[string]any {
		return map[string]any{
			"type":    "result",
			"success": false,
			"error":   map[string]any{"code": "not_supported", "message": "preset not supported"},
		}
	}
	c, _, stop := startClient(t, ha, "good")
	defer stop()

	err := c.CallService(context.Background(), "climate", "set_preset_mode", nil)
	require.Error(t, err)
	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	require.Equal(t, "not_supported", svcErr.Code)
}

func TestClient_CallServiceNotConnected(t *testing.T) {
	c := NewClient(Config{URL: "ws://127.0.0.1:1/api/websocket"}, logger.Nop())
	err := c.CallService(context.Background(), "climate", "set_temperature", nil)
	require.ErrorIs(t, err, ErrNotConnected)
}

func TestClient_AuthInvalid(t *testing.T) {
	ha := newFakeHA(t)
	srv := httptest.NewServer(ha)
	defer srv.Close()

	c := NewClient(Config{URL: "ws" + strings.TrimPrefix(srv.URL, "http"), Token: "bad"}, logger.Nop())
	_, _, err := c.connect(context.Background())
	require.ErrorIs(t, err, ErrAuthInvalid)
}
