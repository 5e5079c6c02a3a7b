package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"heating_card/internal/repository"
	"heating_card/internal/widget"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Send/receive timing configuration and message size limits.
const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 1 << 12 // 4 KB
)

// Server -> client envelope types.
const (
	msgView      = "view"
	msgCountdown = "countdown"
	msgSignal    = "signal"
	msgError     = "error"
)

// Client -> server message types.
const (
	msgToggleBoost     = "toggle_boost"
	msgActivateBoost   = "activate_boost"
	msgDeactivateBoost = "deactivate_boost"
	msgTap             = "tap"
)

var errUnknownMessage = errors.New("unknown message type")

// Envelope used for WebSocket messages.
type wsEnvelope struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// clientMessage is a user intent sent by the browser. OnBoost marks a tap
// that landed on the boost control.
type clientMessage struct {
	Type    string `json:"type"`
	OnBoost bool   `json:"on_boost,omitempty"`
}

// Upgrader for HTTP -> WebSocket.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true }, // TODO: check against the configured dashboard origin
}

// @Summary      Card widget stream
// @Description  Upgrades to a websocket that mounts one widget instance for the card.
// @Description  Server sends {type: view|countdown|signal|error, data}; client sends
// @Description  {type: toggle_boost|activate_boost|deactivate_boost|tap, on_boost}.
// @Tags         cards
// @Param        id            path   string  true   "Card id"
// @Param        access_token  query  string  false  "Bearer token when no Authorization header can be sent"
// @Success      101
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /ws/cards/{id} [get]
func (h *Handler) cardStream(c *gin.Context) {
	id := c.Param("id")

	// The widget lives exactly as long as this connection.
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	w, err := h.services.Mount(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCardNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": errCardNotFound})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errMountCard, "card_mount_failed", err, "card", id)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_upgrade_failed", "err", err)
		}
		return
	}
	defer func() { _ = conn.Close() }()

	// Configure read limits and pong handler to extend read deadline.
	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	rejected := make(chan error, 4)
	go h.startReader(conn, w, done, rejected)

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	if h.log != nil {
		h.log.Infow("ws_card_connected", "card", id, "instance", w.ID(), "user", c.GetString(ctxUsername))
	}

	// Writer/select loop.
	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-w.Done():
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				if h.log != nil {
					h.log.Infow("ws_ping_failed", "err", err)
				}
				return
			}
		case err := <-rejected:
			if err := h.write(conn, wsEnvelope{Type: msgError, Error: err.Error()}); err != nil {
				return
			}
		case u := <-w.Updates():
			if err := h.write(conn, envelopeFor(u)); err != nil {
				return
			}
		}
	}
}

// Helper: startReader turns client messages into widget intents and detects
// closure.
func (h *Handler) startReader(conn *websocket.Conn, w *widget.Widget, done chan<- struct{}, rejected chan<- error) {
	defer close(done)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if h.log != nil {
				h.log.Infow("ws_read_closed", "err", err)
			}
			return
		}
		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			reject(rejected, err)
			continue
		}
		if err := applyMessage(w, msg); err != nil {
			if errors.Is(err, widget.ErrUnmounted) {
				return
			}
			reject(rejected, err)
		}
	}
}

func applyMessage(w *widget.Widget, msg clientMessage) error {
	switch msg.Type {
	case msgToggleBoost:
		return w.ToggleBoost()
	case msgActivateBoost:
		return w.ActivateBoost()
	case msgDeactivateBoost:
		return w.DeactivateBoost()
	case msgTap:
		return w.Tap(msg.OnBoost)
	default:
		return errUnknownMessage
	}
}

// reject queues an error reply; when the queue is full the reply is dropped.
func reject(rejected chan<- error, err error) {
	select {
	case rejected <- err:
	default:
	}
}

func envelopeFor(u widget.Update) wsEnvelope {
	switch u.Kind {
	case widget.UpdateCountdown:
		return wsEnvelope{Type: msgCountdown, Data: u.Countdown}
	case widget.UpdateSignal:
		return wsEnvelope{Type: msgSignal, Data: u.Signal}
	default:
		return wsEnvelope{Type: msgView, Data: u.View}
	}
}

// Helper: write sends one envelope with a write deadline.
func (h *Handler) write(conn *websocket.Conn, env wsEnvelope) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(env); err != nil {
		if h.log != nil {
			h.log.Infow("ws_write_failed", "type", env.Type, "err", err)
		}
		return err
	}
	return nil
}
