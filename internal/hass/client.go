package hass

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"heating_card/internal/logger"
	"heating_card/internal/models"

	"github.com/gorilla/websocket"
)

// Connection timing and limits.
const (
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	defaultHandshake = 10 * time.Second
	defaultReconnect = 5 * time.Second
	maxMessageSize   = 16 << 20 // get_states can be large
)

var (
	ErrNotConnected = errors.New("home assistant: not connected")
	ErrDisconnected = errors.New("home assistant: connection lost")
	ErrAuthInvalid  = errors.New("home assistant: authentication rejected")
)

// Config holds the connection settings.
type Config struct {
	URL               string        // ws://host:8123/api/websocket
	Token             string        // long-lived access token
	ReconnectInterval time.Duration // delay between connection attempts
	HandshakeTimeout  time.Duration
}

type response struct {
	msg incoming
	err error
}

// Client is a Home Assistant websocket client. It implements Feed and Caller.
type Client struct {
	cfg    Config
	log    *logger.Logger
	dialer websocket.Dialer
	states *hub

	mu      sync.Mutex
	conn    *websocket.Conn
	nextID  int64
	pending map[int64]chan response

	writeMu sync.Mutex
}

var (
	_ Feed   = (*Client)(nil)
	_ Caller = (*Client)(nil)
)

// NewClient returns a disconnected client; call Run to connect.
func NewClient(cfg Config, log *logger.Logger) *Client {
	if cfg.ReconnectInterval <= 0 {
		cfg.ReconnectInterval = defaultReconnect
	}
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = defaultHandshake
	}
	return &Client{
		cfg:     cfg,
		log:     log.Named("hass"),
		dialer:  websocket.Dialer{HandshakeTimeout: cfg.HandshakeTimeout},
		states:  newHub(),
		pending: make(map[int64]chan response),
	}
}

func (c *Client) Watch(entityID string) *Watch {
	return c.states.watch(entityID)
}

// Connected reports whether a session is currently established.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Run keeps a session open until ctx is canceled, reconnecting after every
// failure.
func (c *Client) Run(ctx context.Context) {
	for {
		err := c.session(ctx)
		if ctx.Err() != nil {
			return
		}
		c.log.Warnw("hass_session_ended", "err", err, "retry_in", c.cfg.ReconnectInterval)
		select {
		case <-ctx.Done():
			return
		case <-time.After(c.cfg.ReconnectInterval):
		}
	}
}

func (c *Client) session(ctx context.Context) error {
	conn, version, err := c.connect(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	readErr := make(chan error, 1)
	go func() { readErr <- c.readLoop(conn) }()

	if err := c.bootstrap(ctx); err != nil {
		_ = conn.Close()
		c.detach(<-readErr)
		return fmt.Errorf("bootstrap session: %w", err)
	}
	c.log.Infow("hass_connected", "url", c.cfg.URL, "ha_version", version)

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	for {
		select {
		case err := <-readErr:
			c.detach(err)
			return err
		case <-ctx.Done():
			_ = conn.Close()
			c.detach(<-readErr)
			return ctx.Err()
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				c.log.Infow("hass_ping_failed", "err", err)
			}
		}
	}
}

// connect dials and performs the auth handshake.
func (c *Client) connect(ctx context.Context) (*websocket.Conn, string, error) {
	dctx, cancel := context.WithTimeout(ctx, c.cfg.HandshakeTimeout)
	defer cancel()

	conn, _, err := c.dialer.DialContext(dctx, c.cfg.URL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("dial %s: %w", c.cfg.URL, err)
	}
	fail := func(err error) (*websocket.Conn, string, error) {
		_ = conn.Close()
		return nil, "", err
	}

	_ = conn.SetReadDeadline(time.Now().Add(c.cfg.HandshakeTimeout))
	var hello incoming
	if err := conn.ReadJSON(&hello); err != nil {
		return fail(fmt.Errorf("read auth_required: %w", err))
	}
	if hello.Type != typeAuthRequired {
		return fail(fmt.Errorf("unexpected greeting %q", hello.Type))
	}

	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(outgoing{Type: typeAuth, AccessToken: c.cfg.Token}); err != nil {
		return fail(fmt.Errorf("send auth: %w", err))
	}

	var reply incoming
	if err := conn.ReadJSON(&reply); err != nil {
		return fail(fmt.Errorf("read auth reply: %w", err))
	}
	switch reply.Type {
	case typeAuthOK:
	case typeAuthInvalid:
		return fail(fmt.Errorf("%w: %s", ErrAuthInvalid, reply.Message))
	default:
		return fail(fmt.Errorf("unexpected auth reply %q", reply.Type))
	}

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	return conn, reply.HAVersion, nil
}

// bootstrap subscribes to state changes and then loads every state, so that
// no change between the two is lost.
func (c *Client) bootstrap(ctx context.Context) error {
	if _, err := c.request(ctx, outgoing{Type: typeSubscribeEvents, EventType: eventStateChanged}); err != nil {
		return fmt.Errorf("subscribe state_changed: %w", err)
	}
	raw, err := c.request(ctx, outgoing{Type: typeGetStates})
	if err != nil {
		return fmt.Errorf("get_states: %w", err)
	}
	var states []rawState
	if err := json.Unmarshal(raw, &states); err != nil {
		return fmt.Errorf("decode states: %w", err)
	}
	snaps := make([]models.EntitySnapshot, 0, len(states))
	for _, st := range states {
		snaps = append(snaps, SnapshotFromState(st))
	}
	c.states.replace(snaps)
	return nil
}

func (c *Client) readLoop(conn *websocket.Conn) error {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		// Home Assistant may coalesce messages into a JSON array.
		var batch []incoming
		if len(data) > 0 && data[0] == '[' {
			if err := json.Unmarshal(data, &batch); err != nil {
				c.log.Infow("hass_bad_message", "err", err)
				continue
			}
		} else {
			var msg incoming
			if err := json.Unmarshal(data, &msg); err != nil {
				c.log.Infow("hass_bad_message", "err", err)
				continue
			}
			batch = []incoming{msg}
		}
		for _, msg := range batch {
			c.dispatch(msg)
		}
	}
}

func (c *Client) dispatch(msg incoming) {
	switch msg.Type {
	case typeResult:
		c.mu.Lock()
		ch := c.pending[msg.ID]
		delete(c.pending, msg.ID)
		c.mu.Unlock()
		if ch != nil {
			ch <- response{msg: msg}
		}
	case typeEvent:
		if msg.Event == nil || msg.Event.EventType != eventStateChanged {
			return
		}
		d := msg.Event.Data
		if d.NewState == nil {
			c.states.set(d.EntityID, models.EntitySnapshot{EntityID: d.EntityID}, false)
			return
		}
		c.states.set(d.EntityID, SnapshotFromState(*d.NewState), true)
	}
}

// detach fails every pending request after the connection is gone.
func (c *Client) detach(cause error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn = nil
	for id, ch := range c.pending {
		ch <- response{err: fmt.Errorf("%w: %v", ErrDisconnected, cause)}
		delete(c.pending, id)
	}
}

// request sends msg with a fresh id and waits for its result.
func (c *Client) request(ctx context.Context, msg outgoing) (json.RawMessage, error) {
	c.mu.Lock()
	conn := c.conn
	if conn == nil {
		c.mu.Unlock()
		return nil, ErrNotConnected
	}
	c.nextID++
	msg.ID = c.nextID
	ch := make(chan response, 1)
	c.pending[msg.ID] = ch
	c.mu.Unlock()

	c.writeMu.Lock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	err := conn.WriteJSON(msg)
	c.writeMu.Unlock()
	if err != nil {
		c.forget(msg.ID)
		return nil, fmt.Errorf("send %s: %w", msg.Type, err)
	}

	select {
	case res := <-ch:
		if res.err != nil {
			return nil, res.err
		}
		if !res.msg.Success {
			if res.msg.Error != nil {
				return nil, res.msg.Error
			}
			return nil, &ServiceError{Code: "unknown_error", Message: msg.Type + " failed"}
		}
		return res.msg.Result, nil
	case <-ctx.Done():
		c.forget(msg.ID)
		return nil, ctx.Err()
	}
}

func (c *Client) forget(id int64) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

func (c *Client) CallService(ctx context.Context, domain, service string, data map[string]any) error {
	_, err := c.request(ctx, outgoing{
		Type:        typeCallService,
		Domain:      domain,
		Service:     service,
		ServiceData: data,
	})
	if err != nil {
		return fmt.Errorf("call %s.%s: %w", domain, service, err)
	}
	return nil
}
