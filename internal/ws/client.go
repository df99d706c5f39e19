package ws

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"

	"github.com/gigboard/gigadmin/internal/models"
)

const (
	writeTimeout         = 10 * time.Second
	wsReadLimit          = 4096
	clientSendBuffer     = 256
	maxConnLifetime      = 4 * time.Hour    // safety-net lifetime (token refresh handles auth)
	tokenRefreshInterval = 15 * time.Minute // periodic re-validation of the access token and admin flag
	tokenRefreshTimeout  = 10 * time.Second
	pingInterval         = 30 * time.Second
	pingTimeout          = 10 * time.Second
	maxMissedPongs       = int32(2)
)

// Validator re-checks a feed client's credentials while it stays connected.
type Validator interface {
	ValidateAccessToken(ctx context.Context, token string) (int64, error)
	IsAdmin(ctx context.Context, adminID int64) (bool, error)
}

// Client is one admin's feed connection. The read pump owns subscription
// changes; the hub reads the filter concurrently when fanning out events.
type Client struct {
	hub         *Hub
	conn        *websocket.Conn
	send        chan []byte
	log         *logrus.Logger
	AdminID     int64
	token       string
	validator   Validator
	filter      atomic.Pointer[entityFilter]
	closeOnce   sync.Once
	connectedAt time.Time
}

// follows reports whether the client's subscription includes entity.
func (c *Client) follows(entity models.EntityType) bool {
	return c.filter.Load().matches(entity)
}

// closeSend safely closes the send channel exactly once.
func (c *Client) closeSend() {
	c.closeOnce.Do(func() { close(c.send) })
}

// NewClient creates a new Client for the given WebSocket connection.
func NewClient(hub *Hub, conn *websocket.Conn, validator Validator, adminID int64, token string) *Client {
	return &Client{
		hub:         hub,
		conn:        conn,
		send:        make(chan []byte, clientSendBuffer),
		log:         hub.log,
		AdminID:     adminID,
		token:       token,
		validator:   validator,
		connectedAt: time.Now(),
	}
}

// ReadPump reads messages from the WebSocket connection until it closes.
// The first message may be a subscribe request for event replay.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.CloseNow() //nolint:errcheck // best-effort close on teardown
	}()

	c.conn.SetReadLimit(wsReadLimit)

	for {
		_, msgBytes, err := c.conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				c.log.WithField("status", websocket.CloseStatus(err)).Debug("client disconnected")
			}

			return
		}

		c.handleMessage(ctx, msgBytes)
	}
}

// sendPing sends a WebSocket ping and tracks missed pongs.
// Returns true if the connection should be closed.
func (c *Client) sendPing(ctx context.Context, missedPongs *atomic.Int32) bool {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	err := c.conn.Ping(pingCtx)
	cancel()

	if err != nil {
		if missedPongs.Add(1) >= maxMissedPongs {
			c.log.Debug("closing: 2 consecutive missed pongs")

			return true
		}

		return false
	}

	missedPongs.Store(0)

	return false
}

// handleMessage applies a subscribe request: it swaps the entity filter,
// replays what the client missed and acknowledges. Anything else is ignored.
func (c *Client) handleMessage(_ context.Context, msgBytes []byte) {
	var msg SubscribeMsg
	if err := json.Unmarshal(msgBytes, &msg); err != nil || msg.Type != MsgSubscribe {
		return
	}

	c.filter.Store(newEntityFilter(msg.EntityTypes))

	replayed, ok := c.hub.ReplayEvents(c, msg.LastEventID)
	if !ok {
		c.enqueue(ResetMsg{
			Type:   MsgReset,
			Reason: "requested events no longer available, perform full refresh",
		})

		return
	}

	types := msg.EntityTypes
	if types == nil {
		types = []models.EntityType{}
	}

	c.enqueue(SubscribedMsg{Type: MsgSubscribed, EntityTypes: types, Replayed: replayed})

	c.log.WithFields(logrus.Fields{
		"admin_id":      c.AdminID,
		"entity_types":  types,
		"last_event_id": msg.LastEventID,
		"replayed":      replayed,
	}).Debug("feed subscription updated")
}

// enqueue marshals a control message and queues it without blocking.
func (c *Client) enqueue(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}

	select {
	case c.send <- b:
	default:
	}
}

// WritePump writes messages from the send channel to the WebSocket connection.
// It enforces a maximum connection lifetime and periodically re-validates the
// admin's token, closing the feed once the token expires or the flag is revoked.
func (c *Client) WritePump(ctx context.Context) {
	defer c.conn.CloseNow() //nolint:errcheck // best-effort close on teardown

	lifetimeTimer := time.NewTimer(time.Until(c.connectedAt.Add(maxConnLifetime)))
	defer lifetimeTimer.Stop()

	refreshTicker := time.NewTicker(tokenRefreshInterval)
	defer refreshTicker.Stop()

	pingTicker := time.NewTicker(pingInterval)
	defer pingTicker.Stop()

	var missedPongs atomic.Int32

	for {
		select {
		case <-pingTicker.C:
			if c.sendPing(ctx, &missedPongs) {
				return
			}
		case msg, ok := <-c.send:
			if !ok {
				return
			}

			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)

			err := c.conn.Write(writeCtx, websocket.MessageText, msg)

			cancel()

			if err != nil {
				c.log.WithError(err).Debug("write failed")

				return
			}
		case <-refreshTicker.C:
			if !c.refreshToken(ctx) {
				return
			}
		case <-lifetimeTimer.C:
			c.log.Info("closing WebSocket: max connection lifetime exceeded")
			c.conn.Close(websocket.StatusNormalClosure, "max connection lifetime exceeded") //nolint:errcheck // best-effort

			return
		}
	}
}

// refreshToken re-validates the token and admin flag. Returns false if the connection should close.
func (c *Client) refreshToken(ctx context.Context) bool {
	if c.validator == nil {
		return true
	}

	refreshCtx, cancel := context.WithTimeout(ctx, tokenRefreshTimeout)
	defer cancel()

	reason := ""

	adminID, err := c.validator.ValidateAccessToken(refreshCtx, c.token)

	switch {
	case err != nil || adminID != c.AdminID:
		reason = "authentication expired"
	default:
		ok, err := c.validator.IsAdmin(refreshCtx, adminID)
		if err != nil || !ok {
			reason = "admin access revoked"
		}
	}

	if reason == "" {
		return true
	}

	c.log.WithField("admin_id", c.AdminID).Info("closing WebSocket: " + reason)
	c.conn.Close(websocket.StatusPolicyViolation, reason) //nolint:errcheck // best-effort

	return false
}
