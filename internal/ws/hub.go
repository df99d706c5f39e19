// Package ws serves the live admin action feed over WebSocket.
package ws

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gigboard/gigadmin/internal/metrics"
	"github.com/gigboard/gigadmin/internal/models"
)

// Hub channel buffer sizes and connection caps.
const (
	broadcastBuffer = 256
	registerBuffer  = 64

	maxClients         = 1000
	maxClientsPerAdmin = 10
)

// maxEventData bounds the data of one broadcast. Larger actions are sent
// without their snapshots.
const maxEventData = 64 * 1024

// drainTimeout is how long the hub waits for clients to flush after shutdown.
const drainTimeout = 3 * time.Second

// outbound is an encoded event plus the entity type clients filter on.
type outbound struct {
	entity models.EntityType
	msg    []byte
}

// Hub manages active feed clients and broadcasts admin actions to all of them.
// All client map mutations happen exclusively in the Run goroutine.
type Hub struct {
	clients      map[*Client]bool
	adminCount   map[int64]int
	register     chan *Client
	unregister   chan *Client
	broadcast    chan outbound
	shutdown     chan struct{} // signals Run to begin graceful drain
	shutdownOnce sync.Once
	done         chan struct{} // closed when Run has finished draining
	count        atomic.Int64
	log          *logrus.Logger
	seq          EventSequence
	buffer       *EventBuffer
}

// NewHub creates a new Hub instance.
func NewHub(log *logrus.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		adminCount: make(map[int64]int),
		register:   make(chan *Client, registerBuffer),
		unregister: make(chan *Client, registerBuffer),
		broadcast:  make(chan outbound, broadcastBuffer),
		shutdown:   make(chan struct{}),
		done:       make(chan struct{}),
		log:        log,
		buffer:     NewEventBuffer(defaultBufferMaxLen, defaultBufferMaxAge),
	}
}

// Run starts the hub event loop. It should be run as a goroutine.
// It exits when Shutdown is called or the context is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.drainClients()

			return
		case <-h.shutdown:
			h.drainClients()

			return

		case client := <-h.register:
			h.add(client)

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.remove(client)
			}

			h.updateCount()
			h.log.WithField("total", len(h.clients)).Info("feed client unregistered")

		case out := <-h.broadcast:
			for client := range h.clients {
				if !client.follows(out.entity) {
					continue
				}

				select {
				case client.send <- out.msg:
				default:
					h.remove(client)
				}
			}

			h.updateCount()
		}
	}
}

func (h *Hub) add(client *Client) {
	if len(h.clients) >= maxClients {
		h.log.Warn("global connection limit reached, dropping feed client")
		client.closeSend()

		return
	}

	if h.adminCount[client.AdminID] >= maxClientsPerAdmin {
		h.log.WithField("admin_id", client.AdminID).Warn("per-admin connection limit reached, dropping feed client")
		client.closeSend()

		return
	}

	h.clients[client] = true
	h.adminCount[client.AdminID]++
	h.updateCount()
	h.log.WithFields(logrus.Fields{"admin_id": client.AdminID, "total": len(h.clients)}).Info("feed client registered")
}

func (h *Hub) remove(client *Client) {
	delete(h.clients, client)
	client.closeSend()

	h.adminCount[client.AdminID]--
	if h.adminCount[client.AdminID] <= 0 {
		delete(h.adminCount, client.AdminID)
	}
}

func (h *Hub) updateCount() {
	h.count.Store(int64(len(h.clients)))
	metrics.WSConnections.Set(float64(len(h.clients)))
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	default:
		h.log.Warn("register channel full, dropping feed client")
		c.closeSend()
	}
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	default:
		// Run loop already exited; client cleanup happened in Run shutdown.
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}

// actionData is the data of an admin_action event.
type actionData struct {
	models.AuditDetails
	Truncated bool `json:"truncated,omitempty"`
}

// Name labels the hub in logs and metrics.
func (h *Hub) Name() string { return "ws_hub" }

// Update broadcasts a completed admin action to every feed client.
// It never blocks the mutation: a full broadcast channel drops the event.
func (h *Hub) Update(_ context.Context, action models.Action, details models.AuditDetails) error {
	details.Action = action

	data, err := json.Marshal(actionData{AuditDetails: details})
	if err != nil {
		return err
	}

	if len(data) > maxEventData {
		details.OldData, details.NewData = nil, nil

		if data, err = json.Marshal(actionData{AuditDetails: details, Truncated: true}); err != nil {
			return err
		}
	}

	h.BroadcastEvent(EventAdminAction, details.EntityType, data)

	return nil
}

// BroadcastEvent assigns a sequence ID, stores the event for replay and
// queues it for every client.
func (h *Hub) BroadcastEvent(eventType string, entity models.EntityType, data json.RawMessage) {
	evt := Event{
		Type:   eventType,
		ID:     h.seq.Next(),
		Entity: entity,
		Data:   data,
		Time:   time.Now(),
	}

	msg, err := json.Marshal(evt)
	if err != nil {
		h.log.WithError(err).Error("failed to marshal event")
		return
	}

	h.buffer.Append(evt.ID, evt.Time, entity, msg)

	select {
	case h.broadcast <- outbound{entity: entity, msg: msg}:
	default:
		h.log.WithField("event_id", evt.ID).Warn("broadcast channel full, dropping message")
	}
}

// Shutdown initiates a graceful drain: sends a shutdown frame to every
// connected client, waits for their write pumps to flush, then closes all
// connections. It blocks until Run has returned.
func (h *Hub) Shutdown() {
	h.shutdownOnce.Do(func() { close(h.shutdown) })
	<-h.done
}

// drainClients sends a shutdown frame to every client and waits for buffers to flush.
func (h *Hub) drainClients() {
	if len(h.clients) == 0 {
		return
	}

	h.log.WithField("clients", len(h.clients)).Info("draining feed clients")

	// Send shutdown notification so clients know to reconnect.
	shutdownMsg := []byte(`{"type":"shutdown","message":"server shutting down"}`)
	for client := range h.clients {
		select {
		case client.send <- shutdownMsg:
		default:
		}
	}

	if !h.waitFlushed() {
		h.log.Warn("feed drain timeout, closing remaining clients")
	}

	for client := range h.clients {
		client.closeSend()
		delete(h.clients, client)
	}

	h.adminCount = make(map[int64]int)
	h.updateCount()
}

// waitFlushed polls until every send buffer is empty or drainTimeout passes.
func (h *Hub) waitFlushed() bool {
	deadline := time.After(drainTimeout)
	ticker := time.NewTicker(50 * time.Millisecond) //nolint:mnd // poll interval
	defer ticker.Stop()

	for {
		flushed := true

		for client := range h.clients {
			if len(client.send) > 0 {
				flushed = false

				break
			}
		}

		if flushed {
			return true
		}

		select {
		case <-deadline:
			return false
		case <-ticker.C:
		}
	}
}

// ReplayEvents queues the buffered events after lastEventID that the client
// follows and returns how many were queued. ok is false when some of those
// events have already been evicted and the client must refresh from the
// REST API instead.
func (h *Hub) ReplayEvents(client *Client, lastEventID uint64) (replayed int, ok bool) {
	if !h.buffer.Covers(lastEventID) {
		return 0, false
	}

	for _, msg := range h.buffer.Since(lastEventID, client.filter.Load()) {
		select {
		case client.send <- msg:
			replayed++
		default:
			return replayed, true // send buffer full; the client catches up on live events
		}
	}

	return replayed, true
}
