package ws

import (
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/gigboard/gigadmin/internal/models"
)

// EventAdminAction is the type of the event broadcast for every completed admin action.
const EventAdminAction = "admin_action"

// Control message types.
const (
	MsgSubscribe  = "subscribe"
	MsgSubscribed = "subscribed"
	MsgReset      = "reset"
)

// Event is the structured message sent to feed clients.
type Event struct {
	Type   string            `json:"type"`
	ID     uint64            `json:"id"`
	Entity models.EntityType `json:"entity_type,omitempty"`
	Data   json.RawMessage   `json:"data"`
	Time   time.Time         `json:"time"`
}

// SubscribeMsg is sent by a client to pick which entity types it follows and
// to request replay of everything after LastEventID. An empty EntityTypes
// list follows all of them. A client may resubscribe at any time.
type SubscribeMsg struct {
	Type        string              `json:"type"`
	LastEventID uint64              `json:"last_event_id"`
	EntityTypes []models.EntityType `json:"entity_types,omitempty"`
}

// SubscribedMsg acknowledges a subscribe request.
type SubscribedMsg struct {
	Type        string              `json:"type"`
	EntityTypes []models.EntityType `json:"entity_types"`
	Replayed    int                 `json:"replayed"`
}

// ResetMsg tells the client to reload from the REST API because the events it
// asked for are no longer buffered.
type ResetMsg struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// EventSequence hands out monotonic event IDs starting at 1.
type EventSequence struct {
	counter atomic.Uint64
}

// Next returns the next sequence number.
func (es *EventSequence) Next() uint64 {
	return es.counter.Add(1)
}

// entityFilter is the set of entity types a client follows.
type entityFilter map[models.EntityType]struct{}

func newEntityFilter(types []models.EntityType) *entityFilter {
	if len(types) == 0 {
		return nil
	}

	f := make(entityFilter, len(types))
	for _, t := range types {
		f[t] = struct{}{}
	}

	return &f
}

// matches treats a nil filter and untyped events as wildcards.
func (f *entityFilter) matches(t models.EntityType) bool {
	if f == nil || t == "" {
		return true
	}

	_, ok := (*f)[t]

	return ok
}
