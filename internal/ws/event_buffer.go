package ws

import (
	"sort"
	"sync"
	"time"

	"github.com/gigboard/gigadmin/internal/models"
)

const (
	defaultBufferMaxLen = 1000
	defaultBufferMaxAge = 1 * time.Hour
)

type bufferedEvent struct {
	id     uint64
	at     time.Time
	entity models.EntityType
	msg    []byte
}

// EventBuffer is a fixed-size ring of recently broadcast admin actions, kept
// already encoded so a reconnecting feed client can catch up without the hub
// marshaling every event again. Entries older than maxAge are dropped lazily.
type EventBuffer struct {
	mu     sync.RWMutex
	ring   []bufferedEvent
	head   int // index of the oldest entry
	size   int
	maxAge time.Duration
	now    func() time.Time
}

// NewEventBuffer creates a buffer holding at most maxLen events for maxAge.
func NewEventBuffer(maxLen int, maxAge time.Duration) *EventBuffer {
	return &EventBuffer{
		ring:   make([]bufferedEvent, max(maxLen, 1)),
		maxAge: maxAge,
		now:    time.Now,
	}
}

// Append records an encoded event. IDs must be appended in increasing order.
func (eb *EventBuffer) Append(id uint64, at time.Time, entity models.EntityType, msg []byte) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.expireLocked()

	if eb.size == len(eb.ring) {
		eb.head = (eb.head + 1) % len(eb.ring)
		eb.size--
	}

	eb.ring[(eb.head+eb.size)%len(eb.ring)] = bufferedEvent{id: id, at: at, entity: entity, msg: msg}
	eb.size++
}

// expireLocked drops entries past maxAge from the front. Caller holds eb.mu.
func (eb *EventBuffer) expireLocked() {
	cutoff := eb.now().Add(-eb.maxAge)

	for eb.size > 0 && eb.at(0).at.Before(cutoff) {
		eb.ring[eb.head] = bufferedEvent{}
		eb.head = (eb.head + 1) % len(eb.ring)
		eb.size--
	}
}

// at returns the i-th oldest entry.
func (eb *EventBuffer) at(i int) bufferedEvent {
	return eb.ring[(eb.head+i)%len(eb.ring)]
}

// Since returns the encoded events with an ID greater than lastEventID that
// pass filter, oldest first, or nil when there are none.
func (eb *EventBuffer) Since(lastEventID uint64, filter *entityFilter) [][]byte {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	first := sort.Search(eb.size, func(i int) bool { return eb.at(i).id > lastEventID })
	if first == eb.size {
		return nil
	}

	var out [][]byte

	for i := first; i < eb.size; i++ {
		if e := eb.at(i); filter.matches(e.entity) {
			out = append(out, e.msg)
		}
	}

	return out
}

// OldestID returns the ID of the oldest buffered event, or 0 if empty.
func (eb *EventBuffer) OldestID() uint64 {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	if eb.size == 0 {
		return 0
	}

	return eb.at(0).id
}

// Covers reports whether every event after lastEventID is still buffered, so
// a replay would leave no gap. A zero lastEventID means the client has seen
// nothing and only wants what is available.
func (eb *EventBuffer) Covers(lastEventID uint64) bool {
	oldest := eb.OldestID()

	return lastEventID == 0 || oldest == 0 || lastEventID+1 >= oldest
}

// Len returns the number of buffered events.
func (eb *EventBuffer) Len() int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	return eb.size
}
