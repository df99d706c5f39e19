// Package observer provides the subject/observer pair that mutating services
// use to broadcast completed admin actions (audit sink, metrics, live feed).
package observer

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/gigboard/gigadmin/internal/metrics"
	"github.com/gigboard/gigadmin/internal/models"
)

// Observer receives every action notified by a Subject it is attached to.
// Implementations must be comparable (pointer receivers) so Detach can find them.
type Observer interface {
	Update(ctx context.Context, action models.Action, details models.AuditDetails) error
}

// Named is implemented by observers that want a stable label in logs and metrics.
type Named interface {
	Name() string
}

// Subject holds an ordered observer list. Services embed *Subject to gain
// Attach, Detach and Notify.
//
// Notify is best-effort: an observer error is logged and counted, later
// observers still run and the error is never returned to the mutation.
type Subject struct {
	mu        sync.RWMutex
	observers []Observer
	log       *logrus.Logger
}

// NewSubject creates a Subject with the given observers attached in order.
func NewSubject(log *logrus.Logger, observers ...Observer) *Subject {
	s := &Subject{log: log}
	for _, o := range observers {
		s.Attach(o)
	}

	return s
}

// Attach registers o. Duplicates are allowed and each receives notifications.
func (s *Subject) Attach(o Observer) {
	if o == nil {
		return
	}

	s.mu.Lock()
	s.observers = append(s.observers, o)
	s.mu.Unlock()
}

// Detach removes the first registration equal to o. Unknown observers are ignored.
func (s *Subject) Detach(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, cur := range s.observers {
		if cur == o {
			s.observers = append(s.observers[:i], s.observers[i+1:]...)

			return
		}
	}
}

// Len returns the number of attached observers.
func (s *Subject) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.observers)
}

// Notify calls Update on every attached observer synchronously, in registration order.
func (s *Subject) Notify(ctx context.Context, action models.Action, details models.AuditDetails) {
	s.mu.RLock()
	observers := make([]Observer, len(s.observers))
	copy(observers, s.observers)
	s.mu.RUnlock()

	for _, o := range observers {
		if err := o.Update(ctx, action, details); err != nil {
			name := observerName(o)
			metrics.ObserverFailures.WithLabelValues(name).Inc()
			s.log.WithError(err).WithFields(logrus.Fields{
				"observer":    name,
				"action":      action,
				"entity_type": details.EntityType,
				"entity_id":   details.EntityID,
				"admin_id":    details.AdminID,
			}).Warn("observer failed to handle admin action")
		}
	}
}

// Event is the typed envelope a service fills in before publishing.
// Old and New hold entity snapshots; nil means no snapshot.
type Event struct {
	Action     models.Action
	EntityType models.EntityType
	EntityID   int64
	AdminID    int64
	Old        any
	New        any
}

// Publish marshals the snapshots in e and notifies all observers.
// A snapshot that cannot be encoded is dropped with a warning; the action is still published.
func (s *Subject) Publish(ctx context.Context, e Event) {
	details := models.AuditDetails{
		Action:     e.Action,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		AdminID:    e.AdminID,
	}

	var err error
	if details.OldData, err = Snapshot(e.Old); err != nil {
		s.log.WithError(err).WithField("action", e.Action).Warn("encoding old snapshot")
	}

	if details.NewData, err = Snapshot(e.New); err != nil {
		s.log.WithError(err).WithField("action", e.Action).Warn("encoding new snapshot")
	}

	s.Notify(ctx, e.Action, details)
}

// Snapshot encodes v as JSON. A nil value (including a typed nil pointer) yields nil.
func Snapshot(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshaling snapshot: %w", err)
	}

	if string(data) == "null" {
		return nil, nil
	}

	return data, nil
}

func observerName(o Observer) string {
	if n, ok := o.(Named); ok {
		return n.Name()
	}

	return fmt.Sprintf("%T", o)
}
