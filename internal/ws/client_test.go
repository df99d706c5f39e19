package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/gigboard/gigadmin/internal/models"
)

func TestClientSubscribeReplaysFollowedEntities(t *testing.T) {
	t.Parallel()

	h := NewHub(testLogger())
	h.BroadcastEvent(EventAdminAction, models.EntityUser, json.RawMessage(`{}`))
	h.BroadcastEvent(EventAdminAction, models.EntityProject, json.RawMessage(`{}`))
	h.BroadcastEvent(EventAdminAction, models.EntityTransaction, json.RawMessage(`{}`))

	c := NewClient(h, nil, nil, 1, "")
	c.handleMessage(context.Background(), []byte(`{"type":"subscribe","entity_types":["Project"]}`))

	if evt := receive(t, c); evt.ID != 2 || evt.Entity != models.EntityProject {
		t.Errorf("replayed event = %+v, want project event 2", evt)
	}

	var ack SubscribedMsg
	if err := json.Unmarshal(<-c.send, &ack); err != nil {
		t.Fatalf("decoding ack: %v", err)
	}

	if ack.Type != MsgSubscribed || ack.Replayed != 1 || len(ack.EntityTypes) != 1 {
		t.Errorf("ack = %+v", ack)
	}

	if !c.follows(models.EntityProject) || c.follows(models.EntityUser) {
		t.Error("filter not applied")
	}
}

func TestClientSubscribeTooOldSendsReset(t *testing.T) {
	t.Parallel()

	h := NewHub(testLogger())
	h.buffer = NewEventBuffer(2, time.Hour)

	for range 5 {
		h.BroadcastEvent(EventAdminAction, models.EntityUser, json.RawMessage(`{}`))
	}

	c := NewClient(h, nil, nil, 1, "")
	c.handleMessage(context.Background(), []byte(`{"type":"subscribe","last_event_id":1}`))

	var reset ResetMsg
	if err := json.Unmarshal(<-c.send, &reset); err != nil || reset.Type != MsgReset {
		t.Fatalf("first message = %+v, %v; want reset", reset, err)
	}
}

func TestClientIgnoresUnknownMessages(t *testing.T) {
	t.Parallel()

	c := NewClient(NewHub(testLogger()), nil, nil, 1, "")

	for _, raw := range []string{`not json`, `{"type":"hello"}`} {
		c.handleMessage(context.Background(), []byte(raw))
	}

	if len(c.send) != 0 {
		t.Errorf("queued %d messages, want 0", len(c.send))
	}
}

func TestHubSkipsUnfollowedEntities(t *testing.T) {
	t.Parallel()

	h := startHub(t)

	c := NewClient(h, nil, nil, 1, "")
	c.filter.Store(newEntityFilter([]models.EntityType{models.EntityTransaction}))
	h.Register(c)
	waitForCount(t, h, 1)

	h.BroadcastEvent(EventAdminAction, models.EntityUser, json.RawMessage(`{}`))
	h.BroadcastEvent(EventAdminAction, models.EntityTransaction, json.RawMessage(`{}`))

	if evt := receive(t, c); evt.Entity != models.EntityTransaction {
		t.Errorf("delivered %+v, want only the transaction event", evt)
	}
}
