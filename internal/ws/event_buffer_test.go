package ws

import (
	"strconv"
	"testing"
	"time"

	"github.com/gigboard/gigadmin/internal/models"
)

func fill(eb *EventBuffer, from, to uint64, at time.Time) {
	for id := from; id <= to; id++ {
		eb.Append(id, at, models.EntityProject, []byte(strconv.FormatUint(id, 10)))
	}
}

func TestEventBufferSince(t *testing.T) {
	t.Parallel()

	eb := NewEventBuffer(10, time.Hour)
	fill(eb, 1, 5, time.Now())

	got := eb.Since(3, nil)
	if len(got) != 2 || string(got[0]) != "4" || string(got[1]) != "5" {
		t.Errorf("Since(3) = %q, want 4 and 5", got)
	}

	if got := eb.Since(5, nil); got != nil {
		t.Errorf("Since(5) = %q, want nil", got)
	}

	if len(eb.Since(0, nil)) != 5 {
		t.Errorf("Since(0) returned %d events, want 5", len(eb.Since(0, nil)))
	}
}

func TestEventBufferWrapsAround(t *testing.T) {
	t.Parallel()

	eb := NewEventBuffer(3, time.Hour)
	fill(eb, 1, 7, time.Now())

	if eb.Len() != 3 || eb.OldestID() != 5 {
		t.Fatalf("Len = %d, OldestID = %d, want 3 and 5", eb.Len(), eb.OldestID())
	}

	got := eb.Since(5, nil)
	if len(got) != 2 || string(got[0]) != "6" || string(got[1]) != "7" {
		t.Errorf("Since(5) = %q, want 6 and 7", got)
	}
}

func TestEventBufferEvictsByAge(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	eb := NewEventBuffer(10, time.Minute)
	eb.now = func() time.Time { return now }

	eb.Append(1, now.Add(-2*time.Minute), models.EntityUser, []byte("1"))
	eb.Append(2, now, models.EntityUser, []byte("2"))

	if eb.OldestID() != 2 || eb.Len() != 1 {
		t.Errorf("OldestID = %d, Len = %d, want 2 and 1 after expiry", eb.OldestID(), eb.Len())
	}

	if NewEventBuffer(1, time.Minute).OldestID() != 0 {
		t.Error("empty buffer OldestID != 0")
	}
}

func TestEventBufferCovers(t *testing.T) {
	t.Parallel()

	eb := NewEventBuffer(3, time.Hour)
	if !eb.Covers(42) {
		t.Error("empty buffer should cover any id")
	}

	fill(eb, 1, 6, time.Now()) // keeps 4..6

	tests := []struct {
		last uint64
		want bool
	}{
		{0, true},
		{2, false},
		{3, true},
		{6, true},
	}

	for _, tt := range tests {
		if got := eb.Covers(tt.last); got != tt.want {
			t.Errorf("Covers(%d) = %v, want %v", tt.last, got, tt.want)
		}
	}
}

func TestEventBufferSinceFiltersByEntity(t *testing.T) {
	t.Parallel()

	eb := NewEventBuffer(10, time.Hour)
	now := time.Now()
	eb.Append(1, now, models.EntityUser, []byte("u1"))
	eb.Append(2, now, models.EntityProject, []byte("p2"))
	eb.Append(3, now, models.EntityTransaction, []byte("t3"))
	eb.Append(4, now, models.EntityProject, []byte("p4"))

	got := eb.Since(0, newEntityFilter([]models.EntityType{models.EntityProject}))
	if len(got) != 2 || string(got[0]) != "p2" || string(got[1]) != "p4" {
		t.Errorf("project events = %q, want p2 and p4", got)
	}

	if got := eb.Since(0, newEntityFilter([]models.EntityType{models.EntityAutoTask})); got != nil {
		t.Errorf("auto task events = %q, want none", got)
	}
}
