package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/markbriannn/vehicle-tracking-ap-sub000/module/core/domain"
)

func testClient(h *Hub, buffer int) *Client {
	c := newClient(h, nil)
	c.send = make(chan []byte, buffer)
	h.add(c)
	return c
}

func TestHub_JoinLeave(t *testing.T) {
	h := NewHub()
	c := testClient(h, sendBuffer)

	if !h.Join(c, domain.GroupAdministrators) {
		t.Fatal("expected join to succeed")
	}
	if h.GroupSize(domain.GroupAdministrators) != 1 {
		t.Errorf("expected group size 1, got %d", h.GroupSize(domain.GroupAdministrators))
	}

	h.Leave(c, domain.GroupAdministrators)
	if h.GroupSize(domain.GroupAdministrators) != 0 {
		t.Errorf("expected empty group after leave, got %d", h.GroupSize(domain.GroupAdministrators))
	}
}

func TestHub_JoinRejectsUnknownGroup(t *testing.T) {
	h := NewHub()
	c := testClient(h, sendBuffer)

	if h.Join(c, "vip") {
		t.Error("expected unknown group to be rejected")
	}
	if h.GroupSize("vip") != 0 {
		t.Errorf("unknown group has members: %d", h.GroupSize("vip"))
	}
}

func TestHub_PublishReachesGroupMembersOnly(t *testing.T) {
	h := NewHub()
	admin := testClient(h, sendBuffer)
	public := testClient(h, sendBuffer)
	h.Join(admin, domain.GroupAdministrators)
	h.Join(public, domain.GroupPublic)

	h.Publish(domain.GroupAdministrators, domain.Event{Type: domain.EventGeofenceAlert, Data: map[string]string{"k": "v"}})

	select {
	case body := <-admin.send:
		var event domain.Event
		if err := json.Unmarshal(body, &event); err != nil {
			t.Fatalf("unmarshal frame: %v", err)
		}
		if event.Type != domain.EventGeofenceAlert {
			t.Errorf("unexpected event type %s", event.Type)
		}
	default:
		t.Fatal("admin subscriber received nothing")
	}

	select {
	case <-public.send:
		t.Fatal("public subscriber received an admin frame")
	default:
	}
}

func TestHub_PublishDropsFramesForSlowSubscriber(t *testing.T) {
	h := NewHub()
	slow := testClient(h, 1)
	h.Join(slow, domain.GroupPublic)

	done := make(chan struct{})
	go func() {
		// second publish hits a full buffer and must not block
		h.Publish(domain.GroupPublic, domain.Event{Type: domain.EventLocationUpdate})
		h.Publish(domain.GroupPublic, domain.Event{Type: domain.EventLocationUpdate})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a slow subscriber")
	}

	if got := len(slow.send); got != 1 {
		t.Errorf("expected exactly 1 buffered frame, got %d", got)
	}
}

func TestHub_DropRemovesFromAllGroups(t *testing.T) {
	h := NewHub()
	c := testClient(h, sendBuffer)
	h.Join(c, domain.GroupAdministrators)
	h.Join(c, domain.GroupDrivers)

	h.drop(c)

	if h.ClientCount() != 0 {
		t.Errorf("expected 0 clients, got %d", h.ClientCount())
	}
	if h.GroupSize(domain.GroupAdministrators) != 0 || h.GroupSize(domain.GroupDrivers) != 0 {
		t.Error("dropped client still member of a group")
	}
	if _, ok := <-c.send; ok {
		t.Error("expected send channel closed")
	}

	// dropping twice is harmless
	h.drop(c)
}

func TestHub_ImmediateDisconnectLeavesNoGhostClient(t *testing.T) {
	h := NewHub()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	// connect-then-disconnect in quick succession: registration is
	// synchronous, so the queued unregister always finds the client
	c := newClient(h, nil)
	h.add(c)
	if h.ClientCount() != 1 {
		t.Fatalf("expected 1 client after add, got %d", h.ClientCount())
	}

	h.unregister <- c

	deadline := time.After(time.Second)
	for h.ClientCount() != 0 {
		select {
		case <-deadline:
			t.Fatal("unregister never processed, ghost client left behind")
		case <-time.After(time.Millisecond):
		}
	}

	if _, ok := <-c.send; ok {
		t.Error("expected send channel closed after disconnect")
	}
}
