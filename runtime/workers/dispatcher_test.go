package workers

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"chat-hub/domain"
	"chat-hub/domain/event"
)

// fakeHub records what the dispatcher routed where.
type fakeHub struct {
	mu        sync.Mutex
	roomCalls map[domain.RoomID][]event.DomainEvent
	global    []event.DomainEvent
}

func newFakeHub() *fakeHub {
	return &fakeHub{roomCalls: make(map[domain.RoomID][]event.DomainEvent)}
}

func (h *fakeHub) BroadcastToRoom(roomID domain.RoomID, e event.DomainEvent) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.roomCalls[roomID] = append(h.roomCalls[roomID], e)
	return 1
}

func (h *fakeHub) Broadcast(e event.DomainEvent) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.global = append(h.global, e)
	return 1
}

func (h *fakeHub) SendToUser(domain.UserID, event.DomainEvent) int { return 0 }

func (h *fakeHub) SendToConnection(domain.ConnectionID, event.DomainEvent) bool { return false }

type recordingSink struct {
	mu     sync.Mutex
	events []event.DomainEvent
}

func (s *recordingSink) Consume(_ context.Context, e event.DomainEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return nil
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func TestDispatcher_Routes_RoomScoped_To_Room_And_Presence_Globally(t *testing.T) {
	req := require.New(t)
	hub := newFakeHub()
	sink := &recordingSink{}
	events := make(chan event.DomainEvent, 8)
	dispatcher := NewDispatcher(slog.Default(), hub, events).Add(sink)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = dispatcher.Run(ctx)
		close(done)
	}()

	// When a room event and a presence event are dispatched
	typing := event.UserTyping{RoomID: "general", UserID: "alice", IsTyping: true}
	presence := event.UserPresenceChanged{Presence: domain.Presence{UserID: "alice", Status: domain.StatusOnline}}
	events <- typing
	events <- presence

	req.Eventually(func() bool { return sink.count() == 2 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done

	// Then the room event went to its room and the presence event everywhere
	hub.mu.Lock()
	defer hub.mu.Unlock()
	req.Equal([]event.DomainEvent{typing}, hub.roomCalls["general"])
	req.Equal([]event.DomainEvent{presence}, hub.global)

	// And the permanent sink saw both
	req.Equal(2, sink.count())
}

func TestDispatcher_Stops_When_Channel_Closes(t *testing.T) {
	req := require.New(t)
	events := make(chan event.DomainEvent)
	dispatcher := NewDispatcher(slog.Default(), newFakeHub(), events)

	close(events)

	req.NoError(dispatcher.Run(context.Background()))
}
