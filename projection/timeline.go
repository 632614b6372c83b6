// Package projection builds local read models from observed events.
// Projections consume, they never emit events or touch the hub.
package projection

import (
	"context"
	"sync"

	"chat-hub/domain"
	"chat-hub/domain/event"
)

// Timeline accumulates sent messages per room, most-recent-first,
// the shape a message pane wants to render.
type Timeline struct {
	mu    sync.Mutex
	rooms map[domain.RoomID][]domain.Message
}

func NewTimeline() *Timeline {
	return &Timeline{rooms: make(map[domain.RoomID][]domain.Message)}
}

func (t *Timeline) Consume(_ context.Context, e event.DomainEvent) error {
	sent, ok := e.(event.MessageSent)
	if !ok {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	roomID := sent.Message.RoomID
	t.rooms[roomID] = append([]domain.Message{sent.Message}, t.rooms[roomID]...)
	return nil
}

// Messages returns up to limit messages for a room, newest first.
// limit <= 0 returns everything.
func (t *Timeline) Messages(roomID domain.RoomID, limit int) []domain.Message {
	t.mu.Lock()
	defer t.mu.Unlock()

	messages := t.rooms[roomID]
	if limit > 0 && limit < len(messages) {
		messages = messages[:limit]
	}
	out := make([]domain.Message, len(messages))
	copy(out, messages)
	return out
}
