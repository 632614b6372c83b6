package projection

import (
	"context"
	"sync"

	"chat-hub/domain"
	"chat-hub/domain/event"
)

// Roster tracks last-known presence per user and domain membership per
// room, from presence and join/leave events.
type Roster struct {
	mu        sync.Mutex
	presences map[domain.UserID]domain.Presence
	members   map[domain.RoomID]map[domain.UserID]struct{}
}

func NewRoster() *Roster {
	return &Roster{
		presences: make(map[domain.UserID]domain.Presence),
		members:   make(map[domain.RoomID]map[domain.UserID]struct{}),
	}
}

func (r *Roster) Consume(_ context.Context, e event.DomainEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch evt := e.(type) {
	case event.UserPresenceChanged:
		r.presences[evt.Presence.UserID] = evt.Presence
	case event.UserJoinedRoom:
		if _, ok := r.members[evt.RoomID]; !ok {
			r.members[evt.RoomID] = make(map[domain.UserID]struct{})
		}
		r.members[evt.RoomID][evt.UserID] = struct{}{}
	case event.UserLeftRoom:
		if set, ok := r.members[evt.RoomID]; ok {
			delete(set, evt.UserID)
			if len(set) == 0 {
				delete(r.members, evt.RoomID)
			}
		}
	}
	return nil
}

// Presence returns the last observed presence for a user.
func (r *Roster) Presence(userID domain.UserID) (domain.Presence, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	presence, ok := r.presences[userID]
	return presence, ok
}

// RoomMembers returns the users currently known to belong to a room.
func (r *Roster) RoomMembers(roomID domain.RoomID) []domain.UserID {
	r.mu.Lock()
	defer r.mu.Unlock()

	members := make([]domain.UserID, 0, len(r.members[roomID]))
	for userID := range r.members[roomID] {
		members = append(members, userID)
	}
	return members
}
