package domain

import "time"

type RoomID string

type RoomType string

const (
	RoomChannel RoomType = "channel"
	RoomGroup   RoomType = "group"
	RoomDirect  RoomType = "dm"
)

// Room is domain membership: who may join, not who is currently connected.
// Live subscriptions are tracked separately by the hub.
type Room struct {
	ID            RoomID
	Name          string
	Type          RoomType
	Description   string
	MemberIDs     map[UserID]struct{}
	LastMessageAt *time.Time
}

func NewRoom(id RoomID, name string, roomType RoomType, description string) Room {
	return Room{
		ID:          id,
		Name:        name,
		Type:        roomType,
		Description: description,
		MemberIDs:   make(map[UserID]struct{}),
	}
}

func (r Room) IsMember(userID UserID) bool {
	_, ok := r.MemberIDs[userID]
	return ok
}

// Clone returns a copy safe to hand out across the service boundary.
func (r Room) Clone() Room {
	members := make(map[UserID]struct{}, len(r.MemberIDs))
	for id := range r.MemberIDs {
		members[id] = struct{}{}
	}
	clone := r
	clone.MemberIDs = members
	if r.LastMessageAt != nil {
		at := *r.LastMessageAt
		clone.LastMessageAt = &at
	}
	return clone
}
