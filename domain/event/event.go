// Package event defines the tagged union of domain events flowing
// through the hub. Consumers switch on the concrete type or on Tag().
package event

import (
	"chat-hub/domain"
)

type Type string

const (
	MessageSentType         Type = "MessageSent"
	UserTypingType          Type = "UserTyping"
	UserPresenceChangedType Type = "UserPresenceChanged"
	UserJoinedRoomType      Type = "UserJoinedRoom"
	UserLeftRoomType        Type = "UserLeftRoom"
)

type DomainEvent interface {
	Tag() Type
}

// RoomScoped is implemented by events addressed to a single room.
// Events without a room scope are broadcast to every connection.
type RoomScoped interface {
	DomainEvent
	Room() domain.RoomID
}

type MessageSent struct {
	Message domain.Message
}

func (e MessageSent) Tag() Type           { return MessageSentType }
func (e MessageSent) Room() domain.RoomID { return e.Message.RoomID }

type UserTyping struct {
	RoomID   domain.RoomID
	UserID   domain.UserID
	Username string
	IsTyping bool
}

func (e UserTyping) Tag() Type           { return UserTypingType }
func (e UserTyping) Room() domain.RoomID { return e.RoomID }

type UserPresenceChanged struct {
	Presence domain.Presence
}

func (e UserPresenceChanged) Tag() Type { return UserPresenceChangedType }

type UserJoinedRoom struct {
	RoomID domain.RoomID
	UserID domain.UserID
}

func (e UserJoinedRoom) Tag() Type           { return UserJoinedRoomType }
func (e UserJoinedRoom) Room() domain.RoomID { return e.RoomID }

type UserLeftRoom struct {
	RoomID domain.RoomID
	UserID domain.UserID
}

func (e UserLeftRoom) Tag() Type           { return UserLeftRoomType }
func (e UserLeftRoom) Room() domain.RoomID { return e.RoomID }
