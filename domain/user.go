// Package domain contains core concepts of the chat system.
// No runtime, network, or UI logic should be added here.
package domain

import "time"

type UserID string

type UserStatus string

const (
	StatusOnline  UserStatus = "online"
	StatusAway    UserStatus = "away"
	StatusBusy    UserStatus = "busy"
	StatusOffline UserStatus = "offline"
)

// User is upserted by id; there is no deletion.
type User struct {
	ID        UserID
	Name      string
	Username  string
	AvatarURL string
	Status    UserStatus
	RoleColor string
}

// Presence is the live view of a user, derived state rather than an entity.
type Presence struct {
	UserID       UserID
	Status       UserStatus
	CustomStatus string
	LastSeenAt   time.Time
}
