package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message represents an immutable chat event.
// Language is the detected ISO 639-1 code of the content, empty when unknown.
type Message struct {
	ID            uuid.UUID
	RoomID        RoomID
	SenderID      UserID
	Content       string
	Language      string
	ReplyToID     *uuid.UUID
	AttachmentIDs []string
	CreatedAt     time.Time
}
