package domain

import "github.com/google/uuid"

// CreateRoomInput carries the mutable parts of a room creation request.
// The creator is passed separately and always ends up a member.
type CreateRoomInput struct {
	Name        string   `validate:"required,max=100"`
	Type        RoomType `validate:"required,oneof=channel group dm"`
	Description string   `validate:"max=500"`
	MemberIDs   []UserID
}

type SendMessageInput struct {
	RoomID        RoomID `validate:"required"`
	Content       string `validate:"required,max=4000"`
	ReplyToID     *uuid.UUID
	AttachmentIDs []string
}
