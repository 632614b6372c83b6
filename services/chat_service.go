//go:generate go run go.uber.org/mock/mockgen -source=chat_service.go -destination=../mocks/mock_chat_service.go -package=mocks
package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"chat-hub/domain"
	"chat-hub/domain/event"
	"chat-hub/errors"
	"chat-hub/moderation"
	"chat-hub/search"
)

type IChatService interface {
	UpsertUser(user domain.User) domain.User
	GetUser(id domain.UserID) (domain.User, bool)
	GetUsers(ids []domain.UserID) []domain.User
	CreateRoom(input domain.CreateRoomInput, creatorID domain.UserID) (domain.Room, error)
	GetRoom(id domain.RoomID) (domain.Room, bool)
	JoinRoom(roomID domain.RoomID, userID domain.UserID) *event.UserJoinedRoom
	LeaveRoom(roomID domain.RoomID, userID domain.UserID) *event.UserLeftRoom
	GetUserRooms(userID domain.UserID) []domain.Room
	SendMessage(input domain.SendMessageInput, senderID domain.UserID) (event.MessageSent, error)
	GetMessages(roomID domain.RoomID, limit int) []domain.Message
	GetMessage(id uuid.UUID) (domain.Message, bool)
	SearchMessages(ctx context.Context, rawQuery string) ([]domain.Message, error)
	Typing(roomID domain.RoomID, userID domain.UserID, isTyping bool) event.UserTyping
	SetStatus(userID domain.UserID, status domain.UserStatus, customStatus string) *event.UserPresenceChanged
}

// roomState pairs a room with its in-memory message log, oldest first.
type roomState struct {
	room domain.Room
	log  []domain.Message
}

// ChatService is the domain truth for users, rooms, and messages.
// It produces events but never delivers them: fan-out belongs to the hub,
// and the transport decides when a returned event goes out.
//
// State is guarded by a single RWMutex. Entities have no cross-room or
// cross-user invariants, so one lock keeps every operation trivially
// atomic without a lock ordering story.
type ChatService struct {
	mu        sync.RWMutex
	log       *slog.Logger
	validate  *validator.Validate
	moderator moderation.Moderator
	index     *search.Index

	users    map[domain.UserID]domain.User
	rooms    map[domain.RoomID]*roomState
	messages map[uuid.UUID]domain.Message
}

func NewChatService(log *slog.Logger, moderator moderation.Moderator, index *search.Index) *ChatService {
	return &ChatService{
		log:       log,
		validate:  validator.New(),
		moderator: moderator,
		index:     index,
		users:     make(map[domain.UserID]domain.User),
		rooms:     make(map[domain.RoomID]*roomState),
		messages:  make(map[uuid.UUID]domain.Message),
	}
}

// UpsertUser inserts or replaces the user by id. The returned value is
// authoritative.
func (s *ChatService) UpsertUser(user domain.User) domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user.Status == "" {
		user.Status = domain.StatusOffline
	}
	s.users[user.ID] = user
	return user
}

func (s *ChatService) GetUser(id domain.UserID) (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	return user, ok
}

// GetUsers silently drops unknown ids.
func (s *ChatService) GetUsers(ids []domain.UserID) []domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return lo.FilterMap(ids, func(id domain.UserID, _ int) (domain.User, bool) {
		user, ok := s.users[id]
		return user, ok
	})
}

// CreateRoom creates a room with a fresh id. The creator is always a
// member; additional member ids are deduplicated.
func (s *ChatService) CreateRoom(input domain.CreateRoomInput, creatorID domain.UserID) (domain.Room, error) {
	if err := s.validate.Struct(input); err != nil {
		return domain.Room{}, fmt.Errorf("%w: %v", errors.ErrInvalidInput, err)
	}

	room := domain.NewRoom(domain.RoomID(uuid.NewString()), input.Name, input.Type, input.Description)
	for _, memberID := range lo.Uniq(append([]domain.UserID{creatorID}, input.MemberIDs...)) {
		room.MemberIDs[memberID] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[room.ID] = &roomState{room: room}
	s.log.Debug("Room created", "room", room.ID, "name", room.Name, "members", len(room.MemberIDs))
	return room.Clone(), nil
}

func (s *ChatService) GetRoom(id domain.RoomID) (domain.Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.rooms[id]
	if !ok {
		return domain.Room{}, false
	}
	return state.room.Clone(), true
}

// JoinRoom adds the user to the room's membership. Unknown rooms and
// already-present members are no-ops: network clients retry join freely.
// A non-nil event is returned only when membership actually changed.
func (s *ChatService) JoinRoom(roomID domain.RoomID, userID domain.UserID) *event.UserJoinedRoom {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.rooms[roomID]
	if !ok || state.room.IsMember(userID) {
		return nil
	}
	state.room.MemberIDs[userID] = struct{}{}
	return &event.UserJoinedRoom{RoomID: roomID, UserID: userID}
}

// LeaveRoom removes the user if present; no-op otherwise.
func (s *ChatService) LeaveRoom(roomID domain.RoomID, userID domain.UserID) *event.UserLeftRoom {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.rooms[roomID]
	if !ok || !state.room.IsMember(userID) {
		return nil
	}
	delete(state.room.MemberIDs, userID)
	return &event.UserLeftRoom{RoomID: roomID, UserID: userID}
}

func (s *ChatService) GetUserRooms(userID domain.UserID) []domain.Room {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rooms []domain.Room
	for _, state := range s.rooms {
		if state.room.IsMember(userID) {
			rooms = append(rooms, state.room.Clone())
		}
	}
	return rooms
}

// SendMessage appends an immutable message to the room's log and returns
// the MessageSent event wrapping it. Delivery is the caller's concern,
// typically Hub.BroadcastToRoom. Writing into a nonexistent room is the
// one mutating command that fails loudly instead of no-oping.
func (s *ChatService) SendMessage(input domain.SendMessageInput, senderID domain.UserID) (event.MessageSent, error) {
	if err := s.validate.Struct(input); err != nil {
		return event.MessageSent{}, fmt.Errorf("%w: %v", errors.ErrInvalidInput, err)
	}

	// Content shaping happens outside the lock: censoring and language
	// detection only read the input.
	content, censored := s.moderator.Censor(input.Content)
	language := moderation.DetectLanguage(content)

	s.mu.Lock()
	state, ok := s.rooms[input.RoomID]
	if !ok {
		s.mu.Unlock()
		return event.MessageSent{}, fmt.Errorf("%w: %s", errors.ErrRoomNotFound, input.RoomID)
	}

	message := domain.Message{
		ID:            uuid.New(),
		RoomID:        input.RoomID,
		SenderID:      senderID,
		Content:       content,
		Language:      language,
		ReplyToID:     input.ReplyToID,
		AttachmentIDs: input.AttachmentIDs,
		CreatedAt:     time.Now().UTC(),
	}
	state.log = append(state.log, message)
	state.room.LastMessageAt = lo.ToPtr(message.CreatedAt)
	s.messages[message.ID] = message
	s.mu.Unlock()

	if len(censored) > 0 {
		s.log.Info("Message censored", "room", input.RoomID, "sender", senderID, "words", len(censored))
	}

	// Indexing is best-effort: a search outage must not fail the send.
	if s.index != nil {
		if err := s.index.IndexMessage(message); err != nil {
			s.log.Warn("Indexing message failed", "message", message.ID, "error", err)
		}
	}

	return event.MessageSent{Message: message}, nil
}

// GetMessages returns the room's messages most-recent-first.
// limit <= 0 means no cap; unknown rooms yield an empty slice.
func (s *ChatService) GetMessages(roomID domain.RoomID, limit int) []domain.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.rooms[roomID]
	if !ok {
		return []domain.Message{}
	}

	count := len(state.log)
	if limit > 0 && limit < count {
		count = limit
	}
	messages := make([]domain.Message, 0, count)
	for i := len(state.log) - 1; i >= 0 && len(messages) < count; i-- {
		messages = append(messages, state.log[i])
	}
	return messages
}

func (s *ChatService) GetMessage(id uuid.UUID) (domain.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	message, ok := s.messages[id]
	return message, ok
}

// SearchMessages runs a full-text query over the in-memory index and
// resolves hits back to messages, ranked by score. Messages that vanished
// between indexing and lookup are dropped silently.
func (s *ChatService) SearchMessages(ctx context.Context, rawQuery string) ([]domain.Message, error) {
	if s.index == nil {
		return []domain.Message{}, nil
	}

	ids, err := s.index.Search(ctx, search.ParseQuery(rawQuery))
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.FilterMap(ids, func(id uuid.UUID, _ int) (domain.Message, bool) {
		message, ok := s.messages[id]
		return message, ok
	}), nil
}

// Typing builds the transient typing indicator event for a room.
// Nothing is stored; the username is resolved when the user is known.
func (s *ChatService) Typing(roomID domain.RoomID, userID domain.UserID, isTyping bool) event.UserTyping {
	s.mu.RLock()
	defer s.mu.RUnlock()

	username := ""
	if user, ok := s.users[userID]; ok {
		username = user.Username
	}
	return event.UserTyping{RoomID: roomID, UserID: userID, Username: username, IsTyping: isTyping}
}

// SetStatus updates the user's status and returns the presence event to
// broadcast. Unknown users are a no-op and yield nil.
func (s *ChatService) SetStatus(userID domain.UserID, status domain.UserStatus, customStatus string) *event.UserPresenceChanged {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return nil
	}
	user.Status = status
	s.users[userID] = user

	return &event.UserPresenceChanged{Presence: domain.Presence{
		UserID:       userID,
		Status:       status,
		CustomStatus: customStatus,
		LastSeenAt:   time.Now().UTC(),
	}}
}
