// Package runtime owns the live side of the chat system: connection
// registrations, room subscriptions, and event delivery into per-connection
// mailboxes. It never inspects message content.
package runtime

import (
	"log/slog"
	"sync"

	"chat-hub/domain"
	"chat-hub/domain/event"
	"chat-hub/observability"
)

type connectionSet map[domain.ConnectionID]struct{}

// registration holds everything the hub knows about one live connection.
type registration struct {
	id      domain.ConnectionID
	userID  domain.UserID
	mailbox *Mailbox
	rooms   map[domain.RoomID]struct{}
}

// Hub routes events to live connections.
//
// It maintains three coupled indices under a single lock:
//
//	connections     connectionID -> registration
//	userConnections userID       -> set of connectionIDs
//	roomConnections roomID       -> set of connectionIDs
//
// Every mutating operation applies atomically: a connectionID is never
// visible in a user or room set without its registration, and queries
// always observe a consistent snapshot across the three maps.
//
// Hub is safe for concurrent use by multiple goroutines.
type Hub struct {
	mu              sync.RWMutex
	log             *slog.Logger
	metrics         *observability.HubMetrics
	connections     map[domain.ConnectionID]*registration
	userConnections map[domain.UserID]connectionSet
	roomConnections map[domain.RoomID]connectionSet
}

func NewHub(log *slog.Logger, metrics *observability.HubMetrics) *Hub {
	return &Hub{
		log:             log,
		metrics:         metrics,
		connections:     make(map[domain.ConnectionID]*registration),
		userConnections: make(map[domain.UserID]connectionSet),
		roomConnections: make(map[domain.RoomID]connectionSet),
	}
}

// RegisterConnection creates a registration for a freshly accepted transport
// session and subscribes it to initialRooms. Re-registering an existing
// connectionID overwrites the previous registration, last write wins.
func (h *Hub) RegisterConnection(connectionID domain.ConnectionID, mailbox *Mailbox,
	userID domain.UserID, initialRooms ...domain.RoomID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.connections[connectionID]; ok {
		h.removeLocked(connectionID)
	}

	reg := &registration{
		id:      connectionID,
		userID:  userID,
		mailbox: mailbox,
		rooms:   make(map[domain.RoomID]struct{}, len(initialRooms)),
	}
	h.connections[connectionID] = reg

	if _, ok := h.userConnections[userID]; !ok {
		h.userConnections[userID] = make(connectionSet)
	}
	h.userConnections[userID][connectionID] = struct{}{}

	for _, roomID := range initialRooms {
		reg.rooms[roomID] = struct{}{}
		if _, ok := h.roomConnections[roomID]; !ok {
			h.roomConnections[roomID] = make(connectionSet)
		}
		h.roomConnections[roomID][connectionID] = struct{}{}
	}

	h.metrics.IncrRegistered()
	h.log.Debug("Connection registered", "connection", connectionID, "user", userID)
}

// UnregisterConnection purges the connection from every index.
// Unknown connectionIDs are a safe no-op: transports routinely
// unregister twice around a reconnect.
func (h *Hub) UnregisterConnection(connectionID domain.ConnectionID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.connections[connectionID]; !ok {
		return
	}
	h.removeLocked(connectionID)
	h.metrics.IncrUnregistered()
	h.log.Debug("Connection unregistered", "connection", connectionID)
}

// removeLocked detaches a known connection from all three indices.
// Callers must hold the write lock.
func (h *Hub) removeLocked(connectionID domain.ConnectionID) {
	reg := h.connections[connectionID]
	delete(h.connections, connectionID)

	if set, ok := h.userConnections[reg.userID]; ok {
		delete(set, connectionID)
		if len(set) == 0 {
			delete(h.userConnections, reg.userID)
		}
	}

	for roomID := range reg.rooms {
		h.detachFromRoomLocked(connectionID, roomID)
	}
}

func (h *Hub) detachFromRoomLocked(connectionID domain.ConnectionID, roomID domain.RoomID) {
	set, ok := h.roomConnections[roomID]
	if !ok {
		return
	}
	delete(set, connectionID)
	// No empty sets are left behind, to avoid unbounded growth
	// as rooms come and go.
	if len(set) == 0 {
		delete(h.roomConnections, roomID)
	}
}

// SubscribeToRoom adds the connection to a room's delivery set.
// It does not create a registration: subscribing an unknown connection
// is a no-op. Domain membership is deliberately not checked here,
// ad-hoc subscriptions are allowed.
func (h *Hub) SubscribeToRoom(connectionID domain.ConnectionID, roomID domain.RoomID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	reg, ok := h.connections[connectionID]
	if !ok {
		return
	}
	reg.rooms[roomID] = struct{}{}
	if _, ok := h.roomConnections[roomID]; !ok {
		h.roomConnections[roomID] = make(connectionSet)
	}
	h.roomConnections[roomID][connectionID] = struct{}{}
}

// UnsubscribeFromRoom removes the connection from a room's delivery set.
// Safe no-op for unknown connections or rooms.
func (h *Hub) UnsubscribeFromRoom(connectionID domain.ConnectionID, roomID domain.RoomID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	reg, ok := h.connections[connectionID]
	if !ok {
		return
	}
	delete(reg.rooms, roomID)
	h.detachFromRoomLocked(connectionID, roomID)
}

// BroadcastToRoom enqueues e to every connection currently subscribed to
// the room and returns how many mailboxes received it. An unknown or empty
// room delivers to nobody, which is a legitimate outcome rather than an error.
func (h *Hub) BroadcastToRoom(roomID domain.RoomID, e event.DomainEvent) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	h.metrics.IncrBroadcasts()
	count := 0
	for connectionID := range h.roomConnections[roomID] {
		if reg, ok := h.connections[connectionID]; ok {
			h.deliver(reg, e)
			count++
		}
	}
	h.metrics.AddDelivered(uint64(count))
	return count
}

// Broadcast enqueues e to every registered connection.
func (h *Hub) Broadcast(e event.DomainEvent) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	h.metrics.IncrBroadcasts()
	for _, reg := range h.connections {
		h.deliver(reg, e)
	}
	count := len(h.connections)
	h.metrics.AddDelivered(uint64(count))
	return count
}

// SendToUser enqueues e to every live connection of one user,
// 0..n deliveries depending on how many sessions the user holds.
func (h *Hub) SendToUser(userID domain.UserID, e event.DomainEvent) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	count := 0
	for connectionID := range h.userConnections[userID] {
		if reg, ok := h.connections[connectionID]; ok {
			h.deliver(reg, e)
			count++
		}
	}
	h.metrics.AddDelivered(uint64(count))
	return count
}

// SendToConnection enqueues e to exactly one connection.
// It reports false for an unknown id: a connection that disappeared
// between lookup and send is a normal race, not a failure.
func (h *Hub) SendToConnection(connectionID domain.ConnectionID, e event.DomainEvent) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	reg, ok := h.connections[connectionID]
	if !ok {
		return false
	}
	h.deliver(reg, e)
	h.metrics.AddDelivered(1)
	return true
}

// deliver pushes into a mailbox under the read lock. Mailbox.Put never
// blocks (drop-oldest policy), so holding the lock here is bounded.
func (h *Hub) deliver(reg *registration, e event.DomainEvent) {
	if reg.mailbox == nil {
		return
	}
	if reg.mailbox.Put(e) {
		h.metrics.IncrDropped()
	}
}

func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

func (h *Hub) RoomConnectionCount(roomID domain.RoomID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.roomConnections[roomID])
}

// RoomUsers returns the distinct user ids among the room's currently
// subscribed connections. A user with several connections in the room
// counts once. Unknown rooms yield an empty slice.
func (h *Hub) RoomUsers(roomID domain.RoomID) []domain.UserID {
	h.mu.RLock()
	defer h.mu.RUnlock()

	seen := make(map[domain.UserID]struct{})
	users := make([]domain.UserID, 0)
	for connectionID := range h.roomConnections[roomID] {
		reg, ok := h.connections[connectionID]
		if !ok {
			continue
		}
		if _, dup := seen[reg.userID]; dup {
			continue
		}
		seen[reg.userID] = struct{}{}
		users = append(users, reg.userID)
	}
	return users
}
