package runtime

import (
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"chat-hub/domain"
	"chat-hub/domain/event"
	"chat-hub/observability"
)

func newTestHub() *Hub {
	log := slog.Default()
	return NewHub(log, observability.NewHubMetrics(log))
}

func drain(mailbox *Mailbox) []event.DomainEvent {
	var events []event.DomainEvent
	for {
		select {
		case e := <-mailbox.Events():
			events = append(events, e)
		default:
			return events
		}
	}
}

func TestHub_RegisterConnection_Increments_Count(t *testing.T) {
	req := require.New(t)
	hub := newTestHub()
	connectionID := domain.ConnectionID(uuid.NewString())

	// Given an empty hub
	req.Equal(0, hub.ConnectionCount())

	// When a connection registers
	hub.RegisterConnection(connectionID, NewMailbox(8), "alice")

	// Then the count increases by exactly 1
	req.Equal(1, hub.ConnectionCount())

	// And unregistering brings it back down
	hub.UnregisterConnection(connectionID)
	req.Equal(0, hub.ConnectionCount())
}

func TestHub_UnregisterConnection_Unknown_Is_A_NoOp(t *testing.T) {
	req := require.New(t)
	hub := newTestHub()
	hub.RegisterConnection("conn-1", NewMailbox(8), "alice")

	// When an unknown connection unregisters
	hub.UnregisterConnection("never-registered")

	// Then nothing changes
	req.Equal(1, hub.ConnectionCount())
}

func TestHub_Register_With_InitialRooms_Subscribes(t *testing.T) {
	req := require.New(t)
	hub := newTestHub()
	roomID := domain.RoomID(uuid.NewString())

	// When a connection registers with an initial room
	hub.RegisterConnection("conn-1", NewMailbox(8), "alice", roomID)
	req.Equal(1, hub.RoomConnectionCount(roomID))

	// And a second connection subscribes afterwards
	hub.RegisterConnection("conn-2", NewMailbox(8), "bob")
	hub.SubscribeToRoom("conn-2", roomID)
	req.Equal(2, hub.RoomConnectionCount(roomID))

	// Then unsubscribing drops it back to 1
	hub.UnsubscribeFromRoom("conn-2", roomID)
	req.Equal(1, hub.RoomConnectionCount(roomID))
}

func TestHub_Unregister_Purges_Room_Subscriptions(t *testing.T) {
	req := require.New(t)
	hub := newTestHub()
	roomID := domain.RoomID(uuid.NewString())

	// Given a connection subscribed via registration
	hub.RegisterConnection("conn-1", NewMailbox(8), "alice", roomID)
	req.Equal(1, hub.RoomConnectionCount(roomID))

	// When it unregisters
	hub.UnregisterConnection("conn-1")

	// Then the room set is empty again
	req.Equal(0, hub.RoomConnectionCount(roomID))
	req.Empty(hub.RoomUsers(roomID))
}

func TestHub_Subscribe_Unknown_Connection_Does_Not_Create_Registration(t *testing.T) {
	req := require.New(t)
	hub := newTestHub()
	roomID := domain.RoomID(uuid.NewString())

	// When an unknown connection subscribes
	hub.SubscribeToRoom("ghost", roomID)

	// Then no registration or subscription appears
	req.Equal(0, hub.ConnectionCount())
	req.Equal(0, hub.RoomConnectionCount(roomID))
}

func TestHub_ReRegister_Same_Connection_Last_Write_Wins(t *testing.T) {
	req := require.New(t)
	hub := newTestHub()
	roomA := domain.RoomID("room-a")
	roomB := domain.RoomID("room-b")

	// Given a connection registered for alice in room A
	hub.RegisterConnection("conn-1", NewMailbox(8), "alice", roomA)

	// When the same id re-registers for bob in room B
	hub.RegisterConnection("conn-1", NewMailbox(8), "bob", roomB)

	// Then the old registration is fully replaced
	req.Equal(1, hub.ConnectionCount())
	req.Equal(0, hub.RoomConnectionCount(roomA))
	req.Equal(1, hub.RoomConnectionCount(roomB))
	req.Equal([]domain.UserID{"bob"}, hub.RoomUsers(roomB))
	req.Equal(0, hub.SendToUser("alice", typingEvent("x")))
	req.Equal(1, hub.SendToUser("bob", typingEvent("x")))
}

func TestHub_BroadcastToRoom_FanOut_And_Order(t *testing.T) {
	req := require.New(t)
	hub := newTestHub()
	roomID := domain.RoomID(uuid.NewString())

	// Given three connections subscribed to the room
	mailboxes := make([]*Mailbox, 3)
	for i := range mailboxes {
		mailboxes[i] = NewMailbox(8)
		connectionID := domain.ConnectionID(fmt.Sprintf("conn-%d", i))
		hub.RegisterConnection(connectionID, mailboxes[i], domain.UserID(fmt.Sprintf("user-%d", i)), roomID)
	}

	// When two events are broadcast in order
	first := typingEvent("alice")
	second := event.UserLeftRoom{RoomID: roomID, UserID: "alice"}
	req.Equal(3, hub.BroadcastToRoom(roomID, first))
	req.Equal(3, hub.BroadcastToRoom(roomID, second))

	// Then each mailbox holds both events, in submission order
	for _, mailbox := range mailboxes {
		events := drain(mailbox)
		req.Len(events, 2)
		req.Equal(event.UserTypingType, events[0].Tag())
		req.Equal(event.UserLeftRoomType, events[1].Tag())
	}
}

func TestHub_BroadcastToRoom_Unknown_Room_Delivers_To_Nobody(t *testing.T) {
	req := require.New(t)
	hub := newTestHub()
	hub.RegisterConnection("conn-1", NewMailbox(8), "alice")

	req.Equal(0, hub.BroadcastToRoom("nowhere", typingEvent("alice")))
}

func TestHub_Broadcast_Reaches_All_Connections(t *testing.T) {
	req := require.New(t)
	hub := newTestHub()
	aliceBox := NewMailbox(8)
	bobBox := NewMailbox(8)
	hub.RegisterConnection("conn-a", aliceBox, "alice", "room-1")
	hub.RegisterConnection("conn-b", bobBox, "bob")

	// When broadcasting without a room scope
	count := hub.Broadcast(typingEvent("alice"))

	// Then every registered connection received it, subscribed or not
	req.Equal(2, count)
	req.Len(drain(aliceBox), 1)
	req.Len(drain(bobBox), 1)
}

func TestHub_SendToUser_Targets_All_Their_Connections(t *testing.T) {
	req := require.New(t)
	hub := newTestHub()

	// Given alice on two devices and bob on one
	alicePhone := NewMailbox(8)
	aliceLaptop := NewMailbox(8)
	bobBox := NewMailbox(8)
	hub.RegisterConnection("alice-phone", alicePhone, "alice")
	hub.RegisterConnection("alice-laptop", aliceLaptop, "alice")
	hub.RegisterConnection("bob-phone", bobBox, "bob")

	// When sending to alice
	req.Equal(2, hub.SendToUser("alice", typingEvent("bob")))

	// Then both of her mailboxes got it and bob's did not
	req.Len(drain(alicePhone), 1)
	req.Len(drain(aliceLaptop), 1)
	req.Empty(drain(bobBox))

	// And an unknown user delivers to nobody
	req.Equal(0, hub.SendToUser("mallory", typingEvent("bob")))
}

func TestHub_SendToConnection_Exactly_One_Delivery(t *testing.T) {
	req := require.New(t)
	hub := newTestHub()
	mailbox := NewMailbox(8)
	hub.RegisterConnection("conn-1", mailbox, "alice")

	// Known id: delivered
	req.True(hub.SendToConnection("conn-1", typingEvent("bob")))
	req.Len(drain(mailbox), 1)

	// Unknown id: false, nothing enqueued anywhere
	req.False(hub.SendToConnection("ghost", typingEvent("bob")))
	req.Empty(drain(mailbox))
}

func TestHub_RoomUsers_Deduplicates_MultiConnection_Users(t *testing.T) {
	req := require.New(t)
	hub := newTestHub()
	roomID := domain.RoomID(uuid.NewString())

	// Given alice subscribed twice and bob once
	hub.RegisterConnection("alice-phone", NewMailbox(8), "alice", roomID)
	hub.RegisterConnection("alice-laptop", NewMailbox(8), "alice", roomID)
	hub.RegisterConnection("bob-phone", NewMailbox(8), "bob", roomID)

	// Then alice counts once in presence
	req.ElementsMatch([]domain.UserID{"alice", "bob"}, hub.RoomUsers(roomID))

	// And an unknown room yields no users
	req.Empty(hub.RoomUsers("nowhere"))
}

// Churn many concurrent registrations, subscriptions, and broadcasts,
// then check that the three indices are still consistent.
func TestHub_Concurrent_Churn_Keeps_Indices_Consistent(t *testing.T) {
	req := require.New(t)
	hub := newTestHub()
	roomID := domain.RoomID("busy-room")

	const connections = 50
	var wg sync.WaitGroup
	for i := 0; i < connections; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			connectionID := domain.ConnectionID(fmt.Sprintf("conn-%d", i))
			userID := domain.UserID(fmt.Sprintf("user-%d", i%10))
			hub.RegisterConnection(connectionID, NewMailbox(8), userID, roomID)
			hub.BroadcastToRoom(roomID, typingEvent(string(userID)))
			hub.SubscribeToRoom(connectionID, "other-room")
			hub.UnsubscribeFromRoom(connectionID, "other-room")
			if i%2 == 0 {
				hub.UnregisterConnection(connectionID)
			}
		}(i)
	}
	wg.Wait()

	// Half the connections survived
	req.Equal(connections/2, hub.ConnectionCount())
	req.Equal(connections/2, hub.RoomConnectionCount(roomID))
	req.Equal(0, hub.RoomConnectionCount("other-room"))

	// Every surviving connection is reachable and every room user resolves
	// to a live registration
	for i := 1; i < connections; i += 2 {
		connectionID := domain.ConnectionID(fmt.Sprintf("conn-%d", i))
		req.True(hub.SendToConnection(connectionID, typingEvent("check")))
	}
	req.Len(hub.RoomUsers(roomID), 5) // user-1, user-3, user-5, user-7, user-9
}
