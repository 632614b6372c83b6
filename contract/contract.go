//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-hub/domain"
	"chat-hub/domain/event"
	"context"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink consumes events delivered out of the hub pipeline,
// typically a projection or a metrics collector.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// IHub is the routing surface: it knows which connections are alive and
// what they subscribe to, and it enqueues events without message semantics.
type IHub interface {
	BroadcastToRoom(roomID domain.RoomID, e event.DomainEvent) int
	Broadcast(e event.DomainEvent) int
	SendToUser(userID domain.UserID, e event.DomainEvent) int
	SendToConnection(connectionID domain.ConnectionID, e event.DomainEvent) bool
}
