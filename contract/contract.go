//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"campus-chat/domain"
	"campus-chat/domain/event"
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

// EventSink is one connection's outbound side. Consume must not block
// the dispatcher; transports buffer and drop instead.
type EventSink interface {
	Consume(ctx context.Context, e event.Outbound) error
}

// IPresence is the authoritative online-user mapping.
type IPresence interface {
	Register(conn domain.ConnID, nickname string) error
	Unregister(conn domain.ConnID) (string, bool)
	Lookup(conn domain.ConnID) (string, bool)
	Nicknames() []string
	Count() int
}

// IRooms tracks room membership for registered connections.
type IRooms interface {
	Join(roomID domain.RoomID, conn domain.ConnID)
	Leave(roomID domain.RoomID, conn domain.ConnID)
	Members(roomID domain.RoomID) []domain.ConnID
	RoomOf(conn domain.ConnID) (domain.RoomID, bool)
}

// IDispatcher fans outbound events out to selected connections.
type IDispatcher interface {
	Attach(conn domain.ConnID, sink EventSink)
	Detach(conn domain.ConnID)
	Dispatch(e event.Outbound, targets []domain.ConnID)
}

// ICoordinator drives each connection through its session lifecycle.
type ICoordinator interface {
	Connect(conn domain.ConnID, sink EventSink)
	Join(conn domain.ConnID, nickname string)
	Message(conn domain.ConnID, text string)
	Logout(conn domain.ConnID)
	Disconnect(conn domain.ConnID)
}
