//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"lobby-lab/domain"
	"lobby-lab/domain/event"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

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

type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// ICommandHandler applies one inbound command. Calls are never concurrent.
type ICommandHandler interface {
	Handle(ctx context.Context, cmd domain.Command)
}

// IRegistry tracks live connections, broadcast groups and room memberships.
type IRegistry interface {
	Register(connectionID domain.ConnectionID, sink EventSink)
	Unregister(connectionID domain.ConnectionID)
	Sink(connectionID domain.ConnectionID) (EventSink, bool)
	Subscribe(connectionID domain.ConnectionID, roomID domain.RoomID, name string)
	Unsubscribe(connectionID domain.ConnectionID, roomID domain.RoomID)
	Membership(connectionID domain.ConnectionID) (Membership, bool)
	GetSinksForRoom(roomID domain.RoomID) []EventSink
	DropRoom(roomID domain.RoomID)
	Count() (connections int, rooms int)
}

// Membership is the room a connection joined and the name it joined under.
type Membership struct {
	Room domain.RoomID
	Name string
}

type IOrchestrator interface {
	Dispatch(cmd domain.Command) error
	Connect(connectionID domain.ConnectionID, sink EventSink)
	Disconnect(connectionID domain.ConnectionID)
	Start(ctx context.Context) error
	Stop()
}
