package runtime

import (
	"context"
	"testing"

	"lobby-lab/domain"
	"lobby-lab/domain/event"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type Sink struct {
	name string
}

func (s Sink) Consume(ctx context.Context, e event.DomainEvent) error {
	return nil
}

func newConnectionID() domain.ConnectionID {
	return domain.ConnectionID(uuid.NewString())
}

func TestRegistry_Subscribe_One_Room_One_Connection(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	connectionID := newConnectionID()
	roomID := domain.RoomID("R1")
	sink := Sink{name: "alice"}

	// Given no connection is registered
	// And no room exists
	req.Empty(registry.Sessions)
	req.Empty(registry.RoomMembers)

	// When a connection registers and subscribes a room
	registry.Register(connectionID, sink)
	registry.Subscribe(connectionID, roomID, "Alice")

	// Then
	req.Len(registry.Sessions, 1)
	req.Equal(sink, registry.Sessions[connectionID])

	req.Len(registry.RoomMembers, 1)
	req.Contains(registry.RoomMembers[roomID], connectionID)

	req.Len(registry.GetSinksForRoom(roomID), 1)
	req.Contains(registry.GetSinksForRoom(roomID), sink)

	m, ok := registry.Membership(connectionID)
	req.True(ok)
	req.Equal(roomID, m.Room)
	req.Equal("Alice", m.Name)
}

func TestRegistry_Subscribe_One_Room_Multiple_Connections(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	connectionID1 := newConnectionID()
	connectionID2 := newConnectionID()
	roomID := domain.RoomID("R1")
	sink1 := Sink{name: "alice"}
	sink2 := Sink{name: "bob"}

	registry.Register(connectionID1, sink1)
	registry.Register(connectionID2, sink2)
	registry.Subscribe(connectionID1, roomID, "Alice")
	registry.Subscribe(connectionID2, roomID, "Bob")

	req.Len(registry.Sessions, 2)
	req.Len(registry.RoomMembers[roomID], 2)
	req.ElementsMatch([]any{sink1, sink2}, toAny(registry.GetSinksForRoom(roomID)))
}

func TestRegistry_Unsubscribe_Keeps_Session(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	connectionID := newConnectionID()
	roomID := domain.RoomID("R1")

	// Given a connection subscribed a room
	registry.Register(connectionID, Sink{})
	registry.Subscribe(connectionID, roomID, "Alice")

	// When it unsubscribes
	registry.Unsubscribe(connectionID, roomID)

	// Then the room group is gone but the connection is still live
	req.Empty(registry.RoomMembers)
	req.Nil(registry.GetSinksForRoom(roomID))
	_, ok := registry.Membership(connectionID)
	req.False(ok)
	_, ok = registry.Sink(connectionID)
	req.True(ok)
}

func TestRegistry_Unregister_Cleans_Everything(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	connectionID1 := newConnectionID()
	connectionID2 := newConnectionID()
	roomID := domain.RoomID("R1")
	sink2 := Sink{name: "bob"}

	registry.Register(connectionID1, Sink{name: "alice"})
	registry.Register(connectionID2, sink2)
	registry.Subscribe(connectionID1, roomID, "Alice")
	registry.Subscribe(connectionID2, roomID, "Bob")

	// When a connection goes away
	registry.Unregister(connectionID1)

	// Then only one connection is left in the group
	req.Len(registry.Sessions, 1)
	req.Len(registry.RoomMembers[roomID], 1)
	req.Equal([]any{sink2}, toAny(registry.GetSinksForRoom(roomID)))
	_, ok := registry.Membership(connectionID1)
	req.False(ok)
}

func TestRegistry_DropRoom(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	connectionID := newConnectionID()

	registry.Register(connectionID, Sink{})
	registry.Subscribe(connectionID, "R1", "Alice")

	registry.DropRoom("R1")

	req.Nil(registry.GetSinksForRoom("R1"))
	_, ok := registry.Membership(connectionID)
	req.False(ok)
	connections, rooms := registry.Count()
	req.Equal(1, connections)
	req.Equal(0, rooms)
}

func toAny[T any](items []T) []any {
	res := make([]any, 0, len(items))
	for _, item := range items {
		res = append(res, item)
	}
	return res
}
