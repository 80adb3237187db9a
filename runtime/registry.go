package runtime

import (
	"sync"

	"lobby-lab/contract"
	"lobby-lab/domain"
)

var _ contract.IRegistry = (*Registry)(nil)

type Set map[domain.ConnectionID]struct{}

type Registry struct {
	mu          sync.RWMutex
	Sessions    map[domain.ConnectionID]contract.EventSink // map connection -> Sink
	RoomMembers map[domain.RoomID]Set                      // map room to connections, the broadcast group
	Memberships map[domain.ConnectionID]contract.Membership
}

func NewRegistry() *Registry {
	return &Registry{
		Sessions:    make(map[domain.ConnectionID]contract.EventSink),
		RoomMembers: make(map[domain.RoomID]Set),
		Memberships: make(map[domain.ConnectionID]contract.Membership),
	}
}

// Register records the sink serving a live connection.
func (r *Registry) Register(connectionID domain.ConnectionID, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Sessions[connectionID] = sink
}

// Unregister forgets the connection, its membership and its place in any broadcast group.
func (r *Registry) Unregister(connectionID domain.ConnectionID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.Sessions, connectionID)
	if m, ok := r.Memberships[connectionID]; ok {
		r.leaveGroup(connectionID, m.Room)
	}
	delete(r.Memberships, connectionID)
}

func (r *Registry) Sink(connectionID domain.ConnectionID) (contract.EventSink, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sink, ok := r.Sessions[connectionID]
	return sink, ok
}

// Subscribe assigns a connection to a room's broadcast group.
// If the room does not yet exist in the registry, it is initialized on the fly.
func (r *Registry) Subscribe(connectionID domain.ConnectionID, roomID domain.RoomID, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.RoomMembers[roomID]; !ok {
		r.RoomMembers[roomID] = make(Set)
	}
	r.RoomMembers[roomID][connectionID] = struct{}{}
	r.Memberships[connectionID] = contract.Membership{Room: roomID, Name: name}
}

// Unsubscribe removes a connection from the room's broadcast group and drops its
// membership when it pointed at that room. The session itself stays registered.
func (r *Registry) Unsubscribe(connectionID domain.ConnectionID, roomID domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.leaveGroup(connectionID, roomID)
	if m, ok := r.Memberships[connectionID]; ok && m.Room == roomID {
		delete(r.Memberships, connectionID)
	}
}

func (r *Registry) leaveGroup(connectionID domain.ConnectionID, roomID domain.RoomID) {
	if members, ok := r.RoomMembers[roomID]; ok {
		delete(members, connectionID)
		// If no one is left in the room, remove the room entry entirely
		if len(members) == 0 {
			delete(r.RoomMembers, roomID)
		}
	}
}

func (r *Registry) Membership(connectionID domain.ConnectionID) (contract.Membership, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.Memberships[connectionID]
	return m, ok
}

// GetSinksForRoom resolves the broadcast group of a room into live sinks.
// Returns nil if the room doesn't exist or has no members.
func (r *Registry) GetSinksForRoom(roomID domain.RoomID) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.RoomMembers[roomID]
	if !ok {
		return nil
	}
	var activeSinks []contract.EventSink
	for connectionID := range members {
		if sink, exists := r.Sessions[connectionID]; exists {
			activeSinks = append(activeSinks, sink)
		}
	}
	return activeSinks
}

// DropRoom removes the broadcast group and every membership pointing at the room.
func (r *Registry) DropRoom(roomID domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for connectionID := range r.RoomMembers[roomID] {
		if m, ok := r.Memberships[connectionID]; ok && m.Room == roomID {
			delete(r.Memberships, connectionID)
		}
	}
	delete(r.RoomMembers, roomID)
}

func (r *Registry) Count() (int, int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.Sessions), len(r.RoomMembers)
}
