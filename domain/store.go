package domain

import (
	"fmt"
	"slices"

	"lobby-lab/errors"

	"github.com/samber/lo"
)

// CapacityPolicy decides what happens to a join on a room whose players are at capacity.
type CapacityPolicy string

const (
	// CapacitySpectate redirects the participant to the spectators.
	CapacitySpectate CapacityPolicy = "spectate"
	// CapacityReject fails the join with errors.ErrRoomFull.
	CapacityReject CapacityPolicy = "reject"
)

type JoinResult int

const (
	JoinedAsPlayer JoinResult = iota + 1
	JoinedAsSpectator
)

type StoreOptions struct {
	MaxCapacity    int
	CapacityPolicy CapacityPolicy
}

func DefaultStoreOptions() StoreOptions {
	return StoreOptions{MaxCapacity: DefaultMaxCapacity, CapacityPolicy: CapacitySpectate}
}

// Store owns the authoritative mapping from room identifier to room state.
// It is not safe for concurrent use: a single writer (the router worker) drives it.
// The store never deletes a room as a side effect of a leave, the caller decides.
type Store struct {
	rooms map[RoomID]*Room
	opts  StoreOptions
}

func NewStore(opts StoreOptions) *Store {
	if opts.MaxCapacity <= 0 {
		opts.MaxCapacity = DefaultMaxCapacity
	}
	if opts.CapacityPolicy == "" {
		opts.CapacityPolicy = CapacitySpectate
	}
	return &Store{rooms: make(map[RoomID]*Room), opts: opts}
}

func (s *Store) Create(id RoomID, creator Participant) (*Room, error) {
	if !creator.HasName() {
		return nil, errors.ErrInvalidPlayer
	}
	if _, ok := s.rooms[id]; ok {
		return nil, fmt.Errorf("create %s: %w", id, errors.ErrRoomAlreadyExists)
	}
	room := NewRoom(id, creator, s.opts.MaxCapacity)
	s.rooms[id] = room
	return room, nil
}

// Join appends the participant to the players, or to the spectators once the
// players reached capacity under the spectate policy.
func (s *Store) Join(id RoomID, p Participant) (JoinResult, error) {
	room, err := s.joinable(id, p)
	if err != nil {
		return 0, err
	}
	if room.IsFull() {
		if s.opts.CapacityPolicy == CapacityReject {
			return 0, fmt.Errorf("join %s: %w", id, errors.ErrRoomFull)
		}
		room.Spectators = append(room.Spectators, p)
		return JoinedAsSpectator, nil
	}
	room.Players = append(room.Players, p)
	return JoinedAsPlayer, nil
}

func (s *Store) JoinSpectator(id RoomID, p Participant) error {
	room, err := s.joinable(id, p)
	if err != nil {
		return err
	}
	room.Spectators = append(room.Spectators, p)
	return nil
}

func (s *Store) joinable(id RoomID, p Participant) (*Room, error) {
	room, ok := s.rooms[id]
	if !ok {
		return nil, fmt.Errorf("join %s: %w", id, errors.ErrRoomNotFound)
	}
	if !p.HasName() {
		return nil, errors.ErrInvalidPlayer
	}
	// A name is unique across players and spectators of the same room.
	if room.HasName(p.Name) {
		return nil, fmt.Errorf("join %s as %q: %w", id, p.Name, errors.ErrDuplicateName)
	}
	return room, nil
}

// LeaveByName removes the player with the given name. An absent name is a no-op.
func (s *Store) LeaveByName(id RoomID, name string) (*Room, bool, error) {
	room, ok := s.rooms[id]
	if !ok {
		return nil, false, fmt.Errorf("leave %s: %w", id, errors.ErrRoomNotFound)
	}
	return room, room.removePlayer(name), nil
}

// LeaveSpectatorByName removes the spectator with the given name. An absent name is a no-op.
func (s *Store) LeaveSpectatorByName(id RoomID, name string) (*Room, bool, error) {
	room, ok := s.rooms[id]
	if !ok {
		return nil, false, fmt.Errorf("leave %s: %w", id, errors.ErrRoomNotFound)
	}
	return room, room.removeSpectator(name), nil
}

// Start moves the room to Started. Starting an already started room is a no-op.
func (s *Store) Start(id RoomID) error {
	room, ok := s.rooms[id]
	if !ok {
		return fmt.Errorf("start %s: %w", id, errors.ErrRoomNotFound)
	}
	room.State = StateStarted
	return nil
}

func (s *Store) Get(id RoomID) (*Room, bool) {
	room, ok := s.rooms[id]
	return room, ok
}

func (s *Store) Exists(id RoomID) bool {
	_, ok := s.rooms[id]
	return ok
}

func (s *Store) Delete(id RoomID) {
	delete(s.rooms, id)
}

// IDs returns the room identifiers in a stable order.
func (s *Store) IDs() []RoomID {
	ids := lo.Keys(s.rooms)
	slices.Sort(ids)
	return ids
}

func (s *Store) Len() int {
	return len(s.rooms)
}

func (s *Store) Options() StoreOptions {
	return s.opts
}
