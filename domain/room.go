package domain

import (
	"slices"

	"github.com/samber/lo"
)

type RoomID string

func (id RoomID) String() string { return string(id) }

type State string

const (
	StateLobby   State = "Lobby"
	StateStarted State = "Started"
)

const DefaultMaxCapacity = 10

type Room struct {
	ID          RoomID        `json:"id"`
	Host        string        `json:"host"`
	State       State         `json:"state"`
	Players     []Participant `json:"players"`
	Spectators  []Participant `json:"spectators"`
	MaxCapacity int           `json:"maxCapacity"`
}

func NewRoom(id RoomID, creator Participant, maxCapacity int) *Room {
	return &Room{
		ID:          id,
		Host:        creator.Name,
		State:       StateLobby,
		Players:     []Participant{creator},
		Spectators:  []Participant{},
		MaxCapacity: maxCapacity,
	}
}

// IsEmpty reports whether the room holds neither players nor spectators.
func (r *Room) IsEmpty() bool {
	return len(r.Players) == 0 && len(r.Spectators) == 0
}

func (r *Room) IsFull() bool {
	return len(r.Players) >= r.MaxCapacity
}

// HasName looks for the name among players and spectators.
func (r *Room) HasName(name string) bool {
	byName := func(p Participant) bool { return p.Name == name }
	return lo.ContainsBy(r.Players, byName) || lo.ContainsBy(r.Spectators, byName)
}

// MemberByConnection returns the player or spectator backed by the connection.
func (r *Room) MemberByConnection(id ConnectionID) (Participant, bool) {
	byConn := func(p Participant) bool { return p.ConnectionID == id }
	if p, ok := lo.Find(r.Players, byConn); ok {
		return p, true
	}
	return lo.Find(r.Spectators, byConn)
}

func (r *Room) Connections() []ConnectionID {
	all := append(slices.Clone(r.Players), r.Spectators...)
	return lo.Uniq(lo.FilterMap(all, func(p Participant, _ int) (ConnectionID, bool) {
		return p.ConnectionID, p.ConnectionID != ""
	}))
}

// Snapshot returns a deep copy safe to hand over to sinks running on other goroutines.
func (r *Room) Snapshot() Room {
	snapshot := *r
	snapshot.Players = cloneParticipants(r.Players)
	snapshot.Spectators = cloneParticipants(r.Spectators)
	return snapshot
}

func cloneParticipants(participants []Participant) []Participant {
	return lo.Map(participants, func(p Participant, _ int) Participant {
		p.Level = slices.Clone(p.Level)
		return p
	})
}

func (r *Room) removePlayer(name string) bool {
	before := len(r.Players)
	r.Players = lo.Reject(r.Players, func(p Participant, _ int) bool { return p.Name == name })
	removed := len(r.Players) != before
	if removed && r.Host == name && len(r.Players) > 0 {
		r.Host = r.Players[0].Name
	}
	return removed
}

func (r *Room) removeSpectator(name string) bool {
	before := len(r.Spectators)
	r.Spectators = lo.Reject(r.Spectators, func(p Participant, _ int) bool { return p.Name == name })
	return len(r.Spectators) != before
}
