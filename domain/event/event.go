package event

import (
	"lobby-lab/domain"
)

type Type string

// Outbound event names as seen by clients.
const (
	RoomUpdateType      Type = "room-update"
	GameStartedType     Type = "game-started"
	SpectatorJoinedType Type = "spectator-joined"
	RoomExistsType      Type = "room-exists"
	AckType             Type = "ack"
	CreateErrorType     Type = "create-error"
	JoinErrorType       Type = "join-error"
	RemoveErrorType     Type = "remove-error"
	StartErrorType      Type = "start-error"
	ProtocolErrorType   Type = "error"

	// RoomDeletedType never reaches a connection, only permanent sinks see it.
	RoomDeletedType Type = "room-deleted"
)

type DomainEvent interface {
	Type() Type
	RoomID() domain.RoomID
}

// RoomUpdated carries the full room snapshot.
type RoomUpdated struct {
	Room domain.Room
}

type GameStarted struct {
	Room domain.RoomID
}

type SpectatorJoined struct {
	Room   domain.RoomID
	Player domain.Participant
}

type RoomExists struct {
	Room   domain.RoomID
	Exists bool
}

type Acknowledged struct {
	Room domain.RoomID
	ID   int64
	OK   bool
}

// Failure is replied to the originating connection only.
type Failure struct {
	Kind    Type
	Room    domain.RoomID
	Message string
}

type RoomDeleted struct {
	Room domain.RoomID
}

func (e RoomUpdated) Type() Type     { return RoomUpdateType }
func (e GameStarted) Type() Type     { return GameStartedType }
func (e SpectatorJoined) Type() Type { return SpectatorJoinedType }
func (e RoomExists) Type() Type      { return RoomExistsType }
func (e Acknowledged) Type() Type    { return AckType }
func (e Failure) Type() Type         { return e.Kind }
func (e RoomDeleted) Type() Type     { return RoomDeletedType }

func (e RoomUpdated) RoomID() domain.RoomID     { return e.Room.ID }
func (e GameStarted) RoomID() domain.RoomID     { return e.Room }
func (e SpectatorJoined) RoomID() domain.RoomID { return e.Room }
func (e RoomExists) RoomID() domain.RoomID      { return e.Room }
func (e Acknowledged) RoomID() domain.RoomID    { return e.Room }
func (e Failure) RoomID() domain.RoomID         { return e.Room }
func (e RoomDeleted) RoomID() domain.RoomID     { return e.Room }
