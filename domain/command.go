package domain

// Command is an inbound participant event, already decoded and validated by the transport.
type Command interface {
	Connection() ConnectionID
}

type CreateRoomCommand struct {
	ConnectionID ConnectionID
	Room         RoomID
	Player       Participant
}

type CheckRoomCommand struct {
	ConnectionID ConnectionID
	Room         RoomID
}

type JoinRoomCommand struct {
	ConnectionID ConnectionID
	Room         RoomID
	Player       Participant
	AsSpectator  bool
}

type UpdateRoomCommand struct {
	ConnectionID ConnectionID
	Room         RoomID
}

// RemovePlayerCommand removes a participant by name. Ack, when set, is echoed
// back to the sender with the outcome.
type RemovePlayerCommand struct {
	ConnectionID ConnectionID
	Room         RoomID
	Name         string
	Ack          *int64
}

type StartGameCommand struct {
	ConnectionID ConnectionID
	Room         RoomID
}

type JoinSpectatorRoomCommand struct {
	ConnectionID ConnectionID
	Room         RoomID
	Player       Participant
}

// LeaveRoomCommand is a voluntary leave of whatever room the sender belongs to.
type LeaveRoomCommand struct {
	ConnectionID ConnectionID
}

// DisconnectCommand is emitted by the transport when a connection goes away.
type DisconnectCommand struct {
	ConnectionID ConnectionID
}

func (c CreateRoomCommand) Connection() ConnectionID        { return c.ConnectionID }
func (c CheckRoomCommand) Connection() ConnectionID         { return c.ConnectionID }
func (c JoinRoomCommand) Connection() ConnectionID          { return c.ConnectionID }
func (c UpdateRoomCommand) Connection() ConnectionID        { return c.ConnectionID }
func (c RemovePlayerCommand) Connection() ConnectionID      { return c.ConnectionID }
func (c StartGameCommand) Connection() ConnectionID         { return c.ConnectionID }
func (c JoinSpectatorRoomCommand) Connection() ConnectionID { return c.ConnectionID }
func (c LeaveRoomCommand) Connection() ConnectionID         { return c.ConnectionID }
func (c DisconnectCommand) Connection() ConnectionID        { return c.ConnectionID }
