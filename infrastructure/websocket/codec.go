package websocket

import (
	"encoding/json"
	"fmt"

	"lobby-lab/domain"
	"lobby-lab/domain/event"
	"lobby-lab/errors"

	"github.com/go-playground/validator/v10"
)

// Inbound event names.
const (
	CreateRoomEvent        = "create-room"
	CheckRoomEvent         = "check-room"
	JoinRoomEvent          = "join-room"
	UpdateRoomEvent        = "update-room"
	RemovePlayerEvent      = "remove-player"
	StartGameEvent         = "start-game"
	JoinSpectatorRoomEvent = "join-spectator-room"
	LeaveRoomEvent         = "leave-room"
)

var validate = validator.New()

// Envelope is the frame exchanged in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Ack   *int64          `json:"ack,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type outbound struct {
	Event string `json:"event"`
	Ack   *int64 `json:"ack,omitempty"`
	Data  any    `json:"data,omitempty"`
}

type PlayerPayload struct {
	Name        string          `json:"name" validate:"max=64"`
	Level       json.RawMessage `json:"level,omitempty"`
	IsSpectator bool            `json:"isSpectator,omitempty"`
}

type RoomPayload struct {
	RoomID string `json:"roomId" validate:"required,max=128"`
}

type JoinPayload struct {
	RoomID string        `json:"roomId" validate:"required,max=128"`
	Player PlayerPayload `json:"player"`
}

type RemovePayload struct {
	RoomID string `json:"roomId" validate:"required,max=128"`
	Name   string `json:"name" validate:"max=64"`
}

type SpectatorJoinedPayload struct {
	RoomID domain.RoomID      `json:"roomId"`
	Player domain.Participant `json:"player"`
}

// DecodeError tells which error event answers a frame that could not become a command.
type DecodeError struct {
	Kind event.Type
	Room domain.RoomID
	Ack  *int64
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Failure is the event replied to the sender for this decode error.
func (e *DecodeError) Failure() event.Failure {
	return event.Failure{Kind: e.Kind, Room: e.Room, Message: errors.Message(e.Err)}
}

// Decode parses one inbound frame into a command on behalf of the connection.
// Every returned error is a *DecodeError.
func Decode(connectionID domain.ConnectionID, frame []byte) (domain.Command, error) {
	var envelope Envelope
	if err := json.Unmarshal(frame, &envelope); err != nil {
		return nil, &DecodeError{Kind: event.ProtocolErrorType, Err: fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err)}
	}

	switch envelope.Event {
	case CreateRoomEvent:
		var p JoinPayload
		if err := decodeData(envelope.Data, &p); err != nil {
			return nil, &DecodeError{Kind: event.CreateErrorType, Room: domain.RoomID(p.RoomID), Err: err}
		}
		return domain.CreateRoomCommand{ConnectionID: connectionID, Room: domain.RoomID(p.RoomID),
			Player: toParticipant(p.Player)}, nil
	case CheckRoomEvent:
		var p RoomPayload
		if err := decodeData(envelope.Data, &p); err != nil {
			return nil, &DecodeError{Kind: event.ProtocolErrorType, Err: err}
		}
		return domain.CheckRoomCommand{ConnectionID: connectionID, Room: domain.RoomID(p.RoomID)}, nil
	case JoinRoomEvent:
		var p JoinPayload
		if err := decodeData(envelope.Data, &p); err != nil {
			return nil, &DecodeError{Kind: event.JoinErrorType, Room: domain.RoomID(p.RoomID), Err: err}
		}
		return domain.JoinRoomCommand{ConnectionID: connectionID, Room: domain.RoomID(p.RoomID),
			Player: toParticipant(p.Player), AsSpectator: p.Player.IsSpectator}, nil
	case UpdateRoomEvent:
		var p RoomPayload
		if err := decodeData(envelope.Data, &p); err != nil {
			return nil, &DecodeError{Kind: event.JoinErrorType, Err: err}
		}
		return domain.UpdateRoomCommand{ConnectionID: connectionID, Room: domain.RoomID(p.RoomID)}, nil
	case RemovePlayerEvent:
		var p RemovePayload
		if err := decodeData(envelope.Data, &p); err != nil {
			return nil, &DecodeError{Kind: event.RemoveErrorType, Room: domain.RoomID(p.RoomID), Ack: envelope.Ack, Err: err}
		}
		return domain.RemovePlayerCommand{ConnectionID: connectionID, Room: domain.RoomID(p.RoomID),
			Name: p.Name, Ack: envelope.Ack}, nil
	case StartGameEvent:
		var p RoomPayload
		if err := decodeData(envelope.Data, &p); err != nil {
			return nil, &DecodeError{Kind: event.StartErrorType, Err: err}
		}
		return domain.StartGameCommand{ConnectionID: connectionID, Room: domain.RoomID(p.RoomID)}, nil
	case JoinSpectatorRoomEvent:
		var p JoinPayload
		if err := decodeData(envelope.Data, &p); err != nil {
			return nil, &DecodeError{Kind: event.JoinErrorType, Room: domain.RoomID(p.RoomID), Err: err}
		}
		return domain.JoinSpectatorRoomCommand{ConnectionID: connectionID, Room: domain.RoomID(p.RoomID),
			Player: toParticipant(p.Player)}, nil
	case LeaveRoomEvent:
		return domain.LeaveRoomCommand{ConnectionID: connectionID}, nil
	default:
		return nil, &DecodeError{Kind: event.ProtocolErrorType, Err: fmt.Errorf("%w: %q", errors.ErrUnknownEvent, envelope.Event)}
	}
}

func decodeData(data json.RawMessage, target any) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: missing data", errors.ErrInvalidPayload)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err)
	}
	if err := validate.Struct(target); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err)
	}
	return nil
}

func toParticipant(p PlayerPayload) domain.Participant {
	return domain.Participant{Name: p.Name, Level: p.Level}
}

// Encode renders an outbound event as a frame.
func Encode(e event.DomainEvent) ([]byte, error) {
	out := outbound{Event: string(e.Type())}
	switch evt := e.(type) {
	case event.RoomUpdated:
		out.Data = evt.Room
	case event.GameStarted:
	case event.SpectatorJoined:
		out.Data = SpectatorJoinedPayload{RoomID: evt.Room, Player: evt.Player}
	case event.RoomExists:
		out.Data = evt.Exists
	case event.Acknowledged:
		out.Ack = &evt.ID
		out.Data = evt.OK
	case event.Failure:
		out.Data = evt.Message
	case event.RoomDeleted:
		out.Data = RoomPayload{RoomID: evt.Room.String()}
	default:
		return nil, fmt.Errorf("%w: %s", errors.ErrUnknownEvent, e.Type())
	}
	return json.Marshal(out)
}
