package errors

import (
	stderrors "errors"
	"fmt"
)

var (
	ErrWorkerPanic       = fmt.Errorf("worker panic")
	ErrCommandQueueFull  = fmt.Errorf("command queue is full")
	ErrRoomNotFound      = fmt.Errorf("room not found")
	ErrRoomAlreadyExists = fmt.Errorf("room already exists")
	ErrDuplicateName     = fmt.Errorf("player name already exists in this room")
	ErrInvalidPlayer     = fmt.Errorf("player name is required")
	ErrRoomFull          = fmt.Errorf("room is full")
	ErrAlreadyInRoom     = fmt.Errorf("connection already belongs to a room")
	ErrUnknownEvent      = fmt.Errorf("unknown event")
	ErrInvalidPayload    = fmt.Errorf("invalid payload")
	ErrSinkFull          = fmt.Errorf("sink buffer is full")
	ErrSinkClosed        = fmt.Errorf("sink is closed")
)

// Message turns an error into the human-readable string carried by a *-error event.
// Unknown errors are reported with their own text.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case stderrors.Is(err, ErrRoomNotFound):
		return "Room does not exist"
	case stderrors.Is(err, ErrRoomAlreadyExists):
		return "Room already exists"
	case stderrors.Is(err, ErrDuplicateName):
		return "Player name already exists in this room"
	case stderrors.Is(err, ErrInvalidPlayer):
		return "Player name is required"
	case stderrors.Is(err, ErrRoomFull):
		return "Room is full"
	case stderrors.Is(err, ErrAlreadyInRoom):
		return "Already in a room"
	case stderrors.Is(err, ErrUnknownEvent):
		return "Unknown event"
	case stderrors.Is(err, ErrInvalidPayload):
		return "Invalid payload"
	default:
		return err.Error()
	}
}
