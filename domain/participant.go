// Package domain contains core concepts of the lobby system.
// This file defines Participant entities and related invariants.
// No runtime, network, or UI logic should be added here.
package domain

import "encoding/json"

// ConnectionID identifies the transport connection currently backing a participant.
type ConnectionID string

func (c ConnectionID) String() string { return string(c) }

// Participant is a player or a spectator of a room.
// Name is the identity inside a room, ConnectionID is only used for liveness tracking
// and is never broadcast.
type Participant struct {
	ConnectionID ConnectionID    `json:"-"`
	Name         string          `json:"name"`
	Level        json.RawMessage `json:"level,omitempty"`
}

func (p Participant) HasName() bool {
	return p.Name != ""
}
