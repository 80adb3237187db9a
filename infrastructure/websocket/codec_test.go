package websocket

import (
	"encoding/json"
	"testing"

	"lobby-lab/domain"
	"lobby-lab/domain/event"
	"lobby-lab/errors"

	"github.com/stretchr/testify/require"
)

func TestDecode_Commands(t *testing.T) {
	ack := int64(7)
	tests := []struct {
		name  string
		frame string
		want  domain.Command
	}{
		{
			name:  "create room",
			frame: `{"event":"create-room","data":{"roomId":"R1","player":{"name":"Alice","level":3}}}`,
			want: domain.CreateRoomCommand{ConnectionID: "c1", Room: "R1",
				Player: domain.Participant{Name: "Alice", Level: json.RawMessage(`3`)}},
		},
		{
			name:  "check room",
			frame: `{"event":"check-room","data":{"roomId":"R1"}}`,
			want:  domain.CheckRoomCommand{ConnectionID: "c1", Room: "R1"},
		},
		{
			name:  "join room as spectator",
			frame: `{"event":"join-room","data":{"roomId":"R1","player":{"name":"Bob","isSpectator":true}}}`,
			want: domain.JoinRoomCommand{ConnectionID: "c1", Room: "R1",
				Player: domain.Participant{Name: "Bob"}, AsSpectator: true},
		},
		{
			name:  "update room",
			frame: `{"event":"update-room","data":{"roomId":"R1"}}`,
			want:  domain.UpdateRoomCommand{ConnectionID: "c1", Room: "R1"},
		},
		{
			name:  "remove player with ack",
			frame: `{"event":"remove-player","ack":7,"data":{"roomId":"R1","name":"Bob"}}`,
			want:  domain.RemovePlayerCommand{ConnectionID: "c1", Room: "R1", Name: "Bob", Ack: &ack},
		},
		{
			name:  "start game",
			frame: `{"event":"start-game","data":{"roomId":"R1"}}`,
			want:  domain.StartGameCommand{ConnectionID: "c1", Room: "R1"},
		},
		{
			name:  "join spectator room",
			frame: `{"event":"join-spectator-room","data":{"roomId":"R1","player":{"name":"Carol"}}}`,
			want: domain.JoinSpectatorRoomCommand{ConnectionID: "c1", Room: "R1",
				Player: domain.Participant{Name: "Carol"}},
		},
		{
			name:  "leave room",
			frame: `{"event":"leave-room"}`,
			want:  domain.LeaveRoomCommand{ConnectionID: "c1"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := Decode("c1", []byte(tt.frame))
			require.NoError(t, err)
			require.Equal(t, tt.want, cmd)
		})
	}
}

func TestDecode_Errors_Name_The_Reply_Event(t *testing.T) {
	tests := []struct {
		name    string
		frame   string
		kind    event.Type
		target  error
		message string
	}{
		{"malformed json", `{"event":`, event.ProtocolErrorType, errors.ErrInvalidPayload, "Invalid payload"},
		{"unknown event", `{"event":"dance","data":{}}`, event.ProtocolErrorType, errors.ErrUnknownEvent, "Unknown event"},
		{"create without room", `{"event":"create-room","data":{"player":{"name":"Alice"}}}`, event.CreateErrorType, errors.ErrInvalidPayload, "Invalid payload"},
		{"join without data", `{"event":"join-room"}`, event.JoinErrorType, errors.ErrInvalidPayload, "Invalid payload"},
		{"remove with wrong type", `{"event":"remove-player","data":{"roomId":12}}`, event.RemoveErrorType, errors.ErrInvalidPayload, "Invalid payload"},
		{"start without room", `{"event":"start-game","data":{}}`, event.StartErrorType, errors.ErrInvalidPayload, "Invalid payload"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			_, err := Decode("c1", []byte(tt.frame))
			req.ErrorIs(err, tt.target)

			var decodeErr *DecodeError
			req.ErrorAs(err, &decodeErr)
			req.Equal(tt.kind, decodeErr.Kind)
			req.Equal(tt.message, decodeErr.Failure().Message)
		})
	}
}

func TestDecode_Remove_Error_Keeps_Ack(t *testing.T) {
	req := require.New(t)
	_, err := Decode("c1", []byte(`{"event":"remove-player","ack":3,"data":{}}`))

	var decodeErr *DecodeError
	req.ErrorAs(err, &decodeErr)
	req.NotNil(decodeErr.Ack)
	req.Equal(int64(3), *decodeErr.Ack)
}

func TestEncode(t *testing.T) {
	room := domain.NewRoom("R1", domain.Participant{ConnectionID: "c1", Name: "Alice", Level: json.RawMessage(`3`)}, 10)
	tests := []struct {
		name string
		in   event.DomainEvent
		want string
	}{
		{
			name: "room update",
			in:   event.RoomUpdated{Room: room.Snapshot()},
			want: `{"event":"room-update","data":{"id":"R1","host":"Alice","state":"Lobby",` +
				`"players":[{"name":"Alice","level":3}],"spectators":[],"maxCapacity":10}}`,
		},
		{
			name: "game started",
			in:   event.GameStarted{Room: "R1"},
			want: `{"event":"game-started"}`,
		},
		{
			name: "spectator joined",
			in:   event.SpectatorJoined{Room: "R1", Player: domain.Participant{ConnectionID: "c2", Name: "Carol"}},
			want: `{"event":"spectator-joined","data":{"roomId":"R1","player":{"name":"Carol"}}}`,
		},
		{
			name: "room exists false",
			in:   event.RoomExists{Room: "R1", Exists: false},
			want: `{"event":"room-exists","data":false}`,
		},
		{
			name: "ack",
			in:   event.Acknowledged{Room: "R1", ID: 7, OK: true},
			want: `{"event":"ack","ack":7,"data":true}`,
		},
		{
			name: "join error",
			in:   event.Failure{Kind: event.JoinErrorType, Room: "R1", Message: "Room does not exist"},
			want: `{"event":"join-error","data":"Room does not exist"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, err := Encode(tt.in)
			require.NoError(t, err)
			require.JSONEq(t, tt.want, string(frame))
		})
	}
}

func TestLevel_Is_Passed_Through_Unmodified(t *testing.T) {
	tests := []struct {
		name  string
		level string
	}{
		{"integer beyond float precision", `9007199254740993`},
		{"decimal with trailing zero", `12.50`},
		{"structured level", `{"tier":"gold","xp":1e3}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			frame := `{"event":"create-room","data":{"roomId":"R1","player":{"name":"Alice","level":` + tt.level + `}}}`
			cmd, err := Decode("c1", []byte(frame))
			req.NoError(err)

			create, ok := cmd.(domain.CreateRoomCommand)
			req.True(ok)
			req.Equal(json.RawMessage(tt.level), create.Player.Level)

			create.Player.ConnectionID = "c1"
			room := domain.NewRoom("R1", create.Player, 10)
			out, err := Encode(event.RoomUpdated{Room: room.Snapshot()})
			req.NoError(err)
			req.Contains(string(out), `"level":`+tt.level)
		})
	}
}
