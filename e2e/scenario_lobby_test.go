package e2e

import (
	"encoding/json"
	"testing"

	"lobby-lab/client"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type testLobbySuite struct {
	BaseWebsocketSuite
}

func TestLobbySuite(t *testing.T) {
	suite.Run(t, &testLobbySuite{})
}

func (s *testLobbySuite) TestFullLobbyFlow() {
	// A fresh room id keeps reruns against the same server independent
	roomID := "e2e-" + uuid.NewString()
	alice := s.Connect("Alice")
	bob := s.Connect("Bob")
	carol := s.Connect("Carol")

	s.Run("Step 1: Alice creates the room", func() {
		s.Require().NoError(alice.CreateRoom(roomID, client.Player{Name: "Alice", Level: json.RawMessage(`1`)}))
		room, err := s.Expect(alice, "room-update").Room()
		s.Require().NoError(err)
		s.Equal("Alice", room.Host)
		s.Len(room.Players, 1)
	})

	s.Run("Step 2: Bob checks then joins", func() {
		s.Require().NoError(bob.CheckRoom(roomID))
		s.True(s.Expect(bob, "room-exists").Bool())

		s.Require().NoError(bob.JoinRoom(roomID, client.Player{Name: "Bob", Level: json.RawMessage(`2`)}))
		room, err := s.Expect(bob, "room-update").Room()
		s.Require().NoError(err)
		s.Len(room.Players, 2)
		s.Expect(alice, "room-update")
	})

	s.Run("Step 3: a duplicate name is refused", func() {
		s.Require().NoError(carol.JoinRoom(roomID, client.Player{Name: "Bob"}))
		s.Equal("Player name already exists in this room", s.Expect(carol, "join-error").Text())
	})

	s.Run("Step 4: Carol watches as a spectator", func() {
		s.Require().NoError(carol.JoinSpectatorRoom(roomID, client.Player{Name: "Carol"}))
		s.Expect(carol, "spectator-joined")
		s.Expect(alice, "spectator-joined")
		s.Expect(bob, "spectator-joined")
	})

	s.Run("Step 5: the game starts", func() {
		s.Require().NoError(alice.StartGame(roomID))
		s.Expect(alice, "game-started")
		s.Expect(bob, "game-started")
		s.Expect(carol, "game-started")
	})

	s.Run("Step 6: Bob leaves and Alice sees it", func() {
		s.Require().NoError(bob.Close())
		room, err := s.Expect(alice, "room-update").Room()
		s.Require().NoError(err)
		s.Len(room.Players, 1)
		s.Len(room.Spectators, 1)
	})

	s.Run("Step 7: Alice kicks Carol", func() {
		ack, err := alice.RemovePlayer(roomID, "Carol")
		s.Require().NoError(err)
		frame := s.Expect(alice, "ack")
		s.Equal(ack, *frame.Ack)
		s.True(frame.Bool())
	})
}
