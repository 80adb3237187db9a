package client_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"lobby-lab/client"
	"lobby-lab/domain"
	"lobby-lab/infrastructure/websocket"
	"lobby-lab/observability"
	"lobby-lab/runtime"
	"lobby-lab/runtime/workers"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

const wait = 2 * time.Second

func startLobby(t *testing.T, opts domain.StoreOptions) string {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	registry := runtime.NewRegistry()
	monitoring := observability.NewMonitoringManager(log)
	router := runtime.NewRouter(log, domain.NewStore(opts), registry, monitoring, time.Second)
	orchestrator := runtime.NewOrchestrator(log, workers.NewSupervisor(log, 0), registry, router, monitoring, 64)

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = orchestrator.Start(ctx) }()

	mux := httptest.NewServer(websocket.NewHandler(log, orchestrator, websocket.DefaultOptions()))
	t.Cleanup(func() {
		mux.Close()
		cancel()
	})
	return strings.TrimPrefix(mux.URL, "http://")
}

func dial(t *testing.T, address string) *client.Client {
	t.Helper()
	c, err := client.Dial(context.Background(), slog.Default(), address)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestClient_Overflow_Spectator_And_Kick(t *testing.T) {
	req := require.New(t)
	address := startLobby(t, domain.StoreOptions{MaxCapacity: 1, CapacityPolicy: domain.CapacitySpectate})
	host := dial(t, address)
	guest := dial(t, address)

	// Given a room of one seat owned by the host
	req.NoError(host.CreateRoom("R1", client.Player{Name: "Host", Level: json.RawMessage(`5`)}))
	_, err := host.Expect("room-update", wait)
	req.NoError(err)

	// When the guest joins, the seat is taken
	req.NoError(guest.JoinRoom("R1", client.Player{Name: "Guest"}))
	frame, err := guest.Expect("room-update", wait)
	req.NoError(err)
	room, err := frame.Room()
	req.NoError(err)

	// Then the guest lands among the spectators
	req.Len(room.Players, 1)
	req.Len(room.Spectators, 1)
	req.Equal("Guest", room.Spectators[0].Name)

	// When the host kicks the guest
	_, err = host.Expect("room-update", wait)
	req.NoError(err)
	ack, err := host.RemovePlayer("R1", "Guest")
	req.NoError(err)

	// Then the removal is acknowledged
	frame, err = host.Expect("ack", wait)
	req.NoError(err)
	req.Equal(ack, *frame.Ack)
	req.True(frame.Bool())

	frame, err = host.Expect("room-update", wait)
	req.NoError(err)
	room, err = frame.Room()
	req.NoError(err)
	req.Empty(room.Spectators)
}

func TestClient_Check_Missing_Room(t *testing.T) {
	req := require.New(t)
	c := dial(t, startLobby(t, domain.DefaultStoreOptions()))

	req.NoError(c.CheckRoom("nope"))
	frame, err := c.Expect("room-exists", wait)
	req.NoError(err)
	req.False(frame.Bool())

	req.NoError(c.StartGame("nope"))
	frame, err = c.Expect("start-error", wait)
	req.NoError(err)
	req.Equal("Room does not exist", frame.Text())
}
