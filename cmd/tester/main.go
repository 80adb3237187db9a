package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lobby-lab/client"

	"github.com/Netflix/go-env"
	"github.com/gookit/color"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
)

// Exit codes for the tester application.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

// Config defines the tester-side environment variables.
type Config struct {
	ServerAddress string        `env:"LOBBY_SERVER_ADDR,default=localhost:5000"`
	RoomID        string        `env:"LOBBY_ROOM_ID,default=tester-room"`
	Players       int           `env:"LOBBY_PLAYERS,default=12"`
	Timeout       time.Duration `env:"LOBBY_TIMEOUT,default=3s"`
	LogLevel      string        `env:"LOG_LEVEL,default=WARN"`
}

type step struct {
	name   string
	result string
	err    error
}

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Tester error: %v\n", err)
	}
	os.Exit(code)
}

// run plays a full lobby scenario against a live server and prints one line per step.
func run() (int, error) {
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if config.Players < 2 {
		return exitConfig, fmt.Errorf("LOBBY_PLAYERS must be at least 2, got %d", config.Players)
	}

	var clients []*client.Client
	defer func() {
		for _, c := range clients {
			_ = c.Close()
		}
	}()
	for i := 0; i < config.Players; i++ {
		c, err := client.Dial(ctx, log, config.ServerAddress)
		if err != nil {
			return exitRuntime, err
		}
		clients = append(clients, c)
	}
	host := clients[0]
	var steps []step
	record := func(name string, fn func() (string, error)) {
		result, err := fn()
		steps = append(steps, step{name: name, result: result, err: err})
	}

	record("create-room", func() (string, error) {
		if err := host.CreateRoom(config.RoomID, client.Player{Name: "player-0", Level: json.RawMessage(`1`)}); err != nil {
			return "", err
		}
		frame, err := host.Expect("room-update", config.Timeout)
		if err != nil {
			return "", err
		}
		room, err := frame.Room()
		return fmt.Sprintf("host=%s", room.Host), err
	})

	record("join-room x"+fmt.Sprint(len(clients)-1), func() (string, error) {
		var players, spectators int
		for i, c := range clients[1:] {
			if err := c.JoinRoom(config.RoomID, client.Player{Name: fmt.Sprintf("player-%d", i+1), Level: json.RawMessage(`1`)}); err != nil {
				return "", err
			}
			frame, err := c.Expect("room-update", config.Timeout)
			if err != nil {
				return "", err
			}
			room, err := frame.Room()
			if err != nil {
				return "", err
			}
			players, spectators = len(room.Players), len(room.Spectators)
		}
		return fmt.Sprintf("players=%d spectators=%d", players, spectators), nil
	})

	record("start-game", func() (string, error) {
		if err := host.StartGame(config.RoomID); err != nil {
			return "", err
		}
		_, err := host.Expect("game-started", config.Timeout)
		return "started", err
	})

	record("remove-player", func() (string, error) {
		ack, err := host.RemovePlayer(config.RoomID, "player-1")
		if err != nil {
			return "", err
		}
		frame, err := host.Expect("ack", config.Timeout)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("ack %d=%t", ack, frame.Bool()), nil
	})

	record("disconnect all", func() (string, error) {
		for _, c := range clients {
			_ = c.Close()
		}
		clients = nil
		probe, err := client.Dial(ctx, log, config.ServerAddress)
		if err != nil {
			return "", err
		}
		defer probe.Close()
		// The room disappears once the last member is gone
		deadline := time.Now().Add(config.Timeout)
		for time.Now().Before(deadline) {
			if err := probe.CheckRoom(config.RoomID); err != nil {
				return "", err
			}
			frame, err := probe.Expect("room-exists", config.Timeout)
			if err != nil {
				return "", err
			}
			if !frame.Bool() {
				return "room deleted", nil
			}
			time.Sleep(50 * time.Millisecond)
		}
		return "", fmt.Errorf("room %s still exists", config.RoomID)
	})

	failed := printSteps(steps)
	if failed > 0 {
		return exitRuntime, fmt.Errorf("%d step(s) failed", failed)
	}
	color.Green.Println("✅ Lobby scenario passed")
	return exitOK, nil
}

func printSteps(steps []step) int {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Step", "Status", "Result"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)

	failed := 0
	for _, s := range steps {
		status := color.Green.Sprint("OK")
		result := s.result
		if s.err != nil {
			failed++
			status = color.Red.Sprint("FAIL")
			result = s.err.Error()
		}
		table.Append([]string{s.name, status, result})
	}
	table.Render()
	return failed
}
