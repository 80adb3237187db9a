// Package client is a small WebSocket client of the lobby, used by the tester and the e2e suite.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"lobby-lab/domain"

	gws "github.com/gorilla/websocket"
)

// Frame is an envelope received from the server.
type Frame struct {
	Event string          `json:"event"`
	Ack   *int64          `json:"ack,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Room decodes the snapshot carried by a room-update.
func (f Frame) Room() (domain.Room, error) {
	var room domain.Room
	err := json.Unmarshal(f.Data, &room)
	return room, err
}

// Text decodes the message carried by an error event.
func (f Frame) Text() string {
	var s string
	_ = json.Unmarshal(f.Data, &s)
	return s
}

// Bool decodes the flag carried by room-exists and ack.
func (f Frame) Bool() bool {
	var b bool
	_ = json.Unmarshal(f.Data, &b)
	return b
}

type Player struct {
	Name        string          `json:"name"`
	Level       json.RawMessage `json:"level,omitempty"`
	IsSpectator bool            `json:"isSpectator,omitempty"`
}

type Client struct {
	log    *slog.Logger
	conn   *gws.Conn
	frames chan Frame
	wmu    sync.Mutex
	ack    int64
	done   chan struct{}
}

// Dial opens a connection to the /ws endpoint of the server at address (host:port).
func Dial(ctx context.Context, log *slog.Logger, address string) (*Client, error) {
	u := url.URL{Scheme: "ws", Host: address, Path: "/ws"}
	conn, _, err := gws.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("could not connect to %s: %w", u.String(), err)
	}
	c := &Client{log: log, conn: conn, frames: make(chan Frame, 64), done: make(chan struct{})}
	go c.readLoop()
	return c, nil
}

func (c *Client) readLoop() {
	defer close(c.done)
	defer close(c.frames)
	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			c.log.Debug("Client read loop stopped", "error", err)
			return
		}
		var frame Frame
		if err := json.Unmarshal(payload, &frame); err != nil {
			c.log.Warn("Unreadable frame", "error", err)
			continue
		}
		c.frames <- frame
	}
}

// Send writes one envelope. ack is omitted when nil.
func (c *Client) Send(event string, ack *int64, data any) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	envelope := map[string]any{"event": event}
	if ack != nil {
		envelope["ack"] = *ack
	}
	if data != nil {
		envelope["data"] = data
	}
	return c.conn.WriteJSON(envelope)
}

func (c *Client) CreateRoom(room string, player Player) error {
	return c.Send("create-room", nil, map[string]any{"roomId": room, "player": player})
}

func (c *Client) CheckRoom(room string) error {
	return c.Send("check-room", nil, map[string]any{"roomId": room})
}

func (c *Client) JoinRoom(room string, player Player) error {
	return c.Send("join-room", nil, map[string]any{"roomId": room, "player": player})
}

func (c *Client) UpdateRoom(room string) error {
	return c.Send("update-room", nil, map[string]any{"roomId": room})
}

// RemovePlayer sends a remove-player and returns the ack id to wait for.
func (c *Client) RemovePlayer(room, name string) (int64, error) {
	c.wmu.Lock()
	c.ack++
	id := c.ack
	c.wmu.Unlock()
	return id, c.Send("remove-player", &id, map[string]any{"roomId": room, "name": name})
}

func (c *Client) StartGame(room string) error {
	return c.Send("start-game", nil, map[string]any{"roomId": room})
}

func (c *Client) JoinSpectatorRoom(room string, player Player) error {
	return c.Send("join-spectator-room", nil, map[string]any{"roomId": room, "player": player})
}

func (c *Client) LeaveRoom() error {
	return c.Send("leave-room", nil, nil)
}

// Next waits for the next frame.
func (c *Client) Next(timeout time.Duration) (Frame, error) {
	select {
	case frame, ok := <-c.frames:
		if !ok {
			return Frame{}, fmt.Errorf("connection closed")
		}
		return frame, nil
	case <-time.After(timeout):
		return Frame{}, fmt.Errorf("no frame received after %s", timeout)
	}
}

// Expect waits for the next frame carrying the given event, skipping the others.
func (c *Client) Expect(event string, timeout time.Duration) (Frame, error) {
	deadline := time.Now().Add(timeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return Frame{}, fmt.Errorf("no %s received after %s", event, timeout)
		}
		frame, err := c.Next(remaining)
		if err != nil {
			return Frame{}, err
		}
		if frame.Event == event {
			return frame, nil
		}
		c.log.Debug("Skipping frame", "event", frame.Event, "expected", event)
	}
}

// Close sends a close frame and waits for the read loop to end.
func (c *Client) Close() error {
	c.wmu.Lock()
	err := c.conn.WriteMessage(gws.CloseMessage, gws.FormatCloseMessage(gws.CloseNormalClosure, ""))
	c.wmu.Unlock()
	select {
	case <-c.done:
	case <-time.After(time.Second):
	}
	_ = c.conn.Close()
	return err
}
