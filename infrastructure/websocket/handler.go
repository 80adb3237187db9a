// Package websocket is the transport of the lobby: one WebSocket per participant,
// JSON envelopes in both directions, commands handed over to the orchestrator.
package websocket

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net/http"
	"time"

	"lobby-lab/contract"
	"lobby-lab/domain"
	"lobby-lab/domain/event"
	"lobby-lab/sink"

	"github.com/google/uuid"
	gws "github.com/gorilla/websocket"
)

const maxFrameSize = 64 * 1024

type Options struct {
	BufferSize   int
	WriteTimeout time.Duration
	PingInterval time.Duration
}

func DefaultOptions() Options {
	return Options{BufferSize: 64, WriteTimeout: 10 * time.Second, PingInterval: 30 * time.Second}
}

// Handler upgrades HTTP requests and runs the read and write loops of each connection.
type Handler struct {
	log          *slog.Logger
	orchestrator contract.IOrchestrator
	upgrader     gws.Upgrader
	opts         Options
}

func NewHandler(log *slog.Logger, orchestrator contract.IOrchestrator, opts Options) *Handler {
	defaults := DefaultOptions()
	if opts.BufferSize <= 0 {
		opts.BufferSize = defaults.BufferSize
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = defaults.WriteTimeout
	}
	if opts.PingInterval <= 0 {
		opts.PingInterval = defaults.PingInterval
	}
	return &Handler{
		log:          log,
		orchestrator: orchestrator,
		upgrader: gws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Any origin may open a lobby connection
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		opts: opts,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("Websocket upgrade failed", "error", err)
		return
	}

	connectionID := domain.ConnectionID(uuid.NewString())
	connectionSink := sink.NewConnectionSink(h.opts.BufferSize)
	h.orchestrator.Connect(connectionID, connectionSink)
	h.log.Debug("Connection opened", "connection_id", connectionID, "remote", r.RemoteAddr)

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		h.writeLoop(conn, connectionID, connectionSink)
	}()

	h.readLoop(conn, connectionID, connectionSink)

	h.orchestrator.Disconnect(connectionID)
	connectionSink.Close()
	<-writerDone
	_ = conn.Close()
	h.log.Debug("Connection closed", "connection_id", connectionID)
}

// readLoop dispatches frames in arrival order until the peer goes away.
func (h *Handler) readLoop(conn *gws.Conn, connectionID domain.ConnectionID, connectionSink *sink.ConnectionSink) {
	pongWait := 2 * h.opts.PingInterval
	conn.SetReadLimit(maxFrameSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, frame, err := conn.ReadMessage()
		if err != nil {
			if gws.IsUnexpectedCloseError(err, gws.CloseGoingAway, gws.CloseNormalClosure) {
				h.log.Debug("Unexpected close", "connection_id", connectionID, "error", err)
			}
			return
		}
		if messageType != gws.TextMessage {
			continue
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))

		cmd, err := Decode(connectionID, frame)
		if err != nil {
			var decodeErr *DecodeError
			if stderrors.As(err, &decodeErr) {
				h.log.Debug("Rejected frame", "connection_id", connectionID, "error", err)
				h.replyNow(connectionSink, decodeErr.Failure(), decodeErr.Room, decodeErr.Ack)
			}
			continue
		}
		if err := h.orchestrator.Dispatch(cmd); err != nil {
			var ack *int64
			if remove, ok := cmd.(domain.RemovePlayerCommand); ok {
				ack = remove.Ack
			}
			h.replyNow(connectionSink, event.Failure{Kind: event.ProtocolErrorType, Message: err.Error()}, "", ack)
		}
	}
}

// replyNow answers the sender without going through the router.
func (h *Handler) replyNow(connectionSink *sink.ConnectionSink, failure event.Failure, room domain.RoomID, ack *int64) {
	ctx := context.Background()
	if err := connectionSink.Consume(ctx, failure); err != nil {
		h.log.Warn("Error reply dropped", "error", err)
	}
	if ack != nil {
		if err := connectionSink.Consume(ctx, event.Acknowledged{Room: room, ID: *ack, OK: false}); err != nil {
			h.log.Warn("Ack dropped", "error", err)
		}
	}
}

// writeLoop is the only writer of the socket.
func (h *Handler) writeLoop(conn *gws.Conn, connectionID domain.ConnectionID, connectionSink *sink.ConnectionSink) {
	ticker := time.NewTicker(h.opts.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case e, ok := <-connectionSink.Events():
			_ = conn.SetWriteDeadline(time.Now().Add(h.opts.WriteTimeout))
			if !ok {
				_ = conn.WriteMessage(gws.CloseMessage, gws.FormatCloseMessage(gws.CloseNormalClosure, ""))
				return
			}
			frame, err := Encode(e)
			if err != nil {
				h.log.Error("Unable to encode event", "connection_id", connectionID, "event", e.Type(), "error", err)
				continue
			}
			if err := conn.WriteMessage(gws.TextMessage, frame); err != nil {
				h.log.Debug("Write failed, closing connection", "connection_id", connectionID, "error", err)
				_ = conn.Close()
				h.drain(connectionSink)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(h.opts.WriteTimeout))
			if err := conn.WriteMessage(gws.PingMessage, nil); err != nil {
				_ = conn.Close()
				h.drain(connectionSink)
				return
			}
		}
	}
}

// drain discards events until the sink is closed.
func (h *Handler) drain(connectionSink *sink.ConnectionSink) {
	for range connectionSink.Events() {
	}
}
