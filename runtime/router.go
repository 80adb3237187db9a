package runtime

import (
	"context"
	"log/slog"
	"time"

	"lobby-lab/contract"
	"lobby-lab/domain"
	"lobby-lab/domain/event"
	"lobby-lab/errors"
	"lobby-lab/observability"
)

const defaultSinkTimeout = 2 * time.Second

var _ contract.ICommandHandler = (*Router)(nil)

// Router turns inbound commands into Store mutations, broadcasts and error replies.
// Handle must only be called from a single goroutine: the Store it owns is not locked,
// and the mutation plus the broadcast/delete decision form one step.
type Router struct {
	log            *slog.Logger
	store          *domain.Store
	registry       contract.IRegistry
	permanentSinks []contract.EventSink
	monitoring     *observability.MonitoringManager
	sinkTimeout    time.Duration
}

func NewRouter(log *slog.Logger, store *domain.Store, registry contract.IRegistry,
	monitoring *observability.MonitoringManager, sinkTimeout time.Duration) *Router {
	if sinkTimeout <= 0 {
		sinkTimeout = defaultSinkTimeout
	}
	return &Router{
		log:         log,
		store:       store,
		registry:    registry,
		monitoring:  monitoring,
		sinkTimeout: sinkTimeout,
	}
}

// Add registers sinks receiving every room-scoped event, whoever the room members are.
func (r *Router) Add(sinks ...contract.EventSink) *Router {
	r.permanentSinks = append(r.permanentSinks, sinks...)
	return r
}

func (r *Router) Handle(ctx context.Context, cmd domain.Command) {
	r.monitoring.IncrCommands()
	switch c := cmd.(type) {
	case domain.CreateRoomCommand:
		r.createRoom(ctx, c)
	case domain.CheckRoomCommand:
		r.reply(ctx, c.ConnectionID, event.RoomExists{Room: c.Room, Exists: r.store.Exists(c.Room)})
	case domain.JoinRoomCommand:
		r.joinRoom(ctx, c)
	case domain.UpdateRoomCommand:
		r.updateRoom(ctx, c)
	case domain.RemovePlayerCommand:
		r.removePlayer(ctx, c)
	case domain.StartGameCommand:
		r.startGame(ctx, c)
	case domain.JoinSpectatorRoomCommand:
		r.joinSpectatorRoom(ctx, c)
	case domain.LeaveRoomCommand:
		r.removeConnection(ctx, c.ConnectionID)
	case domain.DisconnectCommand:
		r.removeConnection(ctx, c.ConnectionID)
		r.registry.Unregister(c.ConnectionID)
		r.log.Debug("Connection released", "connection_id", c.ConnectionID)
	default:
		r.log.Warn("Unsupported command", "connection_id", cmd.Connection())
	}
}

func (r *Router) createRoom(ctx context.Context, c domain.CreateRoomCommand) {
	if err := r.checkNewMember(c.ConnectionID, c.Player); err != nil {
		r.fail(ctx, c.ConnectionID, event.CreateErrorType, c.Room, err)
		return
	}
	c.Player.ConnectionID = c.ConnectionID
	room, err := r.store.Create(c.Room, c.Player)
	if err != nil {
		r.fail(ctx, c.ConnectionID, event.CreateErrorType, c.Room, err)
		return
	}
	r.monitoring.IncrRoomsCreated()
	r.registry.Subscribe(c.ConnectionID, room.ID, c.Player.Name)
	r.log.Info("Room created", "room_id", room.ID, "host", room.Host)
	r.broadcast(ctx, room.ID, event.RoomUpdated{Room: room.Snapshot()})
}

func (r *Router) joinRoom(ctx context.Context, c domain.JoinRoomCommand) {
	if !r.store.Exists(c.Room) {
		r.fail(ctx, c.ConnectionID, event.JoinErrorType, c.Room, errors.ErrRoomNotFound)
		return
	}
	if err := r.checkNewMember(c.ConnectionID, c.Player); err != nil {
		r.fail(ctx, c.ConnectionID, event.JoinErrorType, c.Room, err)
		return
	}
	c.Player.ConnectionID = c.ConnectionID

	var err error
	asSpectator := c.AsSpectator
	if asSpectator {
		err = r.store.JoinSpectator(c.Room, c.Player)
	} else {
		var result domain.JoinResult
		result, err = r.store.Join(c.Room, c.Player)
		asSpectator = result == domain.JoinedAsSpectator
	}
	if err != nil {
		r.fail(ctx, c.ConnectionID, event.JoinErrorType, c.Room, err)
		return
	}

	r.registry.Subscribe(c.ConnectionID, c.Room, c.Player.Name)
	r.log.Info("Participant joined", "room_id", c.Room, "name", c.Player.Name, "spectator", asSpectator)
	room, _ := r.store.Get(c.Room)
	r.broadcast(ctx, c.Room, event.RoomUpdated{Room: room.Snapshot()})
}

func (r *Router) updateRoom(ctx context.Context, c domain.UpdateRoomCommand) {
	room, ok := r.store.Get(c.Room)
	if !ok {
		r.fail(ctx, c.ConnectionID, event.JoinErrorType, c.Room, errors.ErrRoomNotFound)
		return
	}
	r.broadcast(ctx, c.Room, event.RoomUpdated{Room: room.Snapshot()})
}

// removePlayer removes the name from players and from spectators, which are two
// independent Store operations, then settles the room.
func (r *Router) removePlayer(ctx context.Context, c domain.RemovePlayerCommand) {
	if c.Name == "" {
		r.fail(ctx, c.ConnectionID, event.RemoveErrorType, c.Room, errors.ErrInvalidPlayer)
		r.ack(ctx, c, false)
		return
	}
	room, ok := r.store.Get(c.Room)
	if !ok {
		r.fail(ctx, c.ConnectionID, event.RemoveErrorType, c.Room, errors.ErrRoomNotFound)
		r.ack(ctx, c, false)
		return
	}
	backing := room.Connections()

	if _, _, err := r.store.LeaveByName(c.Room, c.Name); err != nil {
		r.fail(ctx, c.ConnectionID, event.RemoveErrorType, c.Room, err)
		r.ack(ctx, c, false)
		return
	}
	if _, _, err := r.store.LeaveSpectatorByName(c.Room, c.Name); err != nil {
		r.fail(ctx, c.ConnectionID, event.RemoveErrorType, c.Room, err)
		r.ack(ctx, c, false)
		return
	}

	// The connection that was backing the removed participant leaves the broadcast group.
	for _, connectionID := range backing {
		if _, still := room.MemberByConnection(connectionID); !still {
			r.registry.Unsubscribe(connectionID, c.Room)
		}
	}
	r.log.Info("Participant removed", "room_id", c.Room, "name", c.Name, "by", c.ConnectionID)
	r.ack(ctx, c, true)
	r.settle(ctx, room)
}

func (r *Router) startGame(ctx context.Context, c domain.StartGameCommand) {
	if err := r.store.Start(c.Room); err != nil {
		r.fail(ctx, c.ConnectionID, event.StartErrorType, c.Room, err)
		return
	}
	r.log.Info("Game started", "room_id", c.Room)
	r.broadcast(ctx, c.Room, event.GameStarted{Room: c.Room})
}

func (r *Router) joinSpectatorRoom(ctx context.Context, c domain.JoinSpectatorRoomCommand) {
	if !r.store.Exists(c.Room) {
		r.fail(ctx, c.ConnectionID, event.JoinErrorType, c.Room, errors.ErrRoomNotFound)
		return
	}
	if err := r.checkNewMember(c.ConnectionID, c.Player); err != nil {
		r.fail(ctx, c.ConnectionID, event.JoinErrorType, c.Room, err)
		return
	}
	c.Player.ConnectionID = c.ConnectionID
	if err := r.store.JoinSpectator(c.Room, c.Player); err != nil {
		r.fail(ctx, c.ConnectionID, event.JoinErrorType, c.Room, err)
		return
	}
	r.registry.Subscribe(c.ConnectionID, c.Room, c.Player.Name)
	r.log.Info("Spectator joined", "room_id", c.Room, "name", c.Player.Name)
	r.broadcast(ctx, c.Room, event.SpectatorJoined{Room: c.Room, Player: c.Player})
}

// removeConnection scans every room for members backed by the connection
// instead of relying on the registry membership alone.
func (r *Router) removeConnection(ctx context.Context, connectionID domain.ConnectionID) {
	for _, id := range r.store.IDs() {
		room, ok := r.store.Get(id)
		if !ok {
			continue
		}
		found := false
		for {
			member, ok := room.MemberByConnection(connectionID)
			if !ok {
				break
			}
			found = true
			_, _, _ = r.store.LeaveByName(id, member.Name)
			_, _, _ = r.store.LeaveSpectatorByName(id, member.Name)
			r.log.Info("Participant left", "room_id", id, "name", member.Name, "connection_id", connectionID)
		}
		if !found {
			continue
		}
		r.registry.Unsubscribe(connectionID, id)
		r.settle(ctx, room)
	}
}

// settle deletes an empty room, or broadcasts the new snapshot to whoever is left.
func (r *Router) settle(ctx context.Context, room *domain.Room) {
	if room.IsEmpty() {
		r.store.Delete(room.ID)
		r.registry.DropRoom(room.ID)
		r.monitoring.IncrRoomsDeleted()
		r.log.Info("Room deleted, no member left", "room_id", room.ID)
		r.record(ctx, event.RoomDeleted{Room: room.ID})
		return
	}
	r.broadcast(ctx, room.ID, event.RoomUpdated{Room: room.Snapshot()})
}

func (r *Router) checkNewMember(connectionID domain.ConnectionID, p domain.Participant) error {
	if !p.HasName() {
		return errors.ErrInvalidPlayer
	}
	if m, ok := r.registry.Membership(connectionID); ok && r.store.Exists(m.Room) {
		return errors.ErrAlreadyInRoom
	}
	return nil
}

func (r *Router) fail(ctx context.Context, connectionID domain.ConnectionID, kind event.Type, roomID domain.RoomID, err error) {
	r.monitoring.IncrFailures()
	r.log.Debug("Command rejected", "connection_id", connectionID, "room_id", roomID, "event", kind, "error", err)
	r.reply(ctx, connectionID, event.Failure{Kind: kind, Room: roomID, Message: errors.Message(err)})
}

func (r *Router) ack(ctx context.Context, c domain.RemovePlayerCommand, ok bool) {
	if c.Ack == nil {
		return
	}
	r.reply(ctx, c.ConnectionID, event.Acknowledged{Room: c.Room, ID: *c.Ack, OK: ok})
}

// reply delivers an event to the originating connection only.
func (r *Router) reply(ctx context.Context, connectionID domain.ConnectionID, evt event.DomainEvent) {
	sink, ok := r.registry.Sink(connectionID)
	if !ok {
		r.log.Debug("No sink for connection, reply dropped", "connection_id", connectionID, "event", evt.Type())
		return
	}
	r.deliver(ctx, sink, evt)
}

// broadcast delivers an event to every connection of the room's broadcast group
// and to the permanent sinks.
func (r *Router) broadcast(ctx context.Context, roomID domain.RoomID, evt event.DomainEvent) {
	r.monitoring.IncrBroadcasts()
	for _, sink := range r.registry.GetSinksForRoom(roomID) {
		r.deliver(ctx, sink, evt)
	}
	r.record(ctx, evt)
}

func (r *Router) record(ctx context.Context, evt event.DomainEvent) {
	for _, sink := range r.permanentSinks {
		r.deliver(ctx, sink, evt)
	}
}

func (r *Router) deliver(ctx context.Context, sink contract.EventSink, evt event.DomainEvent) {
	sinkCtx, cancel := context.WithTimeout(ctx, r.sinkTimeout)
	defer cancel()
	if err := sink.Consume(sinkCtx, evt); err != nil {
		r.monitoring.IncrDroppedSends()
		r.log.Warn("Sink failed to consume event", "event", evt.Type(), "room_id", evt.RoomID(), "error", err)
	}
}
