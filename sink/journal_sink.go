package sink

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"lobby-lab/contract"
	"lobby-lab/domain/event"
	"lobby-lab/repositories"

	"github.com/google/uuid"
)

var _ contract.EventSink = JournalSink{}

// JournalSink appends every room-scoped event to the journal repository.
type JournalSink struct {
	repository repositories.IJournalRepository
	log        *slog.Logger
	now        func() time.Time
}

func NewJournalSink(repository repositories.IJournalRepository, log *slog.Logger) JournalSink {
	return JournalSink{repository: repository, log: log, now: func() time.Time { return time.Now().UTC() }}
}

func (d JournalSink) Consume(_ context.Context, e event.DomainEvent) error {
	switch e.(type) {
	case event.RoomUpdated, event.GameStarted, event.SpectatorJoined, event.RoomDeleted:
		payload, err := json.Marshal(e)
		if err != nil {
			return err
		}
		return d.repository.Append(repositories.JournalEntry{
			ID:      uuid.New(),
			Room:    e.RoomID().String(),
			Type:    string(e.Type()),
			At:      d.now(),
			Payload: payload,
		})
	default:
		d.log.Debug("Not journaled event", "event", e.Type())
		return nil
	}
}
