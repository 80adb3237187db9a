package repositories

import (
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func openDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func entries(room string, at time.Time, types ...string) []JournalEntry {
	var res []JournalEntry
	for i, typ := range types {
		res = append(res, JournalEntry{
			ID:      uuid.New(),
			Room:    room,
			Type:    typ,
			At:      at.Add(time.Duration(i) * time.Minute),
			Payload: json.RawMessage(`{"id":"` + room + `"}`),
		})
	}
	return res
}

func Test_Append_And_List_Newest_First(t *testing.T) {
	req := require.New(t)
	repository := NewJournalRepository(openDB(t), slog.Default(), nil)
	at := time.Now().UTC().Truncate(time.Millisecond)

	// Given three events of one room and one of another
	written := entries("R1", at, "room-update", "game-started", "room-deleted")
	written = append(written, entries("R2", at, "room-update")...)
	for _, e := range written {
		req.NoError(repository.Append(e))
	}

	// When listing the first room
	fetched, cursor, err := repository.List("R1", nil)

	// Then only its entries come back, newest first
	req.NoError(err)
	req.NotNil(cursor)
	req.Equal([]JournalEntry{written[2], written[1], written[0]}, fetched)
}

func Test_List_Pages_With_Cursor(t *testing.T) {
	req := require.New(t)
	limit := 2
	repository := NewJournalRepository(openDB(t), slog.Default(), &limit)
	at := time.Now().UTC().Truncate(time.Millisecond)

	written := entries("R1", at, "room-update", "room-update", "game-started")
	for _, e := range written {
		req.NoError(repository.Append(e))
	}

	page, cursor, err := repository.List("R1", nil)
	req.NoError(err)
	req.Len(page, limit)
	req.Equal("game-started", page[0].Type)

	rest, _, err := repository.List("R1", cursor)
	req.NoError(err)
	req.Len(rest, 1)
	req.Equal(written[0].ID, rest[0].ID)
}

func Test_ListAll_Covers_Every_Room(t *testing.T) {
	req := require.New(t)
	repository := NewJournalRepository(openDB(t), slog.Default(), nil)
	at := time.Now().UTC().Truncate(time.Millisecond)

	for _, e := range append(entries("R2", at, "room-update"), entries("R1", at, "room-update", "room-deleted")...) {
		req.NoError(repository.Append(e))
	}

	all, err := repository.ListAll()
	req.NoError(err)
	req.Len(all, 3)
	req.Equal("R1", all[0].Room)
	req.Equal("room-deleted", all[1].Type)
	req.Equal("R2", all[2].Room)
}
