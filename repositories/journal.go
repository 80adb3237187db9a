//go:generate go run go.uber.org/mock/mockgen -source=journal.go -destination=../mocks/mock_journal_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const journalPrefix = "journal:"

type IJournalRepository interface {
	Append(entry JournalEntry) error
	List(room string, cursor *string) ([]JournalEntry, *string, error)
	ListAll() ([]JournalEntry, error)
}

// JournalEntry is one lobby event as written on disk.
// The journal is append-only and is never replayed into the live rooms.
type JournalEntry struct {
	ID      uuid.UUID       `json:"id"`
	Room    string          `json:"room"`
	Type    string          `json:"type"`
	At      time.Time       `json:"at"`
	Payload json.RawMessage `json:"payload"`
}

type JournalRepository struct {
	db           *badger.DB
	log          *slog.Logger
	limitEntries *int
}

func NewJournalRepository(db *badger.DB, log *slog.Logger, limitEntries *int) JournalRepository {
	return JournalRepository{db: db, log: log, limitEntries: limitEntries}
}

// Append persists an entry in BadgerDB.
// The key is formatted as "journal:{room_id}:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding (lexicographical order).
//  2. Prevent data loss by using UUID as a collision disconnector if two events
//     arrive at the same nanosecond.
func (r JournalRepository) Append(entry JournalEntry) error {
	key := fmt.Sprintf("%s%s:%019d:%s", journalPrefix, entry.Room, entry.At.UnixNano(), entry.ID)
	bytes, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
}

// List retrieves the entries of one room, newest first, using a prefix scan.
// The returned cursor resumes right after the last entry of the page.
func (r JournalRepository) List(room string, cursor *string) ([]JournalEntry, *string, error) {
	var entries []JournalEntry
	var lastKey string
	err := r.db.View(func(txn *badger.Txn) error {
		prefixStr := fmt.Sprintf("%s%s:", journalPrefix, room)
		prefix := []byte(prefixStr)
		prefixLen := len(prefixStr)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		var seekKey []byte
		switch cursor {
		case nil:
			// Start past the newest position journal:R1:9999999999999999999
			seekKey = append([]byte(prefixStr), []byte("9999999999999999999")...)
		default:
			seekKey = append([]byte(prefixStr), []byte(*cursor)...)
		}

		it.Seek(seekKey)

		if cursor != nil && it.ValidForPrefix(prefix) {
			it.Next()
		}

		for ; it.ValidForPrefix(prefix); it.Next() {
			if r.limitEntries != nil && len(entries) == *r.limitEntries {
				r.log.Debug(fmt.Sprintf("Maximum of %d entries reached", *r.limitEntries))
				break
			}
			item := it.Item()
			// Memorize cursor part of the actual key
			lastKey = string(item.Key()[prefixLen:])
			entry, err := decode(item)
			if err != nil {
				return err
			}
			entries = append(entries, entry)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return entries, &lastKey, nil
}

// ListAll returns every entry of every room, ordered by room then time.
func (r JournalRepository) ListAll() ([]JournalEntry, error) {
	var entries []JournalEntry
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte(journalPrefix)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			entry, err := decode(it.Item())
			if err != nil {
				return err
			}
			entries = append(entries, entry)
		}
		return nil
	})
	return entries, err
}

func decode(item *badger.Item) (JournalEntry, error) {
	var entry JournalEntry
	err := item.Value(func(value []byte) error {
		return json.Unmarshal(value, &entry)
	})
	return entry, err
}
