package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
)

const progressKeyPrefix = "progress/"

// BadgerStore persists progress entries in the embedded key-value store.
// The namespace is device-local: entries are not keyed by account.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore constructs a progress store over an open database.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

func progressKey(contentID, episodeID int) []byte {
	return []byte(fmt.Sprintf("%s%d/%d", progressKeyPrefix, contentID, episodeID))
}

// Put stores or replaces the entry for its key.
func (s *BadgerStore) Put(_ context.Context, entry Entry) error {
	value, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode progress entry: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(progressKey(entry.ContentID, entry.EpisodeID), value)
	})
	if err != nil {
		return fmt.Errorf("save progress entry: %w", err)
	}
	return nil
}

// Get retrieves the entry for the key.
func (s *BadgerStore) Get(_ context.Context, contentID, episodeID int) (Entry, bool, error) {
	var entry Entry
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(progressKey(contentID, episodeID))
		if err != nil {
			return err
		}
		return item.Value(func(value []byte) error {
			return json.Unmarshal(value, &entry)
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return Entry{}, false, nil
		}
		return Entry{}, false, fmt.Errorf("load progress entry: %w", err)
	}
	return entry, true, nil
}

// Delete removes the entry for the key.
func (s *BadgerStore) Delete(_ context.Context, contentID, episodeID int) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(progressKey(contentID, episodeID))
	})
	if err != nil {
		return fmt.Errorf("delete progress entry: %w", err)
	}
	return nil
}

// List returns all stored entries in key order.
func (s *BadgerStore) List(_ context.Context) ([]Entry, error) {
	var out []Entry
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(progressKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(value []byte) error {
				var entry Entry
				if err := json.Unmarshal(value, &entry); err != nil {
					return err
				}
				out = append(out, entry)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list progress entries: %w", err)
	}
	return out, nil
}
