package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"
)

const notifyKeyPrefix = "notify/"

type storedBucket struct {
	Notifications []Notification `json:"notifications"`
	LastCheck     time.Time      `json:"lastCheck"`
}

// BadgerStore persists per-user notification buckets in the embedded
// key-value store.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore constructs a notification store over an open database.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

func notifyKey(email string) []byte {
	return []byte(notifyKeyPrefix + email)
}

// Load returns the user's notification bucket, empty when absent.
func (s *BadgerStore) Load(_ context.Context, email string) ([]Notification, time.Time, error) {
	var bucket storedBucket
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(notifyKey(email))
		if err != nil {
			return err
		}
		return item.Value(func(value []byte) error {
			return json.Unmarshal(value, &bucket)
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, time.Time{}, nil
		}
		return nil, time.Time{}, fmt.Errorf("load notifications: %w", err)
	}
	return bucket.Notifications, bucket.LastCheck, nil
}

// Save replaces the user's notification bucket.
func (s *BadgerStore) Save(_ context.Context, email string, notifications []Notification, lastCheck time.Time) error {
	value, err := json.Marshal(storedBucket{Notifications: notifications, LastCheck: lastCheck})
	if err != nil {
		return fmt.Errorf("encode notifications: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(notifyKey(email), value)
	})
	if err != nil {
		return fmt.Errorf("save notifications: %w", err)
	}
	return nil
}
