package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
)

const sessionKeyPrefix = "session/"

// BadgerSessionStore persists session snapshots in the embedded key-value
// store so logins survive process restarts. Sessions carry no TTL; they live
// until logout or invalidation.
type BadgerSessionStore struct {
	db *badger.DB
}

// NewBadgerSessionStore constructs a session store over an open database.
func NewBadgerSessionStore(db *badger.DB) *BadgerSessionStore {
	return &BadgerSessionStore{db: db}
}

func sessionKey(token string) []byte {
	return []byte(sessionKeyPrefix + token)
}

// Save stores or replaces a session snapshot.
func (s *BadgerSessionStore) Save(_ context.Context, session Session) error {
	value, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(sessionKey(session.Token), value)
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Find loads a session snapshot by token.
func (s *BadgerSessionStore) Find(_ context.Context, token string) (Session, error) {
	var session Session
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(sessionKey(token))
		if err != nil {
			return err
		}
		return item.Value(func(value []byte) error {
			return json.Unmarshal(value, &session)
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return Session{}, ErrSessionNotFound
		}
		return Session{}, fmt.Errorf("load session: %w", err)
	}
	return session, nil
}

// Delete removes a session snapshot by token.
func (s *BadgerSessionStore) Delete(_ context.Context, token string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(sessionKey(token))
	})
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
