// Package kv opens the embedded key-value store backing the local session,
// playback-progress and notification namespaces.
package kv

import (
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
)

// Open initialises the store at dir. An empty dir yields an in-memory store,
// used by tests and ephemeral deployments.
func Open(dir string) (*badger.DB, error) {
	var opts badger.Options
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(dir)
	}
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open key-value store: %w", err)
	}
	return db, nil
}
