// Package index maps external source identities to task ids so ingestion can
// recognize an item it has already imported without scanning the task store.
// Each user gets a top-level bbolt bucket keyed by "source/source_id".
package index

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/harrisonrobin/taskhub/pkg/dedupe"
	"github.com/harrisonrobin/taskhub/pkg/model"
)

// SourceIndex is a persistent source identity to task id mapping.
type SourceIndex struct {
	db   *bolt.DB
	Path string
}

// NewSourceIndex opens (or creates) the index database at path.
func NewSourceIndex(path string) (*SourceIndex, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	return &SourceIndex{db: db, Path: path}, nil
}

// Close closes the underlying database.
func (idx *SourceIndex) Close() error {
	return idx.db.Close()
}

// Get returns the task id recorded for the identity, or "" when none is.
func (idx *SourceIndex) Get(userID string, source model.Source, sourceID string) (string, error) {
	key := dedupe.IdentityKey(source, sourceID)
	if key == "" {
		return "", nil
	}
	var taskID string
	err := idx.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(userID))
		if b == nil {
			return nil
		}
		// Values are only valid inside the transaction.
		if v := b.Get([]byte(key)); v != nil {
			taskID = string(v)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("index get: %w", err)
	}
	return taskID, nil
}

// Set records taskID for the identity. Blank source ids carry no identity
// and are not indexed.
func (idx *SourceIndex) Set(userID string, source model.Source, sourceID, taskID string) error {
	key := dedupe.IdentityKey(source, sourceID)
	if key == "" {
		return nil
	}
	err := idx.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(userID))
		if err != nil {
			return err
		}
		return b.Put([]byte(key), []byte(taskID))
	})
	if err != nil {
		return fmt.Errorf("index set: %w", err)
	}
	return nil
}

// Remove forgets the identity.
func (idx *SourceIndex) Remove(userID string, source model.Source, sourceID string) error {
	key := dedupe.IdentityKey(source, sourceID)
	if key == "" {
		return nil
	}
	err := idx.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(userID))
		if b == nil {
			return nil
		}
		return b.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("index remove: %w", err)
	}
	return nil
}

// Len returns the number of identities indexed for userID.
func (idx *SourceIndex) Len(userID string) (int, error) {
	n := 0
	err := idx.db.View(func(tx *bolt.Tx) error {
		if b := tx.Bucket([]byte(userID)); b != nil {
			n = b.Stats().KeyN
		}
		return nil
	})
	return n, err
}
