// Package store persists book chunks and their embeddings in a bbolt file
// and answers nearest-neighbour queries over them.
package store

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

var (
	chunksBucket  = []byte("chunks")
	sourcesBucket = []byte("sources")
)

// Chunk is a slice of a book together with its embedding
type Chunk struct {
	ID     string    `json:"id"`
	Text   string    `json:"text"`
	Source string    `json:"source"`
	Vector []float32 `json:"vector"`
}

// Store is a bbolt-backed chunk store. It is safe for concurrent use.
type Store struct {
	db *bolt.DB
}

// Open opens (creating if needed) the store file at path
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{chunksBucket, sourcesBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create buckets: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying file
func (s *Store) Close() error {
	return s.db.Close()
}

// Add stores chunks in one transaction, assigning IDs to those without
// one. It returns the number of chunks written.
func (s *Store) Add(_ context.Context, chunks []Chunk) (int, error) {
	if len(chunks) == 0 {
		return 0, nil
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		cb := tx.Bucket(chunksBucket)
		sb := tx.Bucket(sourcesBucket)

		for i := range chunks {
			if chunks[i].ID == "" {
				chunks[i].ID = uuid.NewString()
			}
			v, err := json.Marshal(chunks[i])
			if err != nil {
				return fmt.Errorf("failed to marshal chunk: %w", err)
			}
			if err := cb.Put([]byte(chunks[i].ID), v); err != nil {
				return err
			}
			if err := incrementSource(sb, chunks[i].Source); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(chunks), nil
}

// incrementSource bumps the chunk counter of a source
func incrementSource(b *bolt.Bucket, source string) error {
	var n uint64
	if v := b.Get([]byte(source)); len(v) == 8 {
		n = binary.BigEndian.Uint64(v)
	}
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, n+1)
	return b.Put([]byte(source), buf)
}

// Sources returns the distinct source names of the stored chunks, sorted
func (s *Store) Sources(_ context.Context) ([]string, error) {
	sources := []string{}
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(sourcesBucket).ForEach(func(k, _ []byte) error {
			sources = append(sources, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return sources, nil
}

// Count returns the number of stored chunks
func (s *Store) Count(_ context.Context) (int, error) {
	var n int
	err := s.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(chunksBucket).Stats().KeyN
		return nil
	})
	return n, err
}

// Clear deletes every chunk and source
func (s *Store) Clear(_ context.Context) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{chunksBucket, sourcesBucket} {
			if err := tx.DeleteBucket(name); err != nil {
				return err
			}
			if _, err := tx.CreateBucket(name); err != nil {
				return err
			}
		}
		return nil
	})
}
