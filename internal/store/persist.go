package store

import (
	"encoding/json"
	"fmt"
	"sync"

	bolt "go.etcd.io/bbolt"
)

// Persister loads and saves the local state of a store
type Persister[T any] interface {
	Load() (T, error)
	Save(T) error
}

// MemoryPersister keeps the state in process memory
type MemoryPersister[T any] struct {
	state T
	saves int
	mutex sync.Mutex
}

func NewMemoryPersister[T any](initial T) *MemoryPersister[T] {
	return &MemoryPersister[T]{state: initial}
}

func (m *MemoryPersister[T]) Load() (T, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.state, nil
}

func (m *MemoryPersister[T]) Save(state T) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.state = state
	m.saves++
	return nil
}

// Saves returns how many times Save was called
func (m *MemoryPersister[T]) Saves() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.saves
}

// stateBucket holds every persisted store record
var stateBucket = []byte("state")

type envelope struct {
	Version int             `json:"version"`
	State   json.RawMessage `json:"state"`
}

// BoltPersister stores a versioned JSON record under one key of a bbolt file.
// A record written with another version loads as the zero value.
type BoltPersister[T any] struct {
	db      *bolt.DB
	key     []byte
	version int
}

// OpenStateFile opens or creates the bbolt file at path
func OpenStateFile(path string) (*bolt.DB, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to open state file: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(stateBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to create state bucket: %w", err)
	}
	return db, nil
}

func NewBoltPersister[T any](db *bolt.DB, key string, version int) *BoltPersister[T] {
	return &BoltPersister[T]{db: db, key: []byte(key), version: version}
}

func (b *BoltPersister[T]) Load() (T, error) {
	var state T
	err := b.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(stateBucket).Get(b.key)
		if raw == nil {
			return nil
		}

		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return err
		}
		if env.Version != b.version {
			return nil
		}
		return json.Unmarshal(env.State, &state)
	})
	if err != nil {
		var zero T
		return zero, fmt.Errorf("unable to load %s: %w", b.key, err)
	}
	return state, nil
}

func (b *BoltPersister[T]) Save(state T) error {
	encoded, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("unable to encode %s: %w", b.key, err)
	}
	raw, err := json.Marshal(envelope{Version: b.version, State: encoded})
	if err != nil {
		return err
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(stateBucket).Put(b.key, raw)
	})
}

// Delete removes the record
func (b *BoltPersister[T]) Delete() error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(stateBucket).Delete(b.key)
	})
}
