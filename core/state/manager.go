package state

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/rlp"
	"lukechampine.com/blake3"

	"farmchain/storage"
)

// Manager owns the persistent key space. Every mutation runs inside a
// transaction whose writes are staged and only reach the backend when the
// callback succeeds.
type Manager struct {
	mu sync.Mutex
	db storage.Database
}

// NewManager creates a state manager operating on the provided backend.
func NewManager(db storage.Database) *Manager {
	return &Manager{db: db}
}

// Tx is a staged view of the state. It is only valid inside the callback that
// received it.
type Tx struct {
	ov *overlay
}

// Transaction runs fn against a staged view of the state. A nil return commits
// every staged write; an error discards them all.
func (m *Manager) Transaction(fn func(tx *Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx := &Tx{ov: newOverlay(m.db)}
	if err := fn(tx); err != nil {
		return err
	}
	return tx.ov.commit()
}

// Read runs fn against the committed state. Writes made by fn are dropped.
func (m *Manager) Read(fn func(tx *Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(&Tx{ov: newOverlay(m.db)})
}

// Digest returns the blake3 hash of the committed key space. Two nodes that
// applied the same calls produce the same digest.
func (m *Manager) Digest() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	hasher := blake3.New(32, nil)
	var length [4]byte
	err := m.db.Iterate(nil, func(key, value []byte) bool {
		binary.BigEndian.PutUint32(length[:], uint32(len(key)))
		hasher.Write(length[:])
		hasher.Write(key)
		binary.BigEndian.PutUint32(length[:], uint32(len(value)))
		hasher.Write(length[:])
		hasher.Write(value)
		return true
	})
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// Pending reports how many keys the transaction has staged.
func (tx *Tx) Pending() int { return tx.ov.dirty() }

func (tx *Tx) putRLP(key []byte, value interface{}) error {
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	tx.ov.put(key, encoded)
	return nil
}

// getRLP decodes the record stored under key into out and reports whether it
// existed.
func (tx *Tx) getRLP(key []byte, out interface{}) (bool, error) {
	data, err := tx.ov.get(key)
	if err != nil {
		return false, err
	}
	if len(data) == 0 {
		return false, nil
	}
	if out == nil {
		return true, nil
	}
	if err := rlp.DecodeBytes(data, out); err != nil {
		return false, fmt.Errorf("state: decode %x: %w", key, err)
	}
	return true, nil
}

// KVPut stores the provided value under the supplied key using RLP encoding.
func (tx *Tx) KVPut(key []byte, value interface{}) error {
	if len(key) == 0 {
		return fmt.Errorf("kv: key must not be empty")
	}
	return tx.putRLP(kvKey(key), value)
}

// KVGet retrieves the value stored under the supplied key and decodes it into
// the provided destination. The boolean return value indicates whether the key
// existed in state.
func (tx *Tx) KVGet(key []byte, out interface{}) (bool, error) {
	if len(key) == 0 {
		return false, fmt.Errorf("kv: key must not be empty")
	}
	return tx.getRLP(kvKey(key), out)
}

// KVDelete removes the value stored under key.
func (tx *Tx) KVDelete(key []byte) {
	tx.ov.remove(kvKey(key))
}

func (tx *Tx) nextSequence(key []byte) (uint64, error) {
	var current uint64
	if _, err := tx.getRLP(key, &current); err != nil {
		return 0, err
	}
	current++
	if err := tx.putRLP(key, current); err != nil {
		return 0, err
	}
	return current, nil
}
