package state

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"gamechain/storage"
)

// Manager exposes the ledger tables (accounts, games, roles, reserves,
// balances, locks, trades, registry records, random seed) over a key-value
// database. Records are RLP encoded behind keccak-hashed prefixed keys.
// Engines consume narrow slices of this surface through their own state
// interfaces, so any store satisfying those interfaces can substitute the
// manager in tests.
type Manager struct {
	db storage.Database
}

// NewManager creates a state manager backed by the provided database.
func NewManager(db storage.Database) *Manager {
	return &Manager{db: db}
}

var errNilManager = errors.New("state: manager not configured")

func (m *Manager) put(key []byte, value interface{}) error {
	if m == nil || m.db == nil {
		return errNilManager
	}
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return fmt.Errorf("state: encode record: %w", err)
	}
	return m.db.Put(key, encoded)
}

// get decodes the stored record into out, reporting whether the key existed.
func (m *Manager) get(key []byte, out interface{}) (bool, error) {
	if m == nil || m.db == nil {
		return false, errNilManager
	}
	encoded, err := m.db.Get(key)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := rlp.DecodeBytes(encoded, out); err != nil {
		return false, fmt.Errorf("state: decode record: %w", err)
	}
	return true, nil
}

func (m *Manager) delete(key []byte) error {
	if m == nil || m.db == nil {
		return errNilManager
	}
	return m.db.Delete(key)
}

// nextID reads, increments and persists a monotone counter, returning the
// value prior to the increment. Counters start at 1.
func (m *Manager) nextID(key []byte) (uint64, error) {
	var current uint64
	ok, err := m.get(key, &current)
	if err != nil {
		return 0, err
	}
	if !ok {
		current = 1
	}
	if err := m.put(key, current+1); err != nil {
		return 0, err
	}
	return current, nil
}
