// Package registry is the collection registry backing the game and item
// engines: it allocates collections, records item classes and tracks
// per-item transfer freezes.
package registry

import (
	"errors"

	"gamechain/core/state"
)

var (
	errNilState = errors.New("registry: state not configured")

	// ErrUnknownCollection is returned when the collection does not exist.
	ErrUnknownCollection = errors.New("registry: unknown collection")
	// ErrUnknownItem is returned when the item class is not registered.
	ErrUnknownItem = errors.New("registry: unknown item")
	// ErrItemExists is returned when the item class is already registered.
	ErrItemExists = errors.New("registry: item already exists")
	// ErrNoPermission is returned when the caller is neither owner nor
	// admin of the collection.
	ErrNoPermission = errors.New("registry: no permission")
)

type registryState interface {
	NextCollectionID() (uint64, error)
	CollectionMetaPut(*state.CollectionMeta) error
	CollectionMetaGet(id uint64) (*state.CollectionMeta, bool, error)
	CollectionItemExists(collectionID uint64, itemID uint32) (bool, error)
	CollectionItemPut(collectionID uint64, itemID uint32, owner [20]byte) error
	TransferLocked(collectionID uint64, itemID uint32) (bool, error)
	TransferLockedPut(collectionID uint64, itemID uint32, locked bool) error
}

// Registry is the state-backed implementation of the collection capability.
type Registry struct {
	state registryState
}

// New creates a registry over the given state backend.
func New(st registryState) *Registry {
	return &Registry{state: st}
}

// CreateCollection allocates a new collection owned by owner with admin as
// its administrator.
func (r *Registry) CreateCollection(owner, admin [20]byte) (uint64, error) {
	if r == nil || r.state == nil {
		return 0, errNilState
	}
	id, err := r.state.NextCollectionID()
	if err != nil {
		return 0, err
	}
	meta := &state.CollectionMeta{ID: id, Owner: owner, Admin: admin}
	if err := r.state.CollectionMetaPut(meta); err != nil {
		return 0, err
	}
	return id, nil
}

// MintInto registers an item class in a collection with its initial owner.
func (r *Registry) MintInto(collectionID uint64, itemID uint32, owner [20]byte) error {
	if r == nil || r.state == nil {
		return errNilState
	}
	meta, ok, err := r.state.CollectionMetaGet(collectionID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUnknownCollection
	}
	if exists, err := r.state.CollectionItemExists(collectionID, itemID); err != nil {
		return err
	} else if exists {
		return ErrItemExists
	}
	if err := r.state.CollectionItemPut(collectionID, itemID, owner); err != nil {
		return err
	}
	meta.Items++
	return r.state.CollectionMetaPut(meta)
}

// CanTransfer reports whether an item class may change hands. Unknown items
// and collections report false, as do frozen items. The boolean shape
// matches what the trade engine consumes; lookup errors read as
// non-transferable.
func (r *Registry) CanTransfer(collectionID uint64, itemID uint32) bool {
	if r == nil || r.state == nil {
		return false
	}
	exists, err := r.state.CollectionItemExists(collectionID, itemID)
	if err != nil || !exists {
		return false
	}
	locked, err := r.state.TransferLocked(collectionID, itemID)
	if err != nil {
		return false
	}
	return !locked
}

// CollectionOwner reports who owns a collection. The boolean shape matches
// CanTransfer; lookup errors read as unknown.
func (r *Registry) CollectionOwner(collectionID uint64) ([20]byte, bool) {
	var owner [20]byte
	if r == nil || r.state == nil {
		return owner, false
	}
	meta, ok, err := r.state.CollectionMetaGet(collectionID)
	if err != nil || !ok {
		return owner, false
	}
	return meta.Owner, true
}

// LockItemTransfer freezes transfers of an item class. Only the collection
// owner or admin may toggle the freeze.
func (r *Registry) LockItemTransfer(caller [20]byte, collectionID uint64, itemID uint32) error {
	return r.setTransferLock(caller, collectionID, itemID, true)
}

// UnlockItemTransfer lifts a transfer freeze.
func (r *Registry) UnlockItemTransfer(caller [20]byte, collectionID uint64, itemID uint32) error {
	return r.setTransferLock(caller, collectionID, itemID, false)
}

func (r *Registry) setTransferLock(caller [20]byte, collectionID uint64, itemID uint32, locked bool) error {
	if r == nil || r.state == nil {
		return errNilState
	}
	meta, ok, err := r.state.CollectionMetaGet(collectionID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUnknownCollection
	}
	if caller != meta.Owner && caller != meta.Admin {
		return ErrNoPermission
	}
	if exists, err := r.state.CollectionItemExists(collectionID, itemID); err != nil {
		return err
	} else if !exists {
		return ErrUnknownItem
	}
	return r.state.TransferLockedPut(collectionID, itemID, locked)
}
