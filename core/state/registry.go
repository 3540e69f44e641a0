package state

// CollectionMeta is the stored header of a registry collection.
type CollectionMeta struct {
	ID    uint64
	Owner [20]byte
	Admin [20]byte
	Items uint32
}

// NextCollectionID allocates the next collection identifier.
func (m *Manager) NextCollectionID() (uint64, error) {
	return m.nextID(collectionCounterKey)
}

// CollectionMetaPut persists the header of a collection.
func (m *Manager) CollectionMetaPut(meta *CollectionMeta) error {
	cloned := *meta
	return m.put(storageKey(collectionMetaPrefix, uint64Key(meta.ID)), &cloned)
}

// CollectionMetaGet loads the header of a collection.
func (m *Manager) CollectionMetaGet(id uint64) (*CollectionMeta, bool, error) {
	stored := CollectionMeta{}
	ok, err := m.get(storageKey(collectionMetaPrefix, uint64Key(id)), &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	return &stored, true, nil
}

// CollectionItemExists reports whether an item class has been registered in a
// collection.
func (m *Manager) CollectionItemExists(collectionID uint64, itemID uint32) (bool, error) {
	var stored [20]byte
	ok, err := m.get(storageKey(collectionItemPrefix, uint64Key(collectionID), uint32Key(itemID)), &stored)
	if err != nil {
		return false, err
	}
	return ok, nil
}

// CollectionItemPut registers an item class and its initial owner in a
// collection.
func (m *Manager) CollectionItemPut(collectionID uint64, itemID uint32, owner [20]byte) error {
	return m.put(storageKey(collectionItemPrefix, uint64Key(collectionID), uint32Key(itemID)), owner)
}

// TransferLocked reports whether transfers of an item class are frozen.
func (m *Manager) TransferLocked(collectionID uint64, itemID uint32) (bool, error) {
	var stored bool
	if _, err := m.get(storageKey(transferLockPrefix, uint64Key(collectionID), uint32Key(itemID)), &stored); err != nil {
		return false, err
	}
	return stored, nil
}

// TransferLockedPut toggles the transfer freeze of an item class. Clearing the
// flag removes the record.
func (m *Manager) TransferLockedPut(collectionID uint64, itemID uint32, locked bool) error {
	key := storageKey(transferLockPrefix, uint64Key(collectionID), uint32Key(itemID))
	if !locked {
		return m.delete(key)
	}
	return m.put(key, locked)
}
