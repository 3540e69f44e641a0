package state

import (
	"math/big"

	"gamechain/native/game"
)

type storedGame struct {
	ID           uint64
	Owner        [20]byte
	Admin        [20]byte
	Collections  uint32
	OwnerDeposit *big.Int
}

// NextGameID allocates the next game identifier.
func (m *Manager) NextGameID() (uint64, error) {
	return m.nextID(gameCounterKey)
}

// GamePut persists the details record for a game.
func (m *Manager) GamePut(details *game.Details) error {
	cloned := details.Clone()
	return m.put(storageKey(gameRecordPrefix, uint64Key(cloned.ID)), &storedGame{
		ID:           cloned.ID,
		Owner:        cloned.Owner,
		Admin:        cloned.Admin,
		Collections:  cloned.Collections,
		OwnerDeposit: cloned.OwnerDeposit,
	})
}

// GameGet loads the details record for a game.
func (m *Manager) GameGet(id uint64) (*game.Details, bool, error) {
	stored := storedGame{}
	ok, err := m.get(storageKey(gameRecordPrefix, uint64Key(id)), &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	details := &game.Details{
		ID:           stored.ID,
		Owner:        stored.Owner,
		Admin:        stored.Admin,
		Collections:  stored.Collections,
		OwnerDeposit: big.NewInt(0),
	}
	if stored.OwnerDeposit != nil {
		details.OwnerDeposit = new(big.Int).Set(stored.OwnerDeposit)
	}
	return details, true, nil
}

// RolesGet loads the role grant of addr within a game. A missing grant decodes
// as the empty set.
func (m *Manager) RolesGet(gameID uint64, addr [20]byte) (game.RoleSet, error) {
	var stored uint8
	ok, err := m.get(storageKey(gameRolePrefix, uint64Key(gameID), addr[:]), &stored)
	if err != nil || !ok {
		return 0, err
	}
	return game.RoleSet(stored), nil
}

// RolesPut stores the role grant of addr within a game. Storing the empty set
// removes the grant.
func (m *Manager) RolesPut(gameID uint64, addr [20]byte, roles game.RoleSet) error {
	key := storageKey(gameRolePrefix, uint64Key(gameID), addr[:])
	if roles == 0 {
		return m.delete(key)
	}
	return m.put(key, uint8(roles))
}

// GameCollections loads the ordered collection list of a game.
func (m *Manager) GameCollections(gameID uint64) ([]uint64, error) {
	var stored []uint64
	if _, err := m.get(storageKey(gameCollectionsPrefix, uint64Key(gameID)), &stored); err != nil {
		return nil, err
	}
	return stored, nil
}

// GameCollectionsPut stores the collection list of a game.
func (m *Manager) GameCollectionsPut(gameID uint64, collections []uint64) error {
	key := storageKey(gameCollectionsPrefix, uint64Key(gameID))
	if len(collections) == 0 {
		return m.delete(key)
	}
	return m.put(key, collections)
}

// CollectionGame resolves the owning game of a collection, if linked.
func (m *Manager) CollectionGame(collectionID uint64) (uint64, bool, error) {
	var stored uint64
	ok, err := m.get(storageKey(collectionGamePrefix, uint64Key(collectionID)), &stored)
	if err != nil || !ok {
		return 0, false, err
	}
	return stored, true, nil
}

// CollectionGamePut links a collection to its owning game.
func (m *Manager) CollectionGamePut(collectionID, gameID uint64) error {
	return m.put(storageKey(collectionGamePrefix, uint64Key(collectionID)), gameID)
}

// CollectionGameDelete removes the collection-to-game link.
func (m *Manager) CollectionGameDelete(collectionID uint64) error {
	return m.delete(storageKey(collectionGamePrefix, uint64Key(collectionID)))
}
