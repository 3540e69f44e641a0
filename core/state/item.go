package state

import (
	"math/big"

	"gamechain/native/item"
)

// ReserveEntries loads the declared supply table of a collection. The order of
// entries is the creation order and is what the randomized mint draws over.
func (m *Manager) ReserveEntries(collectionID uint64) ([]item.ReserveEntry, error) {
	var stored []item.ReserveEntry
	if _, err := m.get(storageKey(reservePrefix, uint64Key(collectionID)), &stored); err != nil {
		return nil, err
	}
	return stored, nil
}

// ReserveEntriesPut stores the supply table of a collection.
func (m *Manager) ReserveEntriesPut(collectionID uint64, entries []item.ReserveEntry) error {
	return m.put(storageKey(reservePrefix, uint64Key(collectionID)), entries)
}

// MintedCount loads how many units of one item have been minted out of its
// reserve.
func (m *Manager) MintedCount(collectionID uint64, itemID uint32) (uint32, error) {
	var stored uint32
	if _, err := m.get(storageKey(mintedPrefix, uint64Key(collectionID), uint32Key(itemID)), &stored); err != nil {
		return 0, err
	}
	return stored, nil
}

// MintedCountPut stores the minted counter of one item.
func (m *Manager) MintedCountPut(collectionID uint64, itemID uint32, count uint32) error {
	return m.put(storageKey(mintedPrefix, uint64Key(collectionID), uint32Key(itemID)), count)
}

// ItemBalance loads the spendable balance of one item held by addr.
func (m *Manager) ItemBalance(addr [20]byte, collectionID uint64, itemID uint32) (uint32, error) {
	var stored uint32
	if _, err := m.get(storageKey(balancePrefix, addr[:], uint64Key(collectionID), uint32Key(itemID)), &stored); err != nil {
		return 0, err
	}
	return stored, nil
}

// ItemBalancePut stores the spendable balance of one item. A zero balance
// removes the record.
func (m *Manager) ItemBalancePut(addr [20]byte, collectionID uint64, itemID uint32, amount uint32) error {
	key := storageKey(balancePrefix, addr[:], uint64Key(collectionID), uint32Key(itemID))
	if amount == 0 {
		return m.delete(key)
	}
	return m.put(key, amount)
}

// LockBalance loads the locked balance of one item held by addr. Locked units
// are escrowed by a trade and excluded from spendable transfers.
func (m *Manager) LockBalance(addr [20]byte, collectionID uint64, itemID uint32) (uint32, error) {
	var stored uint32
	if _, err := m.get(storageKey(lockPrefix, addr[:], uint64Key(collectionID), uint32Key(itemID)), &stored); err != nil {
		return 0, err
	}
	return stored, nil
}

// LockBalancePut stores the locked balance of one item. A zero balance removes
// the record.
func (m *Manager) LockBalancePut(addr [20]byte, collectionID uint64, itemID uint32, amount uint32) error {
	key := storageKey(lockPrefix, addr[:], uint64Key(collectionID), uint32Key(itemID))
	if amount == 0 {
		return m.delete(key)
	}
	return m.put(key, amount)
}

// storedUpgrade keeps the fee non-nil so the record survives RLP encoding.
type storedUpgrade struct {
	To  uint32
	Fee *big.Int
}

// UpgradeGet loads the upgrade configured for an item class.
func (m *Manager) UpgradeGet(collectionID uint64, itemID uint32) (*item.Upgrade, bool, error) {
	stored := storedUpgrade{}
	ok, err := m.get(storageKey(upgradePrefix, uint64Key(collectionID), uint32Key(itemID)), &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	return &item.Upgrade{To: stored.To, Fee: stored.Fee}, true, nil
}

// UpgradePut stores the upgrade configured for an item class.
func (m *Manager) UpgradePut(collectionID uint64, itemID uint32, up *item.Upgrade) error {
	if up == nil {
		return m.delete(storageKey(upgradePrefix, uint64Key(collectionID), uint32Key(itemID)))
	}
	cloned := up.Clone()
	return m.put(storageKey(upgradePrefix, uint64Key(collectionID), uint32Key(itemID)), &storedUpgrade{
		To:  cloned.To,
		Fee: cloned.Fee,
	})
}
