package item

import "math/big"

// SetUpgrade configures the successor of an item class. The target class is
// registered with the collection registry so it exists without a reserve
// entry: upgraded units only ever come out of converted source units, never
// out of the mint reserve. The caller must hold the full role set for the
// collection's game.
func (e *Engine) SetUpgrade(caller [20]byte, collectionID uint64, itemID, upgradedID uint32, fee *big.Int) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if e.registry == nil {
		return errNilRegistry
	}
	if err := e.requireFullRoles(collectionID, caller); err != nil {
		return err
	}
	entries, err := e.state.ReserveEntries(collectionID)
	if err != nil {
		return err
	}
	known := false
	for _, entry := range entries {
		if entry.Item == itemID {
			known = true
			break
		}
	}
	if !known {
		return ErrUnknownItem
	}
	if _, exists, err := e.state.UpgradeGet(collectionID, itemID); err != nil {
		return err
	} else if exists {
		return ErrUpgradeExists
	}
	if err := e.registry.MintInto(collectionID, upgradedID, caller); err != nil {
		return err
	}
	up := &Upgrade{To: upgradedID, Fee: fee}
	if err := e.state.UpgradePut(collectionID, itemID, up); err != nil {
		return err
	}
	e.emit(newUpgradeSetEvent(collectionID, itemID, upgradedID, up.Clone().Fee.String(), caller, e.nowFn()))
	return nil
}

// UpgradeConfig reads the upgrade configured for an item class.
func (e *Engine) UpgradeConfig(collectionID uint64, itemID uint32) (*Upgrade, bool, error) {
	if e == nil || e.state == nil {
		return nil, false, errNilState
	}
	return e.state.UpgradeGet(collectionID, itemID)
}

// Upgrade converts amount units of an item into its configured successor,
// paying the per-unit fee to the collection owner. Conversion and payment
// commit together or not at all.
func (e *Engine) Upgrade(caller [20]byte, collectionID uint64, itemID, amount uint32) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if e.registry == nil {
		return errNilRegistry
	}
	if amount == 0 {
		return nil
	}
	up, ok, err := e.state.UpgradeGet(collectionID, itemID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUnknownUpgrade
	}
	balance, err := e.state.ItemBalance(caller, collectionID, itemID)
	if err != nil {
		return err
	}
	if balance < amount {
		return ErrInsufficientItemBalance
	}
	if up.Fee != nil && up.Fee.Sign() > 0 {
		owner, ok := e.registry.CollectionOwner(collectionID)
		if !ok {
			return ErrUnknownCollection
		}
		cost := new(big.Int).Mul(up.Fee, new(big.Int).SetUint64(uint64(amount)))
		if err := e.state.Transfer(caller, owner, cost, true); err != nil {
			return err
		}
	}
	upgraded, err := e.state.ItemBalance(caller, collectionID, up.To)
	if err != nil {
		return err
	}
	if err := e.state.ItemBalancePut(caller, collectionID, itemID, balance-amount); err != nil {
		return err
	}
	if err := e.state.ItemBalancePut(caller, collectionID, up.To, upgraded+amount); err != nil {
		return err
	}
	e.emit(newItemUpgradedEvent(collectionID, itemID, up.To, amount, caller, e.nowFn()))
	return nil
}
