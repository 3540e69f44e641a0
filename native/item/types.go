package item

import "math/big"

// Package identifies an amount of one item within one collection. Bundles of
// packages are the unit every trade type escrows and transfers.
type Package struct {
	Collection uint64
	Item       uint32
	Amount     uint32
}

// Bundle is an ordered list of packages bounded by the engine's MaxBundle.
type Bundle []Package

// Clone returns an independent copy of the bundle.
func (b Bundle) Clone() Bundle {
	if b == nil {
		return nil
	}
	clone := make(Bundle, len(b))
	copy(clone, b)
	return clone
}

// ReserveEntry records the declared maximum supply of one item within a
// collection. Totals only grow (CreateItem, AddItem); consumption is tracked
// by a separate minted counter so the entry itself is never decremented.
type ReserveEntry struct {
	Item  uint32
	Total uint32
}

// Upgrade maps an item class to its successor. Holders convert units of the
// source item into the target by paying Fee per unit to the collection
// owner. Chains form naturally: the target item may carry its own upgrade.
type Upgrade struct {
	To  uint32
	Fee *big.Int
}

// Clone returns a deep copy of the upgrade config.
func (u *Upgrade) Clone() *Upgrade {
	if u == nil {
		return nil
	}
	clone := *u
	if u.Fee != nil {
		clone.Fee = new(big.Int).Set(u.Fee)
	} else {
		clone.Fee = big.NewInt(0)
	}
	return &clone
}
