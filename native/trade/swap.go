package trade

import (
	"math/big"

	"gamechain/native/item"
)

// SetSwap escrows a source bundle against a required bundle and an optional
// price ask. The source bundle is locked and the listing deposit reserved
// until a claimant settles or the owner cancels.
func (e *Engine) SetSwap(caller [20]byte, source, required item.Bundle, price *big.Int) (uint64, error) {
	if err := e.ready(); err != nil {
		return 0, err
	}
	if err := e.checkBundle(source); err != nil {
		return 0, err
	}
	if err := e.checkBundle(required); err != nil {
		return 0, err
	}
	covered, err := e.items.SpendableCovers(caller, source)
	if err != nil {
		return 0, err
	}
	if !covered {
		return 0, item.ErrInsufficientItemBalance
	}
	// Reserve before locking so a deposit shortfall leaves the supply
	// untouched.
	if err := e.state.Reserve(caller, e.deposit); err != nil {
		return 0, err
	}
	if err := e.items.LockBundle(caller, source); err != nil {
		_ = e.state.Unreserve(caller, e.deposit)
		return 0, err
	}
	id, err := e.allocateID()
	if err != nil {
		return 0, err
	}
	record := &Record{
		ID:        id,
		Kind:      KindSwap,
		Owner:     caller,
		Price:     cloneBigInt(price),
		Bundle:    source.Clone(),
		Required:  required.Clone(),
		CreatedAt: e.nowFn(),
	}
	if err := e.state.TradePut(record); err != nil {
		return 0, err
	}
	e.emit(newTradeListedEvent(record))
	return id, nil
}

// ClaimSwap settles a swap: the claimant pays the optional price ask, hands
// over the required bundle and receives the locked source bundle. The owner's
// listing deposit is released.
func (e *Engine) ClaimSwap(caller [20]byte, id uint64, bidPrice *big.Int) error {
	if err := e.ready(); err != nil {
		return err
	}
	record, err := e.load(id, KindSwap)
	if err != nil {
		return err
	}
	if record.Price != nil {
		if bidPrice == nil || bidPrice.Cmp(record.Price) < 0 {
			return ErrBidTooLow
		}
	}
	covered, err := e.items.SpendableCovers(caller, record.Required)
	if err != nil {
		return err
	}
	if !covered {
		return item.ErrInsufficientItemBalance
	}
	if record.Price != nil {
		if err := e.state.Transfer(caller, record.Owner, record.Price, false); err != nil {
			return err
		}
	}
	if err := e.items.TransferBundle(caller, record.Required, record.Owner); err != nil {
		return err
	}
	if err := e.items.RepatriateLockedBundle(record.Owner, record.Bundle, caller); err != nil {
		return err
	}
	if err := e.state.Unreserve(record.Owner, e.deposit); err != nil {
		return err
	}
	if err := e.state.TradeDelete(id); err != nil {
		return err
	}
	e.emit(newTradeSettledEvent(record, caller))
	return nil
}

// CancelSwap withdraws a swap, returning the locked source bundle and the
// listing deposit to the owner.
func (e *Engine) CancelSwap(caller [20]byte, id uint64) error {
	if err := e.ready(); err != nil {
		return err
	}
	record, err := e.load(id, KindSwap)
	if err != nil {
		return err
	}
	if record.Owner != caller {
		return ErrNoPermission
	}
	if err := e.items.UnlockBundle(record.Owner, record.Bundle); err != nil {
		return err
	}
	if err := e.state.Unreserve(record.Owner, e.deposit); err != nil {
		return err
	}
	if err := e.state.TradeDelete(id); err != nil {
		return err
	}
	e.emit(newTradeCancelledEvent(record))
	return nil
}
