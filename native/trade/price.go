package trade

import (
	"math/big"

	"gamechain/native/item"
)

// SetPrice lists amount units of one item at a unit price. The supply is
// locked out of the seller's spendable balance and the listing deposit is
// reserved. With minOrder set, partial buys of at least minOrder units are
// accepted while more than minOrder units remain; without it the sale is
// all-or-nothing.
func (e *Engine) SetPrice(caller [20]byte, pkg item.Package, price *big.Int, minOrder uint32, hasMinOrder bool) (uint64, error) {
	if err := e.ready(); err != nil {
		return 0, err
	}
	if e.registry == nil {
		return 0, errNilRegistry
	}
	if pkg.Amount == 0 {
		return 0, ErrEmptyBundle
	}
	if !e.registry.CanTransfer(pkg.Collection, pkg.Item) {
		return 0, ErrItemLocked
	}
	covered, err := e.items.SpendableCovers(caller, item.Bundle{pkg})
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
	if err := e.items.LockItem(caller, pkg.Collection, pkg.Item, pkg.Amount); err != nil {
		_ = e.state.Unreserve(caller, e.deposit)
		return 0, err
	}
	id, err := e.allocateID()
	if err != nil {
		return 0, err
	}
	record := &Record{
		ID:          id,
		Kind:        KindFixedPrice,
		Owner:       caller,
		Price:       cloneBigInt(price),
		MinOrder:    minOrder,
		HasMinOrder: hasMinOrder,
		Bundle:      item.Bundle{pkg},
		CreatedAt:   e.nowFn(),
	}
	if err := e.state.TradePut(record); err != nil {
		return 0, err
	}
	e.emit(newTradeListedEvent(record))
	return id, nil
}

// BuyItem purchases amount units from a fixed-price sale at bidPrice per
// unit. Partial fills persist the record with the reduced remaining amount;
// an exhausted record is retained with zero remaining until the owner
// cancels it.
func (e *Engine) BuyItem(caller [20]byte, id uint64, amount uint32, bidPrice *big.Int) error {
	if err := e.ready(); err != nil {
		return err
	}
	if e.registry == nil {
		return errNilRegistry
	}
	record, ok, err := e.state.TradeGet(id)
	if err != nil {
		return err
	}
	if !ok || record.Kind != KindFixedPrice {
		return ErrNotForSale
	}
	pkg := record.Bundle[0]
	if !e.registry.CanTransfer(pkg.Collection, pkg.Item) {
		return ErrItemLocked
	}
	remaining := pkg.Amount
	if remaining == 0 {
		return ErrSoldOut
	}
	if record.HasMinOrder {
		if remaining <= record.MinOrder {
			if amount != remaining {
				return ErrBuyAllOnly
			}
		} else {
			if amount < record.MinOrder {
				return ErrAmountUnacceptable
			}
			if amount > remaining {
				return ErrSoldOut
			}
		}
	} else if amount != remaining {
		return ErrBuyAllOnly
	}
	unitPrice := big.NewInt(0)
	if record.Price != nil {
		unitPrice = record.Price
	}
	if bidPrice == nil || bidPrice.Cmp(unitPrice) < 0 {
		return ErrBidTooLow
	}
	cost := new(big.Int).Mul(unitPrice, new(big.Int).SetUint64(uint64(amount)))
	if err := e.state.Transfer(caller, record.Owner, cost, false); err != nil {
		return err
	}
	if err := e.items.TransferLockItem(record.Owner, pkg.Collection, pkg.Item, caller, amount); err != nil {
		return err
	}
	if err := e.items.UnlockItem(caller, pkg.Collection, pkg.Item, amount); err != nil {
		return err
	}
	record.Bundle[0].Amount = remaining - amount
	if err := e.state.TradePut(record); err != nil {
		return err
	}
	e.emit(newTradeFilledEvent(record, caller, amount, cost))
	return nil
}

// AddRetailSupply locks additional units into an open fixed-price sale.
func (e *Engine) AddRetailSupply(caller [20]byte, id uint64, amount uint32) error {
	if err := e.ready(); err != nil {
		return err
	}
	if amount == 0 {
		return ErrEmptyBundle
	}
	record, err := e.load(id, KindFixedPrice)
	if err != nil {
		return err
	}
	if record.Owner != caller {
		return ErrNoPermission
	}
	pkg := record.Bundle[0]
	if err := e.items.LockItem(caller, pkg.Collection, pkg.Item, amount); err != nil {
		return err
	}
	record.Bundle[0].Amount = pkg.Amount + amount
	if err := e.state.TradePut(record); err != nil {
		return err
	}
	e.emit(newTradeSupplyAddedEvent(record, amount))
	return nil
}

// CancelPrice withdraws a fixed-price sale, returning the unsold supply and
// the listing deposit to the owner.
func (e *Engine) CancelPrice(caller [20]byte, id uint64) error {
	if err := e.ready(); err != nil {
		return err
	}
	record, err := e.load(id, KindFixedPrice)
	if err != nil {
		return err
	}
	if record.Owner != caller {
		return ErrNoPermission
	}
	pkg := record.Bundle[0]
	if pkg.Amount > 0 {
		if err := e.items.UnlockItem(record.Owner, pkg.Collection, pkg.Item, pkg.Amount); err != nil {
			return err
		}
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

func cloneBigInt(v *big.Int) *big.Int {
	if v == nil {
		return nil
	}
	return new(big.Int).Set(v)
}
