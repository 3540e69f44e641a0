package trade

import (
	"math/big"

	"gamechain/native/item"
)

// SetWishlist posts a wanted bundle with a price offer. The full price and
// the listing deposit are reserved up front, so a filler is guaranteed
// payment at settlement.
func (e *Engine) SetWishlist(caller [20]byte, wanted item.Bundle, price *big.Int) (uint64, error) {
	if err := e.ready(); err != nil {
		return 0, err
	}
	if err := e.checkBundle(wanted); err != nil {
		return 0, err
	}
	if price == nil || price.Sign() < 0 {
		return 0, ErrBidTooLow
	}
	hold := new(big.Int).Add(e.deposit, price)
	if err := e.state.Reserve(caller, hold); err != nil {
		return 0, err
	}
	id, err := e.allocateID()
	if err != nil {
		return 0, err
	}
	record := &Record{
		ID:        id,
		Kind:      KindWishlist,
		Owner:     caller,
		Price:     new(big.Int).Set(price),
		Required:  wanted.Clone(),
		CreatedAt: e.nowFn(),
	}
	if err := e.state.TradePut(record); err != nil {
		return 0, err
	}
	e.emit(newTradeListedEvent(record))
	return id, nil
}

// FillWishlist settles a wishlist: the filler hands over the wanted bundle
// and receives the reserved price. askPrice is the filler's minimum; asking
// more than the posted price is rejected.
func (e *Engine) FillWishlist(caller [20]byte, id uint64, askPrice *big.Int) error {
	if err := e.ready(); err != nil {
		return err
	}
	record, err := e.load(id, KindWishlist)
	if err != nil {
		return err
	}
	if askPrice != nil && askPrice.Cmp(record.Price) > 0 {
		return ErrAskTooHigh
	}
	covered, err := e.items.SpendableCovers(caller, record.Required)
	if err != nil {
		return err
	}
	if !covered {
		return item.ErrInsufficientItemBalance
	}
	if err := e.items.TransferBundle(caller, record.Required, record.Owner); err != nil {
		return err
	}
	if err := e.state.RepatriateReserved(record.Owner, caller, record.Price); err != nil {
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

// CancelWishlist withdraws a wishlist, releasing the reserved price and the
// listing deposit back to the owner.
func (e *Engine) CancelWishlist(caller [20]byte, id uint64) error {
	if err := e.ready(); err != nil {
		return err
	}
	record, err := e.load(id, KindWishlist)
	if err != nil {
		return err
	}
	if record.Owner != caller {
		return ErrNoPermission
	}
	hold := new(big.Int).Add(e.deposit, record.Price)
	if err := e.state.Unreserve(record.Owner, hold); err != nil {
		return err
	}
	if err := e.state.TradeDelete(id); err != nil {
		return err
	}
	e.emit(newTradeCancelledEvent(record))
	return nil
}
