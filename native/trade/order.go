package trade

import (
	"math/big"

	"gamechain/native/item"
)

// SetBuyOrder posts a standing bid for amount units of one item at a unit
// price. The full payment and the listing deposit are reserved up front, so
// a claiming seller is guaranteed payment at settlement.
func (e *Engine) SetBuyOrder(caller [20]byte, pkg item.Package, price *big.Int) (uint64, error) {
	if err := e.ready(); err != nil {
		return 0, err
	}
	if e.registry == nil {
		return 0, errNilRegistry
	}
	if pkg.Amount == 0 {
		return 0, ErrEmptyBundle
	}
	if price == nil || price.Sign() < 0 {
		return 0, ErrBidTooLow
	}
	if !e.registry.CanTransfer(pkg.Collection, pkg.Item) {
		return 0, ErrItemLocked
	}
	payment := new(big.Int).Mul(price, new(big.Int).SetUint64(uint64(pkg.Amount)))
	hold := new(big.Int).Add(e.deposit, payment)
	if err := e.state.Reserve(caller, hold); err != nil {
		return 0, err
	}
	id, err := e.allocateID()
	if err != nil {
		return 0, err
	}
	record := &Record{
		ID:        id,
		Kind:      KindBuyOrder,
		Owner:     caller,
		Price:     new(big.Int).Set(price),
		Required:  item.Bundle{pkg},
		CreatedAt: e.nowFn(),
	}
	if err := e.state.TradePut(record); err != nil {
		return 0, err
	}
	e.emit(newTradeListedEvent(record))
	return id, nil
}

// ClaimBuyOrder sells amount units into a buy order at askPrice per unit.
// Partial claims persist the record with the reduced remaining amount; the
// seller is paid out of the buyer's reservation.
func (e *Engine) ClaimBuyOrder(caller [20]byte, id uint64, amount uint32, askPrice *big.Int) error {
	if err := e.ready(); err != nil {
		return err
	}
	if e.registry == nil {
		return errNilRegistry
	}
	record, err := e.load(id, KindBuyOrder)
	if err != nil {
		return err
	}
	pkg := record.Required[0]
	if !e.registry.CanTransfer(pkg.Collection, pkg.Item) {
		return ErrItemLocked
	}
	remaining := pkg.Amount
	if remaining == 0 || amount > remaining {
		return ErrSoldOut
	}
	if amount == 0 {
		return ErrAmountUnacceptable
	}
	if askPrice != nil && askPrice.Cmp(record.Price) > 0 {
		return ErrAskTooHigh
	}
	delivery := item.Bundle{{Collection: pkg.Collection, Item: pkg.Item, Amount: amount}}
	covered, err := e.items.SpendableCovers(caller, delivery)
	if err != nil {
		return err
	}
	if !covered {
		return item.ErrInsufficientItemBalance
	}
	if err := e.items.TransferBundle(caller, delivery, record.Owner); err != nil {
		return err
	}
	payout := new(big.Int).Mul(record.Price, new(big.Int).SetUint64(uint64(amount)))
	if err := e.state.RepatriateReserved(record.Owner, caller, payout); err != nil {
		return err
	}
	record.Required[0].Amount = remaining - amount
	if err := e.state.TradePut(record); err != nil {
		return err
	}
	e.emit(newTradeFilledEvent(record, caller, amount, payout))
	return nil
}

func (e *Engine) cancelBuyOrder(caller [20]byte, record *Record) error {
	if record.Owner != caller {
		return ErrNoPermission
	}
	remaining := new(big.Int).SetUint64(uint64(record.Required[0].Amount))
	hold := new(big.Int).Add(e.deposit, new(big.Int).Mul(record.Price, remaining))
	if err := e.state.Unreserve(record.Owner, hold); err != nil {
		return err
	}
	if err := e.state.TradeDelete(record.ID); err != nil {
		return err
	}
	e.emit(newTradeCancelledEvent(record))
	return nil
}
