package trade

import (
	"math/big"

	"gamechain/native/item"
)

// SetAuction escrows a lot for a time-boxed auction. Bidding opens at
// startBlock and closes duration blocks later; price is the reserve floor
// the first bid must meet.
func (e *Engine) SetAuction(caller [20]byte, lot item.Bundle, price *big.Int, startBlock, duration uint64) (uint64, error) {
	if err := e.ready(); err != nil {
		return 0, err
	}
	if err := e.checkBundle(lot); err != nil {
		return 0, err
	}
	if duration == 0 {
		return 0, ErrAuctionEnded
	}
	covered, err := e.items.SpendableCovers(caller, lot)
	if err != nil {
		return 0, err
	}
	if !covered {
		return 0, item.ErrInsufficientItemBalance
	}
	// Reserve before locking so a deposit shortfall leaves the lot
	// untouched.
	if err := e.state.Reserve(caller, e.deposit); err != nil {
		return 0, err
	}
	if err := e.items.LockBundle(caller, lot); err != nil {
		_ = e.state.Unreserve(caller, e.deposit)
		return 0, err
	}
	id, err := e.allocateID()
	if err != nil {
		return 0, err
	}
	record := &Record{
		ID:         id,
		Kind:       KindAuction,
		Owner:      caller,
		Price:      cloneBigInt(price),
		Bundle:     lot.Clone(),
		StartBlock: startBlock,
		Duration:   duration,
		CreatedAt:  e.nowFn(),
	}
	if err := e.state.TradePut(record); err != nil {
		return 0, err
	}
	e.emit(newTradeListedEvent(record))
	return id, nil
}

// BidAuction places a bid inside the auction window. The amount is reserved
// on the bidder until outbid or settled; an outbid reservation is released
// in the same step. Each bid must strictly exceed the standing bid.
func (e *Engine) BidAuction(caller [20]byte, id uint64, amount *big.Int) error {
	if err := e.ready(); err != nil {
		return err
	}
	record, err := e.load(id, KindAuction)
	if err != nil {
		return err
	}
	height := e.heightFn()
	if height < record.StartBlock {
		return ErrAuctionNotStarted
	}
	if height >= record.StartBlock+record.Duration {
		return ErrAuctionEnded
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrBidTooLow
	}
	if record.Price != nil && amount.Cmp(record.Price) < 0 {
		return ErrBidTooLow
	}
	previous, hasBid, err := e.state.BidGet(id)
	if err != nil {
		return err
	}
	if hasBid && amount.Cmp(previous.Amount) <= 0 {
		return ErrBidTooLow
	}
	if err := e.state.Reserve(caller, amount); err != nil {
		return err
	}
	if hasBid {
		if err := e.state.Unreserve(previous.Bidder, previous.Amount); err != nil {
			return err
		}
	}
	if err := e.state.BidPut(id, &Bid{Bidder: caller, Amount: new(big.Int).Set(amount)}); err != nil {
		return err
	}
	e.emit(newAuctionBidEvent(record, caller, amount))
	return nil
}

// ClaimAuction settles an auction after its window closes: the highest bid
// moves to the owner and the lot to the winner. Without bids the lot returns
// to the owner. Any participant may trigger the claim.
func (e *Engine) ClaimAuction(caller [20]byte, id uint64) error {
	if err := e.ready(); err != nil {
		return err
	}
	record, err := e.load(id, KindAuction)
	if err != nil {
		return err
	}
	if e.heightFn() < record.StartBlock+record.Duration {
		return ErrAuctionInProgress
	}
	return e.settleAuction(record)
}

// cancelAuction settles rather than cancels: a standing bid wins the lot
// immediately. Only the owner may cut the window short.
func (e *Engine) cancelAuction(caller [20]byte, record *Record) error {
	if record.Owner != caller {
		return ErrNoPermission
	}
	return e.settleAuction(record)
}

func (e *Engine) settleAuction(record *Record) error {
	bid, hasBid, err := e.state.BidGet(record.ID)
	if err != nil {
		return err
	}
	if hasBid {
		if err := e.state.RepatriateReserved(bid.Bidder, record.Owner, bid.Amount); err != nil {
			return err
		}
		if err := e.items.RepatriateLockedBundle(record.Owner, record.Bundle, bid.Bidder); err != nil {
			return err
		}
		if err := e.state.BidDelete(record.ID); err != nil {
			return err
		}
	} else if err := e.items.UnlockBundle(record.Owner, record.Bundle); err != nil {
		return err
	}
	if err := e.state.Unreserve(record.Owner, e.deposit); err != nil {
		return err
	}
	if err := e.state.TradeDelete(record.ID); err != nil {
		return err
	}
	if hasBid {
		e.emit(newTradeSettledEvent(record, bid.Bidder))
	} else {
		e.emit(newTradeCancelledEvent(record))
	}
	return nil
}
