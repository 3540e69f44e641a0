package state

import (
	"math/big"

	"gamechain/native/item"
	"gamechain/native/trade"
)

// storedTrade flattens optional fields into RLP-friendly shapes: the price ask
// carries an explicit presence flag because a nil big.Int and zero are not
// distinguishable after encoding, and the creation timestamp is widened to an
// unsigned integer.
type storedTrade struct {
	ID          uint64
	Kind        uint8
	Owner       [20]byte
	HasPrice    bool
	Price       *big.Int
	MinOrder    uint32
	HasMinOrder bool
	Bundle      []item.Package
	Required    []item.Package
	StartBlock  uint64
	Duration    uint64
	CreatedAt   uint64
}

// NextTradeID allocates the next trade identifier.
func (m *Manager) NextTradeID() (uint64, error) {
	return m.nextID(tradeCounterKey)
}

// TradePut validates and persists a trade record. Records with an unknown
// kind or a negative price never reach storage.
func (m *Manager) TradePut(record *trade.Record) error {
	cloned, err := trade.Sanitize(record)
	if err != nil {
		return err
	}
	stored := &storedTrade{
		ID:          cloned.ID,
		Kind:        uint8(cloned.Kind),
		Owner:       cloned.Owner,
		MinOrder:    cloned.MinOrder,
		HasMinOrder: cloned.HasMinOrder,
		Bundle:      cloned.Bundle,
		Required:    cloned.Required,
		StartBlock:  cloned.StartBlock,
		Duration:    cloned.Duration,
		CreatedAt:   uint64(cloned.CreatedAt),
	}
	if cloned.Price != nil {
		stored.HasPrice = true
		stored.Price = cloned.Price
	} else {
		stored.Price = big.NewInt(0)
	}
	return m.put(storageKey(tradeRecordPrefix, uint64Key(cloned.ID)), stored)
}

// TradeGet loads a trade record.
func (m *Manager) TradeGet(id uint64) (*trade.Record, bool, error) {
	stored := storedTrade{}
	ok, err := m.get(storageKey(tradeRecordPrefix, uint64Key(id)), &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	record := &trade.Record{
		ID:          stored.ID,
		Kind:        trade.Kind(stored.Kind),
		Owner:       stored.Owner,
		MinOrder:    stored.MinOrder,
		HasMinOrder: stored.HasMinOrder,
		Bundle:      item.Bundle(stored.Bundle).Clone(),
		Required:    item.Bundle(stored.Required).Clone(),
		StartBlock:  stored.StartBlock,
		Duration:    stored.Duration,
		CreatedAt:   int64(stored.CreatedAt),
	}
	if stored.HasPrice && stored.Price != nil {
		record.Price = new(big.Int).Set(stored.Price)
	}
	return record, true, nil
}

// TradeDelete removes a trade record.
func (m *Manager) TradeDelete(id uint64) error {
	return m.delete(storageKey(tradeRecordPrefix, uint64Key(id)))
}

type storedBid struct {
	Bidder [20]byte
	Amount *big.Int
}

// BidPut stores the highest bid of an auction.
func (m *Manager) BidPut(tradeID uint64, bid *trade.Bid) error {
	cloned := bid.Clone()
	return m.put(storageKey(tradeBidPrefix, uint64Key(tradeID)), &storedBid{
		Bidder: cloned.Bidder,
		Amount: cloned.Amount,
	})
}

// BidGet loads the highest bid of an auction, if any has been placed.
func (m *Manager) BidGet(tradeID uint64) (*trade.Bid, bool, error) {
	stored := storedBid{}
	ok, err := m.get(storageKey(tradeBidPrefix, uint64Key(tradeID)), &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	bid := &trade.Bid{Bidder: stored.Bidder, Amount: big.NewInt(0)}
	if stored.Amount != nil {
		bid.Amount = new(big.Int).Set(stored.Amount)
	}
	return bid, true, nil
}

// BidDelete removes the stored bid of an auction.
func (m *Manager) BidDelete(tradeID uint64) error {
	return m.delete(storageKey(tradeBidPrefix, uint64Key(tradeID)))
}
