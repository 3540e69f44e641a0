package trade

import (
	"errors"
	"math/big"
	"time"

	"gamechain/core/events"
	"gamechain/native/item"
)

var (
	errNilState    = errors.New("trade engine: state not configured")
	errNilItems    = errors.New("trade engine: item ledger not configured")
	errNilRegistry = errors.New("trade engine: collection registry not configured")

	// ErrNoPermission is returned when the caller does not own the trade.
	ErrNoPermission = errors.New("trade engine: no permission")
	// ErrUnknownTrade is returned when no record exists for the trade id.
	ErrUnknownTrade = errors.New("trade engine: unknown trade")
	// ErrTradeIdInUse is returned when an allocated trade id is already
	// occupied.
	ErrTradeIdInUse = errors.New("trade engine: trade id in use")
	// ErrNotForSale is returned when the trade id does not reference an open
	// fixed-price sale.
	ErrNotForSale = errors.New("trade engine: not for sale")
	// ErrSoldOut is returned when a buy exceeds the remaining sale amount.
	ErrSoldOut = errors.New("trade engine: sold out")
	// ErrBuyAllOnly is returned when the sale only accepts buying the entire
	// remaining amount.
	ErrBuyAllOnly = errors.New("trade engine: must buy entire remaining amount")
	// ErrAmountUnacceptable is returned when a buy is below the seller's
	// minimum order quantity.
	ErrAmountUnacceptable = errors.New("trade engine: amount below minimum order")
	// ErrBidTooLow is returned when an offered price does not meet the ask
	// or the current highest bid.
	ErrBidTooLow = errors.New("trade engine: bid too low")
	// ErrAskTooHigh is returned when a wishlist fill asks more than the
	// posted price.
	ErrAskTooHigh = errors.New("trade engine: ask above wishlist price")
	// ErrExceedMaxBundle is returned when a bundle exceeds the configured
	// package bound.
	ErrExceedMaxBundle = errors.New("trade engine: bundle limit exceeded")
	// ErrEmptyBundle is returned when a trade is created without packages.
	ErrEmptyBundle = errors.New("trade engine: empty bundle")
	// ErrItemLocked is returned when the registry denies transferability of
	// an item.
	ErrItemLocked = errors.New("trade engine: item transfer locked")
	// ErrAuctionNotStarted is returned when a bid arrives before the start
	// block.
	ErrAuctionNotStarted = errors.New("trade engine: auction not started")
	// ErrAuctionEnded is returned when a bid arrives after the window.
	ErrAuctionEnded = errors.New("trade engine: auction ended")
	// ErrAuctionInProgress is returned when a claim arrives before the
	// window closes.
	ErrAuctionInProgress = errors.New("trade engine: auction in progress")
)

type engineState interface {
	NextTradeID() (uint64, error)
	TradePut(*Record) error
	TradeGet(id uint64) (*Record, bool, error)
	TradeDelete(id uint64) error
	BidPut(tradeID uint64, bid *Bid) error
	BidGet(tradeID uint64) (*Bid, bool, error)
	BidDelete(tradeID uint64) error
	Reserve(addr [20]byte, amount *big.Int) error
	Unreserve(addr [20]byte, amount *big.Int) error
	RepatriateReserved(from, to [20]byte, amount *big.Int) error
	Transfer(from, to [20]byte, amount *big.Int, keepAlive bool) error
}

// itemLedger is the slice of the item engine the trade engine drives: escrow
// locks, lock reassignment and spendable moves.
type itemLedger interface {
	LockItem(owner [20]byte, collectionID uint64, itemID uint32, amount uint32) error
	UnlockItem(owner [20]byte, collectionID uint64, itemID uint32, amount uint32) error
	TransferLockItem(from [20]byte, collectionID uint64, itemID uint32, to [20]byte, amount uint32) error
	LockBundle(owner [20]byte, bundle item.Bundle) error
	UnlockBundle(owner [20]byte, bundle item.Bundle) error
	RepatriateLockedBundle(from [20]byte, bundle item.Bundle, to [20]byte) error
	TransferBundle(from [20]byte, bundle item.Bundle, to [20]byte) error
	SpendableCovers(owner [20]byte, bundle item.Bundle) (bool, error)
}

// collectionRegistry is the transferability slice of the external registry
// capability.
type collectionRegistry interface {
	CanTransfer(collectionID uint64, itemID uint32) bool
}

// Engine runs the trade state machines. Each record progresses from open to
// exactly one terminal step (settle or cancel); every terminal step releases
// the escrowed items and the listing deposit exactly once.
type Engine struct {
	state     engineState
	items     itemLedger
	registry  collectionRegistry
	emitter   events.Emitter
	deposit   *big.Int
	maxBundle uint32
	heightFn  func() uint64
	nowFn     func() int64
}

// DefaultMaxBundle bounds the number of packages per trade bundle.
const DefaultMaxBundle = 8

// NewEngine creates a trade engine with a no-op emitter.
func NewEngine() *Engine {
	return &Engine{
		emitter:   events.NoopEmitter{},
		deposit:   big.NewInt(0),
		maxBundle: DefaultMaxBundle,
		heightFn:  func() uint64 { return 0 },
		nowFn:     func() int64 { return time.Now().Unix() },
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetItemLedger configures the item ledger the engine escrows through.
func (e *Engine) SetItemLedger(items itemLedger) { e.items = items }

// SetRegistry configures the external collection registry capability.
func (e *Engine) SetRegistry(registry collectionRegistry) { e.registry = registry }

// SetDeposit configures the native-currency deposit reserved from a trade
// owner at listing. Nil resets the deposit to zero.
func (e *Engine) SetDeposit(amount *big.Int) {
	if amount == nil {
		e.deposit = big.NewInt(0)
		return
	}
	e.deposit = new(big.Int).Set(amount)
}

// SetMaxBundle configures the per-trade bundle bound. Zero restores the
// default.
func (e *Engine) SetMaxBundle(limit uint32) {
	if limit == 0 {
		limit = DefaultMaxBundle
	}
	e.maxBundle = limit
}

// SetHeightFunc configures the block height source driving auction windows.
func (e *Engine) SetHeightFunc(height func() uint64) {
	if height == nil {
		e.heightFn = func() uint64 { return 0 }
		return
	}
	e.heightFn = height
}

// SetEmitter configures the event emitter used by the engine. Passing nil
// resets the emitter to a no-op implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFunc overrides the time source used by the engine.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

func (e *Engine) ready() error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if e.items == nil {
		return errNilItems
	}
	return nil
}

func (e *Engine) checkBundle(bundle item.Bundle) error {
	if len(bundle) == 0 {
		return ErrEmptyBundle
	}
	if uint32(len(bundle)) > e.maxBundle {
		return ErrExceedMaxBundle
	}
	for _, pkg := range bundle {
		if pkg.Amount == 0 {
			return ErrEmptyBundle
		}
	}
	return nil
}

// allocateID claims the next trade id, rejecting ids that are already
// occupied.
func (e *Engine) allocateID() (uint64, error) {
	id, err := e.state.NextTradeID()
	if err != nil {
		return 0, err
	}
	if _, exists, err := e.state.TradeGet(id); err != nil {
		return 0, err
	} else if exists {
		return 0, ErrTradeIdInUse
	}
	return id, nil
}

// Trade loads a trade record by id.
func (e *Engine) Trade(id uint64) (*Record, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	record, ok, err := e.state.TradeGet(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUnknownTrade
	}
	return record, nil
}

func (e *Engine) load(id uint64, kind Kind) (*Record, error) {
	record, err := e.Trade(id)
	if err != nil {
		return nil, err
	}
	if record.Kind != kind {
		return nil, ErrUnknownTrade
	}
	return record, nil
}

// CancelTrade dispatches cancellation by trade kind. Auctions settle on
// cancel: outstanding bids win the lot rather than being refunded.
func (e *Engine) CancelTrade(caller [20]byte, id uint64) error {
	if err := e.ready(); err != nil {
		return err
	}
	record, ok, err := e.state.TradeGet(id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUnknownTrade
	}
	switch record.Kind {
	case KindFixedPrice:
		return e.CancelPrice(caller, id)
	case KindSwap:
		return e.CancelSwap(caller, id)
	case KindWishlist:
		return e.CancelWishlist(caller, id)
	case KindAuction:
		return e.cancelAuction(caller, record)
	case KindBuyOrder:
		return e.cancelBuyOrder(caller, record)
	default:
		return ErrUnknownTrade
	}
}
