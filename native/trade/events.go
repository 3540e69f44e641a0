package trade

import (
	"encoding/hex"
	"math/big"
	"strconv"

	"gamechain/core/types"
)

const (
	EventTypeTradeListed      = "trade.listed"
	EventTypeTradeFilled      = "trade.filled"
	EventTypeTradeSettled     = "trade.settled"
	EventTypeTradeCancelled   = "trade.cancelled"
	EventTypeTradeSupplyAdded = "trade.supply_added"
	EventTypeAuctionBid       = "trade.auction.bid"
)

type tradeEvent struct {
	evt *types.Event
}

func (e tradeEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e tradeEvent) Event() *types.Event { return e.evt }

func (e *Engine) emit(event *types.Event) {
	if e == nil || e.emitter == nil || event == nil {
		return
	}
	e.emitter.Emit(tradeEvent{evt: event})
}

func baseAttrs(r *Record) map[string]string {
	attrs := make(map[string]string)
	if r == nil {
		return attrs
	}
	attrs["tradeId"] = strconv.FormatUint(r.ID, 10)
	attrs["kind"] = r.Kind.String()
	attrs["owner"] = hex.EncodeToString(r.Owner[:])
	if r.Price != nil {
		attrs["price"] = r.Price.String()
	}
	attrs["createdAt"] = strconv.FormatInt(r.CreatedAt, 10)
	return attrs
}

func newTradeListedEvent(r *Record) *types.Event {
	attrs := baseAttrs(r)
	if r != nil && r.Kind == KindAuction {
		attrs["startBlock"] = strconv.FormatUint(r.StartBlock, 10)
		attrs["duration"] = strconv.FormatUint(r.Duration, 10)
	}
	return &types.Event{Type: EventTypeTradeListed, Attributes: attrs}
}

func newTradeFilledEvent(r *Record, buyer [20]byte, amount uint32, cost *big.Int) *types.Event {
	attrs := baseAttrs(r)
	attrs["buyer"] = hex.EncodeToString(buyer[:])
	attrs["amount"] = strconv.FormatUint(uint64(amount), 10)
	if cost != nil {
		attrs["cost"] = cost.String()
	}
	if r != nil && len(r.Bundle) > 0 {
		attrs["remaining"] = strconv.FormatUint(uint64(r.Bundle[0].Amount), 10)
	}
	return &types.Event{Type: EventTypeTradeFilled, Attributes: attrs}
}

func newTradeSettledEvent(r *Record, counterparty [20]byte) *types.Event {
	attrs := baseAttrs(r)
	attrs["counterparty"] = hex.EncodeToString(counterparty[:])
	return &types.Event{Type: EventTypeTradeSettled, Attributes: attrs}
}

func newTradeCancelledEvent(r *Record) *types.Event {
	return &types.Event{Type: EventTypeTradeCancelled, Attributes: baseAttrs(r)}
}

func newTradeSupplyAddedEvent(r *Record, amount uint32) *types.Event {
	attrs := baseAttrs(r)
	attrs["amount"] = strconv.FormatUint(uint64(amount), 10)
	return &types.Event{Type: EventTypeTradeSupplyAdded, Attributes: attrs}
}

func newAuctionBidEvent(r *Record, bidder [20]byte, amount *big.Int) *types.Event {
	attrs := baseAttrs(r)
	attrs["bidder"] = hex.EncodeToString(bidder[:])
	if amount != nil {
		attrs["bid"] = amount.String()
	}
	return &types.Event{Type: EventTypeAuctionBid, Attributes: attrs}
}
