package item

import (
	"encoding/hex"
	"strconv"
	"strings"

	"gamechain/core/types"
)

const (
	EventTypeItemCreated     = "item.created"
	EventTypeItemSupplyAdded = "item.supply_added"
	EventTypeItemMinted      = "item.minted"
	EventTypeItemBurned      = "item.burned"
	EventTypeItemTransferred = "item.transferred"
	EventTypeUpgradeSet      = "item.upgrade_set"
	EventTypeItemUpgraded    = "item.upgraded"
)

type itemEvent struct {
	evt *types.Event
}

func (e itemEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e itemEvent) Event() *types.Event { return e.evt }

func (e *Engine) emit(event *types.Event) {
	if e == nil || e.emitter == nil || event == nil {
		return
	}
	e.emitter.Emit(itemEvent{evt: event})
}

func newItemCreatedEvent(collectionID uint64, itemID, amount uint32, caller [20]byte, ts int64) *types.Event {
	return newSupplyEvent(EventTypeItemCreated, collectionID, itemID, amount, caller, ts)
}

func newItemSupplyAddedEvent(collectionID uint64, itemID, amount uint32, caller [20]byte, ts int64) *types.Event {
	return newSupplyEvent(EventTypeItemSupplyAdded, collectionID, itemID, amount, caller, ts)
}

func newItemBurnedEvent(collectionID uint64, itemID, amount uint32, caller [20]byte, ts int64) *types.Event {
	return newSupplyEvent(EventTypeItemBurned, collectionID, itemID, amount, caller, ts)
}

func newSupplyEvent(eventType string, collectionID uint64, itemID, amount uint32, caller [20]byte, ts int64) *types.Event {
	return &types.Event{Type: eventType, Attributes: map[string]string{
		"collectionId": strconv.FormatUint(collectionID, 10),
		"itemId":       strconv.FormatUint(uint64(itemID), 10),
		"amount":       strconv.FormatUint(uint64(amount), 10),
		"caller":       hex.EncodeToString(caller[:]),
		"timestamp":    strconv.FormatInt(ts, 10),
	}}
}

func newItemMintedEvent(collectionID uint64, target [20]byte, drawn []uint32, caller [20]byte, ts int64) *types.Event {
	items := make([]string, len(drawn))
	for i, id := range drawn {
		items[i] = strconv.FormatUint(uint64(id), 10)
	}
	return &types.Event{Type: EventTypeItemMinted, Attributes: map[string]string{
		"collectionId": strconv.FormatUint(collectionID, 10),
		"target":       hex.EncodeToString(target[:]),
		"items":        strings.Join(items, ","),
		"caller":       hex.EncodeToString(caller[:]),
		"timestamp":    strconv.FormatInt(ts, 10),
	}}
}

func newUpgradeSetEvent(collectionID uint64, itemID, upgradedID uint32, fee string, caller [20]byte, ts int64) *types.Event {
	return &types.Event{Type: EventTypeUpgradeSet, Attributes: map[string]string{
		"collectionId": strconv.FormatUint(collectionID, 10),
		"itemId":       strconv.FormatUint(uint64(itemID), 10),
		"upgradedId":   strconv.FormatUint(uint64(upgradedID), 10),
		"fee":          fee,
		"caller":       hex.EncodeToString(caller[:]),
		"timestamp":    strconv.FormatInt(ts, 10),
	}}
}

func newItemUpgradedEvent(collectionID uint64, itemID, upgradedID, amount uint32, caller [20]byte, ts int64) *types.Event {
	return &types.Event{Type: EventTypeItemUpgraded, Attributes: map[string]string{
		"collectionId": strconv.FormatUint(collectionID, 10),
		"itemId":       strconv.FormatUint(uint64(itemID), 10),
		"upgradedId":   strconv.FormatUint(uint64(upgradedID), 10),
		"amount":       strconv.FormatUint(uint64(amount), 10),
		"caller":       hex.EncodeToString(caller[:]),
		"timestamp":    strconv.FormatInt(ts, 10),
	}}
}

func newItemTransferredEvent(collectionID uint64, itemID, amount uint32, from, to [20]byte, ts int64) *types.Event {
	return &types.Event{Type: EventTypeItemTransferred, Attributes: map[string]string{
		"collectionId": strconv.FormatUint(collectionID, 10),
		"itemId":       strconv.FormatUint(uint64(itemID), 10),
		"amount":       strconv.FormatUint(uint64(amount), 10),
		"from":         hex.EncodeToString(from[:]),
		"to":           hex.EncodeToString(to[:]),
		"timestamp":    strconv.FormatInt(ts, 10),
	}}
}
