package game

import (
	"encoding/hex"
	"strconv"

	"gamechain/core/events"
	"gamechain/core/types"
)

const (
	EventTypeGameCreated       = "game.created"
	EventTypeCollectionCreated = "game.collection.created"
	EventTypeCollectionAdded   = "game.collection.added"
	EventTypeCollectionRemoved = "game.collection.removed"
)

type gameEvent struct {
	evt *types.Event
}

func (e gameEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e gameEvent) Event() *types.Event { return e.evt }

func (e *Engine) emit(event *types.Event) {
	if e == nil || e.emitter == nil || event == nil {
		return
	}
	e.emitter.Emit(gameEvent{evt: event})
}

var _ events.Event = gameEvent{}

func newGameCreatedEvent(d *Details, ts int64) *types.Event {
	attrs := make(map[string]string)
	if d == nil {
		return &types.Event{Type: EventTypeGameCreated, Attributes: attrs}
	}
	attrs["gameId"] = strconv.FormatUint(d.ID, 10)
	attrs["owner"] = hex.EncodeToString(d.Owner[:])
	attrs["admin"] = hex.EncodeToString(d.Admin[:])
	if d.OwnerDeposit != nil {
		attrs["deposit"] = d.OwnerDeposit.String()
	}
	attrs["createdAt"] = strconv.FormatInt(ts, 10)
	return &types.Event{Type: EventTypeGameCreated, Attributes: attrs}
}

func newCollectionCreatedEvent(gameID, collectionID uint64, caller [20]byte, ts int64) *types.Event {
	return newCollectionEvent(EventTypeCollectionCreated, gameID, collectionID, caller, ts)
}

func newCollectionAddedEvent(gameID, collectionID uint64, caller [20]byte, ts int64) *types.Event {
	return newCollectionEvent(EventTypeCollectionAdded, gameID, collectionID, caller, ts)
}

func newCollectionRemovedEvent(gameID, collectionID uint64, caller [20]byte, ts int64) *types.Event {
	return newCollectionEvent(EventTypeCollectionRemoved, gameID, collectionID, caller, ts)
}

func newCollectionEvent(eventType string, gameID, collectionID uint64, caller [20]byte, ts int64) *types.Event {
	return &types.Event{Type: eventType, Attributes: map[string]string{
		"gameId":       strconv.FormatUint(gameID, 10),
		"collectionId": strconv.FormatUint(collectionID, 10),
		"caller":       hex.EncodeToString(caller[:]),
		"timestamp":    strconv.FormatInt(ts, 10),
	}}
}
