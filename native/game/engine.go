package game

import (
	"errors"
	"math/big"
	"time"

	"gamechain/core/events"
)

var (
	errNilState    = errors.New("game engine: state not configured")
	errNilRegistry = errors.New("game engine: collection registry not configured")

	// ErrNoPermission is returned when the caller's role grant does not
	// authorize the operation.
	ErrNoPermission = errors.New("game engine: no permission")
	// ErrUnknownGame is returned when the referenced game does not exist.
	ErrUnknownGame = errors.New("game engine: unknown game")
	// ErrExceedMaxCollection is returned when a game's collection list is
	// already at capacity.
	ErrExceedMaxCollection = errors.New("game engine: collection limit reached")
	// ErrCollectionExists is returned when a collection is already linked to
	// a game.
	ErrCollectionExists = errors.New("game engine: collection already linked")
	// ErrUnknownCollection is returned when the referenced collection is not
	// linked to the game.
	ErrUnknownCollection = errors.New("game engine: unknown collection")
)

type engineState interface {
	NextGameID() (uint64, error)
	GamePut(*Details) error
	GameGet(id uint64) (*Details, bool, error)
	RolesGet(gameID uint64, addr [20]byte) (RoleSet, error)
	RolesPut(gameID uint64, addr [20]byte, roles RoleSet) error
	GameCollections(gameID uint64) ([]uint64, error)
	GameCollectionsPut(gameID uint64, collections []uint64) error
	CollectionGame(collectionID uint64) (uint64, bool, error)
	CollectionGamePut(collectionID, gameID uint64) error
	CollectionGameDelete(collectionID uint64) error
	Reserve(addr [20]byte, amount *big.Int) error
}

// collectionRegistry is the slice of the external registry capability the
// game engine needs.
type collectionRegistry interface {
	CreateCollection(owner, admin [20]byte) (uint64, error)
}

// Engine creates games, grants roles and links registry collections to games.
// Role grants gate every item-administrative operation in the ledger.
type Engine struct {
	state          engineState
	registry       collectionRegistry
	emitter        events.Emitter
	deposit        *big.Int
	maxCollections uint32
	nowFn          func() int64
}

// NewEngine creates a game engine with a no-op emitter. Callers can override
// the emitter via SetEmitter.
func NewEngine() *Engine {
	return &Engine{
		emitter:        events.NoopEmitter{},
		deposit:        big.NewInt(0),
		maxCollections: DefaultMaxCollections,
		nowFn:          func() int64 { return time.Now().Unix() },
	}
}

// DefaultMaxCollections bounds the per-game collection list when no explicit
// limit is configured.
const DefaultMaxCollections = 16

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetRegistry configures the external collection registry capability.
func (e *Engine) SetRegistry(registry collectionRegistry) { e.registry = registry }

// SetDeposit configures the native-currency deposit reserved from a game
// owner at creation. Nil resets the deposit to zero.
func (e *Engine) SetDeposit(amount *big.Int) {
	if amount == nil {
		e.deposit = big.NewInt(0)
		return
	}
	e.deposit = new(big.Int).Set(amount)
}

// SetMaxCollections configures the per-game collection list bound. Zero
// restores the default.
func (e *Engine) SetMaxCollections(limit uint32) {
	if limit == 0 {
		limit = DefaultMaxCollections
	}
	e.maxCollections = limit
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

// SetNowFunc overrides the time source used by the engine. Primarily intended
// for tests to provide deterministic timestamps.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

// HasRole reports whether the account holds the given role within the game.
// Absence of any grant is false, never an error.
func (e *Engine) HasRole(gameID uint64, account [20]byte, role Role) (bool, error) {
	if e == nil || e.state == nil {
		return false, errNilState
	}
	roles, err := e.state.RolesGet(gameID, account)
	if err != nil {
		return false, err
	}
	return roles.Has(role), nil
}

// HasFullRoles reports whether the account's grant equals the full role set.
// The comparison is equality, not containment.
func (e *Engine) HasFullRoles(gameID uint64, account [20]byte) (bool, error) {
	if e == nil || e.state == nil {
		return false, errNilState
	}
	roles, err := e.state.RolesGet(gameID, account)
	if err != nil {
		return false, err
	}
	return roles == FullRoleSet, nil
}

// CreateGame registers a new game owned by owner, reserves the configured
// deposit from the owner and grants the admin the full role set.
func (e *Engine) CreateGame(owner, admin [20]byte) (*Details, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if err := e.state.Reserve(owner, e.deposit); err != nil {
		return nil, err
	}
	id, err := e.state.NextGameID()
	if err != nil {
		return nil, err
	}
	details := &Details{
		ID:           id,
		Owner:        owner,
		Admin:        admin,
		OwnerDeposit: new(big.Int).Set(e.deposit),
	}
	if err := e.state.GamePut(details); err != nil {
		return nil, err
	}
	if err := e.state.RolesPut(id, admin, FullRoleSet); err != nil {
		return nil, err
	}
	e.emit(newGameCreatedEvent(details, e.nowFn()))
	return details.Clone(), nil
}

// CreateGameCollection creates a fresh registry collection on behalf of a
// game and links it. The caller must hold the full role set for the game.
func (e *Engine) CreateGameCollection(caller [20]byte, gameID uint64) (uint64, error) {
	if e == nil || e.state == nil {
		return 0, errNilState
	}
	if e.registry == nil {
		return 0, errNilRegistry
	}
	details, ok, err := e.state.GameGet(gameID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrUnknownGame
	}
	full, err := e.HasFullRoles(gameID, caller)
	if err != nil {
		return 0, err
	}
	if !full {
		return 0, ErrNoPermission
	}
	collections, err := e.state.GameCollections(gameID)
	if err != nil {
		return 0, err
	}
	if uint32(len(collections)) >= e.maxCollections {
		return 0, ErrExceedMaxCollection
	}
	collectionID, err := e.registry.CreateCollection(details.Owner, details.Admin)
	if err != nil {
		return 0, err
	}
	if err := e.linkCollection(details, collections, collectionID); err != nil {
		return 0, err
	}
	e.emit(newCollectionCreatedEvent(gameID, collectionID, caller, e.nowFn()))
	return collectionID, nil
}

// AddCollection links an existing registry collection to a game. Only the
// game owner may adopt collections; a collection belongs to at most one game.
func (e *Engine) AddCollection(caller [20]byte, gameID, collectionID uint64) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	details, ok, err := e.state.GameGet(gameID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUnknownGame
	}
	if details.Owner != caller {
		return ErrNoPermission
	}
	if _, linked, err := e.state.CollectionGame(collectionID); err != nil {
		return err
	} else if linked {
		return ErrCollectionExists
	}
	collections, err := e.state.GameCollections(gameID)
	if err != nil {
		return err
	}
	if uint32(len(collections)) >= e.maxCollections {
		return ErrExceedMaxCollection
	}
	if err := e.linkCollection(details, collections, collectionID); err != nil {
		return err
	}
	e.emit(newCollectionAddedEvent(gameID, collectionID, caller, e.nowFn()))
	return nil
}

// RemoveCollection unlinks a collection from a game. Only the game owner may
// remove collections; the registry collection itself is untouched.
func (e *Engine) RemoveCollection(caller [20]byte, gameID, collectionID uint64) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	details, ok, err := e.state.GameGet(gameID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUnknownGame
	}
	if details.Owner != caller {
		return ErrNoPermission
	}
	collections, err := e.state.GameCollections(gameID)
	if err != nil {
		return err
	}
	idx := -1
	for i, id := range collections {
		if id == collectionID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrUnknownCollection
	}
	remaining := append(append([]uint64(nil), collections[:idx]...), collections[idx+1:]...)
	if err := e.state.GameCollectionsPut(gameID, remaining); err != nil {
		return err
	}
	if err := e.state.CollectionGameDelete(collectionID); err != nil {
		return err
	}
	if details.Collections > 0 {
		details.Collections--
	}
	if err := e.state.GamePut(details); err != nil {
		return err
	}
	e.emit(newCollectionRemovedEvent(gameID, collectionID, caller, e.nowFn()))
	return nil
}

func (e *Engine) linkCollection(details *Details, collections []uint64, collectionID uint64) error {
	updated := append(append([]uint64(nil), collections...), collectionID)
	if err := e.state.GameCollectionsPut(details.ID, updated); err != nil {
		return err
	}
	if err := e.state.CollectionGamePut(collectionID, details.ID); err != nil {
		return err
	}
	details.Collections++
	return e.state.GamePut(details)
}
