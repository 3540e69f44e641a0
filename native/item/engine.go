package item

import (
	"encoding/binary"
	"errors"
	"math"
	"math/big"
	"time"

	"gamechain/core/events"
	"gamechain/core/randomness"
	"gamechain/native/game"
)

var (
	errNilState    = errors.New("item engine: state not configured")
	errNilRegistry = errors.New("item engine: collection registry not configured")
	errNoSeed      = errors.New("item engine: random seed not initialised")

	// ErrNoPermission is returned when the caller's role grant does not
	// authorize the operation.
	ErrNoPermission = errors.New("item engine: no permission")
	// ErrUnknownCollection is returned when the collection has no owning
	// game.
	ErrUnknownCollection = errors.New("item engine: unknown collection")
	// ErrUnknownItem is returned when no reserve entry exists for the item.
	ErrUnknownItem = errors.New("item engine: unknown item")
	// ErrItemExists is returned when creating an item that already has a
	// reserve entry.
	ErrItemExists = errors.New("item engine: item already exists")
	// ErrExceedMaxItem is returned when the collection's reserve table is at
	// capacity or a supply increase would overflow.
	ErrExceedMaxItem = errors.New("item engine: item limit reached")
	// ErrExceedAllowedAmount is returned when a mint requests more draws
	// than the per-call bound.
	ErrExceedAllowedAmount = errors.New("item engine: amount exceeds allowed maximum")
	// ErrSoldOut is returned when the unminted reserve is exhausted.
	ErrSoldOut = errors.New("item engine: reserve exhausted")
	// ErrInsufficientItemBalance is returned when a debit exceeds the
	// spendable balance.
	ErrInsufficientItemBalance = errors.New("item engine: insufficient item balance")
	// ErrInsufficientLockedBalance is returned when an unlock or lock
	// transfer exceeds the locked balance.
	ErrInsufficientLockedBalance = errors.New("item engine: insufficient locked balance")
	// ErrUpgradeExists is returned when the item already has an upgrade
	// configured.
	ErrUpgradeExists = errors.New("item engine: upgrade already exists")
	// ErrUnknownUpgrade is returned when no upgrade is configured for the
	// item.
	ErrUnknownUpgrade = errors.New("item engine: unknown upgrade")
)

type engineState interface {
	ReserveEntries(collectionID uint64) ([]ReserveEntry, error)
	ReserveEntriesPut(collectionID uint64, entries []ReserveEntry) error
	MintedCount(collectionID uint64, itemID uint32) (uint32, error)
	MintedCountPut(collectionID uint64, itemID uint32, count uint32) error
	ItemBalance(addr [20]byte, collectionID uint64, itemID uint32) (uint32, error)
	ItemBalancePut(addr [20]byte, collectionID uint64, itemID uint32, amount uint32) error
	LockBalance(addr [20]byte, collectionID uint64, itemID uint32) (uint32, error)
	LockBalancePut(addr [20]byte, collectionID uint64, itemID uint32, amount uint32) error
	CollectionGame(collectionID uint64) (uint64, bool, error)
	RolesGet(gameID uint64, addr [20]byte) (game.RoleSet, error)
	RandomSeed() ([]byte, uint64, bool, error)
	UpgradeGet(collectionID uint64, itemID uint32) (*Upgrade, bool, error)
	UpgradePut(collectionID uint64, itemID uint32, up *Upgrade) error
	Transfer(from, to [20]byte, amount *big.Int, keepAlive bool) error
}

// collectionRegistry is the slice of the external registry capability the
// item ledger needs.
type collectionRegistry interface {
	MintInto(collectionID uint64, itemID uint32, owner [20]byte) error
	CollectionOwner(collectionID uint64) ([20]byte, bool)
}

// Engine maintains item reserves, balances and trade locks. Reserve totals
// only grow; consumption is tracked by the minted counters so the sum of all
// balances for an item never exceeds its declared total.
type Engine struct {
	state       engineState
	registry    collectionRegistry
	emitter     events.Emitter
	maxItems    uint32
	maxMint     uint32
	rngAttempts uint32
	nowFn       func() int64
}

const (
	// DefaultMaxItems bounds the per-collection reserve table.
	DefaultMaxItems = 32
	// DefaultMaxMint bounds the number of draws a single mint may request.
	DefaultMaxMint = 10
	// DefaultRandomAttempts is the bias-correction retry budget per draw.
	DefaultRandomAttempts = 5
)

// NewEngine creates an item engine with a no-op emitter.
func NewEngine() *Engine {
	return &Engine{
		emitter:     events.NoopEmitter{},
		maxItems:    DefaultMaxItems,
		maxMint:     DefaultMaxMint,
		rngAttempts: DefaultRandomAttempts,
		nowFn:       func() int64 { return time.Now().Unix() },
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetRegistry configures the external collection registry capability.
func (e *Engine) SetRegistry(registry collectionRegistry) { e.registry = registry }

// SetLimits configures the reserve table bound and per-call mint bound. Zero
// values restore the defaults.
func (e *Engine) SetLimits(maxItems, maxMint uint32) {
	if maxItems == 0 {
		maxItems = DefaultMaxItems
	}
	if maxMint == 0 {
		maxMint = DefaultMaxMint
	}
	e.maxItems = maxItems
	e.maxMint = maxMint
}

// SetRandomAttempts configures the bias-correction retry budget per draw.
// Zero restores the default.
func (e *Engine) SetRandomAttempts(attempts uint32) {
	if attempts == 0 {
		attempts = DefaultRandomAttempts
	}
	e.rngAttempts = attempts
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

func (e *Engine) requireFullRoles(collectionID uint64, caller [20]byte) error {
	gameID, ok, err := e.state.CollectionGame(collectionID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUnknownCollection
	}
	roles, err := e.state.RolesGet(gameID, caller)
	if err != nil {
		return err
	}
	if roles != game.FullRoleSet {
		return ErrNoPermission
	}
	return nil
}

// CreateItem registers a new item class in a collection with an initial
// reserve total, delegating the registry-level mint of the class. The caller
// must hold the full role set for the collection's game.
func (e *Engine) CreateItem(caller [20]byte, collectionID uint64, itemID uint32, amount uint32) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if e.registry == nil {
		return errNilRegistry
	}
	if err := e.requireFullRoles(collectionID, caller); err != nil {
		return err
	}
	entries, err := e.state.ReserveEntries(collectionID)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.Item == itemID {
			return ErrItemExists
		}
	}
	if uint32(len(entries)) >= e.maxItems {
		return ErrExceedMaxItem
	}
	if err := e.registry.MintInto(collectionID, itemID, caller); err != nil {
		return err
	}
	entries = append(entries, ReserveEntry{Item: itemID, Total: amount})
	if err := e.state.ReserveEntriesPut(collectionID, entries); err != nil {
		return err
	}
	e.emit(newItemCreatedEvent(collectionID, itemID, amount, caller, e.nowFn()))
	return nil
}

// AddItem increases the reserve total of an existing item class. The caller
// must hold the full role set for the collection's game.
func (e *Engine) AddItem(caller [20]byte, collectionID uint64, itemID uint32, amount uint32) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if err := e.requireFullRoles(collectionID, caller); err != nil {
		return err
	}
	entries, err := e.state.ReserveEntries(collectionID)
	if err != nil {
		return err
	}
	idx := -1
	for i, entry := range entries {
		if entry.Item == itemID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrUnknownItem
	}
	if amount > math.MaxUint32-entries[idx].Total {
		return ErrExceedMaxItem
	}
	entries[idx].Total += amount
	if err := e.state.ReserveEntriesPut(collectionID, entries); err != nil {
		return err
	}
	e.emit(newItemSupplyAddedEvent(collectionID, itemID, amount, caller, e.nowFn()))
	return nil
}

// Mint draws amount items at random from the collection's unminted reserve
// and credits them to target. Each draw picks a uniform position over the
// remaining supply, so item classes with more unminted units are
// proportionally more likely.
func (e *Engine) Mint(caller [20]byte, collectionID uint64, target [20]byte, amount uint32) ([]uint32, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if amount == 0 {
		return nil, nil
	}
	if amount > e.maxMint {
		return nil, ErrExceedAllowedAmount
	}
	if _, ok, err := e.state.CollectionGame(collectionID); err != nil {
		return nil, err
	} else if !ok {
		return nil, ErrUnknownCollection
	}
	entries, err := e.state.ReserveEntries(collectionID)
	if err != nil {
		return nil, err
	}
	remaining := make([]uint32, len(entries))
	var unminted uint64
	for i, entry := range entries {
		minted, err := e.state.MintedCount(collectionID, entry.Item)
		if err != nil {
			return nil, err
		}
		if minted > entry.Total {
			minted = entry.Total
		}
		remaining[i] = entry.Total - minted
		unminted += uint64(remaining[i])
	}
	if unminted < uint64(amount) {
		return nil, ErrSoldOut
	}
	seed, height, ok, err := e.state.RandomSeed()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errNoSeed
	}
	drawn := make([]uint32, 0, amount)
	for draw := uint32(0); draw < amount; draw++ {
		total := unminted
		if total > math.MaxUint32 {
			total = math.MaxUint32
		}
		position, ok := randomness.RandomInRange(uint32(total), mintSeed(seed, height, collectionID, target, draw), e.rngAttempts)
		if !ok {
			return nil, ErrSoldOut
		}
		idx := pickEntry(remaining, position)
		remaining[idx]--
		unminted--
		drawn = append(drawn, entries[idx].Item)
	}
	// All draws resolved; apply the counter and balance credits.
	for _, itemID := range drawn {
		minted, err := e.state.MintedCount(collectionID, itemID)
		if err != nil {
			return nil, err
		}
		if err := e.state.MintedCountPut(collectionID, itemID, minted+1); err != nil {
			return nil, err
		}
		balance, err := e.state.ItemBalance(target, collectionID, itemID)
		if err != nil {
			return nil, err
		}
		if err := e.state.ItemBalancePut(target, collectionID, itemID, balance+1); err != nil {
			return nil, err
		}
	}
	e.emit(newItemMintedEvent(collectionID, target, drawn, caller, e.nowFn()))
	return drawn, nil
}

// pickEntry maps a 1-indexed position over the remaining supply to the entry
// it falls into.
func pickEntry(remaining []uint32, position uint32) int {
	var cursor uint64
	for i, count := range remaining {
		cursor += uint64(count)
		if uint64(position) <= cursor {
			return i
		}
	}
	return len(remaining) - 1
}

func mintSeed(seed []byte, height uint64, collectionID uint64, target [20]byte, draw uint32) []byte {
	material := make([]byte, 0, len(seed)+8+8+20+4)
	material = append(material, seed...)
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], height)
	material = append(material, buf[:]...)
	binary.LittleEndian.PutUint64(buf[:], collectionID)
	material = append(material, buf[:]...)
	material = append(material, target[:]...)
	var drawBuf [4]byte
	binary.LittleEndian.PutUint32(drawBuf[:], draw)
	return append(material, drawBuf[:]...)
}

// Burn removes amount units of an item from the caller's spendable balance.
func (e *Engine) Burn(caller [20]byte, collectionID uint64, itemID uint32, amount uint32) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	balance, err := e.state.ItemBalance(caller, collectionID, itemID)
	if err != nil {
		return err
	}
	if balance < amount {
		return ErrInsufficientItemBalance
	}
	if err := e.state.ItemBalancePut(caller, collectionID, itemID, balance-amount); err != nil {
		return err
	}
	e.emit(newItemBurnedEvent(collectionID, itemID, amount, caller, e.nowFn()))
	return nil
}

// Transfer moves amount units of an item between spendable balances. It is a
// pure ledger move with no registry interaction.
func (e *Engine) Transfer(from [20]byte, collectionID uint64, itemID uint32, to [20]byte, amount uint32) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if amount == 0 || from == to {
		return nil
	}
	fromBalance, err := e.state.ItemBalance(from, collectionID, itemID)
	if err != nil {
		return err
	}
	if fromBalance < amount {
		return ErrInsufficientItemBalance
	}
	toBalance, err := e.state.ItemBalance(to, collectionID, itemID)
	if err != nil {
		return err
	}
	if err := e.state.ItemBalancePut(from, collectionID, itemID, fromBalance-amount); err != nil {
		return err
	}
	if err := e.state.ItemBalancePut(to, collectionID, itemID, toBalance+amount); err != nil {
		return err
	}
	e.emit(newItemTransferredEvent(collectionID, itemID, amount, from, to, e.nowFn()))
	return nil
}

// LockItem moves amount units from the owner's spendable balance into the
// lock side table. Locked units stay attributed to the owner until a lock
// transfer reassigns them.
func (e *Engine) LockItem(owner [20]byte, collectionID uint64, itemID uint32, amount uint32) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if amount == 0 {
		return nil
	}
	balance, err := e.state.ItemBalance(owner, collectionID, itemID)
	if err != nil {
		return err
	}
	if balance < amount {
		return ErrInsufficientItemBalance
	}
	locked, err := e.state.LockBalance(owner, collectionID, itemID)
	if err != nil {
		return err
	}
	if err := e.state.ItemBalancePut(owner, collectionID, itemID, balance-amount); err != nil {
		return err
	}
	return e.state.LockBalancePut(owner, collectionID, itemID, locked+amount)
}

// UnlockItem returns amount units from the lock table to the owner's
// spendable balance.
func (e *Engine) UnlockItem(owner [20]byte, collectionID uint64, itemID uint32, amount uint32) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if amount == 0 {
		return nil
	}
	locked, err := e.state.LockBalance(owner, collectionID, itemID)
	if err != nil {
		return err
	}
	if locked < amount {
		return ErrInsufficientLockedBalance
	}
	balance, err := e.state.ItemBalance(owner, collectionID, itemID)
	if err != nil {
		return err
	}
	if err := e.state.LockBalancePut(owner, collectionID, itemID, locked-amount); err != nil {
		return err
	}
	return e.state.ItemBalancePut(owner, collectionID, itemID, balance+amount)
}

// TransferLockItem reassigns amount locked units from one owner to another.
// The recipient's units stay locked until UnlockItem credits them.
func (e *Engine) TransferLockItem(from [20]byte, collectionID uint64, itemID uint32, to [20]byte, amount uint32) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if amount == 0 || from == to {
		return nil
	}
	fromLocked, err := e.state.LockBalance(from, collectionID, itemID)
	if err != nil {
		return err
	}
	if fromLocked < amount {
		return ErrInsufficientLockedBalance
	}
	toLocked, err := e.state.LockBalance(to, collectionID, itemID)
	if err != nil {
		return err
	}
	if err := e.state.LockBalancePut(from, collectionID, itemID, fromLocked-amount); err != nil {
		return err
	}
	return e.state.LockBalancePut(to, collectionID, itemID, toLocked+amount)
}

// LockBundle locks every package of a bundle, stopping at the first failure.
func (e *Engine) LockBundle(owner [20]byte, bundle Bundle) error {
	for i, pkg := range bundle {
		if err := e.LockItem(owner, pkg.Collection, pkg.Item, pkg.Amount); err != nil {
			// Unwind the packages locked so far; a partial lock must not
			// survive a failed bundle.
			for j := i - 1; j >= 0; j-- {
				prev := bundle[j]
				_ = e.UnlockItem(owner, prev.Collection, prev.Item, prev.Amount)
			}
			return err
		}
	}
	return nil
}

// UnlockBundle releases every package of a bundle back to the owner.
func (e *Engine) UnlockBundle(owner [20]byte, bundle Bundle) error {
	for _, pkg := range bundle {
		if err := e.UnlockItem(owner, pkg.Collection, pkg.Item, pkg.Amount); err != nil {
			return err
		}
	}
	return nil
}

// RepatriateLockedBundle moves a locked bundle from one owner to another and
// releases it into the recipient's spendable balance.
func (e *Engine) RepatriateLockedBundle(from [20]byte, bundle Bundle, to [20]byte) error {
	for _, pkg := range bundle {
		if err := e.TransferLockItem(from, pkg.Collection, pkg.Item, to, pkg.Amount); err != nil {
			return err
		}
		if err := e.UnlockItem(to, pkg.Collection, pkg.Item, pkg.Amount); err != nil {
			return err
		}
	}
	return nil
}

// TransferBundle moves every package of a bundle between spendable balances.
func (e *Engine) TransferBundle(from [20]byte, bundle Bundle, to [20]byte) error {
	for _, pkg := range bundle {
		if err := e.Transfer(from, pkg.Collection, pkg.Item, to, pkg.Amount); err != nil {
			return err
		}
	}
	return nil
}

// SpendableCovers reports whether the owner's spendable balances cover every
// package of the bundle.
func (e *Engine) SpendableCovers(owner [20]byte, bundle Bundle) (bool, error) {
	if e == nil || e.state == nil {
		return false, errNilState
	}
	totals := make(map[Package]uint32)
	for _, pkg := range bundle {
		key := Package{Collection: pkg.Collection, Item: pkg.Item}
		totals[key] += pkg.Amount
	}
	for key, amount := range totals {
		balance, err := e.state.ItemBalance(owner, key.Collection, key.Item)
		if err != nil {
			return false, err
		}
		if balance < amount {
			return false, nil
		}
	}
	return true, nil
}
