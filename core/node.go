package core

import (
	"errors"
	"math/big"
	"strconv"
	"sync"

	"gamechain/core/events"
	"gamechain/core/state"
	"gamechain/core/types"
	"gamechain/native/common"
	"gamechain/native/game"
	"gamechain/native/item"
	"gamechain/native/registry"
	"gamechain/native/trade"
	"gamechain/observability/metrics"
	"gamechain/storage"
)

// ErrNoSeed is returned by seed queries before any entropy submission.
var ErrNoSeed = errors.New("core: random seed not initialised")

// Pausable module names accepted by SetPaused.
const (
	ModuleGame  = "game"
	ModuleItem  = "item"
	ModuleTrade = "trade"
)

// Config carries the economic parameters the engines are wired with.
type Config struct {
	GameDeposit        *big.Int
	TradeDeposit       *big.Int
	MaxGameCollections uint32
	MaxItems           uint32
	MaxMintPerCall     uint32
	MaxBundle          uint32
	RandomAttempts     uint32
}

// Node wires the engines to shared state and serializes every mutating
// operation through one mutex, mirroring ordered transaction application.
// Reads share the same lock so no caller observes a half-applied trade.
type Node struct {
	mu sync.Mutex

	db       storage.Database
	state    *state.Manager
	registry *registry.Registry
	games    *game.Engine
	items    *item.Engine
	trades   *trade.Engine
	metrics  *metrics.EconomyMetrics

	height uint64
	paused map[string]bool
}

// NewNode assembles a node over the given database.
func NewNode(db storage.Database, cfg Config) *Node {
	manager := state.NewManager(db)
	reg := registry.New(manager)

	games := game.NewEngine()
	games.SetState(manager)
	games.SetRegistry(reg)
	games.SetDeposit(cfg.GameDeposit)
	games.SetMaxCollections(cfg.MaxGameCollections)

	items := item.NewEngine()
	items.SetState(manager)
	items.SetRegistry(reg)
	items.SetLimits(cfg.MaxItems, cfg.MaxMintPerCall)
	items.SetRandomAttempts(cfg.RandomAttempts)

	trades := trade.NewEngine()
	trades.SetState(manager)
	trades.SetItemLedger(items)
	trades.SetRegistry(reg)
	trades.SetDeposit(cfg.TradeDeposit)
	trades.SetMaxBundle(cfg.MaxBundle)

	node := &Node{
		db:       db,
		state:    manager,
		registry: reg,
		games:    games,
		items:    items,
		trades:   trades,
		metrics:  metrics.Economy(),
		paused:   make(map[string]bool),
	}
	trades.SetHeightFunc(node.currentHeight)

	if _, height, ok, err := manager.RandomSeed(); err == nil && ok {
		node.height = height
	}
	return node
}

// SetEmitter attaches one event sink to all engines. Nil restores no-op
// emission.
func (n *Node) SetEmitter(emitter events.Emitter) {
	n.games.SetEmitter(emitter)
	n.items.SetEmitter(emitter)
	n.trades.SetEmitter(emitter)
}

func (n *Node) currentHeight() uint64 {
	return n.height
}

// SetPaused halts or resumes a module's mutating operations.
func (n *Node) SetPaused(module string, paused bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if paused {
		n.paused[module] = true
		return
	}
	delete(n.paused, module)
}

// IsPaused implements common.PauseView. Callers hold n.mu.
func (n *Node) IsPaused(module string) bool {
	return n.paused[module]
}

var _ common.PauseView = (*Node)(nil)

// Height reports the block marker of the last entropy submission.
func (n *Node) Height() uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.height
}

// SubmitRandomSeed rotates the stored seed with its block marker. The marker
// also drives auction windows.
func (n *Node) SubmitRandomSeed(seed [32]byte, height uint64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.state.RandomSeedPut(seed[:], height); err != nil {
		return err
	}
	n.height = height
	return nil
}

// RandomSeed reads the current seed and its block marker.
func (n *Node) RandomSeed() ([]byte, uint64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	seed, height, ok, err := n.state.RandomSeed()
	if err != nil {
		return nil, 0, err
	}
	if !ok {
		return nil, 0, ErrNoSeed
	}
	return seed, height, nil
}

// GetAccount loads the native-currency account of addr.
func (n *Node) GetAccount(addr [20]byte) (*types.Account, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state.GetAccount(addr)
}

// Credit adds spendable native funds to addr. Exposed for local faucets and
// tests; production deployments feed balances through genesis tooling.
func (n *Node) Credit(addr [20]byte, amount *big.Int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	acc, err := n.state.GetAccount(addr)
	if err != nil {
		return err
	}
	acc.Balance = new(big.Int).Add(acc.Balance, amount)
	return n.state.PutAccount(addr, acc)
}

// CreateGame registers a game and grants its admin the full role set.
func (n *Node) CreateGame(owner, admin [20]byte) (*game.Details, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := common.Guard(n, ModuleGame); err != nil {
		return nil, err
	}
	return n.games.CreateGame(owner, admin)
}

// Game loads a game's details.
func (n *Node) Game(id uint64) (*game.Details, bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state.GameGet(id)
}

// GameCollections lists the collections linked to a game.
func (n *Node) GameCollections(id uint64) ([]uint64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state.GameCollections(id)
}

// CreateGameCollection creates and links a fresh collection for a game.
func (n *Node) CreateGameCollection(caller [20]byte, gameID uint64) (uint64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := common.Guard(n, ModuleGame); err != nil {
		return 0, err
	}
	return n.games.CreateGameCollection(caller, gameID)
}

// AddCollection links an existing collection to a game.
func (n *Node) AddCollection(caller [20]byte, gameID, collectionID uint64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := common.Guard(n, ModuleGame); err != nil {
		return err
	}
	return n.games.AddCollection(caller, gameID, collectionID)
}

// RemoveCollection unlinks a collection from a game.
func (n *Node) RemoveCollection(caller [20]byte, gameID, collectionID uint64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := common.Guard(n, ModuleGame); err != nil {
		return err
	}
	return n.games.RemoveCollection(caller, gameID, collectionID)
}

// CreateItem registers an item class with its initial reserve.
func (n *Node) CreateItem(caller [20]byte, collectionID uint64, itemID, amount uint32) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := common.Guard(n, ModuleItem); err != nil {
		return err
	}
	return n.items.CreateItem(caller, collectionID, itemID, amount)
}

// AddItem increases an item's reserve total.
func (n *Node) AddItem(caller [20]byte, collectionID uint64, itemID, amount uint32) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := common.Guard(n, ModuleItem); err != nil {
		return err
	}
	return n.items.AddItem(caller, collectionID, itemID, amount)
}

// MintItems draws amount random items from the collection reserve for target.
func (n *Node) MintItems(caller [20]byte, collectionID uint64, target [20]byte, amount uint32) ([]uint32, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := common.Guard(n, ModuleItem); err != nil {
		return nil, err
	}
	drawn, err := n.items.Mint(caller, collectionID, target, amount)
	if err != nil {
		return nil, err
	}
	n.metrics.ObserveMint(strconv.FormatUint(collectionID, 10), len(drawn))
	return drawn, nil
}

// BurnItem removes items from the caller's balance.
func (n *Node) BurnItem(caller [20]byte, collectionID uint64, itemID, amount uint32) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := common.Guard(n, ModuleItem); err != nil {
		return err
	}
	return n.items.Burn(caller, collectionID, itemID, amount)
}

// TransferItem moves items between spendable balances.
func (n *Node) TransferItem(from [20]byte, collectionID uint64, itemID uint32, to [20]byte, amount uint32) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := common.Guard(n, ModuleItem); err != nil {
		return err
	}
	return n.items.Transfer(from, collectionID, itemID, to, amount)
}

// ItemBalance reads one spendable item balance.
func (n *Node) ItemBalance(addr [20]byte, collectionID uint64, itemID uint32) (uint32, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state.ItemBalance(addr, collectionID, itemID)
}

// LockedItemBalance reads one locked item balance.
func (n *Node) LockedItemBalance(addr [20]byte, collectionID uint64, itemID uint32) (uint32, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state.LockBalance(addr, collectionID, itemID)
}

// SetItemUpgrade configures the successor class of an item.
func (n *Node) SetItemUpgrade(caller [20]byte, collectionID uint64, itemID, upgradedID uint32, fee *big.Int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := common.Guard(n, ModuleItem); err != nil {
		return err
	}
	return n.items.SetUpgrade(caller, collectionID, itemID, upgradedID, fee)
}

// UpgradeItem converts items into their configured successor class.
func (n *Node) UpgradeItem(caller [20]byte, collectionID uint64, itemID, amount uint32) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := common.Guard(n, ModuleItem); err != nil {
		return err
	}
	return n.items.Upgrade(caller, collectionID, itemID, amount)
}

// ItemUpgrade reads the upgrade configured for an item class.
func (n *Node) ItemUpgrade(collectionID uint64, itemID uint32) (*item.Upgrade, bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state.UpgradeGet(collectionID, itemID)
}

// LockItemTransfer freezes transfers of an item class.
func (n *Node) LockItemTransfer(caller [20]byte, collectionID uint64, itemID uint32) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := common.Guard(n, ModuleItem); err != nil {
		return err
	}
	return n.registry.LockItemTransfer(caller, collectionID, itemID)
}

// UnlockItemTransfer lifts a transfer freeze.
func (n *Node) UnlockItemTransfer(caller [20]byte, collectionID uint64, itemID uint32) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := common.Guard(n, ModuleItem); err != nil {
		return err
	}
	return n.registry.UnlockItemTransfer(caller, collectionID, itemID)
}

// SetPrice opens a fixed-price sale.
func (n *Node) SetPrice(caller [20]byte, pkg item.Package, price *big.Int, minOrder uint32, hasMinOrder bool) (uint64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := common.Guard(n, ModuleTrade); err != nil {
		return 0, err
	}
	id, err := n.trades.SetPrice(caller, pkg, price, minOrder, hasMinOrder)
	if err == nil {
		n.metrics.ObserveTradeListed(trade.KindFixedPrice.String())
	}
	return id, err
}

// BuyItem purchases from a fixed-price sale.
func (n *Node) BuyItem(caller [20]byte, id uint64, amount uint32, bidPrice *big.Int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := common.Guard(n, ModuleTrade); err != nil {
		return err
	}
	err := n.trades.BuyItem(caller, id, amount, bidPrice)
	if err == nil {
		n.metrics.ObserveTradeSettled(trade.KindFixedPrice.String())
	}
	return err
}

// AddRetailSupply locks more units into an open sale.
func (n *Node) AddRetailSupply(caller [20]byte, id uint64, amount uint32) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := common.Guard(n, ModuleTrade); err != nil {
		return err
	}
	return n.trades.AddRetailSupply(caller, id, amount)
}

// SetSwap opens a bundle swap.
func (n *Node) SetSwap(caller [20]byte, source, required item.Bundle, price *big.Int) (uint64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := common.Guard(n, ModuleTrade); err != nil {
		return 0, err
	}
	id, err := n.trades.SetSwap(caller, source, required, price)
	if err == nil {
		n.metrics.ObserveTradeListed(trade.KindSwap.String())
	}
	return id, err
}

// ClaimSwap settles a swap.
func (n *Node) ClaimSwap(caller [20]byte, id uint64, bidPrice *big.Int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := common.Guard(n, ModuleTrade); err != nil {
		return err
	}
	err := n.trades.ClaimSwap(caller, id, bidPrice)
	if err == nil {
		n.metrics.ObserveTradeSettled(trade.KindSwap.String())
	}
	return err
}

// SetWishlist posts a wanted bundle with a reserved price.
func (n *Node) SetWishlist(caller [20]byte, wanted item.Bundle, price *big.Int) (uint64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := common.Guard(n, ModuleTrade); err != nil {
		return 0, err
	}
	id, err := n.trades.SetWishlist(caller, wanted, price)
	if err == nil {
		n.metrics.ObserveTradeListed(trade.KindWishlist.String())
	}
	return id, err
}

// FillWishlist settles a wishlist.
func (n *Node) FillWishlist(caller [20]byte, id uint64, askPrice *big.Int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := common.Guard(n, ModuleTrade); err != nil {
		return err
	}
	err := n.trades.FillWishlist(caller, id, askPrice)
	if err == nil {
		n.metrics.ObserveTradeSettled(trade.KindWishlist.String())
	}
	return err
}

// SetBuyOrder posts a standing bid for items with the payment reserved.
func (n *Node) SetBuyOrder(caller [20]byte, pkg item.Package, price *big.Int) (uint64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := common.Guard(n, ModuleTrade); err != nil {
		return 0, err
	}
	id, err := n.trades.SetBuyOrder(caller, pkg, price)
	if err == nil {
		n.metrics.ObserveTradeListed(trade.KindBuyOrder.String())
	}
	return id, err
}

// ClaimBuyOrder sells into a standing buy order.
func (n *Node) ClaimBuyOrder(caller [20]byte, id uint64, amount uint32, askPrice *big.Int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := common.Guard(n, ModuleTrade); err != nil {
		return err
	}
	err := n.trades.ClaimBuyOrder(caller, id, amount, askPrice)
	if err == nil {
		n.metrics.ObserveTradeSettled(trade.KindBuyOrder.String())
	}
	return err
}

// SetAuction opens a time-boxed auction.
func (n *Node) SetAuction(caller [20]byte, lot item.Bundle, price *big.Int, startBlock, duration uint64) (uint64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := common.Guard(n, ModuleTrade); err != nil {
		return 0, err
	}
	id, err := n.trades.SetAuction(caller, lot, price, startBlock, duration)
	if err == nil {
		n.metrics.ObserveTradeListed(trade.KindAuction.String())
	}
	return id, err
}

// BidAuction places an auction bid.
func (n *Node) BidAuction(caller [20]byte, id uint64, amount *big.Int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := common.Guard(n, ModuleTrade); err != nil {
		return err
	}
	return n.trades.BidAuction(caller, id, amount)
}

// ClaimAuction settles an auction after its window closes.
func (n *Node) ClaimAuction(caller [20]byte, id uint64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := common.Guard(n, ModuleTrade); err != nil {
		return err
	}
	err := n.trades.ClaimAuction(caller, id)
	if err == nil {
		n.metrics.ObserveTradeSettled(trade.KindAuction.String())
	}
	return err
}

// CancelTrade cancels a trade, dispatching by kind.
func (n *Node) CancelTrade(caller [20]byte, id uint64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := common.Guard(n, ModuleTrade); err != nil {
		return err
	}
	record, ok, err := n.state.TradeGet(id)
	if err != nil {
		return err
	}
	if !ok {
		return trade.ErrUnknownTrade
	}
	if err := n.trades.CancelTrade(caller, id); err != nil {
		return err
	}
	n.metrics.ObserveTradeCancelled(record.Kind.String())
	return nil
}

// Trade loads one trade record.
func (n *Node) Trade(id uint64) (*trade.Record, bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state.TradeGet(id)
}

// HighestBid loads the standing bid of an auction.
func (n *Node) HighestBid(id uint64) (*trade.Bid, bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state.BidGet(id)
}
