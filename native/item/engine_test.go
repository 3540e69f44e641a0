package item

import (
	"bytes"
	"errors"
	"math/big"
	"testing"

	"gamechain/native/game"
)

type balanceKey struct {
	addr       [20]byte
	collection uint64
	item       uint32
}

type mockState struct {
	reserves map[uint64][]ReserveEntry
	minted   map[balanceKey]uint32
	balances map[balanceKey]uint32
	locks    map[balanceKey]uint32
	collGame map[uint64]uint64
	roles    map[uint64]map[[20]byte]game.RoleSet
	upgrades map[balanceKey]*Upgrade
	funds    map[[20]byte]*big.Int
	seed     []byte
	height   uint64
}

func newMockState() *mockState {
	return &mockState{
		reserves: make(map[uint64][]ReserveEntry),
		minted:   make(map[balanceKey]uint32),
		balances: make(map[balanceKey]uint32),
		locks:    make(map[balanceKey]uint32),
		collGame: make(map[uint64]uint64),
		roles:    make(map[uint64]map[[20]byte]game.RoleSet),
		upgrades: make(map[balanceKey]*Upgrade),
		funds:    make(map[[20]byte]*big.Int),
		seed:     bytes.Repeat([]byte{0x5a}, 32),
		height:   1,
	}
}

func newTestAddress(fill byte) [20]byte {
	var addr [20]byte
	copy(addr[:], bytes.Repeat([]byte{fill}, 20))
	return addr
}

func (m *mockState) ReserveEntries(collectionID uint64) ([]ReserveEntry, error) {
	return append([]ReserveEntry(nil), m.reserves[collectionID]...), nil
}

func (m *mockState) ReserveEntriesPut(collectionID uint64, entries []ReserveEntry) error {
	m.reserves[collectionID] = append([]ReserveEntry(nil), entries...)
	return nil
}

func (m *mockState) MintedCount(collectionID uint64, itemID uint32) (uint32, error) {
	return m.minted[balanceKey{collection: collectionID, item: itemID}], nil
}

func (m *mockState) MintedCountPut(collectionID uint64, itemID uint32, count uint32) error {
	m.minted[balanceKey{collection: collectionID, item: itemID}] = count
	return nil
}

func (m *mockState) ItemBalance(addr [20]byte, collectionID uint64, itemID uint32) (uint32, error) {
	return m.balances[balanceKey{addr: addr, collection: collectionID, item: itemID}], nil
}

func (m *mockState) ItemBalancePut(addr [20]byte, collectionID uint64, itemID uint32, amount uint32) error {
	m.balances[balanceKey{addr: addr, collection: collectionID, item: itemID}] = amount
	return nil
}

func (m *mockState) LockBalance(addr [20]byte, collectionID uint64, itemID uint32) (uint32, error) {
	return m.locks[balanceKey{addr: addr, collection: collectionID, item: itemID}], nil
}

func (m *mockState) LockBalancePut(addr [20]byte, collectionID uint64, itemID uint32, amount uint32) error {
	m.locks[balanceKey{addr: addr, collection: collectionID, item: itemID}] = amount
	return nil
}

func (m *mockState) CollectionGame(collectionID uint64) (uint64, bool, error) {
	gameID, ok := m.collGame[collectionID]
	return gameID, ok, nil
}

func (m *mockState) RolesGet(gameID uint64, addr [20]byte) (game.RoleSet, error) {
	return m.roles[gameID][addr], nil
}

func (m *mockState) RandomSeed() ([]byte, uint64, bool, error) {
	if m.seed == nil {
		return nil, 0, false, nil
	}
	return append([]byte(nil), m.seed...), m.height, true, nil
}

func (m *mockState) UpgradeGet(collectionID uint64, itemID uint32) (*Upgrade, bool, error) {
	up, ok := m.upgrades[balanceKey{collection: collectionID, item: itemID}]
	if !ok {
		return nil, false, nil
	}
	return up.Clone(), true, nil
}

func (m *mockState) UpgradePut(collectionID uint64, itemID uint32, up *Upgrade) error {
	m.upgrades[balanceKey{collection: collectionID, item: itemID}] = up.Clone()
	return nil
}

func (m *mockState) Transfer(from, to [20]byte, amount *big.Int, keepAlive bool) error {
	if amount == nil || amount.Sign() == 0 {
		return nil
	}
	fromBal := m.fund(from)
	if fromBal.Cmp(amount) < 0 {
		return errors.New("insufficient funds")
	}
	m.funds[from] = new(big.Int).Sub(fromBal, amount)
	m.funds[to] = new(big.Int).Add(m.fund(to), amount)
	return nil
}

func (m *mockState) fund(addr [20]byte) *big.Int {
	if bal, ok := m.funds[addr]; ok {
		return bal
	}
	return big.NewInt(0)
}

func (m *mockState) grant(gameID uint64, addr [20]byte, roles game.RoleSet) {
	if m.roles[gameID] == nil {
		m.roles[gameID] = make(map[[20]byte]game.RoleSet)
	}
	m.roles[gameID][addr] = roles
}

type mockRegistry struct {
	minted int
	fail   error
	owner  [20]byte
}

func (r *mockRegistry) MintInto(collectionID uint64, itemID uint32, owner [20]byte) error {
	if r.fail != nil {
		return r.fail
	}
	r.minted++
	return nil
}

func (r *mockRegistry) CollectionOwner(collectionID uint64) ([20]byte, bool) {
	return r.owner, r.owner != [20]byte{}
}

func newTestEngine(t *testing.T) (*Engine, *mockState, *mockRegistry) {
	t.Helper()
	state := newMockState()
	registry := &mockRegistry{}
	engine := NewEngine()
	engine.SetState(state)
	engine.SetRegistry(registry)
	engine.SetNowFunc(func() int64 { return 42 })
	return engine, state, registry
}

const (
	testGame       = uint64(1)
	testCollection = uint64(10)
)

func seedCollection(state *mockState, admin [20]byte) {
	state.collGame[testCollection] = testGame
	state.grant(testGame, admin, game.FullRoleSet)
}

func TestCreateItemPermissionBoundary(t *testing.T) {
	engine, state, registry := newTestEngine(t)
	admin := newTestAddress(0x01)
	issuerOnly := newTestAddress(0x02)
	seedCollection(state, admin)
	state.grant(testGame, issuerOnly, game.RoleSet(game.RoleIssuer))

	if err := engine.CreateItem(issuerOnly, testCollection, 1, 100); !errors.Is(err, ErrNoPermission) {
		t.Fatalf("issuer-only grant should fail with ErrNoPermission, got %v", err)
	}
	if registry.minted != 0 {
		t.Fatal("registry must not be invoked on permission failure")
	}
	if err := engine.CreateItem(admin, testCollection, 1, 100); err != nil {
		t.Fatalf("full grant should succeed: %v", err)
	}
	if registry.minted != 1 {
		t.Fatalf("expected one registry mint, got %d", registry.minted)
	}
	entries := state.reserves[testCollection]
	if len(entries) != 1 || entries[0].Item != 1 || entries[0].Total != 100 {
		t.Fatalf("unexpected reserve entries %v", entries)
	}
}

func TestCreateItemUnknownCollection(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	if err := engine.CreateItem(newTestAddress(0x01), 99, 1, 10); !errors.Is(err, ErrUnknownCollection) {
		t.Fatalf("expected ErrUnknownCollection, got %v", err)
	}
}

func TestCreateItemBoundsAndDuplicates(t *testing.T) {
	engine, state, _ := newTestEngine(t)
	engine.SetLimits(2, 0)
	admin := newTestAddress(0x01)
	seedCollection(state, admin)

	if err := engine.CreateItem(admin, testCollection, 1, 10); err != nil {
		t.Fatalf("create item 1: %v", err)
	}
	if err := engine.CreateItem(admin, testCollection, 1, 10); !errors.Is(err, ErrItemExists) {
		t.Fatalf("expected ErrItemExists, got %v", err)
	}
	if err := engine.CreateItem(admin, testCollection, 2, 10); err != nil {
		t.Fatalf("create item 2: %v", err)
	}
	if err := engine.CreateItem(admin, testCollection, 3, 10); !errors.Is(err, ErrExceedMaxItem) {
		t.Fatalf("expected ErrExceedMaxItem, got %v", err)
	}
}

func TestAddItemRequiresExistingEntry(t *testing.T) {
	engine, state, _ := newTestEngine(t)
	admin := newTestAddress(0x01)
	seedCollection(state, admin)

	if err := engine.AddItem(admin, testCollection, 1, 10); !errors.Is(err, ErrUnknownItem) {
		t.Fatalf("expected ErrUnknownItem, got %v", err)
	}
	if err := engine.CreateItem(admin, testCollection, 1, 10); err != nil {
		t.Fatalf("create item: %v", err)
	}
	if err := engine.AddItem(admin, testCollection, 1, 5); err != nil {
		t.Fatalf("add item: %v", err)
	}
	if got := state.reserves[testCollection][0].Total; got != 15 {
		t.Fatalf("expected reserve total 15, got %d", got)
	}
}

func TestMintDrawsWithinReserve(t *testing.T) {
	engine, state, _ := newTestEngine(t)
	admin := newTestAddress(0x01)
	target := newTestAddress(0x07)
	seedCollection(state, admin)
	if err := engine.CreateItem(admin, testCollection, 1, 3); err != nil {
		t.Fatalf("create item: %v", err)
	}
	if err := engine.CreateItem(admin, testCollection, 2, 2); err != nil {
		t.Fatalf("create item: %v", err)
	}

	drawn, err := engine.Mint(admin, testCollection, target, 5)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if len(drawn) != 5 {
		t.Fatalf("expected 5 draws, got %d", len(drawn))
	}
	counts := map[uint32]uint32{}
	for _, id := range drawn {
		counts[id]++
	}
	if counts[1] != 3 || counts[2] != 2 {
		t.Fatalf("draws must exhaust the reserve exactly, got %v", counts)
	}
	for itemID, want := range counts {
		if got := state.minted[balanceKey{collection: testCollection, item: itemID}]; got != want {
			t.Fatalf("minted counter for item %d: got %d want %d", itemID, got, want)
		}
		if got := state.balances[balanceKey{addr: target, collection: testCollection, item: itemID}]; got != want {
			t.Fatalf("balance for item %d: got %d want %d", itemID, got, want)
		}
	}

	if _, err := engine.Mint(admin, testCollection, target, 1); !errors.Is(err, ErrSoldOut) {
		t.Fatalf("exhausted reserve should fail with ErrSoldOut, got %v", err)
	}
}

func TestMintBoundedPerCall(t *testing.T) {
	engine, state, _ := newTestEngine(t)
	engine.SetLimits(0, 2)
	admin := newTestAddress(0x01)
	seedCollection(state, admin)
	if err := engine.CreateItem(admin, testCollection, 1, 10); err != nil {
		t.Fatalf("create item: %v", err)
	}
	if _, err := engine.Mint(admin, testCollection, admin, 3); !errors.Is(err, ErrExceedAllowedAmount) {
		t.Fatalf("expected ErrExceedAllowedAmount, got %v", err)
	}
}

func TestMintDeterministic(t *testing.T) {
	runMint := func() []uint32 {
		engine, state, _ := newTestEngine(t)
		admin := newTestAddress(0x01)
		seedCollection(state, admin)
		if err := engine.CreateItem(admin, testCollection, 1, 50); err != nil {
			t.Fatalf("create item: %v", err)
		}
		if err := engine.CreateItem(admin, testCollection, 2, 50); err != nil {
			t.Fatalf("create item: %v", err)
		}
		drawn, err := engine.Mint(admin, testCollection, admin, 10)
		if err != nil {
			t.Fatalf("mint: %v", err)
		}
		return drawn
	}
	first := runMint()
	second := runMint()
	if len(first) != len(second) {
		t.Fatalf("replay length mismatch: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("replay diverged at draw %d: %d vs %d", i, first[i], second[i])
		}
	}
}

func TestTransferConservation(t *testing.T) {
	engine, state, _ := newTestEngine(t)
	from := newTestAddress(0x01)
	to := newTestAddress(0x02)
	state.balances[balanceKey{addr: from, collection: testCollection, item: 1}] = 10

	if err := engine.Transfer(from, testCollection, 1, to, 11); !errors.Is(err, ErrInsufficientItemBalance) {
		t.Fatalf("expected ErrInsufficientItemBalance, got %v", err)
	}
	if err := engine.Transfer(from, testCollection, 1, to, 4); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	fromBalance := state.balances[balanceKey{addr: from, collection: testCollection, item: 1}]
	toBalance := state.balances[balanceKey{addr: to, collection: testCollection, item: 1}]
	if fromBalance != 6 || toBalance != 4 {
		t.Fatalf("unexpected balances after transfer: from=%d to=%d", fromBalance, toBalance)
	}
	if fromBalance+toBalance != 10 {
		t.Fatal("transfer must conserve total supply")
	}
}

func TestBurnDebitsBalance(t *testing.T) {
	engine, state, _ := newTestEngine(t)
	owner := newTestAddress(0x01)
	state.balances[balanceKey{addr: owner, collection: testCollection, item: 1}] = 5

	if err := engine.Burn(owner, testCollection, 1, 6); !errors.Is(err, ErrInsufficientItemBalance) {
		t.Fatalf("expected ErrInsufficientItemBalance, got %v", err)
	}
	if err := engine.Burn(owner, testCollection, 1, 2); err != nil {
		t.Fatalf("burn: %v", err)
	}
	if got := state.balances[balanceKey{addr: owner, collection: testCollection, item: 1}]; got != 3 {
		t.Fatalf("expected balance 3 after burn, got %d", got)
	}
}

func TestLockLifecycle(t *testing.T) {
	engine, state, _ := newTestEngine(t)
	seller := newTestAddress(0x01)
	buyer := newTestAddress(0x02)
	key := func(addr [20]byte) balanceKey {
		return balanceKey{addr: addr, collection: testCollection, item: 1}
	}
	state.balances[key(seller)] = 10

	if err := engine.LockItem(seller, testCollection, 1, 11); !errors.Is(err, ErrInsufficientItemBalance) {
		t.Fatalf("expected ErrInsufficientItemBalance, got %v", err)
	}
	if err := engine.LockItem(seller, testCollection, 1, 7); err != nil {
		t.Fatalf("lock: %v", err)
	}
	if state.balances[key(seller)] != 3 || state.locks[key(seller)] != 7 {
		t.Fatalf("lock must move spendable into the lock table: spendable=%d locked=%d",
			state.balances[key(seller)], state.locks[key(seller)])
	}

	// Cancellation path: part of the lock is released back.
	if err := engine.UnlockItem(seller, testCollection, 1, 2); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	if state.balances[key(seller)] != 5 || state.locks[key(seller)] != 5 {
		t.Fatalf("unlock must restore spendable: spendable=%d locked=%d",
			state.balances[key(seller)], state.locks[key(seller)])
	}

	// Settlement path: lock transfers to the buyer, then unlocks to spendable.
	if err := engine.TransferLockItem(seller, testCollection, 1, buyer, 5); err != nil {
		t.Fatalf("transfer lock: %v", err)
	}
	if err := engine.UnlockItem(buyer, testCollection, 1, 5); err != nil {
		t.Fatalf("unlock buyer: %v", err)
	}
	if state.locks[key(seller)] != 0 || state.locks[key(buyer)] != 0 {
		t.Fatal("all locks must be closed after settlement")
	}
	if state.balances[key(seller)] != 5 || state.balances[key(buyer)] != 5 {
		t.Fatalf("unexpected final balances: seller=%d buyer=%d",
			state.balances[key(seller)], state.balances[key(buyer)])
	}
	if err := engine.UnlockItem(buyer, testCollection, 1, 1); !errors.Is(err, ErrInsufficientLockedBalance) {
		t.Fatalf("double unlock must fail, got %v", err)
	}
}

func TestLockBundleUnwindsOnPartialFailure(t *testing.T) {
	engine, state, _ := newTestEngine(t)
	owner := newTestAddress(0x01)
	covered := balanceKey{addr: owner, collection: testCollection, item: 1}
	state.balances[covered] = 4

	bundle := Bundle{
		{Collection: testCollection, Item: 1, Amount: 4},
		{Collection: testCollection, Item: 2, Amount: 1},
	}
	if err := engine.LockBundle(owner, bundle); !errors.Is(err, ErrInsufficientItemBalance) {
		t.Fatalf("expected ErrInsufficientItemBalance, got %v", err)
	}
	if state.balances[covered] != 4 || state.locks[covered] != 0 {
		t.Fatalf("failed bundle lock must unwind: spendable=%d locked=%d",
			state.balances[covered], state.locks[covered])
	}
}

func TestSetUpgradeRequiresFullRolesAndKnownItem(t *testing.T) {
	engine, state, _ := newTestEngine(t)
	admin := newTestAddress(0x01)
	outsider := newTestAddress(0x02)
	seedCollection(state, admin)
	state.reserves[testCollection] = []ReserveEntry{{Item: 1, Total: 10}}

	if err := engine.SetUpgrade(outsider, testCollection, 1, 2, big.NewInt(5)); !errors.Is(err, ErrNoPermission) {
		t.Fatalf("expected ErrNoPermission, got %v", err)
	}
	if err := engine.SetUpgrade(admin, testCollection, 9, 2, big.NewInt(5)); !errors.Is(err, ErrUnknownItem) {
		t.Fatalf("expected ErrUnknownItem, got %v", err)
	}
	if err := engine.SetUpgrade(admin, testCollection, 1, 2, big.NewInt(5)); err != nil {
		t.Fatalf("set upgrade: %v", err)
	}
	if err := engine.SetUpgrade(admin, testCollection, 1, 3, big.NewInt(5)); !errors.Is(err, ErrUpgradeExists) {
		t.Fatalf("expected ErrUpgradeExists, got %v", err)
	}
	up, ok, err := engine.UpgradeConfig(testCollection, 1)
	if err != nil || !ok {
		t.Fatalf("upgrade config: ok=%v err=%v", ok, err)
	}
	if up.To != 2 || up.Fee.Cmp(big.NewInt(5)) != 0 {
		t.Fatalf("unexpected config %+v", up)
	}
}

func TestUpgradeConvertsBalanceAndPaysFee(t *testing.T) {
	engine, state, registry := newTestEngine(t)
	admin := newTestAddress(0x01)
	player := newTestAddress(0x02)
	owner := newTestAddress(0x03)
	registry.owner = owner
	seedCollection(state, admin)
	state.reserves[testCollection] = []ReserveEntry{{Item: 1, Total: 10}}
	if err := engine.SetUpgrade(admin, testCollection, 1, 2, big.NewInt(5)); err != nil {
		t.Fatalf("set upgrade: %v", err)
	}

	state.balances[balanceKey{addr: player, collection: testCollection, item: 1}] = 3
	state.funds[player] = big.NewInt(20)

	if err := engine.Upgrade(player, testCollection, 1, 4); !errors.Is(err, ErrInsufficientItemBalance) {
		t.Fatalf("expected ErrInsufficientItemBalance, got %v", err)
	}
	if err := engine.Upgrade(player, testCollection, 9, 1); !errors.Is(err, ErrUnknownUpgrade) {
		t.Fatalf("expected ErrUnknownUpgrade, got %v", err)
	}

	// Fee is 5 per unit; three units cost 15.
	if err := engine.Upgrade(player, testCollection, 1, 3); err != nil {
		t.Fatalf("upgrade: %v", err)
	}
	if got := state.balances[balanceKey{addr: player, collection: testCollection, item: 1}]; got != 0 {
		t.Fatalf("source balance must be consumed, got %d", got)
	}
	if got := state.balances[balanceKey{addr: player, collection: testCollection, item: 2}]; got != 3 {
		t.Fatalf("upgraded balance must be credited, got %d", got)
	}
	if state.funds[player].Cmp(big.NewInt(5)) != 0 {
		t.Fatalf("player should have paid 15, got %s", state.funds[player])
	}
	if state.funds[owner].Cmp(big.NewInt(15)) != 0 {
		t.Fatalf("collection owner should receive 15, got %s", state.funds[owner])
	}
}

func TestUpgradeFeeShortfallLeavesBalancesUntouched(t *testing.T) {
	engine, state, registry := newTestEngine(t)
	admin := newTestAddress(0x01)
	player := newTestAddress(0x02)
	registry.owner = newTestAddress(0x03)
	seedCollection(state, admin)
	state.reserves[testCollection] = []ReserveEntry{{Item: 1, Total: 10}}
	if err := engine.SetUpgrade(admin, testCollection, 1, 2, big.NewInt(5)); err != nil {
		t.Fatalf("set upgrade: %v", err)
	}
	state.balances[balanceKey{addr: player, collection: testCollection, item: 1}] = 3

	if err := engine.Upgrade(player, testCollection, 1, 3); err == nil {
		t.Fatal("upgrade without fee funds must fail")
	}
	if got := state.balances[balanceKey{addr: player, collection: testCollection, item: 1}]; got != 3 {
		t.Fatalf("failed upgrade must leave the source balance, got %d", got)
	}
	if got := state.balances[balanceKey{addr: player, collection: testCollection, item: 2}]; got != 0 {
		t.Fatalf("failed upgrade must not credit the target, got %d", got)
	}
}
