package state

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"gamechain/native/game"
	"gamechain/native/item"
	"gamechain/native/trade"
	"gamechain/storage"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	return NewManager(storage.NewMemDB())
}

func addr(fill byte) [20]byte {
	var a [20]byte
	for i := range a {
		a[i] = fill
	}
	return a
}

func TestAccountDefaultsToZero(t *testing.T) {
	m := newTestManager(t)
	acc, err := m.GetAccount(addr(0x01))
	require.NoError(t, err)
	require.Zero(t, acc.Balance.Sign())
	require.Zero(t, acc.Reserved.Sign())
}

func TestReserveUnreserve(t *testing.T) {
	m := newTestManager(t)
	owner := addr(0x01)
	acc, err := m.GetAccount(owner)
	require.NoError(t, err)
	acc.Balance = big.NewInt(100)
	require.NoError(t, m.PutAccount(owner, acc))

	require.ErrorIs(t, m.Reserve(owner, big.NewInt(101)), ErrInsufficientFunds)
	require.NoError(t, m.Reserve(owner, big.NewInt(60)))

	acc, err = m.GetAccount(owner)
	require.NoError(t, err)
	require.Equal(t, int64(40), acc.Balance.Int64())
	require.Equal(t, int64(60), acc.Reserved.Int64())

	// Unreserve clamps to the reserved amount.
	require.NoError(t, m.Unreserve(owner, big.NewInt(100)))
	acc, err = m.GetAccount(owner)
	require.NoError(t, err)
	require.Equal(t, int64(100), acc.Balance.Int64())
	require.Zero(t, acc.Reserved.Sign())
}

func TestRepatriateReserved(t *testing.T) {
	m := newTestManager(t)
	from, to := addr(0x01), addr(0x02)
	acc, _ := m.GetAccount(from)
	acc.Balance = big.NewInt(50)
	require.NoError(t, m.PutAccount(from, acc))
	require.NoError(t, m.Reserve(from, big.NewInt(30)))

	require.ErrorIs(t, m.RepatriateReserved(from, to, big.NewInt(31)), ErrInsufficientReserved)
	require.NoError(t, m.RepatriateReserved(from, to, big.NewInt(30)))

	toAcc, err := m.GetAccount(to)
	require.NoError(t, err)
	require.Equal(t, int64(30), toAcc.Balance.Int64())
	fromAcc, err := m.GetAccount(from)
	require.NoError(t, err)
	require.Zero(t, fromAcc.Reserved.Sign())
	require.Equal(t, int64(20), fromAcc.Balance.Int64())
}

func TestTransferKeepAlive(t *testing.T) {
	m := newTestManager(t)
	from, to := addr(0x01), addr(0x02)
	acc, _ := m.GetAccount(from)
	acc.Balance = big.NewInt(10)
	require.NoError(t, m.PutAccount(from, acc))

	require.ErrorIs(t, m.Transfer(from, to, big.NewInt(10), true), ErrWouldReapAccount)
	require.NoError(t, m.Transfer(from, to, big.NewInt(10), false))
	require.ErrorIs(t, m.Transfer(from, to, big.NewInt(1), false), ErrInsufficientFunds)

	toAcc, err := m.GetAccount(to)
	require.NoError(t, err)
	require.Equal(t, int64(10), toAcc.Balance.Int64())
}

func TestGameRoundtrip(t *testing.T) {
	m := newTestManager(t)
	id, err := m.NextGameID()
	require.NoError(t, err)
	require.Equal(t, uint64(1), id)

	details := &game.Details{
		ID:           id,
		Owner:        addr(0x01),
		Admin:        addr(0x02),
		Collections:  3,
		OwnerDeposit: big.NewInt(500),
	}
	require.NoError(t, m.GamePut(details))

	loaded, ok, err := m.GameGet(id)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, details.Owner, loaded.Owner)
	require.Equal(t, details.Admin, loaded.Admin)
	require.Equal(t, uint32(3), loaded.Collections)
	require.Equal(t, int64(500), loaded.OwnerDeposit.Int64())

	_, ok, err = m.GameGet(99)
	require.NoError(t, err)
	require.False(t, ok)

	next, err := m.NextGameID()
	require.NoError(t, err)
	require.Equal(t, uint64(2), next)
}

func TestRoleGrants(t *testing.T) {
	m := newTestManager(t)
	account := addr(0x03)
	roles, err := m.RolesGet(1, account)
	require.NoError(t, err)
	require.Zero(t, roles)

	require.NoError(t, m.RolesPut(1, account, game.FullRoleSet))
	roles, err = m.RolesGet(1, account)
	require.NoError(t, err)
	require.Equal(t, game.FullRoleSet, roles)

	// Storing the empty set removes the grant.
	require.NoError(t, m.RolesPut(1, account, 0))
	roles, err = m.RolesGet(1, account)
	require.NoError(t, err)
	require.Zero(t, roles)
}

func TestGameCollectionsAndIndex(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.GameCollectionsPut(1, []uint64{10, 11}))
	collections, err := m.GameCollections(1)
	require.NoError(t, err)
	require.Equal(t, []uint64{10, 11}, collections)

	require.NoError(t, m.CollectionGamePut(10, 1))
	gameID, ok, err := m.CollectionGame(10)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(1), gameID)

	require.NoError(t, m.CollectionGameDelete(10))
	_, ok, err = m.CollectionGame(10)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestItemTables(t *testing.T) {
	m := newTestManager(t)
	entries := []item.ReserveEntry{{Item: 1, Total: 100}, {Item: 2, Total: 50}}
	require.NoError(t, m.ReserveEntriesPut(7, entries))
	loaded, err := m.ReserveEntries(7)
	require.NoError(t, err)
	require.Equal(t, entries, loaded)

	require.NoError(t, m.MintedCountPut(7, 1, 42))
	minted, err := m.MintedCount(7, 1)
	require.NoError(t, err)
	require.Equal(t, uint32(42), minted)

	owner := addr(0x01)
	require.NoError(t, m.ItemBalancePut(owner, 7, 1, 9))
	balance, err := m.ItemBalance(owner, 7, 1)
	require.NoError(t, err)
	require.Equal(t, uint32(9), balance)

	require.NoError(t, m.LockBalancePut(owner, 7, 1, 4))
	locked, err := m.LockBalance(owner, 7, 1)
	require.NoError(t, err)
	require.Equal(t, uint32(4), locked)

	// Zeroing removes the records outright.
	require.NoError(t, m.ItemBalancePut(owner, 7, 1, 0))
	balance, err = m.ItemBalance(owner, 7, 1)
	require.NoError(t, err)
	require.Zero(t, balance)
}

func TestItemUpgradeRoundtrip(t *testing.T) {
	m := newTestManager(t)

	_, ok, err := m.UpgradeGet(7, 1)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, m.UpgradePut(7, 1, &item.Upgrade{To: 2, Fee: big.NewInt(10)}))
	up, ok, err := m.UpgradeGet(7, 1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint32(2), up.To)
	require.Equal(t, int64(10), up.Fee.Int64())

	require.NoError(t, m.UpgradePut(7, 1, nil))
	_, ok, err = m.UpgradeGet(7, 1)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestTradeRoundtrip(t *testing.T) {
	m := newTestManager(t)
	id, err := m.NextTradeID()
	require.NoError(t, err)

	record := &trade.Record{
		ID:          id,
		Kind:        trade.KindFixedPrice,
		Owner:       addr(0x01),
		Price:       big.NewInt(25),
		MinOrder:    2,
		HasMinOrder: true,
		Bundle:      item.Bundle{{Collection: 7, Item: 1, Amount: 5}},
		CreatedAt:   1700000000,
	}
	require.NoError(t, m.TradePut(record))

	loaded, ok, err := m.TradeGet(id)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, record.Kind, loaded.Kind)
	require.Equal(t, record.Owner, loaded.Owner)
	require.Equal(t, int64(25), loaded.Price.Int64())
	require.True(t, loaded.HasMinOrder)
	require.Equal(t, record.Bundle, loaded.Bundle)
	require.Equal(t, record.CreatedAt, loaded.CreatedAt)

	require.NoError(t, m.TradeDelete(id))
	_, ok, err = m.TradeGet(id)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestTradeNilPricePreserved(t *testing.T) {
	m := newTestManager(t)
	record := &trade.Record{
		ID:     1,
		Kind:   trade.KindSwap,
		Owner:  addr(0x01),
		Bundle: item.Bundle{{Collection: 7, Item: 1, Amount: 1}},
	}
	require.NoError(t, m.TradePut(record))
	loaded, ok, err := m.TradeGet(1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Nil(t, loaded.Price)

	record.ID = 2
	record.Price = big.NewInt(0)
	require.NoError(t, m.TradePut(record))
	loaded, ok, err = m.TradeGet(2)
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, loaded.Price)
	require.Zero(t, loaded.Price.Sign())
}

func TestTradePutRejectsMalformedRecords(t *testing.T) {
	m := newTestManager(t)

	require.Error(t, m.TradePut(nil))
	require.Error(t, m.TradePut(&trade.Record{ID: 1, Kind: trade.Kind(42), Owner: addr(0x01)}))
	require.Error(t, m.TradePut(&trade.Record{ID: 1, Kind: trade.KindFixedPrice, Owner: addr(0x01), Price: big.NewInt(-3)}))

	_, ok, err := m.TradeGet(1)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestBidRoundtrip(t *testing.T) {
	m := newTestManager(t)
	bid := &trade.Bid{Bidder: addr(0x0A), Amount: big.NewInt(77)}
	require.NoError(t, m.BidPut(5, bid))

	loaded, ok, err := m.BidGet(5)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, bid.Bidder, loaded.Bidder)
	require.Equal(t, int64(77), loaded.Amount.Int64())

	require.NoError(t, m.BidDelete(5))
	_, ok, err = m.BidGet(5)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRegistryTables(t *testing.T) {
	m := newTestManager(t)
	id, err := m.NextCollectionID()
	require.NoError(t, err)

	meta := &CollectionMeta{ID: id, Owner: addr(0x01), Admin: addr(0x02)}
	require.NoError(t, m.CollectionMetaPut(meta))
	loaded, ok, err := m.CollectionMetaGet(id)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, meta.Owner, loaded.Owner)

	exists, err := m.CollectionItemExists(id, 1)
	require.NoError(t, err)
	require.False(t, exists)
	require.NoError(t, m.CollectionItemPut(id, 1, addr(0x01)))
	exists, err = m.CollectionItemExists(id, 1)
	require.NoError(t, err)
	require.True(t, exists)

	locked, err := m.TransferLocked(id, 1)
	require.NoError(t, err)
	require.False(t, locked)
	require.NoError(t, m.TransferLockedPut(id, 1, true))
	locked, err = m.TransferLocked(id, 1)
	require.NoError(t, err)
	require.True(t, locked)
	require.NoError(t, m.TransferLockedPut(id, 1, false))
	locked, err = m.TransferLocked(id, 1)
	require.NoError(t, err)
	require.False(t, locked)
}

func TestRandomSeedRotation(t *testing.T) {
	m := newTestManager(t)
	_, _, ok, err := m.RandomSeed()
	require.NoError(t, err)
	require.False(t, ok)

	seed := []byte{0x01, 0x02, 0x03}
	require.NoError(t, m.RandomSeedPut(seed, 12))
	loaded, height, ok, err := m.RandomSeed()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, seed, loaded)
	require.Equal(t, uint64(12), height)
}
