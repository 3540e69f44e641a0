package core

import (
	"errors"
	"math/big"
	"testing"

	"gamechain/native/common"
	"gamechain/native/item"
	"gamechain/storage"
)

var (
	studioAddr = [20]byte{0xaa}
	playerAddr = [20]byte{0xbb}
)

func newTestNode(t *testing.T) *Node {
	t.Helper()
	return NewNode(storage.NewMemDB(), Config{
		GameDeposit:        big.NewInt(10),
		TradeDeposit:       big.NewInt(5),
		MaxGameCollections: 4,
		MaxItems:           8,
		MaxMintPerCall:     10,
		MaxBundle:          4,
		RandomAttempts:     5,
	})
}

func TestNodeEconomyFlow(t *testing.T) {
	node := newTestNode(t)
	if err := node.Credit(studioAddr, big.NewInt(100)); err != nil {
		t.Fatalf("credit studio: %v", err)
	}
	if err := node.Credit(playerAddr, big.NewInt(50)); err != nil {
		t.Fatalf("credit player: %v", err)
	}

	details, err := node.CreateGame(studioAddr, studioAddr)
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	acc, err := node.GetAccount(studioAddr)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if acc.Reserved.Cmp(big.NewInt(10)) != 0 {
		t.Fatalf("expected deposit 10 reserved, got %s", acc.Reserved)
	}

	collectionID, err := node.CreateGameCollection(studioAddr, details.ID)
	if err != nil {
		t.Fatalf("create collection: %v", err)
	}
	if err := node.CreateItem(studioAddr, collectionID, 7, 3); err != nil {
		t.Fatalf("create item: %v", err)
	}

	if _, err := node.MintItems(studioAddr, collectionID, studioAddr, 1); err == nil {
		t.Fatal("expected mint to fail before any seed submission")
	}
	var seed [32]byte
	for i := range seed {
		seed[i] = byte(i)
	}
	if err := node.SubmitRandomSeed(seed, 5); err != nil {
		t.Fatalf("submit seed: %v", err)
	}
	if node.Height() != 5 {
		t.Fatalf("expected height 5, got %d", node.Height())
	}

	drawn, err := node.MintItems(studioAddr, collectionID, studioAddr, 3)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if len(drawn) != 3 {
		t.Fatalf("expected 3 draws, got %d", len(drawn))
	}
	balance, err := node.ItemBalance(studioAddr, collectionID, 7)
	if err != nil {
		t.Fatalf("item balance: %v", err)
	}
	if balance != 3 {
		t.Fatalf("expected balance 3, got %d", balance)
	}

	tradeID, err := node.SetPrice(studioAddr, item.Package{Collection: collectionID, Item: 7, Amount: 2}, big.NewInt(4), 0, false)
	if err != nil {
		t.Fatalf("set price: %v", err)
	}
	if err := node.BuyItem(playerAddr, tradeID, 2, big.NewInt(4)); err != nil {
		t.Fatalf("buy: %v", err)
	}
	bought, err := node.ItemBalance(playerAddr, collectionID, 7)
	if err != nil {
		t.Fatalf("buyer balance: %v", err)
	}
	if bought != 2 {
		t.Fatalf("expected buyer to hold 2, got %d", bought)
	}
	buyerAcc, err := node.GetAccount(playerAddr)
	if err != nil {
		t.Fatalf("buyer account: %v", err)
	}
	if buyerAcc.Balance.Cmp(big.NewInt(42)) != 0 {
		t.Fatalf("expected buyer balance 42, got %s", buyerAcc.Balance)
	}

	if err := node.CancelTrade(studioAddr, tradeID); err != nil {
		t.Fatalf("cancel exhausted sale: %v", err)
	}
	if _, ok, err := node.Trade(tradeID); err != nil || ok {
		t.Fatalf("expected trade removed, ok=%v err=%v", ok, err)
	}
}

func TestNodeSeedRestoredFromStorage(t *testing.T) {
	db := storage.NewMemDB()
	node := NewNode(db, Config{GameDeposit: big.NewInt(0), TradeDeposit: big.NewInt(0)})
	var seed [32]byte
	seed[0] = 0x11
	if err := node.SubmitRandomSeed(seed, 42); err != nil {
		t.Fatalf("submit seed: %v", err)
	}

	reopened := NewNode(db, Config{GameDeposit: big.NewInt(0), TradeDeposit: big.NewInt(0)})
	if reopened.Height() != 42 {
		t.Fatalf("expected restored height 42, got %d", reopened.Height())
	}
	stored, height, err := reopened.RandomSeed()
	if err != nil {
		t.Fatalf("random seed: %v", err)
	}
	if height != 42 || stored[0] != 0x11 {
		t.Fatalf("unexpected seed %x at height %d", stored, height)
	}
}

func TestNodeRandomSeedBeforeSubmission(t *testing.T) {
	node := newTestNode(t)
	if _, _, err := node.RandomSeed(); !errors.Is(err, ErrNoSeed) {
		t.Fatalf("expected ErrNoSeed, got %v", err)
	}
}

func TestNodePauseBlocksModule(t *testing.T) {
	node := newTestNode(t)
	if err := node.Credit(studioAddr, big.NewInt(100)); err != nil {
		t.Fatalf("credit: %v", err)
	}

	node.SetPaused(ModuleGame, true)
	if _, err := node.CreateGame(studioAddr, studioAddr); !errors.Is(err, common.ErrModulePaused) {
		t.Fatalf("expected ErrModulePaused, got %v", err)
	}
	node.SetPaused(ModuleGame, false)
	details, err := node.CreateGame(studioAddr, studioAddr)
	if err != nil {
		t.Fatalf("create game after resume: %v", err)
	}

	node.SetPaused(ModuleTrade, true)
	if err := node.BuyItem(playerAddr, 1, 1, big.NewInt(1)); !errors.Is(err, common.ErrModulePaused) {
		t.Fatalf("expected ErrModulePaused on trade, got %v", err)
	}

	// Other modules stay live while one is paused.
	if _, err := node.CreateGameCollection(studioAddr, details.ID); err != nil {
		t.Fatalf("create collection with trade paused: %v", err)
	}
}
