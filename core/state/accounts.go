package state

import (
	"errors"
	"math/big"

	"gamechain/core/types"
)

var (
	// ErrInsufficientFunds is returned when a transfer or reserve exceeds the
	// spendable balance.
	ErrInsufficientFunds = errors.New("state: insufficient funds")
	// ErrInsufficientReserved is returned when a repatriation exceeds the
	// reserved balance.
	ErrInsufficientReserved = errors.New("state: insufficient reserved funds")
	// ErrWouldReapAccount is returned when a keep-alive transfer would empty
	// the sender entirely.
	ErrWouldReapAccount = errors.New("state: transfer would reap account")

	errNegativeAmount = errors.New("state: amount must be non-negative")
)

type storedAccount struct {
	Balance  *big.Int
	Reserved *big.Int
}

// GetAccount loads the account for addr, returning a zeroed account when none
// has been stored yet.
func (m *Manager) GetAccount(addr [20]byte) (*types.Account, error) {
	stored := storedAccount{}
	ok, err := m.get(storageKey(accountPrefix, addr[:]), &stored)
	if err != nil {
		return nil, err
	}
	if !ok {
		return types.NewAccount(), nil
	}
	acc := types.NewAccount()
	if stored.Balance != nil {
		acc.Balance = new(big.Int).Set(stored.Balance)
	}
	if stored.Reserved != nil {
		acc.Reserved = new(big.Int).Set(stored.Reserved)
	}
	return acc, nil
}

// PutAccount persists the account for addr.
func (m *Manager) PutAccount(addr [20]byte, acc *types.Account) error {
	cloned := acc.Clone()
	return m.put(storageKey(accountPrefix, addr[:]), &storedAccount{
		Balance:  cloned.Balance,
		Reserved: cloned.Reserved,
	})
}

// Reserve moves amount from the spendable balance into the reserved bucket.
func (m *Manager) Reserve(addr [20]byte, amount *big.Int) error {
	if amount == nil || amount.Sign() == 0 {
		return nil
	}
	if amount.Sign() < 0 {
		return errNegativeAmount
	}
	acc, err := m.GetAccount(addr)
	if err != nil {
		return err
	}
	if acc.Balance.Cmp(amount) < 0 {
		return ErrInsufficientFunds
	}
	acc.Balance = new(big.Int).Sub(acc.Balance, amount)
	acc.Reserved = new(big.Int).Add(acc.Reserved, amount)
	return m.PutAccount(addr, acc)
}

// Unreserve returns up to amount from the reserved bucket to the spendable
// balance. Releasing more than is reserved is clamped, never an error.
func (m *Manager) Unreserve(addr [20]byte, amount *big.Int) error {
	if amount == nil || amount.Sign() == 0 {
		return nil
	}
	if amount.Sign() < 0 {
		return errNegativeAmount
	}
	acc, err := m.GetAccount(addr)
	if err != nil {
		return err
	}
	release := new(big.Int).Set(amount)
	if acc.Reserved.Cmp(release) < 0 {
		release = new(big.Int).Set(acc.Reserved)
	}
	acc.Reserved = new(big.Int).Sub(acc.Reserved, release)
	acc.Balance = new(big.Int).Add(acc.Balance, release)
	return m.PutAccount(addr, acc)
}

// RepatriateReserved moves amount from the reserved bucket of from into the
// spendable balance of to. Used to settle held bids and wishlist prices.
func (m *Manager) RepatriateReserved(from, to [20]byte, amount *big.Int) error {
	if amount == nil || amount.Sign() == 0 {
		return nil
	}
	if amount.Sign() < 0 {
		return errNegativeAmount
	}
	fromAcc, err := m.GetAccount(from)
	if err != nil {
		return err
	}
	if fromAcc.Reserved.Cmp(amount) < 0 {
		return ErrInsufficientReserved
	}
	fromAcc.Reserved = new(big.Int).Sub(fromAcc.Reserved, amount)
	if err := m.PutAccount(from, fromAcc); err != nil {
		return err
	}
	toAcc, err := m.GetAccount(to)
	if err != nil {
		return err
	}
	toAcc.Balance = new(big.Int).Add(toAcc.Balance, amount)
	return m.PutAccount(to, toAcc)
}

// Transfer moves amount of spendable funds between accounts. With keepAlive
// set, a transfer that would empty the sender completely is rejected.
func (m *Manager) Transfer(from, to [20]byte, amount *big.Int, keepAlive bool) error {
	if amount == nil || amount.Sign() == 0 {
		return nil
	}
	if amount.Sign() < 0 {
		return errNegativeAmount
	}
	fromAcc, err := m.GetAccount(from)
	if err != nil {
		return err
	}
	if fromAcc.Balance.Cmp(amount) < 0 {
		return ErrInsufficientFunds
	}
	remaining := new(big.Int).Sub(fromAcc.Balance, amount)
	if keepAlive && remaining.Sign() == 0 && fromAcc.Reserved.Sign() == 0 {
		return ErrWouldReapAccount
	}
	fromAcc.Balance = remaining
	if err := m.PutAccount(from, fromAcc); err != nil {
		return err
	}
	toAcc, err := m.GetAccount(to)
	if err != nil {
		return err
	}
	toAcc.Balance = new(big.Int).Add(toAcc.Balance, amount)
	return m.PutAccount(to, toAcc)
}
