package types

import "math/big"

// Account tracks the native currency position of an address. Balance is the
// spendable amount; Reserved holds deposits and escrowed bids that remain
// attributed to the owner but cannot be spent until released.
type Account struct {
	Balance  *big.Int
	Reserved *big.Int
}

// NewAccount returns an account with zeroed, non-nil balances.
func NewAccount() *Account {
	return &Account{Balance: big.NewInt(0), Reserved: big.NewInt(0)}
}

// Clone returns a deep copy of the account so callers can safely mutate the
// copy without affecting the stored instance.
func (a *Account) Clone() *Account {
	if a == nil {
		return NewAccount()
	}
	clone := NewAccount()
	if a.Balance != nil {
		clone.Balance = new(big.Int).Set(a.Balance)
	}
	if a.Reserved != nil {
		clone.Reserved = new(big.Int).Set(a.Reserved)
	}
	return clone
}
