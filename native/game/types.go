package game

import "math/big"

// Role is a single administrative capability an account can hold within a
// game.
type Role uint8

const (
	RoleIssuer Role = 1 << iota
	RoleFreezer
	RoleAdmin
)

// RoleSet is a bitmask of Roles granted to an account for one game.
type RoleSet uint8

// FullRoleSet is the grant required for collection- and item-administrative
// actions. The check is an equality comparison, not a subset test: an account
// holding a strict superset or subset of these roles is rejected.
const FullRoleSet = RoleSet(RoleIssuer | RoleFreezer | RoleAdmin)

// Has reports whether the set contains the given role.
func (s RoleSet) Has(role Role) bool { return s&RoleSet(role) != 0 }

// Details captures the stored metadata of a game.
type Details struct {
	ID           uint64
	Owner        [20]byte
	Admin        [20]byte
	Collections  uint32
	OwnerDeposit *big.Int
}

// Clone returns a deep copy of the game details.
func (d *Details) Clone() *Details {
	if d == nil {
		return nil
	}
	clone := *d
	if d.OwnerDeposit != nil {
		clone.OwnerDeposit = new(big.Int).Set(d.OwnerDeposit)
	} else {
		clone.OwnerDeposit = big.NewInt(0)
	}
	return &clone
}
