package trade

import (
	"fmt"
	"math/big"

	"gamechain/native/item"
)

// Kind tags the state machine a trade record follows. The set is closed:
// cancellation and settlement dispatch exhaustively over these values.
type Kind uint8

const (
	KindFixedPrice Kind = iota
	KindSwap
	KindWishlist
	KindAuction
	KindBuyOrder
)

// Valid reports whether the kind value is supported.
func (k Kind) Valid() bool {
	switch k {
	case KindFixedPrice, KindSwap, KindWishlist, KindAuction, KindBuyOrder:
		return true
	default:
		return false
	}
}

func (k Kind) String() string {
	switch k {
	case KindFixedPrice:
		return "fixed_price"
	case KindSwap:
		return "swap"
	case KindWishlist:
		return "wishlist"
	case KindAuction:
		return "auction"
	case KindBuyOrder:
		return "buy_order"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Record is one active trade instance. A record exists from the setter call
// until settlement or cancellation removes it; exhausted fixed-price sales
// are retained with a zero remaining amount until the owner cancels.
type Record struct {
	ID          uint64
	Kind        Kind
	Owner       [20]byte
	Price       *big.Int // nil when the trade carries no price ask
	MinOrder    uint32
	HasMinOrder bool
	Bundle      item.Bundle // escrowed packages: sale supply, swap source, auction lot
	Required    item.Bundle // swap ask or wishlist want
	StartBlock  uint64
	Duration    uint64 // auction window length in blocks
	CreatedAt   int64
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	clone := *r
	if r.Price != nil {
		clone.Price = new(big.Int).Set(r.Price)
	}
	clone.Bundle = r.Bundle.Clone()
	clone.Required = r.Required.Clone()
	return &clone
}

// Sanitize validates and normalises a record, returning a clone. The original
// value is not mutated.
func Sanitize(r *Record) (*Record, error) {
	if r == nil {
		return nil, fmt.Errorf("trade: nil record")
	}
	if !r.Kind.Valid() {
		return nil, fmt.Errorf("trade: invalid kind %d", r.Kind)
	}
	clone := r.Clone()
	if clone.Price != nil && clone.Price.Sign() < 0 {
		return nil, fmt.Errorf("trade: price must be non-negative")
	}
	return clone, nil
}

// Bid is the current highest auction bid. The amount is held reserved on the
// bidder's account until outbid or settled.
type Bid struct {
	Bidder [20]byte
	Amount *big.Int
}

// Clone returns a deep copy of the bid.
func (b *Bid) Clone() *Bid {
	if b == nil {
		return nil
	}
	clone := *b
	if b.Amount != nil {
		clone.Amount = new(big.Int).Set(b.Amount)
	} else {
		clone.Amount = big.NewInt(0)
	}
	return &clone
}
