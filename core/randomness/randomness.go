package randomness

import (
	"encoding/binary"
	"math"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// domainSalt separates this module's hash stream from any other keccak use of
// the same seed material.
var domainSalt = []byte("gamechain/randomness/v1")

// DeriveUint32 deterministically derives a 32-bit candidate from the supplied
// seed material and attempt nonce. Identical inputs always yield identical
// outputs, which replicas rely on for agreement.
func DeriveUint32(seed []byte, nonce uint32) uint32 {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], nonce)
	digest := ethcrypto.Keccak256(domainSalt, seed, buf[:])
	return binary.LittleEndian.Uint32(digest[:4])
}

// RandomInRange returns a uniformly distributed value in [1, total] derived
// from seed. Candidates falling into the biased upper slice of the modulo
// reduction are rejected and re-derived with an incremented nonce, up to
// maxAttempts times; the final attempt is accepted unconditionally, trading a
// vanishingly small bias for guaranteed termination. Returns false when total
// or maxAttempts is zero.
func RandomInRange(total uint32, seed []byte, maxAttempts uint32) (uint32, bool) {
	if total == 0 || maxAttempts == 0 {
		return 0, false
	}
	limit := math.MaxUint32 - (math.MaxUint32 % total)
	candidate := DeriveUint32(seed, 0)
	for nonce := uint32(1); nonce < maxAttempts; nonce++ {
		if candidate < limit {
			break
		}
		candidate = DeriveUint32(seed, nonce)
	}
	return candidate%total + 1, true
}
