package state

import (
	"encoding/binary"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

var (
	accountPrefix         = []byte("gamechain/account/")
	gameRecordPrefix      = []byte("gamechain/game/record/")
	gameCounterKey        = []byte("gamechain/game/next")
	gameRolePrefix        = []byte("gamechain/game/roles/")
	gameCollectionsPrefix = []byte("gamechain/game/collections/")
	collectionGamePrefix  = []byte("gamechain/collection/game/")
	reservePrefix         = []byte("gamechain/item/reserve/")
	mintedPrefix          = []byte("gamechain/item/minted/")
	balancePrefix         = []byte("gamechain/item/balance/")
	lockPrefix            = []byte("gamechain/item/lock/")
	upgradePrefix         = []byte("gamechain/item/upgrade/")
	tradeRecordPrefix     = []byte("gamechain/trade/record/")
	tradeCounterKey       = []byte("gamechain/trade/next")
	tradeBidPrefix        = []byte("gamechain/trade/bid/")
	randomSeedKey         = []byte("gamechain/random/seed")
	collectionCounterKey  = []byte("gamechain/registry/next")
	collectionMetaPrefix  = []byte("gamechain/registry/collection/")
	collectionItemPrefix  = []byte("gamechain/registry/item/")
	transferLockPrefix    = []byte("gamechain/registry/frozen/")
)

func storageKey(prefix []byte, parts ...[]byte) []byte {
	size := len(prefix)
	for _, p := range parts {
		size += len(p)
	}
	buf := make([]byte, 0, size)
	buf = append(buf, prefix...)
	for _, p := range parts {
		buf = append(buf, p...)
	}
	return ethcrypto.Keccak256(buf)
}

func uint64Key(v uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	return buf[:]
}

func uint32Key(v uint32) []byte {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	return buf[:]
}
