package state

import (
	"encoding/binary"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

var (
	balancePrefix      = []byte("bal/")
	rolePrefix         = []byte("role/")
	nftClassPrefix     = []byte("nft/class/")
	nftInstancePrefix  = []byte("nft/item/")
	ammPoolPrefix      = []byte("amm/pool/")
	ammPairPrefix      = []byte("amm/pair/")
	globalFarmPrefix   = []byte("lm/global/")
	yieldFarmPrefix    = []byte("lm/yield/")
	activeYieldPrefix  = []byte("lm/active/")
	depositPrefix      = []byte("lm/deposit/")
	farmSequenceKey    = []byte("lm/seq/farm")
	depositSequenceKey = []byte("lm/seq/deposit")
	lastBlockKey       = []byte("lm/seq/block")
	kvPrefix           = []byte("kv/")
)

// hashedKey namespaces a keccak digest of the parts under prefix. Keeping the
// prefix readable lets the backends iterate one record family at a time.
func hashedKey(prefix []byte, parts ...[]byte) []byte {
	digest := ethcrypto.Keccak256(parts...)
	out := make([]byte, 0, len(prefix)+len(digest))
	out = append(out, prefix...)
	return append(out, digest...)
}

func u32(v uint32) []byte {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	return buf[:]
}

func u64(v uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	return buf[:]
}

func balanceKey(asset uint32, addr [20]byte) []byte {
	return hashedKey(balancePrefix, u32(asset), addr[:])
}

func roleKey(role string) []byte {
	return hashedKey(rolePrefix, []byte(role))
}

func nftClassKey(class uint64) []byte {
	return append(append([]byte(nil), nftClassPrefix...), u64(class)...)
}

func nftInstanceKey(class, instance uint64) []byte {
	return hashedKey(nftInstancePrefix, u64(class), u64(instance))
}

func ammPoolKey(poolID [20]byte) []byte {
	return append(append([]byte(nil), ammPoolPrefix...), poolID[:]...)
}

// ammPairKey is independent of the asset order.
func ammPairKey(a, b uint32) []byte {
	if a > b {
		a, b = b, a
	}
	return hashedKey(ammPairPrefix, u32(a), u32(b))
}

func globalFarmKey(id uint32) []byte {
	return append(append([]byte(nil), globalFarmPrefix...), u32(id)...)
}

func yieldFarmKey(globalFarmID uint32, poolID [20]byte, id uint32) []byte {
	key := append(append([]byte(nil), yieldFarmPrefix...), u32(globalFarmID)...)
	key = append(key, poolID[:]...)
	return append(key, u32(id)...)
}

func activeYieldFarmKey(globalFarmID uint32, poolID [20]byte) []byte {
	key := append(append([]byte(nil), activeYieldPrefix...), u32(globalFarmID)...)
	return append(key, poolID[:]...)
}

func depositKey(id uint64) []byte {
	return append(append([]byte(nil), depositPrefix...), u64(id)...)
}

func kvKey(key []byte) []byte {
	return hashedKey(kvPrefix, key)
}
