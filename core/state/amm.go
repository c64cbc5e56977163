package state

import (
	"errors"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

var (
	ErrPoolExists   = errors.New("state: amm pool already registered")
	ErrPoolNotFound = errors.New("state: amm pool not found")
)

// AMMPool is the registry record of a constant-product pool. Pricing is out
// of scope; the record only ties a pair to its share token.
type AMMPool struct {
	ID         [20]byte
	AssetA     uint32
	AssetB     uint32
	ShareToken uint32
}

// PoolAddress derives the pool account for an asset pair. The order of the
// assets does not matter.
func PoolAddress(a, b uint32) [20]byte {
	if a > b {
		a, b = b, a
	}
	digest := ethcrypto.Keccak256([]byte("amm/pool"), u32(a), u32(b))
	var out [20]byte
	copy(out[:], digest[12:])
	return out
}

// RegisterPool records a pool for the pair and returns it.
func (tx *Tx) RegisterPool(assetA, assetB, shareToken uint32) (*AMMPool, error) {
	if _, ok, err := tx.PoolByPair(assetA, assetB); err != nil {
		return nil, err
	} else if ok {
		return nil, ErrPoolExists
	}
	pool := &AMMPool{ID: PoolAddress(assetA, assetB), AssetA: assetA, AssetB: assetB, ShareToken: shareToken}
	if err := tx.putRLP(ammPoolKey(pool.ID), pool); err != nil {
		return nil, err
	}
	if err := tx.putRLP(ammPairKey(assetA, assetB), pool.ID); err != nil {
		return nil, err
	}
	return pool, nil
}

// RemovePool drops the pool registered for the pair.
func (tx *Tx) RemovePool(assetA, assetB uint32) error {
	pool, ok, err := tx.PoolByPair(assetA, assetB)
	if err != nil {
		return err
	}
	if !ok {
		return ErrPoolNotFound
	}
	tx.ov.remove(ammPoolKey(pool.ID))
	tx.ov.remove(ammPairKey(assetA, assetB))
	return nil
}

// PoolByPair resolves the pool registered for the pair.
func (tx *Tx) PoolByPair(assetA, assetB uint32) (*AMMPool, bool, error) {
	var id [20]byte
	ok, err := tx.getRLP(ammPairKey(assetA, assetB), &id)
	if err != nil || !ok {
		return nil, false, err
	}
	return tx.Pool(id)
}

// Pool loads a pool by id.
func (tx *Tx) Pool(id [20]byte) (*AMMPool, bool, error) {
	pool := new(AMMPool)
	ok, err := tx.getRLP(ammPoolKey(id), pool)
	if err != nil || !ok {
		return nil, false, err
	}
	return pool, true, nil
}
