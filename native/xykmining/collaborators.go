package xykmining

import (
	"github.com/holiman/uint256"

	"farmchain/core/state"
	lm "farmchain/native/liquiditymining"
)

// AssetPair identifies an AMM pool by its two assets. The order is irrelevant.
type AssetPair struct {
	AssetIn  lm.AssetID `yaml:"asset_in"`
	AssetOut lm.AssetID `yaml:"asset_out"`
}

// AMM is the slice of the exchange the farming calls depend on.
type AMM interface {
	Exists(pair AssetPair) (bool, error)
	// PoolID is derived from the pair and is defined even for removed pools.
	PoolID(pair AssetPair) [20]byte
	ShareToken(poolID [20]byte) (lm.AssetID, bool, error)
	PoolAssets(poolID [20]byte) ([2]lm.AssetID, bool, error)
}

// Ledger is the multi-asset balance ledger.
type Ledger interface {
	FreeBalance(asset lm.AssetID, who [20]byte) (*uint256.Int, error)
	TotalBalance(asset lm.AssetID, who [20]byte) (*uint256.Int, error)
	Transfer(asset lm.AssetID, from, to [20]byte, amount *uint256.Int) error
}

// NFTRegistry records deposit ownership.
type NFTRegistry interface {
	Mint(class, instance uint64, owner [20]byte) error
	Burn(class, instance uint64) error
	OwnerOf(class, instance uint64) ([20]byte, bool, error)
}

type stateAMM struct{ tx *state.Tx }

func (a stateAMM) Exists(pair AssetPair) (bool, error) {
	_, ok, err := a.tx.PoolByPair(pair.AssetIn, pair.AssetOut)
	return ok, err
}

func (stateAMM) PoolID(pair AssetPair) [20]byte {
	return state.PoolAddress(pair.AssetIn, pair.AssetOut)
}

func (a stateAMM) ShareToken(poolID [20]byte) (lm.AssetID, bool, error) {
	pool, ok, err := a.tx.Pool(poolID)
	if err != nil || !ok {
		return 0, false, err
	}
	return pool.ShareToken, true, nil
}

func (a stateAMM) PoolAssets(poolID [20]byte) ([2]lm.AssetID, bool, error) {
	pool, ok, err := a.tx.Pool(poolID)
	if err != nil || !ok {
		return [2]lm.AssetID{}, false, err
	}
	return [2]lm.AssetID{pool.AssetA, pool.AssetB}, true, nil
}

// stateLedger has no reserves, so free and total balances coincide.
type stateLedger struct{ tx *state.Tx }

func (l stateLedger) FreeBalance(asset lm.AssetID, who [20]byte) (*uint256.Int, error) {
	return l.tx.Balance(asset, who)
}

func (l stateLedger) TotalBalance(asset lm.AssetID, who [20]byte) (*uint256.Int, error) {
	return l.tx.Balance(asset, who)
}

func (l stateLedger) Transfer(asset lm.AssetID, from, to [20]byte, amount *uint256.Int) error {
	return l.tx.Transfer(asset, from, to, amount)
}

type stateNFT struct{ tx *state.Tx }

func (n stateNFT) Mint(class, instance uint64, owner [20]byte) error {
	return n.tx.MintNFT(class, instance, owner)
}

func (n stateNFT) Burn(class, instance uint64) error {
	return n.tx.BurnNFT(class, instance)
}

func (n stateNFT) OwnerOf(class, instance uint64) ([20]byte, bool, error) {
	return n.tx.NFTOwner(class, instance)
}
