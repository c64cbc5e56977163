package xykmining

import (
	"farmchain/core/state"
	lm "farmchain/native/liquiditymining"
)

// read binds the engine to the committed state for the duration of fn.
func (m *Module) read(fn func(c *callContext) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.manager.Read(func(tx *state.Tx) error {
		m.engine.SetState(tx)
		defer m.engine.SetState(nil)
		return fn(&callContext{tx: tx, amm: stateAMM{tx: tx}, ledger: stateLedger{tx: tx}, nft: stateNFT{tx: tx}})
	})
}

// GlobalFarm returns the committed global farm record.
func (m *Module) GlobalFarm(id lm.FarmID) (*lm.GlobalFarm, error) {
	var farm *lm.GlobalFarm
	err := m.read(func(*callContext) error {
		var err error
		farm, err = m.engine.GlobalFarm(id)
		return err
	})
	return farm, err
}

// YieldFarm returns the committed yield farm serving the pool of pair.
func (m *Module) YieldFarm(globalFarmID lm.FarmID, pair AssetPair, id lm.FarmID) (*lm.YieldFarm, error) {
	var farm *lm.YieldFarm
	err := m.read(func(c *callContext) error {
		var err error
		farm, err = m.engine.YieldFarm(globalFarmID, c.amm.PoolID(pair), id)
		return err
	})
	return farm, err
}

// Deposit returns the committed deposit together with the holder of its NFT.
func (m *Module) Deposit(id lm.DepositID) (*lm.Deposit, [20]byte, error) {
	var (
		deposit *lm.Deposit
		owner   [20]byte
	)
	err := m.read(func(c *callContext) error {
		var err error
		if deposit, err = m.engine.Deposit(id); err != nil {
			return err
		}
		owner, _, err = c.nft.OwnerOf(m.cfg.NFTClassID, id)
		return err
	})
	return deposit, owner, err
}

// Digest returns the hash of the committed state.
func (m *Module) Digest() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.manager.Digest()
}
