package state

import (
	"fmt"
	"math"

	lm "farmchain/native/liquiditymining"
)

// NextFarmID draws from the sequence shared by global and yield farms.
func (tx *Tx) NextFarmID() (lm.FarmID, error) {
	next, err := tx.nextSequence(farmSequenceKey)
	if err != nil {
		return 0, err
	}
	if next > math.MaxUint32 {
		return 0, fmt.Errorf("state: farm id space exhausted")
	}
	return lm.FarmID(next), nil
}

func (tx *Tx) NextDepositID() (lm.DepositID, error) {
	return tx.nextSequence(depositSequenceKey)
}

// LastBlock returns the highest block height a farming call has run at, or
// zero on a fresh store.
func (tx *Tx) LastBlock() (uint64, error) {
	var height uint64
	if _, err := tx.getRLP(lastBlockKey, &height); err != nil {
		return 0, err
	}
	return height, nil
}

// RecordBlock advances the stored height. A height below the stored one is
// rejected so a restarted node cannot replay periods already paid out.
func (tx *Tx) RecordBlock(height uint64) error {
	last, err := tx.LastBlock()
	if err != nil {
		return err
	}
	if height < last {
		return fmt.Errorf("%w: block %d below recorded %d", lm.ErrClockRewound, height, last)
	}
	if height == last {
		return nil
	}
	return tx.putRLP(lastBlockKey, height)
}

func (tx *Tx) GetGlobalFarm(id lm.FarmID) (*lm.GlobalFarm, bool, error) {
	farm := new(lm.GlobalFarm)
	ok, err := tx.getRLP(globalFarmKey(id), farm)
	if err != nil || !ok {
		return nil, false, err
	}
	return farm, true, nil
}

func (tx *Tx) PutGlobalFarm(farm *lm.GlobalFarm) error {
	if farm == nil {
		return fmt.Errorf("state: nil global farm")
	}
	return tx.putRLP(globalFarmKey(farm.ID), farm)
}

func (tx *Tx) DeleteGlobalFarm(id lm.FarmID) error {
	tx.ov.remove(globalFarmKey(id))
	return nil
}

func (tx *Tx) GetYieldFarm(globalFarmID lm.FarmID, ammPoolID [20]byte, id lm.FarmID) (*lm.YieldFarm, bool, error) {
	farm := new(lm.YieldFarm)
	ok, err := tx.getRLP(yieldFarmKey(globalFarmID, ammPoolID, id), farm)
	if err != nil || !ok {
		return nil, false, err
	}
	return farm, true, nil
}

func (tx *Tx) PutYieldFarm(farm *lm.YieldFarm) error {
	if farm == nil {
		return fmt.Errorf("state: nil yield farm")
	}
	return tx.putRLP(yieldFarmKey(farm.GlobalFarmID, farm.AMMPoolID, farm.ID), farm)
}

func (tx *Tx) DeleteYieldFarm(globalFarmID lm.FarmID, ammPoolID [20]byte, id lm.FarmID) error {
	tx.ov.remove(yieldFarmKey(globalFarmID, ammPoolID, id))
	return nil
}

func (tx *Tx) ActiveYieldFarm(globalFarmID lm.FarmID, ammPoolID [20]byte) (lm.FarmID, bool, error) {
	var id lm.FarmID
	ok, err := tx.getRLP(activeYieldFarmKey(globalFarmID, ammPoolID), &id)
	return id, ok, err
}

func (tx *Tx) SetActiveYieldFarm(globalFarmID lm.FarmID, ammPoolID [20]byte, id lm.FarmID) error {
	return tx.putRLP(activeYieldFarmKey(globalFarmID, ammPoolID), id)
}

func (tx *Tx) ClearActiveYieldFarm(globalFarmID lm.FarmID, ammPoolID [20]byte) error {
	tx.ov.remove(activeYieldFarmKey(globalFarmID, ammPoolID))
	return nil
}

func (tx *Tx) GetDeposit(id lm.DepositID) (*lm.Deposit, bool, error) {
	deposit := new(lm.Deposit)
	ok, err := tx.getRLP(depositKey(id), deposit)
	if err != nil || !ok {
		return nil, false, err
	}
	return deposit, true, nil
}

func (tx *Tx) PutDeposit(deposit *lm.Deposit) error {
	if deposit == nil {
		return fmt.Errorf("state: nil deposit")
	}
	return tx.putRLP(depositKey(deposit.ID), deposit)
}

func (tx *Tx) DeleteDeposit(id lm.DepositID) error {
	tx.ov.remove(depositKey(id))
	return nil
}
