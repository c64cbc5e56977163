package liquiditymining

import (
	"github.com/holiman/uint256"
)

func validateMultiplier(multiplier *uint256.Int) error {
	if multiplier == nil || multiplier.IsZero() {
		return ErrInvalidMultiplier
	}
	return nil
}

func validateLoyaltyCurve(curve *LoyaltyCurve) error {
	if curve == nil {
		return nil
	}
	if curve.InitialRewardPercentage == nil || !curve.InitialRewardPercentage.Lt(accuracy) {
		return ErrInvalidInitialRewardPercentage
	}
	if curve.ScaleCoef == 0 {
		return ErrInvalidLoyaltyScale
	}
	return nil
}

// CreateYieldFarm opens a yield farm for an AMM pool whose pair includes the
// global farm's incentivized asset. Only one non-deleted yield farm may serve
// a pool within a global farm.
func (e *Engine) CreateYieldFarm(who [20]byte, globalFarmID FarmID, multiplier *uint256.Int, curve *LoyaltyCurve, ammPoolID [20]byte, assets [2]AssetID) (FarmID, error) {
	if err := e.ready(); err != nil {
		return 0, err
	}
	if err := validateMultiplier(multiplier); err != nil {
		return 0, err
	}
	if err := validateLoyaltyCurve(curve); err != nil {
		return 0, err
	}
	global, err := e.loadOwnedGlobalFarm(who, globalFarmID)
	if err != nil {
		return 0, err
	}
	if _, exists, err := e.state.ActiveYieldFarm(globalFarmID, ammPoolID); err != nil {
		return 0, err
	} else if exists {
		return 0, ErrYieldFarmAlreadyExists
	}
	if assets[0] != global.IncentivizedAsset && assets[1] != global.IncentivizedAsset {
		return 0, ErrMissingIncentivizedAsset
	}
	now, err := e.syncFarms(global, nil)
	if err != nil {
		return 0, err
	}
	id, err := e.state.NextFarmID()
	if err != nil {
		return 0, err
	}
	farm := &YieldFarm{
		ID:                id,
		GlobalFarmID:      globalFarmID,
		AMMPoolID:         ammPoolID,
		UpdatedAt:         now,
		TotalShares:       new(uint256.Int),
		TotalValuedShares: new(uint256.Int),
		AccumulatedRPVS:   new(uint256.Int),
		AccumulatedRPZ:    cloneUint(global.AccumulatedRPZ),
		LoyaltyCurve:      curve.Clone(),
		Multiplier:        cloneUint(multiplier),
		State:             FarmActive,
		LeftToDistribute:  new(uint256.Int),
	}
	global.LiveYieldFarmsCount++
	global.TotalYieldFarmsCount++
	if err := e.state.SetActiveYieldFarm(globalFarmID, ammPoolID, id); err != nil {
		return 0, err
	}
	if err := e.persist(global, farm); err != nil {
		return 0, err
	}
	e.logger.Debug("yield farm created", "global_farm", globalFarmID, "yield_farm", id)
	return id, nil
}

// UpdateYieldFarmMultiplier settles accrued rewards at the old weight and
// then applies the new multiplier.
func (e *Engine) UpdateYieldFarmMultiplier(who [20]byte, globalFarmID FarmID, ammPoolID [20]byte, multiplier *uint256.Int) (FarmID, error) {
	if err := e.ready(); err != nil {
		return 0, err
	}
	if err := validateMultiplier(multiplier); err != nil {
		return 0, err
	}
	global, err := e.loadOwnedGlobalFarm(who, globalFarmID)
	if err != nil {
		return 0, err
	}
	farm, err := e.loadActiveYieldFarm(globalFarmID, ammPoolID)
	if err != nil {
		return 0, err
	}
	if farm.State != FarmActive {
		return 0, ErrLiquidityMiningCanceled
	}
	if _, err := e.syncFarms(global, farm); err != nil {
		return 0, err
	}
	previous, err := farm.sharesZ()
	if err != nil {
		return 0, err
	}
	farm.Multiplier = cloneUint(multiplier)
	if err := reweigh(global, previous, farm); err != nil {
		return 0, err
	}
	if err := e.persist(global, farm); err != nil {
		return 0, err
	}
	return farm.ID, nil
}

// StopYieldFarm freezes the yield farm's accumulator and withdraws its weight
// from the global farm. Deposits stay withdrawable.
func (e *Engine) StopYieldFarm(who [20]byte, globalFarmID FarmID, ammPoolID [20]byte) (FarmID, error) {
	if err := e.ready(); err != nil {
		return 0, err
	}
	global, err := e.loadOwnedGlobalFarm(who, globalFarmID)
	if err != nil {
		return 0, err
	}
	farm, err := e.loadActiveYieldFarm(globalFarmID, ammPoolID)
	if err != nil {
		return 0, err
	}
	if farm.State != FarmActive {
		return 0, ErrLiquidityMiningCanceled
	}
	if _, err := e.syncFarms(global, farm); err != nil {
		return 0, err
	}
	previous, err := farm.sharesZ()
	if err != nil {
		return 0, err
	}
	farm.Multiplier = new(uint256.Int)
	farm.State = FarmStopped
	if err := reweigh(global, previous, farm); err != nil {
		return 0, err
	}
	if err := e.persist(global, farm); err != nil {
		return 0, err
	}
	e.logger.Debug("yield farm stopped", "global_farm", globalFarmID, "yield_farm", farm.ID)
	return farm.ID, nil
}

// ResumeYieldFarm reactivates a stopped yield farm. Rewards emitted while it
// was stopped are not backfilled.
func (e *Engine) ResumeYieldFarm(who [20]byte, globalFarmID, yieldFarmID FarmID, ammPoolID [20]byte, multiplier *uint256.Int) error {
	if err := e.ready(); err != nil {
		return err
	}
	if err := validateMultiplier(multiplier); err != nil {
		return err
	}
	global, err := e.loadOwnedGlobalFarm(who, globalFarmID)
	if err != nil {
		return err
	}
	farm, err := e.loadActiveYieldFarm(globalFarmID, ammPoolID)
	if err != nil {
		return err
	}
	if farm.ID != yieldFarmID {
		return ErrYieldFarmNotFound
	}
	if farm.State == FarmActive {
		return ErrLiquidityMiningIsActive
	}
	now, err := e.syncFarms(global, nil)
	if err != nil {
		return err
	}
	previous, err := farm.sharesZ()
	if err != nil {
		return err
	}
	farm.AccumulatedRPZ = cloneUint(global.AccumulatedRPZ)
	farm.UpdatedAt = now
	farm.Multiplier = cloneUint(multiplier)
	farm.State = FarmActive
	if err := reweigh(global, previous, farm); err != nil {
		return err
	}
	return e.persist(global, farm)
}

// DestroyYieldFarm marks a stopped yield farm deleted. The record lingers
// until its last entry is withdrawn; an empty farm is purged immediately.
func (e *Engine) DestroyYieldFarm(who [20]byte, globalFarmID, yieldFarmID FarmID, ammPoolID [20]byte) error {
	if err := e.ready(); err != nil {
		return err
	}
	global, err := e.loadOwnedGlobalFarm(who, globalFarmID)
	if err != nil {
		return err
	}
	farm, err := e.loadActiveYieldFarm(globalFarmID, ammPoolID)
	if err != nil {
		return err
	}
	if farm.ID != yieldFarmID {
		return ErrYieldFarmNotFound
	}
	if farm.State != FarmStopped {
		return ErrLiquidityMiningIsNotStopped
	}
	farm.State = FarmDeleted
	if err := e.state.ClearActiveYieldFarm(globalFarmID, ammPoolID); err != nil {
		return err
	}
	if farm.EntriesCount == 0 {
		if err := e.purgeYieldFarm(global, farm); err != nil {
			return err
		}
		return e.state.PutGlobalFarm(global)
	}
	e.logger.Debug("yield farm deleted", "global_farm", globalFarmID, "yield_farm", farm.ID, "entries", farm.EntriesCount)
	return e.persist(global, farm)
}

// purgeYieldFarm drops a deleted, empty yield farm and returns whatever it
// still holds to the global budget.
func (e *Engine) purgeYieldFarm(global *GlobalFarm, farm *YieldFarm) error {
	remaining, err := checkedAdd(global.Remaining, farm.LeftToDistribute)
	if err != nil {
		return err
	}
	global.Remaining = remaining
	if global.LiveYieldFarmsCount > 0 {
		global.LiveYieldFarmsCount--
	}
	if err := e.state.DeleteYieldFarm(global.ID, farm.AMMPoolID, farm.ID); err != nil {
		return err
	}
	e.logger.Debug("yield farm purged", "global_farm", global.ID, "yield_farm", farm.ID, "returned", farm.LeftToDistribute.Dec())
	return nil
}

// YieldFarm returns a copy of the stored yield farm.
func (e *Engine) YieldFarm(globalFarmID FarmID, ammPoolID [20]byte, id FarmID) (*YieldFarm, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	farm, err := e.loadYieldFarm(globalFarmID, ammPoolID, id)
	if err != nil {
		return nil, err
	}
	return farm.Clone(), nil
}

// IsYieldFarmClaimable reports whether entries of the yield farm may still
// collect rewards.
func (e *Engine) IsYieldFarmClaimable(globalFarmID, yieldFarmID FarmID, ammPoolID [20]byte) bool {
	if e == nil || e.state == nil {
		return false
	}
	farm, err := e.loadYieldFarm(globalFarmID, ammPoolID, yieldFarmID)
	if err != nil {
		return false
	}
	return farm.State != FarmDeleted
}
