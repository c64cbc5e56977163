package liquiditymining

import (
	"github.com/holiman/uint256"
)

// GlobalFarmParams describes a new global farm.
type GlobalFarmParams struct {
	TotalRewards           *uint256.Int
	PlannedYieldingPeriods Period
	BlocksPerPeriod        uint64
	IncentivizedAsset      AssetID
	RewardCurrency         AssetID
	Owner                  [20]byte
	// YieldPerPeriod and PriceAdjustment are fixed-point.
	YieldPerPeriod  *uint256.Int
	MinDeposit      *uint256.Int
	PriceAdjustment *uint256.Int
}

func (e *Engine) validateGlobalFarmParams(p GlobalFarmParams) error {
	if p.TotalRewards == nil || p.TotalRewards.Lt(e.params.MinTotalFarmRewards) {
		return ErrInvalidTotalRewards
	}
	if err := ensureBalance(p.TotalRewards); err != nil {
		return err
	}
	if p.PlannedYieldingPeriods < e.params.MinPlannedYieldingPeriods {
		return ErrInvalidPlannedYieldingPeriods
	}
	if p.BlocksPerPeriod == 0 {
		return ErrInvalidBlocksPerPeriod
	}
	if p.YieldPerPeriod == nil || p.YieldPerPeriod.IsZero() {
		return ErrInvalidYieldPerPeriod
	}
	if p.MinDeposit == nil || p.MinDeposit.IsZero() {
		return ErrInvalidMinDeposit
	}
	if p.PriceAdjustment == nil || p.PriceAdjustment.IsZero() {
		return ErrInvalidPriceAdjustment
	}
	return nil
}

// CreateGlobalFarm registers a global farm and moves its whole budget from
// the owner into the farm's custody account. It returns the farm id and the
// per-period emission cap.
func (e *Engine) CreateGlobalFarm(p GlobalFarmParams) (FarmID, *uint256.Int, error) {
	if err := e.ready(); err != nil {
		return 0, nil, err
	}
	if err := e.validateGlobalFarmParams(p); err != nil {
		return 0, nil, err
	}
	now, err := e.clockPeriod(p.BlocksPerPeriod)
	if err != nil {
		return 0, nil, err
	}
	id, err := e.state.NextFarmID()
	if err != nil {
		return 0, nil, err
	}
	maxReward := saturatingMulFloor(p.YieldPerPeriod, p.TotalRewards)
	farm := &GlobalFarm{
		ID:                     id,
		Owner:                  p.Owner,
		UpdatedAt:              now,
		TotalSharesZ:           new(uint256.Int),
		AccumulatedRPZ:         new(uint256.Int),
		RewardCurrency:         p.RewardCurrency,
		TotalRewards:           cloneUint(p.TotalRewards),
		Remaining:              cloneUint(p.TotalRewards),
		PendingRewards:         new(uint256.Int),
		AccumulatedPaidRewards: new(uint256.Int),
		YieldPerPeriod:         cloneUint(p.YieldPerPeriod),
		PlannedYieldingPeriods: p.PlannedYieldingPeriods,
		BlocksPerPeriod:        p.BlocksPerPeriod,
		IncentivizedAsset:      p.IncentivizedAsset,
		MaxRewardPerPeriod:     maxReward,
		MinDeposit:             cloneUint(p.MinDeposit),
		PriceAdjustment:        cloneUint(p.PriceAdjustment),
	}
	if err := e.state.Transfer(p.RewardCurrency, p.Owner, FarmAccount(id), p.TotalRewards); err != nil {
		return 0, nil, err
	}
	if err := e.state.PutGlobalFarm(farm); err != nil {
		return 0, nil, err
	}
	e.logger.Debug("global farm created", "global_farm", id, "total_rewards", p.TotalRewards.Dec())
	return id, cloneUint(maxReward), nil
}

// DestroyResult reports the budget returned to the owner of a destroyed
// global farm.
type DestroyResult struct {
	RewardCurrency AssetID
	Undistributed  *uint256.Int
	Owner          [20]byte
}

// DestroyGlobalFarm removes an empty global farm and refunds everything its
// custody account still holds: the unemitted budget plus rounding dust.
func (e *Engine) DestroyGlobalFarm(who [20]byte, id FarmID) (DestroyResult, error) {
	if err := e.ready(); err != nil {
		return DestroyResult{}, err
	}
	farm, err := e.loadOwnedGlobalFarm(who, id)
	if err != nil {
		return DestroyResult{}, err
	}
	if farm.LiveYieldFarmsCount > 0 {
		return DestroyResult{}, ErrGlobalFarmIsNotEmpty
	}
	undistributed, err := checkedAdd(farm.Remaining, farm.PendingRewards)
	if err != nil {
		return DestroyResult{}, err
	}
	if !undistributed.IsZero() {
		if err := e.state.Transfer(farm.RewardCurrency, FarmAccount(id), farm.Owner, undistributed); err != nil {
			return DestroyResult{}, err
		}
	}
	if err := e.state.DeleteGlobalFarm(id); err != nil {
		return DestroyResult{}, err
	}
	e.logger.Debug("global farm destroyed", "global_farm", id, "undistributed", undistributed.Dec())
	return DestroyResult{RewardCurrency: farm.RewardCurrency, Undistributed: undistributed, Owner: farm.Owner}, nil
}

// GlobalFarm returns a copy of the stored global farm.
func (e *Engine) GlobalFarm(id FarmID) (*GlobalFarm, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	farm, err := e.loadGlobalFarm(id)
	if err != nil {
		return nil, err
	}
	return farm.Clone(), nil
}

func (e *Engine) clockPeriod(blocksPerPeriod uint64) (Period, error) {
	return e.currentPeriod(&GlobalFarm{BlocksPerPeriod: blocksPerPeriod})
}
