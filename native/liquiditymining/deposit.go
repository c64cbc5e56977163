package liquiditymining

import (
	"fmt"

	"github.com/holiman/uint256"
)

// ClaimResult reports a reward claim.
type ClaimResult struct {
	GlobalFarmID   FarmID
	RewardCurrency AssetID
	Claimed        *uint256.Int
	// Unclaimable is the reward currently withheld by the loyalty curve.
	Unclaimable *uint256.Int
}

// WithdrawResult reports the removal of a farm entry.
type WithdrawResult struct {
	GlobalFarmID     FarmID
	WithdrawnShares  *uint256.Int
	DepositDestroyed bool
}

func (e *Engine) valuedShares(global *GlobalFarm, shares *uint256.Int) (*uint256.Int, error) {
	if shares.Lt(global.MinDeposit) {
		return nil, ErrInvalidDepositAmount
	}
	valued, err := mulFloor(global.PriceAdjustment, shares)
	if err != nil {
		return nil, err
	}
	if valued.IsZero() {
		return nil, ErrZeroValuedShares
	}
	return valued, ensureBalance(valued)
}

// enter adds an entry's shares to an active yield farm and returns the new
// entry. Both farms must already be synced to now.
func (e *Engine) enter(global *GlobalFarm, farm *YieldFarm, shares, valued *uint256.Int, now Period) (*FarmEntry, error) {
	previous, err := farm.sharesZ()
	if err != nil {
		return nil, err
	}
	totalShares, err := checkedAdd(farm.TotalShares, shares)
	if err != nil {
		return nil, err
	}
	totalValued, err := checkedAdd(farm.TotalValuedShares, valued)
	if err != nil {
		return nil, err
	}
	farm.TotalShares = totalShares
	farm.TotalValuedShares = totalValued
	farm.EntriesCount++
	if err := reweigh(global, previous, farm); err != nil {
		return nil, err
	}
	return &FarmEntry{
		GlobalFarmID:              global.ID,
		YieldFarmID:               farm.ID,
		ValuedShares:              valued,
		AccumulatedRPVS:           cloneUint(farm.AccumulatedRPVS),
		AccumulatedClaimedRewards: new(uint256.Int),
		EnteredAt:                 now,
		UpdatedAt:                 now,
	}, nil
}

// DepositLPShares records a new deposit of AMM shares into an active yield
// farm and returns its id. Share custody and the deposit NFT are handled by
// the caller.
func (e *Engine) DepositLPShares(globalFarmID, yieldFarmID FarmID, ammPoolID [20]byte, shares *uint256.Int) (DepositID, error) {
	if err := e.ready(); err != nil {
		return 0, err
	}
	if shares == nil || shares.IsZero() {
		return 0, ErrInvalidDepositAmount
	}
	if err := ensureBalance(shares); err != nil {
		return 0, err
	}
	global, err := e.loadGlobalFarm(globalFarmID)
	if err != nil {
		return 0, err
	}
	farm, err := e.loadYieldFarm(globalFarmID, ammPoolID, yieldFarmID)
	if err != nil {
		return 0, err
	}
	if farm.State != FarmActive {
		return 0, ErrLiquidityMiningCanceled
	}
	valued, err := e.valuedShares(global, shares)
	if err != nil {
		return 0, err
	}
	now, err := e.syncFarms(global, farm)
	if err != nil {
		return 0, err
	}
	entry, err := e.enter(global, farm, shares, valued, now)
	if err != nil {
		return 0, err
	}
	id, err := e.state.NextDepositID()
	if err != nil {
		return 0, err
	}
	deposit := &Deposit{
		ID:        id,
		Shares:    cloneUint(shares),
		AMMPoolID: ammPoolID,
		Entries:   []*FarmEntry{entry},
	}
	if err := e.state.PutDeposit(deposit); err != nil {
		return 0, err
	}
	if err := e.persist(global, farm); err != nil {
		return 0, err
	}
	e.logger.Debug("shares deposited", "global_farm", globalFarmID, "yield_farm", yieldFarmID, "deposit", id, "valued_shares", valued.Dec())
	return id, nil
}

// RedepositLPShares enters an existing deposit into one more yield farm
// serving the same AMM pool. It returns the deposit's share amount.
func (e *Engine) RedepositLPShares(globalFarmID, yieldFarmID FarmID, depositID DepositID) (*uint256.Int, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	deposit, err := e.loadDeposit(depositID)
	if err != nil {
		return nil, err
	}
	if len(deposit.Entries) >= int(e.params.MaxFarmEntriesPerDeposit) {
		return nil, ErrMaxEntriesPerDeposit
	}
	if _, entry := deposit.findEntry(yieldFarmID); entry != nil || deposit.hasGlobalFarm(globalFarmID) {
		return nil, ErrDoubleLock
	}
	global, err := e.loadGlobalFarm(globalFarmID)
	if err != nil {
		return nil, err
	}
	farm, ok, err := e.state.GetYieldFarm(globalFarmID, deposit.AMMPoolID, yieldFarmID)
	if err != nil {
		return nil, err
	}
	if !ok || farm == nil {
		id, active, err := e.state.ActiveYieldFarm(globalFarmID, deposit.AMMPoolID)
		if err != nil {
			return nil, err
		}
		if active && id != yieldFarmID {
			return nil, ErrDepositAMMPoolMismatch
		}
		return nil, ErrYieldFarmNotFound
	}
	if farm.State != FarmActive {
		return nil, ErrLiquidityMiningCanceled
	}
	valued, err := e.valuedShares(global, deposit.Shares)
	if err != nil {
		return nil, err
	}
	now, err := e.syncFarms(global, farm)
	if err != nil {
		return nil, err
	}
	entry, err := e.enter(global, farm, deposit.Shares, valued, now)
	if err != nil {
		return nil, err
	}
	deposit.Entries = append(deposit.Entries, entry)
	if err := e.state.PutDeposit(deposit); err != nil {
		return nil, err
	}
	if err := e.persist(global, farm); err != nil {
		return nil, err
	}
	return cloneUint(deposit.Shares), nil
}

// ClaimRewards pays the loyalty-weighted reward accrued by the deposit's
// entry in a yield farm to who. With failOnDoubleClaim set this is the user
// facing claim: it refuses stopped farms and a second claim in one period.
// Without it a repeated claim in the same period simply pays nothing.
func (e *Engine) ClaimRewards(who [20]byte, depositID DepositID, yieldFarmID FarmID, failOnDoubleClaim bool) (ClaimResult, error) {
	if err := e.ready(); err != nil {
		return ClaimResult{}, err
	}
	deposit, err := e.loadDeposit(depositID)
	if err != nil {
		return ClaimResult{}, err
	}
	_, entry := deposit.findEntry(yieldFarmID)
	if entry == nil {
		return ClaimResult{}, ErrYieldFarmEntryNotFound
	}
	global, err := e.loadGlobalFarm(entry.GlobalFarmID)
	if err != nil {
		return ClaimResult{}, err
	}
	farm, err := e.loadYieldFarm(entry.GlobalFarmID, deposit.AMMPoolID, yieldFarmID)
	if err != nil {
		return ClaimResult{}, err
	}
	if farm.State == FarmDeleted {
		return ClaimResult{}, ErrYieldFarmNotFound
	}
	if failOnDoubleClaim && farm.State == FarmStopped {
		return ClaimResult{}, ErrLiquidityMiningCanceled
	}
	now, err := e.syncFarms(global, farm)
	if err != nil {
		return ClaimResult{}, err
	}
	if failOnDoubleClaim && entry.UpdatedAt == now {
		return ClaimResult{}, ErrDoubleClaimInPeriod
	}
	periods, err := loyaltyPeriods(entry, farm, now)
	if err != nil {
		return ClaimResult{}, err
	}
	loyalty, err := LoyaltyMultiplier(periods, farm.LoyaltyCurve)
	if err != nil {
		return ClaimResult{}, err
	}
	payable, unclaimable, err := userReward(entry.AccumulatedRPVS, farm.AccumulatedRPVS, entry.ValuedShares, entry.AccumulatedClaimedRewards, loyalty)
	if err != nil {
		return ClaimResult{}, err
	}
	if entry.UpdatedAt == now {
		payable = new(uint256.Int)
	}
	payable = minUint(payable, farm.LeftToDistribute)
	if !payable.IsZero() {
		if err := e.state.Transfer(global.RewardCurrency, FarmAccount(global.ID), who, payable); err != nil {
			return ClaimResult{}, err
		}
		claimed, err := checkedAdd(entry.AccumulatedClaimedRewards, payable)
		if err != nil {
			return ClaimResult{}, err
		}
		paid, err := checkedAdd(global.AccumulatedPaidRewards, payable)
		if err != nil {
			return ClaimResult{}, err
		}
		entry.AccumulatedClaimedRewards = claimed
		global.AccumulatedPaidRewards = paid
		farm.LeftToDistribute = new(uint256.Int).Sub(farm.LeftToDistribute, payable)
	}
	entry.UpdatedAt = now
	if err := e.state.PutDeposit(deposit); err != nil {
		return ClaimResult{}, err
	}
	if err := e.persist(global, farm); err != nil {
		return ClaimResult{}, err
	}
	e.logger.Debug("rewards claimed", "deposit", depositID, "yield_farm", yieldFarmID, "claimed", payable.Dec(), "unclaimable", unclaimable.Dec())
	return ClaimResult{
		GlobalFarmID:   global.ID,
		RewardCurrency: global.RewardCurrency,
		Claimed:        payable,
		Unclaimable:    unclaimable,
	}, nil
}

// loyaltyPeriods counts the periods an entry has been farming. A stopped farm
// stops the count at the period it was stopped in.
func loyaltyPeriods(entry *FarmEntry, farm *YieldFarm, now Period) (Period, error) {
	end := now
	if farm.State == FarmStopped && farm.UpdatedAt < end {
		end = farm.UpdatedAt
	}
	if end < entry.EnteredAt || now < entry.UpdatedAt {
		return 0, fmt.Errorf("%w: entry of yield farm %d entered at period %d", ErrClockRewound, farm.ID, entry.EnteredAt)
	}
	return end - entry.EnteredAt, nil
}

// WithdrawLPShares removes the deposit's entry from a yield farm.
// unclaimable is the loyalty-withheld reward reported by the preceding claim;
// it goes back to the global budget. Entries of deleted farms return their
// whole unpaid reward instead. The deposit is removed with its last entry.
func (e *Engine) WithdrawLPShares(depositID DepositID, yieldFarmID FarmID, unclaimable *uint256.Int) (WithdrawResult, error) {
	if err := e.ready(); err != nil {
		return WithdrawResult{}, err
	}
	if unclaimable == nil {
		unclaimable = new(uint256.Int)
	}
	deposit, err := e.loadDeposit(depositID)
	if err != nil {
		return WithdrawResult{}, err
	}
	index, entry := deposit.findEntry(yieldFarmID)
	if entry == nil {
		return WithdrawResult{}, ErrYieldFarmEntryNotFound
	}
	global, err := e.loadGlobalFarm(entry.GlobalFarmID)
	if err != nil {
		return WithdrawResult{}, err
	}
	farm, err := e.loadYieldFarm(entry.GlobalFarmID, deposit.AMMPoolID, yieldFarmID)
	if err != nil {
		return WithdrawResult{}, err
	}

	returned := unclaimable
	if farm.State == FarmDeleted {
		owed, _, err := userReward(entry.AccumulatedRPVS, farm.AccumulatedRPVS, entry.ValuedShares, entry.AccumulatedClaimedRewards, FixedOne())
		if err != nil {
			return WithdrawResult{}, err
		}
		returned = owed
	} else if _, err := e.syncFarms(global, farm); err != nil {
		return WithdrawResult{}, err
	}
	returned = minUint(returned, farm.LeftToDistribute)
	farm.LeftToDistribute = new(uint256.Int).Sub(farm.LeftToDistribute, returned)
	remaining, err := checkedAdd(global.Remaining, returned)
	if err != nil {
		return WithdrawResult{}, err
	}
	global.Remaining = remaining

	previous, err := farm.sharesZ()
	if err != nil {
		return WithdrawResult{}, err
	}
	farm.TotalShares = saturatingSub(farm.TotalShares, deposit.Shares)
	farm.TotalValuedShares = saturatingSub(farm.TotalValuedShares, entry.ValuedShares)
	if farm.EntriesCount > 0 {
		farm.EntriesCount--
	}
	if farm.State == FarmActive {
		if err := reweigh(global, previous, farm); err != nil {
			return WithdrawResult{}, err
		}
	}

	if farm.State == FarmDeleted && farm.EntriesCount == 0 {
		if err := e.purgeYieldFarm(global, farm); err != nil {
			return WithdrawResult{}, err
		}
		farm = nil
	}
	if err := e.persist(global, farm); err != nil {
		return WithdrawResult{}, err
	}

	deposit.Entries = append(deposit.Entries[:index], deposit.Entries[index+1:]...)
	destroyed := len(deposit.Entries) == 0
	if destroyed {
		err = e.state.DeleteDeposit(depositID)
	} else {
		err = e.state.PutDeposit(deposit)
	}
	if err != nil {
		return WithdrawResult{}, err
	}
	e.logger.Debug("shares withdrawn", "deposit", depositID, "yield_farm", yieldFarmID, "returned", returned.Dec(), "deposit_destroyed", destroyed)
	return WithdrawResult{
		GlobalFarmID:     entry.GlobalFarmID,
		WithdrawnShares:  cloneUint(deposit.Shares),
		DepositDestroyed: destroyed,
	}, nil
}

// GetGlobalFarmID resolves the global farm of a deposit's entry.
func (e *Engine) GetGlobalFarmID(depositID DepositID, yieldFarmID FarmID) (FarmID, bool) {
	if e == nil || e.state == nil {
		return 0, false
	}
	deposit, err := e.loadDeposit(depositID)
	if err != nil {
		return 0, false
	}
	_, entry := deposit.findEntry(yieldFarmID)
	if entry == nil {
		return 0, false
	}
	return entry.GlobalFarmID, true
}

// Deposit returns a copy of the stored deposit.
func (e *Engine) Deposit(id DepositID) (*Deposit, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	deposit, err := e.loadDeposit(id)
	if err != nil {
		return nil, err
	}
	return deposit.Clone(), nil
}
