package liquiditymining

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestCreateYieldFarmChecks(t *testing.T) {
	f := newFixture(t)
	id := f.createGlobalFarm(t, 500_000, Percent(1))
	pair := [2]AssetID{testAssetA, testAssetB}

	_, err := f.engine.CreateYieldFarm(f.alice, id, FixedOne(), nil, f.pool, pair)
	require.ErrorIs(t, err, ErrForbidden)
	_, err = f.engine.CreateYieldFarm(f.owner, id, new(uint256.Int), nil, f.pool, pair)
	require.ErrorIs(t, err, ErrInvalidMultiplier)
	_, err = f.engine.CreateYieldFarm(f.owner, id, FixedOne(), &LoyaltyCurve{InitialRewardPercentage: FixedOne(), ScaleCoef: 1}, f.pool, pair)
	require.ErrorIs(t, err, ErrInvalidInitialRewardPercentage)
	_, err = f.engine.CreateYieldFarm(f.owner, id, FixedOne(), &LoyaltyCurve{InitialRewardPercentage: Percent(10)}, f.pool, pair)
	require.ErrorIs(t, err, ErrInvalidLoyaltyScale)
	_, err = f.engine.CreateYieldFarm(f.owner, id, FixedOne(), nil, f.pool, [2]AssetID{testAssetB, 7})
	require.ErrorIs(t, err, ErrMissingIncentivizedAsset)
	_, err = f.engine.CreateYieldFarm(f.owner, 42, FixedOne(), nil, f.pool, pair)
	require.ErrorIs(t, err, ErrGlobalFarmNotFound)

	yieldID := f.createYieldFarm(t, id, DefaultLoyaltyCurve())
	_, err = f.engine.CreateYieldFarm(f.owner, id, FixedOne(), nil, f.pool, pair)
	require.ErrorIs(t, err, ErrYieldFarmAlreadyExists)

	global := f.global(t, id)
	require.Equal(t, uint32(1), global.LiveYieldFarmsCount)
	require.Equal(t, uint32(1), global.TotalYieldFarmsCount)
	farm := f.yield(t, id, yieldID)
	require.Equal(t, FarmActive, farm.State)
	require.Equal(t, DefaultLoyaltyCurve(), farm.LoyaltyCurve)
}

func TestStopYieldFarmTwiceFails(t *testing.T) {
	f := newFixture(t)
	id := f.createGlobalFarm(t, 500_000, Percent(1))
	yieldID := f.createYieldFarm(t, id, nil)
	f.deposit(t, id, yieldID, 1_000)
	f.advancePeriods(2)

	stopped, err := f.engine.StopYieldFarm(f.owner, id, f.pool)
	require.NoError(t, err)
	require.Equal(t, yieldID, stopped)

	globalBefore := f.global(t, id)
	farmBefore := f.yield(t, id, yieldID)
	require.True(t, globalBefore.TotalSharesZ.IsZero())
	require.True(t, farmBefore.Multiplier.IsZero())

	f.advancePeriods(1)
	_, err = f.engine.StopYieldFarm(f.owner, id, f.pool)
	require.ErrorIs(t, err, ErrLiquidityMiningCanceled)
	require.Equal(t, globalBefore, f.global(t, id))
	require.Equal(t, farmBefore, f.yield(t, id, yieldID))
}

func TestStoppedFarmRejectsDepositsAndClaims(t *testing.T) {
	f := newFixture(t)
	id := f.createGlobalFarm(t, 500_000, Percent(1))
	yieldID := f.createYieldFarm(t, id, nil)
	depositID := f.deposit(t, id, yieldID, 1_000)
	f.advancePeriods(1)
	_, err := f.engine.StopYieldFarm(f.owner, id, f.pool)
	require.NoError(t, err)

	_, err = f.engine.DepositLPShares(id, yieldID, f.pool, uint256.NewInt(10))
	require.ErrorIs(t, err, ErrLiquidityMiningCanceled)
	_, err = f.engine.ClaimRewards(f.alice, depositID, yieldID, true)
	require.ErrorIs(t, err, ErrLiquidityMiningCanceled)
	_, err = f.engine.UpdateYieldFarmMultiplier(f.owner, id, f.pool, FixedFromInt(2))
	require.ErrorIs(t, err, ErrLiquidityMiningCanceled)
}

func TestStoppedFarmFreezesLoyalty(t *testing.T) {
	withdrawAfterStop := func(periodsAfterStop uint64) uint64 {
		f := newFixture(t)
		id := f.createGlobalFarm(t, 500_000, Percent(1))
		yieldID := f.createYieldFarm(t, id, DefaultLoyaltyCurve())
		depositID := f.deposit(t, id, yieldID, 1_000)
		f.advancePeriods(3)
		_, err := f.engine.StopYieldFarm(f.owner, id, f.pool)
		require.NoError(t, err)
		f.advancePeriods(periodsAfterStop)

		claim, res := f.withdraw(t, f.alice, depositID, yieldID)
		require.True(t, res.DepositDestroyed)
		requireConserved(t, f, id)
		return claim.Claimed.Uint64()
	}

	loyalty, err := LoyaltyMultiplier(3, DefaultLoyaltyCurve())
	require.NoError(t, err)
	// three periods of 1% of 500_000 reached the farm before the stop
	expected, err := mulFloor(loyalty, uint256.NewInt(15_000))
	require.NoError(t, err)

	require.Equal(t, expected.Uint64(), withdrawAfterStop(1))
	require.Equal(t, expected.Uint64(), withdrawAfterStop(100))
}

func TestResumeYieldFarmDoesNotBackfill(t *testing.T) {
	f := newFixture(t)
	id := f.createGlobalFarm(t, 500_000, Percent(1))
	yieldID := f.createYieldFarm(t, id, nil)
	depositID := f.deposit(t, id, yieldID, 1_000)
	f.advancePeriods(1)

	_, err := f.engine.StopYieldFarm(f.owner, id, f.pool)
	require.NoError(t, err)
	require.ErrorIs(t, f.engine.ResumeYieldFarm(f.owner, id, yieldID+1, f.pool, FixedOne()), ErrYieldFarmNotFound)

	f.advancePeriods(5)
	require.NoError(t, f.engine.ResumeYieldFarm(f.owner, id, yieldID, f.pool, FixedOne()))
	require.ErrorIs(t, f.engine.ResumeYieldFarm(f.owner, id, yieldID, f.pool, FixedOne()), ErrLiquidityMiningIsActive)

	global := f.global(t, id)
	require.Equal(t, uint64(1_000), global.TotalSharesZ.Uint64())
	// only the single period before the stop left the budget
	require.Equal(t, uint64(495_000), global.Remaining.Uint64())

	f.advancePeriods(1)
	claim, err := f.engine.ClaimRewards(f.alice, depositID, yieldID, true)
	require.NoError(t, err)
	// one period before the stop plus one after the resume
	require.Equal(t, uint64(5_000+4_950), claim.Claimed.Uint64())
}

func TestUpdateYieldFarmMultiplier(t *testing.T) {
	f := newFixture(t)
	id := f.createGlobalFarm(t, 500_000, Percent(1))
	yieldID := f.createYieldFarm(t, id, nil)
	f.deposit(t, id, yieldID, 1_000)

	_, err := f.engine.UpdateYieldFarmMultiplier(f.alice, id, f.pool, FixedFromInt(3))
	require.ErrorIs(t, err, ErrForbidden)
	_, err = f.engine.UpdateYieldFarmMultiplier(f.owner, id, f.pool, new(uint256.Int))
	require.ErrorIs(t, err, ErrInvalidMultiplier)

	updated, err := f.engine.UpdateYieldFarmMultiplier(f.owner, id, f.pool, FixedFromInt(3))
	require.NoError(t, err)
	require.Equal(t, yieldID, updated)
	require.Equal(t, uint64(3_000), f.global(t, id).TotalSharesZ.Uint64())
	require.Equal(t, FixedFromInt(3), f.yield(t, id, yieldID).Multiplier)
}

func TestDestroyYieldFarmLifecycle(t *testing.T) {
	f := newFixture(t)
	id := f.createGlobalFarm(t, 500_000, Percent(1))
	yieldID := f.createYieldFarm(t, id, nil)
	depositID := f.deposit(t, id, yieldID, 1_000)
	f.advancePeriods(1)

	require.ErrorIs(t, f.engine.DestroyYieldFarm(f.owner, id, yieldID, f.pool), ErrLiquidityMiningIsNotStopped)
	_, err := f.engine.StopYieldFarm(f.owner, id, f.pool)
	require.NoError(t, err)
	require.ErrorIs(t, f.engine.DestroyYieldFarm(f.alice, id, yieldID, f.pool), ErrForbidden)
	require.NoError(t, f.engine.DestroyYieldFarm(f.owner, id, yieldID, f.pool))

	farm := f.yield(t, id, yieldID)
	require.Equal(t, FarmDeleted, farm.State)
	require.False(t, f.engine.IsYieldFarmClaimable(id, yieldID, f.pool))
	require.Equal(t, uint32(1), f.global(t, id).LiveYieldFarmsCount)

	// the pool can be incentivized again while the deleted farm drains
	newYieldID := f.createYieldFarm(t, id, nil)
	require.NotEqual(t, yieldID, newYieldID)
	global := f.global(t, id)
	require.Equal(t, uint32(2), global.LiveYieldFarmsCount)
	require.Equal(t, uint32(2), global.TotalYieldFarmsCount)

	_, err = f.engine.ClaimRewards(f.alice, depositID, yieldID, true)
	require.ErrorIs(t, err, ErrYieldFarmNotFound)

	_, res := f.withdraw(t, f.alice, depositID, yieldID)
	require.True(t, res.DepositDestroyed)
	_, err = f.engine.YieldFarm(id, f.pool, yieldID)
	require.ErrorIs(t, err, ErrYieldFarmNotFound)

	global = f.global(t, id)
	require.Equal(t, uint32(1), global.LiveYieldFarmsCount)
	// the unpaid reward of the deleted farm went back to the budget
	require.Equal(t, uint64(500_000), global.Remaining.Uint64())
	require.True(t, global.PendingRewards.IsZero())
}

func TestDestroyEmptyYieldFarmPurgesImmediately(t *testing.T) {
	f := newFixture(t)
	id := f.createGlobalFarm(t, 500_000, Percent(1))
	yieldID := f.createYieldFarm(t, id, nil)
	_, err := f.engine.StopYieldFarm(f.owner, id, f.pool)
	require.NoError(t, err)
	require.NoError(t, f.engine.DestroyYieldFarm(f.owner, id, yieldID, f.pool))

	_, err = f.engine.YieldFarm(id, f.pool, yieldID)
	require.ErrorIs(t, err, ErrYieldFarmNotFound)
	global := f.global(t, id)
	require.Zero(t, global.LiveYieldFarmsCount)
	require.Equal(t, uint32(1), global.TotalYieldFarmsCount)
	require.ErrorIs(t, f.engine.DestroyYieldFarm(f.owner, id, yieldID, f.pool), ErrYieldFarmNotFound)
}
