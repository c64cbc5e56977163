package liquiditymining

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"farmchain/core/clock"
)

// requireConserved checks that the farm's custody balance covers exactly the
// unpaid part of its budget, summed over every yield farm record it still has.
func requireConserved(t *testing.T, f *fixture, globalFarmID FarmID) {
	t.Helper()
	global := f.global(t, globalFarmID)
	held := new(uint256.Int).Add(global.Remaining, global.PendingRewards)
	for key, farm := range f.state.yields {
		if key.global == globalFarmID {
			held.Add(held, farm.LeftToDistribute)
		}
	}
	custody := f.state.balance(global.RewardCurrency, FarmAccount(globalFarmID))
	require.Equal(t, custody.Dec(), held.Dec(), "custody vs bookkeeping")
	require.Equal(t, global.TotalRewards.Dec(), new(uint256.Int).Add(custody, global.AccumulatedPaidRewards).Dec(), "paid plus held vs budget")
}

func TestSinglePeriodRewardScenario(t *testing.T) {
	f := newFixture(t)
	id := f.createGlobalFarm(t, 500_000, Percent(1))
	yieldID := f.createYieldFarm(t, id, nil)
	aliceDeposit := f.deposit(t, id, yieldID, 1_000)
	f.deposit(t, id, yieldID, 3_000)

	f.advancePeriods(1)
	claim, err := f.engine.ClaimRewards(f.alice, aliceDeposit, yieldID, true)
	require.NoError(t, err)
	// 500_000 * 1% * 1_000 / 4_000
	require.Equal(t, uint64(1_250), claim.Claimed.Uint64())
	require.True(t, claim.Unclaimable.IsZero())
	require.Equal(t, id, claim.GlobalFarmID)
	require.Equal(t, testRewardAsset, claim.RewardCurrency)
	require.Equal(t, uint64(1_250), f.state.balance(testRewardAsset, f.alice).Uint64())

	global := f.global(t, id)
	require.Equal(t, uint64(495_000), global.Remaining.Uint64())
	require.Equal(t, uint64(1_250), global.AccumulatedPaidRewards.Uint64())
	require.Equal(t, uint64(3_750), f.yield(t, id, yieldID).LeftToDistribute.Uint64())
	requireConserved(t, f, id)
}

func TestDoubleClaimGuard(t *testing.T) {
	f := newFixture(t)
	id := f.createGlobalFarm(t, 500_000, Percent(1))
	yieldID := f.createYieldFarm(t, id, nil)
	depositID := f.deposit(t, id, yieldID, 1_000)

	_, err := f.engine.ClaimRewards(f.alice, depositID, yieldID, true)
	require.ErrorIs(t, err, ErrDoubleClaimInPeriod)

	f.advancePeriods(1)
	first, err := f.engine.ClaimRewards(f.alice, depositID, yieldID, true)
	require.NoError(t, err)
	require.Equal(t, uint64(5_000), first.Claimed.Uint64())

	_, err = f.engine.ClaimRewards(f.alice, depositID, yieldID, true)
	require.ErrorIs(t, err, ErrDoubleClaimInPeriod)
	again, err := f.engine.ClaimRewards(f.alice, depositID, yieldID, false)
	require.NoError(t, err)
	require.True(t, again.Claimed.IsZero())

	claim, res := f.withdraw(t, f.alice, depositID, yieldID)
	require.True(t, claim.Claimed.IsZero())
	require.True(t, res.DepositDestroyed)
	require.Equal(t, uint64(5_000), f.state.balance(testRewardAsset, f.alice).Uint64())

	_, err = f.engine.WithdrawLPShares(depositID, yieldID, nil)
	require.ErrorIs(t, err, ErrDepositNotFound)
	requireConserved(t, f, id)
}

func TestLoyaltyWithholdsAndReturnsOnWithdraw(t *testing.T) {
	f := newFixture(t)
	id := f.createGlobalFarm(t, 500_000, Percent(1))
	yieldID := f.createYieldFarm(t, id, DefaultLoyaltyCurve())
	depositID := f.deposit(t, id, yieldID, 1_000)

	f.advancePeriods(1)
	claim, err := f.engine.ClaimRewards(f.alice, depositID, yieldID, true)
	require.NoError(t, err)
	require.Equal(t, uint64(2_516), claim.Claimed.Uint64())
	require.Equal(t, uint64(2_484), claim.Unclaimable.Uint64())

	f.advancePeriods(1)
	claim, err = f.engine.ClaimRewards(f.alice, depositID, yieldID, true)
	require.NoError(t, err)
	require.Equal(t, uint64(2_524), claim.Claimed.Uint64())
	require.Equal(t, uint64(4_910), claim.Unclaimable.Uint64())

	_, res := f.withdraw(t, f.alice, depositID, yieldID)
	require.True(t, res.DepositDestroyed)
	require.Equal(t, uint64(1_000), res.WithdrawnShares.Uint64())

	global := f.global(t, id)
	require.Equal(t, uint64(494_960), global.Remaining.Uint64())
	require.Equal(t, uint64(5_040), global.AccumulatedPaidRewards.Uint64())
	require.True(t, f.yield(t, id, yieldID).LeftToDistribute.IsZero())
	requireConserved(t, f, id)

	// a fresh deposit starts the loyalty curve over
	next := f.deposit(t, id, yieldID, 1_000)
	deposit, err := f.engine.Deposit(next)
	require.NoError(t, err)
	require.Equal(t, Period(2), deposit.Entries[0].EnteredAt)

	f.advancePeriods(1)
	claim, err = f.engine.ClaimRewards(f.alice, next, yieldID, true)
	require.NoError(t, err)
	// floor(4_949 * loyalty(1))
	require.Equal(t, uint64(2_490), claim.Claimed.Uint64())
	requireConserved(t, f, id)
}

func TestStopThenWithdrawPaysOnlyActivePeriods(t *testing.T) {
	f := newFixture(t)
	id := f.createGlobalFarm(t, 500_000, Percent(1))
	yieldID := f.createYieldFarm(t, id, nil)
	depositID := f.deposit(t, id, yieldID, 1_000)

	f.advancePeriods(2)
	_, err := f.engine.StopYieldFarm(f.owner, id, f.pool)
	require.NoError(t, err)
	f.advancePeriods(8)

	claim, res := f.withdraw(t, f.alice, depositID, yieldID)
	require.Equal(t, uint64(10_000), claim.Claimed.Uint64())
	require.True(t, res.DepositDestroyed)
	require.Equal(t, uint64(10_000), f.state.balance(testRewardAsset, f.alice).Uint64())

	global := f.global(t, id)
	require.Equal(t, uint64(490_000), global.Remaining.Uint64())
	farm := f.yield(t, id, yieldID)
	require.Zero(t, farm.EntriesCount)
	require.True(t, farm.TotalValuedShares.IsZero())
	requireConserved(t, f, id)
}

func TestDepositChecks(t *testing.T) {
	f := newFixture(t)
	params := f.globalParams(500_000, Percent(1))
	params.MinDeposit = uint256.NewInt(10)
	id, _, err := f.engine.CreateGlobalFarm(params)
	require.NoError(t, err)
	yieldID := f.createYieldFarm(t, id, nil)

	_, err = f.engine.DepositLPShares(id, yieldID, f.pool, new(uint256.Int))
	require.ErrorIs(t, err, ErrInvalidDepositAmount)
	_, err = f.engine.DepositLPShares(id, yieldID, f.pool, uint256.NewInt(5))
	require.ErrorIs(t, err, ErrInvalidDepositAmount)
	_, err = f.engine.DepositLPShares(id, yieldID+5, f.pool, uint256.NewInt(50))
	require.ErrorIs(t, err, ErrYieldFarmNotFound)
	_, err = f.engine.DepositLPShares(id, yieldID, newTestAddress(0x55), uint256.NewInt(50))
	require.ErrorIs(t, err, ErrYieldFarmNotFound)

	tiny := f.globalParams(500_000, Percent(1))
	tiny.PriceAdjustment = uint256.NewInt(1)
	tinyID, _, err := f.engine.CreateGlobalFarm(tiny)
	require.NoError(t, err)
	tinyYield := f.createYieldFarm(t, tinyID, nil)
	_, err = f.engine.DepositLPShares(tinyID, tinyYield, f.pool, uint256.NewInt(1))
	require.ErrorIs(t, err, ErrZeroValuedShares)

	depositID := f.deposit(t, id, yieldID, 50)
	deposit, err := f.engine.Deposit(depositID)
	require.NoError(t, err)
	require.Equal(t, uint64(50), deposit.Shares.Uint64())
	require.Len(t, deposit.Entries, 1)
	require.Equal(t, uint64(50), deposit.Entries[0].ValuedShares.Uint64())

	_, err = f.engine.ClaimRewards(f.alice, depositID+1, yieldID, true)
	require.ErrorIs(t, err, ErrDepositNotFound)
	_, err = f.engine.ClaimRewards(f.alice, depositID, yieldID+1, true)
	require.ErrorIs(t, err, ErrYieldFarmEntryNotFound)
}

func TestPriceAdjustmentScalesValuedShares(t *testing.T) {
	f := newFixture(t)
	params := f.globalParams(500_000, Percent(1))
	params.PriceAdjustment = FixedFromRational(5, 2)
	id, _, err := f.engine.CreateGlobalFarm(params)
	require.NoError(t, err)
	yieldID := f.createYieldFarm(t, id, nil)
	f.deposit(t, id, yieldID, 1_001)

	farm := f.yield(t, id, yieldID)
	require.Equal(t, uint64(1_001), farm.TotalShares.Uint64())
	require.Equal(t, uint64(2_502), farm.TotalValuedShares.Uint64())
	require.Equal(t, uint64(2_502), f.global(t, id).TotalSharesZ.Uint64())
}

func TestRedepositBound(t *testing.T) {
	f := newFixture(t)
	params := DefaultParams()
	params.MaxFarmEntriesPerDeposit = 2
	f.engine = NewEngine(params)
	f.engine.SetState(f.state)
	f.engine.SetClock(f.clock)

	first := f.createGlobalFarm(t, 500_000, Percent(1))
	firstYield := f.createYieldFarm(t, first, nil)
	second := f.createGlobalFarm(t, 500_000, Percent(1))
	secondYield := f.createYieldFarm(t, second, nil)
	third := f.createGlobalFarm(t, 500_000, Percent(1))
	thirdYield := f.createYieldFarm(t, third, nil)

	depositID := f.deposit(t, first, firstYield, 1_000)
	_, err := f.engine.RedepositLPShares(first, firstYield, depositID)
	require.ErrorIs(t, err, ErrDoubleLock)
	_, err = f.engine.RedepositLPShares(second, secondYield+10, depositID)
	require.ErrorIs(t, err, ErrDepositAMMPoolMismatch)
	_, err = f.engine.RedepositLPShares(second, secondYield, depositID+1)
	require.ErrorIs(t, err, ErrDepositNotFound)

	shares, err := f.engine.RedepositLPShares(second, secondYield, depositID)
	require.NoError(t, err)
	require.Equal(t, uint64(1_000), shares.Uint64())
	require.Equal(t, uint64(1_000), f.global(t, second).TotalSharesZ.Uint64())

	before, err := f.engine.Deposit(depositID)
	require.NoError(t, err)
	_, err = f.engine.RedepositLPShares(third, thirdYield, depositID)
	require.ErrorIs(t, err, ErrMaxEntriesPerDeposit)
	after, err := f.engine.Deposit(depositID)
	require.NoError(t, err)
	require.Equal(t, before, after)
	require.True(t, f.global(t, third).TotalSharesZ.IsZero())

	// withdrawing one entry keeps the deposit alive
	_, res := f.withdraw(t, f.alice, depositID, firstYield)
	require.False(t, res.DepositDestroyed)
	require.Equal(t, first, res.GlobalFarmID)
	global, ok := f.engine.GetGlobalFarmID(depositID, secondYield)
	require.True(t, ok)
	require.Equal(t, second, global)
	_, ok = f.engine.GetGlobalFarmID(depositID, firstYield)
	require.False(t, ok)
}

func TestRedepositSurfacesStateErrors(t *testing.T) {
	f := newFixture(t)
	first := f.createGlobalFarm(t, 500_000, Percent(1))
	firstYield := f.createYieldFarm(t, first, nil)
	second := f.createGlobalFarm(t, 500_000, Percent(1))
	depositID := f.deposit(t, first, firstYield, 1_000)

	f.state.activeErr = errMockBackend
	_, err := f.engine.RedepositLPShares(second, firstYield+10, depositID)
	require.ErrorIs(t, err, errMockBackend)

	f.state.activeErr = nil
	_, err = f.engine.RedepositLPShares(second, firstYield+10, depositID)
	require.ErrorIs(t, err, ErrYieldFarmNotFound)
}

func TestRewoundClockIsRejected(t *testing.T) {
	f := newFixture(t)
	id := f.createGlobalFarm(t, 500_000, Percent(1))
	yieldID := f.createYieldFarm(t, id, DefaultLoyaltyCurve())
	f.advancePeriods(100)
	depositID := f.deposit(t, id, yieldID, 1_000)
	f.advancePeriods(1)
	_, err := f.engine.ClaimRewards(f.alice, depositID, yieldID, true)
	require.NoError(t, err)
	paid := f.state.balance(testRewardAsset, f.alice)
	globalBefore := f.global(t, id)
	farmBefore := f.yield(t, id, yieldID)

	// period 50, behind every record written above
	f.engine.SetClock(clock.NewManual(500))
	_, err = f.engine.ClaimRewards(f.alice, depositID, yieldID, true)
	require.ErrorIs(t, err, ErrClockRewound)
	_, err = f.engine.ClaimRewards(f.alice, depositID, yieldID, false)
	require.ErrorIs(t, err, ErrClockRewound)
	_, err = f.engine.DepositLPShares(id, yieldID, f.pool, uint256.NewInt(1_000))
	require.ErrorIs(t, err, ErrClockRewound)
	_, err = f.engine.StopYieldFarm(f.owner, id, f.pool)
	require.ErrorIs(t, err, ErrClockRewound)

	require.Equal(t, paid, f.state.balance(testRewardAsset, f.alice))
	require.Equal(t, globalBefore, f.global(t, id))
	require.Equal(t, farmBefore, f.yield(t, id, yieldID))
	requireConserved(t, f, id)
}

func TestLoyaltyPeriodsRejectEntryFromTheFuture(t *testing.T) {
	farm := &YieldFarm{ID: 2, State: FarmActive}
	entry := &FarmEntry{EnteredAt: 100, UpdatedAt: 101}
	periods, err := loyaltyPeriods(entry, farm, 105)
	require.NoError(t, err)
	require.Equal(t, Period(5), periods)
	_, err = loyaltyPeriods(entry, farm, 50)
	require.ErrorIs(t, err, ErrClockRewound)
	_, err = loyaltyPeriods(entry, farm, 100)
	require.ErrorIs(t, err, ErrClockRewound)

	farm.State = FarmStopped
	farm.UpdatedAt = 103
	periods, err = loyaltyPeriods(entry, farm, 400)
	require.NoError(t, err)
	require.Equal(t, Period(3), periods)
}

func TestTwoPoolsShareOneGlobalFarm(t *testing.T) {
	f := newFixture(t)
	otherPool := newTestAddress(0x98)
	id := f.createGlobalFarm(t, 1_000_000, Percent(1))
	yieldA, err := f.engine.CreateYieldFarm(f.owner, id, FixedOne(), nil, f.pool, [2]AssetID{testAssetA, testAssetB})
	require.NoError(t, err)
	yieldB, err := f.engine.CreateYieldFarm(f.owner, id, FixedFromInt(2), nil, otherPool, [2]AssetID{testAssetB, testAssetA})
	require.NoError(t, err)

	aliceDeposit, err := f.engine.DepositLPShares(id, yieldA, f.pool, uint256.NewInt(1_000))
	require.NoError(t, err)
	bobDeposit, err := f.engine.DepositLPShares(id, yieldB, otherPool, uint256.NewInt(1_000))
	require.NoError(t, err)
	require.Equal(t, uint64(3_000), f.global(t, id).TotalSharesZ.Uint64())

	f.advancePeriods(1)
	claimA, err := f.engine.ClaimRewards(f.alice, aliceDeposit, yieldA, true)
	require.NoError(t, err)
	claimB, err := f.engine.ClaimRewards(f.bob, bobDeposit, yieldB, true)
	require.NoError(t, err)
	// 10_000 split 1:2 between the pools
	require.Equal(t, uint64(3_333), claimA.Claimed.Uint64())
	require.Equal(t, uint64(6_666), claimB.Claimed.Uint64())
	requireConserved(t, f, id)

	_, err = f.engine.StopYieldFarm(f.owner, id, f.pool)
	require.NoError(t, err)
	require.Equal(t, uint64(2_000), f.global(t, id).TotalSharesZ.Uint64())

	f.advancePeriods(1)
	claimB, err = f.engine.ClaimRewards(f.bob, bobDeposit, yieldB, true)
	require.NoError(t, err)
	// 1% of the 990_000 left, all of it to the pool still farming
	require.Equal(t, uint64(9_900), claimB.Claimed.Uint64())
	requireConserved(t, f, id)

	claimA, res := f.withdraw(t, f.alice, aliceDeposit, yieldA)
	require.True(t, claimA.Claimed.IsZero())
	require.True(t, res.DepositDestroyed)
	require.Equal(t, uint64(3_333), f.state.balance(testRewardAsset, f.alice).Uint64())
	require.Equal(t, uint64(6_666+9_900), f.state.balance(testRewardAsset, f.bob).Uint64())
	requireConserved(t, f, id)
}

func TestConservationAcrossLifecycle(t *testing.T) {
	f := newFixture(t)
	id := f.createGlobalFarm(t, 1_000_000, Percent(2))
	yieldID := f.createYieldFarm(t, id, DefaultLoyaltyCurve())
	check := func() { requireConserved(t, f, id) }

	aliceDeposit := f.deposit(t, id, yieldID, 1_000)
	f.advancePeriods(3)
	bobDeposit := f.deposit(t, id, yieldID, 3_000)
	check()
	f.advancePeriods(2)
	_, err := f.engine.ClaimRewards(f.alice, aliceDeposit, yieldID, true)
	require.NoError(t, err)
	check()
	f.advancePeriods(1)
	_, err = f.engine.UpdateYieldFarmMultiplier(f.owner, id, f.pool, FixedFromInt(2))
	require.NoError(t, err)
	check()
	f.advancePeriods(4)
	_, err = f.engine.ClaimRewards(f.bob, bobDeposit, yieldID, true)
	require.NoError(t, err)
	f.withdraw(t, f.alice, aliceDeposit, yieldID)
	check()
	f.advancePeriods(3)
	_, err = f.engine.StopYieldFarm(f.owner, id, f.pool)
	require.NoError(t, err)
	f.advancePeriods(2)
	f.withdraw(t, f.bob, bobDeposit, yieldID)
	check()

	require.NoError(t, f.engine.DestroyYieldFarm(f.owner, id, yieldID, f.pool))
	res, err := f.engine.DestroyGlobalFarm(f.owner, id)
	require.NoError(t, err)
	require.False(t, res.Undistributed.IsZero())

	total := new(uint256.Int).Add(f.state.balance(testRewardAsset, f.owner), f.state.balance(testRewardAsset, f.alice))
	total.Add(total, f.state.balance(testRewardAsset, f.bob))
	require.Equal(t, uint64(10_000_000), total.Uint64())
	require.True(t, f.state.balance(testRewardAsset, FarmAccount(id)).IsZero())
	require.Empty(t, f.state.deposits)
	require.Empty(t, f.state.yields)
}
