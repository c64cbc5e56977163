package liquiditymining

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestCreateGlobalFarmValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*GlobalFarmParams)
		want   error
	}{
		{"total rewards below minimum", func(p *GlobalFarmParams) { p.TotalRewards = uint256.NewInt(999) }, ErrInvalidTotalRewards},
		{"short schedule", func(p *GlobalFarmParams) { p.PlannedYieldingPeriods = 99 }, ErrInvalidPlannedYieldingPeriods},
		{"zero period length", func(p *GlobalFarmParams) { p.BlocksPerPeriod = 0 }, ErrInvalidBlocksPerPeriod},
		{"zero yield", func(p *GlobalFarmParams) { p.YieldPerPeriod = new(uint256.Int) }, ErrInvalidYieldPerPeriod},
		{"zero min deposit", func(p *GlobalFarmParams) { p.MinDeposit = new(uint256.Int) }, ErrInvalidMinDeposit},
		{"zero price adjustment", func(p *GlobalFarmParams) { p.PriceAdjustment = nil }, ErrInvalidPriceAdjustment},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			params := f.globalParams(500_000, Percent(1))
			tc.mutate(&params)
			_, _, err := f.engine.CreateGlobalFarm(params)
			require.ErrorIs(t, err, tc.want)
			require.Empty(t, f.state.globals)
			require.Equal(t, uint64(10_000_000), f.state.balance(testRewardAsset, f.owner).Uint64())
		})
	}
}

func TestCreateGlobalFarmFundsCustody(t *testing.T) {
	f := newFixture(t)
	f.advancePeriods(3)
	id, maxReward, err := f.engine.CreateGlobalFarm(f.globalParams(500_000, Percent(1)))
	require.NoError(t, err)
	require.Equal(t, FarmID(1), id)
	require.Equal(t, uint64(5_000), maxReward.Uint64())

	farm := f.global(t, id)
	require.Equal(t, Period(3), farm.UpdatedAt)
	require.Equal(t, uint64(500_000), farm.Remaining.Uint64())
	require.Equal(t, uint64(500_000), f.state.balance(testRewardAsset, FarmAccount(id)).Uint64())
	require.Equal(t, uint64(9_500_000), f.state.balance(testRewardAsset, f.owner).Uint64())
}

func TestCreateGlobalFarmInsufficientFunds(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.engine.CreateGlobalFarm(f.globalParams(20_000_000, Percent(1)))
	require.ErrorIs(t, err, errMockInsufficientBalance)
	require.Empty(t, f.state.globals)
}

func TestFarmIDsShareOneSequence(t *testing.T) {
	f := newFixture(t)
	globalID := f.createGlobalFarm(t, 500_000, Percent(1))
	yieldID := f.createYieldFarm(t, globalID, nil)
	otherGlobal := f.createGlobalFarm(t, 500_000, Percent(1))
	require.Equal(t, FarmID(1), globalID)
	require.Equal(t, FarmID(2), yieldID)
	require.Equal(t, FarmID(3), otherGlobal)
}

func TestDestroyGlobalFarm(t *testing.T) {
	f := newFixture(t)
	id := f.createGlobalFarm(t, 500_000, Percent(1))
	yieldID := f.createYieldFarm(t, id, nil)

	_, err := f.engine.DestroyGlobalFarm(f.alice, id)
	require.ErrorIs(t, err, ErrForbidden)
	_, err = f.engine.DestroyGlobalFarm(f.owner, id)
	require.ErrorIs(t, err, ErrGlobalFarmIsNotEmpty)

	_, err = f.engine.StopYieldFarm(f.owner, id, f.pool)
	require.NoError(t, err)
	require.NoError(t, f.engine.DestroyYieldFarm(f.owner, id, yieldID, f.pool))

	res, err := f.engine.DestroyGlobalFarm(f.owner, id)
	require.NoError(t, err)
	require.Equal(t, testRewardAsset, res.RewardCurrency)
	require.Equal(t, uint64(500_000), res.Undistributed.Uint64())
	require.Equal(t, f.owner, res.Owner)
	require.True(t, f.state.balance(testRewardAsset, FarmAccount(id)).IsZero())
	require.Equal(t, uint64(10_000_000), f.state.balance(testRewardAsset, f.owner).Uint64())

	_, err = f.engine.GlobalFarm(id)
	require.ErrorIs(t, err, ErrGlobalFarmNotFound)
	_, err = f.engine.DestroyGlobalFarm(f.owner, id)
	require.ErrorIs(t, err, ErrGlobalFarmNotFound)
}

func TestGlobalFarmSkipsPeriodsWithoutWeight(t *testing.T) {
	f := newFixture(t)
	id := f.createGlobalFarm(t, 500_000, Percent(1))
	yieldID := f.createYieldFarm(t, id, nil)
	f.advancePeriods(20)

	f.deposit(t, id, yieldID, 1_000)
	farm := f.global(t, id)
	require.Equal(t, uint64(500_000), farm.Remaining.Uint64())
	require.True(t, farm.AccumulatedRPZ.IsZero())
	require.Equal(t, Period(20), farm.UpdatedAt)
}
