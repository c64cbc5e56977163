package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestFarmingMetrics(t *testing.T) {
	m := Farming()
	require.Same(t, m, Farming())

	before := testutil.ToFloat64(m.calls.WithLabelValues("claim_rewards", "error"))
	m.ObserveCall("claim_rewards", errors.New("boom"), time.Millisecond)
	require.Equal(t, before+1, testutil.ToFloat64(m.calls.WithLabelValues("claim_rewards", "error")))

	claimed := testutil.ToFloat64(m.rewardsClaimed.WithLabelValues("7"))
	m.RecordClaim(7, uint256.NewInt(1_250))
	require.Equal(t, claimed+1_250, testutil.ToFloat64(m.rewardsClaimed.WithLabelValues("7")))

	m.SetRemaining(3, uint256.NewInt(495_000))
	require.Equal(t, float64(495_000), testutil.ToFloat64(m.remaining.WithLabelValues("3")))
	m.SetRemaining(3, nil)
	require.Equal(t, 0, testutil.CollectAndCount(m.remaining))

	live := testutil.ToFloat64(m.liveDeposits)
	m.DepositOpened()
	m.DepositOpened()
	m.DepositClosed()
	require.Equal(t, live+1, testutil.ToFloat64(m.liveDeposits))
}

func TestNilFarmingMetricsAreSafe(t *testing.T) {
	var m *FarmingMetrics
	m.ObserveCall("x", nil, 0)
	m.RecordClaim(1, uint256.NewInt(1))
	m.SetRemaining(1, nil)
	m.DepositOpened()
}
