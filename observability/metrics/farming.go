package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus"
)

// FarmingMetrics tracks the liquidity mining call surface.
type FarmingMetrics struct {
	calls           *prometheus.CounterVec
	latency         *prometheus.HistogramVec
	rewardsClaimed  *prometheus.CounterVec
	rewardsReturned *prometheus.CounterVec
	remaining       *prometheus.GaugeVec
	liveDeposits    prometheus.Gauge
}

var (
	farmingOnce     sync.Once
	farmingRegistry *FarmingMetrics
)

// Farming returns the lazily-initialised liquidity mining metrics registry.
func Farming() *FarmingMetrics {
	farmingOnce.Do(func() {
		farmingRegistry = &FarmingMetrics{
			calls: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "farm",
				Subsystem: "mining",
				Name:      "calls_total",
				Help:      "Dispatched liquidity mining calls segmented by call and outcome.",
			}, []string{"call", "outcome"}),
			latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "farm",
				Subsystem: "mining",
				Name:      "call_duration_seconds",
				Help:      "Latency of liquidity mining calls including the state commit.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"call"}),
			rewardsClaimed: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "farm",
				Subsystem: "mining",
				Name:      "rewards_claimed_total",
				Help:      "Rewards paid to depositors segmented by reward currency.",
			}, []string{"currency"}),
			rewardsReturned: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "farm",
				Subsystem: "mining",
				Name:      "rewards_undistributed_total",
				Help:      "Budget refunded to owners of destroyed global farms.",
			}, []string{"currency"}),
			remaining: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Namespace: "farm",
				Subsystem: "mining",
				Name:      "global_farm_remaining",
				Help:      "Budget not yet emitted per global farm.",
			}, []string{"global_farm"}),
			liveDeposits: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: "farm",
				Subsystem: "mining",
				Name:      "live_deposits",
				Help:      "Deposits currently holding at least one farm entry.",
			}),
		}
		prometheus.MustRegister(
			farmingRegistry.calls,
			farmingRegistry.latency,
			farmingRegistry.rewardsClaimed,
			farmingRegistry.rewardsReturned,
			farmingRegistry.remaining,
			farmingRegistry.liveDeposits,
		)
	})
	return farmingRegistry
}

// ObserveCall records the outcome and latency of a dispatched call.
func (m *FarmingMetrics) ObserveCall(call string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.calls.WithLabelValues(call, outcome).Inc()
	m.latency.WithLabelValues(call).Observe(elapsed.Seconds())
}

// RecordClaim adds a paid reward to the claimed counter.
func (m *FarmingMetrics) RecordClaim(currency uint32, amount *uint256.Int) {
	if m == nil || amount == nil {
		return
	}
	m.rewardsClaimed.WithLabelValues(strconv.FormatUint(uint64(currency), 10)).Add(amount.Float64())
}

// RecordUndistributed adds a refunded budget to the undistributed counter.
func (m *FarmingMetrics) RecordUndistributed(currency uint32, amount *uint256.Int) {
	if m == nil || amount == nil {
		return
	}
	m.rewardsReturned.WithLabelValues(strconv.FormatUint(uint64(currency), 10)).Add(amount.Float64())
}

// SetRemaining publishes a global farm's unemitted budget. A nil amount drops
// the series, which is used when the farm is destroyed.
func (m *FarmingMetrics) SetRemaining(globalFarmID uint32, amount *uint256.Int) {
	if m == nil {
		return
	}
	label := strconv.FormatUint(uint64(globalFarmID), 10)
	if amount == nil {
		m.remaining.DeleteLabelValues(label)
		return
	}
	m.remaining.WithLabelValues(label).Set(amount.Float64())
}

// DepositOpened and DepositClosed keep the live deposit gauge current.
func (m *FarmingMetrics) DepositOpened() {
	if m == nil {
		return
	}
	m.liveDeposits.Inc()
}

func (m *FarmingMetrics) DepositClosed() {
	if m == nil {
		return
	}
	m.liveDeposits.Dec()
}
