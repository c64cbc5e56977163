package events

import (
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"farmchain/core/types"
)

const (
	TypeGlobalFarmCreated   = "liquiditymining.global_farm_created"
	TypeGlobalFarmDestroyed = "liquiditymining.global_farm_destroyed"
	TypeYieldFarmCreated    = "liquiditymining.yield_farm_created"
	TypeYieldFarmUpdated    = "liquiditymining.yield_farm_updated"
	TypeYieldFarmStopped    = "liquiditymining.yield_farm_stopped"
	TypeYieldFarmResumed    = "liquiditymining.yield_farm_resumed"
	TypeYieldFarmDestroyed  = "liquiditymining.yield_farm_destroyed"
	TypeSharesDeposited     = "liquiditymining.shares_deposited"
	TypeSharesRedeposited   = "liquiditymining.shares_redeposited"
	// TypeRewardClaimed is only emitted when a non-zero reward was paid.
	TypeRewardClaimed    = "liquiditymining.reward_claimed"
	TypeSharesWithdrawn  = "liquiditymining.shares_withdrawn"
	TypeDepositDestroyed = "liquiditymining.deposit_destroyed"
)

// AssetPair names the two assets of an AMM pool.
type AssetPair struct {
	AssetIn  uint32
	AssetOut uint32
}

func (p AssetPair) attributes(attrs map[string]string) {
	attrs["assetIn"] = strconv.FormatUint(uint64(p.AssetIn), 10)
	attrs["assetOut"] = strconv.FormatUint(uint64(p.AssetOut), 10)
}

func formatAddress(addr [20]byte) string {
	if addr == ([20]byte{}) {
		return ""
	}
	return common.Address(addr).Hex()
}

func formatAmount(v *uint256.Int) string {
	if v == nil {
		return "0"
	}
	return v.Dec()
}

func formatID[T ~uint32 | ~uint64](id T) string {
	return strconv.FormatUint(uint64(id), 10)
}

type GlobalFarmCreated struct {
	ID                     uint32
	Owner                  [20]byte
	TotalRewards           *uint256.Int
	RewardCurrency         uint32
	YieldPerPeriod         string
	PlannedYieldingPeriods uint64
	BlocksPerPeriod        uint64
	IncentivizedAsset      uint32
	MaxRewardPerPeriod     *uint256.Int
	MinDeposit             *uint256.Int
	PriceAdjustment        string
}

func (GlobalFarmCreated) EventType() string { return TypeGlobalFarmCreated }

func (e GlobalFarmCreated) Event() *types.Event {
	return &types.Event{
		Type: TypeGlobalFarmCreated,
		Attributes: map[string]string{
			types.AttrGlobalFarmID:   formatID(e.ID),
			"owner":                  formatAddress(e.Owner),
			"totalRewards":           formatAmount(e.TotalRewards),
			"rewardCurrency":         formatID(e.RewardCurrency),
			"yieldPerPeriod":         e.YieldPerPeriod,
			"plannedYieldingPeriods": formatID(e.PlannedYieldingPeriods),
			"blocksPerPeriod":        formatID(e.BlocksPerPeriod),
			"incentivizedAsset":      formatID(e.IncentivizedAsset),
			"maxRewardPerPeriod":     formatAmount(e.MaxRewardPerPeriod),
			"minDeposit":             formatAmount(e.MinDeposit),
			"priceAdjustment":        e.PriceAdjustment,
		},
	}
}

type GlobalFarmDestroyed struct {
	ID                   uint32
	Who                  [20]byte
	RewardCurrency       uint32
	UndistributedRewards *uint256.Int
}

func (GlobalFarmDestroyed) EventType() string { return TypeGlobalFarmDestroyed }

func (e GlobalFarmDestroyed) Event() *types.Event {
	return &types.Event{
		Type: TypeGlobalFarmDestroyed,
		Attributes: map[string]string{
			types.AttrGlobalFarmID: formatID(e.ID),
			types.AttrWho:          formatAddress(e.Who),
			"rewardCurrency":       formatID(e.RewardCurrency),
			"undistributedRewards": formatAmount(e.UndistributedRewards),
		},
	}
}

type YieldFarmCreated struct {
	GlobalFarmID uint32
	YieldFarmID  uint32
	Multiplier   string
	Pair         AssetPair
	// LoyaltyCurve is empty when the farm pays without a loyalty curve.
	LoyaltyCurve string
}

func (YieldFarmCreated) EventType() string { return TypeYieldFarmCreated }

func (e YieldFarmCreated) Event() *types.Event {
	attrs := map[string]string{
		types.AttrGlobalFarmID: formatID(e.GlobalFarmID),
		types.AttrYieldFarmID:  formatID(e.YieldFarmID),
		"multiplier":           e.Multiplier,
		"loyaltyCurve":         e.LoyaltyCurve,
	}
	e.Pair.attributes(attrs)
	return &types.Event{Type: TypeYieldFarmCreated, Attributes: attrs}
}

type YieldFarmUpdated struct {
	GlobalFarmID uint32
	YieldFarmID  uint32
	Who          [20]byte
	Pair         AssetPair
	Multiplier   string
}

func (YieldFarmUpdated) EventType() string { return TypeYieldFarmUpdated }

func (e YieldFarmUpdated) Event() *types.Event {
	attrs := map[string]string{
		types.AttrGlobalFarmID: formatID(e.GlobalFarmID),
		types.AttrYieldFarmID:  formatID(e.YieldFarmID),
		types.AttrWho:          formatAddress(e.Who),
		"multiplier":           e.Multiplier,
	}
	e.Pair.attributes(attrs)
	return &types.Event{Type: TypeYieldFarmUpdated, Attributes: attrs}
}

type YieldFarmStopped struct {
	GlobalFarmID uint32
	YieldFarmID  uint32
	Who          [20]byte
	Pair         AssetPair
}

func (YieldFarmStopped) EventType() string { return TypeYieldFarmStopped }

func (e YieldFarmStopped) Event() *types.Event {
	attrs := map[string]string{
		types.AttrGlobalFarmID: formatID(e.GlobalFarmID),
		types.AttrYieldFarmID:  formatID(e.YieldFarmID),
		types.AttrWho:          formatAddress(e.Who),
	}
	e.Pair.attributes(attrs)
	return &types.Event{Type: TypeYieldFarmStopped, Attributes: attrs}
}

type YieldFarmResumed struct {
	GlobalFarmID uint32
	YieldFarmID  uint32
	Who          [20]byte
	Pair         AssetPair
	Multiplier   string
}

func (YieldFarmResumed) EventType() string { return TypeYieldFarmResumed }

func (e YieldFarmResumed) Event() *types.Event {
	attrs := map[string]string{
		types.AttrGlobalFarmID: formatID(e.GlobalFarmID),
		types.AttrYieldFarmID:  formatID(e.YieldFarmID),
		types.AttrWho:          formatAddress(e.Who),
		"multiplier":           e.Multiplier,
	}
	e.Pair.attributes(attrs)
	return &types.Event{Type: TypeYieldFarmResumed, Attributes: attrs}
}

type YieldFarmDestroyed struct {
	GlobalFarmID uint32
	YieldFarmID  uint32
	Who          [20]byte
	Pair         AssetPair
}

func (YieldFarmDestroyed) EventType() string { return TypeYieldFarmDestroyed }

func (e YieldFarmDestroyed) Event() *types.Event {
	attrs := map[string]string{
		types.AttrGlobalFarmID: formatID(e.GlobalFarmID),
		types.AttrYieldFarmID:  formatID(e.YieldFarmID),
		types.AttrWho:          formatAddress(e.Who),
	}
	e.Pair.attributes(attrs)
	return &types.Event{Type: TypeYieldFarmDestroyed, Attributes: attrs}
}

type SharesDeposited struct {
	GlobalFarmID uint32
	YieldFarmID  uint32
	Who          [20]byte
	Amount       *uint256.Int
	ShareToken   uint32
	DepositID    uint64
}

func (SharesDeposited) EventType() string { return TypeSharesDeposited }

func (e SharesDeposited) Event() *types.Event {
	return &types.Event{
		Type: TypeSharesDeposited,
		Attributes: map[string]string{
			types.AttrGlobalFarmID: formatID(e.GlobalFarmID),
			types.AttrYieldFarmID:  formatID(e.YieldFarmID),
			types.AttrWho:          formatAddress(e.Who),
			"amount":               formatAmount(e.Amount),
			"shareToken":           formatID(e.ShareToken),
			types.AttrDepositID:    formatID(e.DepositID),
		},
	}
}

type SharesRedeposited struct {
	GlobalFarmID uint32
	YieldFarmID  uint32
	Who          [20]byte
	Amount       *uint256.Int
	ShareToken   uint32
	DepositID    uint64
}

func (SharesRedeposited) EventType() string { return TypeSharesRedeposited }

func (e SharesRedeposited) Event() *types.Event {
	return &types.Event{
		Type: TypeSharesRedeposited,
		Attributes: map[string]string{
			types.AttrGlobalFarmID: formatID(e.GlobalFarmID),
			types.AttrYieldFarmID:  formatID(e.YieldFarmID),
			types.AttrWho:          formatAddress(e.Who),
			"amount":               formatAmount(e.Amount),
			"shareToken":           formatID(e.ShareToken),
			types.AttrDepositID:    formatID(e.DepositID),
		},
	}
}

type RewardClaimed struct {
	GlobalFarmID   uint32
	YieldFarmID    uint32
	Who            [20]byte
	Claimed        *uint256.Int
	RewardCurrency uint32
	DepositID      uint64
}

func (RewardClaimed) EventType() string { return TypeRewardClaimed }

func (e RewardClaimed) Event() *types.Event {
	return &types.Event{
		Type: TypeRewardClaimed,
		Attributes: map[string]string{
			types.AttrGlobalFarmID: formatID(e.GlobalFarmID),
			types.AttrYieldFarmID:  formatID(e.YieldFarmID),
			types.AttrWho:          formatAddress(e.Who),
			"claimed":              formatAmount(e.Claimed),
			"rewardCurrency":       formatID(e.RewardCurrency),
			types.AttrDepositID:    formatID(e.DepositID),
		},
	}
}

type SharesWithdrawn struct {
	GlobalFarmID uint32
	YieldFarmID  uint32
	Who          [20]byte
	ShareToken   uint32
	Amount       *uint256.Int
	DepositID    uint64
}

func (SharesWithdrawn) EventType() string { return TypeSharesWithdrawn }

func (e SharesWithdrawn) Event() *types.Event {
	return &types.Event{
		Type: TypeSharesWithdrawn,
		Attributes: map[string]string{
			types.AttrGlobalFarmID: formatID(e.GlobalFarmID),
			types.AttrYieldFarmID:  formatID(e.YieldFarmID),
			types.AttrWho:          formatAddress(e.Who),
			"shareToken":           formatID(e.ShareToken),
			"amount":               formatAmount(e.Amount),
			types.AttrDepositID:    formatID(e.DepositID),
		},
	}
}

type DepositDestroyed struct {
	Who       [20]byte
	DepositID uint64
}

func (DepositDestroyed) EventType() string { return TypeDepositDestroyed }

func (e DepositDestroyed) Event() *types.Event {
	return &types.Event{
		Type: TypeDepositDestroyed,
		Attributes: map[string]string{
			types.AttrWho:       formatAddress(e.Who),
			types.AttrDepositID: formatID(e.DepositID),
		},
	}
}
