package farmquery

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	lm "farmchain/native/liquiditymining"
)

func amount(v *uint256.Int) string {
	if v == nil {
		return "0"
	}
	return v.Dec()
}

type globalFarmView struct {
	ID                     uint32 `json:"id"`
	Owner                  string `json:"owner"`
	UpdatedAt              uint64 `json:"updatedAt"`
	TotalSharesZ           string `json:"totalSharesZ"`
	AccumulatedRPZ         string `json:"accumulatedRpz"`
	RewardCurrency         uint32 `json:"rewardCurrency"`
	TotalRewards           string `json:"totalRewards"`
	Remaining              string `json:"remaining"`
	PendingRewards         string `json:"pendingRewards"`
	AccumulatedPaidRewards string `json:"accumulatedPaidRewards"`
	YieldPerPeriod         string `json:"yieldPerPeriod"`
	PlannedYieldingPeriods uint64 `json:"plannedYieldingPeriods"`
	BlocksPerPeriod        uint64 `json:"blocksPerPeriod"`
	IncentivizedAsset      uint32 `json:"incentivizedAsset"`
	MaxRewardPerPeriod     string `json:"maxRewardPerPeriod"`
	MinDeposit             string `json:"minDeposit"`
	LiveYieldFarmsCount    uint32 `json:"liveYieldFarmsCount"`
	TotalYieldFarmsCount   uint32 `json:"totalYieldFarmsCount"`
	PriceAdjustment        string `json:"priceAdjustment"`
}

func newGlobalFarmView(f *lm.GlobalFarm) globalFarmView {
	return globalFarmView{
		ID:                     f.ID,
		Owner:                  common.Address(f.Owner).Hex(),
		UpdatedAt:              f.UpdatedAt,
		TotalSharesZ:           amount(f.TotalSharesZ),
		AccumulatedRPZ:         lm.FormatFixed(f.AccumulatedRPZ),
		RewardCurrency:         f.RewardCurrency,
		TotalRewards:           amount(f.TotalRewards),
		Remaining:              amount(f.Remaining),
		PendingRewards:         amount(f.PendingRewards),
		AccumulatedPaidRewards: amount(f.AccumulatedPaidRewards),
		YieldPerPeriod:         lm.FormatFixed(f.YieldPerPeriod),
		PlannedYieldingPeriods: f.PlannedYieldingPeriods,
		BlocksPerPeriod:        f.BlocksPerPeriod,
		IncentivizedAsset:      f.IncentivizedAsset,
		MaxRewardPerPeriod:     amount(f.MaxRewardPerPeriod),
		MinDeposit:             amount(f.MinDeposit),
		LiveYieldFarmsCount:    f.LiveYieldFarmsCount,
		TotalYieldFarmsCount:   f.TotalYieldFarmsCount,
		PriceAdjustment:        lm.FormatFixed(f.PriceAdjustment),
	}
}

type loyaltyCurveView struct {
	InitialRewardPercentage string `json:"initialRewardPercentage"`
	ScaleCoef               uint32 `json:"scaleCoef"`
}

type yieldFarmView struct {
	ID                uint32            `json:"id"`
	GlobalFarmID      uint32            `json:"globalFarmId"`
	AMMPoolID         string            `json:"ammPoolId"`
	UpdatedAt         uint64            `json:"updatedAt"`
	TotalShares       string            `json:"totalShares"`
	TotalValuedShares string            `json:"totalValuedShares"`
	AccumulatedRPVS   string            `json:"accumulatedRpvs"`
	AccumulatedRPZ    string            `json:"accumulatedRpz"`
	LoyaltyCurve      *loyaltyCurveView `json:"loyaltyCurve,omitempty"`
	Multiplier        string            `json:"multiplier"`
	State             string            `json:"state"`
	EntriesCount      uint64            `json:"entriesCount"`
	LeftToDistribute  string            `json:"leftToDistribute"`
}

func newYieldFarmView(f *lm.YieldFarm) yieldFarmView {
	view := yieldFarmView{
		ID:                f.ID,
		GlobalFarmID:      f.GlobalFarmID,
		AMMPoolID:         common.Address(f.AMMPoolID).Hex(),
		UpdatedAt:         f.UpdatedAt,
		TotalShares:       amount(f.TotalShares),
		TotalValuedShares: amount(f.TotalValuedShares),
		AccumulatedRPVS:   lm.FormatFixed(f.AccumulatedRPVS),
		AccumulatedRPZ:    lm.FormatFixed(f.AccumulatedRPZ),
		Multiplier:        lm.FormatFixed(f.Multiplier),
		State:             f.State.String(),
		EntriesCount:      f.EntriesCount,
		LeftToDistribute:  amount(f.LeftToDistribute),
	}
	if f.LoyaltyCurve != nil {
		view.LoyaltyCurve = &loyaltyCurveView{
			InitialRewardPercentage: lm.FormatFixed(f.LoyaltyCurve.InitialRewardPercentage),
			ScaleCoef:               f.LoyaltyCurve.ScaleCoef,
		}
	}
	return view
}

type farmEntryView struct {
	GlobalFarmID              uint32 `json:"globalFarmId"`
	YieldFarmID               uint32 `json:"yieldFarmId"`
	ValuedShares              string `json:"valuedShares"`
	AccumulatedRPVS           string `json:"accumulatedRpvs"`
	AccumulatedClaimedRewards string `json:"accumulatedClaimedRewards"`
	EnteredAt                 uint64 `json:"enteredAt"`
	UpdatedAt                 uint64 `json:"updatedAt"`
}

type depositView struct {
	ID        uint64          `json:"id"`
	Owner     string          `json:"owner"`
	Shares    string          `json:"shares"`
	AMMPoolID string          `json:"ammPoolId"`
	Entries   []farmEntryView `json:"entries"`
}

func newDepositView(d *lm.Deposit, owner [20]byte) depositView {
	view := depositView{
		ID:        d.ID,
		Owner:     common.Address(owner).Hex(),
		Shares:    amount(d.Shares),
		AMMPoolID: common.Address(d.AMMPoolID).Hex(),
		Entries:   make([]farmEntryView, 0, len(d.Entries)),
	}
	for _, entry := range d.Entries {
		view.Entries = append(view.Entries, farmEntryView{
			GlobalFarmID:              entry.GlobalFarmID,
			YieldFarmID:               entry.YieldFarmID,
			ValuedShares:              amount(entry.ValuedShares),
			AccumulatedRPVS:           lm.FormatFixed(entry.AccumulatedRPVS),
			AccumulatedClaimedRewards: amount(entry.AccumulatedClaimedRewards),
			EnteredAt:                 entry.EnteredAt,
			UpdatedAt:                 entry.UpdatedAt,
		})
	}
	return view
}

type eventView struct {
	ID         string            `json:"id"`
	Seq        uint64            `json:"seq"`
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
}
