package liquiditymining

import "github.com/holiman/uint256"

// FarmID identifies a global or yield farm. Both kinds share one sequence.
type FarmID = uint32

// DepositID doubles as the NFT instance id representing the deposit.
type DepositID = uint64

// AssetID identifies a fungible asset in the multi-asset ledger.
type AssetID = uint32

// Period is a number of elapsed blocks divided by the farm's period length.
type Period = uint64

// FarmState is the lifecycle state of a farm.
type FarmState uint8

const (
	FarmActive FarmState = iota
	FarmStopped
	FarmDeleted
)

func (s FarmState) String() string {
	switch s {
	case FarmActive:
		return "active"
	case FarmStopped:
		return "stopped"
	case FarmDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// LoyaltyCurve scales payable rewards by time spent in a yield farm.
// InitialRewardPercentage is fixed-point in [0, 1).
type LoyaltyCurve struct {
	InitialRewardPercentage *uint256.Int
	ScaleCoef               uint32
}

// DefaultLoyaltyCurve starts entries at 50% of their reward.
func DefaultLoyaltyCurve() *LoyaltyCurve {
	return &LoyaltyCurve{InitialRewardPercentage: FixedFromRational(1, 2), ScaleCoef: 100}
}

func (c *LoyaltyCurve) Clone() *LoyaltyCurve {
	if c == nil {
		return nil
	}
	return &LoyaltyCurve{InitialRewardPercentage: cloneUint(c.InitialRewardPercentage), ScaleCoef: c.ScaleCoef}
}

// GlobalFarm holds a reward budget and its emission schedule. Amounts are
// denominated in RewardCurrency; fixed-point fields are noted.
type GlobalFarm struct {
	ID        FarmID
	Owner     [20]byte
	UpdatedAt Period
	// TotalSharesZ is the sum of valued shares times multiplier across the
	// active yield farms.
	TotalSharesZ *uint256.Int
	// AccumulatedRPZ is the fixed-point reward per unit of TotalSharesZ.
	AccumulatedRPZ *uint256.Int
	RewardCurrency AssetID
	TotalRewards   *uint256.Int
	// Remaining is the budget not yet emitted into the accumulator.
	Remaining *uint256.Int
	// PendingRewards were emitted into the accumulator but not yet pulled
	// by a yield farm.
	PendingRewards         *uint256.Int
	AccumulatedPaidRewards *uint256.Int
	// YieldPerPeriod is fixed-point.
	YieldPerPeriod         *uint256.Int
	PlannedYieldingPeriods Period
	BlocksPerPeriod        uint64
	IncentivizedAsset      AssetID
	MaxRewardPerPeriod     *uint256.Int
	MinDeposit             *uint256.Int
	LiveYieldFarmsCount    uint32
	TotalYieldFarmsCount   uint32
	// PriceAdjustment is fixed-point and set once at creation.
	PriceAdjustment *uint256.Int
}

// YieldFarm is the incentive pool for one AMM pool inside a global farm.
type YieldFarm struct {
	ID                FarmID
	GlobalFarmID      FarmID
	AMMPoolID         [20]byte
	UpdatedAt         Period
	TotalShares       *uint256.Int
	TotalValuedShares *uint256.Int
	// AccumulatedRPVS is the fixed-point reward per valued share.
	AccumulatedRPVS *uint256.Int
	// AccumulatedRPZ is the global accumulator value last pulled.
	AccumulatedRPZ *uint256.Int
	LoyaltyCurve   *LoyaltyCurve `rlp:"nil"`
	// Multiplier is fixed-point; zero while stopped.
	Multiplier       *uint256.Int
	State            FarmState
	EntriesCount     uint64
	LeftToDistribute *uint256.Int
}

// FarmEntry is one deposit's stake inside one yield farm.
type FarmEntry struct {
	GlobalFarmID              FarmID
	YieldFarmID               FarmID
	ValuedShares              *uint256.Int
	AccumulatedRPVS           *uint256.Int
	AccumulatedClaimedRewards *uint256.Int
	EnteredAt                 Period
	UpdatedAt                 Period
}

// Deposit is a user position represented by an NFT. Every entry was created
// from the same Shares amount.
type Deposit struct {
	ID        DepositID
	Shares    *uint256.Int
	AMMPoolID [20]byte
	Entries   []*FarmEntry
}

func (d *Deposit) findEntry(yieldFarmID FarmID) (int, *FarmEntry) {
	for i, entry := range d.Entries {
		if entry.YieldFarmID == yieldFarmID {
			return i, entry
		}
	}
	return -1, nil
}

func (d *Deposit) hasGlobalFarm(globalFarmID FarmID) bool {
	for _, entry := range d.Entries {
		if entry.GlobalFarmID == globalFarmID {
			return true
		}
	}
	return false
}

func (g *GlobalFarm) Clone() *GlobalFarm {
	if g == nil {
		return nil
	}
	clone := *g
	clone.TotalSharesZ = cloneUint(g.TotalSharesZ)
	clone.AccumulatedRPZ = cloneUint(g.AccumulatedRPZ)
	clone.TotalRewards = cloneUint(g.TotalRewards)
	clone.Remaining = cloneUint(g.Remaining)
	clone.PendingRewards = cloneUint(g.PendingRewards)
	clone.AccumulatedPaidRewards = cloneUint(g.AccumulatedPaidRewards)
	clone.YieldPerPeriod = cloneUint(g.YieldPerPeriod)
	clone.MaxRewardPerPeriod = cloneUint(g.MaxRewardPerPeriod)
	clone.MinDeposit = cloneUint(g.MinDeposit)
	clone.PriceAdjustment = cloneUint(g.PriceAdjustment)
	return &clone
}

func (y *YieldFarm) Clone() *YieldFarm {
	if y == nil {
		return nil
	}
	clone := *y
	clone.TotalShares = cloneUint(y.TotalShares)
	clone.TotalValuedShares = cloneUint(y.TotalValuedShares)
	clone.AccumulatedRPVS = cloneUint(y.AccumulatedRPVS)
	clone.AccumulatedRPZ = cloneUint(y.AccumulatedRPZ)
	clone.LoyaltyCurve = y.LoyaltyCurve.Clone()
	clone.Multiplier = cloneUint(y.Multiplier)
	clone.LeftToDistribute = cloneUint(y.LeftToDistribute)
	return &clone
}

func (y *YieldFarm) sharesZ() (*uint256.Int, error) {
	return mulFloor(y.Multiplier, y.TotalValuedShares)
}

func (e *FarmEntry) Clone() *FarmEntry {
	if e == nil {
		return nil
	}
	clone := *e
	clone.ValuedShares = cloneUint(e.ValuedShares)
	clone.AccumulatedRPVS = cloneUint(e.AccumulatedRPVS)
	clone.AccumulatedClaimedRewards = cloneUint(e.AccumulatedClaimedRewards)
	return &clone
}

func (d *Deposit) Clone() *Deposit {
	if d == nil {
		return nil
	}
	clone := &Deposit{ID: d.ID, Shares: cloneUint(d.Shares), AMMPoolID: d.AMMPoolID}
	clone.Entries = make([]*FarmEntry, len(d.Entries))
	for i, entry := range d.Entries {
		clone.Entries[i] = entry.Clone()
	}
	return clone
}

func cloneUint(v *uint256.Int) *uint256.Int {
	if v == nil {
		return new(uint256.Int)
	}
	return new(uint256.Int).Set(v)
}
