package liquiditymining

import (
	"fmt"

	"github.com/holiman/uint256"
)

const (
	// DefaultMaxFarmEntriesPerDeposit bounds how many yield farms a single
	// deposit may be redeposited into. 1 disables redeposits.
	DefaultMaxFarmEntriesPerDeposit = 5
	// DefaultMinPlannedYieldingPeriods is the shortest schedule accepted at
	// global farm creation.
	DefaultMinPlannedYieldingPeriods = 100
	// DefaultMinTotalFarmRewards is the smallest budget accepted at global
	// farm creation.
	DefaultMinTotalFarmRewards = 1_000
)

// Params groups the governance controlled limits of the module.
type Params struct {
	MaxFarmEntriesPerDeposit  uint8
	MinTotalFarmRewards       *uint256.Int
	MinPlannedYieldingPeriods Period
}

// DefaultParams returns the module defaults.
func DefaultParams() Params {
	return Params{
		MaxFarmEntriesPerDeposit:  DefaultMaxFarmEntriesPerDeposit,
		MinTotalFarmRewards:       uint256.NewInt(DefaultMinTotalFarmRewards),
		MinPlannedYieldingPeriods: DefaultMinPlannedYieldingPeriods,
	}
}

// Validate ensures the parameters are usable. A zero entry limit would make
// every deposit unusable.
func (p Params) Validate() error {
	if p.MaxFarmEntriesPerDeposit == 0 {
		return fmt.Errorf("liquiditymining: max farm entries per deposit must be at least 1")
	}
	if p.MinTotalFarmRewards == nil {
		return fmt.Errorf("liquiditymining: min total farm rewards not configured")
	}
	return nil
}

// Clone returns a deep copy of the parameters.
func (p Params) Clone() Params {
	clone := p
	clone.MinTotalFarmRewards = cloneUint(p.MinTotalFarmRewards)
	return clone
}
