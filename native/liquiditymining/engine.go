package liquiditymining

import (
	"encoding/binary"
	"fmt"
	"log/slog"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"

	"farmchain/core/clock"
	nativecommon "farmchain/native/common"
)

const moduleName = "liquiditymining"

var farmAccountPrefix = []byte("lm/farm")

type engineState interface {
	NextFarmID() (FarmID, error)
	NextDepositID() (DepositID, error)
	GetGlobalFarm(id FarmID) (*GlobalFarm, bool, error)
	PutGlobalFarm(farm *GlobalFarm) error
	DeleteGlobalFarm(id FarmID) error
	GetYieldFarm(globalFarmID FarmID, ammPoolID [20]byte, id FarmID) (*YieldFarm, bool, error)
	PutYieldFarm(farm *YieldFarm) error
	DeleteYieldFarm(globalFarmID FarmID, ammPoolID [20]byte, id FarmID) error
	// ActiveYieldFarm resolves the non-deleted yield farm serving the pool.
	ActiveYieldFarm(globalFarmID FarmID, ammPoolID [20]byte) (FarmID, bool, error)
	SetActiveYieldFarm(globalFarmID FarmID, ammPoolID [20]byte, id FarmID) error
	ClearActiveYieldFarm(globalFarmID FarmID, ammPoolID [20]byte) error
	GetDeposit(id DepositID) (*Deposit, bool, error)
	PutDeposit(deposit *Deposit) error
	DeleteDeposit(id DepositID) error
	Transfer(asset AssetID, from, to [20]byte, amount *uint256.Int) error
}

// Engine owns the farm registries and the reward accrual algorithm. It holds
// no reference to the call surface built on top of it.
type Engine struct {
	state  engineState
	clock  clock.Provider
	params Params
	pauses nativecommon.PauseView
	logger *slog.Logger
}

// NewEngine constructs an engine using the supplied parameters.
func NewEngine(params Params) *Engine {
	return &Engine{params: params.Clone(), logger: slog.Default()}
}

// SetState wires the engine to the external persistence layer.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetClock configures the block source used to derive farm periods.
func (e *Engine) SetClock(provider clock.Provider) { e.clock = provider }

func (e *Engine) SetPauses(p nativecommon.PauseView) {
	if e == nil {
		return
	}
	e.pauses = p
}

// SetLogger overrides the logger. Passing nil restores slog.Default.
func (e *Engine) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	e.logger = logger
}

// Params returns a copy of the active parameters.
func (e *Engine) Params() Params { return e.params.Clone() }

// FarmAccount derives the custody account holding a global farm's rewards.
func FarmAccount(id FarmID) [20]byte {
	var raw [4]byte
	binary.BigEndian.PutUint32(raw[:], id)
	digest := ethcrypto.Keccak256(farmAccountPrefix, raw[:])
	var out [20]byte
	copy(out[:], digest[12:])
	return out
}

func (e *Engine) ready() error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if e.clock == nil {
		return errNilClock
	}
	return nativecommon.Guard(e.pauses, moduleName)
}

func (e *Engine) currentPeriod(farm *GlobalFarm) (Period, error) {
	return clock.PeriodOf(e.clock.CurrentBlock(), farm.BlocksPerPeriod)
}

func (e *Engine) loadGlobalFarm(id FarmID) (*GlobalFarm, error) {
	farm, ok, err := e.state.GetGlobalFarm(id)
	if err != nil {
		return nil, err
	}
	if !ok || farm == nil {
		return nil, ErrGlobalFarmNotFound
	}
	return farm, nil
}

func (e *Engine) loadOwnedGlobalFarm(who [20]byte, id FarmID) (*GlobalFarm, error) {
	farm, err := e.loadGlobalFarm(id)
	if err != nil {
		return nil, err
	}
	if farm.Owner != who {
		return nil, ErrForbidden
	}
	return farm, nil
}

func (e *Engine) loadYieldFarm(globalFarmID FarmID, ammPoolID [20]byte, id FarmID) (*YieldFarm, error) {
	farm, ok, err := e.state.GetYieldFarm(globalFarmID, ammPoolID, id)
	if err != nil {
		return nil, err
	}
	if !ok || farm == nil {
		return nil, ErrYieldFarmNotFound
	}
	return farm, nil
}

// loadActiveYieldFarm resolves the non-deleted yield farm of a pool.
func (e *Engine) loadActiveYieldFarm(globalFarmID FarmID, ammPoolID [20]byte) (*YieldFarm, error) {
	id, ok, err := e.state.ActiveYieldFarm(globalFarmID, ammPoolID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrYieldFarmNotFound
	}
	return e.loadYieldFarm(globalFarmID, ammPoolID, id)
}

func (e *Engine) loadDeposit(id DepositID) (*Deposit, error) {
	deposit, ok, err := e.state.GetDeposit(id)
	if err != nil {
		return nil, err
	}
	if !ok || deposit == nil {
		return nil, ErrDepositNotFound
	}
	return deposit, nil
}

// syncGlobalFarm emits rewards for the periods elapsed since the last update
// into the global accumulator. Periods without any weight are skipped and
// leave the budget untouched.
func (e *Engine) syncGlobalFarm(farm *GlobalFarm, now Period) error {
	if farm.UpdatedAt >= now {
		return nil
	}
	if farm.TotalSharesZ.IsZero() {
		farm.UpdatedAt = now
		return nil
	}
	reward := globalFarmReward(farm.Remaining, farm.YieldPerPeriod, farm.MaxRewardPerPeriod, now-farm.UpdatedAt)
	if !reward.IsZero() {
		delta, err := fixedFromRatio(reward, farm.TotalSharesZ)
		if err != nil {
			return err
		}
		// A reward too small to move the accumulator stays in the budget.
		if !delta.IsZero() {
			rpz, err := checkedAdd(farm.AccumulatedRPZ, delta)
			if err != nil {
				return err
			}
			pending, err := checkedAdd(farm.PendingRewards, reward)
			if err != nil {
				return err
			}
			farm.AccumulatedRPZ = rpz
			farm.PendingRewards = pending
			farm.Remaining = new(uint256.Int).Sub(farm.Remaining, reward)
			e.logger.Debug("global farm synced",
				"global_farm", farm.ID,
				"periods", now-farm.UpdatedAt,
				"reward", reward.Dec())
		}
	}
	farm.UpdatedAt = now
	return nil
}

// syncYieldFarm pulls the yield farm's share of the global accumulator into
// its own reward-per-valued-share accumulator. Only active farms accrue.
func (e *Engine) syncYieldFarm(farm *YieldFarm, global *GlobalFarm, now Period) error {
	if farm.State != FarmActive || farm.UpdatedAt >= now {
		return nil
	}
	if farm.TotalValuedShares.IsZero() {
		farm.AccumulatedRPZ = cloneUint(global.AccumulatedRPZ)
		farm.UpdatedAt = now
		return nil
	}
	deltaRPZ := saturatingSub(global.AccumulatedRPZ, farm.AccumulatedRPZ)
	z, err := farm.sharesZ()
	if err != nil {
		return err
	}
	reward, err := mulFloor(deltaRPZ, z)
	if err != nil {
		return err
	}
	reward = minUint(reward, global.PendingRewards)
	if !reward.IsZero() {
		delta, err := fixedFromRatio(reward, farm.TotalValuedShares)
		if err != nil {
			return err
		}
		rpvs, err := checkedAdd(farm.AccumulatedRPVS, delta)
		if err != nil {
			return err
		}
		left, err := checkedAdd(farm.LeftToDistribute, reward)
		if err != nil {
			return err
		}
		farm.AccumulatedRPVS = rpvs
		farm.LeftToDistribute = left
		global.PendingRewards = new(uint256.Int).Sub(global.PendingRewards, reward)
		e.logger.Debug("yield farm synced",
			"global_farm", global.ID,
			"yield_farm", farm.ID,
			"reward", reward.Dec())
	}
	farm.AccumulatedRPZ = cloneUint(global.AccumulatedRPZ)
	farm.UpdatedAt = now
	return nil
}

// syncFarms brings both accumulators up to the current period.
func (e *Engine) syncFarms(global *GlobalFarm, farm *YieldFarm) (Period, error) {
	now, err := e.currentPeriod(global)
	if err != nil {
		return 0, err
	}
	if now < global.UpdatedAt {
		return 0, fmt.Errorf("%w: period %d before global farm %d update at %d", ErrClockRewound, now, global.ID, global.UpdatedAt)
	}
	if farm != nil && now < farm.UpdatedAt {
		return 0, fmt.Errorf("%w: period %d before yield farm %d update at %d", ErrClockRewound, now, farm.ID, farm.UpdatedAt)
	}
	if err := e.syncGlobalFarm(global, now); err != nil {
		return 0, err
	}
	if farm != nil {
		if err := e.syncYieldFarm(farm, global, now); err != nil {
			return 0, err
		}
	}
	return now, nil
}

// reweigh replaces a yield farm's previous weight in the global farm's
// TotalSharesZ with its current weight.
func reweigh(global *GlobalFarm, previous *uint256.Int, farm *YieldFarm) error {
	current, err := farm.sharesZ()
	if err != nil {
		return err
	}
	total, err := checkedSub(global.TotalSharesZ, previous)
	if err != nil {
		return fmt.Errorf("%w: global farm %d weight underflow", err, global.ID)
	}
	total, err = checkedAdd(total, current)
	if err != nil {
		return err
	}
	global.TotalSharesZ = total
	return nil
}

func (e *Engine) persist(global *GlobalFarm, farm *YieldFarm) error {
	if farm != nil {
		if err := e.state.PutYieldFarm(farm); err != nil {
			return err
		}
	}
	if global != nil {
		if err := e.state.PutGlobalFarm(global); err != nil {
			return err
		}
	}
	return nil
}
