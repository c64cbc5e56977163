package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"gopkg.in/yaml.v3"

	"farmchain/core/clock"
	"farmchain/core/events"
	"farmchain/core/state"
	lm "farmchain/native/liquiditymining"
	"farmchain/native/xykmining"
)

// Scenario is a scripted sequence of module calls run against a fresh or
// existing state.
type Scenario struct {
	StartBlock uint64            `yaml:"start_block"`
	Accounts   map[string]string `yaml:"accounts"`
	Creators   []string          `yaml:"farm_creators"`
	Balances   []Balance         `yaml:"balances"`
	Pools      []Pool            `yaml:"pools"`
	Steps      []Step            `yaml:"steps"`
}

type Balance struct {
	Account string     `yaml:"account"`
	Asset   lm.AssetID `yaml:"asset"`
	Amount  string     `yaml:"amount"`
}

type Pool struct {
	AssetA     lm.AssetID `yaml:"asset_a"`
	AssetB     lm.AssetID `yaml:"asset_b"`
	ShareToken lm.AssetID `yaml:"share_token"`
}

type Curve struct {
	InitialRewardPercentage string `yaml:"initial_reward_percentage"`
	ScaleCoef               uint32 `yaml:"scale_coef"`
}

// Step either advances the clock or dispatches one call. ExpectError makes a
// failing call part of the script; its text must appear in the error.
type Step struct {
	Advance     uint64               `yaml:"advance"`
	Call        string               `yaml:"call"`
	Caller      string               `yaml:"caller"`
	GlobalFarm  lm.FarmID            `yaml:"global_farm"`
	YieldFarm   lm.FarmID            `yaml:"yield_farm"`
	Deposit     lm.DepositID         `yaml:"deposit"`
	Pair        xykmining.AssetPair  `yaml:"pair"`
	Amount      string               `yaml:"amount"`
	Multiplier  string               `yaml:"multiplier"`
	Curve       *Curve               `yaml:"loyalty_curve"`
	Farm        *GlobalFarmArguments `yaml:"farm"`
	ExpectError string               `yaml:"expect_error"`
}

type GlobalFarmArguments struct {
	TotalRewards           string     `yaml:"total_rewards"`
	PlannedYieldingPeriods uint64     `yaml:"planned_yielding_periods"`
	BlocksPerPeriod        uint64     `yaml:"blocks_per_period"`
	IncentivizedAsset      lm.AssetID `yaml:"incentivized_asset"`
	RewardCurrency         lm.AssetID `yaml:"reward_currency"`
	YieldPerPeriod         string     `yaml:"yield_per_period"`
	MinDeposit             string     `yaml:"min_deposit"`
	PriceAdjustment        string     `yaml:"price_adjustment"`
}

// LoadScenario decodes a scenario file. Unknown keys are rejected.
func LoadScenario(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return decodeScenario(f)
}

func decodeScenario(r io.Reader) (*Scenario, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	sc := new(Scenario)
	if err := dec.Decode(sc); err != nil {
		return nil, fmt.Errorf("decode scenario: %w", err)
	}
	return sc, nil
}

func (sc *Scenario) resolve(name string) ([20]byte, error) {
	if raw, ok := sc.Accounts[name]; ok {
		name = raw
	}
	if !common.IsHexAddress(name) {
		return [20]byte{}, fmt.Errorf("unknown account %q", name)
	}
	return common.HexToAddress(name), nil
}

func parseAmount(raw string) (*uint256.Int, error) {
	if strings.TrimSpace(raw) == "" {
		return new(uint256.Int), nil
	}
	return uint256.FromDecimal(strings.TrimSpace(raw))
}

// Seed writes the scenario's roles, balances and pools.
func (sc *Scenario) Seed(manager *state.Manager) error {
	return manager.Transaction(func(tx *state.Tx) error {
		for _, name := range sc.Creators {
			addr, err := sc.resolve(name)
			if err != nil {
				return err
			}
			if err := tx.SetRole(xykmining.RoleFarmCreator, addr); err != nil {
				return err
			}
		}
		for _, b := range sc.Balances {
			addr, err := sc.resolve(b.Account)
			if err != nil {
				return err
			}
			amount, err := parseAmount(b.Amount)
			if err != nil {
				return fmt.Errorf("balance of %s: %w", b.Account, err)
			}
			if err := tx.Mint(b.Asset, addr, amount); err != nil {
				return err
			}
		}
		for _, p := range sc.Pools {
			if _, ok, err := tx.PoolByPair(p.AssetA, p.AssetB); err != nil {
				return err
			} else if ok {
				continue
			}
			if _, err := tx.RegisterPool(p.AssetA, p.AssetB, p.ShareToken); err != nil {
				return err
			}
		}
		return nil
	})
}

// Runner executes scenario steps.
type Runner struct {
	module  *xykmining.Module
	manager *state.Manager
	clock   *clock.Manual
	out     io.Writer
}

// Run executes every step in order and stops at the first unexpected outcome.
func (r *Runner) Run(ctx context.Context, sc *Scenario) error {
	for i, step := range sc.Steps {
		if err := r.step(ctx, sc, step); err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, describe(step), err)
		}
	}
	return nil
}

func describe(step Step) string {
	if step.Call == "" {
		return fmt.Sprintf("advance %d", step.Advance)
	}
	return step.Call
}

func (r *Runner) step(ctx context.Context, sc *Scenario, step Step) error {
	if step.Call == "" {
		height := r.clock.Advance(step.Advance)
		fmt.Fprintf(r.out, "# block %d\n", height)
		return nil
	}
	err := r.dispatch(ctx, sc, step)
	switch {
	case step.ExpectError == "" && err != nil:
		return err
	case step.ExpectError != "" && err == nil:
		return fmt.Errorf("expected error containing %q", step.ExpectError)
	case step.ExpectError != "" && !strings.Contains(err.Error(), step.ExpectError):
		return fmt.Errorf("expected error containing %q, got %w", step.ExpectError, err)
	case err != nil:
		fmt.Fprintf(r.out, "# %s rejected: %v\n", step.Call, err)
	}
	return nil
}

var errMissingArguments = errors.New("missing farm arguments")

func (r *Runner) dispatch(ctx context.Context, sc *Scenario, step Step) error {
	if step.Call == "remove_pool" {
		return r.manager.Transaction(func(tx *state.Tx) error {
			return tx.RemovePool(step.Pair.AssetIn, step.Pair.AssetOut)
		})
	}
	caller, err := sc.resolve(step.Caller)
	if err != nil {
		return err
	}
	multiplier := lm.FixedOne()
	if step.Multiplier != "" {
		if multiplier, err = lm.ParseFixed(step.Multiplier); err != nil {
			return err
		}
	}
	switch step.Call {
	case "create_global_farm":
		if step.Farm == nil {
			return errMissingArguments
		}
		req, err := step.Farm.request()
		if err != nil {
			return err
		}
		_, err = r.module.CreateGlobalFarm(ctx, caller, req)
		return err
	case "destroy_global_farm":
		return r.module.DestroyGlobalFarm(ctx, caller, step.GlobalFarm)
	case "create_yield_farm":
		var curve *lm.LoyaltyCurve
		if step.Curve != nil {
			initial, err := lm.ParseFixed(step.Curve.InitialRewardPercentage)
			if err != nil {
				return err
			}
			curve = &lm.LoyaltyCurve{InitialRewardPercentage: initial, ScaleCoef: step.Curve.ScaleCoef}
		}
		_, err := r.module.CreateYieldFarm(ctx, caller, step.GlobalFarm, step.Pair, multiplier, curve)
		return err
	case "update_yield_farm":
		return r.module.UpdateYieldFarm(ctx, caller, step.GlobalFarm, step.Pair, multiplier)
	case "stop_yield_farm":
		return r.module.StopYieldFarm(ctx, caller, step.GlobalFarm, step.Pair)
	case "resume_yield_farm":
		return r.module.ResumeYieldFarm(ctx, caller, step.GlobalFarm, step.YieldFarm, step.Pair, multiplier)
	case "destroy_yield_farm":
		return r.module.DestroyYieldFarm(ctx, caller, step.GlobalFarm, step.YieldFarm, step.Pair)
	case "deposit_shares":
		amount, err := parseAmount(step.Amount)
		if err != nil {
			return err
		}
		_, err = r.module.DepositShares(ctx, caller, step.GlobalFarm, step.YieldFarm, step.Pair, amount)
		return err
	case "redeposit_lp_shares":
		return r.module.RedepositLPShares(ctx, caller, step.GlobalFarm, step.YieldFarm, step.Pair, step.Deposit)
	case "claim_rewards":
		_, err := r.module.ClaimRewards(ctx, caller, step.Deposit, step.YieldFarm)
		return err
	case "withdraw_shares":
		return r.module.WithdrawShares(ctx, caller, step.Deposit, step.YieldFarm, step.Pair)
	default:
		return fmt.Errorf("unknown call %q", step.Call)
	}
}

func (a *GlobalFarmArguments) request() (xykmining.GlobalFarmRequest, error) {
	total, err := parseAmount(a.TotalRewards)
	if err != nil {
		return xykmining.GlobalFarmRequest{}, fmt.Errorf("total_rewards: %w", err)
	}
	minDeposit, err := parseAmount(a.MinDeposit)
	if err != nil {
		return xykmining.GlobalFarmRequest{}, fmt.Errorf("min_deposit: %w", err)
	}
	yield, err := lm.ParseFixed(a.YieldPerPeriod)
	if err != nil {
		return xykmining.GlobalFarmRequest{}, fmt.Errorf("yield_per_period: %w", err)
	}
	adjustment := lm.FixedOne()
	if a.PriceAdjustment != "" {
		if adjustment, err = lm.ParseFixed(a.PriceAdjustment); err != nil {
			return xykmining.GlobalFarmRequest{}, fmt.Errorf("price_adjustment: %w", err)
		}
	}
	return xykmining.GlobalFarmRequest{
		TotalRewards:           total,
		PlannedYieldingPeriods: a.PlannedYieldingPeriods,
		BlocksPerPeriod:        a.BlocksPerPeriod,
		IncentivizedAsset:      a.IncentivizedAsset,
		RewardCurrency:         a.RewardCurrency,
		YieldPerPeriod:         yield,
		MinDeposit:             minDeposit,
		PriceAdjustment:        adjustment,
	}, nil
}

// printer writes every committed event as one JSON line.
type printer struct {
	out io.Writer
}

func (p printer) Emit(evt events.Event) {
	payload := events.Payload(evt)
	encoded, err := json.Marshal(payload)
	if err != nil {
		fmt.Fprintf(p.out, "# unencodable event %s: %v\n", evt.EventType(), err)
		return
	}
	fmt.Fprintln(p.out, string(encoded))
}
