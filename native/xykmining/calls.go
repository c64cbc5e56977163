package xykmining

import (
	"context"

	"github.com/holiman/uint256"

	"farmchain/core/events"
	lm "farmchain/native/liquiditymining"
)

// GlobalFarmRequest carries the parameters of CreateGlobalFarm. The caller
// becomes the farm owner.
type GlobalFarmRequest struct {
	TotalRewards           *uint256.Int
	PlannedYieldingPeriods lm.Period
	BlocksPerPeriod        uint64
	IncentivizedAsset      lm.AssetID
	RewardCurrency         lm.AssetID
	YieldPerPeriod         *uint256.Int
	MinDeposit             *uint256.Int
	PriceAdjustment        *uint256.Int
}

// CreateGlobalFarm funds a new global farm from the caller's balance.
func (m *Module) CreateGlobalFarm(ctx context.Context, caller [20]byte, req GlobalFarmRequest) (lm.FarmID, error) {
	var id lm.FarmID
	err := m.dispatch(ctx, "create_global_farm", caller, func(c *callContext) error {
		if !c.tx.HasRole(RoleFarmCreator, caller) {
			return ErrForbidden
		}
		created, maxReward, err := m.engine.CreateGlobalFarm(lm.GlobalFarmParams{
			TotalRewards:           req.TotalRewards,
			PlannedYieldingPeriods: req.PlannedYieldingPeriods,
			BlocksPerPeriod:        req.BlocksPerPeriod,
			IncentivizedAsset:      req.IncentivizedAsset,
			RewardCurrency:         req.RewardCurrency,
			Owner:                  caller,
			YieldPerPeriod:         req.YieldPerPeriod,
			MinDeposit:             req.MinDeposit,
			PriceAdjustment:        req.PriceAdjustment,
		})
		if err != nil {
			return err
		}
		id = created
		m.trackGlobal(c, created)
		c.emit(events.GlobalFarmCreated{
			ID:                     created,
			Owner:                  caller,
			TotalRewards:           req.TotalRewards,
			RewardCurrency:         req.RewardCurrency,
			YieldPerPeriod:         lm.FormatFixed(req.YieldPerPeriod),
			PlannedYieldingPeriods: req.PlannedYieldingPeriods,
			BlocksPerPeriod:        req.BlocksPerPeriod,
			IncentivizedAsset:      req.IncentivizedAsset,
			MaxRewardPerPeriod:     maxReward,
			MinDeposit:             req.MinDeposit,
			PriceAdjustment:        lm.FormatFixed(req.PriceAdjustment),
		})
		return nil
	})
	return id, err
}

// DestroyGlobalFarm refunds the undistributed budget of an empty global farm
// to its owner.
func (m *Module) DestroyGlobalFarm(ctx context.Context, caller [20]byte, globalFarmID lm.FarmID) error {
	return m.dispatch(ctx, "destroy_global_farm", caller, func(c *callContext) error {
		res, err := m.engine.DestroyGlobalFarm(caller, globalFarmID)
		if err != nil {
			return err
		}
		c.closed[globalFarmID] = true
		c.undistributed = append(c.undistributed, claimRecord{currency: res.RewardCurrency, amount: res.Undistributed})
		c.emit(events.GlobalFarmDestroyed{
			ID:                   globalFarmID,
			Who:                  caller,
			RewardCurrency:       res.RewardCurrency,
			UndistributedRewards: res.Undistributed,
		})
		return nil
	})
}

// CreateYieldFarm incentivizes the AMM pool of pair within a global farm. A
// nil loyalty curve pays rewards in full from the first period.
func (m *Module) CreateYieldFarm(ctx context.Context, caller [20]byte, globalFarmID lm.FarmID, pair AssetPair, multiplier *uint256.Int, curve *lm.LoyaltyCurve) (lm.FarmID, error) {
	var id lm.FarmID
	err := m.dispatch(ctx, "create_yield_farm", caller, func(c *callContext) error {
		poolID, err := m.requirePool(c, pair)
		if err != nil {
			return err
		}
		assets, ok, err := c.amm.PoolAssets(poolID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrCantGetAMMAssets
		}
		created, err := m.engine.CreateYieldFarm(caller, globalFarmID, multiplier, curve, poolID, assets)
		if err != nil {
			return err
		}
		id = created
		c.emit(events.YieldFarmCreated{
			GlobalFarmID: globalFarmID,
			YieldFarmID:  created,
			Multiplier:   lm.FormatFixed(multiplier),
			Pair:         eventPair(pair),
			LoyaltyCurve: describeCurve(curve),
		})
		return nil
	})
	return id, err
}

// UpdateYieldFarm changes the multiplier of the pool's active yield farm.
func (m *Module) UpdateYieldFarm(ctx context.Context, caller [20]byte, globalFarmID lm.FarmID, pair AssetPair, multiplier *uint256.Int) error {
	return m.dispatch(ctx, "update_yield_farm", caller, func(c *callContext) error {
		poolID, err := m.requirePool(c, pair)
		if err != nil {
			return err
		}
		yieldFarmID, err := m.engine.UpdateYieldFarmMultiplier(caller, globalFarmID, poolID, multiplier)
		if err != nil {
			return err
		}
		m.trackGlobal(c, globalFarmID)
		c.emit(events.YieldFarmUpdated{
			GlobalFarmID: globalFarmID,
			YieldFarmID:  yieldFarmID,
			Who:          caller,
			Pair:         eventPair(pair),
			Multiplier:   lm.FormatFixed(multiplier),
		})
		return nil
	})
}

// StopYieldFarm halts rewards for the pool. The pool itself may already be
// gone from the exchange.
func (m *Module) StopYieldFarm(ctx context.Context, caller [20]byte, globalFarmID lm.FarmID, pair AssetPair) error {
	return m.dispatch(ctx, "stop_yield_farm", caller, func(c *callContext) error {
		yieldFarmID, err := m.engine.StopYieldFarm(caller, globalFarmID, c.amm.PoolID(pair))
		if err != nil {
			return err
		}
		m.trackGlobal(c, globalFarmID)
		c.emit(events.YieldFarmStopped{
			GlobalFarmID: globalFarmID,
			YieldFarmID:  yieldFarmID,
			Who:          caller,
			Pair:         eventPair(pair),
		})
		return nil
	})
}

// ResumeYieldFarm restarts a stopped yield farm with a new multiplier.
func (m *Module) ResumeYieldFarm(ctx context.Context, caller [20]byte, globalFarmID, yieldFarmID lm.FarmID, pair AssetPair, multiplier *uint256.Int) error {
	return m.dispatch(ctx, "resume_yield_farm", caller, func(c *callContext) error {
		poolID, err := m.requirePool(c, pair)
		if err != nil {
			return err
		}
		if err := m.engine.ResumeYieldFarm(caller, globalFarmID, yieldFarmID, poolID, multiplier); err != nil {
			return err
		}
		m.trackGlobal(c, globalFarmID)
		c.emit(events.YieldFarmResumed{
			GlobalFarmID: globalFarmID,
			YieldFarmID:  yieldFarmID,
			Who:          caller,
			Pair:         eventPair(pair),
			Multiplier:   lm.FormatFixed(multiplier),
		})
		return nil
	})
}

// DestroyYieldFarm deletes a stopped yield farm. Its depositors keep the
// right to withdraw their shares.
func (m *Module) DestroyYieldFarm(ctx context.Context, caller [20]byte, globalFarmID, yieldFarmID lm.FarmID, pair AssetPair) error {
	return m.dispatch(ctx, "destroy_yield_farm", caller, func(c *callContext) error {
		if err := m.engine.DestroyYieldFarm(caller, globalFarmID, yieldFarmID, c.amm.PoolID(pair)); err != nil {
			return err
		}
		m.trackGlobal(c, globalFarmID)
		c.emit(events.YieldFarmDestroyed{
			GlobalFarmID: globalFarmID,
			YieldFarmID:  yieldFarmID,
			Who:          caller,
			Pair:         eventPair(pair),
		})
		return nil
	})
}

// DepositShares locks the caller's pool shares in the module account and
// mints the deposit NFT to the caller.
func (m *Module) DepositShares(ctx context.Context, caller [20]byte, globalFarmID, yieldFarmID lm.FarmID, pair AssetPair, shares *uint256.Int) (lm.DepositID, error) {
	var id lm.DepositID
	err := m.dispatch(ctx, "deposit_shares", caller, func(c *callContext) error {
		if shares == nil || shares.IsZero() {
			return lm.ErrInvalidDepositAmount
		}
		poolID, err := m.requirePool(c, pair)
		if err != nil {
			return err
		}
		shareToken, ok, err := c.amm.ShareToken(poolID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrAMMPoolDoesNotExist
		}
		balance, err := c.ledger.FreeBalance(shareToken, caller)
		if err != nil {
			return err
		}
		if balance.Lt(shares) {
			return ErrInsufficientAMMSharesBalance
		}
		depositID, err := m.engine.DepositLPShares(globalFarmID, yieldFarmID, poolID, shares)
		if err != nil {
			return err
		}
		if err := c.ledger.Transfer(shareToken, caller, m.account, shares); err != nil {
			return err
		}
		if err := c.nft.Mint(m.cfg.NFTClassID, depositID, caller); err != nil {
			return err
		}
		id = depositID
		c.deposits++
		m.trackGlobal(c, globalFarmID)
		c.emit(events.SharesDeposited{
			GlobalFarmID: globalFarmID,
			YieldFarmID:  yieldFarmID,
			Who:          caller,
			Amount:       shares,
			ShareToken:   shareToken,
			DepositID:    depositID,
		})
		return nil
	})
	return id, err
}

// RedepositLPShares enters the caller's existing deposit into another global
// farm's yield farm for the same pool.
func (m *Module) RedepositLPShares(ctx context.Context, caller [20]byte, globalFarmID, yieldFarmID lm.FarmID, pair AssetPair, depositID lm.DepositID) error {
	return m.dispatch(ctx, "redeposit_lp_shares", caller, func(c *callContext) error {
		poolID, err := m.requirePool(c, pair)
		if err != nil {
			return err
		}
		if err := m.ensureDepositOwner(c, depositID); err != nil {
			return err
		}
		deposit, err := m.engine.Deposit(depositID)
		if err != nil {
			return err
		}
		if deposit.AMMPoolID != poolID {
			return lm.ErrDepositAMMPoolMismatch
		}
		shares, err := m.engine.RedepositLPShares(globalFarmID, yieldFarmID, depositID)
		if err != nil {
			return err
		}
		shareToken, _, err := c.amm.ShareToken(poolID)
		if err != nil {
			return err
		}
		m.trackGlobal(c, globalFarmID)
		c.emit(events.SharesRedeposited{
			GlobalFarmID: globalFarmID,
			YieldFarmID:  yieldFarmID,
			Who:          caller,
			Amount:       shares,
			ShareToken:   shareToken,
			DepositID:    depositID,
		})
		return nil
	})
}

// ClaimRewards pays the deposit owner the rewards accrued by one entry. A
// second claim in the same period fails.
func (m *Module) ClaimRewards(ctx context.Context, caller [20]byte, depositID lm.DepositID, yieldFarmID lm.FarmID) (*uint256.Int, error) {
	claimed := new(uint256.Int)
	err := m.dispatch(ctx, "claim_rewards", caller, func(c *callContext) error {
		if err := m.ensureDepositOwner(c, depositID); err != nil {
			return err
		}
		res, err := m.engine.ClaimRewards(caller, depositID, yieldFarmID, true)
		if err != nil {
			return err
		}
		claimed = res.Claimed
		m.recordClaim(c, depositID, yieldFarmID, res)
		return nil
	})
	return claimed, err
}

func (m *Module) recordClaim(c *callContext, depositID lm.DepositID, yieldFarmID lm.FarmID, res lm.ClaimResult) {
	m.trackGlobal(c, res.GlobalFarmID)
	if res.Claimed.IsZero() {
		return
	}
	c.claimed = append(c.claimed, claimRecord{currency: res.RewardCurrency, amount: res.Claimed})
	c.emit(events.RewardClaimed{
		GlobalFarmID:   res.GlobalFarmID,
		YieldFarmID:    yieldFarmID,
		Who:            c.caller,
		Claimed:        res.Claimed,
		RewardCurrency: res.RewardCurrency,
		DepositID:      depositID,
	})
}

// WithdrawShares removes the deposit from one yield farm, paying any
// claimable reward first. When the last entry goes the shares are released
// to the caller and the deposit NFT is burned. Shares of a pool that no
// longer exists stay in the module account.
func (m *Module) WithdrawShares(ctx context.Context, caller [20]byte, depositID lm.DepositID, yieldFarmID lm.FarmID, pair AssetPair) error {
	return m.dispatch(ctx, "withdraw_shares", caller, func(c *callContext) error {
		if err := m.ensureDepositOwner(c, depositID); err != nil {
			return err
		}
		globalFarmID, ok := m.engine.GetGlobalFarmID(depositID, yieldFarmID)
		if !ok {
			return lm.ErrYieldFarmEntryNotFound
		}
		deposit, err := m.engine.Deposit(depositID)
		if err != nil {
			return err
		}
		poolID := c.amm.PoolID(pair)
		if deposit.AMMPoolID != poolID {
			return lm.ErrDepositAMMPoolMismatch
		}
		poolExists, err := c.amm.Exists(pair)
		if err != nil {
			return err
		}

		unclaimable := new(uint256.Int)
		if poolExists && m.engine.IsYieldFarmClaimable(globalFarmID, yieldFarmID, poolID) {
			res, err := m.engine.ClaimRewards(caller, depositID, yieldFarmID, false)
			if err != nil {
				return err
			}
			unclaimable = res.Unclaimable
			m.recordClaim(c, depositID, yieldFarmID, res)
		}

		res, err := m.engine.WithdrawLPShares(depositID, yieldFarmID, unclaimable)
		if err != nil {
			return err
		}
		var shareToken lm.AssetID
		if poolExists {
			if shareToken, _, err = c.amm.ShareToken(poolID); err != nil {
				return err
			}
		}
		m.trackGlobal(c, res.GlobalFarmID)
		c.emit(events.SharesWithdrawn{
			GlobalFarmID: res.GlobalFarmID,
			YieldFarmID:  yieldFarmID,
			Who:          caller,
			ShareToken:   shareToken,
			Amount:       res.WithdrawnShares,
			DepositID:    depositID,
		})
		if !res.DepositDestroyed {
			return nil
		}
		if poolExists {
			if err := c.ledger.Transfer(shareToken, m.account, caller, res.WithdrawnShares); err != nil {
				return err
			}
		}
		if err := c.nft.Burn(m.cfg.NFTClassID, depositID); err != nil {
			return err
		}
		c.deposits--
		c.emit(events.DepositDestroyed{Who: caller, DepositID: depositID})
		return nil
	})
}
