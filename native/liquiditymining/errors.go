package liquiditymining

import "errors"

var (
	errNilState = errors.New("liquiditymining: state not configured")
	errNilClock = errors.New("liquiditymining: period source not configured")

	ErrForbidden                      = errors.New("liquiditymining: forbidden")
	ErrGlobalFarmNotFound             = errors.New("liquiditymining: global farm not found")
	ErrYieldFarmNotFound              = errors.New("liquiditymining: yield farm not found")
	ErrDepositNotFound                = errors.New("liquiditymining: deposit not found")
	ErrYieldFarmEntryNotFound         = errors.New("liquiditymining: yield farm entry not found")
	ErrYieldFarmAlreadyExists         = errors.New("liquiditymining: yield farm for amm pool already exists")
	ErrMissingIncentivizedAsset       = errors.New("liquiditymining: pool does not contain incentivized asset")
	ErrInvalidTotalRewards            = errors.New("liquiditymining: total rewards below minimum")
	ErrInvalidPlannedYieldingPeriods  = errors.New("liquiditymining: planned yielding periods below minimum")
	ErrInvalidBlocksPerPeriod         = errors.New("liquiditymining: blocks per period must be at least 1")
	ErrInvalidYieldPerPeriod          = errors.New("liquiditymining: yield per period must be positive")
	ErrInvalidMinDeposit              = errors.New("liquiditymining: min deposit must be positive")
	ErrInvalidPriceAdjustment         = errors.New("liquiditymining: price adjustment must be positive")
	ErrInvalidMultiplier              = errors.New("liquiditymining: multiplier must be positive")
	ErrInvalidInitialRewardPercentage = errors.New("liquiditymining: loyalty initial reward percentage must be below 1")
	ErrInvalidLoyaltyScale            = errors.New("liquiditymining: loyalty scale coefficient must be positive")
	ErrInvalidDepositAmount           = errors.New("liquiditymining: deposit below farm minimum")
	ErrZeroValuedShares               = errors.New("liquiditymining: valued shares amount is zero")
	ErrMaxEntriesPerDeposit           = errors.New("liquiditymining: max farm entries per deposit reached")
	ErrDoubleLock                     = errors.New("liquiditymining: deposit already has an entry in this farm")
	ErrDepositAMMPoolMismatch         = errors.New("liquiditymining: yield farm serves a different amm pool")
	ErrLiquidityMiningCanceled        = errors.New("liquiditymining: yield farm is stopped")
	ErrLiquidityMiningIsActive        = errors.New("liquiditymining: yield farm is active")
	ErrLiquidityMiningIsNotStopped    = errors.New("liquiditymining: yield farm is not stopped")
	ErrGlobalFarmIsNotEmpty           = errors.New("liquiditymining: global farm has live yield farms")
	ErrDoubleClaimInPeriod            = errors.New("liquiditymining: rewards already claimed in this period")
	ErrClockRewound                   = errors.New("liquiditymining: block height moved backwards")
	ErrInsufficientRewardBalance      = errors.New("liquiditymining: insufficient reward balance")
	ErrInvalidFixed                   = errors.New("liquiditymining: invalid fixed-point value")
	ErrOverflow                       = errors.New("liquiditymining: arithmetic overflow")
	ErrDivisionByZero                 = errors.New("liquiditymining: division by zero")
)
