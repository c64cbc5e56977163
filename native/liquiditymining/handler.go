package liquiditymining

import "github.com/holiman/uint256"

// Handler is the surface consumed by pool specific call modules.
type Handler interface {
	CreateGlobalFarm(p GlobalFarmParams) (FarmID, *uint256.Int, error)
	DestroyGlobalFarm(who [20]byte, id FarmID) (DestroyResult, error)
	CreateYieldFarm(who [20]byte, globalFarmID FarmID, multiplier *uint256.Int, curve *LoyaltyCurve, ammPoolID [20]byte, assets [2]AssetID) (FarmID, error)
	UpdateYieldFarmMultiplier(who [20]byte, globalFarmID FarmID, ammPoolID [20]byte, multiplier *uint256.Int) (FarmID, error)
	StopYieldFarm(who [20]byte, globalFarmID FarmID, ammPoolID [20]byte) (FarmID, error)
	ResumeYieldFarm(who [20]byte, globalFarmID, yieldFarmID FarmID, ammPoolID [20]byte, multiplier *uint256.Int) error
	DestroyYieldFarm(who [20]byte, globalFarmID, yieldFarmID FarmID, ammPoolID [20]byte) error
	DepositLPShares(globalFarmID, yieldFarmID FarmID, ammPoolID [20]byte, shares *uint256.Int) (DepositID, error)
	RedepositLPShares(globalFarmID, yieldFarmID FarmID, depositID DepositID) (*uint256.Int, error)
	ClaimRewards(who [20]byte, depositID DepositID, yieldFarmID FarmID, failOnDoubleClaim bool) (ClaimResult, error)
	WithdrawLPShares(depositID DepositID, yieldFarmID FarmID, unclaimable *uint256.Int) (WithdrawResult, error)
	GetGlobalFarmID(depositID DepositID, yieldFarmID FarmID) (FarmID, bool)
	IsYieldFarmClaimable(globalFarmID, yieldFarmID FarmID, ammPoolID [20]byte) bool
	Deposit(id DepositID) (*Deposit, error)
}

var _ Handler = (*Engine)(nil)
