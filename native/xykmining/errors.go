package xykmining

import "errors"

var (
	ErrForbidden                    = errors.New("xykmining: caller lacks the farm creator role")
	ErrNotDepositOwner              = errors.New("xykmining: caller does not own the deposit")
	ErrCantFindDepositOwner         = errors.New("xykmining: deposit owner not found")
	ErrAMMPoolDoesNotExist          = errors.New("xykmining: amm pool does not exist")
	ErrCantGetAMMAssets             = errors.New("xykmining: amm pool assets not found")
	ErrInsufficientAMMSharesBalance = errors.New("xykmining: insufficient amm shares balance")
	ErrInvalidNFTClass              = errors.New("xykmining: nft class id outside the reserved range")
	errNilManager                   = errors.New("xykmining: state manager not configured")
	errNilClock                     = errors.New("xykmining: block clock not configured")
)
