package state

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
)

var (
	ErrInsufficientBalance = errors.New("state: insufficient balance")
	ErrBalanceOverflow     = errors.New("state: balance overflow")
)

// Balance returns the free balance of addr in asset.
func (tx *Tx) Balance(asset uint32, addr [20]byte) (*uint256.Int, error) {
	amount := new(uint256.Int)
	if _, err := tx.getRLP(balanceKey(asset, addr), amount); err != nil {
		return nil, err
	}
	return amount, nil
}

// SetBalance overwrites the balance of addr in asset.
func (tx *Tx) SetBalance(asset uint32, addr [20]byte, amount *uint256.Int) error {
	if amount == nil || amount.IsZero() {
		tx.ov.remove(balanceKey(asset, addr))
		return nil
	}
	return tx.putRLP(balanceKey(asset, addr), amount)
}

// Mint credits amount to addr. Used at genesis and by the simulator.
func (tx *Tx) Mint(asset uint32, addr [20]byte, amount *uint256.Int) error {
	current, err := tx.Balance(asset, addr)
	if err != nil {
		return err
	}
	next, overflow := new(uint256.Int).AddOverflow(current, amount)
	if overflow {
		return ErrBalanceOverflow
	}
	return tx.SetBalance(asset, addr, next)
}

// Transfer moves amount of asset between two accounts.
func (tx *Tx) Transfer(asset uint32, from, to [20]byte, amount *uint256.Int) error {
	if amount == nil || amount.IsZero() || from == to {
		return nil
	}
	fromBal, err := tx.Balance(asset, from)
	if err != nil {
		return err
	}
	if fromBal.Lt(amount) {
		return fmt.Errorf("%w: asset %d has %s, need %s", ErrInsufficientBalance, asset, fromBal.Dec(), amount.Dec())
	}
	toBal, err := tx.Balance(asset, to)
	if err != nil {
		return err
	}
	credited, overflow := new(uint256.Int).AddOverflow(toBal, amount)
	if overflow {
		return ErrBalanceOverflow
	}
	if err := tx.SetBalance(asset, from, new(uint256.Int).Sub(fromBal, amount)); err != nil {
		return err
	}
	return tx.SetBalance(asset, to, credited)
}
