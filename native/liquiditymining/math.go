package liquiditymining

import (
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

// Fixed-point values (accumulators, multipliers, percentages and the price
// adjustment) are unsigned 256-bit integers scaled by 1e18. Balances are plain
// integers limited to 128 bits. Every division truncates toward zero.

const fixedDecimals = 18

var (
	accuracy   = uint256.NewInt(1_000_000_000_000_000_000)
	maxBalance = new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), 128), uint256.NewInt(1))
)

// FixedOne returns 1.0 in fixed-point representation.
func FixedOne() *uint256.Int { return new(uint256.Int).Set(accuracy) }

// FixedFromInt converts an integer to fixed-point.
func FixedFromInt(n uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(n), accuracy)
}

// FixedFromRational returns n/d in fixed-point, truncated.
func FixedFromRational(n, d uint64) *uint256.Int {
	if d == 0 {
		return new(uint256.Int)
	}
	out := new(uint256.Int).Mul(uint256.NewInt(n), accuracy)
	return out.Div(out, uint256.NewInt(d))
}

// Percent returns p% as a fixed-point fraction.
func Percent(p uint64) *uint256.Int { return FixedFromRational(p, 100) }

// ParseFixed parses a decimal string such as "0.5" or "12" into fixed-point.
// Digits past the 18th decimal place are truncated.
func ParseFixed(raw string) (*uint256.Int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty fixed-point value", ErrInvalidFixed)
	}
	whole, frac, _ := strings.Cut(trimmed, ".")
	if whole == "" {
		whole = "0"
	}
	if len(frac) > fixedDecimals {
		frac = frac[:fixedDecimals]
	}
	frac += strings.Repeat("0", fixedDecimals-len(frac))
	digits := strings.TrimLeft(whole+frac, "0")
	if digits == "" {
		digits = "0"
	}
	out, err := uint256.FromDecimal(digits)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidFixed, raw)
	}
	return out, nil
}

// FormatFixed renders a fixed-point value as a decimal string.
func FormatFixed(v *uint256.Int) string {
	if v == nil {
		return "0"
	}
	var q, r uint256.Int
	q.DivMod(v, accuracy, &r)
	if r.IsZero() {
		return q.Dec()
	}
	frac := r.Dec()
	frac = strings.Repeat("0", fixedDecimals-len(frac)) + frac
	return q.Dec() + "." + strings.TrimRight(frac, "0")
}

func checkedAdd(a, b *uint256.Int) (*uint256.Int, error) {
	out, overflow := new(uint256.Int).AddOverflow(a, b)
	if overflow {
		return nil, ErrOverflow
	}
	return out, nil
}

func checkedSub(a, b *uint256.Int) (*uint256.Int, error) {
	out, underflow := new(uint256.Int).SubOverflow(a, b)
	if underflow {
		return nil, ErrOverflow
	}
	return out, nil
}

func checkedMul(a, b *uint256.Int) (*uint256.Int, error) {
	out, overflow := new(uint256.Int).MulOverflow(a, b)
	if overflow {
		return nil, ErrOverflow
	}
	return out, nil
}

func saturatingSub(a, b *uint256.Int) *uint256.Int {
	if a.Lt(b) {
		return new(uint256.Int)
	}
	return new(uint256.Int).Sub(a, b)
}

func saturatingMul(a, b *uint256.Int) *uint256.Int {
	out, overflow := new(uint256.Int).MulOverflow(a, b)
	if overflow {
		return new(uint256.Int).SetAllOne()
	}
	return out
}

func minUint(a, b *uint256.Int) *uint256.Int {
	if a.Lt(b) {
		return new(uint256.Int).Set(a)
	}
	return new(uint256.Int).Set(b)
}

// ensureBalance rejects amounts outside the 128-bit balance domain.
func ensureBalance(v *uint256.Int) error {
	if v.Gt(maxBalance) {
		return fmt.Errorf("%w: balance exceeds 128 bits", ErrOverflow)
	}
	return nil
}

// mulFloor returns floor(f * n) where f is fixed-point and n an integer.
func mulFloor(f, n *uint256.Int) (*uint256.Int, error) {
	product, err := checkedMul(f, n)
	if err != nil {
		return nil, err
	}
	return product.Div(product, accuracy), nil
}

// saturatingMulFloor is mulFloor clamped to the balance domain.
func saturatingMulFloor(f, n *uint256.Int) *uint256.Int {
	out, err := mulFloor(f, n)
	if err != nil || out.Gt(maxBalance) {
		return new(uint256.Int).Set(maxBalance)
	}
	return out
}

// fixedFromRatio returns n/d as fixed-point.
func fixedFromRatio(n, d *uint256.Int) (*uint256.Int, error) {
	if d.IsZero() {
		return nil, ErrDivisionByZero
	}
	scaled, err := checkedMul(n, accuracy)
	if err != nil {
		return nil, err
	}
	return scaled.Div(scaled, d), nil
}

// fixedMul multiplies two fixed-point values.
func fixedMul(a, b *uint256.Int) (*uint256.Int, error) {
	return mulFloor(a, b)
}

// fixedDiv divides two fixed-point values.
func fixedDiv(a, b *uint256.Int) (*uint256.Int, error) {
	return fixedFromRatio(a, b)
}

// LoyaltyMultiplier evaluates the loyalty curve after the given number of
// periods:
//
//	tau = periods / ((1 + b) * scale)
//	m   = (tau + b) / (tau + 1)
//
// with b the initial reward percentage. m starts at b and approaches 1.
// A nil curve always yields 1.
func LoyaltyMultiplier(periods uint64, curve *LoyaltyCurve) (*uint256.Int, error) {
	if curve == nil {
		return FixedOne(), nil
	}
	b := curve.InitialRewardPercentage
	if b == nil || b.Eq(accuracy) {
		return FixedOne(), nil
	}
	onePlusB, err := checkedAdd(b, accuracy)
	if err != nil {
		return nil, err
	}
	denom, err := checkedMul(onePlusB, uint256.NewInt(uint64(curve.ScaleCoef)))
	if err != nil {
		return nil, err
	}
	tau, err := fixedDiv(FixedFromInt(periods), denom)
	if err != nil {
		return nil, err
	}
	num, err := checkedAdd(tau, b)
	if err != nil {
		return nil, err
	}
	den, err := checkedAdd(tau, accuracy)
	if err != nil {
		return nil, err
	}
	return fixedDiv(num, den)
}

// globalFarmReward computes the emission owed for the elapsed periods:
// min(yield * remaining, maxPerPeriod) per period, never more than remaining.
func globalFarmReward(remaining, yieldPerPeriod, maxRewardPerPeriod *uint256.Int, periods uint64) *uint256.Int {
	if periods == 0 || remaining.IsZero() {
		return new(uint256.Int)
	}
	perPeriod := saturatingMulFloor(yieldPerPeriod, remaining)
	if perPeriod.Gt(maxRewardPerPeriod) {
		perPeriod = new(uint256.Int).Set(maxRewardPerPeriod)
	}
	total := saturatingMul(perPeriod, uint256.NewInt(periods))
	return minUint(total, remaining)
}

// userReward splits the reward accrued by an entry into the part payable now
// and the part withheld by the loyalty curve.
func userReward(entryRPVS, currentRPVS, valuedShares, claimed, loyalty *uint256.Int) (payable, unclaimable *uint256.Int, err error) {
	delta := saturatingSub(currentRPVS, entryRPVS)
	maxRewards, err := mulFloor(delta, valuedShares)
	if err != nil {
		return nil, nil, err
	}
	claimable, err := mulFloor(loyalty, maxRewards)
	if err != nil {
		return nil, nil, err
	}
	unclaimable = saturatingSub(maxRewards, claimable)
	payable = saturatingSub(claimable, claimed)
	if err := ensureBalance(payable); err != nil {
		return nil, nil, err
	}
	return payable, unclaimable, nil
}
