// Package liquidity implements the baseline constant-product AMM
// liquidity source: pool reserves, trade formulas, path-candidate
// enumeration over configured base tokens, and a TTL cache for pools
// observed absent.
package liquidity

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/batchauction/engine/pkg/fixedpoint"
)

// maxReserve is 2^112-1, the post-trade reserve ceiling the on-chain
// pair contract enforces.
var maxReserve = mustAmount("5192296858534827628530496329220095")

func mustAmount(s string) fixedpoint.Amount {
	a, err := fixedpoint.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Fee is a pool's trading fee expressed as num/denom, matching the
// on-chain pair contract's integer fee representation (e.g. 3/1000).
type Fee struct {
	Num   fixedpoint.Amount
	Denom fixedpoint.Amount
}

// Pool is a constant-product pool between two tokens at a snapshot
// block: the input and output tokens, their reserves (ordered input
// first, output second), and its fee.
type Pool struct {
	TokenIn  common.Address
	TokenOut common.Address
	Reserves [2]fixedpoint.Amount // [reserve_in, reserve_out], aligned to TokenIn/TokenOut
	Fee      Fee
}

// AmountOut computes the output amount for a given input, or false if
// the trade is invalid (zero pools, overflow, or a post-trade reserve
// violation).
func (p Pool) AmountOut(in fixedpoint.Amount) (fixedpoint.Amount, bool) {
	reserveIn, reserveOut := p.Reserves[0], p.Reserves[1]

	feeComplement, err := fixedpoint.Sub(p.Fee.Denom, p.Fee.Num)
	if err != nil {
		return fixedpoint.Amount{}, false
	}

	numerator, err := fixedpoint.Mul(in, feeComplement)
	if err != nil {
		return fixedpoint.Amount{}, false
	}
	numerator, err = fixedpoint.Mul(numerator, reserveOut)
	if err != nil {
		return fixedpoint.Amount{}, false
	}

	scaledReserveIn, err := fixedpoint.Mul(reserveIn, p.Fee.Denom)
	if err != nil {
		return fixedpoint.Amount{}, false
	}
	inTimesFee, err := fixedpoint.Mul(in, feeComplement)
	if err != nil {
		return fixedpoint.Amount{}, false
	}
	denominator, err := fixedpoint.Add(scaledReserveIn, inTimesFee)
	if err != nil {
		return fixedpoint.Amount{}, false
	}
	if denominator.IsZero() {
		return fixedpoint.Amount{}, false
	}

	out, err := fixedpoint.Div(numerator, denominator)
	if err != nil {
		return fixedpoint.Amount{}, false
	}

	newReserveIn, err := fixedpoint.Add(reserveIn, in)
	if err != nil {
		return fixedpoint.Amount{}, false
	}
	newReserveOut, err := fixedpoint.Sub(reserveOut, out)
	if err != nil {
		return fixedpoint.Amount{}, false
	}
	if !checkFinalReserves(newReserveIn, newReserveOut) {
		return fixedpoint.Amount{}, false
	}

	return out, true
}

// AmountIn computes the input amount needed for a desired output, or
// false if the trade is invalid.
func (p Pool) AmountIn(out fixedpoint.Amount) (fixedpoint.Amount, bool) {
	reserveIn, reserveOut := p.Reserves[0], p.Reserves[1]

	if out.Cmp(reserveOut) >= 0 {
		return fixedpoint.Amount{}, false
	}

	feeComplement, err := fixedpoint.Sub(p.Fee.Denom, p.Fee.Num)
	if err != nil {
		return fixedpoint.Amount{}, false
	}

	numerator, err := fixedpoint.Mul(reserveIn, out)
	if err != nil {
		return fixedpoint.Amount{}, false
	}
	numerator, err = fixedpoint.Mul(numerator, p.Fee.Denom)
	if err != nil {
		return fixedpoint.Amount{}, false
	}

	reserveOutMinusOut, err := fixedpoint.Sub(reserveOut, out)
	if err != nil {
		return fixedpoint.Amount{}, false
	}
	denominator, err := fixedpoint.Mul(reserveOutMinusOut, feeComplement)
	if err != nil {
		return fixedpoint.Amount{}, false
	}
	if denominator.IsZero() {
		return fixedpoint.Amount{}, false
	}

	quotient, err := fixedpoint.Div(numerator, denominator)
	if err != nil {
		return fixedpoint.Amount{}, false
	}
	in, err := fixedpoint.Add(quotient, fixedpoint.NewFromUint64(1))
	if err != nil {
		return fixedpoint.Amount{}, false
	}

	newReserveIn, err := fixedpoint.Add(reserveIn, in)
	if err != nil {
		return fixedpoint.Amount{}, false
	}
	newReserveOut, err := fixedpoint.Sub(reserveOut, out)
	if err != nil {
		return fixedpoint.Amount{}, false
	}
	if !checkFinalReserves(newReserveIn, newReserveOut) {
		return fixedpoint.Amount{}, false
	}

	return in, true
}

// checkFinalReserves enforces the post-trade invariant: the input-side
// reserve must not exceed 2^112-1 and the output-side reserve must
// remain positive.
func checkFinalReserves(reserveIn, reserveOut fixedpoint.Amount) bool {
	if reserveIn.Cmp(maxReserve) > 0 {
		return false
	}
	if reserveOut.IsZero() {
		return false
	}
	return true
}
