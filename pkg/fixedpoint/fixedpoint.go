// Package fixedpoint implements the checked 256-bit arithmetic used
// throughout the auction engine: token amounts, clearing prices and the
// surplus/fee formulas are all expressed in terms of a single non-negative
// integer type with explicit overflow, underflow and division-by-zero
// reporting instead of silent wraparound.
package fixedpoint

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
)

// ErrKind tags the three ways checked arithmetic can fail.
type ErrKind int

const (
	// Overflow means a sum or product did not fit in 256 bits.
	Overflow ErrKind = iota
	// DivisionByZero means the divisor was zero.
	DivisionByZero
	// Negative means a subtraction would have gone below zero.
	Negative
)

func (k ErrKind) String() string {
	switch k {
	case Overflow:
		return "overflow"
	case DivisionByZero:
		return "division by zero"
	case Negative:
		return "negative"
	default:
		return "unknown math error"
	}
}

// MathError is the single error type every checked operation in this
// package returns. Callers branch on Kind, not on string matching.
type MathError struct {
	Kind ErrKind
	Op   string
}

func (e *MathError) Error() string {
	return fmt.Sprintf("fixedpoint: %s: %s", e.Op, e.Kind)
}

func mathErr(op string, kind ErrKind) error {
	return &MathError{Kind: kind, Op: op}
}

// Amount is a non-negative 256-bit token amount or price.
type Amount struct {
	v uint256.Int
}

// Zero is the additive identity.
var Zero = Amount{}

// NewFromUint64 builds an Amount from a uint64.
func NewFromUint64(v uint64) Amount {
	var a Amount
	a.v.SetUint64(v)
	return a
}

// NewFromString builds an Amount from a big.Int-compatible decimal string,
// returning an error if the value doesn't fit in 256 bits or is negative.
func NewFromString(s string) (Amount, error) {
	var a Amount
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return Amount{}, fmt.Errorf("fixedpoint: parse %q: %w", s, err)
	}
	a.v = *v
	return a, nil
}

// IsZero reports whether the amount is zero.
func (a Amount) IsZero() bool { return a.v.IsZero() }

// Cmp compares two amounts the way big.Int.Cmp does.
func (a Amount) Cmp(b Amount) int { return a.v.Cmp(&b.v) }

// String renders the amount in decimal.
func (a Amount) String() string { return a.v.Dec() }

// Uint64 returns the low 64 bits, truncating silently; only meant for
// values already known to be small (e.g. gas amounts).
func (a Amount) Uint64() uint64 { return a.v.Uint64() }

// Float64 converts to a float64, used only at the policy-factor boundary.
func (a Amount) Float64() float64 {
	f := new(big.Float).SetInt(a.v.ToBig())
	out, _ := f.Float64()
	return out
}

// Add returns a+b, or an Overflow MathError.
func Add(a, b Amount) (Amount, error) {
	var out Amount
	_, overflow := out.v.AddOverflow(&a.v, &b.v)
	if overflow {
		return Amount{}, mathErr("add", Overflow)
	}
	return out, nil
}

// Sub returns a-b, or a Negative MathError if b > a.
func Sub(a, b Amount) (Amount, error) {
	if a.Cmp(b) < 0 {
		return Amount{}, mathErr("sub", Negative)
	}
	var out Amount
	out.v.Sub(&a.v, &b.v)
	return out, nil
}

// Mul returns a*b, or an Overflow MathError.
func Mul(a, b Amount) (Amount, error) {
	var out Amount
	_, overflow := out.v.MulOverflow(&a.v, &b.v)
	if overflow {
		return Amount{}, mathErr("mul", Overflow)
	}
	return out, nil
}

// Div returns floor(a/b), or a DivisionByZero MathError if b is zero.
func Div(a, b Amount) (Amount, error) {
	if b.IsZero() {
		return Amount{}, mathErr("div", DivisionByZero)
	}
	var out Amount
	out.v.Div(&a.v, &b.v)
	return out, nil
}

// CeilDiv returns ceil(a/b): the distinct rounding primitive the
// on-chain settlement contract uses for buy-side amounts. Must never be
// swapped for Div where the contract uses ceiling division or prices
// silently disagree with the chain.
func CeilDiv(a, b Amount) (Amount, error) {
	if b.IsZero() {
		return Amount{}, mathErr("ceil_div", DivisionByZero)
	}
	var quo, rem uint256.Int
	quo.DivMod(&a.v, &b.v, &rem)
	out := Amount{v: quo}
	if !rem.IsZero() {
		var withOne Amount
		withOne.v.SetOne()
		return Add(out, withOne)
	}
	return out, nil
}

// MulDiv returns floor(a*b/c), matching the on-chain contract's own
// checked_mul then checked_div sequence bit for bit: the intermediate
// product must itself fit in 256 bits, exactly like Solidity's unchecked
// multiplication would revert rather than silently truncate.
func MulDiv(a, b, c Amount) (Amount, error) {
	prod, err := Mul(a, b)
	if err != nil {
		return Amount{}, err
	}
	return Div(prod, c)
}

// MulDivCeil returns ceil(a*b/c), the ceiling counterpart of MulDiv used
// wherever the settlement contract rounds up (e.g. executed buy amounts,
// limit_buy, CeilDiv-derived custom prices).
func MulDivCeil(a, b, c Amount) (Amount, error) {
	if c.IsZero() {
		return Amount{}, mathErr("mul_div_ceil", DivisionByZero)
	}
	prod, err := Mul(a, b)
	if err != nil {
		return Amount{}, err
	}
	return CeilDiv(prod, c)
}

// MulFloat multiplies an Amount by a float64 factor, saturating to an
// Overflow MathError instead of silently wrapping.
func MulFloat(a Amount, factor float64) (Amount, error) {
	if factor < 0 {
		return Amount{}, mathErr("mul_float", Negative)
	}
	product := new(big.Float).Mul(new(big.Float).SetInt(a.v.ToBig()), big.NewFloat(factor))
	bigInt, _ := product.Int(nil)
	if bigInt == nil || bigInt.Sign() < 0 {
		return Amount{}, mathErr("mul_float", Overflow)
	}
	out, overflow := uint256.FromBig(bigInt)
	if overflow {
		return Amount{}, mathErr("mul_float", Overflow)
	}
	return Amount{v: *out}, nil
}
