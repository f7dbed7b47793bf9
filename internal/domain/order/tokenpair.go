package order

import (
	"bytes"

	"github.com/ethereum/go-ethereum/common"
)

// TokenPair is an unordered pair of two distinct tokens, canonically
// ordered so that equal pairs compare and hash equal regardless of the
// order their tokens were supplied in.
type TokenPair struct {
	a, b common.Address
}

// NewTokenPair builds a canonical TokenPair, or false if the two tokens
// are identical (a pair requires two distinct tokens).
func NewTokenPair(x, y common.Address) (TokenPair, bool) {
	if x == y {
		return TokenPair{}, false
	}
	if bytes.Compare(x.Bytes(), y.Bytes()) <= 0 {
		return TokenPair{a: x, b: y}, true
	}
	return TokenPair{a: y, b: x}, true
}

// Get returns the pair's two tokens in canonical order.
func (p TokenPair) Get() (common.Address, common.Address) { return p.a, p.b }

// Contains reports whether token is one of the pair's tokens.
func (p TokenPair) Contains(token common.Address) bool {
	return p.a == token || p.b == token
}

// Other returns the token on the other side of the pair from token. It
// panics if token is not part of the pair; callers must check
// Contains first when the token isn't known to belong to the pair.
func (p TokenPair) Other(token common.Address) common.Address {
	if p.a == token {
		return p.b
	}
	if p.b == token {
		return p.a
	}
	panic("order: token is not part of the pair")
}
