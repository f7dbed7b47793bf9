// Package order models off-chain trade intents and the per-trade
// surplus/fee economics the auction engine computes over them.
package order

import (
	"encoding/hex"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/batchauction/engine/pkg/fixedpoint"
)

// Side is the direction of an order: the user either sells a fixed
// amount of the sell token, or buys a fixed amount of the buy token.
type Side int

const (
	Sell Side = iota
	Buy
)

func (s Side) String() string {
	if s == Buy {
		return "buy"
	}
	return "sell"
}

// Kind classifies how an order participates in settlement.
type Kind int

const (
	Market Kind = iota
	Limit
	Liquidity
)

// UID is an opaque, fixed-width order identity.
type UID [32]byte

func (u UID) String() string { return hex.EncodeToString(u[:]) }

// IsZero reports whether the UID was never assigned.
func (u UID) IsZero() bool { return u == UID{} }

// Asset pairs a token with an amount, used both for order limits (sell
// amount / min buy amount) and for trade legs.
type Asset struct {
	Token  common.Address
	Amount fixedpoint.Amount
}

// Fill captures whether an order is fully or partially fillable. A
// non-partial order's Available is meaningless; IsPartial must be
// checked first.
type Fill struct {
	IsPartial bool
	// Available is the remaining fillable amount, in target-amount units
	// (sell amount for Side=Sell, buy amount for Side=Buy). Must satisfy
	// Available <= the order's target amount.
	Available fixedpoint.Amount
}

// Quote is a pinned price quote an order was created against, used by
// the PriceImprovement fee policy.
type Quote struct {
	Sell fixedpoint.Amount
	Buy  fixedpoint.Amount
	Fee  fixedpoint.Amount
}

// SignatureScheme tags how Signature.Payload should be verified.
type SignatureScheme int

const (
	Eip712 SignatureScheme = iota
	EthSign
	PreSign
	Eip1271
)

// Signature is the order's signing material.
type Signature struct {
	Scheme  SignatureScheme
	Payload []byte
}

// Interaction is a call to be executed as part of settlement, either
// before or after the order's trade is applied.
type Interaction struct {
	Target common.Address
	// Token is the input token this interaction moves; only meaningful
	// when Internalize is set, for the settlement encoder's
	// non-bufferable-token check.
	Token       common.Address
	CallData    []byte
	Value       fixedpoint.Amount
	Internalize bool
}

// Order is an off-chain trade intent as shipped to solvers.
type Order struct {
	UID      UID
	Owner    common.Address
	Receiver common.Address

	Sell Asset
	Buy  Asset

	Side Side
	Kind Kind
	Fill Fill

	ValidTo     time.Time
	AppData     common.Hash
	Signature   Signature
	Quote       *Quote
	FeePolicies []FeePolicy

	PreInteractions  []Interaction
	PostInteractions []Interaction
}

// Target returns the amount the order is denominated against: the sell
// amount for a sell order, the buy amount for a buy order.
func (o *Order) Target() fixedpoint.Amount {
	if o.Side == Buy {
		return o.Buy.Amount
	}
	return o.Sell.Amount
}

// AvailableAmount returns the amount still fillable, scaled down for
// partial orders. An order whose available amount is zero must not be
// shipped to solvers.
func (o *Order) AvailableAmount() fixedpoint.Amount {
	if o.Fill.IsPartial {
		return o.Fill.Available
	}
	return o.Target()
}

// Shippable reports whether the order should be included in an auction
// snapshot sent to solvers.
func (o *Order) Shippable() bool {
	return !o.AvailableAmount().IsZero()
}

// UserSettleable reports whether the order may be settled on its own.
// Liquidity orders only ever accompany a user order in the same
// solution.
func (o *Order) UserSettleable() bool {
	return o.Kind != Liquidity
}
