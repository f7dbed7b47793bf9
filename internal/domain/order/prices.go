package order

import "github.com/batchauction/engine/pkg/fixedpoint"

// Prices is a pair of per-trade clearing prices for the sell and buy
// token of a single trade (not a full auction-wide price vector).
type Prices struct {
	Sell fixedpoint.Amount
	Buy  fixedpoint.Amount
}

// TradePrices carries both the auction-wide uniform prices and the
// per-trade custom prices that differ from uniform by exactly the
// trade's protocol fee.
type TradePrices struct {
	Uniform Prices
	Custom  Prices
}

// PriceLimits is a sell/buy amount pair used as the reference limit a
// trade's surplus is measured against: either the order's own limits,
// or a quote rescaled to the order's limits.
type PriceLimits struct {
	Sell fixedpoint.Amount
	Buy  fixedpoint.Amount
}
