package order

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"

	"github.com/batchauction/engine/pkg/fixedpoint"
)

// ErrUnknownFeePolicy is returned when a FeePolicy implementation other
// than the three defined in this package is encountered.
var ErrUnknownFeePolicy = errors.New("order: unknown fee policy")

// Trade is a single fulfillment or JIT order execution: the bare
// minimum needed to compute surplus, fees and score. Sell/Buy here are the
// order's *limit* amounts, not the executed amounts.
type Trade struct {
	UID      UID
	Sell     Asset
	Buy      Asset
	Side     Side
	Executed fixedpoint.Amount
	Prices   TradePrices

	// Receiver and BuyIsNative are only needed by the settlement
	// encoder's partial access-list step: a user trade whose buy side is the
	// native currency and whose receiver is a smart contract needs a 1-wei
	// native-transfer access-list probe.
	Receiver    common.Address
	BuyIsNative bool
}

// ExecutedSellAmount returns the effective amount that left the user's
// wallet, including all fees already folded into Prices.Custom.
func (t *Trade) ExecutedSellAmount() (fixedpoint.Amount, error) {
	if t.Side == Sell {
		return t.Executed, nil
	}
	out, err := fixedpoint.MulDiv(t.Executed, t.Prices.Custom.Buy, t.Prices.Custom.Sell)
	if err != nil {
		return fixedpoint.Amount{}, mathPricingErr(err)
	}
	return out, nil
}

// ExecutedBuyAmount returns the effective amount the user received,
// including all fees. Ceiling division matches the on-chain settlement
// contract's own rounding for buy amounts.
func (t *Trade) ExecutedBuyAmount() (fixedpoint.Amount, error) {
	if t.Side == Buy {
		return t.Executed, nil
	}
	out, err := fixedpoint.MulDivCeil(t.Executed, t.Prices.Custom.Sell, t.Prices.Custom.Buy)
	if err != nil {
		return fixedpoint.Amount{}, mathPricingErr(err)
	}
	return out, nil
}

// SurplusToken is the token surplus is denominated in: the buy token
// for sell orders, the sell token for buy orders.
func (t *Trade) SurplusToken() Asset {
	if t.Side == Buy {
		return t.Sell
	}
	return t.Buy
}

func (t *Trade) surplusOver(prices Prices, limits PriceLimits) (fixedpoint.Amount, error) {
	switch t.Side {
	case Buy:
		limitSell, err := fixedpoint.MulDiv(limits.Sell, t.Executed, limits.Buy)
		if err != nil {
			return fixedpoint.Amount{}, mathPricingErr(err)
		}
		sold, err := fixedpoint.MulDiv(t.Executed, prices.Buy, prices.Sell)
		if err != nil {
			return fixedpoint.Amount{}, mathPricingErr(err)
		}
		surplus, err := fixedpoint.Sub(limitSell, sold)
		if err != nil {
			return fixedpoint.Amount{}, mathPricingErr(err)
		}
		return surplus, nil
	default: // Sell
		limitBuy, err := fixedpoint.MulDivCeil(t.Executed, limits.Buy, limits.Sell)
		if err != nil {
			return fixedpoint.Amount{}, mathPricingErr(err)
		}
		bought, err := fixedpoint.MulDivCeil(t.Executed, prices.Sell, prices.Buy)
		if err != nil {
			return fixedpoint.Amount{}, mathPricingErr(err)
		}
		surplus, err := fixedpoint.Sub(bought, limitBuy)
		if err != nil {
			return fixedpoint.Amount{}, mathPricingErr(err)
		}
		return surplus, nil
	}
}

// SurplusOverLimitPrice is the post-fee surplus, measured at the
// trade's custom prices against the order's own limit.
func (t *Trade) SurplusOverLimitPrice() (fixedpoint.Amount, error) {
	return t.surplusOver(t.Prices.Custom, PriceLimits{Sell: t.Sell.Amount, Buy: t.Buy.Amount})
}

// SurplusOverLimitPriceBeforeFee is the pre-fee surplus, measured at
// the auction-wide uniform prices.
func (t *Trade) SurplusOverLimitPriceBeforeFee() (fixedpoint.Amount, error) {
	return t.surplusOver(t.Prices.Uniform, PriceLimits{Sell: t.Sell.Amount, Buy: t.Buy.Amount})
}

// TotalFee is the pre-fee surplus minus the post-fee surplus; it fails
// if that would be negative.
func (t *Trade) TotalFee() (fixedpoint.Amount, error) {
	before, err := t.SurplusOverLimitPriceBeforeFee()
	if err != nil {
		return fixedpoint.Amount{}, err
	}
	after, err := t.SurplusOverLimitPrice()
	if err != nil {
		return fixedpoint.Amount{}, err
	}
	fee, err := fixedpoint.Sub(before, after)
	if err != nil {
		return fixedpoint.Amount{}, mathPricingErr(err)
	}
	return fee, nil
}

// SurplusInEther converts the post-fee surplus into ether using the
// auction's native-token prices, for the Surplus score mode.
func (t *Trade) SurplusInEther(nativePrices map[common.Address]fixedpoint.Amount) (fixedpoint.Amount, error) {
	surplus, err := t.SurplusOverLimitPrice()
	if err != nil {
		return fixedpoint.Amount{}, err
	}
	token := t.SurplusToken().Token
	price, ok := nativePrices[token]
	if !ok {
		return fixedpoint.Amount{}, missingPriceErr(token)
	}
	oneEther := fixedpoint.NewFromUint64(1_000_000_000_000_000_000)
	out, err := fixedpoint.MulDiv(surplus, price, oneEther)
	if err != nil {
		return fixedpoint.Amount{}, mathPricingErr(err)
	}
	return out, nil
}

// sellAmount is the effective amount that left the user's wallet under
// the trade's current custom prices (used while chaining fee policies).
func (t *Trade) sellAmount() (fixedpoint.Amount, error) { return t.ExecutedSellAmount() }

// buyAmount is the effective amount the user received under the
// trade's current custom prices (used while chaining fee policies).
func (t *Trade) buyAmount() (fixedpoint.Amount, error) { return t.ExecutedBuyAmount() }

// calculateCustomPrices derives the custom prices that would exclude
// protocolFee from the trade, expressed over the actual traded amounts.
func (t *Trade) calculateCustomPrices(protocolFee fixedpoint.Amount) (Prices, error) {
	buy, err := t.buyAmount()
	if err != nil {
		return Prices{}, err
	}
	sell, err := t.sellAmount()
	if err != nil {
		return Prices{}, err
	}

	var p Prices
	if t.Side == Sell {
		p.Sell, err = fixedpoint.Add(buy, protocolFee)
		if err != nil {
			return Prices{}, mathPricingErr(err)
		}
		p.Buy = sell
	} else {
		p.Sell = buy
		p.Buy, err = fixedpoint.Sub(sell, protocolFee)
		if err != nil {
			return Prices{}, mathPricingErr(err)
		}
	}
	return p, nil
}

// surplusFee applies a Surplus-style factor to a (post-fee) surplus
// amount, converting the pre-fee factor into the post-fee factor
// f/(1-f).
func (t *Trade) surplusFee(surplus fixedpoint.Amount, factor float64) (fixedpoint.Amount, error) {
	out, err := fixedpoint.MulFloat(surplus, factor/(1.0-factor))
	if err != nil {
		return fixedpoint.Amount{}, mathPricingErr(err)
	}
	return out, nil
}

// volumeFee applies a Volume-style factor to the trade's executed
// amount in the surplus token, with the post-fee factor derivation
// differing by side: f/(1-f) for Sell, f/(1+f) for Buy.
func (t *Trade) volumeFee(factor float64) (fixedpoint.Amount, error) {
	var executed fixedpoint.Amount
	var err error
	if t.Side == Buy {
		executed, err = t.sellAmount()
	} else {
		executed, err = t.buyAmount()
	}
	if err != nil {
		return fixedpoint.Amount{}, err
	}

	adjusted := factor / (1.0 - factor)
	if t.Side == Buy {
		adjusted = factor / (1.0 + factor)
	}

	out, err := fixedpoint.MulFloat(executed, adjusted)
	if err != nil {
		return fixedpoint.Amount{}, mathPricingErr(err)
	}
	return out, nil
}

// priceImprovement is the Surplus-shaped quantity used by the
// PriceImprovement policy: surplus measured over the rescaled quote
// instead of the order's own limit. A negative surplus here just means
// no improvement, not an error.
func (t *Trade) priceImprovement(quote Quote) (fixedpoint.Amount, error) {
	limits, err := adjustQuoteToOrderLimits(Order{Sell: t.Sell, Buy: t.Buy, Side: t.Side}, quote)
	if err != nil {
		return fixedpoint.Amount{}, err
	}
	surplus, err := t.surplusOver(t.Prices.Custom, limits)
	if err != nil {
		if mathErr, ok := AsMathError(err); ok && mathErr.Kind == fixedpoint.Negative {
			return fixedpoint.Zero, nil
		}
		return fixedpoint.Amount{}, err
	}
	return surplus, nil
}

func minAmount(a, b fixedpoint.Amount) fixedpoint.Amount {
	if a.Cmp(b) <= 0 {
		return a
	}
	return b
}

// protocolFee computes a single fee policy's contribution, denominated
// in the surplus token, against the trade's current custom prices.
func (t *Trade) protocolFee(policy FeePolicy) (fixedpoint.Amount, error) {
	switch p := policy.(type) {
	case SurplusPolicy:
		surplus, err := t.SurplusOverLimitPrice()
		if err != nil {
			return fixedpoint.Amount{}, err
		}
		bySurplus, err := t.surplusFee(surplus, p.Factor)
		if err != nil {
			return fixedpoint.Amount{}, err
		}
		byVolume, err := t.volumeFee(p.MaxVolumeFactor)
		if err != nil {
			return fixedpoint.Amount{}, err
		}
		return minAmount(bySurplus, byVolume), nil
	case PriceImprovementPolicy:
		improvement, err := t.priceImprovement(p.Quote)
		if err != nil {
			return fixedpoint.Amount{}, err
		}
		bySurplus, err := t.surplusFee(improvement, p.Factor)
		if err != nil {
			return fixedpoint.Amount{}, err
		}
		byVolume, err := t.volumeFee(p.MaxVolumeFactor)
		if err != nil {
			return fixedpoint.Amount{}, err
		}
		return minAmount(bySurplus, byVolume), nil
	case VolumePolicy:
		return t.volumeFee(p.Factor)
	default:
		return fixedpoint.Amount{}, ErrUnknownFeePolicy
	}
}

// ExecutedFee is one fee policy's contribution to a trade, denominated
// in the surplus token.
type ExecutedFee struct {
	Policy FeePolicy
	Fee    Asset
}

// ProtocolFees walks the trade's fee policies from the last-declared to
// the first, computing each fee against progressively fee-stripped
// custom prices so that an earlier (outer) policy sees amounts as if
// later (inner) policies' fees were already removed.
func (t *Trade) ProtocolFees(policies []FeePolicy) ([]ExecutedFee, error) {
	current := *t
	total := fixedpoint.Zero
	fees := make([]ExecutedFee, len(policies))

	for i := len(policies) - 1; i >= 0; i-- {
		fee, err := current.protocolFee(policies[i])
		if err != nil {
			return nil, err
		}
		fees[i] = ExecutedFee{
			Policy: policies[i],
			Fee:    Asset{Token: t.SurplusToken().Token, Amount: fee},
		}

		total, err = fixedpoint.Add(total, fee)
		if err != nil {
			return nil, mathPricingErr(err)
		}

		if i != 0 {
			current.Prices.Custom, err = current.calculateCustomPrices(total)
			if err != nil {
				return nil, err
			}
		}
	}

	return fees, nil
}

// adjustQuoteToOrderLimits rescales a pinned quote into the order's
// limit units so it can be compared directly against the order's own
// sell/buy amounts.
func adjustQuoteToOrderLimits(o Order, quote Quote) (PriceLimits, error) {
	switch o.Side {
	case Sell:
		feeShare, err := fixedpoint.MulDiv(quote.Fee, quote.Buy, quote.Sell)
		if err != nil {
			return PriceLimits{}, mathPricingErr(err)
		}
		quoteBuyAmount, err := fixedpoint.Sub(quote.Buy, feeShare)
		if err != nil {
			return PriceLimits{}, mathPricingErr(err)
		}
		scaledBuyAmount, err := fixedpoint.MulDiv(quoteBuyAmount, o.Sell.Amount, quote.Sell)
		if err != nil {
			return PriceLimits{}, mathPricingErr(err)
		}
		buyAmount := o.Buy.Amount
		if scaledBuyAmount.Cmp(buyAmount) > 0 {
			buyAmount = scaledBuyAmount
		}
		return PriceLimits{Sell: o.Sell.Amount, Buy: buyAmount}, nil
	default: // Buy
		sum, err := fixedpoint.Add(quote.Sell, quote.Fee)
		if err != nil {
			return PriceLimits{}, mathPricingErr(err)
		}
		scaledSellAmount, err := fixedpoint.MulDiv(sum, o.Buy.Amount, quote.Buy)
		if err != nil {
			return PriceLimits{}, mathPricingErr(err)
		}
		sellAmount := o.Sell.Amount
		if scaledSellAmount.Cmp(sellAmount) < 0 {
			sellAmount = scaledSellAmount
		}
		return PriceLimits{Sell: sellAmount, Buy: o.Buy.Amount}, nil
	}
}
