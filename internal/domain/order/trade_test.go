package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/batchauction/engine/pkg/fixedpoint"
)

func mkAmt(v uint64) fixedpoint.Amount { return fixedpoint.NewFromUint64(v) }

func TestExecutedAmounts_SellOrder_CeilDivOnBuySide(t *testing.T) {
	// Sell order: executed sell is the fixed leg, executed buy rounds up.
	tr := &Trade{
		Side:     Sell,
		Sell:     Asset{Amount: mkAmt(1000)},
		Buy:      Asset{Amount: mkAmt(900)},
		Executed: mkAmt(1000),
		Prices: TradePrices{
			Custom: Prices{Sell: mkAmt(3), Buy: mkAmt(7)}, // 1000*3/7 = 428.57 -> ceil 429
		},
	}

	sellAmt, err := tr.ExecutedSellAmount()
	require.NoError(t, err)
	assert.Equal(t, "1000", sellAmt.String())

	buyAmt, err := tr.ExecutedBuyAmount()
	require.NoError(t, err)
	assert.Equal(t, "429", buyAmt.String())
}

func TestExecutedAmounts_BuyOrder(t *testing.T) {
	tr := &Trade{
		Side:     Buy,
		Sell:     Asset{Amount: mkAmt(1000)},
		Buy:      Asset{Amount: mkAmt(500)},
		Executed: mkAmt(500),
		Prices: TradePrices{
			Custom: Prices{Sell: mkAmt(2), Buy: mkAmt(1)}, // buy fixed; sell = 500*1/2 = 250
		},
	}

	buyAmt, err := tr.ExecutedBuyAmount()
	require.NoError(t, err)
	assert.Equal(t, "500", buyAmt.String())

	sellAmt, err := tr.ExecutedSellAmount()
	require.NoError(t, err)
	assert.Equal(t, "250", sellAmt.String())
}

func TestSurplusFee_S6(t *testing.T) {
	// S6: surplus_post = 100, factor = 0.1, max_volume_factor = 1 -> fee ~= 11.
	tr := &Trade{Side: Sell}
	fee, err := tr.surplusFee(mkAmt(100), 0.1)
	require.NoError(t, err)
	// 100 * 0.1/0.9 = 11.11 -> truncated to 11 via float->uint256 conversion
	assert.Equal(t, "11", fee.String())
}

func TestSurplusPolicy_BoundedByVolumeAndMin(t *testing.T) {
	// Property 2: fee <= min(surplus, volume_fee) and fee >= 0.
	tr := &Trade{
		Side:     Sell,
		Sell:     Asset{Amount: mkAmt(1000)},
		Buy:      Asset{Amount: mkAmt(900)},
		Executed: mkAmt(1000),
		Prices: TradePrices{
			Custom: Prices{Sell: mkAmt(1000), Buy: mkAmt(1000)}, // no price change; surplus is small
		},
	}

	fee, err := tr.protocolFee(SurplusPolicy{Factor: 0.1, MaxVolumeFactor: 0.01})
	require.NoError(t, err)

	byVolume, err := tr.volumeFee(0.01)
	require.NoError(t, err)

	assert.True(t, fee.Cmp(byVolume) <= 0, "fee must not exceed the volume cap")
	assert.True(t, fee.Cmp(fixedpoint.Zero) >= 0, "fee must be non-negative")
}

func TestProtocolFees_ChainedPoliciesRebuildPrices(t *testing.T) {
	tr := &Trade{
		Side:     Sell,
		Sell:     Asset{Amount: mkAmt(1_000_000)},
		Buy:      Asset{Amount: mkAmt(900_000)},
		Executed: mkAmt(1_000_000),
		Prices: TradePrices{
			Uniform: Prices{Sell: mkAmt(1), Buy: mkAmt(1)},
			Custom:  Prices{Sell: mkAmt(1), Buy: mkAmt(1)},
		},
	}

	fees, err := tr.ProtocolFees([]FeePolicy{
		VolumePolicy{Factor: 0.01},
		VolumePolicy{Factor: 0.02},
	})
	require.NoError(t, err)
	require.Len(t, fees, 2)
	// Declaration order preserved.
	assert.Equal(t, VolumePolicy{Factor: 0.01}, fees[0].Policy)
	assert.Equal(t, VolumePolicy{Factor: 0.02}, fees[1].Policy)
}

func TestAdjustQuoteToOrderLimits_SellSide(t *testing.T) {
	o := Order{
		Side: Sell,
		Sell: Asset{Amount: mkAmt(1000)},
		Buy:  Asset{Amount: mkAmt(100)},
	}
	quote := Quote{Sell: mkAmt(1000), Buy: mkAmt(200), Fee: mkAmt(10)}

	limits, err := adjustQuoteToOrderLimits(o, quote)
	require.NoError(t, err)
	assert.Equal(t, "1000", limits.Sell.String())
	// quote_buy_amount = 200 - (10*200/1000) = 198; scaled = 198*1000/1000 = 198
	// order.buy=100, so max(100,198) = 198
	assert.Equal(t, "198", limits.Buy.String())
}
