package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrder_AvailableAmount_FullyFillable(t *testing.T) {
	o := Order{
		Side: Sell,
		Sell: Asset{Amount: mkAmt(1000)},
	}
	assert.Equal(t, "1000", o.AvailableAmount().String())
	assert.True(t, o.Shippable())
}

func TestOrder_AvailableAmount_Partial(t *testing.T) {
	o := Order{
		Side: Sell,
		Sell: Asset{Amount: mkAmt(1000)},
		Fill: Fill{IsPartial: true, Available: mkAmt(250)},
	}
	assert.Equal(t, "250", o.AvailableAmount().String())
	assert.True(t, o.Shippable())
}

func TestOrder_NotShippableWhenFullyFilled(t *testing.T) {
	o := Order{
		Side: Sell,
		Sell: Asset{Amount: mkAmt(1000)},
		Fill: Fill{IsPartial: true, Available: mkAmt(0)},
	}
	assert.False(t, o.Shippable())
}

func TestOrder_Target_BuySide(t *testing.T) {
	o := Order{
		Side: Buy,
		Sell: Asset{Amount: mkAmt(1000)},
		Buy:  Asset{Amount: mkAmt(200)},
	}
	assert.Equal(t, "200", o.Target().String())
}

func TestOrder_UserSettleable(t *testing.T) {
	market := Order{Kind: Market}
	liquidity := Order{Kind: Liquidity}
	assert.True(t, market.UserSettleable())
	assert.False(t, liquidity.UserSettleable())
}

func TestUID_StringAndIsZero(t *testing.T) {
	var u UID
	assert.True(t, u.IsZero())

	u[0] = 0xab
	assert.False(t, u.IsZero())
	assert.Equal(t, "ab00000000000000000000000000000000000000000000000000000000000000", u.String())
}
