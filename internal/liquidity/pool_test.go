package liquidity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/batchauction/engine/pkg/fixedpoint"
)

func mkPool(reserveIn, reserveOut uint64, num, denom uint64) Pool {
	return Pool{
		Reserves: [2]fixedpoint.Amount{fixedpoint.NewFromUint64(reserveIn), fixedpoint.NewFromUint64(reserveOut)},
		Fee:      Fee{Num: fixedpoint.NewFromUint64(num), Denom: fixedpoint.NewFromUint64(denom)},
	}
}

func TestAmountOut_S3(t *testing.T) {
	p := mkPool(100, 100, 3, 1000)
	out, ok := p.AmountOut(fixedpoint.NewFromUint64(10))
	require.True(t, ok)
	assert.Equal(t, "9", out.String())

	p2 := mkPool(200, 50, 3, 1000)
	out2, ok := p2.AmountOut(fixedpoint.NewFromUint64(10))
	require.True(t, ok)
	assert.Equal(t, "2", out2.String())
}

func TestAmountIn_S3(t *testing.T) {
	p := mkPool(200, 50, 3, 1000)
	in, ok := p.AmountIn(fixedpoint.NewFromUint64(10))
	require.True(t, ok)
	assert.Equal(t, "51", in.String())
}

func TestAmountIn_RejectsOutAboveReserve(t *testing.T) {
	p := mkPool(200, 50, 3, 1000)
	_, ok := p.AmountIn(fixedpoint.NewFromUint64(50))
	assert.False(t, ok)
}

func TestAmountOutThenAmountIn_RoundTripsWithinOneUnit(t *testing.T) {
	p := mkPool(1_000_000, 2_000_000, 3, 1000)
	in := fixedpoint.NewFromUint64(12345)

	out, ok := p.AmountOut(in)
	require.True(t, ok)

	roundTripIn, ok := p.AmountIn(out)
	require.True(t, ok)

	diff, err := fixedpoint.Sub(roundTripIn, in)
	if err != nil {
		diff, err = fixedpoint.Sub(in, roundTripIn)
		require.NoError(t, err)
	}
	assert.True(t, diff.Cmp(fixedpoint.NewFromUint64(1)) <= 0, "round trip must stay within 1 unit, got diff %s", diff.String())
}
