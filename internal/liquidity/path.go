package liquidity

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/batchauction/engine/pkg/fixedpoint"
)

// Path is an ordered sequence of tokens to route a trade through:
// [sell, b1, ..., bk, buy], with every intermediate a distinct base
// token.
type Path []common.Address

// Candidates enumerates every path from sell to buy through 0 to
// maxHops distinct intermediates drawn from baseTokens. Base tokens
// equal to sell or buy are never used as intermediates.
//
// The direct [sell, buy] path is unconditionally included, then every
// permutation of length k=0..maxHops of the usable base tokens
// contributes its own [sell, ...perm, buy] path, including the k=0
// permutation, which yields the direct path a second time. That
// double-count is intentional and left uncollapsed.
func Candidates(sell, buy common.Address, baseTokens []common.Address, maxHops int) []Path {
	usable := make([]common.Address, 0, len(baseTokens))
	for _, b := range baseTokens {
		if b != sell && b != buy {
			usable = append(usable, b)
		}
	}

	out := []Path{{sell, buy}}

	var walk func(prefix []common.Address, remaining []common.Address, hopsLeft int)
	walk = func(prefix []common.Address, remaining []common.Address, hopsLeft int) {
		path := make(Path, 0, len(prefix)+2)
		path = append(path, sell)
		path = append(path, prefix...)
		path = append(path, buy)
		out = append(out, path)

		if hopsLeft == 0 {
			return
		}
		for i, tok := range remaining {
			next := append(append([]common.Address{}, prefix...), tok)
			rest := make([]common.Address, 0, len(remaining)-1)
			rest = append(rest, remaining[:i]...)
			rest = append(rest, remaining[i+1:]...)
			walk(next, rest, hopsLeft-1)
		}
	}
	walk(nil, usable, maxHops)

	return out
}

// PoolLookup resolves the pool between two tokens at a fixed block
// context, or (Pool{}, false) if none exists. The encoder-side
// collaborator supplies this.
type PoolLookup func(tokenIn, tokenOut common.Address) (Pool, bool)

// EstimateBuy folds forward along path, picking the maximum output at
// each hop; returns false if any hop has no pool or the running amount
// hits zero.
func EstimateBuy(sellAmount fixedpoint.Amount, path Path, lookups ...PoolLookup) (fixedpoint.Amount, bool) {
	amount := sellAmount
	for i := 0; i+1 < len(path); i++ {
		if amount.IsZero() {
			return fixedpoint.Amount{}, false
		}
		best, ok := bestOut(path[i], path[i+1], amount, lookups)
		if !ok {
			return fixedpoint.Amount{}, false
		}
		amount = best
	}
	return amount, true
}

func bestOut(tokenIn, tokenOut common.Address, amount fixedpoint.Amount, lookups []PoolLookup) (fixedpoint.Amount, bool) {
	var best fixedpoint.Amount
	found := false
	for _, lookup := range lookups {
		pool, ok := lookup(tokenIn, tokenOut)
		if !ok {
			continue
		}
		out, ok := pool.AmountOut(amount)
		if !ok {
			continue
		}
		if !found || out.Cmp(best) > 0 {
			best, found = out, true
		}
	}
	return best, found
}

// EstimateSell folds backward along path, picking the minimum input at
// each hop (a hop with no pool counts as +infinity and forces failure
// unless another lookup provides one).
func EstimateSell(buyAmount fixedpoint.Amount, path Path, lookups ...PoolLookup) (fixedpoint.Amount, bool) {
	amount := buyAmount
	for i := len(path) - 1; i > 0; i-- {
		best, ok := bestIn(path[i-1], path[i], amount, lookups)
		if !ok {
			return fixedpoint.Amount{}, false
		}
		amount = best
	}
	return amount, true
}

func bestIn(tokenIn, tokenOut common.Address, amount fixedpoint.Amount, lookups []PoolLookup) (fixedpoint.Amount, bool) {
	var best fixedpoint.Amount
	found := false
	for _, lookup := range lookups {
		pool, ok := lookup(tokenIn, tokenOut)
		if !ok {
			continue
		}
		in, ok := pool.AmountIn(amount)
		if !ok {
			continue
		}
		if !found || in.Cmp(best) < 0 {
			best, found = in, true
		}
	}
	return best, found
}

// GasEstimate is the routed-path gas cost: a 50_000 base plus 60_000
// for each hop, where a hop is one pool edge between consecutive tokens
// of the path (a direct two-token path has one hop).
func GasEstimate(path Path) uint64 {
	hops := len(path) - 1
	if hops < 0 {
		hops = 0
	}
	return 50_000 + uint64(hops)*60_000
}
