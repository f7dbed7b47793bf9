package order

// FeePolicy is a tagged variant of the ways a protocol fee can be
// computed over a trade's surplus. Exactly one of the three concrete types
// below satisfies it.
type FeePolicy interface {
	isFeePolicy()
}

// SurplusPolicy takes a cut of the surplus over the order's own limit
// price, capped by a volume-based fee.
type SurplusPolicy struct {
	// Factor is the pre-fee cut, in (0, 1).
	Factor float64
	// MaxVolumeFactor caps the fee as a fraction of trade volume, in (0, 1).
	MaxVolumeFactor float64
}

func (SurplusPolicy) isFeePolicy() {}

// PriceImprovementPolicy is like SurplusPolicy, but measures surplus
// over a pinned Quote (rescaled to the order's limits) instead of the
// order's own limit price.
type PriceImprovementPolicy struct {
	Factor          float64
	MaxVolumeFactor float64
	Quote           Quote
}

func (PriceImprovementPolicy) isFeePolicy() {}

// VolumePolicy takes a flat cut of the trade volume, regardless of
// surplus.
type VolumePolicy struct {
	Factor float64
}

func (VolumePolicy) isFeePolicy() {}
