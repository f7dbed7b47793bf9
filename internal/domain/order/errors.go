package order

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/batchauction/engine/pkg/fixedpoint"
)

// PricingError is returned by trade economics when a price or surplus
// calculation cannot be completed. It wraps either a missing auction
// price or an underlying fixedpoint.MathError.
type PricingError struct {
	Token   common.Address // set only for MissingPrice
	Missing bool
	Err     error
}

func (e *PricingError) Error() string {
	if e.Missing {
		return fmt.Sprintf("pricing: missing price for token %s", e.Token)
	}
	return fmt.Sprintf("pricing: %v", e.Err)
}

func (e *PricingError) Unwrap() error { return e.Err }

func missingPriceErr(token common.Address) error {
	return &PricingError{Token: token, Missing: true}
}

func mathPricingErr(err error) error {
	return &PricingError{Err: err}
}

// AsMathError unwraps err into a *fixedpoint.MathError if it carries
// one, for callers that branch on the overflow/underflow/div-by-zero
// kind rather than the pricing-specific wrapper.
func AsMathError(err error) (*fixedpoint.MathError, bool) {
	var mathErr *fixedpoint.MathError
	ok := errors.As(err, &mathErr)
	return mathErr, ok
}
