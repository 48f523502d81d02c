package mechanism

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// reserved is a placeholder for a mechanism tag the registry enumerates
// but does not implement (discriminatory/pay-as-bid, descending-price,
// sealed first-price). It always fails to clear, so the registry's
// availability probe reports it as unavailable.
type reserved struct {
	tag Tag
}

func (r reserved) Tag() Tag { return r.tag }

func (r reserved) Clear([]Bid, decimal.Decimal, decimal.Decimal) (Result, error) {
	return Result{}, fmt.Errorf("%w: %s", ErrUnimplemented, r.tag)
}
