package promo

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Kind enumerates the normalized promotion shapes.
type Kind string

const (
	// KindNone means no usable promotion.
	KindNone Kind = "NONE"
	// KindMultiBuy is a "buy N pay M" scheme such as 2x1 or 3x2.
	KindMultiBuy Kind = "MULTI_BUY"
	// KindNthUnit discounts the Nth unit of each group by a percentage.
	KindNthUnit Kind = "NTH_UNIT_DISCOUNT"
)

// Unbounded is the threshold of a descriptor that can never trigger.
const Unbounded = math.MaxInt

// Descriptor is the normalized form of a promotion label.
type Descriptor struct {
	Kind      Kind            `json:"kind"`
	Threshold int             `json:"threshold"`
	Paid      int             `json:"paid,omitempty"`
	Rate      decimal.Decimal `json:"discountRate"`
}

// None returns the descriptor used for missing or unrecognized promotions.
func None() Descriptor {
	return Descriptor{Kind: KindNone, Threshold: Unbounded, Rate: decimal.Zero}
}

// MultiBuy builds an "NxM" descriptor. It returns None when the pair cannot
// describe a discount (n <= m, m < 1).
func MultiBuy(n, m int) Descriptor {
	if m < 1 || n <= m {
		return None()
	}
	rate := decimal.NewFromInt(int64(n - m)).Div(decimal.NewFromInt(int64(n)))
	return Descriptor{Kind: KindMultiBuy, Threshold: n, Paid: m, Rate: rate}
}

// NthUnit builds an "Nth unit at P% off" descriptor from a percentage.
func NthUnit(n int, percent decimal.Decimal) Descriptor {
	if n < 2 || !percent.IsPositive() || percent.GreaterThan(decimal.NewFromInt(100)) {
		return None()
	}
	return Descriptor{Kind: KindNthUnit, Threshold: n, Rate: percent.Div(decimal.NewFromInt(100))}
}

// Applies reports whether the descriptor can discount anything at all.
func (d Descriptor) Applies() bool {
	return d.Kind != KindNone && d.Threshold > 1 && d.Threshold != Unbounded && d.Rate.IsPositive()
}

// FreeUnitsPerGroup returns how many units of a complete group are granted at
// 100% off for multi-buy promotions.
func (d Descriptor) FreeUnitsPerGroup() int {
	if d.Kind != KindMultiBuy {
		return 0
	}
	return d.Threshold - d.Paid
}

// String renders the descriptor for logs.
func (d Descriptor) String() string {
	switch d.Kind {
	case KindMultiBuy:
		return fmt.Sprintf("%dx%d", d.Threshold, d.Paid)
	case KindNthUnit:
		return fmt.Sprintf("%d@%s%%", d.Threshold, d.Rate.Mul(decimal.NewFromInt(100)).String())
	default:
		return string(KindNone)
	}
}
