package pricing

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/chango-api/internal/promo"
	"github.com/noah-isme/chango-api/internal/store"
)

// Money represents a monetary amount. Amounts are kept exact during computation
// and rounded to Precision decimal places once, at the end.
type Money = decimal.Decimal

// Precision is the number of decimal places of every monetary output.
const Precision = 2

// DefaultUnavailablePenalty is charged per line item a store cannot supply so the
// store sorts behind every store that can fulfil the whole cart.
var DefaultUnavailablePenalty = decimal.NewFromInt(999999)

// StorePrice carries the prices a store publishes for one product. Zero means
// absent.
type StorePrice struct {
	List  float64 `json:"list"`
	Promo float64 `json:"promo"`
}

// Item describes a cart line priced against every store.
type Item struct {
	ProductID string                `json:"productId" validate:"required"`
	Name      string                `json:"name,omitempty"`
	Quantity  *float64              `json:"quantity,omitempty"`
	Prices    map[string]StorePrice `json:"prices"`
	Promotion promo.Label           `json:"promotion"`
}

// Units returns the number of whole units requested. A missing quantity means one
// unit; negative or non-finite quantities mean none.
func (it Item) Units() int64 {
	if it.Quantity == nil {
		return 1
	}
	q := *it.Quantity
	if math.IsNaN(q) || math.IsInf(q, 0) || q <= 0 {
		return 0
	}
	if q >= math.MaxInt32 {
		return math.MaxInt32
	}
	return int64(math.Floor(q))
}

// Policy controls how unavailable items are charged.
type Policy struct {
	UnavailablePenalty Money
}

// DefaultPolicy returns the policy used when none is configured.
func DefaultPolicy() Policy {
	return Policy{UnavailablePenalty: DefaultUnavailablePenalty}
}

func (p Policy) penalty() Money {
	if p.UnavailablePenalty.IsPositive() {
		return p.UnavailablePenalty
	}
	return DefaultUnavailablePenalty
}

// Line is the per-item breakdown for one store.
type Line struct {
	ProductID  string           `json:"productId"`
	Quantity   int64            `json:"quantity"`
	Available  bool             `json:"available"`
	Subtotal   Money            `json:"subtotal"`
	Discount   Money            `json:"discount"`
	Descriptor promo.Descriptor `json:"promotion"`
}

// Summary aggregates computed pricing components for one store.
type Summary struct {
	Subtotal    Money  `json:"subtotal"`
	Discount    Money  `json:"discount"`
	Total       Money  `json:"total"`
	Unavailable int    `json:"unavailable"`
	Lines       []Line `json:"lines,omitempty"`
}

// Compute prices the cart at the given store. Subtotal is always the list price
// sum; promotions only ever lower the total; items the store cannot supply add the
// policy penalty to both subtotal and total.
func Compute(items []Item, st store.Store, policy Policy) Summary {
	subtotal := decimal.Zero
	discounted := decimal.Zero
	var (
		unavailable int
		lines       []Line
	)

	for _, it := range items {
		qty := it.Units()
		if qty <= 0 {
			continue
		}
		price := it.Prices[st.Key]
		list := toMoney(price.List)
		if !list.IsPositive() {
			penalty := policy.penalty()
			subtotal = subtotal.Add(penalty)
			discounted = discounted.Add(penalty)
			unavailable++
			lines = append(lines, Line{
				ProductID:  it.ProductID,
				Quantity:   qty,
				Subtotal:   penalty,
				Discount:   decimal.Zero,
				Descriptor: promo.None(),
			})
			continue
		}

		lineSubtotal := list.Mul(decimal.NewFromInt(qty))
		d := promo.Parse(it.Promotion, st)
		lineDiscount := decimal.Zero
		if toMoney(price.Promo).IsPositive() {
			lineDiscount = groupDiscount(d, qty, list)
		}

		subtotal = subtotal.Add(lineSubtotal)
		discounted = discounted.Add(lineSubtotal.Sub(lineDiscount))
		lines = append(lines, Line{
			ProductID:  it.ProductID,
			Quantity:   qty,
			Available:  true,
			Subtotal:   lineSubtotal,
			Discount:   lineDiscount,
			Descriptor: d,
		})
	}

	discount := subtotal.Sub(discounted)
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	subtotal = subtotal.Round(Precision)
	discount = discount.Round(Precision)
	return Summary{
		Subtotal:    subtotal,
		Discount:    discount,
		Total:       subtotal.Sub(discount),
		Unavailable: unavailable,
		Lines:       lines,
	}
}

// groupDiscount returns the discount a promotion grants on qty units. Only
// complete groups qualify; remainder units stay at list price.
func groupDiscount(d promo.Descriptor, qty int64, list Money) Money {
	if !d.Applies() || qty < int64(d.Threshold) {
		return decimal.Zero
	}
	groups := decimal.NewFromInt(qty / int64(d.Threshold))
	switch d.Kind {
	case promo.KindMultiBuy:
		// threshold*rate == free units per group; counted directly to stay exact.
		free := decimal.NewFromInt(int64(d.FreeUnitsPerGroup()))
		return groups.Mul(free).Mul(list)
	case promo.KindNthUnit:
		return groups.Mul(list).Mul(d.Rate)
	default:
		return decimal.Zero
	}
}

func toMoney(v float64) Money {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v)
}
