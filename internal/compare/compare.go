package compare

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/chango-api/internal/benefit"
	"github.com/noah-isme/chango-api/internal/pricing"
	"github.com/noah-isme/chango-api/internal/store"
)

// DefaultAvailabilityCeiling hides stores whose subtotal exceeds it from the
// comparison list.
var DefaultAvailabilityCeiling = decimal.NewFromInt(500000)

// Options tunes the comparison.
type Options struct {
	Policy              pricing.Policy
	AvailabilityCeiling decimal.Decimal
}

// DefaultOptions returns the options of the reference deployment.
func DefaultOptions() Options {
	return Options{Policy: pricing.DefaultPolicy(), AvailabilityCeiling: DefaultAvailabilityCeiling}
}

func (o Options) ceiling() decimal.Decimal {
	if o.AvailabilityCeiling.IsPositive() {
		return o.AvailabilityCeiling
	}
	return DefaultAvailabilityCeiling
}

// StoreResult is the priced cart for one store.
type StoreResult struct {
	Store       store.Store       `json:"store"`
	Subtotal    pricing.Money     `json:"subtotal"`
	Discount    pricing.Money     `json:"discount"`
	Total       pricing.Money     `json:"total"`
	Unavailable int               `json:"unavailable"`
	Lines       []pricing.Line    `json:"lines,omitempty"`
	Benefits    []benefit.Benefit `json:"benefits"`
}

// Available reports whether the store can supply every item.
func (r StoreResult) Available() bool { return r.Unavailable == 0 }

// Comparison is the ranked outcome across the roster.
type Comparison struct {
	Results []StoreResult `json:"results"`
	Best    *StoreResult  `json:"best,omitempty"`
	Others  []StoreResult `json:"others"`
}

// Stores prices the cart at every store of the roster, cheapest first. Stores with
// equal totals keep roster order.
func Stores(ctx context.Context, items []pricing.Item, roster store.Roster, benefits []benefit.Benefit, opts Options) (Comparison, error) {
	results := make([]StoreResult, len(roster))
	g, gctx := errgroup.WithContext(ctx)
	for i, st := range roster {
		i, st := i, st
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			sum := pricing.Compute(items, st, opts.Policy)
			results[i] = StoreResult{
				Store:       st,
				Subtotal:    sum.Subtotal,
				Discount:    sum.Discount,
				Total:       sum.Total,
				Unavailable: sum.Unavailable,
				Lines:       sum.Lines,
				Benefits:    benefit.ForStore(benefits, st.Name),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Comparison{}, err
	}
	return Rank(results, opts.ceiling()), nil
}

// Rank sorts results by total and splits them into best and comparable others.
// The input slice is sorted in place.
func Rank(results []StoreResult, ceiling decimal.Decimal) Comparison {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Total.LessThan(results[j].Total)
	})
	cmp := Comparison{Results: results, Others: []StoreResult{}}
	if len(results) == 0 {
		return cmp
	}
	best := results[0]
	cmp.Best = &best
	for _, r := range results[1:] {
		if r.Subtotal.GreaterThanOrEqual(ceiling) {
			continue
		}
		cmp.Others = append(cmp.Others, r)
	}
	return cmp
}
