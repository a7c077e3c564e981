package benefit

import "strings"

// Benefit is a payment-method discount offered at a store.
type Benefit struct {
	StoreName    string  `json:"storeName" validate:"required"`
	EntityName   string  `json:"entityName" validate:"required"`
	Rate         float64 `json:"discountRate" validate:"gte=0,lte=1"`
	ReferralLink string  `json:"referralLink,omitempty"`
}

// Membership is a card, wallet or loyalty program linked by the shopper.
type Membership struct {
	Slug string `json:"slug"`
	Type string `json:"type"`
}

// Advice pairs the best benefit the shopper already holds with the best one they
// could sign up for.
type Advice struct {
	Owned     *Benefit `json:"owned,omitempty"`
	Recommend *Benefit `json:"recommend,omitempty"`
}

// Covers reports whether the membership matches the benefit's entity.
func Covers(m Membership, b Benefit) bool {
	entity := strings.TrimSpace(b.EntityName)
	if entity == "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(m.Slug), entity) ||
		strings.EqualFold(strings.TrimSpace(m.Type), entity)
}

func covered(memberships []Membership, b Benefit) bool {
	for _, m := range memberships {
		if Covers(m, b) {
			return true
		}
	}
	return false
}

// ForStore returns the benefits whose store name matches, case-insensitively.
func ForStore(benefits []Benefit, storeName string) []Benefit {
	name := strings.TrimSpace(storeName)
	var out []Benefit
	for _, b := range benefits {
		if strings.EqualFold(strings.TrimSpace(b.StoreName), name) {
			out = append(out, b)
		}
	}
	return out
}

// Recommend picks the owned and the upsell benefit among the given store
// benefits. It returns nil when there are no benefits at all. Ties keep the
// first benefit seen.
func Recommend(benefits []Benefit, memberships []Membership) *Advice {
	if len(benefits) == 0 {
		return nil
	}
	advice := &Advice{}
	for i := range benefits {
		b := benefits[i]
		if covered(memberships, b) {
			if advice.Owned == nil || b.Rate > advice.Owned.Rate {
				advice.Owned = &b
			}
			continue
		}
		if strings.TrimSpace(b.ReferralLink) == "" {
			continue
		}
		if advice.Recommend == nil || b.Rate > advice.Recommend.Rate {
			advice.Recommend = &b
		}
	}
	return advice
}
