package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Tier is one inclusive bracket of the volume discount table.
type Tier struct {
	Min decimal.Decimal
	// Max is ignored when Unbounded is set.
	Max       decimal.Decimal
	Unbounded bool
	Rate      decimal.Decimal
}

// Contains reports whether amount falls inside the tier bounds (both inclusive).
func (t Tier) Contains(amount decimal.Decimal) bool {
	if amount.LessThan(t.Min) {
		return false
	}
	return t.Unbounded || amount.LessThanOrEqual(t.Max)
}

// Rules holds the rates and fees applied by the Calculator.
type Rules struct {
	TaxRate     decimal.Decimal
	MemberRate  decimal.Decimal
	Shipping    decimal.Decimal
	VolumeTiers []Tier
}

// DefaultRules returns the shop's published pricing rules.
func DefaultRules() Rules {
	return Rules{
		TaxRate:    decimal.RequireFromString("0.102"),
		MemberRate: decimal.RequireFromString("0.15"),
		Shipping:   decimal.RequireFromString("25.00"),
		VolumeTiers: []Tier{
			{Min: decimal.RequireFromString("0.00"), Max: decimal.RequireFromString("49.99"), Rate: decimal.Zero},
			{Min: decimal.RequireFromString("50.00"), Max: decimal.RequireFromString("99.99"), Rate: decimal.RequireFromString("0.05")},
			{Min: decimal.RequireFromString("100.00"), Max: decimal.RequireFromString("199.99"), Rate: decimal.RequireFromString("0.10")},
			{Min: decimal.RequireFromString("200.00"), Unbounded: true, Rate: decimal.RequireFromString("0.15")},
		},
	}
}

// VolumeRate returns the rate of the first tier containing subtotal. Amounts
// that fall between two tiers (sub-cent gaps) earn no volume discount.
func (r Rules) VolumeRate(subtotal decimal.Decimal) decimal.Decimal {
	for _, tier := range r.VolumeTiers {
		if tier.Contains(subtotal) {
			return tier.Rate
		}
	}
	return decimal.Zero
}

// Validate checks that rates are fractions and tiers are ordered without overlap.
func (r Rules) Validate() error {
	one := decimal.NewFromInt(1)
	if r.TaxRate.IsNegative() || r.TaxRate.GreaterThan(one) {
		return fmt.Errorf("%w: tax rate %s out of range", ErrInvalidRules, r.TaxRate)
	}
	if r.MemberRate.IsNegative() || r.MemberRate.GreaterThan(one) {
		return fmt.Errorf("%w: member rate %s out of range", ErrInvalidRules, r.MemberRate)
	}
	if r.Shipping.IsNegative() {
		return fmt.Errorf("%w: negative shipping %s", ErrInvalidRules, r.Shipping)
	}
	if len(r.VolumeTiers) == 0 {
		return fmt.Errorf("%w: at least one volume tier is required", ErrInvalidRules)
	}
	for i, tier := range r.VolumeTiers {
		if tier.Rate.IsNegative() || tier.Rate.GreaterThan(one) {
			return fmt.Errorf("%w: tier %d rate %s out of range", ErrInvalidRules, i, tier.Rate)
		}
		if !tier.Unbounded && tier.Max.LessThan(tier.Min) {
			return fmt.Errorf("%w: tier %d max below min", ErrInvalidRules, i)
		}
		if i == 0 {
			if !tier.Min.IsZero() {
				return fmt.Errorf("%w: first tier must start at zero", ErrInvalidRules)
			}
			continue
		}
		prev := r.VolumeTiers[i-1]
		if prev.Unbounded || !tier.Min.GreaterThan(prev.Max) {
			return fmt.Errorf("%w: tier %d overlaps tier %d", ErrInvalidRules, i, i-1)
		}
	}
	if !r.VolumeTiers[len(r.VolumeTiers)-1].Unbounded {
		return fmt.Errorf("%w: last tier must be unbounded", ErrInvalidRules)
	}
	return nil
}
