package pricing

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	"github.com/cdmoen/Museum/internal/cart"
	"github.com/cdmoen/Museum/internal/platform/observability"
)

var (
	// ErrEmptyCart is returned when no present line remains after filtering.
	ErrEmptyCart = errors.New("pricing: cart is empty")
	// ErrDiscountChoiceRequired signals a member/volume conflict with no recorded answer.
	ErrDiscountChoiceRequired = errors.New("pricing: discount choice required")
	// ErrInvalidRules wraps every rule validation failure.
	ErrInvalidRules = errors.New("pricing: invalid rules")
)

// Request is one invoice computation.
type Request struct {
	Items    []cart.LineItem
	IsMember bool
	// Choice only matters when both discounts apply.
	Choice DiscountChoice
}

// Line is a present cart line with its extended price.
type Line struct {
	cart.LineItem
	LineTotal decimal.Decimal
}

// Invoice is the derived summary of a cart. Amounts are exact; rounding
// happens at display time.
type Invoice struct {
	Lines           []Line
	ItemsSubtotal   decimal.Decimal
	VolumeRate      decimal.Decimal
	VolumeDiscount  decimal.Decimal
	MemberDiscount  decimal.Decimal
	Shipping        decimal.Decimal
	TaxableSubtotal decimal.Decimal
	TaxRate         decimal.Decimal
	Tax             decimal.Decimal
	Total           decimal.Decimal
	// Choice is the resolution applied, ChoiceUnset when there was no conflict.
	Choice   DiscountChoice
	Conflict bool
}

// CalculatorDeps wires the calculator.
type CalculatorDeps struct {
	// Rules defaults to DefaultRules when nil.
	Rules  *Rules
	Tracer trace.Tracer
	Meter  metric.Meter
	Logger func(context.Context, string, map[string]any)
}

// Calculator computes invoices. It holds no mutable state and is safe for concurrent use.
type Calculator struct {
	rules     Rules
	tracer    trace.Tracer
	conflicts metric.Int64Counter
	logger    func(context.Context, string, map[string]any)
}

// NewCalculator validates the rules and returns a ready calculator.
func NewCalculator(deps CalculatorDeps) (*Calculator, error) {
	rules := DefaultRules()
	if deps.Rules != nil {
		rules = *deps.Rules
	}
	if err := rules.Validate(); err != nil {
		return nil, fmt.Errorf("invoice calculator: %w", err)
	}

	tracer := deps.Tracer
	if tracer == nil {
		tracer = observability.Tracer("pricing")
	}
	meter := deps.Meter
	if meter == nil {
		meter = observability.Meter("pricing")
	}
	conflicts, err := meter.Int64Counter("shop.discount_conflicts",
		metric.WithDescription("Member/volume discount conflicts resolved by the shopper."))
	if err != nil {
		conflicts = noop.Int64Counter{}
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &Calculator{
		rules:     rules,
		tracer:    tracer,
		conflicts: conflicts,
		logger:    logger,
	}, nil
}

// Rules returns a copy of the rules the calculator applies.
func (c *Calculator) Rules() Rules {
	out := c.rules
	out.VolumeTiers = append([]Tier(nil), c.rules.VolumeTiers...)
	return out
}

// NeedsChoice reports whether a member shopper with this subtotal must pick one discount.
func NeedsChoice(rules Rules, subtotal decimal.Decimal, isMember bool) bool {
	if !isMember {
		return false
	}
	return subtotal.Mul(rules.VolumeRate(subtotal)).IsPositive()
}

// Subtotal sums the extended price of the present lines.
func Subtotal(items []cart.LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range cart.Valid(items) {
		total = total.Add(item.LineTotal())
	}
	return total
}

// Calculate builds the invoice for the present lines of req.Items.
//
// When the shopper is a member and the subtotal also earns a volume discount,
// only one may apply. With ChoiceUnset the partially filled invoice (lines,
// subtotal and volume rate) is returned together with ErrDiscountChoiceRequired.
func (c *Calculator) Calculate(ctx context.Context, req Request) (Invoice, error) {
	ctx, span := c.tracer.Start(ctx, "invoice.calculate")
	defer span.End()

	items := cart.Valid(req.Items)
	span.SetAttributes(
		attribute.Int("invoice.lines", len(items)),
		attribute.Bool("invoice.member", req.IsMember),
	)
	if len(items) == 0 {
		return Invoice{}, ErrEmptyCart
	}

	inv := Invoice{
		Lines:   make([]Line, 0, len(items)),
		TaxRate: c.rules.TaxRate,
	}
	subtotal := decimal.Zero
	for _, item := range items {
		lineTotal := item.LineTotal()
		inv.Lines = append(inv.Lines, Line{LineItem: item, LineTotal: lineTotal})
		subtotal = subtotal.Add(lineTotal)
	}
	inv.ItemsSubtotal = subtotal
	inv.VolumeRate = c.rules.VolumeRate(subtotal)

	volume := subtotal.Mul(inv.VolumeRate)
	member := decimal.Zero
	if req.IsMember {
		member = subtotal.Mul(c.rules.MemberRate)
	}

	if req.IsMember && volume.IsPositive() {
		inv.Conflict = true
		switch req.Choice {
		case ChoiceMember:
			volume = decimal.Zero
		case ChoiceVolume:
			member = decimal.Zero
		case ChoiceNeither:
			volume = decimal.Zero
			member = decimal.Zero
		default:
			span.AddEvent("discount choice pending")
			c.logger(ctx, "invoice.choice_required", map[string]any{
				"subtotal":    subtotal.String(),
				"volume_rate": inv.VolumeRate.String(),
			})
			return inv, ErrDiscountChoiceRequired
		}
		inv.Choice = req.Choice
		c.conflicts.Add(ctx, 1, metric.WithAttributes(attribute.String("choice", req.Choice.String())))
	}

	inv.VolumeDiscount = volume
	inv.MemberDiscount = member
	inv.Shipping = c.rules.Shipping
	inv.TaxableSubtotal = subtotal.Sub(volume).Sub(member).Add(inv.Shipping)
	inv.Tax = inv.TaxableSubtotal.Mul(c.rules.TaxRate)
	inv.Total = inv.TaxableSubtotal.Add(inv.Tax)

	c.logger(ctx, "invoice.calculated", map[string]any{
		"lines":    len(inv.Lines),
		"subtotal": subtotal.String(),
		"total":    inv.Total.String(),
		"choice":   inv.Choice.String(),
	})
	return inv, nil
}
