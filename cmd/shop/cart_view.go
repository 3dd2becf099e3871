package main

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/cdmoen/Museum/internal/cart"
	"github.com/cdmoen/Museum/internal/format"
	"github.com/cdmoen/Museum/internal/pricing"
)

// CartView is everything the cart fragment renders. It is derived from the
// stored lines and the toggle state only, so equal inputs render equal markup.
type CartView struct {
	IsMember bool
	// Answered and Answer echo the discount answer so follow-up renders keep it.
	Answered bool
	Answer   string
	Empty    bool
	Rows     []CartRow

	// NeedsChoice replaces the summary with the discount question.
	NeedsChoice bool
	Prompt      string

	Summary    []SummaryLine
	AppliedTag string
	Query      string
}

// CartRow is one rendered line item.
type CartRow struct {
	ID        string
	Name      string
	Image     string
	Qty       string
	UnitPrice string
	LineTotal string
}

// SummaryLine is one labelled amount in the invoice summary.
type SummaryLine = format.SummaryLine

// cartParams are the render inputs carried by the query string or form.
// Answered separates a submitted blank answer from no answer at all.
type cartParams struct {
	IsMember bool
	Answered bool
	Answer   string
}

func parseCartParams(values url.Values) cartParams {
	return cartParams{
		IsMember: isChecked(values.Get("member")),
		Answered: values.Has("discount"),
		Answer:   values.Get("discount"),
	}
}

func (p cartParams) choice() pricing.DiscountChoice {
	if !p.Answered {
		return pricing.ChoiceUnset
	}
	return pricing.ParseChoice(p.Answer)
}

func isChecked(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

func (p cartParams) query() string {
	q := url.Values{}
	if p.IsMember {
		q.Set("member", "on")
		if p.Answered {
			q.Set("discount", p.Answer)
		}
	}
	return q.Encode()
}

// buildCartView runs the invoice calculation for items and lays out the result.
func buildCartView(ctx context.Context, calc *pricing.Calculator, items []cart.LineItem, p cartParams) (CartView, error) {
	view := CartView{IsMember: p.IsMember, Query: p.query()}
	if p.IsMember {
		view.Answered, view.Answer = p.Answered, p.Answer
	}

	for _, item := range cart.Valid(items) {
		view.Rows = append(view.Rows, CartRow{
			ID:        item.ID,
			Name:      item.Name,
			Image:     item.Image,
			Qty:       format.Qty(item.Quantity),
			UnitPrice: format.PerUnit(item.UnitPrice),
			LineTotal: format.Money(item.LineTotal()),
		})
	}

	inv, err := calc.Calculate(ctx, pricing.Request{
		Items:    items,
		IsMember: p.IsMember,
		Choice:   p.choice(),
	})
	switch {
	case errors.Is(err, pricing.ErrEmptyCart):
		view.Empty = true
		view.Rows = nil
		return view, nil
	case errors.Is(err, pricing.ErrDiscountChoiceRequired):
		view.NeedsChoice = true
		view.Prompt = pricing.ConflictPrompt
		return view, nil
	case err != nil:
		return CartView{}, err
	}

	view.Summary = format.Summary(inv)
	if inv.Conflict {
		view.AppliedTag = inv.Choice.String()
	}
	return view, nil
}
