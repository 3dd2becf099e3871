package main

import (
	"errors"
	"net/http"

	"github.com/cdmoen/Museum/internal/format"
	"github.com/cdmoen/Museum/internal/platform/httpx"
	"github.com/cdmoen/Museum/internal/pricing"
)

type invoiceLineResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	UnitPrice string `json:"unitPrice"`
	Qty       int    `json:"qty"`
	Image     string `json:"image"`
	LineTotal string `json:"lineTotal"`
}

type invoiceResponse struct {
	Empty           bool                  `json:"empty"`
	Lines           []invoiceLineResponse `json:"lines"`
	ItemsSubtotal   string                `json:"itemsSubtotal,omitempty"`
	VolumeRate      string                `json:"volumeRate,omitempty"`
	VolumeDiscount  string                `json:"volumeDiscount,omitempty"`
	MemberDiscount  string                `json:"memberDiscount,omitempty"`
	Shipping        string                `json:"shipping,omitempty"`
	TaxableSubtotal string                `json:"taxableSubtotal,omitempty"`
	TaxRate         string                `json:"taxRate,omitempty"`
	Tax             string                `json:"tax,omitempty"`
	Total           string                `json:"total,omitempty"`
	Choice          string                `json:"choice,omitempty"`
	Summary         []SummaryLine         `json:"summary,omitempty"`
}

// InvoiceAPIHandler returns the invoice for the visitor's cart as JSON. Amounts
// are exact decimal strings; Summary carries the display-rounded lines.
func (a *app) InvoiceAPIHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	params := parseCartParams(r.URL.Query())
	items := a.store(w, r).Read(ctx)

	inv, err := a.calc.Calculate(ctx, pricing.Request{
		Items:    items,
		IsMember: params.IsMember,
		Choice:   params.choice(),
	})
	switch {
	case errors.Is(err, pricing.ErrEmptyCart):
		httpx.WriteJSON(w, http.StatusOK, invoiceResponse{Empty: true, Lines: []invoiceLineResponse{}})
		return
	case errors.Is(err, pricing.ErrDiscountChoiceRequired):
		httpx.WriteError(ctx, w, httpx.NewError("discount_choice_required", pricing.ConflictPrompt, http.StatusConflict).
			WithDetails(map[string]any{
				"choices":       []string{"M", "V"},
				"itemsSubtotal": inv.ItemsSubtotal.String(),
				"volumeRate":    inv.VolumeRate.String(),
			}))
		return
	case err != nil:
		httpx.WriteError(ctx, w, httpx.NewError("invoice_failed", "unable to calculate invoice", http.StatusInternalServerError))
		return
	}

	resp := invoiceResponse{
		Lines:           make([]invoiceLineResponse, 0, len(inv.Lines)),
		ItemsSubtotal:   inv.ItemsSubtotal.String(),
		VolumeRate:      inv.VolumeRate.String(),
		VolumeDiscount:  inv.VolumeDiscount.String(),
		MemberDiscount:  inv.MemberDiscount.String(),
		Shipping:        inv.Shipping.String(),
		TaxableSubtotal: inv.TaxableSubtotal.String(),
		TaxRate:         inv.TaxRate.String(),
		Tax:             inv.Tax.String(),
		Total:           inv.Total.String(),
		Summary:         format.Summary(inv),
	}
	if inv.Conflict {
		resp.Choice = inv.Choice.String()
	}
	for _, line := range inv.Lines {
		resp.Lines = append(resp.Lines, invoiceLineResponse{
			ID:        line.ID,
			Name:      line.Name,
			UnitPrice: line.UnitPrice.String(),
			Qty:       line.Quantity,
			Image:     line.Image,
			LineTotal: line.LineTotal.String(),
		})
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}
