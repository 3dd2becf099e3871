package format

import "github.com/cdmoen/Museum/internal/pricing"

// SummaryLine is one labelled amount of a rendered invoice.
type SummaryLine struct {
	Key    string `json:"key"`
	Label  string `json:"label"`
	Amount string `json:"amount"`
}

// Summary lays out the eight invoice lines in display order.
func Summary(inv pricing.Invoice) []SummaryLine {
	return []SummaryLine{
		{Key: "items", Label: "Subtotal of Items:", Amount: Money(inv.ItemsSubtotal)},
		{Key: "volume", Label: "Volume Discount:", Amount: Money(inv.VolumeDiscount)},
		{Key: "member", Label: "Member Discount:", Amount: Money(inv.MemberDiscount)},
		{Key: "shipping", Label: "Shipping Cost:", Amount: Money(inv.Shipping)},
		{Key: "taxable", Label: "Subtotal (taxable):", Amount: Money(inv.TaxableSubtotal)},
		{Key: "tax-rate", Label: "Tax Rate:", Amount: Percent(inv.TaxRate)},
		{Key: "tax", Label: "Tax Amount:", Amount: Money(inv.Tax)},
		{Key: "total", Label: "Invoice Total:", Amount: Money(inv.Total)},
	}
}
