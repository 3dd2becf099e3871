package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cdmoen/Museum/internal/cart"
	"github.com/cdmoen/Museum/internal/format"
	"github.com/cdmoen/Museum/internal/platform/observability"
	"github.com/cdmoen/Museum/internal/pricing"
)

var (
	invoiceMember   bool
	invoiceDiscount string
)

// askChoice obtains the answer to the discount question. Tests replace it.
var askChoice = promptChoice

var invoiceCmd = &cobra.Command{
	Use:   "invoice",
	Short: "Print the cart invoice",
	Long: `Print the line rows and the invoice summary.

A member whose cart also earns a volume discount must pick one. Pass
--discount M or --discount V, or answer the prompt. Any other answer,
blank included, applies neither discount.`,
	RunE: runInvoice,
}

func init() {
	invoiceCmd.Flags().BoolVar(&invoiceMember, "member", false, "apply the 15% member discount")
	invoiceCmd.Flags().StringVar(&invoiceDiscount, "discount", "", "discount to keep on a conflict: M or V")
}

func runInvoice(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	store, err := openStore()
	if err != nil {
		return err
	}
	calc, err := pricing.NewCalculator(pricing.CalculatorDeps{Logger: observability.EventLogger(logger)})
	if err != nil {
		return err
	}

	items := store.Read(ctx)
	req := pricing.Request{Items: items, IsMember: invoiceMember}
	switch {
	case invoiceDiscount != "" || cmd.Flags().Changed("discount"):
		req.Choice = pricing.ParseChoice(invoiceDiscount)
	case pricing.NeedsChoice(calc.Rules(), pricing.Subtotal(items), invoiceMember):
		answer, err := askChoice(cmd, pricing.ConflictPrompt)
		if err != nil {
			return err
		}
		req.Choice = pricing.ParseChoice(answer)
	}
	inv, err := calc.Calculate(ctx, req)
	out := cmd.OutOrStdout()
	switch {
	case errors.Is(err, pricing.ErrEmptyCart):
		fmt.Fprintln(out, emptyStyle.Render("Your cart is empty."))
		return nil
	case err != nil:
		return err
	}

	fmt.Fprintln(out, renderRows(cart.Valid(items)))
	fmt.Fprintln(out, renderSummary(format.Summary(inv)))
	return nil
}
