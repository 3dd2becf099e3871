package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cdmoen/Museum/internal/cart"
	"github.com/cdmoen/Museum/internal/catalog"
	"github.com/cdmoen/Museum/internal/format"
)

var (
	addID    string
	addName  string
	addPrice string
	addImage string
	removeID string
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add one unit of a product to the cart",
	Long: `Add one unit of a product. Missing --name, --price or --image are
filled from the catalog entry with the same id.`,
	RunE: runAdd,
}

var removeCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove a line from the cart",
	RunE:  runRemove,
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the cart",
	RunE:  runClear,
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the products that add can fill in by id",
	RunE:  runCatalog,
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "List the cart lines",
	RunE:  runShow,
}

func init() {
	addCmd.Flags().StringVar(&addID, "id", "", "product id")
	addCmd.Flags().StringVar(&addName, "name", "", "product name")
	addCmd.Flags().StringVar(&addPrice, "price", "", "unit price, e.g. 12.50")
	addCmd.Flags().StringVar(&addImage, "image", "", "image reference")
	_ = addCmd.MarkFlagRequired("id")

	removeCmd.Flags().StringVar(&removeID, "id", "", "product id")
	_ = removeCmd.MarkFlagRequired("id")
}

func runAdd(cmd *cobra.Command, args []string) error {
	base := cart.Product{ID: strings.TrimSpace(addID)}
	if strings.TrimSpace(addName) == "" || strings.TrimSpace(addPrice) == "" || strings.TrimSpace(addImage) == "" {
		cat, err := catalog.LoadFile(catalogPath)
		if err != nil {
			return err
		}
		if p, ok := cat.Lookup(base.ID); ok {
			base = p.CartProduct()
		}
	}
	if strings.TrimSpace(addName) != "" {
		base.Name = addName
	}
	if strings.TrimSpace(addImage) != "" {
		base.Image = addImage
	}
	price := addPrice
	if strings.TrimSpace(price) == "" {
		price = base.UnitPrice.String()
	}

	product, err := cart.ParseProduct(base.ID, base.Name, price, base.Image)
	if err != nil {
		return err
	}
	store, err := openStore()
	if err != nil {
		return err
	}
	line, err := store.Add(commandContext(cmd), product)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s)\n", line.Name, format.Qty(line.Quantity))
	return nil
}

func runRemove(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	if err := store.RemoveLine(commandContext(cmd), strings.TrimSpace(removeID)); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", removeID)
	return nil
}

func runClear(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	if err := store.Clear(commandContext(cmd)); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Cart cleared")
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	items := cart.Valid(store.Read(commandContext(cmd)))
	if len(items) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), emptyStyle.Render("Your cart is empty."))
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderRows(items))
	return nil
}

func runCatalog(cmd *cobra.Command, args []string) error {
	cat, err := catalog.LoadFile(catalogPath)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderCatalog(cat.Products()))
	return nil
}
