package main

import (
	"html/template"
	"net/url"

	"github.com/cdmoen/Museum/internal/catalog"
	"github.com/cdmoen/Museum/internal/format"
)

// CatalogView is the catalog page model with badges pre-filled from the cart.
type CatalogView struct {
	Title    string
	Sections []CatalogSection
}

// CatalogSection is a titled group of product cards.
type CatalogSection struct {
	Title string
	Cards []ProductCard
}

// ProductCard carries the data attributes the add-to-cart control posts back.
type ProductCard struct {
	ID    string
	Name  string
	Price string
	// DataPrice is the plain decimal written to data-price and the form field.
	DataPrice string
	Image     string
	Alt       string
	Blurb     template.HTML
	// ModalURL opens the enlarged image overlay.
	ModalURL string
	Badge    BadgeView
}

// BadgeView is the per-product quantity badge, rendered as #qty-{id}.
type BadgeView struct {
	ID   string
	Text string
}

func buildCatalogView(cat *catalog.Catalog, quantities map[string]int) CatalogView {
	view := CatalogView{Title: cat.Title}
	for _, s := range cat.Sections {
		section := CatalogSection{Title: s.Title}
		for _, p := range s.Products {
			section.Cards = append(section.Cards, ProductCard{
				ID:        p.ID,
				Name:      p.Name,
				Price:     format.Money(p.UnitPrice),
				DataPrice: p.UnitPrice.StringFixed(2),
				Image:     p.Image,
				Alt:       p.Alt,
				Blurb:     p.Blurb,
				ModalURL:  "/catalog/modal?" + url.Values{"src": {p.Image}, "alt": {p.Alt}}.Encode(),
				Badge:     BadgeView{ID: p.ID, Text: format.Qty(quantities[p.ID])},
			})
		}
		view.Sections = append(view.Sections, section)
	}
	return view
}

// ModalView is the overlay showing one enlarged product image.
type ModalView struct {
	Src string
	Alt string
}
