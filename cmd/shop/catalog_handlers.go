package main

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/cdmoen/Museum/internal/cart"
	"github.com/cdmoen/Museum/internal/format"
	"github.com/cdmoen/Museum/internal/platform/requestctx"
)

// CatalogHandler renders the product list with quantity badges read from the cart.
func (a *app) CatalogHandler(w http.ResponseWriter, r *http.Request) {
	quantities := a.store(w, r).Quantities(r.Context())
	view := buildCatalogView(a.catalog, quantities)
	title := view.Title
	if title == "" {
		title = "Gift Shop"
	}
	a.render(w, r, "page_catalog", pageData{Title: title, Path: r.URL.Path, Catalog: view})
}

// CatalogAddHandler upserts the posted product into the cart. Fields are the
// product control's data attributes and are taken as posted.
func (a *app) CatalogAddHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	product, err := cart.ParseProduct(
		r.PostFormValue("id"),
		strings.TrimSpace(r.PostFormValue("name")),
		r.PostFormValue("price"),
		strings.TrimSpace(r.PostFormValue("image")),
	)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	line, err := a.store(w, r).Add(r.Context(), product)
	if err != nil {
		if errors.Is(err, cart.ErrSlotUnavailable) {
			requestctx.Logger(r.Context()).Warn("cart slot rejected write", zap.Error(err))
			http.Error(w, "cart is full", http.StatusRequestEntityTooLarge)
			return
		}
		a.fail(w, r, "add to cart failed", err)
		return
	}
	requestctx.Logger(r.Context()).Debug("added to cart", zap.String("id", line.ID), zap.Int("qty", line.Quantity))

	if !requestctx.IsHTMX(r.Context()) {
		http.Redirect(w, r, "/catalog", http.StatusSeeOther)
		return
	}
	a.render(w, r, "frag_qty_badge", BadgeView{ID: line.ID, Text: format.Qty(line.Quantity)})
}

// CatalogModalFrag renders the image overlay for the clicked product image.
func (a *app) CatalogModalFrag(w http.ResponseWriter, r *http.Request) {
	src := strings.TrimSpace(r.URL.Query().Get("src"))
	if src == "" {
		http.Error(w, "missing src", http.StatusBadRequest)
		return
	}
	a.render(w, r, "frag_modal", ModalView{Src: src, Alt: r.URL.Query().Get("alt")})
}

// CatalogModalCloseFrag answers with an empty overlay container.
func (a *app) CatalogModalCloseFrag(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
}
