package main

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/cdmoen/Museum/internal/cart"
	"github.com/cdmoen/Museum/internal/platform/requestctx"
)

// pageData is the layout model shared by full pages.
type pageData struct {
	Title   string
	Path    string
	Cart    CartView
	Catalog CatalogView
}

// CartHandler renders the cart page.
func (a *app) CartHandler(w http.ResponseWriter, r *http.Request) {
	view, ok := a.cartView(w, r, a.store(w, r), parseCartParams(r.URL.Query()))
	if !ok {
		return
	}
	a.render(w, r, "page_cart", pageData{Title: "Your Cart", Path: r.URL.Path, Cart: view})
}

// CartViewFrag re-renders the cart view, used when the member toggle changes
// or the discount question is answered.
func (a *app) CartViewFrag(w http.ResponseWriter, r *http.Request) {
	view, ok := a.cartView(w, r, a.store(w, r), parseCartParams(r.URL.Query()))
	if !ok {
		return
	}
	a.renderCartFrag(w, r, view)
}

// CartRemoveHandler drops one line and re-renders. The discount answer is not
// carried over: a still-conflicting cart asks again.
func (a *app) CartRemoveHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	id := strings.TrimSpace(r.PostFormValue("id"))
	if id == "" {
		http.Error(w, "missing id", http.StatusBadRequest)
		return
	}
	params := cartParams{IsMember: isChecked(r.PostFormValue("member"))}

	store := a.store(w, r)
	if err := store.RemoveLine(r.Context(), id); err != nil {
		a.fail(w, r, "remove failed", err)
		return
	}
	requestctx.Logger(r.Context()).Debug("cart line removed", zap.String("id", id))
	a.afterCartWrite(w, r, store, params)
}

// CartClearHandler empties the cart and resets the member toggle.
func (a *app) CartClearHandler(w http.ResponseWriter, r *http.Request) {
	store := a.store(w, r)
	if err := store.Clear(r.Context()); err != nil {
		a.fail(w, r, "clear failed", err)
		return
	}
	a.afterCartWrite(w, r, store, cartParams{})
}

func (a *app) afterCartWrite(w http.ResponseWriter, r *http.Request, store *cart.Store, params cartParams) {
	if !requestctx.IsHTMX(r.Context()) {
		http.Redirect(w, r, cartURL(params), http.StatusSeeOther)
		return
	}
	view, ok := a.cartView(w, r, store, params)
	if !ok {
		return
	}
	a.renderCartFrag(w, r, view)
}

// cartView renders from store, which must be the one bound for this request
// so that writes made earlier in the request are visible.
func (a *app) cartView(w http.ResponseWriter, r *http.Request, store *cart.Store, params cartParams) (CartView, bool) {
	items := store.Read(r.Context())
	view, err := buildCartView(r.Context(), a.calc, items, params)
	if err != nil {
		a.fail(w, r, "invoice calculation failed", err)
		return CartView{}, false
	}
	return view, true
}

func (a *app) renderCartFrag(w http.ResponseWriter, r *http.Request, view CartView) {
	w.Header().Set("HX-Push-Url", cartURL(cartParams{IsMember: view.IsMember, Answered: view.Answered, Answer: view.Answer}))
	a.render(w, r, "frag_cart_view", view)
}

func cartURL(p cartParams) string {
	if q := p.query(); q != "" {
		return "/cart?" + q
	}
	return "/cart"
}
