package middleware

import (
	"net/http"

	"github.com/cdmoen/Museum/internal/platform/requestctx"
)

// HTMX marks requests coming from htmx so handlers can answer with fragments.
// Responses vary on HX-Request because the same URL serves both shapes.
func HTMX(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		is := r.Header.Get("HX-Request") == "true"
		w.Header().Add("Vary", "HX-Request")
		ctx := requestctx.WithHTMX(r.Context(), is)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// NoStore disables caching for pages rendered from the visitor's cart cookie.
func NoStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}
