package main

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/cdmoen/Museum/internal/cart"
	"github.com/cdmoen/Museum/internal/catalog"
	"github.com/cdmoen/Museum/internal/format"
	"github.com/cdmoen/Museum/internal/platform/config"
	"github.com/cdmoen/Museum/internal/platform/requestctx"
	"github.com/cdmoen/Museum/internal/platform/slot"
	"github.com/cdmoen/Museum/internal/pricing"
)

// app holds the shared dependencies of the HTTP handlers.
type app struct {
	cfg       config.Config
	logger    *zap.Logger
	events    func(context.Context, string, map[string]any)
	catalog   *catalog.Catalog
	calc      *pricing.Calculator
	cookies   *slot.CookieCodec
	templates *templates
}

// store returns a cart store over the visitor's cookie for this request.
func (a *app) store(w http.ResponseWriter, r *http.Request) *cart.Store {
	s, err := cart.NewStore(cart.StoreDeps{Slot: a.cookies.Bind(w, r), Logger: a.events})
	if err != nil {
		// Bind never returns a nil slot.
		panic(err)
	}
	return s
}

type templates struct {
	dir     string
	devMode bool

	mu    sync.RWMutex
	cache *template.Template
}

var funcMap = template.FuncMap{
	"money":   format.Money,
	"percent": format.Percent,
	"qty":     format.Qty,
	"perUnit": format.PerUnit,
}

func (t *templates) parse() (*template.Template, error) {
	// Recursively discover and parse all .tmpl files. Note: ParseGlob doesn't support **.
	var files []string
	if err := filepath.WalkDir(t.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(d.Name(), ".tmpl") {
			files = append(files, path)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no templates found under %s", t.dir)
	}
	return template.New("_root").Funcs(funcMap).ParseFiles(files...)
}

func (t *templates) load() error {
	tc, err := t.parse()
	if err != nil {
		return err
	}
	t.mu.Lock()
	t.cache = tc
	t.mu.Unlock()
	return nil
}

// lookup returns the template set. In dev mode templates are reparsed on each call.
func (t *templates) lookup() (*template.Template, error) {
	if t.devMode {
		return t.parse()
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.cache == nil {
		return nil, fmt.Errorf("templates not initialised")
	}
	return t.cache, nil
}

// render executes the named template into a buffer first so a failing
// template never leaves a half-written page.
func (a *app) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	tmpl, err := a.templates.lookup()
	if err != nil {
		a.fail(w, r, "template parse error", err)
		return
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		a.fail(w, r, "template exec error", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (a *app) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	requestctx.Logger(r.Context()).Error(msg, zap.Error(err))
	http.Error(w, msg, http.StatusInternalServerError)
}
