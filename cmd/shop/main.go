package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/cdmoen/Museum/internal/catalog"
	mw "github.com/cdmoen/Museum/internal/middleware"
	"github.com/cdmoen/Museum/internal/platform/config"
	"github.com/cdmoen/Museum/internal/platform/observability"
	"github.com/cdmoen/Museum/internal/platform/slot"
	"github.com/cdmoen/Museum/internal/pricing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	baseLogger, err := observability.NewLogger(cfg.Logging.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()
	logger := baseLogger.Named("shop")

	a, err := newApp(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialise shop", zap.Error(err))
	}

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           newRouter(a),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr), zap.Bool("dev", cfg.Site.DevMode))
	go func() {
		serverLogger.Info("museum shop listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutdown signal received; draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// newApp wires the catalog, calculator, cookie slot and templates from cfg.
func newApp(cfg config.Config, logger *zap.Logger) (*app, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	events := observability.EventLogger(logger)

	cat, err := catalog.LoadFile(cfg.Site.CatalogFile)
	if err != nil {
		return nil, err
	}

	calc, err := pricing.NewCalculator(pricing.CalculatorDeps{Logger: events})
	if err != nil {
		return nil, err
	}

	if len(cfg.Cart.HashKey) == 0 {
		logger.Warn("cart: using ephemeral cookie key (dev); carts reset on restart. Set SHOP_CART_HASH_KEY for production.")
	}
	cookies, err := slot.NewCookieCodec(slot.CookieConfig{
		Name:      cfg.Cart.CookieName,
		HashKey:   cfg.Cart.HashKey,
		BlockKey:  cfg.Cart.BlockKey,
		MaxAge:    cfg.Cart.MaxAge,
		MaxBytes:  cfg.Cart.MaxBytes,
		Secure:    cfg.Cart.Secure,
		Ephemeral: cfg.Site.DevMode,
	})
	if err != nil {
		return nil, err
	}

	views := &templates{dir: cfg.Site.TemplatesDir, devMode: cfg.Site.DevMode}
	if !cfg.Site.DevMode {
		// Parse templates once in production
		if err := views.load(); err != nil {
			return nil, fmt.Errorf("parse templates: %w", err)
		}
	}

	return &app{
		cfg:       cfg,
		logger:    logger,
		events:    events,
		catalog:   cat,
		calc:      calc,
		cookies:   cookies,
		templates: views,
	}, nil
}

// newRouter builds the chi router; tests use it directly.
func newRouter(a *app) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	// RealIP trusts X-Forwarded-For; only deploy behind a proxy that sets it.
	r.Use(chimw.RealIP)
	r.Use(observability.InjectLoggerMiddleware(a.logger))
	r.Use(mw.HTMX)
	r.Use(observability.RequestLoggerMiddleware)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	if a.cfg.Server.HandlerTimeout > 0 {
		r.Use(chimw.Timeout(a.cfg.Server.HandlerTimeout))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	assets := http.StripPrefix("/assets", mw.AssetsWithCache(filepath.Join(a.cfg.Site.PublicDir, "assets")))
	r.Handle("/assets/*", assets)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/catalog", http.StatusFound)
	})

	r.Group(func(r chi.Router) {
		r.Use(mw.NoStore)

		r.Get("/catalog", a.CatalogHandler)
		r.Post("/catalog/add", a.CatalogAddHandler)
		r.Get("/catalog/modal", a.CatalogModalFrag)
		r.Get("/catalog/modal/close", a.CatalogModalCloseFrag)

		r.Get("/cart", a.CartHandler)
		r.Get("/cart/view", a.CartViewFrag)
		r.Post("/cart/remove", a.CartRemoveHandler)
		r.Post("/cart/clear", a.CartClearHandler)

		r.Get("/api/cart/invoice", a.InvoiceAPIHandler)
	})

	return r
}
