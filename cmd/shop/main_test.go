package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cdmoen/Museum/internal/platform/config"
)

// newTestRouter builds the same router as main() over the repo templates.
func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg, err := config.Load(
		config.WithEnvFile(""),
		config.WithoutSystemEnv(),
		config.WithEnvMap(map[string]string{
			"SHOP_DEV":           "true",
			"SHOP_TEMPLATES_DIR": "../../templates",
			"SHOP_PUBLIC_DIR":    "../../public",
		}),
	)
	require.NoError(t, err)
	a, err := newApp(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	_, err = a.templates.parse()
	require.NoError(t, err, "templates must parse")
	return newRouter(a)
}

// browser replays cookies between requests like a real visitor.
type browser struct {
	t       *testing.T
	handler http.Handler
	cookies map[string]*http.Cookie
}

func newBrowser(t *testing.T) *browser {
	return &browser{t: t, handler: newTestRouter(t), cookies: map[string]*http.Cookie{}}
}

func (b *browser) do(method, target string, form url.Values, htmx bool) *httptest.ResponseRecorder {
	b.t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	for _, c := range b.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	b.handler.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(b.cookies, c.Name)
			continue
		}
		b.cookies[c.Name] = c
	}
	return rec
}

func (b *browser) get(target string) *httptest.ResponseRecorder {
	return b.do(http.MethodGet, target, nil, false)
}

func (b *browser) add(id, price string, times int) {
	b.t.Helper()
	for i := 0; i < times; i++ {
		rec := b.do(http.MethodPost, "/catalog/add", url.Values{
			"id": {id}, "name": {"Item " + id}, "price": {price}, "image": {"/assets/img/" + id + ".svg"},
		}, true)
		require.Equal(b.t, http.StatusOK, rec.Code, rec.Body.String())
	}
}

func parseDoc(t *testing.T, rec *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rec.Body.String()))
	require.NoError(t, err)
	return doc
}

func summaryAmounts(doc *goquery.Document) map[string]string {
	out := map[string]string{}
	doc.Find("#summary .summary-line").Each(func(_ int, s *goquery.Selection) {
		out[s.AttrOr("data-key", "")] = strings.TrimSpace(s.Find("span").Last().Text())
	})
	return out
}

func TestHealthzOK(t *testing.T) {
	b := newBrowser(t)
	rec := b.get("/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", strings.TrimSpace(rec.Body.String()))
}

func TestRootRedirectsToCatalog(t *testing.T) {
	rec := newBrowser(t).get("/")
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/catalog", rec.Header().Get("Location"))
}

func TestCatalogRendersProductControls(t *testing.T) {
	b := newBrowser(t)
	rec := b.get("/catalog")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	doc := parseDoc(t, rec)
	items := doc.Find(".souvenir-item")
	require.Greater(t, items.Length(), 0)

	btn := doc.Find(`#product-gallery-mug .add-btn`)
	require.Equal(t, 1, btn.Length())
	require.Equal(t, "gallery-mug", btn.AttrOr("data-id", ""))
	require.Equal(t, "Gallery Mug", btn.AttrOr("data-name", ""))
	require.Equal(t, "14.00", btn.AttrOr("data-price", ""))
	require.Equal(t, "/assets/img/mug.svg", btn.AttrOr("data-image", ""))

	badge := doc.Find("#qty-gallery-mug")
	require.Equal(t, 1, badge.Length())
	require.Empty(t, strings.TrimSpace(badge.Text()), "badge is empty before anything is added")

	link := doc.Find("#product-gallery-mug .product-image-link")
	modalURL, err := url.Parse(link.AttrOr("hx-get", ""))
	require.NoError(t, err)
	require.Equal(t, "/catalog/modal", modalURL.Path)
	require.Equal(t, "/assets/img/mug.svg", modalURL.Query().Get("src"))
}

func TestCatalogAddUpsertsAndUpdatesBadge(t *testing.T) {
	b := newBrowser(t)
	form := url.Values{"id": {"gallery-mug"}, "name": {"Gallery Mug"}, "price": {"14.00"}, "image": {"/assets/img/mug.svg"}}

	rec := b.do(http.MethodPost, "/catalog/add", form, true)
	require.Equal(t, http.StatusOK, rec.Code)
	badge := parseDoc(t, rec).Find("#qty-gallery-mug")
	require.Equal(t, "Qty: 1", strings.TrimSpace(badge.Text()))

	rec = b.do(http.MethodPost, "/catalog/add", form, true)
	require.Equal(t, "Qty: 2", strings.TrimSpace(parseDoc(t, rec).Find("#qty-gallery-mug").Text()))

	doc := parseDoc(t, b.get("/catalog"))
	require.Equal(t, "Qty: 2", strings.TrimSpace(doc.Find("#qty-gallery-mug").Text()), "badge is pre-filled from the cart")

	cartDoc := parseDoc(t, b.get("/cart"))
	rows := cartDoc.Find("#items .cart-row")
	require.Equal(t, 1, rows.Length(), "same id never produces a second line")
	require.Equal(t, "Qty: 2", strings.TrimSpace(rows.Find(".cart-qty").Text()))
	require.Equal(t, "$14.00/ea", strings.TrimSpace(rows.Find(".cart-price").Text()))
	require.Equal(t, "$28.00", strings.TrimSpace(rows.Find(".cart-total").Text()))
}

func TestCatalogAddPlainFormRedirects(t *testing.T) {
	b := newBrowser(t)
	rec := b.do(http.MethodPost, "/catalog/add", url.Values{"id": {"a"}, "name": {"A"}, "price": {"5"}}, false)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/catalog", rec.Header().Get("Location"))
	require.Contains(t, b.cookies, "museumCartV1")
}

func TestCatalogAddRejectsBadProduct(t *testing.T) {
	b := newBrowser(t)
	for name, form := range map[string]url.Values{
		"missing id": {"name": {"A"}, "price": {"5"}},
		"bad price":  {"id": {"a"}, "price": {"abc"}},
		"zero price": {"id": {"a"}, "price": {"0"}},
		"no price":   {"id": {"a"}},
	} {
		rec := b.do(http.MethodPost, "/catalog/add", form, true)
		require.Equal(t, http.StatusBadRequest, rec.Code, name)
	}
	require.NotContains(t, b.cookies, "museumCartV1")
}

func TestCartEmptyState(t *testing.T) {
	doc := parseDoc(t, newBrowser(t).get("/cart"))

	require.Equal(t, 0, doc.Find("#items .cart-row").Length())
	_, summaryHidden := doc.Find("#summary").Attr("hidden")
	require.True(t, summaryHidden, "summary hidden for an empty cart")
	_, emptyHidden := doc.Find("#emptyMsg").Attr("hidden")
	require.False(t, emptyHidden, "empty message shown")
	require.Equal(t, 1, doc.Find("#memberToggle").Length())
	require.Equal(t, 1, doc.Find("#clearBtn").Length())
}

func TestCartSummaryNonMember(t *testing.T) {
	b := newBrowser(t)
	b.add("print", "10.00", 6)

	doc := parseDoc(t, b.get("/cart"))
	_, emptyHidden := doc.Find("#emptyMsg").Attr("hidden")
	require.True(t, emptyHidden)

	labels := doc.Find("#summary .summary-line span:first-child").Map(func(_ int, s *goquery.Selection) string {
		return s.Text()
	})
	require.Equal(t, []string{
		"Subtotal of Items:", "Volume Discount:", "Member Discount:", "Shipping Cost:",
		"Subtotal (taxable):", "Tax Rate:", "Tax Amount:", "Invoice Total:",
	}, labels)

	require.Equal(t, map[string]string{
		"items":    "$60.00",
		"volume":   "$3.00",
		"member":   "$0.00",
		"shipping": "$25.00",
		"taxable":  "$82.00",
		"tax-rate": "10.2%",
		"tax":      "$8.36",
		"total":    "$90.36",
	}, summaryAmounts(doc))
}

func TestCartMemberConflictAsksForChoice(t *testing.T) {
	b := newBrowser(t)
	b.add("print", "10.00", 6)

	doc := parseDoc(t, b.get("/cart?member=on"))
	choice := doc.Find("#summary #discountChoice")
	require.Equal(t, 1, choice.Length(), "conflict renders the question in place of the summary")
	require.Contains(t, choice.Find("label").Text(), "Only one discount may be applied. Type 'M' for Member or 'V' for Volume")
	require.Equal(t, 0, doc.Find("#summary .summary-line").Length())
	_, checked := doc.Find("#memberToggle").Attr("checked")
	require.True(t, checked)
	require.Equal(t, 1, doc.Find("#items .cart-row").Length(), "rows still render while the question is pending")
}

func TestCartMemberChoices(t *testing.T) {
	b := newBrowser(t)
	b.add("print", "10.00", 6)

	amounts := summaryAmounts(parseDoc(t, b.get("/cart?member=on&discount=M")))
	require.Equal(t, "$9.00", amounts["member"])
	require.Equal(t, "$0.00", amounts["volume"])
	require.Equal(t, "$76.00", amounts["taxable"])
	require.Equal(t, "$7.75", amounts["tax"])
	require.Equal(t, "$83.75", amounts["total"])

	amounts = summaryAmounts(parseDoc(t, b.get("/cart?member=on&discount=v")))
	require.Equal(t, "$0.00", amounts["member"])
	require.Equal(t, "$3.00", amounts["volume"])
	require.Equal(t, "$90.36", amounts["total"])

	doc := parseDoc(t, b.get("/cart?member=on&discount=maybe"))
	amounts = summaryAmounts(doc)
	require.Equal(t, "$0.00", amounts["member"])
	require.Equal(t, "$0.00", amounts["volume"])
	require.Equal(t, "$85.00", amounts["taxable"])
	require.Equal(t, 1, doc.Find(".summary-note").Length())
}

func TestCartDiscountAnswerOnlyMOrV(t *testing.T) {
	b := newBrowser(t)
	b.add("print", "10.00", 6)

	for _, answer := range []string{"", "member", "%20m%20"} {
		doc := parseDoc(t, b.get("/cart?member=on&discount="+answer))
		require.Equal(t, 0, doc.Find("#discountChoice").Length(), "answer %q is not re-asked", answer)
		amounts := summaryAmounts(doc)
		require.Equal(t, "$0.00", amounts["member"], "answer %q", answer)
		require.Equal(t, "$0.00", amounts["volume"], "answer %q", answer)
		require.Equal(t, "$85.00", amounts["taxable"], "answer %q", answer)
	}
}

func TestCartMemberWithoutConflict(t *testing.T) {
	b := newBrowser(t)
	b.add("mug", "20.00", 2)

	doc := parseDoc(t, b.get("/cart?member=on"))
	require.Equal(t, 0, doc.Find("#discountChoice").Length())
	amounts := summaryAmounts(doc)
	require.Equal(t, "$6.00", amounts["member"])
	require.Equal(t, "$0.00", amounts["volume"])
	require.Equal(t, "$65.02", amounts["total"])
}

func TestCartViewFragmentPushesURL(t *testing.T) {
	b := newBrowser(t)
	b.add("print", "10.00", 6)

	rec := b.do(http.MethodGet, "/cart/view?member=on&discount=M", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "/cart?discount=M&member=on", rec.Header().Get("HX-Push-Url"))
	doc := parseDoc(t, rec)
	require.Equal(t, 1, doc.Find("#cartView").Length())
	require.Equal(t, 0, doc.Find("header.site-header").Length(), "fragment has no layout")
}

func TestCartRemoveLastLineShowsEmptyState(t *testing.T) {
	b := newBrowser(t)
	b.add("print", "10.00", 1)

	doc := parseDoc(t, b.get("/cart"))
	_, summaryHidden := doc.Find("#summary").Attr("hidden")
	require.False(t, summaryHidden)

	rec := b.do(http.MethodPost, "/cart/remove", url.Values{"id": {"print"}}, true)
	require.Equal(t, http.StatusOK, rec.Code)
	doc = parseDoc(t, rec)
	require.Equal(t, 0, doc.Find("#items .cart-row").Length())
	_, summaryHidden = doc.Find("#summary").Attr("hidden")
	require.True(t, summaryHidden)
	_, emptyHidden := doc.Find("#emptyMsg").Attr("hidden")
	require.False(t, emptyHidden)
}

func TestCartRemoveKeepsMemberAndAsksAgain(t *testing.T) {
	b := newBrowser(t)
	b.add("print", "10.00", 6)
	b.add("pin", "4.00", 1)

	rec := b.do(http.MethodPost, "/cart/remove", url.Values{"id": {"pin"}, "member": {"on"}}, false)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/cart?member=on", rec.Header().Get("Location"))

	doc := parseDoc(t, b.get(rec.Header().Get("Location")))
	require.Equal(t, 1, doc.Find("#items .cart-row").Length())
	require.Equal(t, 1, doc.Find("#discountChoice").Length())
}

func TestCartRemoveRequiresID(t *testing.T) {
	rec := newBrowser(t).do(http.MethodPost, "/cart/remove", url.Values{}, true)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCartClearResetsMember(t *testing.T) {
	b := newBrowser(t)
	b.add("print", "10.00", 6)

	rec := b.do(http.MethodPost, "/cart/clear", url.Values{"member": {"on"}}, true)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "/cart", rec.Header().Get("HX-Push-Url"))
	doc := parseDoc(t, rec)
	_, checked := doc.Find("#memberToggle").Attr("checked")
	require.False(t, checked, "clear unchecks the member toggle")
	_, emptyHidden := doc.Find("#emptyMsg").Attr("hidden")
	require.False(t, emptyHidden)

	doc = parseDoc(t, b.get("/catalog"))
	require.Empty(t, strings.TrimSpace(doc.Find("#qty-print").Text()))
}

func TestCartRenderIsIdempotent(t *testing.T) {
	b := newBrowser(t)
	b.add("print", "10.00", 3)
	b.add("mug", "14.00", 2)

	first := b.get("/cart?member=on&discount=V").Body.String()
	second := b.get("/cart?member=on&discount=V").Body.String()
	require.Equal(t, first, second)
}

func TestCartForgedCookieReadsEmpty(t *testing.T) {
	b := newBrowser(t)
	b.cookies["museumCartV1"] = &http.Cookie{Name: "museumCartV1", Value: "not-a-valid-cookie"}

	rec := b.get("/cart")
	require.Equal(t, http.StatusOK, rec.Code)
	_, emptyHidden := parseDoc(t, rec).Find("#emptyMsg").Attr("hidden")
	require.False(t, emptyHidden)
}

func TestCatalogModal(t *testing.T) {
	b := newBrowser(t)

	rec := b.do(http.MethodGet, "/catalog/modal?src=%2Fassets%2Fimg%2Fmug.svg&alt=Gallery+Mug", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	doc := parseDoc(t, rec)
	img := doc.Find("#modal #modal-image")
	require.Equal(t, "/assets/img/mug.svg", img.AttrOr("src", ""))
	require.Equal(t, "Gallery Mug", img.AttrOr("alt", ""))
	require.Equal(t, "/catalog/modal/close", doc.Find("#modal").AttrOr("hx-get", ""))
	require.Equal(t, 1, doc.Find("#modal .modal-close").Length())

	rec = b.do(http.MethodGet, "/catalog/modal/close", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, rec.Body.String())

	rec = b.do(http.MethodGet, "/catalog/modal", nil, true)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInvoiceAPI(t *testing.T) {
	b := newBrowser(t)

	rec := b.get("/api/cart/invoice")
	require.Equal(t, http.StatusOK, rec.Code)
	var empty map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &empty))
	require.Equal(t, true, empty["empty"])

	b.add("print", "10.00", 6)

	rec = b.get("/api/cart/invoice?member=on")
	require.Equal(t, http.StatusConflict, rec.Code)
	var conflict map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &conflict))
	require.Equal(t, "discount_choice_required", conflict["error"])
	require.Contains(t, conflict["message"], "Only one discount may be applied")

	rec = b.get("/api/cart/invoice")
	require.Equal(t, http.StatusOK, rec.Code)
	var inv invoiceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &inv))
	require.False(t, inv.Empty)
	require.Len(t, inv.Lines, 1)
	require.Equal(t, 6, inv.Lines[0].Qty)
	require.Equal(t, "60", inv.ItemsSubtotal)
	require.Equal(t, "82", inv.TaxableSubtotal)
	require.Equal(t, "8.364", inv.Tax)
	require.Equal(t, "90.364", inv.Total)
	require.Len(t, inv.Summary, 8)

	rec = b.get("/api/cart/invoice?member=on&discount=M")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &inv))
	require.Equal(t, "member", inv.Choice)
	require.Equal(t, "83.752", inv.Total)
}
