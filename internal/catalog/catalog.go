// Package catalog loads the gift shop's product list.
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/shopspring/decimal"
	"github.com/yuin/goldmark"
	"gopkg.in/yaml.v3"

	"github.com/cdmoen/Museum/internal/cart"
)

// ErrInvalidCatalog wraps every catalog parse or validation failure.
var ErrInvalidCatalog = errors.New("catalog: invalid catalog")

//go:embed catalog.yaml
var defaultCatalog []byte

// productID keeps ids usable in element ids and CSS selectors such as #qty-{id}.
var productID = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

var (
	markdown     = goldmark.New()
	blurbPolicy  = newBlurbPolicy()
	errNoSection = errors.New("no sections")
)

// Product is one item on the catalog page.
type Product struct {
	ID        string
	Name      string
	UnitPrice decimal.Decimal
	Image     string
	Alt       string
	// Blurb is sanitized HTML rendered from the markdown description.
	Blurb template.HTML
}

// CartProduct converts p into the add-to-cart payload.
func (p Product) CartProduct() cart.Product {
	return cart.Product{ID: p.ID, Name: p.Name, UnitPrice: p.UnitPrice, Image: p.Image}
}

// Section groups products under a heading.
type Section struct {
	Title    string
	Products []Product
}

// Catalog is the parsed product list.
type Catalog struct {
	Title    string
	Sections []Section
}

// Products returns every product in display order.
func (c *Catalog) Products() []Product {
	var out []Product
	for _, s := range c.Sections {
		out = append(out, s.Products...)
	}
	return out
}

// Lookup finds a product by id.
func (c *Catalog) Lookup(id string) (Product, bool) {
	for _, s := range c.Sections {
		for _, p := range s.Products {
			if p.ID == id {
				return p, true
			}
		}
	}
	return Product{}, false
}

type catalogFile struct {
	Title    string        `yaml:"title"`
	Sections []sectionFile `yaml:"sections"`
}

type sectionFile struct {
	Title    string        `yaml:"title"`
	Products []productFile `yaml:"products"`
}

type productFile struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Price       string `yaml:"price"`
	Image       string `yaml:"image"`
	Alt         string `yaml:"alt"`
	Description string `yaml:"description"`
}

// Default returns the catalog shipped with the binary.
func Default() (*Catalog, error) {
	return Parse(bytes.NewReader(defaultCatalog))
}

// LoadFile parses the catalog at path, or the embedded one when path is empty.
func LoadFile(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads a YAML catalog.
func Parse(r io.Reader) (*Catalog, error) {
	var raw catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, errNoSection)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if len(raw.Sections) == 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, errNoSection)
	}

	out := &Catalog{Title: strings.TrimSpace(raw.Title), Sections: make([]Section, 0, len(raw.Sections))}
	seen := make(map[string]bool)
	for si, rs := range raw.Sections {
		section := Section{Title: strings.TrimSpace(rs.Title), Products: make([]Product, 0, len(rs.Products))}
		for pi, rp := range rs.Products {
			p, err := buildProduct(rp)
			if err != nil {
				return nil, fmt.Errorf("%w: section %d product %d: %v", ErrInvalidCatalog, si, pi, err)
			}
			if seen[p.ID] {
				return nil, fmt.Errorf("%w: duplicate product id %q", ErrInvalidCatalog, p.ID)
			}
			seen[p.ID] = true
			section.Products = append(section.Products, p)
		}
		out.Sections = append(out.Sections, section)
	}
	return out, nil
}

func buildProduct(rp productFile) (Product, error) {
	cp, err := cart.ParseProduct(rp.ID, strings.TrimSpace(rp.Name), rp.Price, strings.TrimSpace(rp.Image))
	if err != nil {
		return Product{}, err
	}
	if !productID.MatchString(cp.ID) {
		return Product{}, fmt.Errorf("product id %q may only hold letters, digits, '-' and '_'", cp.ID)
	}
	if cp.Name == "" {
		return Product{}, fmt.Errorf("product %q has no name", cp.ID)
	}
	blurb, err := renderBlurb(rp.Description)
	if err != nil {
		return Product{}, fmt.Errorf("product %q description: %w", cp.ID, err)
	}
	alt := strings.TrimSpace(rp.Alt)
	if alt == "" {
		alt = cp.Name
	}
	return Product{
		ID:        cp.ID,
		Name:      cp.Name,
		UnitPrice: cp.UnitPrice,
		Image:     cp.Image,
		Alt:       alt,
		Blurb:     blurb,
	}, nil
}

func renderBlurb(src string) (template.HTML, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return template.HTML(strings.TrimSpace(blurbPolicy.Sanitize(buf.String()))), nil
}

func newBlurbPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").OnElements("p", "span", "em", "strong")
	policy.RequireNoFollowOnLinks(true)
	return policy
}
