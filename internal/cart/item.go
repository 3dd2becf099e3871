package cart

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidProduct is returned when an add-to-cart request carries an unusable product.
var ErrInvalidProduct = errors.New("cart: invalid product")

// LineItem is one product entry in the cart.
type LineItem struct {
	ID        string
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
	Image     string
}

// Present reports whether the line counts towards the cart. Lines with a
// non-positive quantity or price are treated as absent.
func (i LineItem) Present() bool {
	return i.Quantity > 0 && i.UnitPrice.IsPositive()
}

// LineTotal is unit price times quantity.
func (i LineItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Valid returns the present lines in their original order.
func Valid(items []LineItem) []LineItem {
	out := make([]LineItem, 0, len(items))
	for _, item := range items {
		if item.Present() {
			out = append(out, item)
		}
	}
	return out
}

// Product is what a catalog control hands to the add-to-cart action.
type Product struct {
	ID        string
	Name      string
	UnitPrice decimal.Decimal
	Image     string
}

// ParseProduct builds a Product from the raw attribute values of a catalog control.
func ParseProduct(id, name, price, image string) (Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Product{}, fmt.Errorf("%w: id is required", ErrInvalidProduct)
	}
	unit, err := decimal.NewFromString(strings.TrimSpace(price))
	if err != nil {
		return Product{}, fmt.Errorf("%w: price %q: %v", ErrInvalidProduct, price, err)
	}
	p := Product{ID: id, Name: name, UnitPrice: unit, Image: image}
	if err := p.validate(); err != nil {
		return Product{}, err
	}
	return p, nil
}

func (p Product) validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidProduct)
	}
	if !p.UnitPrice.IsPositive() {
		return fmt.Errorf("%w: price must be positive", ErrInvalidProduct)
	}
	return nil
}
