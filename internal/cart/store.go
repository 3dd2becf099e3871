package cart

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrSlotUnavailable wraps failures of the underlying slot.
	ErrSlotUnavailable = errors.New("cart: slot unavailable")
	// ErrSlotEmpty is returned by Slot.Load when nothing has been stored yet.
	ErrSlotEmpty = errors.New("cart: slot empty")
)

// Slot is the raw named key-value slot holding the encoded cart.
type Slot interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// StoreDeps wires a Store.
type StoreDeps struct {
	Slot   Slot
	Logger func(context.Context, string, map[string]any)
}

// Store reads and writes the cart list through a Slot. It does not lock:
// concurrent writers race and the last one wins.
type Store struct {
	slot   Slot
	logger func(context.Context, string, map[string]any)
}

// NewStore returns a Store over deps.Slot.
func NewStore(deps StoreDeps) (*Store, error) {
	if deps.Slot == nil {
		return nil, errors.New("cart store: slot is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	return &Store{slot: deps.Slot, logger: logger}, nil
}

// Read returns the stored list. A missing, unreadable or malformed slot reads
// as an empty cart; the failure is only logged.
func (s *Store) Read(ctx context.Context) []LineItem {
	data, err := s.slot.Load(ctx)
	if err != nil {
		if !errors.Is(err, ErrSlotEmpty) {
			s.logger(ctx, "cart.read_failed", map[string]any{"error": err.Error()})
		}
		return []LineItem{}
	}
	if len(data) == 0 {
		return []LineItem{}
	}
	items, err := Decode(data)
	if err != nil {
		s.logger(ctx, "cart.decode_failed", map[string]any{"error": err.Error(), "bytes": len(data)})
		return []LineItem{}
	}
	return items
}

// Write replaces the slot contents with items.
func (s *Store) Write(ctx context.Context, items []LineItem) error {
	data, err := Encode(items)
	if err != nil {
		return fmt.Errorf("cart: encode: %w", err)
	}
	if err := s.slot.Save(ctx, data); err != nil {
		return fmt.Errorf("%w: %v", ErrSlotUnavailable, err)
	}
	s.logger(ctx, "cart.written", map[string]any{"lines": len(items)})
	return nil
}

// RemoveLine drops the line with the given id. Removing an unknown id rewrites
// the list unchanged.
func (s *Store) RemoveLine(ctx context.Context, id string) error {
	items := s.Read(ctx)
	kept := make([]LineItem, 0, len(items))
	for _, item := range items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	return s.Write(ctx, kept)
}

// Clear stores an empty list.
func (s *Store) Clear(ctx context.Context) error {
	return s.Write(ctx, []LineItem{})
}

// Add upserts p: an existing line gains one unit, otherwise a new line with
// quantity 1 is appended. The stored line is returned for badge updates.
func (s *Store) Add(ctx context.Context, p Product) (LineItem, error) {
	if err := p.validate(); err != nil {
		return LineItem{}, err
	}
	items := s.Read(ctx)
	var added LineItem
	found := false
	for i := range items {
		if items[i].ID == p.ID {
			items[i].Quantity++
			added = items[i]
			found = true
			break
		}
	}
	if !found {
		added = LineItem{ID: p.ID, Name: p.Name, UnitPrice: p.UnitPrice, Quantity: 1, Image: p.Image}
		items = append(items, added)
	}
	if err := s.Write(ctx, items); err != nil {
		return LineItem{}, err
	}
	return added, nil
}

// Quantities indexes the stored quantity of every line by id.
func (s *Store) Quantities(ctx context.Context) map[string]int {
	items := s.Read(ctx)
	out := make(map[string]int, len(items))
	for _, item := range items {
		if _, ok := out[item.ID]; !ok {
			out[item.ID] = item.Quantity
		}
	}
	return out
}
