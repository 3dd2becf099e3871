package slot

import (
	"context"
	"sync"

	"github.com/cdmoen/Museum/internal/cart"
)

// Memory keeps the slot in process memory.
type Memory struct {
	mu   sync.Mutex
	data []byte
	set  bool
}

// NewMemory returns a memory slot, optionally pre-filled.
func NewMemory(initial []byte) *Memory {
	m := &Memory{}
	if initial != nil {
		m.data = append([]byte(nil), initial...)
		m.set = true
	}
	return m
}

// Load implements cart.Slot.
func (m *Memory) Load(context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.set {
		return nil, cart.ErrSlotEmpty
	}
	return append([]byte(nil), m.data...), nil
}

// Save implements cart.Slot.
func (m *Memory) Save(_ context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append([]byte(nil), data...)
	m.set = true
	return nil
}

// Bytes returns the raw slot contents.
func (m *Memory) Bytes() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.data...)
}
