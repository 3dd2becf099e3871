package slot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cdmoen/Museum/internal/cart"
)

// File keeps the slot in a JSON file, used by the command line tool.
type File struct {
	Path string
}

// NewFile returns a file-backed slot.
func NewFile(path string) *File {
	return &File{Path: path}
}

// Load implements cart.Slot.
func (f *File) Load(context.Context) ([]byte, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, cart.ErrSlotEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("slot: read %s: %w", f.Path, err)
	}
	return data, nil
}

// Save implements cart.Slot by writing a temp file and renaming it into place.
func (f *File) Save(_ context.Context, data []byte) error {
	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("slot: create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.Path)+".*")
	if err != nil {
		return fmt.Errorf("slot: temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("slot: write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("slot: close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), f.Path); err != nil {
		return fmt.Errorf("slot: replace %s: %w", f.Path, err)
	}
	return nil
}
