// Package slot provides the named storage slots a cart.Store can sit on.
package slot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/securecookie"

	"github.com/cdmoen/Museum/internal/cart"
)

const (
	defaultCookieName = "museumCartV1"
	defaultCookiePath = "/"
	defaultMaxAge     = 30 * 24 * time.Hour
	defaultMaxBytes   = 4096
)

// ErrInvalidConfig indicates the cookie codec was built from unusable options.
var ErrInvalidConfig = errors.New("slot: invalid config")

// CookieConfig controls how the cart slot is encoded into a browser cookie.
type CookieConfig struct {
	Name     string
	HashKey  []byte
	BlockKey []byte
	Path     string
	MaxAge   time.Duration
	// MaxBytes bounds the encoded cookie value; larger carts fail to save.
	MaxBytes int
	Secure   bool
	// Ephemeral allows a random hash key when none is configured. Cookies
	// written under it do not survive a restart.
	Ephemeral bool
}

// CookieCodec signs and optionally encrypts cart slot cookies.
type CookieCodec struct {
	cfg   CookieConfig
	codec *securecookie.SecureCookie
}

// NewCookieCodec validates cfg and prepares the securecookie codec.
func NewCookieCodec(cfg CookieConfig) (*CookieCodec, error) {
	if cfg.Name == "" {
		cfg.Name = defaultCookieName
	}
	if cfg.Path == "" {
		cfg.Path = defaultCookiePath
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = defaultMaxAge
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = defaultMaxBytes
	}
	if len(cfg.HashKey) == 0 {
		if !cfg.Ephemeral {
			return nil, fmt.Errorf("%w: hash key is required", ErrInvalidConfig)
		}
		cfg.HashKey = securecookie.GenerateRandomKey(32)
		if cfg.HashKey == nil {
			return nil, fmt.Errorf("%w: unable to generate ephemeral hash key", ErrInvalidConfig)
		}
	}
	if n := len(cfg.BlockKey); n != 0 && n != 16 && n != 24 && n != 32 {
		return nil, fmt.Errorf("%w: block key must be 16, 24 or 32 bytes", ErrInvalidConfig)
	}

	codec := securecookie.New(cfg.HashKey, cfg.BlockKey)
	codec.SetSerializer(securecookie.NopEncoder{})
	codec.MaxAge(int(cfg.MaxAge.Seconds()))
	codec.MaxLength(cfg.MaxBytes)

	return &CookieCodec{cfg: cfg, codec: codec}, nil
}

// Bind returns the slot for a single request/response pair.
func (c *CookieCodec) Bind(w http.ResponseWriter, r *http.Request) *Cookie {
	return &Cookie{codec: c, w: w, r: r}
}

// Cookie is a cart slot stored in the visitor's browser. It is bound to one
// request: Load sees anything saved earlier in the same request.
type Cookie struct {
	codec *CookieCodec
	w     http.ResponseWriter
	r     *http.Request
	saved []byte
	dirty bool
}

// Load implements cart.Slot.
func (s *Cookie) Load(context.Context) ([]byte, error) {
	if s.dirty {
		return append([]byte(nil), s.saved...), nil
	}
	cookie, err := s.r.Cookie(s.codec.cfg.Name)
	if err != nil {
		return nil, cart.ErrSlotEmpty
	}
	var data []byte
	if err := s.codec.codec.Decode(s.codec.cfg.Name, cookie.Value, &data); err != nil {
		return nil, fmt.Errorf("slot: decode cookie: %w", err)
	}
	return data, nil
}

// Save implements cart.Slot. Saving twice in a request replaces the earlier Set-Cookie.
func (s *Cookie) Save(_ context.Context, data []byte) error {
	encoded, err := s.codec.codec.Encode(s.codec.cfg.Name, data)
	if err != nil {
		return fmt.Errorf("slot: encode cookie: %w", err)
	}
	cfg := s.codec.cfg
	cookie := &http.Cookie{
		Name:     cfg.Name,
		Value:    encoded,
		Path:     cfg.Path,
		MaxAge:   int(cfg.MaxAge.Seconds()),
		Expires:  time.Now().Add(cfg.MaxAge).UTC(),
		Secure:   cfg.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	dropSetCookie(s.w.Header(), cfg.Name)
	http.SetCookie(s.w, cookie)

	s.saved = append([]byte(nil), data...)
	s.dirty = true
	return nil
}

func dropSetCookie(h http.Header, name string) {
	existing := h.Values("Set-Cookie")
	if len(existing) == 0 {
		return
	}
	h.Del("Set-Cookie")
	prefix := name + "="
	for _, v := range existing {
		if !strings.HasPrefix(v, prefix) {
			h.Add("Set-Cookie", v)
		}
	}
}
