package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	defaultEnvFile        = ".env"
	defaultPort           = "8080"
	defaultReadTimeout    = 15 * time.Second
	defaultWriteTimeout   = 15 * time.Second
	defaultIdleTimeout    = 60 * time.Second
	defaultHandlerTimeout = 30 * time.Second
	defaultEnvironment    = "local"
	defaultTemplatesDir   = "templates"
	defaultPublicDir      = "public"
	defaultCartCookieName = "museumCartV1"
	defaultCartMaxAge     = 30 * 24 * time.Hour
	defaultCartMaxBytes   = 4096
	defaultLogLevel       = "info"

	minHashKeyLength = 32
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server  ServerConfig
	Site    SiteConfig
	Cart    CartConfig
	Logging LoggingConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	HandlerTimeout time.Duration
}

// SiteConfig locates templates, static assets and the product catalog.
type SiteConfig struct {
	Environment  string
	DevMode      bool
	TemplatesDir string
	PublicDir    string
	// CatalogFile is optional; the embedded catalog is used when empty.
	CatalogFile string
}

// CartConfig controls the visitor-side cart slot cookie.
type CartConfig struct {
	CookieName string
	HashKey    []byte
	BlockKey   []byte
	MaxAge     time.Duration
	// MaxBytes bounds the encoded cookie value.
	MaxBytes int
	Secure   bool
}

// LoggingConfig sets the zap level.
type LoggingConfig struct {
	Level string
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values in the map
// take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from os.Getenv, relying only on provided maps and .env files.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load assembles the application configuration by combining defaults, .env overrides
// and environment variables.
func Load(opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if dotEnvValues != nil {
			if value, ok := dotEnvValues[key]; ok {
				return value, true
			}
		}
		return "", false
	}

	// Cloud Run injects PORT; the shop-specific key wins when both are present.
	port := stringWithDefault(lookup, "PORT", defaultPort)
	port = stringWithDefault(lookup, "SHOP_SERVER_PORT", port)

	environment := strings.ToLower(stringWithDefault(lookup, "SHOP_ENV", defaultEnvironment))

	cfg := Config{
		Server: ServerConfig{
			Port:           port,
			ReadTimeout:    durationWithDefault(lookup, "SHOP_SERVER_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout:   durationWithDefault(lookup, "SHOP_SERVER_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:    durationWithDefault(lookup, "SHOP_SERVER_IDLE_TIMEOUT", defaultIdleTimeout),
			HandlerTimeout: durationWithDefault(lookup, "SHOP_SERVER_HANDLER_TIMEOUT", defaultHandlerTimeout),
		},
		Site: SiteConfig{
			Environment:  environment,
			DevMode:      boolWithDefault(lookup, "SHOP_DEV", false),
			TemplatesDir: stringWithDefault(lookup, "SHOP_TEMPLATES_DIR", defaultTemplatesDir),
			PublicDir:    stringWithDefault(lookup, "SHOP_PUBLIC_DIR", defaultPublicDir),
			CatalogFile:  strings.TrimSpace(stringWithDefault(lookup, "SHOP_CATALOG_FILE", "")),
		},
		Cart: CartConfig{
			CookieName: stringWithDefault(lookup, "SHOP_CART_COOKIE_NAME", defaultCartCookieName),
			HashKey:    bytesWithDefault(lookup, "SHOP_CART_HASH_KEY"),
			BlockKey:   bytesWithDefault(lookup, "SHOP_CART_BLOCK_KEY"),
			MaxAge:     durationWithDefault(lookup, "SHOP_CART_MAX_AGE", defaultCartMaxAge),
			MaxBytes:   intWithDefault(lookup, "SHOP_CART_MAX_BYTES", defaultCartMaxBytes),
			Secure:     environment == "prod",
		},
		Logging: LoggingConfig{
			Level: stringWithDefault(lookup, "SHOP_LOG_LEVEL", defaultLogLevel),
		},
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg Config) error {
	var missing []string

	if cfg.Server.Port == "" {
		missing = append(missing, "Server.Port")
	}
	if strings.TrimSpace(cfg.Cart.CookieName) == "" {
		missing = append(missing, "Cart.CookieName")
	}
	if cfg.Cart.MaxAge <= 0 {
		missing = append(missing, "Cart.MaxAge")
	}
	// Dev mode falls back to an ephemeral key; everything else must pin one so
	// cookies survive restarts.
	if !cfg.Site.DevMode && len(cfg.Cart.HashKey) < minHashKeyLength {
		missing = append(missing, "Cart.HashKey")
	}
	if cfg.Cart.MaxBytes <= 0 {
		missing = append(missing, "Cart.MaxBytes")
	}
	if n := len(cfg.Cart.BlockKey); n != 0 && n != 16 && n != 24 && n != 32 {
		missing = append(missing, "Cart.BlockKey")
	}

	if len(missing) > 0 {
		return &ValidationError{fields: missing}
	}
	return nil
}

// Addr returns the listen address derived from the port.
func (c ServerConfig) Addr() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	file, err := os.Open(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	values := make(map[string]string)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "export ") {
			line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if key == "" {
			continue
		}
		value = strings.Trim(value, "\"'")
		values[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: failed parsing %s: %w", absPath, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && value != "" {
		return value
	}
	return fallback
}

func bytesWithDefault(lookup func(string) (string, bool), key string) []byte {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		return []byte(strings.TrimSpace(value))
	}
	return nil
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return fallback
}

func boolWithDefault(lookup func(string) (string, bool), key string, fallback bool) bool {
	if value, ok := lookup(key); ok && value != "" {
		switch strings.ToLower(value) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return fallback
}

func intWithDefault(lookup func(string) (string, bool), key string, fallback int) int {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}
