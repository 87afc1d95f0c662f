package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/titanous/json5"
)

const (
	// DefaultMaxWidth is the preview bounding box width in pixels.
	DefaultMaxWidth = 500
	// DefaultMaxHeight is the preview bounding box height in pixels.
	DefaultMaxHeight = 500
	// DefaultFilter is the resampling filter used when painting.
	DefaultFilter = "catmullrom"
)

// Filters lists the accepted resampling filter names.
var Filters = []string{"nearest", "approx", "bilinear", "catmullrom"}

// Config holds user preferences.
type Config struct {
	MaxWidth  int    `json:"max_width,omitempty"`
	MaxHeight int    `json:"max_height,omitempty"`
	Filter    string `json:"filter,omitempty"`
	Preview   *bool  `json:"preview,omitempty"`
	AutoCopy  *bool  `json:"auto_copy,omitempty"`
	AutoOpen  *bool  `json:"auto_open,omitempty"`
	CacheTTL  string `json:"cache_ttl,omitempty"`
	LogFile   string `json:"log_file,omitempty"`
}

// knownKey describes a config key and its optional validator.
type knownKey struct {
	validate func(string) error
}

var knownKeys = map[string]knownKey{
	"max_width":  {validate: validatePositiveInt},
	"max_height": {validate: validatePositiveInt},
	"filter":     {validate: validateEnum(Filters...)},
	"preview":    {validate: validateBool},
	"auto_copy":  {validate: validateBool},
	"auto_open":  {validate: validateBool},
	"cache_ttl":  {validate: validateDuration},
	"log_file":   {validate: nil},
}

func validateEnum(allowed ...string) func(string) error {
	return func(val string) error {
		for _, a := range allowed {
			if val == a {
				return nil
			}
		}

		return fmt.Errorf("must be one of: %s", strings.Join(allowed, ", "))
	}
}

func validateBool(val string) error {
	if val != "true" && val != "false" {
		return fmt.Errorf("must be true or false")
	}

	return nil
}

func validatePositiveInt(val string) error {
	n, err := strconv.Atoi(val)
	if err != nil || n <= 0 {
		return fmt.Errorf("must be a positive integer")
	}

	return nil
}

func validateDuration(val string) error {
	_, err := time.ParseDuration(val)
	if err != nil {
		return fmt.Errorf("invalid duration: %w", err)
	}

	return nil
}

// Bounds returns the effective preview bounding box, falling back to
// 500x500 for unset or non-positive values.
func (cfg *Config) Bounds() (int, int) {
	w, h := DefaultMaxWidth, DefaultMaxHeight
	if cfg == nil {
		return w, h
	}

	if cfg.MaxWidth > 0 {
		w = cfg.MaxWidth
	}

	if cfg.MaxHeight > 0 {
		h = cfg.MaxHeight
	}

	return w, h
}

// EffectiveFilter returns the configured filter or DefaultFilter.
func (cfg *Config) EffectiveFilter() string {
	if cfg == nil || cfg.Filter == "" {
		return DefaultFilter
	}

	return cfg.Filter
}

// CacheTTLDuration parses CacheTTL as a time.Duration.
// Returns 24h on empty or invalid values.
func (cfg *Config) CacheTTLDuration() time.Duration {
	if cfg == nil || cfg.CacheTTL == "" {
		return 24 * time.Hour
	}

	d, err := time.ParseDuration(cfg.CacheTTL)
	if err != nil {
		return 24 * time.Hour
	}

	return d
}

// Load reads config from the JSON5 file at path.
// Returns an empty Config if the file does not exist.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Config{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := json5.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return &cfg, nil
}

// Save writes config as pretty-printed JSON atomically.
func Save(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	data = append(data, '\n')

	return atomicWrite(path, data)
}

// atomicWrite writes data to path via temp-file + rename.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	tmpPath := tmp.Name()

	defer func() {
		if tmpPath != "" {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()

		return fmt.Errorf("writing temp file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}

	tmpPath = ""

	return nil
}

func boolString(b *bool) (string, bool) {
	if b == nil {
		return "", false
	}

	return strconv.FormatBool(*b), true
}

func intString(n int) (string, bool) {
	if n <= 0 {
		return "", false
	}

	return strconv.Itoa(n), true
}

// Get returns the string value for a config key and whether it is set.
func (cfg *Config) Get(key string) (string, bool) {
	switch key {
	case "max_width":
		return intString(cfg.MaxWidth)
	case "max_height":
		return intString(cfg.MaxHeight)
	case "filter":
		return cfg.Filter, cfg.Filter != ""
	case "preview":
		return boolString(cfg.Preview)
	case "auto_copy":
		return boolString(cfg.AutoCopy)
	case "auto_open":
		return boolString(cfg.AutoOpen)
	case "cache_ttl":
		return cfg.CacheTTL, cfg.CacheTTL != ""
	case "log_file":
		return cfg.LogFile, cfg.LogFile != ""
	default:
		return "", false
	}
}

// Set sets a config key to a value after validation.
func (cfg *Config) Set(key, value string) error {
	kk, ok := knownKeys[key]
	if !ok {
		return fmt.Errorf("unknown config key: %s (valid keys: %s)", key, strings.Join(KnownKeys(), ", "))
	}

	if kk.validate != nil {
		if err := kk.validate(value); err != nil {
			return fmt.Errorf("invalid value for %s: %w", key, err)
		}
	}

	switch key {
	case "max_width":
		cfg.MaxWidth, _ = strconv.Atoi(value)
	case "max_height":
		cfg.MaxHeight, _ = strconv.Atoi(value)
	case "filter":
		cfg.Filter = value
	case "preview":
		b := value == "true"
		cfg.Preview = &b
	case "auto_copy":
		b := value == "true"
		cfg.AutoCopy = &b
	case "auto_open":
		b := value == "true"
		cfg.AutoOpen = &b
	case "cache_ttl":
		cfg.CacheTTL = value
	case "log_file":
		cfg.LogFile = value
	}

	return nil
}

// Unset removes a config key (resets to zero/nil).
func (cfg *Config) Unset(key string) error {
	if _, ok := knownKeys[key]; !ok {
		return fmt.Errorf("unknown config key: %s (valid keys: %s)", key, strings.Join(KnownKeys(), ", "))
	}

	switch key {
	case "max_width":
		cfg.MaxWidth = 0
	case "max_height":
		cfg.MaxHeight = 0
	case "filter":
		cfg.Filter = ""
	case "preview":
		cfg.Preview = nil
	case "auto_copy":
		cfg.AutoCopy = nil
	case "auto_open":
		cfg.AutoOpen = nil
	case "cache_ttl":
		cfg.CacheTTL = ""
	case "log_file":
		cfg.LogFile = ""
	}

	return nil
}

// KnownKeys returns a sorted list of valid config key names.
func KnownKeys() []string {
	keys := make([]string, 0, len(knownKeys))
	for k := range knownKeys {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

// --- Context helpers ---

type ctxKey struct{}

// WithConfig stores a Config in the context.
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, ctxKey{}, cfg)
}

// FromContext retrieves the Config from the context.
func FromContext(ctx context.Context) *Config {
	if v := ctx.Value(ctxKey{}); v != nil {
		if cfg, ok := v.(*Config); ok {
			return cfg
		}
	}

	return nil
}
