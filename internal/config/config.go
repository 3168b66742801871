package config

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/url"
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
	defaultWriteTimeout   = 30 * time.Second
	defaultIdleTimeout    = 120 * time.Second
	defaultCatalogURL     = "https://www.freetogame.com/api/games"
	defaultCatalogProxy   = "https://corsproxy.io/?"
	defaultCatalogTimeout = 10 * time.Second
	defaultSearchDebounce = 300 * time.Millisecond
	defaultLang           = "ar"
	defaultLogLevel       = "info"
)

// SupportedLangs lists the UI languages with locale bundles.
var SupportedLangs = []string{"ar", "en"}

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server  ServerConfig
	Catalog CatalogConfig
	Search  SearchConfig
	Site    SiteConfig
	Log     LogConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	Dev          bool
	TemplatesDir string
	PublicDir    string
}

// CatalogConfig points at the game list and its relay.
type CatalogConfig struct {
	Endpoint string
	// ProxyPrefix is prepended to the escaped endpoint for the second
	// attempt. Empty disables the relay.
	ProxyPrefix string
	Timeout     time.Duration
	// Refresh is the periodic reload interval. Zero loads once at startup.
	Refresh time.Duration
}

// SearchConfig tunes live search.
type SearchConfig struct {
	Debounce time.Duration
}

// SiteConfig holds presentation settings.
type SiteConfig struct {
	DefaultLang     string
	BaseURL         string
	GAMeasurementID string
}

// LogConfig controls the logger.
type LogConfig struct {
	Level string
}

// ValidationError lists configuration fields that are missing or invalid.
type ValidationError struct {
	fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns the offending field names.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises the loader.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile reads defaults from a dotenv file. An empty path skips it.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap supplies values that take precedence over every other source.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv ignores the process environment.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load resolves configuration from, in increasing precedence, defaults, the
// dotenv file, the process environment and WithEnvMap.
func Load(ctx context.Context, opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}
	if err := ctx.Err(); err != nil {
		return Config{}, err
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

	cfg := Config{
		Server: ServerConfig{
			Port:         stringWithDefault(lookup, "OSW_PORT", stringWithDefault(lookup, "PORT", defaultPort)),
			ReadTimeout:  durationWithDefault(lookup, "OSW_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout: durationWithDefault(lookup, "OSW_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:  durationWithDefault(lookup, "OSW_IDLE_TIMEOUT", defaultIdleTimeout),
			Dev:          boolWithDefault(lookup, "OSW_DEV", false),
			TemplatesDir: stringWithDefault(lookup, "OSW_TEMPLATES_DIR", ""),
			PublicDir:    stringWithDefault(lookup, "OSW_PUBLIC_DIR", ""),
		},
		Catalog: CatalogConfig{
			Endpoint:    strings.TrimSpace(stringWithDefault(lookup, "OSW_CATALOG_ENDPOINT", defaultCatalogURL)),
			ProxyPrefix: proxyWithDefault(lookup, "OSW_CATALOG_PROXY", defaultCatalogProxy),
			Timeout:     durationWithDefault(lookup, "OSW_CATALOG_TIMEOUT", defaultCatalogTimeout),
			Refresh:     durationWithDefault(lookup, "OSW_CATALOG_REFRESH", 0),
		},
		Search: SearchConfig{
			Debounce: durationWithDefault(lookup, "OSW_SEARCH_DEBOUNCE", defaultSearchDebounce),
		},
		Site: SiteConfig{
			DefaultLang:     strings.ToLower(strings.TrimSpace(stringWithDefault(lookup, "OSW_DEFAULT_LANG", defaultLang))),
			BaseURL:         strings.TrimRight(stringWithDefault(lookup, "OSW_BASE_URL", ""), "/"),
			GAMeasurementID: stringWithDefault(lookup, "OSW_GA_MEASUREMENT_ID", ""),
		},
		Log: LogConfig{
			Level: strings.ToLower(stringWithDefault(lookup, "LOG_LEVEL", defaultLogLevel)),
		},
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c ServerConfig) Addr() string {
	return ":" + c.Port
}

func validateConfig(cfg Config) error {
	var missing []string

	if _, err := strconv.Atoi(cfg.Server.Port); err != nil {
		missing = append(missing, "Server.Port")
	}
	if cfg.Server.ReadTimeout <= 0 {
		missing = append(missing, "Server.ReadTimeout")
	}
	if cfg.Server.WriteTimeout <= 0 {
		missing = append(missing, "Server.WriteTimeout")
	}
	if cfg.Server.IdleTimeout <= 0 {
		missing = append(missing, "Server.IdleTimeout")
	}
	if !isHTTPURL(cfg.Catalog.Endpoint) {
		missing = append(missing, "Catalog.Endpoint")
	}
	if cfg.Catalog.ProxyPrefix != "" && !isHTTPURL(cfg.Catalog.ProxyPrefix) {
		missing = append(missing, "Catalog.ProxyPrefix")
	}
	if cfg.Catalog.Timeout <= 0 {
		missing = append(missing, "Catalog.Timeout")
	}
	if cfg.Catalog.Refresh < 0 {
		missing = append(missing, "Catalog.Refresh")
	}
	if cfg.Search.Debounce <= 0 {
		missing = append(missing, "Search.Debounce")
	}
	if !isSupportedLang(cfg.Site.DefaultLang) {
		missing = append(missing, "Site.DefaultLang")
	}
	if cfg.Site.BaseURL != "" && !isHTTPURL(cfg.Site.BaseURL) {
		missing = append(missing, "Site.BaseURL")
	}

	if len(missing) > 0 {
		return &ValidationError{fields: missing}
	}
	return nil
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func isSupportedLang(lang string) bool {
	for _, l := range SupportedLangs {
		if l == lang {
			return true
		}
	}
	return false
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
		line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		values[key] = strings.Trim(strings.TrimSpace(value), "\"'")
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

// proxyWithDefault treats "off", "none" and "disabled" as an explicit empty prefix.
func proxyWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	value := strings.TrimSpace(stringWithDefault(lookup, key, fallback))
	switch strings.ToLower(value) {
	case "off", "none", "disabled":
		return ""
	}
	return value
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
