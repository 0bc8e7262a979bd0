// Package config provides configuration management for the feed sync worker.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Configuration validation errors.
var (
	ErrNoSources                = errors.New("at least one source is required")
	ErrNoEnabledSources         = errors.New("at least one source must be enabled")
	ErrSourceMissingName        = errors.New("name is required")
	ErrDuplicateSourceName      = errors.New("source names must be unique")
	ErrInvalidSourceKind        = errors.New("kind must be 'feed' or 'events'")
	ErrSourceMissingFeedURL     = errors.New("feed_url is required for feed sources")
	ErrSourceMissingEventsAPI   = errors.New("events.api_url and events.organization_id are required for events sources")
	ErrSourceMissingManifest    = errors.New("manifest is required")
	ErrDuplicateManifest        = errors.New("sources must not share a manifest file")
	ErrInvalidPagePattern       = errors.New("pages.pattern must contain exactly one integer verb such as %d")
	ErrInvalidTargetMode        = errors.New("target mode must be 'region' or 'anchor'")
	ErrTargetMissingDocument    = errors.New("target document is required")
	ErrTargetMissingMarkers     = errors.New("region targets need begin and end markers")
	ErrTargetMissingAnchor      = errors.New("anchor targets need an anchor")
	ErrMissingSiteRoot          = errors.New("site.root is required")
	ErrInvalidMaxAttempts       = errors.New("retry.max_attempts must be at least 1")
	ErrInvalidInitialDelay      = errors.New("retry.initial_delay_ms must be non-negative")
	ErrInvalidBackoffMultiplier = errors.New("retry.backoff_multiplier must be >= 1.0")
	ErrInvalidTimeout           = errors.New("retry.timeout_sec must be at least 1")
	ErrInvalidExcerptChars      = errors.New("normalizer.excerpt_chars must be at least 20")
	ErrInvalidWordsPerMinute    = errors.New("normalizer.words_per_minute must be at least 1")
	ErrInvalidImageWidth        = errors.New("normalizer.full_width and normalizer.thumb_width must be positive")
	ErrInvalidLogLevel          = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrInvalidLogFormat         = errors.New("logging.format must be one of: auto, text, json")
	ErrUnsupportedConfigFormat  = errors.New("config file must end in .yaml, .yml or .toml")
)

// Source kinds.
const (
	KindFeed   = "feed"
	KindEvents = "events"
)

// Target modes.
const (
	ModeRegion = "region"
	ModeAnchor = "anchor"
)

// Environment fallbacks for secrets that should not live in the config file.
const (
	EnvEventsToken = "FEEDSYNC_EVENTS_TOKEN"
	EnvWebhookURL  = "FEEDSYNC_WEBHOOK_URL"
)

// Config represents the complete worker configuration.
type Config struct {
	Site       SiteConfig       `yaml:"site" toml:"site"`
	Sources    []SourceConfig   `yaml:"sources" toml:"sources"`
	Normalizer NormalizerConfig `yaml:"normalizer" toml:"normalizer"`
	Retry      RetryPolicy      `yaml:"retry" toml:"retry"`
	Logging    LoggingConfig    `yaml:"logging" toml:"logging"`
	Notify     NotifyConfig     `yaml:"notify" toml:"notify"`
}

// SiteConfig describes the static site the worker writes into.
type SiteConfig struct {
	Root    string `yaml:"root" toml:"root"`
	Title   string `yaml:"title" toml:"title"`
	BaseURL string `yaml:"base_url" toml:"base_url"`
}

// SourceConfig represents one upstream feed and where its items are published.
type SourceConfig struct {
	Name         string         `yaml:"name" toml:"name"`
	Kind         string         `yaml:"kind" toml:"kind"`
	FeedURL      string         `yaml:"feed_url" toml:"feed_url"`
	Events       EventsAPI      `yaml:"events" toml:"events"`
	Manifest     string         `yaml:"manifest" toml:"manifest"`
	Pages        PagesConfig    `yaml:"pages" toml:"pages"`
	Targets      []TargetConfig `yaml:"targets" toml:"targets"`
	Enabled      bool           `yaml:"enabled" toml:"enabled"`
	AllowMissing bool           `yaml:"allow_missing" toml:"allow_missing"`
}

// EventsAPI holds the events endpoint settings.
type EventsAPI struct {
	APIURL         string `yaml:"api_url" toml:"api_url"`
	OrganizationID string `yaml:"organization_id" toml:"organization_id"`
	Token          string `yaml:"token" toml:"token"`
	IncludePast    bool   `yaml:"include_past" toml:"include_past"`
	MaxPages       int    `yaml:"max_pages" toml:"max_pages"`
}

// PagesConfig controls standalone page output. An empty Dir disables pages
// and fragments link to the upstream URL instead.
type PagesConfig struct {
	Dir        string `yaml:"dir" toml:"dir"`
	Pattern    string `yaml:"pattern" toml:"pattern"`
	LinkPrefix string `yaml:"link_prefix" toml:"link_prefix"`
}

// TargetConfig is a document that receives summary fragments.
type TargetConfig struct {
	Document    string `yaml:"document" toml:"document"`
	Mode        string `yaml:"mode" toml:"mode"`
	BeginMarker string `yaml:"begin_marker" toml:"begin_marker"`
	EndMarker   string `yaml:"end_marker" toml:"end_marker"`
	Anchor      string `yaml:"anchor" toml:"anchor"`
	Limit       int    `yaml:"limit" toml:"limit"`
}

// StockImage is a keyword set mapped to a fallback image.
type StockImage struct {
	URL      string   `yaml:"url" toml:"url"`
	Keywords []string `yaml:"keywords" toml:"keywords"`
}

// NormalizerConfig tunes the derived fields.
type NormalizerConfig struct {
	FallbackCategory string       `yaml:"fallback_category" toml:"fallback_category"`
	DefaultImage     string       `yaml:"default_image" toml:"default_image"`
	StopCategories   []string     `yaml:"stop_categories" toml:"stop_categories"`
	StockImages      []StockImage `yaml:"stock_images" toml:"stock_images"`
	ExcerptChars     int          `yaml:"excerpt_chars" toml:"excerpt_chars"`
	WordsPerMinute   int          `yaml:"words_per_minute" toml:"words_per_minute"`
	MinReadMinutes   int          `yaml:"min_read_minutes" toml:"min_read_minutes"`
	FullWidth        int          `yaml:"full_width" toml:"full_width"`
	ThumbWidth       int          `yaml:"thumb_width" toml:"thumb_width"`
}

// RetryPolicy defines retry behavior.
type RetryPolicy struct {
	MaxAttempts       int     `yaml:"max_attempts" toml:"max_attempts"`
	InitialDelayMs    int     `yaml:"initial_delay_ms" toml:"initial_delay_ms"`
	MaxDelayMs        int     `yaml:"max_delay_ms" toml:"max_delay_ms"`
	BackoffMultiplier float64 `yaml:"backoff_multiplier" toml:"backoff_multiplier"`
	TimeoutSec        int     `yaml:"timeout_sec" toml:"timeout_sec"`
	BufferSizeKb      int     `yaml:"buffer_size_kb" toml:"buffer_size_kb"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// NotifyConfig configures the change webhook.
type NotifyConfig struct {
	WebhookURL string `yaml:"webhook_url" toml:"webhook_url"`
	TimeoutSec int    `yaml:"timeout_sec" toml:"timeout_sec"`
}

// LoadConfig loads configuration from a YAML or TOML file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	case ".toml":
		if err := toml.NewDecoder(bytes.NewReader(data)).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedConfigFormat, path)
	}

	cfg.applyEnv()
	cfg.fillDefaults()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyEnv() {
	if token := strings.TrimSpace(os.Getenv(EnvEventsToken)); token != "" {
		for i := range c.Sources {
			if c.Sources[i].Kind == KindEvents && c.Sources[i].Events.Token == "" {
				c.Sources[i].Events.Token = token
			}
		}
	}

	if hook := strings.TrimSpace(os.Getenv(EnvWebhookURL)); hook != "" && c.Notify.WebhookURL == "" {
		c.Notify.WebhookURL = hook
	}
}

// fillDefaults sets per-source values the YAML usually leaves out.
func (c *Config) fillDefaults() {
	for i := range c.Sources {
		src := &c.Sources[i]
		if src.Pages.Dir != "" && src.Pages.Pattern == "" {
			src.Pages.Pattern = DefaultPagePattern
		}

		for j := range src.Targets {
			if src.Targets[j].Mode == "" {
				src.Targets[j].Mode = ModeRegion
			}
		}
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if len(c.Sources) == 0 {
		return ErrNoSources
	}

	if c.Site.Root == "" {
		return ErrMissingSiteRoot
	}

	enabledCount := 0
	seen := make(map[string]bool, len(c.Sources))
	manifests := make(map[string]string, len(c.Sources))

	for i, src := range c.Sources {
		if src.Name == "" {
			return fmt.Errorf("%w: source[%d]", ErrSourceMissingName, i)
		}

		if seen[src.Name] {
			return fmt.Errorf("%w: source[%s]", ErrDuplicateSourceName, src.Name)
		}

		seen[src.Name] = true

		if err := src.validate(); err != nil {
			return fmt.Errorf("%w: source[%s]", err, src.Name)
		}

		if !src.Enabled {
			continue
		}

		enabledCount++

		// Two sources on one manifest would contend for its lock every run.
		path := filepath.Clean(c.ResolvePath(src.Manifest))
		if other, ok := manifests[path]; ok {
			return fmt.Errorf("%w: source[%s] and source[%s] use %s", ErrDuplicateManifest, other, src.Name, path)
		}

		manifests[path] = src.Name
	}

	if enabledCount == 0 {
		return ErrNoEnabledSources
	}

	// Validate retry policy
	if c.Retry.MaxAttempts < 1 {
		return ErrInvalidMaxAttempts
	}

	if c.Retry.InitialDelayMs < 0 {
		return ErrInvalidInitialDelay
	}

	if c.Retry.BackoffMultiplier < 1.0 {
		return ErrInvalidBackoffMultiplier
	}

	if c.Retry.TimeoutSec < 1 {
		return ErrInvalidTimeout
	}

	// Validate normalizer config
	if c.Normalizer.ExcerptChars < 20 {
		return ErrInvalidExcerptChars
	}

	if c.Normalizer.WordsPerMinute < 1 {
		return ErrInvalidWordsPerMinute
	}

	if c.Normalizer.FullWidth < 1 || c.Normalizer.ThumbWidth < 1 {
		return ErrInvalidImageWidth
	}

	// Validate logging config
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return ErrInvalidLogLevel
	}

	validFormats := map[string]bool{"auto": true, "text": true, "json": true}
	if !validFormats[c.Logging.Format] {
		return ErrInvalidLogFormat
	}

	return nil
}

func (s *SourceConfig) validate() error {
	switch s.Kind {
	case KindFeed:
		if s.FeedURL == "" {
			return ErrSourceMissingFeedURL
		}
	case KindEvents:
		if s.Events.APIURL == "" || s.Events.OrganizationID == "" {
			return ErrSourceMissingEventsAPI
		}
	default:
		return ErrInvalidSourceKind
	}

	if s.Manifest == "" {
		return ErrSourceMissingManifest
	}

	if s.HasPages() && s.Pages.Pattern != "" && !validPagePattern(s.Pages.Pattern) {
		return fmt.Errorf("%w: %q", ErrInvalidPagePattern, s.Pages.Pattern)
	}

	for i, t := range s.Targets {
		if t.Document == "" {
			return fmt.Errorf("%w: target[%d]", ErrTargetMissingDocument, i)
		}

		switch t.Mode {
		case ModeRegion:
			if t.BeginMarker == "" || t.EndMarker == "" {
				return fmt.Errorf("%w: target[%d]", ErrTargetMissingMarkers, i)
			}
		case ModeAnchor:
			if t.Anchor == "" {
				return fmt.Errorf("%w: target[%d]", ErrTargetMissingAnchor, i)
			}
		default:
			return fmt.Errorf("%w: target[%d]", ErrInvalidTargetMode, i)
		}
	}

	return nil
}

// GetEnabledSources returns only enabled sources.
func (c *Config) GetEnabledSources() []SourceConfig {
	var enabled []SourceConfig

	for _, src := range c.Sources {
		if src.Enabled {
			enabled = append(enabled, src)
		}
	}

	return enabled
}

// GetSource returns the named source.
func (c *Config) GetSource(name string) (SourceConfig, bool) {
	for _, src := range c.Sources {
		if src.Name == name {
			return src, true
		}
	}

	return SourceConfig{}, false
}

// ResolvePath joins a site-relative path onto the site root. Absolute paths
// are returned unchanged.
func (c *Config) ResolvePath(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}

	return filepath.Join(c.Site.Root, rel)
}

// HasPages reports whether the source writes standalone pages.
func (s *SourceConfig) HasPages() bool {
	return s.Pages.Dir != ""
}

// PageName returns the deterministic page file name for a sequence number.
func (s *SourceConfig) PageName(sequence int) string {
	pattern := s.Pages.Pattern
	if pattern == "" {
		pattern = DefaultPagePattern
	}

	return fmt.Sprintf(pattern, sequence)
}

var intVerb = regexp.MustCompile(`%[-+ 0]*[0-9]*d`)

// validPagePattern accepts patterns with one integer verb and no other verbs.
// Escaped percent signs are allowed.
func validPagePattern(pattern string) bool {
	rest := strings.ReplaceAll(pattern, "%%", "")

	return len(intVerb.FindAllString(rest, -1)) == 1 && strings.Count(rest, "%") == 1
}

// GetRetryDelay calculates exponential backoff delay for attempt number.
func (rp *RetryPolicy) GetRetryDelay(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}

	delayMs := float64(rp.InitialDelayMs)
	for i := 1; i < attempt; i++ {
		delayMs *= rp.BackoffMultiplier
	}

	// Cap at max delay
	if int(delayMs) > rp.MaxDelayMs {
		delayMs = float64(rp.MaxDelayMs)
	}

	return time.Duration(int(delayMs)) * time.Millisecond
}

// GetTimeout returns the timeout duration.
func (rp *RetryPolicy) GetTimeout() time.Duration {
	return time.Duration(rp.TimeoutSec) * time.Second
}

// String returns a string representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Sources: %d, MaxAttempts: %d, Root: %s}",
		len(c.Sources),
		c.Retry.MaxAttempts,
		c.Site.Root,
	)
}
