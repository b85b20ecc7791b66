package config

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/tsgonest/tsprefer/internal/diagnostic"
	"github.com/tsgonest/tsprefer/internal/rules"
	"gopkg.in/yaml.v3"
)

// DefaultFileNames lists the config files Discover looks for, in order.
var DefaultFileNames = []string{
	"tsprefer.config.json",
	".tsprefer.yaml",
	".tsprefer.yml",
}

var (
	ErrUnknownRule     = errors.New("unknown rule")
	ErrInvalidSeverity = errors.New("invalid severity")
)

// Config represents the tsprefer configuration.
type Config struct {
	// Include limits linting to files matching at least one pattern,
	// relative to the config directory. Empty means every tsconfig file.
	Include []string `json:"include,omitempty" yaml:"include,omitempty"`
	// Exclude drops files matching any pattern.
	Exclude []string `json:"exclude,omitempty" yaml:"exclude,omitempty"`
	// Rules maps rule names to their settings. Rules not listed keep
	// their defaults.
	Rules map[string]RuleConfig `json:"rules,omitempty" yaml:"rules,omitempty"`
	Cache CacheConfig           `json:"cache" yaml:"cache"`
}

// RuleConfig configures one rule.
type RuleConfig struct {
	Severity     string `json:"severity" yaml:"severity"`                             // "off", "warn" or "error"
	MergeObjects *bool  `json:"mergeObjects,omitempty" yaml:"mergeObjects,omitempty"` // prefer-interface-extends-over-type-intersection only
}

// CacheConfig controls the lint result cache.
type CacheConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Path    string `json:"path,omitempty" yaml:"path,omitempty"` // default: .tsprefer-cache next to the config
}

// DefaultConfig returns a config with every rule enabled at error severity.
func DefaultConfig() Config {
	cfg := Config{
		Rules: make(map[string]RuleConfig),
		Cache: CacheConfig{Enabled: true},
	}
	for _, name := range rules.Names() {
		cfg.Rules[name] = RuleConfig{Severity: "error"}
	}
	return cfg
}

// fileConfig mirrors Config with the fields that need presence detection.
type fileConfig struct {
	Include []string              `json:"include,omitempty" yaml:"include,omitempty"`
	Exclude []string              `json:"exclude,omitempty" yaml:"exclude,omitempty"`
	Rules   map[string]RuleConfig `json:"rules,omitempty" yaml:"rules,omitempty"`
	Cache   *CacheConfig          `json:"cache,omitempty" yaml:"cache,omitempty"`
}

// Load reads and parses a config file. JSON and YAML are both accepted,
// picked by file extension. Unknown fields are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	var file fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse config file %q: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, &file, json.RejectUnknownMembers(true)); err != nil {
			return nil, fmt.Errorf("failed to parse config file %q: %w", path, err)
		}
	}

	config := DefaultConfig()
	config.merge(file)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config in %q: %w", path, err)
	}

	return &config, nil
}

// merge overlays the settings present in file onto c. A rule entry without
// a severity stays at error.
func (c *Config) merge(file fileConfig) {
	if file.Include != nil {
		c.Include = file.Include
	}
	if file.Exclude != nil {
		c.Exclude = file.Exclude
	}
	for name, rc := range file.Rules {
		if rc.Severity == "" {
			rc.Severity = "error"
		}
		c.Rules[name] = rc
	}
	if file.Cache != nil {
		c.Cache = *file.Cache
	}
}

// Discover returns the path of the first default config file in dir, or ""
// if there is none.
func Discover(dir string) string {
	for _, name := range DefaultFileNames {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

// Validate checks the config for logical errors.
func (c *Config) Validate() error {
	for _, name := range sortedKeys(c.Rules) {
		rc := c.Rules[name]
		if !rules.Known(name) {
			return fmt.Errorf("%w %q", ErrUnknownRule, name)
		}
		if _, err := diagnostic.ParseSeverity(rc.Severity); err != nil {
			return fmt.Errorf("rules.%s.severity: %w %q", name, ErrInvalidSeverity, rc.Severity)
		}
	}

	for _, pattern := range append(append([]string{}, c.Include...), c.Exclude...) {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid glob pattern %q", pattern)
		}
	}

	return nil
}

// Severity returns the configured severity of a rule. Unlisted rules are
// at error severity.
func (c *Config) Severity(name string) diagnostic.Severity {
	rc, ok := c.Rules[name]
	if !ok {
		return diagnostic.SeverityError
	}
	sev, err := diagnostic.ParseSeverity(rc.Severity)
	if err != nil {
		return diagnostic.SeverityError
	}
	return sev
}

// RuleOptions returns the options to build the named rule with.
func (c *Config) RuleOptions(name string) rules.Options {
	return rules.Options{MergeObjects: c.Rules[name].MergeObjects}
}

// SetSeverity overrides one rule's severity, as the --rule flag does.
func (c *Config) SetSeverity(name, severity string) error {
	if !rules.Known(name) {
		return fmt.Errorf("%w %q", ErrUnknownRule, name)
	}
	if _, err := diagnostic.ParseSeverity(severity); err != nil {
		return fmt.Errorf("%w %q for rule %s", ErrInvalidSeverity, severity, name)
	}
	if c.Rules == nil {
		c.Rules = make(map[string]RuleConfig)
	}
	rc := c.Rules[name]
	rc.Severity = severity
	c.Rules[name] = rc
	return nil
}

// Matches reports whether relPath (slash-separated, relative to the config
// directory) passes the include and exclude patterns.
func (c *Config) Matches(relPath string) bool {
	relPath = filepath.ToSlash(relPath)
	if len(c.Include) > 0 {
		included := false
		for _, pattern := range c.Include {
			if ok, _ := doublestar.Match(pattern, relPath); ok {
				included = true
				break
			}
		}
		if !included {
			return false
		}
	}
	for _, pattern := range c.Exclude {
		if ok, _ := doublestar.Match(pattern, relPath); ok {
			return false
		}
	}
	return true
}

// Hash returns a stable digest of the settings that influence lint
// results. Include, exclude and cache settings are left out.
func (c *Config) Hash() string {
	data, err := json.Marshal(c.Rules, json.Deterministic(true))
	if err != nil {
		return ""
	}
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Marshal renders the config as indented JSON, as written by `tsprefer init`.
func (c *Config) Marshal() ([]byte, error) {
	return json.Marshal(c, json.Deterministic(true), jsontext.WithIndent("  "))
}

func sortedKeys(m map[string]RuleConfig) []string {
	return slices.Sorted(maps.Keys(m))
}
