package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/tsgonest/tsprefer/internal/diagnostic"
	"github.com/tsgonest/tsprefer/internal/rules"
)

// ValidationResult holds config validation results.
type ValidationResult struct {
	Errors   []string
	Warnings []string
}

// ValidateDetailed performs thorough config validation with suggestions.
func (c *Config) ValidateDetailed() *ValidationResult {
	result := &ValidationResult{}

	// Rules
	enabled := 0
	for _, name := range sortedKeys(c.Rules) {
		rc := c.Rules[name]
		if !rules.Known(name) {
			msg := fmt.Sprintf("rules.%s: unknown rule", name)
			if suggestion := closestRule(name); suggestion != "" {
				msg += fmt.Sprintf(", did you mean %q?", suggestion)
			}
			result.Errors = append(result.Errors, msg)
			continue
		}
		sev, err := diagnostic.ParseSeverity(rc.Severity)
		if err != nil {
			result.Errors = append(result.Errors,
				fmt.Sprintf("rules.%s.severity: invalid value %q, must be off, warn or error", name, rc.Severity))
			continue
		}
		if sev != diagnostic.SeverityOff {
			enabled++
		}
		if rc.MergeObjects != nil && !rules.AcceptsOption(name, "mergeObjects") {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("rules.%s.mergeObjects: option is ignored by this rule", name))
		}
	}
	if len(c.Rules) > 0 && enabled == 0 {
		result.Warnings = append(result.Warnings, "rules: every rule is off, nothing will be reported")
	}

	// Include / exclude
	for _, pattern := range c.Include {
		if !doublestar.ValidatePattern(pattern) {
			result.Errors = append(result.Errors, fmt.Sprintf("include: invalid glob pattern %q", pattern))
			continue
		}
		if !strings.Contains(pattern, "*") && !isTypeScriptPath(pattern) {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("include: pattern %q doesn't contain a wildcard or .ts extension, did you mean %q?", pattern, strings.TrimSuffix(pattern, "/")+"/**/*.ts"))
		}
	}
	for _, pattern := range c.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			result.Errors = append(result.Errors, fmt.Sprintf("exclude: invalid glob pattern %q", pattern))
		}
	}

	// Cache
	if c.Cache.Path != "" && !c.Cache.Enabled {
		result.Warnings = append(result.Warnings, "cache.path: set while cache.enabled is false")
	}

	return result
}

// IsValid returns true if there are no errors.
func (r *ValidationResult) IsValid() bool {
	return len(r.Errors) == 0
}

func isTypeScriptPath(p string) bool {
	switch filepath.Ext(p) {
	case ".ts", ".tsx", ".mts", ".cts":
		return true
	}
	return false
}

// closestRule returns the known rule sharing the longest prefix with name,
// if the shared prefix covers at least half of it.
func closestRule(name string) string {
	best, bestLen := "", 0
	for _, known := range rules.Names() {
		n := commonPrefix(name, known)
		if n > bestLen {
			best, bestLen = known, n
		}
	}
	if bestLen*2 < len(name) {
		return ""
	}
	return best
}

func commonPrefix(a, b string) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}
