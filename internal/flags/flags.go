// Package flags provides feature flag support for controlled feature rollout.
// Flags gate optional highlighting behaviour. They are read-only after
// initialization and unknown flags are off.
package flags

import (
	"maps"

	"github.com/zjrosen/ezhl/internal/log"
)

// Flag name constants for type-safe flag access.
const (
	// FlagScanCache memoises line scans keyed by incoming state and text.
	FlagScanCache = "scan-cache"

	// FlagChromaHints names files without a configured language after
	// chroma's lexer for them instead of their extension.
	FlagChromaHints = "chroma-hints"
)

// Defaults returns the value every known flag has when config omits it.
func Defaults() map[string]bool {
	return map[string]bool{
		FlagScanCache:   true,
		FlagChromaHints: true,
	}
}

// Registry holds feature flag state loaded from configuration.
// Flags are read-only after initialization.
type Registry struct {
	flags map[string]bool
}

// New creates a Registry from a config map.
// If flags is nil, an empty registry is created (all flags disabled).
func New(flags map[string]bool) *Registry {
	if flags == nil {
		flags = make(map[string]bool)
	}
	r := &Registry{flags: maps.Clone(flags)}
	log.Debug(log.CatConfig, "Feature flags initialized", "count", len(flags), "flags", r.All())
	return r
}

// Enabled returns true if the named flag is enabled.
// Returns false for unknown flags (safe default).
// Returns false when called on nil registry (nil-safe).
func (r *Registry) Enabled(name string) bool {
	if r == nil || r.flags == nil {
		return false
	}
	value, exists := r.flags[name]
	if !exists {
		log.Debug(log.CatConfig, "Unknown flag accessed", "flag", name, "result", false)
		return false
	}
	return value
}

// WithDefaults creates a Registry where flags overrides Defaults.
func WithDefaults(flags map[string]bool) *Registry {
	merged := Defaults()
	maps.Copy(merged, flags)
	return New(merged)
}

// All returns a copy of all flags (for debugging/logging).
// Returns an empty map if the registry is nil.
func (r *Registry) All() map[string]bool {
	if r == nil || r.flags == nil {
		return make(map[string]bool)
	}
	return maps.Clone(r.flags)
}
