// Package check provides the validation chain run over playlist items
// before a playback session starts.
package check

import (
	"context"

	"github.com/osa030/streambox/internal/domain/resource"
)

// Result represents the result of a single check.
type Result struct {
	Accepted bool
	Code     string // e.g., "scheme_not_allowed", "unsupported_extension"
}

// Accept returns an accepted result.
func Accept() Result {
	return Result{Accepted: true}
}

// Reject returns a rejected result with the given code.
func Reject(code string) Result {
	return Result{Accepted: false, Code: code}
}

// Check is the interface for playlist item checks.
type Check interface {
	// Name returns the check name (used in config).
	Name() string
	// Description returns a human-readable description.
	Description() string
	// ReturnCodes returns the codes this check can return.
	ReturnCodes() []string
	// ValidateConfig validates and applies the check configuration.
	ValidateConfig(settings map[string]any) error
	// AppliesTo returns true if this check is meaningful for the given
	// fetch backend.
	AppliesTo(backend string) bool
	// Run checks the item at index within its playlist.
	Run(ctx context.Context, playlist resource.Playlist, index int) Result
}

// registry holds registered check factories.
var registry = make(map[string]func() Check)

// Register registers a check factory.
func Register(name string, factory func() Check) {
	registry[name] = factory
}

// GetRegistered returns all registered check factories.
func GetRegistered() map[string]func() Check {
	return registry
}
