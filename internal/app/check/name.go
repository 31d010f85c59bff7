package check

import (
	"context"

	"github.com/osa030/streambox/internal/domain/resource"
)

// NameCheck rejects items that cannot be addressed: empty names, empty
// URLs, or names without the extension decoder selection relies on.
type NameCheck struct{}

// NewNameCheck creates a new name check.
func NewNameCheck() *NameCheck {
	return &NameCheck{}
}

func (c *NameCheck) Name() string {
	return "name_check"
}

func (c *NameCheck) Description() string {
	return "Checks that items carry a name with an extension and a URL"
}

func (c *NameCheck) ReturnCodes() []string {
	return []string{"empty_name", "missing_extension", "empty_url"}
}

func (c *NameCheck) ValidateConfig(settings map[string]any) error {
	return nil
}

func (c *NameCheck) AppliesTo(backend string) bool {
	return true
}

func (c *NameCheck) Run(ctx context.Context, playlist resource.Playlist, index int) Result {
	item := playlist[index]

	if item.Name == "" {
		return Reject("empty_name")
	}
	if item.Ext() == "" {
		return Reject("missing_extension")
	}
	if item.URL == "" {
		return Reject("empty_url")
	}
	return Accept()
}

func init() {
	Register("name_check", func() Check {
		return &NameCheck{}
	})
}
