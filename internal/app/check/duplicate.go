package check

import (
	"context"

	"github.com/osa030/streambox/internal/domain/resource"
)

// DuplicateCheck rejects items whose URL already appeared earlier in
// the playlist. Each duplicate is a distinct item, so it would fetch
// and cache the same audio again under its own entry.
type DuplicateCheck struct{}

// NewDuplicateCheck creates a new duplicate check.
func NewDuplicateCheck() *DuplicateCheck {
	return &DuplicateCheck{}
}

func (c *DuplicateCheck) Name() string {
	return "duplicate_check"
}

func (c *DuplicateCheck) Description() string {
	return "Checks that item URLs are unique within the playlist"
}

func (c *DuplicateCheck) ReturnCodes() []string {
	return []string{"duplicate_url"}
}

func (c *DuplicateCheck) ValidateConfig(settings map[string]any) error {
	return nil
}

func (c *DuplicateCheck) AppliesTo(backend string) bool {
	return true
}

func (c *DuplicateCheck) Run(ctx context.Context, playlist resource.Playlist, index int) Result {
	item := playlist[index]
	if item.URL == "" {
		return Accept()
	}

	for i := 0; i < index; i++ {
		if playlist[i].URL == item.URL {
			return Reject("duplicate_url")
		}
	}
	return Accept()
}

func init() {
	Register("duplicate_check", func() Check {
		return &DuplicateCheck{}
	})
}
