package check

import (
	"context"

	"github.com/osa030/streambox/internal/domain/resource"
)

// Chain executes checks in sequence.
type Chain struct {
	checks []Check
}

// NewChain creates a new check chain.
func NewChain() *Chain {
	return &Chain{
		checks: make([]Check, 0),
	}
}

// Add adds a check to the chain.
func (c *Chain) Add(ch Check) {
	c.checks = append(c.checks, ch)
}

// Execute runs all checks against one playlist item in sequence,
// returning immediately when any check rejects it. Checks that declare
// themselves inapplicable to the backend are skipped.
func (c *Chain) Execute(ctx context.Context, playlist resource.Playlist, index int, backend string) Result {
	for _, ch := range c.checks {
		if !ch.AppliesTo(backend) {
			continue
		}

		result := ch.Run(ctx, playlist, index)
		if !result.Accepted {
			return result
		}
	}
	return Accept()
}

// Issue pairs a rejected playlist index with its rejection code.
type Issue struct {
	Index int
	Item  *resource.Item
	Code  string
}

// ExecutePlaylist runs the chain over every playlist item and collects
// the rejections.
func (c *Chain) ExecutePlaylist(ctx context.Context, playlist resource.Playlist, backend string) []Issue {
	var issues []Issue
	for i := range playlist {
		result := c.Execute(ctx, playlist, i, backend)
		if !result.Accepted {
			issues = append(issues, Issue{Index: i, Item: playlist[i], Code: result.Code})
		}
	}
	return issues
}

// Checks returns all checks in the chain.
func (c *Chain) Checks() []Check {
	return c.checks
}
