package resource

import (
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Playlist is an ordered sequence of items. The ordering is fixed once
// the playlist is handed to a controller; items are addressed by index.
type Playlist []*Item

// InRange reports whether index addresses an item.
func (p Playlist) InRange(index int) bool {
	return index >= 0 && index < len(p)
}

// Names returns the display names in playlist order.
func (p Playlist) Names() []string {
	names := make([]string, len(p))
	for i, item := range p {
		names[i] = item.DisplayName()
	}
	return names
}

// FindByName returns the index of the item whose display name best
// matches query, using case-insensitive fuzzy matching. The second
// return value is false when nothing matches.
func (p Playlist) FindByName(query string) (int, bool) {
	if query == "" || len(p) == 0 {
		return -1, false
	}

	ranks := fuzzy.RankFindFold(query, p.Names())
	if len(ranks) == 0 {
		return -1, false
	}
	sort.Sort(ranks)
	return ranks[0].OriginalIndex, true
}
