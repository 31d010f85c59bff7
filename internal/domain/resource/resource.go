// Package resource provides the playlist item domain entities.
package resource

import (
	"io"
	"path/filepath"
	"strings"
	"sync"
)

// LoadStatus represents the outcome of the most recent fetch attempt
// for an item.
type LoadStatus int

const (
	StatusPending        LoadStatus = iota // No fetch attempted yet
	StatusOk                               // Fetch succeeded, stream attached
	StatusStreamExisting                   // Item already carried a usable stream
	StatusFailed                           // Fetch failed
	StatusCancelled                        // Fetch was cancelled
)

// String returns the string representation of the status.
func (s LoadStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusOk:
		return "ok"
	case StatusStreamExisting:
		return "stream_existing"
	case StatusFailed:
		return "failed"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Usable reports whether the status means the item carries a stream
// ready for decoding.
func (s LoadStatus) Usable() bool {
	return s == StatusOk || s == StatusStreamExisting
}

// Item represents one playable unit in the playlist. The stream handle
// is exclusively owned by whoever holds it: the cache while the item is
// resident, the decoder once playback claims it. The accessor methods
// below are the only way in or out, so a handle can never be duplicated
// or released twice.
type Item struct {
	Name  string // file name; its extension drives decoder selection
	Title string // optional display title, e.g. from an EXTINF tag
	URL   string // where the audio bytes live

	mu     sync.Mutex
	stream io.ReadSeekCloser
	status LoadStatus
}

// Ext returns the item's lowercase file extension, dot included.
func (i *Item) Ext() string {
	return strings.ToLower(filepath.Ext(i.Name))
}

// DisplayName returns the title when present, the file name otherwise.
func (i *Item) DisplayName() string {
	if i.Title != "" {
		return i.Title
	}
	return i.Name
}

// AttachStream hands the item ownership of a freshly fetched handle.
// If the item already owns one, the offered handle is closed and false
// is returned: the resident handle stays the single live owner.
func (i *Item) AttachStream(s io.ReadSeekCloser) bool {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.stream != nil {
		_ = s.Close()
		return false
	}
	i.stream = s
	return true
}

// TakeStream moves the handle out of the item, transferring ownership
// to the caller. Returns nil when the item holds none.
func (i *Item) TakeStream() io.ReadSeekCloser {
	i.mu.Lock()
	defer i.mu.Unlock()

	s := i.stream
	i.stream = nil
	return s
}

// HasStream reports whether the item currently owns a handle.
func (i *Item) HasStream() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.stream != nil
}

// SetStatus records the outcome of a fetch attempt.
func (i *Item) SetStatus(s LoadStatus) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.status = s
}

// Status returns the recorded fetch outcome.
func (i *Item) Status() LoadStatus {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.status
}
