package resource

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubStream struct {
	closed int
}

func (s *stubStream) Read(p []byte) (int, error) {
	return 0, io.EOF
}

func (s *stubStream) Seek(offset int64, whence int) (int64, error) {
	return 0, nil
}

func (s *stubStream) Close() error {
	s.closed++
	return nil
}

func TestItem_Ext(t *testing.T) {
	tests := []struct {
		name     string
		itemName string
		expected string
	}{
		{
			name:     "lowercase extension",
			itemName: "track.mp3",
			expected: ".mp3",
		},
		{
			name:     "uppercase extension",
			itemName: "TRACK.MP3",
			expected: ".mp3",
		},
		{
			name:     "mixed case extension",
			itemName: "track.Flac",
			expected: ".flac",
		},
		{
			name:     "no extension",
			itemName: "track",
			expected: "",
		},
		{
			name:     "dotfile style name",
			itemName: "archive.tar.wav",
			expected: ".wav",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := &Item{Name: tt.itemName}
			assert.Equal(t, tt.expected, item.Ext())
		})
	}
}

func TestItem_DisplayName(t *testing.T) {
	tests := []struct {
		name     string
		item     *Item
		expected string
	}{
		{
			name:     "title takes precedence",
			item:     &Item{Name: "track01.mp3", Title: "Morning Song"},
			expected: "Morning Song",
		},
		{
			name:     "falls back to file name",
			item:     &Item{Name: "track01.mp3"},
			expected: "track01.mp3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.item.DisplayName())
		})
	}
}

func TestItem_AttachStream(t *testing.T) {
	item := &Item{Name: "track.mp3"}
	first := &stubStream{}
	second := &stubStream{}

	assert.False(t, item.HasStream())
	assert.True(t, item.AttachStream(first))
	assert.True(t, item.HasStream())

	// A second attach loses: the offered handle is closed, the
	// resident one is untouched.
	assert.False(t, item.AttachStream(second))
	assert.Equal(t, 1, second.closed)
	assert.Equal(t, 0, first.closed)

	taken := item.TakeStream()
	assert.Same(t, io.ReadSeekCloser(first), taken)
	assert.False(t, item.HasStream())
	assert.Nil(t, item.TakeStream())
}

func TestItem_Status(t *testing.T) {
	item := &Item{Name: "track.mp3"}
	assert.Equal(t, StatusPending, item.Status())

	item.SetStatus(StatusOk)
	assert.Equal(t, StatusOk, item.Status())
}

func TestLoadStatus_String(t *testing.T) {
	tests := []struct {
		status   LoadStatus
		expected string
	}{
		{StatusPending, "pending"},
		{StatusOk, "ok"},
		{StatusStreamExisting, "stream_existing"},
		{StatusFailed, "failed"},
		{StatusCancelled, "cancelled"},
		{LoadStatus(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.status.String())
		})
	}
}

func TestLoadStatus_Usable(t *testing.T) {
	assert.True(t, StatusOk.Usable())
	assert.True(t, StatusStreamExisting.Usable())
	assert.False(t, StatusPending.Usable())
	assert.False(t, StatusFailed.Usable())
	assert.False(t, StatusCancelled.Usable())
}
