package audio

import (
	"bytes"
	"io"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/gopxl/beep/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/streambox/internal/app/playback"
)

type nopStream struct {
	*bytes.Reader
}

func (nopStream) Close() error { return nil }

func newNopStream() io.ReadSeekCloser {
	return nopStream{Reader: bytes.NewReader([]byte("not real audio"))}
}

func TestRegistry_Supported(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, []string{".flac", ".mp3", ".ogg", ".wav"}, r.Supported())
}

func TestRegistry_Supports(t *testing.T) {
	r := NewRegistry()

	tests := []struct {
		name     string
		file     string
		expected bool
	}{
		{
			name:     "lowercase mp3",
			file:     "track01.mp3",
			expected: true,
		},
		{
			name:     "uppercase extension",
			file:     "TRACK01.MP3",
			expected: true,
		},
		{
			name:     "flac",
			file:     "track03.flac",
			expected: true,
		},
		{
			name:     "unknown extension",
			file:     "track.xyz",
			expected: false,
		},
		{
			name:     "no extension",
			file:     "track",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, r.Supports(tt.file))
		})
	}
}

func TestRegistry_RegisterNormalizesExtension(t *testing.T) {
	r := NewRegistry()
	r.Register("AAC", func(stream io.ReadSeekCloser) (beep.StreamSeekCloser, beep.Format, error) {
		return nil, beep.Format{}, nil
	})

	assert.True(t, r.Supports("track.aac"))
	assert.True(t, r.Supports("track.AAC"))
	assert.Contains(t, r.Supported(), ".aac")
}

func TestRegistry_DecodeUnknownExtension(t *testing.T) {
	r := NewRegistry()

	_, _, err := r.decode("track.xyz", newNopStream())
	require.Error(t, err)
	assert.ErrorIs(t, err, playback.ErrUnsupportedFormat)
}

func TestRegistry_DecodeDispatchesByExtension(t *testing.T) {
	r := &Registry{decoders: map[string]DecodeFunc{}}
	want := &fakeStreamer{length: 100}
	r.Register(".mp3", func(stream io.ReadSeekCloser) (beep.StreamSeekCloser, beep.Format, error) {
		return want, beep.Format{SampleRate: 48000}, nil
	})

	streamer, format, err := r.decode("track01.MP3", newNopStream())
	require.NoError(t, err)
	assert.Same(t, want, streamer.(*fakeStreamer))
	assert.Equal(t, beep.SampleRate(48000), format.SampleRate)
}

func TestRegistry_DecodeWrapsErrors(t *testing.T) {
	r := &Registry{decoders: map[string]DecodeFunc{}}
	r.Register(".mp3", func(stream io.ReadSeekCloser) (beep.StreamSeekCloser, beep.Format, error) {
		return nil, beep.Format{}, errors.New("truncated header")
	})

	_, _, err := r.decode("broken.mp3", newNopStream())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode broken.mp3")
	assert.Contains(t, err.Error(), "truncated header")
}
