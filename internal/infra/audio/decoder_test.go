package audio

import (
	"testing"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStreamer implements beep.StreamSeekCloser without touching any
// sound device.
type fakeStreamer struct {
	length int
	pos    int
	closed int
}

func (f *fakeStreamer) Stream(samples [][2]float64) (int, bool) { return 0, false }
func (f *fakeStreamer) Err() error                              { return nil }
func (f *fakeStreamer) Len() int                                { return f.length }
func (f *fakeStreamer) Position() int                           { return f.pos }

func (f *fakeStreamer) Seek(p int) error {
	f.pos = p
	return nil
}

func (f *fakeStreamer) Close() error {
	f.closed++
	return nil
}

func newTestDecoder(length, pos int) (*Decoder, *fakeStreamer) {
	streamer := &fakeStreamer{length: length, pos: pos}
	dec := &Decoder{
		streamer: streamer,
		format:   beep.Format{SampleRate: 44100, NumChannels: 2, Precision: 2},
		name:     "track01.mp3",
	}
	return dec, streamer
}

func TestDecoder_PositionAndLen(t *testing.T) {
	dec, _ := newTestDecoder(88200, 44100)

	assert.Equal(t, time.Second, dec.Position())
	assert.Equal(t, 2*time.Second, dec.Len())
}

func TestDecoder_Seek(t *testing.T) {
	tests := []struct {
		name     string
		pos      time.Duration
		expected int
	}{
		{
			name:     "start",
			pos:      0,
			expected: 0,
		},
		{
			name:     "mid stream",
			pos:      500 * time.Millisecond,
			expected: 22050,
		},
		{
			name:     "negative clamps to start",
			pos:      -time.Second,
			expected: 0,
		},
		{
			name:     "past end clamps to length",
			pos:      10 * time.Second,
			expected: 88200,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dec, streamer := newTestDecoder(88200, 44100)
			require.NoError(t, dec.Seek(tt.pos))
			assert.Equal(t, tt.expected, streamer.pos)
		})
	}
}

func TestDecoder_CloseReleasesStreamer(t *testing.T) {
	dec, streamer := newTestDecoder(88200, 0)

	require.NoError(t, dec.Close())
	assert.Equal(t, 1, streamer.closed)
}

func TestDecoder_Format(t *testing.T) {
	dec, _ := newTestDecoder(88200, 0)

	format := dec.Format()
	assert.Equal(t, beep.SampleRate(44100), format.SampleRate)
	assert.Equal(t, 2, format.NumChannels)
}
