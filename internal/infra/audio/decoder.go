package audio

import (
	"time"

	"github.com/gopxl/beep/v2"
)

// Decoder is a positioned decode handle over one audio stream. It owns
// the stream it was decoded from; Close releases it.
type Decoder struct {
	streamer beep.StreamSeekCloser
	format   beep.Format
	name     string
}

// Position returns the current decode position.
func (d *Decoder) Position() time.Duration {
	return d.format.SampleRate.D(d.streamer.Position())
}

// Len returns the total decoded length.
func (d *Decoder) Len() time.Duration {
	return d.format.SampleRate.D(d.streamer.Len())
}

// Seek repositions the decode cursor, clamping to the decoded range.
func (d *Decoder) Seek(pos time.Duration) error {
	if pos < 0 {
		pos = 0
	}
	if max := d.Len(); pos > max {
		pos = max
	}
	return d.streamer.Seek(d.format.SampleRate.N(pos))
}

// Close releases the decoder and the stream it owns.
func (d *Decoder) Close() error {
	return d.streamer.Close()
}

// Format returns the decoded stream format.
func (d *Decoder) Format() beep.Format {
	return d.format
}
