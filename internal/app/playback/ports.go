package playback

import (
	"context"
	"io"
	"time"

	"github.com/osa030/streambox/internal/domain/resource"
)

// Fetcher retrieves the audio bytes for a playlist item. On StatusOk
// the fetcher has attached an owned stream handle to the item; on
// StatusStreamExisting the item already carried a usable handle and no
// I/O happened. Cancellation of ctx must be honored promptly and
// reported as StatusCancelled. Retries and timeouts are the fetcher's
// responsibility.
type Fetcher interface {
	Fetch(ctx context.Context, item *resource.Item) (resource.LoadStatus, error)
}

// Decoder is a positioned decode handle produced by an Output. It owns
// the stream handle it was built from: Close releases that stream, and
// must be called exactly once when the handle is retired.
type Decoder interface {
	// Position returns the current decode position.
	Position() time.Duration
	// Len returns the total decoded length.
	Len() time.Duration
	// Seek repositions the decode cursor.
	Seek(pos time.Duration) error
	// Close releases the decoder and the stream it owns.
	Close() error
}

// Output is the decode and playout collaborator: a decoder capability
// table keyed by file extension plus the audible sink those decoders
// drive.
type Output interface {
	// DecoderFor selects a decoder by name's extension, case
	// insensitively, and hands it ownership of stream. On error the
	// caller keeps ownership of stream; an unrecognized extension is
	// reported via ErrUnsupportedFormat.
	DecoderFor(name string, stream io.ReadSeekCloser) (Decoder, error)
	// Init loads a decoder previously produced by DecoderFor into the
	// sink, ready to play.
	Init(d Decoder) error
	// Play starts or resumes playout of the loaded decoder.
	Play() error
	// Pause suspends playout, keeping the decoder loaded.
	Pause() error
	// Stop unloads the current decoder from the sink.
	Stop() error
	// SetVolume adjusts playout volume in [0, 1].
	SetVolume(v float64)
	// Volume returns the current volume in [0, 1].
	Volume() float64
	// State reports the sink's playback state.
	State() State
}
