// Package audio implements playback output on the beep speaker.
package audio

import (
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"

	"github.com/osa030/streambox/internal/app/playback"
)

// DecodeFunc decodes audio from a stream handle. The returned streamer
// takes ownership of the handle and releases it on Close; on error the
// handle stays with the caller.
type DecodeFunc func(stream io.ReadSeekCloser) (beep.StreamSeekCloser, beep.Format, error)

// Registry maps file extensions to decode functions.
type Registry struct {
	decoders map[string]DecodeFunc
}

// NewRegistry creates a registry with the built-in formats registered.
func NewRegistry() *Registry {
	r := &Registry{decoders: map[string]DecodeFunc{}}
	r.Register(".mp3", func(stream io.ReadSeekCloser) (beep.StreamSeekCloser, beep.Format, error) {
		return mp3.Decode(stream)
	})
	r.Register(".wav", func(stream io.ReadSeekCloser) (beep.StreamSeekCloser, beep.Format, error) {
		return wav.Decode(stream)
	})
	r.Register(".flac", func(stream io.ReadSeekCloser) (beep.StreamSeekCloser, beep.Format, error) {
		return flac.Decode(stream)
	})
	r.Register(".ogg", func(stream io.ReadSeekCloser) (beep.StreamSeekCloser, beep.Format, error) {
		return vorbis.Decode(stream)
	})
	return r
}

// Register adds a decode function for an extension. The extension is
// normalized to dotted lowercase form.
func (r *Registry) Register(ext string, fn DecodeFunc) {
	ext = strings.ToLower(ext)
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	r.decoders[ext] = fn
}

// Supported returns the registered extensions in sorted order.
func (r *Registry) Supported() []string {
	exts := make([]string, 0, len(r.decoders))
	for ext := range r.decoders {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Supports reports whether a decode function is registered for the
// file name's extension.
func (r *Registry) Supports(name string) bool {
	_, ok := r.decoders[strings.ToLower(filepath.Ext(name))]
	return ok
}

// decode selects the decode function by the file name's extension and
// runs it.
func (r *Registry) decode(name string, stream io.ReadSeekCloser) (beep.StreamSeekCloser, beep.Format, error) {
	ext := strings.ToLower(filepath.Ext(name))
	fn, ok := r.decoders[ext]
	if !ok {
		return nil, beep.Format{}, errors.Wrapf(playback.ErrUnsupportedFormat, "extension %q", ext)
	}

	streamer, format, err := fn(stream)
	if err != nil {
		return nil, beep.Format{}, errors.Wrapf(err, "decode %s", name)
	}
	return streamer, format, nil
}
