package fetch

import "bytes"

// bytesStream is an owned, seekable handle over fully downloaded audio
// bytes. Decoders need random access, which a network body cannot give,
// so HTTP fetches buffer before attaching.
type bytesStream struct {
	*bytes.Reader
}

func newBytesStream(data []byte) *bytesStream {
	return &bytesStream{Reader: bytes.NewReader(data)}
}

// Close releases the handle. The backing buffer is reclaimed once the
// owner drops it.
func (s *bytesStream) Close() error {
	return nil
}
