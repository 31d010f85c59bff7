package audio

import (
	"io"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/streambox/internal/app/playback"
)

// resampleQuality balances CPU cost against artifacts when a stream's
// rate differs from the speaker rate.
const resampleQuality = 4

// Config represents the configuration for the speaker.
type Config struct {
	SampleRate int
	BufferMs   int
}

// Speaker drives the sound device through the beep speaker. One
// decoder is loaded at a time; when it plays to the end, OnFinished
// fires from its own goroutine.
type Speaker struct {
	mu sync.Mutex

	registry   *Registry
	sampleRate beep.SampleRate
	mixer      *beep.Mixer
	volume     *effects.Volume
	ctrl       *beep.Ctrl

	state      playback.State
	vol        float64
	onFinished func()
}

// NewSpeaker initializes the sound device and starts the playout loop.
func NewSpeaker(cfg Config, registry *Registry) (*Speaker, error) {
	sr := beep.SampleRate(cfg.SampleRate)
	if err := speaker.Init(sr, sr.N(time.Duration(cfg.BufferMs)*time.Millisecond)); err != nil {
		return nil, errors.Wrap(err, "failed to initialize speaker")
	}

	mixer := &beep.Mixer{}
	volume := &effects.Volume{
		Streamer: mixer,
		Base:     2,
		Volume:   0,
		Silent:   false,
	}
	speaker.Play(volume)

	return &Speaker{
		registry:   registry,
		sampleRate: sr,
		mixer:      mixer,
		volume:     volume,
		state:      playback.StateStopped,
		vol:        0.5,
	}, nil
}

// SetOnFinished registers the callback fired when the loaded decoder
// plays to the end. It is invoked from a fresh goroutine, after the
// speaker has already returned to the stopped state.
func (s *Speaker) SetOnFinished(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onFinished = fn
}

// DecoderFor selects a decoder by the file name's extension and hands
// it ownership of stream. On error the caller keeps the stream.
func (s *Speaker) DecoderFor(name string, stream io.ReadSeekCloser) (playback.Decoder, error) {
	streamer, format, err := s.registry.decode(name, stream)
	if err != nil {
		return nil, err
	}
	return &Decoder{streamer: streamer, format: format, name: name}, nil
}

// Init loads a decoder into the mixer, paused. Play starts it.
func (s *Speaker) Init(d playback.Decoder) error {
	dec, ok := d.(*Decoder)
	if !ok {
		return errors.Newf("unexpected decoder type %T", d)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var stream beep.Streamer = dec.streamer
	if dec.format.SampleRate != s.sampleRate {
		stream = beep.Resample(resampleQuality, dec.format.SampleRate, s.sampleRate, dec.streamer)
	}

	ctrl := &beep.Ctrl{Streamer: stream, Paused: true}

	speaker.Lock()
	s.mixer.Clear()
	s.mixer.Add(beep.Seq(ctrl, beep.Callback(func() {
		// Runs inside the playout loop; fan out so the handler can
		// take locks.
		go s.trackFinished()
	})))
	speaker.Unlock()

	s.ctrl = ctrl
	s.state = playback.StateStopped
	zlog.Debug().Msgf("audio: loaded: name=%s rate=%d", dec.name, dec.format.SampleRate)
	return nil
}

// Play starts or resumes playout of the loaded decoder.
func (s *Speaker) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctrl == nil {
		return errors.New("no decoder loaded")
	}

	speaker.Lock()
	s.ctrl.Paused = false
	speaker.Unlock()
	s.state = playback.StatePlaying
	return nil
}

// Pause suspends playout, keeping the decoder loaded.
func (s *Speaker) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctrl == nil {
		return errors.New("no decoder loaded")
	}

	speaker.Lock()
	s.ctrl.Paused = true
	speaker.Unlock()
	s.state = playback.StatePaused
	return nil
}

// Stop unloads the current decoder from the mixer. Closing the decoder
// stays with its owner.
func (s *Speaker) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	speaker.Lock()
	s.mixer.Clear()
	speaker.Unlock()

	s.ctrl = nil
	s.state = playback.StateStopped
	return nil
}

// SetVolume adjusts playout volume. The unit range maps onto the
// exponential volume effect, with silence below the audible floor.
func (s *Speaker) SetVolume(v float64) {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	speaker.Lock()
	if v == 0 {
		s.volume.Silent = true
	} else {
		s.volume.Silent = false
		s.volume.Volume = v*2 - 1
	}
	speaker.Unlock()
	s.vol = v
}

// Volume returns the current volume in [0, 1].
func (s *Speaker) Volume() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vol
}

// State reports the speaker's playback state.
func (s *Speaker) State() playback.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Close stops playout and releases the sound device.
func (s *Speaker) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	speaker.Clear()
	speaker.Close()
	s.ctrl = nil
	s.state = playback.StateStopped
}

// trackFinished runs after the loaded decoder plays to the end. A
// manual Stop resets the state first, which suppresses the callback.
func (s *Speaker) trackFinished() {
	s.mu.Lock()
	if s.state != playback.StatePlaying {
		s.mu.Unlock()
		return
	}
	s.state = playback.StateStopped
	s.ctrl = nil
	fn := s.onFinished
	s.mu.Unlock()

	if fn != nil {
		fn()
	}
}
