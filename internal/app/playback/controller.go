package playback

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/streambox/internal/app/cache"
	"github.com/osa030/streambox/internal/domain/resource"
)

// Errors
var (
	ErrNoActiveItem      = errors.New("no active item")
	ErrIndexOutOfRange   = errors.New("playlist index out of range")
	ErrUnsupportedFormat = errors.New("unsupported audio format")
)

// Config holds controller configuration.
type Config struct {
	CacheCapacity int  // Bound on resident prefetched streams
	Preload       bool // Warm the next item's stream after each start
}

// Controller manages the playlist selection and drives the fetch,
// cache hand-off and playout pipeline, including the background
// preload of the upcoming item.
//
// The transport methods (Play, Next, Previous, Stop, Pause) expect a
// single caller; overlapping Play calls are not coordinated beyond
// keeping the cache and stream ownership invariants intact. The
// internal lock exists for the preload goroutine, not to serialize the
// public API.
type Controller struct {
	mu sync.Mutex

	// Playlist state
	playlist resource.Playlist
	selected int

	// Collaborators
	fetcher Fetcher
	output  Output
	cache   *cache.Cache

	// Live decode handle, exclusively owned; nil while stopped
	decoder Decoder
	current *resource.Item

	fetching bool

	// Preload
	preload   bool
	preloadWG sync.WaitGroup

	// Events
	eventCh chan Event
	closed  bool

	// Context
	ctx    context.Context
	cancel context.CancelFunc
}

// NewController creates a new playback controller wired to its
// collaborators.
func NewController(config Config, fetcher Fetcher, output Output) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		selected: -1,
		fetcher:  fetcher,
		output:   output,
		cache:    cache.New(config.CacheCapacity),
		preload:  config.Preload,
		eventCh:  make(chan Event, 16),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Events returns the event channel.
func (c *Controller) Events() <-chan Event {
	return c.eventCh
}

// SetPlaylist replaces the playlist. Playback is force-stopped first,
// releasing the live decoder and every cached stream, and the selection
// resets so the next Play starts fresh.
func (c *Controller) SetPlaylist(items resource.Playlist) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked(true)
	c.playlist = items
	c.selected = -1
	zlog.Debug().Msgf("playback: playlist set: items=%d", len(items))
}

// Play selects the item at index and makes it audible. Calling Play for
// the item that is already playing restarts it from position zero
// without a refetch; calling while paused resumes instead of starting
// over. The fetch honors ctx; a fetch failure is logged and leaves the
// controller stopped and ready for the next request.
func (c *Controller) Play(ctx context.Context, index int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()

	if !c.playlist.InRange(index) {
		c.mu.Unlock()
		return errors.Wrapf(ErrIndexOutOfRange, "index %d of %d", index, len(c.playlist))
	}

	same := index == c.selected
	c.selected = index
	item := c.playlist[index]

	// A paused output means this request is a resume.
	if c.output.State() == StatePaused {
		c.mu.Unlock()
		return c.Pause()
	}

	// Same item, live decoder, already audible: restart from the top.
	if same && c.decoder != nil && c.current == item && c.output.State() == StatePlaying {
		c.jumpToLocked(0)
		c.mu.Unlock()
		return nil
	}

	// Retire whatever is loaded, keep the cache warm.
	c.stopLocked(false)

	c.fetching = true
	c.mu.Unlock()

	// Suspension point: the fetch runs unlocked so a preload in flight
	// can enqueue concurrently.
	status, err := c.fetcher.Fetch(ctx, item)

	c.mu.Lock()
	c.fetching = false

	if !status.Usable() {
		c.mu.Unlock()
		if status == resource.StatusCancelled {
			zlog.Debug().Msgf("playback: fetch cancelled: item=%s", item.Name)
		} else {
			zlog.Warn().Msgf("playback: fetch failed: item=%s status=%s error=%v", item.Name, status, err)
		}
		return nil
	}

	c.cache.Enqueue(item)

	stream := c.cache.Claim(item)
	if stream == nil {
		c.mu.Unlock()
		zlog.Error().Msgf("playback: no stream after usable fetch: item=%s status=%s", item.Name, status)
		return nil
	}

	dec, err := c.output.DecoderFor(item.Name, stream)
	if err != nil {
		if cerr := stream.Close(); cerr != nil {
			zlog.Warn().Msgf("playback: failed to close stream after decode error: item=%s error=%v", item.Name, cerr)
		}
		c.mu.Unlock()
		return errors.Wrapf(err, "select decoder for %q", item.Name)
	}

	if err := c.output.Init(dec); err != nil {
		_ = dec.Close()
		c.mu.Unlock()
		return errors.Wrapf(err, "initialize output for %q", item.Name)
	}

	if err := c.output.Play(); err != nil {
		_ = c.output.Stop()
		_ = dec.Close()
		c.mu.Unlock()
		return errors.Wrapf(err, "start output for %q", item.Name)
	}

	c.decoder = dec
	c.current = item

	zlog.Info().Msgf("playback: started: index=%d item=%s status=%s", index, item.Name, status)
	c.sendEventLocked(Event{
		Type:  EventPlayStarted,
		Index: index,
		Item:  item,
		State: c.output.State(),
	})

	if c.preload {
		c.preloadWG.Add(1)
		go func() {
			defer c.preloadWG.Done()
			select {
			case <-c.ctx.Done():
				return
			default:
			}
			c.PreloadNext(ctx)
		}()
	}

	c.mu.Unlock()
	return nil
}

// PreloadNext warms the cache with the item after the current
// selection. It is purely a cache side effect: failures and
// cancellations are logged and never disturb current playback.
func (c *Controller) PreloadNext(ctx context.Context) {
	c.mu.Lock()
	next := c.selected + 1
	if !c.playlist.InRange(next) {
		c.mu.Unlock()
		return
	}
	item := c.playlist[next]
	c.mu.Unlock()

	status, err := c.fetcher.Fetch(ctx, item)
	if !status.Usable() {
		zlog.Debug().Msgf("playback: preload skipped: item=%s status=%s error=%v", item.Name, status, err)
		return
	}

	c.cache.Enqueue(item)
	zlog.Debug().Msgf("playback: preloaded: item=%s cached=%d", item.Name, c.cache.Len())
}

// Next advances to the following playlist entry. At the end of the
// playlist it force-stops instead of wrapping around, and the selection
// stays on the last entry.
func (c *Controller) Next(ctx context.Context) error {
	c.mu.Lock()
	next := c.selected + 1
	inRange := c.playlist.InRange(next)
	c.mu.Unlock()

	if !inRange {
		zlog.Debug().Msgf("playback: next past end of playlist, stopping")
		c.Stop(true)
		return nil
	}
	return c.Play(ctx, next)
}

// Previous steps back to the preceding playlist entry. Before the first
// entry it force-stops instead of wrapping around.
func (c *Controller) Previous(ctx context.Context) error {
	c.mu.Lock()
	prev := c.selected - 1
	inRange := c.playlist.InRange(prev)
	c.mu.Unlock()

	if !inRange {
		zlog.Debug().Msgf("playback: previous past start of playlist, stopping")
		c.Stop(true)
		return nil
	}
	return c.Play(ctx, prev)
}

// Stop halts playback and disposes the live decode handle. With force
// set the resource cache is cleared as well, releasing every prefetched
// stream.
func (c *Controller) Stop(force bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked(force)
}

// stopLocked retires the live decoder and optionally clears the cache.
// Safe to call in any state; a stop with nothing loaded emits no event.
func (c *Controller) stopLocked(force bool) {
	if c.decoder != nil {
		name := ""
		if c.current != nil {
			name = c.current.Name
		}
		if err := c.output.Stop(); err != nil {
			zlog.Warn().Msgf("playback: output stop failed: item=%s error=%v", name, err)
		}
		if err := c.decoder.Close(); err != nil {
			zlog.Warn().Msgf("playback: decoder close failed: item=%s error=%v", name, err)
		}
		c.decoder = nil
		c.current = nil

		c.sendEventLocked(Event{
			Type:  EventPlayStopped,
			Index: c.selected,
			State: c.output.State(),
		})
	}

	if force {
		c.cache.Clear()
	}
}

// Pause toggles between playing and paused for the current selection.
// Toggling a stopped output is a no-op.
func (c *Controller) Pause() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.selected < 0 {
		return ErrNoActiveItem
	}

	item := c.current
	if item == nil {
		item = c.playlist[c.selected]
	}

	switch c.output.State() {
	case StatePlaying:
		if err := c.output.Pause(); err != nil {
			return errors.Wrap(err, "pause output")
		}
		c.sendEventLocked(Event{
			Type:  EventPlayPaused,
			Index: c.selected,
			Item:  item,
			State: c.output.State(),
		})
	case StatePaused:
		if err := c.output.Play(); err != nil {
			return errors.Wrap(err, "resume output")
		}
		c.sendEventLocked(Event{
			Type:  EventPlayContinue,
			Index: c.selected,
			Item:  item,
			State: c.output.State(),
		})
	default:
		zlog.Debug().Msgf("playback: pause ignored: state=%s", c.output.State())
	}
	return nil
}

// JumpTo repositions the live decoder. Honored only while playing; in
// any other state the call is ignored.
func (c *Controller) JumpTo(pos time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.jumpToLocked(pos)
}

func (c *Controller) jumpToLocked(pos time.Duration) {
	if c.decoder == nil || c.output.State() != StatePlaying {
		zlog.Debug().Msgf("playback: jump ignored: state=%s", c.output.State())
		return
	}
	if err := c.decoder.Seek(pos); err != nil {
		zlog.Warn().Msgf("playback: seek failed: pos=%v error=%v", pos, err)
	}
}

// SetVolume adjusts output volume. Honored only while playing; in any
// other state the call is ignored.
func (c *Controller) SetVolume(v float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.output.State() != StatePlaying {
		zlog.Debug().Msgf("playback: volume ignored: state=%s", c.output.State())
		return
	}
	c.output.SetVolume(v)
}

// GetSelected returns the index of the current selection, -1 when
// nothing was selected yet.
func (c *Controller) GetSelected() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected
}

// GetStatus returns the controller's playback status.
func (c *Controller) GetStatus() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.fetching {
		return StatusFetching
	}
	switch c.output.State() {
	case StatePlaying:
		return StatusPlaying
	case StatePaused:
		return StatusPaused
	}
	if c.selected < 0 {
		return StatusIdle
	}
	return StatusStopped
}

// GetCachedCount returns the number of resident cache entries.
func (c *Controller) GetCachedCount() int {
	return c.cache.Len()
}

// GetPlaylist returns the current playlist.
func (c *Controller) GetPlaylist() resource.Playlist {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playlist
}

// sendEventLocked sends an event without blocking. Must be called with
// the lock held; after Close the event is discarded.
func (c *Controller) sendEventLocked(event Event) {
	if c.closed {
		return
	}
	select {
	case c.eventCh <- event:
	default:
		zlog.Warn().Msgf("playback: event channel full, dropping event: type=%s", event.Type)
	}
}

// Close stops background work, joins the preload goroutine and releases
// every owned resource. The event channel is closed last, under the
// lock, so a concurrent transport call cannot send past it.
func (c *Controller) Close() {
	c.cancel()
	c.preloadWG.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.stopLocked(true)
	c.closed = true
	close(c.eventCh)
}
