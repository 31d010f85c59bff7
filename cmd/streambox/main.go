// Package main provides the streambox player entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/streambox/internal/app/check"
	"github.com/osa030/streambox/internal/app/notification"
	"github.com/osa030/streambox/internal/app/playback"
	"github.com/osa030/streambox/internal/domain/resource"
	"github.com/osa030/streambox/internal/infra/audio"
	"github.com/osa030/streambox/internal/infra/config"
	"github.com/osa030/streambox/internal/infra/fetch"
	"github.com/osa030/streambox/internal/infra/logger"
	"github.com/osa030/streambox/internal/infra/playlist"
	"github.com/osa030/streambox/internal/infra/store"
)

var (
	app        = kingpin.New("streambox", "Playlist-driven streaming audio player")
	configPath = app.Flag("config", "Path to config file").Default("config/player.yaml").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stderr)").String()

	// play command (default)
	playCmd    = app.Command("play", "Play the playlist").Default()
	playIndex  = playCmd.Flag("index", "Playlist index to start from").Default("0").Int()
	playFind   = playCmd.Flag("find", "Start from the entry best matching this name").String()
	playResume = playCmd.Flag("resume", "Resume from the last saved session").Bool()

	// tracks command
	tracksCmd = app.Command("tracks", "List playlist entries and exit")

	// check command
	checkCmd = app.Command("check", "Validate playlist entries and exit")
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	loggerConfig := logger.Config{Level: "info"}
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.File = *logfile
	}
	if err := logger.Init(loggerConfig); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	zlog.Info().Msgf("Loading config from %s", *configPath)
	cfg, err := config.Load(*configPath)
	if err != nil {
		zlog.Fatal().Msgf("Failed to load config: %v", err)
	}

	items, err := buildPlaylist(cfg)
	if err != nil {
		zlog.Fatal().Msgf("Failed to load playlist: %v", err)
	}

	switch command {
	case tracksCmd.FullCommand():
		printTracks(items)
		return
	case checkCmd.FullCommand():
		if !printCheckReport(cfg, items) {
			os.Exit(1)
		}
		return
	}

	// Run player (defer in run ensures teardown on any exit path)
	if err := run(cfg, items); err != nil {
		zlog.Error().Msgf("Player error: %v", err)
		os.Exit(1)
	}
}

// run executes the player. Using a separate function ensures defer
// statements are executed even when returning with an error.
func run(cfg *config.Config, items resource.Playlist) error {
	chain, err := buildCheckChain(cfg)
	if err != nil {
		return errors.Wrap(err, "invalid check config")
	}
	for _, issue := range chain.ExecutePlaylist(context.Background(), items, cfg.Fetch.Backend) {
		zlog.Warn().Msgf("Playlist entry %d (%s) rejected: %s",
			issue.Index, issue.Item.DisplayName(), cfg.GetMessage(issue.Code))
	}

	fetcher, err := fetch.New(cfg.Fetch.Backend, cfg.Fetch.Settings)
	if err != nil {
		return errors.Wrap(err, "failed to create fetch backend")
	}

	out, err := audio.NewSpeaker(audio.Config{
		SampleRate: cfg.Audio.SampleRate,
		BufferMs:   cfg.Audio.BufferMs,
	}, audio.NewRegistry())
	if err != nil {
		return errors.Wrap(err, "failed to initialize audio output")
	}
	defer out.Close()

	ctrl := playback.NewController(playback.Config{
		CacheCapacity: cfg.Player.CacheCapacity,
		Preload:       !cfg.Player.DisablePreload,
	}, fetcher, out)
	defer ctrl.Close()

	ctrl.SetPlaylist(items)

	notifier := notification.NewManager()
	defer notifier.Close()
	go notifier.Run(ctrl.Events())
	notifier.Subscribe(&logSubscriber{})

	source := sessionSource(cfg)
	var sessions *store.Store
	if cfg.State.Path != "" {
		sessions, err = store.Open(cfg.State.Path)
		if err != nil {
			zlog.Warn().Msgf("Session persistence disabled: %v", err)
			sessions = nil
		} else {
			defer sessions.Close()
			notifier.Subscribe(&sessionSaver{store: sessions, source: source, out: out})
		}
	}

	out.SetVolume(cfg.Player.InitialVolume)

	start, err := resolveStart(cfg, items, sessions, source, out)
	if err != nil {
		return err
	}

	ctx := context.Background()

	// Advance to the next entry when the current one plays to the end.
	done := make(chan struct{})
	out.SetOnFinished(func() {
		if !items.InRange(ctrl.GetSelected() + 1) {
			ctrl.Stop(true)
			close(done)
			return
		}
		if err := ctrl.Next(ctx); err != nil {
			zlog.Error().Msgf("Failed to advance playlist: %v", err)
			close(done)
		}
	})

	if err := ctrl.Play(ctx, start); err != nil {
		return errors.Wrapf(err, "failed to start playback at entry %d", start)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		zlog.Info().Msg("Received shutdown signal...")
	case <-done:
		zlog.Info().Msg("Playlist finished, shutting down...")
	}

	ctrl.Stop(true)
	zlog.Info().Msg("Player stopped")
	return nil
}

// resolveStart picks the starting playlist index from the play flags.
func resolveStart(cfg *config.Config, items resource.Playlist, sessions *store.Store, source string, out *audio.Speaker) (int, error) {
	start := *playIndex

	if *playFind != "" {
		idx, ok := items.FindByName(*playFind)
		if !ok {
			return 0, errors.Newf("no playlist entry matches %q", *playFind)
		}
		start = idx
	}

	if *playResume {
		if sessions == nil {
			zlog.Warn().Msg("Resume requested but session persistence is not configured")
			return start, nil
		}
		sess, found, err := sessions.LoadSession(source)
		if err != nil {
			zlog.Warn().Msgf("Failed to load session: %v", err)
			return start, nil
		}
		if !found || !items.InRange(sess.Index) {
			zlog.Info().Msg("No resumable session found, starting from the top")
			return start, nil
		}
		out.SetVolume(sess.Volume)
		zlog.Info().Msgf("Resuming session: entry=%d saved=%s", sess.Index, sess.SavedAt.Format(time.RFC3339))
		start = sess.Index
	}

	return start, nil
}

// buildPlaylist assembles the playlist from the configured M3U file
// and inline entries.
func buildPlaylist(cfg *config.Config) (resource.Playlist, error) {
	var items resource.Playlist

	if cfg.Playlist.Path != "" {
		loaded, err := playlist.LoadM3U(cfg.Playlist.Path)
		if err != nil {
			return nil, err
		}
		items = loaded
	}

	for _, entry := range cfg.Playlist.Items {
		name := entry.Name
		if name == "" {
			name = playlist.EntryName(entry.URL)
		}
		items = append(items, &resource.Item{Name: name, Title: entry.Title, URL: entry.URL})
	}

	if len(items) == 0 {
		return nil, errors.New("playlist is empty")
	}
	return items, nil
}

// buildCheckChain assembles the enabled playlist checks in a stable
// order.
func buildCheckChain(cfg *config.Config) (*check.Chain, error) {
	registry := check.GetRegistered()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)

	chain := check.NewChain()
	for _, name := range names {
		if !cfg.IsCheckEnabled(name) {
			continue
		}
		ch := registry[name]()
		if err := ch.ValidateConfig(cfg.GetCheckSettings(name)); err != nil {
			return nil, errors.Wrapf(err, "check %s", name)
		}
		chain.Add(ch)
	}
	return chain, nil
}

// printTracks prints the playlist entries, marking those without a
// registered decoder.
func printTracks(items resource.Playlist) {
	registry := audio.NewRegistry()
	fmt.Println("Playlist:")
	for i, item := range items {
		mark := " "
		if !registry.Supports(item.Name) {
			mark = "!"
		}
		fmt.Printf("  %3d %s %-40s %s\n", i, mark, item.DisplayName(), item.URL)
	}
}

// printCheckReport validates every entry and prints the rejections.
// Returns true when the whole playlist passed.
func printCheckReport(cfg *config.Config, items resource.Playlist) bool {
	chain, err := buildCheckChain(cfg)
	if err != nil {
		zlog.Fatal().Msgf("Invalid check config: %v", err)
	}

	issues := chain.ExecutePlaylist(context.Background(), items, cfg.Fetch.Backend)
	if len(issues) == 0 {
		fmt.Printf("All %d entries passed\n", len(items))
		return true
	}

	fmt.Printf("%d of %d entries rejected:\n", len(issues), len(items))
	for _, issue := range issues {
		fmt.Printf("  %3d %-40s [%s] %s\n",
			issue.Index, issue.Item.DisplayName(), issue.Code, cfg.GetMessage(issue.Code))
	}
	return false
}

// sessionSource keys saved sessions by where the playlist came from.
func sessionSource(cfg *config.Config) string {
	if cfg.Playlist.Path != "" {
		return cfg.Playlist.Path
	}
	return "inline"
}

// logSubscriber logs playback events as they happen.
type logSubscriber struct{}

func (s *logSubscriber) Notify(n notification.Notification) error {
	switch n.Event.Type {
	case playback.EventPlayStarted:
		zlog.Info().Msgf("Now playing [%d] %s", n.Event.Index, n.Event.Item.DisplayName())
	case playback.EventPlayPaused:
		zlog.Info().Msgf("Paused [%d]", n.Event.Index)
	case playback.EventPlayContinue:
		zlog.Info().Msgf("Resumed [%d]", n.Event.Index)
	case playback.EventPlayStopped:
		zlog.Info().Msg("Playback stopped")
	}
	return nil
}

// sessionSaver persists the playing entry so a later run can resume.
type sessionSaver struct {
	store  *store.Store
	source string
	out    *audio.Speaker
}

func (s *sessionSaver) Notify(n notification.Notification) error {
	if n.Event.Type != playback.EventPlayStarted {
		return nil
	}
	sess := store.Session{
		Index:   n.Event.Index,
		Volume:  s.out.Volume(),
		SavedAt: time.Now(),
	}
	if err := s.store.SaveSession(s.source, sess); err != nil {
		return errors.Wrap(err, "save session")
	}
	return nil
}
