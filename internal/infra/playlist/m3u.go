// Package playlist loads playlists from M3U files.
package playlist

import (
	"bufio"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/osa030/streambox/internal/domain/resource"
)

// LoadM3U reads a playlist from an M3U file.
func LoadM3U(filename string) (resource.Playlist, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "open playlist %s", filename)
	}
	defer f.Close()

	items, err := ParseM3U(f)
	if err != nil {
		return nil, errors.Wrapf(err, "parse playlist %s", filename)
	}
	return items, nil
}

// ParseM3U parses extended or plain M3U content. EXTINF titles attach
// to the entry that follows them; unknown directives are skipped.
func ParseM3U(r io.Reader) (resource.Playlist, error) {
	var items resource.Playlist
	var pendingTitle string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "#") {
			if title, ok := parseExtInf(line); ok {
				pendingTitle = title
			}
			continue
		}

		items = append(items, &resource.Item{
			Name:  EntryName(line),
			Title: pendingTitle,
			URL:   line,
		})
		pendingTitle = ""
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read playlist")
	}

	return items, nil
}

// parseExtInf extracts the display title from an EXTINF directive.
func parseExtInf(line string) (string, bool) {
	rest, ok := strings.CutPrefix(line, "#EXTINF:")
	if !ok {
		return "", false
	}
	_, title, ok := strings.Cut(rest, ",")
	if !ok {
		return "", false
	}
	return strings.TrimSpace(title), true
}

// EntryName derives the file name from a playlist entry, dropping any
// URL query or fragment.
func EntryName(entry string) string {
	if strings.Contains(entry, "://") {
		if u, err := url.Parse(entry); err == nil {
			return path.Base(u.Path)
		}
	}
	return filepath.Base(entry)
}
