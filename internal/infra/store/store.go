// Package store persists playback sessions across runs.
package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	bolt "go.etcd.io/bbolt"
)

var bucketSessions = []byte("sessions")

// Session is the resumable playback position for one playlist source.
type Session struct {
	Index   int       `json:"index"`
	Volume  float64   `json:"volume"`
	SavedAt time.Time `json:"saved_at"`
}

// Store keeps sessions in a bolt database, keyed by playlist source.
type Store struct {
	db *bolt.DB
}

// Open opens or creates the session database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.Wrap(err, "failed to create state directory")
		}
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open state db")
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketSessions)
		return err
	})
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to create bucket")
	}

	return &Store{db: db}, nil
}

// SaveSession records the session for a playlist source.
func (s *Store) SaveSession(source string, sess Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return errors.Wrap(err, "failed to marshal session")
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSessions).Put(sourceKey(source), data)
	})
}

// LoadSession returns the stored session for a playlist source. The
// second return value reports whether one was found.
func (s *Store) LoadSession(source string) (Session, bool, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketSessions).Get(sourceKey(source)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if err != nil {
		return Session{}, false, errors.Wrap(err, "failed to read session")
	}
	if data == nil {
		return Session{}, false, nil
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return Session{}, false, errors.Wrap(err, "failed to unmarshal session")
	}
	return sess, true, nil
}

// DeleteSession removes the stored session for a playlist source.
func (s *Store) DeleteSession(source string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSessions).Delete(sourceKey(source))
	})
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// sourceKey hashes the playlist source so paths and URLs key cleanly.
func sourceKey(source string) []byte {
	normalized := strings.TrimSpace(source)
	sum := sha256.Sum256([]byte(normalized))
	return []byte(hex.EncodeToString(sum[:8]))
}
