// Package cache stores parsed schedules per duty location, keyed by the
// source bulletin's last-modified timestamp and a cache format version.
// Entries live in a bounded in-memory LRU backed by JSON files on disk, so
// a restart does not force a re-parse of every bulletin.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/bFollon/farmacias-de-guardia-segovia/pkg/schedule"
)

// FormatVersion is bumped whenever the stored schedule shape changes; a
// mismatch forces a full re-parse of the source bulletin.
const FormatVersion = 3

// defaultSize bounds the in-memory LRU. Eleven locations exist today
// (three simple regions plus eight ZBS zones); the headroom is for
// overrides and tests.
const defaultSize = 32

// State classifies a cache entry against the current source document.
type State int

const (
	// StateMissing means no entry exists for the location.
	StateMissing State = iota
	// StateValid means the entry may be served without re-parsing.
	StateValid
	// StateStaleVersion means the entry was written by an older cache
	// format.
	StateStaleVersion
	// StateStaleTimestamp means the source bulletin changed after the
	// entry was recorded.
	StateStaleTimestamp
)

func (s State) String() string {
	switch s {
	case StateValid:
		return "valid"
	case StateStaleVersion:
		return "stale-version"
	case StateStaleTimestamp:
		return "stale-timestamp"
	default:
		return "missing"
	}
}

// Usable reports whether an entry in this state may be served.
func (s State) Usable() bool {
	return s == StateValid
}

// Entry is one location's cached parse result.
type Entry struct {
	Version        int                          `json:"version"`
	SourceModified time.Time                    `json:"source_modified"`
	StoredAt       time.Time                    `json:"stored_at"`
	Schedules      []*schedule.PharmacySchedule `json:"schedules"`
}

// Store is the schedule cache. Safe for concurrent use: the LRU is
// internally synchronized and disk writes go through atomic renames.
type Store struct {
	mem *lru.Cache[schedule.LocationID, *Entry]
	dir string
	log *zap.Logger
}

// NewStore creates a cache. dir may be empty for a memory-only cache;
// otherwise it is created if missing.
func NewStore(dir string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	mem, err := lru.New[schedule.LocationID, *Entry](defaultSize)
	if err != nil {
		return nil, fmt.Errorf("creating LRU: %w", err)
	}
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache directory %s: %w", dir, err)
		}
	}
	return &Store{mem: mem, dir: dir, log: log}, nil
}

// Evaluate classifies the location's entry against the source bulletin's
// current last-modified timestamp. The four states are deliberately
// distinct so each invalidation cause stays independently observable.
func (s *Store) Evaluate(location schedule.LocationID, sourceModified time.Time) State {
	entry, ok := s.Get(location)
	switch {
	case !ok:
		return StateMissing
	case entry.Version != FormatVersion:
		return StateStaleVersion
	case entry.SourceModified.Before(sourceModified):
		return StateStaleTimestamp
	default:
		return StateValid
	}
}

// Get returns the location's entry from memory, falling back to disk and
// promoting a disk hit into the LRU. The entry's state is not checked.
func (s *Store) Get(location schedule.LocationID) (*Entry, bool) {
	if entry, ok := s.mem.Get(location); ok {
		return entry, true
	}
	if s.dir == "" {
		return nil, false
	}
	data, err := os.ReadFile(s.pathFor(location))
	if err != nil {
		return nil, false
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		s.log.Warn("discarding unreadable cache file",
			zap.String("location", string(location)), zap.Error(err))
		_ = os.Remove(s.pathFor(location))
		return nil, false
	}
	s.mem.Add(location, &entry)
	return &entry, true
}

// Put records a location's parse result.
func (s *Store) Put(location schedule.LocationID, sourceModified time.Time, schedules []*schedule.PharmacySchedule) error {
	entry := &Entry{
		Version:        FormatVersion,
		SourceModified: sourceModified,
		StoredAt:       time.Now(),
		Schedules:      schedules,
	}
	s.mem.Add(location, entry)

	if s.dir == "" {
		return nil
	}
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling cache entry: %w", err)
	}
	path := s.pathFor(location)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing cache file %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("publishing cache file %s: %w", path, err)
	}
	return nil
}

// Invalidate drops a location's entry. Invalidating the rural region drops
// all eight ZBS entries with it: they come from one shared parse and can
// never be refreshed independently.
func (s *Store) Invalidate(location schedule.LocationID) {
	s.drop(location)
	if location == schedule.LocationID(schedule.RegionSegoviaRural) {
		for _, zone := range schedule.ZBSLocationIDs() {
			s.drop(zone)
		}
	}
}

func (s *Store) drop(location schedule.LocationID) {
	s.mem.Remove(location)
	if s.dir != "" {
		_ = os.Remove(s.pathFor(location))
	}
}

// Clear drops every entry, in memory and on disk.
func (s *Store) Clear() error {
	s.mem.Purge()
	if s.dir == "" {
		return nil
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("reading cache directory %s: %w", s.dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			return fmt.Errorf("removing cache file %s: %w", entry.Name(), err)
		}
	}
	return nil
}

func (s *Store) pathFor(location schedule.LocationID) string {
	hash := sha256.Sum256([]byte(location))
	return filepath.Join(s.dir, hex.EncodeToString(hash[:])+".json")
}
