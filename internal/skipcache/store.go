package skipcache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"segue/internal/identity"
	"segue/internal/segments"
)

const defaultTTL = 24 * time.Hour

// Store is the persistent skip cache backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
	ttl  time.Duration
}

// Open initializes or connects to the cache database under dir and
// applies migrations. The directory is created when missing and
// locked for the lifetime of the store; a second process opening the
// same directory fails fast instead of contending on the database.
func Open(dir string, ttl time.Duration) (*Store, error) {
	if dir == "" {
		return nil, errors.New("cache directory required")
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	lock := flock.New(filepath.Join(dir, "cache.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire cache lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("cache directory %s is locked by another process", dir)
	}

	dbPath := filepath.Join(dir, "cache.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath, lock: lock, ttl: ttl}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}
	return store, nil
}

// Close releases the database and the directory lock.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	var firstErr error
	if s.db != nil {
		firstErr = s.db.Close()
	}
	if s.lock != nil {
		if err := s.lock.Unlock(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// GetIdentity looks up a cached resolution for a raw title. Expired
// rows count as misses.
func (s *Store) GetIdentity(ctx context.Context, rawTitle string) (identity.Identity, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT show_name, season, episode, year, imdb_id, mal_id, updated_at
         FROM identities WHERE raw_title = ?`, rawTitle)

	var (
		id        identity.Identity
		updatedAt string
	)
	err := row.Scan(&id.ShowName, &id.Season, &id.Episode, &id.Year, &id.ImdbID, &id.MalID, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return identity.Identity{}, false, nil
	}
	if err != nil {
		return identity.Identity{}, false, fmt.Errorf("scan identity: %w", err)
	}
	if s.expired(updatedAt) {
		return identity.Identity{}, false, nil
	}
	id.RawTitle = rawTitle
	return id, true, nil
}

// PutIdentity stores or refreshes a resolution keyed by raw title.
func (s *Store) PutIdentity(ctx context.Context, id identity.Identity) error {
	if id.RawTitle == "" {
		return errors.New("identity has no raw title")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO identities (raw_title, show_name, season, episode, year, imdb_id, mal_id, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(raw_title) DO UPDATE SET
            show_name = excluded.show_name,
            season = excluded.season,
            episode = excluded.episode,
            year = excluded.year,
            imdb_id = excluded.imdb_id,
            mal_id = excluded.mal_id,
            updated_at = excluded.updated_at`,
		id.RawTitle, id.ShowName, id.Season, id.Episode, id.Year, id.ImdbID, id.MalID, s.now())
	if err != nil {
		return fmt.Errorf("store identity: %w", err)
	}
	return nil
}

// GetSegments looks up a cached segment set by episode cache key.
func (s *Store) GetSegments(ctx context.Context, cacheKey string) (segments.Set, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT source, chapter_override, payload, updated_at
         FROM segment_sets WHERE cache_key = ?`, cacheKey)

	var (
		set       segments.Set
		override  int
		payload   string
		updatedAt string
	)
	err := row.Scan(&set.Source, &override, &payload, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return segments.Set{}, false, nil
	}
	if err != nil {
		return segments.Set{}, false, fmt.Errorf("scan segment set: %w", err)
	}
	if s.expired(updatedAt) {
		return segments.Set{}, false, nil
	}
	if err := json.Unmarshal([]byte(payload), &set.Segments); err != nil {
		return segments.Set{}, false, fmt.Errorf("decode segment payload: %w", err)
	}
	set.ChapterOverride = override != 0
	return set, true, nil
}

// PutSegments stores or refreshes a segment set.
func (s *Store) PutSegments(ctx context.Context, cacheKey string, set segments.Set) error {
	if cacheKey == "" {
		return errors.New("cache key required")
	}
	payload, err := json.Marshal(set.Segments)
	if err != nil {
		return fmt.Errorf("encode segment payload: %w", err)
	}
	override := 0
	if set.ChapterOverride {
		override = 1
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO segment_sets (cache_key, source, chapter_override, payload, updated_at)
         VALUES (?, ?, ?, ?, ?)
         ON CONFLICT(cache_key) DO UPDATE SET
            source = excluded.source,
            chapter_override = excluded.chapter_override,
            payload = excluded.payload,
            updated_at = excluded.updated_at`,
		cacheKey, set.Source, override, string(payload), s.now())
	if err != nil {
		return fmt.Errorf("store segment set: %w", err)
	}
	return nil
}

// Prune removes expired rows and returns how many were deleted.
func (s *Store) Prune(ctx context.Context) (int64, error) {
	cutoff := time.Now().UTC().Add(-s.ttl).Format(time.RFC3339Nano)
	var total int64
	for _, table := range []string{"identities", "segment_sets"} {
		res, err := s.db.ExecContext(ctx,
			fmt.Sprintf("DELETE FROM %s WHERE updated_at < ?", table), cutoff)
		if err != nil {
			return total, fmt.Errorf("prune %s: %w", table, err)
		}
		n, _ := res.RowsAffected()
		total += n
	}
	return total, nil
}

// Clear drops all cached rows.
func (s *Store) Clear(ctx context.Context) error {
	for _, table := range []string{"identities", "segment_sets"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

// Stats summarizes cache contents for status output.
type Stats struct {
	Identities  int64
	SegmentSets int64
}

// Stats counts live rows per table.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	row := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM identities")
	if err := row.Scan(&stats.Identities); err != nil {
		return Stats{}, fmt.Errorf("count identities: %w", err)
	}
	row = s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM segment_sets")
	if err := row.Scan(&stats.SegmentSets); err != nil {
		return Stats{}, fmt.Errorf("count segment sets: %w", err)
	}
	return stats, nil
}

func (s *Store) now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func (s *Store) expired(updatedAt string) bool {
	stamp, err := time.Parse(time.RFC3339Nano, updatedAt)
	if err != nil {
		return true
	}
	return time.Since(stamp) > s.ttl
}
