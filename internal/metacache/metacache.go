// Package metacache persists derived per-file metadata (probe results,
// content hashes, classifications) in SQLite, keyed by a file signature so
// entries invalidate themselves when the file changes on disk.
package metacache

import (
	"crypto/md5"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Nomadcxx/videolabels/internal/logging"
)

// Entry kinds stored in the cache.
const (
	KindProbe    = "probe"
	KindHash     = "hash"
	KindIdentity = "identity"
)

// Config contains cache settings.
type Config struct {
	Enabled    bool `mapstructure:"enabled"`
	MaxEntries int  `mapstructure:"max_entries"`
	TTLHours   int  `mapstructure:"ttl_hours"`
}

// DefaultConfig returns cache defaults.
func DefaultConfig() Config {
	return Config{Enabled: true, MaxEntries: 10000, TTLHours: 24 * 7}
}

// Cache is the SQLite-backed metadata cache. A nil *Cache is valid and
// behaves as a cache that never hits, so callers do not need to branch on
// whether caching is enabled.
type Cache struct {
	db   *sql.DB
	path string
	log  *logging.Logger
	mu   sync.Mutex
}

// Stats summarizes cache contents.
type Stats struct {
	Entries int64
	Hits    int64
	Kinds   map[string]int64
}

const schema = `
CREATE TABLE IF NOT EXISTS metadata_cache (
	signature    TEXT NOT NULL,
	kind         TEXT NOT NULL,
	path         TEXT NOT NULL,
	payload      TEXT NOT NULL,
	created_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	expires_at   TIMESTAMP NOT NULL,
	last_used_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	use_count    INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (signature, kind)
);
CREATE INDEX IF NOT EXISTS idx_metadata_cache_path ON metadata_cache(path);
CREATE INDEX IF NOT EXISTS idx_metadata_cache_expires ON metadata_cache(expires_at);
`

// Open opens or creates the cache database at path. A corrupt database is
// moved aside to path+".bak" and recreated; cache contents are always
// reconstructible, media files are never at stake.
func Open(path string, log *logging.Logger) (*Cache, error) {
	if log == nil {
		log = logging.Nop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := open(path)
	if err != nil {
		log.Warn("metacache", "cache database unusable, backing up and recreating",
			logging.F("path", path), logging.F("reason", err))
		backup := path + ".bak"
		os.Remove(backup)
		if renameErr := os.Rename(path, backup); renameErr != nil {
			return nil, fmt.Errorf("failed to back up corrupt cache: %w", renameErr)
		}
		db, err = open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to recreate cache database: %w", err)
		}
	}

	return &Cache{db: db, path: path, log: log}, nil
}

// OpenInMemory opens an in-memory cache for testing.
func OpenInMemory() (*Cache, error) {
	db, err := open(":memory:")
	if err != nil {
		return nil, err
	}
	return &Cache{db: db, path: ":memory:", log: logging.Nop()}, nil
}

func open(path string) (*sql.DB, error) {
	dsn := path
	if path != ":memory:" {
		dsn = path + "?_journal_mode=WAL&_busy_timeout=5000"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping cache database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply cache schema: %w", err)
	}
	return db, nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.db.Close()
}

// Path returns the filesystem path of the cache database.
func (c *Cache) Path() string {
	if c == nil {
		return ""
	}
	return c.path
}

// Get looks up the entry for (path, kind) and unmarshals it into v. It
// reports false on a miss, an expired entry, or a signature mismatch caused
// by the file changing since the entry was written.
func (c *Cache) Get(path, kind string, v any) bool {
	if c == nil {
		return false
	}

	sig := Signature(path)

	c.mu.Lock()
	defer c.mu.Unlock()

	var payload string
	err := c.db.QueryRow(`
		SELECT payload FROM metadata_cache
		WHERE signature = ? AND kind = ? AND expires_at > CURRENT_TIMESTAMP
	`, sig, kind).Scan(&payload)
	if err == sql.ErrNoRows {
		return false
	}
	if err != nil {
		c.log.Warn("metacache", "cache lookup failed", logging.F("reason", err))
		return false
	}

	if err := json.Unmarshal([]byte(payload), v); err != nil {
		c.log.Warn("metacache", "discarding undecodable cache entry",
			logging.F("path", path), logging.F("kind", kind))
		c.db.Exec(`DELETE FROM metadata_cache WHERE signature = ? AND kind = ?`, sig, kind)
		return false
	}

	// Best-effort usage tracking.
	c.db.Exec(`
		UPDATE metadata_cache
		SET last_used_at = CURRENT_TIMESTAMP, use_count = use_count + 1
		WHERE signature = ? AND kind = ?
	`, sig, kind)

	return true
}

// Set stores v for (path, kind) with the given TTL, replacing any previous
// entry. Failures are logged, not returned; the cache is advisory.
func (c *Cache) Set(path, kind string, v any, ttl time.Duration) {
	if c == nil {
		return
	}

	payload, err := json.Marshal(v)
	if err != nil {
		c.log.Warn("metacache", "failed to encode cache entry", logging.F("reason", err))
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	_, err = c.db.Exec(`
		INSERT INTO metadata_cache (signature, kind, path, payload, expires_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(signature, kind) DO UPDATE SET
			path = excluded.path,
			payload = excluded.payload,
			created_at = CURRENT_TIMESTAMP,
			expires_at = excluded.expires_at,
			last_used_at = CURRENT_TIMESTAMP,
			use_count = 0
	`, Signature(path), kind, path, string(payload), time.Now().UTC().Add(ttl))
	if err != nil {
		c.log.Warn("metacache", "failed to store cache entry", logging.F("reason", err))
	}
}

// Invalidate removes every entry recorded for path, regardless of kind or
// signature, and returns the number of rows removed.
func (c *Cache) Invalidate(path string) int {
	if c == nil {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	res, err := c.db.Exec(`DELETE FROM metadata_cache WHERE path = ?`, path)
	if err != nil {
		c.log.Warn("metacache", "failed to invalidate cache entries", logging.F("reason", err))
		return 0
	}
	n, _ := res.RowsAffected()
	return int(n)
}

// Prune removes expired entries, then evicts the least recently used entries
// until at most maxEntries remain. It returns the number of rows removed.
func (c *Cache) Prune(maxEntries int) int {
	if c == nil {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var removed int64
	if res, err := c.db.Exec(`DELETE FROM metadata_cache WHERE expires_at <= CURRENT_TIMESTAMP`); err == nil {
		n, _ := res.RowsAffected()
		removed += n
	}

	if maxEntries > 0 {
		res, err := c.db.Exec(`
			DELETE FROM metadata_cache
			WHERE (signature, kind) IN (
				SELECT signature, kind FROM metadata_cache
				ORDER BY last_used_at DESC, use_count DESC
				LIMIT -1 OFFSET ?
			)
		`, maxEntries)
		if err == nil {
			n, _ := res.RowsAffected()
			removed += n
		}
	}

	return int(removed)
}

// GetStats returns entry counts overall, per kind, and the accumulated hit
// count across all entries.
func (c *Cache) GetStats() (Stats, error) {
	if c == nil {
		return Stats{Kinds: map[string]int64{}}, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	stats := Stats{Kinds: make(map[string]int64)}
	if err := c.db.QueryRow(`SELECT COUNT(*), COALESCE(SUM(use_count), 0) FROM metadata_cache`).
		Scan(&stats.Entries, &stats.Hits); err != nil {
		return stats, fmt.Errorf("failed to read cache stats: %w", err)
	}

	rows, err := c.db.Query(`SELECT kind, COUNT(*) FROM metadata_cache GROUP BY kind`)
	if err != nil {
		return stats, fmt.Errorf("failed to read cache kind stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var kind string
		var count int64
		if err := rows.Scan(&kind, &count); err != nil {
			return stats, err
		}
		stats.Kinds[kind] = count
	}
	return stats, rows.Err()
}

// Clear removes every entry.
func (c *Cache) Clear() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := c.db.Exec(`DELETE FROM metadata_cache`)
	return err
}

// Signature derives the cache key for a file from its path, size and
// modification time, so any on-disk change produces a different key. When
// the file cannot be statted the path alone is used, which still allows
// cache hits for planning against absent files.
func Signature(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Sprintf("%x", md5.Sum([]byte(path)))
	}
	raw := fmt.Sprintf("%s:%d:%d", path, info.Size(), info.ModTime().UnixNano())
	return fmt.Sprintf("%x", md5.Sum([]byte(raw)))
}
