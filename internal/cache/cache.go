// Package cache provides local caching of resolved schema snapshots.
// The cache is stored in .ormer/cache.db (SQLite) and is gitignored.
// It is optional and can always be rebuilt from the schema document.
//
// Snapshots are keyed by schema fingerprint. A second table maps the hash of
// a document's bytes to the fingerprint it produced, so an unchanged document
// can be served without parsing or resolving it again.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/hlop3z/ormer/internal/alerr"

	_ "modernc.org/sqlite" // SQLite driver
)

const (
	// DefaultDir is the directory name for the cache (gitignored).
	DefaultDir = ".ormer"
	// CacheFile is the SQLite database file name.
	CacheFile = "cache.db"
	// Version of the cache layout. A mismatch clears the cache on open.
	Version = "1"
)

// Cache provides local caching of schema snapshots.
type Cache struct {
	db   *sql.DB
	path string
	mu   sync.RWMutex
}

// Open opens or creates the cache database inside dir.
// If the directory or database does not exist, they are created.
func Open(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, alerr.Wrap(alerr.ErrCacheInit, err, "failed to create cache directory").
			With("path", dir)
	}

	cachePath := filepath.Join(dir, CacheFile)
	db, err := sql.Open("sqlite", cachePath)
	if err != nil {
		return nil, alerr.Wrap(alerr.ErrCacheInit, err, "failed to open cache database").
			With("path", cachePath)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, alerr.Wrap(alerr.ErrCacheInit, err, "failed to connect to cache database").
			With("path", cachePath)
	}

	c := &Cache{db: db, path: cachePath}
	if err := c.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

// Close closes the cache database connection.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Path returns the path to the cache database file.
func (c *Cache) Path() string {
	if c == nil {
		return ""
	}
	return c.path
}

// initSchema creates the cache tables if they don't exist and drops stale
// data written by another cache version.
func (c *Cache) initSchema() error {
	ddl := `
		CREATE TABLE IF NOT EXISTS snapshots (
			fingerprint  TEXT PRIMARY KEY,
			payload      BLOB NOT NULL,
			created_at   TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS sources (
			source_hash  TEXT PRIMARY KEY,
			source_path  TEXT NOT NULL,
			fingerprint  TEXT NOT NULL,
			updated_at   TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS cache_meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.db.Exec(ddl); err != nil {
		return alerr.Wrap(alerr.ErrCacheInit, err, "failed to initialize cache schema")
	}

	var version string
	err := c.db.QueryRow("SELECT value FROM cache_meta WHERE key = 'version'").Scan(&version)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return alerr.Wrap(alerr.ErrCacheInit, err, "failed to read cache version")
	}
	if version == Version {
		return nil
	}

	for _, stmt := range []string{
		"DELETE FROM snapshots",
		"DELETE FROM sources",
		"INSERT OR REPLACE INTO cache_meta (key, value) VALUES ('version', '" + Version + "')",
	} {
		if _, err := c.db.Exec(stmt); err != nil {
			return alerr.Wrap(alerr.ErrCacheInit, err, "failed to reset cache").
				With("from_version", version)
		}
	}
	return nil
}

// -----------------------------------------------------------------------------
// Snapshot Operations
// -----------------------------------------------------------------------------

// GetSnapshot retrieves the snapshot for a fingerprint.
// Returns nil if not found.
func (c *Cache) GetSnapshot(fingerprint string) (*Snapshot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var payload []byte
	err := c.db.QueryRow("SELECT payload FROM snapshots WHERE fingerprint = ?", fingerprint).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, alerr.Wrap(alerr.ErrCacheRead, err, "failed to read snapshot").
			With("fingerprint", fingerprint)
	}
	return DeserializeSnapshot(payload)
}

// SetSnapshot stores a snapshot under its fingerprint.
func (c *Cache) SetSnapshot(s *Snapshot) error {
	data, err := SerializeSnapshot(s)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	_, err = c.db.Exec(
		"INSERT OR REPLACE INTO snapshots (fingerprint, payload, created_at) VALUES (?, ?, ?)",
		s.Fingerprint, data, now(),
	)
	if err != nil {
		return alerr.Wrap(alerr.ErrCacheWrite, err, "failed to write snapshot").
			With("fingerprint", s.Fingerprint)
	}
	return nil
}

// DeleteSnapshot removes the snapshot for a fingerprint along with the
// sources that point at it.
func (c *Cache) DeleteSnapshot(fingerprint string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, stmt := range []string{
		"DELETE FROM snapshots WHERE fingerprint = ?",
		"DELETE FROM sources WHERE fingerprint = ?",
	} {
		if _, err := c.db.Exec(stmt, fingerprint); err != nil {
			return alerr.Wrap(alerr.ErrCacheWrite, err, "failed to delete snapshot").
				With("fingerprint", fingerprint)
		}
	}
	return nil
}

// ListSnapshots returns all cached fingerprints.
func (c *Cache) ListSnapshots() ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rows, err := c.db.Query("SELECT fingerprint FROM snapshots ORDER BY fingerprint")
	if err != nil {
		return nil, alerr.Wrap(alerr.ErrCacheRead, err, "failed to list snapshots")
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var fp string
		if err := rows.Scan(&fp); err != nil {
			return nil, alerr.Wrap(alerr.ErrCacheRead, err, "failed to scan fingerprint")
		}
		out = append(out, fp)
	}
	return out, rows.Err()
}

// -----------------------------------------------------------------------------
// Source Operations
// -----------------------------------------------------------------------------

// SourceHash returns the key a document's bytes are cached under.
func SourceHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// LookupSource returns the fingerprint a document hash produced last time,
// or "" if the document is unknown.
func (c *Cache) LookupSource(sourceHash string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var fp string
	err := c.db.QueryRow("SELECT fingerprint FROM sources WHERE source_hash = ?", sourceHash).Scan(&fp)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", alerr.Wrap(alerr.ErrCacheRead, err, "failed to read source").
			With("source_hash", sourceHash)
	}
	return fp, nil
}

// SetSource records that the document at path with the given hash resolved
// to fingerprint.
func (c *Cache) SetSource(sourceHash, path, fingerprint string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.db.Exec(
		"INSERT OR REPLACE INTO sources (source_hash, source_path, fingerprint, updated_at) VALUES (?, ?, ?, ?)",
		sourceHash, path, fingerprint, now(),
	)
	if err != nil {
		return alerr.Wrap(alerr.ErrCacheWrite, err, "failed to write source").
			With("path", path)
	}
	return nil
}

// GetOrCompute returns the snapshot cached for a document hash, or calls
// compute and caches its result. hit reports whether compute was skipped.
// Write failures are logged and otherwise ignored: the cache is optional.
func (c *Cache) GetOrCompute(sourceHash, path string, compute func() (*Snapshot, error)) (snap *Snapshot, hit bool, err error) {
	fp, err := c.LookupSource(sourceHash)
	if err != nil {
		return nil, false, err
	}
	if fp != "" {
		snap, err = c.GetSnapshot(fp)
		if err != nil {
			return nil, false, err
		}
		if snap != nil {
			return snap, true, nil
		}
	}

	snap, err = compute()
	if err != nil {
		return nil, false, err
	}

	if err := c.SetSnapshot(snap); err != nil {
		slog.Warn("cache: write failed", "path", path, "error", err)
		return snap, false, nil
	}
	if err := c.SetSource(sourceHash, path, snap.Fingerprint); err != nil {
		slog.Warn("cache: write failed", "path", path, "error", err)
	}
	return snap, false, nil
}

// -----------------------------------------------------------------------------
// Cache Management Operations
// -----------------------------------------------------------------------------

// Clear removes all cached data.
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, table := range []string{"snapshots", "sources"} {
		if _, err := c.db.Exec("DELETE FROM " + table); err != nil {
			return alerr.Wrap(alerr.ErrCacheWrite, err, "failed to clear cache").
				With("table", table)
		}
	}
	return nil
}

// GetCacheVersion returns the cache layout version.
func (c *Cache) GetCacheVersion() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var version string
	err := c.db.QueryRow("SELECT value FROM cache_meta WHERE key = 'version'").Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", alerr.Wrap(alerr.ErrCacheRead, err, "failed to read cache version")
	}
	return version, nil
}

// Stats returns cache statistics.
type Stats struct {
	Snapshots    int
	Sources      int
	DatabaseSize int64
}

// GetStats returns statistics about the cache.
func (c *Cache) GetStats() (*Stats, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := &Stats{}
	if err := c.db.QueryRow("SELECT COUNT(*) FROM snapshots").Scan(&stats.Snapshots); err != nil {
		return nil, alerr.Wrap(alerr.ErrCacheRead, err, "failed to count snapshots")
	}
	if err := c.db.QueryRow("SELECT COUNT(*) FROM sources").Scan(&stats.Sources); err != nil {
		return nil, alerr.Wrap(alerr.ErrCacheRead, err, "failed to count sources")
	}
	if fi, err := os.Stat(c.path); err == nil {
		stats.DatabaseSize = fi.Size()
	}
	return stats, nil
}

// -----------------------------------------------------------------------------
// Helper Functions
// -----------------------------------------------------------------------------

// Exists checks if a cache database exists in dir.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, CacheFile))
	return err == nil
}

// Remove deletes the entire cache directory.
func Remove(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return alerr.Wrap(alerr.ErrCacheWrite, err, "failed to remove cache directory").
			With("path", dir)
	}
	return nil
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
