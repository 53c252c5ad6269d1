// Package feedcache persists a parsed feed to a local SQLite file,
// keyed by the source zip's content hash, so `serve` startup can skip
// re-parsing an unchanged feed (spec §4.9). The open/migrate shape
// mirrors a write-once/read-once snapshot store rather than a live
// query backend.
package feedcache

import (
	"bytes"
	"crypto/sha256"
	"database/sql"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"

	_ "github.com/mattn/go-sqlite3"

	"isochrone/internal/model"
)

// Cache wraps a SQLite database holding feed snapshot blobs.
type Cache struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open creates or opens the snapshot database at path and ensures its
// schema exists.
func Open(path string, logger *slog.Logger) (*Cache, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("feedcache: open %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("feedcache: ping %s: %w", path, err)
	}

	const schema = `CREATE TABLE IF NOT EXISTS snapshots (
		hash TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		created_at INTEGER NOT NULL DEFAULT (strftime('%s','now'))
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("feedcache: create schema: %w", err)
	}

	logger.Info("feed cache opened", "path", path)
	return &Cache{db: db, logger: logger}, nil
}

// Close releases the underlying database handle.
func (c *Cache) Close() error {
	return c.db.Close()
}

// HashFile returns the hex-encoded SHA-256 content hash of the file at
// path, used as the snapshot lookup key.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("feedcache: hash %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("feedcache: hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Load returns the feed snapshot for hash, and whether one was found.
func (c *Cache) Load(hash string) (*model.Feed, bool, error) {
	var data []byte
	err := c.db.QueryRow(`SELECT data FROM snapshots WHERE hash = ?`, hash).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("feedcache: load %s: %w", hash, err)
	}

	var feed model.Feed
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&feed); err != nil {
		return nil, false, fmt.Errorf("feedcache: decode snapshot %s: %w", hash, err)
	}
	return &feed, true, nil
}

// Store writes feed as the snapshot for hash, replacing any existing
// entry for that key.
func (c *Cache) Store(hash string, feed *model.Feed) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(feed); err != nil {
		return fmt.Errorf("feedcache: encode snapshot %s: %w", hash, err)
	}

	_, err := c.db.Exec(
		`INSERT INTO snapshots (hash, data) VALUES (?, ?)
		 ON CONFLICT(hash) DO UPDATE SET data = excluded.data, created_at = strftime('%s','now')`,
		hash, buf.Bytes(),
	)
	if err != nil {
		return fmt.Errorf("feedcache: store snapshot %s: %w", hash, err)
	}

	c.logger.Info("feed snapshot written", "hash", hash, "bytes", buf.Len())
	return nil
}
