package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// DiskCache is a persistent URL-to-body fetch cache backed by SQLite.
// It exists for short-lived CLI invocations, which would otherwise
// re-download the whole remote tree on every run. Entries are never
// evicted; the catalog is small and bounded, so this is a documented
// scaling limit rather than a problem in practice.
type DiskCache struct {
	db *sql.DB
}

// OpenDiskCache opens (creating if needed) the cache database at path.
func OpenDiskCache(path string) (*DiskCache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open fetch cache %s: %w", path, err)
	}
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS fetches (
			url        TEXT PRIMARY KEY,
			body       BLOB NOT NULL,
			fetched_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create fetch table: %w", err)
	}
	return &DiskCache{db: db}, nil
}

// Get returns the cached body for url, or ok=false when absent.
func (c *DiskCache) Get(url string) (body string, ok bool, err error) {
	var b []byte
	err = c.db.QueryRow(`SELECT body FROM fetches WHERE url = ?`, url).Scan(&b)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read fetch cache: %w", err)
	}
	return string(b), true, nil
}

// Put stores body for url, replacing any previous entry.
func (c *DiskCache) Put(url, body string) error {
	_, err := c.db.Exec(
		`INSERT OR REPLACE INTO fetches (url, body, fetched_at) VALUES (?, ?, ?)`,
		url, []byte(body), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("write fetch cache: %w", err)
	}
	return nil
}

func (c *DiskCache) Close() error { return c.db.Close() }
