package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"uglgen/internal"
)

// MetaCatalogVersion holds the version of the catalog the cache was last used with.
const MetaCatalogVersion = "catalog_version"

// DB caches resolved order text. Rows are only valid for the catalog version
// they were resolved against.
type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}
	if _, err := conn.Exec(`PRAGMA busy_timeout = 5000;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS resolutions (
  cacheKey TEXT PRIMARY KEY,
  catalogVersion TEXT NOT NULL,
  inputText TEXT NOT NULL,
  itemsJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_resolutions_catalogVersion ON resolutions(catalogVersion);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

func (d *DB) GetResolution(key string) ([]internal.ResolvedLineItem, bool, error) {
	var raw string
	err := d.conn.QueryRow(`SELECT itemsJson FROM resolutions WHERE cacheKey = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var items []internal.ResolvedLineItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, false, fmt.Errorf("decode cached items %s: %w", key, err)
	}
	return items, true, nil
}

func (d *DB) PutResolution(key, catalogVersion, input string, items []internal.ResolvedLineItem) error {
	blob, err := json.Marshal(items)
	if err != nil {
		return err
	}
	_, err = d.conn.Exec(`
INSERT INTO resolutions (cacheKey, catalogVersion, inputText, itemsJson) VALUES (?, ?, ?, ?)
ON CONFLICT(cacheKey) DO UPDATE SET
  catalogVersion = excluded.catalogVersion,
  inputText = excluded.inputText,
  itemsJson = excluded.itemsJson,
  createdAt = CURRENT_TIMESTAMP
`, key, catalogVersion, input, string(blob))
	return err
}

// PruneResolutions deletes every row resolved against another catalog version.
func (d *DB) PruneResolutions(keepVersion string) (int64, error) {
	res, err := d.conn.Exec(`DELETE FROM resolutions WHERE catalogVersion <> ?`, keepVersion)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (d *DB) CountResolutions() (int, error) {
	var n int
	err := d.conn.QueryRow(`SELECT COUNT(*) FROM resolutions`).Scan(&n)
	return n, err
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}

// SyncCatalogVersion records version and drops cache rows of any earlier
// catalog. It reports how many rows were removed.
func (d *DB) SyncCatalogVersion(version string) (int64, error) {
	prev, err := d.GetMetadata(MetaCatalogVersion)
	if err != nil {
		return 0, err
	}
	var pruned int64
	if prev == nil || *prev != version {
		if pruned, err = d.PruneResolutions(version); err != nil {
			return 0, err
		}
	}
	return pruned, d.SetMetadata(MetaCatalogVersion, version)
}
