// Package persistence provides SQLite-based storage for the canonical
// economy state. Only the authority peer writes; replicas never touch it.
package persistence

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/agora/internal/econ"
	"github.com/talgya/agora/internal/protocol"
)

// DB wraps a SQLite connection for economy state persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS economy_items (
		model_key TEXT NOT NULL,
		item_id TEXT NOT NULL,
		category INTEGER NOT NULL,
		supply INTEGER NOT NULL,
		daily_delta INTEGER NOT NULL,
		PRIMARY KEY (model_key, item_id)
	);

	CREATE TABLE IF NOT EXISTS economy_meta (
		model_key TEXT PRIMARY KEY,
		day INTEGER NOT NULL,
		version INTEGER NOT NULL,
		saved_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS economy_archive (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		model_key TEXT NOT NULL,
		version INTEGER NOT NULL,
		day INTEGER NOT NULL,
		payload BLOB NOT NULL,
		saved_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_archive_key ON economy_archive(model_key, version);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveState writes the full economy state under the model key, replacing
// whatever was stored there.
func (db *DB) SaveState(key string, state *econ.EconomyState) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM economy_items WHERE model_key = ?", key); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO economy_items
		(model_key, item_id, category, supply, daily_delta)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for category, bucket := range state.Ledger {
		for _, rec := range bucket {
			if _, err := stmt.Exec(key, rec.ID, category, rec.Supply, rec.DailyDelta); err != nil {
				return fmt.Errorf("insert item %s: %w", rec.ID, err)
			}
		}
	}

	_, err = tx.Exec(`INSERT OR REPLACE INTO economy_meta (model_key, day, version, saved_at)
		VALUES (?, ?, ?, ?)`,
		key, state.Day, state.Version, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save meta: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Debug("economy state saved", "key", key, "items", state.Ledger.Count(), "version", state.Version)
	return nil
}

type itemRow struct {
	ItemID     string `db:"item_id"`
	Category   int    `db:"category"`
	Supply     int    `db:"supply"`
	DailyDelta int    `db:"daily_delta"`
}

// LoadState reads the state stored under the model key. Returns (nil, nil)
// when nothing was persisted.
func (db *DB) LoadState(key string) (*econ.EconomyState, error) {
	var meta struct {
		Day     int    `db:"day"`
		Version uint64 `db:"version"`
	}
	err := db.conn.Get(&meta, "SELECT day, version FROM economy_meta WHERE model_key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load meta: %w", err)
	}

	var rows []itemRow
	if err := db.conn.Select(&rows,
		"SELECT item_id, category, supply, daily_delta FROM economy_items WHERE model_key = ?",
		key); err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}

	state := econ.NewState(make(econ.AliasMap))
	for _, row := range rows {
		state.Ledger.Put(row.Category, &econ.ItemRecord{
			ID:         row.ItemID,
			Supply:     row.Supply,
			DailyDelta: row.DailyDelta,
		})
	}
	state.Day = meta.Day
	state.Version = meta.Version
	state.Reindex()
	return state, nil
}

// Archive appends a compressed snapshot of the state for history. Archive
// rows are never read back by the engine; they exist for operators.
func (db *DB) Archive(key string, state *econ.EconomyState) error {
	snap, err := protocol.EncodeSnapshot(state)
	if err != nil {
		return fmt.Errorf("encode archive snapshot: %w", err)
	}
	_, err = db.conn.Exec(`INSERT INTO economy_archive (model_key, version, day, payload, saved_at)
		VALUES (?, ?, ?, ?, ?)`,
		key, snap.Version, snap.Day, snap.Payload, time.Now().UTC().Format(time.RFC3339))
	return err
}

// ArchiveCount returns how many archived snapshots exist for a model key.
func (db *DB) ArchiveCount(key string) (int, error) {
	var n int
	err := db.conn.Get(&n, "SELECT COUNT(*) FROM economy_archive WHERE model_key = ?", key)
	return n, err
}
