package storage

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	db *sql.DB
}

var ErrSnapshotNotFound = errors.New("snapshot not found")

// fetched_at is stored fixed-width in UTC so that it sorts lexically.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Snapshot is one stored copy of a feed body. Listing queries leave Body nil.
type Snapshot struct {
	ID        int64
	Feed      string
	SourceURL string
	FetchedAt time.Time
	Checksum  string
	Size      int64
	Body      []byte
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ensureSchema() error {
	const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	feed TEXT NOT NULL,
	fetched_at TEXT NOT NULL,
	checksum TEXT NOT NULL,
	size INTEGER NOT NULL CHECK(size >= 0),
	body BLOB NOT NULL,
	UNIQUE(feed, checksum)
);
CREATE INDEX IF NOT EXISTS idx_snapshots_feed_fetched ON snapshots(feed, fetched_at);
`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if err := s.ensureSourceURLColumn(); err != nil {
		return err
	}

	return nil
}

// ensureSourceURLColumn upgrades databases created before snapshots recorded
// the URL they were fetched from.
func (s *SQLiteStore) ensureSourceURLColumn() error {
	rows, err := s.db.Query(`PRAGMA table_info(snapshots);`)
	if err != nil {
		return fmt.Errorf("query table info: %w", err)
	}
	defer rows.Close()

	hasSourceURL := false
	for rows.Next() {
		var (
			cid       int
			name      string
			colType   string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return fmt.Errorf("scan table info: %w", err)
		}
		if strings.EqualFold(name, "source_url") {
			hasSourceURL = true
			break
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate table info: %w", err)
	}

	if hasSourceURL {
		return nil
	}

	if _, err := s.db.Exec(`ALTER TABLE snapshots ADD COLUMN source_url TEXT NOT NULL DEFAULT '';`); err != nil {
		return fmt.Errorf("add source_url column: %w", err)
	}

	return nil
}

// Checksum returns the hex SHA-256 of body, the key used to dedupe snapshots.
func Checksum(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// SaveSnapshot stores body for feed. The second return value is false when an
// identical body was already stored; its fetched_at is then refreshed instead.
func (s *SQLiteStore) SaveSnapshot(feed, sourceURL string, body []byte, fetchedAt time.Time) (bool, error) {
	feed = strings.TrimSpace(feed)
	if feed == "" {
		return false, fmt.Errorf("feed name is required")
	}
	checksum := Checksum(body)
	fetchedRaw := fetchedAt.UTC().Format(timestampLayout)

	tx, err := s.db.Begin()
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}

	res, err := tx.Exec(
		`UPDATE snapshots SET fetched_at = ?, source_url = ? WHERE feed = ? AND checksum = ?;`,
		fetchedRaw, sourceURL, feed, checksum,
	)
	if err != nil {
		_ = tx.Rollback()
		return false, fmt.Errorf("refresh snapshot %s: %w", feed, err)
	}
	if rowsAffected, err := res.RowsAffected(); err == nil && rowsAffected > 0 {
		if err := tx.Commit(); err != nil {
			return false, fmt.Errorf("commit transaction: %w", err)
		}
		return false, nil
	}

	const insertStmt = `
INSERT OR IGNORE INTO snapshots (
	feed,
	source_url,
	fetched_at,
	checksum,
	size,
	body
) VALUES (?, ?, ?, ?, ?, ?);`

	res, err = tx.Exec(insertStmt, feed, sourceURL, fetchedRaw, checksum, len(body), body)
	if err != nil {
		_ = tx.Rollback()
		return false, fmt.Errorf("insert snapshot %s: %w", feed, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return false, fmt.Errorf("read inserted row count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit transaction: %w", err)
	}
	return rowsAffected > 0, nil
}

// LatestSnapshot returns the most recently fetched snapshot of feed, body included.
func (s *SQLiteStore) LatestSnapshot(feed string) (Snapshot, bool, error) {
	const query = `
SELECT id, feed, source_url, fetched_at, checksum, size, body
FROM snapshots
WHERE feed = ?
ORDER BY fetched_at DESC, id DESC
LIMIT 1;
`
	snapshot, err := scanSnapshot(s.db.QueryRow(query, feed), true)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Snapshot{}, false, nil
		}
		return Snapshot{}, false, fmt.Errorf("query latest snapshot %s: %w", feed, err)
	}
	return snapshot, true, nil
}

// GetSnapshot returns one snapshot by ID, body included.
func (s *SQLiteStore) GetSnapshot(id int64) (Snapshot, error) {
	if id <= 0 {
		return Snapshot{}, fmt.Errorf("snapshot id must be > 0")
	}

	const query = `
SELECT id, feed, source_url, fetched_at, checksum, size, body
FROM snapshots
WHERE id = ?;
`
	snapshot, err := scanSnapshot(s.db.QueryRow(query, id), true)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Snapshot{}, ErrSnapshotNotFound
		}
		return Snapshot{}, fmt.Errorf("query snapshot %d: %w", id, err)
	}
	return snapshot, nil
}

// ListSnapshots returns snapshot metadata, newest first. An empty feed lists
// every feed.
func (s *SQLiteStore) ListSnapshots(feed string) ([]Snapshot, error) {
	const query = `
SELECT id, feed, source_url, fetched_at, checksum, size
FROM snapshots
WHERE (? = '' OR feed = ?)
ORDER BY feed, fetched_at DESC, id DESC;
`

	rows, err := s.db.Query(query, feed, feed)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := make([]Snapshot, 0, 16)
	for rows.Next() {
		snapshot, err := scanSnapshot(rows, false)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snapshots = append(snapshots, snapshot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}

	return snapshots, nil
}

// PruneSnapshots keeps the newest keep snapshots of feed and deletes the rest.
func (s *SQLiteStore) PruneSnapshots(feed string, keep int) (int64, error) {
	if keep < 1 {
		return 0, fmt.Errorf("keep must be >= 1, got %d", keep)
	}

	const deleteStmt = `
DELETE FROM snapshots
WHERE feed = ?
	AND id NOT IN (
		SELECT id FROM snapshots
		WHERE feed = ?
		ORDER BY fetched_at DESC, id DESC
		LIMIT ?
	);`

	res, err := s.db.Exec(deleteStmt, feed, feed, keep)
	if err != nil {
		return 0, fmt.Errorf("prune snapshots %s: %w", feed, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("read deleted row count: %w", err)
	}
	return rows, nil
}

// DeleteSnapshot removes the snapshot with the given ID.
func (s *SQLiteStore) DeleteSnapshot(id int64) error {
	if id <= 0 {
		return fmt.Errorf("snapshot id must be > 0")
	}

	res, err := s.db.Exec(`DELETE FROM snapshots WHERE id = ?;`, id)
	if err != nil {
		return fmt.Errorf("delete snapshot %d: %w", id, err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read deleted row count: %w", err)
	}
	if rowsAffected == 0 {
		return ErrSnapshotNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row rowScanner, withBody bool) (Snapshot, error) {
	var (
		snapshot   Snapshot
		fetchedRaw string
	)

	dest := []any{
		&snapshot.ID,
		&snapshot.Feed,
		&snapshot.SourceURL,
		&fetchedRaw,
		&snapshot.Checksum,
		&snapshot.Size,
	}
	if withBody {
		dest = append(dest, &snapshot.Body)
	}
	if err := row.Scan(dest...); err != nil {
		return Snapshot{}, err
	}

	fetchedAt, err := time.Parse(timestampLayout, fetchedRaw)
	if err != nil {
		return Snapshot{}, fmt.Errorf("parse fetched_at %q: %w", fetchedRaw, err)
	}
	snapshot.FetchedAt = fetchedAt
	return snapshot, nil
}
