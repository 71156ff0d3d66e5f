// Package store keeps the history of full scans in a local SQLite database so
// health can be tracked over time.
package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	_ "modernc.org/sqlite"

	"repodoctor/internal/schemas"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// gooseMu serializes migrations; goose keeps its base FS and dialect in globals.
var gooseMu sync.Mutex

// ErrNoHistory is returned by Latest when nothing has been recorded.
var ErrNoHistory = errors.New("no scans recorded")

// Entry is one recorded scan.
type Entry struct {
	ID            int64           `json:"id"`
	ScanID        string          `json:"scan_id"`
	CreatedAt     time.Time       `json:"created_at"`
	Score         int             `json:"score"`
	Grade         string          `json:"grade"`
	ModulesOK     int             `json:"modules_ok"`
	ModulesFailed int             `json:"modules_failed"`
	Payload       json.RawMessage `json:"payload,omitempty"`
}

// Result decodes the stored scan.
func (e *Entry) Result() (*schemas.ScanResult, error) {
	var r schemas.ScanResult
	if err := json.Unmarshal(e.Payload, &r); err != nil {
		return nil, fmt.Errorf("failed to decode scan %s: %w", e.ScanID, err)
	}
	return &r, nil
}

// Store is the scan history database.
type Store struct {
	db   *sql.DB
	path string
	log  *zap.Logger
	now  func() time.Time
}

// Open opens (creating if needed) the history database at path and applies
// pending migrations.
func Open(path string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		log.Debug("Failed to set sqlite busy_timeout", zap.Error(err))
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		log.Debug("Failed to set sqlite journal_mode=WAL", zap.Error(err))
	}

	sub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open migrations: %w", err)
	}
	if err := migrateFS(db, sub, log); err != nil {
		db.Close()
		return nil, err
	}

	log.Debug("History database ready", zap.String("path", path))
	return &Store{db: db, path: path, log: log, now: time.Now}, nil
}

func migrateFS(db *sql.DB, migrations fs.FS, log *zap.Logger) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations)
	defer func() {
		goose.SetBaseFS(nil)
	}()
	goose.SetLogger(gooseLogger{log.Sugar()})

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// gooseLogger routes goose output to zap at debug level.
type gooseLogger struct {
	s *zap.SugaredLogger
}

func (g gooseLogger) Printf(format string, v ...interface{}) { g.s.Debugf(format, v...) }
func (g gooseLogger) Fatalf(format string, v ...interface{}) { g.s.Errorf(format, v...) }

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Close closes the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record stores a finished scan and returns its entry. A scan without an id
// is given one.
func (s *Store) Record(ctx context.Context, result *schemas.ScanResult) (*Entry, error) {
	if result == nil {
		return nil, errors.New("nil scan result")
	}
	if result.ScanID == "" {
		result.ScanID = uuid.NewString()
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to encode scan: %w", err)
	}

	created := s.now()
	if result.FinishedAt != nil {
		created = *result.FinishedAt
	}
	ok, failed := result.Counts()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO scans (scan_id, created_at, score, grade, modules_ok, modules_failed, payload)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		result.ScanID,
		created.UTC().Format(time.RFC3339Nano),
		result.HealthScore.OverallScore,
		result.HealthScore.Grade,
		ok, failed,
		string(payload),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to record scan: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read scan id: %w", err)
	}

	s.log.Info("Scan recorded",
		zap.Int64("id", id),
		zap.String("scan_id", result.ScanID),
		zap.Int("score", result.HealthScore.OverallScore))

	return &Entry{
		ID:            id,
		ScanID:        result.ScanID,
		CreatedAt:     created.UTC(),
		Score:         result.HealthScore.OverallScore,
		Grade:         result.HealthScore.Grade,
		ModulesOK:     ok,
		ModulesFailed: failed,
		Payload:       payload,
	}, nil
}

const selectEntries = `SELECT id, scan_id, created_at, score, grade, modules_ok, modules_failed, payload FROM scans`

// List returns recorded scans, newest first. A limit of 0 or less returns all.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	query := selectEntries + ` ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list scans: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list scans: %w", err)
	}
	return entries, nil
}

// Latest returns the most recent scan, or ErrNoHistory.
func (s *Store) Latest(ctx context.Context) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, selectEntries+` ORDER BY id DESC LIMIT 1`)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoHistory
	}
	return e, err
}

// Prune deletes all but the newest keep scans and returns how many were
// removed. keep of 0 or less disables pruning.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep <= 0 {
		return 0, nil
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM scans WHERE id NOT IN (SELECT id FROM scans ORDER BY id DESC LIMIT ?)`, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune scans: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to prune scans: %w", err)
	}
	if n > 0 {
		s.log.Debug("Pruned scan history", zap.Int64("removed", n), zap.Int("keep", keep))
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(r rowScanner) (*Entry, error) {
	var (
		e       Entry
		created string
		payload string
	)
	if err := r.Scan(&e.ID, &e.ScanID, &created, &e.Score, &e.Grade, &e.ModulesOK, &e.ModulesFailed, &payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to read scan row: %w", err)
	}
	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return nil, fmt.Errorf("invalid created_at %q: %w", created, err)
	}
	e.CreatedAt = t
	e.Payload = json.RawMessage(payload)
	return &e, nil
}
