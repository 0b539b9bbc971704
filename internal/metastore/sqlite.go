package metastore

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	sqlite_migrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

const (
	defaultMaxConns        = 25
	defaultConnMaxLifetime = 10 * time.Minute
)

// migrationLogger adapts slog.Logger to golang-migrate's Logger interface,
// the same adaptation the teacher's internal/db/migrations.go uses.
type migrationLogger struct {
	log *slog.Logger
}

func (m *migrationLogger) Printf(format string, v ...any) {
	format = strings.TrimRight(format, "\n")
	m.log.Info(fmt.Sprintf(format, v...))
}

func (m *migrationLogger) Verbose() bool { return false }

// Sqlite is a sqlite3-backed Metastore, grounded on the teacher's
// internal/db.SqliteStore: a single *sql.DB opened with the
// mattn/go-sqlite3 driver, schema managed through golang-migrate against
// an embedded migration source rather than the teacher's httpfs-served
// one.
type Sqlite struct {
	db  *sql.DB
	log *slog.Logger
}

// Open creates the database file's parent directory if needed, opens it
// with foreign keys and WAL mode enabled, and migrates it to the latest
// schema version.
func Open(path string, log *slog.Logger) (*Sqlite, error) {
	if log == nil {
		log = slog.Default()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create metastore directory: %w", err)
	}

	dsn := fmt.Sprintf(
		"file:%s?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000", path,
	)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open metastore database: %w", err)
	}
	db.SetMaxOpenConns(defaultMaxConns)
	db.SetMaxIdleConns(defaultMaxConns)
	db.SetConnMaxLifetime(defaultConnMaxLifetime)

	s := &Sqlite{db: db, log: log}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Sqlite) migrate() error {
	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load embedded migrations: %w", err)
	}

	driver, err := sqlite_migrate.WithInstance(s.db, &sqlite_migrate.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	mig, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	mig.Log = &migrationLogger{log: s.log}

	if err := mig.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// Close closes the underlying database handle.
func (s *Sqlite) Close() error {
	return s.db.Close()
}

// CreateIndex registers indexID. Outside the Metastore interface: a
// real index lifecycle (schema, mappings) is out of scope per spec.md §1.
func (s *Sqlite) CreateIndex(ctx context.Context, indexID string) error {
	_, err := s.db.ExecContext(
		ctx, `INSERT OR IGNORE INTO indexes (index_id, uid) VALUES (?, ?)`,
		indexID, uuid.NewString(),
	)
	if err != nil {
		return fmt.Errorf("failed to create index %q: %w", indexID, err)
	}
	return nil
}

func (s *Sqlite) IndexExists(ctx context.Context, indexID string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(
		ctx, `SELECT COUNT(*) FROM indexes WHERE index_id = ?`, indexID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check index %q: %w", indexID, err)
	}
	return count > 0, nil
}

func (s *Sqlite) StageSplit(ctx context.Context, indexID string, split Split) error {
	exists, err := s.IndexExists(ctx, indexID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrIndexDoesNotExist
	}

	if split.SplitID == "" {
		split.SplitID = uuid.NewString()
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO splits (split_id, index_id, num_docs) VALUES (?, ?, ?)`,
		split.SplitID, indexID, split.NumDocs,
	)
	if err != nil {
		return fmt.Errorf("failed to stage split: %w", err)
	}
	return nil
}

func (s *Sqlite) ListSplits(ctx context.Context, indexID string) ([]Split, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT split_id, index_id, num_docs, created_at FROM splits
		 WHERE index_id = ? ORDER BY created_at`, indexID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list splits: %w", err)
	}
	defer rows.Close()

	var out []Split
	for rows.Next() {
		var sp Split
		if err := rows.Scan(
			&sp.SplitID, &sp.IndexID, &sp.NumDocs, &sp.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		out = append(out, sp)
	}
	return out, rows.Err()
}

var _ Metastore = (*Sqlite)(nil)
