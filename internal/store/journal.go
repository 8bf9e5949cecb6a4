// Package store keeps a local SQLite journal of mutation outcomes.
package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/theirongolddev/yeargoals/internal/engine"

	_ "modernc.org/sqlite" // register sqlite driver
)

//go:embed migrations/*.sql
var migrations embed.FS

// goose keeps its FS and dialect in package globals.
var migrateMu sync.Mutex

// Journal records every committed or rolled-back mutation.
type Journal struct {
	db *sql.DB
}

var _ engine.Recorder = (*Journal)(nil)

// Entry is one journal row.
type Entry struct {
	ID int64
	engine.Outcome
}

// Open opens or creates the journal database at the given path.
func Open(dbPath string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		return nil, fmt.Errorf("creating journal dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening journal db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Journal{db: db}, nil
}

func migrate(db *sql.DB) error {
	migrateMu.Lock()
	defer migrateMu.Unlock()

	goose.SetLogger(log.New(io.Discard, "", 0))
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting migration dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// Close closes the journal database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Record appends one outcome.
func (j *Journal) Record(ctx context.Context, o engine.Outcome) error {
	at := o.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO outcomes (op, goal_id, entity_id, status, error, at) VALUES (?, ?, ?, ?, ?, ?)`,
		string(o.Op), o.GoalID, o.EntityID, string(o.Status), o.Error, at.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("recording outcome: %w", err)
	}
	return nil
}

// Recent returns up to n entries, newest first. n <= 0 returns everything.
func (j *Journal) Recent(ctx context.Context, n int) ([]Entry, error) {
	q := `SELECT id, op, goal_id, entity_id, status, error, at FROM outcomes ORDER BY id DESC`
	args := []any{}
	if n > 0 {
		q += ` LIMIT ?`
		args = append(args, n)
	}

	rows, err := j.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying journal: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Entry
	for rows.Next() {
		var (
			e              Entry
			op, status, at string
		)
		if err := rows.Scan(&e.ID, &op, &e.GoalID, &e.EntityID, &status, &e.Error, &at); err != nil {
			return nil, err
		}
		e.Op = engine.Op(op)
		e.Status = engine.OutcomeStatus(status)
		e.At, _ = time.Parse(time.RFC3339Nano, at)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Counts returns the number of entries per status.
func (j *Journal) Counts(ctx context.Context) (map[engine.OutcomeStatus]int, error) {
	rows, err := j.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM outcomes GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("counting journal: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[engine.OutcomeStatus]int)
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[engine.OutcomeStatus(status)] = n
	}
	return out, rows.Err()
}

// Prune deletes entries older than before and reports how many went.
func (j *Journal) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := j.db.ExecContext(ctx, `DELETE FROM outcomes WHERE at < ?`, before.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("pruning journal: %w", err)
	}
	return res.RowsAffected()
}
