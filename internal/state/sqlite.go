package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver (pure Go)
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLite state store instance.
// If logger is nil, a discard logger is used.
func NewSQLiteStore(logger *slog.Logger) *SQLiteStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SQLiteStore{logger: logger}
}

// Open opens a connection to the SQLite database, creating its directory if
// needed. Use ":memory:" for an in-memory database.
func (s *SQLiteStore) Open(path string) error {
	dsn := ":memory:?_pragma=foreign_keys(1)"
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("failed to create state directory: %w", err)
			}
		}
		dsn = fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if path == ":memory:" {
		// Every connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.db = db
	s.path = path
	s.logger.Debug("opened state store", slog.String("path", path))
	return nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RecordPlan stores plan, assigning its ID and timestamp when unset.
func (s *SQLiteStore) RecordPlan(ctx context.Context, plan *Plan) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	if plan.ID == "" {
		plan.ID = uuid.New().String()
	}
	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = time.Now().UTC()
	}
	changes := plan.Changes
	if len(changes) == 0 {
		changes = []byte("[]")
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO plans (id, relation, kind, has_changes, requires_full_refresh, changes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		plan.ID, plan.Relation, plan.Kind, plan.HasChanges, plan.RequiresFullRefresh,
		string(changes), plan.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to record plan for %s: %w", plan.Relation, err)
	}

	s.logger.Debug("recorded plan",
		slog.String("id", plan.ID),
		slog.String("relation", plan.Relation),
		slog.Bool("has_changes", plan.HasChanges))
	return nil
}

// ListPlans returns the plans recorded for a relation, newest first. A
// limit of zero or less returns every plan.
func (s *SQLiteStore) ListPlans(ctx context.Context, relation string, limit int) ([]*Plan, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, relation, kind, has_changes, requires_full_refresh, changes, created_at
		 FROM plans WHERE relation = ? ORDER BY seq DESC LIMIT ?`,
		relation, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var plans []*Plan
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating plans: %w", err)
	}
	return plans, nil
}

// LatestPlan returns the most recent plan for a relation, or ErrPlanNotFound.
func (s *SQLiteStore) LatestPlan(ctx context.Context, relation string) (*Plan, error) {
	plans, err := s.ListPlans(ctx, relation, 1)
	if err != nil {
		return nil, err
	}
	if len(plans) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrPlanNotFound, relation)
	}
	return plans[0], nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlan(row rowScanner) (*Plan, error) {
	plan := &Plan{}
	var changes, createdAt string
	if err := row.Scan(&plan.ID, &plan.Relation, &plan.Kind, &plan.HasChanges,
		&plan.RequiresFullRefresh, &changes, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("failed to scan plan: %w", err)
	}

	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse plan timestamp %q: %w", createdAt, err)
	}
	plan.CreatedAt = ts
	plan.Changes = []byte(changes)
	return plan, nil
}
