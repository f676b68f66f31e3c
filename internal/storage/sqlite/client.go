package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/sanctuary-network/backend/internal/apperrors"
	"github.com/sanctuary-network/backend/pkg/logger"
)

type Client struct {
	db *sql.DB
}

func NewClient(dbPath string) (*Client, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	_, err = db.Exec("PRAGMA journal_mode = WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

// NewClientFromDB wraps an existing handle; used by tests with sqlmock.
func NewClientFromDB(db *sql.DB) *Client {
	return &Client{db: db}
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS startups (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		founder_name TEXT NOT NULL,
		email TEXT UNIQUE NOT NULL,
		stage TEXT NOT NULL DEFAULT 'PRE_SEED',
		team_size INTEGER,
		product_maturity TEXT,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS mentors (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT UNIQUE NOT NULL,
		bio TEXT,
		linkedin_url TEXT,
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_mentors_active ON mentors(is_active);

	CREATE TABLE IF NOT EXISTS bottlenecks (
		id TEXT PRIMARY KEY,
		startup_id TEXT NOT NULL,
		raw_blocker TEXT NOT NULL,
		raw_attempts TEXT NOT NULL,
		raw_success_criteria TEXT NOT NULL,
		structured TEXT,
		status TEXT NOT NULL DEFAULT 'PENDING',
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		FOREIGN KEY (startup_id) REFERENCES startups(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_bottlenecks_startup ON bottlenecks(startup_id);
	CREATE INDEX IF NOT EXISTS idx_bottlenecks_status ON bottlenecks(status);

	CREATE TABLE IF NOT EXISTS experiences (
		id TEXT PRIMARY KEY,
		mentor_id TEXT NOT NULL,
		raw_problem TEXT NOT NULL,
		raw_context TEXT NOT NULL,
		raw_solution TEXT NOT NULL,
		raw_outcomes TEXT NOT NULL,
		year_occurred INTEGER,
		company_stage TEXT,
		structured TEXT,
		created_at INTEGER NOT NULL,
		FOREIGN KEY (mentor_id) REFERENCES mentors(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_experiences_mentor ON experiences(mentor_id);

	CREATE TABLE IF NOT EXISTS matches (
		id TEXT PRIMARY KEY,
		bottleneck_id TEXT NOT NULL,
		experience_id TEXT NOT NULL,
		mentor_id TEXT NOT NULL,
		score REAL NOT NULL,
		confidence TEXT NOT NULL,
		reasoning TEXT NOT NULL,
		explanation TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'PENDING',
		operator_id TEXT,
		operator_notes TEXT,
		intro_sent_at INTEGER,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		UNIQUE(bottleneck_id, experience_id),
		FOREIGN KEY (bottleneck_id) REFERENCES bottlenecks(id) ON DELETE CASCADE,
		FOREIGN KEY (experience_id) REFERENCES experiences(id) ON DELETE CASCADE,
		FOREIGN KEY (mentor_id) REFERENCES mentors(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_matches_bottleneck ON matches(bottleneck_id);
	CREATE INDEX IF NOT EXISTS idx_matches_status ON matches(status);
	CREATE INDEX IF NOT EXISTS idx_matches_score ON matches(score);

	CREATE TABLE IF NOT EXISTS feedback (
		id TEXT PRIMARY KEY,
		match_id TEXT UNIQUE NOT NULL,
		rating TEXT NOT NULL,
		was_relevant INTEGER,
		was_actionable INTEGER,
		would_recommend INTEGER,
		founder_notes TEXT,
		operator_notes TEXT,
		created_at INTEGER NOT NULL,
		FOREIGN KEY (match_id) REFERENCES matches(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_feedback_rating ON feedback(rating);
	CREATE INDEX IF NOT EXISTS idx_feedback_created ON feedback(created_at);
	`

	_, err := c.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("SQLite schema initialized")
	return nil
}

// errNoRowsUpdated marks an UPDATE that matched nothing; translated to
// apperrors.ErrNotFound so callers treat it like a missing row.
var errNoRowsUpdated = sql.ErrNoRows

// isUniqueViolation reports whether err is a sqlite unique-constraint error.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

func translateErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.ErrNotFound
	}
	if isUniqueViolation(err) {
		return apperrors.ErrDuplicate
	}
	return err
}
