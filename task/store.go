package task

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// TableName is the table holding tasks.
const TableName = "tasks"

const schema = `
CREATE TABLE IF NOT EXISTS tasks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	description TEXT,
	category TEXT NOT NULL,
	priority INTEGER NOT NULL DEFAULT 3 CHECK (priority BETWEEN 1 AND 5),
	due_date TEXT,
	completed INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL,
	completed_at TEXT
);
`

const selectColumns = "id, title, description, category, priority, due_date, completed, created_at, completed_at"

// timeLayout is how timestamps are written to the database.
const timeLayout = time.RFC3339Nano

// Store provides access to the task table of one SQLite database.
type Store struct {
	db    *sql.DB
	path  string
	now   func() time.Time
	rules []CategoryRule
}

// OpenOptions configures how the store is opened.
type OpenOptions struct {
	// Now returns the current time. If nil, time.Now is used.
	Now func() time.Time

	// CategoryRules is the keyword table used for inference and validation.
	// If empty, DefaultCategoryRules is used.
	CategoryRules []CategoryRule
}

// Open opens the task database at path, creating the file, its parent
// directories and the tasks table as needed.
func Open(path string, opts OpenOptions) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("%w: database path is required", ErrStorage)
	}
	if err := ValidateCategoryRules(opts.CategoryRules); err != nil {
		return nil, err
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, storageError("create database directory", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, storageError("open database", err)
	}
	// One connection keeps every call serialized and lets :memory: work.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, storageError("migrate", err)
	}

	if opts.Now == nil {
		opts.Now = time.Now
	}
	rules := opts.CategoryRules
	if len(rules) == 0 {
		rules = DefaultCategoryRules
	}

	return &Store{
		db:    db,
		path:  path,
		now:   opts.Now,
		rules: rules,
	}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database path the store was opened with.
func (s *Store) Path() string {
	return s.path
}

// CategoryRules returns the keyword table the store was opened with.
func (s *Store) CategoryRules() []CategoryRule {
	return s.rules
}

// Now returns the store clock's current time.
func (s *Store) Now() time.Time {
	return s.now().Round(0)
}

// withTx runs fn in a transaction, committing only when fn returns nil.
func (s *Store) withTx(op string, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return storageError(op+": begin", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, storageError(op+": rollback", rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return storageError(op+": commit", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (Task, error) {
	var (
		t           Task
		description sql.NullString
		dueDate     sql.NullString
		createdAt   string
		completedAt sql.NullString
	)
	if err := row.Scan(&t.ID, &t.Title, &description, &t.Category, &t.Priority, &dueDate, &t.Completed, &createdAt, &completedAt); err != nil {
		return Task{}, err
	}
	t.Description = description.String

	var err error
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return Task{}, fmt.Errorf("task %d created_at: %w", t.ID, err)
	}
	if t.DueDate, err = parseNullTime(dueDate); err != nil {
		return Task{}, fmt.Errorf("task %d due_date: %w", t.ID, err)
	}
	if t.CompletedAt, err = parseNullTime(completedAt); err != nil {
		return Task{}, fmt.Errorf("task %d completed_at: %w", t.ID, err)
	}
	return t, nil
}

func getTask(q interface {
	QueryRow(query string, args ...any) *sql.Row
}, id int64) (*Task, error) {
	row := q.QueryRow("SELECT "+selectColumns+" FROM tasks WHERE id = ?", id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, storageError("read task", err)
	}
	return &t, nil
}

func (s *Store) readTasks() ([]Task, error) {
	rows, err := s.db.Query("SELECT " + selectColumns + " FROM tasks ORDER BY id")
	if err != nil {
		return nil, storageError("read tasks", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, storageError("read tasks", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("read tasks", err)
	}
	return tasks, nil
}

func formatTime(t time.Time) string {
	return t.Format(timeLayout)
}

func formatNullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func nullString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTime(value string) (time.Time, error) {
	return time.Parse(timeLayout, value)
}

func parseNullTime(value sql.NullString) (*time.Time, error) {
	if !value.Valid || value.String == "" {
		return nil, nil
	}
	t, err := parseTime(value.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
