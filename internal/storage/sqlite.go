package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	// SQLite driver, registered as "sqlite3".
	_ "github.com/mattn/go-sqlite3"

	"github.com/dandori/dandori/internal/task"
)

// SQLite persists the node table in a local SQLite database: one row per
// task plus a task_edges table holding the parent -> child relation. Save
// replaces the full table inside a single transaction, matching the
// whole-generation semantics of the Load/Save contract.
type SQLite struct {
	path string
}

// NewSQLite creates a SQLite backend for the given database path. The
// database and its schema are created on first use.
func NewSQLite(path string) *SQLite {
	return &SQLite{path: path}
}

// schemaVersion is stored in SQLite's user_version pragma. Increment on
// any schema change; a mismatch fails Load rather than guessing.
const schemaVersion = 1

// sqliteBusyTimeout is how long SQLite waits on a locked database before
// returning SQLITE_BUSY, in milliseconds.
const sqliteBusyTimeout = 10000

const schemaSQL = `
CREATE TABLE IF NOT EXISTS tasks (
	id             TEXT PRIMARY KEY,
	owner          TEXT NOT NULL DEFAULT '',
	title          TEXT NOT NULL,
	description    TEXT NOT NULL DEFAULT '',
	created_at     TEXT NOT NULL,
	updated_at     TEXT NOT NULL,
	start_at       TEXT,
	due_date       TEXT,
	done_at        TEXT,
	priority       INTEGER,
	status         TEXT NOT NULL,
	is_archived    INTEGER NOT NULL DEFAULT 0,
	assigned_to    TEXT NOT NULL DEFAULT '',
	requested_by   TEXT NOT NULL DEFAULT '',
	requested_at   TEXT,
	requested_note TEXT NOT NULL DEFAULT '',
	tags           TEXT NOT NULL DEFAULT '[]',
	metadata       TEXT NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS task_edges (
	parent_id TEXT NOT NULL,
	child_id  TEXT NOT NULL,
	UNIQUE (parent_id, child_id)
);
`

// open opens the database, applies pragmas, and ensures the schema.
func (s *SQLite) open(ctx context.Context) (*sql.DB, error) {
	err := os.MkdirAll(filepath.Dir(s.path), 0o750)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db, err := sql.Open("sqlite3", s.path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	err = db.PingContext(ctx)
	if err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	_, err = db.ExecContext(ctx, fmt.Sprintf(
		"PRAGMA busy_timeout = %d; PRAGMA journal_mode = WAL; PRAGMA foreign_keys = ON;",
		sqliteBusyTimeout,
	))
	if err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("sqlite pragmas: %w", err)
	}

	var version int

	err = db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version)
	if err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("sqlite user_version: %w", err)
	}

	switch version {
	case 0:
		_, err = db.ExecContext(ctx, schemaSQL)
		if err == nil {
			_, err = db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", schemaVersion))
		}

		if err != nil {
			_ = db.Close()

			return nil, fmt.Errorf("sqlite schema: %w", err)
		}
	case schemaVersion:
		// Current schema.
	default:
		_ = db.Close()

		return nil, fmt.Errorf("sqlite schema version %d, want %d: %s", version, schemaVersion, s.path)
	}

	return db, nil
}

// Load reads the full node table and reconstructs both edge lists from
// task_edges in insertion order.
func (s *SQLite) Load() (map[string]*task.Task, error) {
	ctx := context.Background()

	db, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()

	tasks, err := loadTasks(ctx, db)
	if err != nil {
		return nil, err
	}

	err = loadEdges(ctx, db, tasks)
	if err != nil {
		return nil, err
	}

	return tasks, nil
}

// Save replaces the persisted table with the given generation in one
// transaction. Tasks are written in ID order and each task's children in
// list order, so children lists round-trip exactly; depends_on lists come
// back in edge insertion order, which preserves symmetry.
func (s *SQLite) Save(tasks map[string]*task.Task) error {
	ctx := context.Background()

	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save sqlite: begin: %w", err)
	}

	err = saveInTx(ctx, tx, tasks)
	if err != nil {
		_ = tx.Rollback()

		return fmt.Errorf("save sqlite: %w", err)
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("save sqlite: commit: %w", err)
	}

	return nil
}

func saveInTx(ctx context.Context, tx *sql.Tx, tasks map[string]*task.Task) error {
	for _, stmt := range []string{"DELETE FROM task_edges", "DELETE FROM tasks"} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	ids := make([]string, 0, len(tasks))
	for id := range tasks {
		ids = append(ids, id)
	}

	slices.Sort(ids)

	for _, id := range ids {
		if err := insertTask(ctx, tx, tasks[id]); err != nil {
			return err
		}
	}

	for _, id := range ids {
		for _, childID := range tasks[id].Children {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO task_edges (parent_id, child_id) VALUES (?, ?)", id, childID)
			if err != nil {
				return err
			}
		}
	}

	return nil
}

func insertTask(ctx context.Context, tx *sql.Tx, t *task.Task) error {
	tags, err := json.Marshal(orEmptySlice(t.Tags))
	if err != nil {
		return fmt.Errorf("marshal tags for %s: %w", t.ID, err)
	}

	meta, err := json.Marshal(orEmptyMap(t.Metadata))
	if err != nil {
		return fmt.Errorf("marshal metadata for %s: %w", t.ID, err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO tasks (
			id, owner, title, description, created_at, updated_at,
			start_at, due_date, done_at, priority, status, is_archived,
			assigned_to, requested_by, requested_at, requested_note, tags, metadata
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Owner, t.Title, t.Description,
		t.CreatedAt.Format(task.Stamp), t.UpdatedAt.Format(task.Stamp),
		stampOrNil(t.StartAt), stampOrNil(t.DueDate), stampOrNil(t.DoneAt),
		intOrNil(t.Priority), string(t.Status), t.IsArchived,
		t.AssignedTo, t.RequestedBy, stampOrNil(t.RequestedAt), t.RequestedNote,
		string(tags), string(meta),
	)

	return err
}

func loadTasks(ctx context.Context, db *sql.DB) (map[string]*task.Task, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, owner, title, description, created_at, updated_at,
			start_at, due_date, done_at, priority, status, is_archived,
			assigned_to, requested_by, requested_at, requested_note, tags, metadata
		FROM tasks`)
	if err != nil {
		return nil, fmt.Errorf("load sqlite: %w", err)
	}
	defer func() { _ = rows.Close() }()

	tasks := map[string]*task.Task{}

	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("load sqlite: %w", err)
		}

		tasks[t.ID] = t
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load sqlite: %w", err)
	}

	return tasks, nil
}

func scanTask(rows *sql.Rows) (*task.Task, error) {
	var t task.Task

	var createdAt, updatedAt, status, tags, meta string

	var startAt, dueDate, doneAt, reqAt sql.NullString

	var priority sql.NullInt64

	err := rows.Scan(
		&t.ID, &t.Owner, &t.Title, &t.Description, &createdAt, &updatedAt,
		&startAt, &dueDate, &doneAt, &priority, &status, &t.IsArchived,
		&t.AssignedTo, &t.RequestedBy, &reqAt, &t.RequestedNote, &tags, &meta,
	)
	if err != nil {
		return nil, err
	}

	t.Status = task.Status(status)
	t.DependsOn = []string{}
	t.Children = []string{}

	if t.CreatedAt, err = time.Parse(task.Stamp, createdAt); err != nil {
		return nil, fmt.Errorf("task %s: created_at: %w", t.ID, err)
	}

	if t.UpdatedAt, err = time.Parse(task.Stamp, updatedAt); err != nil {
		return nil, fmt.Errorf("task %s: updated_at: %w", t.ID, err)
	}

	if t.StartAt, err = parseStampOrNil(startAt); err != nil {
		return nil, fmt.Errorf("task %s: start_at: %w", t.ID, err)
	}

	if t.DueDate, err = parseStampOrNil(dueDate); err != nil {
		return nil, fmt.Errorf("task %s: due_date: %w", t.ID, err)
	}

	if t.DoneAt, err = parseStampOrNil(doneAt); err != nil {
		return nil, fmt.Errorf("task %s: done_at: %w", t.ID, err)
	}

	if t.RequestedAt, err = parseStampOrNil(reqAt); err != nil {
		return nil, fmt.Errorf("task %s: requested_at: %w", t.ID, err)
	}

	if priority.Valid {
		p := int(priority.Int64)
		t.Priority = &p
	}

	if err := json.Unmarshal([]byte(tags), &t.Tags); err != nil {
		return nil, fmt.Errorf("task %s: tags: %w", t.ID, err)
	}

	if err := json.Unmarshal([]byte(meta), &t.Metadata); err != nil {
		return nil, fmt.Errorf("task %s: metadata: %w", t.ID, err)
	}

	if len(t.Tags) == 0 {
		t.Tags = nil
	}

	if len(t.Metadata) == 0 {
		t.Metadata = nil
	}

	return &t, nil
}

func loadEdges(ctx context.Context, db *sql.DB, tasks map[string]*task.Task) error {
	rows, err := db.QueryContext(ctx,
		"SELECT parent_id, child_id FROM task_edges ORDER BY rowid")
	if err != nil {
		return fmt.Errorf("load sqlite edges: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var parentID, childID string

		err = rows.Scan(&parentID, &childID)
		if err != nil {
			return fmt.Errorf("load sqlite edges: %w", err)
		}

		if parent, ok := tasks[parentID]; ok {
			parent.Children = append(parent.Children, childID)
		}

		if child, ok := tasks[childID]; ok {
			child.DependsOn = append(child.DependsOn, parentID)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("load sqlite edges: %w", err)
	}

	return nil
}

func stampOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}

	return t.Format(task.Stamp)
}

func parseStampOrNil(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}

	t, err := time.Parse(task.Stamp, s.String)
	if err != nil {
		return nil, err
	}

	return &t, nil
}

func intOrNil(p *int) any {
	if p == nil {
		return nil
	}

	return *p
}

func orEmptySlice(s []string) []string {
	if s == nil {
		return []string{}
	}

	return s
}

func orEmptyMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}

	return m
}
