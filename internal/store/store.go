// Package store persists tasks in SQLite for hosts that want local,
// durable board state behind the board callbacks.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hylla/tavle/kanban"
	_ "modernc.org/sqlite"
)

// driverName defines a package constant value.
const driverName = "sqlite"

// ErrNotFound and related errors describe runtime failures.
var (
	ErrNotFound  = errors.New("task not found")
	ErrStaleMove = errors.New("task moved concurrently")
)

// Store represents store data used by this package.
type Store struct {
	db *sql.DB
}

// Open opens the requested operation.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// OpenInMemory opens in memory.
func OpenInMemory() (*Store, error) {
	db, err := sql.Open(driverName, "file::memory:?cache=shared")
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the requested operation.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate handles migrate.
func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`PRAGMA foreign_keys = ON;`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'todo',
			priority TEXT NOT NULL DEFAULT 'medium',
			kind TEXT NOT NULL DEFAULT 'task',
			reporter TEXT NOT NULL DEFAULT '',
			assignee TEXT NOT NULL DEFAULT '',
			labels_json TEXT NOT NULL DEFAULT '[]',
			comments_json TEXT NOT NULL DEFAULT '[]',
			estimate_hours REAL NOT NULL DEFAULT 0,
			time_spent_hours REAL NOT NULL DEFAULT 0,
			due_at TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// ListTasks lists tasks in creation order.
func (s *Store) ListTasks(ctx context.Context) ([]kanban.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, status, priority, kind, reporter, assignee,
			labels_json, comments_json, estimate_hours, time_spent_hours, due_at, created_at, updated_at
		FROM tasks
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []kanban.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, task)
	}
	return out, rows.Err()
}

// GetTask returns one task.
func (s *Store) GetTask(ctx context.Context, id string) (kanban.Task, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, status, priority, kind, reporter, assignee,
			labels_json, comments_json, estimate_hours, time_spent_hours, due_at, created_at, updated_at
		FROM tasks
		WHERE id = ?
	`, id)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return kanban.Task{}, ErrNotFound
	}
	return task, err
}

// CreateTask creates task.
func (s *Store) CreateTask(ctx context.Context, t kanban.Task) error {
	labelsJSON, commentsJSON, err := encodeCollections(t)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO tasks(id, title, description, status, priority, kind, reporter, assignee,
			labels_json, comments_json, estimate_hours, time_spent_hours, due_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.Title, t.Description, string(t.Status), string(t.Priority), string(t.Type), t.Reporter, t.Assignee,
		labelsJSON, commentsJSON, t.Estimate, t.TimeSpent, nullableTS(t.DueAt), ts(t.CreatedAt), ts(t.UpdatedAt))
	return err
}

// UpdateTask replaces a stored task wholesale.
func (s *Store) UpdateTask(ctx context.Context, t kanban.Task) error {
	labelsJSON, commentsJSON, err := encodeCollections(t)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE tasks
		SET title = ?, description = ?, status = ?, priority = ?, kind = ?, reporter = ?, assignee = ?,
			labels_json = ?, comments_json = ?, estimate_hours = ?, time_spent_hours = ?, due_at = ?, updated_at = ?
		WHERE id = ?
	`, t.Title, t.Description, string(t.Status), string(t.Priority), string(t.Type), t.Reporter, t.Assignee,
		labelsJSON, commentsJSON, t.Estimate, t.TimeSpent, nullableTS(t.DueAt), ts(t.UpdatedAt), t.ID)
	if err != nil {
		return err
	}
	return translateNoRows(res)
}

// MoveTask sets a task's status. The old status guards against a move that
// raced another writer; a stale guard fails without applying anything.
func (s *Store) MoveTask(ctx context.Context, id string, newStatus, oldStatus kanban.Status) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE tasks
		SET status = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`, string(newStatus), ts(time.Now()), id, string(oldStatus))
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		if _, err := s.GetTask(ctx, id); errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return ErrStaleMove
	}
	return nil
}

// DeleteTask deletes task.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return translateNoRows(res)
}

// CountByStatus returns the number of stored tasks per status.
func (s *Store) CountByStatus(ctx context.Context) (map[kanban.Status]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM tasks GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[kanban.Status]int{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[kanban.Status(status)] = n
	}
	return out, rows.Err()
}

// storedLabel and storedComment pin the JSON column layout independently of
// the in-memory types.
type storedLabel struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

type storedComment struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// encodeCollections handles encode collections.
func encodeCollections(t kanban.Task) (string, string, error) {
	labels := make([]storedLabel, 0, len(t.Labels))
	for _, label := range t.Labels {
		labels = append(labels, storedLabel{ID: label.ID, Name: label.Name, Color: label.Color})
	}
	labelsJSON, err := json.Marshal(labels)
	if err != nil {
		return "", "", fmt.Errorf("encode labels: %w", err)
	}
	comments := make([]storedComment, 0, len(t.Comments))
	for _, comment := range t.Comments {
		comments = append(comments, storedComment{
			ID:        comment.ID,
			Author:    comment.Author,
			Content:   comment.Content,
			CreatedAt: comment.CreatedAt.UTC(),
		})
	}
	commentsJSON, err := json.Marshal(comments)
	if err != nil {
		return "", "", fmt.Errorf("encode comments: %w", err)
	}
	return string(labelsJSON), string(commentsJSON), nil
}

// scanner abstracts sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanTask handles scan task.
func scanTask(s scanner) (kanban.Task, error) {
	var (
		t           kanban.Task
		status      string
		priority    string
		kind        string
		labelsRaw   string
		commentsRaw string
		due         sql.NullString
		createdRaw  string
		updatedRaw  string
	)
	if err := s.Scan(&t.ID, &t.Title, &t.Description, &status, &priority, &kind, &t.Reporter, &t.Assignee,
		&labelsRaw, &commentsRaw, &t.Estimate, &t.TimeSpent, &due, &createdRaw, &updatedRaw); err != nil {
		return kanban.Task{}, err
	}
	t.Status = kanban.Status(status)
	t.Priority = kanban.Priority(priority)
	t.Type = kanban.Type(kind)

	if strings.TrimSpace(labelsRaw) == "" {
		labelsRaw = "[]"
	}
	var labels []storedLabel
	if err := json.Unmarshal([]byte(labelsRaw), &labels); err != nil {
		return kanban.Task{}, fmt.Errorf("decode labels_json: %w", err)
	}
	for _, label := range labels {
		t.Labels = append(t.Labels, kanban.Label{ID: label.ID, Name: label.Name, Color: label.Color})
	}

	if strings.TrimSpace(commentsRaw) == "" {
		commentsRaw = "[]"
	}
	var comments []storedComment
	if err := json.Unmarshal([]byte(commentsRaw), &comments); err != nil {
		return kanban.Task{}, fmt.Errorf("decode comments_json: %w", err)
	}
	for _, comment := range comments {
		t.Comments = append(t.Comments, kanban.Comment{
			ID:        comment.ID,
			Author:    comment.Author,
			Content:   comment.Content,
			CreatedAt: comment.CreatedAt.UTC(),
		})
	}

	t.DueAt = parseNullTS(due)
	t.CreatedAt = parseTS(createdRaw)
	t.UpdatedAt = parseTS(updatedRaw)
	return t, nil
}

// translateNoRows handles translate no rows.
func translateNoRows(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ts handles ts.
func ts(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// nullableTS handles nullable ts.
func nullableTS(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTS parses input into a normalized form.
func parseTS(v string) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return ts.UTC()
}

// parseNullTS parses input into a normalized form.
func parseNullTS(v sql.NullString) *time.Time {
	if !v.Valid || strings.TrimSpace(v.String) == "" {
		return nil
	}
	ts := parseTS(v.String)
	return &ts
}
