package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/hylla/tavle/kanban"
)

func TestStore_TaskLifecycle(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "tavle.db")
	s, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})

	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	due := now.Add(48 * time.Hour)
	task, err := kanban.NewTask(kanban.TaskInput{
		ID:          "t1",
		Title:       "Wire the importer",
		Description: "needs *markdown* support",
		Priority:    kanban.PriorityHigh,
		Type:        kanban.TypeStory,
		Reporter:    "casey",
		Assignee:    "riley",
		Labels:      []kanban.Label{{ID: "infra", Name: "Infra"}},
		Estimate:    4.5,
		DueAt:       &due,
	}, now)
	if err != nil {
		t.Fatalf("NewTask() error = %v", err)
	}
	if err := s.CreateTask(ctx, task); err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}

	loaded, err := s.GetTask(ctx, "t1")
	if err != nil {
		t.Fatalf("GetTask() error = %v", err)
	}
	if loaded.Title != "Wire the importer" || loaded.Priority != kanban.PriorityHigh || loaded.Type != kanban.TypeStory {
		t.Fatalf("unexpected task %+v", loaded)
	}
	if loaded.Assignee != "riley" || loaded.Reporter != "casey" {
		t.Fatalf("people fields lost: %+v", loaded)
	}
	if len(loaded.Labels) != 1 || loaded.Labels[0].ID != "infra" {
		t.Fatalf("labels lost: %+v", loaded.Labels)
	}
	if loaded.DueAt == nil || !loaded.DueAt.Equal(due) {
		t.Fatalf("due date lost: %v", loaded.DueAt)
	}
	if loaded.Estimate != 4.5 {
		t.Fatalf("estimate lost: %v", loaded.Estimate)
	}

	comment, err := kanban.NewComment("c1", "casey", "started today", now.Add(time.Hour))
	if err != nil {
		t.Fatalf("NewComment() error = %v", err)
	}
	withComment := loaded.WithComment(comment, now.Add(time.Hour))
	if err := s.UpdateTask(ctx, withComment); err != nil {
		t.Fatalf("UpdateTask() error = %v", err)
	}
	loaded, err = s.GetTask(ctx, "t1")
	if err != nil {
		t.Fatalf("GetTask() after update error = %v", err)
	}
	if len(loaded.Comments) != 1 || loaded.Comments[0].Content != "started today" {
		t.Fatalf("comments not persisted: %+v", loaded.Comments)
	}

	if err := s.MoveTask(ctx, "t1", kanban.StatusInProgress, kanban.StatusTodo); err != nil {
		t.Fatalf("MoveTask() error = %v", err)
	}
	loaded, err = s.GetTask(ctx, "t1")
	if err != nil {
		t.Fatalf("GetTask() after move error = %v", err)
	}
	if loaded.Status != kanban.StatusInProgress {
		t.Fatalf("status = %s after move", loaded.Status)
	}

	tasks, err := s.ListTasks(ctx)
	if err != nil {
		t.Fatalf("ListTasks() error = %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("ListTasks() len = %d", len(tasks))
	}

	counts, err := s.CountByStatus(ctx)
	if err != nil {
		t.Fatalf("CountByStatus() error = %v", err)
	}
	if counts[kanban.StatusInProgress] != 1 {
		t.Fatalf("counts = %v", counts)
	}

	if err := s.DeleteTask(ctx, "t1"); err != nil {
		t.Fatalf("DeleteTask() error = %v", err)
	}
	if _, err := s.GetTask(ctx, "t1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetTask() after delete error = %v", err)
	}
}

func TestStore_MoveGuards(t *testing.T) {
	ctx := context.Background()
	s, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})

	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	task, err := kanban.NewTask(kanban.TaskInput{ID: "t1", Title: "Guarded"}, now)
	if err != nil {
		t.Fatalf("NewTask() error = %v", err)
	}
	if err := s.CreateTask(ctx, task); err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}

	if err := s.MoveTask(ctx, "missing", kanban.StatusDone, kanban.StatusTodo); !errors.Is(err, ErrNotFound) {
		t.Fatalf("move of missing task error = %v", err)
	}
	if err := s.MoveTask(ctx, "t1", kanban.StatusDone, kanban.StatusInReview); !errors.Is(err, ErrStaleMove) {
		t.Fatalf("stale move error = %v", err)
	}
	if err := s.MoveTask(ctx, "t1", kanban.StatusDone, kanban.StatusTodo); err != nil {
		t.Fatalf("valid move error = %v", err)
	}
}

func TestStore_NotFoundOnMutations(t *testing.T) {
	ctx := context.Background()
	s, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})

	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	task, err := kanban.NewTask(kanban.TaskInput{ID: "ghost", Title: "Ghost"}, now)
	if err != nil {
		t.Fatalf("NewTask() error = %v", err)
	}
	if err := s.UpdateTask(ctx, task); !errors.Is(err, ErrNotFound) {
		t.Fatalf("UpdateTask() error = %v", err)
	}
	if err := s.DeleteTask(ctx, "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("DeleteTask() error = %v", err)
	}
}
