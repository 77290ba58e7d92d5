package main

import (
	"context"

	tea "charm.land/bubbletea/v2"
	charmLog "github.com/charmbracelet/log"

	"github.com/hylla/tavle/board"
	"github.com/hylla/tavle/internal/config"
	"github.com/hylla/tavle/internal/store"
	"github.com/hylla/tavle/kanban"
)

// tasksLoadedMsg carries a fresh snapshot from the store.
type tasksLoadedMsg struct {
	tasks []kanban.Task
	err   error
}

// appModel owns the task data and feeds snapshots to the board. Every board
// mutation goes through the store; a successful operation triggers a reload so
// the board only ever renders persisted state.
type appModel struct {
	board  board.Model
	tasks  *store.Store
	logger *charmLog.Logger
}

// newAppModel wires the board to the store-backed callbacks.
func newAppModel(cfg config.Config, tasks *store.Store, logger *charmLog.Logger) (appModel, error) {
	columns, err := cfg.Columns()
	if err != nil {
		return appModel{}, err
	}
	b := board.New(
		board.WithColumns(columns),
		board.WithFeatures(cfg.BoardFeatures()),
		board.WithStyle(cfg.BoardStyle()),
		board.WithAuthor(cfg.User.Name),
		board.WithOnTaskCreate(func(ctx context.Context, task kanban.Task) error {
			return tasks.CreateTask(ctx, task)
		}),
		board.WithOnTaskUpdate(func(ctx context.Context, task kanban.Task) error {
			return tasks.UpdateTask(ctx, task)
		}),
		board.WithOnTaskDelete(func(ctx context.Context, taskID string) error {
			return tasks.DeleteTask(ctx, taskID)
		}),
		board.WithOnTaskMove(func(ctx context.Context, taskID string, newStatus, oldStatus kanban.Status) error {
			return tasks.MoveTask(ctx, taskID, newStatus, oldStatus)
		}),
	)
	return appModel{board: b, tasks: tasks, logger: logger}, nil
}

// loadTasks reads the full collection off the UI goroutine.
func loadTasks(tasks *store.Store) tea.Cmd {
	return func() tea.Msg {
		list, err := tasks.ListTasks(context.Background())
		return tasksLoadedMsg{tasks: list, err: err}
	}
}

func (m appModel) Init() tea.Cmd {
	return tea.Batch(m.board.Init(), loadTasks(m.tasks))
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tasksLoadedMsg:
		if msg.err != nil {
			m.logger.Error("load tasks", "error", msg.err)
			return m, nil
		}
		m.board = m.board.SetTasks(msg.tasks)
		return m, nil

	case board.OpResultMsg:
		// Let the board surface the outcome in its status line, then pull a
		// fresh snapshot when the store accepted the change.
		updated, cmd := m.board.Update(msg)
		m.board = updated.(board.Model)
		if msg.Err != nil {
			m.logger.Warn("task operation failed", "op", msg.Op, "task", msg.TaskID, "error", msg.Err)
			return m, cmd
		}
		return m, tea.Batch(cmd, loadTasks(m.tasks))

	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q":
			if !m.board.InputActive() {
				return m, tea.Quit
			}
		}
	}

	updated, cmd := m.board.Update(msg)
	m.board = updated.(board.Model)
	return m, cmd
}

func (m appModel) View() tea.View {
	return m.board.View()
}
