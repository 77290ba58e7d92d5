package board

import (
	"context"
	"strings"

	"github.com/hylla/tavle/kanban"
)

// Host callbacks. All are optional; a missing callback means the
// corresponding user action produces no external effect. Callbacks run on
// their own goroutine (a tea.Cmd) and may block on I/O; the board keeps
// accepting input while they are in flight and imposes no mutual exclusion
// between overlapping operations.
type (
	CreateFunc func(ctx context.Context, task kanban.Task) error
	UpdateFunc func(ctx context.Context, task kanban.Task) error
	DeleteFunc func(ctx context.Context, taskID string) error
	MoveFunc   func(ctx context.Context, taskID string, newStatus, oldStatus kanban.Status) error
)

// CardRenderFunc may wrap or replace the default rendering of one card.
type CardRenderFunc func(task kanban.Task, rendered string) string

// HeaderRenderFunc may wrap or replace the default-rendered board header.
type HeaderRenderFunc func(rendered string) string

// Features toggles optional board surfaces.
type Features struct {
	EnableSearch     bool
	EnableFilters    bool
	EnableViewToggle bool
	EnableCreateTask bool
}

// DefaultFeatures enables everything.
func DefaultFeatures() Features {
	return Features{
		EnableSearch:     true,
		EnableFilters:    true,
		EnableViewToggle: true,
		EnableCreateTask: true,
	}
}

// Style holds the recognized presentation options.
type Style struct {
	BoardTitle    string
	BoardSubtitle string
	ShowHeader    bool
	ShowStats     bool
}

// DefaultStyle returns the default presentation options.
func DefaultStyle() Style {
	return Style{
		BoardTitle: "Kanban Board",
		ShowHeader: true,
		ShowStats:  true,
	}
}

// Option configures a Model at construction time.
type Option func(*Model)

// WithColumns replaces the default four-column set. Empty input keeps the
// defaults; the configured ids define the legal status values for the
// session.
func WithColumns(columns []kanban.Column) Option {
	return func(m *Model) {
		if len(columns) > 0 {
			m.columns = append([]kanban.Column(nil), columns...)
		}
	}
}

func WithOnTaskCreate(fn CreateFunc) Option {
	return func(m *Model) { m.onTaskCreate = fn }
}

func WithOnTaskUpdate(fn UpdateFunc) Option {
	return func(m *Model) { m.onTaskUpdate = fn }
}

func WithOnTaskDelete(fn DeleteFunc) Option {
	return func(m *Model) { m.onTaskDelete = fn }
}

func WithOnTaskMove(fn MoveFunc) Option {
	return func(m *Model) { m.onTaskMove = fn }
}

func WithFeatures(features Features) Option {
	return func(m *Model) { m.features = features }
}

// WithStyle applies presentation options; a blank title falls back to the
// default.
func WithStyle(style Style) Option {
	return func(m *Model) {
		if strings.TrimSpace(style.BoardTitle) == "" {
			style.BoardTitle = DefaultStyle().BoardTitle
		}
		m.style = style
	}
}

func WithCardRenderer(fn CardRenderFunc) Option {
	return func(m *Model) { m.renderCard = fn }
}

func WithHeaderRenderer(fn HeaderRenderFunc) Option {
	return func(m *Model) { m.renderHeader = fn }
}

// WithAuthor sets the name used as comment author and default reporter for
// tasks created through the board's own form.
func WithAuthor(name string) Option {
	return func(m *Model) {
		if name = strings.TrimSpace(name); name != "" {
			m.author = name
		}
	}
}
