// Package mcpserve exposes the task store to agent tooling over a stateless
// MCP streamable-HTTP transport.
package mcpserve

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/hylla/tavle/internal/store"
	"github.com/hylla/tavle/kanban"
)

// defaultShutdownTimeout bounds graceful shutdown time once context
// cancellation starts.
const defaultShutdownTimeout = 5 * time.Second

// Config captures MCP transport configuration.
type Config struct {
	Bind          string
	ServerName    string
	ServerVersion string
	EndpointPath  string
	Author        string
}

// Handler wraps one stateless MCP streamable HTTP handler.
type Handler struct {
	httpHandler http.Handler
}

// NewHandler builds one stateless MCP adapter over the task store.
func NewHandler(cfg Config, tasks *store.Store) (*Handler, error) {
	if tasks == nil {
		return nil, fmt.Errorf("task store is required")
	}
	cfg = normalizeConfig(cfg)

	mcpSrv := mcpserver.NewMCPServer(
		cfg.ServerName,
		cfg.ServerVersion,
		mcpserver.WithToolCapabilities(false),
	)
	registerListTool(mcpSrv, tasks)
	registerGetTool(mcpSrv, tasks)
	registerCreateTool(mcpSrv, tasks, cfg.Author)
	registerUpdateTool(mcpSrv, tasks)
	registerMoveTool(mcpSrv, tasks)
	registerDeleteTool(mcpSrv, tasks)
	registerCommentTool(mcpSrv, tasks, cfg.Author)

	streamable := mcpserver.NewStreamableHTTPServer(
		mcpSrv,
		mcpserver.WithEndpointPath(cfg.EndpointPath),
		mcpserver.WithStateLess(true),
	)
	return &Handler{httpHandler: streamable}, nil
}

// ServeHTTP handles one MCP streamable HTTP request.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.httpHandler == nil {
		http.Error(w, "mcp handler unavailable", http.StatusServiceUnavailable)
		return
	}
	h.httpHandler.ServeHTTP(w, r)
}

// Run serves the MCP transport and blocks until shutdown or startup failure.
func Run(ctx context.Context, cfg Config, tasks *store.Store) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg = normalizeConfig(cfg)
	handler, err := NewHandler(cfg, tasks)
	if err != nil {
		return fmt.Errorf("build mcp handler: %w", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", writeHealthStatus)
	mux.Handle(cfg.EndpointPath, handler)

	httpServer := &http.Server{
		Addr:    cfg.Bind,
		Handler: mux,
	}

	serveErrCh := make(chan error, 1)
	go func() {
		serveErrCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serveErrCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen and serve: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
		defer cancel()

		shutdownErr := httpServer.Shutdown(shutdownCtx)
		serveErr := <-serveErrCh
		if shutdownErr != nil && !errors.Is(shutdownErr, context.Canceled) {
			return fmt.Errorf("shutdown server: %w", shutdownErr)
		}
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			return fmt.Errorf("serve after shutdown: %w", serveErr)
		}
		return nil
	}
}

// normalizeConfig applies deterministic defaults to MCP adapter config.
func normalizeConfig(cfg Config) Config {
	cfg.Bind = strings.TrimSpace(cfg.Bind)
	if cfg.Bind == "" {
		cfg.Bind = "127.0.0.1:7468"
	}
	cfg.ServerName = strings.TrimSpace(cfg.ServerName)
	if cfg.ServerName == "" {
		cfg.ServerName = "tavle"
	}
	cfg.ServerVersion = strings.TrimSpace(cfg.ServerVersion)
	if cfg.ServerVersion == "" {
		cfg.ServerVersion = "dev"
	}
	cfg.EndpointPath = strings.TrimSpace(cfg.EndpointPath)
	if cfg.EndpointPath == "" {
		cfg.EndpointPath = "/mcp"
	}
	if !strings.HasPrefix(cfg.EndpointPath, "/") {
		cfg.EndpointPath = "/" + cfg.EndpointPath
	}
	cfg.EndpointPath = "/" + strings.Trim(cfg.EndpointPath, "/")
	cfg.Author = strings.TrimSpace(cfg.Author)
	if cfg.Author == "" {
		cfg.Author = "tavle-agent"
	}
	return cfg
}

// taskPayload is the wire shape shared by every task-returning tool.
type taskPayload struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Status      string   `json:"status"`
	Priority    string   `json:"priority"`
	Type        string   `json:"type"`
	Reporter    string   `json:"reporter,omitempty"`
	Assignee    string   `json:"assignee,omitempty"`
	Labels      []string `json:"labels,omitempty"`
	Comments    int      `json:"comments"`
	Estimate    float64  `json:"estimate_hours,omitempty"`
	TimeSpent   float64  `json:"time_spent_hours,omitempty"`
	DueAt       string   `json:"due_at,omitempty"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

// toPayload converts payload for transport.
func toPayload(t kanban.Task) taskPayload {
	labels := make([]string, 0, len(t.Labels))
	for _, label := range t.Labels {
		labels = append(labels, label.Name)
	}
	p := taskPayload{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		Type:        string(t.Type),
		Reporter:    t.Reporter,
		Assignee:    t.Assignee,
		Labels:      labels,
		Comments:    len(t.Comments),
		Estimate:    t.Estimate,
		TimeSpent:   t.TimeSpent,
		CreatedAt:   t.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   t.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if t.DueAt != nil {
		p.DueAt = t.DueAt.UTC().Format(time.RFC3339)
	}
	return p
}

// registerListTool registers the `tavle.list_tasks` tool.
func registerListTool(srv *mcpserver.MCPServer, tasks *store.Store) {
	srv.AddTool(
		mcp.NewTool(
			"tavle.list_tasks",
			mcp.WithDescription("List tasks, optionally filtered by status."),
			mcp.WithString("status", mcp.Description("Filter by status id")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			all, err := tasks.ListTasks(ctx)
			if err != nil {
				return toolResultFromError(err), nil
			}
			status := strings.TrimSpace(req.GetString("status", ""))
			payloads := make([]taskPayload, 0, len(all))
			for _, task := range all {
				if status != "" && string(task.Status) != status {
					continue
				}
				payloads = append(payloads, toPayload(task))
			}
			result, err := mcp.NewToolResultJSON(map[string]any{"tasks": payloads})
			if err != nil {
				return nil, fmt.Errorf("encode list_tasks result: %w", err)
			}
			return result, nil
		},
	)
}

// registerGetTool registers the `tavle.get_task` tool.
func registerGetTool(srv *mcpserver.MCPServer, tasks *store.Store) {
	srv.AddTool(
		mcp.NewTool(
			"tavle.get_task",
			mcp.WithDescription("Return one task by id."),
			mcp.WithString("id", mcp.Required(), mcp.Description("Task identifier")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := req.RequireString("id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			task, err := tasks.GetTask(ctx, id)
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(toPayload(task))
			if err != nil {
				return nil, fmt.Errorf("encode get_task result: %w", err)
			}
			return result, nil
		},
	)
}

// registerCreateTool registers the `tavle.create_task` tool.
func registerCreateTool(srv *mcpserver.MCPServer, tasks *store.Store, author string) {
	srv.AddTool(
		mcp.NewTool(
			"tavle.create_task",
			mcp.WithDescription("Create one task."),
			mcp.WithString("title", mcp.Required(), mcp.Description("Task title")),
			mcp.WithString("description", mcp.Description("Markdown description")),
			mcp.WithString("status", mcp.Description("Status id (defaults to todo)")),
			mcp.WithString("priority", mcp.Description("lowest|low|medium|high|highest")),
			mcp.WithString("type", mcp.Description("task|bug|story|epic")),
			mcp.WithString("assignee", mcp.Description("Assignee name")),
			mcp.WithArray("labels", mcp.Description("Optional label names"), mcp.WithStringItems()),
			mcp.WithNumber("estimate_hours", mcp.Description("Estimate in hours")),
			mcp.WithString("due_at", mcp.Description("Due timestamp, RFC3339")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			title, err := req.RequireString("title")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			in := kanban.TaskInput{
				ID:          uuid.NewString(),
				Title:       title,
				Description: req.GetString("description", ""),
				Status:      kanban.Status(req.GetString("status", "")),
				Priority:    kanban.Priority(req.GetString("priority", "")),
				Type:        kanban.Type(req.GetString("type", "")),
				Reporter:    author,
				Assignee:    req.GetString("assignee", ""),
				Labels:      labelsFromNames(req.GetStringSlice("labels", nil)),
				Estimate:    req.GetFloat("estimate_hours", 0),
			}
			if raw := strings.TrimSpace(req.GetString("due_at", "")); raw != "" {
				due, parseErr := time.Parse(time.RFC3339, raw)
				if parseErr != nil {
					return mcp.NewToolResultError("invalid_request: due_at must be RFC3339"), nil
				}
				in.DueAt = &due
			}
			task, err := kanban.NewTask(in, time.Now())
			if err != nil {
				return toolResultFromError(err), nil
			}
			if err := tasks.CreateTask(ctx, task); err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(toPayload(task))
			if err != nil {
				return nil, fmt.Errorf("encode create_task result: %w", err)
			}
			return result, nil
		},
	)
}

// registerUpdateTool registers the `tavle.update_task` tool. Absent fields
// keep their stored values.
func registerUpdateTool(srv *mcpserver.MCPServer, tasks *store.Store) {
	srv.AddTool(
		mcp.NewTool(
			"tavle.update_task",
			mcp.WithDescription("Update fields of one task; omitted fields are kept."),
			mcp.WithString("id", mcp.Required(), mcp.Description("Task identifier")),
			mcp.WithString("title", mcp.Description("New title")),
			mcp.WithString("description", mcp.Description("New description")),
			mcp.WithString("priority", mcp.Description("New priority")),
			mcp.WithString("type", mcp.Description("New type")),
			mcp.WithString("assignee", mcp.Description("New assignee")),
			mcp.WithArray("labels", mcp.Description("Replacement label names"), mcp.WithStringItems()),
			mcp.WithNumber("estimate_hours", mcp.Description("New estimate")),
			mcp.WithNumber("time_spent_hours", mcp.Description("New time spent")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := req.RequireString("id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			base, err := tasks.GetTask(ctx, id)
			if err != nil {
				return toolResultFromError(err), nil
			}
			in := kanban.TaskInput{
				Title:       req.GetString("title", base.Title),
				Description: req.GetString("description", base.Description),
				Status:      base.Status,
				Priority:    kanban.Priority(req.GetString("priority", string(base.Priority))),
				Type:        kanban.Type(req.GetString("type", string(base.Type))),
				Assignee:    req.GetString("assignee", base.Assignee),
				Labels:      base.Labels,
				Estimate:    req.GetFloat("estimate_hours", base.Estimate),
				TimeSpent:   req.GetFloat("time_spent_hours", base.TimeSpent),
				DueAt:       base.DueAt,
			}
			if names := req.GetStringSlice("labels", nil); names != nil {
				in.Labels = labelsFromNames(names)
			}
			updated, err := base.WithDetails(in, time.Now())
			if err != nil {
				return toolResultFromError(err), nil
			}
			if err := tasks.UpdateTask(ctx, updated); err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(toPayload(updated))
			if err != nil {
				return nil, fmt.Errorf("encode update_task result: %w", err)
			}
			return result, nil
		},
	)
}

// registerMoveTool registers the `tavle.move_task` tool.
func registerMoveTool(srv *mcpserver.MCPServer, tasks *store.Store) {
	srv.AddTool(
		mcp.NewTool(
			"tavle.move_task",
			mcp.WithDescription("Move one task to a new status."),
			mcp.WithString("id", mcp.Required(), mcp.Description("Task identifier")),
			mcp.WithString("new_status", mcp.Required(), mcp.Description("Destination status id")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := req.RequireString("id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			newStatus, err := req.RequireString("new_status")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			base, err := tasks.GetTask(ctx, id)
			if err != nil {
				return toolResultFromError(err), nil
			}
			if err := tasks.MoveTask(ctx, id, kanban.Status(newStatus), base.Status); err != nil {
				return toolResultFromError(err), nil
			}
			moved, err := tasks.GetTask(ctx, id)
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(toPayload(moved))
			if err != nil {
				return nil, fmt.Errorf("encode move_task result: %w", err)
			}
			return result, nil
		},
	)
}

// registerDeleteTool registers the `tavle.delete_task` tool.
func registerDeleteTool(srv *mcpserver.MCPServer, tasks *store.Store) {
	srv.AddTool(
		mcp.NewTool(
			"tavle.delete_task",
			mcp.WithDescription("Delete one task by id."),
			mcp.WithString("id", mcp.Required(), mcp.Description("Task identifier")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := req.RequireString("id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			if err := tasks.DeleteTask(ctx, id); err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(map[string]any{"deleted": id})
			if err != nil {
				return nil, fmt.Errorf("encode delete_task result: %w", err)
			}
			return result, nil
		},
	)
}

// registerCommentTool registers the `tavle.add_comment` tool.
func registerCommentTool(srv *mcpserver.MCPServer, tasks *store.Store, author string) {
	srv.AddTool(
		mcp.NewTool(
			"tavle.add_comment",
			mcp.WithDescription("Append a comment to one task."),
			mcp.WithString("id", mcp.Required(), mcp.Description("Task identifier")),
			mcp.WithString("content", mcp.Required(), mcp.Description("Comment text")),
			mcp.WithString("author", mcp.Description("Comment author (defaults to the server author)")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := req.RequireString("id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			content, err := req.RequireString("content")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			base, err := tasks.GetTask(ctx, id)
			if err != nil {
				return toolResultFromError(err), nil
			}
			now := time.Now()
			comment, err := kanban.NewComment(uuid.NewString(), req.GetString("author", author), content, now)
			if err != nil {
				return toolResultFromError(err), nil
			}
			updated := base.WithComment(comment, now)
			if err := tasks.UpdateTask(ctx, updated); err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(toPayload(updated))
			if err != nil {
				return nil, fmt.Errorf("encode add_comment result: %w", err)
			}
			return result, nil
		},
	)
}

// labelsFromNames converts label names into labels keyed by lowercased name.
func labelsFromNames(names []string) []kanban.Label {
	out := make([]kanban.Label, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		out = append(out, kanban.Label{ID: strings.ToLower(name), Name: name})
	}
	return out
}

// toolResultFromError maps store and validation errors onto MCP tool errors.
func toolResultFromError(err error) *mcp.CallToolResult {
	switch {
	case err == nil:
		return mcp.NewToolResultError("unknown error")
	case errors.Is(err, store.ErrNotFound):
		return mcp.NewToolResultError("not_found: " + err.Error())
	case errors.Is(err, store.ErrStaleMove):
		return mcp.NewToolResultError("conflict: " + err.Error())
	case errors.Is(err, kanban.ErrInvalidTitle),
		errors.Is(err, kanban.ErrInvalidID),
		errors.Is(err, kanban.ErrInvalidStatus),
		errors.Is(err, kanban.ErrInvalidPriority),
		errors.Is(err, kanban.ErrInvalidType),
		errors.Is(err, kanban.ErrInvalidHours),
		errors.Is(err, kanban.ErrInvalidAuthor),
		errors.Is(err, kanban.ErrInvalidContent):
		return mcp.NewToolResultError("invalid_request: " + err.Error())
	default:
		return mcp.NewToolResultError("internal_error: " + err.Error())
	}
}

// writeHealthStatus responds with a deterministic readiness payload.
func writeHealthStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}` + "\n"))
}
