package mcpserve

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hylla/tavle/internal/store"
	"github.com/hylla/tavle/kanban"
)

type jsonRPCResponse struct {
	ID     float64        `json:"id"`
	Result map[string]any `json:"result"`
}

// initializeRequest builds a deterministic MCP initialize request payload.
func initializeRequest() map[string]any {
	return map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "initialize",
		"params": map[string]any{
			"protocolVersion": mcp.LATEST_PROTOCOL_VERSION,
			"clientInfo": map[string]any{
				"name":    "tavle-test",
				"version": "1.0.0",
			},
		},
	}
}

// callToolRequest constructs one tools/call JSON-RPC request payload.
func callToolRequest(id int, toolName string, arguments map[string]any) map[string]any {
	return map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"method":  "tools/call",
		"params": map[string]any{
			"name":      toolName,
			"arguments": arguments,
		},
	}
}

// toolResultText decodes the first text entry from one tool-call result payload.
func toolResultText(t *testing.T, result map[string]any) string {
	t.Helper()
	contentRaw, ok := result["content"].([]any)
	if !ok || len(contentRaw) == 0 {
		t.Fatalf("content missing in tool result: %#v", result)
	}
	first, ok := contentRaw[0].(map[string]any)
	if !ok {
		t.Fatalf("first content entry has unexpected type: %#v", contentRaw[0])
	}
	text, ok := first["text"].(string)
	if !ok {
		t.Fatalf("content text missing in tool result: %#v", first)
	}
	return text
}

// postJSONRPC sends one JSON-RPC payload and decodes the response body.
func postJSONRPC(t *testing.T, client *http.Client, url string, payload any) (*http.Response, jsonRPCResponse) {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	var decoded jsonRPCResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	_ = resp.Body.Close()
	return resp, decoded
}

// newTestServer builds one MCP server over an in-memory store.
func newTestServer(t *testing.T) (*httptest.Server, *store.Store) {
	t.Helper()
	tasks, err := store.OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() {
		_ = tasks.Close()
	})
	handler, err := NewHandler(Config{ServerName: "tavle", ServerVersion: "test", Author: "agent"}, tasks)
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	_, _ = postJSONRPC(t, server.Client(), server.URL, initializeRequest())
	return server, tasks
}

// TestHandlerRegistersTaskTools verifies MCP tool discovery.
func TestHandlerRegistersTaskTools(t *testing.T) {
	server, _ := newTestServer(t)

	_, toolsResp := postJSONRPC(t, server.Client(), server.URL, map[string]any{
		"jsonrpc": "2.0",
		"id":      2,
		"method":  "tools/list",
	})
	toolsRaw, ok := toolsResp.Result["tools"].([]any)
	if !ok {
		t.Fatalf("tools list payload missing tools: %#v", toolsResp.Result)
	}
	toolNames := make([]string, 0, len(toolsRaw))
	for _, toolRaw := range toolsRaw {
		toolMap, ok := toolRaw.(map[string]any)
		if !ok {
			continue
		}
		name, _ := toolMap["name"].(string)
		toolNames = append(toolNames, name)
	}
	for _, want := range []string{
		"tavle.list_tasks", "tavle.get_task", "tavle.create_task",
		"tavle.update_task", "tavle.move_task", "tavle.delete_task", "tavle.add_comment",
	} {
		if !slices.Contains(toolNames, want) {
			t.Fatalf("tool list missing %s: %#v", want, toolNames)
		}
	}
}

// TestCreateMoveDeleteOverMCP drives a task lifecycle through the transport.
func TestCreateMoveDeleteOverMCP(t *testing.T) {
	server, tasks := newTestServer(t)

	_, createResp := postJSONRPC(t, server.Client(), server.URL, callToolRequest(2, "tavle.create_task", map[string]any{
		"title":    "Agent-created task",
		"priority": "high",
		"type":     "bug",
		"labels":   []string{"Infra"},
	}))
	createText := toolResultText(t, createResp.Result)
	var created taskPayload
	if err := json.Unmarshal([]byte(createText), &created); err != nil {
		t.Fatalf("decode create result: %v (%q)", err, createText)
	}
	if created.ID == "" || created.Status != "todo" || created.Priority != "high" {
		t.Fatalf("unexpected created payload %+v", created)
	}
	if created.Reporter != "agent" {
		t.Fatalf("reporter = %q", created.Reporter)
	}

	_, moveResp := postJSONRPC(t, server.Client(), server.URL, callToolRequest(3, "tavle.move_task", map[string]any{
		"id":         created.ID,
		"new_status": "in-progress",
	}))
	var moved taskPayload
	if err := json.Unmarshal([]byte(toolResultText(t, moveResp.Result)), &moved); err != nil {
		t.Fatalf("decode move result: %v", err)
	}
	if moved.Status != "in-progress" {
		t.Fatalf("status after move = %q", moved.Status)
	}

	stored, err := tasks.GetTask(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetTask() error = %v", err)
	}
	if stored.Status != kanban.StatusInProgress {
		t.Fatalf("stored status = %s", stored.Status)
	}

	_, commentResp := postJSONRPC(t, server.Client(), server.URL, callToolRequest(4, "tavle.add_comment", map[string]any{
		"id":      created.ID,
		"content": "picked this up",
	}))
	var commented taskPayload
	if err := json.Unmarshal([]byte(toolResultText(t, commentResp.Result)), &commented); err != nil {
		t.Fatalf("decode comment result: %v", err)
	}
	if commented.Comments != 1 {
		t.Fatalf("comment count = %d", commented.Comments)
	}

	_, delResp := postJSONRPC(t, server.Client(), server.URL, callToolRequest(5, "tavle.delete_task", map[string]any{
		"id": created.ID,
	}))
	if text := toolResultText(t, delResp.Result); !strings.Contains(text, created.ID) {
		t.Fatalf("delete result = %q", text)
	}
	if _, err := tasks.GetTask(context.Background(), created.ID); err == nil {
		t.Fatal("task should be gone after delete")
	}
}

// TestToolErrorsSurfaceAsToolResults verifies error translation.
func TestToolErrorsSurfaceAsToolResults(t *testing.T) {
	server, _ := newTestServer(t)

	_, getResp := postJSONRPC(t, server.Client(), server.URL, callToolRequest(2, "tavle.get_task", map[string]any{
		"id": "missing",
	}))
	if text := toolResultText(t, getResp.Result); !strings.Contains(text, "not_found") {
		t.Fatalf("get_task error text = %q", text)
	}

	_, createResp := postJSONRPC(t, server.Client(), server.URL, callToolRequest(3, "tavle.create_task", map[string]any{
		"title":    "Bad hours",
		"priority": "urgent",
	}))
	if text := toolResultText(t, createResp.Result); !strings.Contains(text, "invalid_request") {
		t.Fatalf("create_task error text = %q", text)
	}
}

// TestListTasksStatusFilter verifies the list tool's status filter.
func TestListTasksStatusFilter(t *testing.T) {
	server, tasks := newTestServer(t)
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	for _, seed := range []struct {
		id     string
		status kanban.Status
	}{
		{"a1", kanban.StatusTodo},
		{"a2", kanban.StatusDone},
	} {
		task, err := kanban.NewTask(kanban.TaskInput{ID: seed.id, Title: "T " + seed.id, Status: seed.status}, now)
		if err != nil {
			t.Fatalf("NewTask() error = %v", err)
		}
		if err := tasks.CreateTask(context.Background(), task); err != nil {
			t.Fatalf("CreateTask() error = %v", err)
		}
	}

	_, listResp := postJSONRPC(t, server.Client(), server.URL, callToolRequest(2, "tavle.list_tasks", map[string]any{
		"status": "done",
	}))
	var listed struct {
		Tasks []taskPayload `json:"tasks"`
	}
	if err := json.Unmarshal([]byte(toolResultText(t, listResp.Result)), &listed); err != nil {
		t.Fatalf("decode list result: %v", err)
	}
	if len(listed.Tasks) != 1 || listed.Tasks[0].ID != "a2" {
		t.Fatalf("filtered list = %+v", listed.Tasks)
	}
}
