package board

import (
	"slices"
	"testing"
	"time"

	"github.com/hylla/tavle/kanban"
)

func fixtureTask(t *testing.T, id, title string, status kanban.Status, mutate ...func(*kanban.TaskInput)) kanban.Task {
	t.Helper()
	in := kanban.TaskInput{ID: id, Title: title, Status: status}
	for _, fn := range mutate {
		fn(&in)
	}
	task, err := kanban.NewTask(in, time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("NewTask(%s): %v", id, err)
	}
	return task
}

func fixtureCollection(t *testing.T) []kanban.Task {
	t.Helper()
	return []kanban.Task{
		fixtureTask(t, "t1", "Fix login bug", kanban.StatusTodo, func(in *kanban.TaskInput) {
			in.Type = kanban.TypeBug
			in.Priority = kanban.PriorityHigh
			in.Assignee = "riley"
		}),
		fixtureTask(t, "t2", "Write onboarding docs", kanban.StatusTodo, func(in *kanban.TaskInput) {
			in.Description = "cover the BUG report flow"
		}),
		fixtureTask(t, "t3", "Ship billing", kanban.StatusInProgress, func(in *kanban.TaskInput) {
			in.Priority = kanban.PriorityHighest
			in.Assignee = "riley"
		}),
		fixtureTask(t, "t4", "Polish settings", kanban.StatusDone, func(in *kanban.TaskInput) {
			in.Assignee = "sam"
		}),
	}
}

func taskIDs(tasks []kanban.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, task.ID)
	}
	return out
}

// TestFilterTasksSearch verifies case-insensitive substring matching across
// title, description, and id.
func TestFilterTasksSearch(t *testing.T) {
	tasks := fixtureCollection(t)
	features := DefaultFeatures()

	cases := []struct {
		name   string
		search string
		want   []string
	}{
		{name: "title and description", search: "bug", want: []string{"t1", "t2"}},
		{name: "uppercase query", search: "BUG", want: []string{"t1", "t2"}},
		{name: "id match", search: "t3", want: []string{"t3"}},
		{name: "no match", search: "zzz", want: []string{}},
		{name: "blank passes everything", search: "  ", want: []string{"t1", "t2", "t3", "t4"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := taskIDs(FilterTasks(tasks, Filters{Search: tc.search}, features))
			if !slices.Equal(got, tc.want) {
				t.Fatalf("FilterTasks search %q = %v, want %v", tc.search, got, tc.want)
			}
		})
	}
}

// TestFilterTasksSelectors verifies the priority/type/assignee selectors and
// that results stay an order-preserving subsequence.
func TestFilterTasksSelectors(t *testing.T) {
	tasks := fixtureCollection(t)
	features := DefaultFeatures()

	cases := []struct {
		name    string
		filters Filters
		want    []string
	}{
		{name: "zero filters pass everything", filters: Filters{}, want: []string{"t1", "t2", "t3", "t4"}},
		{name: "all sentinel passes everything", filters: Filters{Priority: FilterAll, Assignee: FilterAll}, want: []string{"t1", "t2", "t3", "t4"}},
		{name: "priority", filters: Filters{Priority: "high"}, want: []string{"t1"}},
		{name: "type", filters: Filters{Type: "bug"}, want: []string{"t1"}},
		{name: "assignee", filters: Filters{Assignee: "riley"}, want: []string{"t1", "t3"}},
		{name: "unassigned", filters: Filters{Assignee: FilterUnassigned}, want: []string{"t2"}},
		{name: "conjunction", filters: Filters{Search: "bug", Assignee: "riley"}, want: []string{"t1"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := taskIDs(FilterTasks(tasks, tc.filters, features))
			if !slices.Equal(got, tc.want) {
				t.Fatalf("FilterTasks %+v = %v, want %v", tc.filters, got, tc.want)
			}
		})
	}
}

// TestFilterTasksDisabledFeatures verifies disabled features bypass their
// predicates even when the selectors hold values.
func TestFilterTasksDisabledFeatures(t *testing.T) {
	tasks := fixtureCollection(t)
	filters := Filters{Search: "bug", Priority: "high", Assignee: "sam"}

	got := taskIDs(FilterTasks(tasks, filters, Features{EnableSearch: false, EnableFilters: false}))
	if !slices.Equal(got, []string{"t1", "t2", "t3", "t4"}) {
		t.Fatalf("disabled features should pass everything, got %v", got)
	}

	got = taskIDs(FilterTasks(tasks, filters, Features{EnableSearch: true, EnableFilters: false}))
	if !slices.Equal(got, []string{"t1", "t2"}) {
		t.Fatalf("search only should apply just the query, got %v", got)
	}
}

// TestGroupByStatus verifies the grouping contract: every configured column
// key present, per-column order preserved, unknown statuses excluded.
func TestGroupByStatus(t *testing.T) {
	tasks := fixtureCollection(t)
	stray := tasks[0]
	stray.ID = "t9"
	stray.Status = kanban.Status("archived")
	tasks = append(tasks, stray)

	columns := kanban.DefaultColumns()
	groups := GroupByStatus(tasks, columns)

	if len(groups) != len(columns) {
		t.Fatalf("expected %d groups, got %d", len(columns), len(groups))
	}
	for _, column := range columns {
		if _, ok := groups[column.ID]; !ok {
			t.Fatalf("missing group for column %s", column.ID)
		}
	}
	if got := taskIDs(groups[kanban.StatusTodo]); !slices.Equal(got, []string{"t1", "t2"}) {
		t.Fatalf("todo group = %v", got)
	}
	if got := taskIDs(groups[kanban.StatusInReview]); len(got) != 0 {
		t.Fatalf("in-review group should be empty, got %v", got)
	}
	total := 0
	for _, group := range groups {
		for _, task := range group {
			if task.ID == "t9" {
				t.Fatalf("unknown-status task leaked into group %s", task.Status)
			}
			total++
		}
	}
	if total != 4 {
		t.Fatalf("expected 4 grouped tasks, got %d", total)
	}
}

// TestAssigneeOptions verifies distinct non-empty assignees.
func TestAssigneeOptions(t *testing.T) {
	got := AssigneeOptions(fixtureCollection(t))
	slices.Sort(got)
	if !slices.Equal(got, []string{"riley", "sam"}) {
		t.Fatalf("AssigneeOptions = %v", got)
	}
}

// TestNextOption verifies the selector cycle wraps and recovers from stale
// values.
func TestNextOption(t *testing.T) {
	options := []string{FilterAll, "low", "high"}
	if got := nextOption(options, FilterAll); got != "low" {
		t.Fatalf("from all: got %q", got)
	}
	if got := nextOption(options, "high"); got != FilterAll {
		t.Fatalf("wrap: got %q", got)
	}
	if got := nextOption(options, ""); got != "low" {
		t.Fatalf("empty selector: got %q", got)
	}
	if got := nextOption(options, "stale"); got != "low" {
		t.Fatalf("stale selector: got %q", got)
	}
	if got := nextOption(nil, "anything"); got != FilterAll {
		t.Fatalf("empty options: got %q", got)
	}
}
