package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hylla/tavle/kanban"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default("/tmp/tavle.db")
	if cfg.Database.Path != "/tmp/tavle.db" {
		t.Fatalf("unexpected db path %q", cfg.Database.Path)
	}
	if cfg.Board.Title != "Kanban Board" || !cfg.Board.ShowHeader || !cfg.Board.ShowStats {
		t.Fatalf("unexpected board defaults %+v", cfg.Board)
	}
	if len(cfg.Board.Columns) != 4 {
		t.Fatalf("expected four default columns, got %d", len(cfg.Board.Columns))
	}
	features := cfg.BoardFeatures()
	if !features.EnableSearch || !features.EnableFilters || !features.EnableViewToggle || !features.EnableCreateTask {
		t.Fatalf("expected all features enabled by default, got %+v", features)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	defaults := Default("/tmp/tavle.db")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"), defaults)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.Path != defaults.Database.Path {
		t.Fatalf("expected default db path, got %q", cfg.Database.Path)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[database]
path = "/custom/tavle.db"

[user]
name = "casey"

[board]
title = "Sprint Board"
show_header = true
show_stats = false

[[board.columns]]
id = "backlog"
title = "Backlog"

[[board.columns]]
id = "doing"
title = "Doing"

[features]
search = true
filters = false
view_toggle = true
create_task = true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(path, Default("/tmp/default.db"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.Path != "/custom/tavle.db" {
		t.Fatalf("unexpected db path %q", cfg.Database.Path)
	}
	if cfg.User.Name != "casey" {
		t.Fatalf("unexpected user name %q", cfg.User.Name)
	}
	if cfg.Board.ShowStats {
		t.Fatal("expected stats hidden from config override")
	}
	if cfg.BoardFeatures().EnableFilters {
		t.Fatal("expected filters disabled from config override")
	}

	columns, err := cfg.Columns()
	if err != nil {
		t.Fatalf("Columns() error = %v", err)
	}
	if len(columns) != 2 || columns[0].ID != kanban.Status("backlog") || columns[1].Title != "Doing" {
		t.Fatalf("unexpected columns %+v", columns)
	}
}

func TestLoadRejectsDuplicateColumnIDs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[database]
path = "/custom/tavle.db"

[[board.columns]]
id = "todo"
title = "To Do"

[[board.columns]]
id = "todo"
title = "Also To Do"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if _, err := Load(path, Default("/tmp/default.db")); err == nil {
		t.Fatal("expected error for duplicated column ids")
	}
}

func TestValidateRejectsBadAddr(t *testing.T) {
	cfg := Default("/tmp/tavle.db")
	cfg.Server.Addr = "not-an-addr"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid server addr")
	}
}

func TestEnsureConfigDir(t *testing.T) {
	target := filepath.Join(t.TempDir(), "a", "b", "config.toml")
	if err := EnsureConfigDir(target); err != nil {
		t.Fatalf("EnsureConfigDir() error = %v", err)
	}
	if _, err := os.Stat(filepath.Dir(target)); err != nil {
		t.Fatalf("expected dir to exist, stat error %v", err)
	}
}
