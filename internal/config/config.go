package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/hylla/tavle/board"
	"github.com/hylla/tavle/kanban"
)

type Config struct {
	Database DatabaseConfig `toml:"database"`
	User     UserConfig     `toml:"user"`
	Board    BoardConfig    `toml:"board"`
	Features FeatureConfig  `toml:"features"`
	Server   ServerConfig   `toml:"server"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type UserConfig struct {
	Name string `toml:"name"`
}

type BoardConfig struct {
	Title      string         `toml:"title"`
	Subtitle   string         `toml:"subtitle"`
	ShowHeader bool           `toml:"show_header"`
	ShowStats  bool           `toml:"show_stats"`
	Columns    []ColumnConfig `toml:"columns"`
}

type ColumnConfig struct {
	ID    string `toml:"id"`
	Title string `toml:"title"`
}

type FeatureConfig struct {
	Search     bool `toml:"search"`
	Filters    bool `toml:"filters"`
	ViewToggle bool `toml:"view_toggle"`
	CreateTask bool `toml:"create_task"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

func defaultColumns() []ColumnConfig {
	out := make([]ColumnConfig, 0, 4)
	for _, column := range kanban.DefaultColumns() {
		out = append(out, ColumnConfig{ID: string(column.ID), Title: column.Title})
	}
	return out
}

func Default(dbPath string) Config {
	return Config{
		Database: DatabaseConfig{
			Path: dbPath,
		},
		User: UserConfig{
			Name: "tavle-user",
		},
		Board: BoardConfig{
			Title:      "Kanban Board",
			ShowHeader: true,
			ShowStats:  true,
			Columns:    defaultColumns(),
		},
		Features: FeatureConfig{
			Search:     true,
			Filters:    true,
			ViewToggle: true,
			CreateTask: true,
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:7468",
		},
	}
}

func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("database path is required")
	}

	if len(c.Board.Columns) == 0 {
		return errors.New("board.columns must include at least one column")
	}
	seen := map[string]struct{}{}
	for idx, column := range c.Board.Columns {
		id := strings.TrimSpace(strings.ToLower(column.ID))
		if id == "" {
			return fmt.Errorf("board.columns[%d].id is required", idx)
		}
		if _, ok := seen[id]; ok {
			return fmt.Errorf("board.columns[%d].id is duplicated: %s", idx, id)
		}
		seen[id] = struct{}{}
	}

	if addr := strings.TrimSpace(c.Server.Addr); addr != "" && !strings.Contains(addr, ":") {
		return fmt.Errorf("invalid server.addr: %q", c.Server.Addr)
	}

	return nil
}

// Columns converts the configured columns into board columns. Ids define
// the legal status values for the session.
func (c Config) Columns() ([]kanban.Column, error) {
	out := make([]kanban.Column, 0, len(c.Board.Columns))
	for _, column := range c.Board.Columns {
		built, err := kanban.NewColumn(kanban.Status(strings.TrimSpace(strings.ToLower(column.ID))), column.Title)
		if err != nil {
			return nil, err
		}
		out = append(out, built)
	}
	return out, nil
}

// BoardFeatures converts the feature toggles for the board component.
func (c Config) BoardFeatures() board.Features {
	return board.Features{
		EnableSearch:     c.Features.Search,
		EnableFilters:    c.Features.Filters,
		EnableViewToggle: c.Features.ViewToggle,
		EnableCreateTask: c.Features.CreateTask,
	}
}

// BoardStyle converts the presentation options for the board component.
func (c Config) BoardStyle() board.Style {
	return board.Style{
		BoardTitle:    c.Board.Title,
		BoardSubtitle: c.Board.Subtitle,
		ShowHeader:    c.Board.ShowHeader,
		ShowStats:     c.Board.ShowStats,
	}
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
