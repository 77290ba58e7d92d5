// Command tavle runs the kanban board TUI over a local SQLite store, and
// optionally serves the same store to agent tooling over MCP.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/fang"
	charmLog "github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/hylla/tavle/internal/config"
	"github.com/hylla/tavle/internal/mcpserve"
	"github.com/hylla/tavle/internal/platform"
	"github.com/hylla/tavle/internal/store"
	"github.com/hylla/tavle/kanban"
)

// version stores a package-level helper value.
var version = "dev"

// program represents program data used by this package.
type program interface {
	Run() (tea.Model, error)
}

// programFactory stores a package-level helper value.
var programFactory = func(m tea.Model) program {
	return tea.NewProgram(m)
}

// rootFlags holds the flags shared by every subcommand.
type rootFlags struct {
	configPath string
	dbPath     string
	appName    string
	devMode    bool
}

// main handles main.
func main() {
	if err := fang.Execute(context.Background(), newRootCmd(), fang.WithVersion(version)); err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the CLI tree. The bare command runs the board TUI.
func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:          "tavle",
		Short:        "A kanban board for the terminal",
		Long:         "Tavle renders a drag-and-drop kanban board in the terminal,\nbacked by a local SQLite store.",
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runBoard(flags)
		},
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to config TOML")
	root.PersistentFlags().StringVar(&flags.dbPath, "db", "", "path to sqlite database")
	root.PersistentFlags().StringVar(&flags.appName, "app", defaultAppName(), "application name for config/data path resolution")
	root.PersistentFlags().BoolVar(&flags.devMode, "dev", version == "dev", "use dev mode paths (<app>-dev)")

	root.AddCommand(newPathsCmd(flags), newSeedCmd(flags), newServeCmd(flags))
	return root
}

// defaultAppName resolves the app name, honoring the env override.
func defaultAppName() string {
	if env := strings.TrimSpace(os.Getenv("TAVLE_APP_NAME")); env != "" {
		return env
	}
	return "tavle"
}

// resolveConfig turns flags and platform defaults into a validated config.
func resolveConfig(flags *rootFlags) (config.Config, platform.Paths, error) {
	paths, err := platform.Resolve(platform.Options{
		AppName: flags.appName,
		DevMode: flags.devMode,
	})
	if err != nil {
		return config.Config{}, platform.Paths{}, err
	}

	configPath := flags.configPath
	if configPath == "" {
		if env := strings.TrimSpace(os.Getenv("TAVLE_CONFIG")); env != "" {
			configPath = env
		} else {
			configPath = paths.ConfigPath
		}
	}
	dbPath := flags.dbPath
	dbOverridden := strings.TrimSpace(dbPath) != ""
	if !dbOverridden {
		if env := strings.TrimSpace(os.Getenv("TAVLE_DB_PATH")); env != "" {
			dbPath = env
			dbOverridden = true
		} else {
			dbPath = paths.DBPath
		}
	}

	// Make sure the directory exists so the user can drop a config.toml in.
	if err := config.EnsureConfigDir(configPath); err != nil {
		return config.Config{}, platform.Paths{}, fmt.Errorf("ensure config dir: %w", err)
	}
	cfg, err := config.Load(configPath, config.Default(dbPath))
	if err != nil {
		return config.Config{}, platform.Paths{}, fmt.Errorf("load config %q: %w", configPath, err)
	}
	if dbOverridden {
		cfg.Database.Path = dbPath
	}
	return cfg, paths, nil
}

// newLogger builds the runtime logger. The TUI flow discards output to keep
// the rendered board clean.
func newLogger(quiet bool) *charmLog.Logger {
	out := os.Stderr
	options := charmLog.Options{
		ReportTimestamp: true,
		Prefix:          "tavle",
	}
	logger := charmLog.NewWithOptions(out, options)
	if quiet {
		logger.SetLevel(charmLog.FatalLevel)
	}
	return logger
}

// runBoard opens the store and runs the TUI program.
func runBoard(flags *rootFlags) error {
	cfg, _, err := resolveConfig(flags)
	if err != nil {
		return err
	}
	logger := newLogger(true)

	tasks, err := store.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open task store: %w", err)
	}
	defer func() {
		_ = tasks.Close()
	}()

	model, err := newAppModel(cfg, tasks, logger)
	if err != nil {
		return err
	}
	if _, err := programFactory(model).Run(); err != nil {
		return fmt.Errorf("run program: %w", err)
	}
	return nil
}

// newPathsCmd prints the resolved platform paths.
func newPathsCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print resolved config and data paths",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, paths, err := resolveConfig(flags)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "app: %s\n", flags.appName)
			_, _ = fmt.Fprintf(out, "dev_mode: %t\n", flags.devMode)
			_, _ = fmt.Fprintf(out, "config: %s\n", paths.ConfigPath)
			_, _ = fmt.Fprintf(out, "data_dir: %s\n", paths.DataDir)
			_, _ = fmt.Fprintf(out, "db: %s\n", cfg.Database.Path)
			return nil
		},
	}
}

// newSeedCmd fills the store with sample tasks for trying the board out.
func newSeedCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert sample tasks into the store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := resolveConfig(flags)
			if err != nil {
				return err
			}
			logger := newLogger(false)
			tasks, err := store.Open(cfg.Database.Path)
			if err != nil {
				return fmt.Errorf("open task store: %w", err)
			}
			defer func() {
				_ = tasks.Close()
			}()

			seeded, err := seedTasks(cmd.Context(), tasks, cfg.User.Name)
			if err != nil {
				return err
			}
			counts, err := tasks.CountByStatus(cmd.Context())
			if err != nil {
				return fmt.Errorf("count tasks: %w", err)
			}
			total := 0
			for _, n := range counts {
				total += n
			}
			logger.Info("seeded sample tasks", "added", seeded, "total", total, "db", cfg.Database.Path)
			return nil
		},
	}
}

// newServeCmd runs the MCP transport over the store.
func newServeCmd(flags *rootFlags) *cobra.Command {
	var bind string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the task store to agent tooling over MCP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := resolveConfig(flags)
			if err != nil {
				return err
			}
			logger := newLogger(false)
			tasks, err := store.Open(cfg.Database.Path)
			if err != nil {
				return fmt.Errorf("open task store: %w", err)
			}
			defer func() {
				_ = tasks.Close()
			}()

			addr := strings.TrimSpace(bind)
			if addr == "" {
				addr = cfg.Server.Addr
			}
			logger.Info("serving mcp", "addr", addr, "db", cfg.Database.Path)
			return mcpserve.Run(cmd.Context(), mcpserve.Config{
				Bind:          addr,
				ServerName:    flags.appName,
				ServerVersion: version,
				Author:        cfg.User.Name,
			}, tasks)
		},
	}
	cmd.Flags().StringVar(&bind, "bind", "", "listen address (defaults to server.addr from config)")
	return cmd
}

// seedItem describes one sample task.
type seedItem struct {
	title    string
	desc     string
	status   kanban.Status
	priority kanban.Priority
	kind     kanban.Type
	assignee string
	labels   []kanban.Label
}

// seedTasks inserts a small realistic collection.
func seedTasks(ctx context.Context, tasks *store.Store, reporter string) (int, error) {
	now := time.Now()
	items := []seedItem{
		{title: "Set up CI pipeline", desc: "Run tests and lint on every push.", status: kanban.StatusTodo, priority: kanban.PriorityHigh, kind: kanban.TypeTask, assignee: "riley", labels: []kanban.Label{{ID: "infra", Name: "Infra"}}},
		{title: "Fix login redirect loop", desc: "Safari users bounce between `/login` and `/home`.", status: kanban.StatusTodo, priority: kanban.PriorityHighest, kind: kanban.TypeBug, assignee: "sam"},
		{title: "Design onboarding flow", desc: "First-run experience for new workspaces.", status: kanban.StatusInProgress, priority: kanban.PriorityMedium, kind: kanban.TypeStory, assignee: "riley"},
		{title: "Quarterly billing epic", desc: "Umbrella for invoicing work.", status: kanban.StatusInProgress, priority: kanban.PriorityHigh, kind: kanban.TypeEpic},
		{title: "Update dependency licenses", status: kanban.StatusInReview, priority: kanban.PriorityLow, kind: kanban.TypeTask, assignee: "sam"},
		{title: "Ship dark mode", desc: "Released behind a feature flag.", status: kanban.StatusDone, priority: kanban.PriorityMedium, kind: kanban.TypeStory, assignee: "riley"},
	}
	for _, item := range items {
		task, err := kanban.NewTask(kanban.TaskInput{
			ID:          uuid.NewString(),
			Title:       item.title,
			Description: item.desc,
			Status:      item.status,
			Priority:    item.priority,
			Type:        item.kind,
			Reporter:    reporter,
			Assignee:    item.assignee,
			Labels:      item.labels,
		}, now)
		if err != nil {
			return 0, fmt.Errorf("build seed task %q: %w", item.title, err)
		}
		if err := tasks.CreateTask(ctx, task); err != nil {
			return 0, fmt.Errorf("insert seed task %q: %w", item.title, err)
		}
	}
	return len(items), nil
}
