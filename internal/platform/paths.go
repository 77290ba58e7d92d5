// Package platform resolves where tavle keeps its config file and task
// database on the current OS.
package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Paths locates the two files tavle owns on disk.
type Paths struct {
	ConfigPath string
	DataDir    string
	DBPath     string
}

// Options select the app directory name.
type Options struct {
	AppName string
	DevMode bool
}

// Resolve returns the config and data locations for the current OS.
func Resolve(opts Options) (Paths, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return Paths{}, fmt.Errorf("user config dir: %w", err)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return Paths{}, fmt.Errorf("user home dir: %w", err)
	}
	return resolve(runtime.GOOS, os.Getenv, configDir, home, opts)
}

// resolve is the testable core; env supplies environment lookups.
func resolve(goos string, env func(string) string, userConfigDir, home string, opts Options) (Paths, error) {
	if userConfigDir == "" || home == "" {
		return Paths{}, fmt.Errorf("empty base dirs")
	}
	app := strings.TrimSpace(opts.AppName)
	if app == "" {
		app = "tavle"
	}
	if opts.DevMode {
		app += "-dev"
	}

	configBase := userConfigDir
	dataBase := userConfigDir
	switch goos {
	case "linux":
		if v := strings.TrimSpace(env("XDG_CONFIG_HOME")); v != "" {
			configBase = v
		}
		dataBase = filepath.Join(home, ".local", "share")
		if v := strings.TrimSpace(env("XDG_DATA_HOME")); v != "" {
			dataBase = v
		}
	case "windows":
		if v := strings.TrimSpace(env("LOCALAPPDATA")); v != "" {
			dataBase = v
		}
	}

	dataDir := filepath.Join(dataBase, app)
	return Paths{
		ConfigPath: filepath.Join(configBase, app, "config.toml"),
		DataDir:    dataDir,
		DBPath:     filepath.Join(dataDir, "tasks.db"),
	}, nil
}
