// Package config loads the optional lazynode.yaml project configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up in the project root.
const FileName = "lazynode.yaml"

// Defaults applied by Resolve.
const (
	DefaultElements   = 1000
	DefaultBatchSize  = 100
	DefaultCellWidth  = 320
	DefaultCellHeight = 44
)

// Config represents the optional lazynode.yaml configuration.
type Config struct {
	App    AppConfig    `yaml:"app"`
	Engine EngineConfig `yaml:"engine"`
	Bench  BenchConfig  `yaml:"bench"`
}

// AppConfig contains project metadata.
type AppConfig struct {
	Name string `yaml:"name,omitempty"`
}

// EngineConfig contains runtime settings.
type EngineConfig struct {
	Version string `yaml:"version,omitempty"`
	Workers int    `yaml:"workers,omitempty"`
	Verbose bool   `yaml:"verbose,omitempty"`
}

// BenchConfig describes the simulated collection used by the bench command.
type BenchConfig struct {
	Elements   int     `yaml:"elements,omitempty"`
	BatchSize  int     `yaml:"batch_size,omitempty"`
	CellWidth  float64 `yaml:"cell_width,omitempty"`
	CellHeight float64 `yaml:"cell_height,omitempty"`
}

// Resolved contains resolved configuration values.
type Resolved struct {
	Root          string
	ModulePath    string
	AppName       string
	EngineVersion string
	Workers       int
	Verbose       bool
	Elements      int
	BatchSize     int
	CellWidth     float64
	CellHeight    float64
}

// LoadOptional reads lazynode.yaml if present.
func LoadOptional(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}

	return &cfg, nil
}

// Resolve loads lazynode.yaml (if present), resolves defaults and validates
// the result.
func Resolve(dir string) (*Resolved, error) {
	modulePath, err := modulePath(dir)
	if err != nil {
		return nil, err
	}

	cfg, err := LoadOptional(dir)
	if err != nil {
		return nil, err
	}

	appName := strings.TrimSpace(cfg.App.Name)
	if appName == "" {
		appName = defaultAppName(modulePath, dir)
	}

	engineVersion := strings.TrimSpace(cfg.Engine.Version)
	if engineVersion == "" {
		engineVersion = "latest"
	}
	if err := validateEngineVersion(engineVersion); err != nil {
		return nil, err
	}

	r := &Resolved{
		Root:          dir,
		ModulePath:    modulePath,
		AppName:       appName,
		EngineVersion: engineVersion,
		Workers:       orDefault(cfg.Engine.Workers, runtime.GOMAXPROCS(0)),
		Verbose:       cfg.Engine.Verbose,
		Elements:      orDefault(cfg.Bench.Elements, DefaultElements),
		BatchSize:     orDefault(cfg.Bench.BatchSize, DefaultBatchSize),
		CellWidth:     orDefault(cfg.Bench.CellWidth, DefaultCellWidth),
		CellHeight:    orDefault(cfg.Bench.CellHeight, DefaultCellHeight),
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Validate checks values that may also be overridden on the command line.
func (r *Resolved) Validate() error {
	switch {
	case r.Workers < 1:
		return fmt.Errorf("engine.workers must be positive (got %d)", r.Workers)
	case r.Elements < 1:
		return fmt.Errorf("bench.elements must be positive (got %d)", r.Elements)
	case r.BatchSize < 1:
		return fmt.Errorf("bench.batch_size must be positive (got %d)", r.BatchSize)
	case r.CellWidth <= 0 || r.CellHeight <= 0:
		return fmt.Errorf("bench cell size must be positive (got %gx%g)", r.CellWidth, r.CellHeight)
	}
	return nil
}

// FindProjectRoot walks up from the current directory to find go.mod or
// lazynode.yaml. It falls back to the current directory.
func FindProjectRoot() (string, error) {
	start, err := os.Getwd()
	if err != nil {
		return "", err
	}

	dir := start
	for {
		for _, marker := range []string{FileName, "go.mod"} {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return start, nil
		}
		dir = parent
	}
}

// modulePath returns the module path from go.mod, or "" when there is none.
func modulePath(dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read go.mod: %w", err)
	}
	path := modfile.ModulePath(data)
	if path == "" {
		return "", fmt.Errorf("could not determine module path from go.mod")
	}
	return path, nil
}

func defaultAppName(modulePath, dir string) string {
	base := filepath.Base(dir)
	if modulePath != "" {
		modName, _, ok := module.SplitPathVersion(modulePath)
		if ok {
			parts := strings.Split(modName, "/")
			base = parts[len(parts)-1]
		}
	}
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "lazynode_app"
	}
	return base
}

func validateEngineVersion(v string) error {
	if v == "latest" {
		return nil
	}
	if !semver.IsValid(v) {
		return fmt.Errorf("engine.version must be \"latest\" or a semantic version like v1.2.3 (got %q)", v)
	}
	return nil
}

func orDefault[T int | float64](v, def T) T {
	if v == 0 {
		return def
	}
	return v
}
