package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/OjusAnilNaik/To-do-List/remote"
)

const (
	storeFile   = "file"
	storeRedis  = "redis"
	storeRemote = "remote"
)

// config selects the backend. Values are layered: defaults, then the YAML
// file, then TODO_* environment variables, then flags.
type config struct {
	Store     string        `yaml:"store"`
	File      string        `yaml:"file"`
	Redis     string        `yaml:"redis"`
	Namespace string        `yaml:"namespace"`
	API       string        `yaml:"api"`
	Token     string        `yaml:"token"`
	Timeout   time.Duration `yaml:"timeout"`
}

func defaultConfig() config {
	return config{
		Store:     storeFile,
		File:      filepath.Join(dataDir(), "todo", "notes.json"),
		Namespace: "todo",
		API:       "http://localhost:8080",
		Timeout:   remote.DefaultTimeout,
	}
}

func dataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share")
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "todo", "config.yaml")
}

// loadFile overlays the YAML file at path. Keys absent from the file keep
// their current value.
func (c *config) loadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func (c *config) applyEnv() error {
	for name, dst := range map[string]*string{
		"TODO_STORE":     &c.Store,
		"TODO_FILE":      &c.File,
		"TODO_REDIS":     &c.Redis,
		"TODO_NAMESPACE": &c.Namespace,
		"TODO_API":       &c.API,
		"TODO_TOKEN":     &c.Token,
	} {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}
	if v := os.Getenv("TODO_API_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return fmt.Errorf("invalid TODO_API_TIMEOUT: %q", v)
		}
		c.Timeout = d
	}
	return nil
}

// applyFlags copies only the flags the user set explicitly.
func (c *config) applyFlags(flags *pflag.FlagSet, set config) {
	if flags.Changed("store") {
		c.Store = set.Store
	}
	if flags.Changed("file") {
		c.File = set.File
	}
	if flags.Changed("redis") {
		c.Redis = set.Redis
	}
	if flags.Changed("api") {
		c.API = set.API
	}
	if flags.Changed("token") {
		c.Token = set.Token
	}
	if flags.Changed("timeout") {
		c.Timeout = set.Timeout
	}
}

func (c config) validate() error {
	switch c.Store {
	case storeFile:
		if c.File == "" {
			return errors.New("store file needs a file path")
		}
	case storeRedis:
		if c.Redis == "" {
			return errors.New("store redis needs a redis address")
		}
	case storeRemote:
		if c.API == "" {
			return errors.New("store remote needs an API URL")
		}
	default:
		return fmt.Errorf("unknown store %q (want file, redis or remote)", c.Store)
	}
	return nil
}

// resolveConfig builds the effective config. A missing default config file
// is ignored; a missing explicit one is an error.
func resolveConfig(path string, flags *pflag.FlagSet, set config) (config, error) {
	cfg := defaultConfig()
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath()
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil && (explicit || !errors.Is(err, fs.ErrNotExist)) {
			return cfg, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	cfg.applyFlags(flags, set)
	return cfg, cfg.validate()
}
