// Package config handles loading tally.toml configuration files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/amonks/tally/internal/paths"
	"github.com/amonks/tally/task"
)

// ProjectFile is the per-directory config file name.
const ProjectFile = "tally.toml"

// Environment variables that override file settings.
const (
	EnvDBPath        = "TALLY_DB"
	EnvLogLevel      = "TALLY_LOG_LEVEL"
	EnvAssistModel   = "TALLY_ASSIST_MODEL"
	EnvServerAddr    = "TALLY_ADDR"
	EnvOpenAIKey     = "OPENAI_API_KEY"
	EnvOpenAIBaseURL = "OPENAI_BASE_URL"
)

// Config represents the tally.toml configuration file.
type Config struct {
	Store      Store               `toml:"store"`
	Assist     Assist              `toml:"assist"`
	Server     Server              `toml:"server"`
	Log        Log                 `toml:"log"`
	Categories []task.CategoryRule `toml:"categories"`
}

// Store contains database configuration.
type Store struct {
	// Path is the SQLite database file. "~" expands to the home directory.
	Path string `toml:"path"`
}

// Assist contains language model configuration.
type Assist struct {
	APIKey  string `toml:"api-key"`
	Model   string `toml:"model"`
	BaseURL string `toml:"base-url"`
	// Timeout is a Go duration string such as "15s".
	Timeout string `toml:"timeout"`
}

// Server contains HTTP API configuration.
type Server struct {
	Addr           string   `toml:"addr"`
	AllowedOrigins []string `toml:"allowed-origins"`
}

// Log contains logging configuration.
type Log struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// LoadOptions configures Load.
type LoadOptions struct {
	// Dir is searched for tally.toml and .env.
	Dir string

	// Path, when set, is read instead of Dir/tally.toml and must exist.
	Path string

	// Getenv looks up environment variables. Defaults to os.Getenv.
	Getenv func(string) string
}

// Load merges the global config, the project config and the environment.
// Project settings override global ones; environment variables (including
// those from Dir/.env) override both. Missing files yield an empty config.
func Load(opts LoadOptions) (*Config, error) {
	globalPath, err := paths.GlobalConfigPath()
	if err != nil {
		return nil, err
	}

	globalCfg, globalMeta, err := loadConfigFile(globalPath, false)
	if err != nil {
		return nil, err
	}

	projectPath := filepath.Join(opts.Dir, ProjectFile)
	required := false
	if opts.Path != "" {
		projectPath = opts.Path
		required = true
	}
	projectCfg, projectMeta, err := loadConfigFile(projectPath, required)
	if err != nil {
		return nil, err
	}

	merged := mergeConfigs(globalCfg, projectCfg, globalMeta, projectMeta)

	getenv, err := envLookup(opts)
	if err != nil {
		return nil, err
	}
	applyEnv(merged, getenv)

	return merged, nil
}

func loadConfigFile(path string, required bool) (*Config, toml.MetaData, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && !required {
		return &Config{}, toml.MetaData{}, nil
	}
	if err != nil {
		return nil, toml.MetaData{}, fmt.Errorf("read config file %s: %w", path, err)
	}

	var cfg Config
	meta, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, toml.MetaData{}, fmt.Errorf("parse config file %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, toml.MetaData{}, fmt.Errorf("parse config file %s: unknown key %q", path, undecoded[0].String())
	}
	if err := task.ValidateCategoryRules(cfg.Categories); err != nil {
		return nil, toml.MetaData{}, fmt.Errorf("parse config file %s: %w", path, err)
	}

	return &cfg, meta, nil
}

func mergeConfigs(globalCfg, projectCfg *Config, globalMeta, projectMeta toml.MetaData) *Config {
	if globalCfg == nil {
		globalCfg = &Config{}
	}
	if projectCfg == nil {
		projectCfg = &Config{}
	}

	merged := Config{}
	merged.Store.Path = mergeString(projectMeta.IsDefined("store", "path"), projectCfg.Store.Path, globalCfg.Store.Path)
	merged.Assist.APIKey = mergeString(projectMeta.IsDefined("assist", "api-key"), projectCfg.Assist.APIKey, globalCfg.Assist.APIKey)
	merged.Assist.Model = mergeString(projectMeta.IsDefined("assist", "model"), projectCfg.Assist.Model, globalCfg.Assist.Model)
	merged.Assist.BaseURL = mergeString(projectMeta.IsDefined("assist", "base-url"), projectCfg.Assist.BaseURL, globalCfg.Assist.BaseURL)
	merged.Assist.Timeout = mergeString(projectMeta.IsDefined("assist", "timeout"), projectCfg.Assist.Timeout, globalCfg.Assist.Timeout)
	merged.Server.Addr = mergeString(projectMeta.IsDefined("server", "addr"), projectCfg.Server.Addr, globalCfg.Server.Addr)
	merged.Log.Level = mergeString(projectMeta.IsDefined("log", "level"), projectCfg.Log.Level, globalCfg.Log.Level)
	merged.Log.Format = mergeString(projectMeta.IsDefined("log", "format"), projectCfg.Log.Format, globalCfg.Log.Format)

	if projectMeta.IsDefined("server", "allowed-origins") {
		merged.Server.AllowedOrigins = append([]string(nil), projectCfg.Server.AllowedOrigins...)
	} else if globalMeta.IsDefined("server", "allowed-origins") {
		merged.Server.AllowedOrigins = append([]string(nil), globalCfg.Server.AllowedOrigins...)
	}
	if projectMeta.IsDefined("categories") {
		merged.Categories = append([]task.CategoryRule(nil), projectCfg.Categories...)
	} else if globalMeta.IsDefined("categories") {
		merged.Categories = append([]task.CategoryRule(nil), globalCfg.Categories...)
	}

	return &merged
}

func mergeString(projectDefined bool, projectValue, globalValue string) string {
	value := globalValue
	if projectDefined {
		value = projectValue
	}
	return strings.TrimSpace(value)
}

// envLookup prefers the process environment and falls back to Dir/.env.
func envLookup(opts LoadOptions) (func(string) string, error) {
	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	dotenv := map[string]string{}
	envPath := filepath.Join(opts.Dir, ".env")
	if _, err := os.Stat(envPath); err == nil {
		dotenv, err = godotenv.Read(envPath)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", envPath, err)
		}
	}

	return func(key string) string {
		if value := strings.TrimSpace(getenv(key)); value != "" {
			return value
		}
		return strings.TrimSpace(dotenv[key])
	}, nil
}

func applyEnv(cfg *Config, getenv func(string) string) {
	override := func(target *string, key string) {
		if value := getenv(key); value != "" {
			*target = value
		}
	}
	override(&cfg.Store.Path, EnvDBPath)
	override(&cfg.Log.Level, EnvLogLevel)
	override(&cfg.Assist.Model, EnvAssistModel)
	override(&cfg.Assist.APIKey, EnvOpenAIKey)
	override(&cfg.Assist.BaseURL, EnvOpenAIBaseURL)
	override(&cfg.Server.Addr, EnvServerAddr)
}

// DBPath returns the configured database path or the default one.
func (c *Config) DBPath() (string, error) {
	if c.Store.Path == "" {
		return paths.DefaultDBPath()
	}
	return paths.ExpandHome(c.Store.Path)
}

// AssistTimeout parses the configured timeout. Zero means "use the default".
func (c *Config) AssistTimeout() (time.Duration, error) {
	if c.Assist.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Assist.Timeout)
	if err != nil {
		return 0, fmt.Errorf("assist timeout %q: %w", c.Assist.Timeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("assist timeout %q: must be positive", c.Assist.Timeout)
	}
	return d, nil
}

// CategoryRules returns the configured keyword table, or the built-in one.
func (c *Config) CategoryRules() []task.CategoryRule {
	if len(c.Categories) == 0 {
		return task.DefaultCategoryRules
	}
	return c.Categories
}
