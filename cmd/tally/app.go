package main

import (
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/amonks/tally/assist"
	"github.com/amonks/tally/dateparse"
	"github.com/amonks/tally/internal/config"
	"github.com/amonks/tally/internal/logging"
	"github.com/amonks/tally/internal/paths"
	"github.com/amonks/tally/task"
)

// app bundles what a command needs: config, a logger and an open store.
type app struct {
	cfg    *config.Config
	logger *log.Logger
	store  *task.Store
}

func loadConfig() (*config.Config, error) {
	cwd, err := paths.WorkingDir()
	if err != nil {
		return nil, err
	}
	return config.Load(config.LoadOptions{Dir: cwd, Path: rootConfigPath})
}

func newLogger(cfg *config.Config) (*log.Logger, error) {
	level := cfg.Log.Level
	if rootLogLevel != "" {
		level = rootLogLevel
	}
	return logging.New(os.Stderr, level, cfg.Log.Format)
}

func resolveDBPath(cfg *config.Config) (string, error) {
	if strings.TrimSpace(rootDBPath) != "" {
		return paths.ExpandHome(rootDBPath)
	}
	return cfg.DBPath()
}

// openApp loads configuration and opens the task store. Callers must Close it.
func openApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}
	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return nil, err
	}
	logger.WithField("path", dbPath).Debug("opening task store")

	store, err := task.Open(dbPath, task.OpenOptions{CategoryRules: cfg.CategoryRules()})
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, logger: logger, store: store}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

func (a *app) assistClient() (*assist.Client, error) {
	timeout, err := a.cfg.AssistTimeout()
	if err != nil {
		return nil, err
	}
	client := assist.New(assist.Options{
		APIKey:  a.cfg.Assist.APIKey,
		Model:   a.cfg.Assist.Model,
		BaseURL: a.cfg.Assist.BaseURL,
		Timeout: timeout,
		Logger:  a.logger,
		Now:     a.store.Now,
	})
	if !client.Enabled() {
		a.logger.Debugf("assist disabled: set %s to enable it", config.EnvOpenAIKey)
	}
	return client, nil
}

// resolveDue parses a due date. Text that can't be parsed is logged and
// dropped rather than failing the command.
func resolveDue(text string, now time.Time, logger log.FieldLogger) *time.Time {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	due, err := dateparse.Parse(text, now)
	if err != nil {
		logger.WithError(err).WithField("due", text).Warn("ignoring due date")
		return nil
	}
	return due
}
