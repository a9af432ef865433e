// Package logging builds the logrus logger shared by the CLI and the server.
package logging

import (
	"fmt"
	"io"
	"strings"

	log "github.com/sirupsen/logrus"
)

// DefaultLevel is used when no level is configured.
const DefaultLevel = log.WarnLevel

// New returns a logger writing to out at the given level. format is "text"
// (the default) or "json".
func New(out io.Writer, level, format string) (*log.Logger, error) {
	logger := log.New()
	logger.SetOutput(out)

	lvl := DefaultLevel
	if strings.TrimSpace(level) != "" {
		parsed, err := log.ParseLevel(strings.TrimSpace(level))
		if err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
		lvl = parsed
	}
	logger.SetLevel(lvl)

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "text":
		logger.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
	case "json":
		logger.SetFormatter(&log.JSONFormatter{})
	default:
		return nil, fmt.Errorf("log format %q: expected text or json", format)
	}
	return logger, nil
}
