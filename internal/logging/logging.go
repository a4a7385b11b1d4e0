// Package logging sets up the process-wide logrus logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

// EnvLogLevel overrides the configured level when set.
const EnvLogLevel = "ASMQC_LOG_LEVEL"

// Configure sets the standard logger's level and format (text or json).
// Logs go to w, or stderr when w is nil, so stdout carries only results.
func Configure(level, format string, w io.Writer) error {
	if env := strings.TrimSpace(os.Getenv(EnvLogLevel)); env != "" {
		level = env
	}
	if level == "" {
		level = "info"
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}

	switch strings.ToLower(format) {
	case "", "text":
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	default:
		return fmt.Errorf("log format %q: want text or json", format)
	}

	if w == nil {
		w = os.Stderr
	}
	log.SetOutput(w)
	log.SetLevel(lvl)
	return nil
}
