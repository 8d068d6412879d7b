// Package logging provides pre-configured loggers for recap components.
package logging

import (
	"os"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

var (
	loggers   = make(map[string]*logrus.Entry)
	loggersMu sync.Mutex
)

// NewLogger creates and returns a pre-configured logger for a specific
// component. It uses a singleton pattern per component to avoid
// re-initializing.
func NewLogger(component string) *logrus.Entry {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	if logger, exists := loggers[component]; exists {
		return logger
	}

	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	levelStr := "info"
	if env := os.Getenv("RECAP_LOG_LEVEL"); env != "" {
		levelStr = env
	}
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	// Colored output only when stderr is a real terminal; logs piped into
	// files or other tools stay plain.
	tty := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	logger.SetFormatter(&logrus.TextFormatter{
		ForceColors:            tty,
		DisableColors:          !tty,
		FullTimestamp:          true,
		TimestampFormat:        "15:04:05",
		DisableLevelTruncation: true,
	})

	entry := logger.WithField("component", component)
	loggers[component] = entry
	return entry
}

// SetLevel overrides the level for an already-created component logger.
// Used by the CLI --debug flag.
func SetLevel(component string, level logrus.Level) {
	NewLogger(component).Logger.SetLevel(level)
}
