// Package logging configures the application logger. Output goes to a
// file because stdout belongs to the terminal UI.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// New creates a JSON logger writing to the given file path. The caller
// owns closing the returned file.
func New(path string) (*logrus.Logger, io.Closer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
	})
	log.SetOutput(f)
	log.SetLevel(logrus.InfoLevel)

	return log, f, nil
}

// Discard returns a logger that drops everything. Used in tests.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
