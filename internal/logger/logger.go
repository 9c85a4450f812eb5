package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gitlab.com/dirk.krummacker/contacts-api/internal/config"
)

// New returns a logger that writes to stdout with the configured level and format. Unknown levels
// fall back to info and unknown formats to JSON; both cases are reported on the new logger.
func New(cfg config.LogConfig) *logrus.Logger {
	return NewWithOutput(cfg, os.Stdout)
}

// NewWithOutput is like New but writes to the given writer.
func NewWithOutput(cfg config.LogConfig, out io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)

	level, levelErr := logrus.ParseLevel(cfg.Level)
	if levelErr != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	knownFormat := true
	switch strings.ToLower(cfg.Format) {
	case "text":
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	default:
		knownFormat = false
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	if levelErr != nil {
		log.WithError(levelErr).Warn("could not parse log level, using info")
	}
	if !knownFormat {
		log.WithField("format", cfg.Format).Warn("unknown log format, using json")
	}
	return log
}

// Discard returns a logger that drops every entry. It is meant for tests.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
