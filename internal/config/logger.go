package config

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger builds the application logger: text output in dev, JSON
// otherwise, level from LOG_LEVEL (info when unparsable).
func NewLogger(cfg *Config) *logrus.Logger {
	return newLogger(cfg, os.Stdout)
}

func newLogger(cfg *Config, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	if cfg.App.Dev {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

// LogError writes err with the module and function it happened in.
func LogError(logger logrus.FieldLogger, module, funcName string, fields logrus.Fields, err error) {
	entry := logger.WithFields(logrus.Fields{"module": module, "funcName": funcName})
	if len(fields) > 0 {
		entry = entry.WithFields(fields)
	}
	entry.Error(err.Error())
}
