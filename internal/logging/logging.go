// Package logging configures the process-wide logrus logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path"
	"runtime"
	"strings"
	"sync"

	formatter "github.com/antonfisher/nested-logrus-formatter"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	logger *logrus.Logger
	once   sync.Once
)

// EnvVar selects the runtime environment. When it is "test" no log file is written.
const EnvVar = "MUDRA_ENV"

// Fields is an alias for logrus.Fields.
type Fields = logrus.Fields

// Options control where and how much the logger writes.
type Options struct {
	Level string
	File  string
}

// Init configures the logger. Only the first call has any effect.
func Init(opts Options) *logrus.Logger {
	once.Do(func() {
		logger = logrus.New()

		level, err := logrus.ParseLevel(opts.Level)
		if err != nil {
			level = logrus.InfoLevel
		}
		logger.SetLevel(level)

		logger.SetFormatter(&formatter.Formatter{
			NoColors:        false,
			TimestampFormat: "02 Jan 06 - 15:04:05.000",
			HideKeys:        false,
			CallerFirst:     true,
			FieldsOrder:     []string{"component"},
			CustomCallerFormatter: func(f *runtime.Frame) string {
				s := strings.Split(f.Function, ".")
				funcName := s[len(s)-1]
				return fmt.Sprintf(" \x1b[%dm[%s:%d][%s()]", 34, path.Base(f.File), f.Line, funcName)
			},
		})

		writers := []io.Writer{os.Stderr}
		if opts.File != "" && os.Getenv(EnvVar) != "test" {
			writers = append(writers, &lumberjack.Logger{
				Filename:   opts.File,
				LocalTime:  true,
				Compress:   true,
				MaxSize:    50,
				MaxAge:     7,
				MaxBackups: 3,
			})
		}

		logger.SetOutput(io.MultiWriter(writers...))
		logger.SetReportCaller(true)
	})

	return logger
}

// Logger returns the process logger, initializing it with defaults if needed.
func Logger() *logrus.Logger {
	return Init(Options{Level: "info"})
}

// Component returns an entry tagged with the given component name.
func Component(name string) *logrus.Entry {
	return Logger().WithField("component", name)
}

// SetLevel changes the level of the process logger.
func SetLevel(level string) error {
	l, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	Logger().SetLevel(l)
	return nil
}
