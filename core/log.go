package core

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// DebugWriter is a function type for writing one log line
type DebugWriter func(string)

// logger is the package logger. Platform code redirects it with SetLogWriter.
var logger = newLogger(io.Discard)

func newLogger(out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true, // no RTC on the MCU targets
		DisableColors:    true,
	})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// Logger returns the package logger
func Logger() *logrus.Logger {
	return logger
}

// SetLogWriter routes log output to a platform-specific writer
// (UART, USB CDC, stderr). Each log line is delivered without its newline.
func SetLogWriter(writer DebugWriter) {
	if writer == nil {
		logger.SetOutput(io.Discard)
		return
	}
	logger.SetOutput(lineWriter(writer))
}

// SetDebugEnabled enables or disables debug-level output
func SetDebugEnabled(enabled bool) {
	if enabled {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}
}

// IsDebugEnabled returns whether debug output is enabled
func IsDebugEnabled() bool {
	return logger.IsLevelEnabled(logrus.DebugLevel)
}

// lineWriter adapts a DebugWriter to io.Writer
type lineWriter DebugWriter

func (w lineWriter) Write(p []byte) (int, error) {
	for _, line := range strings.Split(strings.TrimRight(string(p), "\r\n"), "\n") {
		w(line)
	}
	return len(p), nil
}
