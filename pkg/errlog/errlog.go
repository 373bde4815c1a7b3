// Package errlog centralizes log-level configuration and the
// debug/no-debug error-printing convention shared across the agent.
package errlog

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// DebugOutput controls whether LogError also prints a stack trace.
var DebugOutput = false

// SetLevel parses a level name and applies it to the global logger.
func SetLevel(s string) error {
	switch s {
	case "panic":
		logrus.SetLevel(logrus.PanicLevel)
	case "fatal":
		logrus.SetLevel(logrus.FatalLevel)
	case "error":
		logrus.SetLevel(logrus.ErrorLevel)
	case "warn":
		logrus.SetLevel(logrus.WarnLevel)
	case "info":
		logrus.SetLevel(logrus.InfoLevel)
	case "debug":
		logrus.SetLevel(logrus.DebugLevel)
		DebugOutput = true
	case "trace":
		logrus.SetLevel(logrus.TraceLevel)
		DebugOutput = true
	default:
		return fmt.Errorf("unknown log level %q", s)
	}
	return nil
}

// LogError logs an error, optionally with the %+v stack trace that
// github.com/pkg/errors attaches to wrapped errors.
func LogError(err error) {
	if err == nil {
		return
	}
	if DebugOutput {
		logrus.WithField("trace", fmt.Sprintf("%+v", err)).Error(err)
	} else {
		logrus.Error(err.Error())
	}
}
