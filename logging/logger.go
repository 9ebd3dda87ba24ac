// Package logging is the leveled logger shared by every keithnet package.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"

	unilogger "github.com/neuronlabs/uni-logger"
)

const (
	// LDEBUG is the logger DEBUG level.
	LDEBUG = unilogger.DEBUG
	// LINFO is the logger INFO level.
	LINFO = unilogger.INFO
	// LWARNING is the logger WARNING level.
	LWARNING = unilogger.WARNING
	// LERROR is the logger ERROR level.
	LERROR = unilogger.ERROR
	// LCRITICAL is the logger CRITICAL level.
	LCRITICAL = unilogger.CRITICAL
	// LUNKNOWN is the unspecified logger level.
	LUNKNOWN = unilogger.UNKNOWN
)

var (
	mu           sync.RWMutex
	logger       unilogger.LeveledLogger
	currentLevel = LINFO
)

func init() {
	Default()
}

// Default creates and sets a new unilogger.BasicLogger writing to os.Stderr.
func Default() {
	New(os.Stderr, "", log.Ldate|log.Ltime|log.Lshortfile)
}

// New creates a unilogger.BasicLogger that writes to out with the given
// prefix and flags, and makes it the current logger.
func New(out io.Writer, prefix string, flags int) {
	basic := unilogger.NewBasicLogger(out, prefix, flags)
	basic.SetOutputDepth(4)
	SetLogger(basic)
}

// SetLogger sets l as the current logger.
func SetLogger(l unilogger.LeveledLogger) {
	mu.Lock()
	defer mu.Unlock()

	logger = l
	if lvlSetter, ok := l.(unilogger.LevelSetter); ok {
		lvlSetter.SetLevel(currentLevel)
	}
}

// Logger returns the current logger.
func Logger() unilogger.LeveledLogger {
	mu.RLock()
	defer mu.RUnlock()

	return logger
}

// Level returns the current logger level.
func Level() unilogger.Level {
	mu.RLock()
	defer mu.RUnlock()

	return currentLevel
}

// SetLevel sets the level of the current logger.
func SetLevel(level unilogger.Level) error {
	if level == LUNKNOWN {
		return fmt.Errorf("can't set unknown logger level")
	}

	mu.Lock()
	defer mu.Unlock()

	currentLevel = level
	if logger == nil {
		return nil
	}

	lvl, ok := logger.(unilogger.LevelSetter)
	if !ok {
		return fmt.Errorf("logger doesn't implement LevelSetter interface")
	}

	lvl.SetLevel(currentLevel)

	return nil
}

// ParseLevel converts a level name such as "debug" or "warning" into a
// logger level. Unrecognized names map to LUNKNOWN.
func ParseLevel(name string) unilogger.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return LDEBUG
	case "info", "":
		return LINFO
	case "warn", "warning":
		return LWARNING
	case "error":
		return LERROR
	case "critical", "fatal":
		return LCRITICAL
	default:
		return LUNKNOWN
	}
}

// Debugf writes the formatted LDEBUG level log.
func Debugf(format string, args ...any) {
	if l := Logger(); l != nil {
		l.Debugf(format, args...)
	}
}

// Infof writes the formatted LINFO level log.
func Infof(format string, args ...any) {
	if l := Logger(); l != nil {
		l.Infof(format, args...)
	}
}

// Warningf writes the formatted LWARNING level log.
func Warningf(format string, args ...any) {
	if l := Logger(); l != nil {
		l.Warningf(format, args...)
	}
}

// Errorf writes the formatted LERROR level log.
func Errorf(format string, args ...any) {
	if l := Logger(); l != nil {
		l.Errorf(format, args...)
	}
}
