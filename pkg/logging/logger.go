package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync/atomic"

	"github.com/fatih/color"

	"github.com/heicready/heicready/pkg/heicready"
)

func init() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.Ldate | log.Ltime)
	currentLevel.Store(uint32(LevelInfo))
}

// currentLevel is the process-wide verbosity gate consulted by every
// Logger. It defaults to LevelInfo, which is why heicreadyd logs without
// any flags having to be passed.
var currentLevel atomic.Uint32

// SetLevel changes the process-wide verbosity gate. It is normally called
// once at startup from a parsed CLI flag or config value.
func SetLevel(level Level) {
	currentLevel.Store(uint32(level))
}

// CurrentLevel returns the process-wide verbosity gate's current value.
func CurrentLevel() Level {
	return Level(currentLevel.Load())
}

func enabled(level Level) bool {
	return CurrentLevel() >= level
}

// Logger is the core logger type. It has the property that it still
// functions if nil, but doesn't log anything, so that components can be
// constructed without a logger in tests without guarding every call site.
// It is safe for concurrent usage.
type Logger struct {
	// prefix is any hierarchical prefix specified for the logger.
	prefix string
}

// RootLogger is the root logger from which all other loggers derive.
var RootLogger = &Logger{}

// Sublogger creates a new sublogger with the specified name appended to the
// current prefix.
func (l *Logger) Sublogger(name string) *Logger {
	if l == nil {
		return nil
	}
	prefix := name
	if l.prefix != "" {
		prefix = l.prefix + "." + name
	}
	return &Logger{prefix: prefix}
}

// output is the internal logging method.
func (l *Logger) output(line string) {
	if l.prefix != "" {
		line = fmt.Sprintf("[%s] %s", l.prefix, line)
	}
	log.Output(3, line)
}

// Info logs basic execution information.
func (l *Logger) Info(v ...interface{}) {
	if l != nil && enabled(LevelInfo) {
		l.output(fmt.Sprint(v...))
	}
}

// Infof logs basic execution information with Printf semantics.
func (l *Logger) Infof(format string, v ...interface{}) {
	if l != nil && enabled(LevelInfo) {
		l.output(fmt.Sprintf(format, v...))
	}
}

// Debug logs advanced execution information, but only if debugging is
// enabled via the HEICREADY_DEBUG environment variable or the log level has
// been raised to LevelDebug (otherwise it's a no-op).
func (l *Logger) Debug(v ...interface{}) {
	if l != nil && (heicready.DebugEnabled || enabled(LevelDebug)) {
		l.output(fmt.Sprint(v...))
	}
}

// Debugf logs advanced execution information with Printf semantics, but only
// if debugging is enabled via the HEICREADY_DEBUG environment variable or the
// log level has been raised to LevelDebug.
func (l *Logger) Debugf(format string, v ...interface{}) {
	if l != nil && (heicready.DebugEnabled || enabled(LevelDebug)) {
		l.output(fmt.Sprintf(format, v...))
	}
}

// Warn logs a non-fatal problem with a yellow "Warning:" prefix.
func (l *Logger) Warn(v ...interface{}) {
	if l != nil && enabled(LevelWarn) {
		l.output(color.YellowString("Warning: %s", fmt.Sprint(v...)))
	}
}

// Warnf logs a non-fatal problem with Printf semantics.
func (l *Logger) Warnf(format string, v ...interface{}) {
	if l != nil && enabled(LevelWarn) {
		l.output(color.YellowString("Warning: %s", fmt.Sprintf(format, v...)))
	}
}

// Error logs an error condition with a red "Error:" prefix.
func (l *Logger) Error(err error) {
	if l != nil && enabled(LevelError) {
		l.output(color.RedString("Error: %v", err))
	}
}

// Writer returns an io.Writer that logs each line written to it via Info.
func (l *Logger) Writer() io.Writer {
	if l == nil {
		return io.Discard
	}
	return &lineWriter{log: l.Info}
}

// lineWriter splits a byte stream into lines and forwards each complete line
// to a logging callback.
type lineWriter struct {
	log    func(...interface{})
	buffer []byte
}

// Write implements io.Writer.
func (w *lineWriter) Write(p []byte) (int, error) {
	w.buffer = append(w.buffer, p...)
	for {
		index := -1
		for i, b := range w.buffer {
			if b == '\n' {
				index = i
				break
			}
		}
		if index == -1 {
			break
		}
		line := w.buffer[:index]
		if len(line) > 0 && line[len(line)-1] == '\r' {
			line = line[:len(line)-1]
		}
		w.log(string(line))
		w.buffer = w.buffer[index+1:]
	}
	return len(p), nil
}
