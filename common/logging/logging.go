// Package logging implements support for structured, leveled logging on top
// of go-kit's log package.
//
// Loggers may be obtained at package initialization time, before the
// backend is configured; they are transparently switched over once
// Initialize is called.
package logging

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/spf13/pflag"
)

var (
	backend = logBackend{
		baseLogger:   log.NewNopLogger(),
		defaultLevel: LevelError,
	}

	_ pflag.Value = (*Level)(nil)
	_ pflag.Value = (*Format)(nil)
)

// Format is a logging format.
type Format uint

const (
	// FmtLogfmt is the "logfmt" logging format.
	FmtLogfmt Format = iota
	// FmtJSON is the JSON logging format.
	FmtJSON
)

// String returns the string representation of a Format.
func (f *Format) String() string {
	switch *f {
	case FmtLogfmt:
		return "logfmt"
	case FmtJSON:
		return "JSON"
	default:
		panic("logging: unsupported format")
	}
}

// Set sets the Format to the value specified by the provided string.
func (f *Format) Set(s string) error {
	switch strings.ToUpper(s) {
	case "LOGFMT":
		*f = FmtLogfmt
	case "JSON":
		*f = FmtJSON
	default:
		return fmt.Errorf("logging: invalid log format: '%s'", s)
	}
	return nil
}

// Type returns the list of supported Formats.
func (f *Format) Type() string {
	return "[logfmt,JSON]"
}

// Level is a log level.
type Level uint

const (
	// LevelDebug is the log level for debug messages.
	LevelDebug Level = iota
	// LevelInfo is the log level for informative messages.
	LevelInfo
	// LevelWarn is the log level for warning messages.
	LevelWarn
	// LevelError is the log level for error messages.
	LevelError
)

func (l Level) toOption() level.Option {
	switch l {
	case LevelDebug:
		return level.AllowDebug()
	case LevelInfo:
		return level.AllowInfo()
	case LevelWarn:
		return level.AllowWarn()
	case LevelError:
		return level.AllowError()
	default:
		panic("logging: unsupported log level")
	}
}

// String returns the string representation of a Level.
func (l *Level) String() string {
	switch *l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		panic("logging: unsupported log level")
	}
}

// Set sets the Level to the value specified by the provided string.
func (l *Level) Set(s string) error {
	switch strings.ToUpper(s) {
	case "DEBUG":
		*l = LevelDebug
	case "INFO":
		*l = LevelInfo
	case "WARN":
		*l = LevelWarn
	case "ERROR":
		*l = LevelError
	default:
		return fmt.Errorf("logging: invalid log level: '%s'", s)
	}
	return nil
}

// Type returns the list of supported Levels.
func (l *Level) Type() string {
	return "[DEBUG,INFO,WARN,ERROR]"
}

// Logger is a logger instance.
type Logger struct {
	logger log.Logger
	level  Level
	module string
}

func (l *Logger) log(lvl Level, leveled func(log.Logger) log.Logger, msg string, keyvals []interface{}) {
	if l.level > lvl {
		return
	}
	keyvals = append([]interface{}{"msg", msg}, keyvals...)
	_ = leveled(l.logger).Log(keyvals...)
}

// Debug logs the message and key value pairs at the Debug log level.
func (l *Logger) Debug(msg string, keyvals ...interface{}) {
	l.log(LevelDebug, level.Debug, msg, keyvals)
}

// Info logs the message and key value pairs at the Info log level.
func (l *Logger) Info(msg string, keyvals ...interface{}) {
	l.log(LevelInfo, level.Info, msg, keyvals)
}

// Warn logs the message and key value pairs at the Warn log level.
func (l *Logger) Warn(msg string, keyvals ...interface{}) {
	l.log(LevelWarn, level.Warn, msg, keyvals)
}

// Error logs the message and key value pairs at the Error log level.
func (l *Logger) Error(msg string, keyvals ...interface{}) {
	l.log(LevelError, level.Error, msg, keyvals)
}

// With returns a clone of the logger with the provided key/value pairs
// added to every subsequent entry.
func (l *Logger) With(keyvals ...interface{}) *Logger {
	return &Logger{
		logger: log.With(l.logger, keyvals...),
		level:  l.level,
		module: l.module,
	}
}

// GetLevel returns the current global log level.
func GetLevel() Level {
	backend.Lock()
	defer backend.Unlock()

	return backend.defaultLevel
}

// GetLogger creates a new logger instance with the specified module.
//
// This may be called from any point, including before Initialize is
// called, allowing for the construction of a package level Logger.
func GetLogger(module string) *Logger {
	return backend.getLogger(module)
}

// Initialize initializes the logging backend to write to the provided
// Writer with the given format and log levels specified for each
// module. Modules without an explicit level use the default level, the
// longest configured prefix of the module name wins. If the Writer is nil,
// all log output will be silently discarded.
func Initialize(w io.Writer, format Format, defaultLvl Level, moduleLvls map[string]Level) error {
	backend.Lock()
	defer backend.Unlock()

	if backend.initialized {
		return fmt.Errorf("logging: already initialized")
	}

	logger := backend.baseLogger
	if w != nil {
		w = log.NewSyncWriter(w)
		switch format {
		case FmtLogfmt:
			logger = log.NewLogfmtLogger(w)
		case FmtJSON:
			logger = log.NewJSONLogger(w)
		default:
			return fmt.Errorf("logging: unsupported log format: %v", format)
		}
	}

	logger = level.NewFilter(logger, defaultLvl.toOption())
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)

	backend.baseLogger = logger
	backend.moduleLevels = moduleLvls
	backend.defaultLevel = defaultLvl
	backend.initialized = true

	for _, l := range backend.earlyLoggers {
		l.swapLogger.Swap(backend.baseLogger)
		backend.setupLogLevelLocked(l.logger)
	}
	backend.earlyLoggers = nil

	return nil
}

type earlyLogger struct {
	swapLogger *log.SwapLogger
	logger     *Logger
}

type logBackend struct {
	sync.Mutex

	baseLogger   log.Logger
	earlyLoggers []*earlyLogger
	defaultLevel Level
	moduleLevels map[string]Level

	initialized bool
}

func (b *logBackend) setupLogLevelLocked(l *Logger) {
	prefixes := make([]string, 0, len(b.moduleLevels))
	for k := range b.moduleLevels {
		prefixes = append(prefixes, k)
	}
	// Reverse lexicographic order puts longer matching prefixes first.
	sort.Sort(sort.Reverse(sort.StringSlice(prefixes)))

	lvl := b.defaultLevel
	for _, k := range prefixes {
		if strings.HasPrefix(l.module, k) {
			lvl = b.moduleLevels[k]
			break
		}
	}
	l.level = lvl
}

func (b *logBackend) getLogger(module string) *Logger {
	// log.DefaultCaller depth plus one frame for Logger.log and one for
	// the leveled method.
	const callerDepth = 5

	b.Lock()
	defer b.Unlock()

	logger := b.baseLogger
	if !b.initialized {
		logger = &log.SwapLogger{}
	}

	var keyvals []interface{}
	if module != "" {
		keyvals = append(keyvals, "module", module)
	}
	keyvals = append(keyvals, "caller", log.Caller(callerDepth))

	l := &Logger{
		logger: log.WithPrefix(logger, keyvals...),
		module: module,
	}
	b.setupLogLevelLocked(l)

	if !b.initialized {
		b.earlyLoggers = append(b.earlyLoggers, &earlyLogger{
			swapLogger: logger.(*log.SwapLogger),
			logger:     l,
		})
	}
	return l
}
