// Package log is the developer-facing console trace of leafscan. It wraps
// logrus with the small field-based API the rest of the code uses.
package log

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"leafscan/internal/errors"

	"github.com/sirupsen/logrus"
)

const timeLayout = "2006-01-02 15:04:05"

var (
	isDebug atomic.Bool
	logger  = NewLogger()
)

// Field is a single structured key/value pair
type Field struct {
	Key   string
	Value interface{}
}

// F builds a Field
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// Logger is a structured logger backed by logrus
type Logger struct {
	base  *logrus.Logger
	entry *logrus.Entry
	file  *os.File
}

// Option configures a Logger
type Option func(*Logger)

// WithOutput directs log output to w
func WithOutput(w io.Writer) Option {
	return func(l *Logger) {
		l.base.SetOutput(w)
	}
}

// WithJSON switches to one JSON object per line
func WithJSON() Option {
	return func(l *Logger) {
		l.base.SetFormatter(&jsonFormatter{})
	}
}

// WithFile tees output to stdout and the named file
func WithFile(path string) Option {
	return func(l *Logger) {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log: cannot open %s: %v\n", path, err)
			return
		}
		l.file = f
		l.base.SetOutput(io.MultiWriter(os.Stdout, f))
	}
}

// WithFileOnly directs output to the named file only; used while a
// full-screen UI owns the terminal
func WithFileOnly(path string) Option {
	return func(l *Logger) {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			l.base.SetOutput(io.Discard)
			return
		}
		l.file = f
		l.base.SetOutput(f)
	}
}

// NewLogger creates a logger writing text lines to stdout unless configured otherwise
func NewLogger(opts ...Option) *Logger {
	base := logrus.New()
	base.SetOutput(os.Stdout)
	base.SetLevel(logrus.DebugLevel)
	base.SetFormatter(&textFormatter{})

	l := &Logger{base: base}
	for _, opt := range opts {
		opt(l)
	}
	l.entry = logrus.NewEntry(base)
	return l
}

// Configure replaces the package-level logger
func Configure(opts ...Option) {
	logger = NewLogger(opts...)
}

// Close releases the log file, if any
func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// With returns a child logger carrying the given fields
func (l *Logger) With(fields ...Field) *Logger {
	data := make(logrus.Fields, len(fields))
	for _, f := range fields {
		data[f.Key] = f.Value
	}
	return &Logger{base: l.base, entry: l.entry.WithFields(data), file: l.file}
}

// WithContext is accepted for call sites that carry a context; no values are
// extracted from it yet.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	return l
}

func (l *Logger) Debug(msg string) {
	if isDebug.Load() {
		l.log(logrus.DebugLevel, msg)
	}
}

func (l *Logger) Debugf(format string, args ...interface{}) {
	if isDebug.Load() {
		l.log(logrus.DebugLevel, fmt.Sprintf(format, args...))
	}
}

func (l *Logger) Info(msg string) { l.log(logrus.InfoLevel, msg) }

func (l *Logger) Infof(format string, args ...interface{}) {
	l.log(logrus.InfoLevel, fmt.Sprintf(format, args...))
}

func (l *Logger) Warn(msg string) { l.log(logrus.WarnLevel, msg) }

func (l *Logger) Warnf(format string, args ...interface{}) {
	l.log(logrus.WarnLevel, fmt.Sprintf(format, args...))
}

func (l *Logger) Error(msg string) { l.log(logrus.ErrorLevel, msg) }

func (l *Logger) Errorf(format string, args ...interface{}) {
	l.log(logrus.ErrorLevel, fmt.Sprintf(format, args...))
}

func (l *Logger) log(level logrus.Level, msg string) {
	l.entry.WithField("caller", caller()).Log(level, msg)
}

// caller finds the first frame outside this package
func caller() string {
	pcs := make([]uintptr, 16)
	n := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "/internal/log/logger.go") &&
			!strings.Contains(frame.File, "sirupsen/logrus") {
			return fmt.Sprintf("%s:%d", filepath.Base(frame.File), frame.Line)
		}
		if !more {
			return "unknown"
		}
	}
}

// SetDebug toggles debug output for every logger
func SetDebug(debug bool) {
	isDebug.Store(debug)
}

// IsDebug reports whether debug output is enabled
func IsDebug() bool {
	return isDebug.Load()
}

// Default returns the package-level logger
func Default() *Logger {
	return logger
}

// LogWithFields returns the package-level logger with fields attached
func LogWithFields(fields ...Field) *Logger {
	return logger.With(fields...)
}

// LogWithError attaches an error and whatever the error type knows about
// itself to the package-level logger
func LogWithError(err error) *Logger {
	return logger.WithError(err)
}

// WithError returns a logger with err and its details (kind, path, param,
// HTTP status, media type) attached as fields
func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l.With(F("error", "<nil>"))
	}
	fields := []Field{F("error", err.Error()), F("error_kind", int(errors.KindOf(err)))}

	var fileErr *errors.FileError
	if errors.As(err, &fileErr) && fileErr.Path() != "" {
		fields = append(fields, F("path", fileErr.Path()))
	}
	var configErr *errors.ConfigError
	if errors.As(err, &configErr) && configErr.Param() != "" {
		fields = append(fields, F("param", configErr.Param()))
	}
	var tErr *errors.TransportError
	if errors.As(err, &tErr) && tErr.Status() != 0 {
		fields = append(fields, F("status", tErr.Status()))
	}
	var vErr *errors.ValidationError
	if errors.As(err, &vErr) && vErr.MediaType() != "" {
		fields = append(fields, F("media_type", vErr.MediaType()), F("size", vErr.Size()))
	}
	return l.With(fields...)
}

// LogError logs err at error level with a message
func LogError(err error, msg string) {
	LogWithError(err).Error(msg)
}

func Info(format string, args ...interface{}) {
	logger.log(logrus.InfoLevel, fmt.Sprintf(format, args...))
}

func Debugf(format string, args ...interface{}) {
	logger.Debugf(format, args...)
}

func Warnf(format string, args ...interface{}) {
	logger.log(logrus.WarnLevel, fmt.Sprintf(format, args...))
}

func Errorf(format string, args ...interface{}) {
	logger.log(logrus.ErrorLevel, fmt.Sprintf(format, args...))
}

func levelName(level logrus.Level) string {
	switch level {
	case logrus.DebugLevel, logrus.TraceLevel:
		return "DEBUG"
	case logrus.InfoLevel:
		return "INFO"
	case logrus.WarnLevel:
		return "WARN"
	default:
		return "ERROR"
	}
}

type textFormatter struct{}

// Format renders "[timestamp] LEVEL: message key=value ..."
func (f *textFormatter) Format(e *logrus.Entry) ([]byte, error) {
	var b bytes.Buffer
	fmt.Fprintf(&b, "[%s] %s: %s", e.Time.Format(timeLayout), levelName(e.Level), e.Message)

	keys := make([]string, 0, len(e.Data))
	for k := range e.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, e.Data[k])
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}

type jsonFormatter struct{}

func (f *jsonFormatter) Format(e *logrus.Entry) ([]byte, error) {
	out := make(map[string]interface{}, len(e.Data)+3)
	for k, v := range e.Data {
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		out[k] = v
	}
	out["level"] = levelName(e.Level)
	out["message"] = e.Message
	out["timestamp"] = e.Time.Format(time.RFC3339)

	line, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal log entry: %w", err)
	}
	return append(line, '\n'), nil
}
