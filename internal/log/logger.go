package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync/atomic"

	"imgview/internal/errors"

	"github.com/sirupsen/logrus"
)

var (
	isDebug atomic.Bool
	logger  = NewLogger()
)

// Field is a single key/value pair attached to a log entry.
type Field struct {
	Key   string
	Value interface{}
}

// F builds a Field.
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// Option configures a Logger.
type Option func(*settings)

type settings struct {
	out   io.Writer
	json  bool
	file  string
	level string
}

// WithOutput sends log output to w instead of stdout.
func WithOutput(w io.Writer) Option {
	return func(s *settings) { s.out = w }
}

// WithJSON switches to one JSON object per line.
func WithJSON() Option {
	return func(s *settings) { s.json = true }
}

// WithFile appends every entry to the file at path, in addition to the
// regular output.
func WithFile(path string) Option {
	return func(s *settings) { s.file = path }
}

// WithLevel sets the minimum level ("debug", "info", "warn", "error").
// Unknown names keep the default.
func WithLevel(level string) Option {
	return func(s *settings) { s.level = level }
}

// Logger wraps a logrus logger and adds caller information to every entry.
type Logger struct {
	base  *logrus.Logger
	level logrus.Level
	file  *os.File
}

// NewLogger creates a logger writing text to stdout unless options say otherwise.
func NewLogger(opts ...Option) *Logger {
	s := settings{out: os.Stdout, level: "info"}
	for _, opt := range opts {
		opt(&s)
	}

	l := &Logger{base: logrus.New(), level: logrus.InfoLevel}
	if lvl, err := logrus.ParseLevel(s.level); err == nil {
		l.level = lvl
	}
	// Filtering happens in enabled() so SetDebug can act on every instance.
	l.base.SetLevel(logrus.TraceLevel)

	out := s.out
	if s.file != "" {
		f, err := os.OpenFile(s.file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err == nil {
			l.file = f
			out = io.MultiWriter(out, f)
		} else {
			fmt.Fprintf(os.Stderr, "imgview: cannot open log file %s: %v\n", s.file, err)
		}
	}
	l.base.SetOutput(out)

	if s.json {
		l.base.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime: "timestamp",
				logrus.FieldKeyMsg:  "message",
			},
		})
	} else {
		l.base.SetFormatter(&logrus.TextFormatter{
			DisableColors:   true,
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}
	return l
}

// Configure replaces the global logger.
func Configure(opts ...Option) {
	logger = NewLogger(opts...)
}

// Close releases the log file, if any.
func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// SetDebug enables debug output on every logger.
func SetDebug(debug bool) {
	isDebug.Store(debug)
}

func (l *Logger) enabled(level logrus.Level) bool {
	if level == logrus.DebugLevel && isDebug.Load() {
		return true
	}
	return level <= l.level
}

// Entry is a logger with fields attached.
type Entry struct {
	logger *Logger
	fields logrus.Fields
	ctx    context.Context
}

func (l *Logger) entry() *Entry {
	return &Entry{logger: l, fields: logrus.Fields{}}
}

// With attaches fields to a new entry.
func (l *Logger) With(fields ...Field) *Entry {
	return l.entry().With(fields...)
}

// WithContext attaches a context to a new entry.
func (l *Logger) WithContext(ctx context.Context) *Entry {
	return l.entry().WithContext(ctx)
}

// With returns a copy of the entry with more fields.
func (e *Entry) With(fields ...Field) *Entry {
	merged := make(logrus.Fields, len(e.fields)+len(fields))
	for k, v := range e.fields {
		merged[k] = v
	}
	for _, f := range fields {
		merged[f.Key] = f.Value
	}
	return &Entry{logger: e.logger, fields: merged, ctx: e.ctx}
}

// WithContext returns a copy of the entry carrying ctx.
func (e *Entry) WithContext(ctx context.Context) *Entry {
	return &Entry{logger: e.logger, fields: e.fields, ctx: ctx}
}

// log writes one entry. depth is the number of frames between log and the
// caller that should be reported.
func (e *Entry) log(level logrus.Level, depth int, msg string) {
	if !e.logger.enabled(level) {
		return
	}
	fields := make(logrus.Fields, len(e.fields)+1)
	for k, v := range e.fields {
		fields[k] = v
	}
	if _, file, line, ok := runtime.Caller(depth); ok {
		fields["caller"] = filepath.Base(file) + ":" + strconv.Itoa(line)
	}
	entry := e.logger.base.WithFields(fields)
	if e.ctx != nil {
		entry = entry.WithContext(e.ctx)
	}
	entry.Log(level, msg)
}

func format(msg string, args []interface{}) string {
	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}

func (e *Entry) Debug(msg string, args ...interface{}) { e.log(logrus.DebugLevel, 2, format(msg, args)) }
func (e *Entry) Info(msg string, args ...interface{})  { e.log(logrus.InfoLevel, 2, format(msg, args)) }
func (e *Entry) Warn(msg string, args ...interface{})  { e.log(logrus.WarnLevel, 2, format(msg, args)) }
func (e *Entry) Error(msg string, args ...interface{}) { e.log(logrus.ErrorLevel, 2, format(msg, args)) }

func (l *Logger) Debug(msg string, args ...interface{}) {
	l.entry().log(logrus.DebugLevel, 2, format(msg, args))
}

func (l *Logger) Debugf(msg string, args ...interface{}) {
	l.entry().log(logrus.DebugLevel, 2, format(msg, args))
}

func (l *Logger) Info(msg string, args ...interface{}) {
	l.entry().log(logrus.InfoLevel, 2, format(msg, args))
}

func (l *Logger) Infof(msg string, args ...interface{}) {
	l.entry().log(logrus.InfoLevel, 2, format(msg, args))
}

func (l *Logger) Warn(msg string, args ...interface{}) {
	l.entry().log(logrus.WarnLevel, 2, format(msg, args))
}

func (l *Logger) Warnf(msg string, args ...interface{}) {
	l.entry().log(logrus.WarnLevel, 2, format(msg, args))
}

func (l *Logger) Error(msg string, args ...interface{}) {
	l.entry().log(logrus.ErrorLevel, 2, format(msg, args))
}

func (l *Logger) Errorf(msg string, args ...interface{}) {
	l.entry().log(logrus.ErrorLevel, 2, format(msg, args))
}

// Info logs through the global logger.
func Info(format string, args ...interface{}) {
	logger.entry().log(logrus.InfoLevel, 2, fmt.Sprintf(format, args...))
}

// Infof logs a formatted message through the global logger.
func Infof(format string, args ...interface{}) {
	logger.entry().log(logrus.InfoLevel, 2, fmt.Sprintf(format, args...))
}

// Debug logs a message when debug output is enabled.
func Debug(format string, args ...interface{}) {
	logger.entry().log(logrus.DebugLevel, 2, fmt.Sprintf(format, args...))
}

// Debugf logs a formatted message when debug output is enabled.
func Debugf(format string, args ...interface{}) {
	logger.entry().log(logrus.DebugLevel, 2, fmt.Sprintf(format, args...))
}

// Warn logs a warning.
func Warn(format string, args ...interface{}) {
	logger.entry().log(logrus.WarnLevel, 2, fmt.Sprintf(format, args...))
}

// Warnf logs a formatted warning.
func Warnf(format string, args ...interface{}) {
	logger.entry().log(logrus.WarnLevel, 2, fmt.Sprintf(format, args...))
}

// Error logs an error message.
func Error(format string, args ...interface{}) {
	logger.entry().log(logrus.ErrorLevel, 2, fmt.Sprintf(format, args...))
}

// Errorf logs a formatted error message.
func Errorf(format string, args ...interface{}) {
	logger.entry().log(logrus.ErrorLevel, 2, fmt.Sprintf(format, args...))
}

// LogWithFields starts a global entry with fields attached.
func LogWithFields(fields ...Field) *Entry {
	return logger.With(fields...)
}

// LogWithError starts a global entry describing err. Typed errors contribute
// their kind, the path or parameter they refer to and any input context.
func LogWithError(err error) *Entry {
	if err == nil {
		return logger.With(F("error", "<nil>"))
	}
	fields := []Field{F("error", err.Error()), F("error_kind", int(errors.KindOf(err)))}

	var fileErr *errors.FileError
	if errors.As(err, &fileErr) && fileErr.Path() != "" {
		fields = append(fields, F("path", fileErr.Path()))
	}
	var decodeErr *errors.DecodeError
	if errors.As(err, &decodeErr) && decodeErr.Path() != "" {
		fields = append(fields, F("path", decodeErr.Path()))
	}
	var configErr *errors.ConfigError
	if errors.As(err, &configErr) && configErr.Param() != "" {
		fields = append(fields, F("param", configErr.Param()))
	}
	var inputErr *errors.InvalidInputError
	if errors.As(err, &inputErr) {
		for k, v := range inputErr.Context() {
			fields = append(fields, F(k, v))
		}
	}
	return logger.With(fields...)
}

// LogError logs err at error level with msg.
func LogError(err error, msg string) {
	LogWithError(err).log(logrus.ErrorLevel, 2, msg)
}
