package log

import "strings"

// StoreLogger adapts the global logger to the leveled Errorf/Warningf/Infof/Debugf
// interface expected by the history store.
type StoreLogger struct {
	entry *Entry
}

// ForStore returns a StoreLogger tagging entries with the given component.
func ForStore(component string) *StoreLogger {
	return &StoreLogger{entry: logger.With(F("component", component))}
}

func trim(msg string) string {
	return strings.TrimRight(msg, "\n")
}

func (s *StoreLogger) Errorf(format string, args ...interface{}) {
	s.entry.Error(trim(format), args...)
}

func (s *StoreLogger) Warningf(format string, args ...interface{}) {
	s.entry.Warn(trim(format), args...)
}

// Infof is demoted to debug; the store is chatty at info level.
func (s *StoreLogger) Infof(format string, args ...interface{}) {
	s.entry.Debug(trim(format), args...)
}

func (s *StoreLogger) Debugf(format string, args ...interface{}) {
	s.entry.Debug(trim(format), args...)
}
