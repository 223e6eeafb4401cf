package logging

import "sync"

// Entry is a single captured log record.
type Entry struct {
	Level   LogLevel
	Message string
	Fields  []any
}

// MockLogger captures log records for assertions in tests.
type MockLogger struct {
	mu      sync.Mutex
	level   LogLevel
	entries []Entry
}

func NewMockLogger() *MockLogger {
	return &MockLogger{level: LogLevelDebug}
}

func (m *MockLogger) record(level LogLevel, msg string, keysAndValues ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, Entry{Level: level, Message: msg, Fields: keysAndValues})
}

func (m *MockLogger) Debug(msg string, keysAndValues ...any) {
	m.record(LogLevelDebug, msg, keysAndValues...)
}

func (m *MockLogger) Info(msg string, keysAndValues ...any) {
	m.record(LogLevelInfo, msg, keysAndValues...)
}

func (m *MockLogger) Warn(msg string, keysAndValues ...any) {
	m.record(LogLevelWarn, msg, keysAndValues...)
}

func (m *MockLogger) Error(msg string, keysAndValues ...any) {
	m.record(LogLevelError, msg, keysAndValues...)
}

func (m *MockLogger) SetLevel(level LogLevel) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.level = level
}

// Entries returns a copy of everything logged so far.
func (m *MockLogger) Entries() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}
