package logger

import "sync"

// TestLogger is a Logger implementation for tests that captures every message
type TestLogger struct {
	mu       sync.Mutex
	messages []LogMessage
}

// LogMessage represents a captured log message
type LogMessage struct {
	Level   string
	Message string
	Fields  map[string]interface{}
}

// NewTestLogger creates a new test logger
func NewTestLogger() *TestLogger {
	return &TestLogger{}
}

func (l *TestLogger) log(level, msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, LogMessage{Level: level, Message: msg, Fields: fields})
}

func (l *TestLogger) Debug(msg string) { l.log("DEBUG", msg, nil) }
func (l *TestLogger) Info(msg string)  { l.log("INFO", msg, nil) }
func (l *TestLogger) Warn(msg string)  { l.log("WARN", msg, nil) }
func (l *TestLogger) Error(msg string) { l.log("ERROR", msg, nil) }
func (l *TestLogger) Fatal(msg string) { l.log("FATAL", msg, nil) }

func (l *TestLogger) DebugWithFields(msg string, fields map[string]interface{}) {
	l.log("DEBUG", msg, fields)
}

func (l *TestLogger) InfoWithFields(msg string, fields map[string]interface{}) {
	l.log("INFO", msg, fields)
}

func (l *TestLogger) WarnWithFields(msg string, fields map[string]interface{}) {
	l.log("WARN", msg, fields)
}

func (l *TestLogger) ErrorWithFields(msg string, fields map[string]interface{}) {
	l.log("ERROR", msg, fields)
}

// WithField returns a derived logger whose messages land in the same capture
func (l *TestLogger) WithField(key string, value interface{}) Logger {
	return l.WithFields(map[string]interface{}{key: value})
}

// WithFields returns a derived logger whose messages land in the same capture
func (l *TestLogger) WithFields(fields map[string]interface{}) Logger {
	copied := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	return &testLoggerChild{parent: l, fields: copied}
}

// WithError attaches an error field
func (l *TestLogger) WithError(err error) Logger {
	if err == nil {
		return l
	}
	return l.WithField("error", err.Error())
}

// Messages returns a copy of all captured messages
func (l *TestLogger) Messages() []LogMessage {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]LogMessage, len(l.messages))
	copy(out, l.messages)
	return out
}

// MessagesByLevel returns all captured messages of a given level
func (l *TestLogger) MessagesByLevel(level string) []LogMessage {
	var filtered []LogMessage
	for _, m := range l.Messages() {
		if m.Level == level {
			filtered = append(filtered, m)
		}
	}
	return filtered
}

// HasMessage reports whether a message with the given text was logged
func (l *TestLogger) HasMessage(text string) bool {
	for _, m := range l.Messages() {
		if m.Message == text {
			return true
		}
	}
	return false
}

// HasError reports whether any error-level message was logged
func (l *TestLogger) HasError() bool {
	return len(l.MessagesByLevel("ERROR")) > 0
}

// testLoggerChild funnels a derived logger's messages into the parent capture
type testLoggerChild struct {
	parent *TestLogger
	fields map[string]interface{}
}

func (c *testLoggerChild) log(level, msg string, fields map[string]interface{}) {
	merged := make(map[string]interface{}, len(c.fields)+len(fields))
	for k, v := range c.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	c.parent.log(level, msg, merged)
}

func (c *testLoggerChild) Debug(msg string) { c.log("DEBUG", msg, nil) }
func (c *testLoggerChild) Info(msg string)  { c.log("INFO", msg, nil) }
func (c *testLoggerChild) Warn(msg string)  { c.log("WARN", msg, nil) }
func (c *testLoggerChild) Error(msg string) { c.log("ERROR", msg, nil) }
func (c *testLoggerChild) Fatal(msg string) { c.log("FATAL", msg, nil) }

func (c *testLoggerChild) DebugWithFields(msg string, fields map[string]interface{}) {
	c.log("DEBUG", msg, fields)
}

func (c *testLoggerChild) InfoWithFields(msg string, fields map[string]interface{}) {
	c.log("INFO", msg, fields)
}

func (c *testLoggerChild) WarnWithFields(msg string, fields map[string]interface{}) {
	c.log("WARN", msg, fields)
}

func (c *testLoggerChild) ErrorWithFields(msg string, fields map[string]interface{}) {
	c.log("ERROR", msg, fields)
}

func (c *testLoggerChild) WithField(key string, value interface{}) Logger {
	return c.WithFields(map[string]interface{}{key: value})
}

func (c *testLoggerChild) WithFields(fields map[string]interface{}) Logger {
	merged := make(map[string]interface{}, len(c.fields)+len(fields))
	for k, v := range c.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &testLoggerChild{parent: c.parent, fields: merged}
}

func (c *testLoggerChild) WithError(err error) Logger {
	if err == nil {
		return c
	}
	return c.WithField("error", err.Error())
}
