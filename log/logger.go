package log

import "context"

// Fields is a set of structured key/value pairs attached to a log entry.
type Fields = map[string]interface{}

// Logger defines the structured logging interface used across the service.
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...Fields)
	Info(ctx context.Context, msg string, fields ...Fields)
	Warn(ctx context.Context, msg string, fields ...Fields)
	Error(ctx context.Context, msg string, err error, fields ...Fields)
	Fatal(ctx context.Context, msg string, err error, fields ...Fields) // the zerolog implementation exits the process
	With(fields Fields) Logger                                         // Returns a new logger with added structured fields
}
