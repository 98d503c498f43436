package audit

import (
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Event represents an audit log event.
type Event struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Action    string    `json:"action"`
	User      string    `json:"user,omitempty"`    // User ID
	Target    string    `json:"target,omitempty"`  // Target resource ID
	Details   string    `json:"details,omitempty"` // Additional details
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"` // Error message if the action failed
}

// Actions recorded by the service.
const (
	ActionRevokeAuthorization = "authorization.revoke"
)

// Logger writes audit events as JSON lines.
type Logger struct {
	service string
	out     zerolog.Logger
}

// NewLogger creates an audit logger writing to w; nil means stdout.
func NewLogger(service string, w io.Writer) *Logger {
	if w == nil {
		w = os.Stdout
	}
	return &Logger{
		service: service,
		out:     zerolog.New(w).With().Str("log_type", "audit").Logger(),
	}
}

// Log records an audit event and returns it.
func (l *Logger) Log(action, user, target, details string, err error) Event {
	event := Event{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Service:   l.service,
		Action:    action,
		User:      user,
		Target:    target,
		Details:   details,
		Success:   err == nil,
	}
	if err != nil {
		event.Error = err.Error()
	}

	entry := l.out.Log().
		Str("id", event.ID).
		Time("timestamp", event.Timestamp).
		Str("service", event.Service).
		Str("action", event.Action).
		Bool("success", event.Success)
	if event.User != "" {
		entry = entry.Str("user", event.User)
	}
	if event.Target != "" {
		entry = entry.Str("target", event.Target)
	}
	if event.Details != "" {
		entry = entry.Str("details", event.Details)
	}
	if event.Error != "" {
		entry = entry.Str("error", event.Error)
	}
	entry.Msg("")

	return event
}
