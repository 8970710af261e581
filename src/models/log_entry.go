package models

import "time"

const (
	LogLevelInfo  = "INFO"
	LogLevelWarn  = "WARN"
	LogLevelError = "ERROR"
	LogLevelAudit = "AUDIT"
)

// LogEntry is an append-only audit trail row. The application writes these as a
// side effect of ledger operations and never reads them back.
type LogEntry struct {
	ID        int64          `json:"id"`
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	Meta      map[string]any `json:"meta,omitempty"`
	UserID    *int64         `json:"user_id,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
