package server

import (
	"time"

	"go.uber.org/zap"
)

// AuditLogEntry is one routed request as seen by the audit trail. Status
// fields are set only for admin status changes.
type AuditLogEntry struct {
	Timestamp  time.Time     `json:"timestamp"`
	Duration   time.Duration `json:"duration"`
	Handler    string        `json:"handler"`
	Method     string        `json:"method"`
	Path       string        `json:"path"`
	StatusCode int           `json:"status_code"`
	Actor      string        `json:"actor,omitempty"`
	ReturnID   string        `json:"return_id,omitempty"`
	OrderID    string        `json:"order_id,omitempty"`
	OldStatus  string        `json:"old_status,omitempty"`
	NewStatus  string        `json:"new_status,omitempty"`
	Request    string        `json:"request,omitempty"`
	Response   string        `json:"response,omitempty"`
}

// Failed reports whether the request ended with an error response.
func (e AuditLogEntry) Failed() bool {
	return e.StatusCode >= 400
}

func (e AuditLogEntry) fields() []zap.Field {
	fields := []zap.Field{
		zap.Time("timestamp", e.Timestamp),
		zap.Duration("duration", e.Duration),
		zap.String("handler", e.Handler),
		zap.String("method", e.Method),
		zap.String("path", e.Path),
		zap.Int("status_code", e.StatusCode),
		zap.String("actor", e.Actor),
	}
	if e.ReturnID != "" {
		fields = append(fields, zap.String("return_id", e.ReturnID))
	}
	if e.OrderID != "" {
		fields = append(fields, zap.String("order_id", e.OrderID))
	}
	if e.NewStatus != "" {
		fields = append(fields, zap.String("old_status", e.OldStatus), zap.String("new_status", e.NewStatus))
	}
	if e.Request != "" {
		fields = append(fields, zap.String("request", e.Request))
	}
	if e.Response != "" {
		fields = append(fields, zap.String("response", e.Response))
	}
	return fields
}
