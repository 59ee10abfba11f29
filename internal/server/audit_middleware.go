package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
)

// auditLogMiddleware records every routed request. For admin status changes
// the previous status is read back from the response so the entry carries both ends.
func (s *Server) auditLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType := r.Header.Get("Content-Type")
		skipRequestBody := strings.Contains(contentType, "multipart/form-data")
		vars := mux.Vars(r)
		entry := AuditLogEntry{
			Timestamp: time.Now(),
			Method:    r.Method,
			Path:      r.URL.Path,
			Handler:   handlerName(r),
			ReturnID:  vars["id"],
			OrderID:   vars["orderID"],
		}

		if username, _, ok := r.BasicAuth(); ok {
			entry.Actor = username
		}

		var requestBody []byte
		if !skipRequestBody && r.Body != nil {
			requestBody, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewBuffer(requestBody))
			entry.Request = string(requestBody)

			if entry.Handler == "handleUpdateStatus" {
				var statusRequest struct {
					Status string `json:"status"`
				}
				if err := json.Unmarshal(requestBody, &statusRequest); err == nil {
					entry.NewStatus = statusRequest.Status
				}
			}
		}

		wrw := newResponseWriterWrapper(w)

		next.ServeHTTP(wrw, r)

		entry.Duration = time.Since(entry.Timestamp)
		entry.StatusCode = wrw.GetStatusCode()
		entry.Response = string(wrw.GetBody())
		if entry.NewStatus != "" {
			entry.OldStatus = oldStatus(wrw.GetBody(), entry.StatusCode)
		}

		s.AuditManager.LogEntry(r.Context(), entry)
	})
}

func handlerName(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil && route.GetName() != "" {
		return route.GetName()
	}
	return "unknown"
}

// oldStatus reads the status before a transition from the response: the last
// history status that differs from the final one on success, the reported
// current status on failure.
func oldStatus(body []byte, code int) string {
	var resp struct {
		Return *struct {
			History []struct {
				Status string `json:"status"`
			} `json:"status_history"`
		} `json:"return"`
		Error *struct {
			CurrentStatus string `json:"current_status"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return ""
	}
	if code >= http.StatusBadRequest {
		if resp.Error != nil {
			return resp.Error.CurrentStatus
		}
		return ""
	}
	if resp.Return == nil || len(resp.Return.History) == 0 {
		return ""
	}
	history := resp.Return.History
	final := history[len(history)-1].Status
	for i := len(history) - 2; i >= 0; i-- {
		if history[i].Status != final {
			return history[i].Status
		}
	}
	return final
}

// maxAuditBody caps how much of a response body is kept for the audit entry.
const maxAuditBody = 64 << 10

type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
	buffer      bytes.Buffer
}

func newResponseWriterWrapper(w http.ResponseWriter) *responseWriterWrapper {
	return &responseWriterWrapper{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

func (w *responseWriterWrapper) WriteHeader(statusCode int) {
	if !w.wroteHeader {
		w.statusCode = statusCode
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *responseWriterWrapper) Write(b []byte) (int, error) {
	w.wroteHeader = true
	if room := maxAuditBody - w.buffer.Len(); room > 0 {
		w.buffer.Write(b[:min(len(b), room)])
	}
	return w.ResponseWriter.Write(b)
}

func (w *responseWriterWrapper) GetStatusCode() int {
	return w.statusCode
}

func (w *responseWriterWrapper) GetBody() []byte {
	return w.buffer.Bytes()
}
