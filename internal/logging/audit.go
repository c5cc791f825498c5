package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// AuditEventType names one kind of recorded interaction.
type AuditEventType string

const (
	AuditSessionStart    AuditEventType = "session_start"
	AuditGridConfigure   AuditEventType = "grid_configure"
	AuditCellAssign      AuditEventType = "cell_assign"
	AuditCellUpdate      AuditEventType = "cell_update"
	AuditCapacityReached AuditEventType = "capacity_reached"
	AuditClickRejected   AuditEventType = "click_rejected"
)

// AuditEvent is one line of the audit trail. Replaying the cell_assign and
// cell_update events of a session in order reproduces its mapping.
type AuditEvent struct {
	Timestamp int64          `json:"ts"` // Unix milliseconds
	EventType AuditEventType `json:"event"`
	SessionID string         `json:"session"`
	Row       int            `json:"row"`
	Col       int            `json:"col"`
	Series    int            `json:"series,omitempty"`
	Group     int            `json:"group,omitempty"`
	Success   bool           `json:"success"`
	Error     string         `json:"error,omitempty"`
	Message   string         `json:"msg,omitempty"`
}

var (
	auditFile *os.File
	auditMu   sync.Mutex
)

// InitAudit opens <logs>/<date>_audit.jsonl. No-op outside debug mode.
func InitAudit() error {
	if !IsDebugMode() {
		return nil
	}

	auditMu.Lock()
	defer auditMu.Unlock()

	if auditFile != nil {
		return nil
	}

	configMu.RLock()
	dir := logsDir
	configMu.RUnlock()

	date := time.Now().Format("2006-01-02")
	path := filepath.Join(dir, fmt.Sprintf("%s_audit.jsonl", date))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	auditFile = file
	return nil
}

// CloseAudit closes the audit log file
func CloseAudit() {
	auditMu.Lock()
	defer auditMu.Unlock()

	if auditFile != nil {
		auditFile.Close()
		auditFile = nil
	}
}

// AuditLogger writes audit events scoped to one session.
type AuditLogger struct {
	sessionID string
}

// AuditWithSession creates an audit logger scoped to a session
func AuditWithSession(sessionID string) *AuditLogger {
	return &AuditLogger{sessionID: sessionID}
}

// Log writes an audit event as one JSON line
func (a *AuditLogger) Log(event AuditEvent) {
	auditMu.Lock()
	defer auditMu.Unlock()

	if auditFile == nil {
		return
	}

	if event.Timestamp == 0 {
		event.Timestamp = time.Now().UnixMilli()
	}
	if event.SessionID == "" {
		event.SessionID = a.sessionID
	}

	data, err := json.Marshal(event)
	if err == nil {
		auditFile.Write(append(data, '\n'))
	}
}

// SessionStart records a new session.
func (a *AuditLogger) SessionStart() {
	a.Log(AuditEvent{EventType: AuditSessionStart, Success: true})
}

// Configure records a grid (re)configuration attempt.
func (a *AuditLogger) Configure(ns, np, rows, cols int, err error) {
	a.Log(AuditEvent{
		EventType: AuditGridConfigure,
		Success:   err == nil,
		Error:     errString(err),
		Message:   fmt.Sprintf("ns=%d np=%d rows=%d cols=%d", ns, np, rows, cols),
	})
}

// Click records the outcome of one click. eventType is one of the cell or
// capacity events; a non-nil err records a rejection instead.
func (a *AuditLogger) Click(eventType AuditEventType, row, col, series, group int, err error) {
	if err != nil {
		eventType = AuditClickRejected
	}
	a.Log(AuditEvent{
		EventType: eventType,
		Row:       row,
		Col:       col,
		Series:    series,
		Group:     group,
		Success:   err == nil,
		Error:     errString(err),
	})
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
