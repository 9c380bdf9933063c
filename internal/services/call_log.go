package services

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const maxTrackedCalls = 100

// UpstreamCall records one request made to the analysis service
type UpstreamCall struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Endpoint   string    `json:"endpoint"`
	CallType   string    `json:"callType"` // "analyze", "batch_analyze", "health"
	Status     int       `json:"status"`   // 0 when no response was received
	Outcome    string    `json:"outcome"`
	DurationMs float64   `json:"durationMs"`
	Error      string    `json:"error,omitempty"`
}

// CallLog keeps the last 100 upstream calls
type CallLog struct {
	mu    sync.RWMutex
	calls []UpstreamCall
}

func NewCallLog() *CallLog {
	return &CallLog{calls: make([]UpstreamCall, 0)}
}

func (l *CallLog) record(call UpstreamCall) {
	if call.ID == "" {
		call.ID = uuid.NewString()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Keep only last 100 calls
	if len(l.calls) >= maxTrackedCalls {
		l.calls = l.calls[1:]
	}
	l.calls = append(l.calls, call)
}

// Calls returns a copy of the tracked calls, newest first
func (l *CallLog) Calls() []UpstreamCall {
	l.mu.RLock()
	defer l.mu.RUnlock()

	calls := make([]UpstreamCall, len(l.calls))
	for i, call := range l.calls {
		calls[len(l.calls)-1-i] = call
	}
	return calls
}
