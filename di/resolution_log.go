package di

import (
	"context"
	"sync"
	"time"
)

// RootScopeID is the scope ID reported for resolutions against the root.
const RootScopeID = "root"

// ResolutionRecord describes one resolution of one descriptor.
type ResolutionRecord struct {
	Key      Key      `json:"key"`
	ScopeID  string   `json:"scope_id"`
	Lifetime Lifetime `json:"lifetime"`
	Success  bool     `json:"success"`
	// Cached is set when the instance came from a singleton or scope cache.
	Cached bool `json:"cached"`
	// Error is the failure message; Err holds the error itself.
	Error string `json:"error,omitempty"`
	Err   error  `json:"-"`
	// Depth is 0 for the requested key and grows along dependency chains.
	Depth     int           `json:"depth"`
	Duration  time.Duration `json:"duration_ns"`
	Timestamp time.Time     `json:"timestamp"`
}

// Observer is notified after every resolution attempt. Observers run on the
// resolving goroutine and must not resolve from the container.
type Observer interface {
	Observe(ctx context.Context, rec ResolutionRecord)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, rec ResolutionRecord)

// Observe calls f.
func (f ObserverFunc) Observe(ctx context.Context, rec ResolutionRecord) { f(ctx, rec) }

// ResolutionLog is an append-only, concurrency-safe record of resolutions.
type ResolutionLog struct {
	mu      sync.RWMutex
	records []ResolutionRecord
}

// NewResolutionLog creates an empty log.
func NewResolutionLog() *ResolutionLog {
	return &ResolutionLog{}
}

// Observe appends rec.
func (l *ResolutionLog) Observe(_ context.Context, rec ResolutionRecord) {
	l.mu.Lock()
	l.records = append(l.records, rec)
	l.mu.Unlock()
}

// Records returns a copy of all records in arrival order.
func (l *ResolutionLog) Records() []ResolutionRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]ResolutionRecord(nil), l.records...)
}

// Len returns the number of records.
func (l *ResolutionLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

// ForKey returns the records for key in arrival order.
func (l *ResolutionLog) ForKey(key Key) []ResolutionRecord {
	return l.filter(func(r ResolutionRecord) bool { return r.Key == key })
}

// Failures returns the failed records in arrival order.
func (l *ResolutionLog) Failures() []ResolutionRecord {
	return l.filter(func(r ResolutionRecord) bool { return !r.Success })
}

// Last returns the most recent record for key.
func (l *ResolutionLog) Last(key Key) (ResolutionRecord, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for i := len(l.records) - 1; i >= 0; i-- {
		if l.records[i].Key == key {
			return l.records[i], true
		}
	}
	return ResolutionRecord{}, false
}

// Reset drops all records.
func (l *ResolutionLog) Reset() {
	l.mu.Lock()
	l.records = nil
	l.mu.Unlock()
}

func (l *ResolutionLog) filter(keep func(ResolutionRecord) bool) []ResolutionRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []ResolutionRecord
	for _, r := range l.records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}
