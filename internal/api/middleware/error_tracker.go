package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// ErrorStats is a point-in-time copy of the tracked error counters.
type ErrorStats struct {
	ClientErrors int64            `json:"clientErrors"`
	ServerErrors int64            `json:"serverErrors"`
	Panics       int64            `json:"panics"`
	ByRoute      map[string]int64 `json:"byRoute"`
	LastErrorAt  *time.Time       `json:"lastErrorAt,omitempty"`
}

// ErrorTracker counts failed requests for the status endpoint. It is safe
// for concurrent use.
type ErrorTracker struct {
	mu          sync.Mutex
	client      int64
	server      int64
	panics      int64
	byRoute     map[string]int64
	lastErrorAt time.Time
}

func NewErrorTracker() *ErrorTracker {
	return &ErrorTracker{byRoute: make(map[string]int64)}
}

// Track counts every 4xx and 5xx response by route.
func (t *ErrorTracker) Track() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		t.Observe(c.FullPath(), c.Writer.Status())
	}
}

// Observe records a response status for route.
func (t *ErrorTracker) Observe(route string, status int) {
	if status < 400 {
		return
	}
	if route == "" {
		route = "unmatched"
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if status >= 500 {
		t.server++
	} else {
		t.client++
	}
	t.byRoute[route]++
	t.lastErrorAt = time.Now().UTC()
}

// RecordPanic counts a recovered panic.
func (t *ErrorTracker) RecordPanic() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.panics++
}

// Snapshot returns a copy of the counters.
func (t *ErrorTracker) Snapshot() ErrorStats {
	t.mu.Lock()
	defer t.mu.Unlock()

	byRoute := make(map[string]int64, len(t.byRoute))
	for k, v := range t.byRoute {
		byRoute[k] = v
	}
	stats := ErrorStats{
		ClientErrors: t.client,
		ServerErrors: t.server,
		Panics:       t.panics,
		ByRoute:      byRoute,
	}
	if !t.lastErrorAt.IsZero() {
		last := t.lastErrorAt
		stats.LastErrorAt = &last
	}
	return stats
}
