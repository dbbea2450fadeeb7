package testutil

import (
	"sync"
	"time"

	"github.com/yungbote/tutor-backend/internal/data/aggregates"
)

// HooksRecorder keeps every hook call so tests can assert on retry and
// conflict behaviour of the progress aggregate.
type HooksRecorder struct {
	mu       sync.Mutex
	statuses []string
	counts   map[string]int
}

var _ aggregates.Hooks = (*HooksRecorder)(nil)

func (h *HooksRecorder) ObserveOperation(_ string, status string, _ time.Duration) {
	h.mu.Lock()
	h.statuses = append(h.statuses, status)
	h.mu.Unlock()
}

func (h *HooksRecorder) IncConflict(string) { h.bump("conflict") }
func (h *HooksRecorder) IncRetry(string)    { h.bump("retry") }

func (h *HooksRecorder) bump(kind string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.counts == nil {
		h.counts = map[string]int{}
	}
	h.counts[kind]++
}

// Statuses returns the recorded operation statuses in call order.
func (h *HooksRecorder) Statuses() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.statuses...)
}

func (h *HooksRecorder) Retries() int   { return h.count("retry") }
func (h *HooksRecorder) Conflicts() int { return h.count("conflict") }

func (h *HooksRecorder) count(kind string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.counts[kind]
}
