package aggregates

import (
	"time"

	"github.com/yungbote/tutor-backend/internal/observability"
)

// Hooks receives one ObserveOperation per aggregate write attempt plus a
// signal for every version conflict and every retry that follows one.
type Hooks interface {
	ObserveOperation(name, status string, dur time.Duration)
	IncConflict(name string)
	IncRetry(name string)
}

type noopHooks struct{}

func (noopHooks) ObserveOperation(string, string, time.Duration) {}
func (noopHooks) IncConflict(string)                             {}
func (noopHooks) IncRetry(string)                                {}

// metricsHooks forwards to the aggregate_* prometheus series.
type metricsHooks struct{ m *observability.Metrics }

func NewMetricsHooks(metrics *observability.Metrics) Hooks {
	if metrics == nil {
		return noopHooks{}
	}
	return metricsHooks{m: metrics}
}

func (h metricsHooks) ObserveOperation(name, status string, dur time.Duration) {
	h.m.ObserveAggregateOperation(name, status, dur)
}

func (h metricsHooks) IncConflict(name string) { h.m.IncAggregateConflict(name) }
func (h metricsHooks) IncRetry(name string)    { h.m.IncAggregateRetry(name) }
