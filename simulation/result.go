package simulation

import (
	"time"

	"montecarlo/experiments/metrics"
	"montecarlo/stats"
)

type StopReason int

const (
	Unknown    StopReason = iota
	Fixed                 // Ran the requested number of trials
	Converged             // Half-width reached the target
	CapReached            // Trial cap hit before the target
	Failed                // A trial returned an error
)

func (r StopReason) String() string {
	switch r {
	case Unknown:
		return "unknown"
	case Fixed:
		return "fixed"
	case Converged:
		return "converged"
	case CapReached:
		return "cap_reached"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result describes one driver invocation. Trials counts the trials run by
// this invocation; Stats is the collector as it stood when the run ended.
type Result struct {
	Trials  int64
	Batches int
	Stats   stats.Collector
	Elapsed time.Duration
	Reason  StopReason
	Metric  metrics.RunMetric
	Batch   []metrics.BatchMetric
}
