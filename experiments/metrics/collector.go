package metrics

import (
	"time"
)

type BatchMetric struct {
	Batch     int
	Size      int64
	Trials    int64 // Cumulative
	Mean      float64
	HalfWidth float64
	Elapsed   time.Duration
}

type RunMetric struct {
	Mode      string
	Trials    int64
	Batches   int
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
	Converged bool
}

type Collector interface {
	Start(mode string)
	AddBatch(size, trials int64, mean, halfWidth float64)
	Complete(trials int64, converged bool) (RunMetric, []BatchMetric)
}

type collector struct {
	mode      string
	startTime time.Time
	batches   []BatchMetric
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) Start(mode string) {
	m.mode = mode
	m.startTime = time.Now()
	m.batches = nil
}

func (m *collector) AddBatch(size, trials int64, mean, halfWidth float64) {
	m.batches = append(m.batches, BatchMetric{
		Batch:     len(m.batches) + 1,
		Size:      size,
		Trials:    trials,
		Mean:      mean,
		HalfWidth: halfWidth,
		Elapsed:   time.Since(m.startTime),
	})
}

func (m *collector) Complete(trials int64, converged bool) (RunMetric, []BatchMetric) {
	end := time.Now()
	return RunMetric{
		Mode:      m.mode,
		Trials:    trials,
		Batches:   len(m.batches),
		StartTime: m.startTime,
		EndTime:   end,
		Duration:  end.Sub(m.startTime),
		Converged: converged,
	}, m.batches
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(mode string)                                    {}
func (m *dummyCollector) AddBatch(size, trials int64, mean, halfWidth float64) {}
func (m *dummyCollector) Complete(trials int64, converged bool) (RunMetric, []BatchMetric) {
	return RunMetric{}, nil
}
