package kafka_middleware

import (
	"context"
	"sync/atomic"
	"time"

	"agenda/pkg/kafka"
)

// Metrics counts producer outcomes. Safe for concurrent use.
type Metrics struct {
	published     atomic.Int64
	failed        atomic.Int64
	durationTotal atomic.Int64 // nanoseconds
}

type Snapshot struct {
	Published      int64
	Failed         int64
	AvgPublishTime time.Duration
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) Snapshot() Snapshot {
	s := Snapshot{
		Published: m.published.Load(),
		Failed:    m.failed.Load(),
	}
	if total := s.Published + s.Failed; total > 0 {
		s.AvgPublishTime = time.Duration(m.durationTotal.Load() / total)
	}
	return s
}

// MetricsProducerMiddleware records publish counts and latency into m.
func MetricsProducerMiddleware(m *Metrics) kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()
		err := next(ctx, msg)
		m.durationTotal.Add(int64(time.Since(start)))
		if err != nil {
			m.failed.Add(1)
		} else {
			m.published.Add(1)
		}
		return err
	}
}
