package sweeper

import (
	"context"
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sweepRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sharebite_sweep_runs_total",
		Help: "Total number of expiry sweep runs.",
	})
	sweepReclaimedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sharebite_sweep_reclaimed_total",
		Help: "Total number of reservations reverted to available by sweeps.",
	})
	sweepErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sharebite_sweep_errors_total",
		Help: "Total number of failed sweep runs.",
	})
	sweepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sharebite_sweep_duration_seconds",
		Help:    "Duration of expiry sweep runs.",
		Buckets: prometheus.DefBuckets,
	})
)

// Sweep is the reclaim operation; the reservation service provides it.
type Sweep interface {
	SweepExpired(ctx context.Context) (int64, error)
}

// Sweeper periodically reverts stale reservations. A failed run is logged
// and retried on the next tick; there is no other recovery path.
type Sweeper struct {
	Sweep    Sweep
	Interval time.Duration
}

func (s *Sweeper) Run(ctx context.Context) error {
	t := time.NewTicker(s.Interval)
	defer t.Stop()

	// kick immediately
	s.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			s.tick(ctx)
		}
	}
}

func (s *Sweeper) tick(ctx context.Context) {
	sweepRunsTotal.Inc()
	start := time.Now()

	n, err := s.Sweep.SweepExpired(ctx)
	sweepDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		sweepErrorsTotal.Inc()
		log.Printf("sweeper: sweep failed: %v", err)
		return
	}
	sweepReclaimedTotal.Add(float64(n))
}
