package sweeper

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type countingSweep struct {
	calls atomic.Int64
	err   error
}

func (c *countingSweep) SweepExpired(context.Context) (int64, error) {
	c.calls.Add(1)
	return 1, c.err
}

func TestRunKicksImmediately(t *testing.T) {
	sweep := &countingSweep{}
	s := &Sweeper{Sweep: sweep, Interval: time.Hour}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	deadline := time.After(2 * time.Second)
	for sweep.calls.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("no sweep before the first tick")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() = %v, want context.Canceled", err)
	}
	if sweep.calls.Load() != 1 {
		t.Errorf("sweeps = %d, want the immediate kick only", sweep.calls.Load())
	}
}

func TestRunTicksRepeatedly(t *testing.T) {
	sweep := &countingSweep{}
	s := &Sweeper{Sweep: sweep, Interval: 10 * time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	deadline := time.After(2 * time.Second)
	for sweep.calls.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("only %d sweeps before deadline", sweep.calls.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	<-done
}

func TestRunSurvivesSweepErrors(t *testing.T) {
	sweep := &countingSweep{err: errors.New("db down")}
	s := &Sweeper{Sweep: sweep, Interval: 10 * time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	deadline := time.After(2 * time.Second)
	for sweep.calls.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("only %d sweeps before deadline", sweep.calls.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	<-done
}
