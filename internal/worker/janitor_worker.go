package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Sweeper drops expired in-process state and reports how many entries it removed.
type Sweeper interface {
	Sweep() int
}

// SweepFunc adapts a function to Sweeper.
type SweepFunc func() int

// Sweep calls f.
func (f SweepFunc) Sweep() int { return f() }

// JanitorWorker periodically sweeps in-process stores: the memory session
// store and the submit rate limiter. Redis expires its own keys.
type JanitorWorker struct {
	sweepers map[string]Sweeper
	interval time.Duration
}

// NewJanitorWorker constructs a JanitorWorker.
func NewJanitorWorker(sweepers map[string]Sweeper, interval time.Duration) *JanitorWorker {
	return &JanitorWorker{
		sweepers: sweepers,
		interval: interval,
	}
}

// Start begins the sweep loop until context is canceled.
func (w *JanitorWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Int("sweepers", len(w.sweepers)).Msg("Starting janitor worker")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run()
		case <-ctx.Done():
			log.Info().Msg("Janitor worker stopped")
			return
		}
	}
}

func (w *JanitorWorker) run() int {
	total := 0
	for name, s := range w.sweepers {
		n := s.Sweep()
		if n > 0 {
			log.Debug().Str("store", name).Int("removed", n).Msg("Swept expired entries")
		}
		total += n
	}
	return total
}
