// Package cache holds the in-memory expiring maps used for sign-in
// sessions, plus a janitor that sweeps them in the background.
package cache

import (
	"log/slog"
	"sync"
	"time"

	applog "tractorlog/internal/log"
)

// Sweeper is anything holding entries that can go stale.
type Sweeper interface {
	// Sweep drops every entry expired at now and reports how many went.
	Sweep(now time.Time) int
}

// Janitor sweeps its watched stores on a fixed interval until stopped.
type Janitor struct {
	mu       sync.Mutex
	watched  []Sweeper
	interval time.Duration
	logger   *slog.Logger

	stop     chan struct{}
	done     chan struct{}
	running  bool
	stopOnce sync.Once
}

// NewJanitor returns a janitor that sweeps every interval once started.
// A nil logger falls back to slog.Default.
func NewJanitor(interval time.Duration, logger *slog.Logger) *Janitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Janitor{
		interval: interval,
		logger:   logger.With(applog.FieldComponent, applog.ComponentCache),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Watch adds s to the next sweeps.
func (j *Janitor) Watch(s Sweeper) {
	j.mu.Lock()
	j.watched = append(j.watched, s)
	j.mu.Unlock()
}

// SweepNow runs one pass over every watched store.
func (j *Janitor) SweepNow(now time.Time) int {
	j.mu.Lock()
	watched := append([]Sweeper(nil), j.watched...)
	j.mu.Unlock()

	removed := 0
	for _, s := range watched {
		removed += s.Sweep(now)
	}
	if removed > 0 {
		j.logger.Debug("Expired entries swept", applog.FieldCount, removed)
	}
	return removed
}

// Start launches the background loop. Calling it twice is a no-op.
func (j *Janitor) Start() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.running {
		return
	}
	j.running = true
	go j.loop()
}

func (j *Janitor) loop() {
	defer close(j.done)
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			j.SweepNow(now)
		case <-j.stop:
			return
		}
	}
}

// Stop ends the loop and waits for it. Safe to call more than once and
// without Start.
func (j *Janitor) Stop() {
	j.stopOnce.Do(func() {
		close(j.stop)
		j.mu.Lock()
		running := j.running
		j.mu.Unlock()
		if running {
			<-j.done
		}
	})
}
