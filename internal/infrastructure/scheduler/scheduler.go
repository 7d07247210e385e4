// Package scheduler delivers listing expirations.
package scheduler

import (
	"context"
	"sync"
	"time"

	"foodshare/pkg/logger"
)

// Expirer is the listing side of expiration. Both calls must be idempotent.
type Expirer interface {
	ExpireListing(ctx context.Context, listingID string) error
	ExpireOverdue(ctx context.Context) (int, error)
}

type armed struct {
	timer *time.Timer
	seq   uint64
}

// TimerScheduler arms one in-process timer per listing and backs them with a
// periodic sweep over persisted expiry times. Timers do not survive a restart;
// the sweep, which also runs at startup, picks up whatever they missed.
type TimerScheduler struct {
	mu      sync.Mutex
	timers  map[string]armed
	seq     uint64
	expirer Expirer
	ctx     context.Context
	now     func() time.Time
}

func New() *TimerScheduler {
	return &TimerScheduler{
		timers: make(map[string]armed),
		now:    time.Now,
	}
}

// Schedule arms a one-shot expiry for listingID, replacing any earlier one.
// Timers that fire before Start are skipped and left to the sweep.
func (s *TimerScheduler) Schedule(listingID string, fireAt time.Time) {
	delay := fireAt.Sub(s.now())
	if delay < 0 {
		delay = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if a, ok := s.timers[listingID]; ok {
		a.timer.Stop()
	}
	s.seq++
	seq := s.seq
	s.timers[listingID] = armed{
		timer: time.AfterFunc(delay, func() { s.fire(listingID, seq) }),
		seq:   seq,
	}
}

func (s *TimerScheduler) Cancel(listingID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a, ok := s.timers[listingID]; ok {
		a.timer.Stop()
		delete(s.timers, listingID)
	}
}

// Pending reports how many timers are armed.
func (s *TimerScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

func (s *TimerScheduler) fire(listingID string, seq uint64) {
	s.mu.Lock()
	if a, ok := s.timers[listingID]; ok && a.seq == seq {
		delete(s.timers, listingID)
	}
	expirer, ctx := s.expirer, s.ctx
	s.mu.Unlock()

	if expirer == nil {
		return
	}
	if err := expirer.ExpireListing(ctx, listingID); err != nil {
		logger.Error("Expiration of listing %s failed: %v", listingID, err)
	}
}

// Start binds the expirer, runs one sweep and keeps sweeping every interval
// until ctx is done. Armed timers are stopped on shutdown.
func (s *TimerScheduler) Start(ctx context.Context, expirer Expirer, interval time.Duration) {
	s.mu.Lock()
	s.expirer = expirer
	s.ctx = ctx
	s.mu.Unlock()

	s.sweep(ctx)

	ticker := time.NewTicker(interval)
	go func() {
		for {
			select {
			case <-ticker.C:
				s.sweep(ctx)
			case <-ctx.Done():
				ticker.Stop()
				s.stopAll()
				return
			}
		}
	}()

	logger.Info("Expiration sweep started (every %s)", interval)
}

func (s *TimerScheduler) sweep(ctx context.Context) {
	n, err := s.expirer.ExpireOverdue(ctx)
	if err != nil {
		logger.Error("Expiration sweep error: %v", err)
		return
	}
	if n > 0 {
		logger.Info("Expiration sweep expired %d listings", n)
	}
}

func (s *TimerScheduler) stopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, a := range s.timers {
		a.timer.Stop()
		delete(s.timers, id)
	}
}
