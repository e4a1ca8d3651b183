// Package scheduler provides background sync scheduling.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/rentnest/rentnest/backend/internal/logging"
	syncpkg "github.com/rentnest/rentnest/backend/internal/sync"
)

// Scheduler runs periodic sync passes while the device is online. Passes
// are skipped while one is in flight; the engine's own reentrancy guard is
// the backstop.
type Scheduler struct {
	engine    syncpkg.Engine
	resources []string
	interval  time.Duration
	timeout   time.Duration

	stopCh    chan struct{}
	wg        sync.WaitGroup
	mu        sync.RWMutex
	isRunning bool
	isOnline  bool
}

// Config holds scheduler configuration.
type Config struct {
	Interval time.Duration // how often to sync when online (default: 15 minutes)
	Timeout  time.Duration // per-pass deadline (default: 5 minutes)
}

// DefaultConfig returns the default scheduler configuration.
func DefaultConfig() *Config {
	return &Config{
		Interval: 15 * time.Minute,
		Timeout:  5 * time.Minute,
	}
}

// New creates a Scheduler syncing the given resources.
func New(engine syncpkg.Engine, resources []string, config *Config) *Scheduler {
	if config == nil {
		config = DefaultConfig()
	}
	return &Scheduler{
		engine:    engine,
		resources: append([]string(nil), resources...),
		interval:  config.Interval,
		timeout:   config.Timeout,
		stopCh:    make(chan struct{}),
		isOnline:  true, // assume online initially
	}
}

// Start starts the background loop. Repeated calls are no-ops.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = true
	s.mu.Unlock()

	s.wg.Add(1)
	go s.loop(ctx)

	logging.Info("Background sync scheduler started", map[string]interface{}{
		"interval":  s.interval.String(),
		"resources": s.resources,
	})
}

// Stop stops the background loop gracefully.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	s.mu.Unlock()

	close(s.stopCh)
	s.wg.Wait()

	logging.Info("Background sync scheduler stopped", nil)
}

// SetOnlineStatus records connectivity changes. While offline no sync
// attempts are made; pending records accumulate locally.
func (s *Scheduler) SetOnlineStatus(isOnline bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isOnline != isOnline {
		logging.Info("Online status changed", map[string]interface{}{
			"was_online": s.isOnline,
			"is_online":  isOnline,
		})
	}
	s.isOnline = isOnline
}

// IsOnline returns the recorded connectivity state.
func (s *Scheduler) IsOnline() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isOnline
}

// loop ticks at the configured interval and runs a pass when idle.
func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			if !s.IsOnline() {
				continue
			}
			if s.engine.Status() == syncpkg.SyncStatusSyncing {
				logging.Debug("Sync already in progress, skipping", nil)
				continue
			}
			s.runSync(ctx)
		}
	}
}

// runSync executes one bounded pass.
func (s *Scheduler) runSync(ctx context.Context) {
	syncCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err := s.engine.SyncAll(syncCtx, s.resources)
	if err != nil {
		logging.Warn("Periodic sync failed", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	logging.Info("Periodic sync completed", map[string]interface{}{
		"synced":    result.Stats.Synced,
		"errors":    result.Stats.Errors,
		"conflicts": result.Stats.Conflicts,
		"queued":    result.TotalConflictsQueued,
	})
}
