package sync

import (
	"context"
	stdsync "sync"
	"time"

	apperrors "github.com/rentnest/rentnest/backend/internal/errors"
	"github.com/rentnest/rentnest/backend/internal/logging"
)

// MaxRetries bounds the number of retry attempts per top-level sync
// invocation.
const MaxRetries = 3

// RetryController re-runs failed sync passes with exponential backoff.
// Attempt n waits 2^n seconds first (n starting at 1). Exhausting
// MaxRetries is terminal until Start is called again; the counter never
// resets on its own.
type RetryController struct {
	engine Engine

	mu        stdsync.Mutex
	resources []string
	attempts  int

	// sleep is replaceable in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRetryController creates a controller over an engine.
func NewRetryController(engine Engine) *RetryController {
	return &RetryController{
		engine: engine,
		sleep:  sleepContext,
	}
}

// Start runs a fresh top-level sync pass, resetting the retry counter.
func (r *RetryController) Start(ctx context.Context, resources []string) (*SyncResult, error) {
	r.mu.Lock()
	r.resources = append([]string(nil), resources...)
	r.attempts = 0
	r.mu.Unlock()

	return r.engine.SyncAll(ctx, resources)
}

// Retry runs another attempt of the last started pass after its backoff
// delay. New invocations are rejected while a pass is in flight.
func (r *RetryController) Retry(ctx context.Context) (*SyncResult, error) {
	r.mu.Lock()
	if r.resources == nil {
		r.mu.Unlock()
		return nil, apperrors.New(apperrors.ErrSyncNotConfigured, "no sync started yet")
	}
	if r.engine.Status() == SyncStatusSyncing {
		r.mu.Unlock()
		return nil, apperrors.New(apperrors.ErrSyncInProgress, "a sync pass is already running")
	}
	if r.attempts >= MaxRetries {
		r.mu.Unlock()
		err := apperrors.Newf(apperrors.ErrRetryLimitExceeded,
			"retry limit of %d reached; start a new sync to reset", MaxRetries)
		return nil, err
	}
	r.attempts++
	attempt := r.attempts
	resources := r.resources
	r.mu.Unlock()

	delay := backoffDelay(attempt)
	logging.Info("Retrying sync", map[string]interface{}{
		"attempt": attempt,
		"max":     MaxRetries,
		"delay":   delay.String(),
	})
	if err := r.sleep(ctx, delay); err != nil {
		return nil, err
	}

	return r.engine.SyncAll(ctx, resources)
}

// Attempts returns the number of retries consumed since the last Start.
func (r *RetryController) Attempts() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.attempts
}

// backoffDelay is 2^attempt seconds.
func backoffDelay(attempt int) time.Duration {
	return time.Duration(1<<uint(attempt)) * time.Second
}

// sleepContext waits for d or until the context is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
