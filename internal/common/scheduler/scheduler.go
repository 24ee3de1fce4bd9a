package scheduler

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
)

// Handle is a cancellable timer. Cancelling an already-fired or
// already-cancelled handle is a no-op.
type Handle interface {
	Cancel()
}

// Scheduler arms one-shot and recurring timers. The state machine owns
// every handle it receives and must cancel it before re-arming, so a
// callback never races its own replacement.
type Scheduler interface {
	// At fires fn once at t. t must be in the future.
	At(t time.Time, fn func()) (Handle, error)

	// Every fires fn repeatedly at the given interval
	Every(interval time.Duration, fn func()) (Handle, error)

	// Stop cancels all outstanding timers and releases the scheduler
	Stop() error
}

// gocronScheduler implements Scheduler on top of gocron
type gocronScheduler struct {
	sched gocron.Scheduler
}

// New creates a started gocron-backed scheduler
func New() (*gocronScheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	sched.Start()

	return &gocronScheduler{sched: sched}, nil
}

// At fires fn once at t
func (g *gocronScheduler) At(t time.Time, fn func()) (Handle, error) {
	if fn == nil {
		return nil, errors.New("fn cannot be nil")
	}

	job, err := g.sched.NewJob(
		gocron.OneTimeJob(gocron.OneTimeJobStartDateTime(t)),
		gocron.NewTask(fn),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule job at %s: %w", t, err)
	}

	return &jobHandle{sched: g.sched, id: job.ID()}, nil
}

// Every fires fn at a fixed interval
func (g *gocronScheduler) Every(interval time.Duration, fn func()) (Handle, error) {
	if fn == nil {
		return nil, errors.New("fn cannot be nil")
	}

	job, err := g.sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(fn),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule job every %s: %w", interval, err)
	}

	return &jobHandle{sched: g.sched, id: job.ID()}, nil
}

// Stop shuts the scheduler down
func (g *gocronScheduler) Stop() error {
	return g.sched.Shutdown()
}

// jobHandle cancels a single gocron job
type jobHandle struct {
	sched gocron.Scheduler
	id    uuid.UUID
}

// Cancel removes the job. RemoveJob on a finished job returns an error
// we deliberately ignore; the job is gone either way.
func (h *jobHandle) Cancel() {
	_ = h.sched.RemoveJob(h.id)
}
