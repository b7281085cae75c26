package discovery

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// ScanCycleInterval is the scan phase's cadence (spec.md §4.10: "every
// 24h").
const ScanCycleInterval = 24 * time.Hour

// ValidateCycleInterval is the validate phase's cadence (spec.md §4.10:
// "every 2h").
const ValidateCycleInterval = 2 * time.Hour

// Loop owns the two cron entries driving the scan and validate phases,
// grounded on scheduler.Scheduler's cron.Cron-based wiring.
type Loop struct {
	scanner   *Scanner
	validator *Validator

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
}

// NewLoop builds a Loop.
func NewLoop(scanner *Scanner, validator *Validator) *Loop {
	return &Loop{scanner: scanner, validator: validator}
}

// Status reports whether the loop is running and, if so, when each phase
// next fires.
type Status struct {
	Running      bool
	NextScan     time.Time
	NextValidate time.Time
}

// Start registers both cron entries and starts the cron scheduler. ctx is
// retained for the lifetime of every scheduled run, not just this call.
// Calling Start while already running is a no-op, so the HTTP start
// endpoint is safe to call more than once.
func (l *Loop) Start(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.running {
		return
	}

	l.cron = cron.New()
	l.cron.Schedule(cron.ConstantDelaySchedule{Delay: ScanCycleInterval}, cron.FuncJob(func() {
		l.runScan(ctx)
	}))
	l.cron.Schedule(cron.ConstantDelaySchedule{Delay: ValidateCycleInterval}, cron.FuncJob(func() {
		l.runValidate(ctx)
	}))
	l.cron.Start()
	l.running = true
	slog.Info("discovery loop started",
		slog.Duration("scan_interval", ScanCycleInterval), slog.Duration("validate_interval", ValidateCycleInterval))
}

// Stop halts the cron scheduler, waiting for any in-flight run to finish.
// Calling Stop while not running is a no-op.
func (l *Loop) Stop() context.Context {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.running {
		return context.Background()
	}
	l.running = false
	return l.cron.Stop()
}

// GetStatus reports the loop's current run state.
func (l *Loop) GetStatus() Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.running {
		return Status{Running: false}
	}
	entries := l.cron.Entries()
	st := Status{Running: true}
	if len(entries) > 0 {
		st.NextScan = entries[0].Next
	}
	if len(entries) > 1 {
		st.NextValidate = entries[1].Next
	}
	return st
}

func (l *Loop) runScan(ctx context.Context) {
	created, err := l.scanner.Scan(ctx)
	if err != nil {
		slog.Error("discovery: scan cycle failed", slog.Any("error", err))
		return
	}
	slog.Info("discovery: scan cycle completed", slog.Int("new_candidates", created))
}

func (l *Loop) runValidate(ctx context.Context) {
	processed, err := l.validator.Validate(ctx)
	if err != nil {
		slog.Error("discovery: validate cycle failed", slog.Any("error", err))
		return
	}
	slog.Info("discovery: validate cycle completed", slog.Int("processed", processed))
}
