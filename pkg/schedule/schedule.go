// Package schedule runs recurring jobs on a fixed interval or a 5-field
// cron expression.
//
//	s := schedule.New(log)
//	s.Cron("0 3 * * *").Name("backup.archive").WithoutOverlapping().Run(archive)
//	s.Start(ctx)
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Task is one scheduled job. ctx ends when the scheduler stops.
type Task func(ctx context.Context) error

type entry struct {
	id        string
	interval  time.Duration
	cronExpr  string
	task      Task
	lastRun   time.Time
	running   bool
	noOverlap bool
	mu        sync.Mutex
}

// Scheduler holds the registered entries. The zero value is not usable:
// build one with New.
type Scheduler struct {
	log  *slog.Logger
	now  func() time.Time
	tick time.Duration

	mu      sync.Mutex
	entries []*entry
	wg      sync.WaitGroup
}

// New returns an empty scheduler logging to log.
func New(log *slog.Logger) *Scheduler {
	return &Scheduler{log: log, now: time.Now, tick: time.Second}
}

// Schedule is a fluent builder for a single entry before it is registered.
type Schedule struct {
	s *Scheduler
	e *entry
}

// Every schedules a task every d. The first run happens on the first tick.
func (s *Scheduler) Every(d time.Duration) *Schedule {
	return &Schedule{s: s, e: &entry{interval: d}}
}

// Daily schedules a task every 24 hours.
func (s *Scheduler) Daily() *Schedule { return s.Every(24 * time.Hour) }

// Cron schedules a task on a 5-field cron expression (min hour dom mon dow).
// Each field is *, a number, */step, a-b, or a comma list of those. Use
// ParseCron to check an expression first.
func (s *Scheduler) Cron(expr string) *Schedule {
	return &Schedule{s: s, e: &entry{cronExpr: expr}}
}

// WithoutOverlapping skips a run while the previous one is still executing.
func (sc *Schedule) WithoutOverlapping() *Schedule {
	sc.e.noOverlap = true
	return sc
}

// Name gives the entry an identifier for logging.
func (sc *Schedule) Name(id string) *Schedule {
	sc.e.id = id
	return sc
}

// Run registers fn.
func (sc *Schedule) Run(fn Task) {
	sc.e.task = fn
	sc.s.mu.Lock()
	defer sc.s.mu.Unlock()
	if sc.e.id == "" {
		sc.e.id = fmt.Sprintf("task-%d", len(sc.s.entries)+1)
	}
	sc.s.entries = append(sc.s.entries, sc.e)
}

// Start runs the dispatch loop in the background until ctx ends. Wait
// blocks until the loop and every running task have returned.
func (s *Scheduler) Start(ctx context.Context) {
	s.wg.Add(1)
	go s.run(ctx)
	s.log.Info("schedule: started", "tasks", len(s.List()))
}

// Wait blocks until the scheduler has stopped.
func (s *Scheduler) Wait() { s.wg.Wait() }

func (s *Scheduler) run(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("schedule: stopped")
			return
		case <-ticker.C:
			now := s.now()
			s.mu.Lock()
			current := append([]*entry(nil), s.entries...)
			s.mu.Unlock()

			for _, e := range current {
				if e.due(now) {
					s.dispatch(ctx, e, now)
				}
			}
		}
	}
}

func (e *entry) due(now time.Time) bool {
	e.mu.Lock()
	last := e.lastRun
	e.mu.Unlock()

	if e.cronExpr != "" {
		// Ticks are finer than a minute; fire once per matching minute.
		if !last.IsZero() && last.Truncate(time.Minute).Equal(now.Truncate(time.Minute)) {
			return false
		}
		return matchCron(e.cronExpr, now)
	}
	return last.IsZero() || now.Sub(last) >= e.interval
}

func (s *Scheduler) dispatch(ctx context.Context, e *entry, now time.Time) {
	e.mu.Lock()
	if e.noOverlap && e.running {
		e.mu.Unlock()
		s.log.Warn("schedule: skipping overlapping task", "id", e.id)
		return
	}
	e.running = true
	e.lastRun = now
	e.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			e.mu.Lock()
			e.running = false
			e.mu.Unlock()
			if r := recover(); r != nil {
				s.log.Error("schedule: task panicked", "id", e.id, "panic", r)
			}
		}()

		start := time.Now()
		if err := e.task(ctx); err != nil {
			s.log.Error("schedule: task failed", "id", e.id, "err", err)
			return
		}
		s.log.Info("schedule: task done", "id", e.id, "duration", time.Since(start).String())
	}()
}

// List describes the registered entries, e.g. "backup.archive  [0 3 * * *]".
func (s *Scheduler) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		freq := e.cronExpr
		if freq == "" {
			freq = e.interval.String()
		}
		out = append(out, fmt.Sprintf("%s  [%s]", e.id, freq))
	}
	return out
}

// ─── Cron ────────────────────────────────────────────────────────────────────

var cronBounds = [5][2]int{{0, 59}, {0, 23}, {1, 31}, {1, 12}, {0, 6}}

// ParseCron reports whether expr is a cron expression Cron understands.
func ParseCron(expr string) error {
	fields := strings.Fields(expr)
	if len(fields) != 5 {
		return fmt.Errorf("schedule: cron %q: want 5 fields, got %d", expr, len(fields))
	}
	for i, f := range fields {
		for _, part := range strings.Split(f, ",") {
			if _, err := parsePart(part, cronBounds[i][0], cronBounds[i][1]); err != nil {
				return fmt.Errorf("schedule: cron %q: %w", expr, err)
			}
		}
	}
	return nil
}

func matchCron(expr string, t time.Time) bool {
	fields := strings.Fields(expr)
	if len(fields) != 5 {
		return false
	}
	vals := [5]int{t.Minute(), t.Hour(), t.Day(), int(t.Month()), int(t.Weekday())}
	for i, f := range fields {
		if !matchField(f, vals[i], cronBounds[i][0], cronBounds[i][1]) {
			return false
		}
	}
	return true
}

func matchField(field string, val, lo, hi int) bool {
	for _, part := range strings.Split(field, ",") {
		m, err := parsePart(part, lo, hi)
		if err == nil && m(val) {
			return true
		}
	}
	return false
}

// parsePart turns *, N, */S or A-B into a matcher.
func parsePart(part string, lo, hi int) (func(int) bool, error) {
	num := func(s string) (int, error) {
		n, err := strconv.Atoi(s)
		if err != nil || n < lo || n > hi {
			return 0, fmt.Errorf("field %q out of range %d-%d", part, lo, hi)
		}
		return n, nil
	}
	switch {
	case part == "*":
		return func(int) bool { return true }, nil
	case strings.HasPrefix(part, "*/"):
		step, err := strconv.Atoi(part[2:])
		if err != nil || step <= 0 {
			return nil, fmt.Errorf("bad step %q", part)
		}
		return func(v int) bool { return v%step == 0 }, nil
	case strings.Contains(part, "-"):
		a, b, _ := strings.Cut(part, "-")
		from, err := num(a)
		if err != nil {
			return nil, err
		}
		to, err := num(b)
		if err != nil {
			return nil, err
		}
		return func(v int) bool { return v >= from && v <= to }, nil
	default:
		n, err := num(part)
		if err != nil {
			return nil, err
		}
		return func(v int) bool { return v == n }, nil
	}
}
