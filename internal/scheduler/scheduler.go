// Package scheduler runs named jobs on a fixed interval or at a wall-clock
// time of day or week.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	day  = 24 * time.Hour
	week = 7 * day
)

// ErrUnknownJob is returned by Trigger when no job has the given name.
var ErrUnknownJob = errors.New("unknown job")

// Job is the callback of a scheduled job. A returned error is logged and
// recorded; it never cancels later runs.
type Job func(ctx context.Context) error

// Kind describes how a job is scheduled.
type Kind string

const (
	KindRecurring Kind = "recurring"
	KindDaily     Kind = "daily"
	KindWeekly    Kind = "weekly"
)

// JobStatus is a point-in-time view of one job.
type JobStatus struct {
	Name      string        `json:"name"`
	Kind      Kind          `json:"kind"`
	Period    time.Duration `json:"period"`
	NextRun   time.Time     `json:"nextRun"`
	LastRun   *time.Time    `json:"lastRun,omitempty"`
	LastError string        `json:"lastError,omitempty"`
	Runs      int           `json:"runs"`
}

type entry struct {
	name   string
	kind   Kind
	job    Job
	period time.Duration
	stop   chan struct{}

	next    time.Time
	lastRun time.Time
	lastErr string
	runs    int
}

// Scheduler owns a set of named jobs. All methods are safe for concurrent use.
type Scheduler struct {
	mu   sync.Mutex
	jobs map[string]*entry

	ctx context.Context
	loc *time.Location
	now func() time.Time
	log zerolog.Logger
}

type Option func(*Scheduler)

// WithLocation sets the time zone for daily and weekly jobs. Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(s *Scheduler) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithClock replaces time.Now when computing the first fire of daily and weekly jobs.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Scheduler) { s.log = l }
}

// WithContext sets the context passed to scheduled runs.
func WithContext(ctx context.Context) Option {
	return func(s *Scheduler) { s.ctx = ctx }
}

func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		jobs: make(map[string]*entry),
		ctx:  context.Background(),
		loc:  time.Local,
		now:  time.Now,
		log:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScheduleRecurring runs job every interval, starting one interval from now.
// An existing job with the same name is replaced.
func (s *Scheduler) ScheduleRecurring(name string, job Job, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("job %s: interval must be positive, got %v", name, interval)
	}
	s.start(name, KindRecurring, job, interval, interval)
	return nil
}

// ScheduleDailyAt runs job at hour:minute in the scheduler's time zone, then every 24 hours.
func (s *Scheduler) ScheduleDailyAt(name string, job Job, hour, minute int) error {
	if err := checkClock(hour, minute); err != nil {
		return fmt.Errorf("job %s: %w", name, err)
	}
	now := s.now().In(s.loc)
	s.start(name, KindDaily, job, NextDaily(now, hour, minute).Sub(now), day)
	return nil
}

// ScheduleWeeklyAt runs job on weekday at hour:minute, then every 7 days.
func (s *Scheduler) ScheduleWeeklyAt(name string, job Job, weekday time.Weekday, hour, minute int) error {
	if weekday < time.Sunday || weekday > time.Saturday {
		return fmt.Errorf("job %s: invalid weekday %d", name, weekday)
	}
	if err := checkClock(hour, minute); err != nil {
		return fmt.Errorf("job %s: %w", name, err)
	}
	now := s.now().In(s.loc)
	s.start(name, KindWeekly, job, NextWeekly(now, weekday, hour, minute).Sub(now), week)
	return nil
}

func checkClock(hour, minute int) error {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return fmt.Errorf("invalid time of day %02d:%02d", hour, minute)
	}
	return nil
}

// NextDaily returns the next hour:minute strictly after now, in now's location.
func NextDaily(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// NextWeekly returns the next weekday at hour:minute strictly after now.
func NextWeekly(now time.Time, weekday time.Weekday, hour, minute int) time.Time {
	days := (int(weekday) - int(now.Weekday()) + 7) % 7
	next := time.Date(now.Year(), now.Month(), now.Day()+days, hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 7)
	}
	return next
}

func (s *Scheduler) start(name string, kind Kind, job Job, first, period time.Duration) {
	e := &entry{
		name:   name,
		kind:   kind,
		job:    job,
		period: period,
		stop:   make(chan struct{}),
		next:   s.now().Add(first),
	}

	s.mu.Lock()
	if old, ok := s.jobs[name]; ok {
		close(old.stop)
	}
	s.jobs[name] = e
	s.mu.Unlock()

	s.log.Info().
		Str("job", name).
		Str("kind", string(kind)).
		Time("next_run", e.next).
		Dur("period", period).
		Msg("Job scheduled")

	go s.loop(e, first)
}

func (s *Scheduler) loop(e *entry, first time.Duration) {
	timer := time.NewTimer(first)
	defer timer.Stop()

	select {
	case <-timer.C:
		s.fire(e)
	case <-e.stop:
		return
	}

	ticker := time.NewTicker(e.period)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.fire(e)
		case <-e.stop:
			return
		}
	}
}

// fire runs a scheduled occurrence and books the result on the entry.
func (s *Scheduler) fire(e *entry) {
	select {
	case <-e.stop:
		return
	default:
	}

	started := s.now()
	s.mu.Lock()
	e.next = started.Add(e.period)
	s.mu.Unlock()

	err := s.run(s.ctx, e.name, e.job)

	s.mu.Lock()
	e.lastRun = started
	e.runs++
	e.lastErr = ""
	if err != nil {
		e.lastErr = err.Error()
	}
	s.mu.Unlock()
}

// run calls job, turning a panic into an error. Failures are logged here.
func (s *Scheduler) run(ctx context.Context, name string, job Job) (err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s panicked: %v", name, r)
			s.log.Error().
				Str("job", name).
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("Job panicked")
			return
		}
		if err != nil {
			s.log.Error().Err(err).Str("job", name).Dur("duration", time.Since(start)).Msg("Job failed")
			return
		}
		s.log.Debug().Str("job", name).Dur("duration", time.Since(start)).Msg("Job finished")
	}()
	return job(ctx)
}

// Trigger runs the named job now, outside its schedule, and returns its
// error. An unknown name only logs a warning and returns ErrUnknownJob.
func (s *Scheduler) Trigger(ctx context.Context, name string) error {
	s.mu.Lock()
	e, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		s.log.Warn().Str("job", name).Msg("Trigger for unknown job ignored")
		return fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}

	s.log.Info().Str("job", name).Msg("Job triggered")
	return s.run(ctx, name, e.job)
}

// Clear stops the named job. Runs already in progress finish normally.
func (s *Scheduler) Clear(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.jobs[name]; ok {
		close(e.stop)
		delete(s.jobs, name)
		s.log.Info().Str("job", name).Msg("Job cleared")
	}
}

// ClearAll stops every job.
func (s *Scheduler) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, e := range s.jobs {
		close(e.stop)
		delete(s.jobs, name)
	}
	s.log.Info().Msg("All jobs cleared")
}

// Names returns the scheduled job names in sorted order.
func (s *Scheduler) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Status reports every scheduled job, sorted by name.
func (s *Scheduler) Status() []JobStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]JobStatus, 0, len(s.jobs))
	for _, e := range s.jobs {
		st := JobStatus{
			Name:      e.name,
			Kind:      e.kind,
			Period:    e.period,
			NextRun:   e.next,
			LastError: e.lastErr,
			Runs:      e.runs,
		}
		if !e.lastRun.IsZero() {
			last := e.lastRun
			st.LastRun = &last
		}
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
