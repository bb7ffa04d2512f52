// Package scheduler owns every periodic loop of the engine. Loops are
// independent: each runs in its own goroutine with its own interval, and a
// slow or failing tick in one never delays another.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/merchantops/sentinel/internal/monitoring/metrics"
	"github.com/rs/zerolog/log"
)

// Task is one independently-scheduled interval loop.
type Task struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// CalendarTask fires at absolute wall-clock times rather than fixed intervals.
// Next returns the first fire time strictly after the given instant.
type CalendarTask struct {
	Name string
	Next func(after time.Time) time.Time
	Run  func(ctx context.Context) error
}

// Scheduler holds named tasks in one place; Start and Stop operate over that
// set and are idempotent.
type Scheduler struct {
	mu       sync.Mutex
	tasks    []Task
	calendar []CalendarTask
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	running  bool
}

func New() *Scheduler { return &Scheduler{} }

func (s *Scheduler) AddTask(t Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, t)
}

func (s *Scheduler) AddCalendarTask(t CalendarTask) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calendar = append(s.calendar, t)
}

// Start launches every registered loop. Calling Start on a running scheduler
// is a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.running = true

	for _, t := range s.tasks {
		s.wg.Add(1)
		go s.runInterval(ctx, t)
	}
	for _, t := range s.calendar {
		s.wg.Add(1)
		go s.runCalendar(ctx, t)
	}
	log.Info().Int("tasks", len(s.tasks)).Int("calendar", len(s.calendar)).Msg("scheduler started")
}

// Stop cancels every loop and waits for in-flight ticks to finish. In-flight
// I/O completes but schedules no further work. Idempotent.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel := s.cancel
	s.mu.Unlock()

	cancel()
	s.wg.Wait()
	log.Info().Msg("scheduler stopped")
}

// Running reports whether the scheduler currently owns live loops.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Scheduler) runInterval(ctx context.Context, t Task) {
	defer s.wg.Done()
	interval := t.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx, t.Name, t.Run)
		}
	}
}

func (s *Scheduler) runCalendar(ctx context.Context, t CalendarTask) {
	defer s.wg.Done()
	for {
		next := t.Next(time.Now())
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			s.tick(ctx, t.Name, t.Run)
		}
	}
}

// tick runs one cycle. Errors are caught at the tick boundary and logged; they
// never crash the scheduler or block subsequent ticks.
func (s *Scheduler) tick(ctx context.Context, name string, run func(ctx context.Context) error) {
	defer func() {
		if r := recover(); r != nil {
			metrics.TickErrors.WithLabelValues(name).Inc()
			log.Error().Interface("panic", r).Str("task", name).Msg("task tick panicked")
		}
	}()
	if err := run(ctx); err != nil {
		metrics.TickErrors.WithLabelValues(name).Inc()
		log.Error().Err(err).Str("task", name).Msg("task tick failed")
		return
	}
	metrics.SchedulerTicks.WithLabelValues(name).Inc()
}
