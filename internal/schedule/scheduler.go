package schedule

import (
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler registers callbacks against wall-clock time: one-shot jobs at an
// absolute instant and recurring jobs on a cron expression. Jobs are keyed by
// a caller-built string id; registering an id that already exists replaces
// the previous job. At most one job per key, by policy — callers wanting
// distinct concurrent jobs must build distinct ids.
//
// Nothing here is persisted. Recurring jobs are re-registered at startup from
// application policy, and pending one-shots are lost on restart.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
	now    func() time.Time

	mu       sync.Mutex
	entries  map[string]cron.EntryID
	oneShots map[string]*oneShot
}

type oneShot struct {
	timer *time.Timer
	at    time.Time
}

// New builds a stopped scheduler; call Start once the jobs are registered.
func New(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cron:     cron.New(),
		logger:   logger,
		now:      time.Now,
		entries:  make(map[string]cron.EntryID),
		oneShots: make(map[string]*oneShot),
	}
}

// SetClock overrides the wall clock used for one-shot scheduling, for tests.
func (s *Scheduler) SetClock(now func() time.Time) {
	s.now = now
}

// Start begins firing recurring jobs. One-shot timers run regardless.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop cancels every pending job and waits for running recurring callbacks.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()

	s.mu.Lock()
	for id, job := range s.oneShots {
		job.timer.Stop()
		delete(s.oneShots, id)
	}
	s.mu.Unlock()

	<-ctx.Done()
}

// At registers fn to fire once at the given time and returns the effective
// fire time. A time not after "now" is rolled forward by 24 hours rather
// than firing immediately or being rejected.
func (s *Scheduler) At(id string, at time.Time, fn func()) time.Time {
	now := s.now()
	if !at.After(now) {
		at = at.Add(24 * time.Hour)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.oneShots[id]; ok {
		old.timer.Stop()
		s.logger.Debug("one-shot job replaced", slog.String("id", id))
	}

	timer := time.AfterFunc(at.Sub(now), func() {
		s.mu.Lock()
		delete(s.oneShots, id)
		s.mu.Unlock()
		fn()
	})
	s.oneShots[id] = &oneShot{timer: timer, at: at}

	s.logger.Info("one-shot job scheduled", slog.String("id", id), slog.Time("at", at))
	return at
}

// Cron registers fn on a standard five-field cron expression. Recurring jobs
// repeat until the process stops.
func (s *Scheduler) Cron(id, spec string, fn func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.entries[id]; ok {
		s.cron.Remove(old)
		s.logger.Debug("recurring job replaced", slog.String("id", id))
	}

	entryID, err := s.cron.AddFunc(spec, fn)
	if err != nil {
		return err
	}
	s.entries[id] = entryID

	s.logger.Info("recurring job scheduled", slog.String("id", id), slog.String("spec", spec))
	return nil
}

// ScheduledAt reports the fire time of a pending one-shot job.
func (s *Scheduler) ScheduledAt(id string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.oneShots[id]
	if !ok {
		return time.Time{}, false
	}
	return job.at, true
}

// HasRecurring reports whether a recurring job is registered under id.
func (s *Scheduler) HasRecurring(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[id]
	return ok
}
