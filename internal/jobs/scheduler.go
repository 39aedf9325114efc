package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/magabrotheeeer/diary-sync/internal/lib/sl"
)

var (
	ErrUnknownJob       = errors.New("unknown job")
	ErrAlreadyRunning   = errors.New("job is already running")
	ErrDuplicateJob     = errors.New("job already registered")
	ErrSchedulerStopped = errors.New("scheduler is not running")
)

type run struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Scheduler запускает задачи по запросу и по расписанию.
type Scheduler struct {
	runner *Runner
	log    *slog.Logger

	maxRetries   int
	retryInitial time.Duration
	retryMax     time.Duration
	jitter       float64

	mu       sync.Mutex
	families map[string]Family
	active   map[string]*run
	ctx      context.Context
	cancel   context.CancelFunc
	stopped  bool
	wg       sync.WaitGroup
}

type Option func(*Scheduler)

// WithRetry задаёт число повторов и границы экспоненциальной задержки.
func WithRetry(maxRetries int, initial, maxDelay time.Duration) Option {
	return func(s *Scheduler) {
		s.maxRetries = maxRetries
		s.retryInitial = initial
		s.retryMax = maxDelay
	}
}

// WithJitter задаёт долю интервала, на которую случайно сдвигается каждый тик.
func WithJitter(fraction float64) Option {
	return func(s *Scheduler) {
		s.jitter = fraction
	}
}

func NewScheduler(runner *Runner, log *slog.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{
		runner:       runner,
		log:          log,
		maxRetries:   3,
		retryInitial: 30 * time.Second,
		retryMax:     10 * time.Minute,
		jitter:       0.1,
		families:     make(map[string]Family),
		active:       make(map[string]*run),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register добавляет семейство. Вызывается до Start.
func (s *Scheduler) Register(f Family) error {
	const op = "jobs.Scheduler.Register"

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.families[f.Name]; ok {
		return fmt.Errorf("%s: %w: %s", op, ErrDuplicateJob, f.Name)
	}
	s.families[f.Name] = f
	return nil
}

// Families возвращает отсортированные имена семейств.
func (s *Scheduler) Families() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.families))
	for name := range s.families {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Known сообщает, зарегистрировано ли семейство.
func (s *Scheduler) Known(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.families[name]
	return ok
}

// Running сообщает, идёт ли сейчас запуск семейства.
func (s *Scheduler) Running(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.active[name]
	return ok
}

// Start запускает периодические циклы и не блокирует.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped || s.ctx != nil {
		return ErrSchedulerStopped
	}
	s.ctx, s.cancel = context.WithCancel(ctx)

	for _, f := range s.families {
		if f.Interval <= 0 {
			if f.RunOnStart {
				if err := s.enqueueLocked(f, 0); err != nil {
					s.log.Warn("failed to start job", slog.String("family", f.Name), sl.Err(err))
				}
			}
			continue
		}
		s.wg.Add(1)
		go s.loop(s.ctx, f)
	}
	s.log.Info("scheduler started", slog.Int("families", len(s.families)))
	return nil
}

// Trigger запускает задачу вне расписания.
func (s *Scheduler) Trigger(name string) error {
	const op = "jobs.Scheduler.Trigger"

	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.families[name]
	if !ok {
		return fmt.Errorf("%s: %w: %s", op, ErrUnknownJob, name)
	}
	if err := s.enqueueLocked(f, 0); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Stop отменяет все запуски и ждёт их завершения.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()

	s.wg.Wait()
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context, f Family) {
	defer s.wg.Done()

	if f.RunOnStart {
		s.tick(f)
	}

	ticker := time.NewTicker(s.interval(f.Interval))
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.tick(f)
			ticker.Reset(s.interval(f.Interval))
		case <-ctx.Done():
			return
		}
	}
}

func (s *Scheduler) tick(f Family) {
	s.mu.Lock()
	err := s.enqueueLocked(f, 0)
	s.mu.Unlock()
	switch {
	case errors.Is(err, ErrAlreadyRunning):
		s.log.Debug("skip scheduled run, previous still running", slog.String("family", f.Name))
	case err != nil:
		s.log.Warn("scheduled run not started", slog.String("family", f.Name), sl.Err(err))
	}
}

// interval сдвигает интервал на случайную величину в пределах jitter.
func (s *Scheduler) interval(base time.Duration) time.Duration {
	j := time.Duration(float64(base) * s.jitter)
	if j <= 0 {
		return base
	}
	//nolint:gosec // криптостойкость не нужна
	return base + time.Duration(rand.Int64N(int64(2*j))) - j
}

// enqueueLocked запускает задачу с учётом политики семейства. Вызывается под s.mu.
func (s *Scheduler) enqueueLocked(f Family, attempt int) error {
	if s.stopped || s.ctx == nil {
		return ErrSchedulerStopped
	}

	prev := s.active[f.Name]
	if prev != nil {
		if f.Policy == KeepExisting {
			return ErrAlreadyRunning
		}
		prev.cancel()
	}

	ctx, cancel := context.WithCancel(s.ctx)
	r := &run{cancel: cancel, done: make(chan struct{})}
	s.active[f.Name] = r
	s.wg.Add(1)

	go func() {
		defer s.wg.Done()
		defer cancel()

		outcome := Failure
		if prev != nil {
			<-prev.done
		}
		// Запуск, вытесненный следующим ещё в очереди, не выполняется.
		if ctx.Err() == nil {
			outcome, _ = s.runner.Run(ctx, f, attempt)
		} else {
			s.log.Debug("queued run superseded", slog.String("family", f.Name))
		}

		s.mu.Lock()
		if s.active[f.Name] == r {
			delete(s.active, f.Name)
		}
		s.mu.Unlock()
		close(r.done)

		if outcome == Retry && ctx.Err() == nil {
			s.retry(f, attempt+1)
		}
	}()
	return nil
}

// retry ставит повтор после экспоненциальной задержки.
func (s *Scheduler) retry(f Family, attempt int) {
	if attempt > s.maxRetries {
		s.log.Warn("job retries exhausted", slog.String("family", f.Name), slog.Int("attempts", attempt))
		return
	}
	delay := s.retryDelay(attempt)
	s.log.Info("job retry scheduled",
		slog.String("family", f.Name),
		slog.Int("attempt", attempt),
		slog.Duration("delay", delay),
	)

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	ctx := s.ctx
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return
		}

		s.mu.Lock()
		err := s.enqueueLocked(f, attempt)
		s.mu.Unlock()
		if err != nil {
			s.log.Debug("retry dropped", slog.String("family", f.Name), sl.Err(err))
		}
	}()
}

// retryDelay задержка перед попыткой attempt (с 1).
func (s *Scheduler) retryDelay(attempt int) time.Duration {
	b := &backoff.ExponentialBackOff{
		InitialInterval:     s.retryInitial,
		RandomizationFactor: backoff.DefaultRandomizationFactor,
		Multiplier:          backoff.DefaultMultiplier,
		MaxInterval:         s.retryMax,
	}
	b.Reset()
	var d time.Duration
	for i := 0; i < attempt; i++ {
		d = b.NextBackOff()
	}
	return d
}
