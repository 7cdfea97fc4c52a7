package timer

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/focusshield/focusshield/internal/domain"
)

// Service wraps the pure state machine with the read-compute-write cycle
// against the settings store. Every mutating operation reads the latest
// snapshot immediately before writing so that a restarted host resumes from
// persisted state, never from memory.
type Service struct {
	settings domain.SettingsStore
	stats    domain.StatisticsStore
	notifier domain.Notifier
	clock    func() time.Time
	logger   *zap.Logger
}

// NewService creates a timer service.
func NewService(
	settings domain.SettingsStore,
	stats domain.StatisticsStore,
	notifier domain.Notifier,
	logger *zap.Logger,
) *Service {
	return &Service{
		settings: settings,
		stats:    stats,
		notifier: notifier,
		clock:    time.Now,
		logger:   logger,
	}
}

// NewServiceWithClock creates a timer service with a fixed clock (for testing).
func NewServiceWithClock(
	settings domain.SettingsStore,
	stats domain.StatisticsStore,
	notifier domain.Notifier,
	clock func() time.Time,
	logger *zap.Logger,
) *Service {
	s := NewService(settings, stats, notifier, logger)
	s.clock = clock
	return s
}

// State returns the current persisted timer.
func (s *Service) State(ctx context.Context) (domain.PomodoroTimer, error) {
	settings, err := s.settings.Load(ctx)
	if err != nil {
		return domain.PomodoroTimer{}, fmt.Errorf("load settings: %w", err)
	}
	return settings.PomodoroTimer, nil
}

// Remaining returns seconds left in the current session.
func (s *Service) Remaining(ctx context.Context) (int, error) {
	t, err := s.State(ctx)
	if err != nil {
		return 0, err
	}
	return Remaining(t, s.clock()), nil
}

// Start begins a session in the target state and persists it.
func (s *Service) Start(ctx context.Context, target domain.TimerState) (domain.PomodoroTimer, error) {
	return s.mutate(ctx, func(t domain.PomodoroTimer) domain.PomodoroTimer {
		return Start(t, target, s.clock())
	})
}

// Pause freezes the running session and persists the snapshot.
func (s *Service) Pause(ctx context.Context) (domain.PomodoroTimer, error) {
	return s.mutate(ctx, func(t domain.PomodoroTimer) domain.PomodoroTimer {
		return Pause(t, s.clock())
	})
}

// Resume continues a paused session and persists it.
func (s *Service) Resume(ctx context.Context) (domain.PomodoroTimer, error) {
	return s.mutate(ctx, func(t domain.PomodoroTimer) domain.PomodoroTimer {
		return Resume(t, s.clock())
	})
}

// Reset forces the timer back to idle and persists it.
func (s *Service) Reset(ctx context.Context) (domain.PomodoroTimer, error) {
	return s.mutate(ctx, Reset)
}

// CheckCompletion recomputes remaining time and, if the session has run out,
// completes it: advances the state machine, credits focus statistics, and
// fires a notification. Returns true when a boundary was crossed. This is
// the single automatic completion path; recomputing immediately before
// completing keeps delivery at-most-once per boundary.
func (s *Service) CheckCompletion(ctx context.Context) (bool, error) {
	settings, err := s.settings.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("load settings: %w", err)
	}
	t := settings.PomodoroTimer
	now := s.clock()

	if !t.State.IsActive() || Remaining(t, now) > 0 {
		return false, nil
	}

	next, completion := Complete(t, now)
	settings.PomodoroTimer = next
	if err := s.settings.Save(ctx, settings); err != nil {
		return false, fmt.Errorf("save settings: %w", err)
	}

	s.logger.Info("timer session complete",
		zap.String("completed", string(completion.Completed)),
		zap.String("next", string(completion.Next)),
		zap.Bool("auto_started", completion.AutoStarted),
		zap.Int("session", next.CurrentSession))

	if completion.FocusSeconds > 0 {
		s.creditFocus(ctx, completion.FocusSeconds, now)
	}
	s.notify(completion)

	return true, nil
}

// creditFocus records a completed focus session in statistics. Statistics
// failures are logged, not propagated; bookkeeping never blocks the state
// transition that already happened.
func (s *Service) creditFocus(ctx context.Context, focusSeconds int, now time.Time) {
	stats, err := s.stats.Load(ctx, now.UnixMilli())
	if err != nil {
		s.logger.Warn("failed to load statistics", zap.Error(err))
		return
	}
	stats.TimerStats.SessionsCompleted++
	stats.TimerStats.TotalFocusTime += focusSeconds
	stats.LastUpdated = now.UnixMilli()
	if err := s.stats.Save(ctx, stats); err != nil {
		s.logger.Warn("failed to save statistics", zap.Error(err))
	}
}

func (s *Service) notify(c Completion) {
	if c.Title == "" || s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(c.Title, c.Message); err != nil {
		s.logger.Warn("notification failed", zap.Error(err))
	}
}

func (s *Service) mutate(ctx context.Context, f func(domain.PomodoroTimer) domain.PomodoroTimer) (domain.PomodoroTimer, error) {
	settings, err := s.settings.Load(ctx)
	if err != nil {
		return domain.PomodoroTimer{}, fmt.Errorf("load settings: %w", err)
	}
	settings.PomodoroTimer = f(settings.PomodoroTimer)
	if err := s.settings.Save(ctx, settings); err != nil {
		return domain.PomodoroTimer{}, fmt.Errorf("save settings: %w", err)
	}
	return settings.PomodoroTimer, nil
}
