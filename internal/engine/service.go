package engine

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/focusshield/focusshield/internal/domain"
	"github.com/focusshield/focusshield/internal/stats"
)

// Evaluator loads the latest persisted snapshots, runs Decide, and records
// block statistics. It fails open: when the store cannot be read the
// navigation is allowed rather than silently blocked.
type Evaluator struct {
	settings domain.SettingsStore
	recorder *stats.Recorder
	clock    func() time.Time
	logger   *zap.Logger
}

// NewEvaluator creates an evaluator.
func NewEvaluator(settings domain.SettingsStore, recorder *stats.Recorder, logger *zap.Logger) *Evaluator {
	return &Evaluator{
		settings: settings,
		recorder: recorder,
		clock:    time.Now,
		logger:   logger,
	}
}

// NewEvaluatorWithClock creates an evaluator with a fixed clock (for testing).
func NewEvaluatorWithClock(settings domain.SettingsStore, recorder *stats.Recorder, clock func() time.Time, logger *zap.Logger) *Evaluator {
	e := NewEvaluator(settings, recorder, logger)
	e.clock = clock
	return e
}

// Evaluate decides one navigation and, on a block, records it. Statistics
// failures never flip the verdict; they are logged and dropped.
func (e *Evaluator) Evaluate(ctx context.Context, rawURL string) (domain.Verdict, error) {
	s, err := e.settings.Load(ctx)
	if err != nil {
		e.logger.Warn("settings unavailable, allowing navigation",
			zap.String("url", rawURL),
			zap.Error(err))
		return domain.Allow("settings unavailable"), nil
	}

	now := e.clock()
	verdict := Decide(rawURL, s, s.PomodoroTimer, now)

	if verdict.Block {
		e.logger.Info("navigation blocked",
			zap.String("url", rawURL),
			zap.String("domain", verdict.Domain),
			zap.String("reason", verdict.Reason),
			zap.Bool("from_timer", verdict.FromTimer),
			zap.String("remaining", remainingForDisplay(s.PomodoroTimer, now)))

		if err := e.recorder.RecordBlock(ctx, verdict.Domain, verdict.ZoneID, verdict.FromTimer, now.UnixMilli()); err != nil {
			e.logger.Warn("failed to record block statistics", zap.Error(err))
		}
	} else {
		e.logger.Debug("navigation allowed",
			zap.String("url", rawURL),
			zap.String("reason", verdict.Reason))
	}

	return verdict, nil
}
