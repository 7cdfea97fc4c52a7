// Package daemon runs the background tick loop.
package daemon

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/focusshield/focusshield/internal/domain"
	"github.com/focusshield/focusshield/internal/timer"
)

// Config holds ticker configuration.
type Config struct {
	// TickInterval is how often timer completion is checked. The timer's
	// remaining time derives from absolute timestamps, so a late or missed
	// tick self-corrects on the next one.
	TickInterval time.Duration
}

// DefaultConfig returns the default ticker configuration.
func DefaultConfig() Config {
	return Config{TickInterval: time.Minute}
}

// Ticker drives Pomodoro session completion while the process runs. It owns
// no timer state: every tick reloads the persisted snapshot, so a restarted
// daemon picks up exactly where the previous one stopped.
type Ticker struct {
	config   Config
	timers   *timer.Service
	registry domain.DaemonRegistry
	pm       domain.ProcessManager
	logger   *zap.Logger
}

// NewTicker creates a ticker daemon.
func NewTicker(
	config Config,
	timers *timer.Service,
	registry domain.DaemonRegistry,
	pm domain.ProcessManager,
	logger *zap.Logger,
) *Ticker {
	return &Ticker{
		config:   config,
		timers:   timers,
		registry: registry,
		pm:       pm,
		logger:   logger,
	}
}

// Run starts the tick loop. This blocks until the context is canceled.
func (t *Ticker) Run(ctx context.Context) error {
	pid := t.pm.GetCurrentPID()
	if err := t.registry.Register(pid, time.Now().UnixMilli()); err != nil {
		t.logger.Error("failed to register daemon", zap.Error(err))
		return err
	}
	defer func() {
		if err := t.registry.Clear(); err != nil {
			t.logger.Warn("failed to clear pidfile", zap.Error(err))
		}
	}()

	t.logger.Info("tick daemon started",
		zap.Int("pid", pid),
		zap.Duration("tick_interval", t.config.TickInterval))

	// Correct any boundary that passed while the daemon was down.
	t.tick(ctx)

	ticker := time.NewTicker(t.config.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			t.logger.Info("tick daemon stopping")
			return ctx.Err()
		case <-ticker.C:
			t.tick(ctx)
		}
	}
}

// tick checks for a completed session. Errors are logged and the loop keeps
// going; the next tick retries against fresh state.
func (t *Ticker) tick(ctx context.Context) {
	completed, err := t.timers.CheckCompletion(ctx)
	if err != nil {
		t.logger.Warn("timer completion check failed", zap.Error(err))
		return
	}
	if completed {
		t.logger.Debug("session boundary handled")
	}
}
