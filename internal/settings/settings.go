// Package settings is the mutation boundary for the persisted settings
// aggregate. Validation happens here, on input; the decision engine accepts
// whatever is already stored and degrades gracefully instead of failing.
package settings

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/focusshield/focusshield/internal/domain"
)

// ErrZoneNotFound is returned when a zone ID has no match.
var ErrZoneNotFound = fmt.Errorf("zone not found")

// Manager applies validated mutations to the settings document. Every
// mutation is a fresh read-modify-write against the store.
type Manager struct {
	store    domain.SettingsStore
	validate *validator.Validate
	clock    func() time.Time
	logger   *zap.Logger
}

// NewManager creates a settings manager.
func NewManager(store domain.SettingsStore, logger *zap.Logger) *Manager {
	return &Manager{
		store:    store,
		validate: validator.New(),
		clock:    time.Now,
		logger:   logger,
	}
}

// NewManagerWithClock creates a settings manager with a fixed clock (for testing).
func NewManagerWithClock(store domain.SettingsStore, clock func() time.Time, logger *zap.Logger) *Manager {
	m := NewManager(store, logger)
	m.clock = clock
	return m
}

// Current returns the settings snapshot.
func (m *Manager) Current(ctx context.Context) (domain.Settings, error) {
	return m.store.Load(ctx)
}

// CreateZone validates the zone, assigns it an ID, and appends it.
// An active zone without a blocklist is inert but not invalid.
func (m *Manager) CreateZone(ctx context.Context, z domain.Zone) (domain.Zone, error) {
	z.ID = uuid.NewString()
	if z.Blocklist == nil {
		z.Blocklist = []string{}
	}
	if z.Allowlist == nil {
		z.Allowlist = []string{}
	}
	if err := m.validateZone(z); err != nil {
		return domain.Zone{}, err
	}

	err := m.mutate(ctx, func(s *domain.Settings) error {
		s.Zones = append(s.Zones, z)
		return nil
	})
	if err != nil {
		return domain.Zone{}, err
	}

	m.logger.Info("zone created",
		zap.String("zone_id", z.ID),
		zap.String("name", z.Name),
		zap.Float64("radius", z.Radius))
	return z, nil
}

// UpdateZone replaces the stored zone with the given ID. The ID itself is
// immutable.
func (m *Manager) UpdateZone(ctx context.Context, z domain.Zone) error {
	if err := m.validateZone(z); err != nil {
		return err
	}
	return m.mutate(ctx, func(s *domain.Settings) error {
		for i := range s.Zones {
			if s.Zones[i].ID == z.ID {
				s.Zones[i] = z
				return nil
			}
		}
		return fmt.Errorf("%w: %s", ErrZoneNotFound, z.ID)
	})
}

// DeleteZone removes the zone with the given ID. Deleting an unknown zone
// is a no-op.
func (m *Manager) DeleteZone(ctx context.Context, zoneID string) error {
	return m.mutate(ctx, func(s *domain.Settings) error {
		kept := s.Zones[:0]
		for _, z := range s.Zones {
			if z.ID != zoneID {
				kept = append(kept, z)
			}
		}
		s.Zones = kept
		return nil
	})
}

// ZoneByID returns the zone with the given ID.
func (m *Manager) ZoneByID(ctx context.Context, zoneID string) (domain.Zone, error) {
	s, err := m.store.Load(ctx)
	if err != nil {
		return domain.Zone{}, err
	}
	for _, z := range s.Zones {
		if z.ID == zoneID {
			return z, nil
		}
	}
	return domain.Zone{}, fmt.Errorf("%w: %s", ErrZoneNotFound, zoneID)
}

// ToggleZone flips the enabled flag of the zone with the given ID.
func (m *Manager) ToggleZone(ctx context.Context, zoneID string) error {
	return m.mutate(ctx, func(s *domain.Settings) error {
		for i := range s.Zones {
			if s.Zones[i].ID == zoneID {
				s.Zones[i].Enabled = !s.Zones[i].Enabled
				return nil
			}
		}
		return fmt.Errorf("%w: %s", ErrZoneNotFound, zoneID)
	})
}

// SetMonitoring flips the master switch. Turning it on clears any
// suppression windows.
func (m *Manager) SetMonitoring(ctx context.Context, on bool) error {
	return m.mutate(ctx, func(s *domain.Settings) error {
		s.Monitoring = on
		if on {
			s.SnoozeUntil = 0
			s.DisabledUntil = 0
		}
		return nil
	})
}

// Snooze suppresses zone monitoring until now + d.
func (m *Manager) Snooze(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("snooze duration must be positive")
	}
	until := m.clock().Add(d).UnixMilli()
	return m.mutate(ctx, func(s *domain.Settings) error {
		s.SnoozeUntil = until
		s.DisabledUntil = 0
		return nil
	})
}

// Disable suppresses zone monitoring until now + d.
func (m *Manager) Disable(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("disable duration must be positive")
	}
	until := m.clock().Add(d).UnixMilli()
	return m.mutate(ctx, func(s *domain.Settings) error {
		s.DisabledUntil = until
		s.SnoozeUntil = 0
		return nil
	})
}

// SetPosition updates the current position used for zone distance checks.
func (m *Manager) SetPosition(ctx context.Context, pos domain.GeoLocation) error {
	return m.mutate(ctx, func(s *domain.Settings) error {
		s.CurrentPosition = &pos
		return nil
	})
}

// ClearPosition removes the current position, which makes zone blocking
// impossible until a new one is set.
func (m *Manager) ClearPosition(ctx context.Context) error {
	return m.mutate(ctx, func(s *domain.Settings) error {
		s.CurrentPosition = nil
		return nil
	})
}

// SetTheme updates the UI theme.
func (m *Manager) SetTheme(ctx context.Context, theme domain.Theme) error {
	switch theme {
	case domain.ThemeLight, domain.ThemeDark, domain.ThemeSystem:
	default:
		return fmt.Errorf("invalid theme: %q", theme)
	}
	return m.mutate(ctx, func(s *domain.Settings) error {
		s.Theme = theme
		return nil
	})
}

// UpdateTimerConfig replaces the timer's configuration fields while leaving
// the running session's progression state untouched.
func (m *Manager) UpdateTimerConfig(ctx context.Context, cfg domain.PomodoroTimer) error {
	if err := m.validate.StructPartial(cfg,
		"FocusDuration", "ShortBreakDuration", "LongBreakDuration", "LongBreakInterval"); err != nil {
		return fmt.Errorf("invalid timer config: %w", err)
	}
	return m.mutate(ctx, func(s *domain.Settings) error {
		t := &s.PomodoroTimer
		t.FocusDuration = cfg.FocusDuration
		t.ShortBreakDuration = cfg.ShortBreakDuration
		t.LongBreakDuration = cfg.LongBreakDuration
		t.LongBreakInterval = cfg.LongBreakInterval
		t.AutoStartBreaks = cfg.AutoStartBreaks
		t.AutoStartFocus = cfg.AutoStartFocus
		t.Notifications = cfg.Notifications
		t.SoundEnabled = cfg.SoundEnabled
		t.BlockDuringFocus = cfg.BlockDuringFocus
		t.AllowedDuringBreak = cfg.AllowedDuringBreak
		if cfg.TimerBlocklist != nil {
			t.TimerBlocklist = cfg.TimerBlocklist
		}
		if cfg.TimerAllowlist != nil {
			t.TimerAllowlist = cfg.TimerAllowlist
		}
		return nil
	})
}

func (m *Manager) validateZone(z domain.Zone) error {
	if err := m.validate.Struct(z); err != nil {
		return fmt.Errorf("invalid zone: %w", err)
	}
	if err := m.validate.Struct(z.TimeSchedule); err != nil {
		return fmt.Errorf("invalid zone schedule: %w", err)
	}
	if z.TimeSchedule.Enabled {
		start := z.TimeSchedule.StartHour*60 + z.TimeSchedule.StartMinute
		end := z.TimeSchedule.EndHour*60 + z.TimeSchedule.EndMinute
		if end < start {
			return fmt.Errorf("invalid zone schedule: window crosses midnight, split it into two windows")
		}
	}
	return nil
}

func (m *Manager) mutate(ctx context.Context, f func(*domain.Settings) error) error {
	s, err := m.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if err := f(&s); err != nil {
		return err
	}
	if err := m.store.Save(ctx, s); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}
