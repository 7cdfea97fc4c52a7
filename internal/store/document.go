// Package store persists settings and statistics. Two backends share one
// document shape: a plain JSON file and a SQLCipher-encrypted database for
// installs where zone coordinates should not sit on disk in the clear.
package store

import (
	"time"

	"github.com/google/uuid"

	"github.com/focusshield/focusshield/internal/domain"
)

// document is the persisted settings shape. Pointer fields distinguish
// "absent" from zero so missing fields can be defaulted instead of
// clobbered. The legacy fields carry the pre-multi-zone shape and are
// dropped on migration.
type document struct {
	Zones           []domain.Zone         `json:"zones,omitempty"`
	Monitoring      bool                  `json:"monitoring"`
	CurrentPosition *domain.GeoLocation   `json:"currentPosition,omitempty"`
	PomodoroTimer   *domain.PomodoroTimer `json:"pomodoroTimer,omitempty"`
	SnoozeUntil     int64                 `json:"snoozeUntil,omitempty"`
	DisabledUntil   int64                 `json:"disabledUntil,omitempty"`
	Theme           string                `json:"theme,omitempty"`

	// Legacy single-zone shape.
	LegacyZone      *domain.GeoLocation  `json:"zone,omitempty"`
	LegacyRadius    float64              `json:"radius,omitempty"`
	LegacyBlocklist []string             `json:"blocklist,omitempty"`
	LegacySchedule  *domain.TimeSchedule `json:"timeSchedule,omitempty"`
}

// hasLegacyShape reports whether the document still carries the old
// single-zone fields without a zones array.
func (d *document) hasLegacyShape() bool {
	return d.LegacyZone != nil && d.Zones == nil
}

// migrate converts the legacy single-zone fields into a one-element zones
// array and clears them.
func (d *document) migrate() {
	radius := d.LegacyRadius
	if radius <= 0 {
		radius = 50
	}
	sched := domain.DefaultSchedule()
	if d.LegacySchedule != nil {
		sched = *d.LegacySchedule
	}
	blocklist := d.LegacyBlocklist
	if blocklist == nil {
		blocklist = []string{}
	}

	d.Zones = []domain.Zone{{
		ID:           uuid.NewString(),
		Name:         "Work Zone",
		Location:     *d.LegacyZone,
		Radius:       radius,
		Blocklist:    blocklist,
		Allowlist:    []string{},
		TimeSchedule: sched,
		Enabled:      true,
		Color:        "#5b9ff5",
	}}

	d.LegacyZone = nil
	d.LegacyRadius = 0
	d.LegacyBlocklist = nil
	d.LegacySchedule = nil
}

// toSettings materializes the document with every missing field defaulted
// and expired suppression windows cleared as of now.
func (d *document) toSettings(now time.Time) domain.Settings {
	s := domain.Settings{
		Zones:         d.Zones,
		Monitoring:    d.Monitoring,
		SnoozeUntil:   d.SnoozeUntil,
		DisabledUntil: d.DisabledUntil,
	}
	if s.Zones == nil {
		s.Zones = []domain.Zone{}
	}
	for i := range s.Zones {
		if s.Zones[i].Blocklist == nil {
			s.Zones[i].Blocklist = []string{}
		}
		if s.Zones[i].Allowlist == nil {
			s.Zones[i].Allowlist = []string{}
		}
	}

	s.CurrentPosition = d.CurrentPosition

	if d.PomodoroTimer != nil {
		s.PomodoroTimer = *d.PomodoroTimer
		def := domain.DefaultTimer()
		if s.PomodoroTimer.FocusDuration <= 0 {
			s.PomodoroTimer.FocusDuration = def.FocusDuration
		}
		if s.PomodoroTimer.ShortBreakDuration <= 0 {
			s.PomodoroTimer.ShortBreakDuration = def.ShortBreakDuration
		}
		if s.PomodoroTimer.LongBreakDuration <= 0 {
			s.PomodoroTimer.LongBreakDuration = def.LongBreakDuration
		}
		if s.PomodoroTimer.LongBreakInterval <= 0 {
			s.PomodoroTimer.LongBreakInterval = def.LongBreakInterval
		}
		if s.PomodoroTimer.TimerBlocklist == nil {
			s.PomodoroTimer.TimerBlocklist = []string{}
		}
		if s.PomodoroTimer.TimerAllowlist == nil {
			s.PomodoroTimer.TimerAllowlist = []string{}
		}
		if s.PomodoroTimer.State == "" {
			s.PomodoroTimer.State = domain.TimerIdle
		}
	} else {
		s.PomodoroTimer = domain.DefaultTimer()
	}

	ms := now.UnixMilli()
	if s.SnoozeUntil != 0 && s.SnoozeUntil < ms {
		s.SnoozeUntil = 0
	}
	if s.DisabledUntil != 0 && s.DisabledUntil < ms {
		s.DisabledUntil = 0
	}

	switch domain.Theme(d.Theme) {
	case domain.ThemeLight, domain.ThemeDark, domain.ThemeSystem:
		s.Theme = domain.Theme(d.Theme)
	default:
		s.Theme = domain.ThemeDark
	}

	return s
}

func fromSettings(s domain.Settings) document {
	return document{
		Zones:           s.Zones,
		Monitoring:      s.Monitoring,
		CurrentPosition: s.CurrentPosition,
		PomodoroTimer:   &s.PomodoroTimer,
		SnoozeUntil:     s.SnoozeUntil,
		DisabledUntil:   s.DisabledUntil,
		Theme:           string(s.Theme),
	}
}

// statsCurrent applies the lazy daily reset: when the stored session started
// on a different calendar day than now, a fresh document replaces it.
// Returns the statistics to use and whether a reset happened (the caller
// persists the fresh document).
func statsCurrent(stored *domain.Statistics, now int64) (domain.Statistics, bool) {
	if stored == nil {
		return domain.NewStatistics(now), false
	}
	if stored.SessionStart != 0 && !sameDay(stored.SessionStart, now) {
		return domain.NewStatistics(now), true
	}

	s := *stored
	if s.BlockedSites == nil {
		s.BlockedSites = []domain.BlockedSite{}
	}
	if s.ZoneStats == nil {
		s.ZoneStats = map[string]domain.ZoneStatistics{}
	}
	return s, false
}

func sameDay(a, b int64) bool {
	ta := time.UnixMilli(a).Local()
	tb := time.UnixMilli(b).Local()
	return ta.Year() == tb.Year() && ta.YearDay() == tb.YearDay()
}
