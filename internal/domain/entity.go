// Package domain contains core business entities and interfaces.
// This is the innermost layer in Clean Architecture - no external dependencies.
package domain

// GeoLocation is a WGS84 coordinate pair in decimal degrees.
type GeoLocation struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lon float64 `json:"lon" validate:"gte=-180,lte=180"`
}

// TimeSchedule is a recurring weekly time window. When Enabled is false the
// window is vacuously always satisfied. Start and end are compared inclusive
// on both ends; windows crossing midnight are not representable (model them
// as two windows).
type TimeSchedule struct {
	Enabled     bool  `json:"enabled"`
	StartHour   int   `json:"startHour" validate:"min=0,max=23"`
	StartMinute int   `json:"startMinute" validate:"min=0,max=59"`
	EndHour     int   `json:"endHour" validate:"min=0,max=23"`
	EndMinute   int   `json:"endMinute" validate:"min=0,max=59"`
	Days        []int `json:"days" validate:"dive,min=0,max=6"`
}

// Zone is a named circular geofence with its own blocklist, allowlist,
// schedule, and enabled flag. Identity is the opaque ID assigned at creation.
type Zone struct {
	ID           string       `json:"id"`
	Name         string       `json:"name" validate:"required"`
	Location     GeoLocation  `json:"location"`
	Radius       float64      `json:"radius" validate:"gt=0"`
	Blocklist    []string     `json:"blocklist"`
	Allowlist    []string     `json:"allowlist"`
	TimeSchedule TimeSchedule `json:"timeSchedule"`
	Enabled      bool         `json:"enabled"`
	Color        string       `json:"color,omitempty"`
}

// TimerState enumerates the Pomodoro state machine states.
type TimerState string

const (
	TimerIdle       TimerState = "idle"
	TimerFocus      TimerState = "focus"
	TimerShortBreak TimerState = "short-break"
	TimerLongBreak  TimerState = "long-break"
	TimerPaused     TimerState = "paused"
)

// IsBreak reports whether the state is one of the two break states.
func (s TimerState) IsBreak() bool {
	return s == TimerShortBreak || s == TimerLongBreak
}

// IsActive reports whether a session is currently running (time passes).
func (s TimerState) IsActive() bool {
	return s == TimerFocus || s.IsBreak()
}

// PomodoroTimer is the single persisted Pomodoro instance. Durations are in
// seconds; StartedAt/PausedAt are Unix milliseconds (0 = unset) so that
// remaining time survives process restarts.
type PomodoroTimer struct {
	FocusDuration      int        `json:"focusDuration" validate:"gt=0"`
	ShortBreakDuration int        `json:"shortBreakDuration" validate:"gt=0"`
	LongBreakDuration  int        `json:"longBreakDuration" validate:"gt=0"`
	LongBreakInterval  int        `json:"longBreakInterval" validate:"gt=0"`
	State              TimerState `json:"state"`
	CurrentSession     int        `json:"currentSession"`
	// ElapsedSeconds is the progress snapshot taken at pause time; it is
	// zero while a session runs (progress comes from StartedAt then).
	ElapsedSeconds     int        `json:"elapsedSeconds"`
	RemainingSeconds   int        `json:"remainingSeconds"`
	StartedAt          int64      `json:"startedAt"`
	PausedAt           int64      `json:"pausedAt"`
	// PausedFrom records which active state was paused so resume can return
	// to it instead of assuming focus.
	PausedFrom         TimerState `json:"pausedFrom,omitempty"`
	AutoStartBreaks    bool       `json:"autoStartBreaks"`
	AutoStartFocus     bool       `json:"autoStartFocus"`
	Notifications      bool       `json:"notifications"`
	SoundEnabled       bool       `json:"soundEnabled"`
	BlockDuringFocus   bool       `json:"blockDuringFocus"`
	AllowedDuringBreak bool       `json:"allowedDuringBreak"`
	TimerBlocklist     []string   `json:"timerBlocklist"`
	TimerAllowlist     []string   `json:"timerAllowlist"`
}

// Theme selects the UI color scheme. Kept in settings so every surface
// renders consistently.
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// Settings is the top-level persisted aggregate.
// SnoozeUntil/DisabledUntil are Unix-millisecond expiry timestamps (0 =
// unset); either being in the future suppresses zone monitoring.
type Settings struct {
	Zones           []Zone        `json:"zones"`
	Monitoring      bool          `json:"monitoring"`
	CurrentPosition *GeoLocation  `json:"currentPosition"`
	PomodoroTimer   PomodoroTimer `json:"pomodoroTimer"`
	SnoozeUntil     int64         `json:"snoozeUntil"`
	DisabledUntil   int64         `json:"disabledUntil"`
	Theme           Theme         `json:"theme"`
}

// MonitoringState describes why zone monitoring is or is not active.
type MonitoringState string

const (
	MonitoringActive   MonitoringState = "active"
	MonitoringSnoozed  MonitoringState = "snoozed"
	MonitoringDisabled MonitoringState = "disabled"
	MonitoringIdle     MonitoringState = "idle"
)

// MonitoringStatus pairs the state with the expiry driving it (0 if none).
type MonitoringStatus struct {
	State     MonitoringState
	ExpiresAt int64
}

// BlockedSite is a per-domain block counter.
type BlockedSite struct {
	Domain      string `json:"domain"`
	Count       int    `json:"count"`
	LastBlocked int64  `json:"lastBlocked"`
	ZoneID      string `json:"zoneId,omitempty"`
}

// ZoneStatistics aggregates blocks attributed to a single zone.
type ZoneStatistics struct {
	BlockedCount int           `json:"blockedCount"`
	BlockedSites []BlockedSite `json:"blockedSites"`
	TimeInZone   int64         `json:"timeInZone"`
}

// TimerStatistics aggregates Pomodoro bookkeeping.
type TimerStatistics struct {
	SessionsCompleted  int `json:"sessionsCompleted"`
	TotalFocusTime     int `json:"totalFocusTime"`
	BlockedDuringFocus int `json:"blockedDuringFocus"`
}

// Statistics holds the daily counters. SessionStart anchors the daily reset:
// when its calendar day differs from now's, the document is reset lazily on
// the next read.
type Statistics struct {
	TotalBlocked int                       `json:"totalBlocked"`
	BlockedSites []BlockedSite             `json:"blockedSites"`
	ZoneStats    map[string]ZoneStatistics `json:"zoneStats"`
	TimerStats   TimerStatistics           `json:"timerStats"`
	SessionStart int64                     `json:"sessionStart"`
	LastUpdated  int64                     `json:"lastUpdated"`
}

// Verdict is the decision engine's output for one candidate navigation.
type Verdict struct {
	Block bool
	// Reason is human-readable ("focus session", "Work Zone (12m)").
	Reason string
	// ZoneID is set when a zone triggered the block.
	ZoneID string
	// FromTimer is true when the Pomodoro blocklist triggered the block.
	FromTimer bool
	// Domain is the normalized host the verdict applies to.
	Domain string
}

// Allow is the zero verdict with a reason attached.
func Allow(reason string) Verdict {
	return Verdict{Block: false, Reason: reason}
}
