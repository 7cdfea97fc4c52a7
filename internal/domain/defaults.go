package domain

// DefaultTimer returns the out-of-the-box Pomodoro configuration:
// 25 minute focus, 5/15 minute breaks, long break every 4 sessions.
func DefaultTimer() PomodoroTimer {
	return PomodoroTimer{
		FocusDuration:      1500,
		ShortBreakDuration: 300,
		LongBreakDuration:  900,
		LongBreakInterval:  4,
		State:              TimerIdle,
		RemainingSeconds:   1500,
		Notifications:      true,
		SoundEnabled:       true,
		BlockDuringFocus:   true,
		AllowedDuringBreak: true,
		TimerBlocklist: []string{
			"youtube.com", "reddit.com", "twitter.com", "facebook.com", "instagram.com",
		},
		TimerAllowlist: []string{},
	}
}

// DefaultSchedule is weekday working hours, disabled until the user opts in.
func DefaultSchedule() TimeSchedule {
	return TimeSchedule{
		Enabled:     false,
		StartHour:   9,
		StartMinute: 0,
		EndHour:     17,
		EndMinute:   0,
		Days:        []int{1, 2, 3, 4, 5},
	}
}

// DefaultSettings returns a fresh settings document.
func DefaultSettings() Settings {
	return Settings{
		Zones:         []Zone{},
		Monitoring:    false,
		PomodoroTimer: DefaultTimer(),
		Theme:         ThemeDark,
	}
}

// NewStatistics returns an empty statistics document anchored at now
// (Unix milliseconds).
func NewStatistics(now int64) Statistics {
	return Statistics{
		BlockedSites: []BlockedSite{},
		ZoneStats:    map[string]ZoneStatistics{},
		SessionStart: now,
		LastUpdated:  now,
	}
}
