// Package engine implements the blocking decision: given settings, timer
// state, and a clock instant, decide whether a navigation should be blocked
// and why. Decide is pure; the Evaluator service wraps it with persistence.
package engine

import (
	"fmt"
	"time"

	"github.com/focusshield/focusshield/internal/domain"
	"github.com/focusshield/focusshield/internal/geo"
	"github.com/focusshield/focusshield/internal/match"
	"github.com/focusshield/focusshield/internal/schedule"
	"github.com/focusshield/focusshield/internal/timer"
)

// MonitoringActive reports whether zone monitoring is currently in force:
// the master switch is on and neither a disable nor a snooze window is
// still running.
func MonitoringActive(s domain.Settings, now time.Time) bool {
	ms := now.UnixMilli()
	if !s.Monitoring {
		return false
	}
	if s.DisabledUntil > ms {
		return false
	}
	if s.SnoozeUntil > ms {
		return false
	}
	return true
}

// MonitoringStatus classifies why monitoring is or is not active, with the
// expiry that applies. Disable windows take precedence over snooze when
// both are future-dated.
func MonitoringStatus(s domain.Settings, now time.Time) domain.MonitoringStatus {
	ms := now.UnixMilli()
	if !s.Monitoring {
		return domain.MonitoringStatus{State: domain.MonitoringIdle}
	}
	if s.DisabledUntil > ms {
		return domain.MonitoringStatus{State: domain.MonitoringDisabled, ExpiresAt: s.DisabledUntil}
	}
	if s.SnoozeUntil > ms {
		return domain.MonitoringStatus{State: domain.MonitoringSnoozed, ExpiresAt: s.SnoozeUntil}
	}
	return domain.MonitoringStatus{State: domain.MonitoringActive}
}

// Decide evaluates one candidate navigation against the settings and timer
// snapshots. Rules apply in strict order; the first decisive rule wins:
//
//  1. monitoring suppressed (off, disabled, or snoozed) -> allow
//  2. break in progress with allowedDuringBreak -> allow
//  3. timer allowlist match -> allow
//  4. focus session blocklist match -> block
//  5. no known position -> allow
//  6. enabled zones in order: allowlist skips the zone, blocklist miss
//     skips it, schedule miss skips it, inside radius -> block
//  7. otherwise allow
//
// A URL that does not parse matches nothing and is therefore allowed.
func Decide(rawURL string, settings domain.Settings, pt domain.PomodoroTimer, now time.Time) domain.Verdict {
	host := match.Host(rawURL)

	if !MonitoringActive(settings, now) {
		return domain.Allow("monitoring inactive")
	}

	if pt.State.IsBreak() && pt.AllowedDuringBreak {
		return domain.Allow("break in progress")
	}

	if match.URLMatches(rawURL, pt.TimerAllowlist) {
		return domain.Allow("timer allowlist")
	}

	if pt.State == domain.TimerFocus && pt.BlockDuringFocus && match.URLMatches(rawURL, pt.TimerBlocklist) {
		return domain.Verdict{
			Block:     true,
			Reason:    "focus session",
			FromTimer: true,
			Domain:    host,
		}
	}

	if settings.CurrentPosition == nil {
		return domain.Allow("no position")
	}

	for _, zone := range settings.Zones {
		if !zone.Enabled {
			continue
		}
		if match.URLMatches(rawURL, zone.Allowlist) {
			continue
		}
		if !match.URLMatches(rawURL, zone.Blocklist) {
			continue
		}
		if !schedule.Satisfied(zone.TimeSchedule, now) {
			continue
		}
		distance := geo.Distance(*settings.CurrentPosition, zone.Location)
		if distance <= zone.Radius {
			return domain.Verdict{
				Block:  true,
				Reason: fmt.Sprintf("%s (%.0fm)", zone.Name, distance),
				ZoneID: zone.ID,
				Domain: host,
			}
		}
	}

	return domain.Allow("no rule matched")
}

// ShouldBlockByTimer reports whether the timer alone would block the URL.
// Exposed for callers that surface timer state without a full settings
// snapshot.
func ShouldBlockByTimer(pt domain.PomodoroTimer, rawURL string) bool {
	if pt.State != domain.TimerFocus || !pt.BlockDuringFocus {
		return false
	}
	if match.URLMatches(rawURL, pt.TimerAllowlist) {
		return false
	}
	return match.URLMatches(rawURL, pt.TimerBlocklist)
}

// remainingForDisplay keeps the timer package out of callers that only want
// a formatted countdown alongside a verdict.
func remainingForDisplay(pt domain.PomodoroTimer, now time.Time) string {
	return timer.FormatRemaining(timer.Remaining(pt, now))
}
