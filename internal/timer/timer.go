// Package timer implements the Pomodoro state machine as pure functions over
// an explicit PomodoroTimer value and an injected clock. No ambient timers
// are consulted; remaining time is always derived from absolute timestamps
// so a suspended host self-corrects on the next call.
package timer

import (
	"fmt"
	"time"

	"github.com/focusshield/focusshield/internal/domain"
)

// Duration returns the configured length in seconds for the given state.
// Unknown states fall back to the focus duration.
func Duration(t domain.PomodoroTimer, state domain.TimerState) int {
	switch state {
	case domain.TimerFocus:
		return t.FocusDuration
	case domain.TimerShortBreak:
		return t.ShortBreakDuration
	case domain.TimerLongBreak:
		return t.LongBreakDuration
	default:
		return t.FocusDuration
	}
}

// Remaining computes seconds left in the current session as of now. While
// idle or paused no time passes, so the stored value is returned unchanged.
// The result clamps at 0 and the call never mutates the timer, so any number
// of observers may poll it without double counting.
func Remaining(t domain.PomodoroTimer, now time.Time) int {
	if t.StartedAt == 0 || !t.State.IsActive() {
		return t.RemainingSeconds
	}
	elapsed := int((now.UnixMilli() - t.StartedAt) / 1000)
	remaining := Duration(t, t.State) - elapsed
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Start begins a session in the target state. The session counter is not
// touched here; it advances only when a focus session completes.
func Start(t domain.PomodoroTimer, target domain.TimerState, now time.Time) domain.PomodoroTimer {
	t.State = target
	t.StartedAt = now.UnixMilli()
	t.PausedAt = 0
	t.PausedFrom = ""
	t.ElapsedSeconds = 0
	t.RemainingSeconds = Duration(t, target)
	return t
}

// Pause freezes an active session, snapshotting the remaining and elapsed
// seconds and the state being paused from. Pausing an idle or already-paused
// timer is a no-op.
func Pause(t domain.PomodoroTimer, now time.Time) domain.PomodoroTimer {
	if !t.State.IsActive() {
		return t
	}
	t.RemainingSeconds = Remaining(t, now)
	t.ElapsedSeconds = Duration(t, t.State) - t.RemainingSeconds
	t.PausedFrom = t.State
	t.State = domain.TimerPaused
	t.PausedAt = now.UnixMilli()
	return t
}

// Resume continues a paused session in the state it was paused from. The
// resumed session runs for the snapshotted remaining seconds: StartedAt is
// back-dated so that Remaining picks up where the pause left off. Resuming
// a non-paused timer is a no-op.
func Resume(t domain.PomodoroTimer, now time.Time) domain.PomodoroTimer {
	if t.State != domain.TimerPaused {
		return t
	}
	from := t.PausedFrom
	if from == "" || !from.IsActive() {
		from = domain.TimerFocus
	}
	t.State = from
	// Back-date the start so duration - elapsed == snapshotted remaining.
	alreadyElapsed := int64(Duration(t, from)-t.RemainingSeconds) * 1000
	t.StartedAt = now.UnixMilli() - alreadyElapsed
	t.PausedAt = 0
	t.PausedFrom = ""
	t.ElapsedSeconds = 0
	return t
}

// Reset forces the timer back to idle and zeroes the session counter. This
// is a full reset of the Pomodoro cycle, not a pause.
func Reset(t domain.PomodoroTimer) domain.PomodoroTimer {
	t.State = domain.TimerIdle
	t.CurrentSession = 0
	t.ElapsedSeconds = 0
	t.RemainingSeconds = t.FocusDuration
	t.StartedAt = 0
	t.PausedAt = 0
	t.PausedFrom = ""
	return t
}

// Completion describes what happened at a session boundary.
type Completion struct {
	// Completed is the state that just finished.
	Completed domain.TimerState
	// Next is the state the timer moved to (idle unless auto-started).
	Next domain.TimerState
	// AutoStarted is true when the next session began immediately.
	AutoStarted bool
	// FocusSeconds is the focus time to credit to statistics (0 for breaks).
	FocusSeconds int
	// Title and Message describe the notification to show, empty when the
	// timer has notifications turned off.
	Title, Message string
}

// Complete transitions the timer across a session boundary. Callers must
// invoke it at most once per boundary, after observing Remaining == 0;
// duplicate calls double-count sessions. Completing an idle or paused timer
// is a no-op.
func Complete(t domain.PomodoroTimer, now time.Time) (domain.PomodoroTimer, Completion) {
	if !t.State.IsActive() {
		return t, Completion{Completed: t.State, Next: t.State}
	}

	c := Completion{Completed: t.State}

	if t.State == domain.TimerFocus {
		c.FocusSeconds = t.FocusDuration
		t.CurrentSession++

		next := domain.TimerShortBreak
		if t.LongBreakInterval > 0 && t.CurrentSession%t.LongBreakInterval == 0 {
			next = domain.TimerLongBreak
		}
		c.Next = next

		if t.AutoStartBreaks {
			t = Start(t, next, now)
			c.AutoStarted = true
			if t.Notifications {
				c.Title = "Focus Session Complete!"
				if next == domain.TimerLongBreak {
					c.Message = "Great work! Long break started."
				} else {
					c.Message = "Great work! Short break started."
				}
			}
			return t, c
		}

		t.State = domain.TimerIdle
		t.StartedAt = 0
		t.PausedAt = 0
		t.RemainingSeconds = Duration(t, next)
		if t.Notifications {
			c.Title = "Focus Session Complete!"
			c.Message = "Time for a break! Click to start."
		}
		return t, c
	}

	// Break finished.
	c.Next = domain.TimerFocus
	if t.AutoStartFocus {
		t = Start(t, domain.TimerFocus, now)
		c.AutoStarted = true
		if t.Notifications {
			c.Title = "Break Complete!"
			c.Message = "Focus session started. Time to work!"
		}
		return t, c
	}

	t.State = domain.TimerIdle
	t.StartedAt = 0
	t.PausedAt = 0
	t.RemainingSeconds = t.FocusDuration
	if t.Notifications {
		c.Title = "Break Complete!"
		c.Message = "Ready to start next focus session?"
	}
	return t, c
}

// FormatRemaining renders seconds as MM:SS for display.
func FormatRemaining(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
