// Package schedule evaluates recurring weekly time windows.
package schedule

import (
	"time"

	"github.com/focusshield/focusshield/internal/domain"
)

// Satisfied reports whether now falls inside the schedule's window.
// A disabled schedule is always satisfied. The window is inclusive on both
// ends and does not wrap across midnight.
func Satisfied(s domain.TimeSchedule, now time.Time) bool {
	if !s.Enabled {
		return true
	}

	day := int(now.Weekday()) // 0=Sunday .. 6=Saturday
	if !containsDay(s.Days, day) {
		return false
	}

	current := now.Hour()*60 + now.Minute()
	start := s.StartHour*60 + s.StartMinute
	end := s.EndHour*60 + s.EndMinute
	return current >= start && current <= end
}

func containsDay(days []int, day int) bool {
	for _, d := range days {
		if d == day {
			return true
		}
	}
	return false
}
