package pool

import (
	"strings"
	"time"
)

type Cadence string

const (
	CadenceDaily  Cadence = "daily"
	CadenceWeekly Cadence = "weekly"
)

func ParseCadence(s string) (Cadence, error) {
	switch c := Cadence(strings.ToLower(strings.TrimSpace(s))); c {
	case CadenceDaily, CadenceWeekly:
		return c, nil
	default:
		return "", ErrInvalidCadence
	}
}

// ShouldFire decides whether alert is due at the instant now.
//
// Both the weekday and the "already sent today" check use UTC calendar dates, so an
// alert fires at most once per UTC day however often it is evaluated. AlertTime is not
// consulted: an alert fires on the first evaluation of a qualifying day. Cadences other
// than daily and weekly never fire.
func ShouldFire(alert Alert, now time.Time) bool {
	now = now.UTC()

	switch alert.Cadence {
	case CadenceDaily:
		return notSentOn(alert.LastSent, now)
	case CadenceWeekly:
		if !alert.DaysOfWeek.Contains(now.Weekday()) {
			return false
		}
		return notSentOn(alert.LastSent, now)
	default:
		return false
	}
}

func notSentOn(lastSent *time.Time, now time.Time) bool {
	if lastSent == nil {
		return true
	}
	return UTCDateOf(*lastSent).Before(UTCDateOf(now))
}
