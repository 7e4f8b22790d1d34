package pool

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// WeekdaySet is a set of weekday indices, 0=Sunday through 6=Saturday.
// The zero value is the empty set.
type WeekdaySet uint8

func NewWeekdaySet(days ...int) (WeekdaySet, error) {
	var set WeekdaySet
	for _, d := range days {
		if d < 0 || d > 6 {
			return 0, fmt.Errorf("%w: got %d", ErrInvalidWeekday, d)
		}
		set |= 1 << uint(d)
	}
	return set, nil
}

func (s WeekdaySet) Contains(day time.Weekday) bool {
	return s&(1<<uint(day)) != 0
}

func (s WeekdaySet) Empty() bool { return s == 0 }

// Days returns the members in ascending order.
func (s WeekdaySet) Days() []int {
	out := make([]int, 0, 7)
	for d := 0; d < 7; d++ {
		if s&(1<<uint(d)) != 0 {
			out = append(out, d)
		}
	}
	return out
}

// Encode renders the set as a sorted comma list ("0,2,4"); the empty set encodes as "".
func (s WeekdaySet) Encode() string {
	days := s.Days()
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, ",")
}

// DecodeWeekdaySet parses the stored comma list produced by Encode.
func DecodeWeekdaySet(raw string) (WeekdaySet, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}

	days := make([]int, 0, 7)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		d, err := strconv.Atoi(part)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidWeekday, part)
		}
		days = append(days, d)
	}
	return NewWeekdaySet(days...)
}
