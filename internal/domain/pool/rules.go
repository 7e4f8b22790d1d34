package pool

import (
	"strings"
	"time"
)

const (
	MaxPageSize     = 100
	DefaultPageSize = 10
)

// NextDueDate is the due date that follows a completion on completedOn.
func NextDueDate(completedOn time.Time, frequencyDays int) time.Time {
	return AddDays(completedOn, frequencyDays)
}

func ValidateTaskFields(name string, frequencyDays int) error {
	if strings.TrimSpace(name) == "" {
		return ErrNameRequired
	}
	if frequencyDays < 1 {
		return ErrFrequencyTooLow
	}
	return nil
}

// ValidateAlert checks the user-editable fields of an alert.
func ValidateAlert(a Alert) error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrNameRequired
	}
	if _, err := ParseCadence(string(a.Cadence)); err != nil {
		return err
	}
	if a.Cadence == CadenceWeekly && a.DaysOfWeek.Empty() {
		return ErrWeeklyNeedsDays
	}
	return nil
}

func ValidateInventoryItem(item InventoryItem) error {
	if strings.TrimSpace(item.Name) == "" {
		return ErrNameRequired
	}
	if strings.TrimSpace(item.Unit) == "" {
		return ErrUnitRequired
	}
	if item.QuantityOnHand < 0 || item.ReorderThreshold < 0 {
		return ErrNegativeQuantity
	}
	return nil
}

// Page describes one window over an ordered list.
type Page struct {
	Number     int
	Size       int
	Total      int64
	TotalPages int
}

// NewPage validates the request and derives the page count for total rows.
// Zero rows still yield one (empty) page; pages past the end are not an error.
func NewPage(number, size int, total int64) (Page, error) {
	if number < 1 {
		return Page{}, ErrInvalidPage
	}
	if size < 1 || size > MaxPageSize {
		return Page{}, ErrInvalidPageSize
	}

	totalPages := 1
	if total > 0 {
		totalPages = int((total + int64(size) - 1) / int64(size))
	}
	return Page{Number: number, Size: size, Total: total, TotalPages: totalPages}, nil
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}
