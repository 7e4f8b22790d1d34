// Package clock resolves "now" and "today" for the configured pool timezone.
package clock

import (
	"strings"
	"time"

	"poolkeeper/internal/domain/pool"
	"poolkeeper/internal/errs"
	"poolkeeper/internal/ports"
)

type System struct {
	loc *time.Location
}

var _ ports.Clock = (*System)(nil)

// New resolves an IANA timezone name. Empty or "Local" selects the host zone.
func New(timezone string) (*System, error) {
	name := strings.TrimSpace(timezone)
	if name == "" || strings.EqualFold(name, "local") {
		return &System{loc: time.Local}, nil
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, errs.Wrapf(err, "load timezone %q", name)
	}
	return &System{loc: loc}, nil
}

func (c *System) Now() time.Time {
	return time.Now().UTC()
}

func (c *System) Today() time.Time {
	return pool.DateOf(time.Now().In(c.loc))
}

func (c *System) Location() *time.Location {
	return c.loc
}

// Fixed always reports the same instant. Today is taken in Loc, or UTC when Loc is nil.
type Fixed struct {
	At  time.Time
	Loc *time.Location
}

var _ ports.Clock = Fixed{}

func (c Fixed) Now() time.Time {
	return c.At.UTC()
}

func (c Fixed) Today() time.Time {
	loc := c.Loc
	if loc == nil {
		loc = time.UTC
	}
	return pool.DateOf(c.At.In(loc))
}
