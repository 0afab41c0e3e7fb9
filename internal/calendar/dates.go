package calendar

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"songcal/internal/shared"
)

// Dates maps between day numbers and real calendar dates for a run starting
// at Start (day 1) and spanning Total days.
type Dates struct {
	Start time.Time
	Total int
}

// Date returns the calendar date for a 1-based day number.
func (d Dates) Date(day int) time.Time {
	return d.Start.AddDate(0, 0, day-1)
}

// Label formats a day for display: "Day 14 (February 27, 2026)".
func (d Dates) Label(day int) string {
	return fmt.Sprintf("Day %d (%s)", day, d.Date(day).Format("January 2, 2006"))
}

// DayForDate returns the day number that falls on the given date, parsed as
// M/D/YY or M/D/YYYY.
func (d Dates) DayForDate(raw string) (int, error) {
	var parsed time.Time
	var err error
	for _, layout := range []string{"1/2/2006", "1/2/06"} {
		parsed, err = time.Parse(layout, raw)
		if err == nil {
			break
		}
	}
	if err != nil {
		return 0, fmt.Errorf("%w: date %q is not M/D/YY or M/D/YYYY", shared.ErrInvalidArgument, raw)
	}

	day := int(parsed.Sub(d.Start).Hours()/24) + 1
	if day < 1 || day > d.Total {
		return 0, fmt.Errorf("%w: %s falls outside the calendar (day %d of %d)",
			shared.ErrInvalidDay, parsed.Format("January 2, 2006"), day, d.Total)
	}
	return day, nil
}

// ParseTarget resolves a user-supplied day target, either a bare day number
// or a date in M/D/YY form.
func (d Dates) ParseTarget(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if n, err := strconv.Atoi(raw); err == nil {
		if n < 1 || n > d.Total {
			return 0, fmt.Errorf("%w: day %d out of range 1-%d", shared.ErrInvalidDay, n, d.Total)
		}
		return n, nil
	}
	return d.DayForDate(raw)
}
