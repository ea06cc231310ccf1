// Package window enumerates the calendar months a run covers.
package window

import (
	"fmt"
	"strings"
	"time"

	"github.com/Temutjin2k/taxi-ingest/internal/domain/models"
	"github.com/Temutjin2k/taxi-ingest/internal/domain/types"
)

const DateLayout = "2006-01-02"

// MonthRange returns every month from start's month through end's month,
// inclusive, in order. It steps by exactly one calendar month from the first of
// each month, so day-of-month never matters. start after end yields nil.
func MonthRange(start, end time.Time) []models.Period {
	cur := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC)

	var out []models.Period
	for !cur.After(last) {
		out = append(out, models.PeriodOf(cur))
		cur = cur.AddDate(0, 1, 0)
	}
	return out
}

// Parse parses two YYYY-MM-DD dates and enumerates the months between them.
func Parse(start, end string) ([]models.Period, error) {
	const op = "window.Parse"

	s, err := time.Parse(DateLayout, strings.TrimSpace(start))
	if err != nil {
		return nil, fmt.Errorf("%s: start %q: %w", op, start, types.ErrInvalidDate)
	}
	e, err := time.Parse(DateLayout, strings.TrimSpace(end))
	if err != nil {
		return nil, fmt.Errorf("%s: end %q: %w", op, end, types.ErrInvalidDate)
	}

	return MonthRange(s, e), nil
}

// YearMonths enumerates months from..to of a single year.
func YearMonths(year, from, to int) ([]models.Period, error) {
	const op = "window.YearMonths"

	start := models.Period{Year: year, Month: from}
	end := models.Period{Year: year, Month: to}
	if !start.Valid() || !end.Valid() {
		return nil, fmt.Errorf("%s: %d months %d..%d: %w", op, year, from, to, types.ErrInvalidPeriod)
	}

	return MonthRange(start.Start(), end.Start()), nil
}
