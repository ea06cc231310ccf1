package models

import (
	"fmt"
	"time"
)

// Period is one calendar month of a dataset.
type Period struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// String renders the period as YYYY-MM.
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// MonthPadded renders the month as MM.
func (p Period) MonthPadded() string {
	return fmt.Sprintf("%02d", p.Month)
}

// Start returns the first instant of the month in UTC.
func (p Period) Start() time.Time {
	return time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC)
}

func (p Period) Valid() bool {
	return p.Year > 0 && p.Month >= 1 && p.Month <= 12
}

// PeriodOf returns the month t falls in.
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: int(t.Month())}
}
