package window

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/Temutjin2k/taxi-ingest/internal/domain/models"
	"github.com/Temutjin2k/taxi-ingest/internal/domain/types"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMonthRange(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  []models.Period
	}{
		{
			name:  "first quarter",
			start: date(2024, 1, 1),
			end:   date(2024, 3, 1),
			want:  []models.Period{{2024, 1}, {2024, 2}, {2024, 3}},
		},
		{
			name:  "day of month ignored",
			start: date(2024, 1, 31),
			end:   date(2024, 3, 2),
			want:  []models.Period{{2024, 1}, {2024, 2}, {2024, 3}},
		},
		{
			name:  "crosses year",
			start: date(2023, 11, 15),
			end:   date(2024, 2, 1),
			want:  []models.Period{{2023, 11}, {2023, 12}, {2024, 1}, {2024, 2}},
		},
		{
			name:  "same month",
			start: date(2024, 5, 20),
			end:   date(2024, 5, 3),
			want:  []models.Period{{2024, 5}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MonthRange(tt.start, tt.end)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %v want %v", got, tt.want)
			}
		})
	}
}

func TestMonthRange_StartAfterEndIsEmpty(t *testing.T) {
	pairs := [][2]time.Time{
		{date(2024, 3, 1), date(2024, 1, 1)},
		{date(2024, 2, 1), date(2024, 1, 31)},
		{date(2025, 1, 1), date(2024, 12, 31)},
	}

	for _, p := range pairs {
		if got := MonthRange(p[0], p[1]); len(got) != 0 {
			t.Fatalf("start %s end %s: expected empty, got %v", p[0], p[1], got)
		}
	}
}

func TestParse(t *testing.T) {
	got, err := Parse("2024-01-01", "2024-03-01")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 months, got %v", got)
	}

	if _, err := Parse("2024/01/01", "2024-03-01"); !errors.Is(err, types.ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestYearMonths(t *testing.T) {
	got, err := YearMonths(2019, 1, 12)
	if err != nil {
		t.Fatalf("YearMonths: %v", err)
	}
	if len(got) != 12 || got[11] != (models.Period{Year: 2019, Month: 12}) {
		t.Fatalf("unexpected months %v", got)
	}

	if _, err := YearMonths(2019, 0, 3); !errors.Is(err, types.ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
}
