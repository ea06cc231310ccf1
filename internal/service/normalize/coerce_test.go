package normalize

import (
	"math"
	"testing"
	"time"

	"github.com/Temutjin2k/taxi-ingest/internal/domain/models"
	"github.com/Temutjin2k/taxi-ingest/internal/domain/types"
)

func TestCoerce(t *testing.T) {
	ts := time.Date(2021, 1, 1, 0, 30, 10, 0, time.UTC)

	tests := []struct {
		name string
		in   any
		typ  models.ColumnType
		want any
	}{
		{"int from string", "42", models.TypeInt, int64(42)},
		{"int from integral float string", "3.0", models.TypeInt, int64(3)},
		{"int from fractional float", 2.5, models.TypeInt, nil},
		{"int from int32", int32(7), models.TypeInt, int64(7)},
		{"int from empty", "", models.TypeInt, nil},
		{"int from NaN", math.NaN(), models.TypeInt, nil},
		{"float from string", " 1.72 ", models.TypeFloat, 1.72},
		{"float from int", int64(2), models.TypeFloat, 2.0},
		{"float from garbage", "abc", models.TypeFloat, nil},
		{"string passthrough", "N", models.TypeString, "N"},
		{"string from empty", "", models.TypeString, nil},
		{"string from bytes", []byte("Y"), models.TypeString, "Y"},
		{"timestamp from csv", "2021-01-01 00:30:10", models.TypeTimestamp, ts},
		{"timestamp from rfc3339", "2021-01-01T00:30:10Z", models.TypeTimestamp, ts},
		{"timestamp coerce error", "yesterday", models.TypeTimestamp, nil},
		{"bool", "true", models.TypeBool, true},
		{"nil", nil, models.TypeInt, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Coerce(tt.in, tt.typ)
			if want, ok := tt.want.(time.Time); ok {
				if g, ok := got.(time.Time); !ok || !g.Equal(want) {
					t.Fatalf("got %#v want %v", got, want)
				}
				return
			}
			if got != tt.want {
				t.Fatalf("got %#v want %#v", got, tt.want)
			}
		})
	}
}

func TestInfer(t *testing.T) {
	tests := []struct {
		values []string
		want   models.ColumnType
	}{
		{[]string{"1", "", "3"}, models.TypeInt},
		{[]string{"1", "2.5"}, models.TypeFloat},
		{[]string{"2019-01-01 00:18:40", ""}, models.TypeTimestamp},
		{[]string{"B00254", "1"}, models.TypeString},
		{[]string{"", ""}, models.TypeString},
	}

	for _, tt := range tests {
		if got := Infer(tt.values); got != tt.want {
			t.Fatalf("Infer(%v) = %s want %s", tt.values, got, tt.want)
		}
	}
}

func TestCoercer_RowsFixesInferredTypes(t *testing.T) {
	c := NewCoercer(models.SourceSchema(types.Yellow))
	header := []string{"VendorID", "tpep_pickup_datetime", "airport_fee"}

	first := c.Rows(header, [][]string{{"1", "2021-01-01 00:30:10", "0"}})
	if first.Columns[0].Type != models.TypeInt || first.Columns[1].Type != models.TypeTimestamp {
		t.Fatalf("declared types not applied: %v", first.Columns)
	}
	if first.Columns[2].Type != models.TypeInt {
		t.Fatalf("expected airport_fee inferred as int, got %s", first.Columns[2].Type)
	}

	// a later chunk with fractional values keeps the first chunk's type
	second := c.Rows(header, [][]string{{"2", "bad date", "1.25"}, {"3"}})
	if second.Columns[2].Type != models.TypeInt {
		t.Fatalf("inferred type must stay fixed, got %s", second.Columns[2].Type)
	}
	if second.Rows[0][1] != nil || second.Rows[0][2] != nil {
		t.Fatalf("unparseable values must be NULL: %v", second.Rows[0])
	}
	if len(second.Rows[1]) != 3 || second.Rows[1][2] != nil {
		t.Fatalf("short rows must be padded with NULL: %v", second.Rows[1])
	}
}

func TestCoercer_Table(t *testing.T) {
	c := NewCoercer(models.SourceSchema(types.Green))
	in := &models.Table{
		Columns: []models.Column{
			{Name: "passenger_count", Type: models.TypeFloat},
			{Name: "ehail_fee", Type: models.TypeFloat},
		},
		Rows: [][]any{{1.0, 0.5}},
	}

	out := c.Table(in)
	if out.Columns[0].Type != models.TypeInt || out.Rows[0][0] != int64(1) {
		t.Fatalf("declared column not converted: %v %v", out.Columns[0], out.Rows[0][0])
	}
	if out.Columns[1].Type != models.TypeFloat || out.Rows[0][1] != 0.5 {
		t.Fatalf("undeclared column must be kept as decoded")
	}
	if in.Columns[0].Type != models.TypeFloat {
		t.Fatalf("input table must not be modified")
	}
}
