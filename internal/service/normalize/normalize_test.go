package normalize

import (
	"reflect"
	"testing"
	"time"

	"github.com/Temutjin2k/taxi-ingest/internal/domain/models"
	"github.com/Temutjin2k/taxi-ingest/internal/domain/types"
)

func yellowRaw() *models.Table {
	pickup := time.Date(2024, 1, 1, 0, 57, 55, 0, time.UTC)
	return &models.Table{
		Columns: []models.Column{
			{Name: "VendorID", Type: models.TypeInt},
			{Name: "tpep_pickup_datetime", Type: models.TypeTimestamp},
			{Name: "tpep_dropoff_datetime", Type: models.TypeTimestamp},
			{Name: "passenger_count", Type: models.TypeFloat},
			{Name: "trip_distance", Type: models.TypeFloat},
			{Name: "RatecodeID", Type: models.TypeFloat},
			{Name: "store_and_fwd_flag", Type: models.TypeString},
			{Name: "PULocationID", Type: models.TypeInt},
			{Name: "DOLocationID", Type: models.TypeInt},
			{Name: "payment_type", Type: models.TypeInt},
			{Name: "fare_amount", Type: models.TypeFloat},
			{Name: "extra", Type: models.TypeFloat},
			{Name: "mta_tax", Type: models.TypeFloat},
			{Name: "tip_amount", Type: models.TypeFloat},
			{Name: "tolls_amount", Type: models.TypeFloat},
			{Name: "improvement_surcharge", Type: models.TypeFloat},
			{Name: "total_amount", Type: models.TypeFloat},
			{Name: "congestion_surcharge", Type: models.TypeFloat},
			{Name: "Airport_fee", Type: models.TypeFloat},
		},
		Rows: [][]any{{
			int32(2), pickup, pickup.Add(20 * time.Minute), 1.0, 1.72, 1.0, "N", int32(186), int32(79), int64(2),
			17.7, 1.0, 0.5, 0.0, 0.0, 1.0, 22.7, 2.5, 0.0,
		}},
	}
}

func greenRaw() *models.Table {
	pickup := time.Date(2024, 1, 1, 0, 3, 0, 0, time.UTC)
	return &models.Table{
		Columns: []models.Column{
			{Name: "VendorID", Type: models.TypeInt},
			{Name: "lpep_pickup_datetime", Type: models.TypeTimestamp},
			{Name: "lpep_dropoff_datetime", Type: models.TypeTimestamp},
			{Name: "store_and_fwd_flag", Type: models.TypeString},
			{Name: "RatecodeID", Type: models.TypeFloat},
			{Name: "PULocationID", Type: models.TypeInt},
			{Name: "DOLocationID", Type: models.TypeInt},
			{Name: "passenger_count", Type: models.TypeFloat},
			{Name: "trip_distance", Type: models.TypeFloat},
			{Name: "fare_amount", Type: models.TypeFloat},
			{Name: "extra", Type: models.TypeFloat},
			{Name: "mta_tax", Type: models.TypeFloat},
			{Name: "tip_amount", Type: models.TypeFloat},
			{Name: "tolls_amount", Type: models.TypeFloat},
			{Name: "ehail_fee", Type: models.TypeFloat},
			{Name: "improvement_surcharge", Type: models.TypeFloat},
			{Name: "total_amount", Type: models.TypeFloat},
			{Name: "payment_type", Type: models.TypeFloat},
			{Name: "trip_type", Type: models.TypeFloat},
			{Name: "congestion_surcharge", Type: models.TypeFloat},
		},
		Rows: [][]any{{
			int32(2), pickup, pickup.Add(10 * time.Minute), "N", 1.0, int32(236), int32(239), 1.0, 1.98,
			12.8, 1.0, 0.5, 3.61, 0.0, nil, 1.0, 21.66, 1.0, 1.0, 2.75,
		}},
	}
}

func TestNormalize_IdenticalColumnsAcrossVariants(t *testing.T) {
	at := time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)

	yellow := Normalize(yellowRaw(), types.Yellow, at)
	green := Normalize(greenRaw(), types.Green, at)

	if !reflect.DeepEqual(yellow.Columns, green.Columns) {
		t.Fatalf("column sets differ:\nyellow %v\ngreen  %v", yellow.Names(), green.Names())
	}
	if !reflect.DeepEqual(yellow.Names(), models.TripColumnOrder) {
		t.Fatalf("expected canonical order, got %v", yellow.Names())
	}
}

func TestNormalize_TagsAndCoercion(t *testing.T) {
	at := time.Date(2024, 2, 1, 12, 0, 0, 0, time.FixedZone("x", 3600))
	out := Normalize(greenRaw(), types.Green, at)

	row := out.Rows[0]
	get := func(name string) any { return row[out.Index(name)] }

	if get("vendor_id") != int64(2) {
		t.Fatalf("vendor_id not coerced to int64: %#v", get("vendor_id"))
	}
	if get("passenger_count") != int64(1) || get("payment_type") != int64(1) {
		t.Fatalf("float counts must become int64")
	}
	if get(models.ColTaxiType) != "green" {
		t.Fatalf("unexpected taxi_type %v", get(models.ColTaxiType))
	}
	if ts, ok := get(models.ColExtractedAt).(time.Time); !ok || !ts.Equal(at) || ts.Location() != time.UTC {
		t.Fatalf("unexpected extracted_at %v", get(models.ColExtractedAt))
	}
	if out.Index("ehail_fee") != -1 || out.Index("trip_type") != -1 {
		t.Fatalf("non-canonical columns must be dropped")
	}
}

func TestNormalize_MissingColumnsOmitted(t *testing.T) {
	raw := &models.Table{
		Columns: []models.Column{
			{Name: "tpep_pickup_datetime", Type: models.TypeString},
			{Name: "fare_amount", Type: models.TypeString},
		},
		Rows: [][]any{{"2024-01-01 00:00:00", "not a number"}},
	}

	out := Normalize(raw, types.Yellow, time.Now())

	want := []string{"pickup_datetime", "fare_amount", models.ColTaxiType, models.ColExtractedAt}
	if !reflect.DeepEqual(out.Names(), want) {
		t.Fatalf("got %v want %v", out.Names(), want)
	}
	if _, ok := out.Rows[0][0].(time.Time); !ok {
		t.Fatalf("pickup must be parsed, got %#v", out.Rows[0][0])
	}
	if out.Rows[0][1] != nil {
		t.Fatalf("unparseable fare must be NULL, got %#v", out.Rows[0][1])
	}
}

func TestNormalize_OneExtractionTimestampPerBatch(t *testing.T) {
	raw := yellowRaw()
	raw.Rows = append(raw.Rows, raw.Rows[0], raw.Rows[0])
	at := time.Now()

	out := Normalize(raw, types.Yellow, at)

	i := out.Index(models.ColExtractedAt)
	for _, row := range out.Rows {
		if !row[i].(time.Time).Equal(at) {
			t.Fatalf("extracted_at differs between rows")
		}
	}
}
