package models

import "github.com/Temutjin2k/taxi-ingest/internal/domain/types"

const (
	ColTaxiType    = "taxi_type"
	ColExtractedAt = "extracted_at"
)

// TripRenames maps variant-specific source names to canonical names.
var TripRenames = map[string]string{
	"tpep_pickup_datetime":  "pickup_datetime",
	"tpep_dropoff_datetime": "dropoff_datetime",
	"lpep_pickup_datetime":  "pickup_datetime",
	"lpep_dropoff_datetime": "dropoff_datetime",
	"VendorID":              "vendor_id",
	"RatecodeID":            "ratecode_id",
	"PULocationID":          "pu_location_id",
	"DOLocationID":          "do_location_id",
}

// TripSchema is the canonical trip record in output order.
var TripSchema = []Column{
	{Name: "vendor_id", Type: TypeInt},
	{Name: "pickup_datetime", Type: TypeTimestamp},
	{Name: "dropoff_datetime", Type: TypeTimestamp},
	{Name: "passenger_count", Type: TypeInt},
	{Name: "trip_distance", Type: TypeFloat},
	{Name: "ratecode_id", Type: TypeInt},
	{Name: "store_and_fwd_flag", Type: TypeString},
	{Name: "pu_location_id", Type: TypeInt},
	{Name: "do_location_id", Type: TypeInt},
	{Name: "payment_type", Type: TypeInt},
	{Name: "fare_amount", Type: TypeFloat},
	{Name: "extra", Type: TypeFloat},
	{Name: "mta_tax", Type: TypeFloat},
	{Name: "tip_amount", Type: TypeFloat},
	{Name: "tolls_amount", Type: TypeFloat},
	{Name: "improvement_surcharge", Type: TypeFloat},
	{Name: "total_amount", Type: TypeFloat},
	{Name: "congestion_surcharge", Type: TypeFloat},
	{Name: ColTaxiType, Type: TypeString},
	{Name: ColExtractedAt, Type: TypeTimestamp},
}

// TripColumnOrder lists TripSchema names.
var TripColumnOrder = func() []string {
	out := make([]string, len(TripSchema))
	for i, c := range TripSchema {
		out[i] = c.Name
	}
	return out
}()

var canonicalPosition = func() map[string]int {
	out := make(map[string]int, len(TripSchema))
	for i, c := range TripSchema {
		out[c.Name] = i
	}
	return out
}()

// CanonicalType returns the type of a canonical trip column.
func CanonicalType(name string) (ColumnType, bool) {
	i, ok := canonicalPosition[name]
	if !ok {
		return TypeString, false
	}
	return TripSchema[i].Type, true
}

// sourceTypes are the declared types of raw source columns shared by yellow
// and green files.
var sourceTypes = map[string]ColumnType{
	"VendorID":              TypeInt,
	"passenger_count":       TypeInt,
	"trip_distance":         TypeFloat,
	"RatecodeID":            TypeInt,
	"store_and_fwd_flag":    TypeString,
	"PULocationID":          TypeInt,
	"DOLocationID":          TypeInt,
	"payment_type":          TypeInt,
	"fare_amount":           TypeFloat,
	"extra":                 TypeFloat,
	"mta_tax":               TypeFloat,
	"tip_amount":            TypeFloat,
	"tolls_amount":          TypeFloat,
	"improvement_surcharge": TypeFloat,
	"total_amount":          TypeFloat,
	"congestion_surcharge":  TypeFloat,
}

var sourceDates = map[types.TaxiType][]string{
	types.Yellow: {"tpep_pickup_datetime", "tpep_dropoff_datetime"},
	types.Green:  {"lpep_pickup_datetime", "lpep_dropoff_datetime"},
	types.FHV:    {"pickup_datetime", "dropOff_datetime"},
}

// SourceSchema returns the declared raw column types for a variant. Columns not
// listed are left for inference.
func SourceSchema(variant types.TaxiType) map[string]ColumnType {
	out := make(map[string]ColumnType, len(sourceTypes)+2)
	if variant != types.FHV {
		for k, v := range sourceTypes {
			out[k] = v
		}
	}
	for _, name := range sourceDates[variant] {
		out[name] = TypeTimestamp
	}
	return out
}
