package types

// JobMode selects the pipeline a single invocation runs.
type JobMode string

func (m JobMode) String() string {
	return string(m)
}

// Postgres - streams one month of trips into a relational table in chunks and refreshes the zone lookup
// Lake - downloads a range of monthly files and mirrors them into an object storage bucket
// Warehouse - mirrors monthly files into the bucket and loads them into a warehouse table
// Trips - fetches, normalizes and appends yellow/green trips for a date window
const (
	PostgresMode  JobMode = "postgres"
	LakeMode      JobMode = "lake"
	WarehouseMode JobMode = "warehouse"
	TripsMode     JobMode = "trips"
)

func (m JobMode) Valid() bool {
	switch m {
	case PostgresMode, LakeMode, WarehouseMode, TripsMode:
		return true
	}
	return false
}

// TaxiType is the dataset variant published by the TLC.
type TaxiType string

func (t TaxiType) String() string {
	return string(t)
}

const (
	Yellow TaxiType = "yellow"
	Green  TaxiType = "green"
	FHV    TaxiType = "fhv"
)

func (t TaxiType) Valid() bool {
	switch t {
	case Yellow, Green, FHV:
		return true
	}
	return false
}

// DataFormat is the file format a dataset is fetched in.
type DataFormat string

const (
	CSV     DataFormat = "csv"
	Parquet DataFormat = "parquet"
	NDJSON  DataFormat = "ndjson"
)

// Ext returns the object extension used for files of this format.
func (f DataFormat) Ext() string {
	switch f {
	case CSV:
		return "csv.gz"
	case NDJSON:
		return "json.gz"
	default:
		return string(f)
	}
}

func (f DataFormat) Valid() bool {
	return f == CSV || f == Parquet
}

// SinkKind is where the trips job appends its normalized rows.
type SinkKind string

const (
	SinkPostgres SinkKind = "postgres"
	SinkBigQuery SinkKind = "bigquery"
)
