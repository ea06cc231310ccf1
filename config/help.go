package config

import (
	"fmt"
)

const HelpMessage = `
NYC taxi trip ingestion.

Usage:
  ingest --mode <postgres|lake|warehouse|trips> [--config-path config.yaml] [flags]

Modes:
  postgres   load one month of trips into Postgres in chunks, then the zone lookup
  lake       copy monthly files into a GCS bucket with verified uploads
  warehouse  stage monthly files in GCS and load them into one BigQuery table
  trips      normalize yellow/green Parquet for BRUIN_START_DATE..BRUIN_END_DATE
             and append them to Postgres or BigQuery (TRIPS_SINK)

Environment:
  GCP_SA_KEY, GCP_SA_KEY_B64, GOOGLE_CLOUD_PROJECT   GCP credentials and project
  BRUIN_START_DATE, BRUIN_END_DATE, BRUIN_VARS       trips window and taxi types
  See config.yaml for the rest.

Flags:
`

func PrintHelp(f *Flags) {
	fmt.Print(HelpMessage)
	if f != nil {
		fmt.Print(f.Usage())
	}
}
