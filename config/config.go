package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Temutjin2k/taxi-ingest/internal/domain/models"
	"github.com/Temutjin2k/taxi-ingest/internal/domain/types"
	"github.com/Temutjin2k/taxi-ingest/pkg/configparser"
)

// Errors
var (
	ErrModeNotProvided = errors.New("mode flag not provided")
)

// Config contains all configuration variables of the application
type (
	Config struct {
		Mode  types.JobMode
		RunID string

		Log       LogConfig
		Database  DatabaseConfig
		Ingest    IngestConfig
		Source    SourceConfig
		GCP       GCPConfig
		Lake      LakeConfig
		Warehouse WarehouseConfig
		Trips     TripsConfig
		Upload    UploadConfig
		RabbitMQ  RabbitMQConfig
		Metrics   MetricsConfig
	}

	LogConfig struct {
		Level string `env:"LOG_LEVEL" default:"INFO"`
	}

	DatabaseConfig struct {
		Host     string `env:"DATABASE_HOST" default:"localhost"`
		Port     string `env:"DATABASE_PORT" default:"5432"`
		User     string `env:"DATABASE_USER" default:"root"`
		Password string `env:"DATABASE_PASSWORD" default:"root"`
		Database string `env:"DATABASE_DATABASE" default:"ny_taxi"`

		MaxConns int32 `env:"DATABASE_MAXCONNS" default:"4"`
	}

	// IngestConfig drives the postgres mode.
	IngestConfig struct {
		TaxiType   string `env:"INGEST_TAXI_TYPE" default:"yellow"`
		Format     string `env:"INGEST_FORMAT" default:"csv"`
		Year       int    `env:"INGEST_YEAR" default:"2021"`
		Month      int    `env:"INGEST_MONTH" default:"1"`
		ChunkSize  int    `env:"INGEST_CHUNKSIZE" default:"100000"`
		Table      string `env:"INGEST_TABLE" default:"yellow_taxi_data"`
		SingleTx   bool   `env:"INGEST_SINGLE_TX" default:"false"`
		ZonesTable string `env:"INGEST_ZONES_TABLE" default:"zones"`
	}

	SourceConfig struct {
		ParquetURL string        `env:"SOURCE_PARQUET_URL" default:"https://d37ci6vzurychx.cloudfront.net/trip-data/{dataset}_tripdata_{year}-{month}.parquet"`
		CSVURL     string        `env:"SOURCE_CSV_URL" default:"https://github.com/DataTalksClub/nyc-tlc-data/releases/download/{dataset}/{dataset}_tripdata_{year}-{month}.csv.gz"`
		ZonesURL   string        `env:"SOURCE_ZONES_URL" default:"https://d37ci6vzurychx.cloudfront.net/misc/taxi_zone_lookup.csv"`
		Timeout    time.Duration `env:"SOURCE_TIMEOUT" default:"300s"`
		StagingDir string        `env:"SOURCE_STAGING_DIR" default:"data"`
	}

	GCPConfig struct {
		Project  string `env:"GOOGLE_CLOUD_PROJECT" default:"kestrademo-485701"`
		Key      string `env:"GCP_SA_KEY"`
		KeyB64   string `env:"GCP_SA_KEY_B64"`
		Bucket   string `env:"GCP_BUCKET" default:"aa10-kestra"`
		Location string `env:"GCP_LOCATION" default:"US"`
	}

	LakeConfig struct {
		TaxiType  string `env:"LAKE_TAXI_TYPE" default:"yellow"`
		Year      int    `env:"LAKE_YEAR" default:"2024"`
		MonthFrom int    `env:"LAKE_MONTH_FROM" default:"1"`
		MonthTo   int    `env:"LAKE_MONTH_TO" default:"6"`
		Format    string `env:"LAKE_FORMAT" default:"parquet"`
		Prefix    string `env:"LAKE_PREFIX"`
		Workers   int    `env:"LAKE_WORKERS" default:"4"`
		KeepLocal bool   `env:"LAKE_KEEP_LOCAL" default:"false"`
	}

	WarehouseConfig struct {
		TaxiType        string   `env:"WAREHOUSE_TAXI_TYPE" default:"fhv"`
		Year            int      `env:"WAREHOUSE_YEAR" default:"2019"`
		MonthFrom       int      `env:"WAREHOUSE_MONTH_FROM" default:"1"`
		MonthTo         int      `env:"WAREHOUSE_MONTH_TO" default:"12"`
		Format          string   `env:"WAREHOUSE_FORMAT" default:"csv"`
		Prefix          string   `env:"WAREHOUSE_PREFIX" default:"fhv"`
		Dataset         string   `env:"WAREHOUSE_DATASET" default:"zoomcamp"`
		Table           string   `env:"WAREHOUSE_TABLE" default:"fhv_tripdata_2019"`
		Partition       bool     `env:"WAREHOUSE_PARTITION" default:"true"`
		PartitionColumn string   `env:"WAREHOUSE_PARTITION_COLUMN" default:"pickup_datetime"`
		ClusterColumns  []string `env:"WAREHOUSE_CLUSTER_COLUMNS" default:"dispatching_base_num"`
		Workers         int      `env:"WAREHOUSE_WORKERS" default:"4"`
	}

	TripsConfig struct {
		StartDate string `env:"BRUIN_START_DATE"`
		EndDate   string `env:"BRUIN_END_DATE"`
		Vars      string `env:"BRUIN_VARS"`

		Sink      string `env:"TRIPS_SINK" default:"postgres"`
		Table     string `env:"TRIPS_TABLE" default:"ingestion.trips"`
		ChunkSize int    `env:"TRIPS_CHUNKSIZE" default:"100000"`
		Dataset   string `env:"TRIPS_DATASET" default:"ingestion"`
		BQTable   string `env:"TRIPS_BQ_TABLE" default:"trips"`
		Prefix    string `env:"TRIPS_PREFIX" default:"staging"`
		Workers   int    `env:"TRIPS_WORKERS" default:"4"`
	}

	UploadConfig struct {
		MaxAttempts int           `env:"UPLOAD_MAX_ATTEMPTS" default:"3"`
		Delay       time.Duration `env:"UPLOAD_DELAY" default:"5s"`
		ChunkSize   int           `env:"UPLOAD_CHUNK_SIZE" default:"8388608"`
	}

	RabbitMQConfig struct {
		Enabled  bool   `env:"RABBITMQ_ENABLED" default:"false"`
		Host     string `env:"RABBITMQ_HOST" default:"localhost"`
		Port     string `env:"RABBITMQ_PORT" default:"5672"`
		User     string `env:"RABBITMQ_USER" default:"guest"`
		Password string `env:"RABBITMQ_PASSWORD" default:"guest"`
		Exchange string `env:"RABBITMQ_EXCHANGE" default:"ingestion"`
	}

	MetricsConfig struct {
		Enabled bool `env:"METRICS_ENABLED" default:"false"`
		Port    int  `env:"METRICS_PORT" default:"9090"`
	}
)

var defaultTripTaxiTypes = []types.TaxiType{types.Yellow, types.Green}

func (c DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

func (c DatabaseConfig) GetMaxConns() int32 {
	return c.MaxConns
}

func (c RabbitMQConfig) GetDSN() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/",
		c.User,
		c.Password,
		c.Host,
		c.Port,
	)
}

// Period is the single month loaded by the postgres mode.
func (c IngestConfig) Period() models.Period {
	return models.Period{Year: c.Year, Month: c.Month}
}

// TaxiTypes decodes BRUIN_VARS. Missing vars or an empty list mean yellow and green.
func (c TripsConfig) TaxiTypes() ([]types.TaxiType, error) {
	if c.Vars == "" {
		return defaultTripTaxiTypes, nil
	}

	var vars struct {
		TaxiTypes []string `json:"taxi_types"`
	}
	if err := json.Unmarshal([]byte(c.Vars), &vars); err != nil {
		return nil, fmt.Errorf("BRUIN_VARS: %w", err)
	}
	if len(vars.TaxiTypes) == 0 {
		return defaultTripTaxiTypes, nil
	}

	out := make([]types.TaxiType, 0, len(vars.TaxiTypes))
	for _, s := range vars.TaxiTypes {
		t := types.TaxiType(s)
		if !t.Valid() {
			return nil, fmt.Errorf("BRUIN_VARS: %w: %q", types.ErrInvalidTaxiType, s)
		}
		out = append(out, t)
	}
	return out, nil
}

func NewConfig(flags *Flags) (*Config, error) {
	cfg := &Config{}

	// Loading enviromental variables and parsing to config struct.
	if err := configparser.LoadAndParseYaml(flags.ConfigPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to load and parse config: %w", err)
	}

	// Flags override env and yaml
	if err := flags.apply(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse flags: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the settings the selected mode depends on.
func (c *Config) Validate() error {
	if !c.Mode.Valid() {
		return fmt.Errorf("%w: %q", types.ErrInvalidMode, c.Mode)
	}

	switch c.Mode {
	case types.PostgresMode:
		if err := validDataset(c.Ingest.TaxiType, c.Ingest.Format); err != nil {
			return err
		}
		if !c.Ingest.Period().Valid() {
			return fmt.Errorf("%w: %s", types.ErrInvalidPeriod, c.Ingest.Period())
		}
	case types.LakeMode:
		return validDataset(c.Lake.TaxiType, c.Lake.Format)
	case types.WarehouseMode:
		return validDataset(c.Warehouse.TaxiType, c.Warehouse.Format)
	case types.TripsMode:
		if _, err := c.Trips.TaxiTypes(); err != nil {
			return err
		}
		if sink := types.SinkKind(c.Trips.Sink); sink != types.SinkPostgres && sink != types.SinkBigQuery {
			return fmt.Errorf("%w: %q", types.ErrInvalidSink, c.Trips.Sink)
		}
	}
	return nil
}

func validDataset(taxiType, format string) error {
	if !types.TaxiType(taxiType).Valid() {
		return fmt.Errorf("%w: %q", types.ErrInvalidTaxiType, taxiType)
	}
	if !types.DataFormat(format).Valid() {
		return fmt.Errorf("%w: %q", types.ErrInvalidFormat, format)
	}
	return nil
}
