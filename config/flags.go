package config

import (
	"strconv"

	"github.com/spf13/pflag"

	"github.com/Temutjin2k/taxi-ingest/internal/domain/types"
)

// Flags holds the command line. Values only override the environment when the
// flag was set explicitly.
type Flags struct {
	fs *pflag.FlagSet

	Mode       string
	ConfigPath string
	Help       bool

	user, password, host, db string
	port                     int
	year, month, chunkSize   int
	table, taxiType, format  string
	singleTx                 bool
}

func ParseFlags(args []string) (*Flags, error) {
	f := &Flags{fs: pflag.NewFlagSet("ingest", pflag.ContinueOnError)}
	fs := f.fs

	fs.StringVar(&f.Mode, "mode", "", "job to run: postgres, lake, warehouse or trips")
	fs.StringVar(&f.ConfigPath, "config-path", "config.yaml", "path to the config yaml file")
	fs.BoolVarP(&f.Help, "help", "h", false, "show help message")

	fs.StringVar(&f.user, "user", "", "postgres user")
	fs.StringVar(&f.password, "password", "", "postgres password")
	fs.StringVar(&f.host, "host", "", "postgres host")
	fs.IntVar(&f.port, "port", 0, "postgres port")
	fs.StringVar(&f.db, "db", "", "postgres database")
	fs.IntVar(&f.year, "year", 0, "year of the trip file")
	fs.IntVar(&f.month, "month", 0, "month of the trip file")
	fs.IntVar(&f.chunkSize, "chunksize", 0, "rows per insert chunk")
	fs.StringVar(&f.table, "table", "", "target table")
	fs.StringVar(&f.taxiType, "taxi-type", "", "yellow, green or fhv")
	fs.StringVar(&f.format, "format", "", "csv or parquet")
	fs.BoolVar(&f.singleTx, "single-tx", false, "load the whole file in one transaction")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *Flags) Usage() string {
	return f.fs.FlagUsages()
}

func (f *Flags) changed(name string) bool {
	return f.fs.Changed(name)
}

func (f *Flags) apply(cfg *Config) error {
	if f.Mode == "" {
		return ErrModeNotProvided
	}
	cfg.Mode = types.JobMode(f.Mode)

	if f.changed("user") {
		cfg.Database.User = f.user
	}
	if f.changed("password") {
		cfg.Database.Password = f.password
	}
	if f.changed("host") {
		cfg.Database.Host = f.host
	}
	if f.changed("port") {
		cfg.Database.Port = strconv.Itoa(f.port)
	}
	if f.changed("db") {
		cfg.Database.Database = f.db
	}

	// Dataset flags apply to the job that was selected.
	switch cfg.Mode {
	case types.LakeMode:
		f.applyDataset(&cfg.Lake.TaxiType, &cfg.Lake.Format, &cfg.Lake.Year)
	case types.WarehouseMode:
		f.applyDataset(&cfg.Warehouse.TaxiType, &cfg.Warehouse.Format, &cfg.Warehouse.Year)
		if f.changed("table") {
			cfg.Warehouse.Table = f.table
		}
	case types.TripsMode:
		if f.changed("table") {
			cfg.Trips.Table = f.table
		}
		if f.changed("chunksize") {
			cfg.Trips.ChunkSize = f.chunkSize
		}
	default:
		f.applyDataset(&cfg.Ingest.TaxiType, &cfg.Ingest.Format, &cfg.Ingest.Year)
		if f.changed("month") {
			cfg.Ingest.Month = f.month
		}
		if f.changed("chunksize") {
			cfg.Ingest.ChunkSize = f.chunkSize
		}
		if f.changed("table") {
			cfg.Ingest.Table = f.table
		}
		if f.changed("single-tx") {
			cfg.Ingest.SingleTx = f.singleTx
		}
	}
	return nil
}

func (f *Flags) applyDataset(taxiType, format *string, year *int) {
	if f.changed("taxi-type") {
		*taxiType = f.taxiType
	}
	if f.changed("format") {
		*format = f.format
	}
	if f.changed("year") {
		*year = f.year
	}
}
