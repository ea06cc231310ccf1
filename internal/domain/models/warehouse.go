package models

import "github.com/Temutjin2k/taxi-ingest/internal/domain/types"

type WriteDisposition string

const (
	WriteTruncate WriteDisposition = "truncate"
	WriteAppend   WriteDisposition = "append"
)

// LoadRequest describes a warehouse batch load from object storage.
type LoadRequest struct {
	URI         string
	Dataset     string
	Table       string
	Format      types.DataFormat
	SkipRows    int64
	Autodetect  bool
	Schema      []Column
	Disposition WriteDisposition
}

// PartitionRequest describes a partitioned and clustered copy of a table.
type PartitionRequest struct {
	Dataset         string
	Table           string
	PartitionColumn string
	ClusterColumns  []string
}

// TableStats is what the warehouse reports about a loaded table.
type TableStats struct {
	Table    string
	NumRows  uint64
	NumBytes int64
}

func (s TableStats) SizeGB() float64 {
	return float64(s.NumBytes) / (1 << 30)
}
