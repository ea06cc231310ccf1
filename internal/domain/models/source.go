package models

import (
	"fmt"
	"path"
	"strings"

	"github.com/Temutjin2k/taxi-ingest/internal/domain/types"
)

// URLTemplate is a remote file location with {dataset}, {year} and {month}
// placeholders. The month renders zero-padded.
type URLTemplate string

func (t URLTemplate) Render(dataset types.TaxiType, p Period) string {
	return strings.NewReplacer(
		"{dataset}", string(dataset),
		"{year}", fmt.Sprintf("%04d", p.Year),
		"{month}", p.MonthPadded(),
	).Replace(string(t))
}

// FileName is the canonical name of one monthly file.
func FileName(dataset types.TaxiType, p Period, ext string) string {
	return fmt.Sprintf("%s_tripdata_%s.%s", dataset, p, ext)
}

// ObjectKey is <prefix>/<year>/<file>. An empty prefix yields the bare file name.
func ObjectKey(prefix string, dataset types.TaxiType, p Period, ext string) string {
	name := FileName(dataset, p, ext)
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return name
	}
	return path.Join(prefix, fmt.Sprintf("%04d", p.Year), name)
}

// LoadURI is the wildcard URI matching every monthly object of a year.
func LoadURI(bucket, prefix string, dataset types.TaxiType, year int, ext string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return fmt.Sprintf("gs://%s/%s_tripdata_%04d-*.%s", bucket, dataset, year, ext)
	}
	return fmt.Sprintf("gs://%s/%s/%04d/*.%s", bucket, prefix, year, ext)
}
