package types

import "errors"

var (
	ErrNotFound          = errors.New("requested item not found")
	ErrUnexpectedStatus  = errors.New("unexpected http status")
	ErrMalformedFile     = errors.New("malformed file")
	ErrEmptyTable        = errors.New("table has no columns")
	ErrTableNotFound     = errors.New("table not found")
	ErrInvalidTableName  = errors.New("invalid table name")
	ErrSchemaMismatch    = errors.New("chunk columns do not match table")
	ErrBucketNotOwned    = errors.New("bucket exists but does not belong to the project")
	ErrBucketForbidden   = errors.New("bucket exists but is not accessible")
	ErrUploadNotVerified = errors.New("uploaded object not found on verification")
	ErrNothingToLoad     = errors.New("no files were uploaded, nothing to load")
	ErrLoadJobFailed     = errors.New("warehouse job failed")

	ErrInvalidMode     = errors.New("invalid mode")
	ErrInvalidTaxiType = errors.New("invalid taxi type")
	ErrInvalidFormat   = errors.New("invalid data format")
	ErrInvalidPeriod   = errors.New("invalid period")
	ErrInvalidDate     = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidSink     = errors.New("invalid sink")
)
