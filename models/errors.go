package models

import "fmt"

// SourceUnavailableError marks a whole-adapter failure: missing key, transport
// error, non-2xx status or a malformed payload. The coordinator treats it as a
// trigger to switch sources rather than a fatal error.
type SourceUnavailableError struct {
	Source SourceName
	Err    error
}

func (e *SourceUnavailableError) Error() string {
	return fmt.Sprintf("source %s unavailable: %v", e.Source, e.Err)
}

func (e *SourceUnavailableError) Unwrap() error { return e.Err }

// DataUnavailableError is raised when every configured source has failed.
// It propagates to the caller and the process exits non-zero.
type DataUnavailableError struct {
	APIErr    error
	ScrapeErr error
}

func (e *DataUnavailableError) Error() string {
	return fmt.Sprintf("no data source available: api: %v, scrape: %v", e.APIErr, e.ScrapeErr)
}

// PartitionError records the failure of one state or district sub-query.
// The partitioner continues with remaining partitions and surfaces these in
// the final run summary.
type PartitionError struct {
	Partition Partition
	Err       error
}

func (e *PartitionError) Error() string {
	return fmt.Sprintf("partition %s: %v", e.Partition, e.Err)
}

func (e *PartitionError) Unwrap() error { return e.Err }

// RecordParseError describes why a single raw record was dropped during
// normalization. It is logged, never propagated.
type RecordParseError struct {
	Field  string
	Value  string
	Reason string
}

func (e *RecordParseError) Error() string {
	return fmt.Sprintf("record field %q: %s (value %q)", e.Field, e.Reason, e.Value)
}
