package source

import "errors"

// Row is one raw condition row from a partition, before any parsing or
// classification. StartDate is kept as text; the core decides whether it
// parses.
type Row struct {
	PatientID string
	Code      string
	StartDate string
}

// Source yields raw condition rows per partition. A partition is one
// independently-sourced batch of records, processed in isolation before
// merging.
type Source interface {
	// Partitions lists the partition identifiers available to this source.
	Partitions() ([]string, error)

	// Read returns all condition rows for one partition. It may fail with
	// ErrPartitionUnavailable, ErrNoConditions or ErrMissingFields; all
	// three are recoverable and mean "skip this partition".
	Read(partition string) ([]Row, error)
}

var (
	// ErrPartitionUnavailable means the partition could not be opened.
	ErrPartitionUnavailable = errors.New("partition unavailable")

	// ErrNoConditions means the partition carries no conditions table.
	ErrNoConditions = errors.New("no conditions table in partition")

	// ErrMissingFields means the conditions table lacks required columns.
	ErrMissingFields = errors.New("required fields absent")
)
