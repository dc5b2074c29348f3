package models

import (
	"fmt"
	"time"
)

// SourceName identifies which acquisition path produced a record.
type SourceName string

const (
	SourceAPI    SourceName = "api"
	SourceScrape SourceName = "scrape"
)

// DateLayout is the day-first layout used by the CLI and the open-data API.
const DateLayout = "02/01/2006"

// Filter narrows an acquisition run. Empty strings and nil dates mean
// "unconstrained".
type Filter struct {
	Commodity string
	State     string
	District  string
	FromDate  *time.Time
	ToDate    *time.Time
}

// Validate checks the from/to ordering. All fields are optional.
func (f Filter) Validate() error {
	if f.FromDate != nil && f.ToDate != nil && f.FromDate.After(*f.ToDate) {
		return fmt.Errorf("from-date %s is after to-date %s",
			f.FromDate.Format(DateLayout), f.ToDate.Format(DateLayout))
	}
	return nil
}

// HasDateRange reports whether any date constraint is set.
func (f Filter) HasDateRange() bool {
	return f.FromDate != nil || f.ToDate != nil
}

// WithState returns a copy of the filter constrained to one state.
func (f Filter) WithState(state string) Filter {
	f.State = state
	return f
}

// WithDistrict returns a copy of the filter constrained to one district.
func (f Filter) WithDistrict(district string) Filter {
	f.District = district
	return f
}

func (f Filter) String() string {
	s := func(v string) string {
		if v == "" {
			return "All"
		}
		return v
	}
	d := func(v *time.Time) string {
		if v == nil {
			return "Any"
		}
		return v.Format(DateLayout)
	}
	return fmt.Sprintf("commodity=%s state=%s district=%s from=%s to=%s",
		s(f.Commodity), s(f.State), s(f.District), d(f.FromDate), d(f.ToDate))
}

// RawRecord is a source-shaped record before normalization. Keys are whatever
// the producing source emitted: JSON field names for the API, column headers
// for a scraped report table.
type RawRecord map[string]string

// PriceRecord is the canonical row shape shared by both sources.
// Price fields are pointers: a nil price means "not reported", which is
// distinct from zero.
type PriceRecord struct {
	State      string
	District   string
	Market     string
	Commodity  string
	Variety    string
	MinPrice   *float64
	MaxPrice   *float64
	ModalPrice *float64
	PriceDate  time.Time
}

// Dataset is the ordered result of one invocation. It is appended to during
// pagination and never mutated after normalization completes.
type Dataset []PriceRecord

// Partition names one unit of the partitioned full scan.
type Partition struct {
	State    string
	District string
}

func (p Partition) String() string {
	if p.District != "" {
		return p.State + "/" + p.District
	}
	if p.State != "" {
		return p.State
	}
	return "direct"
}

// FetchReport summarises one acquisition run for logging and the exit-time
// partition-failure warning.
type FetchReport struct {
	RunID            string
	SourceUsed       SourceName
	Partitions       int
	FailedPartitions []PartitionError
	RawRecords       int
	DroppedRecords   int
}
