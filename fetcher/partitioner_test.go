package fetcher

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"mandiflow/internal/regions"
	"mandiflow/models"
)

// fakeSource scripts Fetch responses per filter and records every call.
type fakeSource struct {
	name      models.SourceName
	resultCap int
	calls     []models.Filter
	fetch     func(f models.Filter) ([]models.RawRecord, error)
}

func (s *fakeSource) Name() models.SourceName { return s.name }
func (s *fakeSource) ResultCap() int          { return s.resultCap }
func (s *fakeSource) Close() error            { return nil }

func (s *fakeSource) Fetch(ctx context.Context, f models.Filter) ([]models.RawRecord, error) {
	s.calls = append(s.calls, f)
	return s.fetch(f)
}

func nRecords(n int) []models.RawRecord {
	out := make([]models.RawRecord, n)
	for i := range out {
		out[i] = models.RawRecord{"state": "x"}
	}
	return out
}

func TestFetchAllDirectQueryWhenStateSet(t *testing.T) {
	src := &fakeSource{
		name:      models.SourceAPI,
		resultCap: 10000,
		fetch: func(f models.Filter) ([]models.RawRecord, error) {
			return nRecords(3), nil
		},
	}

	report := &models.FetchReport{}
	records, err := NewPartitioner().FetchAll(context.Background(), src, models.Filter{State: "Punjab"}, report)
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}
	if len(src.calls) != 1 {
		t.Fatalf("expected exactly one direct query, got %d", len(src.calls))
	}
	if src.calls[0].State != "Punjab" {
		t.Errorf("unexpected query filter: %+v", src.calls[0])
	}
	if len(records) != 3 {
		t.Errorf("expected 3 records, got %d", len(records))
	}
}

func TestFetchAllPartitionsByState(t *testing.T) {
	src := &fakeSource{
		name:      models.SourceAPI,
		resultCap: 10000,
		fetch: func(f models.Filter) ([]models.RawRecord, error) {
			return []models.RawRecord{{"state": f.State}}, nil
		},
	}

	report := &models.FetchReport{}
	records, err := NewPartitioner().FetchAll(context.Background(), src, models.Filter{Commodity: "Wheat"}, report)
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}
	if len(src.calls) != len(regions.States) {
		t.Fatalf("expected %d calls, got %d", len(regions.States), len(src.calls))
	}
	// Concatenation must follow enumeration order.
	for i, state := range regions.States {
		if records[i]["state"] != state {
			t.Fatalf("record %d out of enumeration order: got %q want %q", i, records[i]["state"], state)
		}
		if src.calls[i].Commodity != "Wheat" {
			t.Errorf("commodity constraint lost on call %d", i)
		}
	}
}

func TestFetchAllRepartitionsByDistrict(t *testing.T) {
	const trunc = 5
	districts := regions.Districts("Punjab")
	if len(districts) == 0 {
		t.Fatal("test requires a district enumeration for Punjab")
	}

	src := &fakeSource{
		name:      models.SourceAPI,
		resultCap: trunc,
		fetch: func(f models.Filter) ([]models.RawRecord, error) {
			if f.State == "Punjab" && f.District == "" {
				return nRecords(trunc), nil // truncated at the cap
			}
			if f.State == "Punjab" {
				return nRecords(1), nil
			}
			return nRecords(1), nil
		},
	}

	report := &models.FetchReport{}
	records, err := NewPartitioner().FetchAll(context.Background(), src, models.Filter{}, report)
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}

	wantCalls := len(regions.States) + len(districts)
	if len(src.calls) != wantCalls {
		t.Fatalf("expected %d calls (states + Punjab districts), got %d", wantCalls, len(src.calls))
	}
	// One record per state except Punjab, whose truncated results were
	// replaced by one record per district.
	wantRecords := len(regions.States) - 1 + len(districts)
	if len(records) != wantRecords {
		t.Errorf("expected %d records, got %d", wantRecords, len(records))
	}
}

func TestFetchAllDistrictFallbackWithoutEnumeration(t *testing.T) {
	const trunc = 5
	if regions.Districts("Goa") != nil {
		t.Fatal("test requires no district enumeration for Goa")
	}

	src := &fakeSource{
		name:      models.SourceAPI,
		resultCap: trunc,
		fetch: func(f models.Filter) ([]models.RawRecord, error) {
			return nRecords(trunc), nil
		},
	}

	report := &models.FetchReport{}
	records, err := NewPartitioner().FetchAll(context.Background(), src, models.Filter{State: "Goa"}, report)
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}
	if len(records) != trunc {
		t.Errorf("truncated results should be kept, got %d records", len(records))
	}
	if len(report.FailedPartitions) != 1 {
		t.Errorf("possible truncation should be flagged on the report, got %d failures", len(report.FailedPartitions))
	}
}

func TestFetchAllContinuesAfterPartitionFailure(t *testing.T) {
	src := &fakeSource{
		name:      models.SourceAPI,
		resultCap: 10000,
		fetch: func(f models.Filter) ([]models.RawRecord, error) {
			if f.State == "Bihar" {
				return nil, fmt.Errorf("transient upstream error")
			}
			return nRecords(1), nil
		},
	}

	report := &models.FetchReport{}
	records, err := NewPartitioner().FetchAll(context.Background(), src, models.Filter{}, report)
	if err != nil {
		t.Fatalf("FetchAll should not fail on a single partition: %v", err)
	}
	if len(records) != len(regions.States)-1 {
		t.Errorf("expected %d records, got %d", len(regions.States)-1, len(records))
	}
	if len(report.FailedPartitions) != 1 {
		t.Fatalf("expected 1 failed partition, got %d", len(report.FailedPartitions))
	}
	if report.FailedPartitions[0].Partition.State != "Bihar" {
		t.Errorf("wrong partition reported: %+v", report.FailedPartitions[0].Partition)
	}
}

func TestFetchAllPropagatesFirstQuerySourceFailure(t *testing.T) {
	src := &fakeSource{
		name:      models.SourceAPI,
		resultCap: 10000,
		fetch: func(f models.Filter) ([]models.RawRecord, error) {
			return nil, &models.SourceUnavailableError{Source: models.SourceAPI, Err: errors.New("401")}
		},
	}

	report := &models.FetchReport{}
	_, err := NewPartitioner().FetchAll(context.Background(), src, models.Filter{}, report)
	if err == nil {
		t.Fatal("expected error when the first query fails")
	}
	var unavailable *models.SourceUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected SourceUnavailableError, got %T", err)
	}
	if len(src.calls) != 1 {
		t.Errorf("partitioner should fail fast, issued %d calls", len(src.calls))
	}
}

func TestFetchAllUncappedSourceSingleQuery(t *testing.T) {
	src := &fakeSource{
		name:      models.SourceScrape,
		resultCap: 0,
		fetch: func(f models.Filter) ([]models.RawRecord, error) {
			return nRecords(7), nil
		},
	}

	report := &models.FetchReport{}
	records, err := NewPartitioner().FetchAll(context.Background(), src, models.Filter{}, report)
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}
	if len(src.calls) != 1 {
		t.Fatalf("uncapped source should get a single query, got %d", len(src.calls))
	}
	if len(records) != 7 {
		t.Errorf("expected 7 records, got %d", len(records))
	}
}
