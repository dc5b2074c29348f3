package fetcher

import (
	"context"
	"errors"
	"testing"

	"mandiflow/models"
)

func TestCoordinatorPrefersAPI(t *testing.T) {
	api := &fakeSource{
		name:      models.SourceAPI,
		resultCap: 10000,
		fetch: func(f models.Filter) ([]models.RawRecord, error) {
			return nRecords(4), nil
		},
	}
	scrape := &fakeSource{
		name: models.SourceScrape,
		fetch: func(f models.Filter) ([]models.RawRecord, error) {
			t.Fatal("scrape source should not be touched when the API succeeds")
			return nil, nil
		},
	}

	records, report, err := NewCoordinator(api, scrape).Fetch(context.Background(), models.Filter{State: "Punjab"})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if report.SourceUsed != models.SourceAPI {
		t.Errorf("expected source %q, got %q", models.SourceAPI, report.SourceUsed)
	}
	if report.RawRecords != 4 || len(records) != 4 {
		t.Errorf("expected 4 raw records, got %d (report %d)", len(records), report.RawRecords)
	}
	if report.RunID == "" {
		t.Error("report should carry a run id")
	}
}

func TestCoordinatorFallsBackToScrape(t *testing.T) {
	api := &fakeSource{
		name:      models.SourceAPI,
		resultCap: 10000,
		fetch: func(f models.Filter) ([]models.RawRecord, error) {
			return nil, &models.SourceUnavailableError{Source: models.SourceAPI, Err: errors.New("503")}
		},
	}
	scrape := &fakeSource{
		name: models.SourceScrape,
		fetch: func(f models.Filter) ([]models.RawRecord, error) {
			return nRecords(2), nil
		},
	}

	records, report, err := NewCoordinator(api, scrape).Fetch(context.Background(), models.Filter{State: "Punjab"})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if report.SourceUsed != models.SourceScrape {
		t.Errorf("expected fallback to %q, got %q", models.SourceScrape, report.SourceUsed)
	}
	if len(records) != 2 {
		t.Errorf("expected 2 records from the scrape pass, got %d", len(records))
	}
	if len(api.calls) != 1 {
		t.Errorf("API source should not be retried, got %d calls", len(api.calls))
	}
	// Partition bookkeeping from the failed API pass must not leak.
	if len(report.FailedPartitions) != 0 {
		t.Errorf("expected clean partition state after fallback, got %d failures", len(report.FailedPartitions))
	}
}

func TestCoordinatorBothSourcesFail(t *testing.T) {
	api := &fakeSource{
		name:      models.SourceAPI,
		resultCap: 10000,
		fetch: func(f models.Filter) ([]models.RawRecord, error) {
			return nil, &models.SourceUnavailableError{Source: models.SourceAPI, Err: errors.New("503")}
		},
	}
	scrape := &fakeSource{
		name: models.SourceScrape,
		fetch: func(f models.Filter) ([]models.RawRecord, error) {
			return nil, &models.SourceUnavailableError{Source: models.SourceScrape, Err: errors.New("timeout")}
		},
	}

	_, _, err := NewCoordinator(api, scrape).Fetch(context.Background(), models.Filter{State: "Punjab"})
	var unavailable *models.DataUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected DataUnavailableError, got %v", err)
	}
	if unavailable.APIErr == nil || unavailable.ScrapeErr == nil {
		t.Errorf("both source errors should be reported: %+v", unavailable)
	}
}

func TestCoordinatorScrapeOnly(t *testing.T) {
	scrape := &fakeSource{
		name: models.SourceScrape,
		fetch: func(f models.Filter) ([]models.RawRecord, error) {
			return nRecords(1), nil
		},
	}

	_, report, err := NewCoordinator(nil, scrape).Fetch(context.Background(), models.Filter{State: "Punjab"})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if report.SourceUsed != models.SourceScrape {
		t.Errorf("expected source %q, got %q", models.SourceScrape, report.SourceUsed)
	}
}

func TestCoordinatorCancellationIsNotAFallbackTrigger(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	api := &fakeSource{
		name:      models.SourceAPI,
		resultCap: 10000,
		fetch: func(f models.Filter) ([]models.RawRecord, error) {
			cancel()
			return nil, ctx.Err()
		},
	}
	scrape := &fakeSource{
		name: models.SourceScrape,
		fetch: func(f models.Filter) ([]models.RawRecord, error) {
			t.Fatal("cancellation must not trigger the scrape fallback")
			return nil, nil
		},
	}

	_, _, err := NewCoordinator(api, scrape).Fetch(ctx, models.Filter{State: "Punjab"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(scrape.calls) != 0 {
		t.Errorf("scrape source was called %d times after cancellation", len(scrape.calls))
	}
}
