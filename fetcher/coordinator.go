// Package fetcher drives the acquisition pass: source selection with fallback
// and cap-aware query partitioning.
package fetcher

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"mandiflow/logger"
	"mandiflow/models"
	"mandiflow/source"
)

// Coordinator selects the acquisition path once per invocation: the API
// source when one is configured, the scrape source otherwise or after the API
// fails. A single source failure is enough to switch; the same source is
// never retried.
type Coordinator struct {
	api         source.Source
	scrape      source.Source
	partitioner *Partitioner
	log         *logger.Log
}

func NewCoordinator(api, scrape source.Source) *Coordinator {
	return &Coordinator{
		api:         api,
		scrape:      scrape,
		partitioner: NewPartitioner(),
		log:         logger.GetLogger(),
	}
}

// Fetch runs one acquisition pass and returns the raw records together with a
// report naming the source used and any failed partitions. When both sources
// fail the error is a *models.DataUnavailableError.
func (c *Coordinator) Fetch(ctx context.Context, filter models.Filter) ([]models.RawRecord, *models.FetchReport, error) {
	report := &models.FetchReport{RunID: uuid.NewString()}
	log := c.log.WithComponent("coordinator").WithFields(logger.Fields{"run_id": report.RunID})

	var apiErr error
	if c.api != nil {
		log.Info("trying open-data API source")
		records, err := c.partitioner.FetchAll(ctx, c.api, filter, report)
		if err == nil {
			report.SourceUsed = models.SourceAPI
			report.RawRecords = len(records)
			return records, report, nil
		}

		var unavailable *models.SourceUnavailableError
		if !errors.As(err, &unavailable) {
			// Cancellation and other non-source errors are not
			// fallback triggers.
			return nil, report, err
		}
		apiErr = err
		log.WithError(err).Warn("API source unavailable, falling back to web scrape")
	} else {
		apiErr = errors.New("api source not configured")
		log.Info("no API source configured, using web scrape")
	}

	if c.scrape == nil {
		return nil, report, &models.DataUnavailableError{
			APIErr:    apiErr,
			ScrapeErr: errors.New("scrape source not configured"),
		}
	}

	// Partition state from the failed API attempt does not describe the
	// scrape pass.
	report.Partitions = 0
	report.FailedPartitions = nil

	records, err := c.partitioner.FetchAll(ctx, c.scrape, filter, report)
	if err != nil {
		if ctx.Err() != nil {
			return nil, report, err
		}
		return nil, report, &models.DataUnavailableError{APIErr: apiErr, ScrapeErr: err}
	}

	report.SourceUsed = models.SourceScrape
	report.RawRecords = len(records)
	return records, report, nil
}
