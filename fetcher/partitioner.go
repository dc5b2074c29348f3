package fetcher

import (
	"context"
	"errors"
	"fmt"

	"mandiflow/internal/regions"
	"mandiflow/logger"
	"mandiflow/models"
	"mandiflow/source"
)

// Partitioner assembles a complete result set from a capped source by
// splitting unconstrained queries into one sub-query per state, and splitting
// a state further by district when its result count hits the cap. Partitions
// are fetched sequentially in enumeration order so the concatenated output is
// stable across runs.
type Partitioner struct {
	log *logger.Log
}

func NewPartitioner() *Partitioner {
	return &Partitioner{log: logger.GetLogger()}
}

// FetchAll returns every raw record for the filter. A failed partition is
// recorded on the report and the scan continues; only a failure of the very
// first query (before anything succeeded) propagates, so the coordinator can
// switch sources. When every partition of a full scan fails the source is
// reported unavailable rather than returning a silently empty dataset.
func (p *Partitioner) FetchAll(ctx context.Context, src source.Source, filter models.Filter, report *models.FetchReport) ([]models.RawRecord, error) {
	resultCap := src.ResultCap()
	log := p.log.WithComponent("partitioner").WithFields(logger.Fields{"source": string(src.Name())})

	// A constrained or uncapped query needs no state loop.
	if filter.State != "" || resultCap == 0 {
		records, err := src.Fetch(ctx, filter)
		if err != nil {
			return nil, err
		}
		report.Partitions++
		logger.IncrementPartition(len(records))
		if resultCap > 0 && len(records) >= resultCap && filter.District == "" {
			records = p.fetchByDistrict(ctx, src, filter, records, report)
		}
		return records, nil
	}

	log.WithFields(logger.Fields{"states": len(regions.States)}).Info("starting partitioned full scan")

	var all []models.RawRecord
	succeeded := 0

	for _, state := range regions.States {
		sub := filter.WithState(state)

		records, err := src.Fetch(ctx, sub)
		if err != nil {
			var unavailable *models.SourceUnavailableError
			if succeeded == 0 && len(report.FailedPartitions) == 0 && errors.As(err, &unavailable) {
				// First query never worked: let the coordinator
				// decide on a fallback instead of burning through
				// the whole enumeration.
				return nil, err
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			p.recordFailure(report, models.Partition{State: state}, err)
			continue
		}

		succeeded++
		report.Partitions++
		logger.IncrementPartition(len(records))

		if len(records) >= resultCap {
			records = p.fetchByDistrict(ctx, src, sub, records, report)
		}

		all = append(all, records...)
		log.WithFields(logger.Fields{
			"state":   state,
			"records": len(records),
			"total":   len(all),
		}).Info("state partition fetched")
	}

	if succeeded == 0 {
		return nil, &models.SourceUnavailableError{
			Source: src.Name(),
			Err:    fmt.Errorf("all %d state partitions failed", len(report.FailedPartitions)),
		}
	}

	return all, nil
}

// fetchByDistrict re-partitions one state's query by district after the state
// level result hit the cap. The merged district results replace the truncated
// state results. When no district enumeration exists for the state the
// truncated results are kept and the partition is flagged on the report.
func (p *Partitioner) fetchByDistrict(ctx context.Context, src source.Source, filter models.Filter, truncated []models.RawRecord, report *models.FetchReport) []models.RawRecord {
	log := p.log.WithComponent("partitioner")

	districts := regions.Districts(filter.State)
	if len(districts) == 0 {
		p.recordFailure(report, models.Partition{State: filter.State},
			errors.New("result cap reached and no district enumeration available; results may be truncated"))
		return truncated
	}

	log.WithFields(logger.Fields{
		"state":     filter.State,
		"districts": len(districts),
	}).Warn("state partition hit result cap, re-partitioning by district")

	var merged []models.RawRecord
	for _, district := range districts {
		records, err := src.Fetch(ctx, filter.WithDistrict(district))
		if err != nil {
			if ctx.Err() != nil {
				return merged
			}
			p.recordFailure(report, models.Partition{State: filter.State, District: district}, err)
			continue
		}
		report.Partitions++
		logger.IncrementPartition(len(records))
		merged = append(merged, records...)
	}
	return merged
}

func (p *Partitioner) recordFailure(report *models.FetchReport, part models.Partition, err error) {
	pe := models.PartitionError{Partition: part, Err: err}
	report.FailedPartitions = append(report.FailedPartitions, pe)
	logger.IncrementPartitionFailure()
	p.log.WithComponent("partitioner").WithFields(logger.Fields{
		"partition": part.String(),
	}).WithError(err).Warn("partition fetch failed, continuing")
}
