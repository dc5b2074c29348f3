// Package datagov queries the data.gov.in open-data resource that publishes
// daily mandi price records.
package datagov

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"mandiflow/config"
	"mandiflow/logger"
	"mandiflow/models"
)

// Reader pages through the open-data API one filtered query at a time.
// A single query is truncated by the upstream at cfg.ResultCap records; the
// partitioner is responsible for keeping queries under that cap.
type Reader struct {
	cfg     config.APIConfig
	http    *resty.Client
	limiter *rate.Limiter
	log     *logger.Log
}

type apiResponse struct {
	Total   int64            `json:"total"`
	Count   int64            `json:"count"`
	Records []map[string]any `json:"records"`
}

// NewReader creates a Reader for the configured endpoint. The shared rate
// limiter keeps partitioned full scans polite toward the upstream.
func NewReader(cfg config.APIConfig) *Reader {
	client := resty.New()
	client.SetTimeout(cfg.Timeout)
	client.SetHeader("User-Agent", "mandiflow/0.3")

	rl := rate.Limit(cfg.RateLimit.RequestsPerSecond)
	burst := cfg.RateLimit.BurstSize
	if burst < 1 {
		burst = 1
	}

	return &Reader{
		cfg:     cfg,
		http:    client,
		limiter: rate.NewLimiter(rl, burst),
		log:     logger.GetLogger(),
	}
}

func (r *Reader) Name() models.SourceName { return models.SourceAPI }

func (r *Reader) ResultCap() int { return r.cfg.ResultCap }

func (r *Reader) Close() error { return nil }

// Fetch retrieves every record for the filter, paging with limit/offset until
// the reported total is exhausted or the upstream cap is reached. Missing key,
// transport failures, non-2xx statuses and payloads without a records array
// are all reported as SourceUnavailableError so the coordinator can fall back.
func (r *Reader) Fetch(ctx context.Context, filter models.Filter) ([]models.RawRecord, error) {
	if r.cfg.Key == "" {
		return nil, &models.SourceUnavailableError{
			Source: models.SourceAPI,
			Err:    errors.New("no API key configured"),
		}
	}

	log := r.log.WithComponent("datagov_reader").WithFields(logger.Fields{
		"state":    filter.State,
		"district": filter.District,
	})

	var records []models.RawRecord
	offset := 0

	for {
		if err := r.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		page, err := r.fetchPage(ctx, filter, offset)
		if err != nil {
			return nil, err
		}

		if len(page.Records) == 0 {
			break
		}
		for _, rec := range page.Records {
			records = append(records, toRawRecord(rec))
		}

		processed := offset + len(page.Records)
		if page.Total > 0 && int64(processed) >= page.Total {
			break
		}
		if processed >= r.cfg.ResultCap {
			// Upstream stops serving past the cap; the partitioner
			// detects this as possible truncation.
			log.WithFields(logger.Fields{"records": processed}).Warn("query hit upstream result cap")
			break
		}
		offset += r.cfg.PageLimit
	}

	log.WithFields(logger.Fields{"records": len(records)}).Debug("api query complete")
	return records, nil
}

func (r *Reader) fetchPage(ctx context.Context, filter models.Filter, offset int) (*apiResponse, error) {
	params := map[string]string{
		"api-key": r.cfg.Key,
		"format":  "json",
		"limit":   strconv.Itoa(r.cfg.PageLimit),
		"offset":  strconv.Itoa(offset),
	}
	if filter.Commodity != "" {
		params["filters[commodity]"] = filter.Commodity
	}
	if filter.State != "" {
		params["filters[state]"] = filter.State
	}
	if filter.District != "" {
		params["filters[district]"] = filter.District
	}

	start := time.Now()
	resp, err := r.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&apiResponse{}).
		Get(r.cfg.Endpoint)
	if err != nil {
		return nil, &models.SourceUnavailableError{
			Source: models.SourceAPI,
			Err:    fmt.Errorf("request failed: %w", err),
		}
	}
	logger.LogPerformanceEntry(r.log.WithComponent("datagov_reader"), "datagov_reader", "api_request",
		time.Since(start), logger.Fields{"offset": offset})

	if resp.IsError() {
		return nil, &models.SourceUnavailableError{
			Source: models.SourceAPI,
			Err:    fmt.Errorf("unexpected status %s", resp.Status()),
		}
	}

	body, ok := resp.Result().(*apiResponse)
	if !ok || body.Records == nil {
		return nil, &models.SourceUnavailableError{
			Source: models.SourceAPI,
			Err:    errors.New("malformed payload: no records array"),
		}
	}
	return body, nil
}

// toRawRecord flattens a decoded JSON object into the string-keyed raw shape
// the normalizer consumes. The API serves most values as strings already;
// numbers show up on a handful of records.
func toRawRecord(rec map[string]any) models.RawRecord {
	raw := make(models.RawRecord, len(rec))
	for k, v := range rec {
		switch val := v.(type) {
		case string:
			raw[k] = val
		case float64:
			raw[k] = strconv.FormatFloat(val, 'f', -1, 64)
		case nil:
			// skip
		default:
			raw[k] = fmt.Sprintf("%v", val)
		}
	}
	return raw
}
