// Package agmarknet extracts daily price records from the public Agmarknet
// datewise commodity report by driving a headless browser. It serves as the
// fallback acquisition path when the open-data API is unavailable.
package agmarknet

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod/lib/proto"

	"mandiflow/config"
	"mandiflow/logger"
	"mandiflow/models"
)

// Reader scrapes the datewise commodity report page. The report does not
// accept server-side filters, so filter constraints are applied to the parsed
// rows before they leave the adapter.
type Reader struct {
	cfg     config.ScrapeConfig
	log     *logger.Log
	browser *Browser
}

func NewReader(cfg config.ScrapeConfig) *Reader {
	return &Reader{
		cfg: cfg,
		log: logger.GetLogger(),
	}
}

func (r *Reader) Name() models.SourceName { return models.SourceScrape }

// ResultCap reports 0: a scraped report page is served whole, so the
// partitioner issues a single direct query instead of a state loop.
func (r *Reader) ResultCap() int { return 0 }

// Close releases the browser session if one was acquired.
func (r *Reader) Close() error {
	if r.browser == nil {
		return nil
	}
	b := r.browser
	r.browser = nil
	return b.Close()
}

// Fetch loads the report page, submits the report form, waits for the data
// table and extracts its rows. Any failure before rows are produced is a
// SourceUnavailableError.
func (r *Reader) Fetch(ctx context.Context, filter models.Filter) ([]models.RawRecord, error) {
	log := r.log.WithComponent("agmarknet_reader")

	if r.browser == nil {
		b, err := NewBrowser(r.cfg.Headless)
		if err != nil {
			return nil, r.unavailable(err)
		}
		r.browser = b
		log.Info("browser session started")
	}

	page, err := r.browser.NewPage()
	if err != nil {
		return nil, r.unavailable(fmt.Errorf("failed to open page: %w", err))
	}
	defer page.Close()

	page = page.Context(ctx).Timeout(r.cfg.PageTimeout)

	log.WithFields(logger.Fields{"url": r.cfg.URL}).Info("loading report page")
	start := time.Now()
	if err := page.Navigate(r.cfg.URL); err != nil {
		return nil, r.unavailable(fmt.Errorf("failed to navigate: %w", err))
	}
	if err := page.WaitLoad(); err != nil {
		return nil, r.unavailable(fmt.Errorf("page did not load: %w", err))
	}

	// Submit the report form when an obvious submit control is present.
	// Some report variants render the table without it.
	if el, elErr := page.Timeout(5 * time.Second).Element("input[type='submit']"); elErr == nil {
		if clickErr := el.Click(proto.InputMouseButtonLeft, 1); clickErr == nil {
			_ = page.WaitLoad()
		}
	}

	if _, err := page.Timeout(r.cfg.TableTimeout).Element("table"); err != nil {
		return nil, r.unavailable(fmt.Errorf("no data table appeared: %w", err))
	}

	html, err := page.HTML()
	if err != nil {
		return nil, r.unavailable(fmt.Errorf("failed to read page content: %w", err))
	}
	logger.LogPerformanceEntry(log, "agmarknet_reader", "page_load", time.Since(start), nil)

	records, err := extractLargestTable(html)
	if err != nil {
		return nil, r.unavailable(err)
	}

	filtered := filterRecords(records, filter)
	log.WithFields(logger.Fields{
		"rows":     len(records),
		"filtered": len(filtered),
	}).Info("report table extracted")

	return filtered, nil
}

func (r *Reader) unavailable(err error) error {
	return &models.SourceUnavailableError{Source: models.SourceScrape, Err: err}
}

// filterRecords applies commodity/state/district constraints client-side,
// matching loosely against whichever column header carries the field.
func filterRecords(records []models.RawRecord, filter models.Filter) []models.RawRecord {
	if filter.Commodity == "" && filter.State == "" && filter.District == "" {
		return records
	}

	out := make([]models.RawRecord, 0, len(records))
	for _, rec := range records {
		if matchesField(rec, "commodity", filter.Commodity) &&
			matchesField(rec, "state", filter.State) &&
			matchesField(rec, "district", filter.District) {
			out = append(out, rec)
		}
	}
	return out
}

func matchesField(rec models.RawRecord, field, want string) bool {
	if want == "" {
		return true
	}
	for key, val := range rec {
		if strings.Contains(strings.ToLower(key), field) {
			return strings.EqualFold(strings.TrimSpace(val), want)
		}
	}
	// A row without the column cannot be confirmed; keep it out.
	return false
}
