// Package processor maps source-shaped raw records into the canonical price
// record schema shared by both acquisition paths.
package processor

import (
	"strconv"
	"strings"
	"time"

	"mandiflow/logger"
	"mandiflow/models"
)

// fieldMapping describes how one source names the canonical fields and which
// date layouts it serves. Candidate names are checked in order; the first key
// present in the raw record wins.
type fieldMapping struct {
	state       []string
	district    []string
	market      []string
	commodity   []string
	variety     []string
	minPrice    []string
	maxPrice    []string
	modalPrice  []string
	priceDate   []string
	dateLayouts []string
}

var mappings = map[models.SourceName]fieldMapping{
	models.SourceAPI: {
		state:       []string{"state"},
		district:    []string{"district"},
		market:      []string{"market"},
		commodity:   []string{"commodity"},
		variety:     []string{"variety"},
		minPrice:    []string{"min_price"},
		maxPrice:    []string{"max_price"},
		modalPrice:  []string{"modal_price"},
		priceDate:   []string{"arrival_date"},
		dateLayouts: []string{"02/01/2006"},
	},
	models.SourceScrape: {
		state:       []string{"State Name", "State"},
		district:    []string{"District Name", "District"},
		market:      []string{"Market Name", "Market"},
		commodity:   []string{"Commodity"},
		variety:     []string{"Variety"},
		minPrice:    []string{"Min Price (Rs./Quintal)", "Min Price"},
		maxPrice:    []string{"Max Price (Rs./Quintal)", "Max Price"},
		modalPrice:  []string{"Modal Price (Rs./Quintal)", "Modal Price"},
		priceDate:   []string{"Reported Date", "Price Date", "Arrival Date"},
		dateLayouts: []string{"02 Jan 2006", "02/01/2006"},
	},
}

// Normalizer converts raw records to PriceRecords, dropping individually
// malformed records without failing the run.
type Normalizer struct {
	log *logger.Log
}

func NewNormalizer() *Normalizer {
	return &Normalizer{log: logger.GetLogger()}
}

// Normalize maps one raw record. The only fatal per-record defect is an
// unparseable date; missing or non-numeric prices become nil fields, which
// callers must read as "not reported", never zero.
func (n *Normalizer) Normalize(raw models.RawRecord, src models.SourceName) (models.PriceRecord, error) {
	m := mappings[src]

	rec := models.PriceRecord{
		State:      lookup(raw, m.state),
		District:   lookup(raw, m.district),
		Market:     lookup(raw, m.market),
		Commodity:  lookup(raw, m.commodity),
		Variety:    lookup(raw, m.variety),
		MinPrice:   parsePrice(lookup(raw, m.minPrice)),
		MaxPrice:   parsePrice(lookup(raw, m.maxPrice)),
		ModalPrice: parsePrice(lookup(raw, m.modalPrice)),
	}

	dateStr := lookup(raw, m.priceDate)
	if dateStr != "" {
		date, ok := parseDate(dateStr, m.dateLayouts)
		if !ok {
			return models.PriceRecord{}, &models.RecordParseError{
				Field:  "price_date",
				Value:  dateStr,
				Reason: "unparseable date",
			}
		}
		rec.PriceDate = date
	}

	if rec.MinPrice != nil && rec.ModalPrice != nil && rec.MaxPrice != nil {
		if *rec.MinPrice > *rec.ModalPrice || *rec.ModalPrice > *rec.MaxPrice {
			n.log.WithComponent("normalizer").WithFields(logger.Fields{
				"market":    rec.Market,
				"commodity": rec.Commodity,
				"min":       *rec.MinPrice,
				"modal":     *rec.ModalPrice,
				"max":       *rec.MaxPrice,
			}).Warn("price ordering violated, keeping record as reported")
		}
	}

	return rec, nil
}

// NormalizeAll normalizes a whole raw batch, applying the client-side date
// range filter. Records with unparseable dates are dropped and counted on the
// report; records with no date at all are kept only when no range was
// requested.
func (n *Normalizer) NormalizeAll(raws []models.RawRecord, src models.SourceName, filter models.Filter, report *models.FetchReport) models.Dataset {
	log := n.log.WithComponent("normalizer")

	var from, to time.Time
	if filter.FromDate != nil {
		from = startOfDay(*filter.FromDate)
	}
	if filter.ToDate != nil {
		to = endOfDay(*filter.ToDate)
	}

	dataset := make(models.Dataset, 0, len(raws))
	for _, raw := range raws {
		rec, err := n.Normalize(raw, src)
		if err != nil {
			report.DroppedRecords++
			logger.IncrementDropped()
			log.WithError(err).Warn("dropping malformed record")
			continue
		}

		if rec.PriceDate.IsZero() {
			if filter.HasDateRange() {
				report.DroppedRecords++
				logger.IncrementDropped()
				log.WithFields(logger.Fields{
					"market":    rec.Market,
					"commodity": rec.Commodity,
				}).Debug("dropping dateless record inside a date-filtered run")
				continue
			}
			dataset = append(dataset, rec)
			continue
		}

		if filter.FromDate != nil && rec.PriceDate.Before(from) {
			continue
		}
		if filter.ToDate != nil && rec.PriceDate.After(to) {
			continue
		}
		dataset = append(dataset, rec)
	}

	log.WithFields(logger.Fields{
		"raw":     len(raws),
		"kept":    len(dataset),
		"dropped": report.DroppedRecords,
	}).Info("normalization complete")

	return dataset
}

func lookup(raw models.RawRecord, candidates []string) string {
	for _, key := range candidates {
		if v, ok := raw[key]; ok {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// parsePrice reads a decimal price, tolerating thousands separators. Missing
// and non-numeric values (the report uses "NR" for not reported) yield nil.
func parsePrice(s string) *float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" || s == "-" || strings.EqualFold(s, "NR") {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func parseDate(s string, layouts []string) (time.Time, bool) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
