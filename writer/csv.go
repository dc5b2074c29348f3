// Package writer serializes a finalized dataset to its export format and
// optionally ships the file to S3.
package writer

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"mandiflow/logger"
	"mandiflow/models"
)

// Header is the fixed CSV column order. Rows are written in dataset order;
// content validation happened upstream in the normalizer.
var Header = []string{
	"state", "district", "market", "commodity", "variety",
	"min_price", "max_price", "modal_price", "price_date",
}

// Exporter writes a dataset to a file and reports how many rows it wrote.
type Exporter interface {
	Export(dataset models.Dataset, path string) (int, error)
}

// NewExporter returns the exporter for a configured format name.
func NewExporter(format string) (Exporter, error) {
	switch format {
	case "csv":
		return NewCSVExporter(), nil
	case "parquet":
		return NewParquetExporter(), nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

type CSVExporter struct {
	log *logger.Log
}

func NewCSVExporter() *CSVExporter {
	return &CSVExporter{log: logger.GetLogger()}
}

// Export writes one header row plus one row per record, UTF-8 encoded. An
// empty dataset still produces a valid header-only file.
func (e *CSVExporter) Export(dataset models.Dataset, path string) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create output file: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(Header); err != nil {
		f.Close()
		return 0, fmt.Errorf("failed to write header: %w", err)
	}

	for _, rec := range dataset {
		if err := w.Write(csvRow(rec)); err != nil {
			f.Close()
			return 0, fmt.Errorf("failed to write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return 0, fmt.Errorf("failed to flush output: %w", err)
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("failed to close output file: %w", err)
	}

	size := int64(0)
	if info, err := os.Stat(path); err == nil {
		size = info.Size()
	}
	logger.IncrementExport(len(dataset), size)

	e.log.WithComponent("csv_writer").WithFields(logger.Fields{
		"path":  path,
		"rows":  len(dataset),
		"bytes": size,
	}).Info("dataset exported")

	return len(dataset), nil
}

func csvRow(rec models.PriceRecord) []string {
	return []string{
		rec.State,
		rec.District,
		rec.Market,
		rec.Commodity,
		rec.Variety,
		formatPrice(rec.MinPrice),
		formatPrice(rec.MaxPrice),
		formatPrice(rec.ModalPrice),
		formatDate(rec),
	}
}

// formatPrice leaves not-reported prices as empty cells rather than zeros.
func formatPrice(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatDate(rec models.PriceRecord) string {
	if rec.PriceDate.IsZero() {
		return ""
	}
	return rec.PriceDate.Format("2006-01-02")
}
