package writer

import (
	"bytes"
	"fmt"
	"os"

	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/source"
	pwriter "github.com/xitongsys/parquet-go/writer"

	"mandiflow/logger"
	"mandiflow/models"
)

// parquetRow mirrors the CSV column set. Price fields are OPTIONAL so
// not-reported prices stay null instead of zero.
type parquetRow struct {
	State      string   `parquet:"name=state, type=BYTE_ARRAY, convertedtype=UTF8"`
	District   string   `parquet:"name=district, type=BYTE_ARRAY, convertedtype=UTF8"`
	Market     string   `parquet:"name=market, type=BYTE_ARRAY, convertedtype=UTF8"`
	Commodity  string   `parquet:"name=commodity, type=BYTE_ARRAY, convertedtype=UTF8"`
	Variety    string   `parquet:"name=variety, type=BYTE_ARRAY, convertedtype=UTF8"`
	MinPrice   *float64 `parquet:"name=min_price, type=DOUBLE, repetitiontype=OPTIONAL"`
	MaxPrice   *float64 `parquet:"name=max_price, type=DOUBLE, repetitiontype=OPTIONAL"`
	ModalPrice *float64 `parquet:"name=modal_price, type=DOUBLE, repetitiontype=OPTIONAL"`
	PriceDate  string   `parquet:"name=price_date, type=BYTE_ARRAY, convertedtype=UTF8"`
}

// memoryFileWriter implements the ParquetFile interface for in-memory writing
type memoryFileWriter struct {
	buffer *bytes.Buffer
}

func newMemoryFileWriter() *memoryFileWriter {
	return &memoryFileWriter{buffer: &bytes.Buffer{}}
}

func (mfw *memoryFileWriter) Create(name string) (source.ParquetFile, error) { return mfw, nil }
func (mfw *memoryFileWriter) Open(name string) (source.ParquetFile, error)   { return mfw, nil }

func (mfw *memoryFileWriter) Seek(offset int64, whence int) (int64, error) {
	// Writing is append-only; seek is never exercised.
	return int64(mfw.buffer.Len()), nil
}

func (mfw *memoryFileWriter) Read(b []byte) (int, error)  { return mfw.buffer.Read(b) }
func (mfw *memoryFileWriter) Write(b []byte) (int, error) { return mfw.buffer.Write(b) }
func (mfw *memoryFileWriter) Close() error                { return nil }

type ParquetExporter struct {
	log *logger.Log
}

func NewParquetExporter() *ParquetExporter {
	return &ParquetExporter{log: logger.GetLogger()}
}

// Export writes the dataset as a snappy-compressed parquet file.
func (e *ParquetExporter) Export(dataset models.Dataset, path string) (int, error) {
	mfw := newMemoryFileWriter()

	pw, err := pwriter.NewParquetWriter(mfw, new(parquetRow), 1)
	if err != nil {
		return 0, fmt.Errorf("failed to create parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, rec := range dataset {
		row := parquetRow{
			State:      rec.State,
			District:   rec.District,
			Market:     rec.Market,
			Commodity:  rec.Commodity,
			Variety:    rec.Variety,
			MinPrice:   rec.MinPrice,
			MaxPrice:   rec.MaxPrice,
			ModalPrice: rec.ModalPrice,
			PriceDate:  formatDate(rec),
		}
		if err := pw.Write(row); err != nil {
			return 0, fmt.Errorf("failed to write parquet row: %w", err)
		}
	}

	if err := pw.WriteStop(); err != nil {
		return 0, fmt.Errorf("failed to finalize parquet file: %w", err)
	}

	data := mfw.buffer.Bytes()
	if err := os.WriteFile(path, data, 0644); err != nil {
		return 0, fmt.Errorf("failed to write output file: %w", err)
	}
	logger.IncrementExport(len(dataset), int64(len(data)))

	e.log.WithComponent("parquet_writer").WithFields(logger.Fields{
		"path":  path,
		"rows":  len(dataset),
		"bytes": len(data),
	}).Info("dataset exported")

	return len(dataset), nil
}
