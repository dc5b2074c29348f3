package logger

import (
	"context"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aws/aws-sdk-go-v2/aws"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

var (
	warnCount        int64
	errorCount       int64
	partitionsDone   int64
	partitionsFailed int64
	recordsFetched   int64
	recordsDropped   int64
	rowsExported     int64
	bytesWritten     int64
)

func recordWarn()  { atomic.AddInt64(&warnCount, 1) }
func recordError() { atomic.AddInt64(&errorCount, 1) }

// IncrementPartition records one completed partition sub-query and the number
// of raw records it contributed.
func IncrementPartition(records int) {
	atomic.AddInt64(&partitionsDone, 1)
	atomic.AddInt64(&recordsFetched, int64(records))
}

// IncrementPartitionFailure records one failed partition sub-query.
func IncrementPartitionFailure() {
	atomic.AddInt64(&partitionsFailed, 1)
}

// IncrementDropped records one raw record discarded during normalization.
func IncrementDropped() {
	atomic.AddInt64(&recordsDropped, 1)
}

// IncrementExport records the final export size.
func IncrementExport(rows int, size int64) {
	atomic.AddInt64(&rowsExported, int64(rows))
	atomic.AddInt64(&bytesWritten, size)
}

// LogRunReport emits the end-of-run summary and, when CloudWatch is
// configured, publishes the same counters as metrics.
func LogRunReport(ctx context.Context, log *Log, runID string, elapsed time.Duration) {
	memStats, _ := mem.VirtualMemory()

	fields := Fields{
		"run_id":            runID,
		"elapsed":           elapsed.Round(time.Millisecond).String(),
		"partitions":        atomic.LoadInt64(&partitionsDone),
		"partitions_failed": atomic.LoadInt64(&partitionsFailed),
		"records_fetched":   atomic.LoadInt64(&recordsFetched),
		"records_dropped":   atomic.LoadInt64(&recordsDropped),
		"rows_exported":     atomic.LoadInt64(&rowsExported),
		"bytes_written":     atomic.LoadInt64(&bytesWritten),
		"warns":             atomic.LoadInt64(&warnCount),
		"errors":            atomic.LoadInt64(&errorCount),
		"goroutines":        runtime.NumGoroutine(),
	}
	if memStats != nil {
		fields["memory_mb"] = int64(memStats.Used) / 1024 / 1024
	}

	log.WithComponent("report").WithFields(fields).Info("run report")

	runDim := []cwtypes.Dimension{{Name: aws.String("RunID"), Value: aws.String(runID)}}
	data := []cwtypes.MetricDatum{
		{MetricName: aws.String("Partitions"), Unit: cwtypes.StandardUnitCount, Dimensions: runDim, Value: aws.Float64(float64(atomic.LoadInt64(&partitionsDone)))},
		{MetricName: aws.String("PartitionsFailed"), Unit: cwtypes.StandardUnitCount, Dimensions: runDim, Value: aws.Float64(float64(atomic.LoadInt64(&partitionsFailed)))},
		{MetricName: aws.String("RecordsFetched"), Unit: cwtypes.StandardUnitCount, Dimensions: runDim, Value: aws.Float64(float64(atomic.LoadInt64(&recordsFetched)))},
		{MetricName: aws.String("RecordsDropped"), Unit: cwtypes.StandardUnitCount, Dimensions: runDim, Value: aws.Float64(float64(atomic.LoadInt64(&recordsDropped)))},
		{MetricName: aws.String("RowsExported"), Unit: cwtypes.StandardUnitCount, Dimensions: runDim, Value: aws.Float64(float64(atomic.LoadInt64(&rowsExported)))},
		{MetricName: aws.String("BytesWritten"), Unit: cwtypes.StandardUnitBytes, Dimensions: runDim, Value: aws.Float64(float64(atomic.LoadInt64(&bytesWritten)))},
	}
	publishMetrics(ctx, data)
}
