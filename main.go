package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"mandiflow/config"
	"mandiflow/fetcher"
	"mandiflow/logger"
	"mandiflow/models"
	"mandiflow/processor"
	"mandiflow/source"
	"mandiflow/source/agmarknet"
	"mandiflow/source/datagov"
	"mandiflow/writer"
)

var version = "0.3.0"

var (
	commodity    string
	state        string
	district     string
	fromDateStr  string
	toDateStr    string
	outputFile   string
	outputFormat string
	configPath   string
	interactive  bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "mandiflow",
		Short:   "Fetch daily mandi price records from data.gov.in to CSV",
		Version: version,
		Long: `mandiflow retrieves daily agricultural commodity price records from the
data.gov.in open-data API and writes them to a CSV (or Parquet) file. When the
API path is unavailable it falls back to scraping the public Agmarknet report
with a headless browser. Unfiltered runs are partitioned by state (and by
district where needed) to stay under the upstream result cap.`,
		Example: `  # Everything reported today, full scan partitioned by state
  mandiflow

  # Wheat prices in Punjab for one week
  mandiflow -c Wheat -s Punjab --from-date 01/06/2024 --to-date 07/06/2024

  # Parquet output
  mandiflow -c Potato -o prices.parquet

  # Interactive mode
  mandiflow --interactive`,
		RunE:         run,
		SilenceUsage: true,
	}

	rootCmd.Flags().StringVarP(&commodity, "commodity", "c", "", "Filter by commodity (e.g. 'Wheat', 'Potato')")
	rootCmd.Flags().StringVarP(&state, "state", "s", "", "Filter by state (e.g. 'Punjab')")
	rootCmd.Flags().StringVarP(&district, "district", "d", "", "Filter by district (e.g. 'Agra')")
	rootCmd.Flags().StringVar(&fromDateStr, "from-date", "", "Start date (DD/MM/YYYY)")
	rootCmd.Flags().StringVar(&toDateStr, "to-date", "", "End date (DD/MM/YYYY)")
	rootCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file path (default from config)")
	rootCmd.Flags().StringVarP(&outputFormat, "format", "f", "", "Output format: csv or parquet (inferred from -o extension when unset)")
	rootCmd.Flags().StringVar(&configPath, "config", config.DefaultPath, "Path to configuration file")
	rootCmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Prompt for filters instead of reading flags")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	log := logger.GetLogger()

	// Load environment variables from .env if present
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("Error loading .env file")
	}

	cfg, err := config.LoadConfig(config.ResolvePath(configPath))
	if err != nil {
		return err
	}

	if err := log.Configure(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output, cfg.Logging.MaxAge); err != nil {
		return err
	}

	if cfg.Logging.CloudWatch.Enabled {
		logger.InitCloudWatch(cfg.Logging.CloudWatch.Region, cfg.Logging.CloudWatch.Namespace, cfg.Logging.CloudWatch.Dashboard)
	}

	log.WithFields(logger.Fields{
		"service": cfg.Mandiflow.Name,
		"version": cfg.Mandiflow.Version,
	}).Info("starting mandiflow")

	filter, err := buildFilter()
	if err != nil {
		return err
	}

	output := cfg.Export.Output
	if outputFile != "" {
		output = outputFile
	}

	if interactive {
		filter, output, err = promptRun(filter, output)
		if err != nil {
			return err
		}
	}

	format := resolveFormat(cfg.Export.Format, output)

	// An interrupt aborts the whole invocation; the exporter only runs on a
	// finalized dataset, so no partial file is ever written.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()

	var apiSrc source.Source
	if cfg.API.Key != "" {
		apiSrc = datagov.NewReader(cfg.API)
		defer apiSrc.Close()
	} else {
		log.WithComponent("main").Info("no API key configured, running in scrape-only mode")
	}

	scrapeSrc := agmarknet.NewReader(cfg.Scrape)
	defer scrapeSrc.Close()

	coordinator := fetcher.NewCoordinator(apiSrc, scrapeSrc)
	raws, report, err := coordinator.Fetch(ctx, filter)
	if err != nil {
		return err
	}

	dataset := processor.NewNormalizer().NormalizeAll(raws, report.SourceUsed, filter, report)

	exporter, err := writer.NewExporter(format)
	if err != nil {
		return err
	}
	rows, err := exporter.Export(dataset, output)
	if err != nil {
		return err
	}

	if cfg.Export.S3.Enabled {
		if err := writer.UploadToS3(ctx, cfg.Export.S3, output); err != nil {
			// The local export already succeeded; an upload failure is
			// not worth a non-zero exit.
			log.WithError(err).Warn("S3 upload failed")
		}
	}

	logger.LogRunReport(context.Background(), log, report.RunID, time.Since(start))

	if len(report.FailedPartitions) > 0 {
		names := make([]string, 0, len(report.FailedPartitions))
		for _, pe := range report.FailedPartitions {
			names = append(names, pe.Partition.String())
		}
		log.WithComponent("main").WithFields(logger.Fields{
			"failed": strings.Join(names, ", "),
		}).Warn("some partitions failed; the export is incomplete for those regions")
	}

	fmt.Printf("Exported %d records to %s (source: %s)\n", rows, output, report.SourceUsed)
	if interactive {
		printRunSummary(report, rows, output)
	}

	return nil
}

// buildFilter assembles the filter from CLI flags, parsing DD/MM/YYYY dates.
func buildFilter() (models.Filter, error) {
	filter := models.Filter{
		Commodity: strings.TrimSpace(commodity),
		State:     strings.TrimSpace(state),
		District:  strings.TrimSpace(district),
	}

	if fromDateStr != "" {
		t, err := time.Parse(models.DateLayout, fromDateStr)
		if err != nil {
			return filter, fmt.Errorf("invalid --from-date %q: use DD/MM/YYYY", fromDateStr)
		}
		filter.FromDate = &t
	}
	if toDateStr != "" {
		t, err := time.Parse(models.DateLayout, toDateStr)
		if err != nil {
			return filter, fmt.Errorf("invalid --to-date %q: use DD/MM/YYYY", toDateStr)
		}
		filter.ToDate = &t
	}

	if err := filter.Validate(); err != nil {
		return filter, err
	}
	return filter, nil
}

// resolveFormat applies the -f flag, then the output extension, then the
// configured default.
func resolveFormat(configured, output string) string {
	if outputFormat != "" {
		return outputFormat
	}
	switch strings.ToLower(filepath.Ext(output)) {
	case ".parquet":
		return "parquet"
	case ".csv":
		return "csv"
	}
	return configured
}
