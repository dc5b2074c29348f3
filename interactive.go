package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"mandiflow/models"
)

// promptRun walks the user through the filter set and output name, starting
// from whatever the flags already provided, and shows a summary table before
// asking to proceed.
func promptRun(filter models.Filter, output string) (models.Filter, string, error) {
	in := bufio.NewScanner(os.Stdin)

	fmt.Println("=== Mandi Price Fetcher — interactive mode ===")
	fmt.Println("Press Enter to leave a filter empty.")

	filter.Commodity = promptString(in, "Commodity (e.g. Wheat)", filter.Commodity)
	filter.State = promptString(in, "State (e.g. Punjab)", filter.State)
	filter.District = promptString(in, "District (e.g. Agra)", filter.District)

	if promptYesNo(in, "Fetch data for TODAY only?", true) {
		today := time.Now()
		filter.FromDate = &today
		filter.ToDate = &today
	} else {
		filter.FromDate = promptDate(in, "From date (DD/MM/YYYY)")
		filter.ToDate = promptDate(in, "To date (DD/MM/YYYY)")
	}
	if err := filter.Validate(); err != nil {
		return filter, output, err
	}

	output = promptString(in, "Output file", output)

	printFilterSummary(filter, output)
	if !promptYesNo(in, "Proceed?", true) {
		return filter, output, errors.New("cancelled")
	}
	return filter, output, nil
}

func promptString(in *bufio.Scanner, label, def string) string {
	if def != "" {
		fmt.Printf("%s [%s]: ", label, def)
	} else {
		fmt.Printf("%s: ", label)
	}
	if !in.Scan() {
		return def
	}
	if v := strings.TrimSpace(in.Text()); v != "" {
		return v
	}
	return def
}

func promptYesNo(in *bufio.Scanner, label string, def bool) bool {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	fmt.Printf("%s (%s): ", label, hint)
	if !in.Scan() {
		return def
	}
	switch strings.ToLower(strings.TrimSpace(in.Text())) {
	case "y", "yes":
		return true
	case "n", "no":
		return false
	default:
		return def
	}
}

func promptDate(in *bufio.Scanner, label string) *time.Time {
	for {
		fmt.Printf("%s: ", label)
		if !in.Scan() {
			return nil
		}
		v := strings.TrimSpace(in.Text())
		if v == "" {
			return nil
		}
		t, err := time.Parse(models.DateLayout, v)
		if err == nil {
			return &t
		}
		fmt.Println("Invalid date format, please use DD/MM/YYYY.")
	}
}

func printFilterSummary(filter models.Filter, output string) {
	orAll := func(v string) string {
		if v == "" {
			return "All"
		}
		return v
	}
	orAny := func(v *time.Time) string {
		if v == nil {
			return "Any"
		}
		return v.Format(models.DateLayout)
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Filter", "Value"})
	t.AppendRows([]table.Row{
		{"Commodity", orAll(filter.Commodity)},
		{"State", orAll(filter.State)},
		{"District", orAll(filter.District)},
		{"From", orAny(filter.FromDate)},
		{"To", orAny(filter.ToDate)},
		{"Output", output},
	})
	t.Render()
}

func printRunSummary(report *models.FetchReport, rows int, output string) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Result", "Value"})
	t.AppendRows([]table.Row{
		{"Source used", string(report.SourceUsed)},
		{"Partitions fetched", report.Partitions},
		{"Partitions failed", len(report.FailedPartitions)},
		{"Raw records", report.RawRecords},
		{"Records dropped", report.DroppedRecords},
		{"Rows exported", rows},
		{"Output file", output},
	})
	t.Render()
}
