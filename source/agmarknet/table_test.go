package agmarknet

import (
	"testing"

	"mandiflow/models"
)

const reportPage = `
<html><body>
<table id="nav"><tr><td>Home</td><td>Reports</td></tr></table>
<table id="data">
  <tr>
    <th>State Name</th><th>District Name</th><th>Market Name</th>
    <th>Commodity</th><th>Modal Price (Rs./Quintal)</th><th>Reported Date</th>
  </tr>
  <tr><td colspan="6">Punjab</td></tr>
  <tr>
    <td>Punjab</td><td>Ludhiana</td><td>Khanna</td>
    <td>Wheat</td><td>1,300</td><td>05 Jun 2024</td>
  </tr>
  <tr>
    <td> Maharashtra </td><td>Nashik</td><td>Lasalgaon</td>
    <td>Onion</td><td>1,800</td><td>05 Jun 2024</td>
  </tr>
  <tr><td colspan="3">1</td><td colspan="3">2</td></tr>
</table>
</body></html>`

func TestExtractLargestTable(t *testing.T) {
	records, err := extractLargestTable(reportPage)
	if err != nil {
		t.Fatalf("extractLargestTable failed: %v", err)
	}
	// The grouping row and the pager row have colspans and must be skipped.
	if len(records) != 2 {
		t.Fatalf("expected 2 data rows, got %d", len(records))
	}
	if records[0]["State Name"] != "Punjab" || records[0]["Modal Price (Rs./Quintal)"] != "1,300" {
		t.Errorf("unexpected first record: %v", records[0])
	}
	if records[1]["State Name"] != "Maharashtra" {
		t.Errorf("cell text should be trimmed: %q", records[1]["State Name"])
	}
}

func TestExtractLargestTableNoTable(t *testing.T) {
	if _, err := extractLargestTable("<html><body><p>maintenance</p></body></html>"); err == nil {
		t.Fatal("expected an error when no table is present")
	}
}

func TestExtractLargestTableHeaderOnly(t *testing.T) {
	if _, err := extractLargestTable("<table><tr><th>State</th></tr></table>"); err == nil {
		t.Fatal("expected an error for a header-only table")
	}
}

func TestFilterRecords(t *testing.T) {
	records := []models.RawRecord{
		{"State Name": "Punjab", "District Name": "Ludhiana", "Commodity": "Wheat"},
		{"State Name": "Punjab", "District Name": "Amritsar", "Commodity": "Wheat"},
		{"State Name": "Maharashtra", "District Name": "Nashik", "Commodity": "Onion"},
	}

	got := filterRecords(records, models.Filter{State: "punjab"})
	if len(got) != 2 {
		t.Errorf("state match should be case insensitive, got %d records", len(got))
	}

	got = filterRecords(records, models.Filter{Commodity: "Onion", District: "Nashik"})
	if len(got) != 1 || got[0]["State Name"] != "Maharashtra" {
		t.Errorf("combined filter mismatch: %v", got)
	}

	got = filterRecords(records, models.Filter{})
	if len(got) != 3 {
		t.Errorf("empty filter should keep everything, got %d", len(got))
	}
}

func TestFilterRecordsMissingColumn(t *testing.T) {
	records := []models.RawRecord{
		{"Commodity": "Wheat"},
	}
	if got := filterRecords(records, models.Filter{State: "Punjab"}); len(got) != 0 {
		t.Errorf("rows without the filtered column should be dropped, got %d", len(got))
	}
}
