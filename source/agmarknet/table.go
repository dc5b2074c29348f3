package agmarknet

import (
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"mandiflow/models"
)

// extractLargestTable parses the page HTML and converts the table with the
// most rows into header-keyed raw records. Report pages carry several layout
// tables; the data table is reliably the largest one.
func extractLargestTable(html string) ([]models.RawRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, errors.New("failed to parse page HTML")
	}

	var best *goquery.Selection
	bestRows := 0
	doc.Find("table").Each(func(_ int, tbl *goquery.Selection) {
		if rows := tbl.Find("tr").Length(); rows > bestRows {
			best = tbl
			bestRows = rows
		}
	})
	if best == nil || bestRows < 2 {
		return nil, errors.New("no data table found in page content")
	}

	rows := best.Find("tr")
	headers := rowCells(rows.First())
	if len(headers) == 0 {
		return nil, errors.New("data table has no header row")
	}

	var records []models.RawRecord
	rows.Slice(1, rows.Length()).Each(func(_ int, row *goquery.Selection) {
		cells := rowCells(row)
		// Grouping and pager rows use colspans; their cell counts never
		// match the header.
		if len(cells) != len(headers) {
			return
		}
		rec := make(models.RawRecord, len(headers))
		for i, h := range headers {
			rec[h] = cells[i]
		}
		records = append(records, rec)
	})

	return records, nil
}

func rowCells(row *goquery.Selection) []string {
	var cells []string
	row.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
		cells = append(cells, strings.TrimSpace(cell.Text()))
	})
	return cells
}
