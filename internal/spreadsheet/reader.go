package spreadsheet

import (
	"io"
	"strings"

	"github.com/ZanzyTHEbar/distributor-competition/internal/competition"
	"github.com/xuri/excelize/v2"
)

// ReadCompetitionData parses the "Competition Data" sheet of a workbook.
// The first non-empty row is the header; columns are matched by their
// trimmed header text, so column order does not matter. Fully blank rows are
// skipped, rows without a name are dropped, and tallies that are blank or
// not a non-negative integer become unset.
//
// Every failure is an *ImportError.
func ReadCompetitionData(r io.Reader) ([]competition.DistributorRecord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &ImportError{Kind: KindIO, Err: err}
	}
	defer f.Close()

	idx, err := f.GetSheetIndex(SheetData)
	if err != nil || idx < 0 {
		return nil, &ImportError{Kind: KindMissingSheet, Err: err}
	}

	rows, err := f.GetRows(SheetData)
	if err != nil {
		return nil, &ImportError{Kind: KindIO, Err: err}
	}

	var header map[string]int
	dataRows := 0
	var records []competition.DistributorRecord
	for _, row := range rows {
		if isBlank(row) {
			continue
		}
		if header == nil {
			header = indexHeader(row)
			continue
		}

		dataRows++
		name := strings.TrimSpace(cell(row, header, "Distributor Name"))
		if name == "" {
			continue
		}
		records = append(records, competition.DistributorRecord{
			Name:       name,
			Activities: competition.ParseCount(cell(row, header, "Activities")),
			AMHSold:    competition.ParseCount(cell(row, header, "AMH Sold")),
			URUSSold:   competition.ParseCount(cell(row, header, "URUS Sold")),
		})
	}

	if dataRows == 0 {
		return nil, &ImportError{Kind: KindNoRows}
	}
	if len(records) == 0 {
		return nil, &ImportError{Kind: KindNoValidRows, Err: competition.ErrEmptyImport}
	}
	return records, nil
}

func indexHeader(row []string) map[string]int {
	header := make(map[string]int, len(row))
	for i, h := range row {
		h = strings.TrimSpace(h)
		if _, seen := header[h]; !seen && h != "" {
			header[h] = i
		}
	}
	return header
}

func cell(row []string, header map[string]int, column string) string {
	i, ok := header[column]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
