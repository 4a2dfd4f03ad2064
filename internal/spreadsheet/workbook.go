// Package spreadsheet reads and writes the competition's Excel workbooks.
package spreadsheet

import (
	"fmt"
	"io"

	"github.com/ZanzyTHEbar/distributor-competition/internal/competition"
	"github.com/xuri/excelize/v2"
)

// Sheet names.
const (
	SheetResults      = "Competition Results"
	SheetSettings     = "Settings"
	SheetData         = "Competition Data"
	SheetInstructions = "Instructions"
)

// Download file names.
const (
	ResultsFileName  = "distributor_competition_results.xlsx"
	TemplateFileName = "competition_fillable_template.xlsx"
)

// ContentType is the MIME type of every workbook written here.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var (
	resultsHeader = []string{
		"Rank", "Distributor", "Activities", "AMH Sold", "URUS Sold",
		"Total Quantity", "Total Sales", "Points", "Reward",
	}
	resultsWidths = []float64{8, 20, 12, 12, 12, 15, 12, 10, 15}

	dataHeader = []string{"Distributor Name", "Activities", "AMH Sold", "URUS Sold"}
	dataWidths = []float64{25, 12, 12, 12}
)

var instructions = []string{
	"HOW TO USE THIS TEMPLATE",
	"",
	`1. Fill in the distributor names in the "Distributor Name" column`,
	`2. Enter the number of activities in the "Activities" column`,
	`3. Enter the number of AMH sold in the "AMH Sold" column`,
	`4. Enter the number of URUS sold in the "URUS Sold" column`,
	"5. Save the file",
	`6. Click "Upload Results" button in the competition tracker`,
	"7. Select this saved file",
	"",
	"IMPORTANT NOTES:",
	"- Do not change the column headers",
	"- Leave cells empty if no data (do not put 0)",
	"- Make sure all names are spelled correctly",
	"- Only numbers allowed in Activities, AMH Sold, and URUS Sold columns",
}

// blankTemplateRows is how many empty rows a template gets when there are no
// real distributors yet.
const blankTemplateRows = 3

// WriteResults writes the results workbook for a derived view. Rows appear in
// rank order. The workbook also carries the raw inputs on a "Competition Data"
// sheet so it can be imported again.
func WriteResults(w io.Writer, view competition.View) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetResults); err != nil {
		return fmt.Errorf("rename results sheet: %w", err)
	}

	rows := make([][]interface{}, 0, len(view.Standings))
	data := make([][]interface{}, 0, len(view.Standings))
	for _, r := range view.Standings {
		rows = append(rows, []interface{}{
			r.Rank,
			r.Name,
			countCell(r.Activities),
			countCell(r.AMHSold),
			countCell(r.URUSSold),
			r.TotalQuantity,
			r.TotalSales,
			r.Points,
			r.Reward.String(),
		})
		data = append(data, dataRow(r.DistributorRecord))
	}
	if err := writeTable(f, SheetResults, resultsHeader, rows, resultsWidths); err != nil {
		return err
	}

	cfg := view.Config
	settings := [][]interface{}{
		{"Point Settings", ""},
		{"Activity Multiplier", cfg.ActivityWeight},
		{"AMH Multiplier", cfg.PrimaryWeight},
		{"URUS Multiplier", cfg.SecondaryWeight},
		{"", ""},
		{"Reward Rules", ""},
	}
	for _, rule := range competition.RewardRules {
		settings = append(settings, []interface{}{
			rule.Reward.String(),
			fmt.Sprintf("At least %d points + Activity", rule.MinPoints),
		})
	}
	if _, err := f.NewSheet(SheetSettings); err != nil {
		return fmt.Errorf("create settings sheet: %w", err)
	}
	if err := writeRows(f, SheetSettings, 1, settings); err != nil {
		return err
	}
	if err := setWidths(f, SheetSettings, []float64{25, 15}); err != nil {
		return err
	}

	if _, err := f.NewSheet(SheetData); err != nil {
		return fmt.Errorf("create data sheet: %w", err)
	}
	if err := writeTable(f, SheetData, dataHeader, data, dataWidths); err != nil {
		return err
	}

	return write(f, w)
}

// WriteTemplate writes the fillable data-entry template. Each record's name
// is listed with blank tallies; a pristine store gets three blank rows
// instead.
func WriteTemplate(w io.Writer, records []competition.DistributorRecord, pristine bool) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetData); err != nil {
		return fmt.Errorf("rename data sheet: %w", err)
	}

	var rows [][]interface{}
	if pristine {
		for i := 0; i < blankTemplateRows; i++ {
			rows = append(rows, []interface{}{"", "", "", ""})
		}
	} else {
		for _, r := range records {
			rows = append(rows, []interface{}{r.Name, "", "", ""})
		}
	}
	if err := writeTable(f, SheetData, dataHeader, rows, dataWidths); err != nil {
		return err
	}

	if _, err := f.NewSheet(SheetInstructions); err != nil {
		return fmt.Errorf("create instructions sheet: %w", err)
	}
	lines := make([][]interface{}, len(instructions))
	for i, line := range instructions {
		lines[i] = []interface{}{line}
	}
	if err := writeRows(f, SheetInstructions, 1, lines); err != nil {
		return err
	}
	if err := setWidths(f, SheetInstructions, []float64{70}); err != nil {
		return err
	}

	return write(f, w)
}

func dataRow(r competition.DistributorRecord) []interface{} {
	return []interface{}{r.Name, countCell(r.Activities), countCell(r.AMHSold), countCell(r.URUSSold)}
}

// countCell renders a count as a number, or an empty cell when unset.
func countCell(c competition.Count) interface{} {
	if !c.Valid {
		return ""
	}
	return c.Value
}

func writeTable(f *excelize.File, sheet string, header []string, rows [][]interface{}, widths []float64) error {
	head := make([]interface{}, len(header))
	for i, h := range header {
		head[i] = h
	}
	if err := writeRows(f, sheet, 1, [][]interface{}{head}); err != nil {
		return err
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return fmt.Errorf("style %s header: %w", sheet, err)
	}

	if err := writeRows(f, sheet, 2, rows); err != nil {
		return err
	}
	return setWidths(f, sheet, widths)
}

func writeRows(f *excelize.File, sheet string, firstRow int, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, firstRow+i)
		if err != nil {
			return err
		}
		row := row
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, firstRow+i, err)
		}
	}
	return nil
}

func setWidths(f *excelize.File, sheet string, widths []float64) error {
	for i, width := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return fmt.Errorf("set %s column %s width: %w", sheet, col, err)
		}
	}
	return nil
}

func write(f *excelize.File, w io.Writer) error {
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
