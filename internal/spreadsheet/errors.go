package spreadsheet

import "fmt"

// ImportKind classifies why a workbook could not be imported.
type ImportKind int

const (
	// KindIO means the upload was not a readable workbook.
	KindIO ImportKind = iota
	// KindMissingSheet means the workbook has no "Competition Data" sheet.
	KindMissingSheet
	// KindNoRows means the data sheet has a header but no data rows.
	KindNoRows
	// KindNoValidRows means no data row carries a distributor name.
	KindNoValidRows
)

func (k ImportKind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindMissingSheet:
		return "missing_sheet"
	case KindNoRows:
		return "no_rows"
	case KindNoValidRows:
		return "no_valid_rows"
	default:
		return fmt.Sprintf("ImportKind(%d)", int(k))
	}
}

// ImportError is returned by ReadCompetitionData. Error returns the message
// shown to the user; the underlying cause, if any, is available through
// Unwrap and should only be logged.
type ImportError struct {
	Kind ImportKind
	Err  error
}

func (e *ImportError) Error() string {
	switch e.Kind {
	case KindMissingSheet:
		return fmt.Sprintf("Could not find %q sheet. Please use the downloaded template.", SheetData)
	case KindNoRows:
		return "No data found in the file."
	case KindNoValidRows:
		return "No valid distributor data found."
	default:
		return "Error reading file. Please make sure it is a valid Excel file."
	}
}

func (e *ImportError) Unwrap() error {
	return e.Err
}
