package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/a3tai/mcp-grade-extractor/internal/grades"
)

// SheetName is the name of the worksheet holding the grades.
const SheetName = "Bảng điểm"

// scoreNumFmt is the built-in "0.00" number format.
const scoreNumFmt = 2

// WriteXLSX renders table as an Excel workbook with a bold, frozen header
// row. Scores are stored as numbers; student IDs stay text so leading
// zeros survive.
func WriteXLSX(w io.Writer, table *grades.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center", WrapText: true},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	scoreStyle, err := f.NewStyle(&excelize.Style{NumFmt: scoreNumFmt})
	if err != nil {
		return fmt.Errorf("failed to create score style: %w", err)
	}

	for col, c := range table.Columns {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(SheetName, cell, c.Header()); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		if err := f.SetCellStyle(SheetName, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("failed to style header: %w", err)
		}
	}

	for i, rec := range table.Rows {
		row := i + 2
		for col, c := range table.Columns {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return err
			}
			switch v := c.Value(rec).(type) {
			case nil:
				continue
			case grades.Score:
				if err := f.SetCellFloat(SheetName, cell, v.Float64(), 2, 64); err != nil {
					return fmt.Errorf("failed to write %s of row %d: %w", c.Key(), row, err)
				}
				if err := f.SetCellStyle(SheetName, cell, cell, scoreStyle); err != nil {
					return fmt.Errorf("failed to style %s of row %d: %w", c.Key(), row, err)
				}
			case string:
				if err := f.SetCellStr(SheetName, cell, v); err != nil {
					return fmt.Errorf("failed to write %s of row %d: %w", c.Key(), row, err)
				}
			default:
				if err := f.SetCellValue(SheetName, cell, v); err != nil {
					return fmt.Errorf("failed to write %s of row %d: %w", c.Key(), row, err)
				}
			}
		}
	}

	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze header row: %w", err)
	}
	if err := setColumnWidths(f, table); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func setColumnWidths(f *excelize.File, table *grades.Table) error {
	for col, c := range table.Columns {
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return err
		}
		width := 12.0
		switch c {
		case grades.ColumnSequence:
			width = 6
		case grades.ColumnFirstMiddleName:
			width = 22
		case grades.ColumnStudentID, grades.ColumnClassification:
			width = 16
		case grades.ColumnNote:
			width = 24
		}
		if err := f.SetColWidth(SheetName, name, name, width); err != nil {
			return fmt.Errorf("failed to size column %s: %w", name, err)
		}
	}
	return nil
}
