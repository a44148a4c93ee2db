package export

import (
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"lcms-backend/internal/samples"
)

const sheetName = "Samples"

// WriteXLSX renders the samples as an Excel workbook with one sheet.
func WriteXLSX(w io.Writer, list []samples.Sample) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}

	for col, name := range columns {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, name); err != nil {
			return err
		}
	}

	for i, s := range list {
		cells := row(s)
		for col, value := range cells {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			if err := setCell(f, cell, col, value); err != nil {
				return err
			}
		}
	}

	_, err := f.WriteTo(w)
	return err
}

// setCell writes numeric columns as numbers so spreadsheet formulas work on
// the exported masses and purities.
func setCell(f *excelize.File, cell string, col int, value string) error {
	if value == "" {
		return nil
	}
	switch columns[col] {
	case "monoisotopic_mass", "mh_mass", "mna_mass", "mhminus_mass",
		"detected_mass", "retention_time", "purity":
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			return f.SetCellValue(sheetName, cell, v)
		}
	case "product_detected":
		if v, err := strconv.ParseBool(value); err == nil {
			return f.SetCellValue(sheetName, cell, v)
		}
	}
	return f.SetCellValue(sheetName, cell, value)
}
