package datagen

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Praneeth9346/CreditRisk/internal/model"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Sheet1"

// Header returns the column names of an exported dataset.
func Header(ds *model.Dataset) []string {
	return append(append([]string(nil), ds.Schema...), model.LabelColumn)
}

// WriteCSV writes ds as a flat table with a header row.
func WriteCSV(w io.Writer, ds *model.Dataset) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header(ds)); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	row := make([]string, len(ds.Schema)+1)
	for i := 0; i < ds.Len(); i++ {
		for j, v := range ds.X.RawRowView(i) {
			row[j] = strconv.FormatFloat(v, 'f', -1, 64)
		}
		row[len(ds.Schema)] = strconv.Itoa(ds.Y[i])
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes ds to a spreadsheet at path.
func WriteXLSX(path string, ds *model.Dataset) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	for i, h := range Header(ds) {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return err
		}
	}

	for r := 0; r < ds.Len(); r++ {
		values := make([]any, 0, len(ds.Schema)+1)
		for _, v := range ds.X.RawRowView(r) {
			values = append(values, v)
		}
		values = append(values, ds.Y[r])

		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", r, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// Export writes ds to path, choosing the format from the file extension.
func Export(path string, ds *model.Dataset) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return WriteXLSX(path, ds)
	case ".csv", "":
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", path, err)
		}
		if err := WriteCSV(f, ds); err != nil {
			_ = f.Close()
			return err
		}
		return f.Close()
	default:
		return fmt.Errorf("unsupported export format %q", filepath.Ext(path))
	}
}
