package ingest

import (
	"fmt"
	"io"
	"os"

	"github.com/xuri/excelize/v2"
)

// xlsxRows reads the first sheet of a workbook row by row.
type xlsxRows struct {
	file *excelize.File
	rows *excelize.Rows
}

func openXLSXRows(path string) (*xlsxRows, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, openError(path, err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx file %s: %w", path, err)
	}

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		f.Close()
		return nil, fmt.Errorf("xlsx file %s has no sheets", path)
	}

	rows, err := f.Rows(sheets[0])
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read rows from sheet %s: %w", sheets[0], err)
	}

	return &xlsxRows{file: f, rows: rows}, nil
}

func (x *xlsxRows) Read() ([]string, error) {
	if !x.rows.Next() {
		if err := x.rows.Error(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	return x.rows.Columns()
}

func (x *xlsxRows) Close() error {
	x.rows.Close()
	return x.file.Close()
}
