package tabular

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ExcelReader decodes .xlsx spreadsheet exports with the same header and row
// rules as the delimited text decoder.
type ExcelReader struct {
	sheet       string
	trimHeaders bool
	logger      *zap.Logger
}

func NewExcelReader(options Options, logger *zap.Logger) *ExcelReader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExcelReader{sheet: options.Sheet, trimHeaders: options.TrimHeaders, logger: logger}
}

func (r *ExcelReader) Read(data []byte) (Result, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return Result{}, fmt.Errorf("open excel feed: %w", err)
	}
	defer file.Close()

	sheetName := r.sheet
	if sheetName == "" {
		sheetName = file.GetSheetName(0)
	}
	if sheetName == "" {
		return Result{}, fmt.Errorf("excel feed has no sheets")
	}

	rows, err := file.GetRows(sheetName)
	if err != nil {
		return Result{}, fmt.Errorf("read rows from sheet %s: %w", sheetName, err)
	}

	result := Result{Records: []Record{}}
	table := newTableBuilder(r.trimHeaders, &result, r.warn)
	table.padSilently = true
	for i, row := range rows {
		table.addRow(i+1, row)
	}
	return result, nil
}

func (r *ExcelReader) warn(result *Result, warning Warning) {
	result.Warnings = append(result.Warnings, warning)
	r.logger.Warn("decode warning", zap.Int("row", warning.Row), zap.String("reason", warning.Message))
}
