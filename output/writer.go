package output

import (
	"fmt"
	"path/filepath"
	"strings"

	"contratos/contract"
	"contratos/fields"
)

// Table is a rectangular export: display headers followed by rows of raw
// resolved values.
type Table struct {
	Sheet   string
	Headers []string
	Rows    [][]string
}

type Writer interface {
	Write(path string, table Table) error
}

func WriterForFormat(format string) (Writer, error) {
	switch normalizeFormat(format) {
	case "csv":
		return &CSVWriter{}, nil
	case "excel", "xlsx":
		return &ExcelWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// DetectFormat infers the output format from the file extension, defaulting to csv.
func DetectFormat(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	switch ext {
	case "xlsx", "xlsm", "xls":
		return "excel"
	default:
		return "csv"
	}
}

func ContractTable(contracts []contract.Contract) Table {
	columns := fields.ContractFields()
	table := Table{Sheet: "Contratos", Headers: headers(columns), Rows: make([][]string, 0, len(contracts))}
	for _, c := range contracts {
		row := make([]string, len(columns))
		for i, field := range columns {
			row[i] = c.Value(field)
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

func PaymentTable(payments []contract.Payment) Table {
	columns := fields.PaymentFields()
	table := Table{Sheet: "Pagamentos", Headers: headers(columns), Rows: make([][]string, 0, len(payments))}
	for _, p := range payments {
		row := make([]string, len(columns))
		for i, field := range columns {
			row[i] = p.Value(field)
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

func headers(columns []fields.Field) []string {
	out := make([]string, len(columns))
	for i, field := range columns {
		out[i] = fields.Label(field)
	}
	return out
}

func normalizeFormat(value string) string {
	return strings.TrimSpace(strings.ToLower(value))
}
