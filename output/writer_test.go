package output

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"

	"contratos/contract"
	"contratos/tabular"
)

func samplePayments() []contract.Payment {
	return []contract.Payment{
		{RowNumber: 2, Creditor: "ACME LTDA", ContractNumber: "2024-001", PaymentDate: "05/03/2025", PaidAmount: "1.000,00"},
		{RowNumber: 3, Creditor: "BETA SA", ContractNumber: "2024-002", PaymentDate: "28/03/2025", PaidAmount: "R$ 250,50"},
		{RowNumber: 4, Creditor: "ACME LTDA", ContractNumber: "2024-001", PaymentDate: "2025-04-02", PaidAmount: ""},
		{RowNumber: 5, Creditor: "GAMA", PaymentDate: "sem data", PaidAmount: "10,00"},
	}
}

func TestCSVWriter_WritesDisplayHeadersAndRawValues(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "contratos.csv")
	table := ContractTable([]contract.Contract{
		{Creditor: "ACME, LTDA", ContractNumber: "2024-001"},
		{ContractNumber: "2024-002"},
	})
	if err := (&CSVWriter{}).Write(path, table); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	records := tabular.Decode(string(raw))
	if len(records) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(records))
	}
	if got := records[0].Get("Credor"); got != "ACME, LTDA" {
		t.Fatalf("Credor = %q", got)
	}
	if got, ok := records[1].Lookup("Credor"); !ok || got != "" {
		t.Fatalf("expected empty creditor, got %q (present=%v)", got, ok)
	}
	if diff := cmp.Diff(table.Headers, records[0].Columns()); diff != "" {
		t.Fatalf("header mismatch (-want +got):\n%s", diff)
	}
}

func TestExcelWriter_WritesNamedSheet(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "pagamentos.xlsx")
	table := PaymentTable(samplePayments())
	if err := (&ExcelWriter{}).Write(path, table); err != nil {
		t.Fatalf("write excel: %v", err)
	}

	file, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open excel: %v", err)
	}
	defer file.Close()

	if got := file.GetSheetName(0); got != "Pagamentos" {
		t.Fatalf("sheet = %q, want Pagamentos", got)
	}
	rows, err := file.GetRows("Pagamentos")
	if err != nil {
		t.Fatalf("get rows: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("expected header + 4 rows, got %d", len(rows))
	}
	if rows[0][0] != "Credor" || rows[1][0] != "ACME LTDA" {
		t.Fatalf("unexpected first column: %q / %q", rows[0][0], rows[1][0])
	}
}

func TestWriterForFormat(t *testing.T) {
	t.Parallel()

	for _, format := range []string{"csv", " CSV ", "excel", "xlsx"} {
		if _, err := WriterForFormat(format); err != nil {
			t.Fatalf("WriterForFormat(%q): %v", format, err)
		}
	}
	if _, err := WriterForFormat("pdf"); err == nil {
		t.Fatalf("expected error for pdf")
	}
}

func TestDetectFormat(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"out.csv":   "csv",
		"out.XLSX":  "excel",
		"out.xlsm":  "excel",
		"out":       "csv",
		"out.table": "csv",
	}
	for path, want := range tests {
		if got := DetectFormat(path); got != want {
			t.Fatalf("DetectFormat(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestBuildMonthlySummaries(t *testing.T) {
	t.Parallel()

	got := BuildMonthlySummaries(samplePayments())
	want := []MonthlySummary{
		{Month: "2025-03", PaymentCount: 2, Creditors: 2, TotalCents: 125050},
		{Month: "2025-04", PaymentCount: 1, Creditors: 1, Unpriced: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("summaries mismatch (-want +got):\n%s", diff)
	}

	table := SummaryTable(got)
	if table.Rows[0][3] != "1.250,50" {
		t.Fatalf("total = %q, want 1.250,50", table.Rows[0][3])
	}
	if empty := BuildMonthlySummaries(nil); empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty non-nil summaries, got %#v", empty)
	}
}
