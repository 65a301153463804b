package tabular

import (
	"fmt"
	"strings"
)

// tableBuilder applies the header and row rules shared by every reader:
// the first non-blank row is the header, blank rows are dropped, short rows
// are padded and long rows are truncated.
type tableBuilder struct {
	trimHeaders bool
	// padSilently suppresses short-row warnings for sources that drop
	// trailing empty cells on their own.
	padSilently bool
	// headerRow, when set, is the first row that may become the header.
	// Earlier rows hold only separators and are dropped.
	headerRow int
	result    *Result
	warn      func(*Result, Warning)
	header    []string
}

func newTableBuilder(trimHeaders bool, result *Result, warn func(*Result, Warning)) *tableBuilder {
	return &tableBuilder{trimHeaders: trimHeaders, result: result, warn: warn}
}

func (b *tableBuilder) addRow(rowNumber int, row []string) {
	if isBlankRow(row) {
		return
	}
	if b.header == nil && rowNumber < b.headerRow {
		return
	}
	if b.header == nil {
		b.header = b.buildHeader(rowNumber, row)
		b.result.Header = append([]string(nil), b.header...)
		return
	}

	switch {
	case len(row) < len(b.header) && !b.padSilently:
		b.warn(b.result, Warning{
			Row:     rowNumber,
			Message: fmt.Sprintf("row has %d fields, header has %d; missing fields left empty", len(row), len(b.header)),
		})
	case len(row) > len(b.header) && !isBlankRow(row[len(b.header):]):
		b.warn(b.result, Warning{
			Row:     rowNumber,
			Message: fmt.Sprintf("row has %d fields, header has %d; extra fields dropped", len(row), len(b.header)),
		})
	}

	b.result.Records = append(b.result.Records, NewRecord(rowNumber, b.header, row))
}

// buildHeader renames repeated column names to NAME_1, NAME_2, ... so that no
// value is silently overwritten by a later column with the same name.
func (b *tableBuilder) buildHeader(rowNumber int, row []string) []string {
	header := make([]string, len(row))
	seen := make(map[string]struct{}, len(row))
	for i, name := range row {
		if b.trimHeaders {
			name = strings.TrimSpace(name)
		}
		unique := name
		for n := 1; ; n++ {
			if _, exists := seen[unique]; !exists {
				break
			}
			unique = fmt.Sprintf("%s_%d", name, n)
		}
		if unique != name {
			b.warn(b.result, Warning{
				Row:     rowNumber,
				Message: fmt.Sprintf("duplicate column %q renamed to %q", name, unique),
			})
		}
		seen[unique] = struct{}{}
		header[i] = unique
	}
	return header
}

func isBlankRow(row []string) bool {
	for _, value := range row {
		if strings.TrimSpace(value) != "" {
			return false
		}
	}
	return true
}
