package tabular

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Reader decodes one complete feed body.
type Reader interface {
	Read(data []byte) (Result, error)
}

func SupportedFormats() []string {
	return []string{"csv", "tsv", "xlsx"}
}

func ReaderForFormat(format string, options Options, logger *zap.Logger) (Reader, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "csv":
		return NewDecoder(options, logger)
	case "tsv":
		options.Delimiter = '\t'
		return NewDecoder(options, logger)
	case "excel", "xlsx", "xlsm":
		return NewExcelReader(options, logger), nil
	default:
		return nil, fmt.Errorf("unsupported feed format: %s", format)
	}
}
