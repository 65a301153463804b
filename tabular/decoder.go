package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/encoding"
)

// Options controls how raw feed text is decoded.
type Options struct {
	// Delimiter forces the column separator. Zero means infer it from the header line.
	Delimiter rune
	// TrimHeaders trims surrounding whitespace from header names. When false the
	// header names are kept literally.
	TrimHeaders bool
	// Charset of the raw bytes. Empty means UTF-8.
	Charset string
	// Sheet selects the worksheet for Excel input. Empty means the first sheet.
	Sheet string
}

// Warning describes a non-fatal decoding problem.
type Warning struct {
	Row     int
	Message string
}

func (w Warning) String() string {
	if w.Row <= 0 {
		return w.Message
	}
	return fmt.Sprintf("row %d: %s", w.Row, w.Message)
}

// Result is the outcome of decoding one feed.
type Result struct {
	Header    []string
	Delimiter rune
	Records   []Record
	Warnings  []Warning
}

// Decoder turns delimited text into records. It holds no state between calls.
type Decoder struct {
	options  Options
	encoding encoding.Encoding
	logger   *zap.Logger
}

func NewDecoder(options Options, logger *zap.Logger) (*Decoder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := validateDelimiter(options.Delimiter); err != nil {
		return nil, err
	}
	enc, err := encodingForCharset(options.Charset)
	if err != nil {
		return nil, err
	}
	return &Decoder{options: options, encoding: enc, logger: logger}, nil
}

// Decode decodes text with default options: inferred delimiter, literal
// header names, UTF-8. It never fails; input without a header row yields an
// empty sequence.
func Decode(text string) []Record {
	decoder := &Decoder{logger: zap.NewNop()}
	return decoder.decodeText(text).Records
}

// Decode converts raw bytes to UTF-8 and decodes them. Malformed rows are
// reported as warnings and decoding continues with the remaining rows.
func (d *Decoder) Decode(raw []byte) Result {
	text, err := toUTF8(raw, d.encoding)
	if err != nil {
		result := Result{Records: []Record{}}
		d.warn(&result, Warning{Message: err.Error()})
		return result
	}
	return d.decodeText(text)
}

// Read implements Reader.
func (d *Decoder) Read(data []byte) (Result, error) {
	return d.Decode(data), nil
}

// InferDelimiter picks ';' when the header line holds more semicolons than
// commas and ',' otherwise.
func InferDelimiter(headerLine string) rune {
	if strings.Count(headerLine, ";") > strings.Count(headerLine, ",") {
		return ';'
	}
	return ','
}

func (d *Decoder) decodeText(text string) Result {
	result := Result{Records: []Record{}}
	text = strings.TrimPrefix(text, "\uFEFF")

	headerLine, headerRow, ok := firstHeaderLine(text)
	if !ok {
		return result
	}

	delimiter := d.options.Delimiter
	if delimiter == 0 {
		delimiter = InferDelimiter(headerLine)
	}
	result.Delimiter = delimiter

	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	table := newTableBuilder(d.options.TrimHeaders, &result, d.warn)
	table.headerRow = headerRow
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				d.warn(&result, Warning{Row: parseErr.StartLine, Message: "skipped unparseable row: " + parseErr.Err.Error()})
				continue
			}
			d.warn(&result, Warning{Message: "stopped reading: " + err.Error()})
			break
		}

		line, _ := reader.FieldPos(0)
		table.addRow(line, row)
	}

	return result
}

func (d *Decoder) warn(result *Result, warning Warning) {
	result.Warnings = append(result.Warnings, warning)
	d.logger.Warn("decode warning", zap.Int("row", warning.Row), zap.String("reason", warning.Message))
}

// firstHeaderLine returns the first line holding anything besides
// whitespace, delimiters and quotes. Such lines become blank rows once split,
// so the header, and the delimiter inferred from it, comes from a later line.
func firstHeaderLine(text string) (string, int, bool) {
	number := 0
	for line := range strings.Lines(text) {
		number++
		if strings.TrimFunc(line, isSeparatorOrSpace) != "" {
			return line, number, true
		}
	}
	return "", 0, false
}

func isSeparatorOrSpace(r rune) bool {
	return r == ',' || r == ';' || r == '"' || unicode.IsSpace(r)
}

func validateDelimiter(delimiter rune) error {
	if delimiter == 0 {
		return nil
	}
	if delimiter == '\r' || delimiter == '\n' || delimiter == '"' || delimiter == utf8.RuneError || !utf8.ValidRune(delimiter) {
		return fmt.Errorf("invalid delimiter %q", delimiter)
	}
	return nil
}
