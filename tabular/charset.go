package tabular

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// SupportedCharsets lists the accepted values for Options.Charset.
func SupportedCharsets() []string {
	return []string{"utf-8", "iso-8859-1", "windows-1252"}
}

func encodingForCharset(charset string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(charset)) {
	case "", "utf-8", "utf8":
		return unicode.UTF8, nil
	case "iso-8859-1", "latin1", "latin-1":
		return charmap.ISO8859_1, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	default:
		return nil, fmt.Errorf("unsupported charset: %s", charset)
	}
}

// toUTF8 converts raw bytes to UTF-8. A UTF-8 or UTF-16 byte order mark wins
// over the configured charset and is stripped.
func toUTF8(raw []byte, enc encoding.Encoding) (string, error) {
	decoder := unicode.BOMOverride(enc.NewDecoder())
	out, err := io.ReadAll(transform.NewReader(bytes.NewReader(raw), decoder))
	if err != nil {
		return "", fmt.Errorf("decode charset: %w", err)
	}
	return string(out), nil
}
