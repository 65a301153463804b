package contract

import (
	"strconv"
	"strings"
)

// ParseAmount reads a monetary value written the way the published sheets
// do ("R$ 1.234,56", "1234,56", "1.000") and returns it in cents. A single
// dot followed by exactly three digits is a thousands separator.
func ParseAmount(value string) (int64, bool) {
	text := strings.TrimSpace(value)
	text = strings.TrimPrefix(text, "R$")
	text = strings.Map(func(r rune) rune {
		if r == ' ' || r == '\u00a0' {
			return -1
		}
		return r
	}, text)
	if text == "" {
		return 0, false
	}

	negative := false
	if strings.HasPrefix(text, "-") {
		negative = true
		text = text[1:]
	}

	var whole, frac string
	switch {
	case strings.Contains(text, ","):
		whole, frac, _ = strings.Cut(text, ",")
		whole = strings.ReplaceAll(whole, ".", "")
	case strings.Count(text, ".") == 1 && len(text)-strings.Index(text, ".")-1 != 3:
		whole, frac, _ = strings.Cut(text, ".")
	default:
		whole = strings.ReplaceAll(text, ".", "")
	}

	if whole == "" {
		whole = "0"
	}
	if len(frac) > 2 || !allDigits(whole) || !allDigits(frac) {
		return 0, false
	}
	for len(frac) < 2 {
		frac += "0"
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, false
	}
	cents, _ := strconv.ParseInt(frac, 10, 64)
	total := units*100 + cents
	if negative {
		total = -total
	}
	return total, true
}

// FormatAmount renders cents as "1.234,56".
func FormatAmount(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	whole := strconv.FormatInt(cents/100, 10)

	var grouped strings.Builder
	for i, digit := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(digit)
	}
	return sign + grouped.String() + "," + leftPad(strconv.FormatInt(cents%100, 10))
}

// Amount parses the paid amount in cents.
func (p Payment) Amount() (int64, bool) {
	return ParseAmount(p.PaidAmount)
}

func allDigits(value string) bool {
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func leftPad(value string) string {
	if len(value) == 1 {
		return "0" + value
	}
	return value
}
