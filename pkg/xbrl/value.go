package xbrl

import (
	"strconv"
	"strings"
)

// RenderValue implements the value-rendering rules for one inline XBRL fact
// (`get_value_str`): comma-stripped, scaled, signed, decimals-formatted
// numeric rendering for nonFraction facts; boolean format-code and
// escaped-markup passthrough for nonNumeric facts.
func RenderValue(f InlineFactData) (string, error) {
	if f.IsNonFraction {
		return renderNonFraction(f)
	}
	return renderNonNumeric(f)
}

func renderNonFraction(f InlineFactData) (string, error) {
	text := strings.TrimSpace(f.RawText)
	if text == "" {
		return "", nil
	}

	stripped := strings.ReplaceAll(text, ",", "")
	num, err := strconv.ParseFloat(stripped, 64)
	if err != nil {
		return "", &AnalysisError{Op: "render nonFraction value", ElementID: f.Name, Err: err}
	}

	scale := 0
	if f.HasScale {
		scale = f.Scale
	}
	num *= pow10(scale)

	if f.Sign == "-" {
		num = -num
	}

	decimals, hasDecimals := parseDecimals(f.Decimals)
	if hasDecimals && decimals > 0 {
		return strconv.FormatFloat(num, 'f', decimals, 64), nil
	}
	return strconv.FormatFloat(num, 'f', 0, 64), nil
}

func renderNonNumeric(f InlineFactData) (string, error) {
	if f.Escape != "true" && isBooleanFormat(f.Format) {
		if f.Format == "ixt:booleantrue" {
			return "True", nil
		}
		return "False", nil
	}
	return f.RawText, nil
}

func isBooleanFormat(format string) bool {
	return format == "ixt:booleantrue" || format == "ixt:booleanfalse"
}

func parseDecimals(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

func pow10(n int) float64 {
	abs := n
	if abs < 0 {
		abs = -abs
	}
	result := 1.0
	for i := 0; i < abs; i++ {
		result *= 10
	}
	if n < 0 {
		return 1 / result
	}
	return result
}
