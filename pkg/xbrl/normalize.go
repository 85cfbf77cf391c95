package xbrl

import "strings"

// normalizeSpace replaces several space-like runes with ASCII space and
// collapses consecutive whitespace into a single space. Inline XBRL
// non-numeric fact text and disclosure titles routinely carry NBSP
// (U+00A0) from copy-pasted source documents and the ideographic space
// U+3000, which Japanese word processors use to separate kanji/katakana
// runs the way ASCII text uses a plain space; both must fold to ASCII
// space before two labels can be compared or displayed consistently.
func normalizeSpace(s string) string {
	if s == "" {
		return ""
	}

	replacer := strings.NewReplacer(
		"\u00A0", " ", // NBSP
		"\u3000", " ", // ideographic space (U+3000, Japanese full-width)
	)
	s = replacer.Replace(s)

	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return strings.Join(fields, " ")
}
