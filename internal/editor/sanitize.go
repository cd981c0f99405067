package editor

import "strings"

// SanitizeNumeric reduces raw cell text to a signed decimal in progress.
// Characters are kept only while they extend a valid float: a minus sign
// only as the first kept character, digits always, and at most one decimal
// point. Everything else is dropped in place, so "12a.5b" becomes "12.5"
// and "--3" becomes "-3".
//
// The result may still be unparseable ("-", ".", ""); parsing is the
// commit step's problem.
func SanitizeNumeric(text string) string {
	var b strings.Builder
	seenPoint := false
	for _, r := range text {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' && b.Len() == 0:
			b.WriteRune(r)
		case r == '.' && !seenPoint:
			seenPoint = true
			b.WriteRune(r)
		}
	}
	return b.String()
}
