package pdf

import (
	"strconv"
	"strings"
	"time"
)

// FormatEUR renders an amount in German notation, e.g. 1234.56 as
// "1.234,56 €".
func FormatEUR(amount float64) string {
	s := strconv.FormatFloat(amount, 'f', 2, 64)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	intPart := s[:len(s)-3]
	fracPart := s[len(s)-2:]

	var b strings.Builder
	for i := 0; i < len(intPart); i++ {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteByte(intPart[i])
	}

	out := b.String() + "," + fracPart + " €"
	if neg {
		out = "-" + out
	}
	return out
}

// FormatDate converts an ISO date (2006-01-02) to German notation
// (02.01.2006). Unparseable input is returned unchanged.
func FormatDate(iso string) string {
	t, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return iso
	}
	return t.Format("02.01.2006")
}
