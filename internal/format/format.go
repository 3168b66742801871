package format

import (
	"fmt"
	"strings"
	"time"
)

// FmtPrice formats a whole-unit amount for display.
// Example: FmtPrice(3500, "DZD", "ar") => "3,500 دج"
func FmtPrice(amount int, currency, lang string) string {
	currency = strings.ToUpper(currency)
	n := thousandSep(int64(amount))
	switch currency {
	case "DZD":
		if strings.ToLower(lang) == "ar" {
			return n + " دج"
		}
		return n + " DA"
	case "USD":
		return "$" + n
	case "EUR":
		return n + " €"
	case "":
		return n
	default:
		return fmt.Sprintf("%s %s", n, currency)
	}
}

func thousandSep(n int64) string {
	s := fmt.Sprintf("%d", n)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	var b strings.Builder
	for i, c := range s {
		if i != 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// FmtDate formats time in a locale-friendly short form.
func FmtDate(t time.Time, lang string) string {
	if t.IsZero() {
		return ""
	}
	switch strings.ToLower(lang) {
	case "ar":
		return t.Format("2006/01/02")
	default:
		return t.Format("Jan 2, 2006")
	}
}

// FmtReleaseDate formats an upstream "YYYY-MM-DD" date and returns the raw
// value when it does not parse.
func FmtReleaseDate(raw, lang string) string {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(raw))
	if err != nil {
		return raw
	}
	return FmtDate(t, lang)
}
