package importer

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	trailingMinusRe = regexp.MustCompile(`-\s*$`)
	currencyRe      = regexp.MustCompile(`(?i)R\$\s?`)
	whitespaceRe    = regexp.MustCompile(`\s+`)
	dayMonthYearRe  = regexp.MustCompile(`^([0-3]?\d)[/\-]([0-1]?\d)[/\-](\d{4})`)
)

// ParseBrazilianNumber converts Brazilian-formatted numeric text into a
// float64. It understands "R$" prefixes, '.' as thousands separator, ',' as
// decimal separator, and negatives written as "(123,45)", "123,45-" or
// "-123,45".
//
// It never fails: empty, garbage, or non-finite input degrades to 0 so a
// single malformed cell cannot abort an otherwise valid row.
func ParseBrazilianNumber(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}

	parenNegative := strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")")
	trailingMinus := trailingMinusRe.MatchString(s)
	sign := 1.0
	if parenNegative || trailingMinus {
		sign = -1.0
	}

	if parenNegative {
		s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
	}
	s = trailingMinusRe.ReplaceAllString(s, "")
	s = currencyRe.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "\u00a0", "")
	s = whitespaceRe.ReplaceAllString(s, "")

	// thousands '.' and decimal ','
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")

	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return n * sign
}

// excelEpoch is the spreadsheet serial-date epoch (1899-12-30).
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// ParseExcelDate converts a spreadsheet cell into a date. It accepts, in
// order: a numeric serial date (days since 1899-12-30), an ISO date or
// timestamp, and "dd/mm/yyyy" / "dd-mm-yyyy" text (matched by explicit
// regex groups so the day/month order is never locale-dependent).
//
// The second return value is false when no rule matches; parsing never
// fails hard, since statements routinely contain non-date cells in the
// date column (subtotals, disclaimers).
func ParseExcelDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		ms := serial * 24 * 60 * 60 * 1000
		return excelEpoch.Add(time.Duration(ms) * time.Millisecond), true
	}

	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if d, err := time.Parse(layout, s); err == nil {
			return d, true
		}
	}

	if m := dayMonthYearRe.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
	}

	return time.Time{}, false
}

// ExtractTicker pulls the instrument symbol out of a free-text product
// description such as "ABEV3 - AMBEV S/A": the part before the first '-',
// trimmed, upper-cased, and truncated to its first whitespace-delimited
// token to defend against stray trailing characters.
func ExtractTicker(product string) string {
	raw := strings.TrimSpace(product)
	if raw == "" {
		return ""
	}

	if i := strings.Index(raw, "-"); i >= 0 {
		raw = raw[:i]
	}

	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToUpper(fields[0])
}

// NormalizeHeaderName makes column-header matching resilient to export
// inconsistencies: lower-case, trimmed, non-breaking spaces turned into
// regular spaces, and internal whitespace runs collapsed to one space.
func NormalizeHeaderName(header string) string {
	s := strings.ReplaceAll(header, "\u00a0", " ")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.ToLower(strings.TrimSpace(s))
}

// FormatDateKey renders a date as UTC YYYY-MM-DD. Day precision is
// intentional: brokers do not report intraday timestamps, so operation
// identity must not depend on an unstated time-of-day.
func FormatDateKey(date time.Time) string {
	return date.UTC().Format("2006-01-02")
}

// formatAmount renders a float the shortest way that round-trips, so the
// same quantity always produces the same identity material ("306", "12.6").
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

var accentFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// foldAccents strips diacritics ("próprio" → "proprio") so classifier
// matching tolerates both accented and unaccented statement spellings.
func foldAccents(s string) string {
	out, _, err := transform.String(accentFolder, s)
	if err != nil {
		return s
	}
	return out
}
