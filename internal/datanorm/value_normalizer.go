package datanorm

import (
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// WeekdayNames are the localized day names, Monday first.
var WeekdayNames = [7]string{
	"Segunda-feira",
	"Terça-feira",
	"Quarta-feira",
	"Quinta-feira",
	"Sexta-feira",
	"Sábado",
	"Domingo",
}

var (
	clientCodePrefix = regexp.MustCompile(`^\d+\s*-\s*`)
	inviteDatePat    = regexp.MustCompile(`(\d{2}/\d{2}/\d{4})`)
)

// registrationLayouts are tried in order; all are day-first.
var registrationLayouts = []string{
	"02/01/2006",
	"02/01/2006 15:04",
	"02/01/2006 15:04:05",
	"2/1/2006",
	"2/1/2006 15:04",
	"2/1/2006 15:04:05",
	"02-01-2006",
	"02-01-2006 15:04:05",
	"02.01.2006",
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// Fold is the single comparison key for flag values and organization names:
// trimmed, NFC-composed and case folded.
func Fold(s string) string {
	return cases.Fold().String(norm.NFC.String(strings.TrimSpace(s)))
}

// NormalizeClientName removes a leading "<digits> - " code and surrounding
// whitespace. Applying it to its own output returns the same value.
func NormalizeClientName(raw string) string {
	s := strings.TrimSpace(raw)
	s = clientCodePrefix.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// ExtractInviteDate finds the first DD/MM/YYYY substring in raw and returns it
// as a UTC date. Anything around it, such as "(18:00 às 19:00)", is ignored.
func ExtractInviteDate(raw string) (time.Time, bool) {
	m := inviteDatePat.FindStringSubmatch(raw)
	if m == nil {
		return time.Time{}, false
	}
	d, err := time.ParseInLocation("02/01/2006", m[1], time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// ParseRegistrationDate parses a day-first date. Unparseable input yields nil.
func ParseRegistrationDate(raw string) *time.Time {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	for _, layout := range registrationLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return &t
		}
	}
	return nil
}

// WeekdayIndex maps a date to 0..6 with Monday as 0.
func WeekdayIndex(d time.Time) int {
	return (int(d.Weekday()) + 6) % 7
}

func normalizeEmail(raw string) string {
	return strings.Trim(strings.TrimSpace(raw), "\"'<>")
}
