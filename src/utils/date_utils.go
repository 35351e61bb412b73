package utils

import (
	"strings"
	"time"
)

// reportDateLayouts are the timestamp shapes seen in marketplace exports,
// tried in order.
var reportDateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"Jan 2, 2006 3:04:05 PM MST",
	"Jan 2, 2006 3:04:05 PM",
	"2 Jan 2006 3:04:05 pm MST",
	"2 Jan 2006 3:04:05 pm",
	"02-Jan-2006 3:04:05 PM",
	"02/01/2006 15:04:05",
	"02/01/2006",
	"02-01-2006",
	"2006/01/02",
}

// ParseReportDate parses a marketplace date. Amazon appends a zone
// abbreviation such as "IST" that Go cannot resolve; it is dropped and the
// time is read as UTC.
func ParseReportDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range reportDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if i := strings.LastIndex(s, " "); i > 0 {
		trimmed := s[:i]
		for _, layout := range reportDateLayouts {
			if t, err := time.Parse(layout, trimmed); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// NormalizeReportDate returns the date as RFC3339 when it can be parsed and
// the trimmed raw value otherwise, so the original is never lost.
func NormalizeReportDate(raw string) string {
	if t, ok := ParseReportDate(raw); ok {
		return t.UTC().Format(time.RFC3339)
	}
	return strings.TrimSpace(raw)
}
