package filler

import (
	"fmt"
	"strings"
	"time"
)

var dateLayouts = []string{
	"2006-01",
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006/01",
	"01/2006",
}

// datePart is the month and year split of a stored date.
type datePart struct {
	Month string
	Year  string
}

// splitDate derives the zero-padded month and four-digit year of a stored date.
// A value that does not parse yields empty parts, so nothing gets written.
func splitDate(value string) datePart {
	value = strings.TrimSpace(value)
	if value == "" {
		return datePart{}
	}

	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, value)
		if err != nil {
			continue
		}

		return datePart{
			Month: fmt.Sprintf("%02d", int(t.Month())),
			Year:  fmt.Sprintf("%04d", t.Year()),
		}
	}

	return datePart{}
}
