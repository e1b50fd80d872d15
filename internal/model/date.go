package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// ErrInvalidDate is returned by ParseDay for input it cannot read as a day.
var ErrInvalidDate = errors.New("invalid date")

// Layouts that carry a wall-clock date without a zone. The calendar day is
// taken as written.
var dayLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"1/2/2006",
	"2.1.2006",
	"2. 1. 2006",
	"Mon Jan 2 2006",
}

// ParseDay reads a calendar day from the forms clients and older records use.
// Timestamps with a zone are moved into loc before the day is taken.
func ParseDay(s string, loc *time.Location) (civil.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return civil.Date{}, ErrInvalidDate
	}

	if d, err := civil.ParseDate(s); err == nil {
		return d, nil
	}

	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return DayOf(t, loc), nil
	}

	for _, layout := range dayLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return civil.DateOf(t), nil
		}
	}

	return civil.Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// ParseOptionalDay is ParseDay for optional fields: an empty string is
// "no date" and yields nil without error.
func ParseOptionalDay(s string, loc *time.Location) (*civil.Date, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	d, err := ParseDay(s, loc)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// DayOf returns the calendar day t falls on in loc.
func DayOf(t time.Time, loc *time.Location) civil.Date {
	if loc == nil {
		loc = time.Local
	}
	return civil.DateOf(t.In(loc))
}
