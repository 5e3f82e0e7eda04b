package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// MaxDate is the last day that formats with a four-digit year.
var MaxDate = NewDate(9999, time.December, 31)

// Date is a calendar day in UTC with no time-of-day component.
type Date struct {
	t time.Time
}

// DateOf truncates t to its calendar day (in t's own location) and returns it as a UTC Date.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// NewDate builds a Date from its parts.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string. Years outside 0000-9999, which
// String writes with more digits or a sign, are accepted too.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err == nil {
		return Date{t: t}, nil
	}
	if d, ok := parseWideYear(s); ok {
		return d, nil
	}
	return Date{}, fmt.Errorf("parse date %q: %w", s, err)
}

func parseWideYear(s string) (Date, bool) {
	j := strings.LastIndexByte(s, '-')
	if j <= 0 {
		return Date{}, false
	}
	i := strings.LastIndexByte(s[:j], '-')
	if i <= 0 {
		return Date{}, false
	}
	year, err1 := strconv.Atoi(s[:i])
	month, err2 := strconv.Atoi(s[i+1 : j])
	day, err3 := strconv.Atoi(s[j+1:])
	if err1 != nil || err2 != nil || err3 != nil || len(s[i+1:j]) != 2 || len(s[j+1:]) != 2 {
		return Date{}, false
	}
	d := NewDate(year, time.Month(month), day)
	if y, m, dd := d.t.Date(); y != year || int(m) != month || dd != day {
		return Date{}, false
	}
	return d, true
}

func (d Date) Time() time.Time { return d.t }
func (d Date) IsZero() bool     { return d.t.IsZero() }
func (d Date) String() string   { return d.t.Format(dateLayout) }

// AddDays returns the date n days later (n may be negative).
func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

// DaysSince returns the number of whole days from other to d.
func (d Date) DaysSince(other Date) int {
	return int(d.t.Sub(other.t).Hours() / 24)
}

func (d Date) Before(other Date) bool { return d.t.Before(other.t) }
func (d Date) After(other Date) bool  { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool  { return d.t.Equal(other.t) }

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
