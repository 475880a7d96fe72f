package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// Date is a calendar day with no time-of-day component.
// It encodes as "YYYY-MM-DD".
type Date struct {
	civil.Date
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{civil.Date{Year: year, Month: month, Day: day}}
}

// DateOf returns the calendar day t falls on in t's location.
func DateOf(t time.Time) Date {
	return Date{civil.DateOf(t)}
}

func Today(now time.Time) Date {
	return DateOf(now)
}

// ParseDate accepts "YYYY-MM-DD" as well as full RFC 3339 timestamps, which is
// what older mirrors wrote for deadlines. Timestamps resolve to the day they
// fall on in the local zone.
func ParseDate(s string) (Date, error) {
	return ParseDateIn(s, time.Local)
}

// ParseDateIn is ParseDate with the zone used for RFC 3339 timestamps. Older
// mirrors stored a local midnight serialized as UTC, so the day has to be read
// back in the zone it was picked in.
func ParseDateIn(s string, loc *time.Location) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, fmt.Errorf("empty date")
	}
	if d, err := civil.ParseDate(s); err == nil {
		return Date{d}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return Date{}, fmt.Errorf("date must be YYYY-MM-DD or RFC 3339: %q", s)
	}
	if loc == nil {
		loc = time.Local
	}
	return Date{civil.DateOf(t.In(loc))}, nil
}

func (d Date) Equal(o Date) bool {
	return d.Date == o.Date
}

func (d Date) Before(o Date) bool {
	return d.Date.Before(o.Date)
}

func (d Date) After(o Date) bool {
	return d.Date.After(o.Date)
}

func (d Date) AddDays(n int) Date {
	return Date{d.Date.AddDays(n)}
}

func (d Date) Weekday() time.Weekday {
	return d.In(time.UTC).Weekday()
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
