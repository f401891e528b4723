// Package civil provides a calendar date without time-of-day or location.
package civil

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const layout = "2006-01-02"

// Date is a civil calendar date. The zero value is not a valid date.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// New returns the normalised date for the given components, so New(2024, 2, 30)
// is 2024-03-01.
func New(year int, month time.Month, day int) Date {
	return Of(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// Of takes the literal year, month and day of t in t's own location.
func Of(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Today returns the current date in the local zone of now.
func Today(now time.Time) Date {
	return Of(now)
}

// Parse reads the date-only prefix (YYYY-MM-DD) of raw. Anything after the
// prefix, such as a time-of-day or zone offset, is ignored rather than applied.
func Parse(raw string) (Date, error) {
	raw = strings.TrimSpace(raw)
	if len(raw) < len(layout) {
		return Date{}, fmt.Errorf("civil: %q is not a YYYY-MM-DD date", raw)
	}
	prefix := raw[:len(layout)]
	if prefix[4] != '-' || prefix[7] != '-' {
		return Date{}, fmt.Errorf("civil: %q is not a YYYY-MM-DD date", raw)
	}
	year, errY := strconv.Atoi(prefix[0:4])
	month, errM := strconv.Atoi(prefix[5:7])
	day, errD := strconv.Atoi(prefix[8:10])
	if errY != nil || errM != nil || errD != nil {
		return Date{}, fmt.Errorf("civil: %q is not a YYYY-MM-DD date", raw)
	}
	d := Date{Year: year, Month: time.Month(month), Day: day}
	if !d.IsValid() {
		return Date{}, fmt.Errorf("civil: %q is not a valid calendar date", raw)
	}
	return d, nil
}

// MustParse is Parse for literals known to be valid.
func MustParse(raw string) Date {
	d, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return d
}

// IsZero reports whether d is the zero value.
func (d Date) IsZero() bool {
	return d == Date{}
}

// IsValid reports whether d names an existing calendar day.
func (d Date) IsValid() bool {
	if d.Month < time.January || d.Month > time.December || d.Day < 1 {
		return false
	}
	return d.Day <= DaysIn(d.Year, d.Month)
}

// In returns midnight of d in loc.
func (d Date) In(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// Weekday returns the day of the week of d.
func (d Date) Weekday() time.Weekday {
	return d.In(time.UTC).Weekday()
}

// AddDays returns d shifted by n days.
func (d Date) AddDays(n int) Date {
	return Of(d.In(time.UTC).AddDate(0, 0, n))
}

// AddMonths returns d shifted by n calendar months. Days past the end of the
// target month overflow into the following month.
func (d Date) AddMonths(n int) Date {
	return Of(d.In(time.UTC).AddDate(0, n, 0))
}

// AddYears returns d shifted by n calendar years, with the same overflow rule
// as AddMonths (Feb 29 + 1 year is Mar 1).
func (d Date) AddYears(n int) Date {
	return Of(d.In(time.UTC).AddDate(n, 0, 0))
}

// Before reports whether d is earlier than other.
func (d Date) Before(other Date) bool {
	return d.Compare(other) < 0
}

// After reports whether d is later than other.
func (d Date) After(other Date) bool {
	return d.Compare(other) > 0
}

// Compare returns -1, 0 or +1.
func (d Date) Compare(other Date) int {
	switch {
	case d.Year != other.Year:
		return cmp(d.Year, other.Year)
	case d.Month != other.Month:
		return cmp(int(d.Month), int(other.Month))
	default:
		return cmp(d.Day, other.Day)
	}
}

func cmp(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// String formats d as YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// DaysIn returns the number of days in the month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MarshalJSON encodes d as "YYYY-MM-DD".
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts "YYYY-MM-DD" and longer ISO-8601 strings, keeping only
// the date prefix.
func (d *Date) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("civil: date must be a string: %w", err)
	}
	parsed, err := Parse(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value implements driver.Valuer.
func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

// Scan implements sql.Scanner. Drivers hand DATE columns back as time.Time at
// midnight in some location; only its literal components are kept.
func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		*d = Of(v)
		return nil
	case string:
		return d.UnmarshalText([]byte(v))
	case []byte:
		return d.UnmarshalText(v)
	default:
		return fmt.Errorf("civil: cannot scan %T into Date", src)
	}
}
