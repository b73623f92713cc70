package source

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Name identifies which upstream API a record or error came from.
type Name string

const (
	SourceRESAS    Name = "resas"
	SourceHolidays Name = "holidays"
)

// YearMonth is the structured period key shared by guest and holiday data.
// Compare and group on the fields; String is for presentation and storage only.
type YearMonth struct {
	Year  int
	Month int
}

// String formats the period as "YYYY-M" without zero padding.
func (ym YearMonth) String() string {
	return strconv.Itoa(ym.Year) + "-" + strconv.Itoa(ym.Month)
}

// Before reports whether ym is earlier than other.
func (ym YearMonth) Before(other YearMonth) bool {
	if ym.Year != other.Year {
		return ym.Year < other.Year
	}
	return ym.Month < other.Month
}

// ParseYearMonth parses the "YYYY-M" text form. Zero-padded months are accepted.
func ParseYearMonth(s string) (YearMonth, error) {
	y, m, ok := strings.Cut(s, "-")
	if !ok {
		return YearMonth{}, fmt.Errorf("parse year_month %q: missing separator", s)
	}
	year, err := strconv.Atoi(y)
	if err != nil {
		return YearMonth{}, fmt.Errorf("parse year_month %q: %w", s, err)
	}
	month, err := strconv.Atoi(m)
	if err != nil {
		return YearMonth{}, fmt.Errorf("parse year_month %q: %w", s, err)
	}
	if month < 1 || month > 12 {
		return YearMonth{}, fmt.Errorf("parse year_month %q: month out of range", s)
	}
	return YearMonth{Year: year, Month: month}, nil
}

// GuestRecord is one prefecture's guest counts for one month.
// Value0..Value4 are counts per business-size bucket.
type GuestRecord struct {
	Year     int    `json:"year"`
	Month    int    `json:"month"`
	Value0   int64  `json:"value0"`
	Value1   int64  `json:"value1"`
	Value2   int64  `json:"value2"`
	Value3   int64  `json:"value3"`
	Value4   int64  `json:"value4"`
	PrefCode int    `json:"pref_code"`
	PrefName string `json:"pref_name"`
}

// Period returns the record's month as a YearMonth.
func (r GuestRecord) Period() YearMonth {
	return YearMonth{Year: r.Year, Month: r.Month}
}

// Total sums the five bucket values.
func (r GuestRecord) Total() int64 {
	return r.Value0 + r.Value1 + r.Value2 + r.Value3 + r.Value4
}

// HolidayRecord is a single public holiday.
type HolidayRecord struct {
	Date   time.Time `json:"date"`
	Period YearMonth `json:"-"`
	Name   string    `json:"holiday_name"`
}

// UpstreamError reports a failed request or a non-2xx response from an API.
type UpstreamError struct {
	Source     Name
	URL        string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s upstream status %d: %v", e.Source, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s upstream: %v", e.Source, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// ShapeError reports a response body that does not match the expected schema.
type ShapeError struct {
	Source Name
	Reason string
	Err    error
}

func (e *ShapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s unexpected response shape: %s: %v", e.Source, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s unexpected response shape: %s", e.Source, e.Reason)
}

func (e *ShapeError) Unwrap() error { return e.Err }
