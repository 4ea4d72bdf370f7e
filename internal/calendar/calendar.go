//-------------------------------------------------------------------------
//
// pgEdge Data Warehouse Loader
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package calendar generates the rows of the date dimension.
package calendar

import (
	"fmt"
	"time"
)

// Default span used when the source holds no dates at all.
var (
	DefaultStart = Date(2007, time.January, 1)
	DefaultEnd   = Date(2030, time.December, 31)
)

// Columns lists the date dimension columns in the order Day.Values
// returns them.
var Columns = []string{
	"date_id", "full_date", "year", "quarter", "quarter_name",
	"month", "month_name", "day", "day_of_week", "day_name", "week_of_year",
}

// Day is one row of the date dimension.
type Day struct {
	ID          int
	Date        time.Time
	Year        int
	Quarter     int
	QuarterName string
	Month       int
	MonthName   string
	Day         int
	DayOfWeek   int // 1 = Sunday .. 7 = Saturday
	DayName     string
	WeekOfYear  int // ISO 8601
}

// Date returns midnight UTC on the given day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Truncate drops the time of day from t, keeping its calendar date.
func Truncate(t time.Time) time.Time {
	return Date(t.Year(), t.Month(), t.Day())
}

// Identity returns the YYYYMMDD integer for t.
func Identity(t time.Time) int {
	return t.Year()*10000 + int(t.Month())*100 + t.Day()
}

// NewDay builds the dimension row for t's calendar date.
func NewDay(t time.Time) Day {
	d := Truncate(t)
	quarter := (int(d.Month())-1)/3 + 1
	_, week := d.ISOWeek()

	return Day{
		ID:          Identity(d),
		Date:        d,
		Year:        d.Year(),
		Quarter:     quarter,
		QuarterName: fmt.Sprintf("Q%d", quarter),
		Month:       int(d.Month()),
		MonthName:   d.Month().String(),
		Day:         d.Day(),
		DayOfWeek:   int(d.Weekday()) + 1,
		DayName:     d.Weekday().String(),
		WeekOfYear:  week,
	}
}

// Values returns the row as bind parameters in Columns order.
func (d Day) Values() []any {
	return []any{
		d.ID, d.Date, d.Year, d.Quarter, d.QuarterName,
		d.Month, d.MonthName, d.Day, d.DayOfWeek, d.DayName, d.WeekOfYear,
	}
}

// Span is an inclusive range of calendar dates.
type Span struct {
	Start time.Time
	End   time.Time
}

// DefaultSpan returns the fallback span.
func DefaultSpan() Span {
	return Span{Start: DefaultStart, End: DefaultEnd}
}

// NewSpan returns the span between two dates. If either bound is
// unknown the default span is used.
func NewSpan(start, end *time.Time) Span {
	if start == nil || end == nil {
		return DefaultSpan()
	}
	return Span{Start: Truncate(*start), End: Truncate(*end)}
}

// Len returns the number of days in the span, both ends included. An
// inverted span is empty.
func (s Span) Len() int {
	if s.End.Before(s.Start) {
		return 0
	}
	return int(s.End.Sub(s.Start).Hours()/24) + 1
}

// Each calls fn for every day in the span in ascending order, stopping
// at the first error.
func (s Span) Each(fn func(Day) error) error {
	for d := s.Start; !d.After(s.End); d = d.AddDate(0, 0, 1) {
		if err := fn(NewDay(d)); err != nil {
			return err
		}
	}
	return nil
}

// String formats the span for logs.
func (s Span) String() string {
	return s.Start.Format(time.DateOnly) + ".." + s.End.Format(time.DateOnly)
}
