package calendar

import (
	"errors"
	"testing"
	"time"
)

func TestIdentity(t *testing.T) {
	tests := []struct {
		date time.Time
		want int
	}{
		{Date(2007, time.January, 1), 20070101},
		{Date(2024, time.February, 29), 20240229},
		{Date(2030, time.December, 31), 20301231},
		{time.Date(2019, time.July, 4, 23, 59, 0, 0, time.UTC), 20190704},
	}

	for _, tt := range tests {
		if got := Identity(tt.date); got != tt.want {
			t.Errorf("Identity(%s) = %d, want %d", tt.date, got, tt.want)
		}
	}
}

func TestNewDay(t *testing.T) {
	tests := []struct {
		name string
		date time.Time
		want Day
	}{
		{
			name: "leap day",
			date: Date(2024, time.February, 29),
			want: Day{
				ID: 20240229, Year: 2024, Quarter: 1, QuarterName: "Q1",
				Month: 2, MonthName: "February", Day: 29,
				DayOfWeek: 5, DayName: "Thursday", WeekOfYear: 9,
			},
		},
		{
			name: "iso week belongs to previous year",
			date: Date(2021, time.January, 1),
			want: Day{
				ID: 20210101, Year: 2021, Quarter: 1, QuarterName: "Q1",
				Month: 1, MonthName: "January", Day: 1,
				DayOfWeek: 6, DayName: "Friday", WeekOfYear: 53,
			},
		},
		{
			name: "sunday in q4",
			date: Date(2023, time.December, 31),
			want: Day{
				ID: 20231231, Year: 2023, Quarter: 4, QuarterName: "Q4",
				Month: 12, MonthName: "December", Day: 31,
				DayOfWeek: 1, DayName: "Sunday", WeekOfYear: 52,
			},
		},
		{
			name: "saturday in q3",
			date: Date(2018, time.September, 1),
			want: Day{
				ID: 20180901, Year: 2018, Quarter: 3, QuarterName: "Q3",
				Month: 9, MonthName: "September", Day: 1,
				DayOfWeek: 7, DayName: "Saturday", WeekOfYear: 35,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewDay(tt.date)
			tt.want.Date = tt.date
			if got != tt.want {
				t.Errorf("NewDay(%s):\n got %+v\nwant %+v", tt.date.Format(time.DateOnly), got, tt.want)
			}
		})
	}
}

func TestNewDayTruncates(t *testing.T) {
	d := NewDay(time.Date(2015, time.March, 3, 17, 45, 0, 0, time.UTC))
	if !d.Date.Equal(Date(2015, time.March, 3)) {
		t.Errorf("Expected midnight, got %s", d.Date)
	}
}

func TestDefaultSpan(t *testing.T) {
	s := NewSpan(nil, nil)
	if !s.Start.Equal(DefaultStart) || !s.End.Equal(DefaultEnd) {
		t.Fatalf("Expected default span, got %s", s)
	}
	if s.Len() != 8766 {
		t.Errorf("Expected 8766 days, got %d", s.Len())
	}

	start := Date(2015, time.January, 1)
	if got := NewSpan(&start, nil); got != DefaultSpan() {
		t.Errorf("A missing upper bound should fall back to the default span, got %s", got)
	}
}

func collect(s Span) []Day {
	var days []Day
	_ = s.Each(func(d Day) error {
		days = append(days, d)
		return nil
	})
	return days
}

func TestSpanCompleteness(t *testing.T) {
	start := Date(2015, time.January, 30)
	end := Date(2015, time.March, 2)
	s := NewSpan(&start, &end)

	days := collect(s)
	if len(days) != s.Len() {
		t.Fatalf("Expected %d days, got %d", s.Len(), len(days))
	}
	if len(days) != 32 {
		t.Errorf("Expected 32 days, got %d", len(days))
	}

	for i, d := range days {
		want := start.AddDate(0, 0, i)
		if !d.Date.Equal(want) {
			t.Fatalf("Day %d: expected %s, got %s", i, want, d.Date)
		}
		if d.ID != Identity(want) {
			t.Errorf("Day %d: identity %d does not match date", i, d.ID)
		}
	}
}

func TestSpanSingleDay(t *testing.T) {
	day := Date(2020, time.June, 15)
	s := NewSpan(&day, &day)
	if s.Len() != 1 || len(collect(s)) != 1 {
		t.Errorf("Expected one day, got %d", s.Len())
	}
}

func TestSpanInverted(t *testing.T) {
	start := Date(2020, time.June, 15)
	end := Date(2020, time.June, 14)
	s := NewSpan(&start, &end)
	if s.Len() != 0 || len(collect(s)) != 0 {
		t.Errorf("Expected an empty span, got %d days", s.Len())
	}
}

func TestSpanEachStops(t *testing.T) {
	errStop := errors.New("stop")
	calls := 0
	err := DefaultSpan().Each(func(Day) error {
		calls++
		if calls == 3 {
			return errStop
		}
		return nil
	})
	if !errors.Is(err, errStop) {
		t.Fatalf("Expected stop error, got %v", err)
	}
	if calls != 3 {
		t.Errorf("Expected 3 calls, got %d", calls)
	}
}

func TestValuesOrder(t *testing.T) {
	v := NewDay(Date(2024, time.February, 29)).Values()
	if len(v) != len(Columns) {
		t.Fatalf("Expected %d values, got %d", len(Columns), len(v))
	}
	if v[0] != 20240229 || v[4] != "Q1" || v[9] != "Thursday" || v[10] != 9 {
		t.Errorf("Unexpected values: %v", v)
	}
}
