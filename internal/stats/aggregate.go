// Package stats computes totals over the attendance ledger. Every function
// here is pure: inputs are read, never modified, and an empty ledger yields
// zeroed results.
package stats

import (
	"sort"
	"time"

	"care-attendance/internal/attendance"
	"care-attendance/internal/payroll"
	"care-attendance/internal/platform/apierr"
)

const DateLayout = attendance.DateLayout

// Summarize totals the completed records dated within [start, end].
func Summarize(recs []attendance.Record, lookup PlaceLookup, start, end string) Summary {
	sum := Summary{StartDate: start, EndDate: end, ByPlace: []PlaceTotal{}}

	var done []attendance.Record
	for _, r := range attendance.FilterRange(recs, start, end) {
		if r.Completed() {
			done = append(done, r)
		}
	}
	sort.SliceStable(done, func(i, j int) bool { return done[i].Date < done[j].Date })

	type group struct {
		total PlaceTotal
		dates map[string]struct{}
		known bool
	}
	var (
		order  []string
		groups = map[string]*group{}
		dates  = map[string]struct{}{}
	)
	for _, r := range done {
		sum.RecordCount++
		sum.TotalHours += r.Hours
		sum.TotalPay = payroll.AddPay(sum.TotalPay, r.DailyPay)
		dates[r.Date] = struct{}{}

		g, ok := groups[r.PlaceID]
		if !ok {
			g = &group{dates: map[string]struct{}{}}
			g.total.Place, g.known = lookup.FindByID(r.PlaceID)
			groups[r.PlaceID] = g
			order = append(order, r.PlaceID)
		}
		g.total.Visits++
		g.total.Hours += r.Hours
		g.total.Pay = payroll.AddPay(g.total.Pay, r.DailyPay)
		g.dates[r.Date] = struct{}{}
	}
	sum.TotalDays = len(dates)

	for _, id := range order {
		g := groups[id]
		if !g.known {
			continue
		}
		g.total.Days = len(g.dates)
		sum.ByPlace = append(sum.ByPlace, g.total)
	}
	return sum
}

// DailyBreakdown groups completed records by date, ascending.
func DailyBreakdown(recs []attendance.Record) []DayTotal {
	byDate := map[string]*DayTotal{}
	for _, r := range recs {
		if !r.Completed() {
			continue
		}
		d, ok := byDate[r.Date]
		if !ok {
			d = &DayTotal{Date: r.Date}
			byDate[r.Date] = d
		}
		d.Visits++
		d.Hours += r.Hours
		d.Pay = payroll.AddPay(d.Pay, r.DailyPay)
	}
	out := make([]DayTotal, 0, len(byDate))
	for _, d := range byDate {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// MonthTotals summarizes one calendar month, including the per-day breakdown.
func MonthTotals(recs []attendance.Record, lookup PlaceLookup, year, month int) (MonthSummary, error) {
	start, end, err := attendance.MonthBounds(year, month)
	if err != nil {
		return MonthSummary{}, err
	}
	sum := Summarize(recs, lookup, start, end)
	sum.ByDay = DailyBreakdown(attendance.FilterRange(recs, start, end))
	return MonthSummary{Year: year, Month: month, Summary: sum}, nil
}

// WeekRange is the Sunday..Saturday week containing now, in now's location.
func WeekRange(now time.Time) (string, string) {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	start := day.AddDate(0, 0, -int(day.Weekday()))
	end := start.AddDate(0, 0, 6)
	return start.Format(DateLayout), end.Format(DateLayout)
}

func WeeklyStats(recs []attendance.Record, lookup PlaceLookup, now time.Time) Summary {
	start, end := WeekRange(now)
	return Summarize(recs, lookup, start, end)
}

func MonthlyStats(recs []attendance.Record, lookup PlaceLookup, now time.Time) MonthSummary {
	// month and year of a real clock are always valid
	ms, _ := MonthTotals(recs, lookup, now.Year(), int(now.Month()))
	return ms
}

func RangeStats(recs []attendance.Record, lookup PlaceLookup, start, end string) (Summary, error) {
	if err := attendance.ValidateDate(start); err != nil {
		return Summary{}, err
	}
	if err := attendance.ValidateDate(end); err != nil {
		return Summary{}, err
	}
	if end < start {
		return Summary{}, apierr.ErrInvalid("to must be >= from")
	}
	return Summarize(recs, lookup, start, end), nil
}

// CalendarMonth lays the month out as 42 cells starting on the Sunday on or
// before the 1st. today marks the matching cell.
func CalendarMonth(recs []attendance.Record, year, month int, today string) (Calendar, error) {
	if _, _, err := attendance.MonthBounds(year, month); err != nil {
		return Calendar{}, err
	}
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	start := first.AddDate(0, 0, -int(first.Weekday()))

	daily := map[string]DayTotal{}
	gridEnd := start.AddDate(0, 0, 41).Format(DateLayout)
	for _, d := range DailyBreakdown(attendance.FilterRange(recs, start.Format(DateLayout), gridEnd)) {
		daily[d.Date] = d
	}

	cal := Calendar{Year: year, Month: month, Days: make([]CalendarDay, 0, 42)}
	for i := 0; i < 42; i++ {
		d := start.AddDate(0, 0, i)
		key := d.Format(DateLayout)
		tot := daily[key]
		cal.Days = append(cal.Days, CalendarDay{
			Date:    key,
			Day:     d.Day(),
			Weekday: int(d.Weekday()),
			InMonth: d.Month() == time.Month(month),
			IsToday: key == today,
			Visits:  tot.Visits,
			Hours:   tot.Hours,
			Pay:     tot.Pay,
		})
	}
	return cal, nil
}
