package stats

import (
	"care-attendance/internal/attendance"
	"care-attendance/internal/places"
)

type PlaceLookup interface {
	FindByID(id string) (places.Place, bool)
}

// RecordSource is the attendance ledger as seen by the aggregation code.
type RecordSource interface {
	All() []attendance.Record
}

type PlaceTotal struct {
	Place  places.Place `json:"place"`
	Days   int          `json:"days"`   // distinct dates
	Visits int          `json:"visits"` // records
	Hours  float64      `json:"hours"`
	Pay    int64        `json:"pay"`
}

type DayTotal struct {
	Date   string  `json:"date"`
	Visits int     `json:"visits"`
	Hours  float64 `json:"hours"`
	Pay    int64   `json:"pay"`
}

// Summary aggregates the completed records of [StartDate, EndDate].
// Totals include records whose place was deleted; ByPlace does not.
type Summary struct {
	StartDate   string       `json:"startDate"`
	EndDate     string       `json:"endDate"`
	TotalDays   int          `json:"totalDays"`
	RecordCount int          `json:"recordCount"`
	TotalHours  float64      `json:"totalHours"`
	TotalPay    int64        `json:"totalPay"`
	ByPlace     []PlaceTotal `json:"byPlace"`
	ByDay       []DayTotal   `json:"byDay,omitempty"`
}

type MonthSummary struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Summary
}

type CalendarDay struct {
	Date    string  `json:"date"`
	Day     int     `json:"day"`
	Weekday int     `json:"weekday"`
	InMonth bool    `json:"inMonth"`
	IsToday bool    `json:"isToday"`
	Visits  int     `json:"visits"`
	Hours   float64 `json:"hours"`
	Pay     int64   `json:"pay"`
}

// Calendar is a Sunday-first 6x7 month grid padded with adjacent-month days.
type Calendar struct {
	Year  int           `json:"year"`
	Month int           `json:"month"`
	Days  []CalendarDay `json:"days"`
}
