package attendance

import (
	"time"

	"care-attendance/internal/places"
)

type Kind string

const (
	// KindManual is a day entered by hand with a declared hour count.
	KindManual Kind = "manual"
	// KindClock is captured by check-in / check-out timestamps.
	KindClock Kind = "clock"
)

// Record is one visit to one place on one date. Hours and DailyPay are
// derived: recomputed on every write and then frozen together with the
// HourlyRate that produced them.
type Record struct {
	ID                  string     `json:"id"`
	Kind                Kind       `json:"kind,omitempty"`
	Date                string     `json:"date"` // YYYY-MM-DD
	PlaceID             string     `json:"placeId"`
	Worked              bool       `json:"worked"`
	Hours               float64    `json:"hours"`
	AdditionalAllowance float64    `json:"additionalAllowance"`
	IsHoliday           bool       `json:"isHoliday"`
	HourlyRate          float64    `json:"hourlyRate"`
	DailyPay            int64      `json:"dailyPay"`
	ScheduleID          string     `json:"scheduleId,omitempty"`
	ScheduledStart      string     `json:"scheduledStart,omitempty"`
	ScheduledEnd        string     `json:"scheduledEnd,omitempty"`
	CheckInAt           *time.Time `json:"checkInAt,omitempty"`
	CheckOutAt          *time.Time `json:"checkOutAt,omitempty"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

// Backups from the browser app carry no kind; those are manual entries.
func (r Record) kind() Kind {
	if r.Kind == "" {
		return KindManual
	}
	return r.Kind
}

func (r Record) IsClock() bool { return r.kind() == KindClock }

// Open is a checked-in record still waiting for its check-out.
func (r Record) Open() bool { return r.IsClock() && r.CheckOutAt == nil }

// Completed records are the ones that count toward totals.
func (r Record) Completed() bool {
	if r.IsClock() {
		return r.CheckOutAt != nil
	}
	return r.Worked
}

// Entry is a record joined with its place; Place is nil once the place was deleted.
type Entry struct {
	Record
	IsCompleted bool          `json:"completed"`
	Place       *places.Place `json:"place"`
}

type PlaceLookup interface {
	FindByID(id string) (places.Place, bool)
}
