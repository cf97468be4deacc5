package schedules

import (
	"time"

	"care-attendance/internal/places"
)

// Schedule is a weekly recurring visit window. At most one per (PlaceID, DayOfWeek).
type Schedule struct {
	ID        string    `json:"id"`
	PlaceID   string    `json:"placeId"`
	DayOfWeek int       `json:"dayOfWeek"` // 0=Sunday .. 6=Saturday
	StartTime string    `json:"startTime"` // HH:MM
	EndTime   string    `json:"endTime"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ScheduledVisit is a schedule joined with its place.
type ScheduledVisit struct {
	Schedule
	Place places.Place `json:"place"`
}

type PlaceLookup interface {
	FindByID(id string) (places.Place, bool)
}
