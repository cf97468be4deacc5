package attendance

const DateLayout = "2006-01-02"

// EntryRequest is the editable part of a manual record.
type EntryRequest struct {
	PlaceID             string  `json:"placeId" validate:"required"`
	Hours               float64 `json:"hours" validate:"gt=0,lte=24"`
	AdditionalAllowance float64 `json:"additionalAllowance" validate:"gte=0,lte=10000000"`
	IsHoliday           bool    `json:"isHoliday"`
}

type AddRequest struct {
	Date string `json:"date" validate:"required"`
	EntryRequest
}

// UpsertRequest writes the (date, placeId) entry. Worked defaults to true;
// worked=false keeps the record as an explicit "did not work" marker.
type UpsertRequest struct {
	Worked              *bool   `json:"worked,omitempty"`
	PlaceID             string  `json:"placeId"`
	Hours               float64 `json:"hours" validate:"gte=0,lte=24"`
	AdditionalAllowance float64 `json:"additionalAllowance" validate:"gte=0,lte=10000000"`
	IsHoliday           bool    `json:"isHoliday"`
}

type CheckInRequest struct {
	PlaceID        string `json:"placeId" validate:"required"`
	ScheduleID     string `json:"scheduleId"`
	ScheduledStart string `json:"scheduledStart" validate:"omitempty,datetime=15:04"`
	ScheduledEnd   string `json:"scheduledEnd" validate:"omitempty,datetime=15:04"`
}

type CheckOutRequest struct {
	// HourlyRate overrides the place's current rate.
	HourlyRate *float64 `json:"hourlyRate,omitempty" validate:"omitempty,gte=0,lte=10000000"`
}

type ListQuery struct {
	Date  string
	From  string
	To    string
	Year  int
	Month int
}
