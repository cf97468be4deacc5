package schedules

const TimeLayout = "15:04"

type CreateScheduleRequest struct {
	PlaceID   string `json:"placeId" validate:"required"`
	DayOfWeek int    `json:"dayOfWeek" validate:"gte=0,lte=6"`
	StartTime string `json:"startTime" validate:"required,datetime=15:04"`
	EndTime   string `json:"endTime" validate:"required,datetime=15:04"`
	IsActive  *bool  `json:"isActive,omitempty"` // defaults to true
}

type UpdateScheduleRequest struct {
	StartTime *string `json:"startTime,omitempty" validate:"omitempty,datetime=15:04"`
	EndTime   *string `json:"endTime,omitempty" validate:"omitempty,datetime=15:04"`
	IsActive  *bool   `json:"isActive,omitempty"`
}

type ListQuery struct {
	PlaceID   string
	DayOfWeek *int
}
