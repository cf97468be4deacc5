package places

import "time"

// Place is a care recipient's address / workplace with its hourly rate.
// The JSON shape is also the persisted shape.
type Place struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	HourlyRate float64   `json:"hourlyRate"`
	Memo       string    `json:"memo"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
