package places

type CreatePlaceRequest struct {
	Name       string  `json:"name" validate:"required"`
	HourlyRate float64 `json:"hourlyRate" validate:"gt=0,lte=10000000"`
	Memo       string  `json:"memo"`
}

// UpdatePlaceRequest is a patch: nil fields are left as they are.
type UpdatePlaceRequest struct {
	Name       *string  `json:"name,omitempty" validate:"omitempty,min=1"`
	HourlyRate *float64 `json:"hourlyRate,omitempty" validate:"omitempty,gt=0,lte=10000000"`
	Memo       *string  `json:"memo,omitempty"`
}
