package request

type CreateCarRequest struct {
	Name       string  `json:"name" validate:"required,min=2,max=120"`
	Brand      string  `json:"brand" validate:"required,min=2,max=60"`
	DailyRate  int64   `json:"daily_rate" validate:"required,min=1"`
	TotalCount int     `json:"total_count" validate:"required,min=1"`
	Location   string  `json:"location" validate:"required,min=2,max=120"`
	ImageURL   *string `json:"image_url,omitempty" validate:"omitempty,url"`
}

type UpdateCarRequest struct {
	Name       string  `json:"name" validate:"required,min=2,max=120"`
	Brand      string  `json:"brand" validate:"required,min=2,max=60"`
	DailyRate  int64   `json:"daily_rate" validate:"required,min=1"`
	TotalCount int     `json:"total_count" validate:"required,min=1"`
	Location   string  `json:"location" validate:"required,min=2,max=120"`
	ImageURL   *string `json:"image_url,omitempty" validate:"omitempty,url"`
}
