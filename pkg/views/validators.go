package views

// UpdateViewPayload changes the view parameters. Fields that are left out keep
// their current value.
type UpdateViewPayload struct {
	Mode      *string `json:"mode" validate:"omitempty,viewmode"`
	Search    *string `json:"search" validate:"omitempty,max=200"`
	Author    *string `json:"author" validate:"omitempty,max=200"`
	Publisher *string `json:"publisher" validate:"omitempty,max=200"`
	YearMin   *int    `json:"year_min"`
	YearMax   *int    `json:"year_max"`
	Sort      *string `json:"sort" validate:"omitempty,sortkey"`
	// Page is clamped into range when the view is computed.
	Page *int `json:"page"`
	// PageSize is clamped into the configured bounds.
	PageSize *int `json:"page_size"`
}

// TopRatedQuery represents the query parameters for the top-rated list.
type TopRatedQuery struct {
	Limit int `query:"limit" json:"limit" default:"3" validate:"min=1,max=50"`
}
