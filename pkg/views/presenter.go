package views

import (
	"github.com/shishobooks/shelfrec/pkg/models"
	"github.com/shishobooks/shelfrec/pkg/pagination"
	"github.com/shishobooks/shelfrec/pkg/viewstate"
)

// ItemResponse is an item as the presentation layer shows it.
type ItemResponse struct {
	models.Item
	Year     int    `json:"year"`
	CoverURL string `json:"cover_url"`
}

// ViewResponse is a computed view with display-ready items.
type ViewResponse struct {
	viewstate.View
	Page pagination.Page[ItemResponse] `json:"page"`
}

func PresentItems(items []models.Item) []ItemResponse {
	out := make([]ItemResponse, len(items))
	for i, item := range items {
		out[i] = ItemResponse{
			Item:     item,
			Year:     item.CoerceYear(),
			CoverURL: item.CoverURL(),
		}
	}
	return out
}

// Present converts a computed view into its response form.
func Present(v viewstate.View) ViewResponse {
	return ViewResponse{
		View: v,
		Page: pagination.Page[ItemResponse]{
			Items:       PresentItems(v.Page.Items),
			CurrentPage: v.Page.CurrentPage,
			TotalPages:  v.Page.TotalPages,
			PageSize:    v.Page.PageSize,
			TotalItems:  v.Page.TotalItems,
		},
	}
}
