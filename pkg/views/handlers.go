package views

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/shishobooks/shelfrec/pkg/catalog"
	"github.com/shishobooks/shelfrec/pkg/errcodes"
	"github.com/shishobooks/shelfrec/pkg/models"
	"github.com/shishobooks/shelfrec/pkg/pipeline"
	"github.com/shishobooks/shelfrec/pkg/recommendations"
	"github.com/shishobooks/shelfrec/pkg/viewstate"
)

type handler struct {
	state          *viewstate.State
	catalogService *catalog.Service
}

func (h *handler) retrieve(c echo.Context) error {
	return c.JSON(http.StatusOK, Present(h.state.View()))
}

func (h *handler) update(c echo.Context) error {
	params := UpdateViewPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	if params.Mode != nil {
		h.state.SetViewMode(models.ViewMode(*params.Mode))
	}
	h.state.SetFilter(viewstate.FilterUpdate{
		Query:     params.Search,
		Author:    params.Author,
		Publisher: params.Publisher,
		YearMin:   params.YearMin,
		YearMax:   params.YearMax,
	})
	if params.Sort != nil {
		h.state.SetSort(pipeline.SortKey(*params.Sort))
	}
	if params.PageSize != nil {
		h.state.SetPageSize(*params.PageSize)
	}
	// Page goes last so an explicit page survives the resets above.
	if params.Page != nil {
		h.state.SetPage(*params.Page)
	}

	return c.JSON(http.StatusOK, Present(h.state.View()))
}

func (h *handler) reset(c echo.Context) error {
	h.state.ResetFilters()
	return c.JSON(http.StatusOK, Present(h.state.View()))
}

// FetchResult describes how a recommendation request ended.
type FetchResult struct {
	RequestID string                  `json:"request_id"`
	UserID    int                     `json:"user_id"`
	Outcome   recommendations.Outcome `json:"outcome"`
	Count     int                     `json:"count"`
}

// NewFetchResult summarizes a coordinator result for a response.
func NewFetchResult(result recommendations.Result) FetchResult {
	return FetchResult{
		RequestID: result.RequestID,
		UserID:    result.UserID,
		Outcome:   result.Outcome,
		Count:     len(result.Items),
	}
}

// FetchResponse is returned by every endpoint that triggers a fetch.
type FetchResponse struct {
	Fetch FetchResult  `json:"fetch"`
	View  ViewResponse `json:"view"`
}

func (h *handler) refresh(c echo.Context) error {
	// The fetch outlives a disconnected client so the view still settles.
	ctx := context.WithoutCancel(c.Request().Context())

	result, ok := h.state.Refresh(ctx)
	if !ok {
		return errcodes.Conflict("No active user to refresh.")
	}
	logger.FromContext(ctx).Info("refreshed recommendations", logger.Data{
		"user_id": result.UserID,
		"outcome": result.Outcome,
	})

	return c.JSON(http.StatusOK, FetchResponse{
		Fetch: NewFetchResult(result),
		View:  Present(h.state.View()),
	})
}

func (h *handler) topRated(c echo.Context) error {
	ctx := c.Request().Context()

	params := TopRatedQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	items, err := h.catalogService.TopRated(ctx, params.Limit)
	if err != nil {
		return err
	}

	resp := struct {
		Items []ItemResponse `json:"items"`
	}{PresentItems(items)}

	return c.JSON(http.StatusOK, resp)
}
