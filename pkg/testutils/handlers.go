package testutils

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shishobooks/shelfrec/pkg/app"
	"github.com/shishobooks/shelfrec/pkg/catalog"
	"github.com/shishobooks/shelfrec/pkg/models"
	"github.com/shishobooks/shelfrec/pkg/users"
	"github.com/shishobooks/shelfrec/pkg/viewstate"
)

type handler struct {
	catalogService *catalog.Service
	userService    *users.Service
	state          *viewstate.State
}

// replaceCatalogRequest is the request body for loading a test catalog.
type replaceCatalogRequest struct {
	Users   []*models.User   `json:"users"`
	Items   []models.Item    `json:"items"`
	Ratings []*models.Rating `json:"ratings"`
}

type catalogResponse struct {
	Users   int `json:"users"`
	Items   int `json:"items"`
	Ratings int `json:"ratings"`
}

// replaceCatalog swaps the whole catalog for the one in the body.
// PUT /test/catalog.
func (h *handler) replaceCatalog(c echo.Context) error {
	var req replaceCatalogRequest
	if err := c.Bind(&req); err != nil {
		return errors.WithStack(err)
	}

	seed := &catalog.Seed{Users: req.Users, Items: req.Items, Ratings: req.Ratings}
	if err := h.load(c, seed); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, catalogResponse{len(seed.Users), len(seed.Items), len(seed.Ratings)})
}

// clearCatalog empties the catalog.
// DELETE /test/catalog.
func (h *handler) clearCatalog(c echo.Context) error {
	if err := h.load(c, &catalog.Seed{}); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *handler) load(c echo.Context, seed *catalog.Seed) error {
	ctx := c.Request().Context()

	if err := h.catalogService.Load(ctx, seed); err != nil {
		return errors.Wrap(err, "failed to load test catalog")
	}
	return app.Reload(ctx, h.catalogService, h.userService, h.state)
}
