// Package views serves the interactive view: the current page of the display
// pool, the parameters that shape it and the recommendation status.
package views

import (
	"github.com/labstack/echo/v4"
	"github.com/shishobooks/shelfrec/pkg/catalog"
	"github.com/shishobooks/shelfrec/pkg/viewstate"
)

// RegisterRoutes registers all view routes.
func RegisterRoutes(e *echo.Echo, state *viewstate.State, catalogService *catalog.Service) {
	h := &handler{
		state:          state,
		catalogService: catalogService,
	}

	e.GET("/view", h.retrieve)
	e.POST("/view", h.update)
	e.POST("/view/reset", h.reset)

	e.POST("/recommendations/refresh", h.refresh)

	e.GET("/top-rated", h.topRated)
}
