// Package testutils provides test-only API endpoints.
// These routes are only registered when ENVIRONMENT=test.
package testutils

import (
	"github.com/labstack/echo/v4"
	"github.com/shishobooks/shelfrec/pkg/catalog"
	"github.com/shishobooks/shelfrec/pkg/users"
	"github.com/shishobooks/shelfrec/pkg/viewstate"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers test-only routes.
// These endpoints should ONLY be registered in test environments.
func RegisterRoutes(e *echo.Echo, db *bun.DB, state *viewstate.State) {
	h := &handler{
		catalogService: catalog.NewService(db),
		userService:    users.NewService(db),
		state:          state,
	}

	test := e.Group("/test")
	test.PUT("/catalog", h.replaceCatalog)
	test.DELETE("/catalog", h.clearCatalog)
}
