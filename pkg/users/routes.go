package users

import (
	"github.com/labstack/echo/v4"
	"github.com/shishobooks/shelfrec/pkg/viewstate"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers all user routes.
func RegisterRoutes(e *echo.Echo, db *bun.DB, state *viewstate.State) *Service {
	userService := NewService(db)

	h := &handler{
		userService: userService,
		state:       state,
	}

	users := e.Group("/users")

	users.GET("", h.list)
	users.GET("/:id", h.retrieve)

	// Selecting a user makes them the active user and waits for their
	// recommendations.
	users.POST("/:id/select", h.selectUser)

	return userService
}
