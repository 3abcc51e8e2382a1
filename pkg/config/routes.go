package config

import (
	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo, cfg *Config) {
	h := &handler{config: cfg}

	e.GET("/config", h.retrieve)
}
