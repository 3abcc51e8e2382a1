package config

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// ClientConfig is the subset of the config a UI needs to render its controls.
type ClientConfig struct {
	DefaultPageSize int `json:"default_page_size"`
	MinPageSize     int `json:"min_page_size"`
	MaxPageSize     int `json:"max_page_size"`
	DefaultYearMin  int `json:"default_year_min"`
	DefaultYearMax  int `json:"default_year_max"`
	RefreshSeconds  int `json:"refresh_seconds"`
}

func (c *Config) ClientConfig() ClientConfig {
	return ClientConfig{
		DefaultPageSize: c.DefaultPageSize,
		MinPageSize:     c.MinPageSize,
		MaxPageSize:     c.MaxPageSize,
		DefaultYearMin:  c.DefaultYearMin,
		DefaultYearMax:  c.DefaultYearMax,
		RefreshSeconds:  int(c.RefreshInterval.Seconds()),
	}
}

type handler struct {
	config *Config
}

func (h *handler) retrieve(c echo.Context) error {
	return errors.WithStack(c.JSON(http.StatusOK, h.config.ClientConfig()))
}
