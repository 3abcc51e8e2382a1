package users

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shishobooks/shelfrec/pkg/errcodes"
	"github.com/shishobooks/shelfrec/pkg/models"
	"github.com/shishobooks/shelfrec/pkg/views"
	"github.com/shishobooks/shelfrec/pkg/viewstate"
)

type handler struct {
	userService *Service
	state       *viewstate.State
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("User")
	}

	user, err := h.userService.Retrieve(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, user)
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListUsersQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	users, total, err := h.userService.List(ctx, ListOptions(params))
	if err != nil {
		return err
	}

	resp := struct {
		Users        []*models.User `json:"users"`
		Total        int            `json:"total"`
		ActiveUserID *int           `json:"active_user_id"`
	}{users, total, h.state.ActiveUserID()}

	return c.JSON(http.StatusOK, resp)
}

func (h *handler) selectUser(c echo.Context) error {
	// The fetch outlives a disconnected client so the view still settles.
	ctx := context.WithoutCancel(c.Request().Context())

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("User")
	}

	// Unknown users are rejected before anything is requested for them.
	if _, err := h.userService.Retrieve(ctx, id); err != nil {
		return err
	}

	result := h.state.SwitchUser(ctx, id)

	return c.JSON(http.StatusOK, views.FetchResponse{
		Fetch: views.NewFetchResult(result),
		View:  views.Present(h.state.View()),
	})
}
