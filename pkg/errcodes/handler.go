package errcodes

import (
	"fmt"
	"net/http"

	"github.com/iancoleman/strcase"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/errutils"
)

// Payload is the body of every error response.
type Payload struct {
	Error PayloadError `json:"error"`
}

type PayloadError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"status_code"`
}

var internalServerError = PayloadError{
	Code:       "internal_server_error",
	Message:    "Internal Server Error",
	StatusCode: http.StatusInternalServerError,
}

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// Handle is an Echo error handler. Errors from this package and Echo's own
// HTTP errors keep their status, anything else is an internal server error.
func (h *Handler) Handle(err error, c echo.Context) {
	if errutils.IsIgnorableErr(err) {
		logger.FromEchoContext(c).Err(err).Warn("broken pipe")
		return
	}

	payload := NewPayload(err)
	if payload.Error.StatusCode >= http.StatusInternalServerError {
		logger.FromEchoContext(c).Err(err).Error("server error")
	}

	if err := c.JSON(payload.Error.StatusCode, payload); err != nil {
		logger.FromEchoContext(c).Err(errors.WithStack(err)).Error("error handler json error")
	}
}

// NewPayload describes err the way the API reports it.
func NewPayload(err error) Payload {
	var e *Error
	if errors.As(err, &e) {
		return Payload{PayloadError{Code: e.Code, Message: e.Message, StatusCode: e.HTTPCode}}
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg, ok := he.Message.(string)
		if !ok {
			msg = fmt.Sprint(he.Message)
		}
		if he.Code == http.StatusInternalServerError || msg == "" {
			pe := internalServerError
			pe.StatusCode = he.Code
			return Payload{pe}
		}
		return Payload{PayloadError{Code: strcase.ToSnake(msg), Message: msg, StatusCode: he.Code}}
	}

	return Payload{internalServerError}
}
