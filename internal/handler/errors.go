package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-receipt-service/internal/logging"
	"github.com/iliyamo/cinema-receipt-service/internal/model"
)

// ErrorHandler renders every failure as {"error": message}.  Validation
// errors become 400, echo HTTP errors keep their status and anything else
// is reported as 500 with the underlying message.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	msg := "Error: " + err.Error()

	var he *echo.HTTPError
	switch {
	case model.IsValidation(err):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.As(err, &he):
		status = he.Code
		switch status {
		case http.StatusMethodNotAllowed:
			msg = "Method not allowed"
		default:
			if m, ok := he.Message.(string); ok {
				msg = m
			} else {
				msg = http.StatusText(status)
			}
		}
	default:
		logging.FromContext(c.Request().Context()).WithError(err).Error("unhandled error")
	}

	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(status)
	} else {
		werr = c.JSON(status, echo.Map{"error": msg})
	}
	if werr != nil {
		logging.FromContext(c.Request().Context()).WithError(werr).Warn("error response not written")
	}
}
