package controller

import (
	"errors"
	"fmt"
	"net/http"

	httpdto "github.com/taskhub-io/ms-go-taskhub/app/dto/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// ErrorHandler renders every error as the uniform failure envelope
// {statusCode, success:false, message, errors[]}. Unknown errors become an
// opaque 500 so internals never leak to callers.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var apiErr *httpdto.APIError
	if !errors.As(err, &apiErr) {
		var echoErr *echo.HTTPError
		if errors.As(err, &echoErr) {
			apiErr = httpdto.NewAPIError(echoErr.Code, fmt.Sprintf("%v", echoErr.Message))
		} else {
			logrus.WithError(err).WithField("uri", c.Request().RequestURI).Error("unhandled error")
			apiErr = httpdto.NewAPIError(http.StatusInternalServerError, "internal server error")
		}
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(apiErr.StatusCode)
		return
	}
	_ = c.JSON(apiErr.StatusCode, httpdto.NewErrorEnvelope(apiErr))
}
