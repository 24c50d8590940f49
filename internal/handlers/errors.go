package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/anonto42/codecircle/backend/internal/apperror"
	"github.com/anonto42/codecircle/backend/pkg/logger"
	"github.com/anonto42/codecircle/backend/pkg/telemetry"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Message string `json:"message"`
}

// HTTPErrorHandler renders application, validation and echo errors as
// {"message": ...} with the matching status code. An echo.HTTPError keeps its
// message at any status; other unexpected errors read "Internal server error".
// Server-side failures are logged and reported.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, message := http.StatusInternalServerError, "Internal server error"

	var (
		appErr  *apperror.AppError
		httpErr *echo.HTTPError
		verrs   validator.ValidationErrors
	)
	switch {
	case errors.As(err, &appErr):
		status, message = appErr.StatusCode(), appErr.Message
	case errors.As(err, &verrs):
		status, message = http.StatusBadRequest, validationMessage(verrs)
	case errors.As(err, &httpErr):
		status, message = httpErr.Code, fmt.Sprint(httpErr.Message)
	}

	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			zap.Error(err),
			zap.String("method", c.Request().Method),
			zap.String("path", c.Path()),
		)
		telemetry.CaptureError(err)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, ErrorResponse{Message: message})
	}
	if err != nil {
		logger.Warn("failed to write error response", zap.Error(err))
	}
}

func validationMessage(verrs validator.ValidationErrors) string {
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s must satisfy %s", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}
