package handlers

import (
	"github.com/labstack/echo/v4"

	"github.com/anonto42/codecircle/backend/internal/apperror"
)

// intQuery reads an integer query parameter. Absent or empty means def;
// anything that is not an integer is rejected. Range checks belong to the
// services.
func intQuery(c echo.Context, name string, def int) (int, error) {
	n := def
	if err := echo.QueryParamsBinder(c).Int(name, &n).BindError(); err != nil {
		return 0, apperror.NewInvalidArgument(name + " must be an integer")
	}
	return n, nil
}

// bindAndValidate binds the request body into req and runs the validator.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return apperror.NewInvalidArgument("Invalid request payload")
	}
	return c.Validate(req)
}

// Message is the body of responses that only confirm an action.
type Message struct {
	Message string `json:"message"`
}
