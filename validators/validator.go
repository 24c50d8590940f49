package validators

import (
	"github.com/go-playground/validator/v10"
)

// CustomValidator adapts validator/v10 to echo's Validator interface.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new CustomValidator
func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New(validator.WithRequiredStructEnabled())}
}

// Validate validates a bound request struct. The returned error is a
// validator.ValidationErrors; the HTTP error handler turns it into a 400.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
