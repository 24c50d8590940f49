package validators

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	"github.com/anonto42/codecircle/backend/internal/models"
)

func TestValidate(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.Validate(&models.LoginRequest{Email: "ada@example.com", Password: "secret"}))

	err := v.Validate(&models.RegisterRequest{Name: "A", Email: "not-an-email", Password: "short"})
	var verrs validator.ValidationErrors
	assert.True(t, errors.As(err, &verrs))
	assert.Len(t, verrs, 3)

	err = v.Validate(&models.CreatePostRequest{Type: "rant", Content: "hello"})
	assert.Error(t, err)
}
