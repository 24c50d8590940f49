package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anonto42/codecircle/backend/internal/apperror"
	"github.com/anonto42/codecircle/backend/internal/models"
	"github.com/anonto42/codecircle/backend/validators"
)

func renderError(t *testing.T, method string, err error) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(method, "/", nil), rec)
	HTTPErrorHandler(err, c)
	return rec
}

func TestHTTPErrorHandler(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"not found", apperror.NewNotFound("post not found"), http.StatusNotFound, "post not found"},
		{"not the author", apperror.NewUnauthorized("nope"), http.StatusForbidden, "nope"},
		{"self follow", apperror.NewInvalidOperation("cannot follow yourself"), http.StatusBadRequest, "cannot follow yourself"},
		{"store down", apperror.NewUpstream("store request failed", errors.New("dial tcp")), http.StatusBadGateway, "store request failed"},
		{"echo error", echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded"), http.StatusTooManyRequests, "rate limit exceeded"},
		{"echo 5xx keeps message", echo.NewHTTPError(http.StatusServiceUnavailable, "Unable to verify session"), http.StatusServiceUnavailable, "Unable to verify session"},
		{"echo body limit", echo.ErrStatusRequestEntityTooLarge, http.StatusRequestEntityTooLarge, "Request Entity Too Large"},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := renderError(t, http.MethodGet, tt.err)
			assert.Equal(t, tt.status, rec.Code)
			assert.JSONEq(t, `{"message":"`+tt.message+`"}`, rec.Body.String())
		})
	}
}

func TestHTTPErrorHandlerValidation(t *testing.T) {
	err := validators.NewValidator().Validate(&models.LoginRequest{Email: "nope"})
	require.Error(t, err)

	rec := renderError(t, http.MethodPost, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Email must satisfy email")
	assert.Contains(t, rec.Body.String(), "Password must satisfy required")
}

func TestHTTPErrorHandlerHead(t *testing.T) {
	rec := renderError(t, http.MethodHead, apperror.NewNotFound("post not found"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestIntQuery(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/?limit=7&page=x&offset=&skip=2.5", nil), httptest.NewRecorder())

	n, err := intQuery(c, "limit", 50)
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	n, err = intQuery(c, "days", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	// Present but empty reads as absent.
	n, err = intQuery(c, "offset", 4)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	_, err = intQuery(c, "page", 1)
	assert.True(t, apperror.Is(err, apperror.InvalidArgument))
	_, err = intQuery(c, "skip", 0)
	assert.True(t, apperror.Is(err, apperror.InvalidArgument))
}
