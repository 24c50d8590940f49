// Package services holds the feed, ranking and social-graph logic. Every
// service runs against repositories.Store and returns *apperror.AppError
// values for the handlers to translate.
package services

import (
	"errors"

	"github.com/anonto42/codecircle/backend/internal/apperror"
	"github.com/anonto42/codecircle/backend/internal/repositories"
)

// storeError maps a store failure to an application error about the named resource.
func storeError(err error, resource string) error {
	if err == nil {
		return nil
	}
	if _, ok := apperror.As(err); ok {
		return err
	}
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return apperror.NewNotFound(resource + " not found")
	case errors.Is(err, repositories.ErrDuplicate):
		return apperror.NewConflict(resource + " already exists")
	}
	return apperror.NewUpstream("store request failed", err)
}
