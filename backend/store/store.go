// Package store holds the gorm-backed persistence for templates, users and
// the engagement records (ratings, upvotes, comments).
package store

import (
	"errors"

	"promptmarket/backend/apperr"

	"gorm.io/gorm"
)

// translate maps gorm sentinel errors onto apperr categories. The DB must be
// opened with TranslateError for ErrDuplicatedKey to surface.
func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.New(apperr.KindNotFound, what+" not found", err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperr.Conflict(what+" already exists", err)
	default:
		return apperr.Internal("could not access "+what, err)
	}
}
