package service

import (
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/library-admin-api/internal/models"
	appErrors "github.com/noah-isme/library-admin-api/pkg/errors"
)

// NewValidator returns a validator with the library enum tags registered:
// book_category, book_language and gender.
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("book_category", func(fl validator.FieldLevel) bool {
		return models.BookCategory(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("book_language", func(fl validator.FieldLevel) bool {
		return models.BookLanguage(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("gender", func(fl validator.FieldLevel) bool {
		return models.Gender(fl.Field().String()).Valid()
	})
	return v
}

func validationError(err error, message string) *appErrors.Error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}

func internalError(err error, message string) *appErrors.Error {
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

// validateIDs checks that every entry is a UUID.
func validateIDs(v *validator.Validate, ids []string) error {
	if len(ids) == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "at least one id is required")
	}
	if err := v.Var(ids, "dive,uuid"); err != nil {
		return validationError(err, "ids must be valid UUIDs")
	}
	return nil
}

// listPage fetches the requested page and, when it lies past the end of the
// result set, fetches the last page instead.
func listPage[T any](page, size int, fetch func(page int) ([]T, int, error)) ([]T, *models.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = models.DefaultPageSize
	}
	items, total, err := fetch(page)
	if err != nil {
		return nil, nil, err
	}
	if last := models.NormalizePage(page, size, total); last != page {
		page = last
		if items, total, err = fetch(page); err != nil {
			return nil, nil, err
		}
	}
	if items == nil {
		items = []T{}
	}
	return items, models.NewPagination(page, size, total), nil
}
