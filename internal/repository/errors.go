package repository

import (
	"errors"

	"github.com/lib/pq"
)

// Sentinel errors returned by the library repositories. Services translate
// them into the typed API errors.
var (
	ErrBookNotFound        = errors.New("book not found")
	ErrStudentNotFound     = errors.New("student not found")
	ErrLoanNotFound        = errors.New("loan not found")
	ErrOutOfStock          = errors.New("book out of stock")
	ErrAlreadyReturned     = errors.New("loan already returned")
	ErrDuplicateEnrollment = errors.New("enrollment already exists")
)

const pqUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqUniqueViolation
	}
	return false
}
