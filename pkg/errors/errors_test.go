package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCloneKeepsIdentityForIs(t *testing.T) {
	err := Clone(ErrOutOfStock, "book has no copies left")

	assert.True(t, errors.Is(err, ErrOutOfStock))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "book has no copies left", err.Message)
	assert.Equal(t, "no copies available", ErrOutOfStock.Message)
}

func TestFromErrorWrapsUnknown(t *testing.T) {
	appErr := FromError(fmt.Errorf("dial tcp: refused"))

	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.Contains(t, appErr.Error(), "dial tcp")
}

func TestFromErrorUnwrapsChain(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", Clone(ErrDuplicate, "enrollment already registered"))

	appErr := FromError(wrapped)

	assert.Equal(t, ErrDuplicate.Code, appErr.Code)
	assert.Equal(t, http.StatusConflict, appErr.Status)
}

func TestAsNotice(t *testing.T) {
	notice, ok := AsNotice(fmt.Errorf("return: %w", Clone(ErrAlreadyReturned, "")))
	assert.True(t, ok)
	assert.Equal(t, "ALREADY_RETURNED", notice.Code)

	_, ok = AsNotice(ErrNotFound)
	assert.False(t, ok)
	_, ok = AsNotice(fmt.Errorf("plain"))
	assert.False(t, ok)
}
