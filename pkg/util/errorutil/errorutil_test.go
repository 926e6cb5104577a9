package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
)

func TestToDomainError(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))

	wrapped := fmt.Errorf("load item: %w", NewItemNotFound(7))
	de := ToDomainError(wrapped)
	assert.Equal(t, CodeItemNotFound, de.Code)
	assert.Equal(t, http.StatusNotFound, de.HTTPStatus)
	assert.Equal(t, int64(7), de.Details["item_id"])

	assert.Equal(t, CodeNotFound, ToDomainError(pgx.ErrNoRows).Code)

	de = ToDomainError(fiber.NewError(http.StatusRequestEntityTooLarge, "body too large"))
	assert.Equal(t, CodeValidationFailed, de.Code)
	assert.Equal(t, http.StatusRequestEntityTooLarge, de.HTTPStatus)

	de = ToDomainError(fiber.ErrMethodNotAllowed)
	assert.Equal(t, CodeNotFound, de.Code)

	boom := errors.New("boom")
	de = ToDomainError(boom)
	assert.Equal(t, CodeInternal, de.Code)
	assert.ErrorIs(t, de, boom)
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{NewValidationError("bad", nil), http.StatusBadRequest},
		{NewUnauthorized("who"), http.StatusUnauthorized},
		{NewForbidden("no"), http.StatusForbidden},
		{NewInvalidCredentials(), http.StatusUnauthorized},
		{NewAdminDeleteForbidden(), http.StatusForbidden},
		{NewEmailAlreadyExists("a@emsi.ma"), http.StatusConflict},
		{NewRateLimited(), http.StatusTooManyRequests},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.status, ToDomainError(tt.err).HTTPStatus, tt.err.Error())
	}
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("register: %w", NewEmailAlreadyExists("a@emsi.ma"))
	assert.True(t, HasCode(err, CodeEmailAlreadyExists))
	assert.False(t, HasCode(err, CodeConflict))
	assert.False(t, HasCode(errors.New("plain"), CodeInternal))
}
