package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMapPgError(t *testing.T) {
	assert.NoError(t, mapPgError(nil))
	assert.ErrorIs(t, mapPgError(pgx.ErrNoRows), ErrNotFound)
	assert.ErrorIs(t, mapPgError(fmt.Errorf("scan: %w", pgx.ErrNoRows)), ErrNotFound)
	assert.ErrorIs(t, mapPgError(&pgconn.PgError{Code: uniqueViolation}), ErrDuplicate)

	other := errors.New("connection reset")
	assert.Equal(t, other, mapPgError(other))
	assert.ErrorIs(t, mapPgError(&pgconn.PgError{Code: "23503"}), ErrInUse)
}
