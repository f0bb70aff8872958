package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardvault/cardvault/internal/domain"
)

func TestMapError_Nil(t *testing.T) {
	t.Parallel()

	assert.NoError(t, mapError(nil, "card", "mh2:123"))
}

func TestMapError_NoRows(t *testing.T) {
	t.Parallel()

	got := mapError(pgx.ErrNoRows, "card", "mh2:123")

	require.Error(t, got)
	assert.ErrorIs(t, got, domain.ErrNotFound)
	assert.Equal(t, "card mh2:123: not found", got.Error())
}

func TestMapError_WrappedNoRows(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("scan row: %w", pgx.ErrNoRows)

	assert.ErrorIs(t, mapError(wrapped, "user", "alice"), domain.ErrNotFound)
}

func TestMapError_ContextErrorsPassThrough(t *testing.T) {
	t.Parallel()

	for _, ctxErr := range []error{context.DeadlineExceeded, context.Canceled} {
		got := mapError(ctxErr, "card", "mh2:123")

		assert.ErrorIs(t, got, ctxErr)
		// Must NOT be mapped to a domain error
		assert.NotErrorIs(t, got, domain.ErrNotFound)
	}
}

func TestMapError_UnknownError(t *testing.T) {
	t.Parallel()

	original := errors.New("something unexpected")
	got := mapError(original, "card", "mh2:123")

	assert.ErrorIs(t, got, original)
	assert.Equal(t, "card mh2:123: something unexpected", got.Error())
}

func TestMapError_UnknownPgError(t *testing.T) {
	t.Parallel()

	pgErr := &pgconn.PgError{Code: "42P01", Message: "relation does not exist"}
	got := mapError(pgErr, "card", "mh2:123")

	// Unknown PG codes should pass through, not be mapped to domain errors
	var unwrapped *pgconn.PgError
	assert.ErrorAs(t, got, &unwrapped)
	assert.NotErrorIs(t, got, domain.ErrNotFound)
	assert.NotErrorIs(t, got, domain.ErrAlreadyExists)
	assert.NotErrorIs(t, got, domain.ErrValidation)
}

func TestMapError_WrappedPgError(t *testing.T) {
	t.Parallel()

	pgErr := &pgconn.PgError{Code: "23505", Message: "duplicate key"}
	wrapped := fmt.Errorf("insert row: %w", pgErr)

	assert.ErrorIs(t, mapError(wrapped, "collection", "alice"), domain.ErrAlreadyExists)
}

func TestMapError_AllPgCodes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		code    string
		wantErr error
	}{
		{"unique_violation", "23505", domain.ErrAlreadyExists},
		{"foreign_key_violation", "23503", domain.ErrNotFound},
		{"check_violation", "23514", domain.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			pgErr := &pgconn.PgError{Code: tt.code}

			assert.ErrorIs(t, mapError(pgErr, "card", "mh2:123"), tt.wantErr)
		})
	}
}
