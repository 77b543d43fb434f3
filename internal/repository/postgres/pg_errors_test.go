package postgres

import (
	"errors"
	"testing"

	"github.com/ihorkly/bookix/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestTranslateDBErr(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{
			name: "nil passes through",
			in:   nil,
			want: nil,
		},
		{
			name: "no rows maps to not found",
			in:   pgx.ErrNoRows,
			want: repository.ErrNotFound,
		},
		{
			name: "unique violation maps to conflict",
			in:   &pgconn.PgError{Code: "23505"},
			want: repository.ErrConflict,
		},
		{
			name: "foreign key violation maps to not found",
			in:   &pgconn.PgError{Code: "23503"},
			want: repository.ErrNotFound,
		},
		{
			name: "serialization failure maps to serialization",
			in:   &pgconn.PgError{Code: "40001"},
			want: repository.ErrSerialization,
		},
		{
			name: "deadlock maps to serialization",
			in:   &pgconn.PgError{Code: "40P01"},
			want: repository.ErrSerialization,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, translateDBErr(tt.in))
		})
	}
}

func TestTranslateDBErrUnknownPassesThrough(t *testing.T) {
	err := errors.New("connection reset")
	assert.Same(t, err, translateDBErr(err))

	pge := &pgconn.PgError{Code: "42P01"} // undefined_table stays untranslated
	assert.Same(t, error(pge), translateDBErr(pge))
}

func TestWrapDBErrKeepsSentinelMatchable(t *testing.T) {
	err := wrapDBErr("postgres.SeatRepo.Reserve", &pgconn.PgError{Code: "40001"})

	assert.ErrorIs(t, err, repository.ErrSerialization)
	assert.Contains(t, err.Error(), "postgres.SeatRepo.Reserve")

	assert.NoError(t, wrapDBErr("postgres.SeatRepo.Reserve", nil))
}

func TestTranslateDBErrWrappedDriverError(t *testing.T) {
	// repositories often wrap the driver error before translation
	wrapped := errors.Join(errors.New("scan row"), &pgconn.PgError{Code: "23505"})
	assert.Equal(t, repository.ErrConflict, translateDBErr(wrapped))
}
