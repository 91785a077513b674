package errx

import (
	"context"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5"
)

// WrapPostgres maps pgx errors to AppError. Missing rows become 404, a
// cancelled or expired context becomes 504, everything else 500.
func WrapPostgres(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return New(err, http.StatusNotFound, StoreNotFoundMessage)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return New(err, http.StatusGatewayTimeout, StoreErrorMessage)
	default:
		return New(err, http.StatusInternalServerError, StoreErrorMessage)
	}
}
