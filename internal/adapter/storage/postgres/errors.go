package postgres

import (
	"errors"
	"fmt"

	"runnerhub/internal/core/ports"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// wrapWriteErr wraps err with op, translating unique violations to ports.ErrDuplicate.
func wrapWriteErr(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w", op, ports.ErrDuplicate)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// pageOffset normalizes page and size and returns the SQL OFFSET.
func pageOffset(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	return size, (page - 1) * size
}
