package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrDuplicate indica que se violó un índice único (email o título).
var ErrDuplicate = errors.New("duplicate key")

const uniqueViolation = "23505"

// mapWriteErr traduce errores de escritura de Postgres a errores del paquete.
func mapWriteErr(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicate
	}
	return err
}
