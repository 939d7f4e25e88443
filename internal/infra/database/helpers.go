package database

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/entity"
)

const uniqueViolation = "23505"

type scanner interface {
	Scan(dest ...any) error
}

// uniqueConstraint devolve o nome da constraint violada, ou "" se o erro não é 23505.
func uniqueConstraint(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return entity.ErrNotFound
	}
	return err
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func metadataArg(m entity.Metadata) (any, error) {
	b, err := entity.EncodeMetadata(m)
	if err != nil || b == nil {
		return nil, err
	}
	return string(b), nil
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
