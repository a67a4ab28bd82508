package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	codeUniqueViolation = "23505"
	codeInvalidText     = "22P02"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return pgCode(err) == codeUniqueViolation || strings.Contains(err.Error(), "SQLSTATE "+codeUniqueViolation)
}

// isInvalidID reports a malformed uuid literal, which callers treat as a
// missing row.
func isInvalidID(err error) bool {
	return err != nil && pgCode(err) == codeInvalidText
}
