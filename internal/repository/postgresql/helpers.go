package repository

import (
	"errors"
	"strconv"

	"github.com/lib/pq"
)

func itoa(n int) string { return strconv.Itoa(n) }

// IsUniqueViolation reports whether err is a postgres unique-constraint
// violation (SQLSTATE 23505). Get-or-create paths treat it as "row already
// exists, re-fetch".
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
