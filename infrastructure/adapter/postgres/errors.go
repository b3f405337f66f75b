package postgres

import (
	"errors"

	"github.com/lib/pq"
)

const (
	uniqueViolationCode    = "23505"
	exclusionViolationCode = "23P01"
)

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolationCode
}

// isExclusionViolation detects the reservation overlap constraint firing,
// which is the database-level backstop behind the application-level check.
func isExclusionViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == exclusionViolationCode
}
