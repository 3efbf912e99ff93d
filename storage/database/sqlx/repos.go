// Package sqlxrepos implements the domain repositories over PostgreSQL with sqlx.
//
// Repositories hold a default executor and accept an optional transaction-scoped
// one per call; constraint violations are mapped to domain errors here so
// services never see driver error codes.
package sqlxrepos

import (
	"github.com/lib/pq"
)

// postgres error codes of interest
const (
	pgUniqueViolation = pq.ErrorCode("23505")
	pgFKViolation     = pq.ErrorCode("23503")
)

func pgErrCode(err error) pq.ErrorCode {
	if pqErr, ok := err.(*pq.Error); ok {
		return pqErr.Code
	}
	return ""
}
