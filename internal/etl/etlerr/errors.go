// Package etlerr defines the pipeline error taxonomy: row-level validation
// errors (skip the row), unique-constraint conflicts (recovered by
// re-lookup inside the resolver), and fatal storage errors (stop the run).
package etlerr

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgconn"
)

// Kind labels an error class for run-summary grouping.
type Kind string

const (
	KindValidation Kind = "validation"
	KindStorage    Kind = "storage"
	KindUnknown    Kind = "unknown"
)

// ValidationError reports bad or missing field values on a single staging
// row. It never aborts a batch; the row is recorded as failed and skipped.
type ValidationError struct {
	Fields []string
	Msg    string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Msg, strings.Join(e.Fields, ", "))
}

// NewValidation builds a ValidationError for the named fields.
func NewValidation(msg string, fields ...string) *ValidationError {
	return &ValidationError{Msg: msg, Fields: fields}
}

// IsValidation reports whether the error chain contains a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// StorageFatal wraps a storage-layer error that must abort the current
// batch and stop the run. It is never retried silently.
type StorageFatal struct {
	Err error
}

func (e *StorageFatal) Error() string { return "storage: " + e.Err.Error() }
func (e *StorageFatal) Unwrap() error { return e.Err }

// NewStorageFatal wraps err as fatal. Returns nil for a nil err.
func NewStorageFatal(err error) error {
	if err == nil {
		return nil
	}
	return &StorageFatal{Err: err}
}

// IsFatal reports whether the error chain contains a StorageFatal, a
// severed connection, or another condition that makes further rows
// pointless to attempt.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}

	var sf *StorageFatal
	if errors.As(err, &sf) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}

	// pgx surfaces a closed pool and lost connections as plain errors.
	msg := strings.ToLower(err.Error())
	fatalPatterns := []string{
		"closed pool",
		"conn closed",
		"connection reset by peer",
		"broken pipe",
		"unexpected eof",
	}
	for _, p := range fatalPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}

	// Server-side classes 08 (connection), 42 (syntax/undefined object,
	// i.e. schema mismatch), 57 (operator intervention, shutdown).
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case strings.HasPrefix(pgErr.Code, "08"),
			strings.HasPrefix(pgErr.Code, "42"),
			strings.HasPrefix(pgErr.Code, "57"):
			return true
		}
	}

	return false
}

// IsUniqueViolation reports whether err is a PostgreSQL unique-constraint
// violation (SQLSTATE 23505). The resolver treats it as "entity already
// exists" and retries the lookup instead of propagating.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	// pgxmock and wrapped drivers may only carry the SQLSTATE in the text.
	return strings.Contains(strings.ToLower(err.Error()), "sqlstate 23505")
}

// KindOf classifies an error for the run summary.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindUnknown
	case IsValidation(err):
		return KindValidation
	case IsFatal(err):
		return KindStorage
	default:
		return KindUnknown
	}
}
