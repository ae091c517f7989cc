package etlerr

import (
	"fmt"
	"net"
	"syscall"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
)

func TestValidationError_Message(t *testing.T) {
	err := NewValidation("invalid numeric field(s)", "hectares=-1", "quantity=0")
	assert.Equal(t, "invalid numeric field(s): hectares=-1, quantity=0", err.Error())

	bare := NewValidation("missing national id")
	assert.Equal(t, "missing national id", bare.Error())
}

func TestIsValidation(t *testing.T) {
	err := NewValidation("missing national id", "national_id")
	assert.True(t, IsValidation(err))
	assert.True(t, IsValidation(eris.Wrap(err, "resolve: beneficiary")))
	assert.False(t, IsValidation(fmt.Errorf("plain error")))
	assert.False(t, IsValidation(nil))
}

func TestIsFatal(t *testing.T) {
	assert.False(t, IsFatal(nil))
	assert.False(t, IsFatal(fmt.Errorf("no rows in result set")))
	assert.False(t, IsFatal(NewValidation("bad row")))

	assert.True(t, IsFatal(NewStorageFatal(fmt.Errorf("commit failed"))))
	assert.True(t, IsFatal(eris.Wrap(NewStorageFatal(fmt.Errorf("x")), "pipeline: batch")))
	assert.True(t, IsFatal(fmt.Errorf("acquire: closed pool")))
	assert.True(t, IsFatal(fmt.Errorf("conn closed")))
	assert.True(t, IsFatal(syscall.ECONNRESET))
	assert.True(t, IsFatal(&net.OpError{Op: "read", Err: syscall.ETIMEDOUT}))

	assert.True(t, IsFatal(&pgconn.PgError{Code: "08006"}))
	assert.True(t, IsFatal(&pgconn.PgError{Code: "42P01"}))
	assert.True(t, IsFatal(&pgconn.PgError{Code: "57P01"}))
	assert.False(t, IsFatal(&pgconn.PgError{Code: "23505"}))
}

func TestNewStorageFatal_Nil(t *testing.T) {
	assert.Nil(t, NewStorageFatal(nil))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, IsUniqueViolation(nil))
	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.True(t, IsUniqueViolation(fmt.Errorf(`duplicate key value violates unique constraint "beneficiaries_national_id_key" (SQLSTATE 23505)`)))
	assert.False(t, IsUniqueViolation(fmt.Errorf("deadlock detected")))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindValidation, KindOf(NewValidation("bad")))
	assert.Equal(t, KindStorage, KindOf(NewStorageFatal(fmt.Errorf("x"))))
	assert.Equal(t, KindUnknown, KindOf(fmt.Errorf("other")))
	assert.Equal(t, KindUnknown, KindOf(nil))
}
