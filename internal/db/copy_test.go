package db

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyInto(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	cols := []string{"benefit_type", "full_name"}
	mock.ExpectCopyFrom(pgx.Identifier{"agro", "staging_benefits"}, cols).
		WillReturnResult(2)

	n, err := CopyInto(context.Background(), mock, "agro", "staging_benefits", cols,
		[][]any{{"SEMILLAS", "PEREZ JUAN"}, {"SEMILLAS", "LOPEZ ANA"}})
	assert.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyInto_Empty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	n, err := CopyInto(context.Background(), mock, "agro", "staging_benefits",
		[]string{"benefit_type"}, nil)
	assert.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyInto_Error(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	cols := []string{"benefit_type"}
	mock.ExpectCopyFrom(pgx.Identifier{"agro", "staging_benefits"}, cols).
		WillReturnError(fmt.Errorf("malformed row"))

	_, err = CopyInto(context.Background(), mock, "agro", "staging_benefits", cols,
		[][]any{{"SEMILLAS"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COPY INTO agro.staging_benefits")
	assert.NoError(t, mock.ExpectationsWereMet())
}
