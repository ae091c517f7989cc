package staging

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

// pageColumns mirrors rowColumns for building mock result sets.
var pageColumns = strings.Split(
	"id,benefit_type,full_name,national_id,phone,gender,age,"+
		"canton,parish,locality,coord_x,coord_y,"+
		"organization,crop,hectares_total,hectares,delivery_date,delivery_place,observations,benefit_year,"+
		"certificate,variety,quantity,unit_price,agency_name,agency_id,"+
		"kit_price,nitrogen_qty,npk_qty,organic_qty,"+
		"contractor,contractor_id,rubro,"+
		"cost_per_hectare,investment,mech_state,group_name,"+
		"processed,error", ",")

func pageRow(rows *pgxmock.Rows, id int64, tag, name, cedula string) *pgxmock.Rows {
	return rows.AddRow(
		id, tag, &name, &cedula, (*string)(nil), (*string)(nil), (*int)(nil),
		(*string)(nil), (*string)(nil), (*string)(nil), (*string)(nil), (*string)(nil),
		(*string)(nil), (*string)(nil), (*float64)(nil), (*float64)(nil), nil, (*string)(nil), (*string)(nil), (*int)(nil),
		(*string)(nil), (*string)(nil), (*int)(nil), (*float64)(nil), (*string)(nil), (*string)(nil),
		(*float64)(nil), (*int)(nil), (*int)(nil), (*int)(nil),
		(*string)(nil), (*string)(nil), (*string)(nil),
		(*float64)(nil), (*float64)(nil), (*string)(nil), (*string)(nil),
		false, (*string)(nil),
	)
}

func TestCountPending(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT count").
		WithArgs("SEMILLAS").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(42)))

	n, err := NewReader(mock).CountPending(context.Background(), "SEMILLAS")
	assert.NoError(t, err)
	assert.Equal(t, int64(42), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchPage(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rows := pgxmock.NewRows(pageColumns)
	pageRow(rows, 11, "SEMILLAS", "PEREZ JUAN", "0926687856")
	pageRow(rows, 12, "SEMILLAS", "LOPEZ ANA", "1710034065")

	mock.ExpectQuery("FROM agro.staging_benefits").
		WithArgs("SEMILLAS", int64(10), 100).
		WillReturnRows(rows)

	page, err := NewReader(mock).FetchPage(context.Background(), "SEMILLAS", 10, 100)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, int64(11), page[0].ID)
	assert.Equal(t, "PEREZ JUAN", *page[0].FullName)
	assert.Equal(t, "1710034065", *page[1].NationalID)
	assert.False(t, page[0].Processed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchPage_Empty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("FROM agro.staging_benefits").
		WithArgs("PLANTAS", int64(0), 500).
		WillReturnRows(pgxmock.NewRows(pageColumns))

	page, err := NewReader(mock).FetchPage(context.Background(), "PLANTAS", 0, 500)
	assert.NoError(t, err)
	assert.Empty(t, page)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkProcessed(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("UPDATE agro.staging_benefits SET processed = true, error = NULL").
		WithArgs([]int64{1, 2, 3}).
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))

	assert.NoError(t, NewReader(mock).MarkProcessed(context.Background(), []int64{1, 2, 3}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkProcessed_NoIDs(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	// No statement expected.
	assert.NoError(t, NewReader(mock).MarkProcessed(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkFailed(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("UPDATE agro.staging_benefits SET processed = true, error =").
		WithArgs("missing national id", int64(7)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	assert.NoError(t, NewReader(mock).MarkFailed(context.Background(), 7, "missing national id"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClearErrors(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("SET processed = false, error = NULL").
		WithArgs("MECANIZACION").
		WillReturnResult(pgxmock.NewResult("UPDATE", 5))

	n, err := NewReader(mock).ClearErrors(context.Background(), "MECANIZACION")
	assert.NoError(t, err)
	assert.Equal(t, int64(5), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountByState(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("FILTER").
		WithArgs("FERTILIZANTES").
		WillReturnRows(pgxmock.NewRows([]string{"pending", "succeeded", "failed"}).
			AddRow(int64(10), int64(88), int64(2)))

	c, err := NewReader(mock).CountByState(context.Background(), "FERTILIZANTES")
	require.NoError(t, err)
	assert.Equal(t, Counts{Pending: 10, Succeeded: 88, Failed: 2}, c)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountByState_Error(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("FILTER").
		WithArgs("SEMILLAS").
		WillReturnError(fmt.Errorf("conn closed"))

	_, err = NewReader(mock).CountByState(context.Background(), "SEMILLAS")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "count by state")
	assert.NoError(t, mock.ExpectationsWereMet())
}
