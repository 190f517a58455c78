package query

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"athena-demo/internal/domain"
	"athena-demo/internal/testutil"
)

func TestFormatResult_DropsHeader(t *testing.T) {
	for n := 0; n <= 3; n++ {
		rows := make([][]string, n)
		for i := range rows {
			rows[i] = []string{"Condo", "500"}
		}
		rs := testutil.RawResult([]string{"property_type", "price"}, rows...)

		got := FormatResult(rs)
		assert.Len(t, got.Rows, n, "N data rows + header should give N rows")
		assert.Equal(t, []string{"property_type", "price"}, got.Columns)
	}
}

func TestFormatResult_Idempotent(t *testing.T) {
	rs := testutil.RawResult([]string{"average_price"}, []string{"200.0"}, []string{"300.5"})

	first := FormatResult(rs)
	second := FormatResult(rs)
	assert.Equal(t, first, second)
	assert.Len(t, rs.Rows, 3, "input is not modified")
}

func TestFormatResult_UnwrapsCells(t *testing.T) {
	rs := &domain.ResultSet{
		Columns: []domain.ColumnInfo{
			{Name: "col_a", Label: "a"},
			{Name: "b"},
		},
		Rows: []domain.ResultRow{
			{testutil.Str("a"), testutil.Str("b")},
			{testutil.Str("x"), nil},
		},
	}

	got := FormatResult(rs)
	assert.Equal(t, []string{"a", "b"}, got.Columns, "label wins over name")
	assert.Equal(t, [][]string{{"x", ""}}, got.Rows, "NULL becomes empty string")
}

func TestFormatResult_Empty(t *testing.T) {
	got := FormatResult(nil)
	assert.Empty(t, got.Columns)
	assert.Empty(t, got.Rows)

	got = FormatResult(&domain.ResultSet{})
	assert.NotNil(t, got.Rows)
	assert.Empty(t, got.Rows)
}

func TestScalarFloat(t *testing.T) {
	v, err := ScalarFloat(&domain.Table{Rows: [][]string{{"200.0"}}})
	require.NoError(t, err)
	assert.InDelta(t, 200.0, v, 1e-9)

	v, err = ScalarFloat(&domain.Table{Rows: [][]string{{""}}})
	require.NoError(t, err)
	assert.True(t, math.IsNaN(v))

	v, err = ScalarFloat(&domain.Table{})
	require.NoError(t, err)
	assert.True(t, math.IsNaN(v))

	_, err = ScalarFloat(&domain.Table{Rows: [][]string{{"abc"}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse scalar result")
}
