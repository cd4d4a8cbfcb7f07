package odbcscan

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func ordersResult() *fakeResult {
	return &fakeResult{
		cols: []columnDesc{
			{Name: "id", DataType: SQL_INTEGER, ColumnSize: 10},
			{Name: "name", DataType: SQL_VARCHAR, ColumnSize: 50},
			{Name: "amount", DataType: SQL_DECIMAL, ColumnSize: 10, DecimalDigits: 2},
		},
		rows: [][]interface{}{
			{int64(1), "a", "12.50"},
			{int64(2), nil, "0.00"},
		},
	}
}

func ordersTypes() []ColumnType {
	return []ColumnType{
		{ID: TypeInteger},
		Varchar,
		Decimal(10, 2),
	}
}

func TestMaterializerFillBatch(t *testing.T) {
	f := newFakeAPI()
	f.results["SELECT * FROM orders"] = ordersResult()
	conn := testConnect(t, f)

	st, err := conn.Prepare("SELECT * FROM orders")
	require.NoError(t, err)
	defer st.Close()

	mat, err := NewMaterializer(st, ordersTypes(), nil, false)
	require.NoError(t, err)

	batch := NewBatch([]string{"id", "name", "amount"}, ordersTypes(), 2048)
	require.NoError(t, mat.FillBatch(batch))
	require.Equal(t, 2, batch.Cardinality())

	ids := batch.Column(0)
	require.Equal(t, int32(1), ids.Int32(0))
	require.Equal(t, int32(2), ids.Int32(1))

	names := batch.Column(1)
	require.Equal(t, "a", names.String(0))
	require.False(t, names.IsNull(0))
	require.True(t, names.IsNull(1))

	// DECIMAL(10,2) needs more than 9 digits, so it stores scaled int64.
	amounts := batch.Column(2)
	require.Equal(t, int64(1250), amounts.Int64(0))
	require.Equal(t, int64(0), amounts.Int64(1))

	// Drained: the next fill produces an empty batch.
	batch = NewBatch([]string{"id", "name", "amount"}, ordersTypes(), 2048)
	require.NoError(t, mat.FillBatch(batch))
	require.Equal(t, 0, batch.Cardinality())
}

func TestMaterializerPartialBatches(t *testing.T) {
	rs := &fakeResult{cols: []columnDesc{{Name: "id", DataType: SQL_INTEGER}}}
	for i := 0; i < 5; i++ {
		rs.rows = append(rs.rows, []interface{}{int64(i)})
	}
	f := newFakeAPI()
	f.results["SELECT id FROM t"] = rs
	conn := testConnect(t, f)

	st, err := conn.Prepare("SELECT id FROM t")
	require.NoError(t, err)
	defer st.Close()

	types := []ColumnType{{ID: TypeInteger}}
	mat, err := NewMaterializer(st, types, nil, false)
	require.NoError(t, err)

	batch := NewBatch([]string{"id"}, types, 2)
	require.NoError(t, mat.FillBatch(batch))
	require.Equal(t, 2, batch.Cardinality())
	require.Equal(t, int32(0), batch.Column(0).Int32(0))

	batch = NewBatch([]string{"id"}, types, 2)
	require.NoError(t, mat.FillBatch(batch))
	require.Equal(t, 2, batch.Cardinality())
	require.Equal(t, int32(3), batch.Column(0).Int32(1))

	batch = NewBatch([]string{"id"}, types, 2)
	require.NoError(t, mat.FillBatch(batch))
	require.Equal(t, 1, batch.Cardinality())
	require.Equal(t, int32(4), batch.Column(0).Int32(0))
}

func TestMaterializerSchemaMismatch(t *testing.T) {
	f := newFakeAPI()
	f.results["SELECT * FROM orders"] = ordersResult()
	conn := testConnect(t, f)

	st, err := conn.Prepare("SELECT * FROM orders")
	require.NoError(t, err)
	defer st.Close()

	// The binding declared BIGINT but the driver now reports INTEGER.
	types := ordersTypes()
	types[0] = ColumnType{ID: TypeBigInt}
	_, err = NewMaterializer(st, types, nil, false)
	require.Error(t, err)
	require.True(t, IsError(err, ErrSchemaMismatch))
	require.Contains(t, err.Error(),
		`invalid type in column "id": column was declared as BIGINT, found INTEGER instead`)
	require.Contains(t, err.Error(), "all_varchar=true")
}

func TestMaterializerColumnCountMismatch(t *testing.T) {
	f := newFakeAPI()
	f.results["SELECT * FROM orders"] = ordersResult()
	conn := testConnect(t, f)

	st, err := conn.Prepare("SELECT * FROM orders")
	require.NoError(t, err)
	defer st.Close()

	_, err = NewMaterializer(st, ordersTypes()[:2], nil, false)
	require.Error(t, err)
	require.Contains(t, err.Error(), "result has 3 columns, expected 2")
}

// all_varchar loads every column as the driver's literal text rendering
// and skips type checks entirely.
func TestMaterializerAllVarchar(t *testing.T) {
	f := newFakeAPI()
	f.results["SELECT d FROM t"] = &fakeResult{
		cols: []columnDesc{{Name: "d", DataType: SQL_TYPE_DATE, ColumnSize: 10}},
		rows: [][]interface{}{{"2024-06-15"}},
	}
	conn := testConnect(t, f)

	st, err := conn.Prepare("SELECT d FROM t")
	require.NoError(t, err)
	defer st.Close()

	types := []ColumnType{Varchar}
	mat, err := NewMaterializer(st, types, nil, true)
	require.NoError(t, err)

	batch := NewBatch([]string{"d"}, types, 16)
	require.NoError(t, mat.FillBatch(batch))
	require.Equal(t, 1, batch.Cardinality())
	require.Equal(t, "2024-06-15", batch.Column(0).String(0))
}

// Decimal text that does not fit the declared precision becomes NULL
// instead of failing the scan.
func TestMaterializerDecimalOverflowToNull(t *testing.T) {
	f := newFakeAPI()
	f.results["SELECT amount FROM t"] = &fakeResult{
		cols: []columnDesc{{Name: "amount", DataType: SQL_DECIMAL, ColumnSize: 5, DecimalDigits: 2}},
		rows: [][]interface{}{
			{"999.99"},
			{"1000.00"},
			{"garbage"},
		},
	}
	conn := testConnect(t, f)

	st, err := conn.Prepare("SELECT amount FROM t")
	require.NoError(t, err)
	defer st.Close()

	types := []ColumnType{Decimal(5, 2)}
	mat, err := NewMaterializer(st, types, nil, false)
	require.NoError(t, err)

	batch := NewBatch([]string{"amount"}, types, 16)
	require.NoError(t, mat.FillBatch(batch))
	require.Equal(t, 3, batch.Cardinality())

	col := batch.Column(0)
	require.False(t, col.IsNull(0))
	require.Equal(t, int32(99999), col.Int32(0))
	require.True(t, col.IsNull(1))
	require.True(t, col.IsNull(2))
}

// Virtual columns never touch the driver and always come back NULL.
func TestMaterializerVirtualColumn(t *testing.T) {
	f := newFakeAPI()
	f.results[`SELECT NULL, "id" FROM t`] = &fakeResult{
		cols: []columnDesc{
			{Name: "", DataType: SQL_VARCHAR},
			{Name: "id", DataType: SQL_INTEGER},
		},
		rows: [][]interface{}{{nil, int64(7)}},
	}
	conn := testConnect(t, f)

	st, err := conn.Prepare(`SELECT NULL, "id" FROM t`)
	require.NoError(t, err)
	defer st.Close()

	types := []ColumnType{{ID: TypeBigInt}, {ID: TypeInteger}}
	mat, err := NewMaterializer(st, types, []bool{true, false}, false)
	require.NoError(t, err)

	batch := NewBatch([]string{"rowid", "id"}, types, 16)
	require.NoError(t, mat.FillBatch(batch))
	require.Equal(t, 1, batch.Cardinality())
	require.True(t, batch.Column(0).IsNull(0))
	require.Equal(t, int32(7), batch.Column(1).Int32(0))
}

func TestMaterializerUUID(t *testing.T) {
	f := newFakeAPI()
	f.results["SELECT u FROM t"] = &fakeResult{
		cols: []columnDesc{{Name: "u", DataType: SQL_GUID, ColumnSize: 36}},
		rows: [][]interface{}{
			{"6f2a3e8c-1b4d-4e5f-9a0b-123456789abc"},
			{"not-a-uuid"},
			{nil},
		},
	}
	conn := testConnect(t, f)

	st, err := conn.Prepare("SELECT u FROM t")
	require.NoError(t, err)
	defer st.Close()

	types := []ColumnType{{ID: TypeUUID}}
	mat, err := NewMaterializer(st, types, nil, false)
	require.NoError(t, err)

	batch := NewBatch([]string{"u"}, types, 16)
	require.NoError(t, mat.FillBatch(batch))
	require.Equal(t, 3, batch.Cardinality())

	col := batch.Column(0)
	require.Equal(t, "6f2a3e8c-1b4d-4e5f-9a0b-123456789abc", col.UUID(0).String())
	require.True(t, col.IsNull(1))
	require.True(t, col.IsNull(2))
}
