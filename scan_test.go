package odbcscan

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// ordersCatalog scripts the catalog and data of an "orders" table.
func ordersCatalog(f *fakeAPI) {
	f.tables = []string{"orders"}
	f.scriptTable("orders",
		columnsRow("id", SQL_INTEGER, 10, 0, SQL_NO_NULLS),
		columnsRow("name", SQL_VARCHAR, 50, 0, 1),
		columnsRow("amount", SQL_DECIMAL, 10, 2, 1),
	)
	f.results[`SELECT "id", "name", "amount" FROM "orders"`] = ordersResult()
}

func TestBindScan(t *testing.T) {
	f := newFakeAPI()
	ordersCatalog(f)

	params := NewConnectionParams("testdsn", "", "", 0, false)
	b, err := BindScan(params, "orders", ScanOptions{}, withAPI(f))
	require.NoError(t, err)

	require.Equal(t, []string{"id", "name", "amount"}, b.ColumnNames())
	require.Equal(t, []ColumnType{{ID: TypeInteger}, Varchar, Decimal(10, 2)}, b.ColumnTypes())
	require.NotNil(t, b.TableInfo())
	require.Equal(t, 1, b.MaxThreads())
	require.Equal(t, "orders (testdsn)", b.Describe())

	// The bind connection is short-lived.
	require.Equal(t, 1, f.disconnects)
}

func TestBindScanAllVarchar(t *testing.T) {
	f := newFakeAPI()
	ordersCatalog(f)

	params := NewConnectionParams("testdsn", "", "", 0, false)
	b, err := BindScan(params, "orders", ScanOptions{AllVarchar: true}, withAPI(f))
	require.NoError(t, err)
	require.Equal(t, []ColumnType{Varchar, Varchar, Varchar}, b.ColumnTypes())
}

func TestScanTable(t *testing.T) {
	f := newFakeAPI()
	ordersCatalog(f)

	params := NewConnectionParams("testdsn", "", "", 0, false)
	state, err := Scan(params, "orders", ScanOptions{}, withAPI(f))
	require.NoError(t, err)
	defer state.Close()

	batch, err := state.Next()
	require.NoError(t, err)
	require.NotNil(t, batch)
	require.Equal(t, 2, batch.Cardinality())
	require.Equal(t, 3, batch.ColumnCount())
	require.Equal(t, "amount", batch.ColumnName(2))
	require.Equal(t, int64(1250), batch.Column(2).Int64(0))

	batch, err = state.Next()
	require.NoError(t, err)
	require.Nil(t, batch)
}

func TestScanBatchCapacity(t *testing.T) {
	f := newFakeAPI()
	ordersCatalog(f)

	params := NewConnectionParams("testdsn", "", "", 0, false)
	b, err := BindScan(params, "orders", ScanOptions{}, withAPI(f))
	require.NoError(t, err)

	state, err := NewScanState(b, WithBatchCapacity(1))
	require.NoError(t, err)
	defer state.Close()

	var rows int
	for {
		batch, err := state.Next()
		require.NoError(t, err)
		if batch == nil {
			break
		}
		require.Equal(t, 1, batch.Cardinality())
		rows += batch.Cardinality()
	}
	require.Equal(t, 2, rows)
}

func TestScanProjection(t *testing.T) {
	f := newFakeAPI()
	ordersCatalog(f)
	f.results[`SELECT "name", NULL FROM "orders"`] = &fakeResult{
		cols: []columnDesc{
			{Name: "name", DataType: SQL_VARCHAR, ColumnSize: 50},
			{Name: "", DataType: SQL_VARCHAR},
		},
		rows: [][]interface{}{{"a", nil}},
	}

	params := NewConnectionParams("testdsn", "", "", 0, false)
	b, err := BindScan(params, "orders", ScanOptions{}, withAPI(f))
	require.NoError(t, err)

	state, err := NewScanState(b, WithProjection([]int{1, -1}))
	require.NoError(t, err)
	defer state.Close()

	batch, err := state.Next()
	require.NoError(t, err)
	require.NotNil(t, batch)
	require.Equal(t, 1, batch.Cardinality())
	require.Equal(t, "name", batch.ColumnName(0))
	require.Equal(t, "rowid", batch.ColumnName(1))
	require.Equal(t, "a", batch.Column(0).String(0))
	require.True(t, batch.Column(1).IsNull(0))
}

func TestScanSharedConnection(t *testing.T) {
	f := newFakeAPI()
	ordersCatalog(f)

	params := NewConnectionParams("testdsn", "", "", 0, false)
	b, err := BindScan(params, "orders", ScanOptions{}, withAPI(f))
	require.NoError(t, err)

	conn := testConnect(t, f)
	state, err := NewScanState(b, WithSharedConnection(conn))
	require.NoError(t, err)

	batch, err := state.Next()
	require.NoError(t, err)
	require.Equal(t, 2, batch.Cardinality())

	// Closing the state leaves the shared connection open.
	state.Close()
	require.True(t, conn.IsOpen())
}

// A statement with no result columns binds as a DDL scan: it executes
// once at bind time and the scan surfaces a single success row.
func TestQueryDDL(t *testing.T) {
	f := newFakeAPI()
	params := NewConnectionParams("testdsn", "", "", 0, false)

	b, err := BindQuery(params, "CREATE TABLE t (id INTEGER)", ScanOptions{}, withAPI(f))
	require.NoError(t, err)
	require.Equal(t, []string{"Success"}, b.ColumnNames())
	require.Equal(t, []ColumnType{{ID: TypeBoolean}}, b.ColumnTypes())
	require.Equal(t, []string{"CREATE TABLE t (id INTEGER)"}, f.executedQueries)

	state, err := NewScanState(b)
	require.NoError(t, err)
	defer state.Close()

	batch, err := state.Next()
	require.NoError(t, err)
	require.NotNil(t, batch)
	require.Equal(t, 1, batch.Cardinality())
	require.True(t, batch.Column(0).Bool(0))

	batch, err = state.Next()
	require.NoError(t, err)
	require.Nil(t, batch)

	// Executed exactly once, at bind.
	require.Equal(t, []string{"CREATE TABLE t (id INTEGER)"}, f.executedQueries)
}

func TestQueryResultSet(t *testing.T) {
	f := newFakeAPI()
	f.results["SELECT id, name FROM t"] = scalarResult()
	params := NewConnectionParams("testdsn", "", "", 0, false)

	state, err := Query(params, "SELECT id, name FROM t", ScanOptions{}, withAPI(f))
	require.NoError(t, err)
	defer state.Close()

	batch, err := state.Next()
	require.NoError(t, err)
	require.NotNil(t, batch)
	require.Equal(t, 2, batch.Cardinality())
	require.Equal(t, "id", batch.ColumnName(0))
	require.Equal(t, int32(1), batch.Column(0).Int32(0))
}

func TestQueryDescribeRedacted(t *testing.T) {
	f := newFakeAPI()
	params := NewConnectionParams("Driver=Foo;PWD=hunter2", "", "", 0, false)

	b, err := BindQuery(params, "CREATE TABLE t (id INTEGER)", ScanOptions{}, withAPI(f))
	require.NoError(t, err)
	require.Equal(t, "query (Connection String)", b.Describe())
}

func TestBuildScanSQL(t *testing.T) {
	b := &ScanBinding{
		table: `we"ird`,
		names: []string{"id", "name", "amount"},
	}
	require.Equal(t, `SELECT "id", "name", "amount" FROM "we""ird"`, buildScanSQL(b, nil))
	require.Equal(t, `SELECT "name", NULL, "id" FROM "we""ird"`, buildScanSQL(b, []int{1, -1, 0}))
}

func TestExec(t *testing.T) {
	f := newFakeAPI()
	params := NewConnectionParams("testdsn", "", "", 0, false)

	batch, err := Exec(params, "DELETE FROM t", withAPI(f))
	require.NoError(t, err)
	require.Equal(t, 1, batch.Cardinality())
	require.True(t, batch.Column(0).Bool(0))
	require.Equal(t, []string{"DELETE FROM t"}, f.executedQueries)
	require.Equal(t, 1, f.disconnects)

	f.execFail["DELETE FROM locked"] = true
	_, err = Exec(params, "DELETE FROM locked", withAPI(f))
	require.Error(t, err)
	require.True(t, IsError(err, ErrExec))
}
