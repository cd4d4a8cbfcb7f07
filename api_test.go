package odbcscan

import (
	"strings"
	"time"
	"unsafe"
)

// fakeResult is a scripted result set. Cells are Go values: nil (NULL),
// string, []byte, int64, float64, bool, time.Time.
type fakeResult struct {
	cols []columnDesc
	rows [][]interface{}
}

type fakeStmt struct {
	query    string
	result   *fakeResult
	executed bool
	rowIdx   int
	offsets  map[int]int
	bound    map[int][]byte
	freed    bool
}

// fakeAPI is a scripted odbcAPI standing in for a live driver manager.
type fakeAPI struct {
	nextHandle uintptr
	stmts      map[SQLHANDLE]*fakeStmt

	// scripted behavior
	diag            string
	connectFail     bool
	accessModeFail  bool
	prepareFail     map[string]bool
	execFail        map[string]bool
	results         map[string]*fakeResult
	tables          []string
	views           []string
	sysViews        []string
	sysViewErr      bool
	columnsByTable  map[string]*fakeResult
	pksByTable      map[string][]string
	noTotal         bool

	// observations
	executedQueries []string
	accessModeSet   bool
	loginTimeout    uintptr
	disconnects     int
	connected       bool
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		stmts:          make(map[SQLHANDLE]*fakeStmt),
		prepareFail:    make(map[string]bool),
		execFail:       make(map[string]bool),
		results:        make(map[string]*fakeResult),
		columnsByTable: make(map[string]*fakeResult),
		pksByTable:     make(map[string][]string),
		diag:           "[HY000] scripted failure",
	}
}

func (f *fakeAPI) AllocHandle(handleType SQLSMALLINT, input SQLHANDLE) (SQLHANDLE, SQLRETURN) {
	f.nextHandle++
	h := SQLHANDLE(f.nextHandle)
	if handleType == SQL_HANDLE_STMT {
		f.stmts[h] = &fakeStmt{rowIdx: -1, offsets: make(map[int]int), bound: make(map[int][]byte)}
	}
	return h, SQL_SUCCESS
}

func (f *fakeAPI) FreeHandle(handleType SQLSMALLINT, handle SQLHANDLE) SQLRETURN {
	if st, ok := f.stmts[handle]; ok {
		st.freed = true
	}
	return SQL_SUCCESS
}

func (f *fakeAPI) SetEnvAttr(env SQLHANDLE, attr SQLINTEGER, value uintptr) SQLRETURN {
	return SQL_SUCCESS
}

func (f *fakeAPI) SetConnectAttr(dbc SQLHANDLE, attr SQLINTEGER, value uintptr) SQLRETURN {
	switch attr {
	case SQL_ATTR_LOGIN_TIMEOUT:
		f.loginTimeout = value
	case SQL_ATTR_ACCESS_MODE:
		if f.accessModeFail {
			return SQL_ERROR
		}
		f.accessModeSet = true
	}
	return SQL_SUCCESS
}

func (f *fakeAPI) DriverConnect(dbc SQLHANDLE, connStr string) SQLRETURN {
	if f.connectFail {
		return SQL_ERROR
	}
	f.connected = true
	return SQL_SUCCESS
}

func (f *fakeAPI) Connect(dbc SQLHANDLE, dsn, username, password string) SQLRETURN {
	if f.connectFail {
		return SQL_ERROR
	}
	f.connected = true
	return SQL_SUCCESS
}

func (f *fakeAPI) Disconnect(dbc SQLHANDLE) SQLRETURN {
	f.disconnects++
	return SQL_SUCCESS
}

func (f *fakeAPI) Prepare(stmt SQLHANDLE, query string) SQLRETURN {
	if f.prepareFail[query] {
		return SQL_ERROR
	}
	f.stmts[stmt].query = query
	return SQL_SUCCESS
}

func (f *fakeAPI) Execute(stmt SQLHANDLE) SQLRETURN {
	st := f.stmts[stmt]
	if f.execFail[st.query] {
		return SQL_ERROR
	}
	f.executedQueries = append(f.executedQueries, st.query)
	rs, ok := f.results[st.query]
	if !ok {
		// No scripted rows: a statement with no result set.
		rs = &fakeResult{}
	}
	st.result = rs
	st.executed = true
	st.rowIdx = -1
	return SQL_SUCCESS
}

func (f *fakeAPI) ExecDirect(stmt SQLHANDLE, query string) SQLRETURN {
	if f.execFail[query] {
		return SQL_ERROR
	}
	f.executedQueries = append(f.executedQueries, query)
	return SQL_SUCCESS
}

func (f *fakeAPI) Fetch(stmt SQLHANDLE) SQLRETURN {
	st := f.stmts[stmt]
	if st.result == nil {
		return SQL_ERROR
	}
	st.rowIdx++
	st.offsets = make(map[int]int)
	if st.rowIdx >= len(st.result.rows) {
		return SQL_NO_DATA
	}
	return SQL_SUCCESS
}

func (f *fakeAPI) NumResultCols(stmt SQLHANDLE) (int, SQLRETURN) {
	st := f.stmts[stmt]
	if st.result == nil {
		return 0, SQL_ERROR
	}
	return len(st.result.cols), SQL_SUCCESS
}

func (f *fakeAPI) DescribeCol(stmt SQLHANDLE, col int) (columnDesc, SQLRETURN) {
	st := f.stmts[stmt]
	if st.result == nil || col < 1 || col > len(st.result.cols) {
		return columnDesc{}, SQL_ERROR
	}
	return st.result.cols[col-1], SQL_SUCCESS
}

func (f *fakeAPI) GetData(stmt SQLHANDLE, col int, cType SQLSMALLINT, buf []byte) (SQLLEN, SQLRETURN) {
	st := f.stmts[stmt]
	if st.result == nil || st.rowIdx < 0 || st.rowIdx >= len(st.result.rows) {
		return 0, SQL_ERROR
	}
	row := st.result.rows[st.rowIdx]
	if col < 1 || col > len(row) {
		return 0, SQL_ERROR
	}
	cell := row[col-1]
	if cell == nil {
		return SQL_NULL_DATA, SQL_SUCCESS
	}

	switch cType {
	case SQL_C_CHAR:
		s, ok := cell.(string)
		if !ok {
			return 0, SQL_ERROR
		}
		return f.varlenRead(st, col, []byte(s), buf, 1)
	case SQL_C_BINARY:
		b, ok := cell.([]byte)
		if !ok {
			return 0, SQL_ERROR
		}
		return f.varlenRead(st, col, b, buf, 0)
	case SQL_C_BIT:
		v := cell.(bool)
		if v {
			buf[0] = 1
		} else {
			buf[0] = 0
		}
		return 1, SQL_SUCCESS
	case SQL_C_STINYINT:
		buf[0] = byte(int8(cell.(int64)))
		return 1, SQL_SUCCESS
	case SQL_C_SSHORT:
		*(*int16)(unsafe.Pointer(&buf[0])) = int16(cell.(int64))
		return 2, SQL_SUCCESS
	case SQL_C_SLONG:
		*(*int32)(unsafe.Pointer(&buf[0])) = int32(cell.(int64))
		return 4, SQL_SUCCESS
	case SQL_C_SBIGINT:
		*(*int64)(unsafe.Pointer(&buf[0])) = cell.(int64)
		return 8, SQL_SUCCESS
	case SQL_C_FLOAT:
		*(*float32)(unsafe.Pointer(&buf[0])) = float32(cell.(float64))
		return 4, SQL_SUCCESS
	case SQL_C_DOUBLE:
		*(*float64)(unsafe.Pointer(&buf[0])) = cell.(float64)
		return 8, SQL_SUCCESS
	case SQL_C_TYPE_TIMESTAMP:
		copy(buf, TimestampBufferFromTime(cell.(time.Time)))
		return SQLLEN(unsafe.Sizeof(sqlTimestamp{})), SQL_SUCCESS
	case SQL_C_TYPE_DATE:
		t := cell.(time.Time).UTC()
		d := (*sqlDate)(unsafe.Pointer(&buf[0]))
		d.Year = SQLSMALLINT(t.Year())
		d.Month = SQLUSMALLINT(t.Month())
		d.Day = SQLUSMALLINT(t.Day())
		return SQLLEN(unsafe.Sizeof(sqlDate{})), SQL_SUCCESS
	case SQL_C_TYPE_TIME:
		t := cell.(time.Time).UTC()
		tt := (*sqlTime)(unsafe.Pointer(&buf[0]))
		tt.Hour = SQLUSMALLINT(t.Hour())
		tt.Minute = SQLUSMALLINT(t.Minute())
		tt.Second = SQLUSMALLINT(t.Second())
		return SQLLEN(unsafe.Sizeof(sqlTime{})), SQL_SUCCESS
	default:
		return 0, SQL_ERROR
	}
}

// varlenRead mimics driver behavior for long values: the window fills
// completely on partial reads, the indicator carries either the exact
// residual length or SQL_NO_TOTAL.
func (f *fakeAPI) varlenRead(st *fakeStmt, col int, data, buf []byte, term int) (SQLLEN, SQLRETURN) {
	off := st.offsets[col]
	remaining := len(data) - off
	if remaining == 0 && off > 0 {
		return 0, SQL_NO_DATA
	}
	payloadCap := len(buf) - term
	if payloadCap < 0 {
		return 0, SQL_ERROR
	}
	if remaining <= payloadCap {
		copy(buf, data[off:])
		if term > 0 {
			buf[remaining] = 0
		}
		st.offsets[col] = off + remaining
		return SQLLEN(remaining), SQL_SUCCESS
	}
	copy(buf, data[off:off+payloadCap])
	if term > 0 {
		buf[payloadCap] = 0
	}
	st.offsets[col] = off + payloadCap
	if f.noTotal {
		return SQL_NO_TOTAL, SQL_SUCCESS_WITH_INFO
	}
	return SQLLEN(remaining), SQL_SUCCESS_WITH_INFO
}

func (f *fakeAPI) BindParameter(stmt SQLHANDLE, param int, cType, sqlType SQLSMALLINT, buf []byte, indicator *SQLLEN) SQLRETURN {
	f.stmts[stmt].bound[param] = buf
	return SQL_SUCCESS
}

func (f *fakeAPI) FreeStmt(stmt SQLHANDLE, option SQLUSMALLINT) SQLRETURN {
	if st, ok := f.stmts[stmt]; ok && option == SQL_CLOSE {
		st.result = nil
		st.executed = false
		st.rowIdx = -1
	}
	return SQL_SUCCESS
}

func (f *fakeAPI) Tables(stmt SQLHANDLE, table, tableType string) SQLRETURN {
	var names []string
	switch tableType {
	case "TABLE":
		names = f.tables
	case "VIEW":
		names = f.views
	case "SYSTEM VIEW":
		if f.sysViewErr {
			return SQL_ERROR
		}
		names = f.sysViews
	}
	rs := &fakeResult{cols: catalogCols(5)}
	for _, name := range names {
		if table != "" && !strings.EqualFold(table, name) {
			continue
		}
		rs.rows = append(rs.rows, []interface{}{nil, nil, name, "TABLE", nil})
	}
	st := f.stmts[stmt]
	st.result = rs
	st.rowIdx = -1
	return SQL_SUCCESS
}

func (f *fakeAPI) Columns(stmt SQLHANDLE, table, column string) SQLRETURN {
	rs, ok := f.columnsByTable[table]
	if !ok {
		rs = &fakeResult{cols: catalogCols(11)}
	}
	if column != "" {
		filtered := &fakeResult{cols: rs.cols}
		for _, row := range rs.rows {
			if name, _ := row[catColColumnName-1].(string); strings.EqualFold(name, column) {
				filtered.rows = append(filtered.rows, row)
			}
		}
		rs = filtered
	}
	st := f.stmts[stmt]
	st.result = rs
	st.rowIdx = -1
	return SQL_SUCCESS
}

func (f *fakeAPI) PrimaryKeys(stmt SQLHANDLE, table string) SQLRETURN {
	rs := &fakeResult{cols: catalogCols(6)}
	for _, key := range f.pksByTable[table] {
		rs.rows = append(rs.rows, []interface{}{nil, nil, table, key, nil, nil})
	}
	st := f.stmts[stmt]
	st.result = rs
	st.rowIdx = -1
	return SQL_SUCCESS
}

func (f *fakeAPI) DiagText(handleType SQLSMALLINT, handle SQLHANDLE) string {
	return f.diag
}

func catalogCols(n int) []columnDesc {
	cols := make([]columnDesc, n)
	for i := range cols {
		cols[i] = columnDesc{Name: "CAT", DataType: SQL_VARCHAR}
	}
	return cols
}

// columnsRow shapes one SQLColumns result row.
func columnsRow(name string, sqlType SQLSMALLINT, size, digits int64, nullable SQLSMALLINT) []interface{} {
	return []interface{}{
		nil, nil, nil,
		name,
		int64(sqlType),
		nil,
		size,
		nil,
		digits,
		nil,
		int64(nullable),
	}
}

// scriptTable registers a table's SQLColumns result.
func (f *fakeAPI) scriptTable(table string, rows ...[]interface{}) {
	f.columnsByTable[table] = &fakeResult{cols: catalogCols(11), rows: rows}
}
