package odbcscan

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"
)

// Statement wraps one prepared remote statement and its result cursor.
// The cursor moves prepared -> executed -> exhausted; the first Step
// triggers execution because many drivers cannot report result metadata
// before executing. A Statement is never reused across unrelated queries
// and must not be shared across goroutines.
type Statement struct {
	conn   *Connection
	api    odbcAPI
	handle SQLHANDLE
	query  string

	executed  bool
	exhausted bool
	cols      []columnDesc
	params    []*paramBinding

	closed int32
	mu     sync.Mutex
}

// paramBinding keeps a bound parameter's buffer and indicator alive and
// address-stable until execution.
type paramBinding struct {
	buf       []byte
	indicator SQLLEN
}

// newStatement wraps a prepared native statement handle.
func newStatement(conn *Connection, handle SQLHANDLE, query string) *Statement {
	st := &Statement{
		conn:   conn,
		api:    conn.api,
		handle: handle,
		query:  query,
	}
	runtime.SetFinalizer(st, (*Statement).finalize)
	return st
}

func (st *Statement) finalize() {
	st.Close()
}

// Query returns the statement text.
func (st *Statement) Query() string {
	return st.query
}

// IsOpen reports whether the statement still holds its native handle.
func (st *Statement) IsOpen() bool {
	return atomic.LoadInt32(&st.closed) == 0
}

// execute runs the statement and captures result metadata.
func (st *Statement) execute() error {
	ret := st.api.Execute(st.handle)
	if ret == SQL_NO_DATA {
		// Statement produced no result set (DDL/DML).
		st.executed = true
		st.exhausted = true
		return nil
	}
	if !succeeded(ret) {
		diag := st.api.DiagText(SQL_HANDLE_STMT, st.handle)
		return driverError(ErrExec, fmt.Sprintf("execute query %q", st.query), diag)
	}
	st.executed = true
	return st.captureMetadata()
}

func (st *Statement) captureMetadata() error {
	count, ret := st.api.NumResultCols(st.handle)
	if !succeeded(ret) {
		diag := st.api.DiagText(SQL_HANDLE_STMT, st.handle)
		return driverError(ErrDriver, "describe result set", diag)
	}
	st.cols = make([]columnDesc, count)
	for i := 0; i < count; i++ {
		desc, ret := st.api.DescribeCol(st.handle, i+1)
		if !succeeded(ret) {
			diag := st.api.DiagText(SQL_HANDLE_STMT, st.handle)
			return driverError(ErrDriver, fmt.Sprintf("describe column %d", i+1), diag)
		}
		st.cols[i] = desc
	}
	return nil
}

// ensureExecuted forces execution so metadata accessors work before the
// first Step.
func (st *Statement) ensureExecuted() error {
	if !st.IsOpen() {
		return NewError(ErrGeneric, "statement is closed")
	}
	if st.executed {
		return nil
	}
	return st.execute()
}

// Step advances the cursor one row. The first call executes the
// statement. Returns false without error once the result set is
// exhausted; every later call keeps returning false.
func (st *Statement) Step() (bool, error) {
	if !st.IsOpen() {
		return false, NewError(ErrGeneric, "statement is closed")
	}
	if !st.executed {
		if err := st.execute(); err != nil {
			return false, err
		}
	}
	if st.exhausted {
		return false, nil
	}

	ret := st.api.Fetch(st.handle)
	if ret == SQL_NO_DATA {
		st.exhausted = true
		return false, nil
	}
	if !succeeded(ret) {
		diag := st.api.DiagText(SQL_HANDLE_STMT, st.handle)
		return false, driverError(ErrDriver, "fetch row", diag)
	}
	return true, nil
}

// ColumnCount returns the number of result columns, executing the
// statement first if needed.
func (st *Statement) ColumnCount() (int, error) {
	if err := st.ensureExecuted(); err != nil {
		return 0, err
	}
	return len(st.cols), nil
}

// ColumnName returns the name of result column col (0-based).
func (st *Statement) ColumnName(col int) (string, error) {
	if err := st.ensureExecuted(); err != nil {
		return "", err
	}
	return st.cols[col].Name, nil
}

// OdbcType returns the SQL type code of result column col (0-based).
func (st *Statement) OdbcType(col int) (SQLSMALLINT, error) {
	if err := st.ensureExecuted(); err != nil {
		return 0, err
	}
	return st.cols[col].DataType, nil
}

// columnDescAt returns the full driver metadata of column col (0-based).
func (st *Statement) columnDescAt(col int) columnDesc {
	return st.cols[col]
}

// getFixed reads a fixed-width value of size bytes. The bool result
// reports NULL.
func (st *Statement) getFixed(col int, cType SQLSMALLINT, size int) ([]byte, bool, error) {
	buf := make([]byte, size)
	indicator, ret := st.api.GetData(st.handle, col+1, cType, buf)
	if !succeeded(ret) {
		diag := st.api.DiagText(SQL_HANDLE_STMT, st.handle)
		return nil, false, driverError(ErrDriver, fmt.Sprintf("read column %d", col+1), diag)
	}
	if indicator == SQL_NULL_DATA {
		return nil, true, nil
	}
	return buf, false, nil
}

// GetBool reads a boolean value. Valid only while the cursor is on a row.
func (st *Statement) GetBool(col int) (bool, bool, error) {
	buf, isNull, err := st.getFixed(col, SQL_C_BIT, 1)
	if err != nil || isNull {
		return false, isNull, err
	}
	return buf[0] != 0, false, nil
}

// GetInt8 reads a tinyint value.
func (st *Statement) GetInt8(col int) (int8, bool, error) {
	buf, isNull, err := st.getFixed(col, SQL_C_STINYINT, 1)
	if err != nil || isNull {
		return 0, isNull, err
	}
	return int8(buf[0]), false, nil
}

// GetInt16 reads a smallint value.
func (st *Statement) GetInt16(col int) (int16, bool, error) {
	buf, isNull, err := st.getFixed(col, SQL_C_SSHORT, 2)
	if err != nil || isNull {
		return 0, isNull, err
	}
	return *(*int16)(unsafe.Pointer(&buf[0])), false, nil
}

// GetInt32 reads an integer value.
func (st *Statement) GetInt32(col int) (int32, bool, error) {
	buf, isNull, err := st.getFixed(col, SQL_C_SLONG, 4)
	if err != nil || isNull {
		return 0, isNull, err
	}
	return *(*int32)(unsafe.Pointer(&buf[0])), false, nil
}

// GetInt64 reads a bigint value.
func (st *Statement) GetInt64(col int) (int64, bool, error) {
	buf, isNull, err := st.getFixed(col, SQL_C_SBIGINT, 8)
	if err != nil || isNull {
		return 0, isNull, err
	}
	return *(*int64)(unsafe.Pointer(&buf[0])), false, nil
}

// GetFloat32 reads a float value.
func (st *Statement) GetFloat32(col int) (float32, bool, error) {
	buf, isNull, err := st.getFixed(col, SQL_C_FLOAT, 4)
	if err != nil || isNull {
		return 0, isNull, err
	}
	return *(*float32)(unsafe.Pointer(&buf[0])), false, nil
}

// GetFloat64 reads a double value.
func (st *Statement) GetFloat64(col int) (float64, bool, error) {
	buf, isNull, err := st.getFixed(col, SQL_C_DOUBLE, 8)
	if err != nil || isNull {
		return 0, isNull, err
	}
	return *(*float64)(unsafe.Pointer(&buf[0])), false, nil
}

// GetTimestamp reads a timestamp value.
func (st *Statement) GetTimestamp(col int) (time.Time, bool, error) {
	buf, isNull, err := st.getFixed(col, SQL_C_TYPE_TIMESTAMP, int(unsafe.Sizeof(sqlTimestamp{})))
	if err != nil || isNull {
		return time.Time{}, isNull, err
	}
	return TimeFromTimestampBuffer(buf), false, nil
}

// GetDate reads a date value.
func (st *Statement) GetDate(col int) (time.Time, bool, error) {
	buf, isNull, err := st.getFixed(col, SQL_C_TYPE_DATE, int(unsafe.Sizeof(sqlDate{})))
	if err != nil || isNull {
		return time.Time{}, isNull, err
	}
	return TimeFromDateBuffer(buf), false, nil
}

// GetTime reads a time-of-day value.
func (st *Statement) GetTime(col int) (time.Time, bool, error) {
	buf, isNull, err := st.getFixed(col, SQL_C_TYPE_TIME, int(unsafe.Sizeof(sqlTime{})))
	if err != nil || isNull {
		return time.Time{}, isNull, err
	}
	return TimeFromTimeBuffer(buf), false, nil
}

// GetString reads a text value through the grow-and-retry protocol.
func (st *Statement) GetString(col int) (string, bool, error) {
	data, isNull, err := readVarColumn(st.api, st.handle, col+1, SQL_C_CHAR)
	if err != nil || isNull {
		return "", isNull, err
	}
	return string(data), false, nil
}

// GetBytes reads a binary value through the grow-and-retry protocol.
func (st *Statement) GetBytes(col int) ([]byte, bool, error) {
	return readVarColumn(st.api, st.handle, col+1, SQL_C_BINARY)
}

// BindInt32 binds a 32-bit integer parameter (1-based index).
func (st *Statement) BindInt32(idx int, v int32) error {
	buf := make([]byte, 4)
	*(*int32)(unsafe.Pointer(&buf[0])) = v
	return st.bind(idx, SQL_C_SLONG, SQL_INTEGER, buf, SQLLEN(len(buf)))
}

// BindInt64 binds a 64-bit integer parameter (1-based index).
func (st *Statement) BindInt64(idx int, v int64) error {
	buf := make([]byte, 8)
	*(*int64)(unsafe.Pointer(&buf[0])) = v
	return st.bind(idx, SQL_C_SBIGINT, SQL_BIGINT, buf, SQLLEN(len(buf)))
}

// BindDouble binds a double parameter (1-based index).
func (st *Statement) BindDouble(idx int, v float64) error {
	buf := make([]byte, 8)
	*(*float64)(unsafe.Pointer(&buf[0])) = v
	return st.bind(idx, SQL_C_DOUBLE, SQL_DOUBLE, buf, SQLLEN(len(buf)))
}

// BindText binds a text parameter (1-based index).
func (st *Statement) BindText(idx int, v string) error {
	buf := make([]byte, len(v)+1)
	copy(buf, v)
	return st.bind(idx, SQL_C_CHAR, SQL_VARCHAR, buf, SQLLEN(len(v)))
}

// BindBlob binds a binary parameter (1-based index).
func (st *Statement) BindBlob(idx int, v []byte) error {
	buf := make([]byte, len(v))
	copy(buf, v)
	return st.bind(idx, SQL_C_BINARY, SQL_VARBINARY, buf, SQLLEN(len(v)))
}

// BindTimestamp binds a timestamp parameter (1-based index).
func (st *Statement) BindTimestamp(idx int, v time.Time) error {
	buf := TimestampBufferFromTime(v)
	return st.bind(idx, SQL_C_TYPE_TIMESTAMP, SQL_TYPE_TIMESTAMP, buf, SQLLEN(len(buf)))
}

// BindNull binds a NULL parameter (1-based index).
func (st *Statement) BindNull(idx int) error {
	return st.bind(idx, SQL_C_CHAR, SQL_VARCHAR, nil, SQL_NULL_DATA)
}

// BindValue binds a Go value by dynamic type. Composite values must be
// serialized to text or bytes by the caller first.
func (st *Statement) BindValue(idx int, v interface{}) error {
	switch val := v.(type) {
	case nil:
		return st.BindNull(idx)
	case bool:
		n := int32(0)
		if val {
			n = 1
		}
		return st.BindInt32(idx, n)
	case int:
		return st.BindInt64(idx, int64(val))
	case int32:
		return st.BindInt32(idx, val)
	case int64:
		return st.BindInt64(idx, val)
	case float64:
		return st.BindDouble(idx, val)
	case string:
		return st.BindText(idx, val)
	case []byte:
		return st.BindBlob(idx, val)
	case time.Time:
		return st.BindTimestamp(idx, val)
	default:
		return NewError(ErrBind, fmt.Sprintf("cannot bind value of type %T", v))
	}
}

func (st *Statement) bind(idx int, cType, sqlType SQLSMALLINT, buf []byte, indicator SQLLEN) error {
	if !st.IsOpen() {
		return NewError(ErrGeneric, "statement is closed")
	}
	pb := &paramBinding{buf: buf, indicator: indicator}
	if ret := st.api.BindParameter(st.handle, idx, cType, sqlType, pb.buf, &pb.indicator); !succeeded(ret) {
		diag := st.api.DiagText(SQL_HANDLE_STMT, st.handle)
		return driverError(ErrBind, fmt.Sprintf("bind parameter %d", idx), diag)
	}
	st.params = append(st.params, pb)
	return nil
}

// Reset closes the open cursor and returns the statement to its
// unexecuted state. Best-effort and idempotent.
func (st *Statement) Reset() {
	if !st.IsOpen() {
		return
	}
	st.mu.Lock()
	defer st.mu.Unlock()

	st.api.FreeStmt(st.handle, SQL_CLOSE)
	st.executed = false
	st.exhausted = false
	st.cols = nil
}

// Close releases the native statement handle. Safe to call more than
// once; cleanup is best-effort and never returns an error.
func (st *Statement) Close() {
	if !atomic.CompareAndSwapInt32(&st.closed, 0, 1) {
		return
	}
	runtime.SetFinalizer(st, nil)

	st.mu.Lock()
	defer st.mu.Unlock()

	st.api.FreeStmt(st.handle, SQL_CLOSE)
	st.api.FreeHandle(SQL_HANDLE_STMT, st.handle)
	st.params = nil
}
