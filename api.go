package odbcscan

import (
	"runtime"
	"strings"
	"unsafe"
)

// sqlNTS mediates the SQL_NTS length sentinel through a variable: a direct
// constant conversion of the negative SQL_NTS to an unsigned type does not
// compile, while the runtime conversion keeps the same truncated bit pattern.
var sqlNTS = SQL_NTS

// columnDesc is the result-column metadata reported by the driver.
type columnDesc struct {
	Name          string
	DataType      SQLSMALLINT
	ColumnSize    SQLULEN
	DecimalDigits SQLSMALLINT
	Nullable      SQLSMALLINT
}

// odbcAPI is the boundary to the native driver manager. Every native call
// goes through this interface; tests substitute a scripted implementation.
type odbcAPI interface {
	AllocHandle(handleType SQLSMALLINT, input SQLHANDLE) (SQLHANDLE, SQLRETURN)
	FreeHandle(handleType SQLSMALLINT, handle SQLHANDLE) SQLRETURN
	SetEnvAttr(env SQLHANDLE, attr SQLINTEGER, value uintptr) SQLRETURN
	SetConnectAttr(dbc SQLHANDLE, attr SQLINTEGER, value uintptr) SQLRETURN
	DriverConnect(dbc SQLHANDLE, connStr string) SQLRETURN
	Connect(dbc SQLHANDLE, dsn, username, password string) SQLRETURN
	Disconnect(dbc SQLHANDLE) SQLRETURN
	Prepare(stmt SQLHANDLE, query string) SQLRETURN
	Execute(stmt SQLHANDLE) SQLRETURN
	ExecDirect(stmt SQLHANDLE, query string) SQLRETURN
	Fetch(stmt SQLHANDLE) SQLRETURN
	NumResultCols(stmt SQLHANDLE) (int, SQLRETURN)
	DescribeCol(stmt SQLHANDLE, col int) (columnDesc, SQLRETURN)
	GetData(stmt SQLHANDLE, col int, cType SQLSMALLINT, buf []byte) (SQLLEN, SQLRETURN)
	BindParameter(stmt SQLHANDLE, param int, cType, sqlType SQLSMALLINT, buf []byte, indicator *SQLLEN) SQLRETURN
	FreeStmt(stmt SQLHANDLE, option SQLUSMALLINT) SQLRETURN
	Tables(stmt SQLHANDLE, table, tableType string) SQLRETURN
	Columns(stmt SQLHANDLE, table, column string) SQLRETURN
	PrimaryKeys(stmt SQLHANDLE, table string) SQLRETURN
	DiagText(handleType SQLSMALLINT, handle SQLHANDLE) string
}

// defaultAPI loads the driver manager and returns the native binding.
func defaultAPI() (odbcAPI, error) {
	loadDriverManager()
	if !driverLibLoaded {
		return nil, driverLibError
	}
	return nativeAPI{}, nil
}

// nativeAPI implements odbcAPI over the dynamically loaded driver manager.
type nativeAPI struct{}

// cString returns a NUL-terminated byte buffer, or nil for the empty
// string (a NULL pointer at the ODBC level, meaning "no filter").
func cString(s string) []byte {
	if s == "" {
		return nil
	}
	b := make([]byte, len(s)+1)
	copy(b, s)
	return b
}

func bufPtr(b []byte) uintptr {
	if len(b) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&b[0]))
}

func toReturn(r uintptr) SQLRETURN {
	return SQLRETURN(int16(uint16(r)))
}

func (nativeAPI) AllocHandle(handleType SQLSMALLINT, input SQLHANDLE) (SQLHANDLE, SQLRETURN) {
	var out SQLHANDLE
	r := syscallN(funcSQLAllocHandle,
		uintptr(handleType),
		uintptr(input),
		uintptr(unsafe.Pointer(&out)))
	return out, toReturn(r)
}

func (nativeAPI) FreeHandle(handleType SQLSMALLINT, handle SQLHANDLE) SQLRETURN {
	return toReturn(syscallN(funcSQLFreeHandle, uintptr(handleType), uintptr(handle)))
}

func (nativeAPI) SetEnvAttr(env SQLHANDLE, attr SQLINTEGER, value uintptr) SQLRETURN {
	return toReturn(syscallN(funcSQLSetEnvAttr, uintptr(env), uintptr(attr), value, 0))
}

func (nativeAPI) SetConnectAttr(dbc SQLHANDLE, attr SQLINTEGER, value uintptr) SQLRETURN {
	return toReturn(syscallN(funcSQLSetConnectAttr, uintptr(dbc), uintptr(attr), value, 0))
}

func (nativeAPI) DriverConnect(dbc SQLHANDLE, connStr string) SQLRETURN {
	in := cString(connStr)
	// SQL_DRIVER_NOPROMPT; no window handle, no out-connection-string.
	r := syscallN(funcSQLDriverConnect,
		uintptr(dbc),
		0,
		bufPtr(in),
		uintptr(uint16(uint64(sqlNTS))),
		0, 0, 0,
		0)
	runtime.KeepAlive(in)
	return toReturn(r)
}

func (nativeAPI) Connect(dbc SQLHANDLE, dsn, username, password string) SQLRETURN {
	d, u, p := cString(dsn), cString(username), cString(password)
	nts := uintptr(uint16(uint64(sqlNTS)))
	r := syscallN(funcSQLConnect,
		uintptr(dbc),
		bufPtr(d), nts,
		bufPtr(u), nts,
		bufPtr(p), nts)
	runtime.KeepAlive(d)
	runtime.KeepAlive(u)
	runtime.KeepAlive(p)
	return toReturn(r)
}

func (nativeAPI) Disconnect(dbc SQLHANDLE) SQLRETURN {
	return toReturn(syscallN(funcSQLDisconnect, uintptr(dbc)))
}

func (nativeAPI) Prepare(stmt SQLHANDLE, query string) SQLRETURN {
	q := cString(query)
	r := syscallN(funcSQLPrepare, uintptr(stmt), bufPtr(q), uintptr(uint32(uint64(sqlNTS))))
	runtime.KeepAlive(q)
	return toReturn(r)
}

func (nativeAPI) Execute(stmt SQLHANDLE) SQLRETURN {
	return toReturn(syscallN(funcSQLExecute, uintptr(stmt)))
}

func (nativeAPI) ExecDirect(stmt SQLHANDLE, query string) SQLRETURN {
	q := cString(query)
	r := syscallN(funcSQLExecDirect, uintptr(stmt), bufPtr(q), uintptr(uint32(uint64(sqlNTS))))
	runtime.KeepAlive(q)
	return toReturn(r)
}

func (nativeAPI) Fetch(stmt SQLHANDLE) SQLRETURN {
	return toReturn(syscallN(funcSQLFetch, uintptr(stmt)))
}

func (nativeAPI) NumResultCols(stmt SQLHANDLE) (int, SQLRETURN) {
	var n SQLSMALLINT
	r := syscallN(funcSQLNumResultCols, uintptr(stmt), uintptr(unsafe.Pointer(&n)))
	return int(n), toReturn(r)
}

func (nativeAPI) DescribeCol(stmt SQLHANDLE, col int) (columnDesc, SQLRETURN) {
	var (
		name          [256]byte
		nameLen       SQLSMALLINT
		dataType      SQLSMALLINT
		columnSize    SQLULEN
		decimalDigits SQLSMALLINT
		nullable      SQLSMALLINT
	)
	r := syscallN(funcSQLDescribeCol,
		uintptr(stmt),
		uintptr(col),
		uintptr(unsafe.Pointer(&name[0])),
		uintptr(len(name)),
		uintptr(unsafe.Pointer(&nameLen)),
		uintptr(unsafe.Pointer(&dataType)),
		uintptr(unsafe.Pointer(&columnSize)),
		uintptr(unsafe.Pointer(&decimalDigits)),
		uintptr(unsafe.Pointer(&nullable)))
	desc := columnDesc{
		DataType:      dataType,
		ColumnSize:    columnSize,
		DecimalDigits: decimalDigits,
		Nullable:      nullable,
	}
	if n := int(nameLen); n > 0 && n <= len(name) {
		desc.Name = string(name[:n])
	}
	return desc, toReturn(r)
}

func (nativeAPI) GetData(stmt SQLHANDLE, col int, cType SQLSMALLINT, buf []byte) (SQLLEN, SQLRETURN) {
	var indicator SQLLEN
	r := syscallN(funcSQLGetData,
		uintptr(stmt),
		uintptr(col),
		uintptr(uint16(uint64(cType))),
		bufPtr(buf),
		uintptr(len(buf)),
		uintptr(unsafe.Pointer(&indicator)))
	runtime.KeepAlive(buf)
	return indicator, toReturn(r)
}

func (nativeAPI) BindParameter(stmt SQLHANDLE, param int, cType, sqlType SQLSMALLINT, buf []byte, indicator *SQLLEN) SQLRETURN {
	r := syscallN(funcSQLBindParameter,
		uintptr(stmt),
		uintptr(param),
		uintptr(uint16(uint64(SQL_PARAM_INPUT))),
		uintptr(uint16(uint64(cType))),
		uintptr(uint16(uint64(sqlType))),
		uintptr(len(buf)), // column size
		0,                 // decimal digits
		bufPtr(buf),
		uintptr(len(buf)),
		uintptr(unsafe.Pointer(indicator)))
	runtime.KeepAlive(buf)
	return toReturn(r)
}

func (nativeAPI) FreeStmt(stmt SQLHANDLE, option SQLUSMALLINT) SQLRETURN {
	return toReturn(syscallN(funcSQLFreeStmt, uintptr(stmt), uintptr(option)))
}

func (nativeAPI) Tables(stmt SQLHANDLE, table, tableType string) SQLRETURN {
	t, tt := cString(table), cString(tableType)
	nts := uintptr(uint16(uint64(sqlNTS)))
	r := syscallN(funcSQLTables,
		uintptr(stmt),
		0, 0, // catalog
		0, 0, // schema
		bufPtr(t), nts,
		bufPtr(tt), nts)
	runtime.KeepAlive(t)
	runtime.KeepAlive(tt)
	return toReturn(r)
}

func (nativeAPI) Columns(stmt SQLHANDLE, table, column string) SQLRETURN {
	t, c := cString(table), cString(column)
	nts := uintptr(uint16(uint64(sqlNTS)))
	r := syscallN(funcSQLColumns,
		uintptr(stmt),
		0, 0,
		0, 0,
		bufPtr(t), nts,
		bufPtr(c), nts)
	runtime.KeepAlive(t)
	runtime.KeepAlive(c)
	return toReturn(r)
}

func (nativeAPI) PrimaryKeys(stmt SQLHANDLE, table string) SQLRETURN {
	t := cString(table)
	nts := uintptr(uint16(uint64(sqlNTS)))
	r := syscallN(funcSQLPrimaryKeys,
		uintptr(stmt),
		0, 0,
		0, 0,
		bufPtr(t), nts)
	runtime.KeepAlive(t)
	return toReturn(r)
}

// DiagText collects the driver's diagnostic records for a handle as
// "[SQLSTATE] message" entries joined with " | ".
func (nativeAPI) DiagText(handleType SQLSMALLINT, handle SQLHANDLE) string {
	var parts []string
	for rec := 1; ; rec++ {
		var (
			state  [6]byte
			native SQLINTEGER
			msg    [1024]byte
			msgLen SQLSMALLINT
		)
		r := syscallN(funcSQLGetDiagRec,
			uintptr(handleType),
			uintptr(handle),
			uintptr(rec),
			uintptr(unsafe.Pointer(&state[0])),
			uintptr(unsafe.Pointer(&native)),
			uintptr(unsafe.Pointer(&msg[0])),
			uintptr(len(msg)),
			uintptr(unsafe.Pointer(&msgLen)))
		if !succeeded(toReturn(r)) {
			break
		}
		n := int(msgLen)
		if n < 0 || n > len(msg) {
			n = len(msg)
		}
		parts = append(parts, "["+string(state[:5])+"] "+string(msg[:n]))
	}
	return strings.Join(parts, " | ")
}
