// Package odbcscan exposes external relational data sources as columnar
// batch streams over the ODBC C API, loaded dynamically without CGO.
package odbcscan

// ODBC typedefs. SQLLEN and SQLULEN are pointer sized on every platform
// this package targets (LP64/LLP64 with 64-bit ODBC driver managers).
type (
	SQLHANDLE    uintptr
	SQLRETURN    int16
	SQLSMALLINT  int16
	SQLUSMALLINT uint16
	SQLINTEGER   int32
	SQLUINTEGER  uint32
	SQLLEN       int64
	SQLULEN      uint64
)

// Return codes.
const (
	SQL_SUCCESS           SQLRETURN = 0
	SQL_SUCCESS_WITH_INFO SQLRETURN = 1
	SQL_NO_DATA           SQLRETURN = 100
	SQL_ERROR             SQLRETURN = -1
	SQL_INVALID_HANDLE    SQLRETURN = -2
	SQL_STILL_EXECUTING   SQLRETURN = 2
)

// Handle types.
const (
	SQL_HANDLE_ENV  SQLSMALLINT = 1
	SQL_HANDLE_DBC  SQLSMALLINT = 2
	SQL_HANDLE_STMT SQLSMALLINT = 3
	SQL_HANDLE_DESC SQLSMALLINT = 4
)

// Special length/indicator values.
const (
	SQL_NULL_DATA SQLLEN = -1
	SQL_NTS       SQLLEN = -3
	SQL_NO_TOTAL  SQLLEN = -4
)

// Environment attributes.
const (
	SQL_ATTR_ODBC_VERSION SQLINTEGER = 200
	SQL_OV_ODBC3          uintptr    = 3
)

// Connection attributes.
const (
	SQL_ATTR_ACCESS_MODE   SQLINTEGER = 101
	SQL_ATTR_LOGIN_TIMEOUT SQLINTEGER = 103

	SQL_MODE_READ_ONLY uintptr = 1
)

// SQLFreeStmt options.
const (
	SQL_CLOSE        SQLUSMALLINT = 0
	SQL_UNBIND       SQLUSMALLINT = 2
	SQL_RESET_PARAMS SQLUSMALLINT = 3
)

// SQL data type codes as reported by DescribeCol/SQLColumns.
const (
	SQL_UNKNOWN_TYPE   SQLSMALLINT = 0
	SQL_CHAR           SQLSMALLINT = 1
	SQL_NUMERIC        SQLSMALLINT = 2
	SQL_DECIMAL        SQLSMALLINT = 3
	SQL_INTEGER        SQLSMALLINT = 4
	SQL_SMALLINT       SQLSMALLINT = 5
	SQL_FLOAT          SQLSMALLINT = 6
	SQL_REAL           SQLSMALLINT = 7
	SQL_DOUBLE         SQLSMALLINT = 8
	SQL_DATE           SQLSMALLINT = 9
	SQL_TIME           SQLSMALLINT = 10
	SQL_TIMESTAMP      SQLSMALLINT = 11
	SQL_VARCHAR        SQLSMALLINT = 12
	SQL_TYPE_DATE      SQLSMALLINT = 91
	SQL_TYPE_TIME      SQLSMALLINT = 92
	SQL_TYPE_TIMESTAMP SQLSMALLINT = 93
	SQL_LONGVARCHAR    SQLSMALLINT = -1
	SQL_BINARY         SQLSMALLINT = -2
	SQL_VARBINARY      SQLSMALLINT = -3
	SQL_LONGVARBINARY  SQLSMALLINT = -4
	SQL_BIGINT         SQLSMALLINT = -5
	SQL_TINYINT        SQLSMALLINT = -6
	SQL_BIT            SQLSMALLINT = -7
	SQL_WCHAR          SQLSMALLINT = -8
	SQL_WVARCHAR       SQLSMALLINT = -9
	SQL_WLONGVARCHAR   SQLSMALLINT = -10
	SQL_GUID           SQLSMALLINT = -11
)

// C data type codes for SQLGetData/SQLBindParameter.
const (
	SQL_C_CHAR           SQLSMALLINT = SQL_CHAR
	SQL_C_LONG           SQLSMALLINT = SQL_INTEGER
	SQL_C_SHORT          SQLSMALLINT = SQL_SMALLINT
	SQL_C_FLOAT          SQLSMALLINT = SQL_REAL
	SQL_C_DOUBLE         SQLSMALLINT = SQL_DOUBLE
	SQL_C_BIT            SQLSMALLINT = SQL_BIT
	SQL_C_STINYINT       SQLSMALLINT = -26
	SQL_C_SSHORT         SQLSMALLINT = -15
	SQL_C_SLONG          SQLSMALLINT = -16
	SQL_C_SBIGINT        SQLSMALLINT = -25
	SQL_C_BINARY         SQLSMALLINT = SQL_BINARY
	SQL_C_TYPE_DATE      SQLSMALLINT = SQL_TYPE_DATE
	SQL_C_TYPE_TIME      SQLSMALLINT = SQL_TYPE_TIME
	SQL_C_TYPE_TIMESTAMP SQLSMALLINT = SQL_TYPE_TIMESTAMP
)

// Parameter directions.
const (
	SQL_PARAM_INPUT SQLSMALLINT = 1
)

// Nullability as reported by SQLColumns/DescribeCol.
const (
	SQL_NO_NULLS         SQLSMALLINT = 0
	SQL_NULLABLE         SQLSMALLINT = 1
	SQL_NULLABLE_UNKNOWN SQLSMALLINT = 2
)

// SQL_TIMESTAMP_STRUCT wire layout, 16 bytes.
type sqlTimestamp struct {
	Year     SQLSMALLINT
	Month    SQLUSMALLINT
	Day      SQLUSMALLINT
	Hour     SQLUSMALLINT
	Minute   SQLUSMALLINT
	Second   SQLUSMALLINT
	Fraction SQLUINTEGER // nanoseconds
}

// SQL_DATE_STRUCT wire layout, 6 bytes.
type sqlDate struct {
	Year  SQLSMALLINT
	Month SQLUSMALLINT
	Day   SQLUSMALLINT
}

// SQL_TIME_STRUCT wire layout, 6 bytes.
type sqlTime struct {
	Hour   SQLUSMALLINT
	Minute SQLUSMALLINT
	Second SQLUSMALLINT
}

// succeeded reports whether an ODBC return code indicates success.
func succeeded(ret SQLRETURN) bool {
	return ret == SQL_SUCCESS || ret == SQL_SUCCESS_WITH_INFO
}
