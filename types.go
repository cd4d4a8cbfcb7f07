package odbcscan

import (
	"fmt"
)

// TypeID enumerates the host columnar types produced by the scanner.
type TypeID uint8

const (
	// TypeInvalid is the zero value.
	TypeInvalid TypeID = iota
	// TypeBoolean is a boolean column.
	TypeBoolean
	// TypeTinyInt is an 8-bit signed integer column.
	TypeTinyInt
	// TypeSmallInt is a 16-bit signed integer column.
	TypeSmallInt
	// TypeInteger is a 32-bit signed integer column.
	TypeInteger
	// TypeBigInt is a 64-bit signed integer column.
	TypeBigInt
	// TypeFloat is a 32-bit float column.
	TypeFloat
	// TypeDouble is a 64-bit float column.
	TypeDouble
	// TypeDecimal is a fixed-point decimal column.
	TypeDecimal
	// TypeVarchar is a text column.
	TypeVarchar
	// TypeBlob is a binary column.
	TypeBlob
	// TypeDate is a calendar date column.
	TypeDate
	// TypeTime is a time-of-day column.
	TypeTime
	// TypeTimestamp is a date+time column.
	TypeTimestamp
	// TypeUUID is a UUID column.
	TypeUUID
)

// ColumnType describes one output column. Width and Scale are only
// meaningful for TypeDecimal.
type ColumnType struct {
	ID    TypeID
	Width uint8
	Scale uint8
}

// Fallback precision when the remote driver cannot supply one.
const (
	defaultDecimalWidth = 38
	defaultDecimalScale = 2
)

// Varchar is the text column type, the fallback for every SQL type this
// package cannot map more precisely.
var Varchar = ColumnType{ID: TypeVarchar}

// Decimal returns a decimal column type with the given precision.
func Decimal(width, scale uint8) ColumnType {
	return ColumnType{ID: TypeDecimal, Width: width, Scale: scale}
}

// String returns the display name used in error messages and plan output.
func (t ColumnType) String() string {
	switch t.ID {
	case TypeBoolean:
		return "BOOLEAN"
	case TypeTinyInt:
		return "TINYINT"
	case TypeSmallInt:
		return "SMALLINT"
	case TypeInteger:
		return "INTEGER"
	case TypeBigInt:
		return "BIGINT"
	case TypeFloat:
		return "FLOAT"
	case TypeDouble:
		return "DOUBLE"
	case TypeDecimal:
		return fmt.Sprintf("DECIMAL(%d,%d)", t.Width, t.Scale)
	case TypeVarchar:
		return "VARCHAR"
	case TypeBlob:
		return "BLOB"
	case TypeDate:
		return "DATE"
	case TypeTime:
		return "TIME"
	case TypeTimestamp:
		return "TIMESTAMP"
	case TypeUUID:
		return "UUID"
	default:
		return "INVALID"
	}
}

// ToColumnType maps a remote SQL type code plus size/scale metadata to a
// host column type. Total: unknown codes map to text so that schema
// discovery never aborts on an exotic column.
func ToColumnType(sqlType SQLSMALLINT, columnSize SQLULEN, decimalDigits SQLSMALLINT) ColumnType {
	switch sqlType {
	case SQL_BIT:
		return ColumnType{ID: TypeBoolean}
	case SQL_TINYINT:
		return ColumnType{ID: TypeTinyInt}
	case SQL_SMALLINT:
		return ColumnType{ID: TypeSmallInt}
	case SQL_INTEGER:
		return ColumnType{ID: TypeInteger}
	case SQL_BIGINT:
		return ColumnType{ID: TypeBigInt}
	case SQL_REAL:
		return ColumnType{ID: TypeFloat}
	case SQL_FLOAT, SQL_DOUBLE:
		return ColumnType{ID: TypeDouble}
	case SQL_DECIMAL, SQL_NUMERIC:
		return decimalColumnType(columnSize, decimalDigits)
	case SQL_CHAR, SQL_VARCHAR, SQL_LONGVARCHAR,
		SQL_WCHAR, SQL_WVARCHAR, SQL_WLONGVARCHAR:
		return Varchar
	case SQL_BINARY, SQL_VARBINARY, SQL_LONGVARBINARY:
		return ColumnType{ID: TypeBlob}
	case SQL_TYPE_DATE, SQL_DATE:
		return ColumnType{ID: TypeDate}
	case SQL_TYPE_TIME, SQL_TIME:
		return ColumnType{ID: TypeTime}
	case SQL_TYPE_TIMESTAMP, SQL_TIMESTAMP:
		return ColumnType{ID: TypeTimestamp}
	case SQL_GUID:
		return ColumnType{ID: TypeUUID}
	default:
		return Varchar
	}
}

// decimalColumnType derives (width, scale) from driver metadata, falling
// back to (38, 2) when the driver reports nothing usable.
func decimalColumnType(columnSize SQLULEN, decimalDigits SQLSMALLINT) ColumnType {
	width := int(columnSize)
	scale := int(decimalDigits)
	if width <= 0 || width > defaultDecimalWidth {
		width = defaultDecimalWidth
		scale = defaultDecimalScale
	}
	if scale < 0 {
		scale = defaultDecimalScale
	}
	if scale > width {
		scale = width
	}
	return Decimal(uint8(width), uint8(scale))
}

// ToSQLType maps a host column type back to a SQL type code. Used only
// for parameter binding; composite or oversized host types default to
// VARCHAR and must be serialized by the caller before binding.
func ToSQLType(t ColumnType) SQLSMALLINT {
	switch t.ID {
	case TypeBoolean:
		return SQL_BIT
	case TypeTinyInt:
		return SQL_TINYINT
	case TypeSmallInt:
		return SQL_SMALLINT
	case TypeInteger:
		return SQL_INTEGER
	case TypeBigInt:
		return SQL_BIGINT
	case TypeFloat:
		return SQL_REAL
	case TypeDouble:
		return SQL_DOUBLE
	case TypeDecimal:
		return SQL_DECIMAL
	case TypeBlob:
		return SQL_VARBINARY
	case TypeDate:
		return SQL_TYPE_DATE
	case TypeTime:
		return SQL_TYPE_TIME
	case TypeTimestamp:
		return SQL_TYPE_TIMESTAMP
	default:
		return SQL_VARCHAR
	}
}

// SQLTypeName returns a readable name for a SQL type code, for
// diagnostics.
func SQLTypeName(sqlType SQLSMALLINT) string {
	switch sqlType {
	case SQL_BIT:
		return "BIT"
	case SQL_TINYINT:
		return "TINYINT"
	case SQL_SMALLINT:
		return "SMALLINT"
	case SQL_INTEGER:
		return "INTEGER"
	case SQL_BIGINT:
		return "BIGINT"
	case SQL_REAL:
		return "REAL"
	case SQL_FLOAT:
		return "FLOAT"
	case SQL_DOUBLE:
		return "DOUBLE"
	case SQL_DECIMAL:
		return "DECIMAL"
	case SQL_NUMERIC:
		return "NUMERIC"
	case SQL_CHAR:
		return "CHAR"
	case SQL_VARCHAR:
		return "VARCHAR"
	case SQL_LONGVARCHAR:
		return "LONGVARCHAR"
	case SQL_WCHAR:
		return "WCHAR"
	case SQL_WVARCHAR:
		return "WVARCHAR"
	case SQL_WLONGVARCHAR:
		return "WLONGVARCHAR"
	case SQL_BINARY:
		return "BINARY"
	case SQL_VARBINARY:
		return "VARBINARY"
	case SQL_LONGVARBINARY:
		return "LONGVARBINARY"
	case SQL_TYPE_DATE, SQL_DATE:
		return "DATE"
	case SQL_TYPE_TIME, SQL_TIME:
		return "TIME"
	case SQL_TYPE_TIMESTAMP, SQL_TIMESTAMP:
		return "TIMESTAMP"
	case SQL_GUID:
		return "GUID"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", sqlType)
	}
}

// decimalStorageBytes returns the narrowest integer storage class that
// fits a decimal of the given width.
func decimalStorageBytes(width uint8) int {
	switch {
	case width <= 4:
		return 2
	case width <= 9:
		return 4
	case width <= 18:
		return 8
	default:
		return 16
	}
}
