package odbcscan

import (
	"time"

	"github.com/google/uuid"
)

// Vector is one typed column buffer plus its null mask. Only the buffer
// matching the column type is allocated.
type Vector struct {
	typ   ColumnType
	nulls []bool

	bools  []bool
	int8s  []int8
	int16s []int16
	int32s []int32
	int64s []int64
	f32s   []float32
	f64s   []float64
	strs   []string
	blobs  [][]byte
	times  []time.Time
	huges  []Hugeint
	uuids  []uuid.UUID
}

// NewVector allocates a vector of the given type and row capacity.
func NewVector(typ ColumnType, capacity int) *Vector {
	v := &Vector{
		typ:   typ,
		nulls: make([]bool, capacity),
	}
	switch typ.ID {
	case TypeBoolean:
		v.bools = make([]bool, capacity)
	case TypeTinyInt:
		v.int8s = make([]int8, capacity)
	case TypeSmallInt:
		v.int16s = make([]int16, capacity)
	case TypeInteger:
		v.int32s = make([]int32, capacity)
	case TypeBigInt:
		v.int64s = make([]int64, capacity)
	case TypeFloat:
		v.f32s = make([]float32, capacity)
	case TypeDouble:
		v.f64s = make([]float64, capacity)
	case TypeDecimal:
		switch decimalStorageBytes(typ.Width) {
		case 2:
			v.int16s = make([]int16, capacity)
		case 4:
			v.int32s = make([]int32, capacity)
		case 8:
			v.int64s = make([]int64, capacity)
		default:
			v.huges = make([]Hugeint, capacity)
		}
	case TypeVarchar:
		v.strs = make([]string, capacity)
	case TypeBlob:
		v.blobs = make([][]byte, capacity)
	case TypeDate, TypeTime, TypeTimestamp:
		v.times = make([]time.Time, capacity)
	case TypeUUID:
		v.uuids = make([]uuid.UUID, capacity)
	}
	return v
}

// Type returns the column type.
func (v *Vector) Type() ColumnType {
	return v.typ
}

// SetNull marks a row NULL.
func (v *Vector) SetNull(row int) {
	v.nulls[row] = true
}

// IsNull reports whether a row is NULL.
func (v *Vector) IsNull(row int) bool {
	return v.nulls[row]
}

// SetBool stores a boolean value.
func (v *Vector) SetBool(row int, val bool) {
	v.bools[row] = val
}

// SetInt8 stores a tinyint value.
func (v *Vector) SetInt8(row int, val int8) {
	v.int8s[row] = val
}

// SetInt16 stores a smallint value.
func (v *Vector) SetInt16(row int, val int16) {
	v.int16s[row] = val
}

// SetInt32 stores an integer value.
func (v *Vector) SetInt32(row int, val int32) {
	v.int32s[row] = val
}

// SetInt64 stores a bigint value.
func (v *Vector) SetInt64(row int, val int64) {
	v.int64s[row] = val
}

// SetFloat32 stores a float value.
func (v *Vector) SetFloat32(row int, val float32) {
	v.f32s[row] = val
}

// SetFloat64 stores a double value.
func (v *Vector) SetFloat64(row int, val float64) {
	v.f64s[row] = val
}

// SetString stores a text value.
func (v *Vector) SetString(row int, val string) {
	v.strs[row] = val
}

// SetBytes stores a binary value.
func (v *Vector) SetBytes(row int, val []byte) {
	v.blobs[row] = val
}

// SetTime stores a date, time or timestamp value.
func (v *Vector) SetTime(row int, val time.Time) {
	v.times[row] = val
}

// SetUUID stores a UUID value.
func (v *Vector) SetUUID(row int, val uuid.UUID) {
	v.uuids[row] = val
}

// SetDecimal stores a fixed-point value into the storage class chosen by
// the column's width.
func (v *Vector) SetDecimal(row int, val Hugeint) {
	switch decimalStorageBytes(v.typ.Width) {
	case 2:
		n, _ := val.Int64()
		v.int16s[row] = int16(n)
	case 4:
		n, _ := val.Int64()
		v.int32s[row] = int32(n)
	case 8:
		n, _ := val.Int64()
		v.int64s[row] = n
	default:
		v.huges[row] = val
	}
}

// Bool returns the boolean value at row.
func (v *Vector) Bool(row int) bool { return v.bools[row] }

// Int8 returns the tinyint value at row.
func (v *Vector) Int8(row int) int8 { return v.int8s[row] }

// Int16 returns the smallint value at row.
func (v *Vector) Int16(row int) int16 { return v.int16s[row] }

// Int32 returns the integer value at row.
func (v *Vector) Int32(row int) int32 { return v.int32s[row] }

// Int64 returns the bigint value at row.
func (v *Vector) Int64(row int) int64 { return v.int64s[row] }

// Float32 returns the float value at row.
func (v *Vector) Float32(row int) float32 { return v.f32s[row] }

// Float64 returns the double value at row.
func (v *Vector) Float64(row int) float64 { return v.f64s[row] }

// String returns the text value at row.
func (v *Vector) String(row int) string { return v.strs[row] }

// Bytes returns the binary value at row.
func (v *Vector) Bytes(row int) []byte { return v.blobs[row] }

// Time returns the date/time/timestamp value at row.
func (v *Vector) Time(row int) time.Time { return v.times[row] }

// UUID returns the UUID value at row.
func (v *Vector) UUID(row int) uuid.UUID { return v.uuids[row] }

// Hugeint returns the decimal value at row widened to 128 bits.
func (v *Vector) Hugeint(row int) Hugeint {
	switch decimalStorageBytes(v.typ.Width) {
	case 2:
		return HugeintFromInt64(int64(v.int16s[row]))
	case 4:
		return HugeintFromInt64(int64(v.int32s[row]))
	case 8:
		return HugeintFromInt64(v.int64s[row])
	default:
		return v.huges[row]
	}
}

// Batch is a fixed-capacity block of rows in columnar layout. Cardinality
// is set once by the materializer; ownership then transfers to the host
// engine.
type Batch struct {
	names       []string
	columns     []*Vector
	capacity    int
	cardinality int
}

// NewBatch allocates an empty batch for the given schema.
func NewBatch(names []string, types []ColumnType, capacity int) *Batch {
	columns := make([]*Vector, len(types))
	for i, typ := range types {
		columns[i] = NewVector(typ, capacity)
	}
	return &Batch{
		names:    names,
		columns:  columns,
		capacity: capacity,
	}
}

// Capacity returns the maximum row count.
func (b *Batch) Capacity() int {
	return b.capacity
}

// Cardinality returns the filled row count.
func (b *Batch) Cardinality() int {
	return b.cardinality
}

// SetCardinality fixes the filled row count.
func (b *Batch) SetCardinality(rows int) {
	b.cardinality = rows
}

// ColumnCount returns the number of columns.
func (b *Batch) ColumnCount() int {
	return len(b.columns)
}

// ColumnName returns the name of column col.
func (b *Batch) ColumnName(col int) string {
	return b.names[col]
}

// Column returns the vector of column col.
func (b *Batch) Column(col int) *Vector {
	return b.columns[col]
}
