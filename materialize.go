package odbcscan

import (
	"fmt"

	"github.com/google/uuid"
)

// convertFunc moves one value from the cursor's current row into a
// vector slot.
type convertFunc func(st *Statement, col int, vec *Vector, row int) error

// Materializer fills columnar batches from a statement cursor. The
// conversion function per column is resolved once at construction, not
// per value.
type Materializer struct {
	st       *Statement
	types    []ColumnType
	converts []convertFunc
}

// NewMaterializer checks the statement's runtime schema against the
// types fixed at bind time and resolves the per-column conversions.
// Virtual columns (virtualCols[i] true) always produce NULL and skip the
// type check, as does every column when allVarchar is set.
func NewMaterializer(st *Statement, types []ColumnType, virtualCols []bool, allVarchar bool) (*Materializer, error) {
	count, err := st.ColumnCount()
	if err != nil {
		return nil, err
	}
	if count != len(types) {
		return nil, NewError(ErrDriver,
			fmt.Sprintf("result has %d columns, expected %d", count, len(types)))
	}

	m := &Materializer{
		st:       st,
		types:    types,
		converts: make([]convertFunc, len(types)),
	}
	for i, typ := range types {
		if virtualCols != nil && virtualCols[i] {
			m.converts[i] = convertNull
			continue
		}
		if !allVarchar {
			desc := st.columnDescAt(i)
			actual := ToColumnType(desc.DataType, desc.ColumnSize, desc.DecimalDigits)
			if actual.ID != typ.ID {
				return nil, schemaMismatchError(desc.Name, typ, desc.DataType)
			}
		}
		m.converts[i] = convertFor(typ)
	}
	return m, nil
}

// schemaMismatchError names the column, the declared type and the actual
// runtime type, and points at the escape hatch for drivers with
// unreliable metadata.
func schemaMismatchError(column string, declared ColumnType, actual SQLSMALLINT) *Error {
	return NewError(ErrSchemaMismatch, fmt.Sprintf(
		"invalid type in column %q: column was declared as %s, found %s instead (set all_varchar=true to load all columns as text)",
		column, declared, SQLTypeName(actual)))
}

// FillBatch steps the cursor until the batch is full or the result set
// is exhausted, then fixes the true cardinality. A partial batch is a
// normal outcome; a zero-cardinality batch means the scan is drained.
func (m *Materializer) FillBatch(batch *Batch) error {
	row := 0
	for row < batch.Capacity() {
		ok, err := m.st.Step()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		for col, convert := range m.converts {
			if err := convert(m.st, col, batch.Column(col), row); err != nil {
				return err
			}
		}
		row++
	}
	batch.SetCardinality(row)
	return nil
}

func convertFor(typ ColumnType) convertFunc {
	switch typ.ID {
	case TypeBoolean:
		return convertBool
	case TypeTinyInt:
		return convertInt8
	case TypeSmallInt:
		return convertInt16
	case TypeInteger:
		return convertInt32
	case TypeBigInt:
		return convertInt64
	case TypeFloat:
		return convertFloat32
	case TypeDouble:
		return convertFloat64
	case TypeDecimal:
		return convertDecimal
	case TypeBlob:
		return convertBlob
	case TypeDate:
		return convertDate
	case TypeTime:
		return convertTime
	case TypeTimestamp:
		return convertTimestamp
	case TypeUUID:
		return convertUUID
	case TypeVarchar:
		return convertString
	default:
		return convertNull
	}
}

func convertNull(_ *Statement, _ int, vec *Vector, row int) error {
	vec.SetNull(row)
	return nil
}

func convertBool(st *Statement, col int, vec *Vector, row int) error {
	v, isNull, err := st.GetBool(col)
	if err != nil {
		return err
	}
	if isNull {
		vec.SetNull(row)
		return nil
	}
	vec.SetBool(row, v)
	return nil
}

func convertInt8(st *Statement, col int, vec *Vector, row int) error {
	v, isNull, err := st.GetInt8(col)
	if err != nil {
		return err
	}
	if isNull {
		vec.SetNull(row)
		return nil
	}
	vec.SetInt8(row, v)
	return nil
}

func convertInt16(st *Statement, col int, vec *Vector, row int) error {
	v, isNull, err := st.GetInt16(col)
	if err != nil {
		return err
	}
	if isNull {
		vec.SetNull(row)
		return nil
	}
	vec.SetInt16(row, v)
	return nil
}

func convertInt32(st *Statement, col int, vec *Vector, row int) error {
	v, isNull, err := st.GetInt32(col)
	if err != nil {
		return err
	}
	if isNull {
		vec.SetNull(row)
		return nil
	}
	vec.SetInt32(row, v)
	return nil
}

func convertInt64(st *Statement, col int, vec *Vector, row int) error {
	v, isNull, err := st.GetInt64(col)
	if err != nil {
		return err
	}
	if isNull {
		vec.SetNull(row)
		return nil
	}
	vec.SetInt64(row, v)
	return nil
}

func convertFloat32(st *Statement, col int, vec *Vector, row int) error {
	v, isNull, err := st.GetFloat32(col)
	if err != nil {
		return err
	}
	if isNull {
		vec.SetNull(row)
		return nil
	}
	vec.SetFloat32(row, v)
	return nil
}

func convertFloat64(st *Statement, col int, vec *Vector, row int) error {
	v, isNull, err := st.GetFloat64(col)
	if err != nil {
		return err
	}
	if isNull {
		vec.SetNull(row)
		return nil
	}
	vec.SetFloat64(row, v)
	return nil
}

// convertDecimal fetches the exact text rendering, never a binary float,
// then parses into fixed-point storage. Text that does not conform to
// the declared precision becomes NULL rather than aborting the scan.
func convertDecimal(st *Statement, col int, vec *Vector, row int) error {
	s, isNull, err := st.GetString(col)
	if err != nil {
		return err
	}
	if isNull {
		vec.SetNull(row)
		return nil
	}
	typ := vec.Type()
	v, ok := tryDecimalCast(s, typ.Width, typ.Scale)
	if !ok {
		vec.SetNull(row)
		return nil
	}
	vec.SetDecimal(row, v)
	return nil
}

func convertString(st *Statement, col int, vec *Vector, row int) error {
	v, isNull, err := st.GetString(col)
	if err != nil {
		return err
	}
	if isNull {
		vec.SetNull(row)
		return nil
	}
	vec.SetString(row, v)
	return nil
}

func convertBlob(st *Statement, col int, vec *Vector, row int) error {
	v, isNull, err := st.GetBytes(col)
	if err != nil {
		return err
	}
	if isNull {
		vec.SetNull(row)
		return nil
	}
	vec.SetBytes(row, v)
	return nil
}

func convertDate(st *Statement, col int, vec *Vector, row int) error {
	v, isNull, err := st.GetDate(col)
	if err != nil {
		return err
	}
	if isNull {
		vec.SetNull(row)
		return nil
	}
	vec.SetTime(row, v)
	return nil
}

func convertTime(st *Statement, col int, vec *Vector, row int) error {
	v, isNull, err := st.GetTime(col)
	if err != nil {
		return err
	}
	if isNull {
		vec.SetNull(row)
		return nil
	}
	vec.SetTime(row, v)
	return nil
}

func convertTimestamp(st *Statement, col int, vec *Vector, row int) error {
	v, isNull, err := st.GetTimestamp(col)
	if err != nil {
		return err
	}
	if isNull {
		vec.SetNull(row)
		return nil
	}
	vec.SetTime(row, v)
	return nil
}

// convertUUID parses the canonical text form; invalid text becomes NULL.
func convertUUID(st *Statement, col int, vec *Vector, row int) error {
	s, isNull, err := st.GetString(col)
	if err != nil {
		return err
	}
	if isNull {
		vec.SetNull(row)
		return nil
	}
	id, parseErr := uuid.Parse(s)
	if parseErr != nil {
		vec.SetNull(row)
		return nil
	}
	vec.SetUUID(row, id)
	return nil
}
