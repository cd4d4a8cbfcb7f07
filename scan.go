package odbcscan

import (
	"fmt"
	"strings"
)

// ScanOptions are the bind-time options shared by Scan and Query.
type ScanOptions struct {
	// AllVarchar types every column as text and skips all type
	// consistency checks. Escape hatch for drivers with unreliable
	// metadata.
	AllVarchar bool
}

// ScanBinding is the bind-time result: the fixed output schema of a
// table scan or an ad-hoc query, plus what to execute. Immutable for
// the lifetime of the scan.
type ScanBinding struct {
	params     ConnectionParams
	table      string
	query      string
	names      []string
	types      []ColumnType
	allVarchar bool
	ddl        bool
	info       *TableInfo
	copts      []ConnectOption
}

// BindScan discovers the schema of a remote table on a short-lived
// connection and fixes the scan's output schema.
func BindScan(params ConnectionParams, table string, opts ScanOptions, copts ...ConnectOption) (*ScanBinding, error) {
	conn, err := Connect(params, copts...)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	info, err := conn.GetTableInfo(table)
	if err != nil {
		return nil, err
	}

	b := &ScanBinding{
		params:     params,
		table:      table,
		allVarchar: opts.AllVarchar,
		info:       info,
		copts:      copts,
	}
	for _, col := range info.Columns {
		b.names = append(b.names, col.Name)
		if opts.AllVarchar {
			b.types = append(b.types, Varchar)
		} else {
			b.types = append(b.types, ToColumnType(col.SQLType, col.ColumnSize, col.DecimalDigits))
		}
	}
	return b, nil
}

// BindQuery prepares the supplied SQL on a short-lived connection and
// takes the output schema from its result metadata. A statement with
// zero result columns (DDL/DML) is executed here, once per bind, and
// surfaces a single boolean "Success" column.
func BindQuery(params ConnectionParams, sql string, opts ScanOptions, copts ...ConnectOption) (*ScanBinding, error) {
	conn, err := Connect(params, copts...)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	st, err := conn.Prepare(sql)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	count, err := st.ColumnCount()
	if err != nil {
		return nil, err
	}

	b := &ScanBinding{
		params:     params,
		query:      sql,
		allVarchar: opts.AllVarchar,
		copts:      copts,
	}

	if count == 0 {
		b.ddl = true
		b.names = []string{"Success"}
		b.types = []ColumnType{{ID: TypeBoolean}}
		return b, nil
	}

	for i := 0; i < count; i++ {
		name, err := st.ColumnName(i)
		if err != nil {
			return nil, err
		}
		if name == "" {
			name = fmt.Sprintf("column%d", i)
		}
		b.names = append(b.names, name)
		if opts.AllVarchar {
			b.types = append(b.types, Varchar)
		} else {
			desc := st.columnDescAt(i)
			b.types = append(b.types, ToColumnType(desc.DataType, desc.ColumnSize, desc.DecimalDigits))
		}
	}
	return b, nil
}

// ColumnNames returns the bound output column names.
func (b *ScanBinding) ColumnNames() []string {
	return b.names
}

// ColumnTypes returns the bound output column types.
func (b *ScanBinding) ColumnTypes() []ColumnType {
	return b.types
}

// TableInfo returns the catalog metadata of a table binding, nil for
// query bindings.
func (b *ScanBinding) TableInfo() *TableInfo {
	return b.info
}

// MaxThreads reports the supported degree of parallelism. Range
// partitioning across native connections is future work, so scans run
// on one execution context.
func (b *ScanBinding) MaxThreads() int {
	return 1
}

// Describe returns the plan-output description of the binding. The
// locator is shown as the DSN name or a redacted placeholder; raw
// connection strings never appear.
func (b *ScanBinding) Describe() string {
	if b.table != "" {
		return fmt.Sprintf("%s (%s)", b.table, b.params.Describe())
	}
	return fmt.Sprintf("query (%s)", b.params.Describe())
}

// quoteIdent quotes an identifier for the remote SQL dialect, doubling
// embedded quotes.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// buildScanSQL renders the SELECT for a table scan. Projection entries
// index the bound columns; negative entries are virtual columns and
// select a NULL literal placeholder.
func buildScanSQL(b *ScanBinding, projection []int) string {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	if projection == nil {
		for i, name := range b.names {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(quoteIdent(name))
		}
	} else {
		for i, id := range projection {
			if i > 0 {
				sb.WriteString(", ")
			}
			if id < 0 {
				sb.WriteString("NULL")
			} else {
				sb.WriteString(quoteIdent(b.names[id]))
			}
		}
	}
	sb.WriteString(" FROM ")
	sb.WriteString(quoteIdent(b.table))
	return sb.String()
}

type scanStateOptions struct {
	conn       *Connection
	capacity   int
	projection []int
}

// ScanStateOption configures a ScanState.
type ScanStateOption func(*scanStateOptions)

// WithSharedConnection runs the scan on a caller-managed connection
// instead of opening one. The caller keeps ownership and must ensure at
// most one execution context uses it at a time.
func WithSharedConnection(conn *Connection) ScanStateOption {
	return func(o *scanStateOptions) {
		o.conn = conn
	}
}

// WithBatchCapacity overrides the configured batch row capacity.
func WithBatchCapacity(capacity int) ScanStateOption {
	return func(o *scanStateOptions) {
		o.capacity = capacity
	}
}

// WithProjection scans only the listed bound columns, in order. Negative
// entries produce all-NULL virtual columns.
func WithProjection(columns []int) ScanStateOption {
	return func(o *scanStateOptions) {
		o.projection = columns
	}
}

// ScanState is one execution context of a bound scan or query. It owns
// its Connection and Statement (unless a shared connection was supplied)
// and is stepped to exhaustion via Next. Not safe for concurrent use.
type ScanState struct {
	binding  *ScanBinding
	conn     *Connection
	ownsConn bool
	stmt     *Statement
	mat      *Materializer

	names    []string
	types    []ColumnType
	capacity int

	ddlEmitted bool
	done       bool
}

// NewScanState opens the execution context: its own connection (or the
// shared one), the statement, and the materializer. The remote query is
// executed here; Next only fetches.
func NewScanState(b *ScanBinding, opts ...ScanStateOption) (*ScanState, error) {
	options := scanStateOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	state := &ScanState{binding: b}

	if b.ddl {
		// Executed once at bind; the state only surfaces the success row.
		state.names = b.names
		state.types = b.types
		state.capacity = 1
		return state, nil
	}

	conn := options.conn
	if conn == nil {
		var err error
		conn, err = Connect(b.params, b.copts...)
		if err != nil {
			return nil, err
		}
		state.ownsConn = true
	}
	state.conn = conn

	sql := b.query
	var virtualCols []bool
	if b.table != "" {
		sql = buildScanSQL(b, options.projection)
	}
	if options.projection != nil && b.table != "" {
		state.names = make([]string, len(options.projection))
		state.types = make([]ColumnType, len(options.projection))
		virtualCols = make([]bool, len(options.projection))
		for i, id := range options.projection {
			if id < 0 {
				state.names[i] = "rowid"
				state.types[i] = ColumnType{ID: TypeBigInt}
				virtualCols[i] = true
			} else {
				state.names[i] = b.names[id]
				state.types[i] = b.types[id]
			}
		}
	} else {
		state.names = b.names
		state.types = b.types
	}

	stmt, err := conn.Prepare(sql)
	if err != nil {
		state.Close()
		return nil, err
	}
	state.stmt = stmt

	mat, err := NewMaterializer(stmt, state.types, virtualCols, b.allVarchar)
	if err != nil {
		state.Close()
		return nil, err
	}
	state.mat = mat

	state.capacity = options.capacity
	if state.capacity <= 0 {
		state.capacity = conn.cfg.BatchCapacity
	}
	if state.capacity <= 0 {
		state.capacity = DefaultConfig().BatchCapacity
	}
	return state, nil
}

// Next returns the next columnar batch, a partial batch at the end of
// the result set, and nil once drained. Ownership of the returned batch
// transfers to the caller.
func (s *ScanState) Next() (*Batch, error) {
	if s.binding.ddl {
		if s.ddlEmitted {
			return nil, nil
		}
		s.ddlEmitted = true
		return successBatch(), nil
	}

	if s.done {
		return nil, nil
	}

	batch := NewBatch(s.names, s.types, s.capacity)
	if err := s.mat.FillBatch(batch); err != nil {
		return nil, err
	}
	if batch.Cardinality() < batch.Capacity() {
		s.done = true
	}
	if batch.Cardinality() == 0 {
		return nil, nil
	}
	return batch, nil
}

// Close releases the execution context. Idempotent; shared connections
// stay open.
func (s *ScanState) Close() {
	if s.stmt != nil {
		s.stmt.Close()
		s.stmt = nil
	}
	if s.ownsConn && s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
}

// successBatch is the single-row boolean result surfaced by DDL
// statements, Exec and Attach.
func successBatch() *Batch {
	batch := NewBatch([]string{"Success"}, []ColumnType{{ID: TypeBoolean}}, 1)
	batch.Column(0).SetBool(0, true)
	batch.SetCardinality(1)
	return batch
}

// Scan binds a whole-table scan and opens its execution context.
func Scan(params ConnectionParams, table string, opts ScanOptions, copts ...ConnectOption) (*ScanState, error) {
	b, err := BindScan(params, table, opts, copts...)
	if err != nil {
		return nil, err
	}
	return NewScanState(b)
}

// Query binds an ad-hoc query and opens its execution context.
func Query(params ConnectionParams, sql string, opts ScanOptions, copts ...ConnectOption) (*ScanState, error) {
	b, err := BindQuery(params, sql, opts, copts...)
	if err != nil {
		return nil, err
	}
	return NewScanState(b)
}

// Exec runs a statement with no result rows, exactly once, and returns
// the single-row success batch.
func Exec(params ConnectionParams, sql string, copts ...ConnectOption) (*Batch, error) {
	conn, err := Connect(params, copts...)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if err := conn.Execute(sql); err != nil {
		return nil, err
	}
	return successBatch(), nil
}
