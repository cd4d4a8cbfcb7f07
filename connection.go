package odbcscan

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"unsafe"

	"go.uber.org/zap"
)

// CatalogType classifies a remote catalog entry.
type CatalogType int

const (
	// CatalogInvalid means the entry does not exist or could not be classified.
	CatalogInvalid CatalogType = iota
	// CatalogTable is a base table.
	CatalogTable
	// CatalogView is a view.
	CatalogView
)

// ColumnInfo is one column of a remote table as reported by the catalog.
type ColumnInfo struct {
	Name          string
	SQLType       SQLSMALLINT
	ColumnSize    SQLULEN
	DecimalDigits SQLSMALLINT
	NotNull       bool
}

// TableInfo is the catalog description of a remote table.
type TableInfo struct {
	Columns []ColumnInfo
	// PrimaryKey lists the key columns in key order; empty when the
	// driver does not expose primary-key metadata.
	PrimaryKey []string
}

// Connection owns one live connection to a remote data source. It is the
// exclusive owner of the underlying native environment and connection
// handles and must not be shared across goroutines.
type Connection struct {
	api    odbcAPI
	env    SQLHANDLE
	dbc    SQLHANDLE
	params ConnectionParams
	cfg    Config
	log    *zap.Logger

	mu     sync.Mutex
	closed int32
}

type connectOptions struct {
	cfg Config
	log *zap.Logger
	api odbcAPI
}

// ConnectOption configures a Connection at construction.
type ConnectOption func(*connectOptions)

// WithLogger injects a logger. The default is a nop logger.
func WithLogger(log *zap.Logger) ConnectOption {
	return func(o *connectOptions) {
		o.log = log
	}
}

// WithConfig overrides the default Config.
func WithConfig(cfg Config) ConnectOption {
	return func(o *connectOptions) {
		o.cfg = cfg
	}
}

// withAPI substitutes the native boundary. Used by tests.
func withAPI(api odbcAPI) ConnectOption {
	return func(o *connectOptions) {
		o.api = api
	}
}

// Connect opens a connection to the data source described by params.
func Connect(params ConnectionParams, opts ...ConnectOption) (*Connection, error) {
	if !params.IsValid() {
		return nil, NewError(ErrConfig, "no valid connection information provided")
	}

	options := connectOptions{cfg: DefaultConfig(), log: zap.NewNop()}
	for _, opt := range opts {
		opt(&options)
	}

	api := options.api
	if api == nil {
		var err error
		api, err = defaultAPI()
		if err != nil {
			return nil, NewError(ErrConnection, fmt.Sprintf("odbc driver manager unavailable: %v", err))
		}
	}

	env, ret := api.AllocHandle(SQL_HANDLE_ENV, 0)
	if !succeeded(ret) {
		return nil, NewError(ErrConnection, "failed to allocate environment handle")
	}
	if ret := api.SetEnvAttr(env, SQL_ATTR_ODBC_VERSION, SQL_OV_ODBC3); !succeeded(ret) {
		diag := api.DiagText(SQL_HANDLE_ENV, env)
		api.FreeHandle(SQL_HANDLE_ENV, env)
		return nil, driverError(ErrConnection, "request ODBC 3 behavior", diag)
	}

	dbc, ret := api.AllocHandle(SQL_HANDLE_DBC, env)
	if !succeeded(ret) {
		diag := api.DiagText(SQL_HANDLE_ENV, env)
		api.FreeHandle(SQL_HANDLE_ENV, env)
		return nil, driverError(ErrConnection, "allocate connection handle", diag)
	}

	if params.Timeout() > 0 {
		if ret := api.SetConnectAttr(dbc, SQL_ATTR_LOGIN_TIMEOUT, uintptr(params.Timeout())); !succeeded(ret) {
			options.log.Warn("failed to set login timeout",
				zap.Int("timeout_seconds", params.Timeout()))
		}
	}

	if params.IsDSN() {
		ret = api.Connect(dbc, params.DSN(), params.Username(), params.password)
	} else {
		ret = api.DriverConnect(dbc, params.ConnectionString())
	}
	if !succeeded(ret) {
		diag := api.DiagText(SQL_HANDLE_DBC, dbc)
		api.FreeHandle(SQL_HANDLE_DBC, dbc)
		api.FreeHandle(SQL_HANDLE_ENV, env)
		if params.IsDSN() {
			return nil, driverError(ErrConnection, fmt.Sprintf("connect to DSN %q", params.DSN()), diag)
		}
		// Connection strings carry credentials and are never echoed.
		return nil, driverError(ErrConnection, "connect with connection string", diag)
	}

	conn := &Connection{
		api:    api,
		env:    env,
		dbc:    dbc,
		params: params,
		cfg:    options.cfg,
		log:    options.log,
	}

	// Read-only mode is advisory: some drivers reject the attribute, and
	// that must not fail the connect.
	if params.ReadOnly() {
		if ret := api.SetConnectAttr(dbc, SQL_ATTR_ACCESS_MODE, SQL_MODE_READ_ONLY); !succeeded(ret) {
			options.log.Warn("failed to set read-only mode",
				zap.String("source", params.Describe()))
		}
	}

	runtime.SetFinalizer(conn, (*Connection).finalize)
	return conn, nil
}

func (c *Connection) finalize() {
	c.Close()
}

// IsOpen reports whether the connection is usable.
func (c *Connection) IsOpen() bool {
	return atomic.LoadInt32(&c.closed) == 0
}

// Close disconnects and releases the native handles. Safe to call more
// than once; cleanup is best-effort and never returns an error.
func (c *Connection) Close() {
	if !atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		return
	}
	runtime.SetFinalizer(c, nil)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.api.Disconnect(c.dbc)
	c.api.FreeHandle(SQL_HANDLE_DBC, c.dbc)
	c.api.FreeHandle(SQL_HANDLE_ENV, c.env)
}

// Params returns the connection parameters.
func (c *Connection) Params() ConnectionParams {
	return c.params
}

func (c *Connection) traceQuery(sql string) {
	if c.cfg.TraceQueries {
		c.log.Debug("executing remote statement", zap.String("query", sql))
	}
}

func (c *Connection) allocStmt() (SQLHANDLE, error) {
	if !c.IsOpen() {
		return 0, NewError(ErrConnection, "connection is closed")
	}
	stmt, ret := c.api.AllocHandle(SQL_HANDLE_STMT, c.dbc)
	if !succeeded(ret) {
		return 0, driverError(ErrDriver, "allocate statement handle", c.api.DiagText(SQL_HANDLE_DBC, c.dbc))
	}
	return stmt, nil
}

// Execute runs a statement with no expected result set.
func (c *Connection) Execute(sql string) error {
	c.traceQuery(sql)

	stmt, err := c.allocStmt()
	if err != nil {
		return err
	}
	defer c.api.FreeHandle(SQL_HANDLE_STMT, stmt)

	ret := c.api.ExecDirect(stmt, sql)
	if !succeeded(ret) && ret != SQL_NO_DATA {
		diag := c.api.DiagText(SQL_HANDLE_STMT, stmt)
		return driverError(ErrExec, fmt.Sprintf("execute query %q", sql), diag)
	}
	return nil
}

// Prepare compiles a statement against this connection and returns its
// cursor. The statement is not executed yet.
func (c *Connection) Prepare(sql string) (*Statement, error) {
	c.traceQuery(sql)

	stmt, err := c.allocStmt()
	if err != nil {
		return nil, err
	}

	if ret := c.api.Prepare(stmt, sql); !succeeded(ret) {
		diag := c.api.DiagText(SQL_HANDLE_STMT, stmt)
		c.api.FreeHandle(SQL_HANDLE_STMT, stmt)
		return nil, driverError(ErrPrepare, fmt.Sprintf("prepare query %q", sql), diag)
	}

	return newStatement(c, stmt, sql), nil
}

// TryPrepare is Prepare with the error reduced to a boolean, for probes
// where failure is an expected outcome.
func (c *Connection) TryPrepare(sql string) (*Statement, bool) {
	st, err := c.Prepare(sql)
	return st, err == nil
}

// GetTables enumerates the remote base tables.
func (c *Connection) GetTables() ([]string, error) {
	names, err := c.catalogObjectNames("TABLE")
	if err != nil {
		return nil, driverError(ErrDriver, "get table list", errText(err))
	}
	return names, nil
}

// GetViews enumerates the remote views. Some drivers classify views as
// "SYSTEM VIEW"; that secondary probe is best-effort and its failure is
// swallowed so partial catalog results never block discovery.
func (c *Connection) GetViews() ([]string, error) {
	views, err := c.catalogObjectNames("VIEW")
	if err != nil {
		return nil, driverError(ErrDriver, "get view list", errText(err))
	}

	sysViews, err := c.catalogObjectNames("SYSTEM VIEW")
	if err != nil {
		c.log.Debug("system view probe failed", zap.Error(err))
		return views, nil
	}
	return append(views, sysViews...), nil
}

// catalogObjectNames runs a SQLTables lookup filtered by object type and
// collects the TABLE_NAME column.
func (c *Connection) catalogObjectNames(objectType string) ([]string, error) {
	stmt, err := c.allocStmt()
	if err != nil {
		return nil, err
	}
	defer c.api.FreeHandle(SQL_HANDLE_STMT, stmt)

	if ret := c.api.Tables(stmt, "", objectType); !succeeded(ret) {
		return nil, driverError(ErrDriver, "query catalog tables", c.api.DiagText(SQL_HANDLE_STMT, stmt))
	}

	var names []string
	for {
		ret := c.api.Fetch(stmt)
		if ret == SQL_NO_DATA {
			break
		}
		if !succeeded(ret) {
			return nil, driverError(ErrDriver, "fetch catalog row", c.api.DiagText(SQL_HANDLE_STMT, stmt))
		}
		name, isNull, err := c.catalogString(stmt, catColTableName)
		if err != nil {
			return nil, err
		}
		if !isNull {
			names = append(names, name)
		}
	}
	return names, nil
}

// Column positions in SQLTables/SQLColumns/SQLPrimaryKeys result sets.
const (
	catColTableName    = 3
	catColColumnName   = 4
	catColDataType     = 5
	catColColumnSize   = 7
	catColDecimalDigit = 9
	catColNullable     = 11
)

// GetTableInfo returns the ordered column list of a remote table plus
// the constraint metadata the catalog exposes.
func (c *Connection) GetTableInfo(table string) (*TableInfo, error) {
	stmt, err := c.allocStmt()
	if err != nil {
		return nil, err
	}
	defer c.api.FreeHandle(SQL_HANDLE_STMT, stmt)

	if ret := c.api.Columns(stmt, table, ""); !succeeded(ret) {
		diag := c.api.DiagText(SQL_HANDLE_STMT, stmt)
		return nil, driverError(ErrDriver, fmt.Sprintf("get table info for %q", table), diag)
	}

	info := &TableInfo{}
	for {
		ret := c.api.Fetch(stmt)
		if ret == SQL_NO_DATA {
			break
		}
		if !succeeded(ret) {
			diag := c.api.DiagText(SQL_HANDLE_STMT, stmt)
			return nil, driverError(ErrDriver, fmt.Sprintf("get table info for %q", table), diag)
		}

		name, _, err := c.catalogString(stmt, catColColumnName)
		if err != nil {
			return nil, err
		}
		dataType, _, err := c.catalogInt32(stmt, catColDataType)
		if err != nil {
			return nil, err
		}
		columnSize, sizeNull, err := c.catalogInt32(stmt, catColColumnSize)
		if err != nil {
			return nil, err
		}
		decimalDigits, digitsNull, err := c.catalogInt32(stmt, catColDecimalDigit)
		if err != nil {
			return nil, err
		}
		nullable, nullableNull, err := c.catalogInt32(stmt, catColNullable)
		if err != nil {
			return nil, err
		}
		if sizeNull {
			columnSize = 0
		}
		if digitsNull {
			decimalDigits = 0
		}

		info.Columns = append(info.Columns, ColumnInfo{
			Name:          name,
			SQLType:       SQLSMALLINT(dataType),
			ColumnSize:    SQLULEN(uint32(columnSize)),
			DecimalDigits: SQLSMALLINT(decimalDigits),
			NotNull:       !nullableNull && SQLSMALLINT(nullable) == SQL_NO_NULLS,
		})
	}

	if len(info.Columns) == 0 {
		return nil, NewError(ErrConfig, fmt.Sprintf("no columns found for table %q", table))
	}

	// Primary-key metadata is optional in many drivers; its absence must
	// not fail discovery.
	pk, err := c.primaryKeys(table)
	if err != nil {
		c.log.Debug("primary key probe failed",
			zap.String("table", table), zap.Error(err))
	} else {
		info.PrimaryKey = pk
	}

	return info, nil
}

func (c *Connection) primaryKeys(table string) ([]string, error) {
	stmt, err := c.allocStmt()
	if err != nil {
		return nil, err
	}
	defer c.api.FreeHandle(SQL_HANDLE_STMT, stmt)

	if ret := c.api.PrimaryKeys(stmt, table); !succeeded(ret) {
		return nil, driverError(ErrDriver, "query primary keys", c.api.DiagText(SQL_HANDLE_STMT, stmt))
	}

	var keys []string
	for {
		ret := c.api.Fetch(stmt)
		if ret == SQL_NO_DATA {
			break
		}
		if !succeeded(ret) {
			return nil, driverError(ErrDriver, "fetch primary key row", c.api.DiagText(SQL_HANDLE_STMT, stmt))
		}
		name, isNull, err := c.catalogString(stmt, catColColumnName)
		if err != nil {
			return nil, err
		}
		if !isNull {
			keys = append(keys, name)
		}
	}
	return keys, nil
}

// ColumnExists reports whether a table has a column of the given name.
// Probe semantics: any failure reads as "does not exist".
func (c *Connection) ColumnExists(table, column string) bool {
	stmt, err := c.allocStmt()
	if err != nil {
		return false
	}
	defer c.api.FreeHandle(SQL_HANDLE_STMT, stmt)

	if ret := c.api.Columns(stmt, table, column); !succeeded(ret) {
		return false
	}
	return succeeded(c.api.Fetch(stmt))
}

// GetEntryType classifies a catalog entry as a table or a view.
func (c *Connection) GetEntryType(name string) CatalogType {
	for _, probe := range []struct {
		objectType string
		result     CatalogType
	}{
		{"TABLE", CatalogTable},
		{"VIEW", CatalogView},
	} {
		stmt, err := c.allocStmt()
		if err != nil {
			return CatalogInvalid
		}
		ret := c.api.Tables(stmt, name, probe.objectType)
		found := succeeded(ret) && succeeded(c.api.Fetch(stmt))
		c.api.FreeHandle(SQL_HANDLE_STMT, stmt)
		if found {
			return probe.result
		}
	}
	return CatalogInvalid
}

func (c *Connection) catalogString(stmt SQLHANDLE, col int) (string, bool, error) {
	data, isNull, err := readVarColumn(c.api, stmt, col, SQL_C_CHAR)
	if err != nil || isNull {
		return "", isNull, err
	}
	return string(data), false, nil
}

func (c *Connection) catalogInt32(stmt SQLHANDLE, col int) (int32, bool, error) {
	var buf [4]byte
	indicator, ret := c.api.GetData(stmt, col, SQL_C_SLONG, buf[:])
	if !succeeded(ret) {
		return 0, false, driverError(ErrDriver, "read catalog column", c.api.DiagText(SQL_HANDLE_STMT, stmt))
	}
	if indicator == SQL_NULL_DATA {
		return 0, true, nil
	}
	return *(*int32)(unsafe.Pointer(&buf[0])), false, nil
}

// errText unwraps the message of a package Error for rewrapping.
func errText(err error) string {
	if scanErr, ok := err.(*Error); ok {
		return scanErr.Message
	}
	return err.Error()
}
