package odbcscan

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"unsafe"
)

// Driver manager loader
var (
	driverLibOnce    sync.Once
	driverLibLoaded  bool
	driverLibError   error
	driverLibPath    string
	driverLibHandler unsafe.Pointer
)

// Dynamically loaded ODBC function pointers
var (
	funcSQLAllocHandle    unsafe.Pointer
	funcSQLFreeHandle     unsafe.Pointer
	funcSQLSetEnvAttr     unsafe.Pointer
	funcSQLSetConnectAttr unsafe.Pointer
	funcSQLDriverConnect  unsafe.Pointer
	funcSQLConnect        unsafe.Pointer
	funcSQLDisconnect     unsafe.Pointer
	funcSQLPrepare        unsafe.Pointer
	funcSQLExecute        unsafe.Pointer
	funcSQLExecDirect     unsafe.Pointer
	funcSQLFetch          unsafe.Pointer
	funcSQLNumResultCols  unsafe.Pointer
	funcSQLDescribeCol    unsafe.Pointer
	funcSQLGetData        unsafe.Pointer
	funcSQLBindParameter  unsafe.Pointer
	funcSQLFreeStmt       unsafe.Pointer
	funcSQLTables         unsafe.Pointer
	funcSQLColumns        unsafe.Pointer
	funcSQLPrimaryKeys    unsafe.Pointer
	funcSQLGetDiagRec     unsafe.Pointer
)

// DriverManagerAvailable returns true if an ODBC driver manager library
// could be loaded on this system.
func DriverManagerAvailable() bool {
	loadDriverManager()
	return driverLibLoaded
}

// DriverManagerError returns any error that occurred while loading the
// ODBC driver manager library.
func DriverManagerError() error {
	loadDriverManager()
	return driverLibError
}

// Attempts to load the driver manager library
func loadDriverManager() {
	driverLibOnce.Do(func() {
		handler, path, err := openDriverManager()
		if err != nil {
			driverLibError = err
			return
		}
		driverLibHandler = handler
		driverLibPath = path

		if err := loadDriverFunctions(); err != nil {
			closeLibrary(driverLibHandler)
			driverLibError = err
			return
		}

		driverLibLoaded = true
	})
}

// Open the first driver manager library that loads. The driver manager
// lives on the system library search path, so candidates are plain
// sonames rather than absolute paths; ODBC_LIBRARY overrides the search.
func openDriverManager() (unsafe.Pointer, string, error) {
	var candidates []string
	if override := os.Getenv("ODBC_LIBRARY"); override != "" {
		candidates = []string{override}
	} else {
		candidates = driverManagerNames()
	}

	var firstErr error
	for _, name := range candidates {
		handler, err := loadDynamicLibrary(name)
		if err == nil {
			return handler, name, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	if firstErr == nil {
		firstErr = errors.New("no driver manager candidates for this platform")
	}
	return nil, "", fmt.Errorf("odbc driver manager not found: %v", firstErr)
}

// Load all ODBC function pointers from the library
func loadDriverFunctions() error {
	symbols := []struct {
		name string
		dst  *unsafe.Pointer
	}{
		{"SQLAllocHandle", &funcSQLAllocHandle},
		{"SQLFreeHandle", &funcSQLFreeHandle},
		{"SQLSetEnvAttr", &funcSQLSetEnvAttr},
		{"SQLSetConnectAttr", &funcSQLSetConnectAttr},
		{"SQLDriverConnect", &funcSQLDriverConnect},
		{"SQLConnect", &funcSQLConnect},
		{"SQLDisconnect", &funcSQLDisconnect},
		{"SQLPrepare", &funcSQLPrepare},
		{"SQLExecute", &funcSQLExecute},
		{"SQLExecDirect", &funcSQLExecDirect},
		{"SQLFetch", &funcSQLFetch},
		{"SQLNumResultCols", &funcSQLNumResultCols},
		{"SQLDescribeCol", &funcSQLDescribeCol},
		{"SQLGetData", &funcSQLGetData},
		{"SQLBindParameter", &funcSQLBindParameter},
		{"SQLFreeStmt", &funcSQLFreeStmt},
		{"SQLTables", &funcSQLTables},
		{"SQLColumns", &funcSQLColumns},
		{"SQLPrimaryKeys", &funcSQLPrimaryKeys},
		{"SQLGetDiagRec", &funcSQLGetDiagRec},
	}

	for _, sym := range symbols {
		ptr, err := getSymbol(driverLibHandler, sym.name)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %v", sym.name, err)
		}
		*sym.dst = ptr
	}
	return nil
}
