package odbcscan

import (
	"fmt"
)

// ViewRegistry is the host-engine seam Attach registers views through.
// Scan views point back at the table scan entry point; query views wrap
// a remote view behind the query entry point. The scan options carry the
// all_varchar setting into the registered wiring.
type ViewRegistry interface {
	RegisterScanView(name, table string, params ConnectionParams, opts ScanOptions, overwrite bool) error
	RegisterQueryView(name, sql string, params ConnectionParams, opts ScanOptions, overwrite bool) error
}

// AttachOptions configure Attach.
type AttachOptions struct {
	// Overwrite replaces existing views of the same name.
	Overwrite bool
	// AllVarchar is propagated to every registered view's scan wiring.
	AllVarchar bool
}

// Attach enumerates the remote tables and views and registers one
// queryable view per object in the host engine: tables via scan wiring,
// remote views via a pass-through query. Returns the single-row success
// batch.
func Attach(params ConnectionParams, registry ViewRegistry, opts AttachOptions, copts ...ConnectOption) (*Batch, error) {
	conn, err := Connect(params, copts...)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	scanOpts := ScanOptions{AllVarchar: opts.AllVarchar}

	tables, err := conn.GetTables()
	if err != nil {
		return nil, err
	}
	for _, table := range tables {
		if err := registry.RegisterScanView(table, table, params, scanOpts, opts.Overwrite); err != nil {
			return nil, NewError(ErrGeneric, fmt.Sprintf("failed to register view for table %q: %v", table, err))
		}
	}

	views, err := conn.GetViews()
	if err != nil {
		return nil, err
	}
	for _, view := range views {
		sql := fmt.Sprintf("SELECT * FROM %s", quoteIdent(view))
		if err := registry.RegisterQueryView(view, sql, params, scanOpts, opts.Overwrite); err != nil {
			return nil, NewError(ErrGeneric, fmt.Sprintf("failed to register view for view %q: %v", view, err))
		}
	}

	return successBatch(), nil
}
