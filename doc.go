/*
Package odbcscan reads tabular data from relational data sources
reachable through ODBC and presents each remote table or query result as
a schema-typed, batch-oriented columnar stream.

# Overview

The package bridges ODBC's row-at-a-time, C-buffer result model and a
columnar, null-bitmapped batch model. It covers connection and session
establishment with read-only enforcement, remote schema discovery with
SQL-type to columnar-type mapping, the statement execution and fetch
state machine, and row-to-column materialization including the
variable-length read protocol and fixed-point decimal conversion.

The ODBC driver manager (libodbc, odbc32.dll) is loaded dynamically at
runtime, so the package builds without CGO.

# Scanning a table

	package main

	import (
		"fmt"
		"log"

		"github.com/odbcscan/odbcscan"
	)

	func main() {
		params := odbcscan.NewConnectionParams("SalesDSN", "reader", "secret", 30, true)

		state, err := odbcscan.Scan(params, "orders", odbcscan.ScanOptions{})
		if err != nil {
			log.Fatalf("failed to bind scan: %v", err)
		}
		defer state.Close()

		for {
			batch, err := state.Next()
			if err != nil {
				log.Fatalf("scan failed: %v", err)
			}
			if batch == nil {
				break
			}
			fmt.Printf("batch of %d rows\n", batch.Cardinality())
		}
	}

# Ad-hoc queries

Query binds arbitrary SQL and takes the schema from the prepared
statement's result metadata. A statement that produces no result columns
(DDL/DML) executes once at bind time and surfaces a single boolean
"Success" column:

	state, err := odbcscan.Query(params, `SELECT region, sum(total) FROM orders GROUP BY region`, odbcscan.ScanOptions{})

# Attaching a whole source

Attach enumerates the remote tables and views and registers one view per
object through the host engine's ViewRegistry.

# Escape hatch

Drivers with unreliable metadata can be scanned with
ScanOptions{AllVarchar: true}, which types every column as text and
skips all type consistency checks.
*/
package odbcscan
