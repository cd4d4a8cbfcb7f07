package main

import (
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/odbcscan/odbcscan"
)

// Scans a table from any ODBC data source and prints row counts per
// batch. Set ODBCSCAN_DSN (a DSN name or a full connection string) and
// ODBCSCAN_TABLE before running.
func main() {
	locator := os.Getenv("ODBCSCAN_DSN")
	table := os.Getenv("ODBCSCAN_TABLE")
	if locator == "" || table == "" {
		log.Fatal("set ODBCSCAN_DSN and ODBCSCAN_TABLE")
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	params := odbcscan.NewConnectionParams(locator, os.Getenv("ODBCSCAN_USER"), os.Getenv("ODBCSCAN_PASSWORD"), 30, true)

	state, err := odbcscan.Scan(params, table, odbcscan.ScanOptions{}, odbcscan.WithLogger(logger))
	if err != nil {
		log.Fatal(err)
	}
	defer state.Close()

	total := 0
	for {
		batch, err := state.Next()
		if err != nil {
			log.Fatal(err)
		}
		if batch == nil {
			break
		}
		total += batch.Cardinality()
		fmt.Printf("batch: %d rows, %d columns\n", batch.Cardinality(), batch.ColumnCount())
	}
	fmt.Printf("scanned %d rows from %s\n", total, table)
}
