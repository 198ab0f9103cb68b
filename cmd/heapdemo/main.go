// Command heapdemo drives the page/buffer/record-heap storage stack
// end-to-end: create a table, insert a batch of rows, run a predicate
// scan over them, and print what matched. Grounded on the flag-driven,
// sequential-driver style of cmd/server/main.go, adapted from a
// long-running network server to a one-shot local run since this stack
// has no network surface.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/mnohosten/heapdb/pkg/config"
	"github.com/mnohosten/heapdb/pkg/dberror"
	"github.com/mnohosten/heapdb/pkg/expr"
	"github.com/mnohosten/heapdb/pkg/record"
)

func main() {
	dataFile := flag.String("data-file", "./heapdemo.tbl", "Page file backing the demo table")
	rows := flag.Int("rows", 10, "Number of rows to insert")
	threshold := flag.Int("threshold", 5, "Scan predicate: keep rows where a >= threshold")
	configFile := flag.String("config", "", "Optional YAML file tuning buffer pool capacity/strategy")
	flag.Parse()

	if err := run(*dataFile, *rows, int32(*threshold), *configFile); err != nil {
		fmt.Fprintf(os.Stderr, "heapdemo: %v\n", err)
		os.Exit(1)
	}
}

func run(dataFile string, rows int, threshold int32, configFile string) error {
	cfg := config.Default()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	schema := record.CreateSchema([]record.Attribute{
		{Name: "a", Type: record.TypeInt},
		{Name: "b", Type: record.TypeString, Length: 16},
	}, []int{0})

	if err := record.DeleteTable(dataFile); err != nil && !errors.Is(err, dberror.ErrFileNotFound) {
		return fmt.Errorf("clear stale data file: %w", err)
	}

	tbl, err := record.CreateTable(dataFile, schema, cfg)
	if err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	defer record.DeleteTable(dataFile)

	for i := 0; i < rows; i++ {
		rec := record.CreateRecord(schema)
		if err := record.SetAttr(rec, schema, 0, record.IntValue(int32(i))); err != nil {
			return fmt.Errorf("set attr a: %w", err)
		}
		if err := record.SetAttr(rec, schema, 1, record.StringValue(fmt.Sprintf("row%d", i))); err != nil {
			return fmt.Errorf("set attr b: %w", err)
		}
		if err := tbl.InsertRecord(rec); err != nil {
			return fmt.Errorf("insert row %d: %w", i, err)
		}
	}
	fmt.Printf("inserted %d rows, tuple count now %d\n", rows, tbl.GetNumTuples())

	pred := expr.Compare(expr.AttrRef("a"), expr.Const(record.IntValue(threshold)), expr.OpGE)
	scan, err := record.StartScan(tbl, pred)
	if err != nil {
		return fmt.Errorf("start scan: %w", err)
	}

	fmt.Printf("rows where a >= %d:\n", threshold)
	out := record.CreateRecord(schema)
	matched := 0
	for {
		if err := scan.Next(out); err != nil {
			if errors.Is(err, dberror.ErrNoMoreTuples) {
				break
			}
			return fmt.Errorf("scan: %w", err)
		}
		a, err := record.GetAttr(out, schema, 0)
		if err != nil {
			return fmt.Errorf("read attr a: %w", err)
		}
		b, err := record.GetAttr(out, schema, 1)
		if err != nil {
			return fmt.Errorf("read attr b: %w", err)
		}
		fmt.Printf("  rid=%+v a=%d b=%q\n", out.ID, a.Int, b.Str)
		matched++
	}
	record.CloseScan(scan)
	fmt.Printf("matched %d of %d rows\n", matched, rows)

	return tbl.CloseTable()
}
