package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"runtime"
	"time"

	"github.com/wdm0006/catfill/pkg/logging"
	"github.com/wdm0006/catfill/pkg/table"
	imp "github.com/wdm0006/catfill/pkg/transform/impute"
	std "github.com/wdm0006/catfill/pkg/transform/standardize"
)

// genSource emits chunks of categorical columns. Column c0 is uniform over
// `levels` labels; every other column copies c0's label index with
// probability `link`, so each column has an obvious driver.
type genSource struct {
	schema table.Schema
	levels int
	link   float64
	remain int
	chunk  int
	missp  float64
	rnd    *rand.Rand
}

func (g *genSource) Next() (*table.Frame, error) {
	if g.remain <= 0 {
		return nil, io.EOF
	}
	n := g.chunk
	if n > g.remain {
		n = g.remain
	}
	g.remain -= n
	f := table.NewFrame(g.schema)
	for i := 0; i < n; i++ {
		f.AppendNullRow()
		base := g.rnd.Intn(g.levels)
		for c, cs := range g.schema.Columns {
			if g.rnd.Float64() < g.missp {
				continue
			}
			lvl := base
			if c > 0 && g.rnd.Float64() >= g.link {
				lvl = g.rnd.Intn(g.levels)
			}
			_ = f.SetCell(i, cs.Name, fmt.Sprintf("%s_L%d ", cs.Name, lvl))
		}
	}
	return f, nil
}

type blackholeSink struct{ rows int }

func (b *blackholeSink) Write(f *table.Frame) error { b.rows += f.Rows(); return nil }
func (b *blackholeSink) Close() error               { return nil }

func main() {
	var (
		rows    = flag.Int("rows", 2_000_000, "total rows to generate")
		chunk   = flag.Int("chunk", 100_000, "rows per chunk")
		cols    = flag.Int("cols", 6, "number of categorical columns")
		levels  = flag.Int("levels", 8, "labels per column")
		link    = flag.Float64("link", 0.7, "probability a column copies the c0 label")
		missp   = flag.Float64("missing", 0.05, "probability of missing values in each cell")
		refRows = flag.Int("ref-rows", 50_000, "rows in the reference table used for fitting")
		workers = flag.Int("workers", runtime.NumCPU(), "concurrent chi-square tests during fit")
		jsonOut = flag.Bool("json", false, "emit JSON summary")
		seed    = flag.Int64("seed", 42, "random seed")
	)
	flag.Parse()
	log, err := logging.New(os.Stderr, "info", "text")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var schemaCols []table.ColumnSchema
	for i := 0; i < *cols; i++ {
		schemaCols = append(schemaCols, table.ColumnSchema{Name: fmt.Sprintf("c%d", i), Type: table.KindString, Nullable: true})
	}
	schema := table.Schema{Columns: schemaCols}
	rnd := rand.New(rand.NewSource(*seed))
	gen := func(n int) *genSource {
		return &genSource{schema: schema, levels: *levels, link: *link, remain: n, chunk: *chunk, missp: *missp, rnd: rnd}
	}
	ctx := context.Background()

	// Fit on a reference table cleaned the same way the stream will be.
	clean := table.NewPipeline()
	for _, cs := range schema.Columns {
		clean.Add(&std.Trim{Column: cs.Name})
	}
	refSrc := gen(*refRows)
	refSrc.chunk = *refRows
	ref, err := refSrc.Next()
	if err == nil {
		ref, err = clean.Run(ctx, ref)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fitStart := time.Now()
	fitted, err := (&imp.ContingencyImputer{Workers: *workers, Logger: log}).Fit(ctx, ref)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fitElapsed := time.Since(fitStart)
	p := clean.Add(fitted)

	src := gen(*rows)
	sink := &blackholeSink{}

	// Warm up
	runtime.GC()
	time.Sleep(100 * time.Millisecond)

	var msBefore, msAfter runtime.MemStats
	runtime.ReadMemStats(&msBefore)
	start := time.Now()
	n, err := table.RunStream(ctx, p, src, sink)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	elapsed := time.Since(start)
	runtime.ReadMemStats(&msAfter)

	rowsPerSec := float64(n) / elapsed.Seconds()
	summary := map[string]any{
		"rows":                  n,
		"fit_ms":                fitElapsed.Milliseconds(),
		"drivers":               fitted.Associations().Len(),
		"elapsed_ms":            elapsed.Milliseconds(),
		"rows_per_sec":          rowsPerSec,
		"mem_alloc_bytes":       msAfter.Alloc,
		"mem_total_alloc_bytes": msAfter.TotalAlloc - msBefore.TotalAlloc,
		"gc_num":                msAfter.NumGC - msBefore.NumGC,
		"cols":                  *cols,
		"levels":                *levels,
		"chunk":                 *chunk,
		"missing_prob":          *missp,
	}

	if *jsonOut {
		b, _ := json.MarshalIndent(summary, "", "  ")
		fmt.Println(string(b))
		return
	}
	fmt.Printf("Rows: %d\n", n)
	fmt.Printf("Fit: %s (%d drivers)\n", fitElapsed, fitted.Associations().Len())
	fmt.Printf("Elapsed: %s\n", elapsed)
	fmt.Printf("Throughput: %.0f rows/s\n", rowsPerSec)
	fmt.Printf("Current Alloc: %d MB\n", msAfter.Alloc/1024/1024)
	fmt.Printf("Total Alloc (delta): %d MB\n", (msAfter.TotalAlloc-msBefore.TotalAlloc)/1024/1024)
	fmt.Printf("GC cycles (delta): %d\n", msAfter.NumGC-msBefore.NumGC)
}
