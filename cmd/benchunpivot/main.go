package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"os"
	"runtime"
	"strconv"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/wdm0006/tidyweather/pkg/tidy"
)

// genSource produces wide weather chunks: a datetime column followed by one
// column per city.
type genSource struct {
	schema tidy.Schema
	remain int
	chunk  int
	missp  float64
	rnd    *rand.Rand
	start  time.Time
	row    int
}

func (g *genSource) Next() (*tidy.Frame, error) {
	if g.remain <= 0 {
		return nil, io.EOF
	}
	n := min(g.chunk, g.remain)
	g.remain -= n
	f, err := tidy.NewFrame(g.schema)
	if err != nil {
		return nil, err
	}
	f.Grow(n)
	names := g.schema.Names()
	for i := 0; i < n; i++ {
		f.AppendNullRow()
		_ = f.SetCell(i, names[0], g.start.Add(time.Duration(g.row)*time.Hour).Format("2006-01-02 15:04:05"))
		g.row++
		for _, name := range names[1:] {
			if g.rnd.Float64() < g.missp {
				continue
			}
			_ = f.SetCell(i, name, strconv.FormatFloat(250+g.rnd.Float64()*60, 'f', 2, 64))
		}
	}
	return f, nil
}

type blackholeSink struct{ rows int }

func (b *blackholeSink) Write(f *tidy.Frame) error { b.rows += f.Rows(); return nil }
func (b *blackholeSink) Close() error              { return nil }

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	rows := flag.Int("rows", 1_000_000, "wide rows to generate")
	chunk := flag.Int("chunk", 50_000, "wide rows per chunk")
	cities := flag.Int("cities", 36, "number of city columns")
	missp := flag.Float64("missing", 0.05, "probability of a missing value in each cell")
	jsonOut := flag.Bool("json", false, "emit JSON summary")
	seed := flag.Int64("seed", 42, "random seed")
	flag.Parse()

	if *chunk <= 0 || *cities <= 0 {
		return fmt.Errorf("--chunk and --cities must be positive")
	}
	names := []string{"datetime"}
	for i := 0; i < *cities; i++ {
		names = append(names, tidy.NormalizeName(fmt.Sprintf("City %d", i)))
	}
	schema := tidy.NewSchema(names...)

	p := tidy.NewPipeline().Add(&tidy.Unpivot{
		Keep:            []string{"datetime"},
		DimensionColumn: "country",
		ValueColumn:     "temperature",
	})
	src := &genSource{
		schema: schema,
		remain: *rows,
		chunk:  *chunk,
		missp:  *missp,
		rnd:    rand.New(rand.NewSource(*seed)),
		start:  time.Date(2012, 10, 1, 12, 0, 0, 0, time.UTC),
	}
	sink := &blackholeSink{}

	runtime.GC()
	var msBefore, msAfter runtime.MemStats
	runtime.ReadMemStats(&msBefore)
	start := time.Now()
	if err := tidy.RunStream(context.Background(), p, src, sink); err != nil {
		return err
	}
	elapsed := time.Since(start)
	runtime.ReadMemStats(&msAfter)

	rowsPerSec := float64(*rows) / elapsed.Seconds()
	if *jsonOut {
		summary := map[string]any{
			"rows":                  *rows,
			"long_rows":             sink.rows,
			"cities":                *cities,
			"chunk":                 *chunk,
			"missing_prob":          *missp,
			"elapsed_ms":            elapsed.Milliseconds(),
			"rows_per_sec":          rowsPerSec,
			"mem_alloc_bytes":       msAfter.Alloc,
			"mem_total_alloc_bytes": msAfter.TotalAlloc - msBefore.TotalAlloc,
			"gc_num":                msAfter.NumGC - msBefore.NumGC,
		}
		b, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(b))
		return nil
	}
	fmt.Printf("Wide rows: %d\n", *rows)
	fmt.Printf("Long rows: %d\n", sink.rows)
	fmt.Printf("Elapsed: %s\n", elapsed)
	fmt.Printf("Throughput: %.0f wide rows/s\n", rowsPerSec)
	fmt.Printf("Current Alloc: %d MB\n", msAfter.Alloc/1024/1024)
	fmt.Printf("Total Alloc (delta): %d MB\n", (msAfter.TotalAlloc-msBefore.TotalAlloc)/1024/1024)
	fmt.Printf("GC cycles (delta): %d\n", msAfter.NumGC-msBefore.NumGC)
	return nil
}
