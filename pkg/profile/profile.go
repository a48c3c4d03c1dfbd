// Package profile gathers per-column statistics over frames as they pass
// through a pipeline.
package profile

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/wdm0006/tidyweather/pkg/tidy"
)

// NumStats covers the values of a column that parse as numbers.
type NumStats struct {
	Count int     `json:"count"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Sum   float64 `json:"sum"`
}

func (n *NumStats) Mean() float64 {
	if n.Count == 0 {
		return 0
	}
	return n.Sum / float64(n.Count)
}

type ColumnProfile struct {
	Name  string
	Count int
	Nulls int
	Num   *NumStats
	freqs map[string]int
}

// Distinct is the number of distinct non-null values.
func (cp *ColumnProfile) Distinct() int { return len(cp.freqs) }

// Collector accumulates a ColumnProfile per column. It satisfies
// tidy.ChunkSink so it can sit behind a stream.
type Collector struct {
	cols  []ColumnProfile
	index map[string]int
	topK  int
	rows  int
}

func NewCollector(schema tidy.Schema, topK int) *Collector {
	c := &Collector{index: make(map[string]int), topK: topK}
	c.cols = make([]ColumnProfile, len(schema.Columns))
	for i, cs := range schema.Columns {
		c.cols[i] = ColumnProfile{Name: cs.Name, freqs: make(map[string]int)}
		c.index[cs.Name] = i
	}
	return c
}

func (c *Collector) ConsumeFrame(f *tidy.Frame) {
	c.rows += f.Rows()
	for ci, cs := range f.Schema().Columns {
		idx, ok := c.index[cs.Name]
		if !ok {
			continue
		}
		cp := &c.cols[idx]
		col := f.Column(ci)
		for i := 0; i < col.Len(); i++ {
			v, ok := col.Get(i)
			if !ok {
				cp.Nulls++
				continue
			}
			cp.Count++
			cp.freqs[v]++
			fv, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil || math.IsNaN(fv) {
				continue
			}
			if cp.Num == nil {
				cp.Num = &NumStats{Min: math.Inf(1), Max: math.Inf(-1)}
			}
			cp.Num.Count++
			cp.Num.Min = math.Min(cp.Num.Min, fv)
			cp.Num.Max = math.Max(cp.Num.Max, fv)
			cp.Num.Sum += fv
		}
	}
}

func (c *Collector) Write(f *tidy.Frame) error {
	c.ConsumeFrame(f)
	return nil
}

func (c *Collector) Close() error { return nil }

// Rows is the number of rows consumed.
func (c *Collector) Rows() int { return c.rows }

// Column returns the profile for name.
func (c *Collector) Column(name string) (*ColumnProfile, bool) {
	i, ok := c.index[name]
	if !ok {
		return nil, false
	}
	return &c.cols[i], true
}

type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

func (c *Collector) top(cp *ColumnProfile) []ValueCount {
	if c.topK <= 0 || len(cp.freqs) == 0 {
		return nil
	}
	arr := make([]ValueCount, 0, len(cp.freqs))
	for k, v := range cp.freqs {
		arr = append(arr, ValueCount{k, v})
	}
	sort.Slice(arr, func(i, j int) bool {
		if arr[i].Count != arr[j].Count {
			return arr[i].Count > arr[j].Count
		}
		return arr[i].Value < arr[j].Value
	})
	if len(arr) > c.topK {
		arr = arr[:c.topK]
	}
	return arr
}

func (c *Collector) ReportText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Profile Summary (%d rows)\n", c.rows)
	for i := range c.cols {
		cp := &c.cols[i]
		fmt.Fprintf(&b, "- %s: count=%d nulls=%d distinct=%d", cp.Name, cp.Count, cp.Nulls, cp.Distinct())
		if cp.Num != nil {
			fmt.Fprintf(&b, " numeric=%d min=%.6g max=%.6g mean=%.6g", cp.Num.Count, cp.Num.Min, cp.Num.Max, cp.Num.Mean())
		}
		b.WriteString("\n")
		for _, kv := range c.top(cp) {
			fmt.Fprintf(&b, "  * %q: %d\n", kv.Value, kv.Count)
		}
	}
	return b.String()
}

type JSONProfile struct {
	Rows    int          `json:"rows"`
	Columns []JSONColumn `json:"columns"`
}

type JSONColumn struct {
	Name     string       `json:"name"`
	Count    int          `json:"count"`
	Nulls    int          `json:"nulls"`
	Distinct int          `json:"distinct"`
	Num      *NumStats    `json:"num,omitempty"`
	Top      []ValueCount `json:"top,omitempty"`
}

func (c *Collector) ReportJSON() JSONProfile {
	out := JSONProfile{Rows: c.rows, Columns: make([]JSONColumn, 0, len(c.cols))}
	for i := range c.cols {
		cp := &c.cols[i]
		out.Columns = append(out.Columns, JSONColumn{
			Name:     cp.Name,
			Count:    cp.Count,
			Nulls:    cp.Nulls,
			Distinct: cp.Distinct(),
			Num:      cp.Num,
			Top:      c.top(cp),
		})
	}
	return out
}
