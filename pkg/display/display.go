// Package display renders frames as bordered text tables.
package display

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/wdm0006/tidyweather/pkg/tidy"
)

// DefaultRows is how many rows Show prints when asked for n <= 0.
const DefaultRows = 20

const (
	maxCellRunes = 20
	nullText     = "null"
)

// Show writes up to n rows of f to w, followed by a footer when rows were
// left out.
func Show(w io.Writer, f *tidy.Frame, n int) error {
	if n <= 0 {
		n = DefaultRows
	}
	head := f.Head(n)
	table := tablewriter.NewWriter(w)
	table.SetHeader(head.Names())
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.SetHeaderAlignment(tablewriter.ALIGN_RIGHT)
	row := make([]string, head.Cols())
	for r := 0; r < head.Rows(); r++ {
		for c := range row {
			v, ok := head.Column(c).Get(r)
			if !ok {
				v = nullText
			}
			row[c] = truncate(v)
		}
		table.Append(row)
	}
	table.Render()
	if f.Rows() > head.Rows() {
		if _, err := fmt.Fprintf(w, "only showing top %d rows\n", head.Rows()); err != nil {
			return err
		}
	}
	return nil
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= maxCellRunes {
		return s
	}
	return string(r[:maxCellRunes-3]) + "..."
}

// Preview is a sink that keeps the first Limit rows it is given and
// reports how many rows went past it in total.
type Preview struct {
	Limit int
	frame *tidy.Frame
	total int
}

// NewPreview returns a Preview for frames shaped like schema.
func NewPreview(schema tidy.Schema, limit int) (*Preview, error) {
	f, err := tidy.NewFrame(schema)
	if err != nil {
		return nil, err
	}
	return &Preview{Limit: limit, frame: f}, nil
}

func (p *Preview) Write(f *tidy.Frame) error {
	p.total += f.Rows()
	room := p.Limit - p.frame.Rows()
	if room <= 0 {
		return nil
	}
	_, err := p.frame.AppendFrame(f, room)
	return err
}

func (p *Preview) Close() error { return nil }

// Total is the number of rows seen, kept or not.
func (p *Preview) Total() int { return p.total }

// Render shows the kept rows the way Show would have shown every row seen.
func (p *Preview) Render(w io.Writer) error {
	if err := Show(w, p.frame, p.Limit); err != nil {
		return err
	}
	if p.total > p.frame.Rows() && p.frame.Rows() == p.Limit {
		_, err := fmt.Fprintf(w, "only showing top %d rows\n", p.Limit)
		return err
	}
	return nil
}
