package parquetio

import (
	"fmt"
	"os"
	"path/filepath"

	parquet "github.com/segmentio/parquet-go"

	"github.com/wdm0006/tidyweather/pkg/tidy"
)

// StreamWriter writes Frames to a Parquet file incrementally.
type StreamWriter struct {
	file   *os.File
	writer *parquet.Writer
	names  []string
	leaf   []int // frame column -> parquet column index
	rows   int
}

// NewSchema builds the parquet schema for a frame schema: one optional
// string column per frame column.
func NewSchema(s tidy.Schema) *parquet.Schema {
	group := parquet.Group{}
	for _, cs := range s.Columns {
		node := parquet.String()
		if cs.Nullable {
			node = parquet.Optional(node)
		}
		group[cs.Name] = node
	}
	return parquet.NewSchema("tidy", group)
}

func NewStreamWriter(path string, s tidy.Schema) (*StreamWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	schema := NewSchema(s)
	// group fields are ordered by name, not by frame position
	index := make(map[string]int, len(schema.Fields()))
	for i, fld := range schema.Fields() {
		index[fld.Name()] = i
	}
	names := s.Names()
	leaf := make([]int, len(names))
	for i, n := range names {
		leaf[i] = index[n]
	}
	return &StreamWriter{file: f, writer: parquet.NewWriter(f, schema), names: names, leaf: leaf}, nil
}

func (s *StreamWriter) Write(fr *tidy.Frame) error {
	if fr.Cols() != len(s.names) {
		return &tidy.SchemaError{Msg: fmt.Sprintf("parquet stream: expected %d columns, got %d", len(s.names), fr.Cols())}
	}
	rows := make([]parquet.Row, 0, fr.Rows())
	for r := 0; r < fr.Rows(); r++ {
		row := make(parquet.Row, len(s.names))
		for c := range s.names {
			idx := s.leaf[c]
			if v, ok := fr.Column(c).Get(r); ok {
				row[idx] = parquet.ByteArrayValue([]byte(v)).Level(0, 1, idx)
			} else {
				row[idx] = parquet.NullValue().Level(0, 0, idx)
			}
		}
		rows = append(rows, row)
	}
	if _, err := s.writer.WriteRows(rows); err != nil {
		return fmt.Errorf("parquet stream write: %w", err)
	}
	s.rows += len(rows)
	return nil
}

// Rows reports how many rows were written.
func (s *StreamWriter) Rows() int { return s.rows }

func (s *StreamWriter) Close() error {
	if err := s.writer.Close(); err != nil {
		_ = s.file.Close()
		return err
	}
	return s.file.Close()
}
